// internal/services/admin_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/floramart/floramart-backend/internal/models"
	"github.com/floramart/floramart-backend/internal/utils"
)

type AdminService struct {
	db       *gorm.DB
	notifier *NotificationService
}

type AdminDashboardStats struct {
	TotalUsers         int64   `json:"total_users"`
	ActiveUsers        int64   `json:"active_users"`
	NewUsersThisMonth  int64   `json:"new_users_this_month"`
	TotalSellers       int64   `json:"total_sellers"`
	TotalFlowers       int64   `json:"total_flowers"`
	AvailableFlowers   int64   `json:"available_flowers"`
	TotalOrders        int64   `json:"total_orders"`
	OrdersThisMonth    int64   `json:"orders_this_month"`
	TotalRevenue       float64 `json:"total_revenue"`
	MonthlyRevenue     float64 `json:"monthly_revenue"`
	PendingWithdrawals int64   `json:"pending_withdrawals"`
	UserGrowth         float64 `json:"user_growth"`
	RevenueGrowth      float64 `json:"revenue_growth"`
}

type AdminUserFilter struct {
	utils.PaginationParams
	Role          *models.UserRole   `json:"role,omitempty"`
	Status        *models.UserStatus `json:"status,omitempty"`
	Search        string             `json:"search,omitempty"`
	CreatedAfter  *time.Time         `json:"created_after,omitempty"`
	CreatedBefore *time.Time         `json:"created_before,omitempty"`
}

type WithdrawalRequestInput struct {
	Amount      float64 `json:"amount" validate:"required,min=1"`
	BankAccount string  `json:"bank_account" validate:"required,min=5,max=100"`
}

type ProcessWithdrawalRequest struct {
	Approve   bool   `json:"approve"`
	AdminNote string `json:"admin_note" validate:"max=500"`
}

func NewAdminService(db *gorm.DB, notifier *NotificationService) *AdminService {
	return &AdminService{
		db:       db,
		notifier: notifier,
	}
}

func (s *AdminService) GetDashboardStats() (*AdminDashboardStats, error) {
	stats := &AdminDashboardStats{}
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonthStart := monthStart.AddDate(0, -1, 0)

	s.db.Model(&models.User{}).Count(&stats.TotalUsers)
	s.db.Model(&models.User{}).Where("status = ?", models.UserStatusActive).Count(&stats.ActiveUsers)
	s.db.Model(&models.User{}).Where("created_at >= ?", monthStart).Count(&stats.NewUsersThisMonth)
	s.db.Model(&models.User{}).Where("role = ?", models.UserRoleSeller).Count(&stats.TotalSellers)

	s.db.Model(&models.Flower{}).Count(&stats.TotalFlowers)
	s.db.Model(&models.Flower{}).
		Where("status = ? AND is_visible = ?", models.FlowerStatusAvailable, true).
		Count(&stats.AvailableFlowers)

	s.db.Model(&models.Order{}).Count(&stats.TotalOrders)
	s.db.Model(&models.Order{}).Where("created_at >= ?", monthStart).Count(&stats.OrdersThisMonth)

	s.db.Model(&models.Payment{}).
		Where("status = ?", models.PaymentStatusPaid).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.TotalRevenue)
	s.db.Model(&models.Payment{}).
		Where("status = ? AND created_at >= ?", models.PaymentStatusPaid, monthStart).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.MonthlyRevenue)

	s.db.Model(&models.WithdrawalRequest{}).
		Where("status = ?", models.WithdrawalStatusPending).
		Count(&stats.PendingWithdrawals)

	var lastMonthUsers int64
	s.db.Model(&models.User{}).
		Where("created_at >= ? AND created_at < ?", lastMonthStart, monthStart).
		Count(&lastMonthUsers)

	var lastMonthRevenue float64
	s.db.Model(&models.Payment{}).
		Where("status = ? AND created_at >= ? AND created_at < ?",
			models.PaymentStatusPaid, lastMonthStart, monthStart).
		Select("COALESCE(SUM(amount), 0)").Scan(&lastMonthRevenue)

	if lastMonthUsers > 0 {
		stats.UserGrowth = float64(stats.NewUsersThisMonth-lastMonthUsers) / float64(lastMonthUsers) * 100
	}
	if lastMonthRevenue > 0 {
		stats.RevenueGrowth = (stats.MonthlyRevenue - lastMonthRevenue) / lastMonthRevenue * 100
	}

	return stats, nil
}

func (s *AdminService) GetUsers(filter AdminUserFilter) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{})

	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("username LIKE ? OR email LIKE ? OR full_name LIKE ?", like, like, like)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filter.CreatedBefore)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User
	query = utils.ApplyPagination(query, filter.PaginationParams)
	if err := query.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return users, total, nil
}

// UpdateUserStatus suspends or reinstates a user account.
func (s *AdminService) UpdateUserStatus(userID uuid.UUID, status models.UserStatus, reason string) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %w", ErrNotFound)
		}
		return fmt.Errorf("database error: %w", err)
	}

	if user.Role == models.UserRoleAdmin {
		return fmt.Errorf("%w: cannot change an admin's status", ErrForbidden)
	}
	if user.Status == status {
		return nil
	}

	if err := s.db.Model(&user).Update("status", status).Error; err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}

	// Suspending a seller pulls their active listings off the market.
	if status == models.UserStatusSuspended && user.Role == models.UserRoleSeller {
		if err := s.db.Model(&models.Flower{}).
			Where("seller_id = ? AND status = ?", userID, models.FlowerStatusAvailable).
			Update("status", models.FlowerStatusSuspended).Error; err != nil {
			return fmt.Errorf("failed to suspend seller listings: %w", err)
		}
	}

	if s.notifier != nil {
		title := "Account reinstated"
		message := "Your account has been reinstated"
		if status == models.UserStatusSuspended {
			title = "Account suspended"
			message = fmt.Sprintf("Your account has been suspended: %s", reason)
		}
		s.notifier.Enqueue(NotificationJob{
			UserID:    userID,
			Type:      models.NotificationTypeSystem,
			Title:     title,
			Message:   message,
			SendEmail: true,
		})
	}

	return nil
}

// RequestWithdrawal records a seller's payout request against their paid
// sales balance.
func (s *AdminService) RequestWithdrawal(sellerID uuid.UUID, req *WithdrawalRequestInput) (*models.WithdrawalRequest, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	balance, err := s.SellerBalance(sellerID)
	if err != nil {
		return nil, err
	}
	if req.Amount > balance {
		return nil, fmt.Errorf("%w: withdrawal exceeds available balance", ErrConflict)
	}

	withdrawal := models.WithdrawalRequest{
		SellerID:    sellerID,
		Amount:      req.Amount,
		BankAccount: req.BankAccount,
		Status:      models.WithdrawalStatusPending,
	}
	if err := s.db.Create(&withdrawal).Error; err != nil {
		return nil, fmt.Errorf("failed to create withdrawal request: %w", err)
	}

	return &withdrawal, nil
}

// SellerBalance is the seller's share of paid orders minus withdrawals
// already approved or still pending.
func (s *AdminService) SellerBalance(sellerID uuid.UUID) (float64, error) {
	var earned float64
	err := s.db.Model(&models.OrderItem{}).
		Select("COALESCE(SUM(order_items.unit_price * order_items.quantity), 0)").
		Joins("JOIN flowers ON flowers.id = order_items.flower_id").
		Joins("JOIN payments ON payments.order_id = order_items.order_id").
		Where("flowers.seller_id = ? AND payments.status = ?", sellerID, models.PaymentStatusPaid).
		Scan(&earned).Error
	if err != nil {
		return 0, fmt.Errorf("failed to compute earnings: %w", err)
	}

	var withdrawn float64
	err = s.db.Model(&models.WithdrawalRequest{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("seller_id = ? AND status IN ?", sellerID,
			[]models.WithdrawalStatus{models.WithdrawalStatusPending, models.WithdrawalStatusApproved}).
		Scan(&withdrawn).Error
	if err != nil {
		return 0, fmt.Errorf("failed to compute withdrawals: %w", err)
	}

	return earned - withdrawn, nil
}

func (s *AdminService) GetWithdrawals(status string, params utils.PaginationParams) ([]models.WithdrawalRequest, int64, error) {
	query := s.db.Model(&models.WithdrawalRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count withdrawals: %w", err)
	}

	var withdrawals []models.WithdrawalRequest
	query = utils.ApplyPagination(query, params)
	if err := query.Preload("Seller").Order("created_at ASC").Find(&withdrawals).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list withdrawals: %w", err)
	}

	return withdrawals, total, nil
}

// ProcessWithdrawal settles a pending withdrawal request.
func (s *AdminService) ProcessWithdrawal(adminID uuid.UUID, withdrawalID uuid.UUID, req *ProcessWithdrawalRequest) (*models.WithdrawalRequest, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var withdrawal models.WithdrawalRequest
	if err := s.db.First(&withdrawal, withdrawalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("withdrawal request %w", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if withdrawal.Status != models.WithdrawalStatusPending {
		return nil, fmt.Errorf("%w: withdrawal request is already processed", ErrConflict)
	}

	status := models.WithdrawalStatusRejected
	if req.Approve {
		status = models.WithdrawalStatusApproved
	}

	now := time.Now()
	if err := s.db.Model(&withdrawal).Updates(map[string]interface{}{
		"status":       status,
		"admin_note":   req.AdminNote,
		"processed_by": adminID,
		"processed_at": &now,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to process withdrawal: %w", err)
	}

	if s.notifier != nil {
		title := "Withdrawal approved"
		message := fmt.Sprintf("Your withdrawal of %.0f was approved", withdrawal.Amount)
		if !req.Approve {
			title = "Withdrawal rejected"
			message = fmt.Sprintf("Your withdrawal of %.0f was rejected: %s", withdrawal.Amount, req.AdminNote)
		}
		s.notifier.Enqueue(NotificationJob{
			UserID:    withdrawal.SellerID,
			Type:      models.NotificationTypeSystem,
			Title:     title,
			Message:   message,
			RelatedID: &withdrawal.ID,
			SendEmail: true,
		})
	}

	s.db.First(&withdrawal, withdrawal.ID)
	return &withdrawal, nil
}
