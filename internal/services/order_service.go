// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/floramart/floramart-backend/internal/config"
	"github.com/floramart/floramart-backend/internal/models"
	"github.com/floramart/floramart-backend/internal/utils"
)

type OrderService struct {
	db              *gorm.DB
	config          *config.Config
	shippingService *ShippingService
	notifier        *NotificationService
}

type CheckoutItemInput struct {
	FlowerID uuid.UUID `json:"flower_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,min=1"`
}

type CheckoutRequest struct {
	// Items may be omitted, in which case the buyer's active cart lines
	// are checked out.
	Items            []CheckoutItemInput `json:"items,omitempty" validate:"omitempty,dive"`
	RecipientName    string              `json:"recipient_name" form:"recipient_name" validate:"required,min=2,max=100"`
	RecipientPhone   string              `json:"recipient_phone" form:"recipient_phone" validate:"required,min=8,max=20"`
	ShippingAddress  string              `json:"shipping_address" form:"shipping_address" validate:"required,min=5,max=255"`
	ShippingDistrict int                 `json:"shipping_district" form:"shipping_district" validate:"required"`
	ShippingWard     string              `json:"shipping_ward" form:"shipping_ward" validate:"required"`
	PaymentMethod    string              `json:"payment_method" form:"payment_method" validate:"required,oneof=cod card"`
}

// checkoutLine is a resolved order line: either a submitted item or an
// active cart line, with the unit price the buyer will be charged.
type checkoutLine struct {
	FlowerID  uuid.UUID
	Quantity  int
	UnitPrice float64
	HasPrice  bool
}

// resolveCheckoutLines merges the submitted items with the active cart.
// Explicit items win when present; a matching cart line lends its
// seller-set price so bespoke quotes survive checkout. With no items
// the whole cart is ordered as-is.
func resolveCheckoutLines(items []CheckoutItemInput, cart *models.Cart) []checkoutLine {
	if len(items) == 0 {
		if cart == nil {
			return nil
		}
		lines := make([]checkoutLine, 0, len(cart.Items))
		for _, item := range cart.Items {
			lines = append(lines, checkoutLine{
				FlowerID:  item.FlowerID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				HasPrice:  true,
			})
		}
		return lines
	}

	cartPrices := make(map[uuid.UUID]float64)
	if cart != nil {
		for _, item := range cart.Items {
			cartPrices[item.FlowerID] = item.UnitPrice
		}
	}
	lines := make([]checkoutLine, 0, len(items))
	for _, in := range items {
		line := checkoutLine{FlowerID: in.FlowerID, Quantity: in.Quantity}
		if price, ok := cartPrices[in.FlowerID]; ok {
			line.UnitPrice = price
			line.HasPrice = true
		}
		lines = append(lines, line)
	}
	return lines
}

type UpdateDeliveryStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type OrderSearchParams struct {
	utils.PaginationParams
	Status string `form:"status"`
}

func NewOrderService(db *gorm.DB, cfg *config.Config, shipping *ShippingService, notifier *NotificationService) *OrderService {
	return &OrderService{
		db:              db,
		config:          cfg,
		shippingService: shipping,
		notifier:        notifier,
	}
}

// Checkout converts the buyer's active cart into a single order. Stock
// is claimed with a conditional decrement inside the transaction, so two
// buyers racing over the last unit cannot both succeed; the loser's
// transaction rolls back with nothing persisted.
func (s *OrderService) Checkout(buyerID uuid.UUID, req *CheckoutRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// The active cart is loaded even when explicit items are submitted:
	// its lines carry seller-set custom prices, and it gets retired on
	// success either way.
	var cart *models.Cart
	var found models.Cart
	err := s.db.Preload("Items", "deleted_at IS NULL").Preload("Items.Flower").
		Where("user_id = ? AND status = ?", buyerID, models.CartStatusActive).
		First(&found).Error
	switch {
	case err == nil:
		cart = &found
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, fmt.Errorf("database error: %w", err)
	}

	lines := resolveCheckoutLines(req.Items, cart)
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrConflict)
	}

	var order models.Order
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var total float64
		orderItems := make([]models.OrderItem, 0, len(lines))

		for _, line := range lines {
			// Claim stock atomically; zero rows affected means the
			// flower is gone or the remaining quantity is too low.
			result := tx.Model(&models.Flower{}).
				Where("id = ? AND status = ? AND quantity >= ?",
					line.FlowerID, models.FlowerStatusAvailable, line.Quantity).
				Update("quantity", gorm.Expr("quantity - ?", line.Quantity))
			if result.Error != nil {
				return fmt.Errorf("failed to claim stock: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				var flower models.Flower
				if err := tx.First(&flower, line.FlowerID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("flower %w", ErrNotFound)
					}
					return fmt.Errorf("database error: %w", err)
				}
				return fmt.Errorf("%w: %s has only %d in stock", ErrConflict, flower.Name, flower.Quantity)
			}

			if err := tx.Model(&models.Flower{}).
				Where("id = ? AND quantity = 0", line.FlowerID).
				Update("status", models.FlowerStatusSoldOut).Error; err != nil {
				return fmt.Errorf("failed to mark sold out: %w", err)
			}

			var flower models.Flower
			if err := tx.First(&flower, line.FlowerID).Error; err != nil {
				return fmt.Errorf("database error: %w", err)
			}
			unitPrice := line.UnitPrice
			if !line.HasPrice {
				// The price never comes from the client; submitted
				// items are charged at the live catalog price.
				unitPrice = flower.Price
			}

			total += unitPrice * float64(line.Quantity)
			orderItems = append(orderItems, models.OrderItem{
				FlowerID:   line.FlowerID,
				FlowerName: flower.Name,
				UnitPrice:  unitPrice,
				Quantity:   line.Quantity,
			})
		}

		order = models.Order{
			BuyerID:          buyerID,
			RecipientName:    req.RecipientName,
			RecipientPhone:   req.RecipientPhone,
			ShippingAddress:  req.ShippingAddress,
			ShippingDistrict: req.ShippingDistrict,
			ShippingWardCode: req.ShippingWard,
			Status:           models.OrderStatusPending,
			DeliveryStatus:   models.DeliveryPending,
			TotalAmount:      total,
			Items:            orderItems,
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		payment := models.Payment{
			OrderID: order.ID,
			Amount:  total,
			Method:  req.PaymentMethod,
			Status:  models.PaymentStatusPending,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}

		// A full-cart checkout retires the cart so the buyer starts
		// fresh. Explicit items only consume their matching lines; any
		// unbought lines stay on the still-active cart.
		if cart != nil {
			if len(req.Items) == 0 {
				if err := tx.Model(&models.Cart{}).
					Where("id = ? AND status = ?", cart.ID, models.CartStatusActive).
					Update("status", models.CartStatusCheckedOut).Error; err != nil {
					return fmt.Errorf("failed to retire cart: %w", err)
				}
			} else {
				purchased := make([]uuid.UUID, 0, len(lines))
				for _, line := range lines {
					purchased = append(purchased, line.FlowerID)
				}
				if err := tx.Where("cart_id = ? AND flower_id IN ?", cart.ID, purchased).
					Delete(&models.CartItem{}).Error; err != nil {
					return fmt.Errorf("failed to clear cart lines: %w", err)
				}
			}
		}

		for _, line := range lines {
			if err := tx.Model(&models.Flower{}).
				Where("id = ?", line.FlowerID).
				Update("sales_count", gorm.Expr("sales_count + ?", line.Quantity)).Error; err != nil {
				return fmt.Errorf("failed to update sales count: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Side effects stay outside the transaction; a lost notification
	// never voids a committed order.
	if s.notifier != nil {
		s.notifier.Enqueue(NotificationJob{
			UserID:    buyerID,
			Type:      models.NotificationTypeOrder,
			Title:     "Order placed",
			Message:   fmt.Sprintf("Your order for %d item(s) has been placed", len(lines)),
			RelatedID: &order.ID,
		})
		s.notifySellers(&order)
	}

	s.db.Preload("Items").Preload("Items.Flower").Preload("Payment").First(&order, order.ID)
	return &order, nil
}

func (s *OrderService) notifySellers(order *models.Order) {
	var sellerIDs []uuid.UUID
	if err := s.db.Model(&models.Flower{}).
		Distinct("seller_id").
		Where("id IN (?)", s.db.Model(&models.OrderItem{}).Select("flower_id").Where("order_id = ?", order.ID)).
		Pluck("seller_id", &sellerIDs).Error; err != nil {
		logrus.WithError(err).Warn("Failed to resolve sellers for order notification")
		return
	}
	for _, sellerID := range sellerIDs {
		s.notifier.Enqueue(NotificationJob{
			UserID:    sellerID,
			Type:      models.NotificationTypeOrder,
			Title:     "New order received",
			Message:   "A buyer has placed an order containing your flowers",
			RelatedID: &order.ID,
		})
	}
}

func (s *OrderService) GetOrder(userID uuid.UUID, role string, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Items").Preload("Items.Flower").Preload("Payment").Preload("Buyer").
		First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %w", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !s.canViewOrder(userID, role, &order) {
		return nil, fmt.Errorf("%w: not your order", ErrForbidden)
	}

	return &order, nil
}

func (s *OrderService) GetBuyerOrders(buyerID uuid.UUID, params *OrderSearchParams) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{}).Where("buyer_id = ?", buyerID)
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []models.Order
	query = utils.ApplyPagination(query, params.PaginationParams)
	if err := query.Preload("Items").Preload("Payment").
		Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, total, nil
}

// GetSellerOrders lists orders that contain at least one of the seller's
// flowers.
func (s *OrderService) GetSellerOrders(sellerID uuid.UUID, params *OrderSearchParams) ([]models.Order, int64, error) {
	sub := s.db.Model(&models.OrderItem{}).
		Select("DISTINCT order_items.order_id").
		Joins("JOIN flowers ON flowers.id = order_items.flower_id").
		Where("flowers.seller_id = ?", sellerID)

	query := s.db.Model(&models.Order{}).Where("id IN (?)", sub)
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []models.Order
	query = utils.ApplyPagination(query, params.PaginationParams)
	if err := query.Preload("Items").Preload("Items.Flower").
		Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, total, nil
}

// GetAllOrders lists every order for the admin views.
func (s *OrderService) GetAllOrders(params *OrderSearchParams) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{})
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []models.Order
	query = utils.ApplyPagination(query, params.PaginationParams)
	if err := query.Preload("Items").Preload("Payment").Preload("Buyer").
		Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, total, nil
}

// UpdateDeliveryStatus advances an order along the delivery lifecycle.
// Only sellers with an item in the order, or admins, may move it, and
// only along the allowed transitions.
func (s *OrderService) UpdateDeliveryStatus(actorID uuid.UUID, role string, orderID uuid.UUID, req *UpdateDeliveryStatusRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	target, err := models.ParseDeliveryStatus(req.Status)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var order models.Order
	if err := s.db.Preload("Items").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %w", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if role != string(models.UserRoleAdmin) {
		hasItem, err := s.sellerHasItem(actorID, orderID)
		if err != nil {
			return nil, err
		}
		if !hasItem {
			return nil, fmt.Errorf("%w: no items of yours in this order", ErrForbidden)
		}
	}

	if !order.DeliveryStatus.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: cannot move delivery from %s to %s", ErrConflict, order.DeliveryStatus, target)
	}

	updates := map[string]interface{}{"delivery_status": target}
	switch target {
	case models.DeliveryDelivered:
		updates["status"] = models.OrderStatusCompleted
	case models.DeliveryCancelled:
		updates["status"] = models.OrderStatusCancelled
	}

	if err := s.db.Model(&order).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update delivery status: %w", err)
	}

	if target == models.DeliveryCancelled {
		s.restock(&order)
	}

	if s.notifier != nil {
		s.notifier.Enqueue(NotificationJob{
			UserID:    order.BuyerID,
			Type:      models.NotificationTypeOrder,
			Title:     "Delivery update",
			Message:   fmt.Sprintf("Your order is now %s", target),
			RelatedID: &order.ID,
		})
	}

	s.db.Preload("Items").Preload("Payment").First(&order, order.ID)
	return &order, nil
}

// restock returns claimed stock after a cancellation and reopens flowers
// that sold out because of this order.
func (s *OrderService) restock(order *models.Order) {
	for _, item := range order.Items {
		if err := s.db.Model(&models.Flower{}).
			Where("id = ?", item.FlowerID).
			Updates(map[string]interface{}{
				"quantity":    gorm.Expr("quantity + ?", item.Quantity),
				"status":      models.FlowerStatusAvailable,
				"sales_count": gorm.Expr("sales_count - ?", item.Quantity),
			}).Error; err != nil {
			logrus.WithError(err).WithField("flower_id", item.FlowerID).
				Warn("Failed to restock after cancellation")
		}
	}
}

func (s *OrderService) sellerHasItem(sellerID uuid.UUID, orderID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.OrderItem{}).
		Joins("JOIN flowers ON flowers.id = order_items.flower_id").
		Where("order_items.order_id = ? AND flowers.seller_id = ?", orderID, sellerID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}
	return count > 0, nil
}

func (s *OrderService) canViewOrder(userID uuid.UUID, role string, order *models.Order) bool {
	if role == string(models.UserRoleAdmin) || order.BuyerID == userID {
		return true
	}
	hasItem, err := s.sellerHasItem(userID, order.ID)
	if err != nil {
		return false
	}
	return hasItem
}

// AttachShippingOrder registers the order with the courier and stores
// the returned tracking code. Courier failures do not fail the order.
func (s *OrderService) AttachShippingOrder(orderID uuid.UUID) {
	var order models.Order
	if err := s.db.Preload("Items").First(&order, orderID).Error; err != nil {
		logrus.WithError(err).Warn("Failed to load order for courier registration")
		return
	}

	code, err := s.shippingService.CreateShippingOrder(&order)
	if err != nil {
		logrus.WithError(err).WithField("order_id", orderID).
			Warn("Courier registration failed")
		return
	}

	if err := s.db.Model(&order).Update("shipping_order_code", code).Error; err != nil {
		logrus.WithError(err).Warn("Failed to store shipping order code")
	}
}
