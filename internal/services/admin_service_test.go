// internal/services/admin_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/floramart/floramart-backend/internal/models"
)

type AdminServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *AdminService
	admin   *models.User
	seller  *models.User
	buyer   *models.User
}

func (suite *AdminServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.service = NewAdminService(suite.db, nil)
	suite.admin = createTestUser(suite.T(), suite.db, models.UserRoleAdmin)
	suite.seller = createTestUser(suite.T(), suite.db, models.UserRoleSeller)
	suite.buyer = createTestUser(suite.T(), suite.db, models.UserRoleBuyer)
}

// createPaidSale writes an order with one item of the seller's flower
// and a paid payment, bypassing the checkout path.
func (suite *AdminServiceTestSuite) createPaidSale(unitPrice float64, quantity int) {
	flower := createTestFlower(suite.T(), suite.db, suite.seller.ID, unitPrice, 100)
	order := &models.Order{
		BuyerID:         suite.buyer.ID,
		RecipientName:   "Nguyen Van A",
		RecipientPhone:  "0901234567",
		ShippingAddress: "12 Nguyen Hue",
		Status:          models.OrderStatusConfirmed,
		DeliveryStatus:  models.DeliveryPending,
		TotalAmount:     unitPrice * float64(quantity),
		Items: []models.OrderItem{{
			FlowerID:   flower.ID,
			FlowerName: flower.Name,
			UnitPrice:  unitPrice,
			Quantity:   quantity,
		}},
	}
	suite.Require().NoError(suite.db.Create(order).Error)

	now := time.Now()
	payment := &models.Payment{
		OrderID: order.ID,
		Amount:  order.TotalAmount,
		Method:  "card",
		Status:  models.PaymentStatusPaid,
		PaidAt:  &now,
	}
	suite.Require().NoError(suite.db.Create(payment).Error)
}

func (suite *AdminServiceTestSuite) TestSellerBalance() {
	suite.createPaidSale(20, 3)
	suite.createPaidSale(50, 1)

	balance, err := suite.service.SellerBalance(suite.seller.ID)
	suite.Require().NoError(err)
	suite.Equal(110.0, balance)

	// A pending withdrawal is held against the balance.
	_, err = suite.service.RequestWithdrawal(suite.seller.ID, &WithdrawalRequestInput{
		Amount:      60,
		BankAccount: "0123456789 VCB",
	})
	suite.Require().NoError(err)

	balance, err = suite.service.SellerBalance(suite.seller.ID)
	suite.Require().NoError(err)
	suite.Equal(50.0, balance)
}

func (suite *AdminServiceTestSuite) TestWithdrawalExceedingBalanceRejected() {
	suite.createPaidSale(20, 1)

	_, err := suite.service.RequestWithdrawal(suite.seller.ID, &WithdrawalRequestInput{
		Amount:      500,
		BankAccount: "0123456789 VCB",
	})
	suite.ErrorIs(err, ErrConflict)
}

func (suite *AdminServiceTestSuite) TestProcessWithdrawalOnce() {
	suite.createPaidSale(100, 1)

	withdrawal, err := suite.service.RequestWithdrawal(suite.seller.ID, &WithdrawalRequestInput{
		Amount:      80,
		BankAccount: "0123456789 VCB",
	})
	suite.Require().NoError(err)

	processed, err := suite.service.ProcessWithdrawal(suite.admin.ID, withdrawal.ID, &ProcessWithdrawalRequest{
		Approve:   true,
		AdminNote: "paid out",
	})
	suite.Require().NoError(err)
	suite.Equal(models.WithdrawalStatusApproved, processed.Status)
	suite.NotNil(processed.ProcessedAt)

	_, err = suite.service.ProcessWithdrawal(suite.admin.ID, withdrawal.ID, &ProcessWithdrawalRequest{Approve: false})
	suite.ErrorIs(err, ErrConflict)

	// An approved withdrawal stays held against the balance.
	balance, err := suite.service.SellerBalance(suite.seller.ID)
	suite.Require().NoError(err)
	suite.Equal(20.0, balance)
}

func (suite *AdminServiceTestSuite) TestRejectedWithdrawalReleasesBalance() {
	suite.createPaidSale(100, 1)

	withdrawal, err := suite.service.RequestWithdrawal(suite.seller.ID, &WithdrawalRequestInput{
		Amount:      80,
		BankAccount: "0123456789 VCB",
	})
	suite.Require().NoError(err)

	_, err = suite.service.ProcessWithdrawal(suite.admin.ID, withdrawal.ID, &ProcessWithdrawalRequest{
		Approve:   false,
		AdminNote: "bank account mismatch",
	})
	suite.Require().NoError(err)

	balance, err := suite.service.SellerBalance(suite.seller.ID)
	suite.Require().NoError(err)
	suite.Equal(100.0, balance)
}

func (suite *AdminServiceTestSuite) TestUpdateUserStatusSuspendsListings() {
	flower := createTestFlower(suite.T(), suite.db, suite.seller.ID, 20, 5)

	suite.Require().NoError(suite.service.UpdateUserStatus(suite.seller.ID, models.UserStatusSuspended, "spam listings"))

	var reloaded models.Flower
	suite.db.First(&reloaded, flower.ID)
	suite.Equal(models.FlowerStatusSuspended, reloaded.Status)

	// Same status again is a no-op, not an error.
	suite.NoError(suite.service.UpdateUserStatus(suite.seller.ID, models.UserStatusSuspended, "again"))
}

func (suite *AdminServiceTestSuite) TestAdminStatusImmutable() {
	suite.ErrorIs(suite.service.UpdateUserStatus(suite.admin.ID, models.UserStatusSuspended, "nope"), ErrForbidden)
}

func (suite *AdminServiceTestSuite) TestGetUsersFilters() {
	role := models.UserRoleSeller
	users, total, err := suite.service.GetUsers(AdminUserFilter{Role: &role})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Require().Len(users, 1)
	suite.Equal(suite.seller.ID, users[0].ID)
}

func (suite *AdminServiceTestSuite) TestDashboardStats() {
	suite.createPaidSale(20, 2)

	stats, err := suite.service.GetDashboardStats()
	suite.Require().NoError(err)
	suite.Equal(int64(3), stats.TotalUsers)
	suite.Equal(int64(1), stats.TotalSellers)
	suite.Equal(int64(1), stats.TotalOrders)
	suite.Equal(40.0, stats.TotalRevenue)
}

func TestAdminServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AdminServiceTestSuite))
}
