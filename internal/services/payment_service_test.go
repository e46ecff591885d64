// internal/services/payment_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/floramart/floramart-backend/internal/models"
)

type PaymentServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *PaymentService
	buyer   *models.User
	seller  *models.User
}

func (suite *PaymentServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.service = NewPaymentService(suite.db, newTestConfig(), nil, nil)
	suite.buyer = createTestUser(suite.T(), suite.db, models.UserRoleBuyer)
	suite.seller = createTestUser(suite.T(), suite.db, models.UserRoleSeller)
}

func (suite *PaymentServiceTestSuite) createOrder(method string, paymentStatus models.PaymentStatus) *models.Order {
	flower := createTestFlower(suite.T(), suite.db, suite.seller.ID, 20, 10)
	order := &models.Order{
		BuyerID:         suite.buyer.ID,
		RecipientName:   "Nguyen Van A",
		RecipientPhone:  "0901234567",
		ShippingAddress: "12 Nguyen Hue",
		Status:          models.OrderStatusPending,
		DeliveryStatus:  models.DeliveryPending,
		TotalAmount:     40,
		Items: []models.OrderItem{{
			FlowerID:   flower.ID,
			FlowerName: flower.Name,
			UnitPrice:  20,
			Quantity:   2,
		}},
	}
	suite.Require().NoError(suite.db.Create(order).Error)

	payment := &models.Payment{
		OrderID: order.ID,
		Amount:  40,
		Method:  method,
		Status:  paymentStatus,
	}
	if paymentStatus == models.PaymentStatusPaid {
		now := time.Now()
		payment.PaidAt = &now
	}
	suite.Require().NoError(suite.db.Create(payment).Error)
	return order
}

func (suite *PaymentServiceTestSuite) TestPayableOrderGating() {
	order := suite.createOrder("card", models.PaymentStatusPending)

	// Not the buyer's order.
	stranger := createTestUser(suite.T(), suite.db, models.UserRoleBuyer)
	_, _, err := suite.service.payableOrder(stranger.ID, order.ID)
	suite.ErrorIs(err, ErrForbidden)

	// Unknown order.
	_, _, err = suite.service.payableOrder(suite.buyer.ID, suite.buyer.ID)
	suite.ErrorIs(err, ErrNotFound)

	// Happy path hands back the pending payment.
	_, payment, err := suite.service.payableOrder(suite.buyer.ID, order.ID)
	suite.Require().NoError(err)
	suite.Equal(models.PaymentStatusPending, payment.Status)
}

func (suite *PaymentServiceTestSuite) TestAlreadyPaidOrderRejected() {
	order := suite.createOrder("card", models.PaymentStatusPaid)

	_, _, err := suite.service.payableOrder(suite.buyer.ID, order.ID)
	suite.ErrorIs(err, ErrConflict)
}

func (suite *PaymentServiceTestSuite) TestConfirmRequiresMatchingIntent() {
	order := suite.createOrder("card", models.PaymentStatusPending)
	suite.db.Model(&models.Payment{}).Where("order_id = ?", order.ID).
		Update("provider_payment_id", "pi_stored")

	err := suite.service.ConfirmPayment(suite.buyer.ID, &ConfirmPaymentRequest{
		OrderID:         order.ID,
		PaymentIntentID: "pi_other",
	})
	suite.ErrorIs(err, ErrConflict)
}

func (suite *PaymentServiceTestSuite) TestRefundUnpaidRejected() {
	order := suite.createOrder("card", models.PaymentStatusPending)
	suite.ErrorIs(suite.service.RefundPayment(order.ID, "buyer request"), ErrConflict)
}

func (suite *PaymentServiceTestSuite) TestRefundCashOnDelivery() {
	// A cod payment never went through the card provider, so the refund
	// is a pure bookkeeping change.
	order := suite.createOrder("cod", models.PaymentStatusPaid)

	suite.Require().NoError(suite.service.RefundPayment(order.ID, "damaged on arrival"))

	var payment models.Payment
	suite.db.First(&payment, "order_id = ?", order.ID)
	suite.Equal(models.PaymentStatusRefunded, payment.Status)

	// A second refund finds nothing paid.
	suite.ErrorIs(suite.service.RefundPayment(order.ID, "again"), ErrConflict)
}

func TestPaymentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}
