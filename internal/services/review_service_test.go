// internal/services/review_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/floramart/floramart-backend/internal/models"
)

type ReviewServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *ReviewService
	buyer   *models.User
	seller  *models.User
	flower  *models.Flower
	order   *models.Order
}

func (suite *ReviewServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.service = NewReviewService(suite.db, nil)
	suite.buyer = createTestUser(suite.T(), suite.db, models.UserRoleBuyer)
	suite.seller = createTestUser(suite.T(), suite.db, models.UserRoleSeller)
	suite.flower = createTestFlower(suite.T(), suite.db, suite.seller.ID, 20, 5)
	suite.order = suite.createOrder(models.OrderStatusCompleted)
}

func (suite *ReviewServiceTestSuite) createOrder(status models.OrderStatus) *models.Order {
	order := &models.Order{
		BuyerID:         suite.buyer.ID,
		RecipientName:   "Nguyen Van A",
		RecipientPhone:  "0901234567",
		ShippingAddress: "12 Nguyen Hue",
		Status:          status,
		DeliveryStatus:  models.DeliveryDelivered,
		TotalAmount:     40,
		Items: []models.OrderItem{{
			FlowerID:   suite.flower.ID,
			FlowerName: suite.flower.Name,
			UnitPrice:  20,
			Quantity:   2,
		}},
	}
	suite.Require().NoError(suite.db.Create(order).Error)
	return order
}

func (suite *ReviewServiceTestSuite) TestCreateReviewUpdatesAggregate() {
	review, err := suite.service.CreateReview(suite.buyer.ID, &CreateReviewRequest{
		OrderID:  suite.order.ID,
		FlowerID: suite.flower.ID,
		Rating:   4,
		Comment:  "Lovely arrangement",
	})
	suite.Require().NoError(err)
	suite.Equal(4, review.Rating)

	var flower models.Flower
	suite.db.First(&flower, suite.flower.ID)
	suite.Equal(4.0, flower.Rating)
	suite.Equal(int64(1), flower.ReviewCount)
}

func (suite *ReviewServiceTestSuite) TestAggregateAveragesAcrossOrders() {
	_, err := suite.service.CreateReview(suite.buyer.ID, &CreateReviewRequest{
		OrderID:  suite.order.ID,
		FlowerID: suite.flower.ID,
		Rating:   5,
	})
	suite.Require().NoError(err)

	second := suite.createOrder(models.OrderStatusCompleted)
	_, err = suite.service.CreateReview(suite.buyer.ID, &CreateReviewRequest{
		OrderID:  second.ID,
		FlowerID: suite.flower.ID,
		Rating:   2,
	})
	suite.Require().NoError(err)

	var flower models.Flower
	suite.db.First(&flower, suite.flower.ID)
	suite.Equal(3.5, flower.Rating)
	suite.Equal(int64(2), flower.ReviewCount)
}

func (suite *ReviewServiceTestSuite) TestReviewRequiresCompletedOrder() {
	pending := suite.createOrder(models.OrderStatusPending)

	_, err := suite.service.CreateReview(suite.buyer.ID, &CreateReviewRequest{
		OrderID:  pending.ID,
		FlowerID: suite.flower.ID,
		Rating:   5,
	})
	suite.ErrorIs(err, ErrConflict)
}

func (suite *ReviewServiceTestSuite) TestReviewRequiresOwnOrder() {
	stranger := createTestUser(suite.T(), suite.db, models.UserRoleBuyer)

	_, err := suite.service.CreateReview(stranger.ID, &CreateReviewRequest{
		OrderID:  suite.order.ID,
		FlowerID: suite.flower.ID,
		Rating:   5,
	})
	suite.ErrorIs(err, ErrForbidden)
}

func (suite *ReviewServiceTestSuite) TestReviewRequiresFlowerInOrder() {
	otherFlower := createTestFlower(suite.T(), suite.db, suite.seller.ID, 30, 3)

	_, err := suite.service.CreateReview(suite.buyer.ID, &CreateReviewRequest{
		OrderID:  suite.order.ID,
		FlowerID: otherFlower.ID,
		Rating:   5,
	})
	suite.ErrorIs(err, ErrConflict)
}

func (suite *ReviewServiceTestSuite) TestDuplicateReviewRejected() {
	_, err := suite.service.CreateReview(suite.buyer.ID, &CreateReviewRequest{
		OrderID:  suite.order.ID,
		FlowerID: suite.flower.ID,
		Rating:   5,
	})
	suite.Require().NoError(err)

	_, err = suite.service.CreateReview(suite.buyer.ID, &CreateReviewRequest{
		OrderID:  suite.order.ID,
		FlowerID: suite.flower.ID,
		Rating:   1,
	})
	suite.ErrorIs(err, ErrConflict)
}

func (suite *ReviewServiceTestSuite) TestDeleteReviewRecomputesAggregate() {
	review, err := suite.service.CreateReview(suite.buyer.ID, &CreateReviewRequest{
		OrderID:  suite.order.ID,
		FlowerID: suite.flower.ID,
		Rating:   5,
	})
	suite.Require().NoError(err)

	stranger := createTestUser(suite.T(), suite.db, models.UserRoleBuyer)
	suite.ErrorIs(suite.service.DeleteReview(stranger.ID, string(models.UserRoleBuyer), review.ID), ErrForbidden)

	suite.Require().NoError(suite.service.DeleteReview(suite.buyer.ID, string(models.UserRoleBuyer), review.ID))

	var flower models.Flower
	suite.db.First(&flower, suite.flower.ID)
	suite.Zero(flower.Rating)
	suite.Zero(flower.ReviewCount)
}

func TestReviewServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReviewServiceTestSuite))
}
