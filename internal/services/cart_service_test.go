// internal/services/cart_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/floramart/floramart-backend/internal/models"
)

type CartServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *CartService
	buyer   *models.User
	seller  *models.User
}

func (suite *CartServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.service = NewCartService(suite.db)
	suite.buyer = createTestUser(suite.T(), suite.db, models.UserRoleBuyer)
	suite.seller = createTestUser(suite.T(), suite.db, models.UserRoleSeller)
}

func (suite *CartServiceTestSuite) TestGetOrCreateReturnsSameCart() {
	first, err := suite.service.GetOrCreateActiveCart(suite.buyer.ID)
	suite.Require().NoError(err)

	second, err := suite.service.GetOrCreateActiveCart(suite.buyer.ID)
	suite.Require().NoError(err)
	suite.Equal(first.ID, second.ID)

	var count int64
	suite.db.Model(&models.Cart{}).Where("user_id = ?", suite.buyer.ID).Count(&count)
	suite.Equal(int64(1), count)
}

func (suite *CartServiceTestSuite) TestAddItemMergesQuantity() {
	flower := createTestFlower(suite.T(), suite.db, suite.seller.ID, 20, 10)

	_, err := suite.service.AddItem(suite.buyer.ID, &AddItemRequest{FlowerID: flower.ID, Quantity: 2})
	suite.Require().NoError(err)

	item, err := suite.service.AddItem(suite.buyer.ID, &AddItemRequest{FlowerID: flower.ID, Quantity: 3})
	suite.Require().NoError(err)
	suite.Equal(5, item.Quantity)

	cart, err := suite.service.GetOrCreateActiveCart(suite.buyer.ID)
	suite.Require().NoError(err)
	suite.Len(cart.Items, 1)
}

func (suite *CartServiceTestSuite) TestAddItemRejectsOverStock() {
	flower := createTestFlower(suite.T(), suite.db, suite.seller.ID, 20, 3)

	_, err := suite.service.AddItem(suite.buyer.ID, &AddItemRequest{FlowerID: flower.ID, Quantity: 5})
	suite.ErrorIs(err, ErrConflict)

	_, err = suite.service.AddItem(suite.buyer.ID, &AddItemRequest{FlowerID: flower.ID, Quantity: 2})
	suite.Require().NoError(err)

	// Merging beyond the remaining stock fails too.
	_, err = suite.service.AddItem(suite.buyer.ID, &AddItemRequest{FlowerID: flower.ID, Quantity: 2})
	suite.ErrorIs(err, ErrConflict)
}

func (suite *CartServiceTestSuite) TestAddItemRejectsUnavailableFlower() {
	flower := createTestFlower(suite.T(), suite.db, suite.seller.ID, 20, 5)
	suite.db.Model(flower).Update("status", models.FlowerStatusSuspended)

	_, err := suite.service.AddItem(suite.buyer.ID, &AddItemRequest{FlowerID: flower.ID, Quantity: 1})
	suite.ErrorIs(err, ErrConflict)
}

func (suite *CartServiceTestSuite) TestCustomItemSellerGate() {
	flower := createTestFlower(suite.T(), suite.db, suite.seller.ID, 20, 5)
	stranger := createTestUser(suite.T(), suite.db, models.UserRoleSeller)

	// Only the flower's registered seller may write onto the buyer's cart.
	_, err := suite.service.AddCustomItem(stranger.ID, &AddCustomItemRequest{
		BuyerID:  suite.buyer.ID,
		FlowerID: flower.ID,
		Quantity: 1,
		Price:    99,
	})
	suite.ErrorIs(err, ErrForbidden)

	item, err := suite.service.AddCustomItem(suite.seller.ID, &AddCustomItemRequest{
		BuyerID:  suite.buyer.ID,
		FlowerID: flower.ID,
		Quantity: 1,
		Price:    99,
	})
	suite.Require().NoError(err)
	suite.True(item.IsCustom)
	suite.Equal(99.0, item.UnitPrice)

	cart, err := suite.service.GetOrCreateActiveCart(suite.buyer.ID)
	suite.Require().NoError(err)
	suite.Len(cart.Items, 1)
}

func (suite *CartServiceTestSuite) TestCustomItemsNeverMerge() {
	flower := createTestFlower(suite.T(), suite.db, suite.seller.ID, 20, 5)

	for i := 0; i < 2; i++ {
		_, err := suite.service.AddCustomItem(suite.seller.ID, &AddCustomItemRequest{
			BuyerID:  suite.buyer.ID,
			FlowerID: flower.ID,
			Quantity: 1,
			Price:    50,
		})
		suite.Require().NoError(err)
	}

	cart, err := suite.service.GetOrCreateActiveCart(suite.buyer.ID)
	suite.Require().NoError(err)
	suite.Len(cart.Items, 2)
}

func (suite *CartServiceTestSuite) TestUpdateQuantityRevalidatesStock() {
	flower := createTestFlower(suite.T(), suite.db, suite.seller.ID, 20, 5)

	item, err := suite.service.AddItem(suite.buyer.ID, &AddItemRequest{FlowerID: flower.ID, Quantity: 2})
	suite.Require().NoError(err)

	_, err = suite.service.UpdateQuantity(suite.buyer.ID, item.ID, &UpdateQuantityRequest{Quantity: 9})
	suite.ErrorIs(err, ErrConflict)

	updated, err := suite.service.UpdateQuantity(suite.buyer.ID, item.ID, &UpdateQuantityRequest{Quantity: 4})
	suite.Require().NoError(err)
	suite.Equal(4, updated.Quantity)
}

func (suite *CartServiceTestSuite) TestOwnershipEnforced() {
	flower := createTestFlower(suite.T(), suite.db, suite.seller.ID, 20, 5)
	other := createTestUser(suite.T(), suite.db, models.UserRoleBuyer)

	item, err := suite.service.AddItem(suite.buyer.ID, &AddItemRequest{FlowerID: flower.ID, Quantity: 1})
	suite.Require().NoError(err)

	_, err = suite.service.UpdateQuantity(other.ID, item.ID, &UpdateQuantityRequest{Quantity: 2})
	suite.ErrorIs(err, ErrForbidden)

	err = suite.service.RemoveItem(other.ID, item.ID)
	suite.ErrorIs(err, ErrForbidden)

	suite.Require().NoError(suite.service.RemoveItem(suite.buyer.ID, item.ID))

	cart, err := suite.service.GetOrCreateActiveCart(suite.buyer.ID)
	suite.Require().NoError(err)
	suite.Empty(cart.Items)
}

func TestCartServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CartServiceTestSuite))
}
