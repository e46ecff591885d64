// internal/services/cart_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/floramart/floramart-backend/internal/models"
	"github.com/floramart/floramart-backend/internal/utils"
)

type CartService struct {
	db *gorm.DB
}

type AddItemRequest struct {
	FlowerID uuid.UUID `json:"flower_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,min=1"`
}

// AddCustomItemRequest is a seller-priced bespoke line placed on the
// buyer's cart, outside the normal catalog flow.
type AddCustomItemRequest struct {
	BuyerID  uuid.UUID `json:"buyer_id" validate:"required"`
	FlowerID uuid.UUID `json:"flower_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,min=1"`
	Price    float64   `json:"price" validate:"required,min=0.01"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// GetOrCreateActiveCart returns the user's single active cart, creating
// it on first access. Two concurrent first-requests can both attempt the
// insert; the partial unique index on (user_id, status='active') makes
// one of them lose with a duplicate-key error, and the loser re-fetches.
func (s *CartService) GetOrCreateActiveCart(userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.Preload("Items", "deleted_at IS NULL").Preload("Items.Flower").
		Where("user_id = ? AND status = ?", userID, models.CartStatusActive).
		First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	cart = models.Cart{
		UserID: userID,
		Status: models.CartStatusActive,
	}
	if err := s.db.Create(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the lazy-create race; the other request's cart wins.
			if err := s.db.Preload("Items", "deleted_at IS NULL").Preload("Items.Flower").
				Where("user_id = ? AND status = ?", userID, models.CartStatusActive).
				First(&cart).Error; err != nil {
				return nil, fmt.Errorf("database error: %w", err)
			}
			return &cart, nil
		}
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	return &cart, nil
}

// AddItem adds a catalog line to the user's own cart, merging quantity
// into an existing non-custom line for the same flower.
func (s *CartService) AddItem(userID uuid.UUID, req *AddItemRequest) (*models.CartItem, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	flower, err := s.availableFlower(req.FlowerID)
	if err != nil {
		return nil, err
	}

	cart, err := s.GetOrCreateActiveCart(userID)
	if err != nil {
		return nil, err
	}

	var item models.CartItem
	err = s.db.Where("cart_id = ? AND flower_id = ? AND is_custom = ?", cart.ID, req.FlowerID, false).
		First(&item).Error
	switch {
	case err == nil:
		newQuantity := item.Quantity + req.Quantity
		if newQuantity > flower.Quantity {
			return nil, fmt.Errorf("%w: only %d in stock", ErrConflict, flower.Quantity)
		}
		item.Quantity = newQuantity
		if err := s.db.Save(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if req.Quantity > flower.Quantity {
			return nil, fmt.Errorf("%w: only %d in stock", ErrConflict, flower.Quantity)
		}
		item = models.CartItem{
			CartID:    cart.ID,
			FlowerID:  req.FlowerID,
			Quantity:  req.Quantity,
			UnitPrice: flower.Price,
			IsCustom:  false,
		}
		if err := s.db.Create(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to create cart item: %w", err)
		}
	default:
		return nil, fmt.Errorf("database error: %w", err)
	}

	s.db.Preload("Flower").First(&item, item.ID)
	return &item, nil
}

// AddCustomItem writes a seller-proposed line onto the BUYER's cart.
// This is the one sanctioned cross-owner cart write, gated by
// canWriteCustomLine rather than an identity check at the call site.
func (s *CartService) AddCustomItem(actorID uuid.UUID, req *AddCustomItemRequest) (*models.CartItem, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if req.BuyerID == actorID {
		return nil, errors.New("cannot propose a custom item to yourself")
	}

	var flower models.Flower
	if err := s.db.First(&flower, req.FlowerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("flower %w", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var buyer models.User
	if err := s.db.First(&buyer, req.BuyerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("buyer %w", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !canWriteCustomLine(actorID, &flower) {
		return nil, fmt.Errorf("%w: only the flower's registered seller may propose custom items", ErrForbidden)
	}

	cart, err := s.GetOrCreateActiveCart(req.BuyerID)
	if err != nil {
		return nil, err
	}

	// Custom lines never merge; each proposal is its own line.
	item := models.CartItem{
		CartID:    cart.ID,
		FlowerID:  req.FlowerID,
		Quantity:  req.Quantity,
		UnitPrice: req.Price,
		IsCustom:  true,
	}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to create custom cart item: %w", err)
	}

	s.db.Preload("Flower").First(&item, item.ID)
	return &item, nil
}

// canWriteCustomLine is the capability predicate for writing a line onto
// another user's cart: the actor must be the flower's registered seller.
func canWriteCustomLine(actorID uuid.UUID, flower *models.Flower) bool {
	return flower.SellerID == actorID
}

func (s *CartService) UpdateQuantity(userID uuid.UUID, itemID uuid.UUID, req *UpdateQuantityRequest) (*models.CartItem, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	item, err := s.ownedItem(userID, itemID)
	if err != nil {
		return nil, err
	}

	// Catalog lines re-validate against live stock; custom lines are
	// seller-priced and not stock-checked here.
	if !item.IsCustom {
		flower, err := s.availableFlower(item.FlowerID)
		if err != nil {
			return nil, err
		}
		if req.Quantity > flower.Quantity {
			return nil, fmt.Errorf("%w: only %d in stock", ErrConflict, flower.Quantity)
		}
	}

	item.Quantity = req.Quantity
	if err := s.db.Save(item).Error; err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	s.db.Preload("Flower").First(item, item.ID)
	return item, nil
}

func (s *CartService) RemoveItem(userID uuid.UUID, itemID uuid.UUID) error {
	item, err := s.ownedItem(userID, itemID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(item).Error; err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	return nil
}

func (s *CartService) ownedItem(userID uuid.UUID, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := s.db.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart item %w", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var cart models.Cart
	if err := s.db.First(&cart, item.CartID).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if cart.UserID != userID {
		return nil, fmt.Errorf("%w: not your cart", ErrForbidden)
	}
	if cart.Status != models.CartStatusActive {
		return nil, fmt.Errorf("%w: cart is no longer active", ErrConflict)
	}

	return &item, nil
}

func (s *CartService) availableFlower(flowerID uuid.UUID) (*models.Flower, error) {
	var flower models.Flower
	if err := s.db.First(&flower, flowerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("flower %w", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if flower.Status != models.FlowerStatusAvailable {
		return nil, fmt.Errorf("%w: flower is not available", ErrConflict)
	}

	return &flower, nil
}
