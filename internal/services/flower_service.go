// internal/services/flower_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/floramart/floramart-backend/internal/models"
	"github.com/floramart/floramart-backend/internal/utils"
)

type FlowerService struct {
	db *gorm.DB
}

type CreateFlowerRequest struct {
	CategoryID  uuid.UUID `json:"category_id" validate:"required"`
	Name        string    `json:"name" validate:"required,min=3,max=255"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price" validate:"required,min=0.01"`
	Quantity    int       `json:"quantity" validate:"min=0"`
	Images      []string  `json:"images,omitempty"`
}

type UpdateFlowerRequest struct {
	CategoryID  *uuid.UUID          `json:"category_id,omitempty"`
	Name        string              `json:"name,omitempty" validate:"omitempty,min=3,max=255"`
	Description string              `json:"description,omitempty"`
	Price       float64             `json:"price,omitempty" validate:"omitempty,min=0.01"`
	Quantity    *int                `json:"quantity,omitempty" validate:"omitempty,min=0"`
	Images      []string            `json:"images,omitempty"`
	Status      models.FlowerStatus `json:"status,omitempty"`
}

type FlowerSearchParams struct {
	utils.PaginationParams
	SellerID   *uuid.UUID `json:"seller_id,omitempty"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	PriceMin   *float64   `json:"price_min,omitempty"`
	PriceMax   *float64   `json:"price_max,omitempty"`
	InStock    *bool      `json:"in_stock,omitempty"`
	// IncludeHidden lists expired/hidden flowers too; only for a
	// seller browsing their own shop.
	IncludeHidden bool `json:"-"`
}

func NewFlowerService(db *gorm.DB) *FlowerService {
	return &FlowerService{db: db}
}

func (s *FlowerService) CreateFlower(sellerID uuid.UUID, req *CreateFlowerRequest) (*models.Flower, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var seller models.User
	if err := s.db.First(&seller, sellerID).Error; err != nil {
		return nil, fmt.Errorf("seller %w", ErrNotFound)
	}

	if seller.Status != models.UserStatusActive {
		return nil, errors.New("seller account is not active")
	}

	if seller.Role != models.UserRoleSeller && seller.Role != models.UserRoleAdmin {
		return nil, fmt.Errorf("%w: only sellers can list flowers", ErrForbidden)
	}

	var category models.Category
	if err := s.db.First(&category, req.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category %w", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	flower := &models.Flower{
		SellerID:    sellerID,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Status:      models.FlowerStatusAvailable,
		IsVisible:   true,
		ListedAt:    time.Now(),
		Images:      req.Images,
	}

	if err := s.db.Create(flower).Error; err != nil {
		return nil, fmt.Errorf("failed to create flower: %w", err)
	}

	s.db.Preload("Seller").Preload("Category").First(flower, flower.ID)

	return flower, nil
}

func (s *FlowerService) GetFlower(id uuid.UUID) (*models.Flower, error) {
	var flower models.Flower
	if err := s.db.Preload("Seller").Preload("Category").First(&flower, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("flower %w", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &flower, nil
}

func (s *FlowerService) UpdateFlower(id uuid.UUID, sellerID uuid.UUID, req *UpdateFlowerRequest) (*models.Flower, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var flower models.Flower
	if err := s.db.First(&flower, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("flower %w", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if flower.SellerID != sellerID {
		return nil, fmt.Errorf("%w: not the flower's seller", ErrForbidden)
	}

	// IsVisible is deliberately absent here: the expiry sweep is its
	// only writer.
	updates := make(map[string]interface{})
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Price > 0 {
		updates["price"] = req.Price
	}
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
	}
	if req.Images != nil {
		updates["images"] = req.Images
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}

	if err := s.db.Model(&flower).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update flower: %w", err)
	}

	s.db.Preload("Seller").Preload("Category").First(&flower, id)

	return &flower, nil
}

func (s *FlowerService) DeleteFlower(id uuid.UUID, sellerID uuid.UUID) error {
	var flower models.Flower
	if err := s.db.First(&flower, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("flower %w", ErrNotFound)
		}
		return fmt.Errorf("database error: %w", err)
	}

	if flower.SellerID != sellerID {
		return fmt.Errorf("%w: not the flower's seller", ErrForbidden)
	}

	// Soft delete; order item snapshots keep their own copies.
	if err := s.db.Delete(&flower).Error; err != nil {
		return fmt.Errorf("failed to delete flower: %w", err)
	}

	return nil
}

func (s *FlowerService) SearchFlowers(params FlowerSearchParams) ([]models.Flower, int64, error) {
	query := s.db.Model(&models.Flower{}).
		Preload("Seller").Preload("Category")

	if !params.IncludeHidden {
		query = query.Where("is_visible = ?", true).
			Where("status = ?", models.FlowerStatusAvailable)
	}

	if params.SellerID != nil {
		query = query.Where("seller_id = ?", *params.SellerID)
	}

	if params.CategoryID != nil {
		query = query.Where("category_id = ?", *params.CategoryID)
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	if params.PriceMin != nil {
		query = query.Where("price >= ?", *params.PriceMin)
	}

	if params.PriceMax != nil {
		query = query.Where("price <= ?", *params.PriceMax)
	}

	if params.InStock != nil && *params.InStock {
		query = query.Where("quantity > 0")
	}

	// Get total count
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count flowers: %w", err)
	}

	// Apply sorting and pagination
	allowedSortFields := []string{"created_at", "listed_at", "name", "price", "sales_count", "rating"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var flowers []models.Flower
	if err := query.Find(&flowers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch flowers: %w", err)
	}

	return flowers, total, nil
}

func (s *FlowerService) GetSellerFlowers(sellerID uuid.UUID, params utils.PaginationParams) ([]models.Flower, int64, error) {
	search := FlowerSearchParams{
		PaginationParams: params,
		SellerID:         &sellerID,
		IncludeHidden:    true,
	}
	return s.SearchFlowers(search)
}

func (s *FlowerService) GetCategories() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Order("name").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return categories, nil
}
