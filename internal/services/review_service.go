// internal/services/review_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/floramart/floramart-backend/internal/models"
	"github.com/floramart/floramart-backend/internal/utils"
)

type ReviewService struct {
	db       *gorm.DB
	notifier *NotificationService
}

type CreateReviewRequest struct {
	OrderID  uuid.UUID `json:"order_id" validate:"required"`
	FlowerID uuid.UUID `json:"flower_id" validate:"required"`
	Rating   int       `json:"rating" validate:"required,min=1,max=5"`
	Comment  string    `json:"comment" validate:"max=1000"`
}

type ReviewListParams struct {
	utils.PaginationParams
}

func NewReviewService(db *gorm.DB, notifier *NotificationService) *ReviewService {
	return &ReviewService{db: db, notifier: notifier}
}

// CreateReview records a buyer's review of a flower they received. One
// review per (order, flower) pair; the order must be completed and must
// actually contain the flower.
func (s *ReviewService) CreateReview(buyerID uuid.UUID, req *CreateReviewRequest) (*models.Review, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var order models.Order
	if err := s.db.First(&order, req.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %w", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if order.BuyerID != buyerID {
		return nil, fmt.Errorf("%w: not your order", ErrForbidden)
	}
	if order.Status != models.OrderStatusCompleted {
		return nil, fmt.Errorf("%w: order is not completed yet", ErrConflict)
	}

	var itemCount int64
	if err := s.db.Model(&models.OrderItem{}).
		Where("order_id = ? AND flower_id = ?", req.OrderID, req.FlowerID).
		Count(&itemCount).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if itemCount == 0 {
		return nil, fmt.Errorf("%w: flower is not part of this order", ErrConflict)
	}

	review := models.Review{
		BuyerID:  buyerID,
		OrderID:  req.OrderID,
		FlowerID: req.FlowerID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: you already reviewed this flower for this order", ErrConflict)
			}
			return fmt.Errorf("failed to create review: %w", err)
		}
		return s.refreshFlowerRating(tx, req.FlowerID)
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		var flower models.Flower
		if err := s.db.First(&flower, req.FlowerID).Error; err == nil {
			s.notifier.Enqueue(NotificationJob{
				UserID:    flower.SellerID,
				Type:      models.NotificationTypeReview,
				Title:     "New review",
				Message:   fmt.Sprintf("%s received a %d-star review", flower.Name, req.Rating),
				RelatedID: &review.ID,
			})
		}
	}

	s.db.Preload("Buyer").First(&review, review.ID)
	return &review, nil
}

// refreshFlowerRating recomputes the flower's aggregate from its reviews.
func (s *ReviewService) refreshFlowerRating(tx *gorm.DB, flowerID uuid.UUID) error {
	var agg struct {
		Avg   float64
		Count int64
	}
	if err := tx.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("flower_id = ?", flowerID).
		Scan(&agg).Error; err != nil {
		return fmt.Errorf("failed to aggregate reviews: %w", err)
	}

	if err := tx.Model(&models.Flower{}).
		Where("id = ?", flowerID).
		Updates(map[string]interface{}{
			"rating":       agg.Avg,
			"review_count": agg.Count,
		}).Error; err != nil {
		return fmt.Errorf("failed to update flower rating: %w", err)
	}
	return nil
}

func (s *ReviewService) GetFlowerReviews(flowerID uuid.UUID, params *ReviewListParams) ([]models.Review, int64, error) {
	query := s.db.Model(&models.Review{}).Where("flower_id = ?", flowerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	var reviews []models.Review
	query = utils.ApplyPagination(query, params.PaginationParams)
	if err := query.Preload("Buyer").
		Order("created_at DESC").Find(&reviews).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}

	return reviews, total, nil
}

// DeleteReview removes the buyer's own review and recomputes the
// flower's aggregate.
func (s *ReviewService) DeleteReview(userID uuid.UUID, role string, reviewID uuid.UUID) error {
	var review models.Review
	if err := s.db.First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("review %w", ErrNotFound)
		}
		return fmt.Errorf("database error: %w", err)
	}

	if review.BuyerID != userID && role != string(models.UserRoleAdmin) {
		return fmt.Errorf("%w: not your review", ErrForbidden)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Delete(&review).Error; err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}
		return s.refreshFlowerRating(tx, review.FlowerID)
	})
}
