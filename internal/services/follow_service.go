// internal/services/follow_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/floramart/floramart-backend/internal/models"
)

type FollowService struct {
	db       *gorm.DB
	notifier *NotificationService
}

func NewFollowService(db *gorm.DB, notifier *NotificationService) *FollowService {
	return &FollowService{db: db, notifier: notifier}
}

// Follow subscribes the user to a seller. Following twice is a no-op.
func (s *FollowService) Follow(followerID uuid.UUID, sellerID uuid.UUID) error {
	if followerID == sellerID {
		return errors.New("cannot follow yourself")
	}

	var seller models.User
	if err := s.db.First(&seller, sellerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("seller %w", ErrNotFound)
		}
		return fmt.Errorf("database error: %w", err)
	}
	if seller.Role != models.UserRoleSeller {
		return fmt.Errorf("%w: can only follow sellers", ErrConflict)
	}

	follow := models.SellerFollow{
		FollowerID: followerID,
		SellerID:   sellerID,
	}
	if err := s.db.Create(&follow).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return fmt.Errorf("failed to follow seller: %w", err)
	}

	if s.notifier != nil {
		var follower models.User
		if err := s.db.First(&follower, followerID).Error; err == nil {
			s.notifier.Enqueue(NotificationJob{
				UserID:    sellerID,
				Type:      models.NotificationTypeFollow,
				Title:     "New follower",
				Message:   fmt.Sprintf("%s started following your shop", follower.Username),
				RelatedID: &followerID,
			})
		}
	}

	return nil
}

// Unfollow removes the edge outright so a later re-follow does not
// collide with a soft-deleted row on the unique pair index.
func (s *FollowService) Unfollow(followerID uuid.UUID, sellerID uuid.UUID) error {
	result := s.db.Unscoped().
		Where("follower_id = ? AND seller_id = ?", followerID, sellerID).
		Delete(&models.SellerFollow{})
	if result.Error != nil {
		return fmt.Errorf("failed to unfollow seller: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("follow %w", ErrNotFound)
	}
	return nil
}

func (s *FollowService) IsFollowing(followerID uuid.UUID, sellerID uuid.UUID) (bool, error) {
	var count int64
	if err := s.db.Model(&models.SellerFollow{}).
		Where("follower_id = ? AND seller_id = ?", followerID, sellerID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}
	return count > 0, nil
}

func (s *FollowService) FollowerCount(sellerID uuid.UUID) (int64, error) {
	var count int64
	if err := s.db.Model(&models.SellerFollow{}).
		Where("seller_id = ?", sellerID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("database error: %w", err)
	}
	return count, nil
}

// GetFollowedSellers lists sellers the user follows.
func (s *FollowService) GetFollowedSellers(followerID uuid.UUID) ([]models.User, error) {
	var sellers []models.User
	if err := s.db.
		Joins("JOIN seller_follows ON seller_follows.seller_id = users.id").
		Where("seller_follows.follower_id = ? AND seller_follows.deleted_at IS NULL", followerID).
		Find(&sellers).Error; err != nil {
		return nil, fmt.Errorf("failed to list followed sellers: %w", err)
	}
	return sellers, nil
}

// GetFollowers lists the users following a seller.
func (s *FollowService) GetFollowers(sellerID uuid.UUID) ([]models.User, error) {
	var followers []models.User
	if err := s.db.
		Joins("JOIN seller_follows ON seller_follows.follower_id = users.id").
		Where("seller_follows.seller_id = ? AND seller_follows.deleted_at IS NULL", sellerID).
		Find(&followers).Error; err != nil {
		return nil, fmt.Errorf("failed to list followers: %w", err)
	}
	return followers, nil
}
