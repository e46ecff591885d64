// internal/services/listing_sweeper.go
package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/floramart/floramart-backend/internal/config"
	"github.com/floramart/floramart-backend/internal/models"
)

// ListingSweeper hides listings whose freshness window has expired. It
// is the single writer of the is_visible flag; the catalog paths treat
// the flag as read-only.
type ListingSweeper struct {
	db     *gorm.DB
	config *config.Config
}

func NewListingSweeper(db *gorm.DB, cfg *config.Config) *ListingSweeper {
	return &ListingSweeper{db: db, config: cfg}
}

// Run sweeps on a fixed interval until ctx is cancelled. Meant to be
// started once as a goroutine from main.
func (s *ListingSweeper) Run(ctx context.Context) {
	interval := time.Duration(s.config.Listing.SweepInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce()
		}
	}
}

// SweepOnce hides every visible listing older than the visibility TTL
// and returns how many it hid.
func (s *ListingSweeper) SweepOnce() int64 {
	cutoff := time.Now().Add(-time.Duration(s.config.Listing.VisibilityTTL) * time.Hour)

	result := s.db.Model(&models.Flower{}).
		Where("is_visible = ? AND listed_at < ?", true, cutoff).
		Update("is_visible", false)
	if result.Error != nil {
		logrus.WithError(result.Error).Error("Listing sweep failed")
		return 0
	}

	if result.RowsAffected > 0 {
		logrus.WithField("hidden", result.RowsAffected).Info("Expired listings hidden")
	}
	return result.RowsAffected
}
