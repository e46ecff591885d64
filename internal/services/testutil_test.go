// internal/services/testutil_test.go
package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/floramart/floramart-backend/internal/config"
	"github.com/floramart/floramart-backend/internal/database"
	"github.com/floramart/floramart-backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// An in-memory sqlite database exists per connection; keep the pool
	// at one so every query sees the same database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.RunMigrations(db))
	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
		Shipping: config.ShippingConfig{
			Token:          "test-token",
			ShopID:         12345,
			FromDistrictID: 1442,
			FeeCacheTTL:    30,
		},
		Listing: config.ListingConfig{
			VisibilityTTL: 72,
			SweepInterval: 60,
		},
	}
}

var userSeq int

func createTestUser(t *testing.T, db *gorm.DB, role models.UserRole) *models.User {
	t.Helper()

	userSeq++
	user := &models.User{
		Username: fmt.Sprintf("user%d", userSeq),
		Email:    fmt.Sprintf("user%d@example.com", userSeq),
		FullName: fmt.Sprintf("Test User %d", userSeq),
		Role:     role,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, user.SetPassword("Passw0rd!"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestCategory(t *testing.T, db *gorm.DB) *models.Category {
	t.Helper()

	userSeq++
	category := &models.Category{
		Name: fmt.Sprintf("Category %d", userSeq),
	}
	require.NoError(t, db.Create(category).Error)
	return category
}

func createTestFlower(t *testing.T, db *gorm.DB, sellerID uuid.UUID, price float64, quantity int) *models.Flower {
	t.Helper()

	category := createTestCategory(t, db)
	userSeq++
	flower := &models.Flower{
		SellerID:   sellerID,
		CategoryID: category.ID,
		Name:       fmt.Sprintf("Flower %d", userSeq),
		Price:      price,
		Quantity:   quantity,
		Status:     models.FlowerStatusAvailable,
		IsVisible:  true,
		ListedAt:   time.Now(),
	}
	require.NoError(t, db.Create(flower).Error)
	return flower
}
