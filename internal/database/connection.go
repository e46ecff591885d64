// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/floramart/floramart-backend/internal/config"
	"github.com/floramart/floramart-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error

	gormConfig := &gorm.Config{
		// Surface unique violations as gorm.ErrDuplicatedKey so the cart
		// lazy-create race and follow/conversation dedup can detect them.
		TranslateError: true,
	}
	if cfg.LogLevel == "silent" {
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	} else {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Flower{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.Review{},
		&models.Conversation{},
		&models.Message{},
		&models.Notification{},
		&models.SellerFollow{},
		&models.WithdrawalRequest{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// One active cart per user. The store enforces the invariant; the
		// service retries the fetch when it loses the creation race.
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_carts_user_active ON carts(user_id) WHERE status = 'active' AND deleted_at IS NULL",

		// One active conversation per unordered participant pair. The
		// index canonicalizes the pair so swapped role designations for
		// the same two users still collide.
		conversationPairIndex(db),

		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)",
		"CREATE INDEX IF NOT EXISTS idx_users_role_status ON users(role, status)",

		// Flower indexes
		"CREATE INDEX IF NOT EXISTS idx_flowers_seller ON flowers(seller_id)",
		"CREATE INDEX IF NOT EXISTS idx_flowers_category_status ON flowers(category_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_flowers_visible_listed ON flowers(is_visible, listed_at)",
		"CREATE INDEX IF NOT EXISTS idx_flowers_price ON flowers(price)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_buyer ON orders(buyer_id)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status, delivery_status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_flower ON order_items(flower_id)",

		// Chat indexes
		"CREATE INDEX IF NOT EXISTS idx_messages_conversation_created ON messages(conversation_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_messages_unread ON messages(conversation_id, is_read) WHERE NOT is_read",

		// Notification indexes
		"CREATE INDEX IF NOT EXISTS idx_notifications_user_read ON notifications(user_id, is_read)",
		"CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// conversationPairIndex builds the unordered-pair unique index. SQLite
// spells the two-argument scalar functions MIN/MAX where PostgreSQL has
// LEAST/GREATEST.
func conversationPairIndex(db *gorm.DB) string {
	expr := "LEAST(seller_id, buyer_id), GREATEST(seller_id, buyer_id)"
	if db.Dialector.Name() == "sqlite" {
		expr = "MIN(seller_id, buyer_id), MAX(seller_id, buyer_id)"
	}
	return "CREATE UNIQUE INDEX IF NOT EXISTS idx_conversations_active_pair ON conversations(" +
		expr + ") WHERE is_active AND deleted_at IS NULL"
}

// Seed initial data
func SeedInitialData(db *gorm.DB) error {
	log.Println("Seeding initial data...")

	// Create default admin user
	var adminCount int64
	db.Model(&models.User{}).Where("role = ?", models.UserRoleAdmin).Count(&adminCount)

	if adminCount == 0 {
		admin := &models.User{
			Username: "admin",
			Email:    "admin@floramart.vn",
			FullName: "System Administrator",
			Role:     models.UserRoleAdmin,
			Status:   models.UserStatusActive,
		}

		if err := admin.SetPassword("admin123!@#"); err != nil {
			return fmt.Errorf("failed to set admin password: %w", err)
		}

		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		log.Println("Default admin user created successfully")
	}

	// Create default categories
	defaultCategories := []models.Category{
		{Name: "Fresh Bouquets", Description: "Hand-tied bouquets of seasonal fresh flowers"},
		{Name: "Roses", Description: "Single roses and rose arrangements"},
		{Name: "Orchids", Description: "Potted and cut orchids"},
		{Name: "Congratulation Stands", Description: "Opening and event flower stands"},
		{Name: "Condolence Flowers", Description: "Sympathy wreaths and sprays"},
		{Name: "Dried Flowers", Description: "Long-lasting dried and preserved arrangements"},
	}

	for _, category := range defaultCategories {
		var count int64
		db.Model(&models.Category{}).Where("name = ?", category.Name).Count(&count)
		if count == 0 {
			if err := db.Create(&category).Error; err != nil {
				log.Printf("Warning: Failed to create category %s: %v", category.Name, err)
			}
		}
	}

	log.Println("Initial data seeding completed")
	return nil
}

