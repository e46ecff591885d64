// internal/models/flower.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Category struct {
	BaseModel
	Name        string `json:"name" gorm:"uniqueIndex;size:100;not null"`
	Description string `json:"description" gorm:"type:text"`

	Flowers []Flower `json:"flowers,omitempty" gorm:"foreignKey:CategoryID"`
}

// Flower is a sellable listing. IsVisible is owned by the background
// visibility sweep; request paths only read it.
type Flower struct {
	BaseModel
	SellerID    uuid.UUID      `json:"seller_id" gorm:"type:uuid;not null;index"`
	CategoryID  uuid.UUID      `json:"category_id" gorm:"type:uuid;not null;index"`
	Name        string         `json:"name" gorm:"size:255;not null"`
	Description string         `json:"description" gorm:"type:text"`
	Price       float64        `json:"price" gorm:"type:decimal(12,2);not null"`
	Quantity    int            `json:"quantity" gorm:"not null;default:0"`
	Status      FlowerStatus   `json:"status" gorm:"type:varchar(20);default:'available';index"`
	IsVisible   bool           `json:"is_visible" gorm:"default:true;index"`
	ListedAt    time.Time      `json:"listed_at" gorm:"not null;index"`
	Images      pq.StringArray `json:"images" gorm:"type:text[]"`
	Rating      float64        `json:"rating" gorm:"type:decimal(3,2);default:0"`
	ReviewCount int64          `json:"review_count" gorm:"default:0"`
	SalesCount  int64          `json:"sales_count" gorm:"default:0"`

	// Relationships
	Seller   User     `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Category Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Reviews  []Review `json:"reviews,omitempty" gorm:"foreignKey:FlowerID"`
}
