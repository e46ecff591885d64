// internal/models/cart.go
package models

import (
	"github.com/google/uuid"
)

// Cart holds the line items a user is preparing to order. A user has at
// most one active cart; the partial unique index on (user_id) where
// status='active' serializes concurrent lazy creation.
type Cart struct {
	BaseModel
	UserID uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Status CartStatus `json:"status" gorm:"type:varchar(20);default:'active';index"`

	// Relationships
	User  User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Items []CartItem `json:"items,omitempty" gorm:"foreignKey:CartID"`
}

// CartItem snapshots the unit price at the time the line was added.
// IsCustom marks seller-proposed bespoke lines, which are priced by the
// seller and never merged with catalog lines.
type CartItem struct {
	BaseModel
	CartID    uuid.UUID `json:"cart_id" gorm:"type:uuid;not null;index"`
	FlowerID  uuid.UUID `json:"flower_id" gorm:"type:uuid;not null;index"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	UnitPrice float64   `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	IsCustom  bool      `json:"is_custom" gorm:"default:false"`

	// Relationships
	Cart   Cart   `json:"-" gorm:"foreignKey:CartID"`
	Flower Flower `json:"flower,omitempty" gorm:"foreignKey:FlowerID"`
}
