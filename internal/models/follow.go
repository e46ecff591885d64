// internal/models/follow.go
package models

import (
	"github.com/google/uuid"
)

// SellerFollow is a directed follower -> seller edge, unique per pair.
type SellerFollow struct {
	BaseModel
	FollowerID uuid.UUID `json:"follower_id" gorm:"type:uuid;not null;uniqueIndex:idx_follower_seller"`
	SellerID   uuid.UUID `json:"seller_id" gorm:"type:uuid;not null;uniqueIndex:idx_follower_seller"`

	// Relationships
	Follower User `json:"follower,omitempty" gorm:"foreignKey:FollowerID"`
	Seller   User `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
}
