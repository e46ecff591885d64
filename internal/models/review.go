// internal/models/review.go
package models

import (
	"github.com/google/uuid"
)

// Review is written once per (buyer, order, flower); a second attempt is
// a conflict, not an update.
type Review struct {
	BaseModel
	BuyerID  uuid.UUID `json:"buyer_id" gorm:"type:uuid;not null;uniqueIndex:idx_review_once"`
	OrderID  uuid.UUID `json:"order_id" gorm:"type:uuid;not null;uniqueIndex:idx_review_once"`
	FlowerID uuid.UUID `json:"flower_id" gorm:"type:uuid;not null;uniqueIndex:idx_review_once;index"`
	Rating   int       `json:"rating" gorm:"not null"`
	Comment  string    `json:"comment" gorm:"type:text"`

	// Relationships
	Buyer  User   `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	Flower Flower `json:"-" gorm:"foreignKey:FlowerID"`
}
