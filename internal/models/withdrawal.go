// internal/models/withdrawal.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// WithdrawalRequest asks the platform to pay out part of a seller's
// accumulated balance. Admins approve or reject pending requests.
type WithdrawalRequest struct {
	BaseModel
	SellerID    uuid.UUID        `json:"seller_id" gorm:"type:uuid;not null;index"`
	Amount      float64          `json:"amount" gorm:"type:decimal(12,2);not null"`
	BankAccount string           `json:"bank_account" gorm:"size:100"`
	Status      WithdrawalStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	AdminNote   string           `json:"admin_note,omitempty" gorm:"type:text"`
	ProcessedBy *uuid.UUID       `json:"processed_by" gorm:"type:uuid"`
	ProcessedAt *time.Time       `json:"processed_at"`

	// Relationships
	Seller    User  `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Processor *User `json:"processor,omitempty" gorm:"foreignKey:ProcessedBy"`
}
