// internal/models/common.go
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Enums
type UserRole string

const (
	UserRoleBuyer  UserRole = "buyer"
	UserRoleSeller UserRole = "seller"
	UserRoleAdmin  UserRole = "admin"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"
)

type FlowerStatus string

const (
	FlowerStatusAvailable FlowerStatus = "available"
	FlowerStatusSoldOut   FlowerStatus = "sold_out"
	FlowerStatusSuspended FlowerStatus = "suspended"
)

type CartStatus string

const (
	CartStatusActive     CartStatus = "active"
	CartStatusCheckedOut CartStatus = "checked_out"
	CartStatusAbandoned  CartStatus = "abandoned"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// DeliveryStatus is a closed set serialized by symbolic name on the wire.
type DeliveryStatus string

const (
	DeliveryPending    DeliveryStatus = "Pending"
	DeliveryProcessing DeliveryStatus = "Processing"
	DeliveryShipped    DeliveryStatus = "Shipped"
	DeliveryDelivered  DeliveryStatus = "Delivered"
	DeliveryCancelled  DeliveryStatus = "Cancelled"
)

// ParseDeliveryStatus rejects anything outside the closed set. No partial
// or case-insensitive matching.
func ParseDeliveryStatus(name string) (DeliveryStatus, error) {
	switch DeliveryStatus(name) {
	case DeliveryPending, DeliveryProcessing, DeliveryShipped, DeliveryDelivered, DeliveryCancelled:
		return DeliveryStatus(name), nil
	}
	return "", fmt.Errorf("unknown delivery status %q", name)
}

// deliveryTransitions holds the legal forward edges. Cancelled is terminal
// and reachable from every non-terminal state.
var deliveryTransitions = map[DeliveryStatus]DeliveryStatus{
	DeliveryPending:    DeliveryProcessing,
	DeliveryProcessing: DeliveryShipped,
	DeliveryShipped:    DeliveryDelivered,
}

// CanTransitionTo reports whether the delivery state machine allows
// moving from s to target.
func (s DeliveryStatus) CanTransitionTo(target DeliveryStatus) bool {
	if s == DeliveryDelivered || s == DeliveryCancelled {
		return false
	}
	if target == DeliveryCancelled {
		return true
	}
	return deliveryTransitions[s] == target
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type NotificationType string

const (
	NotificationTypeOrder  NotificationType = "order"
	NotificationTypeChat   NotificationType = "chat"
	NotificationTypeReview NotificationType = "review"
	NotificationTypeFollow NotificationType = "follow"
	NotificationTypeSystem NotificationType = "system"
)

type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "pending"
	WithdrawalStatusApproved WithdrawalStatus = "approved"
	WithdrawalStatusRejected WithdrawalStatus = "rejected"
)
