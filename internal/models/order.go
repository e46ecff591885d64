// internal/models/order.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Order is created transactionally at checkout and immutable afterwards
// except for Status and DeliveryStatus.
type Order struct {
	BaseModel
	BuyerID           uuid.UUID      `json:"buyer_id" gorm:"type:uuid;not null;index"`
	RecipientName     string         `json:"recipient_name" gorm:"size:120;not null"`
	RecipientPhone    string         `json:"recipient_phone" gorm:"size:20;not null"`
	ShippingAddress   string         `json:"shipping_address" gorm:"size:255;not null"`
	ShippingDistrict  int            `json:"shipping_district" gorm:"not null"`
	ShippingWardCode  string         `json:"shipping_ward_code" gorm:"size:20"`
	Status            OrderStatus    `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	DeliveryStatus    DeliveryStatus `json:"delivery_status" gorm:"type:varchar(20);default:'Pending';index"`
	TotalAmount       float64        `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	ShippingOrderCode string         `json:"shipping_order_code,omitempty" gorm:"size:50"`

	// Relationships
	Buyer   User        `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	Items   []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	Payment *Payment    `json:"payment,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderItem carries price and name snapshots taken at purchase time,
// deliberately decoupled from later Flower mutations.
type OrderItem struct {
	BaseModel
	OrderID    uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	FlowerID   uuid.UUID `json:"flower_id" gorm:"type:uuid;not null;index"`
	FlowerName string    `json:"flower_name" gorm:"size:255;not null"`
	UnitPrice  float64   `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	Quantity   int       `json:"quantity" gorm:"not null"`

	// Relationships
	Order  Order  `json:"-" gorm:"foreignKey:OrderID"`
	Flower Flower `json:"flower,omitempty" gorm:"foreignKey:FlowerID"`
}

type Payment struct {
	BaseModel
	OrderID           uuid.UUID     `json:"order_id" gorm:"type:uuid;not null;uniqueIndex"`
	Amount            float64       `json:"amount" gorm:"type:decimal(12,2);not null"`
	Method            string        `json:"method" gorm:"size:50"`
	Status            PaymentStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	ProviderPaymentID string        `json:"provider_payment_id,omitempty" gorm:"size:255"`
	PaidAt            *time.Time    `json:"paid_at"`

	// Relationships
	Order Order `json:"-" gorm:"foreignKey:OrderID"`
}
