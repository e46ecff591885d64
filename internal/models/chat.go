// internal/models/chat.go
package models

import (
	"github.com/google/uuid"
)

// Conversation links one buyer and one seller. The (seller, buyer) pair
// is unordered at the service level: lookups check both orientations so
// only one active conversation exists per pair.
type Conversation struct {
	BaseModel
	SellerID      uuid.UUID  `json:"seller_id" gorm:"type:uuid;not null;index:idx_conversation_pair"`
	BuyerID       uuid.UUID  `json:"buyer_id" gorm:"type:uuid;not null;index:idx_conversation_pair"`
	IsActive      bool       `json:"is_active" gorm:"default:true;index"`
	LastMessageID *uuid.UUID `json:"last_message_id" gorm:"type:uuid"`

	// Relationships
	Seller      User      `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Buyer       User      `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	Messages    []Message `json:"messages,omitempty" gorm:"foreignKey:ConversationID"`
	LastMessage *Message  `json:"last_message,omitempty" gorm:"foreignKey:LastMessageID"`
}

// Message read state is monotonic: unread flips to read, never back.
type Message struct {
	BaseModel
	ConversationID uuid.UUID `json:"conversation_id" gorm:"type:uuid;not null;index"`
	SenderID       uuid.UUID `json:"sender_id" gorm:"type:uuid;not null;index"`
	Content        string    `json:"content" gorm:"type:text"`
	ImageURL       string    `json:"image_url,omitempty" gorm:"size:500"`
	IsRead         bool      `json:"is_read" gorm:"default:false;index"`
	IsDeleted      bool      `json:"is_deleted" gorm:"default:false"`

	// Relationships
	Conversation Conversation `json:"-" gorm:"foreignKey:ConversationID"`
	Sender       User         `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
}
