// internal/models/notification.go
package models

import (
	"github.com/google/uuid"
)

type Notification struct {
	BaseModel
	UserID    uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;index"`
	Type      NotificationType `json:"type" gorm:"type:varchar(20);not null;index"`
	Title     string           `json:"title" gorm:"size:255;not null"`
	Message   string           `json:"message" gorm:"type:text;not null"`
	RelatedID *uuid.UUID       `json:"related_id" gorm:"type:uuid;index"`
	IsRead    bool             `json:"is_read" gorm:"default:false;index"`
	IsActive  bool             `json:"is_active" gorm:"default:true"`

	// Relationships
	User User `json:"-" gorm:"foreignKey:UserID"`
}
