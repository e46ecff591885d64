// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username     string     `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	FullName     string     `json:"full_name" gorm:"size:120"`
	Phone        string     `json:"phone" gorm:"size:20"`
	Address      string     `json:"address" gorm:"size:255"`
	AvatarURL    string     `json:"avatar_url" gorm:"size:500"`
	Role         UserRole   `json:"role" gorm:"type:varchar(20);not null;index"`
	Status       UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	// Relationships
	Flowers       []Flower       `json:"flowers,omitempty" gorm:"foreignKey:SellerID"`
	Orders        []Order        `json:"orders,omitempty" gorm:"foreignKey:BuyerID"`
	Reviews       []Review       `json:"reviews,omitempty" gorm:"foreignKey:BuyerID"`
	Notifications []Notification `json:"notifications,omitempty" gorm:"foreignKey:UserID"`
	Following     []SellerFollow `json:"following,omitempty" gorm:"foreignKey:FollowerID"`
	Followers     []SellerFollow `json:"followers,omitempty" gorm:"foreignKey:SellerID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
