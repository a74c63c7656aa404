package model

import (
	"time"
)

// Plans a user can be on
const (
	PlanFree = "free"
	PlanPro  = "pro"
)

// User represents an account. Deleting a user removes everything it owns.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Username     string    `json:"username" gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	Plan         string    `json:"plan" gorm:"type:varchar(50);default:'free'"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Contents    []Content    `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Generations []Generation `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	BrandVoices []BrandVoice `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
