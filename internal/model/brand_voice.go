package model

import (
	"time"
)

// BrandVoice is a named instruction block a user reuses to steer tone and style
type BrandVoice struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"index;not null"`
	Name         string    `json:"name" gorm:"type:varchar(100);not null"`
	Instructions string    `json:"instructions" gorm:"type:text;not null"`
	IsDefault    bool      `json:"is_default" gorm:"default:false"`
	CreatedAt    time.Time `json:"created_at"`
}
