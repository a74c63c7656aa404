package model

import (
	"time"

	"gorm.io/datatypes"
)

// Generation is one platform-specific output produced from a Content
type Generation struct {
	ID            uint              `json:"id" gorm:"primaryKey"`
	ContentID     uint              `json:"content_id" gorm:"index;not null"`
	UserID        uint              `json:"user_id" gorm:"index;not null"`
	Platform      string            `json:"platform" gorm:"type:varchar(50);index;not null"`
	GeneratedText string            `json:"generated_text" gorm:"type:text;not null"`
	Tone          string            `json:"tone" gorm:"type:varchar(50);not null"`
	BrandVoiceID  *uint             `json:"brand_voice_id,omitempty" gorm:"index"`
	Metadata      datatypes.JSONMap `json:"platform_metadata" gorm:"column:platform_metadata"`
	CreatedAt     time.Time         `json:"created_at"`

	// Relations
	BrandVoice *BrandVoice `json:"-" gorm:"foreignKey:BrandVoiceID;constraint:OnDelete:SET NULL"`
}
