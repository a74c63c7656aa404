package model

import (
	"time"
)

// ContentType tells how the source text reached the service
type ContentType string

const (
	ContentTypeText ContentType = "text"
	ContentTypeURL  ContentType = "url"
	ContentTypeFile ContentType = "file"
)

// Valid reports whether t is one of the known content types
func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeText, ContentTypeURL, ContentTypeFile:
		return true
	}
	return false
}

// Content is one unit of source material owned by a user
type Content struct {
	ID              uint        `json:"id" gorm:"primaryKey"`
	UserID          uint        `json:"user_id" gorm:"index;not null"`
	Title           *string     `json:"title" gorm:"type:varchar(255)"`
	OriginalContent string      `json:"original_content" gorm:"type:text;not null"`
	ContentType     ContentType `json:"content_type" gorm:"type:varchar(50);not null"`
	SourceURL       *string     `json:"source_url,omitempty" gorm:"type:varchar(500)"`
	WordCount       int         `json:"word_count"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`

	// Relations
	Generations []Generation `json:"-" gorm:"foreignKey:ContentID;constraint:OnDelete:CASCADE"`
}

// TableName keeps the table name singular
func (Content) TableName() string {
	return "content"
}
