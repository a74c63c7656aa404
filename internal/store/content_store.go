package store

import (
	"context"

	"github.com/suteetoe/repurpose/internal/model"
	"gorm.io/gorm"
)

// CreateContent stores a new source document
func (s *Store) CreateContent(ctx context.Context, content *model.Content) error {
	defer track("content_create")()
	return s.db.WithContext(ctx).Create(content).Error
}

// ListContent returns the user's content, newest first
func (s *Store) ListContent(ctx context.Context, userID uint, page Page) ([]model.Content, error) {
	defer track("content_list")()
	var contents []model.Content
	q := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC")
	if err := page.apply(q).Find(&contents).Error; err != nil {
		return nil, err
	}
	return contents, nil
}

// GetContent loads content owned by userID
func (s *Store) GetContent(ctx context.Context, userID, id uint) (*model.Content, error) {
	defer track("content_get")()
	var content model.Content
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&content).Error; err != nil {
		return nil, mapError(err)
	}
	return &content, nil
}

// UpdateContentTitle renames a content item
func (s *Store) UpdateContentTitle(ctx context.Context, userID, id uint, title *string) (*model.Content, error) {
	defer track("content_update")()
	content, err := s.GetContent(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(content).Update("title", title).Error; err != nil {
		return nil, err
	}
	content.Title = title
	return content, nil
}

// DeleteContent removes the content together with all of its generations
func (s *Store) DeleteContent(ctx context.Context, userID, id uint) error {
	defer track("content_delete")()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var content model.Content
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&content).Error; err != nil {
			return mapError(err)
		}
		if err := tx.Where("content_id = ?", content.ID).Delete(&model.Generation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&content).Error
	})
}
