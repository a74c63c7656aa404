package store

import (
	"context"

	"github.com/suteetoe/repurpose/internal/model"
	"gorm.io/gorm"
)

// CreateBrandVoice inserts a voice; a default voice clears the user's other defaults
func (s *Store) CreateBrandVoice(ctx context.Context, voice *model.BrandVoice) error {
	defer track("brand_voice_create")()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if voice.IsDefault {
			if err := clearDefaults(tx, voice.UserID); err != nil {
				return err
			}
		}
		return tx.Create(voice).Error
	})
}

// ListBrandVoices returns the user's voices, oldest first
func (s *Store) ListBrandVoices(ctx context.Context, userID uint) ([]model.BrandVoice, error) {
	defer track("brand_voice_list")()
	var voices []model.BrandVoice
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC, id ASC").Find(&voices).Error; err != nil {
		return nil, err
	}
	return voices, nil
}

// GetBrandVoice loads a voice owned by userID
func (s *Store) GetBrandVoice(ctx context.Context, userID, id uint) (*model.BrandVoice, error) {
	defer track("brand_voice_get")()
	var voice model.BrandVoice
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&voice).Error; err != nil {
		return nil, mapError(err)
	}
	return &voice, nil
}

// GetDefaultBrandVoice returns the user's default voice, or ErrNotFound
func (s *Store) GetDefaultBrandVoice(ctx context.Context, userID uint) (*model.BrandVoice, error) {
	defer track("brand_voice_get")()
	var voice model.BrandVoice
	if err := s.db.WithContext(ctx).Where("user_id = ? AND is_default = ?", userID, true).Order("id DESC").First(&voice).Error; err != nil {
		return nil, mapError(err)
	}
	return &voice, nil
}

// UpdateBrandVoice saves name, instructions and default flag
func (s *Store) UpdateBrandVoice(ctx context.Context, voice *model.BrandVoice) error {
	defer track("brand_voice_update")()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if voice.IsDefault {
			if err := clearDefaults(tx, voice.UserID); err != nil {
				return err
			}
		}
		return tx.Model(voice).Select("name", "instructions", "is_default").Updates(map[string]any{
			"name":         voice.Name,
			"instructions": voice.Instructions,
			"is_default":   voice.IsDefault,
		}).Error
	})
}

// DeleteBrandVoice removes a voice and unlinks it from past generations
func (s *Store) DeleteBrandVoice(ctx context.Context, userID, id uint) error {
	defer track("brand_voice_delete")()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var voice model.BrandVoice
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&voice).Error; err != nil {
			return mapError(err)
		}
		if err := tx.Model(&model.Generation{}).Where("brand_voice_id = ?", voice.ID).Update("brand_voice_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&voice).Error
	})
}

func clearDefaults(tx *gorm.DB, userID uint) error {
	return tx.Model(&model.BrandVoice{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
}
