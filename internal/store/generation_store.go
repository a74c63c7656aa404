package store

import (
	"context"

	"github.com/suteetoe/repurpose/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GenerationFilter narrows a history query
type GenerationFilter struct {
	Platform  string
	ContentID uint
}

// CreateGenerations persists a batch of generations atomically
func (s *Store) CreateGenerations(ctx context.Context, generations []model.Generation) error {
	if len(generations) == 0 {
		return nil
	}
	defer track("generation_create")()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&generations).Error
	})
}

// ListGenerations returns the user's generations, newest first
func (s *Store) ListGenerations(ctx context.Context, userID uint, filter GenerationFilter, page Page) ([]model.Generation, error) {
	defer track("generation_list")()
	var generations []model.Generation
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.Platform != "" {
		q = q.Where("platform = ?", filter.Platform)
	}
	if filter.ContentID != 0 {
		q = q.Where("content_id = ?", filter.ContentID)
	}
	q = q.Order("created_at DESC, id DESC")
	if err := page.apply(q).Find(&generations).Error; err != nil {
		return nil, err
	}
	return generations, nil
}

// GetGeneration loads a generation owned by userID
func (s *Store) GetGeneration(ctx context.Context, userID, id uint) (*model.Generation, error) {
	defer track("generation_get")()
	var generation model.Generation
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&generation).Error; err != nil {
		return nil, mapError(err)
	}
	return &generation, nil
}

// ReplaceGenerationOutput overwrites text, metadata, tone and brand voice of
// an existing generation in place
func (s *Store) ReplaceGenerationOutput(ctx context.Context, generation *model.Generation, text string, metadata map[string]any, tone string, brandVoiceID *uint) error {
	defer track("generation_update")()
	err := s.db.WithContext(ctx).Model(generation).Select("generated_text", "platform_metadata", "tone", "brand_voice_id").Updates(map[string]any{
		"generated_text":    text,
		"platform_metadata": datatypes.JSONMap(metadata),
		"tone":              tone,
		"brand_voice_id":    brandVoiceID,
	}).Error
	if err != nil {
		return err
	}
	generation.GeneratedText = text
	generation.Metadata = metadata
	generation.Tone = tone
	generation.BrandVoiceID = brandVoiceID
	return nil
}

// DeleteGeneration removes a single generation
func (s *Store) DeleteGeneration(ctx context.Context, userID, id uint) error {
	defer track("generation_delete")()
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Generation{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
