package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/repurpose/internal/middleware"
	"github.com/suteetoe/repurpose/internal/model"
	"github.com/suteetoe/repurpose/internal/repurpose"
	"github.com/suteetoe/repurpose/internal/store"
	"github.com/suteetoe/repurpose/pkg/logger"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 50
	minToneLen          = 3
	maxToneLen          = 50
	maxPlatformLen      = 50
)

// RepurposeRequest is the body of POST /api/generate/repurpose
type RepurposeRequest struct {
	ContentID    uint     `json:"content_id"`
	Platforms    []string `json:"platforms"`
	Tone         string   `json:"tone"`
	BrandVoiceID *uint    `json:"brand_voice_id"`
}

// RegenerateRequest is the optional body of POST /api/generate/regenerate/:id
type RegenerateRequest struct {
	Tone *string `json:"tone"`
}

// RepurposeResponse carries every platform's outcome plus the rows that were stored
type RepurposeResponse struct {
	ContentID       uint               `json:"content_id"`
	PlatformResults repurpose.Results  `json:"platform_results"`
	Generations     []model.Generation `json:"generations"`
}

func validTone(tone string) bool {
	n := utf8.RuneCountInString(tone)
	return n >= minToneLen && n <= maxToneLen
}

// validPlatforms checks every name fits the platform column
func validPlatforms(platforms []string) bool {
	for _, p := range platforms {
		if utf8.RuneCountInString(p) > maxPlatformLen {
			return false
		}
	}
	return true
}

// Repurpose generates platform content for one of the user's content items
func (h *Handler) Repurpose(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()
	userID := middleware.CurrentUserID(c)

	var req RepurposeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	tone := strings.TrimSpace(req.Tone)
	if !validTone(tone) {
		return badRequest(c, "tone must be between 3 and 50 characters")
	}
	platforms := repurpose.NormalizePlatforms(req.Platforms)
	if len(platforms) == 0 {
		return badRequest(c, "at least one platform is required")
	}
	if !validPlatforms(platforms) {
		return badRequest(c, "platform names must be at most 50 characters")
	}
	if req.ContentID == 0 {
		return badRequest(c, "content_id is required")
	}

	content, err := h.store.GetContent(ctx, userID, req.ContentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound(c, "content")
		}
		log.Error("Failed to load content", zap.Error(err))
		return internalError(c, "failed to generate content")
	}

	voice, err := h.resolveBrandVoice(c, userID, req.BrandVoiceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound(c, "brand voice")
		}
		log.Error("Failed to load brand voice", zap.Error(err))
		return internalError(c, "failed to generate content")
	}

	var (
		voiceID   *uint
		voiceText string
	)
	if voice != nil {
		voiceID = &voice.ID
		voiceText = voice.Instructions
	}

	results, err := h.orchestrator.Generate(ctx, repurpose.Request{
		Source:     content.OriginalContent,
		Platforms:  platforms,
		Tone:       tone,
		BrandVoice: voiceText,
	})
	if err != nil {
		return badRequest(c, err.Error())
	}

	succeeded := results.Succeeded()
	generations := make([]model.Generation, 0, len(succeeded))
	for _, r := range succeeded {
		generations = append(generations, model.Generation{
			ContentID:     content.ID,
			UserID:        userID,
			Platform:      r.Platform,
			GeneratedText: r.Text,
			Tone:          tone,
			BrandVoiceID:  voiceID,
			Metadata:      r.Metadata,
		})
	}

	if err := h.store.CreateGenerations(ctx, generations); err != nil {
		log.Error("Failed to store generations", zap.Error(err))
		return internalError(c, "failed to store generated content")
	}

	log.Info("Content repurposed",
		zap.Uint("content_id", content.ID),
		zap.Int("platforms", len(platforms)),
		zap.Int("stored", len(generations)))

	return c.JSON(http.StatusOK, RepurposeResponse{
		ContentID:       content.ID,
		PlatformResults: results,
		Generations:     generations,
	})
}

// resolveBrandVoice returns the requested voice, or the user's default when
// none is requested. A nil voice with nil error means "no voice".
func (h *Handler) resolveBrandVoice(c echo.Context, userID uint, id *uint) (*model.BrandVoice, error) {
	ctx := c.Request().Context()
	if id != nil {
		return h.store.GetBrandVoice(ctx, userID, *id)
	}

	voice, err := h.store.GetDefaultBrandVoice(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return voice, err
}

// Regenerate replaces one generation's output with a fresh model call
func (h *Handler) Regenerate(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()
	userID := middleware.CurrentUserID(c)

	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid generation id")
	}

	var req RegenerateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	generation, err := h.store.GetGeneration(ctx, userID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound(c, "generation")
		}
		log.Error("Failed to load generation", zap.Error(err))
		return internalError(c, "failed to regenerate content")
	}

	tone := generation.Tone
	if req.Tone != nil {
		if t := strings.TrimSpace(*req.Tone); t != "" {
			if !validTone(t) {
				return badRequest(c, "tone must be between 3 and 50 characters")
			}
			tone = t
		}
	}

	content, err := h.store.GetContent(ctx, userID, generation.ContentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound(c, "original content")
		}
		log.Error("Failed to load content", zap.Error(err))
		return internalError(c, "failed to regenerate content")
	}

	// The linked voice must still exist and still belong to the user;
	// otherwise it is dropped and the link cleared.
	var (
		voiceID   *uint
		voiceText string
	)
	if generation.BrandVoiceID != nil {
		voice, err := h.store.GetBrandVoice(ctx, userID, *generation.BrandVoiceID)
		switch {
		case err == nil:
			voiceID = &voice.ID
			voiceText = voice.Instructions
		case errors.Is(err, store.ErrNotFound):
			log.Info("Linked brand voice no longer available", zap.Uint("brand_voice_id", *generation.BrandVoiceID))
		default:
			log.Error("Failed to load brand voice", zap.Error(err))
			return internalError(c, "failed to regenerate content")
		}
	}

	result := h.orchestrator.Regenerate(ctx, content.OriginalContent, generation.Platform, tone, voiceText)
	if result.Err != nil {
		log.Warn("Regeneration failed", zap.Uint("generation_id", generation.ID), zap.Error(result.Err))
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "error regenerating content: " + result.Err.Error()})
	}

	if err := h.store.ReplaceGenerationOutput(ctx, generation, result.Text, result.Metadata, tone, voiceID); err != nil {
		log.Error("Failed to store regenerated content", zap.Error(err))
		return internalError(c, "failed to store regenerated content")
	}

	log.Info("Generation regenerated", zap.Uint("generation_id", generation.ID), zap.String("platform", generation.Platform))
	return c.JSON(http.StatusOK, generation)
}

// History lists the user's generations, newest first, optionally by platform or content
func (h *Handler) History(c echo.Context) error {
	log := logger.FromEcho(c)

	filter := store.GenerationFilter{Platform: strings.TrimSpace(c.QueryParam("platform"))}
	if raw := c.QueryParam("content_id"); raw != "" {
		contentID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return badRequest(c, "invalid content_id")
		}
		filter.ContentID = uint(contentID)
	}

	generations, err := h.store.ListGenerations(c.Request().Context(), middleware.CurrentUserID(c), filter, pageFromQuery(c, defaultHistoryLimit))
	if err != nil {
		log.Error("Failed to list generations", zap.Error(err))
		return internalError(c, "failed to retrieve generation history")
	}

	return c.JSON(http.StatusOK, generations)
}

// GetGeneration returns one generation
func (h *Handler) GetGeneration(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid generation id")
	}

	generation, err := h.store.GetGeneration(c.Request().Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound(c, "generation")
		}
		logger.FromEcho(c).Error("Failed to load generation", zap.Error(err))
		return internalError(c, "failed to retrieve generation")
	}

	return c.JSON(http.StatusOK, generation)
}

// DeleteGeneration removes one generation
func (h *Handler) DeleteGeneration(c echo.Context) error {
	log := logger.FromEcho(c)

	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid generation id")
	}

	if err := h.store.DeleteGeneration(c.Request().Context(), middleware.CurrentUserID(c), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound(c, "generation")
		}
		log.Error("Failed to delete generation", zap.Error(err))
		return internalError(c, "failed to delete generation")
	}

	log.Info("Generation deleted", zap.Uint("generation_id", id))
	return c.NoContent(http.StatusNoContent)
}
