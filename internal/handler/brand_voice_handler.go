package handler

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/repurpose/internal/middleware"
	"github.com/suteetoe/repurpose/internal/model"
	"github.com/suteetoe/repurpose/internal/store"
	"github.com/suteetoe/repurpose/pkg/logger"
	"go.uber.org/zap"
)

const (
	minVoiceNameLen    = 3
	maxVoiceNameLen    = 100
	minInstructionsLen = 10
)

// BrandVoiceRequest is the body for creating or updating a brand voice.
// On update, nil fields are left alone.
type BrandVoiceRequest struct {
	Name         *string `json:"name"`
	Instructions *string `json:"instructions"`
	IsDefault    *bool   `json:"is_default"`
}

func validateVoiceName(name string) error {
	if n := utf8.RuneCountInString(name); n < minVoiceNameLen || n > maxVoiceNameLen {
		return errors.New("name must be between 3 and 100 characters")
	}
	return nil
}

func validateInstructions(instructions string) error {
	if utf8.RuneCountInString(instructions) < minInstructionsLen {
		return errors.New("instructions must be at least 10 characters")
	}
	return nil
}

// CreateBrandVoice stores a new brand voice for the user
func (h *Handler) CreateBrandVoice(c echo.Context) error {
	log := logger.FromEcho(c)
	userID := middleware.CurrentUserID(c)

	var req BrandVoiceRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	if req.Name == nil || req.Instructions == nil {
		return badRequest(c, "name and instructions are required")
	}

	voice := &model.BrandVoice{
		UserID:       userID,
		Name:         strings.TrimSpace(*req.Name),
		Instructions: strings.TrimSpace(*req.Instructions),
		IsDefault:    req.IsDefault != nil && *req.IsDefault,
	}
	if err := validateVoiceName(voice.Name); err != nil {
		return badRequest(c, err.Error())
	}
	if err := validateInstructions(voice.Instructions); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.store.CreateBrandVoice(c.Request().Context(), voice); err != nil {
		log.Error("Failed to create brand voice", zap.Error(err))
		return internalError(c, "failed to create brand voice")
	}

	log.Info("Brand voice created", zap.Uint("brand_voice_id", voice.ID), zap.Bool("is_default", voice.IsDefault))
	return c.JSON(http.StatusCreated, voice)
}

// ListBrandVoices returns all of the user's brand voices
func (h *Handler) ListBrandVoices(c echo.Context) error {
	log := logger.FromEcho(c)

	voices, err := h.store.ListBrandVoices(c.Request().Context(), middleware.CurrentUserID(c))
	if err != nil {
		log.Error("Failed to list brand voices", zap.Error(err))
		return internalError(c, "failed to retrieve brand voices")
	}
	return c.JSON(http.StatusOK, voices)
}

// GetBrandVoice returns one brand voice
func (h *Handler) GetBrandVoice(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid brand voice id")
	}

	voice, err := h.store.GetBrandVoice(c.Request().Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound(c, "brand voice")
		}
		logger.FromEcho(c).Error("Failed to load brand voice", zap.Error(err))
		return internalError(c, "failed to retrieve brand voice")
	}
	return c.JSON(http.StatusOK, voice)
}

// UpdateBrandVoice changes a brand voice
func (h *Handler) UpdateBrandVoice(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()

	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid brand voice id")
	}

	var req BrandVoiceRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	voice, err := h.store.GetBrandVoice(ctx, middleware.CurrentUserID(c), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound(c, "brand voice")
		}
		log.Error("Failed to load brand voice", zap.Error(err))
		return internalError(c, "failed to update brand voice")
	}

	if req.Name != nil {
		voice.Name = strings.TrimSpace(*req.Name)
		if err := validateVoiceName(voice.Name); err != nil {
			return badRequest(c, err.Error())
		}
	}
	if req.Instructions != nil {
		voice.Instructions = strings.TrimSpace(*req.Instructions)
		if err := validateInstructions(voice.Instructions); err != nil {
			return badRequest(c, err.Error())
		}
	}
	if req.IsDefault != nil {
		voice.IsDefault = *req.IsDefault
	}

	if err := h.store.UpdateBrandVoice(ctx, voice); err != nil {
		log.Error("Failed to update brand voice", zap.Error(err))
		return internalError(c, "failed to update brand voice")
	}

	log.Info("Brand voice updated", zap.Uint("brand_voice_id", voice.ID))
	return c.JSON(http.StatusOK, voice)
}

// DeleteBrandVoice removes a brand voice; generations made with it keep their text
func (h *Handler) DeleteBrandVoice(c echo.Context) error {
	log := logger.FromEcho(c)

	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid brand voice id")
	}

	if err := h.store.DeleteBrandVoice(c.Request().Context(), middleware.CurrentUserID(c), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound(c, "brand voice")
		}
		log.Error("Failed to delete brand voice", zap.Error(err))
		return internalError(c, "failed to delete brand voice")
	}

	log.Info("Brand voice deleted", zap.Uint("brand_voice_id", id))
	return c.NoContent(http.StatusNoContent)
}
