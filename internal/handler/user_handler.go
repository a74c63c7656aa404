package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/repurpose/internal/middleware"
	"github.com/suteetoe/repurpose/internal/model"
	"github.com/suteetoe/repurpose/internal/store"
	"github.com/suteetoe/repurpose/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UpdateProfileRequest is the body of PUT /api/user/profile. Nil fields are left alone.
type UpdateProfileRequest struct {
	Username *string `json:"username"`
	Plan     *string `json:"plan"`
}

// ChangePasswordRequest is the body of POST /api/user/change-password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// GetProfile returns the authenticated user
func (h *Handler) GetProfile(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.CurrentUser(c))
}

// UpdateProfile changes username and plan
func (h *Handler) UpdateProfile(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if !validUsername(username) {
			return badRequest(c, "username must be between 3 and 50 characters")
		}
		taken, err := h.store.UsernameTaken(ctx, username, user.ID)
		if err != nil {
			log.Error("Failed to check username", zap.Error(err))
			return internalError(c, "failed to update profile")
		}
		if taken {
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already taken"})
		}
		user.Username = username
	}

	if req.Plan != nil {
		switch *req.Plan {
		case model.PlanFree, model.PlanPro:
			user.Plan = *req.Plan
		default:
			return badRequest(c, "plan must be one of: free, pro")
		}
	}

	if err := h.store.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already taken"})
		}
		log.Error("Failed to update profile", zap.Error(err))
		return internalError(c, "failed to update profile")
	}

	log.Info("Profile updated")
	return c.JSON(http.StatusOK, user)
}

// ChangePassword replaces the password after checking the current one
func (h *Handler) ChangePassword(c echo.Context) error {
	log := logger.FromEcho(c)
	user := middleware.CurrentUser(c)

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	if len(req.NewPassword) < minPasswordLen {
		return badRequest(c, "password must be at least 8 characters")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		log.Info("Password change rejected, wrong current password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "current password is incorrect"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return internalError(c, "failed to change password")
	}
	if err := h.store.SetPassword(c.Request().Context(), user.ID, string(hash)); err != nil {
		log.Error("Failed to store password", zap.Error(err))
		return internalError(c, "failed to change password")
	}

	log.Info("Password changed")
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

// Deactivate disables the account; later logins are refused
func (h *Handler) Deactivate(c echo.Context) error {
	log := logger.FromEcho(c)
	user := middleware.CurrentUser(c)

	if err := h.store.DeactivateUser(c.Request().Context(), user.ID); err != nil {
		log.Error("Failed to deactivate user", zap.Error(err))
		return internalError(c, "failed to deactivate account")
	}

	log.Info("User deactivated")
	return c.JSON(http.StatusOK, echo.Map{"message": "account deactivated"})
}
