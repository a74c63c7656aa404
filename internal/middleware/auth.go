package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/repurpose/internal/model"
	"github.com/suteetoe/repurpose/internal/store"
	"github.com/suteetoe/repurpose/pkg/jwtutil"
	"github.com/suteetoe/repurpose/pkg/logger"
	"github.com/suteetoe/repurpose/prometheus"
	"go.uber.org/zap"
)

// Context keys set by AuthMiddleware
const (
	UserIDKey = "user_id"
	UserKey   = "user"
)

// UserLookup loads the account behind a token
type UserLookup interface {
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
}

// AuthMiddleware validates the bearer access token and loads the active user
func AuthMiddleware(jwtUtil *jwtutil.JWTUtil, users UserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			// Get the Authorization header
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Missing Authorization header")
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
			}

			// Check if it's a Bearer token
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Warn("Invalid Authorization header format")
				prometheus.RecordAuthError("invalid_auth_format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
			}

			claims, err := jwtUtil.ValidateToken(parts[1], jwtutil.TokenTypeAccess)
			if err != nil {
				log.Warn("Invalid JWT token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}
			userID, _ := claims.UserID()

			user, err := users.GetUserByID(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					log.Warn("Token refers to unknown user", zap.Uint("user_id", userID))
					prometheus.RecordAuthError("unknown_user")
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
				}
				log.Error("Failed to load user", zap.Uint("user_id", userID), zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to authenticate"})
			}
			if !user.IsActive {
				log.Warn("Inactive user attempted access", zap.Uint("user_id", userID))
				prometheus.RecordAuthError("inactive_user")
				return c.JSON(http.StatusForbidden, echo.Map{"error": "user account is inactive"})
			}

			c.Set(UserIDKey, user.ID)
			c.Set(UserKey, user)

			// Attach the user to the request-scoped logger
			logger.ToEcho(c, log.With(zap.Uint("user_id", user.ID)))

			return next(c)
		}
	}
}

// CurrentUser returns the user loaded by AuthMiddleware
func CurrentUser(c echo.Context) *model.User {
	user, _ := c.Get(UserKey).(*model.User)
	return user
}

// CurrentUserID returns the authenticated user's id, or 0
func CurrentUserID(c echo.Context) uint {
	id, _ := c.Get(UserIDKey).(uint)
	return id
}
