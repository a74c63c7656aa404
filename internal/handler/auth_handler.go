package handler

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/repurpose/internal/model"
	"github.com/suteetoe/repurpose/internal/store"
	"github.com/suteetoe/repurpose/pkg/jwtutil"
	"github.com/suteetoe/repurpose/pkg/logger"
	"github.com/suteetoe/repurpose/prometheus"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 8
	maxEmailLen    = 255
)

// RegisterRequest is the body of POST /api/auth/register
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is the body of POST /api/auth/refresh
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func normalizeEmail(email string) (string, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	if len(email) > maxEmailLen {
		return "", false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", false
	}
	return email, true
}

func validUsername(username string) bool {
	n := utf8.RuneCountInString(username)
	return n >= minUsernameLen && n <= maxUsernameLen
}

// Register creates a new account
func (h *Handler) Register(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()
	prometheus.RegisterCounter.Inc()

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse register request", zap.Error(err))
		return badRequest(c, "invalid request")
	}

	email, ok := normalizeEmail(req.Email)
	if !ok {
		return badRequest(c, "a valid email is required")
	}
	username := strings.TrimSpace(req.Username)
	if !validUsername(username) {
		return badRequest(c, "username must be between 3 and 50 characters")
	}
	if len(req.Password) < minPasswordLen {
		return badRequest(c, "password must be at least 8 characters")
	}

	taken, err := h.store.EmailOrUsernameTaken(ctx, email, username, 0)
	if err != nil {
		log.Error("Failed to check existing user", zap.Error(err))
		return internalError(c, "failed to register user")
	}
	if taken {
		log.Info("Registration rejected, user exists", zap.String("email", email))
		return c.JSON(http.StatusConflict, echo.Map{"error": "user with this email or username already exists"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return internalError(c, "failed to register user")
	}

	user := &model.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		IsActive:     true,
		Plan:         model.PlanFree,
	}
	if err := h.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "user with this email or username already exists"})
		}
		log.Error("Failed to create user", zap.Error(err))
		return internalError(c, "failed to register user")
	}

	log.Info("User registered", zap.Uint("user_id", user.ID), zap.String("email", user.Email))
	return c.JSON(http.StatusCreated, user)
}

// Login checks credentials and issues an access and a refresh token
func (h *Handler) Login(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()
	prometheus.LoginCounter.Inc()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return badRequest(c, "invalid request")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.store.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Error("Failed to load user", zap.Error(err))
		return internalError(c, "failed to login")
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		log.Info("Invalid credentials", zap.String("email", email))
		prometheus.RecordAuthError("login_failure")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
	}

	if !user.IsActive {
		log.Info("Inactive user attempted login", zap.Uint("user_id", user.ID))
		prometheus.RecordAuthError("inactive_user")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "user account is inactive"})
	}

	pair, err := h.jwt.GeneratePair(user.ID, user.Email)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return internalError(c, "token error")
	}

	log.Info("User logged in", zap.Uint("user_id", user.ID))
	return c.JSON(http.StatusOK, pair)
}

// Refresh trades a refresh token for a new access token. The refresh token
// itself is returned unchanged.
func (h *Handler) Refresh(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()

	var req RefreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return badRequest(c, "refresh_token is required")
	}

	claims, err := h.jwt.ValidateToken(req.RefreshToken, jwtutil.TokenTypeRefresh)
	if err != nil {
		log.Info("Invalid refresh token", zap.Error(err))
		prometheus.RecordAuthError("invalid_refresh_token")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	userID, _ := claims.UserID()

	user, err := h.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		log.Error("Failed to load user", zap.Error(err))
		return internalError(c, "failed to refresh token")
	}
	if !user.IsActive {
		prometheus.RecordAuthError("inactive_user")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "user account is inactive"})
	}

	access, err := h.jwt.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return internalError(c, "token error")
	}

	return c.JSON(http.StatusOK, jwtutil.TokenPair{
		AccessToken:  access,
		RefreshToken: req.RefreshToken,
		TokenType:    "bearer",
	})
}
