package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/repurpose/internal/repurpose"
	"github.com/suteetoe/repurpose/pkg/logger"
	"go.uber.org/zap"
)

// HealthCheck handles the health check endpoint
func (h *Handler) HealthCheck(c echo.Context) error {
	status := http.StatusOK
	dbStatus := "up"
	if err := h.store.Ping(); err != nil {
		logger.FromEcho(c).Error("Database ping failed", zap.Error(err))
		status = http.StatusServiceUnavailable
		dbStatus = "down"
	}

	health := "healthy"
	if status != http.StatusOK {
		health = "unhealthy"
	}

	return c.JSON(status, echo.Map{
		"status":     health,
		"service":    h.cfg.ServiceName,
		"database":   dbStatus,
		"mock_model": repurpose.IsMock(h.orchestrator.Client()),
	})
}

// Root answers with a short service banner
func (h *Handler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message":   "Content Repurposing API",
		"platforms": repurpose.KnownPlatforms,
	})
}
