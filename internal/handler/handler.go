package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/repurpose/internal/extract"
	"github.com/suteetoe/repurpose/internal/middleware"
	"github.com/suteetoe/repurpose/internal/repurpose"
	"github.com/suteetoe/repurpose/internal/store"
	"github.com/suteetoe/repurpose/pkg/config"
	"github.com/suteetoe/repurpose/pkg/jwtutil"
)

// Handler serves the HTTP API
type Handler struct {
	store        *store.Store
	orchestrator *repurpose.Orchestrator
	extractor    *extract.Extractor
	jwt          *jwtutil.JWTUtil
	cfg          *config.Config
}

// New wires a handler from its dependencies
func New(cfg *config.Config, st *store.Store, orchestrator *repurpose.Orchestrator, extractor *extract.Extractor, jwt *jwtutil.JWTUtil) *Handler {
	return &Handler{
		store:        st,
		orchestrator: orchestrator,
		extractor:    extractor,
		jwt:          jwt,
		cfg:          cfg,
	}
}

// RegisterRoutes mounts every endpoint on e
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/health", h.HealthCheck)

	auth := e.Group("/api/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.POST("/refresh", h.Refresh)

	requireUser := middleware.AuthMiddleware(h.jwt, h.store)

	user := e.Group("/api/user", requireUser)
	user.GET("/profile", h.GetProfile)
	user.PUT("/profile", h.UpdateProfile)
	user.POST("/change-password", h.ChangePassword)
	user.POST("/deactivate", h.Deactivate)
	user.POST("/brand-voice", h.CreateBrandVoice)
	user.GET("/brand-voices", h.ListBrandVoices)
	user.GET("/brand-voice/:id", h.GetBrandVoice)
	user.PUT("/brand-voice/:id", h.UpdateBrandVoice)
	user.DELETE("/brand-voice/:id", h.DeleteBrandVoice)

	content := e.Group("/api/content", requireUser)
	content.POST("/upload", h.UploadContent)
	content.POST("/upload-file", h.UploadFile)
	content.GET("", h.ListContent)
	content.GET("/", h.ListContent)
	content.GET("/:id", h.GetContent)
	content.PUT("/:id", h.UpdateContent)
	content.DELETE("/:id", h.DeleteContent)
	content.GET("/:id/generations", h.ListContentGenerations)

	generate := e.Group("/api/generate", requireUser)
	generate.POST("/repurpose", h.Repurpose)
	generate.POST("/regenerate/:id", h.Regenerate)
	generate.GET("/history", h.History)
	generate.GET("/:id", h.GetGeneration)
	generate.DELETE("/:id", h.DeleteGeneration)
}

// parseID reads a positive numeric path parameter
func parseID(c echo.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

func notFound(c echo.Context, what string) error {
	return c.JSON(http.StatusNotFound, echo.Map{"error": what + " not found"})
}

func internalError(c echo.Context, msg string) error {
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg})
}
