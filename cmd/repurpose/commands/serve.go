package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"github.com/suteetoe/repurpose/internal/extract"
	"github.com/suteetoe/repurpose/internal/handler"
	"github.com/suteetoe/repurpose/internal/middleware"
	"github.com/suteetoe/repurpose/internal/repurpose"
	"github.com/suteetoe/repurpose/internal/store"
	"github.com/suteetoe/repurpose/pkg/database"
	"github.com/suteetoe/repurpose/pkg/jwtutil"
	"github.com/suteetoe/repurpose/pkg/logger"
	"github.com/suteetoe/repurpose/prometheus"
	"go.uber.org/zap"
)

var (
	// Serve flags
	port          string
	skipMigrate   bool
	shutdownGrace time.Duration
)

// serveCmd starts the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Listen port (overrides SERVER_PORT)")
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not migrate the schema on startup")
	serveCmd.Flags().DurationVar(&shutdownGrace, "shutdown-timeout", 10*time.Second, "Time allowed for in-flight requests on shutdown")
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	if port != "" {
		cfg.Server.Port = port
	}
	log.Info("Starting repurpose service...", cfg.LogConfig()...)

	db, err := database.InitDB(&cfg.DB, log)
	if err != nil {
		return err
	}
	if !skipMigrate {
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		log.Info("Database migrations completed")
	}

	client := repurpose.NewClient(cfg.LLM)
	if repurpose.IsMock(client) {
		log.Warn("No model API key configured, using mock generations")
	}
	prometheus.SetServiceInfo(version, repurpose.IsMock(client))

	h := handler.New(
		cfg,
		store.New(db),
		repurpose.NewOrchestrator(client, cfg.LLM.MaxConcurrency),
		extract.NewExtractor(cfg.Upload),
		jwtutil.NewJWTUtil(&cfg.JWT),
	)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
	}))
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())
	// multipart overhead on top of the file limit
	e.Use(echomiddleware.BodyLimit(fmt.Sprintf("%dK", cfg.Upload.MaxSize/1024+1024)))

	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))
	h.RegisterRoutes(e)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("Server stopped")
	return nil
}
