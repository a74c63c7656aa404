package logger

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type contextKey string

const loggerKey = "logger"

const ctxLoggerKey contextKey = "logger"

// FromContext retrieves the logger from the context
func FromContext(ctx context.Context) *zap.Logger {
	logger, ok := ctx.Value(ctxLoggerKey).(*zap.Logger)
	if !ok {
		return GetLogger()
	}
	return logger
}

// WithContext adds the logger to the context
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey, logger)
}

// FromEcho retrieves the logger from the Echo context
func FromEcho(c echo.Context) *zap.Logger {
	logger, ok := c.Get(loggerKey).(*zap.Logger)
	if !ok {
		return GetLogger()
	}
	return logger
}

// ToEcho stores the logger on the Echo context and on the request's context
func ToEcho(c echo.Context, logger *zap.Logger) {
	c.Set(loggerKey, logger)
	req := c.Request()
	c.SetRequest(req.WithContext(WithContext(req.Context(), logger)))
}
