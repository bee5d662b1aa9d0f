package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/course-tracker/internal/infrastructure/logging"
	"go.uber.org/zap"
)

// Pinger reports whether a backing service is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler liveness probe
type HealthHandler struct {
	DB      Pinger
	Timeout time.Duration
}

func NewHealthHandler(DB Pinger, Timeout time.Duration) *HealthHandler {
	return &HealthHandler{DB, Timeout}
}

type healthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func (hh *HealthHandler) HandleHealth(c echo.Context) error {
	ctx := c.Request().Context()
	if hh.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, hh.Timeout)
		defer cancel()
	}

	if err := hh.DB.Ping(ctx); err != nil {
		logging.ExtractLoggerFromContext(ctx).Warn("database unreachable", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable,
			NewRESTStandardError(http.StatusServiceUnavailable, "database unreachable").SetTraceID(TraceID(c)))
	}
	return c.JSON(http.StatusOK, NewRESTResponse(&healthStatus{"ok", "ok"}, "API is running"))
}
