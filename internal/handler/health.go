package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/quests/internal/health"
)

// HealthChecker produces a health report. *health.Checker implements it.
type HealthChecker interface {
	Check(ctx context.Context) (health.Report, error)
}

type HealthHandler struct {
	checker HealthChecker
	logger  *slog.Logger
}

func NewHealthHandler(c HealthChecker, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{checker: c, logger: logger}
}

// Health answers 200 when every check is ok, 503 otherwise, and 500 when
// no report could be built.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	rep, err := h.checker.Check(r.Context())
	if err != nil {
		h.logger.Error("health check failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status":    health.StatusError,
			"error":     err.Error(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	status := http.StatusOK
	if !rep.Healthy() {
		status = http.StatusServiceUnavailable
		h.logger.Warn("health degraded", "checks", rep.Checks)
	}
	writeJSON(w, status, rep)
}

// Up is the liveness probe.
func (h *HealthHandler) Up(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
