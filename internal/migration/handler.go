package migration

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/leadkhata/leadkhata/internal/platform/httpx"
)

// Enqueuer hands a backfill off to the background worker.
type Enqueuer interface {
	EnqueueBackfill(ctx context.Context) (string, error)
}

// Handler manages migration endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	enqueuer Enqueuer
}

// NewHandler builds a Handler instance. The enqueuer may be nil, in which case
// only synchronous runs are available.
func NewHandler(logger *slog.Logger, service *Service, enqueuer Enqueuer) *Handler {
	return &Handler{logger: logger, service: service, enqueuer: enqueuer}
}

// MountRoutes registers migration routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/backfill", h.backfill)
}

func (h *Handler) backfill(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("async") == "true" {
		if h.enqueuer == nil {
			httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "background worker not configured")
			return
		}
		taskID, err := h.enqueuer.EnqueueBackfill(r.Context())
		if err != nil {
			h.logger.Error("enqueue backfill", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusAccepted, map[string]string{"taskId": taskID})
		return
	}

	result, err := h.service.Run(r.Context())
	if err != nil {
		h.logger.Error("run backfill", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}
