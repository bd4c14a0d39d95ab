package dashboard

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/leadkhata/leadkhata/internal/platform/httpx"
	"github.com/leadkhata/leadkhata/internal/shared"
)

// Handler manages dashboard endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/summary", h.summary)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	var from, to time.Time
	for param, target := range map[string]*time.Time{"from": &from, "to": &to} {
		if raw := r.URL.Query().Get(param); raw != "" {
			parsed, err := shared.ParseISODate(raw)
			if err != nil {
				httpx.FieldProblem(w, param, "must be an ISO-8601 date")
				return
			}
			*target = parsed
		}
	}

	overview, err := h.service.Overview(r.Context(), from, to)
	if err != nil {
		h.logger.Error("dashboard overview", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, overview)
}
