package report

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/leadkhata/leadkhata/internal/ledger"
	"github.com/leadkhata/leadkhata/internal/platform/httpx"
	"github.com/leadkhata/leadkhata/internal/shared"
)

// Handler manages report download endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ledger.xlsx", h.ledgerXLSX)
	r.Get("/statement.pdf", h.statementPDF)
}

func (h *Handler) ledgerXLSX(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ledger.ListRequest{}

	if raw := q.Get("customer_id"); raw != "" {
		oid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			httpx.FieldProblem(w, "customer_id", "invalid id")
			return
		}
		req.CustomerID = oid
	}
	for param, target := range map[string]*time.Time{"from": &req.From, "to": &req.To} {
		if raw := q.Get(param); raw != "" {
			parsed, err := shared.ParseISODate(raw)
			if err != nil {
				httpx.FieldProblem(w, param, "must be an ISO-8601 date")
				return
			}
			*target = parsed
		}
	}

	workbook, err := h.service.LedgerWorkbook(r.Context(), req)
	if err != nil {
		h.logger.Error("ledger workbook", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	defer func() { _ = workbook.Close() }()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="ledger.xlsx"`)
	if err := workbook.Write(w); err != nil {
		h.logger.Error("write workbook", slog.Any("error", err))
	}
}

func (h *Handler) statementPDF(w http.ResponseWriter, r *http.Request) {
	customerID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("customer_id"))
	if err != nil {
		httpx.FieldProblem(w, "customer_id", "invalid id")
		return
	}

	doc, err := h.service.StatementPDF(r.Context(), customerID)
	if err != nil {
		h.logger.Error("statement pdf", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="statement.pdf"`)
	if _, err := w.Write(doc); err != nil {
		h.logger.Error("write pdf", slog.Any("error", err))
	}
}
