package leadselling

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/leadkhata/leadkhata/internal/platform/httpx"
	"github.com/leadkhata/leadkhata/internal/shared"
)

// Handler manages lead-selling endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers sale routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/statement", h.statement)
	r.Get("/summary", h.summary)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.remove)
}

type salePayload struct {
	CustomerID    string  `json:"customerId"`
	CustomerName  string  `json:"customerName"`
	Date          string  `json:"date" validate:"required"`
	CommuteRent   float64 `json:"commuteRent"`
	Weight        float64 `json:"weight"`
	Rate          float64 `json:"rate"`
	Debit         float64 `json:"debit"`
	Notes         string  `json:"notes"`
	IsPaymentOnly bool    `json:"isPaymentOnly"`
}

func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request) (Input, bool) {
	var payload salePayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return Input{}, false
	}
	if err := h.validator.Struct(payload); err != nil {
		fieldErrs := err.(validator.ValidationErrors)
		httpx.FieldProblem(w, fieldErrs[0].Field(), fieldErrs[0].Error())
		return Input{}, false
	}
	date, err := shared.ParseISODate(payload.Date)
	if err != nil {
		httpx.FieldProblem(w, "date", "must be an ISO-8601 date")
		return Input{}, false
	}

	input := Input{
		CustomerName:  payload.CustomerName,
		Date:          date,
		CommuteRent:   payload.CommuteRent,
		Weight:        payload.Weight,
		Rate:          payload.Rate,
		Debit:         payload.Debit,
		Notes:         payload.Notes,
		IsPaymentOnly: payload.IsPaymentOnly,
	}
	if payload.CustomerID != "" {
		oid, err := primitive.ObjectIDFromHex(payload.CustomerID)
		if err != nil {
			httpx.FieldProblem(w, "customerId", "invalid id")
			return Input{}, false
		}
		input.CustomerID = oid
	}
	return input, true
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	sale, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.logger.Error("create lead sale", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid sale id")
		return
	}
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	sale, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.logger.Error("update lead sale", slog.Any("error", err), slog.String("id", id.Hex()))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

type listEnvelope struct {
	Lines   []StatementLine `json:"lines"`
	Summary *Summary        `json:"summary"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ListRequest{Query: q.Get("q")}

	if raw := q.Get("customer_id"); raw != "" {
		oid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			httpx.FieldProblem(w, "customer_id", "invalid id")
			return
		}
		req.CustomerID = oid
	}
	for param, target := range map[string]*time.Time{"date": &req.Date, "from": &req.From, "to": &req.To} {
		if raw := q.Get(param); raw != "" {
			parsed, err := shared.ParseISODate(raw)
			if err != nil {
				httpx.FieldProblem(w, param, "must be an ISO-8601 date")
				return
			}
			*target = parsed
		}
	}

	lines, summary, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list lead sales", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listEnvelope{Lines: lines, Summary: summary})
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	customerID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("customer_id"))
	if err != nil {
		httpx.FieldProblem(w, "customer_id", "invalid id")
		return
	}
	statement, err := h.service.Statement(r.Context(), customerID)
	if err != nil {
		h.logger.Error("lead sale statement", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, statement)
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
	summary, err := h.service.Summary(r.Context(), from, to)
	if err != nil {
		h.logger.Error("lead sale summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid sale id")
		return
	}
	sale, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid sale id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
