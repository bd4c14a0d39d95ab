package ledger

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

// Handler manages ledger endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/statement", h.statement)
	r.Get("/daily", h.daily)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.remove)
	r.Post("/{id}/weights", h.addWeight)
	r.Get("/{id}/balance", h.balance)
}

// entryPayload is the JSON body for creates and updates. Dates cross the
// boundary as ISO-8601 strings and are converted immediately.
type entryPayload struct {
	CustomerID    string  `json:"customerId"`
	CustomerName  string  `json:"customerName"`
	Date          string  `json:"date" validate:"required"`
	BatteryType   string  `json:"batteryType"`
	TotalWeight   float64 `json:"totalWeight"`
	RatePerKg     float64 `json:"ratePerKg"`
	Debit         float64 `json:"debit"`
	Notes         string  `json:"notes"`
	IsPaymentOnly bool    `json:"isPaymentOnly"`
}

func (h *Handler) decodePayload(w http.ResponseWriter, r *http.Request) (*entryPayload, time.Time, bool) {
	var payload entryPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return nil, time.Time{}, false
	}
	if err := h.validator.Struct(payload); err != nil {
		fieldErrs := err.(validator.ValidationErrors)
		httpx.FieldProblem(w, fieldErrs[0].Field(), fieldErrs[0].Error())
		return nil, time.Time{}, false
	}
	date, err := shared.ParseISODate(payload.Date)
	if err != nil {
		httpx.FieldProblem(w, "date", "must be an ISO-8601 date")
		return nil, time.Time{}, false
	}
	return &payload, date, true
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	payload, date, ok := h.decodePayload(w, r)
	if !ok {
		return
	}

	var customerID primitive.ObjectID
	if payload.CustomerID != "" {
		oid, err := primitive.ObjectIDFromHex(payload.CustomerID)
		if err != nil {
			httpx.FieldProblem(w, "customerId", "invalid id")
			return
		}
		customerID = oid
	}

	entry, err := h.service.Create(r.Context(), CreateInput{
		CustomerID:    customerID,
		CustomerName:  payload.CustomerName,
		Date:          date,
		BatteryType:   BatteryType(payload.BatteryType),
		TotalWeight:   payload.TotalWeight,
		RatePerKg:     payload.RatePerKg,
		Debit:         payload.Debit,
		Notes:         payload.Notes,
		IsPaymentOnly: payload.IsPaymentOnly,
	})
	if err != nil {
		h.logger.Error("create ledger entry", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid entry id")
		return
	}
	payload, date, ok := h.decodePayload(w, r)
	if !ok {
		return
	}

	entry, err := h.service.Update(r.Context(), id, UpdateInput{
		Date:          date,
		BatteryType:   BatteryType(payload.BatteryType),
		TotalWeight:   payload.TotalWeight,
		RatePerKg:     payload.RatePerKg,
		Debit:         payload.Debit,
		Notes:         payload.Notes,
		IsPaymentOnly: payload.IsPaymentOnly,
	})
	if err != nil {
		h.logger.Error("update ledger entry", slog.Any("error", err), slog.String("id", id.Hex()))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

type listEnvelope struct {
	Lines   []StatementLine `json:"lines"`
	Summary *Summary        `json:"summary"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req, ok := h.listRequest(w, r)
	if !ok {
		return
	}
	lines, summary, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list ledger entries", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listEnvelope{Lines: lines, Summary: summary})
}

func (h *Handler) listRequest(w http.ResponseWriter, r *http.Request) (ListRequest, bool) {
	q := r.URL.Query()
	req := ListRequest{Query: q.Get("q")}

	if raw := q.Get("customer_id"); raw != "" {
		oid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			httpx.FieldProblem(w, "customer_id", "invalid id")
			return ListRequest{}, false
		}
		req.CustomerID = oid
	}
	for param, target := range map[string]*time.Time{"date": &req.Date, "from": &req.From, "to": &req.To} {
		if raw := q.Get(param); raw != "" {
			parsed, err := shared.ParseISODate(raw)
			if err != nil {
				httpx.FieldProblem(w, param, "must be an ISO-8601 date")
				return ListRequest{}, false
			}
			*target = parsed
		}
	}
	return req, true
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	customerID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("customer_id"))
	if err != nil {
		httpx.FieldProblem(w, "customer_id", "invalid id")
		return
	}
	statement, err := h.service.Statement(r.Context(), customerID)
	if err != nil {
		h.logger.Error("ledger statement", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, statement)
}

func (h *Handler) daily(w http.ResponseWriter, r *http.Request) {
	date, err := shared.ParseISODate(r.URL.Query().Get("date"))
	if err != nil {
		httpx.FieldProblem(w, "date", "must be an ISO-8601 date")
		return
	}
	view, err := h.service.Daily(r.Context(), date)
	if err != nil {
		h.logger.Error("ledger daily view", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid entry id")
		return
	}
	entry, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

// balance exposes the stored snapshot and the recomputed running balance as
// two distinct figures so callers cannot conflate them.
func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid entry id")
		return
	}
	stored, err := h.service.StoredBalance(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	computed, err := h.service.ComputedRunningBalance(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]float64{
		"storedBalance":   stored,
		"computedBalance": computed,
	})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid entry id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type weightPayload struct {
	Weight float64 `json:"weight" validate:"required,gt=0"`
}

func (h *Handler) addWeight(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid entry id")
		return
	}
	var payload weightPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		fieldErrs := err.(validator.ValidationErrors)
		httpx.FieldProblem(w, fieldErrs[0].Field(), fieldErrs[0].Error())
		return
	}

	entry, err := h.service.AddWeightLog(r.Context(), id, payload.Weight)
	if err != nil {
		h.logger.Error("append weight log", slog.Any("error", err), slog.String("id", id.Hex()))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}
