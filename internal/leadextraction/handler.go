package leadextraction

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

// Handler manages lead-extraction endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers extraction routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/summary", h.summary)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.remove)
	r.Post("/{id}/received", h.recordReceived)
}

type extractionPayload struct {
	CustomerID         string  `json:"customerId"`
	CustomerName       string  `json:"customerName"`
	Date               string  `json:"date" validate:"required"`
	Description        string  `json:"description"`
	BatteryWeight      float64 `json:"batteryWeight"`
	LeadPercentage     float64 `json:"leadPercentage"`
	LeadReceived       float64 `json:"leadReceived"`
	Notes              string  `json:"notes"`
	IsLeadReceivedOnly bool    `json:"isLeadReceivedOnly"`
}

func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request) (Input, bool) {
	var payload extractionPayload
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
		CustomerName:       payload.CustomerName,
		Date:               date,
		Description:        payload.Description,
		BatteryWeight:      payload.BatteryWeight,
		LeadPercentage:     payload.LeadPercentage,
		LeadReceived:       payload.LeadReceived,
		Notes:              payload.Notes,
		IsLeadReceivedOnly: payload.IsLeadReceivedOnly,
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
	extraction, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.logger.Error("create lead extraction", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, extraction)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid extraction id")
		return
	}
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	extraction, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.logger.Error("update lead extraction", slog.Any("error", err), slog.String("id", id.Hex()))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, extraction)
}

type listEnvelope struct {
	Extractions []Extraction `json:"extractions"`
	Summary     *Summary     `json:"summary"`
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

	extractions, summary, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list lead extractions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listEnvelope{Extractions: extractions, Summary: summary})
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
		h.logger.Error("lead extraction summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid extraction id")
		return
	}
	extraction, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, extraction)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid extraction id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type receivedPayload struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

func (h *Handler) recordReceived(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid extraction id")
		return
	}
	var payload receivedPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		fieldErrs := err.(validator.ValidationErrors)
		httpx.FieldProblem(w, fieldErrs[0].Field(), fieldErrs[0].Error())
		return
	}

	extraction, err := h.service.RecordReceived(r.Context(), id, payload.Amount)
	if err != nil {
		h.logger.Error("record lead received", slog.Any("error", err), slog.String("id", id.Hex()))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, extraction)
}
