package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"sarpras/internal/reservations/availability"
	"sarpras/internal/reservations/service"
	apperrors "sarpras/pkg/errors"
	httputil "sarpras/pkg/http"
	"sarpras/pkg/logger"
	"sarpras/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ReservationHandler struct {
	service service.ReservationService
	log     *logger.Logger
}

func NewReservationHandler(service service.ReservationService, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log,
	}
}

type AvailabilityRequest struct {
	model.Reservation
	ExcludeID string `json:"exclude_id,omitempty"`
}

type AvailabilityResponse struct {
	Available bool                   `json:"available"`
	Conflict  *availability.Conflict `json:"conflict,omitempty"`
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var reservation model.Reservation
	if err := json.NewDecoder(r.Body).Decode(&reservation); err != nil {
		h.writeInvalidBody(w, "Create")
		return
	}

	if err := h.service.Create(r.Context(), &reservation); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, reservation); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	reservation, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	reservations, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, reservations, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var updates model.ReservationUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeInvalidBody(w, "Update")
		return
	}

	updated, err := h.service.Update(r.Context(), id, &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, updated); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ReservationHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	filter := model.ReservationFilter{
		Kind:      model.ReservationKind(query.Get("kind")),
		AssetCode: query.Get("asset_code"),
		DriverRef: query.Get("driver_ref"),
	}

	var err error
	if filter.StartTime, err = parseOptionalTime(query.Get("start_time"), "start_time"); err != nil {
		h.writeError(w, "Search", err)
		return
	}
	if filter.EndTime, err = parseOptionalTime(query.Get("end_time"), "end_time"); err != nil {
		h.writeError(w, "Search", err)
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	reservations, total, err := h.service.Search(r.Context(), filter, limit, offset)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	if err := httputil.WritePaginated(w, reservations, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "Search", "operation", "WritePaginated", "error", err)
	}
}

// CheckAvailability is a dry run of Create: same checks, nothing written.
func (h *ReservationHandler) CheckAvailability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req AvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeInvalidBody(w, "CheckAvailability")
		return
	}

	conflict, err := h.service.CheckAvailability(r.Context(), &req.Reservation, req.ExcludeID)
	if err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}

	if err := httputil.WriteSuccess(w, AvailabilityResponse{
		Available: conflict == nil,
		Conflict:  conflict,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckAvailability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/reservations", h.Create)
	router.GET("/api/v1/reservations", h.GetAll)
	router.GET("/api/v1/reservations/id/:id", h.GetByID)
	router.PATCH("/api/v1/reservations/id/:id", h.Update)
	router.DELETE("/api/v1/reservations/id/:id", h.Delete)
	router.GET("/api/v1/reservations/search", h.Search)
	router.POST("/api/v1/reservations/availability", h.CheckAvailability)
}

func (h *ReservationHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ReservationHandler) writeInvalidBody(w http.ResponseWriter, handler string) {
	if writeErr := httputil.WriteBadRequest(w, "Invalid request body"); writeErr != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "operation", "WriteBadRequest", "error", writeErr)
	}
}

func parseOptionalTime(value, name string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid " + name + " format, must be RFC3339")
	}
	return &parsed, nil
}
