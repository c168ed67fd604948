package handler

import (
	"encoding/json"
	"net/http"

	"sarpras/internal/drivers/service"
	httputil "sarpras/pkg/http"
	"sarpras/pkg/logger"
	"sarpras/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type DriverHandler struct {
	service service.DriverService
	log     *logger.Logger
}

func NewDriverHandler(service service.DriverService, log *logger.Logger) *DriverHandler {
	return &DriverHandler{
		service: service,
		log:     log,
	}
}

func (h *DriverHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var driver model.Driver
	if err := json.NewDecoder(r.Body).Decode(&driver); err != nil {
		if writeErr := httputil.WriteBadRequest(w, "Invalid request body"); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteBadRequest", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), &driver); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, driver); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *DriverHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	driver, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, driver); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DriverHandler) GetByCode(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	driver, err := h.service.GetByCode(r.Context(), ps.ByName("code"))
	if err != nil {
		h.writeError(w, "GetByCode", err)
		return
	}

	if err := httputil.WriteSuccess(w, driver); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByCode", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DriverHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	drivers, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, drivers, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *DriverHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.DriverUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteBadRequest(w, "Invalid request body"); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "operation", "WriteBadRequest", "error", writeErr)
		}
		return
	}

	updated, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, updated); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DriverHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *DriverHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/drivers", h.Create)
	router.GET("/api/v1/drivers", h.GetAll)
	router.GET("/api/v1/drivers/id/:id", h.GetByID)
	router.PATCH("/api/v1/drivers/id/:id", h.Update)
	router.DELETE("/api/v1/drivers/id/:id", h.Delete)
	router.GET("/api/v1/drivers/code/:code", h.GetByCode)
}

func (h *DriverHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}
