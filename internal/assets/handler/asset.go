package handler

import (
	"encoding/json"
	"net/http"

	"sarpras/internal/assets/service"
	httputil "sarpras/pkg/http"
	"sarpras/pkg/logger"
	"sarpras/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AssetHandler struct {
	service service.AssetService
	log     *logger.Logger
}

func NewAssetHandler(service service.AssetService, log *logger.Logger) *AssetHandler {
	return &AssetHandler{
		service: service,
		log:     log,
	}
}

func (h *AssetHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var asset model.Asset
	if err := json.NewDecoder(r.Body).Decode(&asset); err != nil {
		if writeErr := httputil.WriteBadRequest(w, "Invalid request body"); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteBadRequest", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), &asset); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, asset); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *AssetHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	asset, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, asset); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AssetHandler) GetByCode(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	asset, err := h.service.GetByCode(r.Context(), ps.ByName("code"))
	if err != nil {
		h.writeError(w, "GetByCode", err)
		return
	}

	if err := httputil.WriteSuccess(w, asset); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByCode", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AssetHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	kind := model.AssetKind(r.URL.Query().Get("kind"))
	assets, total, err := h.service.GetAll(r.Context(), kind, limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, assets, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *AssetHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.AssetUpdate
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

func (h *AssetHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AssetHandler) Availability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	start, end, err := httputil.ExtractTimeRange(r, "start_time", "end_time")
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	level, err := h.service.StockLevel(r.Context(), ps.ByName("code"), start, end)
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	if err := httputil.WriteSuccess(w, level); err != nil {
		h.log.Error("failed to write success response", "handler", "Availability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AssetHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/assets", h.Create)
	router.GET("/api/v1/assets", h.GetAll)
	router.GET("/api/v1/assets/id/:id", h.GetByID)
	router.PATCH("/api/v1/assets/id/:id", h.Update)
	router.DELETE("/api/v1/assets/id/:id", h.Delete)
	router.GET("/api/v1/assets/code/:code", h.GetByCode)
	router.GET("/api/v1/assets/code/:code/availability", h.Availability)
}

func (h *AssetHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}
