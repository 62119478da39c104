package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"waste-bknd/internal/models"
	"waste-bknd/internal/services"
)

type AdminHandler struct {
	service       *services.AdminService
	logr          *zap.Logger
	exposeDetails bool
}

func NewAdminHandler(svc *services.AdminService, logr *zap.Logger, exposeDetails bool) *AdminHandler {
	return &AdminHandler{service: svc, logr: logr, exposeDetails: exposeDetails}
}

func (h *AdminHandler) respond(w http.ResponseWriter, data any, err error, failMsg string) {
	if err != nil {
		status := services.HTTPStatus(err)
		if status < http.StatusInternalServerError {
			writeFailure(w, status, err.Error(), nil)
			return
		}
		h.logr.Error(failMsg, zap.Error(err))
		writeFailure(w, status, failMsg, errorDetails(err, h.exposeDetails))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// ListZillas handles GET /api/v1/zillas
func (h *AdminHandler) ListZillas(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.ListZillas(r.Context())
	h.respond(w, data, err, "Failed to fetch Zilla Panchayats")
}

// ListBlocks handles GET /api/v1/blocks?zillaId=
func (h *AdminHandler) ListBlocks(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.ListBlocks(r.Context(), r.URL.Query().Get("zillaId"))
	h.respond(w, data, err, "Failed to fetch Blocks")
}

// ListPanchayats handles GET /api/v1/panchayats?blockId=
func (h *AdminHandler) ListPanchayats(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.ListPanchayats(r.Context(), r.URL.Query().Get("blockId"))
	h.respond(w, data, err, "Failed to fetch Gram Panchayats")
}

// CreatePanchayat handles POST /api/v1/panchayats
func (h *AdminHandler) CreatePanchayat(w http.ResponseWriter, r *http.Request) {
	var in services.CreatePanchayatInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeFailure(w, http.StatusBadRequest, "Request body must be JSON", nil)
		return
	}

	data, err := h.service.CreatePanchayat(r.Context(), in)
	h.respond(w, data, err, "Failed to create Gram Panchayat")
}

// ListWards handles GET /api/v1/wards?panchayatId=
func (h *AdminHandler) ListWards(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.ListWards(r.Context(), r.URL.Query().Get("panchayatId"))
	h.respond(w, data, err, "Failed to fetch Wards")
}

// ListCollectors handles GET /api/v1/collectors?panchayatId=&wardId=&role=
func (h *AdminHandler) ListCollectors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data, err := h.service.ListCollectors(r.Context(), models.CollectorFilter{
		PanchayatID: q.Get("panchayatId"),
		WardID:      q.Get("wardId"),
		Role:        models.CollectorRole(q.Get("role")),
	})
	h.respond(w, data, err, "Failed to fetch Collectors")
}
