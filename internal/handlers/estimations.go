package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"waste-bknd/internal/models"
	"waste-bknd/internal/services"
	"waste-bknd/internal/utils"
)

type EstimationsHandler struct {
	service       *services.EstimationQueryService
	logr          *zap.Logger
	exposeDetails bool
}

func NewEstimationsHandler(svc *services.EstimationQueryService, logr *zap.Logger, exposeDetails bool) *EstimationsHandler {
	return &EstimationsHandler{service: svc, logr: logr, exposeDetails: exposeDetails}
}

func (h *EstimationsHandler) filter(w http.ResponseWriter, r *http.Request) (models.EstimationFilter, bool) {
	f, err := utils.ParseEstimationFilter(r.URL.Query())
	if err != nil {
		writeFailure(w, http.StatusBadRequest, fmt.Sprintf("%v: %v", services.ErrInvalidFilter, err), nil)
		return f, false
	}
	return f, true
}

// List handles GET /api/v1/estimations
func (h *EstimationsHandler) List(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}

	page, err := h.service.List(r.Context(), f)
	if err != nil {
		h.logr.Error("failed to fetch estimations", zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, "Failed to fetch estimations", errorDetails(err, h.exposeDetails))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    page.Data,
		"summary": page.Summary,
	})
}

// Get handles GET /api/v1/estimations/{id}
func (h *EstimationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	e, err := h.service.Get(r.Context(), id)
	if err != nil {
		status := services.HTTPStatus(err)
		if status == http.StatusNotFound {
			writeFailure(w, status, "Estimation not found", nil)
			return
		}
		h.logr.Error("failed to fetch estimation", zap.String("id", id), zap.Error(err))
		writeFailure(w, status, "Failed to fetch estimation", errorDetails(err, h.exposeDetails))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    e,
	})
}

// Export handles GET /api/v1/estimations/export (xlsx)
func (h *EstimationsHandler) Export(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}

	buf, err := h.service.ExportWorkbook(r.Context(), f)
	if err != nil {
		h.logr.Error("failed to export estimations", zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, "Failed to export estimations", errorDetails(err, h.exposeDetails))
		return
	}

	filename := fmt.Sprintf("waste-estimations-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// GeoJSON handles GET /api/v1/estimations/geojson
func (h *EstimationsHandler) GeoJSON(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}

	fc, err := h.service.ExportGeoJSON(r.Context(), f)
	if err != nil {
		h.logr.Error("failed to build estimation map layer", zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, "Failed to fetch estimations", errorDetails(err, h.exposeDetails))
		return
	}

	body, err := json.Marshal(fc)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, "Failed to encode map layer", errorDetails(err, h.exposeDetails))
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
