package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"waste-bknd/internal/classifier"
	"waste-bknd/internal/services"
	"waste-bknd/internal/utils"
)

const fallbackImageType = "image/jpeg"

type EstimateHandler struct {
	service        *services.EstimationService
	logr           *zap.Logger
	maxUploadBytes int64
	exposeDetails  bool
}

func NewEstimateHandler(svc *services.EstimationService, logr *zap.Logger, maxUploadBytes int64, exposeDetails bool) *EstimateHandler {
	return &EstimateHandler{
		service:        svc,
		logr:           logr,
		maxUploadBytes: maxUploadBytes,
		exposeDetails:  exposeDetails,
	}
}

// Estimate handles POST /api/v1/estimate (multipart/form-data)
func (h *EstimateHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeFailure(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Upload exceeds %d MB", h.maxUploadBytes>>20), nil)
			return
		}
		writeFailure(w, http.StatusBadRequest, "Request must be multipart/form-data", errorDetails(err, h.exposeDetails))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	req, err := h.parseRequest(r)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	res, err := h.service.Estimate(r.Context(), *req)
	if err != nil {
		h.writeEstimateError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"data":      res.Estimation,
		"geminiRaw": res.Raw,
	})
}

func (h *EstimateHandler) parseRequest(r *http.Request) (*services.EstimateRequest, error) {
	req := &services.EstimateRequest{
		HierarchyRef: services.HierarchyRef{
			PanchayatID: r.FormValue("panchayatId"),
			WardID:      r.FormValue("wardId"),
			CollectorID: r.FormValue("collectorId"),
		},
		ContainerType: strings.TrimSpace(r.FormValue("containerType")),
		Address:       strings.TrimSpace(r.FormValue("address")),
	}

	var err error
	if req.ContainerVolumeLiters, err = utils.ParseOptionalFloat(r.FormValue("containerVolumeLiters")); err != nil {
		return nil, fmt.Errorf("containerVolumeLiters: %w", err)
	}
	if req.ContainerVolumeLiters != nil && *req.ContainerVolumeLiters < 0 {
		return nil, errors.New("containerVolumeLiters must not be negative")
	}
	if req.Latitude, err = utils.ParseOptionalFloat(r.FormValue("latitude")); err != nil {
		return nil, fmt.Errorf("latitude: %w", err)
	}
	if req.Latitude != nil && (*req.Latitude < -90 || *req.Latitude > 90) {
		return nil, errors.New("latitude must be between -90 and 90")
	}
	if req.Longitude, err = utils.ParseOptionalFloat(r.FormValue("longitude")); err != nil {
		return nil, fmt.Errorf("longitude: %w", err)
	}
	if req.Longitude != nil && (*req.Longitude < -180 || *req.Longitude > 180) {
		return nil, errors.New("longitude must be between -180 and 180")
	}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil // service reports the missing image
	}
	if err != nil {
		return nil, fmt.Errorf("image: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("image: %w", err)
	}

	req.Image = &classifier.Image{
		Data:     data,
		MimeType: imageType(header.Header.Get("Content-Type"), data),
		Name:     header.Filename,
	}
	return req, nil
}

// imageType prefers the declared type and sniffs when the client sent none.
func imageType(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if len(data) > 0 {
		if mt := mimetype.Detect(data); strings.HasPrefix(mt.String(), "image/") {
			return mt.String()
		}
	}
	return fallbackImageType
}

func (h *EstimateHandler) writeEstimateError(w http.ResponseWriter, err error) {
	status := services.HTTPStatus(err)
	if status < http.StatusInternalServerError {
		h.logr.Warn("estimation rejected", zap.Error(err))
		writeFailure(w, status, err.Error(), nil)
		return
	}

	h.logr.Error("waste estimation failed", zap.Error(err))
	writeFailure(w, status, services.DescribeFailure(err), errorDetails(err, h.exposeDetails))
}
