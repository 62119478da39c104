package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"waste-bknd/internal/classifier"
	"waste-bknd/internal/estimation"
	"waste-bknd/internal/models"
)

const imagePreviewChars = 100

// EstimateRequest is one photo submission. Optional numeric fields are nil
// when absent.
type EstimateRequest struct {
	Image *classifier.Image
	HierarchyRef

	ContainerType         string
	ContainerVolumeLiters *float64
	Latitude              *float64
	Longitude             *float64
	Address               string
}

// EstimateResult is the stored record plus the classifier output it came from.
type EstimateResult struct {
	Estimation *models.WasteEstimation
	Raw        *classifier.Result
}

type EstimationService struct {
	resolver   *HierarchyResolver
	classifier Classifier
	store      EstimationStore
	calc       *estimation.Calculator
	logr       *zap.Logger
	now        func() time.Time
}

func NewEstimationService(
	resolver *HierarchyResolver,
	cls Classifier,
	st EstimationStore,
	calc *estimation.Calculator,
	logr *zap.Logger,
) *EstimationService {
	return &EstimationService{
		resolver:   resolver,
		classifier: cls,
		store:      st,
		calc:       calc,
		logr:       logr.Named("estimation"),
		now:        time.Now,
	}
}

// Estimate validates the submission, resolves the hierarchy, classifies the
// image, derives weight and confidence and stores a PENDING record. Steps run
// strictly in that order; nothing is written unless every earlier step
// succeeded.
func (s *EstimationService) Estimate(ctx context.Context, req EstimateRequest) (*EstimateResult, error) {
	if req.Image == nil || len(req.Image.Data) == 0 {
		return nil, ErrImageRequired
	}

	h, err := s.resolver.Resolve(ctx, req.HierarchyRef)
	if err != nil {
		return nil, err
	}

	cls, err := s.classifier.Classify(ctx, *req.Image, classifier.PromptContext{
		ContainerType:         req.ContainerType,
		ContainerVolumeLiters: req.ContainerVolumeLiters,
	})
	if err != nil {
		return nil, err
	}
	raw := cls.Result

	derived := s.calc.Derive(estimation.Reading{
		Material:           raw.Material,
		VolumeLiters:       raw.VolumeLitersEstimate,
		MaterialConfidence: raw.MaterialConfidence,
		VolumeConfidence:   raw.VolumeConfidence,
		ImageQuality:       raw.ImageQuality,
	})

	record := &models.WasteEstimation{
		ID:          uuid.NewString(),
		PanchayatID: h.Panchayat.ID,
		WardID:      h.Ward.ID,
		CollectorID: h.Collector.ID,

		ImageURL:  strPtr(imagePreview(req.Image)),
		ImageName: strPtr(req.Image.Name),
		ImageSize: int64Ptr(int64(len(req.Image.Data))),

		ContainerType:         strPtr(req.ContainerType),
		ContainerVolumeLiters: req.ContainerVolumeLiters,
		Latitude:              req.Latitude,
		Longitude:             req.Longitude,
		Address:               strPtr(req.Address),

		CollectionDate: s.now().UTC(),

		EstimatedWeightKg:     derived.WeightKg,
		EstimatedVolumeLiters: derived.VolumeLiters,
		MaterialType:          derived.Material,
		DensityKgPerL:         derived.DensityKgPerL,
		FullnessPercent:       raw.FullnessPercent,
		MoistureLevel:         moistureLevel(raw.MoistureLevel),
		ContaminationLevel:    raw.ContaminationLevel,
		ImageQuality:          imageQuality(raw.ImageQuality),
		Confidence:            derived.Confidence,
		AIReasoning:           strPtr(raw.ReasoningShort),

		Status: models.StatusPending,
	}

	saved, err := s.store.CreateEstimation(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("save estimation: %w", err)
	}

	s.logr.Info("estimation stored",
		zap.String("id", saved.ID),
		zap.String("panchayat_id", saved.PanchayatID),
		zap.String("material", string(saved.MaterialType)),
		zap.Float64("volume_liters", saved.EstimatedVolumeLiters),
		zap.Float64("weight_kg", saved.EstimatedWeightKg),
		zap.Float64("confidence", saved.Confidence))

	return &EstimateResult{Estimation: saved, Raw: raw}, nil
}

// imagePreview keeps a short data-URL prefix; images are not stored.
func imagePreview(img *classifier.Image) string {
	mimeType := img.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	encoded := base64.StdEncoding.EncodeToString(img.Data)
	if len(encoded) > imagePreviewChars {
		encoded = encoded[:imagePreviewChars]
	}
	return "data:" + mimeType + ";base64," + encoded + "..."
}

func moistureLevel(v *string) *models.MoistureLevel {
	if v == nil {
		return nil
	}
	m := models.MoistureLevel(strings.ToLower(strings.TrimSpace(*v)))
	if !m.Valid() {
		return nil
	}
	return &m
}

// imageQuality stores unrecognised ratings as poor, matching how they score.
func imageQuality(v string) models.ImageQuality {
	switch q := models.ImageQuality(strings.ToLower(strings.TrimSpace(v))); q {
	case models.ImageQualityGood, models.ImageQualityMedium, models.ImageQualityPoor:
		return q
	}
	return models.ImageQualityPoor
}

func strPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func int64Ptr(v int64) *int64 {
	return &v
}
