package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"waste-bknd/internal/estimation"
	"waste-bknd/internal/models"
	"waste-bknd/internal/store"
)

// DefaultListLimit applies when a query names no positive limit.
const DefaultListLimit = 50

// EstimationPage is one page of records and the summary of that page.
type EstimationPage struct {
	Data    []*models.WasteEstimation `json:"data"`
	Summary models.EstimationSummary  `json:"summary"`
}

type EstimationQueryService struct {
	store EstimationStore
	logr  *zap.Logger
}

func NewEstimationQueryService(st EstimationStore, logr *zap.Logger) *EstimationQueryService {
	return &EstimationQueryService{store: st, logr: logr.Named("estimation_query")}
}

// List returns matching records newest first. The summary covers only the
// returned rows, not every match.
func (s *EstimationQueryService) List(ctx context.Context, f models.EstimationFilter) (*EstimationPage, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}

	rows, err := s.store.ListEstimations(ctx, f)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []*models.WasteEstimation{}
	}

	return &EstimationPage{Data: rows, Summary: Summarize(rows)}, nil
}

// Get returns one record with relations.
func (s *EstimationQueryService) Get(ctx context.Context, id string) (*models.WasteEstimation, error) {
	e, err := s.store.GetEstimation(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return e, err
}

// Summarize totals weight and volume and averages confidence, each rounded
// to 2 decimals. An empty page yields zeros.
func Summarize(rows []*models.WasteEstimation) models.EstimationSummary {
	var weight, volume, confidence float64
	for _, r := range rows {
		weight += r.EstimatedWeightKg
		volume += r.EstimatedVolumeLiters
		confidence += r.Confidence
	}

	summary := models.EstimationSummary{
		Count:             len(rows),
		TotalWeightKg:     estimation.Round2(weight),
		TotalVolumeLiters: estimation.Round2(volume),
	}
	if len(rows) > 0 {
		summary.AvgConfidence = estimation.Round2(confidence / float64(len(rows)))
	}
	return summary
}
