package services

import (
	"context"

	"waste-bknd/internal/classifier"
	"waste-bknd/internal/models"
)

// HierarchyStore is the read side needed to resolve panchayat, ward and collector.
type HierarchyStore interface {
	FindPanchayat(ctx context.Context, id string) (*models.GramPanchayat, error)
	FirstPanchayatNameContaining(ctx context.Context, fragment string) (*models.GramPanchayat, error)
	FirstPanchayat(ctx context.Context) (*models.GramPanchayat, error)
	FindWard(ctx context.Context, id string) (*models.Ward, error)
	FirstWardInPanchayat(ctx context.Context, panchayatID string) (*models.Ward, error)
	FindCollector(ctx context.Context, id string) (*models.Collector, error)
	FirstCollectorInPanchayat(ctx context.Context, panchayatID string) (*models.Collector, error)
}

type EstimationStore interface {
	CreateEstimation(ctx context.Context, e *models.WasteEstimation) (*models.WasteEstimation, error)
	GetEstimation(ctx context.Context, id string) (*models.WasteEstimation, error)
	ListEstimations(ctx context.Context, f models.EstimationFilter) ([]*models.WasteEstimation, error)
}

type AdminStore interface {
	ListZillas(ctx context.Context) ([]*models.ZillaPanchayat, error)
	ListBlocks(ctx context.Context, zillaID string) ([]*models.Block, error)
	ListPanchayats(ctx context.Context, blockID string) ([]*models.GramPanchayat, error)
	CreatePanchayat(ctx context.Context, p *models.GramPanchayat) (*models.GramPanchayat, error)
	ListWards(ctx context.Context, panchayatID string) ([]*models.Ward, error)
	ListCollectors(ctx context.Context, f models.CollectorFilter) ([]*models.Collector, error)
}

// Classifier analyses one photo.
type Classifier interface {
	Classify(ctx context.Context, img classifier.Image, pc classifier.PromptContext) (*classifier.Classification, error)
}
