package store

import (
	"context"

	"waste-bknd/internal/models"

	"github.com/uptrace/bun"
)

func (s *Store) selectEstimations(dest interface{}) *bun.SelectQuery {
	return s.db.NewSelect().
		Model(dest).
		Relation("GramPanchayat").
		Relation("Ward").
		Relation("Collector")
}

// CreateEstimation inserts e and returns it reloaded with its relations.
func (s *Store) CreateEstimation(ctx context.Context, e *models.WasteEstimation) (*models.WasteEstimation, error) {
	if _, err := s.db.NewInsert().Model(e).Returning("*").Exec(ctx); err != nil {
		return nil, mapError("insert estimation", err)
	}
	return s.GetEstimation(ctx, e.ID)
}

func (s *Store) GetEstimation(ctx context.Context, id string) (*models.WasteEstimation, error) {
	e := new(models.WasteEstimation)
	if err := s.selectEstimations(e).Where("we.id = ?", id).Scan(ctx); err != nil {
		return nil, mapError("get estimation", err)
	}
	return e, nil
}

// ListEstimations returns matching records, newest collection date first.
// A zero limit means no limit.
func (s *Store) ListEstimations(ctx context.Context, f models.EstimationFilter) ([]*models.WasteEstimation, error) {
	var out []*models.WasteEstimation
	q := s.selectEstimations(&out)

	if f.PanchayatID != "" {
		q = q.Where("we.panchayat_id = ?", f.PanchayatID)
	}
	if f.WardID != "" {
		q = q.Where("we.ward_id = ?", f.WardID)
	}
	if f.CollectorID != "" {
		q = q.Where("we.collector_id = ?", f.CollectorID)
	}
	if f.Status != "" {
		q = q.Where("we.status = ?", f.Status)
	}
	if f.FromDate != nil {
		q = q.Where("we.collection_date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("we.collection_date <= ?", *f.ToDate)
	}

	q = q.OrderExpr("we.collection_date DESC, we.id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, mapError("list estimations", err)
	}
	return out, nil
}
