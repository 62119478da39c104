package store

import (
	"context"

	"waste-bknd/internal/models"

	"github.com/uptrace/bun"
)

func (s *Store) ListZillas(ctx context.Context) ([]*models.ZillaPanchayat, error) {
	var out []*models.ZillaPanchayat
	if err := s.db.NewSelect().Model(&out).OrderExpr("zp.name ASC").Scan(ctx); err != nil {
		return nil, mapError("list zillas", err)
	}
	return out, nil
}

func (s *Store) ListBlocks(ctx context.Context, zillaID string) ([]*models.Block, error) {
	var out []*models.Block
	q := s.db.NewSelect().Model(&out).Relation("ZillaPanchayat")
	if zillaID != "" {
		q = q.Where("b.zilla_id = ?", zillaID)
	}
	if err := q.OrderExpr("b.name ASC").Scan(ctx); err != nil {
		return nil, mapError("list blocks", err)
	}
	return out, nil
}

// ListPanchayats returns panchayats with block, zilla, wards and related-row counts.
func (s *Store) ListPanchayats(ctx context.Context, blockID string) ([]*models.GramPanchayat, error) {
	var out []*models.GramPanchayat
	q := s.db.NewSelect().
		Model(&out).
		ColumnExpr("gp.*").
		ColumnExpr("(SELECT COUNT(*) FROM waste_estimations AS we WHERE we.panchayat_id = gp.id) AS estimation_count").
		ColumnExpr("(SELECT COUNT(*) FROM collectors AS c WHERE c.panchayat_id = gp.id) AS collector_count").
		Relation("Block").
		Relation("Block.ZillaPanchayat").
		Relation("Wards", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("ward_number ASC")
		})
	if blockID != "" {
		q = q.Where("gp.block_id = ?", blockID)
	}
	if err := q.OrderExpr("gp.name ASC").Scan(ctx); err != nil {
		return nil, mapError("list panchayats", err)
	}

	for _, p := range out {
		p.Count = &models.PanchayatCounts{
			Estimations: p.EstimationCount,
			Collectors:  p.CollectorCount,
		}
		if p.Wards == nil {
			p.Wards = []*models.Ward{}
		}
	}
	return out, nil
}

// CreatePanchayat inserts p and returns it with block and zilla loaded.
func (s *Store) CreatePanchayat(ctx context.Context, p *models.GramPanchayat) (*models.GramPanchayat, error) {
	if _, err := s.db.NewInsert().Model(p).Returning("*").Exec(ctx); err != nil {
		return nil, mapError("insert panchayat", err)
	}

	created := new(models.GramPanchayat)
	err := s.db.NewSelect().
		Model(created).
		Relation("Block").
		Relation("Block.ZillaPanchayat").
		Where("gp.id = ?", p.ID).
		Scan(ctx)
	if err != nil {
		return nil, mapError("reload panchayat", err)
	}
	return created, nil
}

func (s *Store) ListWards(ctx context.Context, panchayatID string) ([]*models.Ward, error) {
	var out []*models.Ward
	q := s.db.NewSelect().Model(&out)
	if panchayatID != "" {
		q = q.Where("w.panchayat_id = ?", panchayatID)
	}
	if err := q.OrderExpr("w.ward_number ASC, w.name ASC").Scan(ctx); err != nil {
		return nil, mapError("list wards", err)
	}
	return out, nil
}

func (s *Store) ListCollectors(ctx context.Context, f models.CollectorFilter) ([]*models.Collector, error) {
	var out []*models.Collector
	q := s.db.NewSelect().Model(&out)
	if f.PanchayatID != "" {
		q = q.Where("c.panchayat_id = ?", f.PanchayatID)
	}
	if f.WardID != "" {
		q = q.Where("c.ward_id = ?", f.WardID)
	}
	if f.Role != "" {
		q = q.Where("c.role = ?", f.Role)
	}
	if err := q.OrderExpr("c.name ASC").Scan(ctx); err != nil {
		return nil, mapError("list collectors", err)
	}
	return out, nil
}
