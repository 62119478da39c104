package store

import (
	"context"

	"waste-bknd/internal/models"
)

func (s *Store) FindPanchayat(ctx context.Context, id string) (*models.GramPanchayat, error) {
	p := new(models.GramPanchayat)
	err := s.db.NewSelect().Model(p).Where("gp.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, mapError("find panchayat", err)
	}
	return p, nil
}

// FirstPanchayatNameContaining returns the oldest panchayat whose name
// contains fragment (case-sensitive).
func (s *Store) FirstPanchayatNameContaining(ctx context.Context, fragment string) (*models.GramPanchayat, error) {
	p := new(models.GramPanchayat)
	err := s.db.NewSelect().
		Model(p).
		Where("strpos(gp.name, ?) > 0", fragment).
		OrderExpr("gp.created_at ASC, gp.id ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapError("find panchayat by name", err)
	}
	return p, nil
}

func (s *Store) FirstPanchayat(ctx context.Context) (*models.GramPanchayat, error) {
	p := new(models.GramPanchayat)
	err := s.db.NewSelect().
		Model(p).
		OrderExpr("gp.created_at ASC, gp.id ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapError("find any panchayat", err)
	}
	return p, nil
}

func (s *Store) FindWard(ctx context.Context, id string) (*models.Ward, error) {
	w := new(models.Ward)
	err := s.db.NewSelect().Model(w).Where("w.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, mapError("find ward", err)
	}
	return w, nil
}

// FirstWardInPanchayat returns the lowest-numbered ward of a panchayat.
func (s *Store) FirstWardInPanchayat(ctx context.Context, panchayatID string) (*models.Ward, error) {
	w := new(models.Ward)
	err := s.db.NewSelect().
		Model(w).
		Where("w.panchayat_id = ?", panchayatID).
		OrderExpr("w.ward_number ASC, w.id ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapError("find ward in panchayat", err)
	}
	return w, nil
}

func (s *Store) FindCollector(ctx context.Context, id string) (*models.Collector, error) {
	c := new(models.Collector)
	err := s.db.NewSelect().Model(c).Where("c.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, mapError("find collector", err)
	}
	return c, nil
}

// FirstCollectorInPanchayat returns the earliest registered collector of a panchayat.
func (s *Store) FirstCollectorInPanchayat(ctx context.Context, panchayatID string) (*models.Collector, error) {
	c := new(models.Collector)
	err := s.db.NewSelect().
		Model(c).
		Where("c.panchayat_id = ?", panchayatID).
		OrderExpr("c.created_at ASC, c.id ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapError("find collector in panchayat", err)
	}
	return c, nil
}
