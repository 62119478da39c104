package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"waste-bknd/internal/models"
	"waste-bknd/internal/store"
)

// HierarchyRef names the units a submission belongs to. Blank fields are
// resolved to defaults.
type HierarchyRef struct {
	PanchayatID string
	WardID      string
	CollectorID string
}

type Hierarchy struct {
	Panchayat *models.GramPanchayat
	Ward      *models.Ward
	Collector *models.Collector
}

// HierarchyResolver walks an ordered lookup chain per unit: the explicit id
// when given, otherwise the designated demo panchayat, then any panchayat,
// and the first ward and collector of whichever panchayat was chosen.
type HierarchyResolver struct {
	store  HierarchyStore
	marker string
}

func NewHierarchyResolver(s HierarchyStore, defaultPanchayatMarker string) *HierarchyResolver {
	return &HierarchyResolver{store: s, marker: defaultPanchayatMarker}
}

type lookup[T any] func(ctx context.Context) (*T, error)

// firstOf returns the first lookup that finds something. Not-found moves on
// to the next step; any other error aborts.
func firstOf[T any](ctx context.Context, steps ...lookup[T]) (*T, error) {
	for _, step := range steps {
		v, err := step(ctx)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if v != nil {
			return v, nil
		}
	}
	return nil, nil
}

func (r *HierarchyResolver) panchayatSteps(id string) []lookup[models.GramPanchayat] {
	if id != "" {
		return []lookup[models.GramPanchayat]{
			func(ctx context.Context) (*models.GramPanchayat, error) { return r.store.FindPanchayat(ctx, id) },
		}
	}
	var steps []lookup[models.GramPanchayat]
	if r.marker != "" {
		steps = append(steps, func(ctx context.Context) (*models.GramPanchayat, error) {
			return r.store.FirstPanchayatNameContaining(ctx, r.marker)
		})
	}
	return append(steps, r.store.FirstPanchayat)
}

func (r *HierarchyResolver) wardSteps(id string, p *models.GramPanchayat) []lookup[models.Ward] {
	if id != "" {
		return []lookup[models.Ward]{
			func(ctx context.Context) (*models.Ward, error) { return r.store.FindWard(ctx, id) },
		}
	}
	if p == nil {
		return nil
	}
	return []lookup[models.Ward]{
		func(ctx context.Context) (*models.Ward, error) { return r.store.FirstWardInPanchayat(ctx, p.ID) },
	}
}

func (r *HierarchyResolver) collectorSteps(id string, p *models.GramPanchayat) []lookup[models.Collector] {
	if id != "" {
		return []lookup[models.Collector]{
			func(ctx context.Context) (*models.Collector, error) { return r.store.FindCollector(ctx, id) },
		}
	}
	if p == nil {
		return nil
	}
	return []lookup[models.Collector]{
		func(ctx context.Context) (*models.Collector, error) { return r.store.FirstCollectorInPanchayat(ctx, p.ID) },
	}
}

// Resolve returns all three units or an error wrapping ErrHierarchyUnresolved
// that lists what is missing.
func (r *HierarchyResolver) Resolve(ctx context.Context, ref HierarchyRef) (*Hierarchy, error) {
	ref.PanchayatID = strings.TrimSpace(ref.PanchayatID)
	ref.WardID = strings.TrimSpace(ref.WardID)
	ref.CollectorID = strings.TrimSpace(ref.CollectorID)

	panchayat, err := firstOf(ctx, r.panchayatSteps(ref.PanchayatID)...)
	if err != nil {
		return nil, err
	}
	ward, err := firstOf(ctx, r.wardSteps(ref.WardID, panchayat)...)
	if err != nil {
		return nil, err
	}
	collector, err := firstOf(ctx, r.collectorSteps(ref.CollectorID, panchayat)...)
	if err != nil {
		return nil, err
	}

	var missing []string
	if panchayat == nil {
		missing = append(missing, "panchayat")
	}
	if ward == nil {
		missing = append(missing, "ward")
	}
	if collector == nil {
		missing = append(missing, "collector")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w (missing %s)", ErrHierarchyUnresolved, strings.Join(missing, ", "))
	}

	return &Hierarchy{Panchayat: panchayat, Ward: ward, Collector: collector}, nil
}
