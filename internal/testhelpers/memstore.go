package testhelpers

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"waste-bknd/internal/models"
	"waste-bknd/internal/store"
)

// MemStore is an in-memory stand-in for store.Store. Set Err to make every
// call fail with it.
type MemStore struct {
	mu sync.Mutex

	Zillas      []*models.ZillaPanchayat
	Blocks      []*models.Block
	Panchayats  []*models.GramPanchayat
	Wards       []*models.Ward
	Collectors  []*models.Collector
	Estimations []*models.WasteEstimation

	Err   error
	Calls []string
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

// Add registers a hierarchy without touching a database.
func (m *MemStore) Add(h *Hierarchy) *MemStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Zillas = append(m.Zillas, h.Zilla)
	m.Blocks = append(m.Blocks, h.Block)
	m.Panchayats = append(m.Panchayats, h.Panchayat)
	m.Wards = append(m.Wards, h.Wards...)
	m.Collectors = append(m.Collectors, h.Collector)
	return m
}

func (m *MemStore) begin(call string) error {
	m.Calls = append(m.Calls, call)
	return m.Err
}

func (m *MemStore) FindPanchayat(_ context.Context, id string) (*models.GramPanchayat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("FindPanchayat"); err != nil {
		return nil, err
	}
	for _, p := range m.Panchayats {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *MemStore) FirstPanchayatNameContaining(_ context.Context, fragment string) (*models.GramPanchayat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("FirstPanchayatNameContaining"); err != nil {
		return nil, err
	}
	return firstPanchayat(m.Panchayats, func(p *models.GramPanchayat) bool {
		return strings.Contains(p.Name, fragment)
	})
}

func (m *MemStore) FirstPanchayat(_ context.Context) (*models.GramPanchayat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("FirstPanchayat"); err != nil {
		return nil, err
	}
	return firstPanchayat(m.Panchayats, func(*models.GramPanchayat) bool { return true })
}

func firstPanchayat(all []*models.GramPanchayat, match func(*models.GramPanchayat) bool) (*models.GramPanchayat, error) {
	var best *models.GramPanchayat
	for _, p := range all {
		if !match(p) {
			continue
		}
		if best == nil || p.CreatedAt.Before(best.CreatedAt) ||
			(p.CreatedAt.Equal(best.CreatedAt) && p.ID < best.ID) {
			best = p
		}
	}
	if best == nil {
		return nil, store.ErrNotFound
	}
	return best, nil
}

func (m *MemStore) FindWard(_ context.Context, id string) (*models.Ward, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("FindWard"); err != nil {
		return nil, err
	}
	for _, w := range m.Wards {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *MemStore) FirstWardInPanchayat(_ context.Context, panchayatID string) (*models.Ward, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("FirstWardInPanchayat"); err != nil {
		return nil, err
	}
	var best *models.Ward
	for _, w := range m.Wards {
		if w.PanchayatID != panchayatID {
			continue
		}
		if best == nil || w.WardNumber < best.WardNumber ||
			(w.WardNumber == best.WardNumber && w.ID < best.ID) {
			best = w
		}
	}
	if best == nil {
		return nil, store.ErrNotFound
	}
	return best, nil
}

func (m *MemStore) FindCollector(_ context.Context, id string) (*models.Collector, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("FindCollector"); err != nil {
		return nil, err
	}
	for _, c := range m.Collectors {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *MemStore) FirstCollectorInPanchayat(_ context.Context, panchayatID string) (*models.Collector, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("FirstCollectorInPanchayat"); err != nil {
		return nil, err
	}
	for _, c := range m.Collectors {
		if c.PanchayatID == panchayatID {
			return c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *MemStore) CreateEstimation(_ context.Context, e *models.WasteEstimation) (*models.WasteEstimation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("CreateEstimation"); err != nil {
		return nil, err
	}
	stored := *e
	if stored.CollectionDate.IsZero() {
		stored.CollectionDate = time.Now().UTC()
	}
	stored.CreatedAt = stored.CollectionDate
	stored.UpdatedAt = stored.CollectionDate
	m.Estimations = append(m.Estimations, &stored)
	return m.expand(&stored), nil
}

func (m *MemStore) GetEstimation(_ context.Context, id string) (*models.WasteEstimation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("GetEstimation"); err != nil {
		return nil, err
	}
	for _, e := range m.Estimations {
		if e.ID == id {
			return m.expand(e), nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *MemStore) ListEstimations(_ context.Context, f models.EstimationFilter) ([]*models.WasteEstimation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("ListEstimations"); err != nil {
		return nil, err
	}

	var out []*models.WasteEstimation
	for _, e := range m.Estimations {
		switch {
		case f.PanchayatID != "" && e.PanchayatID != f.PanchayatID,
			f.WardID != "" && e.WardID != f.WardID,
			f.CollectorID != "" && e.CollectorID != f.CollectorID,
			f.Status != "" && string(e.Status) != f.Status,
			f.FromDate != nil && e.CollectionDate.Before(*f.FromDate),
			f.ToDate != nil && e.CollectionDate.After(*f.ToDate):
			continue
		}
		out = append(out, m.expand(e))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CollectionDate.After(out[j].CollectionDate)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// expand returns a copy of e with its relations attached.
func (m *MemStore) expand(e *models.WasteEstimation) *models.WasteEstimation {
	cp := *e
	for _, p := range m.Panchayats {
		if p.ID == e.PanchayatID {
			cp.GramPanchayat = p
		}
	}
	for _, w := range m.Wards {
		if w.ID == e.WardID {
			cp.Ward = w
		}
	}
	for _, c := range m.Collectors {
		if c.ID == e.CollectorID {
			cp.Collector = c
		}
	}
	return &cp
}

func (m *MemStore) ListZillas(_ context.Context) ([]*models.ZillaPanchayat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("ListZillas"); err != nil {
		return nil, err
	}
	out := append([]*models.ZillaPanchayat(nil), m.Zillas...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemStore) ListBlocks(_ context.Context, zillaID string) ([]*models.Block, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("ListBlocks"); err != nil {
		return nil, err
	}
	var out []*models.Block
	for _, b := range m.Blocks {
		if zillaID == "" || b.ZillaID == zillaID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemStore) ListPanchayats(_ context.Context, blockID string) ([]*models.GramPanchayat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("ListPanchayats"); err != nil {
		return nil, err
	}
	var out []*models.GramPanchayat
	for _, p := range m.Panchayats {
		if blockID != "" && p.BlockID != blockID {
			continue
		}
		cp := *p
		counts := &models.PanchayatCounts{}
		for _, e := range m.Estimations {
			if e.PanchayatID == p.ID {
				counts.Estimations++
			}
		}
		for _, c := range m.Collectors {
			if c.PanchayatID == p.ID {
				counts.Collectors++
			}
		}
		cp.Count = counts
		cp.Block = m.blockWithZilla(p.BlockID)
		cp.Wards = m.wardsOf(p.ID)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemStore) CreatePanchayat(_ context.Context, p *models.GramPanchayat) (*models.GramPanchayat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("CreatePanchayat"); err != nil {
		return nil, err
	}
	for _, existing := range m.Panchayats {
		if existing.Code == p.Code {
			return nil, store.ErrDuplicate
		}
	}
	block := m.blockWithZilla(p.BlockID)
	if block == nil {
		return nil, store.ErrForeignKey
	}
	stored := *p
	m.Panchayats = append(m.Panchayats, &stored)
	cp := stored
	cp.Block = block
	return &cp, nil
}

func (m *MemStore) blockWithZilla(blockID string) *models.Block {
	for _, b := range m.Blocks {
		if b.ID != blockID {
			continue
		}
		cp := *b
		for _, z := range m.Zillas {
			if z.ID == b.ZillaID {
				cp.ZillaPanchayat = z
			}
		}
		return &cp
	}
	return nil
}

func (m *MemStore) wardsOf(panchayatID string) []*models.Ward {
	out := []*models.Ward{}
	for _, w := range m.Wards {
		if w.PanchayatID == panchayatID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WardNumber < out[j].WardNumber })
	return out
}

func (m *MemStore) ListWards(_ context.Context, panchayatID string) ([]*models.Ward, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("ListWards"); err != nil {
		return nil, err
	}
	var out []*models.Ward
	for _, w := range m.Wards {
		if panchayatID == "" || w.PanchayatID == panchayatID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WardNumber < out[j].WardNumber })
	return out, nil
}

func (m *MemStore) ListCollectors(_ context.Context, f models.CollectorFilter) ([]*models.Collector, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("ListCollectors"); err != nil {
		return nil, err
	}
	var out []*models.Collector
	for _, c := range m.Collectors {
		switch {
		case f.PanchayatID != "" && c.PanchayatID != f.PanchayatID,
			f.WardID != "" && (c.WardID == nil || *c.WardID != f.WardID),
			f.Role != "" && c.Role != f.Role:
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
