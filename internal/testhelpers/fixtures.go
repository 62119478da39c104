package testhelpers

import (
	"context"
	"testing"
	"time"

	"github.com/uptrace/bun"

	"waste-bknd/internal/models"
)

// Hierarchy is a minimal seeded administrative tree.
type Hierarchy struct {
	Zilla     *models.ZillaPanchayat
	Block     *models.Block
	Panchayat *models.GramPanchayat
	Wards     []*models.Ward
	Collector *models.Collector
}

// NewHierarchy builds (without persisting) a zilla → block → panchayat tree
// with two wards and one collector. prefix keeps ids and codes unique.
func NewHierarchy(prefix, panchayatName string) *Hierarchy {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	pop := 5000
	return &Hierarchy{
		Zilla: &models.ZillaPanchayat{
			ID: prefix + "-zp", Name: prefix + " Zilla", Code: prefix + "-ZP", CreatedAt: now,
		},
		Block: &models.Block{
			ID: prefix + "-blk", Name: prefix + " Block", Code: prefix + "-BLK", ZillaID: prefix + "-zp", CreatedAt: now,
		},
		Panchayat: &models.GramPanchayat{
			ID: prefix + "-gp", Name: panchayatName, Code: prefix + "-GP", BlockID: prefix + "-blk",
			Population: &pop, CreatedAt: now,
		},
		Wards: []*models.Ward{
			{ID: prefix + "-w2", Name: "Ward 2", WardNumber: 2, PanchayatID: prefix + "-gp", CreatedAt: now},
			{ID: prefix + "-w1", Name: "Ward 1", WardNumber: 1, PanchayatID: prefix + "-gp", CreatedAt: now},
		},
		Collector: &models.Collector{
			ID: prefix + "-col", Name: prefix + " Collector", Phone: prefix + "-9000000000",
			Role: models.RoleCollector, PanchayatID: prefix + "-gp", CreatedAt: now,
		},
	}
}

// Seed inserts h into db.
func (h *Hierarchy) Seed(t *testing.T, db *bun.DB) {
	t.Helper()
	ctx := context.Background()

	for _, model := range []interface{}{h.Zilla, h.Block, h.Panchayat, &h.Wards, h.Collector} {
		if _, err := db.NewInsert().Model(model).Exec(ctx); err != nil {
			t.Fatalf("Failed to seed %T: %v", model, err)
		}
	}
}

// FirstWard returns the lowest-numbered ward.
func (h *Hierarchy) FirstWard() *models.Ward {
	first := h.Wards[0]
	for _, w := range h.Wards[1:] {
		if w.WardNumber < first.WardNumber {
			first = w
		}
	}
	return first
}
