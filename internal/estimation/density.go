// Package estimation holds the weight and confidence math applied to a
// classifier reading. All tables are plain values so callers can inject
// alternatives.
package estimation

import (
	"fmt"
	"math"
	"strings"

	"waste-bknd/internal/models"
)

// DensityTable maps material categories to kg-per-liter densities. The
// fallback material is used for empty or unrecognised material names and must
// itself be present in the table.
type DensityTable struct {
	order     []models.MaterialType
	densities map[models.MaterialType]float64
	fallback  models.MaterialType
}

// DensityEntry is one row of a density table.
type DensityEntry struct {
	Material   models.MaterialType
	KgPerLiter float64
}

// DefaultDensityEntries is the reference table for municipal solid waste in
// rural Gram Panchayats.
var DefaultDensityEntries = []DensityEntry{
	{models.MaterialMixedMSW, 0.15},
	{models.MaterialPlastic, 0.04},
	{models.MaterialPaper, 0.12},
	{models.MaterialGlass, 0.5},
	{models.MaterialMetal, 0.35},
	{models.MaterialOrganic, 0.6},
	{models.MaterialTextiles, 0.1},
	{models.MaterialEWaste, 0.4},
	{models.MaterialConstructionDebris, 0.8},
	{models.MaterialRubber, 0.3},
	{models.MaterialWood, 0.25},
}

// NewDensityTable builds a table from entries. Entry order is kept and used
// when the materials are listed to the classifier.
func NewDensityTable(entries []DensityEntry, fallback models.MaterialType) (*DensityTable, error) {
	t := &DensityTable{
		order:     make([]models.MaterialType, 0, len(entries)),
		densities: make(map[models.MaterialType]float64, len(entries)),
		fallback:  fallback,
	}
	for _, e := range entries {
		if e.KgPerLiter <= 0 || math.IsNaN(e.KgPerLiter) || math.IsInf(e.KgPerLiter, 0) {
			return nil, fmt.Errorf("density for %q must be a positive number", e.Material)
		}
		if _, dup := t.densities[e.Material]; dup {
			return nil, fmt.Errorf("duplicate density entry for %q", e.Material)
		}
		t.order = append(t.order, e.Material)
		t.densities[e.Material] = e.KgPerLiter
	}
	if _, ok := t.densities[fallback]; !ok {
		return nil, fmt.Errorf("fallback material %q is not in the table", fallback)
	}
	return t, nil
}

// DefaultDensityTable returns the reference table with mixed_msw as fallback.
func DefaultDensityTable() *DensityTable {
	t, err := NewDensityTable(DefaultDensityEntries, models.MaterialMixedMSW)
	if err != nil {
		panic(err)
	}
	return t
}

// Materials lists the categories in table order.
func (t *DensityTable) Materials() []models.MaterialType {
	out := make([]models.MaterialType, len(t.order))
	copy(out, t.order)
	return out
}

// Fallback is the material substituted for unknown names.
func (t *DensityTable) Fallback() models.MaterialType {
	return t.fallback
}

// Resolve returns the material category and density for a reported material
// name. Names are matched case-insensitively with spaces and hyphens treated
// as underscores; anything else resolves to the fallback entry.
func (t *DensityTable) Resolve(material string) (models.MaterialType, float64) {
	key := normalizeMaterial(material)
	if d, ok := t.densities[key]; ok {
		return key, d
	}
	return t.fallback, t.densities[t.fallback]
}

// Density is Resolve without the material.
func (t *DensityTable) Density(material string) float64 {
	_, d := t.Resolve(material)
	return d
}

func normalizeMaterial(s string) models.MaterialType {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return models.MaterialType(s)
}
