package estimation

import (
	"math"

	"waste-bknd/internal/models"
)

// Reading is the subset of a classifier result the math needs.
type Reading struct {
	Material           string
	VolumeLiters       *float64
	MaterialConfidence *float64
	VolumeConfidence   *float64
	ImageQuality       string
}

// Derived is the computed part of an estimation record.
type Derived struct {
	Material      models.MaterialType
	VolumeLiters  float64
	DensityKgPerL float64
	WeightKg      float64
	Confidence    float64
}

// Calculator combines a density table and a confidence model.
type Calculator struct {
	Densities  *DensityTable
	Confidence ConfidenceModel
}

// NewCalculator returns a calculator over the reference tables.
func NewCalculator() *Calculator {
	return &Calculator{
		Densities:  DefaultDensityTable(),
		Confidence: DefaultConfidenceModel(),
	}
}

// Derive resolves density, weight and confidence for a reading. A missing or
// negative volume counts as zero liters.
func (c *Calculator) Derive(r Reading) Derived {
	material, density := c.Densities.Resolve(r.Material)

	volume := 0.0
	if r.VolumeLiters != nil && *r.VolumeLiters > 0 && !math.IsInf(*r.VolumeLiters, 0) {
		volume = *r.VolumeLiters
	}

	return Derived{
		Material:      material,
		VolumeLiters:  volume,
		DensityKgPerL: density,
		WeightKg:      Weight(volume, density),
		Confidence:    c.Confidence.Blend(r.MaterialConfidence, r.VolumeConfidence, r.ImageQuality),
	}
}

// Weight is volume × density rounded to 2 decimals.
func Weight(volumeLiters, densityKgPerL float64) float64 {
	return Round2(volumeLiters * densityKgPerL)
}

// Round2 rounds half away from zero to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
