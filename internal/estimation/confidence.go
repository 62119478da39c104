package estimation

import (
	"math"
	"strings"

	"waste-bknd/internal/models"
)

// ConfidenceWeights are the blend coefficients for the aggregate confidence.
type ConfidenceWeights struct {
	Material     float64
	Volume       float64
	ImageQuality float64
}

// ConfidenceModel turns the classifier's per-field confidences into one score:
//
//	round(Material·mc + Volume·vc + ImageQuality·iq, 2)
//
// where iq comes from QualityScores. Missing mc or vc take MissingDefault.
type ConfidenceModel struct {
	Weights        ConfidenceWeights
	QualityScores  map[models.ImageQuality]float64
	UnknownQuality float64
	MissingDefault float64
}

// DefaultConfidenceModel is 0.5·material + 0.3·volume + 0.2·image quality with
// good/medium/poor scored 1.0/0.6/0.3.
func DefaultConfidenceModel() ConfidenceModel {
	return ConfidenceModel{
		Weights: ConfidenceWeights{Material: 0.5, Volume: 0.3, ImageQuality: 0.2},
		QualityScores: map[models.ImageQuality]float64{
			models.ImageQualityGood:   1.0,
			models.ImageQualityMedium: 0.6,
			models.ImageQualityPoor:   0.3,
		},
		UnknownQuality: 0.3,
		MissingDefault: 0.5,
	}
}

// QualityScore maps an image quality label to its score.
func (m ConfidenceModel) QualityScore(quality string) float64 {
	q := models.ImageQuality(strings.ToLower(strings.TrimSpace(quality)))
	if s, ok := m.QualityScores[q]; ok {
		return s
	}
	return m.UnknownQuality
}

// Blend computes the aggregate confidence. Inputs are clamped to [0,1] so the
// result stays in range.
func (m ConfidenceModel) Blend(materialConfidence, volumeConfidence *float64, quality string) float64 {
	mc := m.orDefault(materialConfidence)
	vc := m.orDefault(volumeConfidence)
	iq := clamp01(m.QualityScore(quality))

	score := m.Weights.Material*mc + m.Weights.Volume*vc + m.Weights.ImageQuality*iq
	return Round2(clamp01(score))
}

func (m ConfidenceModel) orDefault(v *float64) float64 {
	if v == nil || math.IsNaN(*v) {
		return clamp01(m.MissingDefault)
	}
	return clamp01(*v)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
