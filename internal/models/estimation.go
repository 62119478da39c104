package models

import (
	"time"

	"github.com/uptrace/bun"
)

// MaterialType is the dominant material category reported for a photo.
type MaterialType string

const (
	MaterialMixedMSW           MaterialType = "mixed_msw"
	MaterialPlastic            MaterialType = "plastic"
	MaterialPaper              MaterialType = "paper"
	MaterialGlass              MaterialType = "glass"
	MaterialMetal              MaterialType = "metal"
	MaterialOrganic            MaterialType = "organic"
	MaterialTextiles           MaterialType = "textiles"
	MaterialEWaste             MaterialType = "e_waste"
	MaterialConstructionDebris MaterialType = "construction_debris"
	MaterialRubber             MaterialType = "rubber"
	MaterialWood               MaterialType = "wood"
)

type MoistureLevel string

const (
	MoistureDry   MoistureLevel = "dry"
	MoistureMoist MoistureLevel = "moist"
	MoistureWet   MoistureLevel = "wet"
)

// Valid reports whether m is one of dry, moist or wet.
func (m MoistureLevel) Valid() bool {
	return m == MoistureDry || m == MoistureMoist || m == MoistureWet
}

type ImageQuality string

const (
	ImageQualityGood   ImageQuality = "good"
	ImageQualityMedium ImageQuality = "medium"
	ImageQualityPoor   ImageQuality = "poor"
)

type EstimationStatus string

const (
	StatusPending  EstimationStatus = "PENDING"
	StatusVerified EstimationStatus = "VERIFIED"
	StatusRejected EstimationStatus = "REJECTED"
)

// Valid reports whether s is a known lifecycle status.
func (s EstimationStatus) Valid() bool {
	return s == StatusPending || s == StatusVerified || s == StatusRejected
}

// WasteEstimation is one AI-assisted estimate for a photographed pile or container.
// EstimatedWeightKg is always EstimatedVolumeLiters × DensityKgPerL rounded to 2 decimals.
type WasteEstimation struct {
	bun.BaseModel `bun:"table:waste_estimations,alias:we"`

	ID          string `bun:"id,pk" json:"id"`
	PanchayatID string `bun:"panchayat_id,notnull" json:"panchayatId"`
	WardID      string `bun:"ward_id,notnull" json:"wardId"`
	CollectorID string `bun:"collector_id,notnull" json:"collectorId"`

	ImageURL  *string `bun:"image_url" json:"imageUrl"`
	ImageName *string `bun:"image_name" json:"imageName"`
	ImageSize *int64  `bun:"image_size" json:"imageSize"`

	ContainerType         *string  `bun:"container_type" json:"containerType"`
	ContainerVolumeLiters *float64 `bun:"container_volume_liters" json:"containerVolumeLiters"`

	Latitude  *float64 `bun:"latitude" json:"latitude"`
	Longitude *float64 `bun:"longitude" json:"longitude"`
	Address   *string  `bun:"address" json:"address"`

	CollectionDate time.Time `bun:"collection_date,nullzero,notnull,default:current_timestamp" json:"collectionDate"`

	EstimatedWeightKg     float64        `bun:"estimated_weight_kg,notnull" json:"estimatedWeightKg"`
	EstimatedVolumeLiters float64        `bun:"estimated_volume_liters,notnull" json:"estimatedVolumeLiters"`
	MaterialType          MaterialType   `bun:"material_type,notnull" json:"materialType"`
	DensityKgPerL         float64        `bun:"density_kg_per_l,notnull" json:"densityKgPerL"`
	FullnessPercent       *float64       `bun:"fullness_percent" json:"fullnessPercent"`
	MoistureLevel         *MoistureLevel `bun:"moisture_level" json:"moistureLevel"`
	ContaminationLevel    *float64       `bun:"contamination_level" json:"contaminationLevel"`
	ImageQuality          ImageQuality   `bun:"image_quality,notnull" json:"imageQuality"`
	Confidence            float64        `bun:"confidence,notnull" json:"confidence"`
	AIReasoning           *string        `bun:"ai_reasoning" json:"aiReasoning"`

	Status    EstimationStatus `bun:"status,notnull" json:"status"`
	CreatedAt time.Time        `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time        `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`

	GramPanchayat *GramPanchayat `bun:"rel:belongs-to,join:panchayat_id=id" json:"gramPanchayat,omitempty"`
	Ward          *Ward          `bun:"rel:belongs-to,join:ward_id=id" json:"ward,omitempty"`
	Collector     *Collector     `bun:"rel:belongs-to,join:collector_id=id" json:"collector,omitempty"`
}

// EstimationFilter holds the optional query-side filters. FromDate and ToDate
// are inclusive bounds on CollectionDate.
type EstimationFilter struct {
	PanchayatID string
	WardID      string
	CollectorID string
	Status      string
	FromDate    *time.Time
	ToDate      *time.Time
	Limit       int
}

// EstimationSummary aggregates a page of estimations.
type EstimationSummary struct {
	Count             int     `json:"count"`
	TotalWeightKg     float64 `json:"totalWeightKg"`
	TotalVolumeLiters float64 `json:"totalVolumeLiters"`
	AvgConfidence     float64 `json:"avgConfidence"`
}
