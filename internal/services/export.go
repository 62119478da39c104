package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/xuri/excelize/v2"

	"waste-bknd/internal/models"
)

const exportSheet = "Estimations"

var exportHeaders = []struct {
	label string
	width float64
}{
	{"Collection Date", 20},
	{"Panchayat", 24},
	{"Ward", 14},
	{"Collector", 20},
	{"Material", 18},
	{"Volume (L)", 12},
	{"Density (kg/L)", 14},
	{"Weight (kg)", 12},
	{"Confidence", 12},
	{"Image Quality", 14},
	{"Moisture", 10},
	{"Status", 12},
	{"Latitude", 12},
	{"Longitude", 12},
	{"Address", 30},
}

// ExportWorkbook renders a page of estimations as an xlsx workbook with a
// summary block under the data.
func (s *EstimationQueryService) ExportWorkbook(ctx context.Context, f models.EstimationFilter) (*bytes.Buffer, error) {
	page, err := s.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return buildWorkbook(page, time.Now().UTC())
}

func buildWorkbook(page *EstimationPage, generated time.Time) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	f.SetCellValue(exportSheet, "A1", "Waste Estimations")
	f.SetCellStyle(exportSheet, "A1", "A1", titleStyle)
	f.SetRowHeight(exportSheet, 1, 30)
	f.SetCellValue(exportSheet, "A2", fmt.Sprintf("Generated: %s", generated.Format("2006-01-02 15:04:05")))

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#2E7D32"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	for col, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 4)
		f.SetCellValue(exportSheet, cell, h.label)
		f.SetCellStyle(exportSheet, cell, cell, headerStyle)
		colName, _ := excelize.ColumnNumberToName(col + 1)
		f.SetColWidth(exportSheet, colName, colName, h.width)
	}

	for i, e := range page.Data {
		row := i + 5
		values := exportRow(e)
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(exportSheet, cell, v)
		}
	}

	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E7E6E6"}, Pattern: 1},
	})
	summaryRow := len(page.Data) + 7
	cell, _ := excelize.CoordinatesToCellName(1, summaryRow)
	f.SetCellValue(exportSheet, cell, "Summary")
	f.SetCellStyle(exportSheet, cell, cell, summaryStyle)

	for _, kv := range []struct {
		key   string
		value interface{}
	}{
		{"Count", page.Summary.Count},
		{"Total Weight (kg)", page.Summary.TotalWeightKg},
		{"Total Volume (L)", page.Summary.TotalVolumeLiters},
		{"Average Confidence", page.Summary.AvgConfidence},
	} {
		summaryRow++
		keyCell, _ := excelize.CoordinatesToCellName(1, summaryRow)
		valueCell, _ := excelize.CoordinatesToCellName(2, summaryRow)
		f.SetCellValue(exportSheet, keyCell, kv.key)
		f.SetCellValue(exportSheet, valueCell, kv.value)
	}

	f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

func exportRow(e *models.WasteEstimation) []interface{} {
	var panchayat, ward, collector string
	if e.GramPanchayat != nil {
		panchayat = e.GramPanchayat.Name
	}
	if e.Ward != nil {
		ward = e.Ward.Name
	}
	if e.Collector != nil {
		collector = e.Collector.Name
	}
	var moisture string
	if e.MoistureLevel != nil {
		moisture = string(*e.MoistureLevel)
	}

	return []interface{}{
		e.CollectionDate.Format("2006-01-02 15:04:05"),
		panchayat,
		ward,
		collector,
		string(e.MaterialType),
		e.EstimatedVolumeLiters,
		e.DensityKgPerL,
		e.EstimatedWeightKg,
		e.Confidence,
		string(e.ImageQuality),
		moisture,
		string(e.Status),
		floatOrBlank(e.Latitude),
		floatOrBlank(e.Longitude),
		derefOrBlank(e.Address),
	}
}

// ExportGeoJSON returns the geolocated records of a page as Point features.
func (s *EstimationQueryService) ExportGeoJSON(ctx context.Context, f models.EstimationFilter) (*geojson.FeatureCollection, error) {
	page, err := s.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return buildFeatureCollection(page.Data), nil
}

func buildFeatureCollection(rows []*models.WasteEstimation) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, e := range rows {
		if e.Latitude == nil || e.Longitude == nil {
			continue
		}
		feature := geojson.NewFeature(orb.Point{*e.Longitude, *e.Latitude})
		feature.ID = e.ID
		feature.Properties["id"] = e.ID
		feature.Properties["materialType"] = string(e.MaterialType)
		feature.Properties["estimatedWeightKg"] = e.EstimatedWeightKg
		feature.Properties["estimatedVolumeLiters"] = e.EstimatedVolumeLiters
		feature.Properties["confidence"] = e.Confidence
		feature.Properties["status"] = string(e.Status)
		feature.Properties["collectionDate"] = e.CollectionDate.Format(time.RFC3339)
		if e.GramPanchayat != nil {
			feature.Properties["panchayat"] = e.GramPanchayat.Name
		}
		if e.Ward != nil {
			feature.Properties["ward"] = e.Ward.Name
		}
		fc.Append(feature)
	}
	return fc
}

func floatOrBlank(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func derefOrBlank(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
