package utils

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"waste-bknd/internal/models"
)

const dateOnly = "2006-01-02"

// ParseEstimationFilter reads the estimation query-string filters.
//
//	?panchayatId=gp-1&status=PENDING&fromDate=2024-01-01&toDate=2024-01-31T23:59:59Z&limit=20
//
// Dates take YYYY-MM-DD (midnight UTC) or RFC 3339. A missing, non-numeric
// or non-positive limit is left at zero for the service default.
func ParseEstimationFilter(q url.Values) (models.EstimationFilter, error) {
	f := models.EstimationFilter{
		PanchayatID: strings.TrimSpace(q.Get("panchayatId")),
		WardID:      strings.TrimSpace(q.Get("wardId")),
		CollectorID: strings.TrimSpace(q.Get("collectorId")),
	}

	if s := strings.TrimSpace(q.Get("status")); s != "" {
		status := models.EstimationStatus(strings.ToUpper(s))
		if !status.Valid() {
			return f, fmt.Errorf("status must be PENDING, VERIFIED or REJECTED, got %q", s)
		}
		f.Status = string(status)
	}

	var err error
	if f.FromDate, err = ParseDate(q.Get("fromDate")); err != nil {
		return f, fmt.Errorf("fromDate: %w", err)
	}
	if f.ToDate, err = ParseDate(q.Get("toDate")); err != nil {
		return f, fmt.Errorf("toDate: %w", err)
	}

	if n, err := strconv.Atoi(strings.TrimSpace(q.Get("limit"))); err == nil && n > 0 {
		f.Limit = n
	}
	return f, nil
}

// ParseDate returns nil for a blank value.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(dateOnly, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (want YYYY-MM-DD or RFC 3339)", s)
	}
	return &t, nil
}

// ParseOptionalFloat returns nil for a blank value and rejects NaN and Inf.
func ParseOptionalFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	return &v, nil
}
