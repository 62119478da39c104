package services

import (
	"errors"
	"net/http"
	"strings"

	"waste-bknd/internal/store"
)

var (
	ErrImageRequired       = errors.New("Image is required")
	ErrHierarchyUnresolved = errors.New("Demo data not found. Please seed the panchayat, ward and collector tables")
	ErrInvalidFilter       = errors.New("invalid filter")
	ErrInvalidInput        = errors.New("invalid input")
	ErrMissingFields       = errors.New("Name, code, and blockId are required")
	ErrDuplicateCode       = errors.New("a panchayat with this code already exists")
	ErrBlockNotFound       = errors.New("block not found")
	ErrNotFound            = errors.New("not found")
)

// HTTPStatus maps service errors to a response status.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrImageRequired),
		errors.Is(err, ErrHierarchyUnresolved),
		errors.Is(err, ErrInvalidFilter),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrMissingFields),
		errors.Is(err, ErrBlockNotFound):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateCode), errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

const (
	msgDatabaseConnection = "Database connection error. Please check environment variables."
	msgAIAPI              = "AI API error. Please check GOOGLE_API_KEY."
	msgDatabaseQuery      = "Database query error. Data might not be seeded."
	msgEstimationFailed   = "Failed to process waste estimation"
)

// failureRules are checked in order; the first rule with a matching
// fragment wins. Fragments match the error text, not its type, because the
// AI SDK and the driver report most failures as plain strings.
var failureRules = []struct {
	fragments []string
	message   string
}{
	{[]string{"DATABASE_URL", "database connection", "failed to connect to database"}, msgDatabaseConnection},
	{[]string{"Gemini", "API"}, msgAIAPI},
	{[]string{"database query", "SQLSTATE", "pgdriver", "bun:"}, msgDatabaseQuery},
}

// DescribeFailure turns an unexpected estimation failure into an operator
// message.
func DescribeFailure(err error) string {
	if err == nil {
		return msgEstimationFailed
	}
	msg := err.Error()
	if msg == "" {
		return msgEstimationFailed
	}
	for _, rule := range failureRules {
		for _, fragment := range rule.fragments {
			if strings.Contains(msg, fragment) {
				return rule.message
			}
		}
	}
	return "Error: " + msg
}
