package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(data)
}

// writeFailure sends the failure envelope. details is omitted when nil.
func writeFailure(w http.ResponseWriter, status int, message string, details any) {
	body := map[string]interface{}{
		"success": false,
		"error":   message,
	}
	if details != nil {
		body["details"] = details
	}
	writeJSON(w, status, body)
}

// errorDetails renders err for the details field, or nil when details are
// withheld.
func errorDetails(err error, expose bool) any {
	if !expose || err == nil {
		return nil
	}
	return fmt.Sprintf("%+v", err)
}
