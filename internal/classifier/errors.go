package classifier

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse is returned when the model's reply is not the expected JSON.
var ErrMalformedResponse = errors.New("AI response is not valid JSON")

// ErrorKind classifies upstream failures.
type ErrorKind string

const (
	KindAuth    ErrorKind = "auth"
	KindTimeout ErrorKind = "timeout"
	KindNetwork ErrorKind = "network"
	KindServer  ErrorKind = "server"
	KindEmpty   ErrorKind = "empty_response"
	KindUnknown ErrorKind = "unknown"
)

// Error wraps a failed call to the AI API. Its text always starts with
// "AI API" so operators can tell it apart from storage failures.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("AI API %s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("AI API %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// classifyError inspects the transport error text; the SDK does not expose a
// stable error taxonomy for every OpenAI-compatible backend.
func classifyError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	text := err.Error()
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(text, "401") || strings.Contains(text, "403") ||
		strings.Contains(lower, "unauthorized") || strings.Contains(lower, "api key"):
		return &Error{Kind: KindAuth, Message: "authentication failed", Cause: err}
	case strings.Contains(lower, "deadline exceeded") || strings.Contains(lower, "timeout"):
		return &Error{Kind: KindTimeout, Message: "request timed out", Cause: err}
	case strings.Contains(lower, "connection refused") || strings.Contains(lower, "no such host"):
		return &Error{Kind: KindNetwork, Message: "connection failed", Cause: err}
	case strings.Contains(text, "500") || strings.Contains(text, "502") ||
		strings.Contains(text, "503") || strings.Contains(text, "504"):
		return &Error{Kind: KindServer, Message: "server error", Cause: err}
	}
	return &Error{Kind: KindUnknown, Message: "request failed", Cause: err}
}

// Kind extracts the ErrorKind from err, or KindUnknown.
func Kind(err error) ErrorKind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}
