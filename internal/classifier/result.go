package classifier

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Result is the JSON payload the model is asked to return. Pointer fields are
// nil when the model omitted them or sent null.
type Result struct {
	Material             string   `json:"material"`
	VolumeLitersEstimate *float64 `json:"volume_liters_estimate"`
	VolumeConfidence     *float64 `json:"volume_confidence"`
	MaterialConfidence   *float64 `json:"material_confidence"`
	FullnessPercent      *float64 `json:"fullness_percent"`
	MoistureLevel        *string  `json:"moisture_level"`
	ContaminationLevel   *float64 `json:"contamination_level"`
	ImageQuality         string   `json:"image_quality"`
	ReasoningShort       string   `json:"reasoning_short"`
}

var fencePattern = regexp.MustCompile("(?i)```(?:json)?[ \t]*\\r?\\n?")

// StripCodeFence removes markdown code-fence markers around a response. Text
// that does not start with a fence is only trimmed.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	return strings.TrimSpace(fencePattern.ReplaceAllString(text, ""))
}

// ParseResult decodes the model's text into a Result. The text must be a
// single JSON object once code fences are removed.
func ParseResult(text string) (*Result, error) {
	cleaned := StripCodeFence(text)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedResponse)
	}

	var r Result
	if err := json.Unmarshal([]byte(cleaned), &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &r, nil
}
