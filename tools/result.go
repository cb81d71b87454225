package tools

import (
	"encoding/json"
	"fmt"
)

// Status classifies a tool outcome.
type Status string

const (
	StatusOK     Status = "ok"
	StatusNoData Status = "no_data"
	StatusError  Status = "error"
)

// NominalRecommendation is used when an analysis produced nothing to act on.
const NominalRecommendation = "All monitored metrics are within normal operating ranges; continue routine monitoring."

// NoDataRecommendation accompanies every no_data result.
const NoDataRecommendation = "Verify that sensor data covers the requested period and try a wider date range."

// Result is the typed outcome of a tool call. Data holds the tool-specific
// payload struct; after a JSON round trip it is a generic map and Decode
// recovers the struct.
type Result struct {
	Tool            string   `json:"tool"`
	Status          Status   `json:"status"`
	Message         string   `json:"message,omitempty"`
	Data            any      `json:"data,omitempty"`
	Recommendations []string `json:"recommendations"`
}

// OK wraps a successful payload. An empty recommendation list is replaced by
// the nominal message.
func OK(tool string, data any, recommendations ...string) *Result {
	if len(recommendations) == 0 {
		recommendations = []string{NominalRecommendation}
	}
	return &Result{
		Tool:            tool,
		Status:          StatusOK,
		Data:            data,
		Recommendations: recommendations,
	}
}

// NoData reports an empty view. data should carry the tool's "not available"
// markers.
func NoData(tool, message string, data any) *Result {
	return &Result{
		Tool:            tool,
		Status:          StatusNoData,
		Message:         message,
		Data:            data,
		Recommendations: []string{NoDataRecommendation},
	}
}

// Failed converts a computation error into a result.
func Failed(tool string, err error) *Result {
	return &Result{
		Tool:            tool,
		Status:          StatusError,
		Message:         fmt.Sprintf("Error running %s: %v", tool, err),
		Recommendations: []string{"Retry the request; if the problem persists check the service logs."},
	}
}

// Text flattens the result for language-model consumption: JSON for
// successful results, the message otherwise.
func (r *Result) Text() string {
	if r == nil {
		return "No result"
	}
	if r.Status != StatusOK && r.Message != "" {
		return r.Message
	}
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf("Error encoding %s result: %v", r.Tool, err)
	}
	return string(b)
}

// JSON encodes the full result regardless of status.
func (r *Result) JSON() ([]byte, error) {
	return json.Marshal(r)
}

// Decode copies Data into v, which must be a pointer to the tool's payload type.
func (r *Result) Decode(v any) error {
	if r.Data == nil {
		return fmt.Errorf("%s result has no data", r.Tool)
	}
	b, err := json.Marshal(r.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s data: %w", r.Tool, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("failed to decode %s data: %w", r.Tool, err)
	}
	return nil
}

// ParseResult reads a result encoded with JSON. Plain text that is not a
// result envelope becomes an ok result carrying the text as its message.
func ParseResult(tool, text string) *Result {
	var r Result
	if err := json.Unmarshal([]byte(text), &r); err == nil && r.Status != "" {
		return &r
	}
	return &Result{
		Tool:            tool,
		Status:          StatusOK,
		Message:         text,
		Recommendations: []string{NominalRecommendation},
	}
}
