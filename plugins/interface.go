package plugins

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// LLMClient defines the interface for LLM interaction
type LLMClient interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// ModelLister is implemented by LLM clients that can enumerate their models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// UpstreamError classifies a failed call to a language model or remote tool
// service. StatusCode is zero when the service could not be reached.
type UpstreamError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s returned status %d: %v", e.Service, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s unreachable: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Temporary reports whether retrying the call may succeed.
func (e *UpstreamError) Temporary() bool {
	switch {
	case e.StatusCode == 0:
		return !errors.Is(e.Err, context.Canceled) && !errors.Is(e.Err, context.DeadlineExceeded)
	case e.StatusCode == http.StatusTooManyRequests:
		return true
	default:
		return e.StatusCode >= 500
	}
}

// HTTPStatus maps the failure onto the status a gateway should answer with.
func (e *UpstreamError) HTTPStatus() int {
	if e.StatusCode == 0 {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

// AsUpstream returns the UpstreamError wrapped in err, if any.
func AsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
