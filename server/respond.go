package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/va6996/ecochat/agents"
	"github.com/va6996/ecochat/dataset"
	"github.com/va6996/ecochat/log"
	"github.com/va6996/ecochat/plugins"
	"github.com/va6996/ecochat/tools"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Status  string `json:"status"`
}

var errInvalidJSON = errors.New("invalid JSON body")

func writeJSON(ctx context.Context, w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf(ctx, "Failed to write response: %v", err)
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, code int, msg string, err error) {
	body := ErrorResponse{Error: msg, Status: "error"}
	if err != nil && code >= http.StatusInternalServerError {
		body.Details = err.Error()
	}
	writeJSON(ctx, w, code, body)
}

// decode reads a JSON body. An empty body leaves v untouched.
func decode(r *http.Request, w http.ResponseWriter, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %v", errInvalidJSON, err)
	}
	return nil
}

// statusOf maps service errors onto HTTP status codes.
func statusOf(err error) int {
	if ue, ok := plugins.AsUpstream(err); ok {
		return ue.HTTPStatus()
	}
	switch {
	case errors.Is(err, errInvalidJSON),
		errors.Is(err, agents.ErrEmptyMessage),
		errors.Is(err, dataset.ErrInvalidDate):
		return http.StatusBadRequest
	case errors.Is(err, tools.ErrToolNotFound):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
