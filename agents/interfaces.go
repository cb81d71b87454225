package agents

import (
	"context"
	"errors"

	"github.com/va6996/ecochat/tools"
)

var (
	// ErrEmptyMessage rejects blank chat input.
	ErrEmptyMessage = errors.New("message is required")
	// ErrAgentUnavailable means no tool-calling model is configured.
	ErrAgentUnavailable = errors.New("agent unavailable")
)

// Source names the path that produced an answer.
type Source string

const (
	SourceLocal      Source = "local"
	SourceToolDirect Source = "tool_direct"
	SourceAgent      Source = "agent"
	SourceError      Source = "error"
)

// Answer is the reply to one query.
type Answer struct {
	Text    string          `json:"response"`
	Source  Source          `json:"source"`
	Results []*tools.Result `json:"-"`
	Tools   []string        `json:"tools,omitempty"`
}

// Responder answers a free-text query. The tool-calling agent and the
// keyword router path both implement it.
type Responder interface {
	Respond(ctx context.Context, query string) (*Answer, error)
}

// ChatRecorder persists answered chat messages.
type ChatRecorder interface {
	RecordChat(ctx context.Context, message string, answer *Answer) error
}
