package tools

import (
	"context"
	"sync"
	"time"
)

// Call is one recorded tool invocation.
type Call struct {
	Tool     string        `json:"tool"`
	Input    any           `json:"input,omitempty"`
	Status   Status        `json:"status"`
	Result   *Result       `json:"-"`
	Duration time.Duration `json:"duration"`
}

// Trace collects the tool calls made while serving one request. A nil
// Trace ignores records.
type Trace struct {
	mu    sync.Mutex
	calls []Call
}

type traceKey struct{}

// WithTrace attaches a new trace to ctx.
func WithTrace(ctx context.Context) (context.Context, *Trace) {
	t := &Trace{}
	return context.WithValue(ctx, traceKey{}, t), t
}

// TraceFrom returns the trace attached to ctx, or nil.
func TraceFrom(ctx context.Context) *Trace {
	t, _ := ctx.Value(traceKey{}).(*Trace)
	return t
}

func (t *Trace) record(name string, input any, res *Result, d time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, Call{Tool: name, Input: input, Status: res.Status, Result: res, Duration: d})
}

// Calls returns a copy of the recorded calls in order.
func (t *Trace) Calls() []Call {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Call(nil), t.calls...)
}

// Results returns the results of successful calls in order.
func (t *Trace) Results() []*Result {
	var out []*Result
	for _, c := range t.Calls() {
		if c.Status == StatusOK {
			out = append(out, c.Result)
		}
	}
	return out
}
