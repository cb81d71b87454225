package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/sirupsen/logrus"
	"github.com/va6996/ecochat/log"
	"github.com/va6996/ecochat/metrics"
)

// RunFunc computes a tool result from typed input.
type RunFunc[In any] func(ctx context.Context, input In) *Result

// Define registers fn as a genkit tool and as a map-args executor. The
// genkit side hands the model Result.Text(); the executor side returns the
// typed Result. Panics inside fn become error results.
func Define[In any](gk *genkit.Genkit, registry *Registry, name, description string, fn RunFunc[In]) {
	run := guard(name, fn)

	schema, err := jsonschema.For[In](nil)
	if err != nil {
		log.Warnf(context.Background(), "No input schema for %s: %v", name, err)
		schema = nil
	}

	var tool ai.Tool
	if gk != nil {
		tool = genkit.DefineTool(gk, name, description,
			func(ctx *ai.ToolContext, input In) (string, error) {
				return run(ctx, input).Text(), nil
			},
		)
	}

	registry.Register(tool, Manifest{
		Name:        name,
		Description: description,
		InputSchema: schema,
	}, func(ctx context.Context, args map[string]any) (*Result, error) {
		var input In
		if err := DecodeArgs(args, &input); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return run(ctx, input), nil
	})
}

func guard[In any](name string, fn RunFunc[In]) RunFunc[In] {
	return func(ctx context.Context, input In) (res *Result) {
		start := time.Now()
		defer func() {
			if p := recover(); p != nil {
				log.Errorf(ctx, "Tool %s panicked: %v", name, p)
				res = Failed(name, fmt.Errorf("internal error: %v", p))
			}
			if res == nil {
				res = Failed(name, fmt.Errorf("no result"))
			}
			elapsed := time.Since(start)
			metrics.ToolCalls.WithLabelValues(name, string(res.Status)).Inc()
			metrics.ToolDuration.WithLabelValues(name).Observe(elapsed.Seconds())
			TraceFrom(ctx).record(name, input, res, elapsed)
			log.WithFields(ctx, logrus.Fields{
				"tool":     name,
				"status":   res.Status,
				"duration": elapsed.Round(time.Microsecond),
			}).Debug("Tool call finished")
		}()
		return fn(ctx, input)
	}
}

// DecodeArgs converts keyword arguments into a typed input struct.
func DecodeArgs(args map[string]any, v any) error {
	if len(args) == 0 {
		return nil
	}
	b, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}
