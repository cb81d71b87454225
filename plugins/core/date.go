package core

import (
	"context"
	"fmt"
	"time"

	"github.com/dop251/goja"
	"github.com/firebase/genkit/go/genkit"
	"github.com/va6996/ecochat/log"
	"github.com/va6996/ecochat/tools"
)

// DateToolName is the registered name of the date tool.
const DateToolName = "resolve_date"

// DateInput defines the input for the date tool
type DateInput struct {
	Expression string `json:"expression" description:"JavaScript expression to calculate a date. Variable 'now' holds the latest dataset timestamp in milliseconds." jsonschema:"JavaScript expression returning a Date or ISO string; now is the latest reading in milliseconds"`
}

// ResolvedDate is the payload of the date tool.
type ResolvedDate struct {
	Date string    `json:"date"`
	Time time.Time `json:"time"`
}

// DateTool evaluates date expressions relative to an anchor. The anchor is
// the newest reading, so "last week" means the last week of data.
type DateTool struct {
	Now func() time.Time
}

// NewDateTool creates a new DateTool and registers it
func NewDateTool(gk *genkit.Genkit, registry *tools.Registry, anchor func() time.Time) *DateTool {
	if anchor == nil {
		anchor = time.Now
	}
	t := &DateTool{Now: anchor}
	if registry == nil {
		return t
	}

	tools.Define(gk, registry, DateToolName, t.Description(),
		func(ctx context.Context, in DateInput) *tools.Result {
			d, err := t.Execute(ctx, &in)
			if err != nil {
				return tools.Failed(DateToolName, err)
			}
			return tools.OK(DateToolName, ResolvedDate{Date: d.Format("2006-01-02"), Time: *d},
				"Pass the date as start_date or end_date to the analysis tools.")
		})
	return t
}

func (t *DateTool) Description() string {
	return `Executes a JavaScript expression to calculate a date for start_date or end_date. Variable 'now' holds the timestamp (milliseconds) of the latest sensor reading, not the wall clock.
Return a Date object or ISO string. The last expression is the return value.
Examples:
- Seven days before the latest reading: "new Date(now - 7 * 86400000)"
- First day of that month: "var d = new Date(now); new Date(Date.UTC(d.getUTCFullYear(), d.getUTCMonth(), 1))"`
}

func (t *DateTool) Execute(ctx context.Context, input *DateInput) (*time.Time, error) {
	if input == nil || input.Expression == "" {
		return nil, fmt.Errorf("expression is required")
	}
	log.Debugf(ctx, "DateTool: evaluating %q", input.Expression)

	vm := goja.New()
	if err := vm.Set("now", t.Now().UnixMilli()); err != nil {
		return nil, fmt.Errorf("failed to set 'now': %w", err)
	}

	val, err := vm.RunString(input.Expression)
	if err != nil {
		return nil, fmt.Errorf("js execution failed: %w", err)
	}

	exported := val.Export()
	if exported == nil {
		return nil, fmt.Errorf("result is null or undefined")
	}

	// Goja exports JS Date values as time.Time.
	if d, ok := exported.(time.Time); ok {
		d = d.UTC()
		return &d, nil
	}
	if str, ok := exported.(string); ok {
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if d, err := time.Parse(layout, str); err == nil {
				d = d.UTC()
				return &d, nil
			}
		}
	}

	return nil, fmt.Errorf("result is not a valid Date object or ISO string")
}
