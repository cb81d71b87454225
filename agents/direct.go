package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/va6996/ecochat/log"
	"github.com/va6996/ecochat/report"
	"github.com/va6996/ecochat/router"
	"github.com/va6996/ecochat/tools"
)

// DirectResponder routes a query by keyword to one tool and formats the
// result without a language model.
type DirectResponder struct {
	router  *router.Router
	invoker tools.ToolInvoker
	Format  report.Format
	Now     func() time.Time
}

var _ Responder = (*DirectResponder)(nil)

// NewDirectResponder uses the default keyword table when r is nil.
func NewDirectResponder(r *router.Router, invoker tools.ToolInvoker) *DirectResponder {
	if r == nil {
		r = router.New()
	}
	return &DirectResponder{router: r, invoker: invoker, Format: report.FormatText, Now: time.Now}
}

// Respond implements Responder. A router miss is answered locally, not as
// an error.
func (d *DirectResponder) Respond(ctx context.Context, query string) (*Answer, error) {
	decision, ok := d.router.Route(query)
	switch {
	case !ok:
		return &Answer{Text: router.FallbackMessage, Source: SourceLocal}, nil
	case decision.Help():
		return &Answer{Text: router.HelpMessage, Source: SourceLocal}, nil
	}

	log.Infof(ctx, "Routing %q to %s (%s)", query, decision.Tool, decision.Group)
	res, err := d.invoker.Invoke(ctx, decision.Tool, decision.Params)
	if err != nil {
		return nil, fmt.Errorf("direct call to %s failed: %w", decision.Tool, err)
	}

	text, err := report.Render(res, d.Format, d.Now())
	if err != nil {
		return nil, err
	}
	return &Answer{
		Text:    text,
		Source:  SourceToolDirect,
		Results: []*tools.Result{res},
		Tools:   []string{decision.Tool},
	}, nil
}
