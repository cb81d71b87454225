package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/va6996/ecochat/dataset"
	"github.com/va6996/ecochat/log"
	"github.com/va6996/ecochat/metrics"
	"github.com/va6996/ecochat/plugins/building"
	"github.com/va6996/ecochat/report"
	"github.com/va6996/ecochat/tools"
)

// DefaultAnalysisQuery is used when an analysis request carries no query.
const DefaultAnalysisQuery = "Provide a general sustainability analysis"

// Period is an inclusive YYYY-MM-DD date window.
type Period struct {
	Start string
	End   string
}

func (p Period) args() map[string]any {
	return map[string]any{"start_date": p.Start, "end_date": p.End}
}

func (p Period) validate() error {
	for _, s := range []string{p.Start, p.End} {
		if _, err := dataset.ParseTime(s); err != nil {
			return fmt.Errorf("%w: %q", dataset.ErrInvalidDate, s)
		}
	}
	return nil
}

// Analyst runs the canned analyses. Each one asks the agent with a fixed
// prompt and falls back to calling the tools directly.
type Analyst struct {
	agent   Responder
	invoker tools.ToolInvoker
	direct  Responder
	Timeout time.Duration
	Now     func() time.Time
}

// NewAnalyst creates an Analyst. agent may be nil.
func NewAnalyst(agent Responder, invoker tools.ToolInvoker, direct Responder) *Analyst {
	return &Analyst{
		agent:   agent,
		invoker: invoker,
		direct:  direct,
		Timeout: DefaultAgentTimeout,
		Now:     time.Now,
	}
}

// AnalyzePeriodPrompt is the agent prompt for a single period analysis.
func AnalyzePeriodPrompt(p Period) string {
	return fmt.Sprintf(`Perform a comprehensive sustainability analysis for the period %s to %s:
1. Get energy statistics for this period
2. Calculate the carbon footprint
3. Analyze water usage
4. Provide sustainability metrics and recommendations
5. Suggest specific actions for improvement`, p.Start, p.End)
}

// RecommendationsPrompt is the agent prompt for current recommendations.
const RecommendationsPrompt = `Based on current building data:
1. Analyze current energy consumption patterns
2. Calculate environmental impact
3. Provide specific sustainability recommendations
4. Include the estimated impact of each recommendation`

// ComparePeriodsPrompt is the agent prompt for a two period comparison.
func ComparePeriodsPrompt(p1, p2 Period) string {
	return fmt.Sprintf(`Compare sustainability metrics between two periods:
Period 1: %s to %s
Period 2: %s to %s

Analyze energy consumption, carbon footprint, and provide insights on improvements or regressions.`,
		p1.Start, p1.End, p2.Start, p2.End)
}

// AnalyzePeriod analyzes one date window.
func (a *Analyst) AnalyzePeriod(ctx context.Context, p Period) (*Answer, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return a.withFallback(ctx, AnalyzePeriodPrompt(p), func(ctx context.Context) (*Answer, error) {
		return a.runAll(ctx, []call{
			{building.EnergyStatsTool, p.args()},
			{building.EcoImpactTool, merge(p.args(), map[string]any{"metric_type": building.CarbonFootprint})},
			{building.EcoImpactTool, merge(p.args(), map[string]any{"metric_type": building.WaterUsage})},
			{building.SustainabilityTool, p.args()},
		})
	})
}

// Recommendations returns actions for the whole dataset.
func (a *Analyst) Recommendations(ctx context.Context) (*Answer, error) {
	return a.withFallback(ctx, RecommendationsPrompt, func(ctx context.Context) (*Answer, error) {
		return a.runAll(ctx, []call{
			{building.SustainabilityTool, nil},
			{building.EcoImpactTool, map[string]any{"metric_type": building.CarbonFootprint}},
			{building.ComprehensiveReportTool, map[string]any{"report_type": building.ReportComprehensive}},
		})
	})
}

// ComparePeriods contrasts two date windows.
func (a *Analyst) ComparePeriods(ctx context.Context, p1, p2 Period) (*Answer, error) {
	for _, p := range []Period{p1, p2} {
		if err := p.validate(); err != nil {
			return nil, err
		}
	}
	return a.withFallback(ctx, ComparePeriodsPrompt(p1, p2), func(ctx context.Context) (*Answer, error) {
		return a.compare(ctx, p1, p2)
	})
}

// Query answers a free-form analysis question.
func (a *Analyst) Query(ctx context.Context, query string) (*Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		query = DefaultAnalysisQuery
	}
	return a.withFallback(ctx, query, func(ctx context.Context) (*Answer, error) {
		return a.direct.Respond(ctx, query)
	})
}

func (a *Analyst) withFallback(ctx context.Context, prompt string, fallback func(context.Context) (*Answer, error)) (*Answer, error) {
	if a.agent != nil {
		timeout := a.Timeout
		if timeout <= 0 {
			timeout = DefaultAgentTimeout
		}
		actx, cancel := context.WithTimeout(ctx, timeout)
		answer, err := a.agent.Respond(actx, prompt)
		cancel()
		if err == nil {
			return answer, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		metrics.AgentFallbacks.WithLabelValues(fallbackReason(err)).Inc()
		log.Warnf(ctx, "Agent analysis failed, calling tools directly: %v", err)
	}
	return fallback(ctx)
}

type call struct {
	tool string
	args map[string]any
}

func (a *Analyst) invokeAll(ctx context.Context, calls []call) ([]*tools.Result, error) {
	results := make([]*tools.Result, 0, len(calls))
	for _, c := range calls {
		res, err := a.invoker.Invoke(ctx, c.tool, c.args)
		if err != nil {
			return nil, fmt.Errorf("failed to call %s: %w", c.tool, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (a *Analyst) runAll(ctx context.Context, calls []call) (*Answer, error) {
	results, err := a.invokeAll(ctx, calls)
	if err != nil {
		return nil, err
	}
	now := a.Now()
	parts := make([]string, 0, len(results))
	answer := &Answer{Source: SourceToolDirect, Results: results}
	for _, res := range results {
		text, err := report.Render(res, report.FormatText, now)
		if err != nil {
			return nil, err
		}
		parts = append(parts, text)
		answer.Tools = append(answer.Tools, res.Tool)
	}
	answer.Text = strings.Join(parts, "\n---\n\n")
	return answer, nil
}

// compare renders both periods side by side on their mean sensor values and
// CO2 ratings.
func (a *Analyst) compare(ctx context.Context, p1, p2 Period) (*Answer, error) {
	results, err := a.invokeAll(ctx, []call{
		{building.EnergyStatsTool, p1.args()},
		{building.CO2AnalysisTool, p1.args()},
		{building.EnergyStatsTool, p2.args()},
		{building.CO2AnalysisTool, p2.args()},
	})
	if err != nil {
		return nil, err
	}

	var stats [2]building.EnergyStats
	var co2 [2]building.CO2Analysis
	targets := []any{&stats[0], &co2[0], &stats[1], &co2[1]}
	for i, res := range results {
		// error results carry no payload and render as n/a
		if res.Status == tools.StatusError {
			log.Warnf(ctx, "Comparison input %s failed: %s", res.Tool, res.Message)
			continue
		}
		if err := res.Decode(targets[i]); err != nil {
			return nil, fmt.Errorf("failed to read %s result: %w", res.Tool, err)
		}
	}

	table := &report.Table{Header: []string{"Measure", label(p1), label(p2), "Change"}}
	table.Rows = append(table.Rows, []string{"Records", fmt.Sprint(stats[0].TotalRecords), fmt.Sprint(stats[1].TotalRecords), ""})
	for _, col := range []string{dataset.CO2, dataset.Temperature, dataset.Humidity, dataset.Light} {
		s1, _ := stats[0].Stat(col)
		s2, _ := stats[1].Stat(col)
		table.Rows = append(table.Rows, []string{"Mean " + col, fmtOpt(s1.Mean), fmtOpt(s2.Mean), delta(s1.Mean, s2.Mean)})
	}
	table.Rows = append(table.Rows,
		[]string{"Air quality", orNA(co2[0].OverallRating), orNA(co2[1].OverallRating), ""},
		[]string{"CO2 efficiency score", fmtOpt(co2[0].EnergyEfficiencyScore), fmtOpt(co2[1].EnergyEfficiencyScore),
			delta(co2[0].EnergyEfficiencyScore, co2[1].EnergyEfficiencyScore)},
	)

	doc := &report.Document{
		Title:       "Period Comparison",
		Subtitle:    fmt.Sprintf("%s versus %s", label(p1), label(p2)),
		GeneratedAt: a.Now().UTC().Format(time.RFC3339),
		Status:      tools.StatusOK,
		Sections:    []report.Section{{Heading: "Key Measures", Table: table}},
	}
	doc.Recommendations = compareRecommendations(co2[0].EnergyEfficiencyScore, co2[1].EnergyEfficiencyScore)

	text, err := report.RenderDocument(doc, report.FormatText)
	if err != nil {
		return nil, err
	}
	answer := &Answer{Text: text, Source: SourceToolDirect, Results: results}
	for _, res := range results {
		answer.Tools = append(answer.Tools, res.Tool)
	}
	return answer, nil
}

func compareRecommendations(before, after *float64) []string {
	switch {
	case before == nil || after == nil:
		return []string{"Not enough CO2 data in one of the periods to compare air quality."}
	case *after > *before:
		return []string{"Air quality improved in the second period. Keep the ventilation changes that were made."}
	case *after < *before:
		return []string{"Air quality regressed in the second period. Review ventilation schedules and occupancy changes."}
	default:
		return []string{"Air quality is unchanged between the periods."}
	}
}

func label(p Period) string { return p.Start + " to " + p.End }

func merge(a, b map[string]any) map[string]any {
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

func fmtOpt(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return strings.ReplaceAll(s, "_", " ")
}

func delta(before, after *float64) string {
	if before == nil || after == nil {
		return ""
	}
	return fmt.Sprintf("%+.2f", *after-*before)
}
