package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/va6996/ecochat/log"
	"github.com/va6996/ecochat/tools"
)

// DefaultMaxTurns bounds the model/tool round trips of one query.
const DefaultMaxTurns = 10

const systemPrompt = `You are an AI assistant specialized in sustainable building management and environmental analysis for Building 413.

You have access to tools that query the building's sensor data (CO2, temperature, humidity, light and motion).
When asked about sustainability, use tool chaining to build a complete answer:
1. Use get_building_energy_stats to understand current sensor statistics
2. Use analyze_eco_impact to calculate carbon footprint and water usage
3. Use get_sustainability_metrics to derive metrics and recommendations
Use analyze_co2_levels, analyze_occupancy_patterns and get_environmental_comfort_analysis for focused questions,
and resolve_date to turn relative dates into YYYY-MM-DD bounds before passing start_date or end_date.

Always provide specific, actionable insights based on the data. Never invent numbers that no tool returned.`

// EcoAgent answers queries by letting the model chain the registry tools.
type EcoAgent struct {
	genkit   *genkit.Genkit
	registry *tools.Registry
	model    ai.Model
	MaxTurns int
}

var _ Responder = (*EcoAgent)(nil)

// NewEcoAgent creates the agent. A nil model yields an agent that always
// reports ErrAgentUnavailable.
func NewEcoAgent(gk *genkit.Genkit, registry *tools.Registry, model ai.Model) *EcoAgent {
	return &EcoAgent{
		genkit:   gk,
		registry: registry,
		model:    model,
		MaxTurns: DefaultMaxTurns,
	}
}

// Available reports whether the agent can run.
func (a *EcoAgent) Available() bool {
	return a != nil && a.genkit != nil && a.model != nil
}

// Respond implements Responder.
func (a *EcoAgent) Respond(ctx context.Context, query string) (*Answer, error) {
	return a.Run(ctx, query)
}

// Run sends the query to the model with every registry tool attached and
// returns the final text with the results of the tools it called.
func (a *EcoAgent) Run(ctx context.Context, query string) (*Answer, error) {
	if !a.Available() {
		return nil, ErrAgentUnavailable
	}

	var toolRefs []ai.ToolRef
	for _, tool := range a.registry.GetTools() {
		toolRefs = append(toolRefs, tool)
	}
	log.Debugf(ctx, "Agent running with %d tools, max %d turns", len(toolRefs), a.MaxTurns)

	ctx, trace := tools.WithTrace(ctx)
	response, err := genkit.Generate(ctx,
		a.genkit,
		ai.WithModel(a.model),
		ai.WithSystem(systemPrompt),
		ai.WithPrompt(query),
		ai.WithTools(toolRefs...),
		ai.WithMaxTurns(a.MaxTurns),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("agent timed out: %w", context.DeadlineExceeded)
		}
		return nil, fmt.Errorf("agent generation failed: %w", err)
	}

	text := strings.TrimSpace(response.Text())
	log.Debugf(ctx, "Agent finished (%v) after %d tool calls", response.FinishReason, len(trace.Calls()))
	if text == "" {
		return nil, fmt.Errorf("agent returned an empty response")
	}

	answer := &Answer{Text: text, Source: SourceAgent, Results: trace.Results()}
	for _, c := range trace.Calls() {
		answer.Tools = append(answer.Tools, c.Tool)
	}
	return answer, nil
}
