// Package building implements the sensor analysis tools for a single
// building dataset.
package building

import (
	"context"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/va6996/ecochat/dataset"
	"github.com/va6996/ecochat/tools"
)

// Tool names as seen by the agent, the router and remote callers.
const (
	EnergyStatsTool         = "get_building_energy_stats"
	SustainabilityTool      = "get_sustainability_metrics"
	EcoImpactTool           = "analyze_eco_impact"
	CO2AnalysisTool         = "analyze_co2_levels"
	OccupancyTool           = "analyze_occupancy_patterns"
	ComfortTool             = "get_environmental_comfort_analysis"
	ComprehensiveReportTool = "generate_sustainability_report"
	DataSummaryTool         = "get_data_summary"
)

// DateRangeInput is shared by the tools that accept an optional date window.
type DateRangeInput struct {
	StartDate string `json:"start_date,omitempty" description:"Start date in YYYY-MM-DD format (optional)" jsonschema:"start date in YYYY-MM-DD format"`
	EndDate   string `json:"end_date,omitempty" description:"End date in YYYY-MM-DD format, inclusive (optional)" jsonschema:"inclusive end date in YYYY-MM-DD format"`
}

// EcoImpactInput selects the impact estimate.
type EcoImpactInput struct {
	MetricType string `json:"metric_type,omitempty" description:"Either carbon_footprint or water_usage" jsonschema:"carbon_footprint or water_usage"`
	StartDate  string `json:"start_date,omitempty" description:"Start date in YYYY-MM-DD format (optional)" jsonschema:"start date in YYYY-MM-DD format"`
	EndDate    string `json:"end_date,omitempty" description:"End date in YYYY-MM-DD format, inclusive (optional)" jsonschema:"inclusive end date in YYYY-MM-DD format"`
}

// ReportInput selects the flavour of the comprehensive report.
type ReportInput struct {
	ReportType string `json:"report_type,omitempty" description:"comprehensive, co2_focused or energy_efficiency" jsonschema:"comprehensive or co2_focused or energy_efficiency"`
}

// SummaryInput takes no arguments.
type SummaryInput struct{}

// Client runs analyses over an injected dataset.
type Client struct {
	data *dataset.Dataset
	Now  func() time.Time
}

// NewClient creates the client and registers its tools when gk and registry
// are set.
func NewClient(data *dataset.Dataset, gk *genkit.Genkit, registry *tools.Registry) *Client {
	if data == nil {
		data = dataset.Empty()
	}
	c := &Client{data: data, Now: time.Now}
	if registry != nil {
		c.RegisterTools(gk, registry)
	}
	return c
}

// RegisterTools implements tools.ToolPlugin.
func (c *Client) RegisterTools(gk *genkit.Genkit, registry *tools.Registry) {
	tools.Define(gk, registry, EnergyStatsTool,
		"Get energy and sensor statistics (mean, max, min per column, record count, covered period) for the building. Optional start_date and end_date (YYYY-MM-DD) limit the window.",
		func(ctx context.Context, in DateRangeInput) *tools.Result {
			return withRange(EnergyStatsTool, c.data, in, c.EnergyStats)
		})
	tools.Define(gk, registry, SustainabilityTool,
		"Get sustainability metrics and recommendations from energy columns, or from CO2, temperature and humidity averages when no energy columns exist.",
		func(ctx context.Context, in DateRangeInput) *tools.Result {
			return withRange(SustainabilityTool, c.data, in, c.SustainabilityMetrics)
		})
	tools.Define(gk, registry, EcoImpactTool,
		"Estimate ecological impact. metric_type carbon_footprint estimates CO2 emissions; water_usage estimates water use from humidity and occupancy.",
		func(ctx context.Context, in EcoImpactInput) *tools.Result {
			return withRange(EcoImpactTool, c.data, DateRangeInput{StartDate: in.StartDate, EndDate: in.EndDate},
				func(v dataset.View) *tools.Result { return c.EcoImpact(v, in.MetricType) })
		})
	tools.Define(gk, registry, CO2AnalysisTool,
		"Analyze CO2 levels: distribution over air quality bands, statistics, overall rating, ventilation need and an energy efficiency score.",
		func(ctx context.Context, in DateRangeInput) *tools.Result {
			return withRange(CO2AnalysisTool, c.data, in, c.CO2Analysis)
		})
	tools.Define(gk, registry, OccupancyTool,
		"Analyze occupancy patterns from PIR motion events by hour and weekday, with peak and low usage periods.",
		func(ctx context.Context, in DateRangeInput) *tools.Result {
			return withRange(OccupancyTool, c.data, in, c.OccupancyAnalysis)
		})
	tools.Define(gk, registry, ComfortTool,
		"Analyze temperature (optimal 20-24°C) and humidity (optimal 40-60%) for comfort and energy efficiency.",
		func(ctx context.Context, in DateRangeInput) *tools.Result {
			return withRange(ComfortTool, c.data, in, c.ComfortAnalysis)
		})
	tools.Define(gk, registry, ComprehensiveReportTool,
		"Generate a comprehensive sustainability report combining air quality, occupancy, comfort and energy statistics with key findings and priority recommendations.",
		func(ctx context.Context, in ReportInput) *tools.Result {
			return c.ComprehensiveReport(c.data.All(), in.ReportType)
		})
	tools.Define(gk, registry, DataSummaryTool,
		"Get a summary of the available sensor data: record count, date range, building id and per-sensor availability.",
		func(ctx context.Context, _ SummaryInput) *tools.Result {
			return c.DataSummary(c.data.All())
		})
}

func withRange(name string, data *dataset.Dataset, in DateRangeInput, fn func(dataset.View) *tools.Result) *tools.Result {
	view, err := data.FilterDates(in.StartDate, in.EndDate)
	if err != nil {
		return tools.Failed(name, err)
	}
	return fn(view)
}
