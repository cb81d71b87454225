package building

import (
	"strings"
	"time"

	"github.com/va6996/ecochat/dataset"
	"github.com/va6996/ecochat/tools"
)

// Report types accepted by generate_sustainability_report.
const (
	ReportComprehensive    = "comprehensive"
	ReportCO2Focused       = "co2_focused"
	ReportEnergyEfficiency = "energy_efficiency"
)

const (
	defaultOverallScore = 50.0
	poorComfortPercent  = 50.0
	priorityCount       = 3

	FindingPoorVentilation = "CO2 levels indicate poor ventilation - immediate action needed"
	FindingPoorComfort     = "Environmental conditions are suboptimal for comfort and efficiency"
)

// ReportMetadata identifies a generated report.
type ReportMetadata struct {
	GeneratedAt    time.Time `json:"generated_at"`
	ReportType     string    `json:"report_type"`
	BuildingID     *int      `json:"building_id"`
	AnalysisPeriod *Period   `json:"analysis_period"`
}

// ExecutiveSummary is the headline section of a report.
type ExecutiveSummary struct {
	TotalRecords            int      `json:"total_records_analyzed"`
	OverallScore            float64  `json:"overall_sustainability_score"`
	KeyFindings             []string `json:"key_findings"`
	PriorityRecommendations []string `json:"priority_recommendations"`
}

// DetailedAnalysis holds the composed sub-analyses. A nil entry means the
// analysis had no data.
type DetailedAnalysis struct {
	AirQuality  *CO2Analysis `json:"air_quality"`
	Occupancy   *Occupancy   `json:"occupancy_patterns"`
	Comfort     *Comfort     `json:"environmental_comfort"`
	EnergyStats *EnergyStats `json:"energy_statistics"`
}

// Report is the payload of generate_sustainability_report.
type Report struct {
	Metadata        ReportMetadata   `json:"report_metadata"`
	Summary         ExecutiveSummary `json:"executive_summary"`
	Detailed        DetailedAnalysis `json:"detailed_analysis"`
	Recommendations []string         `json:"recommendations"`
}

// ComprehensiveReport composes the CO2, occupancy, comfort and energy
// analyses. Recommendations are the four lists joined in that order.
func (c *Client) ComprehensiveReport(v dataset.View, reportType string) *tools.Result {
	reportType = strings.ToLower(strings.TrimSpace(reportType))
	switch reportType {
	case ReportCO2Focused, ReportEnergyEfficiency:
	default:
		reportType = ReportComprehensive
	}

	r := Report{
		Metadata: ReportMetadata{
			GeneratedAt:    c.Now().UTC().Truncate(time.Second),
			ReportType:     reportType,
			AnalysisPeriod: periodOf(v),
		},
		Summary: ExecutiveSummary{TotalRecords: v.Len(), KeyFindings: []string{}},
	}
	if id, ok := v.BuildingID(); ok {
		r.Metadata.BuildingID = ptr(id)
	}
	if v.Empty() {
		r.Summary.OverallScore = defaultOverallScore
		r.Summary.PriorityRecommendations = []string{}
		r.Recommendations = []string{}
		return tools.NoData(ComprehensiveReportTool, "No data available for report generation", r)
	}

	co2Res := c.CO2Analysis(v)
	occRes := c.OccupancyAnalysis(v)
	comfortRes := c.ComfortAnalysis(v)
	energyRes := c.EnergyStats(v)

	var scores []float64
	if a, ok := payload[CO2Analysis](co2Res); ok {
		r.Detailed.AirQuality = &a
		scores = append(scores, *a.EnergyEfficiencyScore)
		if a.Statistics.AveragePPM > co2VentilationPPM {
			r.Summary.KeyFindings = append(r.Summary.KeyFindings, FindingPoorVentilation)
		}
	}
	if o, ok := payload[Occupancy](occRes); ok {
		r.Detailed.Occupancy = &o
	}
	if cm, ok := payload[Comfort](comfortRes); ok {
		r.Detailed.Comfort = &cm
		if cm.Insights != nil {
			scores = append(scores, cm.Insights.EnergyEfficiencyScore)
			if cm.Insights.OptimalConditions.Percentage < poorComfortPercent {
				r.Summary.KeyFindings = append(r.Summary.KeyFindings, FindingPoorComfort)
			}
		}
	}
	if e, ok := payload[EnergyStats](energyRes); ok {
		r.Detailed.EnergyStats = &e
	}

	r.Summary.OverallScore = defaultOverallScore
	if avg, ok := mean(scores); ok {
		r.Summary.OverallScore = round(avg, 1)
	}

	r.Recommendations = []string{}
	for _, res := range []*tools.Result{co2Res, occRes, comfortRes, energyRes} {
		r.Recommendations = append(r.Recommendations, recommendationsOf(res)...)
	}
	r.Summary.PriorityRecommendations = r.Recommendations[:min(priorityCount, len(r.Recommendations))]

	return tools.OK(ComprehensiveReportTool, r, r.Summary.PriorityRecommendations...)
}

func payload[T any](res *tools.Result) (T, bool) {
	var zero T
	if res == nil || res.Status != tools.StatusOK {
		return zero, false
	}
	v, ok := res.Data.(T)
	return v, ok
}

func recommendationsOf(res *tools.Result) []string {
	if res == nil || res.Status != tools.StatusOK {
		return nil
	}
	return res.Recommendations
}
