package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/va6996/ecochat/log"
	"github.com/va6996/ecochat/metrics"
	"github.com/va6996/ecochat/orm"
	"github.com/va6996/ecochat/plugins"
	"github.com/va6996/ecochat/plugins/building"
	"github.com/va6996/ecochat/report"
	"github.com/va6996/ecochat/tools"
	"gorm.io/gorm"
)

// Report types accepted by ReportService.
const (
	ReportTypeComprehensive = "comprehensive"
	ReportTypeCO2           = "co2"
	ReportTypeOccupancy     = "occupancy"
	ReportTypeComfort       = "comfort"
)

// DefaultReportQuery is used when a report request carries no query.
const DefaultReportQuery = "Generate a comprehensive sustainability report"

// Narrative sources.
const (
	NarrativeLLM       = "llm"
	NarrativeCache     = "cache"
	NarrativeFormatter = "formatter"
)

// ErrAnalysisFailed means the analysis tool returned an error result.
var ErrAnalysisFailed = errors.New("failed to analyze building data")

// ReportRequest selects and phrases a report.
type ReportRequest struct {
	Query  string
	Type   string
	Format report.Format
}

// ReportSummary holds the headline numbers of a report. Nil fields are
// not provided by the chosen analysis.
type ReportSummary struct {
	DataPointsAnalyzed  *int     `json:"data_points_analyzed"`
	SustainabilityScore *float64 `json:"sustainability_score"`
	KeyRecommendations  []string `json:"key_recommendations"`
}

// GeneratedReport combines the structured analysis with its narrative.
type GeneratedReport struct {
	Status          string        `json:"status"`
	GeneratedAt     time.Time     `json:"generated_at"`
	ReportType      string        `json:"report_type"`
	UserQuery       string        `json:"user_query"`
	LLMAnalysis     string        `json:"llm_analysis"`
	NarrativeSource string        `json:"narrative_source"`
	StructuredData  *tools.Result `json:"structured_data"`
	Rendered        string        `json:"rendered_report"`
	Format          report.Format `json:"format"`
	Summary         ReportSummary `json:"summary"`
}

// ReportService produces narrated sustainability reports.
type ReportService struct {
	invoker  tools.ToolInvoker
	llm      plugins.LLMClient
	llmName  string
	db       *gorm.DB
	CacheTTL time.Duration
	Timeout  time.Duration
	Now      func() time.Time
}

// NewReportService creates the service. llm and db may be nil; without an
// llm the narrative is the formatted report, without a db nothing is
// cached.
func NewReportService(invoker tools.ToolInvoker, llm plugins.LLMClient, llmName string, db *gorm.DB) *ReportService {
	return &ReportService{
		invoker:  invoker,
		llm:      llm,
		llmName:  llmName,
		db:       db,
		CacheTTL: time.Hour,
		Timeout:  60 * time.Second,
		Now:      time.Now,
	}
}

// ToolForReportType maps a report type onto the analysis tool and its
// arguments. Unknown types get the comprehensive report.
func ToolForReportType(reportType string) (string, map[string]any) {
	switch strings.ToLower(strings.TrimSpace(reportType)) {
	case ReportTypeCO2:
		return building.CO2AnalysisTool, map[string]any{}
	case ReportTypeOccupancy:
		return building.OccupancyTool, map[string]any{}
	case ReportTypeComfort:
		return building.ComfortTool, map[string]any{}
	default:
		return building.ComprehensiveReportTool, map[string]any{"report_type": building.ReportComprehensive}
	}
}

// NarrativePrompt asks the model for a report over the analysis JSON.
func NarrativePrompt(analysis, query string) string {
	return fmt.Sprintf(`You are a sustainability expert analyzing smart building data.
Based on the following data analysis, provide insights and recommendations:

Data Analysis:
%s

User Query: %s

Please provide:
1. A clear summary of the building's sustainability performance
2. Key environmental insights from the sensor data
3. Specific recommendations for improving energy efficiency
4. Actions to enhance occupant comfort while reducing environmental impact
5. Metrics and benchmarks for tracking progress

Format your response as a professional sustainability report with clear sections and actionable recommendations.`, analysis, query)
}

// Generate runs the analysis for req.Type and narrates it.
func (s *ReportService) Generate(ctx context.Context, req ReportRequest) (*GeneratedReport, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		query = DefaultReportQuery
	}
	reportType := strings.TrimSpace(req.Type)
	if reportType == "" {
		reportType = ReportTypeComprehensive
	}
	format := req.Format
	if format == "" {
		format = report.FormatText
	}

	tool, args := ToolForReportType(reportType)
	res, err := s.invoker.Invoke(ctx, tool, args)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}
	if res.Status == tools.StatusError {
		return nil, fmt.Errorf("%w: %s", ErrAnalysisFailed, res.Message)
	}

	now := s.Now()
	rendered, err := report.Render(res, format, now)
	if err != nil {
		return nil, err
	}

	out := &GeneratedReport{
		Status:         "success",
		GeneratedAt:    now.UTC(),
		ReportType:     reportType,
		UserQuery:      query,
		StructuredData: res,
		Rendered:       rendered,
		Format:         format,
		Summary:        summarize(res),
	}

	if res.Status == tools.StatusNoData {
		out.LLMAnalysis, out.NarrativeSource = res.Message, NarrativeFormatter
		return out, nil
	}
	out.LLMAnalysis, out.NarrativeSource = s.narrate(ctx, res, query, reportType, now)
	return out, nil
}

// narrate returns the LLM narrative, cached when a db is set. Model
// failures degrade to the plain text rendering.
func (s *ReportService) narrate(ctx context.Context, res *tools.Result, query, reportType string, now time.Time) (string, string) {
	fallback := func() (string, string) {
		text, err := report.Render(res, report.FormatText, now)
		if err != nil {
			return res.Text(), NarrativeFormatter
		}
		return text, NarrativeFormatter
	}
	if s.llm == nil {
		return fallback()
	}

	analysis, err := res.JSON()
	if err != nil {
		log.Warnf(ctx, "Failed to encode analysis for narrative: %v", err)
		return fallback()
	}

	key := orm.NarrativeKey(s.llmName, reportType, query, cacheBasis(analysis))
	if s.db != nil {
		entry, err := orm.GetCacheEntry(s.db.WithContext(ctx), key, now)
		switch {
		case err == nil:
			metrics.NarrativeCache.WithLabelValues("hit").Inc()
			return entry.Narrative, NarrativeCache
		case orm.IsMiss(err):
			metrics.NarrativeCache.WithLabelValues("miss").Inc()
		default:
			log.Warnf(ctx, "Narrative cache lookup failed: %v", err)
		}
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	lctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	narrative, err := s.llm.GenerateContent(lctx, NarrativePrompt(string(analysis), query))
	narrative = strings.TrimSpace(narrative)
	if err != nil || narrative == "" {
		log.Warnf(ctx, "Narrative generation failed, using formatted report: %v", err)
		return fallback()
	}

	if s.db != nil {
		if err := orm.SetCacheEntry(s.db.WithContext(ctx), key, s.llmName, narrative, s.CacheTTL, now); err != nil {
			log.Warnf(ctx, "Failed to cache narrative: %v", err)
		}
	}
	return narrative, NarrativeLLM
}

// cacheBasis is the analysis without the report's own generation time,
// which differs on every call.
func cacheBasis(analysis []byte) string {
	var doc map[string]any
	if err := json.Unmarshal(analysis, &doc); err != nil {
		return string(analysis)
	}
	if data, ok := doc["data"].(map[string]any); ok {
		if meta, ok := data["report_metadata"].(map[string]any); ok {
			delete(meta, "generated_at")
		}
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return string(analysis)
	}
	return string(b)
}

func summarize(res *tools.Result) ReportSummary {
	s := ReportSummary{KeyRecommendations: firstN(res.Recommendations, 3)}
	if res.Tool != building.ComprehensiveReportTool || res.Status != tools.StatusOK {
		return s
	}
	var r building.Report
	if err := res.Decode(&r); err != nil {
		return s
	}
	total, score := r.Summary.TotalRecords, r.Summary.OverallScore
	s.DataPointsAnalyzed = &total
	s.SustainabilityScore = &score
	s.KeyRecommendations = firstN(r.Recommendations, 3)
	return s
}

func firstN(ss []string, n int) []string {
	if len(ss) > n {
		ss = ss[:n]
	}
	return append([]string{}, ss...)
}
