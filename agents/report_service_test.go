package agents

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/va6996/ecochat/orm"
	"github.com/va6996/ecochat/plugins/building"
	"github.com/va6996/ecochat/report"
	"github.com/va6996/ecochat/tools"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newReportService(t *testing.T, llm *stubLLM, withDB bool) *ReportService {
	t.Helper()
	var db *gorm.DB
	if withDB {
		var err error
		db, err = gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
		require.NoError(t, err)
		require.NoError(t, orm.Migrate(db))
	}
	var svc *ReportService
	if llm != nil {
		svc = NewReportService(newRegistry(t), llm, "stub", db)
	} else {
		svc = NewReportService(newRegistry(t), nil, "", db)
	}
	svc.Now = func() time.Time { return testNow }
	return svc
}

func TestToolForReportType(t *testing.T) {
	tests := []struct {
		in   string
		tool string
	}{
		{"co2", building.CO2AnalysisTool},
		{"CO2", building.CO2AnalysisTool},
		{"occupancy", building.OccupancyTool},
		{"comfort", building.ComfortTool},
		{"comprehensive", building.ComprehensiveReportTool},
		{"", building.ComprehensiveReportTool},
		{"anything", building.ComprehensiveReportTool},
	}
	for _, tt := range tests {
		tool, args := ToolForReportType(tt.in)
		assert.Equal(t, tt.tool, tool, tt.in)
		assert.NotNil(t, args)
	}
	_, args := ToolForReportType("")
	assert.Equal(t, building.ReportComprehensive, args["report_type"])
}

func TestReportService_Comprehensive(t *testing.T) {
	llm := &stubLLM{text: "  Building 413 performs well.  "}
	svc := newReportService(t, llm, false)

	rep, err := svc.Generate(context.Background(), ReportRequest{})
	require.NoError(t, err)
	assert.Equal(t, "success", rep.Status)
	assert.Equal(t, ReportTypeComprehensive, rep.ReportType)
	assert.Equal(t, DefaultReportQuery, rep.UserQuery)
	assert.Equal(t, testNow, rep.GeneratedAt)
	assert.Equal(t, "Building 413 performs well.", rep.LLMAnalysis)
	assert.Equal(t, NarrativeLLM, rep.NarrativeSource)
	assert.Equal(t, building.ComprehensiveReportTool, rep.StructuredData.Tool)
	assert.Equal(t, report.FormatText, rep.Format)
	assert.True(t, strings.HasPrefix(rep.Rendered, "# Sustainability Report"))

	require.NotNil(t, rep.Summary.DataPointsAnalyzed)
	assert.Equal(t, 5, *rep.Summary.DataPointsAnalyzed)
	require.NotNil(t, rep.Summary.SustainabilityScore)
	assert.InDelta(t, 74.65, *rep.Summary.SustainabilityScore, 0.06)
	assert.Len(t, rep.Summary.KeyRecommendations, 3)

	assert.Contains(t, llm.last, "You are a sustainability expert")
	assert.Contains(t, llm.last, "User Query: "+DefaultReportQuery)
	assert.Contains(t, llm.last, `"overall_sustainability_score"`)
}

func TestReportService_FocusedType(t *testing.T) {
	svc := newReportService(t, nil, false)

	rep, err := svc.Generate(context.Background(), ReportRequest{Query: "air?", Type: "co2", Format: report.FormatHTML})
	require.NoError(t, err)
	assert.Equal(t, "co2", rep.ReportType)
	assert.Equal(t, building.CO2AnalysisTool, rep.StructuredData.Tool)
	assert.Nil(t, rep.Summary.DataPointsAnalyzed)
	assert.Nil(t, rep.Summary.SustainabilityScore)
	assert.NotEmpty(t, rep.Summary.KeyRecommendations)
	assert.True(t, strings.HasPrefix(rep.Rendered, "<!DOCTYPE html>"))

	// Without a model the narrative is the text rendering.
	assert.Equal(t, NarrativeFormatter, rep.NarrativeSource)
	assert.True(t, strings.HasPrefix(rep.LLMAnalysis, "# Air Quality (CO2) Analysis"))
}

func TestReportService_NarrativeCache(t *testing.T) {
	llm := &stubLLM{text: "narrative"}
	svc := newReportService(t, llm, true)
	req := ReportRequest{Query: "comfort please", Type: "comfort"}

	first, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, NarrativeLLM, first.NarrativeSource)

	second, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, NarrativeCache, second.NarrativeSource)
	assert.Equal(t, "narrative", second.LLMAnalysis)
	assert.Equal(t, int32(1), llm.calls.Load())

	// A different query is a different key.
	_, err = svc.Generate(context.Background(), ReportRequest{Query: "other", Type: "comfort"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), llm.calls.Load())
}

func TestReportService_NarrativeCacheIgnoresReportClock(t *testing.T) {
	llm := &stubLLM{text: "narrative"}
	svc := newReportService(t, llm, true)

	reg := tools.NewRegistry()
	c := building.NewClient(fixture(), nil, reg)
	clock := testNow
	c.Now = func() time.Time {
		clock = clock.Add(2 * time.Second)
		return clock
	}
	svc.invoker = reg

	req := ReportRequest{Query: "how green are we", Type: ReportTypeComprehensive}
	sources := make([]string, 0, 3)
	for range 3 {
		rep, err := svc.Generate(context.Background(), req)
		require.NoError(t, err)
		sources = append(sources, rep.NarrativeSource)
	}
	assert.Equal(t, []string{NarrativeLLM, NarrativeCache, NarrativeCache}, sources)
	assert.Equal(t, int32(1), llm.calls.Load())
}

func TestReportService_LLMFailureUsesFormatter(t *testing.T) {
	llm := &stubLLM{err: errBoom}
	svc := newReportService(t, llm, true)

	rep, err := svc.Generate(context.Background(), ReportRequest{Type: "occupancy"})
	require.NoError(t, err)
	assert.Equal(t, NarrativeFormatter, rep.NarrativeSource)
	assert.True(t, strings.HasPrefix(rep.LLMAnalysis, "# Occupancy Patterns"))
}

func TestReportService_InvokeError(t *testing.T) {
	svc := NewReportService(failingInvoker{err: errBoom}, nil, "", nil)

	_, err := svc.Generate(context.Background(), ReportRequest{})
	assert.ErrorIs(t, err, ErrAnalysisFailed)
	assert.ErrorIs(t, err, errBoom)
}
