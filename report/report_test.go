package report_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/va6996/ecochat/dataset"
	"github.com/va6996/ecochat/plugins/building"
	"github.com/va6996/ecochat/report"
	"github.com/va6996/ecochat/tools"
)

var generatedAt = time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)

func fixture() *dataset.Dataset {
	s := dataset.Some
	at := func(day, hour int) time.Time { return time.Date(2024, time.October, day, hour, 0, 0, 0, time.UTC) }
	return dataset.New([]dataset.Reading{
		{Timestamp: at(7, 9), CO2: s(450), Temperature: s(22), Humidity: s(45), Light: s(300), PIR: s(1), BuildingID: 413},
		{Timestamp: at(7, 10), CO2: s(800), Temperature: s(23), Humidity: s(50), Light: s(320), PIR: s(3), BuildingID: 413},
		{Timestamp: at(8, 9), CO2: s(1200), Temperature: s(26), Humidity: s(65), Light: s(310), PIR: s(2), BuildingID: 413},
	})
}

func client() *building.Client {
	c := building.NewClient(fixture(), nil, nil)
	c.Now = func() time.Time { return generatedAt }
	return c
}

func roundTrip(t *testing.T, res *tools.Result) *tools.Result {
	t.Helper()
	b, err := res.JSON()
	require.NoError(t, err)
	var out tools.Result
	require.NoError(t, json.Unmarshal(b, &out))
	return &out
}

func TestRender_EveryTool(t *testing.T) {
	c := client()
	v := fixture().All()

	tests := []struct {
		name  string
		res   *tools.Result
		title string
		want  []string
	}{
		{"EnergyStats", c.EnergyStats(v), "# Building Energy Statistics", []string{"| Column", "co2", "816.67"}},
		{"Sustainability", c.SustainabilityMetrics(v), "# Sustainability Metrics", []string{"Average CO2", "environmental"}},
		{"Carbon", c.EcoImpact(v, building.CarbonFootprint), "# Carbon Footprint Analysis", []string{"Estimated emissions", "kg"}},
		{"Water", c.EcoImpact(v, building.WaterUsage), "# Water Usage Analysis", []string{"Estimated water use"}},
		{"CO2", c.CO2Analysis(v), "# Air Quality (CO2) Analysis", []string{"## Air Quality Distribution", "very poor", "Ventilation needed"}},
		{"Occupancy", c.OccupancyAnalysis(v), "# Occupancy Patterns", []string{"Peak hour: 09:00", "Monday", "## Hourly Pattern"}},
		{"Comfort", c.ComfortAnalysis(v), "# Environmental Comfort Analysis", []string{"Temperature (°C)", "## Comfort Insights"}},
		{"Report", c.ComprehensiveReport(v, building.ReportComprehensive), "# Sustainability Report", []string{"## Executive Summary", "## Detailed Analysis", "Report type: comprehensive"}},
		{"Summary", c.DataSummary(v), "# Sensor Data Summary", []string{"Building 413", "pir"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tools.StatusOK, tt.res.Status)
			out, err := report.Render(tt.res, report.FormatText, generatedAt)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(out, tt.title+"\n"), out)
			assert.Contains(t, out, "Generated at 2024-11-01T12:00:00Z")
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			if len(tt.res.Recommendations) > 0 {
				assert.Contains(t, out, "## Recommendations")
				assert.Contains(t, out, "1. "+tt.res.Recommendations[0])
			}

			// A result that crossed the wire renders the same way.
			again, err := report.Render(roundTrip(t, tt.res), report.FormatText, generatedAt)
			require.NoError(t, err)
			assert.Equal(t, out, again)
		})
	}
}

func TestRender_ThousandsSeparator(t *testing.T) {
	s := dataset.Some
	data := dataset.New([]dataset.Reading{
		{Timestamp: generatedAt, CO2: s(12345.678), BuildingID: 413},
	})
	res := building.NewClient(data, nil, nil).EnergyStats(data.All())

	out, err := report.Render(res, report.FormatText, generatedAt)
	require.NoError(t, err)
	assert.Contains(t, out, "12,345.68")
}

func TestRenderDocument_TableIsLeftAligned(t *testing.T) {
	doc := &report.Document{
		Title:       "Counts",
		GeneratedAt: "2024-11-01T12:00:00Z",
		Status:      tools.StatusOK,
		Sections: []report.Section{{
			Heading: "Records",
			Table:   &report.Table{Header: []string{"Metric", "Value"}, Rows: [][]string{{"Records", "5"}}},
		}},
	}

	out, err := report.RenderDocument(doc, report.FormatText)
	require.NoError(t, err)
	assert.Contains(t, out, "| Metric  | Value |\n")
	assert.Contains(t, out, "| Records | 5     |\n")
}

func TestRender_NoData(t *testing.T) {
	res := client().CO2Analysis(dataset.Empty().All())
	require.Equal(t, tools.StatusNoData, res.Status)

	out, err := report.Render(res, report.FormatText, generatedAt)
	require.NoError(t, err)
	assert.Contains(t, out, "**"+res.Message+"**")
	assert.NotContains(t, out, "## Statistics")
}

func TestRender_Failed(t *testing.T) {
	res := tools.Failed(building.EnergyStatsTool, errors.New("boom"))

	out, err := report.Render(res, report.FormatHTML, generatedAt)
	require.NoError(t, err)
	assert.Contains(t, out, `<p class="notice">`)
	assert.Contains(t, out, "boom")
}

func TestRender_UnknownTool(t *testing.T) {
	res := tools.OK("resolve_date", map[string]string{"date": "2024-10-07"})

	out, err := report.Render(res, report.FormatText, generatedAt)
	require.NoError(t, err)
	assert.Contains(t, out, "# resolve date")
	assert.Contains(t, out, "```json")
	assert.Contains(t, out, `"date": "2024-10-07"`)
}

func TestRender_HTML(t *testing.T) {
	res := client().ComfortAnalysis(fixture().All())

	out, err := report.Render(res, report.FormatHTML, generatedAt)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<h1>Environmental Comfort Analysis</h1>")
	assert.Contains(t, out, "<th>Measure</th>")
	assert.Contains(t, out, "<li>Maintain temperature between 20-24°C for optimal comfort</li>")
}

func TestRender_HTMLEscapes(t *testing.T) {
	res := tools.Failed(building.EnergyStatsTool, errors.New("<script>alert(1)</script>"))

	out, err := report.Render(res, report.FormatHTML, generatedAt)
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestRender_Errors(t *testing.T) {
	_, err := report.Render(nil, report.FormatText, generatedAt)
	assert.Error(t, err)

	_, err = report.Render(tools.OK(building.EnergyStatsTool, nil), "pdf", generatedAt)
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]report.Format{
		"":         report.FormatText,
		"text":     report.FormatText,
		"Markdown": report.FormatText,
		" html ":   report.FormatHTML,
	} {
		got, err := report.ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := report.ParseFormat("pdf")
	assert.Error(t, err)
}
