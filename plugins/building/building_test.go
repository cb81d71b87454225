package building_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/va6996/ecochat/dataset"
	"github.com/va6996/ecochat/plugins/building"
	"github.com/va6996/ecochat/tools"
)

var allTools = []string{
	building.EnergyStatsTool,
	building.SustainabilityTool,
	building.EcoImpactTool,
	building.CO2AnalysisTool,
	building.OccupancyTool,
	building.ComfortTool,
	building.ComprehensiveReportTool,
	building.DataSummaryTool,
}

func at(day, hour int) time.Time {
	return time.Date(2024, time.October, day, hour, 0, 0, 0, time.UTC)
}

// 2024-10-07 is a Monday.
func fixture() *dataset.Dataset {
	s := dataset.Some
	return dataset.New([]dataset.Reading{
		{Timestamp: at(8, 9), CO2: s(1200), Temperature: s(26), Humidity: s(65), Light: s(310), PIR: s(2), BuildingID: 413},
		{Timestamp: at(7, 9), CO2: s(450), Temperature: s(22), Humidity: s(45), Light: s(300), PIR: s(1), BuildingID: 413},
		{Timestamp: at(7, 10), CO2: s(800), Temperature: s(23), Humidity: s(50), Light: s(320), PIR: s(3), BuildingID: 413},
		{Timestamp: at(8, 14), CO2: s(380), Temperature: s(19), Humidity: s(35), PIR: s(0), BuildingID: 413},
		{Timestamp: at(9, 10), Temperature: s(21), Humidity: s(55), PIR: s(1), BuildingID: 413},
	})
}

func newClient(t *testing.T, data *dataset.Dataset) (*building.Client, *tools.Registry) {
	t.Helper()
	reg := tools.NewRegistry()
	c := building.NewClient(data, nil, reg)
	c.Now = func() time.Time { return time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC) }
	return c, reg
}

func decode[T any](t *testing.T, res *tools.Result) T {
	t.Helper()
	var out T
	require.NoError(t, res.Decode(&out))
	return out
}

func TestRegisterTools(t *testing.T) {
	_, reg := newClient(t, fixture())
	for _, name := range allTools {
		assert.True(t, reg.Has(name), name)
	}
	for _, m := range reg.Manifests() {
		require.NotNil(t, m.InputSchema, m.Name)
		assert.Equal(t, "object", m.InputSchema.Type, m.Name)
	}
}

func TestEmptyView_EveryToolReportsNoData(t *testing.T) {
	_, reg := newClient(t, dataset.Empty())
	ctx := context.Background()

	for _, name := range allTools {
		t.Run(name, func(t *testing.T) {
			res, err := reg.ExecuteTool(ctx, name, nil)
			require.NoError(t, err)
			require.NotNil(t, res)
			assert.Equal(t, tools.StatusNoData, res.Status)
			assert.NotEmpty(t, res.Message)

			raw := decode[map[string]any](t, res)
			if _, has := raw["available"]; has {
				assert.Equal(t, false, raw["available"])
			}
		})
	}
}

func TestEnergyStats(t *testing.T) {
	c, _ := newClient(t, fixture())
	res := c.EnergyStats(fixture().All())
	require.Equal(t, tools.StatusOK, res.Status)

	stats := decode[building.EnergyStats](t, res)
	assert.Equal(t, 5, stats.TotalRecords)
	require.NotNil(t, stats.Period)
	assert.Equal(t, at(7, 9), stats.Period.Start)
	assert.Equal(t, at(9, 10), stats.Period.End)

	for _, cs := range stats.Statistics {
		if cs.Count == 0 {
			assert.Nil(t, cs.Mean, cs.Column)
			continue
		}
		require.NotNil(t, cs.Mean, cs.Column)
		assert.GreaterOrEqual(t, *cs.Max, *cs.Mean, cs.Column)
		assert.GreaterOrEqual(t, *cs.Mean, *cs.Min, cs.Column)
	}

	co2, ok := stats.Stat(dataset.CO2)
	require.True(t, ok)
	assert.Equal(t, 4, co2.Count)
	assert.InDelta(t, 707.5, *co2.Mean, 0.001)
}

func TestEnergyStats_DateRange(t *testing.T) {
	_, reg := newClient(t, fixture())
	ctx := context.Background()

	res, err := reg.ExecuteTool(ctx, building.EnergyStatsTool, map[string]any{
		"start_date": "2024-10-08",
		"end_date":   "2024-10-08",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, decode[building.EnergyStats](t, res).TotalRecords)

	res, err = reg.ExecuteTool(ctx, building.EnergyStatsTool, map[string]any{"start_date": "October"})
	require.NoError(t, err)
	assert.Equal(t, tools.StatusError, res.Status)
	assert.Contains(t, res.Message, building.EnergyStatsTool)
}

func TestSustainabilityMetrics(t *testing.T) {
	t.Run("Environmental", func(t *testing.T) {
		c, _ := newClient(t, fixture())
		res := c.SustainabilityMetrics(fixture().All())
		require.Equal(t, tools.StatusOK, res.Status)
		m := decode[building.SustainabilityMetrics](t, res)
		assert.Equal(t, "environmental", m.Basis)
		assert.Equal(t, []string{"Environmental conditions are optimal. Maintain current operating settings."}, res.Recommendations)
	})

	t.Run("EnergyColumns", func(t *testing.T) {
		data := dataset.New([]dataset.Reading{
			{Timestamp: at(7, 9), Extra: map[string]dataset.Value{"energy_kwh": dataset.Some(1100)}},
			{Timestamp: at(7, 10), Extra: map[string]dataset.Value{"energy_kwh": dataset.Some(1300)}},
		}, "energy_kwh")
		c, _ := newClient(t, data)
		res := c.SustainabilityMetrics(data.All())
		require.Equal(t, tools.StatusOK, res.Status)

		m := decode[building.SustainabilityMetrics](t, res)
		assert.Equal(t, "energy", m.Basis)
		require.NotNil(t, m.TotalEnergy)
		assert.InDelta(t, 2400, *m.TotalEnergy, 0.001)
		require.Len(t, res.Recommendations, 1)
		assert.Contains(t, res.Recommendations[0], "High energy consumption")
	})
}

func TestEcoImpact(t *testing.T) {
	t.Run("CarbonFootprint", func(t *testing.T) {
		c, _ := newClient(t, fixture())
		res := c.EcoImpact(fixture().All(), "")
		require.Equal(t, tools.StatusOK, res.Status)

		impact := decode[building.CarbonFootprintImpact](t, res)
		assert.Equal(t, building.CarbonFootprint, impact.MetricType)
		require.NotNil(t, impact.EstimatedEmissionsKg)
		assert.InDelta(t, 3.54, *impact.EstimatedEmissionsKg, 0.001)
		assert.Equal(t, building.RatingNeedsImprovement, impact.SustainabilityRating)
	})

	t.Run("WaterUsage", func(t *testing.T) {
		readings := make([]dataset.Reading, 100)
		for i := range readings {
			readings[i] = dataset.Reading{
				Timestamp: at(7, 0).Add(time.Duration(i) * time.Minute),
				Humidity:  dataset.Some(50),
				PIR:       dataset.Some(1),
			}
		}
		data := dataset.New(readings)
		c, _ := newClient(t, data)

		res := c.EcoImpact(data.All(), building.WaterUsage)
		require.Equal(t, tools.StatusOK, res.Status)
		impact := decode[building.WaterUsageImpact](t, res)
		require.NotNil(t, impact.EstimatedLiters)
		assert.InDelta(t, 1000.0, *impact.EstimatedLiters, 0.001)
		assert.Equal(t, "good", impact.HumidityEfficiency)
	})

	t.Run("UnknownType", func(t *testing.T) {
		c, _ := newClient(t, fixture())
		res := c.EcoImpact(fixture().All(), "noise")
		assert.Equal(t, tools.StatusOK, res.Status)
		assert.Contains(t, res.Message, `"noise"`)
	})

	assert.InDelta(t, 1000.0, building.WaterEstimate(50, 100), 1e-9)
}

func TestCO2Analysis(t *testing.T) {
	c, _ := newClient(t, fixture())
	res := c.CO2Analysis(fixture().All())
	require.Equal(t, tools.StatusOK, res.Status)

	a := decode[building.CO2Analysis](t, res)
	assert.Equal(t, 4, a.TotalReadings)
	assert.Equal(t, building.AirAcceptable, a.OverallRating)
	assert.False(t, a.VentilationNeeded)
	require.NotNil(t, a.EnergyEfficiencyScore)
	assert.InDelta(t, 69.3, *a.EnergyEfficiencyScore, 0.051)

	require.Len(t, a.Distribution, 5)
	var total float64
	for _, b := range a.Distribution {
		total += b.Percentage
	}
	assert.InDelta(t, 100.0, total, 0.5)
	assert.Len(t, res.Recommendations, 2)
}

func TestCO2EfficiencyScore(t *testing.T) {
	assert.Equal(t, 100.0, building.CO2EfficiencyScore(300))
	assert.Equal(t, 0.0, building.CO2EfficiencyScore(3000))
	assert.InDelta(t, 50.0, building.CO2EfficiencyScore(900), 1e-9)
}

func TestOccupancyAnalysis(t *testing.T) {
	c, _ := newClient(t, fixture())
	res := c.OccupancyAnalysis(fixture().All())
	require.Equal(t, tools.StatusOK, res.Status)

	o := decode[building.Occupancy](t, res)
	assert.Equal(t, 7, o.TotalMotionEvents)
	require.NotNil(t, o.PeakActivityHour)
	assert.Equal(t, 10, *o.PeakActivityHour)
	assert.Equal(t, "Monday", o.PeakActivityDay)
	assert.Equal(t, []int{9, 10}, o.HighUsageHours)
	assert.Equal(t, []int{14}, o.LowUsageHours)
	assert.Len(t, res.Recommendations, 3)
}

func TestOccupancyAnalysis_TiesPickLowestHour(t *testing.T) {
	data := dataset.New([]dataset.Reading{
		{Timestamp: at(9, 15), PIR: dataset.Some(2)},
		{Timestamp: at(8, 11), PIR: dataset.Some(2)},
	})
	c, _ := newClient(t, data)
	o := decode[building.Occupancy](t, c.OccupancyAnalysis(data.All()))
	require.NotNil(t, o.PeakActivityHour)
	assert.Equal(t, 11, *o.PeakActivityHour)
	assert.Equal(t, "Tuesday", o.PeakActivityDay)
}

func TestComfortAnalysis(t *testing.T) {
	c, _ := newClient(t, fixture())
	res := c.ComfortAnalysis(fixture().All())
	require.Equal(t, tools.StatusOK, res.Status)

	cm := decode[building.Comfort](t, res)
	require.NotNil(t, cm.Temperature)
	assert.Equal(t, 60.0, cm.Temperature.Optimal.Percentage)
	assert.Equal(t, 1, cm.Temperature.TooCold)
	assert.Equal(t, 1, cm.Temperature.TooWarm)
	require.NotNil(t, cm.Humidity)
	assert.Equal(t, 1, cm.Humidity.TooDry)
	assert.Equal(t, 1, cm.Humidity.TooHumid)
	require.NotNil(t, cm.Insights)
	assert.Equal(t, 60.0, cm.Insights.OptimalConditions.Percentage)
	assert.Equal(t, 80.0, cm.Insights.EnergyEfficiencyScore)
}

func TestComfortAnalysis_ScoreIsCapped(t *testing.T) {
	data := dataset.New([]dataset.Reading{
		{Timestamp: at(7, 9), Temperature: dataset.Some(22), Humidity: dataset.Some(50)},
		{Timestamp: at(7, 10), Temperature: dataset.Some(21), Humidity: dataset.Some(45)},
	})
	c, _ := newClient(t, data)
	cm := decode[building.Comfort](t, c.ComfortAnalysis(data.All()))
	require.NotNil(t, cm.Insights)
	assert.Equal(t, 100.0, cm.Insights.OptimalConditions.Percentage)
	assert.Equal(t, 100.0, cm.Insights.EnergyEfficiencyScore)
	assert.Equal(t, 100.0, building.ComfortEfficiencyScore(100))
}

func TestComprehensiveReport(t *testing.T) {
	c, _ := newClient(t, fixture())
	res := c.ComprehensiveReport(fixture().All(), "")
	require.Equal(t, tools.StatusOK, res.Status)

	r := decode[building.Report](t, res)
	assert.Equal(t, building.ReportComprehensive, r.Metadata.ReportType)
	assert.Equal(t, time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC), r.Metadata.GeneratedAt)
	require.NotNil(t, r.Metadata.BuildingID)
	assert.Equal(t, 413, *r.Metadata.BuildingID)
	assert.Equal(t, 5, r.Summary.TotalRecords)
	assert.InDelta(t, 74.65, r.Summary.OverallScore, 0.06)
	assert.Empty(t, r.Summary.KeyFindings)
	assert.Len(t, r.Summary.PriorityRecommendations, 3)
	assert.Equal(t, r.Recommendations[:3], r.Summary.PriorityRecommendations)
	assert.NotNil(t, r.Detailed.AirQuality)
	assert.NotNil(t, r.Detailed.Occupancy)
	assert.NotNil(t, r.Detailed.Comfort)
	assert.NotNil(t, r.Detailed.EnergyStats)
}

func TestComprehensiveReport_RecommendationOrder(t *testing.T) {
	c, _ := newClient(t, fixture())
	v := fixture().All()

	var want []string
	for _, res := range []*tools.Result{c.CO2Analysis(v), c.OccupancyAnalysis(v), c.ComfortAnalysis(v), c.EnergyStats(v)} {
		require.Equal(t, tools.StatusOK, res.Status, res.Tool)
		want = append(want, res.Recommendations...)
	}

	for _, reportType := range []string{building.ReportComprehensive, building.ReportCO2Focused, building.ReportEnergyEfficiency} {
		t.Run(reportType, func(t *testing.T) {
			r := decode[building.Report](t, c.ComprehensiveReport(v, reportType))
			assert.Equal(t, want, r.Recommendations)
			assert.Equal(t, want[:3], r.Summary.PriorityRecommendations)
		})
	}
}

func TestComprehensiveReport_Findings(t *testing.T) {
	data := dataset.New([]dataset.Reading{
		{Timestamp: at(7, 9), CO2: dataset.Some(1400), Temperature: dataset.Some(27), Humidity: dataset.Some(70)},
		{Timestamp: at(7, 10), CO2: dataset.Some(1300), Temperature: dataset.Some(18), Humidity: dataset.Some(30)},
	})
	c, _ := newClient(t, data)
	r := decode[building.Report](t, c.ComprehensiveReport(data.All(), building.ReportCO2Focused))
	assert.Equal(t, []string{building.FindingPoorVentilation, building.FindingPoorComfort}, r.Summary.KeyFindings)
	assert.Contains(t, r.Recommendations, "Improve ventilation system to reduce CO2 levels")
}

func TestDataSummary(t *testing.T) {
	c, _ := newClient(t, fixture())
	res := c.DataSummary(fixture().All())
	require.Equal(t, tools.StatusOK, res.Status)

	s := decode[building.DataSummary](t, res)
	assert.Equal(t, 5, s.TotalRecords)
	require.NotNil(t, s.BuildingID)
	assert.Equal(t, 413, *s.BuildingID)
	assert.Equal(t, 4, s.Sensors[dataset.CO2].AvailableRecords)
	assert.Equal(t, 3, s.Sensors[dataset.Light].AvailableRecords)
	assert.Equal(t, 7, s.Motion.TotalMotionEvents)
}

func TestResultRoundTrip(t *testing.T) {
	c, _ := newClient(t, fixture())
	v := fixture().All()

	original := c.CO2Analysis(v)
	parsed := tools.ParseResult(building.CO2AnalysisTool, original.Text())
	require.Equal(t, tools.StatusOK, parsed.Status)
	assert.Equal(t, original.Recommendations, parsed.Recommendations)

	var got building.CO2Analysis
	require.NoError(t, parsed.Decode(&got))
	assert.Equal(t, original.Data, got)
}
