package building

import (
	"math"

	"github.com/va6996/ecochat/dataset"
	"github.com/va6996/ecochat/tools"
)

// Air quality ratings, one per CO2 band.
const (
	AirExcellent  = "excellent"
	AirGood       = "good"
	AirAcceptable = "acceptable"
	AirPoor       = "poor"
	AirVeryPoor   = "very_poor"
)

type co2Band struct {
	rating string
	label  string
	upper  float64 // inclusive
}

var co2Bands = []co2Band{
	{AirExcellent, "0-400 ppm", 400},
	{AirGood, "400-600 ppm", 600},
	{AirAcceptable, "600-1000 ppm", 1000},
	{AirPoor, "1000-1500 ppm", 1500},
	{AirVeryPoor, "1500+ ppm", math.Inf(1)},
}

func co2Rating(ppm float64) string {
	for _, b := range co2Bands {
		if ppm <= b.upper {
			return b.rating
		}
	}
	return AirVeryPoor
}

// CO2Statistics summarises CO2 readings in ppm.
type CO2Statistics struct {
	AveragePPM float64 `json:"average_ppm"`
	MedianPPM  float64 `json:"median_ppm"`
	MinPPM     float64 `json:"min_ppm"`
	MaxPPM     float64 `json:"max_ppm"`
	StdPPM     float64 `json:"std_ppm"`
}

// BandShare is the count and percentage of readings in one band.
type BandShare struct {
	Rating     string  `json:"rating"`
	Range      string  `json:"range"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// CO2Analysis is the payload of analyze_co2_levels.
type CO2Analysis struct {
	Available             bool           `json:"available"`
	Period                *Period        `json:"period"`
	TotalReadings         int            `json:"total_readings"`
	Statistics            *CO2Statistics `json:"co2_statistics"`
	Distribution          []BandShare    `json:"air_quality_distribution"`
	OverallRating         string         `json:"overall_rating"`
	VentilationNeeded     bool           `json:"ventilation_needed"`
	EnergyEfficiencyScore *float64       `json:"energy_efficiency_score"`
}

// CO2EfficiencyScore maps a mean CO2 level onto [0, 100]: 100 at or below
// 400 ppm, minus one point per 10 ppm above that.
func CO2EfficiencyScore(meanPPM float64) float64 {
	return math.Min(100, math.Max(0, 100-(meanPPM-400)/10))
}

// CO2Analysis distributes readings over the air quality bands and rates the
// period by its mean.
func (c *Client) CO2Analysis(v dataset.View) *tools.Result {
	co2 := v.Column(dataset.CO2)
	a := CO2Analysis{
		Available:     len(co2) > 0,
		Period:        periodOf(v),
		TotalReadings: len(co2),
	}
	if len(co2) == 0 {
		return tools.NoData(CO2AnalysisTool, "No CO2 data available for the specified period", a)
	}

	avg, _ := mean(co2)
	lo, hi, _ := minMax(co2)
	a.Statistics = &CO2Statistics{
		AveragePPM: round(avg, 2),
		MedianPPM:  round(median(co2), 2),
		MinPPM:     round(lo, 2),
		MaxPPM:     round(hi, 2),
		StdPPM:     round(stddev(co2), 2),
	}

	counts := make(map[string]int, len(co2Bands))
	for _, ppm := range co2 {
		counts[co2Rating(ppm)]++
	}
	for _, b := range co2Bands {
		a.Distribution = append(a.Distribution, BandShare{
			Rating:     b.rating,
			Range:      b.label,
			Count:      counts[b.rating],
			Percentage: percentage(counts[b.rating], len(co2)),
		})
	}

	a.OverallRating = co2Rating(avg)
	a.VentilationNeeded = avg > co2VentilationPPM
	a.EnergyEfficiencyScore = ptr(round(CO2EfficiencyScore(avg), 1))

	var recs []string
	switch a.OverallRating {
	case AirExcellent, AirGood:
		recs = append(recs, "Air quality is good. Maintain the current ventilation schedule.")
	case AirAcceptable:
		recs = append(recs, "Increase fresh-air intake during occupied hours to keep CO2 below 600 ppm.")
	default:
		recs = append(recs, "Improve ventilation system to reduce CO2 levels")
	}
	if share := percentage(counts[AirPoor]+counts[AirVeryPoor], len(co2)); share > 10 {
		recs = append(recs, "More than 10% of readings exceed 1000 ppm. Add CO2-driven ventilation control for peak periods.")
	}
	return tools.OK(CO2AnalysisTool, a, recs...)
}
