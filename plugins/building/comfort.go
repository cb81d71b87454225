package building

import (
	"math"

	"github.com/va6996/ecochat/dataset"
	"github.com/va6996/ecochat/tools"
)

// Optimal comfort bands, inclusive.
const (
	tempLow      = 20.0
	tempHigh     = 24.0
	humidityLow  = 40.0
	humidityHigh = 60.0
	comfortBonus = 20.0
)

// BandCount is a count with its share of the relevant readings.
type BandCount struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// TemperatureAnalysis covers temperature readings in °C.
type TemperatureAnalysis struct {
	Readings       int       `json:"readings"`
	AverageCelsius float64   `json:"average_celsius"`
	MinCelsius     float64   `json:"min_celsius"`
	MaxCelsius     float64   `json:"max_celsius"`
	Optimal        BandCount `json:"optimal_range_20_24c"`
	TooCold        int       `json:"too_cold_below_20c"`
	TooWarm        int       `json:"too_warm_above_24c"`
}

// HumidityAnalysis covers relative humidity readings in percent.
type HumidityAnalysis struct {
	Readings       int       `json:"readings"`
	AveragePercent float64   `json:"average_percent"`
	MinPercent     float64   `json:"min_percent"`
	MaxPercent     float64   `json:"max_percent"`
	Optimal        BandCount `json:"optimal_range_40_60"`
	TooDry         int       `json:"too_dry_below_40"`
	TooHumid       int       `json:"too_humid_above_60"`
}

// ComfortInsights is computed over rows where both temperature and
// humidity are present.
type ComfortInsights struct {
	OptimalConditions     BandCount `json:"optimal_comfort_conditions"`
	EnergyEfficiencyScore float64   `json:"energy_efficiency_score"`
}

// Comfort is the payload of get_environmental_comfort_analysis.
type Comfort struct {
	Available   bool                 `json:"available"`
	Temperature *TemperatureAnalysis `json:"temperature_analysis"`
	Humidity    *HumidityAnalysis    `json:"humidity_analysis"`
	Insights    *ComfortInsights     `json:"comfort_insights"`
}

var comfortRecommendations = []string{
	"Maintain temperature between 20-24°C for optimal comfort",
	"Keep humidity between 40-60% to prevent mold and dryness",
	"Use smart thermostats to optimize energy usage",
}

func inBand(lo, hi float64) func(float64) bool {
	return func(x float64) bool { return x >= lo && x <= hi }
}

// ComfortEfficiencyScore adds a fixed bonus to the joint comfort share,
// capped at 100.
func ComfortEfficiencyScore(jointPercentage float64) float64 {
	return math.Min(100, jointPercentage+comfortBonus)
}

// ComfortAnalysis rates temperature and humidity against the optimal bands.
func (c *Client) ComfortAnalysis(v dataset.View) *tools.Result {
	temps := v.Column(dataset.Temperature)
	humid := v.Column(dataset.Humidity)

	out := Comfort{Available: len(temps) > 0 || len(humid) > 0}
	if !out.Available {
		return tools.NoData(ComfortTool, "No temperature or humidity data available", out)
	}

	if len(temps) > 0 {
		avg, _ := mean(temps)
		lo, hi, _ := minMax(temps)
		optimal := countIf(temps, inBand(tempLow, tempHigh))
		out.Temperature = &TemperatureAnalysis{
			Readings:       len(temps),
			AverageCelsius: round(avg, 2),
			MinCelsius:     round(lo, 2),
			MaxCelsius:     round(hi, 2),
			Optimal:        BandCount{Count: optimal, Percentage: percentage(optimal, len(temps))},
			TooCold:        countIf(temps, func(x float64) bool { return x < tempLow }),
			TooWarm:        countIf(temps, func(x float64) bool { return x > tempHigh }),
		}
	}

	if len(humid) > 0 {
		avg, _ := mean(humid)
		lo, hi, _ := minMax(humid)
		optimal := countIf(humid, inBand(humidityLow, humidityHigh))
		out.Humidity = &HumidityAnalysis{
			Readings:       len(humid),
			AveragePercent: round(avg, 2),
			MinPercent:     round(lo, 2),
			MaxPercent:     round(hi, 2),
			Optimal:        BandCount{Count: optimal, Percentage: percentage(optimal, len(humid))},
			TooDry:         countIf(humid, func(x float64) bool { return x < humidityLow }),
			TooHumid:       countIf(humid, func(x float64) bool { return x > humidityHigh }),
		}
	}

	both, joint := 0, 0
	for _, r := range v.Readings() {
		if !r.Temperature.Valid || !r.Humidity.Valid {
			continue
		}
		both++
		if inBand(tempLow, tempHigh)(r.Temperature.V) && inBand(humidityLow, humidityHigh)(r.Humidity.V) {
			joint++
		}
	}
	if both > 0 {
		share := float64(joint) / float64(both) * 100
		out.Insights = &ComfortInsights{
			OptimalConditions:     BandCount{Count: joint, Percentage: round(share, 1)},
			EnergyEfficiencyScore: round(ComfortEfficiencyScore(share), 1),
		}
	}

	return tools.OK(ComfortTool, out, comfortRecommendations...)
}
