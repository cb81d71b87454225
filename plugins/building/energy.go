package building

import (
	"github.com/va6996/ecochat/dataset"
	"github.com/va6996/ecochat/tools"
)

// ColumnStats aggregates one numeric column over present values only.
type ColumnStats struct {
	Column string   `json:"column"`
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean"`
	Max    *float64 `json:"max"`
	Min    *float64 `json:"min"`
}

// EnergyStats is the payload of get_building_energy_stats.
type EnergyStats struct {
	Available    bool          `json:"available"`
	TotalRecords int           `json:"total_records"`
	Period       *Period       `json:"period"`
	Columns      []string      `json:"columns"`
	Statistics   []ColumnStats `json:"statistics"`
}

// Stat returns the statistics of the named column.
func (s EnergyStats) Stat(column string) (ColumnStats, bool) {
	for _, cs := range s.Statistics {
		if cs.Column == column {
			return cs, true
		}
	}
	return ColumnStats{}, false
}

func columnStats(v dataset.View, column string) ColumnStats {
	values := v.Column(column)
	m, ok := mean(values)
	lo, hi, _ := minMax(values)
	return ColumnStats{
		Column: column,
		Count:  len(values),
		Mean:   roundedPtr(m, ok),
		Max:    roundedPtr(hi, ok),
		Min:    roundedPtr(lo, ok),
	}
}

// EnergyStats computes mean, max and min for every numeric column.
func (c *Client) EnergyStats(v dataset.View) *tools.Result {
	columns := v.Columns()
	stats := EnergyStats{
		Available:    !v.Empty(),
		TotalRecords: v.Len(),
		Period:       periodOf(v),
		Columns:      columns,
	}
	for _, col := range columns {
		stats.Statistics = append(stats.Statistics, columnStats(v, col))
	}

	if v.Empty() {
		return tools.NoData(EnergyStatsTool, "No sensor data available for the specified period", stats)
	}
	return tools.OK(EnergyStatsTool, stats,
		"Maintain the current sensor sampling frequency for continuous monitoring.",
		"Review peak usage periods to improve operating efficiency.",
		"Keep all parameters within their accepted operating ranges.",
	)
}

// Consumption thresholds for energy columns.
const (
	highConsumption     = 1000.0
	moderateConsumption = 500.0
)

// Environmental bands used when the dataset has no energy columns.
const (
	co2VentilationPPM   = 1000.0
	coolingCelsius      = 25.0
	dehumidifyPercent   = 60.0
	sustainabilityBasis = "environmental"
)

// SustainabilityMetrics is the payload of get_sustainability_metrics.
type SustainabilityMetrics struct {
	Available     bool     `json:"available"`
	Basis         string   `json:"basis"`
	TotalRecords  int      `json:"total_records"`
	EnergyColumns []string `json:"energy_columns,omitempty"`
	TotalEnergy   *float64 `json:"total_energy_consumption,omitempty"`
	AverageEnergy *float64 `json:"average_energy_consumption,omitempty"`
	AverageCO2    *float64 `json:"average_co2_ppm"`
	AverageTemp   *float64 `json:"average_temperature_celsius"`
	AverageHumid  *float64 `json:"average_humidity_percent"`
}

// SustainabilityMetrics derives recommendations from energy columns when
// present, otherwise from the CO2, temperature and humidity averages.
func (c *Client) SustainabilityMetrics(v dataset.View) *tools.Result {
	co2, okCO2 := mean(v.Column(dataset.CO2))
	temp, okTemp := mean(v.Column(dataset.Temperature))
	humid, okHumid := mean(v.Column(dataset.Humidity))

	m := SustainabilityMetrics{
		Available:    !v.Empty(),
		Basis:        sustainabilityBasis,
		TotalRecords: v.Len(),
		AverageCO2:   roundedPtr(co2, okCO2),
		AverageTemp:  roundedPtr(temp, okTemp),
		AverageHumid: roundedPtr(humid, okHumid),
	}

	if v.Empty() {
		return tools.NoData(SustainabilityTool, "No sensor data available for sustainability metrics", m)
	}

	if energyCols := v.EnergyColumns(); len(energyCols) > 0 {
		var total float64
		var means []float64
		for _, col := range energyCols {
			values := v.Column(col)
			total += sum(values)
			if colMean, ok := mean(values); ok {
				means = append(means, colMean)
			}
		}
		avg, ok := mean(means)
		m.Basis = "energy"
		m.EnergyColumns = energyCols
		m.TotalEnergy = ptr(round(total, 2))
		m.AverageEnergy = roundedPtr(avg, ok)

		switch {
		case avg > highConsumption:
			return tools.OK(SustainabilityTool, m, "High energy consumption detected. Consider implementing energy-saving measures.")
		case avg > moderateConsumption:
			return tools.OK(SustainabilityTool, m, "Moderate energy usage. Look for opportunities to optimize during peak hours.")
		default:
			return tools.OK(SustainabilityTool, m, "Energy consumption is within optimal range.")
		}
	}

	var recs []string
	if okCO2 && co2 > co2VentilationPPM {
		recs = append(recs, "CO2 levels exceed 1000 ppm on average. Increase ventilation to improve air quality.")
	}
	if okTemp && temp > coolingCelsius {
		recs = append(recs, "Average temperature exceeds 25°C. Review cooling system settings and schedules.")
	}
	if okHumid && humid > dehumidifyPercent {
		recs = append(recs, "Humidity exceeds 60% on average. Consider dehumidification to protect comfort and the building fabric.")
	}
	if len(recs) == 0 {
		recs = append(recs, "Environmental conditions are optimal. Maintain current operating settings.")
	}
	return tools.OK(SustainabilityTool, m, recs...)
}
