package building

import (
	"fmt"
	"strings"

	"github.com/va6996/ecochat/dataset"
	"github.com/va6996/ecochat/tools"
)

// Supported eco impact metric types.
const (
	CarbonFootprint = "carbon_footprint"
	WaterUsage      = "water_usage"
)

// Documented approximations, not calibrated physical models.
const (
	kgPerPPMReading   = 0.001
	litersPerMotion   = 10.0
	referenceHumidity = 50.0
	carbonGoodPPM     = 600.0
	carbonModeratePPM = 1000.0
	humidityBandLow   = 40.0
	humidityBandHigh  = 60.0
)

// Carbon ratings.
const (
	RatingGood             = "Good"
	RatingNeedsImprovement = "Needs Improvement"
	RatingPoor             = "Poor"
)

// CarbonFootprintImpact is the carbon_footprint payload of analyze_eco_impact.
type CarbonFootprintImpact struct {
	Available            bool     `json:"available"`
	MetricType           string   `json:"metric_type"`
	TotalRecords         int      `json:"total_records"`
	AverageCO2PPM        *float64 `json:"average_co2_ppm"`
	MaxCO2PPM            *float64 `json:"max_co2_ppm"`
	MinCO2PPM            *float64 `json:"min_co2_ppm"`
	EstimatedEmissionsKg *float64 `json:"estimated_co2_emissions_kg"`
	SustainabilityRating string   `json:"sustainability_rating"`
	Note                 string   `json:"note"`
}

// WaterUsageImpact is the water_usage payload of analyze_eco_impact.
type WaterUsageImpact struct {
	Available          bool     `json:"available"`
	MetricType         string   `json:"metric_type"`
	TotalRecords       int      `json:"total_records"`
	AverageHumidity    *float64 `json:"average_humidity_percent"`
	TotalMotionEvents  int      `json:"total_motion_events"`
	OccupancyFactor    *float64 `json:"occupancy_factor"`
	EstimatedLiters    *float64 `json:"estimated_liters"`
	HumidityEfficiency string   `json:"humidity_efficiency"`
	Note               string   `json:"note"`
}

// GenericImpact answers metric types the tool does not model.
type GenericImpact struct {
	Available      bool     `json:"available"`
	MetricType     string   `json:"metric_type"`
	TotalRecords   int      `json:"total_records"`
	SupportedTypes []string `json:"supported_types"`
}

var carbonRecommendations = map[string][]string{
	RatingGood: {
		"Maintain current ventilation and occupancy practices.",
		"Continue monitoring CO2 to keep emissions low.",
	},
	RatingNeedsImprovement: {
		"Increase fresh-air ventilation during occupied hours.",
		"Schedule HVAC operation around occupancy patterns.",
		"Consider demand-controlled ventilation driven by CO2 sensors.",
	},
	RatingPoor: {
		"Upgrade the ventilation system to reduce CO2 concentration.",
		"Reduce occupancy density in poorly ventilated spaces.",
		"Install CO2-triggered alerts and automated ventilation.",
		"Audit the building envelope and HVAC efficiency.",
	},
}

// EcoImpact estimates carbon or water impact. Unknown metric types yield a
// generic ok result rather than an error.
func (c *Client) EcoImpact(v dataset.View, metricType string) *tools.Result {
	metricType = strings.ToLower(strings.TrimSpace(metricType))
	if metricType == "" {
		metricType = CarbonFootprint
	}

	switch metricType {
	case CarbonFootprint:
		return c.carbonFootprint(v)
	case WaterUsage:
		return c.waterUsage(v)
	}

	impact := GenericImpact{
		Available:      !v.Empty(),
		MetricType:     metricType,
		TotalRecords:   v.Len(),
		SupportedTypes: []string{CarbonFootprint, WaterUsage},
	}
	if v.Empty() {
		return tools.NoData(EcoImpactTool, "No sensor data available for eco impact analysis", impact)
	}
	res := tools.OK(EcoImpactTool, impact,
		fmt.Sprintf("Use metric_type %s or %s for a quantified estimate.", CarbonFootprint, WaterUsage))
	res.Message = fmt.Sprintf("Eco impact analysis for %q completed with available data", metricType)
	return res
}

func (c *Client) carbonFootprint(v dataset.View) *tools.Result {
	co2 := v.Column(dataset.CO2)
	avg, ok := mean(co2)
	lo, hi, _ := minMax(co2)

	impact := CarbonFootprintImpact{
		Available:     ok,
		MetricType:    CarbonFootprint,
		TotalRecords:  v.Len(),
		AverageCO2PPM: roundedPtr(avg, ok),
		MaxCO2PPM:     roundedPtr(hi, ok),
		MinCO2PPM:     roundedPtr(lo, ok),
		Note:          "Estimate = average CO2 ppm x record count x 0.001 kg; an approximation, not a physical measurement.",
	}
	if !ok {
		return tools.NoData(EcoImpactTool, "No CO2 data available for carbon footprint analysis", impact)
	}

	impact.EstimatedEmissionsKg = ptr(round(avg*float64(v.Len())*kgPerPPMReading, 2))
	switch {
	case avg < carbonGoodPPM:
		impact.SustainabilityRating = RatingGood
	case avg < carbonModeratePPM:
		impact.SustainabilityRating = RatingNeedsImprovement
	default:
		impact.SustainabilityRating = RatingPoor
	}
	return tools.OK(EcoImpactTool, impact, carbonRecommendations[impact.SustainabilityRating]...)
}

func (c *Client) waterUsage(v dataset.View) *tools.Result {
	humidity := v.Column(dataset.Humidity)
	pir := v.Column(dataset.PIR)
	avg, ok := mean(humidity)
	events := int(sum(pir))

	impact := WaterUsageImpact{
		Available:         ok && len(pir) > 0,
		MetricType:        WaterUsage,
		TotalRecords:      v.Len(),
		AverageHumidity:   roundedPtr(avg, ok),
		TotalMotionEvents: events,
		Note:              "Estimate = (average humidity / 50) x motion events x 10 liters; an approximation, not a metered value.",
	}
	if !impact.Available {
		return tools.NoData(EcoImpactTool, "No humidity or motion data available for water usage analysis", impact)
	}

	impact.OccupancyFactor = ptr(round(float64(events)/float64(len(pir)), 3))
	impact.EstimatedLiters = ptr(round(WaterEstimate(avg, events), 2))

	recs := []string{"Track water fixtures in high-occupancy hours to confirm the estimate."}
	if avg >= humidityBandLow && avg <= humidityBandHigh {
		impact.HumidityEfficiency = "good"
		recs = append(recs, "Humidity control is efficient. Keep HVAC humidity setpoints unchanged.")
	} else {
		impact.HumidityEfficiency = "needs_improvement"
		recs = append(recs, "Adjust HVAC humidity control toward the 40-60% band to reduce water and energy use.")
	}
	return tools.OK(EcoImpactTool, impact, recs...)
}

// WaterEstimate applies the water usage approximation.
func WaterEstimate(avgHumidity float64, motionEvents int) float64 {
	return (avgHumidity / referenceHumidity) * float64(motionEvents) * litersPerMotion
}
