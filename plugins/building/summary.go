package building

import (
	"github.com/va6996/ecochat/dataset"
	"github.com/va6996/ecochat/tools"
)

// SensorSummary describes one sensor column.
type SensorSummary struct {
	AvailableRecords int      `json:"available_records"`
	Average          *float64 `json:"avg_value"`
	Min              *float64 `json:"min_value"`
	Max              *float64 `json:"max_value"`
}

// MotionSummary describes the PIR column.
type MotionSummary struct {
	AvailableRecords  int `json:"available_records"`
	TotalMotionEvents int `json:"total_motion_events"`
}

// DataSummary is the payload of get_data_summary.
type DataSummary struct {
	Available    bool                     `json:"available"`
	TotalRecords int                      `json:"total_records"`
	DateRange    *Period                  `json:"date_range"`
	BuildingID   *int                     `json:"building_id"`
	Sensors      map[string]SensorSummary `json:"sensors"`
	Motion       MotionSummary            `json:"pir_motion"`
}

// DataSummary reports record counts and per-sensor availability.
func (c *Client) DataSummary(v dataset.View) *tools.Result {
	s := DataSummary{
		Available:    !v.Empty(),
		TotalRecords: v.Len(),
		DateRange:    periodOf(v),
		Sensors:      make(map[string]SensorSummary, 4),
	}
	if id, ok := v.BuildingID(); ok {
		s.BuildingID = ptr(id)
	}
	for _, col := range []string{dataset.CO2, dataset.Temperature, dataset.Humidity, dataset.Light} {
		values := v.Column(col)
		avg, ok := mean(values)
		lo, hi, _ := minMax(values)
		s.Sensors[col] = SensorSummary{
			AvailableRecords: len(values),
			Average:          roundedPtr(avg, ok),
			Min:              roundedPtr(lo, ok),
			Max:              roundedPtr(hi, ok),
		}
	}
	pir := v.Column(dataset.PIR)
	s.Motion = MotionSummary{AvailableRecords: len(pir), TotalMotionEvents: int(sum(pir))}

	if v.Empty() {
		return tools.NoData(DataSummaryTool, "No data available", s)
	}
	return tools.OK(DataSummaryTool, s)
}
