package building

import (
	"time"

	"github.com/va6996/ecochat/dataset"
	"github.com/va6996/ecochat/tools"
)

// HourCount is the motion event total for one hour of day.
type HourCount struct {
	Hour   int `json:"hour"`
	Events int `json:"events"`
}

// DayCount is the motion event total for one weekday.
type DayCount struct {
	Day    string `json:"day"`
	Events int    `json:"events"`
}

// Occupancy is the payload of analyze_occupancy_patterns.
type Occupancy struct {
	Available         bool        `json:"available"`
	TotalMotionEvents int         `json:"total_motion_events"`
	Period            *Period     `json:"monitoring_period"`
	PeakActivityHour  *int        `json:"peak_activity_hour"`
	PeakActivityDay   string      `json:"peak_activity_day"`
	HourlyPattern     []HourCount `json:"hourly_pattern"`
	DailyPattern      []DayCount  `json:"daily_pattern"`
	HighUsageHours    []int       `json:"high_usage_hours"`
	LowUsageHours     []int       `json:"low_usage_hours"`
}

// Monday first; ties on the peak day go to the earliest entry.
var weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

var occupancyRecommendations = []string{
	"Reduce HVAC during low occupancy hours",
	"Optimize lighting schedules based on motion patterns",
	"Consider automated systems for peak usage times",
}

// OccupancyAnalysis groups PIR motion events by hour and weekday. Only
// hours and days that have PIR readings appear in the patterns; the peak
// tie-break is the lowest hour and the earliest weekday from Monday.
func (c *Client) OccupancyAnalysis(v dataset.View) *tools.Result {
	var hourly [24]int
	var hourSeen [24]bool
	daily := make(map[time.Weekday]int, 7)
	daySeen := make(map[time.Weekday]bool, 7)
	var first, last time.Time
	total, readings := 0, 0

	for _, r := range v.Readings() {
		if !r.PIR.Valid {
			continue
		}
		if readings == 0 {
			first = r.Timestamp
		}
		last = r.Timestamp
		readings++

		events := int(r.PIR.V)
		h, d := r.Timestamp.Hour(), r.Timestamp.Weekday()
		hourly[h] += events
		hourSeen[h] = true
		daily[d] += events
		daySeen[d] = true
		total += events
	}

	o := Occupancy{
		Available:         readings > 0,
		TotalMotionEvents: total,
	}
	if readings == 0 {
		return tools.NoData(OccupancyTool, "No motion sensor data available", o)
	}
	o.Period = &Period{Start: first, End: last}

	peakHour := -1
	var counts []float64
	for h := 0; h < 24; h++ {
		if !hourSeen[h] {
			continue
		}
		o.HourlyPattern = append(o.HourlyPattern, HourCount{Hour: h, Events: hourly[h]})
		counts = append(counts, float64(hourly[h]))
		if peakHour < 0 || hourly[h] > hourly[peakHour] {
			peakHour = h
		}
	}
	o.PeakActivityHour = ptr(peakHour)

	peakDay := -1
	for _, d := range weekdays {
		if !daySeen[d] {
			continue
		}
		o.DailyPattern = append(o.DailyPattern, DayCount{Day: d.String(), Events: daily[d]})
		if peakDay < 0 || daily[d] > daily[time.Weekday(peakDay)] {
			peakDay = int(d)
		}
	}
	o.PeakActivityDay = time.Weekday(peakDay).String()

	avg, _ := mean(counts)
	o.HighUsageHours = []int{}
	o.LowUsageHours = []int{}
	for _, hc := range o.HourlyPattern {
		switch {
		case float64(hc.Events) > avg:
			o.HighUsageHours = append(o.HighUsageHours, hc.Hour)
		case float64(hc.Events) < avg*0.5:
			o.LowUsageHours = append(o.LowUsageHours, hc.Hour)
		}
	}

	return tools.OK(OccupancyTool, o, occupancyRecommendations...)
}
