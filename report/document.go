package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/va6996/ecochat/dataset"
	"github.com/va6996/ecochat/plugins/building"
	"github.com/va6996/ecochat/tools"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Table is a header plus string rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// Section is one headed block of a document.
type Section struct {
	Heading    string
	Paragraphs []string
	Items      []string
	Table      *Table
	// Code is shown preformatted.
	Code string
}

// Document is the format-neutral form of a rendered tool result.
type Document struct {
	Title           string
	Subtitle        string
	GeneratedAt     string
	Status          tools.Status
	Message         string
	Sections        []Section
	Recommendations []string
}

var printer = message.NewPrinter(language.English)

func num(v float64) string { return printer.Sprintf("%.2f", v) }

func num1(v float64) string { return printer.Sprintf("%.1f", v) }

func count(n int) string { return printer.Sprintf("%d", n) }

func pct(v float64) string { return printer.Sprintf("%.1f%%", v) }

func opt(v *float64, unit string) string {
	if v == nil {
		return "n/a"
	}
	if unit == "" {
		return num(*v)
	}
	return num(*v) + " " + unit
}

func period(p *building.Period) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%s to %s", p.Start.Format("2006-01-02 15:04"), p.End.Format("2006-01-02 15:04"))
}

var titles = map[string]string{
	building.EnergyStatsTool:         "Building Energy Statistics",
	building.SustainabilityTool:      "Sustainability Metrics",
	building.EcoImpactTool:           "Eco Impact Analysis",
	building.CO2AnalysisTool:         "Air Quality (CO2) Analysis",
	building.OccupancyTool:           "Occupancy Patterns",
	building.ComfortTool:             "Environmental Comfort Analysis",
	building.ComprehensiveReportTool: "Sustainability Report",
	building.DataSummaryTool:         "Sensor Data Summary",
}

// Title returns the display title for a tool.
func Title(tool string) string {
	if t, ok := titles[tool]; ok {
		return t
	}
	return strings.ReplaceAll(tool, "_", " ")
}

// Build converts a tool result into a document. Payloads are decoded into
// the tool's own result struct so both fresh and round-tripped results
// render identically.
func Build(res *tools.Result, generatedAt time.Time) (*Document, error) {
	if res == nil {
		return nil, fmt.Errorf("no result to render")
	}
	doc := &Document{
		Title:           Title(res.Tool),
		Subtitle:        "Building 413 smart environmental monitoring",
		GeneratedAt:     generatedAt.UTC().Format(time.RFC3339),
		Status:          res.Status,
		Message:         res.Message,
		Recommendations: res.Recommendations,
	}
	if res.Status != tools.StatusOK {
		return doc, nil
	}

	var err error
	switch res.Tool {
	case building.EnergyStatsTool:
		err = energySections(doc, res)
	case building.SustainabilityTool:
		err = sustainabilitySections(doc, res)
	case building.EcoImpactTool:
		err = ecoSections(doc, res)
	case building.CO2AnalysisTool:
		err = co2Sections(doc, res)
	case building.OccupancyTool:
		err = occupancySections(doc, res)
	case building.ComfortTool:
		err = comfortSections(doc, res)
	case building.ComprehensiveReportTool:
		err = reportSections(doc, res)
	case building.DataSummaryTool:
		err = summarySections(doc, res)
	default:
		err = rawSection(doc, res)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build %s document: %w", res.Tool, err)
	}
	return doc, nil
}

func energySections(doc *Document, res *tools.Result) error {
	var s building.EnergyStats
	if err := res.Decode(&s); err != nil {
		return err
	}
	t := &Table{Header: []string{"Column", "Readings", "Mean", "Min", "Max"}}
	for _, cs := range s.Statistics {
		t.Rows = append(t.Rows, []string{cs.Column, count(cs.Count), opt(cs.Mean, ""), opt(cs.Min, ""), opt(cs.Max, "")})
	}
	doc.Sections = append(doc.Sections, Section{
		Heading:    "Overview",
		Paragraphs: []string{fmt.Sprintf("%s records covering %s.", count(s.TotalRecords), period(s.Period))},
		Table:      t,
	})
	return nil
}

func sustainabilitySections(doc *Document, res *tools.Result) error {
	var m building.SustainabilityMetrics
	if err := res.Decode(&m); err != nil {
		return err
	}
	t := &Table{Header: []string{"Metric", "Value"}, Rows: [][]string{
		{"Basis", m.Basis},
		{"Records", count(m.TotalRecords)},
		{"Average CO2", opt(m.AverageCO2, "ppm")},
		{"Average temperature", opt(m.AverageTemp, "°C")},
		{"Average humidity", opt(m.AverageHumid, "%")},
	}}
	if m.TotalEnergy != nil {
		t.Rows = append(t.Rows,
			[]string{"Energy columns", strings.Join(m.EnergyColumns, ", ")},
			[]string{"Total energy", opt(m.TotalEnergy, "")},
			[]string{"Average energy", opt(m.AverageEnergy, "")},
		)
	}
	doc.Sections = append(doc.Sections, Section{Heading: "Key Metrics", Table: t})
	return nil
}

func ecoSections(doc *Document, res *tools.Result) error {
	var kind struct {
		MetricType string `json:"metric_type"`
	}
	if err := res.Decode(&kind); err != nil {
		return err
	}
	switch kind.MetricType {
	case building.CarbonFootprint:
		var c building.CarbonFootprintImpact
		if err := res.Decode(&c); err != nil {
			return err
		}
		doc.Title = "Carbon Footprint Analysis"
		doc.Sections = append(doc.Sections, Section{
			Heading: "Emissions Estimate",
			Table: &Table{Header: []string{"Metric", "Value"}, Rows: [][]string{
				{"Records", count(c.TotalRecords)},
				{"Average CO2", opt(c.AverageCO2PPM, "ppm")},
				{"Min CO2", opt(c.MinCO2PPM, "ppm")},
				{"Max CO2", opt(c.MaxCO2PPM, "ppm")},
				{"Estimated emissions", opt(c.EstimatedEmissionsKg, "kg")},
				{"Sustainability rating", c.SustainabilityRating},
			}},
			Paragraphs: []string{c.Note},
		})
	case building.WaterUsage:
		var w building.WaterUsageImpact
		if err := res.Decode(&w); err != nil {
			return err
		}
		doc.Title = "Water Usage Analysis"
		doc.Sections = append(doc.Sections, Section{
			Heading: "Water Estimate",
			Table: &Table{Header: []string{"Metric", "Value"}, Rows: [][]string{
				{"Records", count(w.TotalRecords)},
				{"Average humidity", opt(w.AverageHumidity, "%")},
				{"Motion events", count(w.TotalMotionEvents)},
				{"Occupancy factor", opt(w.OccupancyFactor, "")},
				{"Estimated water use", opt(w.EstimatedLiters, "L")},
				{"Humidity efficiency", w.HumidityEfficiency},
			}},
			Paragraphs: []string{w.Note},
		})
	default:
		if res.Message != "" {
			doc.Sections = append(doc.Sections, Section{Heading: "Summary", Paragraphs: []string{res.Message}})
		}
	}
	return nil
}

func co2Sections(doc *Document, res *tools.Result) error {
	var a building.CO2Analysis
	if err := res.Decode(&a); err != nil {
		return err
	}
	overview := []string{
		fmt.Sprintf("%s CO2 readings covering %s.", count(a.TotalReadings), period(a.Period)),
		fmt.Sprintf("Overall air quality: %s. Ventilation needed: %s.", strings.ReplaceAll(a.OverallRating, "_", " "), yesNo(a.VentilationNeeded)),
	}
	if a.EnergyEfficiencyScore != nil {
		overview = append(overview, fmt.Sprintf("Energy efficiency score: %s / 100.", num1(*a.EnergyEfficiencyScore)))
	}
	doc.Sections = append(doc.Sections, Section{Heading: "Overview", Paragraphs: overview})

	if s := a.Statistics; s != nil {
		doc.Sections = append(doc.Sections, Section{
			Heading: "Statistics",
			Table: &Table{Header: []string{"Average", "Median", "Min", "Max", "Std dev"}, Rows: [][]string{
				{num(s.AveragePPM), num(s.MedianPPM), num(s.MinPPM), num(s.MaxPPM), num(s.StdPPM)},
			}},
		})
	}
	t := &Table{Header: []string{"Rating", "Range", "Readings", "Share"}}
	for _, b := range a.Distribution {
		t.Rows = append(t.Rows, []string{strings.ReplaceAll(b.Rating, "_", " "), b.Range, count(b.Count), pct(b.Percentage)})
	}
	doc.Sections = append(doc.Sections, Section{Heading: "Air Quality Distribution", Table: t})
	return nil
}

func occupancySections(doc *Document, res *tools.Result) error {
	var o building.Occupancy
	if err := res.Decode(&o); err != nil {
		return err
	}
	peak := "n/a"
	if o.PeakActivityHour != nil {
		peak = fmt.Sprintf("%02d:00", *o.PeakActivityHour)
	}
	doc.Sections = append(doc.Sections, Section{
		Heading: "Overview",
		Paragraphs: []string{
			fmt.Sprintf("%s motion events covering %s.", count(o.TotalMotionEvents), period(o.Period)),
			fmt.Sprintf("Peak hour: %s. Peak day: %s.", peak, o.PeakActivityDay),
			fmt.Sprintf("High usage hours: %s. Low usage hours: %s.", hours(o.HighUsageHours), hours(o.LowUsageHours)),
		},
	})

	hourly := &Table{Header: []string{"Hour", "Events"}}
	for _, h := range o.HourlyPattern {
		hourly.Rows = append(hourly.Rows, []string{fmt.Sprintf("%02d:00", h.Hour), count(h.Events)})
	}
	daily := &Table{Header: []string{"Day", "Events"}}
	for _, d := range o.DailyPattern {
		daily.Rows = append(daily.Rows, []string{d.Day, count(d.Events)})
	}
	doc.Sections = append(doc.Sections,
		Section{Heading: "Hourly Pattern", Table: hourly},
		Section{Heading: "Daily Pattern", Table: daily},
	)
	return nil
}

func comfortSections(doc *Document, res *tools.Result) error {
	var c building.Comfort
	if err := res.Decode(&c); err != nil {
		return err
	}
	t := &Table{Header: []string{"Measure", "Readings", "Average", "Min", "Max", "In optimal band", "Below", "Above"}}
	if tp := c.Temperature; tp != nil {
		t.Rows = append(t.Rows, []string{"Temperature (°C)", count(tp.Readings), num(tp.AverageCelsius), num(tp.MinCelsius),
			num(tp.MaxCelsius), pct(tp.Optimal.Percentage), count(tp.TooCold), count(tp.TooWarm)})
	}
	if h := c.Humidity; h != nil {
		t.Rows = append(t.Rows, []string{"Humidity (%)", count(h.Readings), num(h.AveragePercent), num(h.MinPercent),
			num(h.MaxPercent), pct(h.Optimal.Percentage), count(h.TooDry), count(h.TooHumid)})
	}
	doc.Sections = append(doc.Sections, Section{Heading: "Comfort Bands", Table: t})
	if in := c.Insights; in != nil {
		doc.Sections = append(doc.Sections, Section{
			Heading: "Comfort Insights",
			Paragraphs: []string{
				fmt.Sprintf("Both temperature and humidity optimal in %s of readings.", pct(in.OptimalConditions.Percentage)),
				fmt.Sprintf("Energy efficiency score: %s / 100.", num1(in.EnergyEfficiencyScore)),
			},
		})
	}
	return nil
}

func reportSections(doc *Document, res *tools.Result) error {
	var r building.Report
	if err := res.Decode(&r); err != nil {
		return err
	}
	doc.Subtitle = fmt.Sprintf("Report type: %s", strings.ReplaceAll(r.Metadata.ReportType, "_", " "))
	doc.Sections = append(doc.Sections, Section{
		Heading: "Executive Summary",
		Paragraphs: []string{
			fmt.Sprintf("%s records analyzed covering %s.", count(r.Summary.TotalRecords), period(r.Metadata.AnalysisPeriod)),
			fmt.Sprintf("Overall sustainability score: %s / 100.", num1(r.Summary.OverallScore)),
		},
		Items: r.Summary.KeyFindings,
	})
	if len(r.Summary.PriorityRecommendations) > 0 {
		doc.Sections = append(doc.Sections, Section{Heading: "Priority Recommendations", Items: r.Summary.PriorityRecommendations})
	}

	t := &Table{Header: []string{"Area", "Result"}}
	if a := r.Detailed.AirQuality; a != nil {
		t.Rows = append(t.Rows, []string{"Air quality", fmt.Sprintf("%s, efficiency %s", strings.ReplaceAll(a.OverallRating, "_", " "), opt(a.EnergyEfficiencyScore, ""))})
	}
	if o := r.Detailed.Occupancy; o != nil {
		t.Rows = append(t.Rows, []string{"Occupancy", fmt.Sprintf("%s motion events, peak on %s", count(o.TotalMotionEvents), o.PeakActivityDay)})
	}
	if c := r.Detailed.Comfort; c != nil && c.Insights != nil {
		t.Rows = append(t.Rows, []string{"Comfort", fmt.Sprintf("%s optimal, efficiency %s", pct(c.Insights.OptimalConditions.Percentage), num1(c.Insights.EnergyEfficiencyScore))})
	}
	if e := r.Detailed.EnergyStats; e != nil {
		t.Rows = append(t.Rows, []string{"Sensor statistics", fmt.Sprintf("%s records", count(e.TotalRecords))})
	}
	if len(t.Rows) > 0 {
		doc.Sections = append(doc.Sections, Section{Heading: "Detailed Analysis", Table: t})
	}
	doc.Recommendations = r.Recommendations
	return nil
}

func summarySections(doc *Document, res *tools.Result) error {
	var s building.DataSummary
	if err := res.Decode(&s); err != nil {
		return err
	}
	id := "n/a"
	if s.BuildingID != nil {
		id = count(*s.BuildingID)
	}
	doc.Sections = append(doc.Sections, Section{
		Heading:    "Dataset",
		Paragraphs: []string{fmt.Sprintf("Building %s: %s records covering %s.", id, count(s.TotalRecords), period(s.DateRange))},
	})
	t := &Table{Header: []string{"Sensor", "Readings", "Average", "Min", "Max"}}
	for _, col := range []string{dataset.CO2, dataset.Temperature, dataset.Humidity, dataset.Light} {
		ss := s.Sensors[col]
		t.Rows = append(t.Rows, []string{col, count(ss.AvailableRecords), opt(ss.Average, ""), opt(ss.Min, ""), opt(ss.Max, "")})
	}
	t.Rows = append(t.Rows, []string{dataset.PIR, count(s.Motion.AvailableRecords), fmt.Sprintf("%s events", count(s.Motion.TotalMotionEvents)), "", ""})
	doc.Sections = append(doc.Sections, Section{Heading: "Sensors", Table: t})
	return nil
}

func rawSection(doc *Document, res *tools.Result) error {
	b, err := json.MarshalIndent(res.Data, "", "  ")
	if err != nil {
		return err
	}
	doc.Sections = append(doc.Sections, Section{Heading: "Result", Code: string(b)})
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func hours(hs []int) string {
	if len(hs) == 0 {
		return "none"
	}
	parts := make([]string, len(hs))
	for i, h := range hs {
		parts[i] = fmt.Sprintf("%02d:00", h)
	}
	return strings.Join(parts, ", ")
}
