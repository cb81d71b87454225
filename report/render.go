package report

import (
	"bytes"
	_ "embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	"text/template"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/va6996/ecochat/tools"
)

// Format selects the output flavour of Render.
type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
)

// ParseFormat accepts "text", "markdown" and "html". Empty means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "markdown", "md":
		return FormatText, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unsupported report format %q", s)
	}
}

//go:embed templates/report.md.tmpl
var markdownTemplateText string

//go:embed templates/report.html.tmpl
var htmlTemplateText string

var (
	markdownTemplate = template.Must(template.New("report.md").Funcs(template.FuncMap{
		"table": markdownTable,
		"inc":   func(i int) int { return i + 1 },
	}).Parse(markdownTemplateText))

	htmlTemplate = htmltemplate.Must(htmltemplate.New("report.html").Parse(htmlTemplateText))
)

// Render formats a tool result as a human-readable document.
func Render(res *tools.Result, format Format, generatedAt time.Time) (string, error) {
	doc, err := Build(res, generatedAt)
	if err != nil {
		return "", err
	}
	return RenderDocument(doc, format)
}

// RenderDocument formats an already built document.
func RenderDocument(doc *Document, format Format) (string, error) {
	var buf bytes.Buffer
	switch format {
	case FormatText, "":
		if err := markdownTemplate.Execute(&buf, doc); err != nil {
			return "", fmt.Errorf("failed to render markdown report: %w", err)
		}
		return strings.TrimSpace(buf.String()) + "\n", nil
	case FormatHTML:
		if err := htmlTemplate.Execute(&buf, doc); err != nil {
			return "", fmt.Errorf("failed to render html report: %w", err)
		}
		return buf.String(), nil
	default:
		return "", fmt.Errorf("unsupported report format %q", format)
	}
}

func markdownTable(t *Table) string {
	var buf bytes.Buffer
	w := tablewriter.NewWriter(&buf)
	w.SetAutoWrapText(false)
	w.SetAutoFormatHeaders(false)
	w.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	w.SetCenterSeparator("|")
	w.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	w.SetAlignment(tablewriter.ALIGN_LEFT)
	w.SetHeader(t.Header)
	w.AppendBulk(t.Rows)
	w.Render()
	return buf.String()
}
