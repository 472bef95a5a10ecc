package export

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"ricemill/internal/core/types"
	"ricemill/internal/domain/reports"
)

var printTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 20px; color: #263238; }
h1 { margin-bottom: 4px; }
.export-info { background-color: #f9f9f9; padding: 15px; border-radius: 5px; margin-bottom: 20px; }
table { width: 100%; border-collapse: collapse; }
th { background-color: #f5f5f5; padding: 10px; border: 1px solid #ddd; text-align: left; }
td { padding: 8px; border: 1px solid #ddd; }
.summary td { font-weight: bold; }
@media print { .no-print { display: none; } }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="export-info">
<p>Period: {{.From}} to {{.To}}</p>
<p>Generated: {{.Generated}}</p>
<p>Total records: {{.Count}}</p>
</div>
<button class="no-print" onclick="window.print()">Print</button>
<table>
<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{else}}<tr><td colspan="{{len .Headers}}">No records for this period</td></tr>
{{end}}</tbody>
</table>
<table class="summary">
<tr><td>Total quantity</td><td>{{.TotalQuantity}}</td></tr>
{{if .TotalAmount}}<tr><td>Total amount</td><td>{{.TotalAmount}}</td></tr>{{end}}
</table>
</body>
</html>
`))

type printView struct {
	Title         string
	From          string
	To            string
	Generated     string
	Count         int
	Headers       []string
	Rows          [][]string
	TotalQuantity string
	TotalAmount   string
}

// WriteHTML writes a printable document with the report table and totals.
func WriteHTML(w io.Writer, r *reports.Report, generated time.Time) error {
	t := BuildTable(r)
	view := printView{
		Title:         t.Title,
		From:          formatDate(r.FromDate),
		To:            formatDate(r.ToDate),
		Generated:     generated.Format("2006-01-02 15:04"),
		Count:         r.TotalItems,
		Headers:       t.Headers,
		Rows:          t.Rows,
		TotalQuantity: r.TotalQuantity.Display(),
	}
	if r.TotalAmount != nil {
		view.TotalAmount = types.FormatRupees(*r.TotalAmount)
	}

	if err := printTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	return nil
}
