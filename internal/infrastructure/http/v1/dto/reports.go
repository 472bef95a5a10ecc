package dto

import (
	"strings"

	"ricemill/internal/core/apperror"
	"ricemill/internal/domain/reports"
)

// ReportRequest represents report query parameters. Dates are YYYY-MM-DD.
type ReportRequest struct {
	Type      string `form:"type"`
	FromDate  string `form:"fromDate"`
	ToDate    string `form:"toDate"`
	Warehouse string `form:"warehouse"`
	PaddyType string `form:"paddyType"`
	RiceType  string `form:"riceType"`
	Supplier  string `form:"supplier"`
}

// ToQuery converts the request to a report query.
func (r ReportRequest) ToQuery() (reports.Query, error) {
	t, err := reports.ParseReportType(r.Type)
	if err != nil {
		return reports.Query{}, err
	}
	from, err := parseDate("fromDate", r.FromDate)
	if err != nil {
		return reports.Query{}, err
	}
	to, err := parseDate("toDate", r.ToDate)
	if err != nil {
		return reports.Query{}, err
	}
	return reports.Query{
		Type: t,
		From: from,
		To:   to,
		Filters: reports.Filters{
			Warehouse: r.Warehouse,
			PaddyType: r.PaddyType,
			RiceType:  r.RiceType,
			Supplier:  r.Supplier,
		},
	}, nil
}

// Export formats.
const (
	FormatCSV  = "csv"
	FormatHTML = "html"
	FormatXLSX = "xlsx"
)

// ExportRequest is a report query plus an output format.
type ExportRequest struct {
	ReportRequest
	Format string `form:"format"`
}

// NormalizedFormat defaults to CSV and rejects unknown formats.
func (r ExportRequest) NormalizedFormat() (string, error) {
	f := strings.ToLower(strings.TrimSpace(r.Format))
	switch f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatHTML, FormatXLSX:
		return f, nil
	}
	return "", apperror.NewFieldValidation("format", "format must be csv, html or xlsx")
}

// ChartResponse is a chart series keyed by month.
type ChartResponse struct {
	ReportType reports.ReportType   `json:"reportType"`
	Points     []reports.ChartPoint `json:"points"`
}
