package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ricemill/internal/domain/export"
	"ricemill/internal/domain/reports"
	"ricemill/internal/domain/store"
)

type exportOptions struct {
	reportType string
	from       string
	to         string
	filters    reports.Filters
	format     string
	out        string
}

func exportCmd(opts *globalOptions) *cobra.Command {
	eo := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a report as CSV, HTML or XLSX",
		Long: `Generates one of the ledger reports and writes it to --out, or to
stdout when --out is empty. With --out set to a directory the file is named
after the report type and today's date.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := eo.query()
			if err != nil {
				return err
			}
			format := strings.ToLower(eo.format)
			switch format {
			case "csv", "html", "xlsx":
			default:
				return fmt.Errorf("format must be csv, html or xlsx, got %q", eo.format)
			}

			ctx := cmd.Context()
			_, a, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			report, err := a.Reports.Generate(ctx, q)
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			if eo.out == "" {
				return writeReport(cmd.OutOrStdout(), report, format, now)
			}

			path := eo.out
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				path = filepath.Join(path, export.FileName(q.Type, format, now))
			}
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			if err := writeReport(f, report, format, now); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d entries to %s\n", report.TotalItems, path)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&eo.reportType, "type", "t", "", "Report type (RICE_STOCK, PADDY_STOCK, RICE_SALE, PADDY_SALE, PADDY_THRESHING)")
	f.StringVar(&eo.from, "from", "", "First day, YYYY-MM-DD")
	f.StringVar(&eo.to, "to", "", "Last day, YYYY-MM-DD")
	f.StringVar(&eo.filters.Warehouse, "warehouse", "", "Only this warehouse")
	f.StringVar(&eo.filters.PaddyType, "paddy-type", "", "Only this paddy type")
	f.StringVar(&eo.filters.RiceType, "rice-type", "", "Only this rice type")
	f.StringVar(&eo.filters.Supplier, "supplier", "", "Only this supplier or customer")
	f.StringVarP(&eo.format, "format", "f", "csv", "Output format (csv, html, xlsx)")
	f.StringVarP(&eo.out, "out", "o", "", "Output file or directory")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func (eo *exportOptions) query() (reports.Query, error) {
	t, err := reports.ParseReportType(eo.reportType)
	if err != nil {
		return reports.Query{}, err
	}
	q := reports.Query{Type: t, Filters: eo.filters}
	if q.From, err = optionalDate("from", eo.from); err != nil {
		return reports.Query{}, err
	}
	if q.To, err = optionalDate("to", eo.to); err != nil {
		return reports.Query{}, err
	}
	return q, nil
}

func optionalDate(flag, raw string) (*time.Time, error) {
	t, err := store.ParseTime(raw)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", flag, err)
	}
	if t.IsZero() {
		return nil, nil
	}
	return &t, nil
}

func writeReport(w io.Writer, r *reports.Report, format string, now time.Time) error {
	switch format {
	case "html":
		return export.WriteHTML(w, r, now)
	case "xlsx":
		return export.WriteXLSX(w, r)
	default:
		return export.WriteCSV(w, r)
	}
}
