package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"ricemill/internal/domain/reports"
)

// WriteCSV writes a header row followed by one row per entry.
func WriteCSV(w io.Writer, r *reports.Report) error {
	t := BuildTable(r)

	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}
