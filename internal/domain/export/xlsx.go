package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"ricemill/internal/domain/reports"
)

const xlsxSheet = "Report"

// WriteXLSX writes the report as a single-sheet workbook with numeric
// quantity and amount cells.
func WriteXLSX(w io.Writer, r *reports.Report) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	cols := Columns(r.ReportType)
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c.Header
	}
	if err := file.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bold, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := file.SetRowStyle(xlsxSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, e := range r.Entries {
		row := make([]any, len(cols))
		for j, c := range cols {
			row[j] = c.Value(e)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := file.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(cols))
	if err != nil {
		return err
	}
	if err := file.SetColWidth(xlsxSheet, "A", lastCol, 18); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
