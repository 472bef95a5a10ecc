package export

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"ricemill/internal/core/types"
	"ricemill/internal/domain/ledger"
	"ricemill/internal/domain/stock"
	"ricemill/internal/domain/store"
)

var headerAliases = map[string]string{
	"type":           "type",
	"rice type":      "type",
	"paddy type":     "type",
	"variety":        "type",
	"quantity":       "quantity",
	"qty":            "quantity",
	"quantity kg":    "quantity",
	"unit":           "unit",
	"warehouse":      "warehouse",
	"store":          "warehouse",
	"price/kg":       "price",
	"price per kg":   "price",
	"price":          "price",
	"rate":           "price",
	"moisture %":     "moisture",
	"moisture":       "moisture",
	"moisture level": "moisture",
	"supplier":       "supplier",
	"customer":       "customer",
	"grade":          "grade",
	"date":           "date",
}

// StockRow is one parsed data row and the sheet row it came from.
type StockRow struct {
	Row   int
	Input stock.AddInput
}

// ParsedStock is a parsed sheet. Rows whose cells could not be read are
// listed in Failed and do not stop the rest.
type ParsedStock struct {
	Rows   []StockRow
	Failed []RowError
}

// ParseStockRows reads the first sheet of a workbook into stock inputs of
// the given family. Blank rows are skipped. Only a missing sheet, header
// or required column fails the whole file.
func ParseStockRows(reader io.Reader, family ledger.Family) (ParsedStock, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return ParsedStock{}, fmt.Errorf("open excel file: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return ParsedStock{}, fmt.Errorf("excel file has no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return ParsedStock{}, fmt.Errorf("read sheet rows: %w", err)
	}
	if len(rows) == 0 {
		return ParsedStock{}, fmt.Errorf("excel file is empty")
	}

	colMap := mapColumns(rows[0])
	for _, required := range []string{"type", "quantity", "warehouse"} {
		if _, ok := colMap[required]; !ok {
			return ParsedStock{}, fmt.Errorf("missing required column: %s", required)
		}
	}

	parsed := ParsedStock{Rows: make([]StockRow, 0, len(rows)-1), Failed: []RowError{}}
	for index := 1; index < len(rows); index++ {
		cells := rows[index]
		if strings.TrimSpace(readCell(cells, colMap["type"])) == "" {
			continue
		}

		sheetRow := index + 1
		in, err := parseStockRow(cells, colMap, family)
		if err != nil {
			parsed.Failed = append(parsed.Failed, RowError{Row: sheetRow, Error: err.Error()})
			continue
		}
		parsed.Rows = append(parsed.Rows, StockRow{Row: sheetRow, Input: in})
	}

	if len(parsed.Rows) == 0 && len(parsed.Failed) == 0 {
		return ParsedStock{}, fmt.Errorf("excel file has no valid data rows")
	}
	return parsed, nil
}

func parseStockRow(cells []string, colMap map[string]int, family ledger.Family) (stock.AddInput, error) {
	qty, err := parseQuantity(readCell(cells, colMap["quantity"]))
	if err != nil {
		return stock.AddInput{}, fmt.Errorf("invalid quantity: %w", err)
	}

	in := stock.AddInput{
		Family:    family,
		Type:      strings.TrimSpace(readCell(cells, colMap["type"])),
		Quantity:  &qty,
		Warehouse: strings.TrimSpace(readCell(cells, colMap["warehouse"])),
		Unit:      optional(cells, colMap, "unit"),
		Supplier:  optional(cells, colMap, "supplier"),
		Customer:  optional(cells, colMap, "customer"),
		Grade:     optional(cells, colMap, "grade"),
	}

	if raw := optional(cells, colMap, "price"); raw != "" {
		price, err := parseMoney(raw)
		if err != nil {
			return stock.AddInput{}, fmt.Errorf("invalid price: %w", err)
		}
		in.PricePerKg = price
	}
	if raw := optional(cells, colMap, "moisture"); raw != "" {
		m, err := strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64)
		if err != nil {
			return stock.AddInput{}, fmt.Errorf("invalid moisture: not a number")
		}
		in.MoistureLevel = &m
	}
	if raw := optional(cells, colMap, "date"); raw != "" {
		d, err := store.ParseTime(raw)
		if err != nil {
			return stock.AddInput{}, fmt.Errorf("invalid date: %w", err)
		}
		in.Date = &d
	}
	return in, nil
}

// StockAdder is the part of the stock ledger an import needs.
type StockAdder interface {
	AddStock(ctx context.Context, in stock.AddInput) (ledger.StockRecord, error)
}

// RowError is an imported row that could not be read or that the ledger
// rejected. Row is the 1-based sheet row.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ImportResult reports what an import created.
type ImportResult struct {
	Created []ledger.StockRecord `json:"created"`
	Failed  []RowError           `json:"failed"`
}

// ImportStocks adds each parsed row. A rejected row does not stop the rest.
// Failures are reported in sheet order, parse failures included.
func ImportStocks(ctx context.Context, adder StockAdder, parsed ParsedStock) ImportResult {
	res := ImportResult{Created: []ledger.StockRecord{}, Failed: append([]RowError{}, parsed.Failed...)}
	for _, row := range parsed.Rows {
		rec, err := adder.AddStock(ctx, row.Input)
		if err != nil {
			res.Failed = append(res.Failed, RowError{Row: row.Row, Error: err.Error()})
			continue
		}
		res.Created = append(res.Created, rec)
	}
	sort.SliceStable(res.Failed, func(i, j int) bool { return res.Failed[i].Row < res.Failed[j].Row })
	return res
}

func mapColumns(header []string) map[string]int {
	mapped := make(map[string]int)
	for idx, col := range header {
		normalized := normalizeHeader(col)
		if normalized == "" {
			continue
		}
		canonical, ok := headerAliases[normalized]
		if !ok {
			continue
		}
		if _, exists := mapped[canonical]; !exists {
			mapped[canonical] = idx
		}
	}
	return mapped
}

func normalizeHeader(raw string) string {
	value := strings.TrimSpace(raw)
	value = strings.TrimPrefix(value, "\uFEFF")
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, "_", " ")
	value = strings.ReplaceAll(value, "(", " ")
	value = strings.ReplaceAll(value, ")", " ")
	value = strings.Join(strings.Fields(value), " ")
	return value
}

func readCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func optional(row []string, colMap map[string]int, key string) string {
	idx, ok := colMap[key]
	if !ok {
		return ""
	}
	value := strings.TrimSpace(readCell(row, idx))
	if value == NotAvailable {
		return ""
	}
	return value
}

func parseQuantity(raw string) (types.Quantity, error) {
	value := strings.TrimSpace(raw)
	value = strings.TrimSuffix(strings.ToLower(value), "kg")
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if value == "" {
		return 0, fmt.Errorf("value is empty")
	}
	return types.ParseQuantity(value)
}

func parseMoney(raw string) (types.Money, error) {
	value := strings.TrimSpace(raw)
	value = strings.TrimPrefix(value, "Rs.")
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	m, err := types.ParseMoney(value)
	if err != nil {
		return types.Zero(), fmt.Errorf("not a number")
	}
	return m, nil
}
