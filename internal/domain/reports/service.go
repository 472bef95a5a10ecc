package reports

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"ricemill/internal/core/apperror"
	"ricemill/internal/core/types"
	"ricemill/internal/domain/ledger"
)

// Service provides report generation operations.
type Service struct {
	repo Repository
}

// NewService creates a new reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// QueryReport returns the rows of one report type dated within the
// inclusive range, newest first.
func (s *Service) QueryReport(ctx context.Context, q Query) ([]Entry, error) {
	from, to, err := normalizeRange(q.From, q.To)
	if err != nil {
		return nil, err
	}
	reportType, err := ParseReportType(string(q.Type))
	if err != nil {
		return nil, err
	}

	entries, err := s.entries(ctx, reportType)
	if err != nil {
		return nil, fmt.Errorf("load %s rows: %w", reportType, err)
	}

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		day := dateOnly(e.Date)
		if day.Before(from) || day.After(to) {
			continue
		}
		if !q.Filters.match(e) {
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool { return dateOnly(out[i].Date).After(dateOnly(out[j].Date)) })
	return out, nil
}

// Generate runs QueryReport and adds summary totals.
func (s *Service) Generate(ctx context.Context, q Query) (*Report, error) {
	entries, err := s.QueryReport(ctx, q)
	if err != nil {
		return nil, err
	}
	from, to, _ := normalizeRange(q.From, q.To)

	report := &Report{
		ReportType: ReportType(strings.ToUpper(string(q.Type))),
		FromDate:   from,
		ToDate:     to,
		Filters:    q.Filters,
		Entries:    entries,
		TotalItems: len(entries),
	}

	var amount types.Money
	for _, e := range entries {
		report.TotalQuantity += e.Quantity
		if e.TotalAmount != nil {
			amount = amount.Add(*e.TotalAmount)
		}
	}
	if report.ReportType.IsSale() {
		report.TotalAmount = &amount
	}
	return report, nil
}

// ChartSeries groups a report by calendar month, oldest month first.
func (s *Service) ChartSeries(ctx context.Context, reportType ReportType, from, to *time.Time) ([]ChartPoint, error) {
	entries, err := s.QueryReport(ctx, Query{Type: reportType, From: from, To: to})
	if err != nil {
		return nil, err
	}
	reportType = ReportType(strings.ToUpper(string(reportType)))

	byMonth := make(map[string]*ChartPoint)
	for _, e := range entries {
		key := e.Date.UTC().Format("2006-01")
		p, ok := byMonth[key]
		if !ok {
			p = &ChartPoint{Key: key, Month: e.Date.UTC().Format("Jan 06")}
			byMonth[key] = p
		}

		switch {
		case reportType.IsThreshing():
			p.Paddy += deref(e.PaddyQuantity)
			p.Rice += deref(e.RiceQuantity)
			p.Quantity += deref(e.PaddyQuantity)
		case reportType.Family() == ledger.FamilyRice:
			p.Rice += e.Quantity
			p.Quantity += e.Quantity
		default:
			p.Paddy += e.Quantity
			p.Quantity += e.Quantity
		}
		if e.TotalAmount != nil {
			p.TotalAmount = p.TotalAmount.Add(*e.TotalAmount)
		}
	}

	points := make([]ChartPoint, 0, len(byMonth))
	for _, p := range byMonth {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Key < points[j].Key })
	return points, nil
}

// SystemData returns every collection.
func (s *Service) SystemData(ctx context.Context) (*SystemData, error) {
	var (
		data SystemData
		err  error
	)
	if data.RiceStocks, err = s.repo.Stocks(ctx, ledger.FamilyRice); err != nil {
		return nil, err
	}
	if data.PaddyStocks, err = s.repo.Stocks(ctx, ledger.FamilyPaddy); err != nil {
		return nil, err
	}
	if data.RiceSales, err = s.repo.Sales(ctx, ledger.FamilyRice); err != nil {
		return nil, err
	}
	if data.PaddySales, err = s.repo.Sales(ctx, ledger.FamilyPaddy); err != nil {
		return nil, err
	}
	if data.Threshings, err = s.repo.Threshings(ctx); err != nil {
		return nil, err
	}
	return &data, nil
}

// entries maps the collection behind a report type to rows.
func (s *Service) entries(ctx context.Context, t ReportType) ([]Entry, error) {
	switch {
	case t.IsStock():
		stocks, err := s.repo.Stocks(ctx, t.Family())
		if err != nil {
			return nil, err
		}
		out := make([]Entry, 0, len(stocks))
		for _, st := range stocks {
			out = append(out, stockEntry(t, st))
		}
		return out, nil

	case t.IsSale():
		sales, err := s.repo.Sales(ctx, t.Family())
		if err != nil {
			return nil, err
		}
		lots, err := s.stockIndex(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]Entry, 0, len(sales))
		for _, sale := range sales {
			out = append(out, saleEntry(t, sale, lots[sale.StockID]))
		}
		return out, nil

	default:
		items, err := s.repo.Threshings(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]Entry, 0, len(items))
		for _, th := range items {
			out = append(out, threshingEntry(th))
		}
		return out, nil
	}
}

func (s *Service) stockIndex(ctx context.Context) (map[string]ledger.StockRecord, error) {
	all, err := s.repo.AllStocks(ctx)
	if err != nil {
		return nil, err
	}
	idx := make(map[string]ledger.StockRecord, len(all))
	for _, st := range all {
		idx[st.ID] = st
	}
	return idx, nil
}

func stockEntry(t ReportType, st ledger.StockRecord) Entry {
	price := st.PricePerKg
	return Entry{
		ID:            st.ID,
		ReportType:    t,
		Date:          st.Date,
		ItemType:      st.Type,
		Quantity:      st.Quantity,
		Unit:          st.Unit,
		Warehouse:     st.Warehouse,
		PricePerKg:    &price,
		Status:        st.Status,
		Grade:         st.Grade,
		MoistureLevel: st.MoistureLevel,
		Supplier:      st.Supplier,
		Customer:      st.Customer,
	}
}

// saleEntry resolves type and warehouse through the sold lot; both stay
// empty when the lot has since been deleted.
func saleEntry(t ReportType, sale ledger.SaleRecord, lot ledger.StockRecord) Entry {
	price := sale.PricePerKg
	total := sale.TotalAmount()
	return Entry{
		ID:            sale.ID,
		ReportType:    t,
		Date:          sale.SaleDate,
		ItemType:      lot.Type,
		Quantity:      sale.Quantity,
		Unit:          ledger.DefaultUnit,
		Warehouse:     lot.Warehouse,
		PricePerKg:    &price,
		StockID:       sale.StockID,
		Customer:      sale.CustomerName,
		CustomerPhone: sale.CustomerPhone,
		TotalAmount:   &total,
	}
}

func threshingEntry(th ledger.ThreshingRecord) Entry {
	paddy, rice := th.PaddyQuantity, th.RiceQuantity
	broken, polish := th.BrokenRiceQuantity, th.PolishRiceQuantity
	return Entry{
		ID:                 th.ID,
		ReportType:         PaddyThreshing,
		Date:               th.Date,
		ItemType:           th.PaddyType,
		Quantity:           th.PaddyQuantity,
		Unit:               ledger.DefaultUnit,
		Warehouse:          th.Warehouse,
		PaddyType:          th.PaddyType,
		PaddyQuantity:      &paddy,
		RiceType:           th.RiceType,
		RiceQuantity:       &rice,
		BrokenRiceType:     th.BrokenRiceType,
		BrokenRiceQuantity: &broken,
		PolishRiceType:     th.PolishRiceType,
		PolishRiceQuantity: &polish,
		Notes:              th.Notes,
	}
}

// match applies each filter to the fields the row's report type carries.
func (f Filters) match(e Entry) bool {
	if f.Warehouse != "" && !equalFold(f.Warehouse, e.Warehouse) {
		return false
	}

	t := e.ReportType
	if f.PaddyType != "" {
		switch {
		case t.IsThreshing():
			if !equalFold(f.PaddyType, e.PaddyType) {
				return false
			}
		case t.Family() == ledger.FamilyPaddy:
			if !equalFold(f.PaddyType, e.ItemType) {
				return false
			}
		}
	}
	if f.RiceType != "" {
		switch {
		case t.IsThreshing():
			if !equalFold(f.RiceType, e.RiceType) {
				return false
			}
		case t.Family() == ledger.FamilyRice:
			if !equalFold(f.RiceType, e.ItemType) {
				return false
			}
		}
	}
	if f.Supplier != "" && !t.IsThreshing() {
		party := e.Customer
		if t == PaddyStock {
			party = e.Supplier
		}
		if !equalFold(f.Supplier, party) {
			return false
		}
	}
	return true
}

func normalizeRange(from, to *time.Time) (time.Time, time.Time, error) {
	start, end := DefaultFrom, DefaultTo
	if from != nil && !from.IsZero() {
		start = dateOnly(*from)
	}
	if to != nil && !to.IsZero() {
		end = dateOnly(*to)
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, apperror.NewFieldValidation("fromDate", "fromDate must not be after toDate").
			WithDetail("fromDate", start.Format(time.DateOnly)).
			WithDetail("toDate", end.Format(time.DateOnly))
	}
	return start, end, nil
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func deref(q *types.Quantity) types.Quantity {
	if q == nil {
		return 0
	}
	return *q
}
