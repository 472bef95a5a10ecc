package reports

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"ricemill/internal/core/types"
	"ricemill/internal/domain/ledger"
)

// RecentActivityLimit caps the dashboard activity feed.
const RecentActivityLimit = 10

// AlertFor describes a lot for the low-stock feed.
func AlertFor(st ledger.StockRecord) LowStockAlert {
	return LowStockAlert{
		StockID:   st.ID,
		Family:    st.Family,
		Type:      st.Type,
		Warehouse: st.Warehouse,
		Quantity:  st.Quantity,
		Status:    st.Status,
	}
}

// Dashboard summarizes stock, revenue and recent activity.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	stocks, err := s.repo.AllStocks(ctx)
	if err != nil {
		return nil, err
	}
	sales, err := s.repo.AllSales(ctx)
	if err != nil {
		return nil, err
	}
	threshings, err := s.repo.Threshings(ctx)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		LowStockAlerts:   []LowStockAlert{},
		RecentActivities: []Activity{},
	}
	warehouses := make(map[string]struct{})
	byID := make(map[string]ledger.StockRecord, len(stocks))

	for _, st := range stocks {
		byID[st.ID] = st
		if st.Family == ledger.FamilyPaddy {
			d.TotalPaddyStock += st.Quantity
		} else {
			d.TotalRiceStock += st.Quantity
		}
		if st.Warehouse != "" {
			warehouses[strings.ToLower(st.Warehouse)] = struct{}{}
		}
		if st.Status.NeedsAttention() {
			d.LowStockAlerts = append(d.LowStockAlerts, AlertFor(st))
		}
		d.RecentActivities = append(d.RecentActivities, Activity{
			Kind:        "stock",
			RecordID:    st.ID,
			Description: fmt.Sprintf("Stock updated: %s %s", st.Type, titleFamily(st.Family)),
			At:          st.LastUpdated,
		})
	}
	d.TotalWarehouses = len(warehouses)

	sort.SliceStable(d.LowStockAlerts, func(i, j int) bool {
		return d.LowStockAlerts[i].Quantity < d.LowStockAlerts[j].Quantity
	})

	for _, sale := range sales {
		d.TotalRevenue = d.TotalRevenue.Add(sale.TotalAmount())
		item := byID[sale.StockID].Type
		if item == "" {
			item = titleFamily(sale.Family)
		}
		d.RecentActivities = append(d.RecentActivities, Activity{
			Kind:        "sale",
			RecordID:    sale.ID,
			Description: fmt.Sprintf("Sale: %s %s to %s", sale.Quantity.Display(), item, sale.CustomerName),
			At:          sale.CreatedAt,
		})
	}

	for _, th := range threshings {
		d.BrokenRiceQuantity += th.BrokenRiceQuantity
		d.PolishRiceQuantity += th.PolishRiceQuantity
		d.RecentActivities = append(d.RecentActivities, Activity{
			Kind:        "threshing",
			RecordID:    th.ID,
			Description: fmt.Sprintf("Threshing: %s %s paddy", th.PaddyQuantity.Display(), th.PaddyType),
			At:          th.CreatedAt,
		})
	}

	sort.SliceStable(d.RecentActivities, func(i, j int) bool {
		return d.RecentActivities[i].At.After(d.RecentActivities[j].At)
	})
	if len(d.RecentActivities) > RecentActivityLimit {
		d.RecentActivities = d.RecentActivities[:RecentActivityLimit]
	}
	return d, nil
}

// WarehouseStats totals the stock of each warehouse, ordered by name.
func (s *Service) WarehouseStats(ctx context.Context) ([]WarehouseStat, error) {
	stocks, err := s.repo.AllStocks(ctx)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*WarehouseStat)
	for _, st := range stocks {
		key := strings.ToLower(st.Warehouse)
		ws, ok := byName[key]
		if !ok {
			ws = &WarehouseStat{Name: st.Warehouse}
			byName[key] = ws
		}
		if st.Family == ledger.FamilyPaddy {
			ws.PaddyStock += st.Quantity
		} else {
			ws.RiceStock += st.Quantity
		}
		ws.CurrentStock += st.Quantity
		ws.Lots++
		if st.Status.NeedsAttention() {
			ws.LowStockLots++
		}
		ws.StockValue = ws.StockValue.Add(types.Amount(st.Quantity, st.PricePerKg))
	}

	out := make([]WarehouseStat, 0, len(byName))
	for _, ws := range byName {
		out = append(out, *ws)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Lookups returns the distinct filter values present in the ledger.
func (s *Service) Lookups(ctx context.Context) (*Lookups, error) {
	stocks, err := s.repo.AllStocks(ctx)
	if err != nil {
		return nil, err
	}
	sales, err := s.repo.AllSales(ctx)
	if err != nil {
		return nil, err
	}
	threshings, err := s.repo.Threshings(ctx)
	if err != nil {
		return nil, err
	}

	var warehouses, paddyTypes, riceTypes, customers, suppliers distinct
	for _, st := range stocks {
		warehouses.add(st.Warehouse)
		if st.Family == ledger.FamilyPaddy {
			paddyTypes.add(st.Type)
			suppliers.add(st.Supplier)
		} else {
			riceTypes.add(st.Type)
			customers.add(st.Customer)
		}
	}
	for _, sale := range sales {
		customers.add(sale.CustomerName)
	}
	for _, th := range threshings {
		warehouses.add(th.Warehouse)
		paddyTypes.add(th.PaddyType)
		riceTypes.add(th.RiceType)
	}

	return &Lookups{
		Warehouses: warehouses.sorted(),
		PaddyTypes: paddyTypes.sorted(),
		RiceTypes:  riceTypes.sorted(),
		Customers:  customers.sorted(),
		Suppliers:  suppliers.sorted(),
	}, nil
}

// distinct collects case-insensitively unique, non-empty values and keeps
// the first spelling seen.
type distinct struct {
	seen   map[string]struct{}
	values []string
}

func (d *distinct) add(v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	if d.seen == nil {
		d.seen = make(map[string]struct{})
	}
	key := strings.ToLower(v)
	if _, ok := d.seen[key]; ok {
		return
	}
	d.seen[key] = struct{}{}
	d.values = append(d.values, v)
}

func (d *distinct) sorted() []string {
	out := append([]string{}, d.values...)
	sort.Strings(out)
	return out
}

func titleFamily(f ledger.Family) string {
	if f == ledger.FamilyPaddy {
		return "Paddy"
	}
	return "Rice"
}
