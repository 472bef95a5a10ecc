package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ricemill/internal/app"
	"ricemill/internal/core/types"
	"ricemill/internal/domain/ledger"
	"ricemill/internal/domain/sales"
	"ricemill/internal/domain/stock"
	"ricemill/internal/domain/threshing"
)

func seedCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo stock, sales and a threshing run",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, a, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			n, err := seedDemo(ctx, a.Services, time.Now().UTC())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d records\n", n)
			return nil
		},
	}
}

func kg(v float64) *types.Quantity {
	q := types.Kg(v)
	return &q
}

// seedDemo writes a small, consistent data set: two paddy lots, two rice
// lots, one sale from each family and one threshing run.
func seedDemo(ctx context.Context, svc *app.Services, now time.Time) (int, error) {
	day := func(ago int) *time.Time {
		t := now.AddDate(0, 0, -ago).Truncate(24 * time.Hour)
		return &t
	}

	lots := []stock.AddInput{
		{Family: ledger.FamilyPaddy, Type: "Samba", Quantity: kg(5000), Warehouse: "North", PricePerKg: types.MustMoney("95"), Supplier: "Perera Farms", Date: day(30)},
		{Family: ledger.FamilyPaddy, Type: "Nadu", Quantity: kg(80), Warehouse: "South", PricePerKg: types.MustMoney("88"), Supplier: "Silva & Sons", Date: day(20)},
		{Family: ledger.FamilyRice, Type: "Keeri Samba", Quantity: kg(1200), Warehouse: "North", PricePerKg: types.MustMoney("260"), Grade: "A", Date: day(15)},
		{Family: ledger.FamilyRice, Type: "Red Rice", Quantity: kg(450), Warehouse: "South", PricePerKg: types.MustMoney("210"), Grade: "B+", Date: day(10)},
	}

	created := make([]ledger.StockRecord, 0, len(lots))
	for _, in := range lots {
		rec, err := svc.Stocks.AddStock(ctx, in)
		if err != nil {
			return 0, fmt.Errorf("seed %s stock %s: %w", in.Family, in.Type, err)
		}
		created = append(created, rec)
	}

	saleInputs := []sales.Input{
		{StockID: created[0].ID, Quantity: types.Kg(500), CustomerName: "Lanka Mills", SaleDate: day(5)},
		{StockID: created[2].ID, Quantity: types.Kg(150), CustomerName: "City Grocers", CustomerPhone: "0771234567", SaleDate: day(3)},
	}
	for _, in := range saleInputs {
		if _, err := svc.Sales.RecordSale(ctx, in); err != nil {
			return 0, fmt.Errorf("seed sale: %w", err)
		}
	}

	if _, err := svc.Threshing.RecordThreshing(ctx, threshing.Input{
		PaddyStockID:       created[0].ID,
		PaddyQuantity:      types.Kg(1000),
		RiceType:           "Samba",
		RiceGrade:          "A",
		RiceQuantity:       types.Kg(650),
		BrokenRiceType:     "Samba",
		BrokenRiceQuantity: types.Kg(80),
		PolishRiceType:     "Samba",
		PolishRiceQuantity: types.Kg(40),
		Date:               day(1),
		Notes:              "demo run",
	}); err != nil {
		return 0, fmt.Errorf("seed threshing: %w", err)
	}

	return len(created) + len(saleInputs) + 1, nil
}
