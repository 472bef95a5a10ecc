package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ricemill/internal/domain/export"
	"ricemill/internal/domain/ledger"
)

func importCmd(opts *globalOptions) *cobra.Command {
	var family string

	cmd := &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Add stock lots from the first sheet of an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fam, err := ledger.ParseFamily(family)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open workbook: %w", err)
			}
			defer f.Close()

			parsed, err := export.ParseStockRows(f, fam)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			_, a, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			result := export.ImportStocks(ctx, a.Stocks, parsed)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "imported %d %s lots, %d failed\n", len(result.Created), fam, len(result.Failed))
			for _, re := range result.Failed {
				fmt.Fprintf(out, "  row %d: %s\n", re.Row, re.Error)
			}
			if len(result.Created) == 0 && len(result.Failed) > 0 {
				return fmt.Errorf("no rows imported")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&family, "family", string(ledger.FamilyRice), "Stock family (rice or paddy)")
	return cmd
}
