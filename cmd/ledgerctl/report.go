package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"accounting/internal/app"
	"accounting/internal/db"
	"accounting/internal/services"
	"accounting/internal/validator"
)

func newReportCmd(e *env) *cobra.Command {
	var asOf, start, end, accountID string
	cmd := &cobra.Command{
		Use:   "report NAME",
		Short: "Generate a financial report and print it as JSON",
		Long: "Generate one of: balance-sheet, income-statement, cash-flow, ar-aging, " +
			"ap-aging, general-ledger, dashboard.",
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			if _, ok := services.ReportType(args[0]); !ok {
				return fmt.Errorf("unknown report %q", args[0])
			}
			req := services.ReportRequest{Type: args[0], AccountID: accountID}
			var err error
			if req.AsOf, err = parseDateFlag("as-of", asOf); err != nil {
				return err
			}
			if req.Start, err = parseDateFlag("start", start); err != nil {
				return err
			}
			if req.End, err = parseDateFlag("end", end); err != nil {
				return err
			}

			database, err := db.Connect(e.cfg.DatabaseURL, e.cfg.DB)
			if err != nil {
				return err
			}
			defer database.Close()

			report, err := app.New(database, e.log).Reports.Generate(c.Context(), req)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(c.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "as-of date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&start, "start", "", "period start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "period end (YYYY-MM-DD)")
	cmd.Flags().StringVar(&accountID, "account", "", "account id for the general ledger")
	return cmd
}

func parseDateFlag(name, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(validator.DateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("--%s must use YYYY-MM-DD", name)
	}
	return &t, nil
}
