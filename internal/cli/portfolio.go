package cli

import (
	"fmt"
	"strconv"

	"MarketLedger/internal/model"

	"github.com/spf13/cobra"
)

func newPortfolioCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Manage owned lots and value the portfolio",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add TICKER QUANTITY UNIT_COST",
			Short: "Record a purchased lot",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				qty, err := parseNumber("quantity", args[1], model.ErrInvalidQuantity)
				if err != nil {
					return err
				}
				cost, err := parseNumber("unit_cost", args[2], model.ErrInvalidPrice)
				if err != nil {
					return err
				}
				app, err := rc.open(cmd)
				if err != nil {
					return err
				}
				if err := app.Ledger.AddLot(args[0], qty, cost); err != nil {
					return err
				}
				cb, err := app.Ledger.CostBasis(args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), cb)
			},
		},
		&cobra.Command{
			Use:   "remove TICKER",
			Short: "Delete every lot of a ticker",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := rc.open(cmd)
				if err != nil {
					return err
				}
				if err := app.Ledger.RemoveTicker(args[0]); err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), app.Ledger.Positions())
			},
		},
		&cobra.Command{
			Use:   "lots TICKER",
			Short: "Show the lots and cost basis of one ticker",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := rc.open(cmd)
				if err != nil {
					return err
				}
				lots, ok := app.Ledger.Lots(args[0])
				if !ok {
					return fmt.Errorf("%w: %s is not in the ledger", model.ErrNotFound, args[0])
				}
				cb, err := app.Ledger.CostBasis(args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{"lots": lots, "cost_basis": cb})
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Value every position at current prices",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := rc.open(cmd)
				if err != nil {
					return err
				}
				v, err := app.Tracker.Portfolio(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), v)
			},
		},
	)
	return cmd
}

func parseNumber(field, raw string, kind error) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &model.ValidationError{Field: field, Value: raw, Reason: "not a number", Err: kind}
	}
	return v, nil
}
