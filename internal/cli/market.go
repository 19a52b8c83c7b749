package cli

import (
	"github.com/spf13/cobra"
)

func newQuoteCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "quote TICKER",
		Short: "Show the current quote with fundamentals and week change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rc.open(cmd)
			if err != nil {
				return err
			}
			snap, err := app.Tracker.Quote(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), snap)
		},
	}
}

func newHistoryCmd(rc *RootConfig) *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "history TICKER",
		Short: "Show the daily close series with a summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rc.open(cmd)
			if err != nil {
				return err
			}
			h, err := app.Tracker.History(cmd.Context(), args[0], period)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), h)
		},
	}
	cmd.Flags().StringVar(&period, "period", "6mo", "range: 5d, 1mo, 3mo, 6mo, 1y, 2y, 5y, ytd, max")
	return cmd
}

func newIndicesCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "indices",
		Short: "Quote the configured market indices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rc.open(cmd)
			if err != nil {
				return err
			}
			quotes, err := app.Tracker.MarketIndices(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), quotes)
		},
	}
}
