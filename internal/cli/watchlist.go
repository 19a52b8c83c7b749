package cli

import (
	"github.com/spf13/cobra"
)

func newWatchlistCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watchlist",
		Short: "Manage watched tickers",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add TICKER...",
			Short: "Watch one or more tickers",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := rc.open(cmd)
				if err != nil {
					return err
				}
				added := map[string]bool{}
				for _, raw := range args {
					ok, err := app.Watchlist.Add(raw)
					if err != nil {
						return err
					}
					added[raw] = ok
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{"added": added, "tickers": app.Watchlist.List()})
			},
		},
		&cobra.Command{
			Use:   "remove TICKER",
			Short: "Stop watching a ticker",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := rc.open(cmd)
				if err != nil {
					return err
				}
				if err := app.Watchlist.Remove(args[0]); err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{"tickers": app.Watchlist.List()})
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List watched tickers",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := rc.open(cmd)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{"tickers": app.Watchlist.List()})
			},
		},
		&cobra.Command{
			Use:   "report",
			Short: "Quote every watched ticker",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := rc.open(cmd)
				if err != nil {
					return err
				}
				rows, err := app.Tracker.WatchlistReport(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), rows)
			},
		},
	)
	return cmd
}
