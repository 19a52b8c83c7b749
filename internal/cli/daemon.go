package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"MarketLedger/internal/notifier"
	"MarketLedger/internal/recorder"
	"MarketLedger/internal/scheduler"
	"MarketLedger/internal/server"

	"github.com/spf13/cobra"
)

func (a *App) openRecorder() (recorder.Recorder, error) {
	if a.Cfg.Storage.SQLitePath == "" {
		return recorder.NewNoopRecorder(), nil
	}
	return recorder.NewSQLiteRecorder(a.Cfg.Storage.SQLitePath, a.Log)
}

func (a *App) newNotifier() notifier.Notifier {
	if !a.Cfg.TelegramEnabled() {
		a.Log.Info().Msg("telegram not configured, digests disabled")
		return notifier.NoopNotifier{}
	}
	return notifier.NewTelegramNotifier(a.Cfg.Telegram.BotToken, a.Cfg.Telegram.ChatID, a.Cfg.DataSource.Proxy, a.Log)
}

func newSnapshotsCmd(rc *RootConfig) *cobra.Command {
	var limit int
	var run bool
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List recorded portfolio totals, or take a snapshot with --run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rc.open(cmd)
			if err != nil {
				return err
			}
			rec, err := app.openRecorder()
			if err != nil {
				return err
			}
			defer rec.Close()

			if run {
				s := scheduler.NewScheduler(cmd.Context(), app.Tracker, app.newNotifier(), rec, app.Cfg.Market.Currency, app.Log)
				if _, err := s.RunNow(); err != nil {
					return err
				}
			}
			totals, err := rec.RecentTotals(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), totals)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 30, "number of snapshots to show")
	cmd.Flags().BoolVar(&run, "run", false, "take a snapshot before listing")
	return cmd
}

func newDaemonCmd(rc *RootConfig) *cobra.Command {
	var runNow bool
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Record snapshots on the configured cron schedule and send digests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rc.open(cmd)
			if err != nil {
				return err
			}
			rec, err := app.openRecorder()
			if err != nil {
				return err
			}
			defer rec.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			s := scheduler.NewScheduler(ctx, app.Tracker, app.newNotifier(), rec, app.Cfg.Market.Currency, app.Log)
			if err := s.Register(app.Cfg.Schedule.SnapshotCron); err != nil {
				return err
			}
			s.Start()
			if runNow {
				if _, err := s.RunNow(); err != nil {
					app.Log.Error().Err(err).Msg("initial snapshot failed")
				}
			}

			app.Log.Info().Str("cron", app.Cfg.Schedule.SnapshotCron).Msg("daemon running")
			<-ctx.Done()
			s.Stop()
			return nil
		},
	}
	cmd.Flags().BoolVar(&runNow, "run-now", false, "take a snapshot immediately on start")
	return cmd
}

func newServeCmd(rc *RootConfig) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rc.open(cmd)
			if err != nil {
				return err
			}
			rec, err := app.openRecorder()
			if err != nil {
				return err
			}
			defer rec.Close()

			if addr == "" {
				addr = app.Cfg.Server.Addr
			}
			srv := server.New(server.Config{Addr: addr, Log: app.Log, Tracker: app.Tracker, Recorder: rec})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
