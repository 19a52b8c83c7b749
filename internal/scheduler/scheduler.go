package scheduler

import (
	"context"
	"fmt"
	"time"

	"MarketLedger/internal/id"
	"MarketLedger/internal/model"
	"MarketLedger/internal/notifier"
	"MarketLedger/internal/recorder"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Reporter produces the reports captured by a snapshot run.
type Reporter interface {
	Portfolio(ctx context.Context) (model.Valuation, error)
	WatchlistReport(ctx context.Context) ([]model.WatchlistRow, error)
}

const (
	defaultSendRetries = 3
	defaultRetryDelay  = 2 * time.Second
)

// Scheduler runs the snapshot job on a cron schedule.
type Scheduler struct {
	Cron     *cron.Cron
	Reporter Reporter
	Notifier notifier.Notifier
	Recorder recorder.Recorder
	Currency string
	Ctx      context.Context

	// SendRetries and RetryDelay control redelivery of a failed notification.
	SendRetries int
	RetryDelay  time.Duration

	now func() time.Time
	log zerolog.Logger
}

// NewScheduler creates a new Scheduler. Cron specs include a seconds field.
func NewScheduler(ctx context.Context, rep Reporter, n notifier.Notifier, rec recorder.Recorder, currency string, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Reporter: rep,
		Notifier: n,
		Recorder: rec,
		Currency: currency,
		Ctx:      ctx,

		SendRetries: defaultSendRetries,
		RetryDelay:  defaultRetryDelay,

		now: time.Now,
		log: log.With().Str("component", "scheduler").Logger(),
	}
}

// Register adds the snapshot job.
func (s *Scheduler) Register(snapshotCron string) error {
	if _, err := s.Cron.AddFunc(snapshotCron, s.snapshotTask); err != nil {
		return fmt.Errorf("register snapshot task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) snapshotTask() {
	if _, err := s.RunNow(); err != nil {
		s.log.Error().Err(err).Msg("snapshot task failed")
	}
}

// RunNow takes a snapshot immediately, records it and sends the digest.
// A failure to record or notify is logged and doesn't fail the run.
func (s *Scheduler) RunNow() (*recorder.Snapshot, error) {
	at := s.now()
	runID := id.NewRunID(at)
	log := s.log.With().Str("run_id", runID).Logger()
	log.Info().Msg("running snapshot task")

	v, err := s.Reporter.Portfolio(s.Ctx)
	if err != nil {
		s.trySend(notifier.FormatFailure(at, err))
		return nil, fmt.Errorf("portfolio: %w", err)
	}
	watch, err := s.Reporter.WatchlistReport(s.Ctx)
	if err != nil {
		s.trySend(notifier.FormatFailure(at, err))
		return nil, fmt.Errorf("watchlist: %w", err)
	}

	snap := &recorder.Snapshot{RunID: runID, At: at, Valuation: &v, Watchlist: watch}
	if err := s.Recorder.RecordSnapshot(s.Ctx, snap); err != nil {
		log.Error().Err(err).Msg("record snapshot")
	}
	s.trySend(notifier.FormatDigest(at, &v, watch, s.Currency))

	log.Info().
		Int("positions", len(v.Rows)).
		Int("watched", len(watch)).
		Float64("total_value", v.Total.TotalValue).
		Msg("snapshot task done")
	return snap, nil
}

func (s *Scheduler) trySend(text string) {
	if err := notifier.SendWithRetry(s.Ctx, s.Notifier, text, s.SendRetries, s.RetryDelay, s.log); err != nil {
		s.log.Error().Err(err).Msg("send notification")
	}
}
