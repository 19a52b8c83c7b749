// Package recorder keeps a history of portfolio and watchlist snapshots.
package recorder

import (
	"context"
	"time"

	"MarketLedger/internal/model"
)

// Snapshot is everything captured by one scheduled run.
type Snapshot struct {
	RunID     string
	At        time.Time
	Valuation *model.Valuation
	Watchlist []model.WatchlistRow
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordSnapshot(ctx context.Context, snap *Snapshot) error
	// RecentTotals returns up to limit portfolio totals, newest first.
	RecentTotals(ctx context.Context, limit int) ([]model.SnapshotTotal, error)
	Close() error
}
