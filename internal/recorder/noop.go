package recorder

import (
	"context"

	"MarketLedger/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSnapshot(context.Context, *Snapshot) error { return nil }
func (n *NoopRecorder) RecentTotals(context.Context, int) ([]model.SnapshotTotal, error) {
	return []model.SnapshotTotal{}, nil
}
func (n *NoopRecorder) Close() error { return nil }
