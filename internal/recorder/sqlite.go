package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"MarketLedger/internal/model"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

var _ Recorder = (*SQLiteRecorder)(nil)

// SQLiteRecorder persists snapshots to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so the HTTP API can read while the daemon writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS valuation_snapshots (
			run_id         TEXT PRIMARY KEY,
			timestamp      INTEGER NOT NULL,
			positions      INTEGER NOT NULL,
			total_cost     REAL NOT NULL,
			total_value    REAL NOT NULL,
			total_gain     REAL NOT NULL,
			total_gain_pct REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_valuation_ts ON valuation_snapshots(timestamp)`,

		`CREATE TABLE IF NOT EXISTS position_snapshots (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id         TEXT NOT NULL,
			ticker         TEXT NOT NULL,
			quantity       REAL NOT NULL,
			average_cost   REAL NOT NULL,
			total_cost     REAL NOT NULL,
			market_price   REAL,
			market_value   REAL NOT NULL,
			gain           REAL NOT NULL,
			gain_pct       REAL NOT NULL,
			day_change_pct REAL,
			error          TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_position_run ON position_snapshots(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_position_ticker ON position_snapshots(ticker)`,

		`CREATE TABLE IF NOT EXISTS watch_quotes (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id          TEXT NOT NULL,
			timestamp       INTEGER NOT NULL,
			ticker          TEXT NOT NULL,
			price           REAL,
			day_change      REAL,
			day_change_pct  REAL,
			week_change_pct REAL,
			error           TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_watch_ticker_ts ON watch_quotes(ticker, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordSnapshot writes one run in a single transaction.
func (r *SQLiteRecorder) RecordSnapshot(ctx context.Context, snap *Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	ts := snap.At.Unix()
	if v := snap.Valuation; v != nil {
		if _, err := tx.ExecContext(ctx, `INSERT INTO valuation_snapshots
			(run_id, timestamp, positions, total_cost, total_value, total_gain, total_gain_pct)
			VALUES (?,?,?,?,?,?,?)`,
			snap.RunID, ts, len(v.Rows), v.Total.TotalCost, v.Total.TotalValue, v.Total.TotalGain,
			nullable(v.Total.TotalGainPct),
		); err != nil {
			return fmt.Errorf("insert valuation: %w", err)
		}
		for _, row := range v.Rows {
			price := model.None()
			if row.PriceAvailable {
				price = model.Some(row.MarketPrice)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO position_snapshots
				(run_id, ticker, quantity, average_cost, total_cost, market_price, market_value,
				 gain, gain_pct, day_change_pct, error)
				VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
				snap.RunID, string(row.Ticker), row.TotalQuantity, row.AverageCost, row.TotalCost,
				nullable(price), row.MarketValue, row.Gain, row.GainPct,
				nullable(row.DayChangePct), nullString(row.Error),
			); err != nil {
				return fmt.Errorf("insert position %s: %w", row.Ticker, err)
			}
		}
	}

	for _, row := range snap.Watchlist {
		if _, err := tx.ExecContext(ctx, `INSERT INTO watch_quotes
			(run_id, timestamp, ticker, price, day_change, day_change_pct, week_change_pct, error)
			VALUES (?,?,?,?,?,?,?,?)`,
			snap.RunID, ts, string(row.Ticker), nullable(row.Price), nullable(row.DayChange),
			nullable(row.DayChangePct), nullable(row.WeekChangePct), nullString(row.Error),
		); err != nil {
			return fmt.Errorf("insert watch quote %s: %w", row.Ticker, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.log.Debug().Str("run_id", snap.RunID).Int("watch_rows", len(snap.Watchlist)).Msg("snapshot recorded")
	return nil
}

func (r *SQLiteRecorder) RecentTotals(ctx context.Context, limit int) ([]model.SnapshotTotal, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := r.db.QueryContext(ctx, `SELECT run_id, timestamp, total_cost, total_value, total_gain, total_gain_pct
		FROM valuation_snapshots ORDER BY timestamp DESC, run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query totals: %w", err)
	}
	defer rows.Close()

	out := []model.SnapshotTotal{}
	for rows.Next() {
		var (
			st  model.SnapshotTotal
			ts  int64
			pct sql.NullFloat64
		)
		if err := rows.Scan(&st.RunID, &ts, &st.TotalCost, &st.TotalValue, &st.TotalGain, &pct); err != nil {
			return nil, fmt.Errorf("scan totals: %w", err)
		}
		st.RecordedAt = time.Unix(ts, 0).UTC()
		if pct.Valid {
			st.GainPct = model.Some(pct.Float64)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

func nullable(m model.Metric) sql.NullFloat64 {
	return sql.NullFloat64{Float64: m.Value, Valid: m.Present}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
