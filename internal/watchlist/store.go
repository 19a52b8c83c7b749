// Package watchlist persists the set of watched tickers and builds the
// watchlist price report.
package watchlist

import (
	"fmt"
	"sync"

	"MarketLedger/internal/model"
	"MarketLedger/internal/statefile"

	"github.com/rs/zerolog"
)

// State is the persisted watchlist, kept sorted on disk.
type State struct {
	Tickers []model.Ticker `json:"tickers"`
}

// Store owns the watchlist set with write-through persistence.
type Store struct {
	mu       sync.Mutex
	set      map[model.Ticker]struct{}
	filePath string
	save     func(string, *State) error
	log      zerolog.Logger
}

// Open loads the watchlist at filePath, starting empty if it doesn't exist.
func Open(filePath string, log zerolog.Logger) (*Store, error) {
	var state State
	if _, err := statefile.Load(filePath, &state); err != nil {
		return nil, &model.PersistenceError{Path: filePath, Op: "load", Err: err}
	}
	set := make(map[model.Ticker]struct{}, len(state.Tickers))
	for _, raw := range state.Tickers {
		t, err := model.NormalizeTicker(string(raw))
		if err != nil {
			return nil, &model.PersistenceError{Path: filePath, Op: "load", Err: err}
		}
		set[t] = struct{}{}
	}
	s := &Store{
		set:      set,
		filePath: filePath,
		save:     func(p string, st *State) error { return statefile.Save(p, st) },
		log:      log.With().Str("component", "watchlist").Logger(),
	}
	s.log.Debug().Str("path", filePath).Int("tickers", len(set)).Msg("watchlist loaded")
	return s, nil
}

// Add inserts the ticker. It reports whether the set changed; an unchanged
// set is not written.
func (s *Store) Add(rawTicker string) (bool, error) {
	ticker, err := model.NormalizeTicker(rawTicker)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.set[ticker]; ok {
		return false, nil
	}
	s.set[ticker] = struct{}{}
	if err := s.persist(); err != nil {
		delete(s.set, ticker)
		return false, err
	}
	s.log.Info().Str("ticker", ticker.String()).Msg("added to watchlist")
	return true, nil
}

// Remove deletes the ticker.
func (s *Store) Remove(rawTicker string) error {
	ticker, err := model.NormalizeTicker(rawTicker)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.set[ticker]; !ok {
		return fmt.Errorf("%w: %s is not on the watchlist", model.ErrNotFound, ticker)
	}
	delete(s.set, ticker)
	if err := s.persist(); err != nil {
		s.set[ticker] = struct{}{}
		return err
	}
	s.log.Info().Str("ticker", ticker.String()).Msg("removed from watchlist")
	return nil
}

// Contains reports membership.
func (s *Store) Contains(rawTicker string) bool {
	ticker, err := model.NormalizeTicker(rawTicker)
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.set[ticker]
	return ok
}

// List returns the tickers in ascending order.
func (s *Store) List() []model.Ticker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked()
}

func (s *Store) sortedLocked() []model.Ticker {
	out := make([]model.Ticker, 0, len(s.set))
	for t := range s.set {
		out = append(out, t)
	}
	model.SortTickers(out)
	return out
}

func (s *Store) persist() error {
	if err := s.save(s.filePath, &State{Tickers: s.sortedLocked()}); err != nil {
		s.log.Error().Err(err).Str("path", s.filePath).Msg("failed to save watchlist")
		return &model.PersistenceError{Path: s.filePath, Op: "save", Err: err}
	}
	return nil
}
