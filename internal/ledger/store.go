// Package ledger persists owned lots per ticker.
package ledger

import (
	"fmt"
	"sort"
	"sync"

	"MarketLedger/internal/model"

	"github.com/rs/zerolog"
)

// Store owns the lot ledger. Every successful mutation is written through to
// disk before returning.
type Store struct {
	mu       sync.Mutex
	state    *State
	filePath string
	save     func(string, *State) error
	log      zerolog.Logger
}

// Open loads the ledger at filePath, starting empty if it doesn't exist.
func Open(filePath string, log zerolog.Logger) (*Store, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}
	s := &Store{
		state:    state,
		filePath: filePath,
		save:     SaveState,
		log:      log.With().Str("component", "ledger").Logger(),
	}
	s.log.Debug().Str("path", filePath).Int("tickers", len(state.Positions)).Msg("ledger loaded")
	return s, nil
}

// AddLot appends a lot to the ticker, creating the position if needed.
func (s *Store) AddLot(rawTicker string, quantity, unitCost float64) error {
	ticker, err := model.NormalizeTicker(rawTicker)
	if err != nil {
		return err
	}
	if err := validateLot(ticker, quantity, unitCost); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.state.Positions[ticker]
	next := make([]model.Lot, len(prev), len(prev)+1)
	copy(next, prev)
	next = append(next, model.Lot{Quantity: quantity, UnitCost: unitCost})
	s.state.Positions[ticker] = next

	if err := s.persist(); err != nil {
		if existed {
			s.state.Positions[ticker] = prev
		} else {
			delete(s.state.Positions, ticker)
		}
		return err
	}
	s.log.Info().Str("ticker", ticker.String()).Float64("quantity", quantity).Float64("unit_cost", unitCost).Msg("lot added")
	return nil
}

// RemoveTicker deletes every lot of the ticker.
func (s *Store) RemoveTicker(rawTicker string) error {
	ticker, err := model.NormalizeTicker(rawTicker)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.state.Positions[ticker]
	if !ok {
		return fmt.Errorf("%w: %s is not in the ledger", model.ErrNotFound, ticker)
	}
	delete(s.state.Positions, ticker)

	if err := s.persist(); err != nil {
		s.state.Positions[ticker] = prev
		return err
	}
	s.log.Info().Str("ticker", ticker.String()).Int("lots", len(prev)).Msg("position removed")
	return nil
}

// Positions returns a copy of every position, sorted by ticker.
func (s *Store) Positions() []model.Position {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Position, 0, len(s.state.Positions))
	for ticker, lots := range s.state.Positions {
		cp := make([]model.Lot, len(lots))
		copy(cp, lots)
		out = append(out, model.Position{Ticker: ticker, Lots: cp})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

// Lots returns a copy of the ticker's lots.
func (s *Store) Lots(rawTicker string) ([]model.Lot, bool) {
	ticker, err := model.NormalizeTicker(rawTicker)
	if err != nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	lots, ok := s.state.Positions[ticker]
	if !ok {
		return nil, false
	}
	cp := make([]model.Lot, len(lots))
	copy(cp, lots)
	return cp, true
}

// CostBasis aggregates the ticker's lots.
func (s *Store) CostBasis(rawTicker string) (model.CostBasis, error) {
	ticker, err := model.NormalizeTicker(rawTicker)
	if err != nil {
		return model.CostBasis{}, err
	}
	lots, ok := s.Lots(ticker.String())
	if !ok {
		return model.CostBasis{}, fmt.Errorf("%w: %s is not in the ledger", model.ErrNotFound, ticker)
	}
	return ComputeCostBasis(lots), nil
}

func (s *Store) persist() error {
	if err := s.save(s.filePath, s.state); err != nil {
		s.log.Error().Err(err).Str("path", s.filePath).Msg("failed to save ledger")
		return &model.PersistenceError{Path: s.filePath, Op: "save", Err: err}
	}
	return nil
}
