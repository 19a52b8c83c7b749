package ledger

import (
	"fmt"

	"MarketLedger/internal/model"
	"MarketLedger/internal/statefile"
)

// State is the persisted ledger: ticker -> lots in insertion order.
type State struct {
	Positions map[model.Ticker][]model.Lot `json:"positions"`
}

// LoadState reads the ledger file. Returns an empty state if the file doesn't exist.
func LoadState(filePath string) (*State, error) {
	state := &State{}
	if _, err := statefile.Load(filePath, state); err != nil {
		return nil, &model.PersistenceError{Path: filePath, Op: "load", Err: err}
	}
	if state.Positions == nil {
		state.Positions = make(map[model.Ticker][]model.Lot)
	}
	if err := state.validate(); err != nil {
		return nil, &model.PersistenceError{Path: filePath, Op: "load", Err: err}
	}
	return state, nil
}

// SaveState writes the ledger file.
func SaveState(filePath string, state *State) error {
	return statefile.Save(filePath, state)
}

func (s *State) validate() error {
	for ticker, lots := range s.Positions {
		norm, err := model.NormalizeTicker(string(ticker))
		if err != nil {
			return err
		}
		if norm != ticker {
			return fmt.Errorf("ticker %q is not normalized", ticker)
		}
		if len(lots) == 0 {
			return fmt.Errorf("ticker %s has no lots", ticker)
		}
		for _, l := range lots {
			if err := validateLot(ticker, l.Quantity, l.UnitCost); err != nil {
				return err
			}
		}
	}
	return nil
}
