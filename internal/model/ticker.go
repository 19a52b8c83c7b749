package model

import (
	"sort"
	"strings"
)

// Ticker is a normalized, uppercase market symbol. It is the identity key
// shared by the ledger, the watchlist and quote results.
type Ticker string

func (t Ticker) String() string { return string(t) }

// NormalizeTicker trims and uppercases a raw symbol. Empty symbols and symbols
// containing whitespace are rejected.
func NormalizeTicker(raw string) (Ticker, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return "", &ValidationError{Field: "ticker", Value: raw, Reason: "must not be empty", Err: ErrInvalidTicker}
	}
	if strings.ContainsAny(s, " \t\r\n") {
		return "", &ValidationError{Field: "ticker", Value: raw, Reason: "must not contain whitespace", Err: ErrInvalidTicker}
	}
	return Ticker(s), nil
}

// SortTickers sorts tickers in ascending lexicographic order, in place.
func SortTickers(ts []Ticker) {
	sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })
}
