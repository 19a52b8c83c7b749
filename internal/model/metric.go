package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Sign classifies a value for presentation.
type Sign int

const (
	Neutral Sign = iota
	Favorable
	Unfavorable
)

func (s Sign) String() string {
	switch s {
	case Favorable:
		return "favorable"
	case Unfavorable:
		return "unfavorable"
	default:
		return "neutral"
	}
}

func (s Sign) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Sign) UnmarshalText(b []byte) error {
	switch string(b) {
	case "favorable":
		*s = Favorable
	case "unfavorable":
		*s = Unfavorable
	case "neutral":
		*s = Neutral
	default:
		return fmt.Errorf("unknown sign %q", b)
	}
	return nil
}

// Metric is a number that may be absent. Absent values marshal to JSON null
// and are never reported as zero.
type Metric struct {
	Value   float64
	Present bool
}

// Some returns a present Metric. NaN and infinities are treated as absent.
func Some(v float64) Metric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Metric{}
	}
	return Metric{Value: v, Present: true}
}

// None returns an absent Metric.
func None() Metric { return Metric{} }

// SomePtr converts an optional float into a Metric.
func SomePtr(v *float64) Metric {
	if v == nil {
		return Metric{}
	}
	return Some(*v)
}

// Or returns the value, or def when absent.
func (m Metric) Or(def float64) float64 {
	if !m.Present {
		return def
	}
	return m.Value
}

// Sign is favorable above zero, unfavorable below, and neutral at zero or
// when absent.
func (m Metric) Sign() Sign {
	switch {
	case !m.Present || m.Value == 0:
		return Neutral
	case m.Value > 0:
		return Favorable
	default:
		return Unfavorable
	}
}

func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Present {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

func (m *Metric) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = Metric{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Some(v)
	return nil
}
