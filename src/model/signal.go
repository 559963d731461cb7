package model

import "time"

// Trade directions a strategy can emit.
const (
	DirectionLong      = "LONG"
	DirectionShort     = "SHORT"
	DirectionExitLong  = "EXIT_LONG"
	DirectionExitShort = "EXIT_SHORT"
	DirectionNeutral   = "NEUTRAL"
)

// Signal is one strategy decision for one symbol at one point in time.
// Confidence lives in [0,1]; entries below a configured floor are ignored
// by the engine.
type Signal struct {
	Strategy   string    `json:"strategy"`
	Symbol     string    `json:"symbol"`
	Direction  string    `json:"direction"`
	Confidence float64   `json:"confidence"`
	Price      float64   `json:"price"`
	Rationale  string    `json:"rationale,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewSignal builds a signal, clamping confidence into [0,1].
func NewSignal(strategy, symbol, direction string, confidence, price float64, at time.Time) Signal {
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}
	return Signal{
		Strategy:   strategy,
		Symbol:     symbol,
		Direction:  direction,
		Confidence: confidence,
		Price:      price,
		Timestamp:  at,
	}
}

// WithRationale attaches a human-readable explanation for logs.
func (s Signal) WithRationale(rationale string) Signal {
	s.Rationale = rationale
	return s
}

// IsEntry reports whether the signal opens or adds to a position.
func (s Signal) IsEntry() bool {
	return s.Direction == DirectionLong || s.Direction == DirectionShort
}

// IsExit reports whether the signal closes an existing position.
func (s Signal) IsExit() bool {
	return s.Direction == DirectionExitLong || s.Direction == DirectionExitShort
}

// MarketData is one tick from the market data feed.
type MarketData struct {
	Symbol    string    `json:"symbol"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
	Timestamp time.Time `json:"timestamp"`
}
