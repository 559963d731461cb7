package portfolio

import (
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/model"
)

// State is the authoritative in-memory view of current holdings. Every
// downstream stage (risk gate, allocation planner, controller) consults a
// snapshot of it; mutations happen only through ApplyFill on confirmed
// fills.
type State struct {
	mu         sync.RWMutex
	positions  map[string]*model.Position
	lastPrices map[string]float64
	baseEquity float64
}

// NewState creates an empty portfolio with the given starting equity.
func NewState(baseEquity float64) *State {
	return &State{
		positions:  make(map[string]*model.Position),
		lastPrices: make(map[string]float64),
		baseEquity: baseEquity,
	}
}

// Restore seeds the in-memory book from persisted rows at startup.
func (s *State) Restore(positions []model.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range positions {
		p := positions[i]
		s.positions[p.Symbol] = &p
	}

	logger.WithField("positions", len(positions)).Info("portfolio state restored")
}

// ApplyFill mutates the book for a confirmed fill and returns the realized
// P&L of any closed portion. qtyDelta is signed: positive buys, negative
// sells. A position driven through zero flips into the opposite direction
// at the fill price.
func (s *State) ApplyFill(symbol string, qtyDelta int64, price float64, sector string) float64 {
	if qtyDelta == 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.positions[symbol]
	if !ok {
		pos = &model.Position{Symbol: symbol, Sector: sector}
		s.positions[symbol] = pos
	}
	if sector != "" {
		pos.Sector = sector
	}
	s.lastPrices[symbol] = price

	realized := 0.0

	switch {
	case pos.Quantity == 0 || sameSign(pos.Quantity, qtyDelta):
		// opening or adding: re-average the entry price
		oldAbs := abs64(pos.Quantity)
		addAbs := abs64(qtyDelta)
		pos.AvgEntryPrice = (float64(oldAbs)*pos.AvgEntryPrice + float64(addAbs)*price) / float64(oldAbs+addAbs)
		if pos.Quantity == 0 {
			now := time.Now()
			pos.OpenedAt = &now
		}
		pos.Quantity += qtyDelta

	default:
		// reducing, possibly through zero
		closeAbs := min64(abs64(qtyDelta), abs64(pos.Quantity))
		direction := float64(sign64(pos.Quantity))
		realized = float64(closeAbs) * (price - pos.AvgEntryPrice) * direction
		pos.RealizedPnl += realized
		pos.Quantity += qtyDelta

		if pos.Quantity == 0 {
			pos.AvgEntryPrice = 0
			pos.OpenedAt = nil
		} else if !sameSign(pos.Quantity-qtyDelta, pos.Quantity) {
			// flipped through flat: remainder opens at the fill price
			pos.AvgEntryPrice = price
			now := time.Now()
			pos.OpenedAt = &now
		}
	}

	pos.UnrealizedPnl = unrealized(pos, price)

	logger.WithFields(map[string]interface{}{
		"symbol":   symbol,
		"delta":    qtyDelta,
		"price":    price,
		"qty":      pos.Quantity,
		"realized": realized,
	}).Info("fill applied to portfolio")

	return realized
}

// MarkPrice refreshes the last seen price for a symbol and recomputes the
// position's unrealized P&L.
func (s *State) MarkPrice(symbol string, price float64) {
	if price <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastPrices[symbol] = price
	if pos, ok := s.positions[symbol]; ok {
		pos.UnrealizedPnl = unrealized(pos, price)
	}
}

// Snapshot returns a copy of all positions keyed by symbol. Safe for
// concurrent evaluators to read without further locking.
func (s *State) Snapshot() map[string]model.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]model.Position, len(s.positions))
	for symbol, pos := range s.positions {
		out[symbol] = *pos
	}
	return out
}

// LastPrices returns a copy of the latest known price per symbol.
func (s *State) LastPrices() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]float64, len(s.lastPrices))
	for symbol, price := range s.lastPrices {
		out[symbol] = price
	}
	return out
}

// Position returns a copy of one position, or a flat zero value.
func (s *State) Position(symbol string) model.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if pos, ok := s.positions[symbol]; ok {
		return *pos
	}
	return model.Position{Symbol: symbol}
}

// Equity is base equity plus realized and unrealized P&L across the book.
func (s *State) Equity() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := s.baseEquity
	for symbol, pos := range s.positions {
		total += pos.RealizedPnl
		if price, ok := s.lastPrices[symbol]; ok {
			total += unrealized(pos, price)
		}
	}
	return total
}

func unrealized(pos *model.Position, price float64) float64 {
	if pos.Quantity == 0 {
		return 0
	}
	return float64(pos.Quantity) * (price - pos.AvgEntryPrice)
}

func sameSign(a, b int64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func sign64(v int64) int64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
