package allocation

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/model"
)

const (
	weightEpsilon = 1e-9

	// criticalDeweightFactor shrinks the smaller leg of a critically
	// correlated pair before sizing.
	criticalDeweightFactor = 0.90

	// unallocatedWarnFraction is the share of equity left uninvested
	// that triggers a plan warning.
	unallocatedWarnFraction = 0.05
)

// Action is a single rebalance order: the signed share delta that moves a
// symbol from its current quantity to its target quantity.
type Action struct {
	Symbol       string  `json:"symbol"`
	Quantity     int64   `json:"quantity"`
	TargetWeight float64 `json:"target_weight"`
	TargetShares int64   `json:"target_shares"`
	Capped       bool    `json:"capped"`
}

// Plan is the output of one allocation pass. Warnings carry non-fatal
// conditions (dropped weights, missing prices, capped deltas).
type Plan struct {
	Actions         []Action `json:"actions"`
	Warnings        []string `json:"warnings,omitempty"`
	UnallocatedCash float64  `json:"unallocated_cash"`
}

// BuildAllocationPlan converts a strategy's target weight vector into
// concrete share deltas against the current book.
//
// Weights are sanitized first: non-positive entries are dropped, and if the
// remainder sums above 1 every weight is scaled down proportionally. If the
// correlation cache is non-nil, each fresh CRITICAL pair has its
// smaller-weighted leg reduced before sizing; equal weights break the tie
// by reducing the lexically-later symbol.
func BuildAllocationPlan(
	totalEquity float64,
	targetWeights map[string]float64,
	currentPositions map[string]model.Position,
	latestPrices map[string]float64,
	correlations *Cache,
	maxSharesPerTrade int64,
) Plan {
	plan := Plan{}

	if totalEquity <= 0 {
		plan.Warnings = append(plan.Warnings, "total equity is non-positive, no allocation possible")
		return plan
	}

	weights := make(map[string]float64, len(targetWeights))
	for symbol, weight := range targetWeights {
		if weight <= 0 {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("dropped non-positive weight %.4f for %s", weight, symbol))
			continue
		}
		weights[symbol] = weight
	}

	weights = normalize(weights, &plan)
	if len(weights) == 0 {
		plan.Warnings = append(plan.Warnings, "no usable target weights, plan is empty")
		return plan
	}

	if correlations != nil {
		applyCorrelationAdjustment(weights, correlations, &plan)
		weights = normalize(weights, &plan)
	}

	symbols := make([]string, 0, len(weights))
	for symbol := range weights {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	equity := decimal.NewFromFloat(totalEquity)
	invested := decimal.Zero

	for _, symbol := range symbols {
		weight := weights[symbol]

		price, ok := latestPrices[symbol]
		if !ok || price <= 0 {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("no usable price for %s, skipped", symbol))
			continue
		}

		targetValue := equity.Mul(decimal.NewFromFloat(weight))
		targetShares := targetValue.Div(decimal.NewFromFloat(price)).Floor().IntPart()

		var currentShares int64
		if position, held := currentPositions[symbol]; held {
			currentShares = position.Quantity
		}

		delta := targetShares - currentShares
		capped := false
		if maxSharesPerTrade > 0 && absInt64(delta) > maxSharesPerTrade {
			capped = true
			if delta > 0 {
				delta = maxSharesPerTrade
			} else {
				delta = -maxSharesPerTrade
			}
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("delta for %s capped at %d shares per trade", symbol, maxSharesPerTrade))
		}

		invested = invested.Add(decimal.NewFromInt(currentShares + delta).Mul(decimal.NewFromFloat(price)))

		if delta == 0 && !capped {
			continue
		}

		plan.Actions = append(plan.Actions, Action{
			Symbol:       symbol,
			Quantity:     delta,
			TargetWeight: weight,
			TargetShares: targetShares,
			Capped:       capped,
		})
	}

	leftover := equity.Sub(invested)
	plan.UnallocatedCash, _ = leftover.Float64()
	if plan.UnallocatedCash < 0 {
		plan.UnallocatedCash = 0
	} else if leftover.GreaterThan(equity.Mul(decimal.NewFromFloat(unallocatedWarnFraction))) {
		plan.Warnings = append(plan.Warnings, fmt.Sprintf("%.2f of equity left unallocated", plan.UnallocatedCash))
	}

	logger.WithFields(map[string]interface{}{
		"actions":  len(plan.Actions),
		"warnings": len(plan.Warnings),
	}).Debug("allocation plan built")

	return plan
}

// normalize scales weights down proportionally when they sum above 1.
// Returns nil when the sum is effectively zero.
func normalize(weights map[string]float64, plan *Plan) map[string]float64 {
	var sum float64
	for _, weight := range weights {
		sum += weight
	}
	if sum <= weightEpsilon {
		return nil
	}
	if sum > 1.0 {
		plan.Warnings = append(plan.Warnings, fmt.Sprintf("target weights sum to %.4f, scaled down to 1.0", sum))
		for symbol, weight := range weights {
			weights[symbol] = weight / sum
		}
	}
	return weights
}

// applyCorrelationAdjustment de-weights the smaller leg of every fresh
// CRITICAL pair present in the weight set.
func applyCorrelationAdjustment(weights map[string]float64, correlations *Cache, plan *Plan) {
	for _, pair := range correlations.CriticalPairs() {
		weightA, okA := weights[pair.SymbolA]
		weightB, okB := weights[pair.SymbolB]
		if !okA || !okB {
			continue
		}

		// Reduce the smaller leg; on a tie the lexically-later
		// symbol (SymbolB) gives way.
		reduced := pair.SymbolB
		if weightA < weightB {
			reduced = pair.SymbolA
		}
		weights[reduced] *= criticalDeweightFactor

		plan.Warnings = append(plan.Warnings, fmt.Sprintf(
			"critical correlation %.2f between %s and %s, reduced %s weight to %.4f",
			pair.Correlation, pair.SymbolA, pair.SymbolB, reduced, weights[reduced]))
	}
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
