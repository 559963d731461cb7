package risk

import (
	"context"
	"math"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/model"
)

// ResultCode classifies the outcome of a pre-trade evaluation.
type ResultCode string

const (
	CodeOK             ResultCode = "OK"
	CodeNoQuantity     ResultCode = "NO_QUANTITY"
	CodeLiquidityLimit ResultCode = "LIQUIDITY_LIMIT"
	CodeSectorLimit    ResultCode = "SECTOR_LIMIT"
)

// Result is the risk gate's answer for one proposed trade. It never mutates
// state; a rejected trade is simply not submitted this cycle.
type Result struct {
	Allowed     bool
	AdjustedQty int64
	Reason      string
	Code        ResultCode
}

// VolumeProvider supplies trailing average daily volume. ok=false means no
// data; the liquidity cap fails open in that case.
type VolumeProvider interface {
	AverageDailyVolume(ctx context.Context, symbol string) (avg float64, ok bool, err error)
}

// SectorProvider classifies symbols into sectors. Unresolvable symbols map
// to "UNKNOWN".
type SectorProvider interface {
	SectorFor(symbol string) string
}

// SectorUnknown is the fail-open sector classification.
const SectorUnknown = "UNKNOWN"

// EvaluatePreTradeRisk runs the pre-trade checks in order; every stage can
// only shrink or reject the requested quantity, never enlarge it. The
// function is pure with respect to its inputs: the same snapshot and limits
// always yield the same result.
func EvaluatePreTradeRisk(
	ctx context.Context,
	symbol string,
	requestedQty int64,
	price float64,
	limits Limits,
	positions map[string]model.Position,
	lastPrices map[string]float64,
	equity float64,
	volumes VolumeProvider,
	sectors SectorProvider,
) Result {

	if requestedQty <= 0 {
		return Result{
			Allowed: false,
			Code:    CodeNoQuantity,
			Reason:  "requested quantity must be positive",
		}
	}

	qty := requestedQty

	// Stage 1: liquidity participation cap.
	if limits.MaxADVParticipationPct > 0 {
		avgVolume, hasData, err := volumes.AverageDailyVolume(ctx, symbol)
		if err != nil || !hasData {
			// fail open: missing liquidity data skips the cap, it never
			// halts trading
			logger.WithFields(map[string]interface{}{
				"symbol": symbol,
			}).WithError(err).Warn("no volume data, skipping liquidity cap")
		} else {
			if avgVolume < limits.MinAverageDailyVolume {
				return Result{
					Allowed: false,
					Code:    CodeLiquidityLimit,
					Reason:  "average daily volume below minimum",
				}
			}

			maxShares := int64(math.Floor(avgVolume * limits.MaxADVParticipationPct))
			if maxShares <= 0 {
				return Result{
					Allowed: false,
					Code:    CodeLiquidityLimit,
					Reason:  "participation cap rounds to zero shares",
				}
			}
			if qty > maxShares {
				logger.WithFields(map[string]interface{}{
					"symbol":    symbol,
					"requested": qty,
					"cap":       maxShares,
				}).Info("quantity shrunk by liquidity cap")
				qty = maxShares
			}
		}
	}

	// Stage 2: sector exposure cap.
	if limits.MaxSectorExposurePct > 0 && equity > 0 {
		sector := sectors.SectorFor(symbol)
		if sector == "" {
			sector = SectorUnknown
		}

		exposure := decimal.Zero
		for posSymbol, pos := range positions {
			if pos.Quantity == 0 {
				continue
			}
			posSector := pos.Sector
			if posSector == "" {
				posSector = sectors.SectorFor(posSymbol)
			}
			if posSector != sector {
				continue
			}
			lastPrice, known := lastPrices[posSymbol]
			if !known || lastPrice <= 0 {
				continue
			}
			notional := decimal.NewFromInt(pos.Quantity).Abs().Mul(decimal.NewFromFloat(lastPrice))
			exposure = exposure.Add(notional)
		}

		proposed := decimal.NewFromInt(qty).Mul(decimal.NewFromFloat(price))
		total := exposure.Add(proposed)
		fraction := total.Div(decimal.NewFromFloat(equity))

		if fraction.GreaterThan(decimal.NewFromFloat(limits.MaxSectorExposurePct)) {
			logger.WithFields(map[string]interface{}{
				"symbol":       symbol,
				"sector":       sector,
				"exposure_pct": fraction.StringFixed(4),
				"cap_pct":      limits.MaxSectorExposurePct,
			}).Info("trade rejected by sector exposure cap")

			return Result{
				Allowed: false,
				Code:    CodeSectorLimit,
				Reason:  "sector exposure would exceed cap",
			}
		}
	}

	return Result{
		Allowed:     true,
		AdjustedQty: qty,
		Code:        CodeOK,
	}
}
