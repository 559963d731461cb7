package repository

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/database"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/model"
)

// TradeRepository handles the append-only closed-trade history.
type TradeRepository struct {
	db *gorm.DB
}

// NewTradeRepository creates a new repository instance using the main database.
func NewTradeRepository() *TradeRepository {
	logger.WithField("component", "TradeRepository").
		Info("Creating new TradeRepository with MainDB")

	return &TradeRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *TradeRepository) WithDB(db *gorm.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// Create appends a closed trade.
func (r *TradeRepository) Create(ctx context.Context, trade *model.ClosedTrade) error {
	logger.WithFields(map[string]interface{}{
		"repo":     "TradeRepository",
		"op":       "Create",
		"symbol":   trade.Symbol,
		"strategy": trade.StrategyName,
		"pnl":      trade.Pnl,
	}).Debug("Recording closed trade")

	err := r.db.WithContext(ctx).Create(trade).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "TradeRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to record closed trade")
		return err
	}

	return nil
}

// FindClosedSince returns all trades closed on or after the given time,
// oldest first. This is the selector's rolling window query.
func (r *TradeRepository) FindClosedSince(ctx context.Context, since time.Time) ([]model.ClosedTrade, error) {
	logger.WithFields(map[string]interface{}{
		"repo":  "TradeRepository",
		"op":    "FindClosedSince",
		"since": since,
	}).Debug("Fetching closed trades")

	var trades []model.ClosedTrade
	err := r.db.WithContext(ctx).
		Where("closed_at >= ?", since).
		Order("closed_at ASC").
		Find(&trades).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "TradeRepository",
			"op":   "FindClosedSince",
		}).WithError(err).Error("Failed to fetch closed trades")
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "TradeRepository",
		"op":          "FindClosedSince",
		"rows_return": len(trades),
	}).Info("Closed trades fetched")

	return trades, nil
}

// FindByStrategyAndSymbol returns the closed trades of one strategy/symbol
// combination within a window, oldest first.
func (r *TradeRepository) FindByStrategyAndSymbol(
	ctx context.Context,
	strategyName string,
	symbol string,
	since time.Time,
) ([]model.ClosedTrade, error) {

	var trades []model.ClosedTrade
	err := r.db.WithContext(ctx).
		Where("strategy_name = ? AND symbol = ? AND closed_at >= ?", strategyName, symbol, since).
		Order("closed_at ASC").
		Find(&trades).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "TradeRepository",
			"op":       "FindByStrategyAndSymbol",
			"strategy": strategyName,
			"symbol":   symbol,
		}).WithError(err).Error("Failed to fetch trades for combination")
		return nil, err
	}

	return trades, nil
}
