package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/database"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/model"
)

// PositionRepository handles read/write operations for persisted positions.
type PositionRepository struct {
	db *gorm.DB
}

// NewPositionRepository creates a new repository instance using the main database.
func NewPositionRepository() *PositionRepository {
	logger.WithField("component", "PositionRepository").
		Info("Creating new PositionRepository with MainDB")

	return &PositionRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *PositionRepository) WithDB(db *gorm.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// Upsert writes the position row for a symbol, inserting or updating on the
// symbol unique index. Called after every confirmed fill.
func (r *PositionRepository) Upsert(ctx context.Context, position *model.Position) error {
	logger.WithFields(map[string]interface{}{
		"repo":   "PositionRepository",
		"op":     "Upsert",
		"symbol": position.Symbol,
		"qty":    position.Quantity,
	}).Debug("Upserting position")

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "symbol"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"quantity", "avg_entry_price", "realized_pnl",
				"unrealized_pnl", "sector", "opened_at", "updated_at",
			}),
		}).
		Create(position).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":   "PositionRepository",
			"op":     "Upsert",
			"symbol": position.Symbol,
		}).WithError(err).Error("Failed to upsert position")
		return err
	}

	return nil
}

// FindBySymbol fetches a single position row.
// Returns (nil, nil) if the position is not found.
func (r *PositionRepository) FindBySymbol(ctx context.Context, symbol string) (*model.Position, error) {
	logger.WithFields(map[string]interface{}{
		"repo":   "PositionRepository",
		"op":     "FindBySymbol",
		"symbol": symbol,
	}).Debug("Fetching position by symbol")

	var position model.Position
	err := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		First(&position).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":   "PositionRepository",
			"op":     "FindBySymbol",
			"symbol": symbol,
		}).WithError(err).Error("Failed to fetch position")
		return nil, err
	}

	return &position, nil
}

// FindAll returns every persisted position, open and flat.
func (r *PositionRepository) FindAll(ctx context.Context) ([]model.Position, error) {
	var positions []model.Position
	err := r.db.WithContext(ctx).
		Order("symbol ASC").
		Find(&positions).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "PositionRepository",
			"op":   "FindAll",
		}).WithError(err).Error("Failed to fetch positions")
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "PositionRepository",
		"op":          "FindAll",
		"rows_return": len(positions),
	}).Debug("Positions fetched")

	return positions, nil
}

// FindOpen returns only positions with a non-zero quantity.
func (r *PositionRepository) FindOpen(ctx context.Context) ([]model.Position, error) {
	var positions []model.Position
	err := r.db.WithContext(ctx).
		Where("quantity <> 0").
		Order("symbol ASC").
		Find(&positions).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "PositionRepository",
			"op":   "FindOpen",
		}).WithError(err).Error("Failed to fetch open positions")
		return nil, err
	}

	return positions, nil
}
