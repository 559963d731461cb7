package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/database"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/model"
)

// SelectionRepository persists the active/shadow strategy selection set.
type SelectionRepository struct {
	db *gorm.DB
}

// NewSelectionRepository creates a new repository instance using the main database.
func NewSelectionRepository() *SelectionRepository {
	logger.WithField("component", "SelectionRepository").
		Info("Creating new SelectionRepository with MainDB")

	return &SelectionRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *SelectionRepository) WithDB(db *gorm.DB) *SelectionRepository {
	return &SelectionRepository{db: db}
}

// ReplaceAll swaps the whole selection set inside one transaction: delete
// everything, insert the new rows. The selector runs out-of-band from live
// trading, so the brief gap between delete and insert is acceptable and
// buys us immunity from stale rows.
func (r *SelectionRepository) ReplaceAll(ctx context.Context, selections []model.StrategySelection) error {
	logger.WithFields(map[string]interface{}{
		"repo": "SelectionRepository",
		"op":   "ReplaceAll",
		"rows": len(selections),
	}).Info("Replacing strategy selection set")

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.StrategySelection{}).Error; err != nil {
			return err
		}
		if len(selections) == 0 {
			return nil
		}
		return tx.Create(&selections).Error
	})
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "SelectionRepository",
			"op":   "ReplaceAll",
		}).WithError(err).Error("Failed to replace selection set")
		return err
	}

	return nil
}

// FindCurrent returns the current selection set, active row first.
func (r *SelectionRepository) FindCurrent(ctx context.Context) ([]model.StrategySelection, error) {
	var rows []model.StrategySelection
	err := r.db.WithContext(ctx).
		Order("mode ASC, score DESC").
		Find(&rows).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "SelectionRepository",
			"op":   "FindCurrent",
		}).WithError(err).Error("Failed to fetch current selections")
		return nil, err
	}

	return rows, nil
}

// FindActive returns the single MAIN-mode row, or (nil, nil) when no
// selection has been made yet.
func (r *SelectionRepository) FindActive(ctx context.Context) (*model.StrategySelection, error) {
	var row model.StrategySelection
	err := r.db.WithContext(ctx).
		Where("mode = ?", model.ModeMain).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo": "SelectionRepository",
			"op":   "FindActive",
		}).WithError(err).Error("Failed to fetch active selection")
		return nil, err
	}

	return &row, nil
}
