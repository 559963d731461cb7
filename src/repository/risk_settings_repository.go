package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/database"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/model"
)

// RiskSettingsRepository stores the hot-reloadable risk configuration.
type RiskSettingsRepository struct {
	db *gorm.DB
}

// NewRiskSettingsRepository creates a new repository instance using the main database.
func NewRiskSettingsRepository() *RiskSettingsRepository {
	logger.WithField("component", "RiskSettingsRepository").
		Info("Creating new RiskSettingsRepository with MainDB")

	return &RiskSettingsRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *RiskSettingsRepository) WithDB(db *gorm.DB) *RiskSettingsRepository {
	return &RiskSettingsRepository{db: db}
}

// GetLatest returns the newest settings row, or (nil, nil) when none exists.
func (r *RiskSettingsRepository) GetLatest(ctx context.Context) (*model.RiskSettings, error) {
	var settings model.RiskSettings
	err := r.db.WithContext(ctx).
		Order("id DESC").
		First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo": "RiskSettingsRepository",
			"op":   "GetLatest",
		}).WithError(err).Error("Failed to fetch risk settings")
		return nil, err
	}

	return &settings, nil
}

// Create appends a new settings row. Validation happens in the risk package
// before this is called; a row that makes it here is last-known-good.
func (r *RiskSettingsRepository) Create(ctx context.Context, settings *model.RiskSettings) error {
	logger.WithFields(map[string]interface{}{
		"repo":       "RiskSettingsRepository",
		"op":         "Create",
		"updated_by": settings.UpdatedBy,
	}).Info("Persisting risk settings")

	err := r.db.WithContext(ctx).Create(settings).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "RiskSettingsRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to persist risk settings")
		return err
	}

	return nil
}
