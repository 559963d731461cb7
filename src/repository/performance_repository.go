package repository

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/database"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/model"
)

// PerformanceRepository stores strategy performance snapshots. Snapshots are
// create-only; each selector period appends a fresh set.
type PerformanceRepository struct {
	db *gorm.DB
}

// NewPerformanceRepository creates a new repository instance using the main database.
func NewPerformanceRepository() *PerformanceRepository {
	logger.WithField("component", "PerformanceRepository").
		Info("Creating new PerformanceRepository with MainDB")

	return &PerformanceRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *PerformanceRepository) WithDB(db *gorm.DB) *PerformanceRepository {
	return &PerformanceRepository{db: db}
}

// Create appends a performance snapshot.
func (r *PerformanceRepository) Create(ctx context.Context, perf *model.StrategyPerformance) error {
	logger.WithFields(map[string]interface{}{
		"repo":     "PerformanceRepository",
		"op":       "Create",
		"strategy": perf.StrategyName,
		"symbol":   perf.Symbol,
		"mode":     perf.Mode,
	}).Debug("Recording performance snapshot")

	err := r.db.WithContext(ctx).Create(perf).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "PerformanceRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to record performance snapshot")
		return err
	}

	return nil
}

// FindLatestByMode returns the most recent snapshot per strategy/symbol
// combination for a given mode, created on or after the cutoff.
func (r *PerformanceRepository) FindLatestByMode(
	ctx context.Context,
	mode string,
	since time.Time,
) ([]model.StrategyPerformance, error) {

	logger.WithFields(map[string]interface{}{
		"repo":  "PerformanceRepository",
		"op":    "FindLatestByMode",
		"mode":  mode,
		"since": since,
	}).Debug("Fetching performance snapshots")

	var rows []model.StrategyPerformance
	err := r.db.WithContext(ctx).
		Where("mode = ? AND created_at >= ?", mode, since).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "PerformanceRepository",
			"op":   "FindLatestByMode",
			"mode": mode,
		}).WithError(err).Error("Failed to fetch performance snapshots")
		return nil, err
	}

	// Keep only the newest snapshot per combination; rows arrive newest first.
	seen := make(map[string]bool, len(rows))
	latest := make([]model.StrategyPerformance, 0, len(rows))
	for _, row := range rows {
		key := row.StrategyName + "|" + row.Symbol
		if seen[key] {
			continue
		}
		seen[key] = true
		latest = append(latest, row)
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "PerformanceRepository",
		"op":          "FindLatestByMode",
		"rows_return": len(latest),
	}).Info("Performance snapshots fetched")

	return latest, nil
}
