package repository

import (
	"context"
	"errors"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/database"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/model"
)

// PnlRepository persists the daily/weekly loss counters so a process restart
// mid-week resumes with the accumulated numbers instead of a clean slate.
type PnlRepository struct {
	db *gorm.DB
}

// NewPnlRepository creates a new repository instance using the main database.
func NewPnlRepository() *PnlRepository {
	logger.WithField("component", "PnlRepository").
		Info("Creating new PnlRepository with MainDB")

	return &PnlRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *PnlRepository) WithDB(db *gorm.DB) *PnlRepository {
	return &PnlRepository{db: db}
}

// GetForSession returns the counter row for a session date, or (nil, nil).
func (r *PnlRepository) GetForSession(ctx context.Context, sessionDate time.Time) (*model.PnlCounter, error) {
	var counter model.PnlCounter
	err := r.db.WithContext(ctx).
		Where("session_date = ?", sessionDate).
		First(&counter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":         "PnlRepository",
			"op":           "GetForSession",
			"session_date": sessionDate,
		}).WithError(err).Error("Failed to fetch pnl counter")
		return nil, err
	}

	return &counter, nil
}

// Save writes the counter row, updating in place when one already exists for
// the session date.
func (r *PnlRepository) Save(ctx context.Context, counter *model.PnlCounter) error {
	logger.WithFields(map[string]interface{}{
		"repo":         "PnlRepository",
		"op":           "Save",
		"session_date": counter.SessionDate,
		"daily_pnl":    counter.DailyPnl,
		"weekly_pnl":   counter.WeeklyPnl,
	}).Debug("Saving pnl counter")

	existing, err := r.GetForSession(ctx, counter.SessionDate)
	if err != nil {
		return err
	}
	if existing != nil {
		counter.ID = existing.ID
	}

	err = r.db.WithContext(ctx).Save(counter).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "PnlRepository",
			"op":   "Save",
		}).WithError(err).Error("Failed to save pnl counter")
		return err
	}

	return nil
}
