package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/database"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/model"
)

// BarRepository reads and writes daily equity bars.
type BarRepository struct {
	db *gorm.DB
}

// NewBarRepository creates a new repository instance using the main database.
func NewBarRepository() *BarRepository {
	logger.WithField("component", "BarRepository").
		Info("Creating new BarRepository with MainDB")

	return &BarRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *BarRepository) WithDB(db *gorm.DB) *BarRepository {
	return &BarRepository{db: db}
}

// InsertBars appends a batch of daily bars.
func (r *BarRepository) InsertBars(ctx context.Context, bars []model.EquityBar) error {
	if len(bars) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).Create(&bars).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "BarRepository",
			"op":   "InsertBars",
			"rows": len(bars),
		}).WithError(err).Error("Failed to insert bars")
		return err
	}

	return nil
}

// FetchRecentDaily returns up to limit daily bars for a symbol ending at the
// given time, in ascending chronological order.
func (r *BarRepository) FetchRecentDaily(
	ctx context.Context,
	symbol string,
	to time.Time,
	limit int,
) ([]model.EquityBar, error) {

	if limit <= 0 {
		limit = 20
	}

	var rows []model.EquityBar
	err := r.db.WithContext(ctx).
		Where("symbol = ? AND datetime <= ?", symbol, to).
		Order("datetime DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":   "BarRepository",
			"op":     "FetchRecentDaily",
			"symbol": symbol,
		}).WithError(err).Error("Failed to fetch daily bars")
		return nil, err
	}

	// reverse to ascending chronological order for easier logic
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}

// AverageDailyVolume computes the trailing average volume over the most
// recent `days` bars. Returns (zero, false) when no bars exist; the caller
// decides what missing data means (the liquidity cap fails open).
func (r *BarRepository) AverageDailyVolume(
	ctx context.Context,
	symbol string,
	now time.Time,
	days int,
) (decimal.Decimal, bool, error) {

	bars, err := r.FetchRecentDaily(ctx, symbol, now, days)
	if err != nil {
		return decimal.Zero, false, err
	}
	if len(bars) == 0 {
		logger.WithFields(map[string]interface{}{
			"repo":   "BarRepository",
			"op":     "AverageDailyVolume",
			"symbol": symbol,
		}).Warn("No bars available for ADV")
		return decimal.Zero, false, nil
	}

	sum := decimal.Zero
	for _, bar := range bars {
		sum = sum.Add(bar.Volume)
	}
	avg := sum.Div(decimal.NewFromInt(int64(len(bars))))

	return avg, true, nil
}
