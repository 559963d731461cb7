package model

import "time"

// RiskSettings is the persisted, hot-reloadable risk configuration. The
// engine keeps an immutable snapshot of the latest valid row; updates take
// effect on the next evaluation, never mid-flight.
type RiskSettings struct {
	ID                     uint      `gorm:"primaryKey" json:"id"`
	MaxSharesPerTrade      int64     `json:"max_shares_per_trade"`
	DailyLossLimit         float64   `json:"daily_loss_limit"`
	WeeklyLossLimit        float64   `json:"weekly_loss_limit"`
	IntradayLossLimit      float64   `json:"intraday_loss_limit"`
	MaxSectorExposurePct   float64   `json:"max_sector_exposure_pct"`   // fraction of equity, 0 disables
	MaxADVParticipationPct float64   `json:"max_adv_participation_pct"` // fraction of ADV, 0 disables
	MinAverageDailyVolume  float64   `json:"min_average_daily_volume"`
	UpdatedBy              string    `gorm:"size:100" json:"updated_by"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

func (RiskSettings) TableName() string {
	return "risk_settings"
}

// PnlCounter persists the daily/weekly accumulators so a restart mid-week
// does not forget how much has already been lost.
type PnlCounter struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	DailyPnl        float64   `json:"daily_pnl"`
	WeeklyPnl       float64   `json:"weekly_pnl"`
	IntradayPeakPnl float64   `json:"intraday_peak_pnl"`
	SessionDate     time.Time `gorm:"index" json:"session_date"`
	WeekStart       time.Time `json:"week_start"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (PnlCounter) TableName() string {
	return "pnl_counters"
}
