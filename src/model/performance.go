package model

import "time"

// Trading modes for a strategy/symbol combination.
const (
	ModeBacktest = "BACKTEST"
	ModeShadow   = "SHADOW"
	ModeMain     = "MAIN"
)

// StrategyPerformance is one performance snapshot for a strategy/symbol
// combination over a rolling window. Snapshots are create-only; a new
// calculation supersedes the previous one instead of updating it.
type StrategyPerformance struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	StrategyName   string    `gorm:"size:100;index;not null" json:"strategy_name"`
	Symbol         string    `gorm:"size:20;index;not null" json:"symbol"`
	Mode           string    `gorm:"size:20;not null;default:BACKTEST" json:"mode"`
	TotalTrades    int       `json:"total_trades"`
	WinRate        float64   `json:"win_rate"` // fraction in [0,1]
	SharpeRatio    float64   `json:"sharpe_ratio"`
	MaxDrawdownPct float64   `json:"max_drawdown_pct"`
	TotalReturnPct float64   `json:"total_return_pct"`
	WindowStart    time.Time `json:"window_start"`
	WindowEnd      time.Time `json:"window_end"`
	CreatedAt      time.Time `json:"created_at"`
}

func (StrategyPerformance) TableName() string {
	return "strategy_performances"
}

// StrategySelection is one row of the active/shadow set produced by the
// selector. The whole set is replaced on every selection run.
type StrategySelection struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	BatchID      string    `gorm:"size:60;index;not null" json:"batch_id"`
	StrategyName string    `gorm:"size:100;not null" json:"strategy_name"`
	Symbol       string    `gorm:"size:20;not null" json:"symbol"`
	Mode         string    `gorm:"size:20;not null" json:"mode"` // MAIN or SHADOW
	Score        float64   `json:"score"`
	CreatedAt    time.Time `json:"created_at"`
}

func (StrategySelection) TableName() string {
	return "strategy_selections"
}
