package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EquityBar is one daily OHLCV bar for a symbol. Bars back the trailing
// average-daily-volume lookups used by the liquidity cap.
type EquityBar struct {
	ID       uint            `gorm:"primaryKey" json:"id"`
	Symbol   string          `gorm:"size:20;index:idx_bar_symbol_date,unique" json:"symbol"`
	Datetime time.Time       `gorm:"index:idx_bar_symbol_date,unique" json:"datetime"`
	Open     decimal.Decimal `gorm:"type:numeric(20,6)" json:"open"`
	High     decimal.Decimal `gorm:"type:numeric(20,6)" json:"high"`
	Low      decimal.Decimal `gorm:"type:numeric(20,6)" json:"low"`
	Close    decimal.Decimal `gorm:"type:numeric(20,6)" json:"close"`
	Volume   decimal.Decimal `gorm:"type:numeric(24,2)" json:"volume"`
}

func (EquityBar) TableName() string {
	return "equity_bars"
}
