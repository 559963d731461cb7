package model

import "time"

// Position is the persisted view of a holding. The in-memory portfolio
// state is authoritative during a session; rows are written on every
// confirmed fill so the book survives a restart.
//
// Quantity is signed: positive for long, negative for short. A flat
// position (quantity 0) carries no entry price.
type Position struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Symbol        string     `gorm:"size:20;uniqueIndex;not null" json:"symbol"`
	Quantity      int64      `json:"quantity"`
	AvgEntryPrice float64    `json:"avg_entry_price"`
	RealizedPnl   float64    `json:"realized_pnl"`
	UnrealizedPnl float64    `json:"unrealized_pnl"`
	Sector        string     `gorm:"size:50" json:"sector"`
	OpenedAt      *time.Time `json:"opened_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (Position) TableName() string {
	return "positions"
}

// Flat reports whether the position holds no shares.
func (p Position) Flat() bool {
	return p.Quantity == 0
}
