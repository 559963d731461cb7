package model

import "time"

const (
	TradeSideBuy  = "buy"
	TradeSideSell = "sell"
)

// ClosedTrade is one completed round trip. Rows are append-only and feed
// both the strategy selector and the performance snapshots.
type ClosedTrade struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Symbol       string    `gorm:"size:20;index;not null" json:"symbol"`
	StrategyName string    `gorm:"size:100;index;not null" json:"strategy_name"`
	Side         string    `gorm:"size:10;not null" json:"side"`
	Quantity     int64     `json:"quantity"`
	EntryPrice   float64   `json:"entry_price"`
	ExitPrice    float64   `json:"exit_price"`
	Pnl          float64   `json:"pnl"`
	OpenedAt     time.Time `json:"opened_at"`
	ClosedAt     time.Time `gorm:"index" json:"closed_at"`
	CreatedAt    time.Time `json:"created_at"`
}

func (ClosedTrade) TableName() string {
	return "closed_trades"
}

// BridgeOrder is an order the execution client sent to the broker bridge,
// together with the bridge's answer. ClientOrderID is generated once per
// intent and reused verbatim on every retry so the bridge can deduplicate
// a resubmission after a lost acknowledgement.
type BridgeOrder struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	ClientOrderID string     `gorm:"size:60;uniqueIndex;not null" json:"client_order_id"`
	Symbol        string     `gorm:"size:20;index;not null" json:"symbol"`
	Side          string     `gorm:"size:10;not null" json:"side"`
	Quantity      int64      `json:"quantity"`
	DecisionPrice float64    `json:"decision_price"`
	FillPrice     float64    `json:"fill_price"`
	FilledQty     int64      `json:"filled_qty"`
	Status        string     `gorm:"size:50;not null;default:pending" json:"status"`
	DryRun        bool       `gorm:"not null;default:false" json:"dry_run"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (BridgeOrder) TableName() string {
	return "bridge_orders"
}

const (
	OrderStatusPending  = "pending"
	OrderStatusFilled   = "filled"
	OrderStatusRejected = "rejected"
	OrderStatusError    = "error"
)
