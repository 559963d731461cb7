package model

import "time"

// Exception is a persisted system-level error kept for auditing and
// debugging. Engine error paths write one of these alongside the log line.
type Exception struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Service string `gorm:"size:100;index" json:"service"` // e.g. "equity-trader"
	Module  string `gorm:"size:100;index" json:"module"`  // e.g. "bridge_client"
	Method  string `gorm:"size:100" json:"method"`        // e.g. "SubmitOrder"

	Message string `gorm:"type:text" json:"message"`
	Level   string `gorm:"size:20;index" json:"level"` // debug | info | warn | error | fatal

	// Extra context stored as JSON.
	Context string `gorm:"type:text" json:"context,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (Exception) TableName() string {
	return "exceptions"
}
