package recorder

import (
	"time"

	"CryptoPilot/internal/model"
)

// Outcome is how an analysis cycle ended.
type Outcome string

const (
	OutcomeNoAction Outcome = "NO_ACTION" // insight below threshold or HOLD
	OutcomeTraded   Outcome = "TRADED"
	OutcomeRejected Outcome = "REJECTED" // insufficient funds
	OutcomeSkipped  Outcome = "SKIPPED"  // bot stopped mid-cycle
	OutcomeFailed   Outcome = "FAILED"
)

// CycleEvent holds the data journaled for one analysis cycle.
type CycleEvent struct {
	At      time.Time     `json:"at"`
	Mode    model.Mode    `json:"mode"`
	Oracle  string        `json:"oracle"`
	Price   float64       `json:"price"` // 0 when no price was obtained
	Insight model.Insight `json:"insight"`
	Outcome Outcome       `json:"outcome"`
	TradeID string        `json:"trade_id,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// Recorder journals analysis cycles for later inspection.
type Recorder interface {
	RecordCycle(evt *CycleEvent) error
	RecentCycles(limit int) ([]CycleEvent, error)
	Close() error
}
