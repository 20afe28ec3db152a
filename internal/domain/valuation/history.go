package valuation

import (
	"context"
	"time"
)

// HistoryCapacity is the number of evaluations retained; older ones are evicted first.
const HistoryCapacity = 100

// HistoryEntry is one recorded evaluation.
type HistoryEntry struct {
	ID               string     `json:"id"`
	Timestamp        time.Time  `json:"timestamp"`
	Attributes       Attributes `json:"attributes"`
	Result           Result     `json:"result"`
	FilledFieldCount int        `json:"filledFieldCount"`
}

// HistoryStore keeps the most recent evaluations.
type HistoryStore interface {
	Append(ctx context.Context, entry HistoryEntry) error
	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]HistoryEntry, error)
}

// LearningHook receives every recorded evaluation for offline model tuning.
type LearningHook interface {
	Observe(ctx context.Context, entry HistoryEntry) error
}
