package learning

import (
	"context"
	"log/slog"

	"github.com/yanqian/property-valuator/internal/domain/valuation"
)

// Handler consumes one recorded evaluation.
type Handler func(ctx context.Context, entry valuation.HistoryEntry)

// NewLogHandler returns the default consumer, which only reports samples.
// Model tuning is not wired in yet.
func NewLogHandler(logger *slog.Logger) Handler {
	log := logger.With("component", "learning")
	return func(_ context.Context, entry valuation.HistoryEntry) {
		log.Debug("learning sample received",
			"id", entry.ID,
			"estimatedValue", entry.Result.EstimatedValue,
			"confidence", entry.Result.Confidence,
			"filledFields", entry.FilledFieldCount,
		)
	}
}

// ImmediateQueue hands entries to the handler on its own goroutine.
type ImmediateQueue struct {
	handler Handler
}

// NewImmediateQueue constructs the queue.
func NewImmediateQueue(handler Handler) *ImmediateQueue {
	return &ImmediateQueue{handler: handler}
}

// Observe implements valuation.LearningHook.
func (q *ImmediateQueue) Observe(ctx context.Context, entry valuation.HistoryEntry) error {
	if q.handler == nil {
		return nil
	}
	go q.handler(context.WithoutCancel(ctx), entry)
	return nil
}

var _ valuation.LearningHook = (*ImmediateQueue)(nil)
