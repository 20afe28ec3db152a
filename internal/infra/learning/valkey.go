package learning

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/property-valuator/internal/domain/valuation"
)

// ValkeyQueue persists learning samples in a Valkey list and drains them to a handler.
type ValkeyQueue struct {
	client      valkey.Client
	queueKey    string
	handler     Handler
	logger      *slog.Logger
	stop        chan struct{}
	stopOnce    sync.Once
	pollTimeout time.Duration
}

// NewValkeyQueue constructs a Valkey-backed queue. A non-nil handler starts the consumer loop.
func NewValkeyQueue(client valkey.Client, queueKey string, handler Handler, logger *slog.Logger) *ValkeyQueue {
	if queueKey == "" {
		queueKey = "valuation:learning"
	}
	q := &ValkeyQueue{
		client:      client,
		queueKey:    queueKey,
		handler:     handler,
		logger:      logger.With("component", "learning_queue"),
		stop:        make(chan struct{}),
		pollTimeout: 5 * time.Second,
	}
	if handler != nil {
		go q.consume()
	}
	return q
}

// Observe pushes the entry onto the queue.
func (q *ValkeyQueue) Observe(ctx context.Context, entry valuation.HistoryEntry) error {
	encoded, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	cmd := q.client.B().Lpush().Key(q.queueKey).Element(string(encoded)).Build()
	return q.client.Do(ctx, cmd).Error()
}

// Close stops the consumer loop after the current poll returns.
func (q *ValkeyQueue) Close() {
	q.stopOnce.Do(func() { close(q.stop) })
}

func (q *ValkeyQueue) consume() {
	ctx := context.Background()
	for {
		select {
		case <-q.stop:
			return
		default:
		}
		resp := q.client.Do(ctx, q.client.B().Brpop().Key(q.queueKey).Timeout(q.pollTimeout.Seconds()).Build())
		values, err := resp.ToArray()
		if err != nil {
			if !valkey.IsValkeyNil(err) {
				q.logger.Warn("learning queue pop failed", "error", err)
				select {
				case <-q.stop:
					return
				case <-time.After(time.Second):
				}
			}
			continue
		}
		if len(values) < 2 {
			continue
		}
		raw, err := values[1].ToString()
		if err != nil {
			q.logger.Warn("learning queue payload decode failed", "error", err)
			continue
		}
		var entry valuation.HistoryEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			q.logger.Warn("learning queue unmarshal failed", "error", err)
			continue
		}
		q.handler(ctx, entry)
	}
}

var _ valuation.LearningHook = (*ValkeyQueue)(nil)
