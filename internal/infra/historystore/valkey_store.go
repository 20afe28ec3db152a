package historystore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/property-valuator/internal/domain/valuation"
)

// ValkeyStore persists evaluations as a capped Valkey list, newest at the head.
type ValkeyStore struct {
	client   valkey.Client
	key      string
	capacity int
}

// NewValkeyStore constructs a store backed by Valkey.
func NewValkeyStore(client valkey.Client, key string, capacity int) *ValkeyStore {
	if key == "" {
		key = "valuation:history"
	}
	if capacity <= 0 {
		capacity = valuation.HistoryCapacity
	}
	return &ValkeyStore{client: client, key: key, capacity: capacity}
}

// Append pushes the entry and trims the list in a single MULTI/EXEC block.
func (s *ValkeyStore) Append(ctx context.Context, entry valuation.HistoryEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}
	cmds := valkey.Commands{
		s.client.B().Multi().Build(),
		s.client.B().Lpush().Key(s.key).Element(string(payload)).Build(),
		s.client.B().Ltrim().Key(s.key).Start(0).Stop(int64(s.capacity - 1)).Build(),
		s.client.B().Exec().Build(),
	}
	for _, resp := range s.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return fmt.Errorf("append history entry: %w", err)
		}
	}
	return nil
}

// Recent implements valuation.HistoryStore.
func (s *ValkeyStore) Recent(ctx context.Context, limit int) ([]valuation.HistoryEntry, error) {
	if limit <= 0 || limit > s.capacity {
		limit = s.capacity
	}
	resp := s.client.Do(ctx, s.client.B().Lrange().Key(s.key).Start(0).Stop(int64(limit-1)).Build())
	raw, err := resp.AsStrSlice()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history: %w", err)
	}
	out := make([]valuation.HistoryEntry, 0, len(raw))
	for _, item := range raw {
		var entry valuation.HistoryEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("decode history entry: %w", err)
		}
		out = append(out, entry)
	}
	return out, nil
}

var _ valuation.HistoryStore = (*ValkeyStore)(nil)
