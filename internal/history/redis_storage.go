package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/angelmondragon/tableorder/pkg/redis"
)

type keyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	HistoryKey(sessionID string) string
}

// RedisStorage stores the list as one JSON value per kiosk session. The key
// expires with the session.
type RedisStorage struct {
	kv  keyValueStore
	key string
	ttl time.Duration
}

func NewRedisStorage(kv keyValueStore, sessionID string, ttl time.Duration) *RedisStorage {
	return &RedisStorage{kv: kv, key: kv.HistoryKey(sessionID), ttl: ttl}
}

func (r *RedisStorage) Load(ctx context.Context) ([]Entry, error) {
	raw, err := r.kv.Get(ctx, r.key)
	if redis.IsMissing(err) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history %s: %w", r.key, err)
	}
	return decodeEntries(raw)
}

func (r *RedisStorage) Save(ctx context.Context, entries []Entry) error {
	raw, err := encodeEntries(entries)
	if err != nil {
		return err
	}
	if err := r.kv.Set(ctx, r.key, raw, r.ttl); err != nil {
		return fmt.Errorf("write history %s: %w", r.key, err)
	}
	return nil
}

func encodeEntries(entries []Entry) (string, error) {
	raw, err := json.Marshal(cloneEntries(entries))
	if err != nil {
		return "", fmt.Errorf("encode history: %w", err)
	}
	return string(raw), nil
}

// storedEntry mirrors Entry with a plain status so one unreadable record
// does not fail the whole list.
type storedEntry struct {
	ID        string    `json:"id"`
	OrderCode string    `json:"order_code"`
	Total     int64     `json:"total"`
	CreatedAt time.Time `json:"created_at"`
	Status    string    `json:"status"`
}

// decodeEntries drops records without an id and reads an unknown status as
// unpaid, leaving the next reconcile to fetch the real one.
func decodeEntries(raw string) ([]Entry, error) {
	if raw == "" {
		return []Entry{}, nil
	}
	var stored []storedEntry
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	entries := make([]Entry, 0, len(stored))
	for _, record := range stored {
		if record.ID == "" {
			continue
		}
		entries = append(entries, Entry{
			ID:        record.ID,
			OrderCode: record.OrderCode,
			Total:     record.Total,
			CreatedAt: record.CreatedAt,
			Status:    statusOrUnpaid(record.Status),
		})
	}
	return entries, nil
}
