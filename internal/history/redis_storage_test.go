package history

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/tableorder/pkg/enums"
	goredis "github.com/redis/go-redis/v9"
)

type stubKV struct {
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func newStubKV() *stubKV {
	return &stubKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *stubKV) Get(_ context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	v, ok := s.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (s *stubKV) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	s.data[key] = fmt.Sprint(value)
	s.ttls[key] = ttl
	return nil
}

func (s *stubKV) HistoryKey(sessionID string) string {
	return "tableorder:history:" + sessionID
}

func TestRedisStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newStubKV()
	storage := NewRedisStorage(kv, "session-1", 12*time.Hour)

	loaded, err := storage.Load(ctx)
	if err != nil {
		t.Fatalf("load missing key: %v", err)
	}
	if loaded == nil || len(loaded) != 0 {
		t.Fatalf("expected empty list for missing key, got %#v", loaded)
	}

	want := []Entry{entry("2", enums.OrderStatusUnpaid), entry("1", enums.OrderStatusPaid)}
	if err := storage.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	if kv.ttls["tableorder:history:session-1"] != 12*time.Hour {
		t.Fatalf("expected session ttl on key, got %v", kv.ttls)
	}

	loaded, err = storage.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 || loaded[0].ID != "2" || loaded[1].Status != enums.OrderStatusPaid {
		t.Fatalf("unexpected entries %+v", loaded)
	}
	if !loaded[0].CreatedAt.Equal(want[0].CreatedAt) {
		t.Fatalf("created_at not preserved: %v", loaded[0].CreatedAt)
	}
}

func TestRedisStorageErrors(t *testing.T) {
	ctx := context.Background()
	kv := newStubKV()
	storage := NewRedisStorage(kv, "s", time.Hour)

	kv.data["tableorder:history:s"] = "{not json"
	if _, err := storage.Load(ctx); err == nil {
		t.Fatalf("expected decode error")
	}

	kv.getErr = errors.New("connection reset")
	if _, err := storage.Load(ctx); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestRedisStorageEncodesWireShape(t *testing.T) {
	ctx := context.Background()
	kv := newStubKV()
	storage := NewRedisStorage(kv, "s", 0)

	if err := storage.Save(ctx, []Entry{entry("9", enums.OrderStatusUnpaid)}); err != nil {
		t.Fatalf("save: %v", err)
	}
	want := `[{"id":"9","order_code":"ORD-9","total":71500,"created_at":"2026-10-19T09:00:00Z","status":"unpaid"}]`
	if got := kv.data["tableorder:history:s"]; got != want {
		t.Fatalf("unexpected encoding\n got: %s\nwant: %s", got, want)
	}
}

func TestRedisStorageKeepsListWithUnreadableStatus(t *testing.T) {
	ctx := context.Background()
	kv := newStubKV()
	storage := NewRedisStorage(kv, "s", time.Hour)

	kv.data["tableorder:history:s"] = `[{"id":"3","status":"refunded"},{"id":"2","status":""},{"id":"","status":"paid"},{"id":"1","order_code":"ORD-1","total":71500,"status":"unpaid"}]`

	store := NewStore(storage)
	got := store.List(ctx)
	if len(got) != 3 {
		t.Fatalf("expected the readable records kept, got %+v", got)
	}
	for _, e := range got {
		if e.Status != enums.OrderStatusUnpaid {
			t.Fatalf("expected unknown status read as unpaid, got %+v", e)
		}
	}
	if got[2].ID != "1" || got[2].Total != 71500 {
		t.Fatalf("expected intact record preserved, got %+v", got[2])
	}

	store.Append(ctx, entry("4", enums.OrderStatusUnpaid))
	reloaded, err := storage.Load(ctx)
	if err != nil {
		t.Fatalf("load after append: %v", err)
	}
	if len(reloaded) != 4 || reloaded[0].ID != "4" || reloaded[3].ID != "1" {
		t.Fatalf("expected earlier entries preserved on write, got %+v", reloaded)
	}
}
