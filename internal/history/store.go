package history

import (
	"context"
	"strings"
	"sync"

	"github.com/angelmondragon/tableorder/pkg/enums"
	"github.com/angelmondragon/tableorder/pkg/logger"
)

type failureRecorder interface {
	IncHistoryFailure(op string)
}

// Store is the only writer of the persisted history list. Storage failures
// are logged and never returned; the store then serves its in-memory copy
// until a write succeeds again.
type Store struct {
	mu       sync.Mutex
	storage  Storage
	logg     *logger.Logger
	metrics  failureRecorder
	mirror   []Entry
	degraded bool
}

// Option configures optional store behavior.
type Option func(*Store)

// WithLogger sets the logger used for storage warnings.
func WithLogger(logg *logger.Logger) Option {
	return func(s *Store) {
		if logg != nil {
			s.logg = logg
		}
	}
}

// WithMetrics counts storage failures.
func WithMetrics(metrics failureRecorder) Option {
	return func(s *Store) {
		s.metrics = metrics
	}
}

func NewStore(storage Storage, opts ...Option) *Store {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	s := &Store{storage: storage, logg: logger.Nop(), mirror: []Entry{}}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Append inserts entry at the head. An existing entry with the same id is
// replaced rather than duplicated.
func (s *Store) Append(ctx context.Context, entry Entry) {
	entry.ID = strings.TrimSpace(entry.ID)
	if entry.ID == "" {
		return
	}
	s.mutate(ctx, func(entries []Entry) []Entry {
		out := make([]Entry, 0, len(entries)+1)
		out = append(out, entry)
		for _, existing := range entries {
			if existing.ID != entry.ID {
				out = append(out, existing)
			}
		}
		return out
	})
}

// UpdateStatus overwrites the status of the entry with the given id. Unknown
// ids and unchanged statuses leave storage untouched.
func (s *Store) UpdateStatus(ctx context.Context, id string, status enums.OrderStatus) {
	s.mutate(ctx, func(entries []Entry) []Entry {
		for i := range entries {
			if entries[i].ID != id {
				continue
			}
			if entries[i].Status == status {
				return nil
			}
			entries[i].Status = status
			return entries
		}
		return nil
	})
}

// List returns the entries in persisted order.
func (s *Store) List(ctx context.Context) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneEntries(s.readLocked(ctx))
}

// ReplaceFiltered rewrites the persisted list to the entries satisfying keep
// and returns the result.
func (s *Store) ReplaceFiltered(ctx context.Context, keep func(Entry) bool) []Entry {
	var result []Entry
	s.mutate(ctx, func(entries []Entry) []Entry {
		result = filterEntries(entries, keep)
		return result
	})
	if result == nil {
		return []Entry{}
	}
	return cloneEntries(result)
}

// mutate runs a read-modify-write cycle under the store lock. fn returning
// nil means nothing changed.
func (s *Store) mutate(ctx context.Context, fn func([]Entry) []Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := fn(cloneEntries(s.readLocked(ctx)))
	if next == nil {
		return
	}
	s.writeLocked(ctx, next)
}

func (s *Store) readLocked(ctx context.Context) []Entry {
	if s.degraded {
		return s.mirror
	}
	entries, err := s.storage.Load(ctx)
	if err != nil {
		s.logg.WarnErr(ctx, "history storage unavailable, serving session copy", err)
		s.recordFailure("load")
		return s.mirror
	}
	s.mirror = cloneEntries(entries)
	return s.mirror
}

func (s *Store) writeLocked(ctx context.Context, entries []Entry) {
	s.mirror = cloneEntries(entries)
	if err := s.storage.Save(ctx, s.mirror); err != nil {
		s.degraded = true
		s.logg.WarnErr(ctx, "history write failed, keeping session copy", err)
		s.recordFailure("save")
		return
	}
	s.degraded = false
}

func (s *Store) recordFailure(op string) {
	if s.metrics != nil {
		s.metrics.IncHistoryFailure(op)
	}
}

func filterEntries(entries []Entry, keep func(Entry) bool) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if keep == nil || keep(entry) {
			out = append(out, entry)
		}
	}
	return out
}
