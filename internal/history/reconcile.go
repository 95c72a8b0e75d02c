package history

import (
	"context"

	"github.com/angelmondragon/tableorder/pkg/orderapi"
	"golang.org/x/sync/errgroup"
)

const reconcileConcurrency = 4

// Fetcher reads server truth for one order.
type Fetcher interface {
	GetOrder(ctx context.Context, id orderapi.ID) (*orderapi.Order, error)
}

// Reconcile refreshes every entry from the backend, then rewrites the list to
// the entries that are still unpaid and returns them. An entry whose fetch
// fails keeps its local data.
func (s *Store) Reconcile(ctx context.Context, fetcher Fetcher) []Entry {
	current := s.List(ctx)
	fresh := make(map[string]*orderapi.Order, len(current))

	if fetcher != nil && len(current) > 0 {
		results := make([]*orderapi.Order, len(current))
		var g errgroup.Group
		g.SetLimit(reconcileConcurrency)
		for i, entry := range current {
			i, entry := i, entry
			g.Go(func() error {
				order, err := fetcher.GetOrder(ctx, orderapi.ID(entry.ID))
				if err != nil {
					s.logg.WarnErr(s.logg.WithOrderID(ctx, entry.ID), "history refresh failed, keeping local entry", err)
					return nil
				}
				results[i] = order
				return nil
			})
		}
		_ = g.Wait()

		for i, entry := range current {
			if results[i] != nil {
				fresh[entry.ID] = results[i]
			}
		}
	}

	var result []Entry
	s.mutate(ctx, func(entries []Entry) []Entry {
		refreshed := make([]Entry, 0, len(entries))
		for _, entry := range entries {
			refreshed = append(refreshed, entry.refresh(fresh[entry.ID]))
		}
		result = filterEntries(refreshed, IsUnpaid)
		return result
	})
	return cloneEntries(result)
}
