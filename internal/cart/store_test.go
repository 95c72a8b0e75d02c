package cart

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/angelmondragon/tableorder/pkg/orderapi"
)

var (
	nasiGoreng = Item{ID: "7", Name: "Nasi Goreng", UnitPrice: 25000}
	esTeh      = Item{ID: "9", Name: "Es Teh", UnitPrice: 15000}
)

func TestIncrementCreatesAndAccumulates(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.Increment(nasiGoreng, 1)
	if got := store.QuantityOf("7"); got != 1 {
		t.Fatalf("expected quantity 1, got %d", got)
	}
	store.Increment(nasiGoreng, 2)
	if got := store.QuantityOf("7"); got != 3 {
		t.Fatalf("expected quantity 3, got %d", got)
	}
	if store.Len() != 1 {
		t.Fatalf("expected a single line, got %d", store.Len())
	}
}

func TestIncrementIgnoresInvalidInput(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.Increment(nasiGoreng, 0)
	store.Increment(nasiGoreng, -2)
	store.Increment(Item{ID: " ", UnitPrice: 10}, 1)
	store.Increment(Item{ID: "x", UnitPrice: -1}, 1)
	if !store.IsEmpty() {
		t.Fatalf("expected empty cart, got %d lines", store.Len())
	}
}

func TestDecrementRemovesAtZero(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.Increment(nasiGoreng, 1)
	store.Decrement("7", 1)
	if store.QuantityOf("7") != 0 || !store.IsEmpty() {
		t.Fatalf("expected line removed")
	}

	store.Increment(esTeh, 2)
	store.Decrement("9", 5)
	if !store.IsEmpty() {
		t.Fatalf("expected floor at zero to remove the line")
	}

	store.Increment(esTeh, 2)
	store.Decrement("9", 0)
	store.Decrement("unknown", 1)
	if store.QuantityOf("9") != 2 {
		t.Fatalf("expected no-op decrements, got %d", store.QuantityOf("9"))
	}
}

func TestSetQuantityClampsAndIgnoresUnknown(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.Increment(nasiGoreng, 3)
	store.SetQuantity("7", 0)
	if got := store.QuantityOf("7"); got != 1 {
		t.Fatalf("expected clamp to 1, got %d", got)
	}
	store.SetQuantity("7", 5)
	if got := store.QuantityOf("7"); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	store.SetQuantity("missing", 4)
	if store.QuantityOf("missing") != 0 || store.Len() != 1 {
		t.Fatalf("unknown id must not create a line")
	}
}

func TestSnapshotKeepsInsertionOrderAndSubtotal(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.Increment(nasiGoreng, 2)
	store.Increment(esTeh, 1)
	store.Increment(nasiGoreng, 0)

	snap := store.Snapshot()
	if len(snap.Lines) != 2 || snap.Lines[0].Item.ID != "7" || snap.Lines[1].Item.ID != "9" {
		t.Fatalf("unexpected order %+v", snap.Lines)
	}
	if snap.Subtotal != 65000 || store.Subtotal() != 65000 {
		t.Fatalf("expected subtotal 65000, got %d/%d", snap.Subtotal, store.Subtotal())
	}
	if snap.Lines[0].Amount != 50000 {
		t.Fatalf("expected line amount 50000, got %d", snap.Lines[0].Amount)
	}

	items := snap.OrderItems()
	if len(items) != 2 || items[0].MenuID != "7" || items[0].Qty != 2 {
		t.Fatalf("unexpected order items %+v", items)
	}

	store.Remove("7")
	if len(snap.Lines) != 2 {
		t.Fatalf("snapshot must not alias the store")
	}
	if got := store.Snapshot(); len(got.Lines) != 1 || got.Subtotal != 15000 {
		t.Fatalf("unexpected snapshot after remove %+v", got)
	}

	store.Clear()
	if !store.Snapshot().IsEmpty() || store.Subtotal() != 0 {
		t.Fatalf("expected empty cart after clear")
	}
}

func TestRandomOperationsKeepSubtotalConsistent(t *testing.T) {
	t.Parallel()

	items := []Item{nasiGoreng, esTeh, {ID: "3", Name: "Sate", UnitPrice: 30000}, {ID: "4", Name: "Air", UnitPrice: 0}}
	rng := rand.New(rand.NewSource(42))
	store := NewStore()

	for i := 0; i < 2000; i++ {
		item := items[rng.Intn(len(items))]
		switch rng.Intn(4) {
		case 0:
			store.Increment(item, rng.Intn(4)-1)
		case 1:
			store.Decrement(item.ID, rng.Intn(4)-1)
		case 2:
			store.SetQuantity(item.ID, rng.Intn(5)-1)
		case 3:
			if rng.Intn(5) == 0 {
				store.Remove(item.ID)
			}
		}

		snap := store.Snapshot()
		var want int64
		for _, line := range snap.Lines {
			if line.Quantity < 1 {
				t.Fatalf("line %s has quantity %d", line.Item.ID, line.Quantity)
			}
			want += int64(line.Quantity) * line.Item.UnitPrice
		}
		if snap.Subtotal != want || store.Subtotal() != want {
			t.Fatalf("step %d: subtotal %d, want %d", i, snap.Subtotal, want)
		}
	}
}

func TestConcurrentIncrements(t *testing.T) {
	t.Parallel()

	store := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Increment(esTeh, 1)
		}()
	}
	wg.Wait()
	if got := store.QuantityOf("9"); got != 50 {
		t.Fatalf("expected 50, got %d", got)
	}
}

func TestItemFromMenu(t *testing.T) {
	t.Parallel()

	item := ItemFromMenu(orderapi.MenuItem{ID: "12", Name: "Mie", Price: 18000, PhotoURL: "http://img"})
	if item.ID != "12" || item.UnitPrice != 18000 || item.PhotoURL != "http://img" {
		t.Fatalf("unexpected item %+v", item)
	}
}
