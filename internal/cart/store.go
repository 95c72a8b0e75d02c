package cart

import (
	"strings"
	"sync"
)

// Store holds the table's cart in memory. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	order []string
	lines map[string]*Line
}

// NewStore returns an empty cart.
func NewStore() *Store {
	return &Store{lines: make(map[string]*Line)}
}

// Increment adds delta to the item's quantity, creating the line when absent.
// Non-positive deltas, blank ids and negative prices are ignored.
func (s *Store) Increment(item Item, delta int) {
	item.ID = strings.TrimSpace(item.ID)
	if delta <= 0 || item.ID == "" || item.UnitPrice < 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if line, ok := s.lines[item.ID]; ok {
		line.Quantity += delta
		return
	}
	s.lines[item.ID] = &Line{Item: item, Quantity: delta}
	s.order = append(s.order, item.ID)
}

// Decrement lowers the quantity by delta; a line reaching 0 is removed.
func (s *Store) Decrement(itemID string, delta int) {
	if delta <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.lines[itemID]
	if !ok {
		return
	}
	line.Quantity -= delta
	if line.Quantity <= 0 {
		s.removeLocked(itemID)
	}
}

// SetQuantity overwrites the quantity, clamped to at least 1. Unknown ids are ignored.
func (s *Store) SetQuantity(itemID string, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if line, ok := s.lines[itemID]; ok {
		line.Quantity = quantity
	}
}

// Remove deletes the line unconditionally.
func (s *Store) Remove(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(itemID)
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.lines = make(map[string]*Line)
}

// QuantityOf returns the stored quantity, or 0 when the item is not in the cart.
func (s *Store) QuantityOf(itemID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if line, ok := s.lines[itemID]; ok {
		return line.Quantity
	}
	return 0
}

// Subtotal sums quantity x unit price over the current lines.
func (s *Store) Subtotal() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, line := range s.lines {
		total += int64(line.Quantity) * line.Item.UnitPrice
	}
	return total
}

// Len returns the number of distinct lines.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// IsEmpty reports whether the cart has no lines.
func (s *Store) IsEmpty() bool {
	return s.Len() == 0
}

// Snapshot copies the lines in insertion order with the subtotal computed
// from the same copy.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{Lines: make([]Line, 0, len(s.order))}
	for _, id := range s.order {
		line := *s.lines[id]
		line.Amount = int64(line.Quantity) * line.Item.UnitPrice
		snap.Subtotal += line.Amount
		snap.Lines = append(snap.Lines, line)
	}
	return snap
}

func (s *Store) removeLocked(itemID string) {
	if _, ok := s.lines[itemID]; !ok {
		return
	}
	delete(s.lines, itemID)
	for i, id := range s.order {
		if id == itemID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
