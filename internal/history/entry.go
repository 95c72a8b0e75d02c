package history

import (
	"time"

	"github.com/angelmondragon/tableorder/pkg/enums"
	"github.com/angelmondragon/tableorder/pkg/orderapi"
)

// Entry is the reduced record of an order kept for the table's session.
type Entry struct {
	ID        string            `json:"id"`
	OrderCode string            `json:"order_code"`
	Total     int64             `json:"total"`
	CreatedAt time.Time         `json:"created_at"`
	Status    enums.OrderStatus `json:"status"`
}

// EntryFromOrder projects a backend order onto a history entry.
func EntryFromOrder(order *orderapi.Order) Entry {
	if order == nil {
		return Entry{}
	}
	return Entry{
		ID:        order.ID.String(),
		OrderCode: order.OrderCode,
		Total:     int64(order.Total),
		CreatedAt: order.CreatedAt.Time,
		Status:    statusOrUnpaid(order.Status.String()),
	}
}

// statusOrUnpaid keeps a freshly created or unreadable order visible as unpaid.
func statusOrUnpaid(raw string) enums.OrderStatus {
	status, err := enums.ParseOrderStatus(raw)
	if err != nil {
		return enums.OrderStatusUnpaid
	}
	return status
}

// refresh overlays server truth on the local entry. The total always comes
// from the server; empty code, time and status keep the local value.
func (e Entry) refresh(order *orderapi.Order) Entry {
	if order == nil {
		return e
	}
	if order.OrderCode != "" {
		e.OrderCode = order.OrderCode
	}
	e.Total = int64(order.Total)
	if !order.CreatedAt.IsZero() {
		e.CreatedAt = order.CreatedAt.Time
	}
	if order.Status.IsValid() {
		e.Status = order.Status
	}
	return e
}

// IsUnpaid is the reconciliation predicate.
func IsUnpaid(e Entry) bool {
	return e.Status == enums.OrderStatusUnpaid
}

func cloneEntries(entries []Entry) []Entry {
	if entries == nil {
		return []Entry{}
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}
