package cart

import "github.com/angelmondragon/tableorder/pkg/orderapi"

// Item is the menu data a cart line needs to price itself.
type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	UnitPrice   int64  `json:"unit_price"`
	Description string `json:"description,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

// ItemFromMenu projects a backend menu item onto a cart item.
func ItemFromMenu(m orderapi.MenuItem) Item {
	return Item{
		ID:          m.ID.String(),
		Name:        m.Name,
		UnitPrice:   int64(m.Price),
		Description: m.Description,
		PhotoURL:    m.PhotoURL,
	}
}

// Line is one item in the cart with a quantity of at least 1.
type Line struct {
	Item     Item  `json:"item"`
	Quantity int   `json:"quantity"`
	Amount   int64 `json:"amount"`
}

// Snapshot is a point-in-time copy of the cart in insertion order.
type Snapshot struct {
	Lines    []Line `json:"lines"`
	Subtotal int64  `json:"subtotal"`
}

// IsEmpty reports whether the snapshot has no lines.
func (s Snapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}

// OrderItems builds the create-order line payload.
func (s Snapshot) OrderItems() []orderapi.OrderItemInput {
	out := make([]orderapi.OrderItemInput, 0, len(s.Lines))
	for _, line := range s.Lines {
		out = append(out, orderapi.OrderItemInput{
			MenuID: orderapi.ID(line.Item.ID),
			Qty:    line.Quantity,
		})
	}
	return out
}
