package orderapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/tableorder/pkg/enums"
	"github.com/shopspring/decimal"
)

// ID is an opaque backend key. The API emits numbers for some resources and
// strings for others, so both decode into the same type.
type ID string

func (id ID) String() string { return string(id) }

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Amount is money in the smallest currency unit. Decimal columns may arrive
// as "25000.00"; they are rounded to the nearest unit.
type Amount int64

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	raw := strings.Trim(string(data), `"`)
	if raw == "" {
		*a = 0
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("decode amount %q: %w", raw, err)
	}
	*a = Amount(d.Round(0).IntPart())
	return nil
}

// Timestamp accepts RFC 3339 and the "YYYY-MM-DD HH:MM:SS" layout.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("decode timestamp %q: unsupported layout", raw)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.UTC().Format(time.RFC3339))
}

// MenuItem is a single orderable dish.
type MenuItem struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Price       Amount `json:"price"`
	Description string `json:"description,omitempty"`
	PhotoURL    string `json:"photo_full_url,omitempty"`
}

// Category groups menu items for the listing screen.
type Category struct {
	ID    ID         `json:"id"`
	Name  string     `json:"name"`
	Menus []MenuItem `json:"menus"`
}

// OrderItemInput is one line of the create-order payload.
type OrderItemInput struct {
	MenuID ID  `json:"menu_id"`
	Qty    int `json:"qty"`
}

// CreateOrderRequest is the body of POST /orders.
type CreateOrderRequest struct {
	TableNumber   string           `json:"table_number"`
	Items         []OrderItemInput `json:"items"`
	OtherFees     int64            `json:"other_fees"`
	CustomerName  string           `json:"customer_name"`
	CustomerPhone string           `json:"customer_phone"`
	CustomerEmail string           `json:"customer_email"`
	CustomerNote  *string          `json:"customer_note"`
}

// OrderLine is a line item echoed back by the backend.
type OrderLine struct {
	MenuID   ID     `json:"menu_id"`
	Name     string `json:"name,omitempty"`
	Qty      int    `json:"qty"`
	Price    Amount `json:"price,omitempty"`
	Subtotal Amount `json:"subtotal,omitempty"`
}

// Order is the backend's view of a placed order.
type Order struct {
	ID          ID                `json:"id"`
	OrderCode   string            `json:"order_code"`
	TableNumber ID                `json:"table_number"`
	Items       []OrderLine       `json:"items,omitempty"`
	OtherFees   Amount            `json:"other_fees"`
	Total       Amount            `json:"total"`
	Status      enums.OrderStatus `json:"status"`
	CreatedAt   Timestamp         `json:"created_at"`
	ExpiresAt   Timestamp         `json:"expires_at"`
	QRString    string            `json:"qr_string,omitempty"`
}

// HasExpiry reports whether the backend sent a payment deadline.
func (o *Order) HasExpiry() bool {
	return o != nil && !o.ExpiresAt.IsZero()
}

// Payment is the response of POST /payments/{id}/create.
type Payment struct {
	OrderID  ID     `json:"order_id,omitempty"`
	QRString string `json:"qr_string"`
}
