package orders

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/angelmondragon/tableorder/pkg/enums"
	"github.com/angelmondragon/tableorder/pkg/orderapi"
)

// State is the controller's position in the order lifecycle.
type State string

const (
	StateIdle         State = "idle"
	StateCreating     State = "creating"
	StateAwaitingCode State = "awaiting_code"
	StateTracking     State = "tracking"
	StatePaid         State = "paid"
	StateExpired      State = "expired"
	StateCancelled    State = "cancelled"
)

// IsTerminal reports whether the state ends the lifecycle.
func (s State) IsTerminal() bool {
	switch s {
	case StatePaid, StateExpired, StateCancelled:
		return true
	}
	return false
}

func stateForStatus(status enums.OrderStatus) State {
	switch status {
	case enums.OrderStatusPaid:
		return StatePaid
	case enums.OrderStatusExpired:
		return StateExpired
	case enums.OrderStatusCancelled:
		return StateCancelled
	}
	return StateTracking
}

// Event tells the UI that a tracked order finished and where to go next.
type Event struct {
	OrderID  string            `json:"order_id"`
	Status   enums.OrderStatus `json:"status"`
	Message  string            `json:"message"`
	Redirect string            `json:"redirect"`
}

// View is a read-only copy of the controller state.
type View struct {
	State     State           `json:"state"`
	OrderID   string          `json:"order_id,omitempty"`
	Order     *orderapi.Order `json:"order,omitempty"`
	QRString  string          `json:"qr_string,omitempty"`
	Remaining *int64          `json:"remaining_seconds"`
	Countdown string          `json:"countdown"`
	CanAct    bool            `json:"can_act"`
	LastEvent *Event          `json:"last_event,omitempty"`
}

// FormatCountdown renders remaining seconds as MM:SS, or "-" when unknown.
func FormatCountdown(remaining *int64) string {
	if remaining == nil {
		return "-"
	}
	secs := *remaining
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func outcomeMessage(status enums.OrderStatus) string {
	switch status {
	case enums.OrderStatusPaid:
		return "payment received"
	case enums.OrderStatusExpired:
		return "payment window expired"
	case enums.OrderStatusCancelled:
		return "order cancelled"
	}
	return ""
}

func alreadyMessage(status enums.OrderStatus) string {
	switch status {
	case enums.OrderStatusPaid:
		return "order already paid"
	case enums.OrderStatusExpired:
		return "order already expired"
	case enums.OrderStatusCancelled:
		return "order already cancelled"
	}
	return "order is no longer awaiting payment"
}

func homeURL(table string) string {
	table = strings.TrimSpace(table)
	if table == "" {
		return "/"
	}
	return "/?table=" + url.QueryEscape(table)
}
