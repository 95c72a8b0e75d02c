package orders

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/tableorder/internal/cart"
	"github.com/angelmondragon/tableorder/internal/history"
	"github.com/angelmondragon/tableorder/pkg/checkout"
	"github.com/angelmondragon/tableorder/pkg/enums"
	pkgerrors "github.com/angelmondragon/tableorder/pkg/errors"
	"github.com/angelmondragon/tableorder/pkg/logger"
	"github.com/angelmondragon/tableorder/pkg/metrics"
	"github.com/angelmondragon/tableorder/pkg/orderapi"
)

const (
	defaultPollInterval = 3 * time.Second
	defaultTickInterval = time.Second
)

// Backend is the slice of the ordering API the controller drives.
type Backend interface {
	CreateOrder(ctx context.Context, req orderapi.CreateOrderRequest) (*orderapi.Order, error)
	GetOrder(ctx context.Context, id orderapi.ID) (*orderapi.Order, error)
	CreatePayment(ctx context.Context, orderID orderapi.ID) (*orderapi.Payment, error)
	PayOrder(ctx context.Context, id orderapi.ID) (*orderapi.Order, error)
	CancelOrder(ctx context.Context, id orderapi.ID) (*orderapi.Order, error)
}

// Cart is what the controller needs from the cart store.
type Cart interface {
	Snapshot() cart.Snapshot
	Clear()
}

// History records orders created at this table.
type History interface {
	Append(ctx context.Context, entry history.Entry)
	UpdateStatus(ctx context.Context, id string, status enums.OrderStatus)
}

// ControllerParams configure the lifecycle controller.
type ControllerParams struct {
	Logger           *logger.Logger
	Backend          Backend
	Cart             Cart
	History          History
	Metrics          *metrics.LifecycleMetrics
	TableNumber      string
	SurchargePercent int64
	PollInterval     time.Duration
	TickInterval     time.Duration
	Now              func() time.Time
	Notify           func(Event)
}

// Submission is the payment form.
type Submission struct {
	Customer checkout.Customer
}

// Controller owns one order at a time, from creation to a terminal status.
type Controller struct {
	logg      *logger.Logger
	backend   Backend
	cart      Cart
	history   History
	metrics   *metrics.LifecycleMetrics
	table     string
	surcharge int64
	poll      time.Duration
	tick      time.Duration
	now       func() time.Time
	notify    func(Event)

	// trackMu serializes BeginTracking so a payment code is requested at most once.
	trackMu sync.Mutex

	mu          sync.Mutex
	state       State
	gen         uint64
	orderID     string
	order       *orderapi.Order
	qr          string
	remaining   *int64
	lastEvent   *Event
	codes       map[string]string
	cancelLoops context.CancelFunc
	wg          sync.WaitGroup
}

// NewController builds a controller in the idle state.
func NewController(params ControllerParams) (*Controller, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Backend == nil {
		return nil, fmt.Errorf("backend required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart required")
	}
	if params.History == nil {
		return nil, fmt.Errorf("history required")
	}
	if strings.TrimSpace(params.TableNumber) == "" {
		return nil, fmt.Errorf("table number required")
	}
	poll := params.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}
	tick := params.TickInterval
	if tick <= 0 {
		tick = defaultTickInterval
	}
	surcharge := params.SurchargePercent
	if surcharge < 0 {
		surcharge = checkout.DefaultSurchargePercent
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Controller{
		logg:      params.Logger,
		backend:   params.Backend,
		cart:      params.Cart,
		history:   params.History,
		metrics:   params.Metrics,
		table:     strings.TrimSpace(params.TableNumber),
		surcharge: surcharge,
		poll:      poll,
		tick:      tick,
		now:       now,
		notify:    params.Notify,
		state:     StateIdle,
		codes:     make(map[string]string),
	}, nil
}

// Submit validates the form against the cart and creates the order. A
// rejected form leaves the controller untouched; backend field errors are
// merged into the same validation error.
func (c *Controller) Submit(ctx context.Context, sub Submission) (*orderapi.Order, error) {
	customer := sub.Customer.Normalized()
	snapshot := c.cart.Snapshot()
	if fields := checkout.ValidateSubmission(customer, len(snapshot.Lines)); fields != nil {
		c.metrics.IncSubmission("invalid")
		return nil, pkgerrors.NewValidation(fields)
	}

	c.mu.Lock()
	if c.state == StateCreating {
		c.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "an order is already being created")
	}
	c.resetLocked()
	c.state = StateCreating
	gen := c.gen
	c.mu.Unlock()

	breakdown := checkout.NewBreakdown(snapshot.Subtotal, c.surcharge)
	req := orderapi.CreateOrderRequest{
		TableNumber:   c.table,
		Items:         snapshot.OrderItems(),
		OtherFees:     breakdown.Surcharge,
		CustomerName:  customer.Name,
		CustomerPhone: customer.Phone,
		CustomerEmail: customer.Email,
	}
	if customer.Note != "" {
		note := customer.Note
		req.CustomerNote = &note
	}

	ctx = c.logg.WithTable(ctx, c.table)
	order, err := c.backend.CreateOrder(ctx, req)
	if err != nil {
		c.mu.Lock()
		if c.gen == gen {
			c.state = StateIdle
		}
		c.mu.Unlock()

		if fields := pkgerrors.Fields(err); fields != nil {
			c.metrics.IncSubmission("rejected")
			return nil, pkgerrors.NewValidation(pkgerrors.Merge(nil, formFields(fields)))
		}
		c.metrics.IncSubmission("failed")
		c.logg.WarnErr(ctx, "order creation failed", err)
		if pkgerrors.Is(err, pkgerrors.CodeNetwork) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "order could not be created")
	}

	// The order exists server-side from here on, even if the controller was reset meanwhile.
	c.cart.Clear()
	c.history.Append(ctx, history.EntryFromOrder(order))
	c.metrics.IncSubmission("created")

	c.mu.Lock()
	if c.gen == gen {
		c.state = StateAwaitingCode
		c.orderID = order.ID.String()
		c.order = cloneOrder(order)
	}
	c.mu.Unlock()

	c.logg.Info(c.logg.WithOrderID(ctx, order.ID.String()), "order created")
	return cloneOrder(order), nil
}

// BeginTracking fetches the order, makes sure it has a payment code and
// starts the countdown and polling loops. Calling it again for an order that
// is already tracked or finished returns the current view without any request.
func (c *Controller) BeginTracking(ctx context.Context, orderID string) (View, error) {
	id := strings.TrimSpace(orderID)
	if id == "" {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	ctx = c.logg.WithOrderID(ctx, id)

	c.trackMu.Lock()
	defer c.trackMu.Unlock()

	c.mu.Lock()
	if c.orderID == id && (c.state == StateTracking || c.state.IsTerminal()) {
		view := c.viewLocked()
		c.mu.Unlock()
		return view, nil
	}
	if c.state == StateCreating {
		c.mu.Unlock()
		return View{}, pkgerrors.New(pkgerrors.CodeStateConflict, "an order is still being created")
	}
	if c.orderID != id {
		c.resetLocked()
		c.orderID = id
	}
	c.state = StateAwaitingCode
	gen := c.gen
	c.mu.Unlock()

	order, err := c.backend.GetOrder(ctx, orderapi.ID(id))
	if err != nil {
		return View{}, err
	}

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return View{}, errStale()
	}
	c.order = cloneOrder(order)
	if order.Status.IsTerminal() {
		effect := c.applyTerminalLocked(order.Status, "")
		view := c.viewLocked()
		c.mu.Unlock()
		effect(ctx)
		return view, nil
	}

	code, source := c.knownCodeLocked(id, order)
	c.mu.Unlock()

	if code == "" {
		payment, err := c.backend.CreatePayment(ctx, orderapi.ID(id))
		if err != nil {
			return View{}, err
		}
		if payment == nil || strings.TrimSpace(payment.QRString) == "" {
			return View{}, pkgerrors.New(pkgerrors.CodeDataUnavailable, "payment code unavailable")
		}
		code, source = payment.QRString, metrics.PaymentCodeCreated
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		if source == metrics.PaymentCodeCreated {
			c.codes[id] = code
		}
		return View{}, errStale()
	}
	c.codes[id] = code
	c.qr = code
	c.state = StateTracking
	c.refreshRemainingLocked()
	c.metrics.IncPaymentCode(source)
	c.startLoopsLocked(ctx, gen)

	c.logg.Info(c.logg.WithField(ctx, "code_source", source), "tracking order")
	return c.viewLocked(), nil
}

// Pay marks the tracked order as paid after explicit confirmation.
func (c *Controller) Pay(ctx context.Context, confirmed bool) (View, error) {
	return c.act(ctx, confirmed, "pay", c.backend.PayOrder)
}

// Cancel cancels the tracked order after explicit confirmation.
func (c *Controller) Cancel(ctx context.Context, confirmed bool) (View, error) {
	return c.act(ctx, confirmed, "cancel", c.backend.CancelOrder)
}

func (c *Controller) act(ctx context.Context, confirmed bool, action string, call func(context.Context, orderapi.ID) (*orderapi.Order, error)) (View, error) {
	if !confirmed {
		return View{}, pkgerrors.NewValidation(pkgerrors.FieldErrors{"confirm": action + " must be confirmed"})
	}

	c.mu.Lock()
	if err := c.guardLocked(); err != nil {
		c.mu.Unlock()
		return View{}, err
	}
	gen, id := c.gen, c.orderID
	c.mu.Unlock()

	ctx = c.logg.WithField(c.logg.WithOrderID(ctx, id), "action", action)
	order, err := call(ctx, orderapi.ID(id))
	if err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeConflict) || pkgerrors.Is(err, pkgerrors.CodeValidation) {
			return c.resolveConflict(ctx, gen, id, err)
		}
		c.logg.WarnErr(ctx, "order action failed", err)
		return View{}, err
	}

	c.mu.Lock()
	if c.gen != gen {
		view := c.viewLocked()
		c.mu.Unlock()
		return view, nil
	}
	effect := c.applyStatusLocked(order)
	view := c.viewLocked()
	c.mu.Unlock()
	effect(ctx)
	return view, nil
}

// guardLocked rejects actions on orders that can no longer change.
func (c *Controller) guardLocked() error {
	if c.state.IsTerminal() && c.order != nil {
		return pkgerrors.New(pkgerrors.CodeConflict, alreadyMessage(c.order.Status))
	}
	if c.state != StateTracking || c.order == nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "no order is being tracked")
	}
	if c.order.Status != enums.OrderStatusUnpaid {
		return pkgerrors.New(pkgerrors.CodeConflict, alreadyMessage(c.order.Status))
	}
	if c.remaining != nil && *c.remaining <= 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, alreadyMessage(enums.OrderStatusExpired))
	}
	return nil
}

// resolveConflict re-reads the order after the backend refused an action so
// the caller learns which terminal status won.
func (c *Controller) resolveConflict(ctx context.Context, gen uint64, id string, cause error) (View, error) {
	order, err := c.backend.GetOrder(ctx, orderapi.ID(id))
	if err != nil || order == nil || !order.Status.IsTerminal() {
		return View{}, pkgerrors.Wrap(pkgerrors.CodeConflict, cause, alreadyMessage(""))
	}

	c.mu.Lock()
	var effect func(context.Context) = noEffect
	if c.gen == gen {
		effect = c.applyStatusLocked(order)
	}
	c.mu.Unlock()
	effect(ctx)

	return View{}, pkgerrors.Wrap(pkgerrors.CodeConflict, cause, alreadyMessage(order.Status))
}

// Reset stops tracking and returns to idle. Results of requests still in
// flight are discarded.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// Close resets the controller and waits for its background work to exit.
func (c *Controller) Close() {
	c.Reset()
	c.wg.Wait()
}

// View returns the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller) resetLocked() {
	c.stopLoopsLocked()
	c.gen++
	c.state = StateIdle
	c.orderID = ""
	c.order = nil
	c.qr = ""
	c.remaining = nil
	c.lastEvent = nil
}

func (c *Controller) viewLocked() View {
	view := View{
		State:     c.state,
		OrderID:   c.orderID,
		Order:     cloneOrder(c.order),
		QRString:  c.qr,
		Countdown: FormatCountdown(c.remaining),
		CanAct:    c.guardLocked() == nil,
	}
	if c.remaining != nil {
		remaining := *c.remaining
		view.Remaining = &remaining
	}
	if c.lastEvent != nil {
		event := *c.lastEvent
		view.LastEvent = &event
	}
	return view
}

// knownCodeLocked returns a payment code that can be shown without asking
// the backend for a new one.
func (c *Controller) knownCodeLocked(id string, order *orderapi.Order) (string, string) {
	if code := strings.TrimSpace(order.QRString); code != "" {
		return code, metrics.PaymentCodeReused
	}
	if code := c.codes[id]; code != "" {
		return code, metrics.PaymentCodeReused
	}
	return "", ""
}

// applyStatusLocked folds a server-returned order into the cached copy.
func (c *Controller) applyStatusLocked(order *orderapi.Order) func(context.Context) {
	if order == nil || c.state.IsTerminal() {
		return noEffect
	}
	if order.Status.IsTerminal() {
		return c.applyTerminalLocked(order.Status, "")
	}
	merged := cloneOrder(order)
	if c.order != nil && merged.QRString == "" {
		merged.QRString = c.order.QRString
	}
	c.order = merged
	c.refreshRemainingLocked()
	return noEffect
}

// redirectTableLocked prefers the table the backend recorded for the order.
func (c *Controller) redirectTableLocked() string {
	if c.order != nil {
		if table := strings.TrimSpace(c.order.TableNumber.String()); table != "" {
			return table
		}
	}
	return c.table
}

// applyTerminalLocked moves to the terminal state exactly once. The returned
// effect updates history and notifies the UI; run it after unlocking.
func (c *Controller) applyTerminalLocked(status enums.OrderStatus, message string) func(context.Context) {
	if c.state.IsTerminal() || !status.IsTerminal() {
		return noEffect
	}
	c.stopLoopsLocked()
	c.state = stateForStatus(status)
	if c.order != nil {
		c.order.Status = status
	}
	if message == "" {
		message = outcomeMessage(status)
	}
	event := Event{
		OrderID:  c.orderID,
		Status:   status,
		Message:  message,
		Redirect: homeURL(c.redirectTableLocked()),
	}
	c.lastEvent = &event
	c.metrics.IncOutcome(status.String())

	return func(ctx context.Context) {
		ctx = context.WithoutCancel(ctx)
		c.history.UpdateStatus(ctx, event.OrderID, status)
		c.logg.Info(c.logg.WithField(ctx, "status", status.String()), "order finished")
		if c.notify != nil {
			c.notify(event)
		}
	}
}

func (c *Controller) refreshRemainingLocked() {
	if !c.order.HasExpiry() {
		c.remaining = nil
		return
	}
	secs := int64(c.order.ExpiresAt.Sub(c.now()) / time.Second)
	if secs < 0 {
		secs = 0
	}
	c.remaining = &secs
}

func cloneOrder(order *orderapi.Order) *orderapi.Order {
	if order == nil {
		return nil
	}
	out := *order
	if order.Items != nil {
		out.Items = append([]orderapi.OrderLine(nil), order.Items...)
	}
	return &out
}

func errStale() error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "tracking was reset for another order")
}

func noEffect(context.Context) {}

// formFields maps backend payload keys onto the form's field names.
func formFields(server pkgerrors.FieldErrors) pkgerrors.FieldErrors {
	out := make(pkgerrors.FieldErrors, len(server))
	for key, msg := range server {
		field := key
		switch {
		case key == "customer_name":
			field = checkout.FieldName
		case key == "customer_phone":
			field = checkout.FieldPhone
		case key == "customer_email":
			field = checkout.FieldEmail
		case key == "items" || strings.HasPrefix(key, "items."):
			field = checkout.FieldItems
		case key == orderapi.FormErrorKey:
			field = checkout.FieldForm
		}
		if _, exists := out[field]; exists && field != key {
			continue
		}
		out[field] = msg
	}
	return out
}
