package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/tableorder/pkg/errors"
)

const (
	DefaultBaseURL              = "http://localhost:8000/api"
	defaultTimeout              = 20 * time.Second
	responseBodyReadLimit int64 = 1 << 20
	errorBodyReadLimit    int64 = 1024
)

// FormErrorKey holds a create-order rejection that names no field.
const FormErrorKey = "form"

// Operation names, also used as metric labels.
const (
	OpListMenus     = "list_menus"
	OpGetMenu       = "get_menu"
	OpCreateOrder   = "create_order"
	OpGetOrder      = "get_order"
	OpCreatePayment = "create_payment"
	OpPayOrder      = "pay_order"
	OpCancelOrder   = "cancel_order"
)

// Observer receives per-call timings. *metrics.ClientMetrics satisfies it.
type Observer interface {
	ObserveCall(operation string, duration time.Duration, err error)
}

// Client wraps the ordering backend used by the kiosk.
type Client struct {
	httpClient *http.Client
	baseURL    string
	observer   Observer
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 && c.httpClient != nil {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithObserver attaches call instrumentation.
func WithObserver(observer Observer) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

// NewClient builds a backend client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return nil, fmt.Errorf("invalid backend base url %q: %w", baseURL, err)
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return client, nil
}

// ListMenus returns the menu grouped by category.
func (c *Client) ListMenus(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.do(ctx, OpListMenus, http.MethodGet, "menus", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMenu fetches a single menu item.
func (c *Client) GetMenu(ctx context.Context, id ID) (*MenuItem, error) {
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "menu id is required")
	}
	var out MenuItem
	if err := c.do(ctx, OpGetMenu, http.MethodGet, "menus/"+url.PathEscape(id.String()), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateOrder places a new order. Backend validation failures come back as
// a validation error carrying per-field messages.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	var out Order
	if err := c.do(ctx, OpCreateOrder, http.MethodPost, "orders", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetOrder fetches the current state of an order.
func (c *Client) GetOrder(ctx context.Context, id ID) (*Order, error) {
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	var out Order
	if err := c.do(ctx, OpGetOrder, http.MethodGet, "orders/"+url.PathEscape(id.String()), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePayment requests a payable QR code for the order.
func (c *Client) CreatePayment(ctx context.Context, orderID ID) (*Payment, error) {
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	var out Payment
	if err := c.do(ctx, OpCreatePayment, http.MethodPost, "payments/"+url.PathEscape(orderID.String())+"/create", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PayOrder marks the order as paid.
func (c *Client) PayOrder(ctx context.Context, id ID) (*Order, error) {
	return c.patchOrder(ctx, OpPayOrder, id, "pay")
}

// CancelOrder cancels an unpaid order.
func (c *Client) CancelOrder(ctx context.Context, id ID) (*Order, error) {
	return c.patchOrder(ctx, OpCancelOrder, id, "cancel")
}

func (c *Client) patchOrder(ctx context.Context, op string, id ID, action string) (*Order, error) {
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	var out Order
	if err := c.do(ctx, op, http.MethodPatch, "orders/"+url.PathEscape(id.String())+"/"+action, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, dest any) (err error) {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeNetwork, "ordering backend not configured")
	}
	start := time.Now()
	defer func() {
		if c.observer != nil {
			c.observer.ObserveCall(op, time.Since(start), err)
		}
	}()

	var reader io.Reader
	if body != nil {
		payload, marshalErr := json.Marshal(body)
		if marshalErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, marshalErr, "marshal "+op+" request")
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build "+op+" request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "execute "+op+" request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return decodeFailure(op, resp.StatusCode, raw)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "read "+op+" response")
	}
	if err := decodeEnvelope(raw, dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "decode "+op+" response")
	}
	return nil
}

// decodeEnvelope accepts both bare payloads and {"data": ...} wrappers.
func decodeEnvelope(raw []byte, dest any) error {
	if dest == nil {
		return nil
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return errors.New("empty response body")
	}
	if trimmed[0] == '{' {
		var wrapper struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err == nil {
			data := bytes.TrimSpace(wrapper.Data)
			if len(data) > 0 && !bytes.Equal(data, []byte("null")) {
				return json.Unmarshal(data, dest)
			}
		}
	}
	return json.Unmarshal(trimmed, dest)
}

type failureBody struct {
	Message string                     `json:"message"`
	Errors  map[string]json.RawMessage `json:"errors"`
}

func decodeFailure(op string, status int, raw []byte) error {
	var body failureBody
	_ = json.Unmarshal(raw, &body)
	message := strings.TrimSpace(body.Message)

	switch status {
	case http.StatusUnprocessableEntity:
		fields := pkgerrors.FieldErrors{}
		for field, value := range body.Errors {
			if msg := firstMessage(value); msg != "" {
				fields[field] = msg
			}
		}
		if len(fields) > 0 {
			return pkgerrors.NewValidation(fields)
		}
		if op == OpCreateOrder {
			if message == "" {
				message = "the order was rejected"
			}
			return pkgerrors.NewValidation(pkgerrors.FieldErrors{FormErrorKey: message})
		}
		if message == "" {
			message = op + ": unprocessable"
		}
		return pkgerrors.New(pkgerrors.CodeConflict, message)
	case http.StatusNotFound:
		if message == "" {
			message = op + ": not found"
		}
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	case http.StatusConflict:
		if message == "" {
			message = op + ": conflict"
		}
		return pkgerrors.New(pkgerrors.CodeConflict, message)
	}

	cause := fmt.Errorf("status %d: %s", status, strings.TrimSpace(string(raw)))
	return pkgerrors.Wrap(pkgerrors.CodeNetwork, cause, op+" request failed")
}

// firstMessage keeps the first message of a field, whether the backend sent
// a list or a bare string.
func firstMessage(value json.RawMessage) string {
	var list []string
	if err := json.Unmarshal(value, &list); err == nil {
		for _, msg := range list {
			if strings.TrimSpace(msg) != "" {
				return strings.TrimSpace(msg)
			}
		}
		return ""
	}
	var single string
	if err := json.Unmarshal(value, &single); err == nil {
		return strings.TrimSpace(single)
	}
	return strings.TrimSpace(string(value))
}

func (c *Client) buildURL(path string) string {
	return fmt.Sprintf("%s/%s", c.baseURL, strings.TrimLeft(path, "/"))
}
