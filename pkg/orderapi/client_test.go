package orderapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/tableorder/pkg/enums"
	pkgerrors "github.com/angelmondragon/tableorder/pkg/errors"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func newTestClient(t *testing.T, rt roundTripFunc, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithHTTPClient(&http.Client{Transport: rt})}, opts...)
	client, err := NewClient("http://kitchen.test/api/", opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

type recordingObserver struct {
	ops  []string
	errs []error
}

func (r *recordingObserver) ObserveCall(op string, _ time.Duration, err error) {
	r.ops = append(r.ops, op)
	r.errs = append(r.errs, err)
}

func TestNewClientDefaultsBaseURL(t *testing.T) {
	client, err := NewClient("  ")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.baseURL != DefaultBaseURL {
		t.Fatalf("expected default base url, got %q", client.baseURL)
	}
	if client.httpClient.Timeout != defaultTimeout {
		t.Fatalf("expected default timeout, got %s", client.httpClient.Timeout)
	}
}

func TestNewClientRejectsInvalidBaseURL(t *testing.T) {
	if _, err := NewClient("not a url"); err == nil {
		t.Fatalf("expected invalid base url error")
	}
}

func TestCreateOrderSendsPayloadAndUnwrapsData(t *testing.T) {
	var captured *http.Request
	var payload map[string]any

	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		captured = req
		raw, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			t.Fatalf("unmarshal body: %v", err)
		}
		return jsonResponse(http.StatusCreated, `{"data":{"id":42,"order_code":"ORD-42","total":"71500.00","status":"unpaid","expires_at":"2026-10-19 10:15:00"}}`), nil
	})

	order, err := client.CreateOrder(context.Background(), CreateOrderRequest{
		TableNumber:   "12",
		Items:         []OrderItemInput{{MenuID: "7", Qty: 2}},
		OtherFees:     6500,
		CustomerName:  "Rani",
		CustomerPhone: "08123",
		CustomerEmail: "rani@example.com",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if captured.Method != http.MethodPost || captured.URL.String() != "http://kitchen.test/api/orders" {
		t.Fatalf("unexpected request %s %s", captured.Method, captured.URL)
	}
	if captured.Header.Get("Content-Type") != "application/json" {
		t.Fatalf("missing content type header")
	}
	if payload["table_number"] != "12" || payload["other_fees"] != float64(6500) {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if payload["customer_note"] != nil {
		t.Fatalf("expected null note, got %v", payload["customer_note"])
	}

	if order.ID != "42" || order.OrderCode != "ORD-42" {
		t.Fatalf("unexpected order identity %+v", order)
	}
	if order.Total != 71500 {
		t.Fatalf("expected total 71500, got %d", order.Total)
	}
	if order.Status != enums.OrderStatusUnpaid {
		t.Fatalf("unexpected status %q", order.Status)
	}
	want := time.Date(2026, 10, 19, 10, 15, 0, 0, time.UTC)
	if !order.HasExpiry() || !order.ExpiresAt.Equal(want) {
		t.Fatalf("unexpected expiry %v", order.ExpiresAt)
	}
}

func TestGetOrderAcceptsBareBody(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/api/orders/42" {
			t.Fatalf("unexpected path %q", req.URL.Path)
		}
		return jsonResponse(http.StatusOK, `{"id":"42","order_code":"ORD-42","total":71500,"status":"paid","qr_string":"000201"}`), nil
	})

	order, err := client.GetOrder(context.Background(), "42")
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if order.Status != enums.OrderStatusPaid || order.QRString != "000201" {
		t.Fatalf("unexpected order %+v", order)
	}
	if order.HasExpiry() {
		t.Fatalf("expected no expiry")
	}
}

func TestListMenusDecodesCategories(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"data":[{"id":1,"name":"Mains","menus":[{"id":7,"name":"Nasi Goreng","price":"25000.00","photo_full_url":"http://img/7.jpg"}]}]}`), nil
	})

	categories, err := client.ListMenus(context.Background())
	if err != nil {
		t.Fatalf("list menus: %v", err)
	}
	if len(categories) != 1 || len(categories[0].Menus) != 1 {
		t.Fatalf("unexpected categories %+v", categories)
	}
	item := categories[0].Menus[0]
	if item.ID != "7" || item.Price != 25000 || item.PhotoURL != "http://img/7.jpg" {
		t.Fatalf("unexpected item %+v", item)
	}
}

func TestCreateOrderMapsUnprocessableToFieldErrors(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusUnprocessableEntity, `{"message":"invalid","errors":{"customer_email":["taken","other"],"customer_phone":"too short"}}`), nil
	})

	_, err := client.CreateOrder(context.Background(), CreateOrderRequest{TableNumber: "1"})
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := pkgerrors.Fields(err)
	if fields["customer_email"] != "taken" {
		t.Fatalf("expected first message, got %q", fields["customer_email"])
	}
	if fields["customer_phone"] != "too short" {
		t.Fatalf("expected string message, got %q", fields["customer_phone"])
	}
}

func TestCreateOrderMessageOnlyUnprocessableIsFormError(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusUnprocessableEntity, `{"message":"The table number is closed."}`), nil
	})

	_, err := client.CreateOrder(context.Background(), CreateOrderRequest{TableNumber: "1"})
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if pkgerrors.Retryable(err) {
		t.Fatalf("expected a non-retryable rejection")
	}
	if got := pkgerrors.Fields(err)[FormErrorKey]; got != "The table number is closed." {
		t.Fatalf("expected message under form key, got %q", got)
	}
}

func TestPayOrderMapsStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   pkgerrors.Code
	}{
		{name: "not found", status: http.StatusNotFound, body: `{"message":"order missing"}`, code: pkgerrors.CodeNotFound},
		{name: "conflict", status: http.StatusConflict, body: `{"message":"already paid"}`, code: pkgerrors.CodeConflict},
		{name: "unprocessable without fields", status: http.StatusUnprocessableEntity, body: `{"message":"order expired"}`, code: pkgerrors.CodeConflict},
		{name: "server error", status: http.StatusInternalServerError, body: `boom`, code: pkgerrors.CodeNetwork},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
				if req.Method != http.MethodPatch || req.URL.Path != "/api/orders/9/pay" {
					t.Fatalf("unexpected request %s %s", req.Method, req.URL.Path)
				}
				return jsonResponse(tc.status, tc.body), nil
			})
			_, err := client.PayOrder(context.Background(), "9")
			if got := pkgerrors.CodeOf(err); got != tc.code {
				t.Fatalf("expected %s, got %s (%v)", tc.code, got, err)
			}
		})
	}
}

func TestTransportFailureIsRetryable(t *testing.T) {
	observer := &recordingObserver{}
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	}, WithObserver(observer))

	_, err := client.CancelOrder(context.Background(), "9")
	if !pkgerrors.Is(err, pkgerrors.CodeNetwork) || !pkgerrors.Retryable(err) {
		t.Fatalf("expected retryable network error, got %v", err)
	}
	if len(observer.ops) != 1 || observer.ops[0] != OpCancelOrder || observer.errs[0] == nil {
		t.Fatalf("unexpected observations %+v", observer)
	}
}

func TestCreatePaymentPath(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodPost || req.URL.Path != "/api/payments/9/create" {
			t.Fatalf("unexpected request %s %s", req.Method, req.URL.Path)
		}
		return jsonResponse(http.StatusOK, `{"data":{"qr_string":"00020101"}}`), nil
	})

	payment, err := client.CreatePayment(context.Background(), "9")
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}
	if payment.QRString != "00020101" {
		t.Fatalf("unexpected qr string %q", payment.QRString)
	}
}

func TestMalformedBodyIsNetworkError(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"data":`), nil
	})
	if _, err := client.GetOrder(context.Background(), "1"); !pkgerrors.Is(err, pkgerrors.CodeNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestEmptyIDsAreRejectedLocally(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		t.Fatalf("no request expected")
		return nil, nil
	})
	if _, err := client.GetOrder(context.Background(), ""); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := client.CreatePayment(context.Background(), ""); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
