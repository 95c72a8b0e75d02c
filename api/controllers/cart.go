package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/tableorder/api/responses"
	"github.com/angelmondragon/tableorder/api/validators"
	"github.com/angelmondragon/tableorder/internal/cart"
	"github.com/angelmondragon/tableorder/pkg/checkout"
	pkgerrors "github.com/angelmondragon/tableorder/pkg/errors"
	"github.com/angelmondragon/tableorder/pkg/logger"
)

type cartResponse struct {
	Lines     []cart.Line        `json:"lines"`
	Breakdown checkout.Breakdown `json:"breakdown"`
	Count     int                `json:"count"`
}

func newCartResponse(snapshot cart.Snapshot, surchargePercent int64) cartResponse {
	lines := snapshot.Lines
	if lines == nil {
		lines = []cart.Line{}
	}
	count := 0
	for _, line := range lines {
		count += line.Quantity
	}
	return cartResponse{
		Lines:     lines,
		Breakdown: checkout.NewBreakdown(snapshot.Subtotal, surchargePercent),
		Count:     count,
	}
}

func CartView(store CartStore, surchargePercent int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart unavailable"))
			return
		}
		responses.WriteSuccess(w, newCartResponse(store.Snapshot(), surchargePercent))
	}
}

type addCartItemRequest struct {
	MenuID string `json:"menu_id" validate:"required"`
	Qty    int    `json:"qty" validate:"omitempty,min=1"`
}

// CartAddItem increments the line for menu_id, creating it when absent. Name
// and price come from the menu, never from the caller.
func CartAddItem(store CartStore, menus MenuService, surchargePercent int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil || menus == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart unavailable"))
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		qty := payload.Qty
		if qty == 0 {
			qty = 1
		}

		menuItem, err := menus.Get(r.Context(), strings.TrimSpace(payload.MenuID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.Increment(cart.ItemFromMenu(*menuItem), qty)
		responses.WriteSuccess(w, newCartResponse(store.Snapshot(), surchargePercent))
	}
}

type quantityRequest struct {
	Qty int `json:"qty" validate:"required,min=1"`
}

// CartSetQuantity overwrites a line quantity; the store clamps it to 1.
func CartSetQuantity(store CartStore, surchargePercent int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart unavailable"))
			return
		}

		itemID, ok := cartLineID(w, r, store, logg)
		if !ok {
			return
		}
		var payload quantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.SetQuantity(itemID, payload.Qty)
		responses.WriteSuccess(w, newCartResponse(store.Snapshot(), surchargePercent))
	}
}

type decrementRequest struct {
	Qty int `json:"qty" validate:"omitempty,min=1"`
}

// CartDecrement lowers a line by qty (default 1); a line reaching zero is removed.
func CartDecrement(store CartStore, surchargePercent int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart unavailable"))
			return
		}

		itemID, ok := cartLineID(w, r, store, logg)
		if !ok {
			return
		}
		var payload decrementRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		qty := payload.Qty
		if qty == 0 {
			qty = 1
		}

		store.Decrement(itemID, qty)
		responses.WriteSuccess(w, newCartResponse(store.Snapshot(), surchargePercent))
	}
}

func CartRemoveItem(store CartStore, surchargePercent int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart unavailable"))
			return
		}

		store.Remove(strings.TrimSpace(chi.URLParam(r, "itemId")))
		responses.WriteSuccess(w, newCartResponse(store.Snapshot(), surchargePercent))
	}
}

func cartLineID(w http.ResponseWriter, r *http.Request, store CartStore, logg *logger.Logger) (string, bool) {
	itemID := strings.TrimSpace(chi.URLParam(r, "itemId"))
	if store.QuantityOf(itemID) == 0 {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "item is not in the cart"))
		return "", false
	}
	return itemID, true
}
