package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/tableorder/api/responses"
	"github.com/angelmondragon/tableorder/api/validators"
	"github.com/angelmondragon/tableorder/internal/orders"
	pkgerrors "github.com/angelmondragon/tableorder/pkg/errors"
	"github.com/angelmondragon/tableorder/pkg/logger"
)

// OrderTrack starts or resumes tracking an order, e.g. after a page reload.
func OrderTrack(ctrl OrderLifecycle, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctrl == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order controller unavailable"))
			return
		}

		view, err := ctrl.BeginTracking(r.Context(), chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func OrderCurrent(ctrl OrderLifecycle, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctrl == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order controller unavailable"))
			return
		}
		responses.WriteSuccess(w, ctrl.View())
	}
}

type confirmRequest struct {
	Confirm bool `json:"confirm"`
}

func OrderPay(ctrl OrderLifecycle, logg *logger.Logger) http.HandlerFunc {
	return orderAction(ctrl, logg, OrderLifecycle.Pay)
}

func OrderCancel(ctrl OrderLifecycle, logg *logger.Logger) http.HandlerFunc {
	return orderAction(ctrl, logg, OrderLifecycle.Cancel)
}

func orderAction(ctrl OrderLifecycle, logg *logger.Logger, act func(OrderLifecycle, context.Context, bool) (orders.View, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctrl == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order controller unavailable"))
			return
		}

		var payload confirmRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := act(ctrl, r.Context(), payload.Confirm)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// OrderStop stops tracking without touching the order on the server.
func OrderStop(ctrl OrderLifecycle, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctrl == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order controller unavailable"))
			return
		}
		ctrl.Reset()
		responses.WriteSuccess(w, ctrl.View())
	}
}
