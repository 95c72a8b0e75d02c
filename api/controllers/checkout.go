package controllers

import (
	"net/http"

	"github.com/angelmondragon/tableorder/api/responses"
	"github.com/angelmondragon/tableorder/api/validators"
	"github.com/angelmondragon/tableorder/internal/orders"
	"github.com/angelmondragon/tableorder/pkg/checkout"
	pkgerrors "github.com/angelmondragon/tableorder/pkg/errors"
	"github.com/angelmondragon/tableorder/pkg/logger"
	"github.com/angelmondragon/tableorder/pkg/orderapi"
)

const maxNoteLength = 500

type checkoutRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Note  string `json:"note"`
}

type checkoutResponse struct {
	Order         *orderapi.Order `json:"order"`
	Tracking      orders.View     `json:"tracking"`
	TrackingError *string         `json:"tracking_error,omitempty"`
}

// Checkout submits the payment form and starts tracking the new order. Form
// rules live in the lifecycle controller so every field error comes back in
// one validation response.
func Checkout(ctrl OrderLifecycle, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctrl == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order controller unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := ctrl.Submit(r.Context(), orders.Submission{Customer: checkout.Customer{
			Name:  payload.Name,
			Phone: checkout.DigitsOnly(payload.Phone),
			Email: payload.Email,
			Note:  validators.SanitizeString(payload.Note, maxNoteLength),
		}})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := checkoutResponse{Order: order}
		view, err := ctrl.BeginTracking(r.Context(), order.ID.String())
		if err != nil {
			// The order exists; the UI retries through the track route.
			if logg != nil {
				logg.WarnErr(logg.WithOrderID(r.Context(), order.ID.String()), "tracking did not start after checkout", err)
			}
			msg := pkgerrors.MetadataFor(pkgerrors.CodeOf(err)).PublicMessage
			resp.TrackingError = &msg
			view = ctrl.View()
		}
		resp.Tracking = view
		responses.WriteSuccessStatus(w, http.StatusCreated, resp)
	}
}
