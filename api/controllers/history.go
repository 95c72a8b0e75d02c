package controllers

import (
	"net/http"

	"github.com/angelmondragon/tableorder/api/responses"
	"github.com/angelmondragon/tableorder/internal/history"
	pkgerrors "github.com/angelmondragon/tableorder/pkg/errors"
	"github.com/angelmondragon/tableorder/pkg/logger"
)

// HistoryList refreshes the session history from the backend and returns the
// orders still awaiting payment, newest first.
func HistoryList(store HistoryReader, fetcher history.Fetcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "history unavailable"))
			return
		}

		entries := store.Reconcile(r.Context(), fetcher)
		if entries == nil {
			entries = []history.Entry{}
		}
		responses.WriteSuccess(w, entries)
	}
}
