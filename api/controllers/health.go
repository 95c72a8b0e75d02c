package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/tableorder/api/responses"
	"github.com/angelmondragon/tableorder/pkg/config"
	pkgerrors "github.com/angelmondragon/tableorder/pkg/errors"
	"github.com/angelmondragon/tableorder/pkg/logger"
)

const readinessTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Tableorder-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live", "table": cfg.Kiosk.TableNumber})
	}
}

// HealthReady pings the history backend. The memory driver has nothing to ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, history Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Tableorder-Env", cfg.App.Env)
		if history != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
			defer cancel()
			if err := history.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "history storage unreachable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready", "history": cfg.History.Driver})
	}
}
