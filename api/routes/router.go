package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/tableorder/api/controllers"
	"github.com/angelmondragon/tableorder/api/middleware"
	"github.com/angelmondragon/tableorder/internal/history"
	"github.com/angelmondragon/tableorder/pkg/config"
	"github.com/angelmondragon/tableorder/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	metricsHandler http.Handler,
	historyPinger controllers.Pinger,
	menuService controllers.MenuService,
	cartStore controllers.CartStore,
	lifecycle controllers.OrderLifecycle,
	historyStore controllers.HistoryReader,
	historyFetcher history.Fetcher,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	surcharge := cfg.Tracking.SurchargePercent

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, historyPinger))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/menus", func(r chi.Router) {
			r.Get("/", controllers.MenuList(menuService, logg))
			r.Get("/{menuId}", controllers.MenuDetail(menuService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartView(cartStore, surcharge, logg))
			r.Post("/items", controllers.CartAddItem(cartStore, menuService, surcharge, logg))
			r.Patch("/items/{itemId}", controllers.CartSetQuantity(cartStore, surcharge, logg))
			r.Post("/items/{itemId}/decrement", controllers.CartDecrement(cartStore, surcharge, logg))
			r.Delete("/items/{itemId}", controllers.CartRemoveItem(cartStore, surcharge, logg))
		})

		r.Post("/checkout", controllers.Checkout(lifecycle, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/current", controllers.OrderCurrent(lifecycle, logg))
			r.Delete("/current", controllers.OrderStop(lifecycle, logg))
			r.Post("/current/pay", controllers.OrderPay(lifecycle, logg))
			r.Post("/current/cancel", controllers.OrderCancel(lifecycle, logg))
			r.Post("/{orderId}/track", controllers.OrderTrack(lifecycle, logg))
		})

		r.Get("/history", controllers.HistoryList(historyStore, historyFetcher, logg))
	})

	return r
}
