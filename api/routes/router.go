package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/resellerhub-backend/api/controllers"
	"github.com/angelmondragon/resellerhub-backend/api/middleware"
	"github.com/angelmondragon/resellerhub-backend/internal/accounts"
	"github.com/angelmondragon/resellerhub-backend/internal/cart"
	"github.com/angelmondragon/resellerhub-backend/internal/commissions"
	"github.com/angelmondragon/resellerhub-backend/internal/levels"
	"github.com/angelmondragon/resellerhub-backend/internal/orders"
	"github.com/angelmondragon/resellerhub-backend/internal/pos"
	"github.com/angelmondragon/resellerhub-backend/pkg/config"
	"github.com/angelmondragon/resellerhub-backend/pkg/enums"
	"github.com/angelmondragon/resellerhub-backend/pkg/logger"
	"github.com/angelmondragon/resellerhub-backend/pkg/metrics"
	"github.com/angelmondragon/resellerhub-backend/pkg/redis"
)

// RouterParams carries everything the HTTP surface is wired against.
type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Redis       controllers.Pinger
	Idempotency redis.IdempotencyStore
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics

	Levels      levels.Service
	Accounts    accounts.Service
	Cart        cart.Service
	Commissions commissions.Service
	POS         pos.Service
	Orders      orders.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, p.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Get("/health/live", controllers.HealthLive(cfg))
	r.Get("/health/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
		"database": p.DB,
		"redis":    p.Redis,
	}))
	if p.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Get("/reseller-levels", controllers.ResellerLevels(p.Levels, logg))

		v1.Group(func(authed chi.Router) {
			authed.Use(
				middleware.Auth(cfg.JWT, logg),
				middleware.Idempotency(p.Idempotency, cfg.Commerce.IdempotencyTTL, logg),
			)

			authed.Get("/cart", controllers.CartList(p.Cart, logg))
			authed.Post("/cart", controllers.CartAddItem(p.Cart, logg))
			authed.Patch("/cart/items/{productId}", controllers.CartUpdateItem(p.Cart, logg))
			authed.Delete("/cart/items/{productId}", controllers.CartRemoveItem(p.Cart, logg))

			authed.Post("/checkout", controllers.Checkout(p.Orders, logg))
			authed.Get("/orders/{orderId}", controllers.GetOrder(p.Orders, logg))

			authed.Get("/commissions", controllers.ListCommissions(p.Commissions, logg))
			authed.Get("/commissions/stats", controllers.CommissionStats(p.Commissions, logg))
			authed.Post("/affiliate/enable", controllers.EnableAffiliate(p.Accounts, logg))

			authed.Group(func(cashier chi.Router) {
				cashier.Use(middleware.RequireRole(logg, enums.AccountRoleCashier))
				cashier.Post("/orders/{orderId}/payment", controllers.ProcessPayment(p.Orders, logg))
				cashier.Post("/pos/sessions", controllers.OpenPosSession(p.POS, logg))
				cashier.Get("/pos/sessions/current", controllers.CurrentPosSession(p.POS, logg))
				cashier.Post("/pos/sessions/{sessionId}/close", controllers.ClosePosSession(p.POS, logg))
				cashier.Post("/pos/orders", controllers.CreatePosOrder(p.Orders, logg))
			})

			authed.Group(func(admin chi.Router) {
				admin.Use(middleware.RequireRole(logg, enums.AccountRoleAdmin))
				admin.Post("/admin/orders/{orderId}/status", controllers.AdminUpdateOrderStatus(p.Orders, logg))
				admin.Post("/admin/commissions/pay", controllers.AdminPayCommissions(p.Commissions, logg))
				admin.Put("/admin/accounts/{accountId}/sponsor", controllers.AdminAssignSponsor(p.Accounts, logg))
			})
		})
	})

	return r
}
