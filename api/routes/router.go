package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/chokistore/backend/api/controllers"
	"github.com/chokistore/backend/api/middleware"
	"github.com/chokistore/backend/internal/checkout"
	"github.com/chokistore/backend/internal/landings"
	"github.com/chokistore/backend/internal/ledger"
	"github.com/chokistore/backend/internal/notifications"
	"github.com/chokistore/backend/internal/orders"
	product "github.com/chokistore/backend/internal/products"
	"github.com/chokistore/backend/internal/promotions"
	"github.com/chokistore/backend/internal/users"
	"github.com/chokistore/backend/pkg/config"
	"github.com/chokistore/backend/pkg/db"
	"github.com/chokistore/backend/pkg/enums"
	"github.com/chokistore/backend/pkg/logger"
	"github.com/chokistore/backend/pkg/metrics"
	pkgredis "github.com/chokistore/backend/pkg/redis"
)

// RedisStore is the slice of the redis client the HTTP layer needs.
type RedisStore interface {
	pkgredis.IdempotencyStore
	Ping(context.Context) error
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Services groups everything the router mounts.
type Services struct {
	Products      product.Service
	Promotions    promotions.Service
	Users         users.Service
	Checkout      checkout.Service
	Orders        orders.Service
	Ledger        ledger.Service
	Notifications notifications.Service
	Landings      landings.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisStore RedisStore,
	gatherer prometheus.Gatherer,
	svc Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	limit := func(name string) func(http.Handler) http.Handler {
		return middleware.RateLimit(middleware.RateLimitPolicy{
			Name:      name,
			Window:    cfg.RateLimit.Window,
			UserLimit: cfg.RateLimit.UserLimit,
			IPLimit:   cfg.RateLimit.IPLimit,
		}, redisStore, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisStore))
	})
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(gatherer))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/products", controllers.PublicListProducts(svc.Products, logg))
		r.Get("/products/{productId}", controllers.PublicGetProduct(svc.Products, logg))
		r.Get("/promotions", controllers.PublicActivePromotions(svc.Promotions, logg))
		r.Get("/landings/{slug}", controllers.PublicGetLanding(svc.Landings, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisStore, logg))

		r.Get("/me", controllers.GetMe(svc.Users, logg))
		r.Put("/me", controllers.UpdateMe(svc.Users, logg))

		r.Post("/cart/quote", controllers.CartQuote(svc.Checkout, logg))
		r.Post("/checkout/preview", controllers.CheckoutPreview(svc.Checkout, logg))
		r.With(limit("checkout")).Post("/checkout", controllers.Checkout(svc.Checkout, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(svc.Orders, logg))
			r.Get("/{orderId}", controllers.GetOrder(svc.Orders, logg))
			r.Delete("/{orderId}", controllers.HideOrder(svc.Orders, logg))
			r.Post("/{orderId}/cancel", controllers.CancelOrder(svc.Orders, logg))
		})

		r.Route("/loyalty", func(r chi.Router) {
			r.Get("/", controllers.LoyaltyBalance(svc.Ledger, logg))
			r.Get("/ledger", controllers.LoyaltyLedger(svc.Ledger, logg))
			r.With(limit("redemptions")).Post("/redemptions", controllers.Redeem(svc.Orders, logg))
		})

		r.Get("/notifications", controllers.ListNotifications(svc.Notifications, logg))

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.AdminListProducts(svc.Products, logg))
				r.Post("/", controllers.AdminCreateProduct(svc.Products, logg))
				r.Patch("/{productId}", controllers.AdminUpdateProduct(svc.Products, logg))
				r.Delete("/{productId}", controllers.AdminDeleteProduct(svc.Products, logg))
			})
			r.Route("/promotions", func(r chi.Router) {
				r.Get("/", controllers.AdminListPromotions(svc.Promotions, logg))
				r.Post("/", controllers.AdminCreatePromotion(svc.Promotions, logg))
				r.Get("/{promotionId}", controllers.AdminGetPromotion(svc.Promotions, logg))
				r.Patch("/{promotionId}", controllers.AdminUpdatePromotion(svc.Promotions, logg))
				r.Delete("/{promotionId}", controllers.AdminDeletePromotion(svc.Promotions, logg))
			})
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminListOrders(svc.Orders, logg))
				r.Get("/{orderId}", controllers.AdminGetOrder(svc.Orders, logg))
				r.Post("/{orderId}/status", controllers.AdminUpdateOrderStatus(svc.Orders, logg))
			})
			r.Route("/landings", func(r chi.Router) {
				r.Get("/", controllers.AdminListLandings(svc.Landings, logg))
				r.Post("/", controllers.AdminCreateLanding(svc.Landings, logg))
				r.Get("/{landingId}", controllers.AdminGetLanding(svc.Landings, logg))
				r.Patch("/{landingId}", controllers.AdminUpdateLanding(svc.Landings, logg))
				r.Delete("/{landingId}", controllers.AdminDeleteLanding(svc.Landings, logg))
			})
		})
	})

	return r
}
