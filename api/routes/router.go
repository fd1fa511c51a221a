package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arjunmehta/desikart-backend/api/controllers"
	webhookcontrollers "github.com/arjunmehta/desikart-backend/api/controllers/webhooks"
	"github.com/arjunmehta/desikart-backend/api/middleware"
	cartsvc "github.com/arjunmehta/desikart-backend/internal/cart"
	"github.com/arjunmehta/desikart-backend/internal/catalog"
	checkoutsvc "github.com/arjunmehta/desikart-backend/internal/checkout"
	"github.com/arjunmehta/desikart-backend/internal/invoices"
	ordersvc "github.com/arjunmehta/desikart-backend/internal/orders"
	"github.com/arjunmehta/desikart-backend/internal/payments"
	"github.com/arjunmehta/desikart-backend/pkg/config"
	"github.com/arjunmehta/desikart-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	sessionManager middleware.SessionMinter,
	catalogService catalog.Service,
	cartService cartsvc.Service,
	checkoutService checkoutsvc.Service,
	ordersService ordersvc.Service,
	invoicesService invoices.Service,
	paymentsService payments.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/razorpay", webhookcontrollers.RazorpayConfirm(paymentsService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(catalogService, logg))
			r.Get("/{productRef}", controllers.ProductDetail(catalogService, logg))
		})
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(catalogService, logg))
			r.Get("/{slug}", controllers.CategoryDetail(catalogService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.CartSession(sessionManager, cfg.Session, cfg.App.IsProd(), logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(cartService, logg))
				r.Delete("/", controllers.CartClear(cartService, logg))
				r.Post("/items", controllers.CartAddItem(cartService, logg))
				r.Put("/items/{productId}", controllers.CartUpdateItem(cartService, logg))
				r.Delete("/items/{productId}", controllers.CartRemoveItem(cartService, logg))
			})

			r.Post("/checkout", controllers.Checkout(checkoutService, logg))
			r.Post("/checkout/direct", controllers.CheckoutDirect(checkoutService, logg))

			// Client-side callback after the gateway widget completes. Shares
			// the webhook transition, so either path can land first.
			r.Post("/payments/confirm", webhookcontrollers.RazorpayConfirm(paymentsService, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrderList(ordersService, logg))
				r.Get("/{orderId}", controllers.OrderDetail(ordersService, logg))
				r.Get("/{orderId}/invoice", controllers.OrderInvoice(invoicesService, logg))
				r.Post("/{orderId}/pay", controllers.CheckoutReopen(checkoutService, logg))
			})
		})
	})

	return r
}
