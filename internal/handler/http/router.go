package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/OnlineStore/internal/service"
	"github.com/utafrali/OnlineStore/pkg/health"
	"github.com/utafrali/OnlineStore/pkg/middleware"
)

// ServiceName tags metrics, traces and logs emitted by the router.
const ServiceName = "online-store"

// Services bundles the application services the API is built on.
type Services struct {
	Catalog    *service.CatalogService
	Users      *service.UserService
	Carts      *service.CartService
	Wishlists  *service.WishlistService
	Orders     *service.OrderService
	Deliveries *service.DeliveryService
	Reviews    *service.ReviewService
}

// Options carries the optional edge middleware. Nil entries are skipped.
type Options struct {
	PprofCIDRs  []string
	CORS        func(http.Handler) http.Handler
	RateLimit   func(http.Handler) http.Handler
	Idempotency func(http.Handler) http.Handler
}

// NewRouter creates a chi router with all store routes registered.
func NewRouter(svcs Services, healthHandler *health.Handler, logger *slog.Logger, opts Options) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	if opts.CORS != nil {
		r.Use(opts.CORS)
	}
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(ServiceName))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("pong"))
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, opts.PprofCIDRs, logger)

	productHandler := NewProductHandler(svcs.Catalog, logger)
	categoryHandler := NewCategoryHandler(svcs.Catalog, logger)
	userHandler := NewUserHandler(svcs.Users, svcs.Carts, svcs.Wishlists, svcs.Orders, svcs.Deliveries, logger)
	cartHandler := NewCartHandler(svcs.Carts, logger)
	wishlistHandler := NewWishlistHandler(svcs.Wishlists, logger)
	orderHandler := NewOrderHandler(svcs.Orders, logger)
	deliveryHandler := NewDeliveryHandler(svcs.Deliveries, logger)
	reviewHandler := NewReviewHandler(svcs.Reviews, logger)

	r.Route("/api/v1", func(r chi.Router) {
		if opts.RateLimit != nil {
			r.Use(opts.RateLimit)
		}
		if opts.Idempotency != nil {
			r.Use(opts.Idempotency)
		}
		r.Use(ContentTypeJSON)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.ListProducts)
			r.Post("/", productHandler.CreateProduct)
			r.Get("/{id}", productHandler.GetProduct)
			r.Get("/{id}/details", productHandler.GetProductDetails)
			r.Get("/{id}/reviews", reviewHandler.ListProductReviews)
			r.Get("/{id}/rating", reviewHandler.GetProductRating)
			r.Put("/{id}", productHandler.UpdateProduct)
			r.Put("/{id}/categories", productHandler.SetProductCategories)
			r.Delete("/{id}", productHandler.DeleteProduct)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", categoryHandler.ListCategories)
			r.Post("/", categoryHandler.CreateCategory)
			r.Get("/{id}", categoryHandler.GetCategory)
			r.Get("/{id}/products", categoryHandler.ListCategoryProducts)
			r.Put("/{id}", categoryHandler.UpdateCategory)
			r.Delete("/{id}", categoryHandler.DeleteCategory)
		})

		r.Post("/auth/login", userHandler.Login)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.ListUsers)
			r.Post("/", userHandler.CreateUser)
			r.Get("/by-username/{username}", userHandler.GetUserByUsername)
			r.Get("/{id}", userHandler.GetUser)
			r.Get("/{id}/cart", userHandler.GetUserCart)
			r.Get("/{id}/wishlist", userHandler.GetUserWishlist)
			r.Get("/{id}/orders", userHandler.ListUserOrders)
			r.Get("/{id}/deliveries", userHandler.ListUserDeliveries)
			r.Put("/{id}", userHandler.UpdateUser)
			r.Delete("/{id}", userHandler.DeleteUser)
		})

		r.Route("/carts", func(r chi.Router) {
			r.Get("/", cartHandler.ListCarts)
			r.Get("/{id}", cartHandler.GetCart)
			r.Get("/{id}/items", cartHandler.ListCartItems)
			r.Get("/{id}/total", cartHandler.GetCartTotal)
		})

		r.Route("/cart-items", func(r chi.Router) {
			r.Post("/", cartHandler.AddItem)
			r.Get("/{id}", cartHandler.GetItem)
			r.Put("/{id}", cartHandler.UpdateItem)
			r.Delete("/{id}", cartHandler.RemoveItem)
		})

		r.Route("/wishlists", func(r chi.Router) {
			r.Get("/{id}", wishlistHandler.GetWishlist)
			r.Get("/{id}/items", wishlistHandler.ListItems)
		})

		r.Route("/wishlist-items", func(r chi.Router) {
			r.Post("/", wishlistHandler.AddItem)
			r.Get("/{id}", wishlistHandler.GetItem)
			r.Put("/{id}", wishlistHandler.UpdateItem)
			r.Delete("/{id}", wishlistHandler.RemoveItem)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", orderHandler.ListOrders)
			r.Post("/", orderHandler.CreateOrder)
			r.Get("/{id}", orderHandler.GetOrder)
			r.Get("/{id}/items", orderHandler.ListOrderItems)
			r.Get("/{id}/total", orderHandler.GetOrderTotal)
			r.Post("/{id}/delivery", orderHandler.AttachDelivery)
			r.Patch("/{id}", orderHandler.UpdateOrder)
			r.Delete("/{id}", orderHandler.DeleteOrder)
		})

		r.Route("/order-items", func(r chi.Router) {
			r.Post("/", orderHandler.AddOrderItem)
			r.Get("/{id}", orderHandler.GetOrderItem)
			r.Put("/{id}", orderHandler.UpdateOrderItem)
			r.Delete("/{id}", orderHandler.DeleteOrderItem)
		})

		r.Route("/deliveries", func(r chi.Router) {
			r.Get("/", deliveryHandler.ListDeliveries)
			r.Post("/", deliveryHandler.CreateDelivery)
			r.Get("/{id}", deliveryHandler.GetDelivery)
			r.Put("/{id}", deliveryHandler.UpdateDelivery)
			r.Delete("/{id}", deliveryHandler.DeleteDelivery)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", reviewHandler.ListReviews)
			r.Post("/", reviewHandler.CreateReview)
			r.Get("/{id}", reviewHandler.GetReview)
			r.Put("/{id}", reviewHandler.UpdateReview)
			r.Delete("/{id}", reviewHandler.DeleteReview)
		})
	})

	return r
}
