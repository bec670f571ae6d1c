package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"spirit-bot/internal/metrics"
)

const serviceName = "spirit-api"

// Handler is the REST facade used by the website.
type Handler struct {
	products productService
	orders   orderService
	stats    statisticsStorage
	notifier notifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewHandler(ps productService, os orderService, stats statisticsStorage, n notifier, logger *slog.Logger) *Handler {
	return &Handler{
		products: ps,
		orders:   os,
		stats:    stats,
		notifier: n,
		logger:   logger,
		now:      time.Now,
	}
}

// Routes builds the chi router. CORS applies to /api only.
func (h *Handler) Routes(allowedOrigins []string) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(h.logRequests)
	router.Use(middleware.Recoverer)

	router.Get("/", h.handleHome)
	router.Get("/health", h.handleHealth)

	router.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}))
		r.Get("/products", h.handleListProducts)
		r.Post("/orders", h.handleCreateOrder)
		r.Get("/stats", h.handleStats)
	})

	return router
}

func (h *Handler) handleHome(w http.ResponseWriter, _ *http.Request) {
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"message": "spirit420 API is running",
		"endpoints": map[string]string{
			"products": "/api/products",
			"orders":   "/api/orders",
			"stats":    "/api/stats",
			"health":   "/health",
		},
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.respondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": serviceName,
	})
}

// logRequests logs each request and records the request metrics under the matched route pattern.
func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		code := strconv.Itoa(status)
		elapsed := time.Since(start)

		metrics.HTTPRequestDuration.WithLabelValues(r.Method, path, code).Observe(elapsed.Seconds())
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, code).Inc()

		h.logger.Debug("HTTP request",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", elapsed),
		)
	})
}
