package mockapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/rahmet/internal/domain"
	"github.com/vladislavdragonenkov/rahmet/internal/health"
	"github.com/vladislavdragonenkov/rahmet/internal/metrics"
)

const requestTimeout = 30 * time.Second

// Options задаёт зависимости роутера.
type Options struct {
	Logger         *log.Entry
	HTTPMetrics    *metrics.HTTPMetrics
	Health         *health.Handler
	MetricsHandler http.Handler
}

// Option настраивает роутер.
type Option func(*Options)

// WithLogger задаёт logger запросов.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithHTTPMetrics включает сбор HTTP-метрик.
func WithHTTPMetrics(m *metrics.HTTPMetrics) Option {
	return func(opts *Options) {
		opts.HTTPMetrics = m
	}
}

// WithHealth подключает /healthz и /readyz.
func WithHealth(h *health.Handler) Option {
	return func(opts *Options) {
		opts.Health = h
	}
}

// WithMetricsHandler монтирует обработчик /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(opts *Options) {
		opts.MetricsHandler = h
	}
}

type handler struct {
	store  *Store
	logger *log.Entry
}

// NewRouter собирает chi-роутер удалённого API.
func NewRouter(store *Store, options ...Option) http.Handler {
	opts := Options{}
	for _, option := range options {
		if option != nil {
			option(&opts)
		}
	}
	if opts.Logger == nil {
		opts.Logger = log.New().WithField("component", "mock-api")
	}

	h := &handler{store: store, logger: opts.Logger}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(opts.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(requestTimeout))
	if opts.HTTPMetrics != nil {
		r.Use(opts.HTTPMetrics.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/livez", health.LivenessHandler)
	if opts.Health != nil {
		r.Get("/healthz", opts.Health.ServeHTTP)
		r.Get("/readyz", opts.Health.ReadinessHandler)
	}
	if opts.MetricsHandler != nil {
		r.Handle("/metrics", opts.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/restaurants", h.listRestaurants)
		r.Get("/restaurants/{restaurantID}", h.getRestaurant)
		r.Get("/restaurants/{restaurantID}/products", h.listProducts)
		r.Post("/orders", h.createOrder)
	})

	return r
}

func (h *handler) listRestaurants(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Restaurants())
}

func (h *handler) getRestaurant(w http.ResponseWriter, r *http.Request) {
	id, ok := restaurantIDParam(w, r)
	if !ok {
		return
	}

	restaurant, err := h.store.Restaurant(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Ресторан не найден")
		return
	}
	writeJSON(w, http.StatusOK, restaurant)
}

func (h *handler) listProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := restaurantIDParam(w, r)
	if !ok {
		return
	}

	products, err := h.store.Products(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Ресторан не найден")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректное тело запроса")
		return
	}

	number, err := h.store.PlaceOrder(req)
	if err != nil {
		h.logger.WithError(err).WithField("products", len(req.Products)).Info("order rejected")
		writeError(w, http.StatusBadRequest, rejectionMessage(err))
		return
	}

	h.logger.WithFields(log.Fields{
		"order":    number,
		"products": len(req.Products),
	}).Info("order accepted")
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Заказ #%d успешно создан", number),
	})
}

func rejectionMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrProductsRequired):
		return "Корзина пуста"
	case errors.Is(err, domain.ErrQuantityInvalid):
		return "Количество должно быть больше нуля"
	case errors.Is(err, domain.ErrRestaurantNotFound):
		return "Ресторан не найден"
	case errors.Is(err, domain.ErrProductNotFound):
		return "Блюдо не найдено в меню"
	default:
		return err.Error()
	}
}

func restaurantIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "restaurantID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Некорректный ID ресторана")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// requestLogger пишет по строке logrus на каждый запрос.
func requestLogger(logger *log.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.WithFields(log.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  chimiddleware.GetReqID(r.Context()),
			}).Debug("http request")
		})
	}
}
