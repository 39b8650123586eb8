package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vladislavdragonenkov/rahmet/internal/health"
	"github.com/vladislavdragonenkov/rahmet/internal/metrics"
	"github.com/vladislavdragonenkov/rahmet/internal/mockapi"
	"github.com/vladislavdragonenkov/rahmet/internal/version"
)

const shutdownTimeout = 5 * time.Second

// RunMockAPI поднимает локальный API ресторанов на cfg.MockAddr и работает до отмены ctx.
func RunMockAPI(ctx context.Context, cfg Config, logger *log.Entry) error {
	if logger == nil {
		logger = log.WithField("component", "mock-api")
	}

	lis, err := net.Listen("tcp", cfg.MockAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.MockAddr, err)
	}
	return ServeMockAPI(ctx, lis, mockapi.NewSeededStore(), logger)
}

// ServeMockAPI обслуживает mock API на готовом listener.
// Возвращает nil после штатной остановки по ctx.
func ServeMockAPI(ctx context.Context, lis net.Listener, store *mockapi.Store, logger *log.Entry) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	healthHandler := health.NewHandler(version.GetVersion())
	healthHandler.RegisterChecker("catalog", health.NewFuncChecker("catalog", func(context.Context) error {
		if len(store.Restaurants()) == 0 {
			return errors.New("catalog is empty")
		}
		return nil
	}))

	router := mockapi.NewRouter(store,
		mockapi.WithLogger(logger),
		mockapi.WithHTTPMetrics(metrics.NewHTTPMetrics(registry)),
		mockapi.WithHealth(healthHandler),
		mockapi.WithMetricsHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
	)

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("mock API слушает %s", lis.Addr())
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve mock api: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("получен сигнал остановки, останавливаем mock API")
		shutdownHTTP(srv, logger)
		return nil
	})

	return g.Wait()
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *health.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", health.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez", addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// StartMetricsServer публикует метрики и health-проверки клиента на cfg.MetricsAddr
// до отмены ctx.
func (d *Dependencies) StartMetricsServer(ctx context.Context) {
	if d.Config.MetricsAddr == "" {
		return
	}
	startMetricsServer(ctx, d.Config.MetricsAddr, d.Logger, d.Health)
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http server shutdown with error")
	}
}
