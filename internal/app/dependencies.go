package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/rahmet/internal/api"
	"github.com/vladislavdragonenkov/rahmet/internal/catalog"
	"github.com/vladislavdragonenkov/rahmet/internal/checkout"
	"github.com/vladislavdragonenkov/rahmet/internal/domain"
	"github.com/vladislavdragonenkov/rahmet/internal/health"
	"github.com/vladislavdragonenkov/rahmet/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/rahmet/internal/metrics"
	"github.com/vladislavdragonenkov/rahmet/internal/storage/memory"
	"github.com/vladislavdragonenkov/rahmet/internal/storage/postgres"
	"github.com/vladislavdragonenkov/rahmet/internal/version"
)

// Dependencies содержит все зависимости клиента.
type Dependencies struct {
	Config    Config
	Client    *api.Client
	Catalog   *catalog.Browser
	Receipts  domain.ReceiptRepository
	Publisher domain.EventPublisher
	Metrics   *metrics.CheckoutMetrics
	Health    *health.Handler
	Logger    *log.Entry

	store    *postgres.Store
	producer *kafka.Producer
}

// NewDependencies создаёт и инициализирует все зависимости клиента.
// Kafka необязательна: ошибка подключения только логируется.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	retry := api.DefaultRetryConfig()
	retry.MaxAttempts = cfg.APIRetries

	client, err := api.NewClient(cfg.APIURL,
		api.WithTimeout(cfg.APITimeout),
		api.WithRetry(retry),
		api.WithLogger(logger.WithField("component", "api-client")),
	)
	if err != nil {
		return nil, fmt.Errorf("create api client: %w", err)
	}

	deps := &Dependencies{
		Config:  cfg,
		Client:  client,
		Catalog: catalog.NewBrowser(client, logger.WithField("component", "catalog")),
		Metrics: metrics.NewCheckoutMetrics(),
		Health:  health.NewHandler(version.GetVersion()),
		Logger:  logger,
	}
	deps.Health.RegisterChecker("api", health.NewPingChecker("api", client))

	if err := deps.initReceipts(ctx, logger); err != nil {
		return nil, err
	}

	publisher, producer, _ := initKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	deps.Publisher = publisher
	deps.producer = producer

	return deps, nil
}

func (d *Dependencies) initReceipts(ctx context.Context, logger *log.Entry) error {
	if !d.Config.UsesPostgres() {
		d.Receipts = memory.NewReceiptRepository()
		logger.Debug("receipts are kept in memory")
		return nil
	}

	store, err := postgres.Open(ctx, d.Config.PostgresDSN)
	if err != nil {
		return fmt.Errorf("open receipts store: %w", err)
	}
	if d.Config.PostgresAutoMigrate {
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return fmt.Errorf("migrate receipts store: %w", err)
		}
	}

	d.store = store
	d.Receipts = postgres.NewReceiptRepository(store)
	d.Health.RegisterOptional("postgres", health.NewPingChecker("postgres", store))
	logger.Info("receipts are stored in postgres")
	return nil
}

// NewSession создаёт сессию оформления заказа со всеми зависимостями.
func (d *Dependencies) NewSession(opts ...checkout.Option) *checkout.Session {
	base := []checkout.Option{
		checkout.WithLogger(d.Logger.WithField("component", "checkout")),
		checkout.WithReceipts(d.Receipts),
		checkout.WithPublisher(d.Publisher),
		checkout.WithMetrics(d.Metrics),
	}
	return checkout.NewSession(d.Client, append(base, opts...)...)
}

// Close освобождает внешние подключения.
func (d *Dependencies) Close() {
	if d == nil {
		return
	}
	closeKafka(d.producer, d.Logger)
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close postgres store")
		}
	}
}
