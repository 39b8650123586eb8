package app

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/vladislavdragonenkov/rahmet/internal/messaging/kafka"
)

// Переменные окружения, переопределяющие файл конфигурации.
const (
	EnvAPIURL              = "RAHMET_API_URL"
	EnvAPITimeout          = "RAHMET_API_TIMEOUT"
	EnvAPIRetries          = "RAHMET_API_RETRIES"
	EnvLogLevel            = "RAHMET_LOG_LEVEL"
	EnvPostgresDSN         = "RAHMET_POSTGRES_DSN"
	EnvPostgresAutoMigrate = "RAHMET_POSTGRES_AUTO_MIGRATE"
	EnvKafkaBrokers        = "RAHMET_KAFKA_BROKERS"
	EnvKafkaTopic          = "RAHMET_KAFKA_TOPIC"
	EnvMockAddr            = "RAHMET_MOCK_ADDR"
	EnvMetricsAddr         = "RAHMET_METRICS_ADDR"
)

// lookupFunc совпадает с os.LookupEnv; в тестах подставляется map.
type lookupFunc func(key string) (string, bool)

// Config описывает настройки клиента и локального API.
type Config struct {
	APIURL     string        `yaml:"api_url"`
	APITimeout time.Duration `yaml:"api_timeout"`
	// APIRetries — число попыток чтения каталога; заказ отправляется один раз.
	APIRetries int    `yaml:"api_retries"`
	LogLevel   string `yaml:"log_level"`

	// PostgresDSN включает хранение чеков в PostgreSQL, иначе чеки хранятся в памяти.
	PostgresDSN         string `yaml:"postgres_dsn"`
	PostgresAutoMigrate bool   `yaml:"postgres_auto_migrate"`

	// KafkaBrokers включает публикацию событий заказа, без них события не отправляются.
	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`

	MockAddr    string `yaml:"mock_addr"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// DefaultConfig возвращает настройки для локального запуска против mock-api.
func DefaultConfig() Config {
	return Config{
		APIURL:              "http://localhost:8080",
		APITimeout:          15 * time.Second,
		APIRetries:          3,
		LogLevel:            "info",
		PostgresAutoMigrate: true,
		KafkaTopic:          kafka.TopicOrderEvents,
		MockAddr:            ":8080",
		MetricsAddr:         ":9090",
	}
}

// LoadConfig собирает конфигурацию: значения по умолчанию, затем YAML-файл
// (если path не пуст), затем переменные окружения. Некорректные значения
// окружения пропускаются с предупреждением.
func LoadConfig(path string) (Config, []string, error) {
	return loadConfig(path, os.LookupEnv)
}

func loadConfig(path string, lookup lookupFunc) (Config, []string, error) {
	cfg := DefaultConfig()

	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	warnings := applyEnv(&cfg, lookup)
	if err := cfg.Validate(); err != nil {
		return Config{}, warnings, err
	}
	return cfg, warnings, nil
}

func applyEnv(cfg *Config, lookup lookupFunc) []string {
	if lookup == nil {
		return nil
	}

	var warnings []string
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str(EnvAPIURL, &cfg.APIURL)
	str(EnvLogLevel, &cfg.LogLevel)
	str(EnvPostgresDSN, &cfg.PostgresDSN)
	str(EnvKafkaTopic, &cfg.KafkaTopic)
	str(EnvMockAddr, &cfg.MockAddr)
	str(EnvMetricsAddr, &cfg.MetricsAddr)

	if v, ok := lookup(EnvAPITimeout); ok && strings.TrimSpace(v) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil || d <= 0 {
			warnings = append(warnings, fmt.Sprintf("invalid %s=%q, using %s", EnvAPITimeout, v, cfg.APITimeout))
		} else {
			cfg.APITimeout = d
		}
	}

	if v, ok := lookup(EnvAPIRetries); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 1 {
			warnings = append(warnings, fmt.Sprintf("invalid %s=%q, using %d", EnvAPIRetries, v, cfg.APIRetries))
		} else {
			cfg.APIRetries = n
		}
	}

	if v, ok := lookup(EnvPostgresAutoMigrate); ok && strings.TrimSpace(v) != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("invalid %s=%q, using %t", EnvPostgresAutoMigrate, v, cfg.PostgresAutoMigrate))
		} else {
			cfg.PostgresAutoMigrate = b
		}
	}

	if v, ok := lookup(EnvKafkaBrokers); ok && strings.TrimSpace(v) != "" {
		cfg.KafkaBrokers = splitList(v)
	}

	return warnings
}

// Validate отклоняет конфигурации, с которыми клиент не сможет работать.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api_url must be an absolute URL, got %q", c.APIURL)
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("api_timeout must be positive, got %s", c.APITimeout)
	}
	if c.APIRetries < 1 {
		return fmt.Errorf("api_retries must be at least 1, got %d", c.APIRetries)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if strings.TrimSpace(c.MockAddr) == "" {
		return fmt.Errorf("mock_addr is required")
	}
	if len(c.KafkaBrokers) > 0 && strings.TrimSpace(c.KafkaTopic) == "" {
		return fmt.Errorf("kafka_topic is required when kafka_brokers are set")
	}
	return nil
}

// UsesPostgres сообщает, хранятся ли чеки в PostgreSQL.
func (c Config) UsesPostgres() bool {
	return strings.TrimSpace(c.PostgresDSN) != ""
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
