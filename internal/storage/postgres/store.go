// Package postgres хранит чеки оформленных заказов в PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var errStoreNotInitialized = errors.New("postgres store is not initialized")

// StoreOptions задаёт параметры пула. Клиент держит одну сессию,
// поэтому пул по умолчанию небольшой.
type StoreOptions struct {
	ConnTimeout     time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// StoreOption изменяет StoreOptions.
type StoreOption func(*StoreOptions)

// WithConnTimeout ограничивает время Ping при открытии и в health-проверках.
func WithConnTimeout(d time.Duration) StoreOption {
	return func(o *StoreOptions) {
		o.ConnTimeout = d
	}
}

// WithPoolSize задаёт максимальное число открытых и простаивающих соединений.
func WithPoolSize(open, idle int) StoreOption {
	return func(o *StoreOptions) {
		o.MaxOpenConns = open
		o.MaxIdleConns = idle
	}
}

func defaultStoreOptions() StoreOptions {
	return StoreOptions{
		ConnTimeout:     5 * time.Second,
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

// Store — подключение к базе чеков.
type Store struct {
	db          *sql.DB
	connTimeout time.Duration
}

// Open подключается через pgx и проверяет доступность базы.
func Open(ctx context.Context, dsn string, opts ...StoreOption) (*Store, error) {
	options := defaultStoreOptions()
	for _, opt := range opts {
		opt(&options)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	db.SetMaxOpenConns(options.MaxOpenConns)
	db.SetMaxIdleConns(options.MaxIdleConns)
	db.SetConnMaxLifetime(options.ConnMaxLifetime)

	store := &Store{db: db, connTimeout: options.ConnTimeout}
	if err := store.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return store, nil
}

// DB нужен миграциям и тестам.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errStoreNotInitialized
	}
	if s.connTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.connTimeout)
		defer cancel()
	}
	return s.db.PingContext(ctx)
}

// EnsureSchema применяет все up-миграции. Вызывается при старте клиента,
// если включён postgres_auto_migrate.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return s.MigrateUp(ctx, 0)
}

// Close безопасен для nil.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
