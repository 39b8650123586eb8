package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/migrations/*.sql
var migrationsFS embed.FS

// MigrationStatus описывает текущее состояние схемы.
type MigrationStatus struct {
	Version uint
	Dirty   bool
	// Applied=false, если ни одна миграция ещё не применялась.
	Applied bool
}

// MigrateUp применяет up-миграции.
// steps=0 означает "применить все доступные".
func (s *Store) MigrateUp(ctx context.Context, steps int) error {
	m, closeFn, err := s.migrator(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	if steps > 0 {
		err = m.Steps(steps)
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// MigrateDown откатывает миграции.
// steps<=0 интерпретируется как 1 шаг для безопасного поведения.
func (s *Store) MigrateDown(ctx context.Context, steps int) error {
	if steps <= 0 {
		steps = 1
	}

	m, closeFn, err := s.migrator(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// MigrationVersion возвращает текущую версию схемы.
func (s *Store) MigrationVersion(ctx context.Context) (MigrationStatus, error) {
	m, closeFn, err := s.migrator(ctx)
	if err != nil {
		return MigrationStatus{}, err
	}
	defer closeFn()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return MigrationStatus{}, nil
	}
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("migration version: %w", err)
	}

	return MigrationStatus{Version: version, Dirty: dirty, Applied: true}, nil
}

// migrator работает на выделенном соединении из пула стора; closeFn
// возвращает соединение, не закрывая сам *sql.DB.
func (s *Store) migrator(ctx context.Context) (*migrate.Migrate, func(), error) {
	if s == nil || s.db == nil {
		return nil, nil, errStoreNotInitialized
	}

	source, err := iofs.New(migrationsFS, "sql/migrations")
	if err != nil {
		return nil, nil, fmt.Errorf("create migration source: %w", err)
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("acquire db connection: %w", err)
	}

	driver, err := pgxmigrate.WithConnection(ctx, conn, &pgxmigrate.Config{})
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		_ = driver.Close()
		return nil, nil, fmt.Errorf("create migrate instance: %w", err)
	}

	closeFn := func() {
		_, _ = m.Close()
	}
	return m, closeFn, nil
}
