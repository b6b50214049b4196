package database

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/codeverse/backend/internal/config"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mongodb"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const migrationsCollection = "schema_migrations"

// RunMigrations applies the JSON command migrations found in cfg.MigrationsPath.
// When cfg.MigrationTimeout passes, the run stops after the migration in progress.
func RunMigrations(cfg config.MongoConfig) error {
	if _, err := os.Stat(cfg.MigrationsPath); err != nil {
		return fmt.Errorf("migrations folder not found: %w", err)
	}

	databaseURL, err := migrationURL(cfg)
	if err != nil {
		return err
	}

	m, err := migrate.New("file://"+cfg.MigrationsPath, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if cfg.MigrationTimeout > 0 {
		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-time.After(cfg.MigrationTimeout):
				m.GracefulStop <- true
			case <-done:
			}
		}()
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// migrationURL points the connection string at the configured database,
// which is where the migrate driver reads the database name from
func migrationURL(cfg config.MongoConfig) (string, error) {
	u, err := url.Parse(cfg.URI)
	if err != nil {
		return "", fmt.Errorf("invalid database URI: %w", err)
	}

	u.Path = "/" + cfg.DBName
	query := u.Query()
	query.Set("x-migrations-collection", migrationsCollection)
	if cfg.TLSInsecure && usesTLS(cfg.URI) {
		query.Set("tlsInsecure", "true")
	}
	u.RawQuery = query.Encode()

	return u.String(), nil
}
