// Package database owns the connection to the primary MongoDB store
package database

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/codeverse/backend/internal/config"
	"github.com/codeverse/backend/internal/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Supervisor lazily establishes, verifies and caches the MongoDB connection.
// It is safe for concurrent use: only one caller dials at a time, the others wait for its result.
type Supervisor struct {
	cfg    config.MongoConfig
	logger *zap.Logger

	mu          sync.Mutex
	client      *mongo.Client
	collection  *mongo.Collection
	lastFailure time.Time
	migrating   bool
	migrated    bool

	now     func() time.Time
	migrate func(cfg config.MongoConfig) error
}

// NewSupervisor creates a supervisor, no connection is made until the first EnsureConnected call
func NewSupervisor(cfg config.MongoConfig, logger *zap.Logger) *Supervisor {
	return &Supervisor{
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
		migrate: RunMigrations,
	}
}

// EnsureConnected returns Available if a verified connection exists or can be established now.
//
// A verified connection is reused without probing it again.
// After a failed attempt no new attempt is made until the retry interval has passed,
// so a down database does not add a connect timeout to every request.
func (s *Supervisor) EnsureConnected(ctx context.Context) models.Availability {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureConnected(ctx)
}

func (s *Supervisor) ensureConnected(ctx context.Context) models.Availability {
	if s.client != nil {
		return models.Available
	}
	if s.cfg.URI == "" {
		return models.Unavailable
	}
	if !s.lastFailure.IsZero() && s.now().Sub(s.lastFailure) < s.cfg.RetryInterval {
		return models.Unavailable
	}

	if err := s.connect(ctx); err != nil {
		s.lastFailure = s.now()
		s.logger.Warn("failed to connect to database", zap.Error(err))
		return models.Unavailable
	}
	s.lastFailure = time.Time{}
	s.logger.Info("connected to database",
		zap.String("database", s.cfg.DBName),
		zap.String("collection", s.cfg.Collection),
	)

	s.startMigrations()
	return models.Available
}

// startMigrations applies pending migrations in the background once per process.
// Must be called with s.mu held; the migration itself runs without it, so requests keep being served.
func (s *Supervisor) startMigrations() {
	if s.cfg.MigrationsPath == "" || s.migrated || s.migrating {
		return
	}
	s.migrating = true

	go func() {
		err := s.migrate(s.cfg)

		s.mu.Lock()
		defer s.mu.Unlock()
		s.migrating = false
		if err != nil {
			s.logger.Error("failed to run database migrations", zap.Error(err))
			return
		}
		s.migrated = true
		s.logger.Info("database migrations applied")
	}()
}

// connect dials the database and pings it. A client that fails the ping is disconnected and dropped.
func (s *Supervisor) connect(ctx context.Context) error {
	opts := options.Client().
		ApplyURI(s.cfg.URI).
		SetConnectTimeout(s.cfg.ConnectTimeout).
		SetServerSelectionTimeout(s.cfg.ConnectTimeout)
	if s.cfg.TLSInsecure && usesTLS(s.cfg.URI) {
		// Accept certificates that do not verify, the deployment runs behind self-signed proxies
		opts.SetTLSConfig(&tls.Config{InsecureSkipVerify: true})
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		s.disconnect(client)
		return fmt.Errorf("failed to ping database: %w", err)
	}

	s.client = client
	s.collection = client.Database(s.cfg.DBName).Collection(s.cfg.Collection)
	return nil
}

// Collection returns the tutorials collection, connecting first if needed.
// Returns ErrUnavailable if no connection can be established.
func (s *Supervisor) Collection(ctx context.Context) (*mongo.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ensureConnected(ctx) != models.Available {
		return nil, models.ErrUnavailable
	}
	return s.collection, nil
}

// Ping probes the current connection.
// A failed probe drops the connection, so the next EnsureConnected dials again once the retry interval allows it.
func (s *Supervisor) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		if s.ensureConnected(ctx) != models.Available {
			return models.ErrUnavailable
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ConnectTimeout)
	defer cancel()

	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		s.logger.Warn("database ping failed, dropping connection", zap.Error(err))
		s.disconnect(s.client)
		s.client = nil
		s.collection = nil
		s.lastFailure = s.now()
		return fmt.Errorf("%w: %w", models.ErrUnavailable, err)
	}
	return nil
}

// Close disconnects from the database
func (s *Supervisor) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil
	}
	err := s.client.Disconnect(ctx)
	s.client = nil
	s.collection = nil
	if err != nil {
		return fmt.Errorf("failed to disconnect from database: %w", err)
	}
	return nil
}

// usesTLS reports whether the connection string asks for TLS.
// SRV records (Atlas) default to TLS, plain hosts only with tls=true or ssl=true.
func usesTLS(uri string) bool {
	u, err := url.Parse(uri)
	if err != nil {
		return false
	}
	query := u.Query()
	for _, key := range []string{"tls", "ssl"} {
		if value := query.Get(key); value != "" {
			return strings.EqualFold(value, "true")
		}
	}
	return u.Scheme == "mongodb+srv"
}

func (s *Supervisor) disconnect(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ConnectTimeout)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		s.logger.Debug("failed to disconnect client", zap.Error(err))
	}
}
