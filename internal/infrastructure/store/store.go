// Package store opens the configured persistence backend and exposes its
// repositories behind the domain interfaces.
package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"findash/internal/domain/category"
	"findash/internal/domain/transaction"
	"findash/internal/domain/user"
	"findash/internal/infrastructure/memory"
	"findash/internal/infrastructure/mongo"
	"findash/internal/infrastructure/postgres"
	"findash/internal/shared/config"
)

// Store bundles the repositories of one backend.
type Store struct {
	Backend      string
	Transactions transaction.Repository
	Categories   category.Repository
	Users        user.Repository

	// Pinger is nil for the in-memory backend.
	Pinger interface {
		Ping(ctx context.Context) error
	}

	closers []func(context.Context) error
}

// Open connects to cfg.Store.Backend. Postgres migrations run first when
// cfg.Database.MigrateOnStart is set; Mongo indexes are always ensured.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	loc := cfg.Reporting.Location

	switch cfg.Store.Backend {
	case "postgres":
		if cfg.Database.MigrateOnStart {
			if err := postgres.Migrate(cfg.Database.URL()); err != nil {
				return nil, err
			}
			log.Info().Msg("database migrations applied")
		}

		db, err := postgres.New(cfg.Database.ConnectionString(), loc)
		if err != nil {
			return nil, err
		}
		log.Info().Str("host", cfg.Database.Host).Str("database", cfg.Database.DBName).Msg("connected to postgres")

		return &Store{
			Backend:      cfg.Store.Backend,
			Transactions: postgres.NewTransactionRepository(db),
			Categories:   postgres.NewCategoryRepository(db),
			Users:        postgres.NewUserRepository(db),
			Pinger:       db,
			closers:      []func(context.Context) error{func(context.Context) error { return db.Close() }},
		}, nil

	case "mongo":
		client, err := mongo.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, loc)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureIndexes(ctx); err != nil {
			_ = client.Close(ctx)
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")

		return &Store{
			Backend:      cfg.Store.Backend,
			Transactions: mongo.NewTransactionRepository(client),
			Categories:   mongo.NewCategoryRepository(client),
			Users:        mongo.NewUserRepository(client),
			Pinger:       client,
			closers:      []func(context.Context) error{client.Close},
		}, nil

	case "memory":
		db := memory.NewDB(loc)
		log.Warn().Msg("using in-memory store, data is lost on exit")

		return &Store{
			Backend:      cfg.Store.Backend,
			Transactions: memory.NewTransactionRepository(db),
			Categories:   memory.NewCategoryRepository(db),
			Users:        memory.NewUserRepository(db),
		}, nil
	}

	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

func (s *Store) Close(ctx context.Context) error {
	var firstErr error
	for _, c := range s.closers {
		if err := c(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
