package bootstrap

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"

	"github.com/raksha-safety/raksha-backend/config"
	"github.com/raksha-safety/raksha-backend/internal/storage/postgres"
	"github.com/raksha-safety/raksha-backend/internal/storage/redisstore"
	"github.com/raksha-safety/raksha-backend/internal/storage/rtdb"
	sosdomain "github.com/raksha-safety/raksha-backend/internal/sos/domain"
	usersdomain "github.com/raksha-safety/raksha-backend/internal/users/domain"
)

// Store is the persistence backend shared by the user and SOS services.
type Store interface {
	Users() usersdomain.Repository
	SOS() sosdomain.Repository
	Ping(ctx context.Context) error
	Close() error
}

// OpenStore connects the backend named by cfg.Store.Backend. Any failure here
// is fatal for startup; there is no fallback store.
func OpenStore(ctx context.Context, cfg *config.Config, app *firebase.App) (Store, error) {
	switch cfg.Store.Backend {
	case config.BackendFirebase:
		if app == nil {
			return nil, fmt.Errorf("firebase store requires an initialized app")
		}
		st, err := rtdb.Open(ctx, app)
		if err != nil {
			return nil, err
		}
		return st, nil

	case config.BackendRedis:
		st, err := redisstore.Open(ctx, &cfg.Redis)
		if err != nil {
			return nil, err
		}
		return st, nil

	case config.BackendPostgres:
		pool, err := OpenDB(ctx, DBOptions{
			DSN:      cfg.Database.DSN,
			MaxConns: int32(cfg.Database.MaxConns),
			MinConns: int32(cfg.Database.MinConns),
		})
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		return postgres.New(pool), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
