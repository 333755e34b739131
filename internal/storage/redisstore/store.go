package redisstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/raksha-safety/raksha-backend/config"
	sosdomain "github.com/raksha-safety/raksha-backend/internal/sos/domain"
	usersdomain "github.com/raksha-safety/raksha-backend/internal/users/domain"
)

type Store struct {
	client *redis.Client
	users  *UserRepository
	sos    *SOSRepository
}

// Open connects to Redis and verifies the connection.
func Open(ctx context.Context, cfg *config.RedisConfig) (*Store, error) {
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return New(client), nil
}

func New(client *redis.Client) *Store {
	return &Store{
		client: client,
		users:  NewUserRepository(client),
		sos:    NewSOSRepository(client),
	}
}

func (s *Store) Users() usersdomain.Repository { return s.users }
func (s *Store) SOS() sosdomain.Repository     { return s.sos }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
