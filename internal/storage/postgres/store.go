package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	sosdomain "github.com/raksha-safety/raksha-backend/internal/sos/domain"
	usersdomain "github.com/raksha-safety/raksha-backend/internal/users/domain"
)

type Store struct {
	pool  *pgxpool.Pool
	users *UserRepository
	sos   *SOSRepository
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:  pool,
		users: NewUserRepository(pool),
		sos:   NewSOSRepository(pool),
	}
}

func (s *Store) Users() usersdomain.Repository { return s.users }
func (s *Store) SOS() sosdomain.Repository     { return s.sos }

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
