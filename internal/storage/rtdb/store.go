package rtdb

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"

	sosdomain "github.com/raksha-safety/raksha-backend/internal/sos/domain"
	usersdomain "github.com/raksha-safety/raksha-backend/internal/users/domain"
)

type Store struct {
	client *db.Client
	users  *UserRepository
	sos    *SOSRepository
}

// Open returns a store backed by the app's default database URL.
func Open(ctx context.Context, app *firebase.App) (*Store, error) {
	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Database client: %w", err)
	}
	return New(client), nil
}

func New(client *db.Client) *Store {
	return &Store{
		client: client,
		users:  NewUserRepository(client),
		sos:    NewSOSRepository(client),
	}
}

func (s *Store) Users() usersdomain.Repository { return s.users }
func (s *Store) SOS() sosdomain.Repository     { return s.sos }

// Ping reads a node that is never written; a null result still proves the database
// is reachable with the configured credentials.
func (s *Store) Ping(ctx context.Context) error {
	var v interface{}
	if err := s.client.NewRef("_ping").Get(ctx, &v); err != nil {
		return fmt.Errorf("rtdb ping: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return nil }
