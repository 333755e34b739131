package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raksha-safety/raksha-backend/internal/users/domain"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	profileJSON, err := json.Marshal(u.Profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	contacts := u.EmergencyContacts
	if contacts == nil {
		contacts = []domain.Contact{}
	}
	contactsJSON, err := json.Marshal(contacts)
	if err != nil {
		return fmt.Errorf("failed to marshal contacts: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO users (id, profile, emergency_contacts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
	`, u.ID, profileJSON, contactsJSON, u.Profile.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepository) Get(ctx context.Context, uid string) (*domain.User, error) {
	var profileJSON, contactsJSON []byte
	err := r.pool.QueryRow(ctx, `
		SELECT profile, emergency_contacts FROM users WHERE id = $1
	`, uid).Scan(&profileJSON, &contactsJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u := &domain.User{ID: uid, EmergencyContacts: []domain.Contact{}}
	if err := json.Unmarshal(profileJSON, &u.Profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	if len(contactsJSON) > 0 {
		if err := json.Unmarshal(contactsJSON, &u.EmergencyContacts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal contacts: %w", err)
		}
	}
	return u, nil
}

func (r *UserRepository) GetProfile(ctx context.Context, uid string) (*domain.Profile, error) {
	var profileJSON []byte
	err := r.pool.QueryRow(ctx, `SELECT profile FROM users WHERE id = $1`, uid).Scan(&profileJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var p domain.Profile
	if err := json.Unmarshal(profileJSON, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return &p, nil
}

func (r *UserRepository) SaveProfile(ctx context.Context, uid string, p *domain.Profile) error {
	profileJSON, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET profile = $2, updated_at = now() WHERE id = $1
	`, uid, profileJSON)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetContacts(ctx context.Context, uid string, contacts []domain.Contact) error {
	if contacts == nil {
		contacts = []domain.Contact{}
	}
	contactsJSON, err := json.Marshal(contacts)
	if err != nil {
		return fmt.Errorf("failed to marshal contacts: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET emergency_contacts = $2, updated_at = now() WHERE id = $1
	`, uid, contactsJSON)
	if err != nil {
		return fmt.Errorf("failed to set contacts: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) GetContacts(ctx context.Context, uid string) ([]domain.Contact, error) {
	var contactsJSON []byte
	err := r.pool.QueryRow(ctx, `SELECT emergency_contacts FROM users WHERE id = $1`, uid).Scan(&contactsJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return []domain.Contact{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contacts: %w", err)
	}

	contacts := []domain.Contact{}
	if len(contactsJSON) > 0 {
		if err := json.Unmarshal(contactsJSON, &contacts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal contacts: %w", err)
		}
	}
	return contacts, nil
}
