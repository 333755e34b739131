package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/raksha-safety/raksha-backend/internal/users/domain"
)

// UserRepository stores profiles and contact lists as JSON strings.
type UserRepository struct {
	client *redis.Client
}

func NewUserRepository(client *redis.Client) *UserRepository {
	return &UserRepository{client: client}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	profileData, err := json.Marshal(u.Profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	contacts := u.EmergencyContacts
	if contacts == nil {
		contacts = []domain.Contact{}
	}
	contactsData, err := json.Marshal(contacts)
	if err != nil {
		return fmt.Errorf("failed to marshal contacts: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, profileKey(u.ID), profileData, 0)
		pipe.Set(ctx, contactsKey(u.ID), contactsData, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepository) Get(ctx context.Context, uid string) (*domain.User, error) {
	vals, err := r.client.MGet(ctx, profileKey(uid), contactsKey(uid)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if vals[0] == nil {
		return nil, domain.ErrUserNotFound
	}

	u := &domain.User{ID: uid, EmergencyContacts: []domain.Contact{}}
	if err := unmarshalValue(vals[0], &u.Profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	if vals[1] != nil {
		if err := unmarshalValue(vals[1], &u.EmergencyContacts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal contacts: %w", err)
		}
	}
	return u, nil
}

func (r *UserRepository) GetProfile(ctx context.Context, uid string) (*domain.Profile, error) {
	data, err := r.client.Get(ctx, profileKey(uid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var p domain.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return &p, nil
}

func (r *UserRepository) SaveProfile(ctx context.Context, uid string, p *domain.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := r.client.Set(ctx, profileKey(uid), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (r *UserRepository) SetContacts(ctx context.Context, uid string, contacts []domain.Contact) error {
	if contacts == nil {
		contacts = []domain.Contact{}
	}
	data, err := json.Marshal(contacts)
	if err != nil {
		return fmt.Errorf("failed to marshal contacts: %w", err)
	}

	pk := profileKey(uid)
	err = watchTx(ctx, r.client, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, pk).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrUserNotFound
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, contactsKey(uid), data, 0)
			return nil
		})
		return err
	}, pk)
	if errors.Is(err, domain.ErrUserNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to set contacts: %w", err)
	}
	return nil
}

func (r *UserRepository) GetContacts(ctx context.Context, uid string) ([]domain.Contact, error) {
	data, err := r.client.Get(ctx, contactsKey(uid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return []domain.Contact{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contacts: %w", err)
	}

	contacts := []domain.Contact{}
	if err := json.Unmarshal(data, &contacts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contacts: %w", err)
	}
	return contacts, nil
}

// unmarshalValue decodes a value returned by MGET/HMGET.
func unmarshalValue(v interface{}, dst interface{}) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("unexpected value type %T", v)
	}
	return json.Unmarshal([]byte(s), dst)
}
