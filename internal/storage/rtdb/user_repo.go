package rtdb

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/db"

	"github.com/raksha-safety/raksha-backend/internal/users/domain"
)

// UserRepository maps users onto users/{uid}/profile and users/{uid}/emergency_contacts.
type UserRepository struct {
	client *db.Client
}

func NewUserRepository(client *db.Client) *UserRepository {
	return &UserRepository{client: client}
}

type userNode struct {
	Profile           domain.Profile   `json:"profile"`
	EmergencyContacts []domain.Contact `json:"emergency_contacts"`
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	node := userNode{Profile: u.Profile, EmergencyContacts: u.EmergencyContacts}
	if node.EmergencyContacts == nil {
		node.EmergencyContacts = []domain.Contact{}
	}
	if err := r.client.NewRef(userPath(u.ID)).Set(ctx, node); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepository) Get(ctx context.Context, uid string) (*domain.User, error) {
	p, err := r.GetProfile(ctx, uid)
	if err != nil {
		return nil, err
	}
	contacts, err := r.GetContacts(ctx, uid)
	if err != nil {
		return nil, err
	}
	return &domain.User{ID: uid, Profile: *p, EmergencyContacts: contacts}, nil
}

func (r *UserRepository) GetProfile(ctx context.Context, uid string) (*domain.Profile, error) {
	var p *domain.Profile
	if err := r.client.NewRef(profilePath(uid)).Get(ctx, &p); err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if p == nil {
		return nil, domain.ErrUserNotFound
	}
	return p, nil
}

func (r *UserRepository) SaveProfile(ctx context.Context, uid string, p *domain.Profile) error {
	if err := r.client.NewRef(profilePath(uid)).Set(ctx, p); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (r *UserRepository) SetContacts(ctx context.Context, uid string, contacts []domain.Contact) error {
	if _, err := r.GetProfile(ctx, uid); err != nil {
		return err
	}
	if contacts == nil {
		contacts = []domain.Contact{}
	}
	if err := r.client.NewRef(contactsPath(uid)).Set(ctx, contacts); err != nil {
		return fmt.Errorf("failed to set contacts: %w", err)
	}
	return nil
}

// GetContacts returns an empty slice for a missing node; RTDB drops empty arrays on write.
func (r *UserRepository) GetContacts(ctx context.Context, uid string) ([]domain.Contact, error) {
	var contacts []domain.Contact
	if err := r.client.NewRef(contactsPath(uid)).Get(ctx, &contacts); err != nil {
		return nil, fmt.Errorf("failed to get contacts: %w", err)
	}
	if contacts == nil {
		contacts = []domain.Contact{}
	}
	return contacts, nil
}
