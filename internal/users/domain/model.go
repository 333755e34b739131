package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

// User is the stored document for an account. ID is the identity provider uid.
type User struct {
	ID                string    `json:"user_id"`
	Profile           Profile   `json:"profile"`
	EmergencyContacts []Contact `json:"emergency_contacts"`
}

type Profile struct {
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Address     *string    `json:"address,omitempty"`
	BloodGroup  *string    `json:"blood_group,omitempty"`
	MedicalInfo *string    `json:"medical_info,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

type Contact struct {
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Relation string `json:"relation,omitempty"`
}

// ProfileUpdate lists the fields a user may change. Nil means "leave as is".
type ProfileUpdate struct {
	Name        *string `json:"name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Address     *string `json:"address,omitempty"`
	BloodGroup  *string `json:"blood_group,omitempty"`
	MedicalInfo *string `json:"medical_info,omitempty"`
}

// Apply merges u into p and stamps UpdatedAt.
func (p *Profile) Apply(u ProfileUpdate, now time.Time) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Phone != nil {
		p.Phone = *u.Phone
	}
	if u.Address != nil {
		p.Address = u.Address
	}
	if u.BloodGroup != nil {
		p.BloodGroup = u.BloodGroup
	}
	if u.MedicalInfo != nil {
		p.MedicalInfo = u.MedicalInfo
	}
	p.UpdatedAt = &now
}

// TouchesAccount reports whether the update changes fields mirrored at the identity provider.
func (u ProfileUpdate) TouchesAccount() bool {
	return u.Name != nil || u.Phone != nil
}

// Repository is the profile store.
type Repository interface {
	// Create writes a new user document with its profile and an empty contact list.
	Create(ctx context.Context, u *User) error
	// Get returns ErrUserNotFound when the user has no document.
	Get(ctx context.Context, uid string) (*User, error)
	// GetProfile returns ErrUserNotFound when the user has no profile.
	GetProfile(ctx context.Context, uid string) (*Profile, error)
	SaveProfile(ctx context.Context, uid string, p *Profile) error
	// SetContacts replaces the contact list. ErrUserNotFound when the user has no profile.
	SetContacts(ctx context.Context, uid string, contacts []Contact) error
	// GetContacts returns an empty slice when none are stored.
	GetContacts(ctx context.Context, uid string) ([]Contact, error)
}
