package auth

import (
	"context"
	"errors"
)

var (
	ErrEmailExists     = errors.New("email already exists")
	ErrPhoneExists     = errors.New("phone number already exists")
	ErrAccountNotFound = errors.New("account not found")
)

// Account is the identity provider's view of a user.
type Account struct {
	UID         string
	Email       string
	DisplayName string
	PhoneNumber string
}

type NewAccount struct {
	Email       string
	Password    string
	DisplayName string
	PhoneNumber string
}

// AccountUpdate changes only the non-nil fields.
type AccountUpdate struct {
	DisplayName *string
	PhoneNumber *string
}

func (u AccountUpdate) Empty() bool {
	return u.DisplayName == nil && u.PhoneNumber == nil
}

// TokenVerifier turns a bearer token into the uid it was issued for.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (string, error)
}

// IdentityProvider owns credentials and account lifecycle.
// CreateAccount returns ErrEmailExists or ErrPhoneExists on duplicates.
// GetAccountByEmail returns ErrAccountNotFound for unknown emails.
type IdentityProvider interface {
	TokenVerifier
	CreateAccount(ctx context.Context, a NewAccount) (*Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	UpdateAccount(ctx context.Context, uid string, u AccountUpdate) error
	DeleteAccount(ctx context.Context, uid string) error
	CustomToken(ctx context.Context, uid string) (string, error)
}
