// Package authtest provides an in-memory IdentityProvider for tests.
package authtest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/raksha-safety/raksha-backend/internal/auth"
)

const idTokenPrefix = "id-token-"

var ErrInvalidToken = errors.New("token is invalid or expired")

// Fake implements auth.IdentityProvider. Set the *Err fields to force failures.
type Fake struct {
	mu       sync.Mutex
	accounts map[string]*auth.Account // by uid
	nextUID  int

	CreateErr error
	UpdateErr error
	DeleteErr error
	TokenErr  error

	Deleted []string
	Updates map[string]auth.AccountUpdate
}

func NewFake() *Fake {
	return &Fake{
		accounts: make(map[string]*auth.Account),
		Updates:  make(map[string]auth.AccountUpdate),
	}
}

// IDToken returns a bearer token that VerifyIDToken accepts for uid.
func IDToken(uid string) string {
	return idTokenPrefix + uid
}

// Seed adds an account directly and returns its uid.
func (f *Fake) Seed(a auth.NewAccount) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.add(a).UID
}

func (f *Fake) Account(uid string) (*auth.Account, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[uid]
	if !ok {
		return nil, false
	}
	cp := *a
	return &cp, true
}

func (f *Fake) CreateAccount(_ context.Context, a auth.NewAccount) (*auth.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	for _, existing := range f.accounts {
		if strings.EqualFold(existing.Email, a.Email) {
			return nil, auth.ErrEmailExists
		}
		if a.PhoneNumber != "" && existing.PhoneNumber == a.PhoneNumber {
			return nil, auth.ErrPhoneExists
		}
	}
	cp := *f.add(a)
	return &cp, nil
}

func (f *Fake) GetAccountByEmail(_ context.Context, email string) (*auth.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, a := range f.accounts {
		if strings.EqualFold(a.Email, email) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, auth.ErrAccountNotFound
}

func (f *Fake) UpdateAccount(_ context.Context, uid string, u auth.AccountUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	a, ok := f.accounts[uid]
	if !ok {
		return auth.ErrAccountNotFound
	}
	if u.DisplayName != nil {
		a.DisplayName = *u.DisplayName
	}
	if u.PhoneNumber != nil {
		a.PhoneNumber = *u.PhoneNumber
	}
	f.Updates[uid] = u
	return nil
}

func (f *Fake) DeleteAccount(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Deleted = append(f.Deleted, uid)
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	if _, ok := f.accounts[uid]; !ok {
		return auth.ErrAccountNotFound
	}
	delete(f.accounts, uid)
	return nil
}

func (f *Fake) CustomToken(_ context.Context, uid string) (string, error) {
	if f.TokenErr != nil {
		return "", f.TokenErr
	}
	return "custom-token-" + uid, nil
}

func (f *Fake) VerifyIDToken(_ context.Context, idToken string) (string, error) {
	uid, ok := strings.CutPrefix(idToken, idTokenPrefix)
	if !ok || uid == "" {
		return "", ErrInvalidToken
	}
	return uid, nil
}

func (f *Fake) add(a auth.NewAccount) *auth.Account {
	f.nextUID++
	acc := &auth.Account{
		UID:         fmt.Sprintf("uid-%d", f.nextUID),
		Email:       a.Email,
		DisplayName: a.DisplayName,
		PhoneNumber: a.PhoneNumber,
	}
	f.accounts[acc.UID] = acc
	return acc
}

var _ auth.IdentityProvider = (*Fake)(nil)
