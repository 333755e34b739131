package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/raksha-safety/raksha-backend/internal/apperr"
	"github.com/raksha-safety/raksha-backend/internal/auth"
	"github.com/raksha-safety/raksha-backend/internal/logging"
	"github.com/raksha-safety/raksha-backend/internal/outbound"
	"github.com/raksha-safety/raksha-backend/internal/users/domain"
	"github.com/raksha-safety/raksha-backend/internal/validation"
)

const invalidContactMessage = "Each contact must have 'name' and 'phone'"

// AccountUpdater mirrors name and phone changes to the identity provider.
type AccountUpdater interface {
	UpdateAccount(ctx context.Context, uid string, u auth.AccountUpdate) error
}

type ProfileService struct {
	users    domain.Repository
	accounts AccountUpdater
	policy   outbound.Policy
	now      func() time.Time
}

func NewProfileService(users domain.Repository, accounts AccountUpdater, policy outbound.Policy) *ProfileService {
	return &ProfileService{
		users:    users,
		accounts: accounts,
		policy:   policy,
		now:      time.Now,
	}
}

func (s *ProfileService) GetProfile(ctx context.Context, uid string) (*domain.User, error) {
	var u *domain.User
	err := s.policy.Read(ctx, func(ctx context.Context) error {
		var err error
		u, err = s.users.Get(ctx, uid)
		return err
	}, domain.ErrUserNotFound)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, apperr.Wrap(apperr.KindNotFound, err, "User not found")
	}
	if err != nil {
		return nil, apperr.Store(err)
	}
	return u, nil
}

// UpdateProfile merges the whitelisted fields into the stored profile. Name and phone
// changes are pushed to the identity provider afterwards; a failure there is logged
// and does not undo the stored change.
func (s *ProfileService) UpdateProfile(ctx context.Context, uid string, upd domain.ProfileUpdate) (*domain.Profile, error) {
	var p *domain.Profile
	err := s.policy.Read(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.users.GetProfile(ctx, uid)
		return err
	}, domain.ErrUserNotFound)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, apperr.Wrap(apperr.KindNotFound, err, "User profile not found")
	}
	if err != nil {
		return nil, apperr.Store(err)
	}

	p.Apply(upd, s.now().UTC())
	if err := s.policy.Call(ctx, func(ctx context.Context) error {
		return s.users.SaveProfile(ctx, uid, p)
	}); err != nil {
		return nil, apperr.Store(err)
	}

	if upd.TouchesAccount() && s.accounts != nil {
		err := s.policy.Call(ctx, func(ctx context.Context) error {
			return s.accounts.UpdateAccount(ctx, uid, auth.AccountUpdate{
				DisplayName: upd.Name,
				PhoneNumber: upd.Phone,
			})
		})
		if err != nil {
			logging.FromContext(ctx).Warn("identity provider update failed; profile kept",
				zap.String("uid", uid),
				zap.Error(err),
			)
		}
	}

	return p, nil
}

// SetContacts replaces the whole list. One invalid entry rejects the write.
func (s *ProfileService) SetContacts(ctx context.Context, uid string, contacts []domain.Contact) ([]domain.Contact, error) {
	if contacts == nil {
		contacts = []domain.Contact{}
	}
	for i := range contacts {
		if err := validation.Struct(contacts[i]); err != nil {
			details := map[string]any{"index": i}
			if fields := validation.FailedFields(err); len(fields) > 0 {
				details["field"] = fields[0]
			}
			return nil, apperr.Validation(invalidContactMessage).WithDetails(details)
		}
	}

	err := s.policy.Call(ctx, func(ctx context.Context) error {
		return s.users.SetContacts(ctx, uid, contacts)
	})
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, apperr.Wrap(apperr.KindNotFound, err, "User not found")
	}
	if err != nil {
		return nil, apperr.Store(err)
	}
	return contacts, nil
}

func (s *ProfileService) GetContacts(ctx context.Context, uid string) ([]domain.Contact, error) {
	var contacts []domain.Contact
	err := s.policy.Read(ctx, func(ctx context.Context) error {
		var err error
		contacts, err = s.users.GetContacts(ctx, uid)
		return err
	})
	if err != nil {
		return nil, apperr.Store(err)
	}
	if contacts == nil {
		contacts = []domain.Contact{}
	}
	return contacts, nil
}

// InvalidContact builds the error for an entry that could not be decoded at all.
func InvalidContact(index int) error {
	return apperr.Validation(invalidContactMessage).WithDetails(map[string]any{"index": index})
}
