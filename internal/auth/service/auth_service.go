package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/raksha-safety/raksha-backend/internal/apperr"
	"github.com/raksha-safety/raksha-backend/internal/auth"
	"github.com/raksha-safety/raksha-backend/internal/auth/domain"
	"github.com/raksha-safety/raksha-backend/internal/logging"
	"github.com/raksha-safety/raksha-backend/internal/outbound"
	usersdomain "github.com/raksha-safety/raksha-backend/internal/users/domain"
)

type AuthService struct {
	idp    auth.IdentityProvider
	users  usersdomain.Repository
	policy outbound.Policy
	now    func() time.Time
}

func NewAuthService(idp auth.IdentityProvider, users usersdomain.Repository, policy outbound.Policy) *AuthService {
	return &AuthService{
		idp:    idp,
		users:  users,
		policy: policy,
		now:    time.Now,
	}
}

// Register creates the provider account, then the user record, then mints a custom token.
// If the record cannot be written the account is deleted again.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.Registration, error) {
	if !req.Complete() {
		return nil, apperr.Validation("Missing required fields").
			WithDetails(map[string]any{"required": domain.RequiredRegisterFields})
	}

	var acc *auth.Account
	err := s.policy.Call(ctx, func(ctx context.Context) error {
		var err error
		acc, err = s.idp.CreateAccount(ctx, auth.NewAccount{
			Email:       req.Email,
			Password:    req.Password,
			DisplayName: req.Name,
			PhoneNumber: req.Phone,
		})
		return err
	})
	switch {
	case errors.Is(err, auth.ErrEmailExists):
		return nil, apperr.Wrap(apperr.KindDuplicateEmail, err, "Email already exists")
	case errors.Is(err, auth.ErrPhoneExists):
		return nil, apperr.Wrap(apperr.KindDuplicatePhone, err, "Phone number already exists")
	case err != nil:
		return nil, apperr.Provider(err)
	}

	user := &usersdomain.User{
		ID: acc.UID,
		Profile: usersdomain.Profile{
			Name:      req.Name,
			Email:     req.Email,
			Phone:     req.Phone,
			CreatedAt: s.now().UTC(),
		},
		EmergencyContacts: []usersdomain.Contact{},
	}
	if err := s.policy.Call(ctx, func(ctx context.Context) error {
		return s.users.Create(ctx, user)
	}); err != nil {
		s.deleteOrphanAccount(ctx, acc.UID)
		return nil, apperr.Store(err)
	}

	token, err := s.customToken(ctx, acc.UID)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("user registered", zap.String("uid", acc.UID))
	return &domain.Registration{
		UserID: acc.UID,
		Token:  token,
		User: domain.RegisteredUser{
			Email: req.Email,
			Name:  req.Name,
			Phone: req.Phone,
		},
	}, nil
}

// Login resolves the account by email and mints a custom token.
//
// TODO: verify the password through the Identity Toolkit signInWithPassword endpoint
// before minting; today any caller who knows an email receives a token.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	if req.Email == "" || req.Password == "" {
		return nil, apperr.Validation("Email and password required")
	}

	var acc *auth.Account
	err := s.policy.Read(ctx, func(ctx context.Context) error {
		var err error
		acc, err = s.idp.GetAccountByEmail(ctx, req.Email)
		return err
	}, auth.ErrAccountNotFound)
	if errors.Is(err, auth.ErrAccountNotFound) {
		return nil, apperr.Wrap(apperr.KindNotFound, err, "User not found")
	}
	if err != nil {
		return nil, apperr.Provider(err)
	}

	token, err := s.customToken(ctx, acc.UID)
	if err != nil {
		return nil, err
	}

	var profile *usersdomain.Profile
	err = s.policy.Read(ctx, func(ctx context.Context) error {
		var err error
		profile, err = s.users.GetProfile(ctx, acc.UID)
		return err
	}, usersdomain.ErrUserNotFound)
	if errors.Is(err, usersdomain.ErrUserNotFound) {
		profile = nil
	} else if err != nil {
		return nil, apperr.Store(err)
	}

	return &domain.LoginResult{UserID: acc.UID, Token: token, Profile: profile}, nil
}

func (s *AuthService) customToken(ctx context.Context, uid string) (string, error) {
	var token string
	err := s.policy.Call(ctx, func(ctx context.Context) error {
		var err error
		token, err = s.idp.CustomToken(ctx, uid)
		return err
	})
	if err != nil {
		return "", apperr.Provider(err)
	}
	return token, nil
}

func (s *AuthService) deleteOrphanAccount(ctx context.Context, uid string) {
	ctx = context.WithoutCancel(ctx)
	err := s.policy.Call(ctx, func(ctx context.Context) error {
		return s.idp.DeleteAccount(ctx, uid)
	})
	if err != nil {
		logging.FromContext(ctx).Error("failed to delete account after profile write failure",
			zap.String("uid", uid),
			zap.Error(err),
		)
	}
}
