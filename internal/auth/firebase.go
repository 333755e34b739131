package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/raksha-safety/raksha-backend/config"
)

// InitializeFirebase initializes the Firebase Admin SDK app shared by auth and the database store
func InitializeFirebase(ctx context.Context, cfg *config.FirebaseConfig) (*firebase.App, error) {
	if cfg.CredentialsPath == "" {
		return nil, fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required")
	}

	fbCfg := &firebase.Config{
		DatabaseURL: cfg.DatabaseURL,
		ProjectID:   cfg.ProjectID,
	}
	opt := option.WithCredentialsFile(cfg.CredentialsPath)
	app, err := firebase.NewApp(ctx, fbCfg, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	return app, nil
}

// FirebaseIdentity adapts the Firebase Auth client to IdentityProvider.
type FirebaseIdentity struct {
	client *auth.Client
}

func NewFirebaseIdentity(ctx context.Context, app *firebase.App) (*FirebaseIdentity, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Auth client: %w", err)
	}
	return &FirebaseIdentity{client: client}, nil
}

func (f *FirebaseIdentity) CreateAccount(ctx context.Context, a NewAccount) (*Account, error) {
	params := (&auth.UserToCreate{}).
		Email(a.Email).
		Password(a.Password).
		DisplayName(a.DisplayName).
		PhoneNumber(a.PhoneNumber)

	rec, err := f.client.CreateUser(ctx, params)
	switch {
	case auth.IsEmailAlreadyExists(err):
		return nil, ErrEmailExists
	case auth.IsPhoneNumberAlreadyExists(err):
		return nil, ErrPhoneExists
	case err != nil:
		return nil, err
	}
	return toAccount(rec), nil
}

func (f *FirebaseIdentity) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	rec, err := f.client.GetUserByEmail(ctx, email)
	if auth.IsUserNotFound(err) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return toAccount(rec), nil
}

func (f *FirebaseIdentity) UpdateAccount(ctx context.Context, uid string, u AccountUpdate) error {
	if u.Empty() {
		return nil
	}
	params := &auth.UserToUpdate{}
	if u.DisplayName != nil {
		params = params.DisplayName(*u.DisplayName)
	}
	if u.PhoneNumber != nil {
		params = params.PhoneNumber(*u.PhoneNumber)
	}

	_, err := f.client.UpdateUser(ctx, uid, params)
	if auth.IsUserNotFound(err) {
		return ErrAccountNotFound
	}
	return err
}

func (f *FirebaseIdentity) DeleteAccount(ctx context.Context, uid string) error {
	err := f.client.DeleteUser(ctx, uid)
	if auth.IsUserNotFound(err) {
		return ErrAccountNotFound
	}
	return err
}

func (f *FirebaseIdentity) CustomToken(ctx context.Context, uid string) (string, error) {
	return f.client.CustomToken(ctx, uid)
}

func (f *FirebaseIdentity) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	tok, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", err
	}
	return tok.UID, nil
}

func toAccount(rec *auth.UserRecord) *Account {
	if rec == nil || rec.UserInfo == nil {
		return &Account{}
	}
	return &Account{
		UID:         rec.UID,
		Email:       rec.Email,
		DisplayName: rec.DisplayName,
		PhoneNumber: rec.PhoneNumber,
	}
}
