package domain

import (
	usersdomain "github.com/raksha-safety/raksha-backend/internal/users/domain"
)

// RequiredRegisterFields is echoed back when a registration is incomplete.
var RequiredRegisterFields = []string{"email", "password", "name", "phone"}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

func (r RegisterRequest) Complete() bool {
	return r.Email != "" && r.Password != "" && r.Name != "" && r.Phone != ""
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisteredUser is the public summary returned on registration.
type RegisteredUser struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type Registration struct {
	UserID string
	Token  string
	User   RegisteredUser
}

// LoginResult carries the stored profile, which is nil when the account has none.
type LoginResult struct {
	UserID  string
	Token   string
	Profile *usersdomain.Profile
}
