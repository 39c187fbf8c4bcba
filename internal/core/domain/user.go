package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin       = "admin"
	RoleDistributor = "distributor"
)

var ErrEmailExists = errors.New("a user with this email already exists")
var ErrPhoneExists = errors.New("a user with this phone number already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInvalidRefreshToken = errors.New("invalid refresh token")
var ErrTooManyAttempts = errors.New("too many failed login attempts")

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleDistributor
}

// User models an account in the system. PasswordHash and RefreshToken are
// never serialized; list endpoints additionally strip them at the repository.
type User struct {
	ID                    string    `json:"id"`
	FullName              string    `json:"full_name"`
	Email                 string    `json:"email"`
	PhoneNumber           string    `json:"phone_number"`
	Address               string    `json:"address"`
	Age                   int       `json:"age"`
	PasswordHash          string    `json:"-"`
	Role                  string    `json:"role"`
	RefreshToken          string    `json:"-"`
	AdditionalInformation string    `json:"additional_information,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// Sanitized returns a copy safe to hand to callers outside the auth flow.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	u.RefreshToken = ""
	return u
}
