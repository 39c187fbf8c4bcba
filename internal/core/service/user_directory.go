package service

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/momocakes/commerce-api/internal/core/domain"
	"github.com/momocakes/commerce-api/internal/core/ports"
)

// UserDirectory owns account creation and lookup. It enforces email/phone
// uniqueness before writes and is the only place a password is hashed.
type UserDirectory struct {
	repo ports.UserRepository
}

func NewUserDirectory(repo ports.UserRepository) *UserDirectory {
	return &UserDirectory{repo: repo}
}

// CreateUser persists a new account. The role defaults to distributor when
// not supplied. The email/phone checks are read-then-write; the unique
// indexes on the collection are the backstop for concurrent creates.
func (d *UserDirectory) CreateUser(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	byEmail, err := d.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if byEmail != nil {
		return nil, domain.ErrEmailExists
	}

	byPhone, err := d.repo.FindByPhone(ctx, input.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if byPhone != nil {
		return nil, domain.ErrPhoneExists
	}

	role := input.Role
	if role == "" {
		role = domain.RoleDistributor
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		FullName:              input.FullName,
		Email:                 input.Email,
		PhoneNumber:           input.PhoneNumber,
		Address:               input.Address,
		Age:                   input.Age,
		PasswordHash:          string(hash),
		Role:                  role,
		AdditionalInformation: input.AdditionalInformation,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	return d.repo.Create(ctx, user)
}

// FindByEmail returns (nil, nil) when no account matches.
func (d *UserDirectory) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return d.repo.FindByEmail(ctx, email)
}

// FindByID returns (nil, nil) when no account matches.
func (d *UserDirectory) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return d.repo.FindByID(ctx, id)
}

// UpdateRefreshToken overwrites the user's single session slot. An empty
// token clears it.
func (d *UserDirectory) UpdateRefreshToken(ctx context.Context, userID, token string) error {
	return d.repo.UpdateRefreshToken(ctx, userID, token)
}

// FindByRole returns sanitized accounts with the given role.
func (d *UserDirectory) FindByRole(ctx context.Context, role string) ([]domain.User, error) {
	users, err := d.repo.FindByRole(ctx, role)
	if err != nil {
		return nil, err
	}
	return sanitizeAll(users), nil
}

// ListAll returns every account, sanitized.
func (d *UserDirectory) ListAll(ctx context.Context) ([]domain.User, error) {
	users, err := d.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return sanitizeAll(users), nil
}

// sanitizeAll strips secrets even when the repository projection already did;
// stub repositories in tests do not project.
func sanitizeAll(users []domain.User) []domain.User {
	for i := range users {
		users[i] = users[i].Sanitized()
	}
	return users
}
