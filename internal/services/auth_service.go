// Package services – AuthService
//
// This file implements registration and login: bcrypt password hashing,
// email uniqueness, and bearer-token issuance via the auth.Manager.
// Display names are NFC-normalized so visually identical names compare equal
// in chat and listings.
package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/pactly/go-pact-backend/internal/auth"
	"github.com/pactly/go-pact-backend/internal/domain"
	"github.com/pactly/go-pact-backend/internal/repo"
)

// AuthService handles account creation and credential verification.
type AuthService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Tokens signs the bearer tokens returned to clients.
	Tokens *auth.Manager
}

// NewAuthService constructs an AuthService.
func NewAuthService(db *gorm.DB, tokens *auth.Manager) *AuthService {
	return &AuthService{DB: db, Tokens: tokens}
}

// Register creates an account and returns it with a signed token.
// Name, email, and password are all required; a taken email returns
// ErrEmailTaken.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, string, error) {
	name = norm.NFC.String(strings.TrimSpace(name))
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, "", ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	hashed := string(hash)

	user, err := repo.CreateUser(ctx, s.DB, name, &email, &hashed)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := s.Tokens.Sign(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies email/password and returns the account with a fresh token.
// Unknown addresses and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := repo.GetUserByEmail(ctx, s.DB, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if user.PasswordHash == nil ||
		bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.Tokens.Sign(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GetUser returns a public profile by id.
func (s *AuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := repo.GetUser(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
