package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/vovakirdan/chatrelay-server/internal/store"
)

var (
	// ErrInvalidCredentials is returned when username/password don't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when trying to register with existing username.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidUsername is returned when username doesn't meet constraints.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrInvalidPassword is returned when password doesn't meet constraints.
	ErrInvalidPassword = errors.New("invalid password")
)

// Service provisions accounts and their opaque session tokens. The relay
// itself never interprets a token; it only resolves it through the store.
type Service struct {
	accounts store.AccountStore
}

// NewService creates a new account service.
func NewService(accounts store.AccountStore) *Service {
	return &Service{accounts: accounts}
}

// Register creates a new account and returns it with a fresh session token.
// Accounts are never created with the admin flag set; admins are seeded
// directly in the database.
func (s *Service) Register(ctx context.Context, username, password string) (*store.Account, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 32 {
		return nil, ErrInvalidUsername
	}
	if len(password) < 6 {
		return nil, ErrInvalidPassword
	}

	existing, err := s.accounts.GetAccountByName(ctx, username)
	if err == nil && existing != nil {
		return nil, ErrUserExists
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	acct, err := s.accounts.CreateAccount(ctx, username, hashedPassword, newSessionToken(), false)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	return acct, nil
}

// Login validates credentials and rotates the account's session token.
func (s *Service) Login(ctx context.Context, username, password string) (*store.Account, error) {
	acct, err := s.accounts.GetAccountByName(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if errPwd := ComparePassword(acct.PasswordHash, password); errPwd != nil {
		return nil, ErrInvalidCredentials
	}

	session := newSessionToken()
	if err := s.accounts.UpdateSession(ctx, acct.ID, session); err != nil {
		return nil, fmt.Errorf("rotate session: %w", err)
	}
	acct.Session = session

	return acct, nil
}

// Guest creates a throwaway non-admin account with a generated name.
func (s *Service) Guest(ctx context.Context) (*store.Account, error) {
	session := newSessionToken()
	name := "guest_" + session[:8]

	acct, err := s.accounts.CreateAccount(ctx, name, "", session, false)
	if err != nil {
		return nil, fmt.Errorf("create guest account: %w", err)
	}

	return acct, nil
}

// newSessionToken returns an opaque session token.
func newSessionToken() string {
	return uuid.NewString()
}
