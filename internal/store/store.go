package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConnLost is returned when the database connection is gone and the
	// reconnect cycle has been kicked off. Callers treat it as a plain failure.
	ErrConnLost = errors.New("store connection lost")
)

// Account is a registered chat identity, looked up by opaque session token.
type Account struct {
	ID           int64
	Name         string
	PasswordHash string
	Admin        bool
	Session      string
	CreatedAt    time.Time
}

// Message is a persisted chat line. Hidden messages stay in the table with
// Visible=false (soft-hide, used by /clear).
type Message struct {
	ID        int64
	From      string
	Body      string
	Visible   bool
	CreatedAt time.Time
}

// AccountStore handles account persistence and session lookup.
type AccountStore interface {
	// CreateAccount creates an account with the given session token.
	// Guest accounts pass an empty password hash.
	CreateAccount(ctx context.Context, name, passwordHash, session string, admin bool) (*Account, error)

	// GetAccountBySession resolves an opaque session token to an account.
	// Returns ErrNotFound for unknown tokens.
	GetAccountBySession(ctx context.Context, session string) (*Account, error)

	// GetAccountByName retrieves an account by its unique name.
	GetAccountByName(ctx context.Context, name string) (*Account, error)

	// UpdateSession replaces the session token for an account.
	UpdateSession(ctx context.Context, accountID int64, session string) error
}

// MessageStore handles the durable message log.
type MessageStore interface {
	// AppendMessage records an admitted message or moderation notice.
	AppendMessage(ctx context.Context, from, body string) error

	// HideAllMessages marks every message invisible without deleting rows.
	HideAllMessages(ctx context.Context) error

	// ListVisibleMessages returns up to limit of the most recent visible
	// messages, oldest first.
	ListVisibleMessages(ctx context.Context, limit int) ([]*Message, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	AccountStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
