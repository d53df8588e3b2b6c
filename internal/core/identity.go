package core

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/vovakirdan/chatrelay-server/internal/store"
)

// Identity is a resolved chat participant.
type Identity struct {
	Name  string
	Admin bool
}

// Resolver maps an opaque session token to an identity. The second return is
// false when the token is unknown or the lookup failed.
type Resolver interface {
	Resolve(ctx context.Context, session string) (Identity, bool)
}

// SessionResolver resolves sessions against the account store. Identities are
// looked up fresh on every message, never cached, so account changes take
// effect immediately.
type SessionResolver struct {
	accounts store.AccountStore
	log      *zerolog.Logger
}

// NewSessionResolver builds a resolver backed by the given account store.
func NewSessionResolver(accounts store.AccountStore, logger *zerolog.Logger) *SessionResolver {
	return &SessionResolver{accounts: accounts, log: logger}
}

// Resolve looks up the session token. Store failures are treated the same as
// an unknown token: the message is dropped, never retried here. Reconnection
// after a lost connection is the store's own concern.
func (r *SessionResolver) Resolve(ctx context.Context, session string) (Identity, bool) {
	acct, err := r.accounts.GetAccountBySession(ctx, session)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			r.log.Warn().Err(err).Msg("session lookup failed")
		}
		return Identity{}, false
	}
	return Identity{Name: acct.Name, Admin: acct.Admin}, true
}
