package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/vovakirdan/chatrelay-server/internal/store"
)

const (
	reconnectDelay    = 2 * time.Second
	reconnectAttempts = 5
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	name          TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	is_admin      BOOLEAN NOT NULL DEFAULT 0,
	session       TEXT UNIQUE,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS messages (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	usr_from   TEXT NOT NULL,
	message    TEXT NOT NULL,
	visible    BOOLEAN NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteStore implements store.Store for SQLite.
// The db handle may be swapped by the reconnect cycle; every access goes
// through handle() so callers tolerate the reference changing.
type SQLiteStore struct {
	mu           sync.RWMutex
	db           *sql.DB
	path         string
	log          *zerolog.Logger
	reconnecting bool
}

// New creates a new SQLite store and bootstraps the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string, logger *zerolog.Logger) (*SQLiteStore, error) {
	db, err := open(dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db, path: dbPath, log: logger}, nil
}

// NewWithSetup creates a new SQLite store and runs a setup function instead of
// the built-in schema. Useful for tests to seed rows.
func NewWithSetup(dbPath string, logger *zerolog.Logger, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := open(dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	return &SQLiteStore{db: db, path: dbPath, log: logger}, nil
}

func open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db.Close()
}

func (s *SQLiteStore) handle() *sql.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db
}

// fail maps a driver error, starting the reconnect cycle on connection loss.
func (s *SQLiteStore) fail(op string, err error) error {
	if errors.Is(err, driver.ErrBadConn) {
		s.startReconnect()
		return fmt.Errorf("%s: %w", op, store.ErrConnLost)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// startReconnect launches a background fixed-delay reconnect cycle with a
// bounded attempt count. Only one cycle runs at a time; exhausting the
// attempts is logged as terminal and the next failure starts a fresh cycle.
func (s *SQLiteStore) startReconnect() {
	s.mu.Lock()
	if s.reconnecting {
		s.mu.Unlock()
		return
	}
	s.reconnecting = true
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.reconnecting = false
			s.mu.Unlock()
		}()

		for attempt := 1; attempt <= reconnectAttempts; attempt++ {
			time.Sleep(reconnectDelay)

			db, err := open(s.path)
			if err != nil {
				if s.log != nil {
					s.log.Warn().Err(err).Int("attempt", attempt).Msg("store reconnect failed")
				}
				continue
			}

			s.mu.Lock()
			old := s.db
			s.db = db
			s.mu.Unlock()
			old.Close()

			if s.log != nil {
				s.log.Info().Int("attempt", attempt).Msg("store reconnected")
			}
			return
		}

		if s.log != nil {
			s.log.Error().Int("attempts", reconnectAttempts).Msg("store reconnect exhausted")
		}
	}()
}

// ==== AccountStore implementation ====

// CreateAccount creates an account with the given session token.
func (s *SQLiteStore) CreateAccount(ctx context.Context, name, passwordHash, session string, admin bool) (*store.Account, error) {
	query := `
		INSERT INTO accounts (name, password_hash, is_admin, session)
		VALUES (?, ?, ?, ?)
	`
	result, err := s.handle().ExecContext(ctx, query, name, passwordHash, admin, session)
	if err != nil {
		return nil, s.fail("insert account", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.getAccount(ctx, "id = ?", id)
}

// GetAccountBySession resolves an opaque session token to an account.
func (s *SQLiteStore) GetAccountBySession(ctx context.Context, session string) (*store.Account, error) {
	return s.getAccount(ctx, "session = ?", session)
}

// GetAccountByName retrieves an account by its unique name.
func (s *SQLiteStore) GetAccountByName(ctx context.Context, name string) (*store.Account, error) {
	return s.getAccount(ctx, "name = ?", name)
}

func (s *SQLiteStore) getAccount(ctx context.Context, where string, arg any) (*store.Account, error) {
	query := `
		SELECT id, name, password_hash, is_admin, COALESCE(session, ''), created_at
		FROM accounts
		WHERE ` + where

	var acct store.Account
	err := s.handle().QueryRowContext(ctx, query, arg).Scan(
		&acct.ID,
		&acct.Name,
		&acct.PasswordHash,
		&acct.Admin,
		&acct.Session,
		&acct.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, s.fail("query account", err)
	}

	return &acct, nil
}

// UpdateSession replaces the session token for an account.
func (s *SQLiteStore) UpdateSession(ctx context.Context, accountID int64, session string) error {
	result, err := s.handle().ExecContext(ctx, `UPDATE accounts SET session = ? WHERE id = ?`, session, accountID)
	if err != nil {
		return s.fail("update session", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ==== MessageStore implementation ====

// AppendMessage records an admitted message or moderation notice.
func (s *SQLiteStore) AppendMessage(ctx context.Context, from, body string) error {
	query := `INSERT INTO messages (usr_from, message) VALUES (?, ?)`
	if _, err := s.handle().ExecContext(ctx, query, from, body); err != nil {
		return s.fail("insert message", err)
	}
	return nil
}

// HideAllMessages marks every message invisible without deleting rows.
func (s *SQLiteStore) HideAllMessages(ctx context.Context) error {
	if _, err := s.handle().ExecContext(ctx, `UPDATE messages SET visible = 0`); err != nil {
		return s.fail("hide messages", err)
	}
	return nil
}

// ListVisibleMessages returns up to limit of the most recent visible messages, oldest first.
func (s *SQLiteStore) ListVisibleMessages(ctx context.Context, limit int) ([]*store.Message, error) {
	query := `
		SELECT id, usr_from, message, visible, created_at
		FROM (
			SELECT id, usr_from, message, visible, created_at
			FROM messages
			WHERE visible = 1
			ORDER BY id DESC
			LIMIT ?
		)
		ORDER BY id ASC
	`
	rows, err := s.handle().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, s.fail("query messages", err)
	}
	defer rows.Close()

	var messages []*store.Message
	for rows.Next() {
		var msg store.Message
		if err := rows.Scan(&msg.ID, &msg.From, &msg.Body, &msg.Visible, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}
