package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/vovakirdan/chatrelay-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := New(":memory:", nil)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAccountSessionLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateAccount(ctx, "alice", "hash", "tok-alice", false)
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if created.Name != "alice" || created.Admin {
		t.Fatalf("unexpected account: %+v", created)
	}

	got, err := s.GetAccountBySession(ctx, "tok-alice")
	if err != nil {
		t.Fatalf("get by session: %v", err)
	}
	if got.ID != created.ID || got.Name != "alice" {
		t.Fatalf("unexpected lookup result: %+v", got)
	}

	if _, err := s.GetAccountBySession(ctx, "tok-nobody"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAccountAdminFlag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateAccount(ctx, "root", "hash", "tok-root", true); err != nil {
		t.Fatalf("create admin: %v", err)
	}

	got, err := s.GetAccountBySession(ctx, "tok-root")
	if err != nil {
		t.Fatalf("get by session: %v", err)
	}
	if !got.Admin {
		t.Fatalf("expected admin flag set")
	}
}

func TestUpdateSessionRotatesToken(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	acct, err := s.CreateAccount(ctx, "alice", "hash", "tok-old", false)
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	if err := s.UpdateSession(ctx, acct.ID, "tok-new"); err != nil {
		t.Fatalf("update session: %v", err)
	}

	if _, err := s.GetAccountBySession(ctx, "tok-old"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("old token should be gone, got %v", err)
	}
	if got, err := s.GetAccountBySession(ctx, "tok-new"); err != nil || got.ID != acct.ID {
		t.Fatalf("new token lookup failed: %v %+v", err, got)
	}

	if err := s.UpdateSession(ctx, 9999, "tok-x"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing account, got %v", err)
	}
}

func TestMessagesAppendHideList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, body := range []string{"one", "two", "three"} {
		if err := s.AppendMessage(ctx, "alice", body); err != nil {
			t.Fatalf("append %q: %v", body, err)
		}
	}

	msgs, err := s.ListVisibleMessages(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	// Oldest first.
	if msgs[0].Body != "one" || msgs[2].Body != "three" {
		t.Fatalf("unexpected order: %+v", msgs)
	}

	if err := s.HideAllMessages(ctx); err != nil {
		t.Fatalf("hide all: %v", err)
	}

	msgs, err = s.ListVisibleMessages(ctx, 10)
	if err != nil {
		t.Fatalf("list after hide: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected no visible messages, got %d", len(msgs))
	}

	// Rows written after the hide are visible again.
	if err := s.AppendMessage(ctx, "bob", "fresh"); err != nil {
		t.Fatalf("append after hide: %v", err)
	}
	msgs, err = s.ListVisibleMessages(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Body != "fresh" {
		t.Fatalf("unexpected visible set: %+v", msgs)
	}
}

func TestListVisibleMessagesLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, body := range []string{"a", "b", "c", "d"} {
		if err := s.AppendMessage(ctx, "alice", body); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	msgs, err := s.ListVisibleMessages(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// Most recent two, oldest first.
	if len(msgs) != 2 || msgs[0].Body != "c" || msgs[1].Body != "d" {
		t.Fatalf("unexpected window: %+v", msgs)
	}
}
