package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/vovakirdan/chatrelay-server/internal/store"
)

// fakeResolver resolves sessions from a static map.
type fakeResolver struct {
	identities map[string]Identity
}

func (f *fakeResolver) Resolve(_ context.Context, session string) (Identity, bool) {
	id, ok := f.identities[session]
	return id, ok
}

// fakeMessageStore records appended messages and hide calls in memory.
type fakeMessageStore struct {
	mu       sync.Mutex
	appended []string
	hides    int
}

func (f *fakeMessageStore) AppendMessage(_ context.Context, from, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended = append(f.appended, from+": "+body)
	return nil
}

func (f *fakeMessageStore) HideAllMessages(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hides++
	return nil
}

func (f *fakeMessageStore) appendedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.appended)
}

func (f *fakeMessageStore) hideCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hides
}

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

// newTestHub starts a hub with the given sessions and default-ish limits.
func newTestHub(t *testing.T, identities map[string]Identity, limit int, interval time.Duration) (*Hub, *fakeMessageStore) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	messages := &fakeMessageStore{}
	hub := NewHub(&fakeResolver{identities: identities}, NewModeration(limit, interval), messages, testLogger())
	go hub.Run(ctx)

	return hub, messages
}

func mustEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()

	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("expected event not received")
		return Event{}
	}
}

func mustNoEvent(t *testing.T, ch <-chan Event) {
	t.Helper()

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func (f *fakeMessageStore) ListVisibleMessages(_ context.Context, _ int) ([]*store.Message, error) {
	return nil, nil
}

// waitForCount polls a counter until it reaches want; persistence runs after
// broadcast, so a received event does not yet imply the row was written.
func waitForCount(t *testing.T, what string, got func() int, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("%s: expected %d, got %d", what, want, got())
}
