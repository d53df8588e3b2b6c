package core

import (
	"testing"
	"time"
)

func TestAdmitFixedWindow(t *testing.T) {
	mod := NewModeration(3, 2*time.Second)
	now := time.Now()

	for i := 0; i < 3; i++ {
		if v := mod.Admit("bob", false, now); v != VerdictAdmit {
			t.Fatalf("message %d: expected admit, got %v", i+1, v)
		}
	}
	if v := mod.Admit("bob", false, now.Add(500*time.Millisecond)); v != VerdictRateLimited {
		t.Fatalf("expected rate limited inside window, got %v", v)
	}

	// Window resets once the interval has elapsed since its start.
	if v := mod.Admit("bob", false, now.Add(2*time.Second+time.Millisecond)); v != VerdictAdmit {
		t.Fatalf("expected admit after window reset, got %v", v)
	}
}

func TestAdmitWindowBoundaryBurst(t *testing.T) {
	// A burst straddling the window boundary admits up to 2x the limit.
	mod := NewModeration(2, time.Second)
	now := time.Now()

	admitted := 0
	for i := 0; i < 4; i++ {
		if mod.Admit("bob", false, now) == VerdictAdmit {
			admitted++
		}
	}
	for i := 0; i < 4; i++ {
		if mod.Admit("bob", false, now.Add(time.Second+time.Millisecond)) == VerdictAdmit {
			admitted++
		}
	}
	if admitted != 4 {
		t.Fatalf("expected 4 admitted across boundary, got %d", admitted)
	}
}

func TestAdmitPerUserCounters(t *testing.T) {
	mod := NewModeration(1, time.Second)
	now := time.Now()

	if v := mod.Admit("alice", false, now); v != VerdictAdmit {
		t.Fatalf("alice: expected admit, got %v", v)
	}
	if v := mod.Admit("bob", false, now); v != VerdictAdmit {
		t.Fatalf("bob should not share alice's counter, got %v", v)
	}
	if v := mod.Admit("alice", false, now); v != VerdictRateLimited {
		t.Fatalf("alice: expected rate limited, got %v", v)
	}
}

func TestRateLimitWinsOverLockAndMute(t *testing.T) {
	// Precedence: rate limit is checked first and wins even when the sender
	// is also locked out and muted.
	mod := NewModeration(1, time.Minute)
	now := time.Now()

	if v := mod.Admit("bob", false, now); v != VerdictAdmit {
		t.Fatalf("expected first message admitted, got %v", v)
	}

	mod.ToggleLock()
	mod.Mute("bob")

	if v := mod.Admit("bob", false, now); v != VerdictRateLimited {
		t.Fatalf("expected rate limit to win over lock and mute, got %v", v)
	}
}

func TestLockWinsOverMute(t *testing.T) {
	mod := NewModeration(10, time.Minute)
	mod.ToggleLock()
	mod.Mute("bob")

	if v := mod.Admit("bob", false, time.Now()); v != VerdictLocked {
		t.Fatalf("expected locked verdict, got %v", v)
	}
}

func TestAdmitLockedAndMuted(t *testing.T) {
	mod := NewModeration(10, time.Minute)
	now := time.Now()

	mod.ToggleLock()
	if v := mod.Admit("bob", false, now); v != VerdictLocked {
		t.Fatalf("expected locked, got %v", v)
	}
	mod.ToggleLock()

	mod.Mute("bob")
	if v := mod.Admit("bob", false, now); v != VerdictMuted {
		t.Fatalf("expected muted, got %v", v)
	}
	mod.Unmute("bob")
	if v := mod.Admit("bob", false, now); v != VerdictAdmit {
		t.Fatalf("expected admit after unmute, got %v", v)
	}
}

func TestAdminBypassesLockAndMute(t *testing.T) {
	mod := NewModeration(1, time.Minute)
	now := time.Now()

	mod.ToggleLock()
	mod.Mute("root")

	for i := 0; i < 5; i++ {
		if v := mod.Admit("root", true, now); v != VerdictAdmit {
			t.Fatalf("admin message %d: expected admit, got %v", i+1, v)
		}
	}
}

func TestLockToggleIdempotentPair(t *testing.T) {
	mod := NewModeration(10, time.Minute)

	if got := mod.ToggleLock(); !got {
		t.Fatalf("first toggle should lock")
	}
	if got := mod.ToggleLock(); got {
		t.Fatalf("second toggle should unlock")
	}
	if mod.Locked() {
		t.Fatalf("lock flag should be back to initial value")
	}
	if v := mod.Admit("bob", false, time.Now()); v != VerdictAdmit {
		t.Fatalf("expected non-admin send restored, got %v", v)
	}
}

func TestRejectionDoesNotConsumeBudget(t *testing.T) {
	// A locked rejection must not advance the counter: once unlocked the
	// full window budget is still available.
	mod := NewModeration(2, time.Minute)
	now := time.Now()

	mod.ToggleLock()
	mod.Admit("bob", false, now)
	mod.Admit("bob", false, now)
	mod.ToggleLock()

	if v := mod.Admit("bob", false, now); v != VerdictAdmit {
		t.Fatalf("expected admit, got %v", v)
	}
	if v := mod.Admit("bob", false, now); v != VerdictAdmit {
		t.Fatalf("expected second admit, got %v", v)
	}
	if v := mod.Admit("bob", false, now); v != VerdictRateLimited {
		t.Fatalf("expected rate limited, got %v", v)
	}
}
