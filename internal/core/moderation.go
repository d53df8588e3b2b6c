package core

import (
	"sync"
	"time"
)

// Verdict is the admission decision for a single message.
type Verdict int

const (
	// VerdictAdmit lets the message through to broadcast and persistence.
	VerdictAdmit Verdict = iota
	// VerdictRateLimited rejects a message over the fixed-window limit.
	VerdictRateLimited
	// VerdictLocked rejects a non-admin message while chat is locked.
	VerdictLocked
	// VerdictMuted rejects a message from a muted user.
	VerdictMuted
)

type window struct {
	count int
	start time.Time
}

// Moderation is the process-wide shared moderation state: the global lock
// flag, the muted-name set and the per-user fixed-window rate counters.
// A single mutex is held across each whole admission decision so the
// rate/lock/mute reads and the counter write never interleave between
// decisions.
//
// Counter entries are created lazily on first message and never evicted, so
// the map grows with the number of distinct senders over the process
// lifetime. Known limitation, acceptable for a single-process relay.
type Moderation struct {
	mu       sync.Mutex
	locked   bool
	muted    map[string]struct{}
	counters map[string]*window

	limit    int
	interval time.Duration
}

// NewModeration builds moderation state with the given fixed-window rate
// limit: at most limit admitted messages per user per interval.
func NewModeration(limit int, interval time.Duration) *Moderation {
	return &Moderation{
		muted:    make(map[string]struct{}),
		counters: make(map[string]*window),
		limit:    limit,
		interval: interval,
	}
}

// Admit decides whether a message from name may be broadcast, and on
// admission increments the user's counter. The checks apply in fixed
// precedence: rate limit first, then lock, then mute. Admins bypass lock and
// mute entirely and always admit, but their counter still advances.
//
// The window is a plain fixed window: it resets once interval has elapsed
// since its start, so bursts straddling a boundary can admit up to twice the
// limit. Accepted behavior, not a bug.
func (m *Moderation) Admit(name string, admin bool, now time.Time) Verdict {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.counters[name]
	if !ok {
		w = &window{start: now}
		m.counters[name] = w
	} else if now.Sub(w.start) > m.interval {
		w.count = 0
		w.start = now
	}

	if !admin {
		if w.count >= m.limit {
			return VerdictRateLimited
		}
		if m.locked {
			return VerdictLocked
		}
		if _, isMuted := m.muted[name]; isMuted {
			return VerdictMuted
		}
	}

	w.count++
	return VerdictAdmit
}

// ToggleLock flips the global lock flag and returns the new value.
func (m *Moderation) ToggleLock() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locked = !m.locked
	return m.locked
}

// Locked reports whether chat is globally locked.
func (m *Moderation) Locked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locked
}

// Mute bars the named user from sending.
func (m *Moderation) Mute(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted[name] = struct{}{}
}

// Unmute lifts a mute. Unmuting a user who was never muted is a no-op.
func (m *Moderation) Unmute(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.muted, name)
}

// Muted reports whether the named user is muted.
func (m *Moderation) Muted(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.muted[name]
	return ok
}
