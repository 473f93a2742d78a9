package tracker

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/quipuerp/quipu/internal/notification/domain"
)

// Tracker mirrors one user's notification dropdown: the recent window plus
// the unread badge. The server count is authoritative at load time; pushes
// and reads mutate the mirror so the badge never waits for a refetch.
//
// Invariant after every operation: Unread() equals the number of unread
// entries the tracker holds, as long as every unread entry is inside the
// window. When older unread entries fall outside the window the badge is
// allowed to exceed the visible unread entries, never to undercount them.
type Tracker struct {
	mu      sync.Mutex
	entries []domain.Notification
	unread  int64
	limit   int
}

func New(limit int) *Tracker {
	if limit <= 0 {
		limit = 20
	}
	return &Tracker{limit: limit}
}

// LoadInitial replaces the state with the server's list response. The
// server's unread count wins over anything accumulated locally.
func (t *Tracker) LoadInitial(resp domain.ListResponse) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries := make([]domain.Notification, len(resp.Notifications))
	copy(entries, resp.Notifications)
	if len(entries) > t.limit {
		entries = entries[:t.limit]
	}
	t.entries = entries
	t.unread = resp.UnreadCount
}

// OnPush prepends a pushed entry and bumps the badge. A push whose id is
// already present is dropped: the initial load and the push race, and the
// entry must count once.
func (t *Tracker) OnPush(notification domain.Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, entry := range t.entries {
		if entry.ID == notification.ID {
			return
		}
	}

	t.entries = append([]domain.Notification{notification}, t.entries...)
	if len(t.entries) > t.limit {
		t.entries = t.entries[:t.limit]
	}
	if !notification.Read {
		t.unread++
	}
}

// MarkRead flips one entry and decrements the badge, flooring at zero.
// Marking an entry already read, or one outside the window, changes nothing
// visible beyond the floor rule.
func (t *Tracker) MarkRead(id snowflake.ID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.entries {
		if t.entries[i].ID != id {
			continue
		}
		if t.entries[i].Read {
			return
		}
		t.entries[i].Read = true
		if t.unread > 0 {
			t.unread--
		}
		return
	}
}

// MarkAllRead flips every entry and zeroes the badge, including unread
// entries outside the window that the tracker cannot see.
func (t *Tracker) MarkAllRead() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.entries {
		t.entries[i].Read = true
	}
	t.unread = 0
}

// Unread returns the badge value.
func (t *Tracker) Unread() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.unread
}

// Entries returns a copy of the visible window, newest first.
func (t *Tracker) Entries() []domain.Notification {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]domain.Notification, len(t.entries))
	copy(out, t.entries)
	return out
}
