package page

import (
	"fmt"
	"net/url"
	"sync"
)

// EntryState is the library-owned payload attached to a history entry.
// Entries without it belong to the platform or other code and are never
// touched by the engine.
type EntryState struct {
	Index  int    `json:"index"`
	Scroll Offset `json:"scroll"`
}

// Entry is one platform history entry. Its library state is read by the
// navigation path and written by the scroll watcher, so access goes through
// the entry's own lock.
type Entry struct {
	URL *url.URL

	mu    sync.Mutex
	state *EntryState
}

// Owned reports whether the entry carries library state.
func (e *Entry) Owned() bool {
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state != nil
}

// State returns a copy of the entry's library state, or false when the
// entry belongs to the platform.
func (e *Entry) State() (EntryState, bool) {
	if e == nil {
		return EntryState{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return EntryState{}, false
	}
	return *e.state, true
}

// SetState installs or clears the entry's library state.
func (e *Entry) SetState(st *EntryState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = st
}

// SetScroll records a scroll offset on an owned entry. It reports whether
// the offset was recorded; platform entries are left untouched.
func (e *Entry) SetScroll(o Offset) bool {
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return false
	}
	e.state.Scroll = o
	return true
}

// History models the platform's session history: a list of entries with a
// cursor. Push truncates the forward tail, exactly as browsers do.
type History struct {
	mu      sync.Mutex
	entries []*Entry
	pos     int
}

// NewHistory creates a history whose single entry is the initial URL,
// carrying no library state (the platform created it).
func NewHistory(u *url.URL) *History {
	return &History{entries: []*Entry{{URL: u}}}
}

// Current returns the entry under the cursor.
func (h *History) Current() *Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.pos]
}

// Length returns the number of entries.
func (h *History) Length() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Position returns the cursor index.
func (h *History) Position() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pos
}

// Push appends a new entry after the cursor, discarding any forward tail.
func (h *History) Push(u *url.URL, state *EntryState) *Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	e := &Entry{URL: u, state: state}
	h.entries = append(h.entries[:h.pos+1], e)
	h.pos = len(h.entries) - 1
	return e
}

// Replace overwrites the entry under the cursor.
func (h *History) Replace(u *url.URL, state *EntryState) *Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	e := &Entry{URL: u, state: state}
	h.entries[h.pos] = e
	return e
}

// Go moves the cursor by delta and returns the destination entry. It is the
// platform traversal primitive the session drives from Back and Forward.
func (h *History) Go(delta int) (*Entry, error) {
	h.mu.Lock()
	np := h.pos + delta
	if np < 0 || np >= len(h.entries) {
		h.mu.Unlock()
		return nil, fmt.Errorf("page: history go(%d): out of range", delta)
	}
	h.pos = np
	e := h.entries[np]
	h.mu.Unlock()
	return e, nil
}

// Entries returns a snapshot of all entries, oldest first.
func (h *History) Entries() []*Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Entry, len(h.entries))
	copy(out, h.entries)
	return out
}
