// Package history maintains the per-entry navigation index and scroll
// offsets: pushing and replacing entries, inferring traversal direction
// from stored indices, restoring scroll after a swap, and snapshotting
// scroll into the current entry once scrolling settles.
package history

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/hazyhaar/softnav/marker"
	"github.com/hazyhaar/softnav/page"
)

// Direction of a navigation, inferred on traversal by comparing stored
// entry indices — the platform does not report it directly.
type Direction string

const (
	DirForward Direction = "forward"
	DirBack    Direction = "back"
	DirNone    Direction = "none"
)

// Config configures a Coordinator.
type Config struct {
	// Store, when set, persists entry state so a restarted session at the
	// same history position re-adopts its index and scroll offsets.
	Store *Store
	// SessionID keys persisted entries. Required when Store is set.
	SessionID string
	// SettleInterval is the scroll polling period used to decide that
	// scrolling has settled. Default: 200ms.
	SettleInterval time.Duration
	// Logger for diagnostics. Default: slog.Default().
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.SettleInterval <= 0 {
		c.SettleInterval = 200 * time.Millisecond
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Coordinator owns the entry index and scroll policy for one page session.
type Coordinator struct {
	cfg Config
	pg  *page.Page

	// index mirrors the current entry's stored index; it is the reference
	// point for direction inference on the next traversal.
	index int
}

// NewCoordinator creates a Coordinator for pg.
func NewCoordinator(pg *page.Page, cfg Config) *Coordinator {
	cfg.defaults()
	return &Coordinator{cfg: cfg, pg: pg}
}

// Init adopts or synthesizes state for the current entry. An entry that
// already carries state wins; otherwise a persisted snapshot for this
// session and position is re-adopted; otherwise, when the document opts in,
// an initial entry state with index 0 and the current offsets is attached.
// Entries the library does not own are left untouched.
func (c *Coordinator) Init(ctx context.Context) error {
	hist := c.pg.History()
	cur := hist.Current()

	if st, ok := cur.State(); ok {
		c.index = st.Index
		c.pg.SetScroll(st.Scroll)
		return nil
	}

	if c.cfg.Store != nil {
		st, err := c.cfg.Store.Load(ctx, c.cfg.SessionID, hist.Position())
		if err != nil {
			return err
		}
		if st != nil {
			cur.SetState(st)
			c.index = st.Index
			c.pg.SetScroll(st.Scroll)
			c.cfg.Logger.Debug("history: adopted persisted entry state",
				"index", st.Index, "position", hist.Position())
			return nil
		}
	}

	if marker.Active(c.pg.Document()) {
		cur.SetState(&page.EntryState{Index: 0, Scroll: c.pg.Scroll()})
		c.index = 0
		c.persist(ctx, hist.Position(), cur)
	}
	return nil
}

// Index returns the current entry index.
func (c *Coordinator) Index() int { return c.index }

// RecordPosition snapshots the page's scroll offsets into the current
// entry, but only when the entry is library-owned.
func (c *Coordinator) RecordPosition(ctx context.Context) {
	cur := c.pg.History().Current()
	if !cur.SetScroll(c.pg.Scroll()) {
		return
	}
	c.persist(ctx, c.pg.History().Position(), cur)
}

// Push creates a new entry with the next index. Persisted rows for the
// truncated forward tail are pruned along with it.
func (c *Coordinator) Push(ctx context.Context, u *url.URL) {
	c.index++
	e := c.pg.History().Push(u, &page.EntryState{Index: c.index})
	pos := c.pg.History().Position()
	c.persist(ctx, pos, e)
	if c.cfg.Store != nil {
		if err := c.cfg.Store.Prune(ctx, c.cfg.SessionID, pos+1); err != nil {
			c.cfg.Logger.Warn("history: prune forward tail failed", "error", err)
		}
	}
}

// Replace overwrites the current entry. Its existing index and recorded
// scroll offsets are preserved when the entry is library-owned, so a
// traversal back to the replaced entry still restores the saved position.
func (c *Coordinator) Replace(ctx context.Context, u *url.URL) {
	hist := c.pg.History()
	idx := c.index
	var scroll page.Offset
	if st, ok := hist.Current().State(); ok {
		idx, scroll = st.Index, st.Scroll
	}
	e := hist.Replace(u, &page.EntryState{Index: idx, Scroll: scroll})
	c.index = idx
	c.persist(ctx, hist.Position(), e)
}

// Traverse records arrival at dest (browser back/forward already moved the
// cursor) and infers the direction from its stored index. Entries without
// library state report DirNone and leave the recorded index unchanged.
func (c *Coordinator) Traverse(dest *page.Entry) Direction {
	st, ok := dest.State()
	if !ok {
		return DirNone
	}
	dir := DirBack
	if st.Index > c.index {
		dir = DirForward
	}
	c.index = st.Index
	return dir
}

func (c *Coordinator) persist(ctx context.Context, position int, e *page.Entry) {
	if c.cfg.Store == nil {
		return
	}
	st, ok := e.State()
	if !ok {
		return
	}
	if err := c.cfg.Store.Save(ctx, c.cfg.SessionID, position, e.URL.String(), &st); err != nil {
		c.cfg.Logger.Warn("history: persist entry failed", "error", err)
	}
}
