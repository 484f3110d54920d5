package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hazyhaar/softnav/page"
)

// Schema is the entry-state persistence schema. One row per (session,
// history position); a restarted session at the same position re-adopts
// its index and scroll offsets.
const Schema = `
CREATE TABLE IF NOT EXISTS nav_entries (
    session_id TEXT    NOT NULL,
    position   INTEGER NOT NULL,
    idx        INTEGER NOT NULL,
    url        TEXT    NOT NULL,
    scroll_x   INTEGER NOT NULL DEFAULT 0,
    scroll_y   INTEGER NOT NULL DEFAULT 0,
    updated_at INTEGER NOT NULL,
    PRIMARY KEY (session_id, position)
);
CREATE INDEX IF NOT EXISTS idx_nav_entries_session ON nav_entries(session_id, updated_at DESC);
`

// Store persists history entry state in an already-opened database.
type Store struct {
	DB *sql.DB
}

// NewStore creates a Store and applies the schema.
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("history: apply schema: %w", err)
	}
	return &Store{DB: db}, nil
}

// Save upserts the entry state at a history position.
func (s *Store) Save(ctx context.Context, sessionID string, position int, url string, st *page.EntryState) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO nav_entries (session_id, position, idx, url, scroll_x, scroll_y, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, position) DO UPDATE SET
			idx = excluded.idx,
			url = excluded.url,
			scroll_x = excluded.scroll_x,
			scroll_y = excluded.scroll_y,
			updated_at = excluded.updated_at`,
		sessionID, position, st.Index, url, st.Scroll.X, st.Scroll.Y,
		time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("history: save entry: %w", err)
	}
	return nil
}

// Load returns the persisted state at a history position, nil when absent.
func (s *Store) Load(ctx context.Context, sessionID string, position int) (*page.EntryState, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT idx, scroll_x, scroll_y FROM nav_entries
		WHERE session_id = ? AND position = ?`,
		sessionID, position)

	var st page.EntryState
	if err := row.Scan(&st.Index, &st.Scroll.X, &st.Scroll.Y); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("history: load entry: %w", err)
	}
	return &st, nil
}

// Prune removes persisted entries for positions at or beyond n, called when
// a push truncates the forward tail.
func (s *Store) Prune(ctx context.Context, sessionID string, n int) error {
	_, err := s.DB.ExecContext(ctx,
		`DELETE FROM nav_entries WHERE session_id = ? AND position >= ?`,
		sessionID, n)
	if err != nil {
		return fmt.Errorf("history: prune entries: %w", err)
	}
	return nil
}
