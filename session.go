// Package softnav is a soft navigation engine for server-rendered
// multi-page sites: it intercepts link and form navigation on a page
// session, fetches the target page's HTML out-of-band, swaps the live
// document's head and body in place — preserving flagged elements, focus,
// and scroll — and keeps history entries and a visual transition in step.
//
// A Session owns exactly one page and drives one navigation attempt at a
// time; starting a new attempt always cancels the previous one. Navigation
// that the engine cannot or must not handle degrades to a full page load,
// never to a broken page.
package softnav

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hazyhaar/softnav/dom"
	"github.com/hazyhaar/softnav/internal/announce"
	"github.com/hazyhaar/softnav/internal/fetch"
	"github.com/hazyhaar/softnav/internal/gate"
	"github.com/hazyhaar/softnav/internal/history"
	"github.com/hazyhaar/softnav/internal/transition"
	"github.com/hazyhaar/softnav/marker"
	"github.com/hazyhaar/softnav/page"

	"github.com/google/uuid"
	"golang.org/x/net/html"
)

// Session drives soft navigation for one page. The "current attempt" and
// "current transition" slots live here with exclusive ownership — the
// invariant is that at most one attempt is ever mid-fetch or mid-swap.
type Session struct {
	cfg    *Config
	logger *slog.Logger
	pg     *page.Page

	client    *http.Client
	fetcher   *fetch.Fetcher
	coord     *history.Coordinator
	trans     transition.Starter
	scripts   ScriptRunner
	announcer announce.Announcer
	hooks     *hookRegistry

	historyDB *sql.DB

	mu        sync.Mutex
	cur       *Attempt
	curHandle *transition.Handle
}

// Option customizes a Session.
type Option func(*Session)

// WithTransitioner installs a visual transition primitive. The default
// simulated primitive resolves both phases around a synchronous swap.
func WithTransitioner(t transition.Starter) Option {
	return func(s *Session) {
		if t != nil {
			s.trans = t
		}
	}
}

// WithScriptRunner installs the platform script executor.
func WithScriptRunner(r ScriptRunner) Option {
	return func(s *Session) {
		if r != nil {
			s.scripts = r
		}
	}
}

// WithAnnouncer installs an accessibility announcer.
func WithAnnouncer(a announce.Announcer) Option {
	return func(s *Session) {
		if a != nil {
			s.announcer = a
		}
	}
}

// WithHistoryDB persists history entry state in an already-opened sqlite
// database, so a restarted session re-adopts its index and scroll offsets.
func WithHistoryDB(db *sql.DB) Option {
	return func(s *Session) { s.historyDB = db }
}

// New creates a Session for pg.
func New(pg *page.Page, cfg *Config, logger *slog.Logger, opts ...Option) (*Session, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}

	s := &Session{
		cfg:       cfg,
		logger:    logger,
		pg:        pg,
		client:    &http.Client{},
		trans:     &transition.Simulated{Delay: cfg.TransitionDelay},
		scripts:   LogRunner{Logger: logger},
		announcer: announce.NewTranscript(logger),
		hooks:     newHookRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}

	var sanitizer *bluemonday.Policy
	if cfg.Sanitize {
		sanitizer = bluemonday.UGCPolicy()
	}
	s.fetcher = fetch.New(fetch.Config{
		UserAgent: cfg.UserAgent,
		MaxBytes:  cfg.MaxBytes,
		Client:    s.client,
		Sanitizer: sanitizer,
		Logger:    logger,
	})

	var store *history.Store
	if s.historyDB != nil {
		var err error
		store, err = history.NewStore(s.historyDB)
		if err != nil {
			return nil, err
		}
	}
	s.coord = history.NewCoordinator(pg, history.Config{
		Store:          store,
		SessionID:      cfg.SessionID,
		SettleInterval: cfg.SettleInterval,
		Logger:         logger,
	})

	return s, nil
}

// Start adopts or synthesizes history state for the current entry and
// begins the scroll-settle watcher. It runs until ctx is done.
func (s *Session) Start(ctx context.Context) error {
	if err := s.coord.Init(ctx); err != nil {
		return fmt.Errorf("softnav: init history: %w", err)
	}
	go s.coord.WatchScroll(ctx)
	return nil
}

// Page returns the session's page.
func (s *Session) Page() *page.Page { return s.pg }

// On registers a lifecycle listener; the returned function removes it.
func (s *Session) On(hook Hook, l Listener) func() {
	return s.hooks.on(hook, l)
}

// VisitOptions tunes a programmatic visit.
type VisitOptions struct {
	Replace bool
	Method  string
	Body    url.Values
	Trigger *html.Node
}

// Visit performs the same orchestration as a link or form interception for
// a programmatic destination.
func (s *Session) Visit(ctx context.Context, destination string, opts VisitOptions) error {
	dest, err := s.pg.URL().Parse(destination)
	if err != nil {
		return fmt.Errorf("softnav: resolve destination %q: %w", destination, err)
	}
	in := &gate.Intent{
		Kind:        gate.KindProgrammatic,
		Destination: dest,
		Trigger:     opts.Trigger,
		Method:      opts.Method,
		Body:        opts.Body,
		Replace:     opts.Replace,
	}
	if in.Method == "" {
		in.Method = http.MethodGet
	}
	return s.navigate(ctx, in, nil)
}

// ClickLink handles a click on an anchor-like element.
func (s *Session) ClickLink(ctx context.Context, anchor *html.Node, click Click) error {
	in, err := gate.FromLink(s.pg, anchor, gate.Click(click))
	if err != nil {
		return err
	}
	return s.navigate(ctx, in, nil)
}

// SubmitForm handles a form submission. submitter may be nil. Dialog-method
// forms never navigate and return nil.
func (s *Session) SubmitForm(ctx context.Context, form, submitter *html.Node) error {
	in, err := gate.FromForm(s.pg, form, submitter)
	if err != nil {
		if err == gate.ErrDialogForm {
			return nil
		}
		return err
	}
	return s.navigate(ctx, in, nil)
}

// Back traverses one entry backward, like the browser back button.
func (s *Session) Back(ctx context.Context) error { return s.traverse(ctx, -1) }

// Forward traverses one entry forward.
func (s *Session) Forward(ctx context.Context) error { return s.traverse(ctx, 1) }

// Traverse moves through history by delta entries, negative for back.
func (s *Session) Traverse(ctx context.Context, delta int) error {
	return s.traverse(ctx, delta)
}

func (s *Session) traverse(ctx context.Context, delta int) error {
	dest, err := s.pg.History().Go(delta)
	if err != nil {
		return err
	}
	in := &gate.Intent{
		Kind:        gate.KindTraversal,
		Destination: dest.URL,
		Method:      http.MethodGet,
	}
	return s.navigate(ctx, in, dest)
}

// beginAttempt cancels any still-running attempt and installs a new one.
// Cancellation is synchronous and happens before the new attempt does any
// suspending work.
func (s *Session) beginAttempt(ctx context.Context, in *gate.Intent, kind Kind) *Attempt {
	att := newAttempt(ctx, s.pg.URL(), in.Destination, kind, in.Trigger)

	s.mu.Lock()
	prev := s.cur
	s.cur = att
	s.mu.Unlock()

	if prev != nil {
		prev.cancel()
		s.logger.Debug("softnav: superseded attempt", "id", prev.ID, "by", att.ID)
	}
	return att
}

// isCurrent reports whether att still owns the session. Continuations must
// re-check after every suspension point; stale results are discarded
// silently.
func (s *Session) isCurrent(att *Attempt) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur == att
}

// retire clears the attempt's transient markers and releases the current
// slot if att still holds it.
func (s *Session) retire(att *Attempt) {
	s.mu.Lock()
	owns := s.cur == att
	if owns {
		s.cur = nil
	}
	s.mu.Unlock()

	// A superseded attempt must not strip the marker its successor set.
	if owns {
		if root := dom.Root(s.pg.Document()); root != nil {
			dom.RemoveAttr(root, marker.Direction)
		}
	}
	if att.Trigger != nil {
		dom.RemoveAttr(att.Trigger, marker.Visit)
	}
	att.cancel()
}

// takeHandle swaps out the current transition handle, if any.
func (s *Session) takeHandle() *transition.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.curHandle
	s.curHandle = nil
	return h
}

func (s *Session) setHandle(h *transition.Handle) {
	s.mu.Lock()
	s.curHandle = h
	s.mu.Unlock()
}
