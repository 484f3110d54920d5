package softnav

import (
	"context"
	"net/url"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/hazyhaar/softnav/internal/history"
)

// Kind is the history effect of a navigation.
type Kind string

const (
	KindPush     Kind = "push"
	KindReplace  Kind = "replace"
	KindTraverse Kind = "traverse"
)

// Direction of a navigation. Traversals infer it from stored entry indices.
type Direction = history.Direction

const (
	DirForward = history.DirForward
	DirBack    = history.DirBack
	DirNone    = history.DirNone
)

// Attempt is one in-flight navigation. A session has at most one current
// attempt; creating a new one always cancels the previous one first.
type Attempt struct {
	ID        string
	From      *url.URL
	To        *url.URL
	Kind      Kind
	Direction Direction
	// Trigger back-references the element that initiated the navigation,
	// for event dispatch and the in-flight visit marker. Never owned.
	Trigger *html.Node

	ctx    context.Context
	cancel context.CancelFunc
}

func newAttempt(parent context.Context, from, to *url.URL, kind Kind, trigger *html.Node) *Attempt {
	ctx, cancel := context.WithCancel(parent)
	return &Attempt{
		ID:      uuid.NewString(),
		From:    from,
		To:      to,
		Kind:    kind,
		Trigger: trigger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Context is the attempt's cancellation scope: it is cancelled when the
// attempt is superseded by a newer one.
func (a *Attempt) Context() context.Context { return a.ctx }

// Click carries the pointer and modifier detail of a link click, used by
// the eligibility gate to recognize "open in new context" gestures.
type Click struct {
	Button           int // 0 = primary
	Meta             bool
	Ctrl             bool
	Alt              bool
	Shift            bool
	DefaultPrevented bool
}

// Script is a newly introduced script element awaiting execution after a
// swap.
type Script struct {
	Node   *html.Node
	Src    string // external source URL; "" for inline
	Module bool
	Inline string // inline source text
	// Synthetic marks the no-op module appended so a trailing inline
	// module script's completion stays observable.
	Synthetic bool
}

// ScriptRunner executes newly introduced scripts. The engine treats script
// execution as a platform collaborator: Run must return once every
// src-bearing script has loaded (or errored).
type ScriptRunner interface {
	Run(ctx context.Context, scripts []Script) error
}
