package softnav

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hazyhaar/softnav/dom"
	"github.com/hazyhaar/softnav/internal/fetch"
	"github.com/hazyhaar/softnav/internal/gate"
	"github.com/hazyhaar/softnav/internal/history"
	"github.com/hazyhaar/softnav/internal/swap"
	"github.com/hazyhaar/softnav/marker"
	"github.com/hazyhaar/softnav/page"
)

// errSwapCancelled marks a BeforeSwap veto inside the update callback.
var errSwapCancelled = errors.New("softnav: swap cancelled by listener")

// navigate runs the full state machine for one intent:
// Gating → Fetching → TransitionPending → Swapping → Settling, with
// Aborted exits that either fall back to a full load or stop silently.
// dest is the destination entry for traversals, nil otherwise.
func (s *Session) navigate(ctx context.Context, in *gate.Intent, dest *page.Entry) error {
	kind := KindPush
	switch {
	case in.Kind == gate.KindTraversal:
		kind = KindTraverse
	case in.Replace:
		kind = KindReplace
	}

	att := s.beginAttempt(ctx, in, kind)

	// A fallback load for a traversal replaces the destination entry the
	// cursor already sits on; anything else keeps the intent's semantics.
	fallbackReplace := in.Replace || in.Kind == gate.KindTraversal

	// Gating.
	if d := gate.Evaluate(s.pg, in); !d.Allow {
		s.logger.Debug("softnav: intent denied", "reason", d.Reason, "url", in.Destination.String())
		if d.Detached {
			// The platform default plays out elsewhere; this page stays.
			s.retire(att)
			return nil
		}
		return s.fullLoad(att, in.Destination, fallbackReplace)
	}

	if cancelled, err := s.hooks.emit(att.ctx, &Event{Hook: BeforeVisit, Attempt: att}); err != nil {
		s.retire(att)
		return err
	} else if cancelled {
		return s.fullLoad(att, in.Destination, fallbackReplace)
	}

	if att.Trigger != nil {
		dom.SetAttr(att.Trigger, marker.Visit, att.ID)
	}

	if in.Kind == gate.KindTraversal {
		att.Direction = s.coord.Traverse(dest)
	} else {
		s.coord.RecordPosition(att.ctx)
		if hashOnly(att.From, att.To) {
			s.coord.HashNavigate(att.ctx, att.To, in.Replace)
			s.pg.SetURL(att.To)
			s.retire(att)
			return nil
		}
		att.Direction = DirForward
		if in.Replace {
			att.Direction = DirNone
		}
	}

	// Fetching.
	outcome, err := s.fetchStep(att, in)
	if err != nil {
		var nh *fetch.NotHandleableError
		switch {
		case errors.As(err, &nh):
			if in.HasBody() {
				// Body-bearing requests never fall back; the response
				// is simply not swapped.
				s.logger.Debug("softnav: unhandleable response to form submission dropped",
					"reason", nh.Reason)
				s.retire(att)
				return nil
			}
			return s.fullLoad(att, nh.FinalURL, fallbackReplace)
		case errors.Is(err, context.Canceled):
			s.retire(att)
			return nil // superseded, discard silently
		default:
			s.retire(att)
			return err
		}
	}
	if !s.isCurrent(att) {
		s.retire(att)
		return nil
	}
	att.To = outcome.FinalURL

	if swap.TrackedMismatch(s.pg.Document(), outcome.Doc) {
		s.logger.Info("softnav: tracked assets changed, forcing full reload",
			"url", att.To.String())
		return s.fullLoad(att, att.To, fallbackReplace)
	}

	// TransitionPending: a still-active previous transition must complete
	// its update phase before a new one may mutate the DOM. Best effort —
	// its own completion handlers do their own cleanup.
	if prev := s.takeHandle(); prev != nil {
		prev.Skip()
		_ = prev.AwaitUpdate(att.ctx)
	}
	if !s.isCurrent(att) {
		s.retire(att)
		return nil
	}

	if root := dom.Root(s.pg.Document()); root != nil && att.Direction != DirNone {
		dom.SetAttr(root, marker.Direction, string(att.Direction))
	}

	// Swapping: the transition's update callback performs the swap, then
	// the history/scroll update, then announces the new content.
	var swapped *swap.Result
	handle := s.trans.Start(att.ctx, func(c context.Context) error {
		if !s.isCurrent(att) {
			return errSwapCancelled
		}
		ev := &Event{Hook: BeforeSwap, Attempt: att, Document: outcome.Doc}
		if cancelled, err := s.hooks.emit(c, ev); err != nil {
			return err
		} else if cancelled {
			return errSwapCancelled
		}

		res, err := swap.Apply(s.pg, outcome.Doc, swap.Options{
			PreserveRootAttrs: s.cfg.PreserveRootAttrs,
		})
		if err != nil {
			return err
		}
		swapped = res
		s.pg.SetURL(att.To)

		switch {
		case in.Kind == gate.KindTraversal:
			// The platform already moved the cursor; the coordinator
			// recorded arrival during gating.
		case in.Replace:
			s.coord.Replace(c, att.To)
		default:
			s.coord.Push(c, att.To)
		}

		s.hooks.emit(c, &Event{Hook: AfterSwap, Attempt: att})

		if cancelled, _ := s.hooks.emit(c, &Event{Hook: BeforeScroll, Attempt: att}); !cancelled {
			s.coord.RestoreScroll(c, history.Restore{
				Traversal: in.Kind == gate.KindTraversal,
				Dest:      dest,
				From:      att.From,
				To:        att.To,
				Replace:   in.Replace,
			})
		}
		s.hooks.emit(c, &Event{Hook: AfterScroll, Attempt: att})
		return nil
	})
	s.setHandle(handle)

	// Settling begins once the update phase resolves; a platform without
	// real transitions resolves it immediately after the synchronous swap.
	if err := handle.AwaitUpdate(att.ctx); err != nil {
		// Transition failures are swallowed: the next navigation
		// reconciles state regardless. Logged for diagnostics only.
		s.logger.Warn("softnav: transition update failed", "id", att.ID, "error", err)
		s.retire(att)
		return nil
	}

	if swapped != nil {
		if err := s.scripts.Run(att.ctx, exportScripts(swapped.Scripts, att.To)); err != nil {
			s.logger.Warn("softnav: script execution failed", "id", att.ID, "error", err)
		}
	}

	s.hooks.emit(att.ctx, &Event{Hook: Loaded, Attempt: att})
	s.announcer.Announce(att.ctx, dom.Title(s.pg.Document()), s.pg.Document())

	if err := handle.AwaitFinished(att.ctx); err != nil {
		s.logger.Debug("softnav: transition finish interrupted", "id", att.ID, "error", err)
	}

	s.retire(att)
	s.hooks.emit(ctx, &Event{Hook: AfterTransition, Attempt: att})
	return nil
}

// fetchStep wraps the fetcher with the before/after notifications. The
// after-fetch notification always fires, whatever the outcome; errors
// additionally fire the error notification carrying the failure.
func (s *Session) fetchStep(att *Attempt, in *gate.Intent) (*fetch.Outcome, error) {
	if cancelled, err := s.hooks.emit(att.ctx, &Event{Hook: BeforeFetch, Attempt: att}); err != nil {
		return nil, err
	} else if cancelled {
		return nil, context.Canceled
	}

	outcome, err := s.fetcher.Fetch(att.ctx, fetch.Request{
		URL:         att.To,
		Method:      in.Method,
		Body:        in.Body,
		Origin:      att.From,
		CurrentHead: dom.Head(s.pg.Document()),
	})

	if err != nil {
		var nh *fetch.NotHandleableError
		if !errors.As(err, &nh) && !errors.Is(err, context.Canceled) {
			s.hooks.emit(att.ctx, &Event{Hook: FetchError, Attempt: att, Err: err})
		}
	} else {
		s.hooks.emit(att.ctx, &Event{Hook: Fetched, Attempt: att, Document: outcome.Doc})
	}
	s.hooks.emit(att.ctx, &Event{Hook: FetchDone, Attempt: att})

	return outcome, err
}

// fullLoad is the platform fallback: a plain document navigation that
// replaces the page wholesale. The entry it creates carries no library
// state, exactly like any navigation the engine did not handle. The load
// stays tied to its attempt: a newer navigation cancels it in flight, and
// a stale response is never installed over the newer page.
func (s *Session) fullLoad(att *Attempt, dest *url.URL, replace bool) error {
	defer s.retire(att)

	req, err := http.NewRequestWithContext(att.ctx, http.MethodGet, dest.String(), nil)
	if err != nil {
		return fmt.Errorf("softnav: full load request: %w", err)
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil // superseded, discard silently
		}
		return fmt.Errorf("softnav: full load %s: %w", dest, err)
	}
	defer resp.Body.Close()

	doc, err := dom.Parse(resp.Body)
	if err != nil {
		return fmt.Errorf("softnav: full load parse: %w", err)
	}
	if !s.isCurrent(att) {
		return nil
	}

	final := resp.Request.URL
	s.pg.Replace(final, doc)
	if replace {
		s.pg.History().Replace(final, nil)
	} else {
		s.pg.History().Push(final, nil)
	}
	s.logger.Info("softnav: full navigation", "url", final.String())
	return nil
}

// exportScripts converts swap results to the public script type, resolving
// relative src attributes against the document URL.
func exportScripts(in []swap.Script, base *url.URL) []Script {
	out := make([]Script, len(in))
	for i, sc := range in {
		src := sc.Src
		if src != "" && base != nil {
			if u, err := base.Parse(src); err == nil {
				src = u.String()
			}
		}
		out[i] = Script{
			Node:      sc.Node,
			Src:       src,
			Module:    sc.Module,
			Inline:    sc.Inline,
			Synthetic: sc.Synthetic,
		}
	}
	return out
}

// hashOnly reports whether destination differs from origin purely by hash:
// same path and query, with a fragment appearing, changing, or going away.
func hashOnly(from, to *url.URL) bool {
	if from == nil || to == nil {
		return false
	}
	if from.Path != to.Path || from.RawQuery != to.RawQuery {
		return false
	}
	return from.Fragment != to.Fragment
}
