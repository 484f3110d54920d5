package softnav

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/net/html"
)

// Hook names a lifecycle step listeners can observe. Cancelable hooks abort
// their step when a listener returns Cancel; Intercept supplies an action
// that is awaited before the step proceeds.
type Hook string

const (
	// BeforeVisit fires once an intent passes the eligibility gate,
	// before any network work. Cancelable: falls back to a full load.
	BeforeVisit Hook = "before-visit"
	// BeforeFetch fires before the network request. Cancelable: the whole
	// attempt aborts.
	BeforeFetch Hook = "before-fetch"
	// Fetched fires with the parsed replacement document.
	Fetched Hook = "fetched"
	// FetchError fires when the network request fails; Event.Err carries
	// the failure.
	FetchError Hook = "fetch-error"
	// FetchDone always fires after the fetch step, whatever its outcome.
	FetchDone Hook = "fetch-done"
	// BeforeSwap fires inside the transition's update phase, before the
	// document mutates. Cancelable: the swap is skipped and the attempt
	// ends without DOM changes.
	BeforeSwap Hook = "before-swap"
	// AfterSwap fires once the new content and history entry are in place.
	AfterSwap Hook = "after-swap"
	// BeforeScroll fires before the post-swap scroll adjustment.
	// Cancelable: scroll is left where the body replacement put it.
	BeforeScroll Hook = "before-scroll"
	// AfterScroll fires after the scroll adjustment.
	AfterScroll Hook = "after-scroll"
	// Loaded fires once newly introduced scripts have run to completion.
	Loaded Hook = "loaded"
	// AfterTransition fires when the visual transition has fully settled
	// and the attempt is retired.
	AfterTransition Hook = "after-transition"
)

// Event is the payload delivered to listeners.
type Event struct {
	Hook     Hook
	Attempt  *Attempt
	Document *html.Node // replacement document, when one exists yet
	Err      error      // FetchError only
}

type verdict int

const (
	verdictContinue verdict = iota
	verdictCancel
	verdictIntercept
)

// Result is a listener's decision for the step that fired the hook.
type Result struct {
	v       verdict
	handler func(context.Context) error
}

// Continue lets the step proceed unchanged.
func Continue() Result { return Result{} }

// Cancel aborts the step (for cancelable hooks).
func Cancel() Result { return Result{v: verdictCancel} }

// Intercept supplies an action the session awaits before the step
// proceeds, letting a listener delay or augment it.
func Intercept(fn func(context.Context) error) Result {
	return Result{v: verdictIntercept, handler: fn}
}

// Listener observes one hook. Returning Cancel on a non-cancelable hook is
// ignored.
type Listener func(ctx context.Context, ev *Event) Result

type hookRegistry struct {
	mu   sync.Mutex
	seq  int
	regs map[Hook]map[int]Listener
}

func newHookRegistry() *hookRegistry {
	return &hookRegistry{regs: make(map[Hook]map[int]Listener)}
}

// on registers a listener and returns its removal function.
func (h *hookRegistry) on(hook Hook, l Listener) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.regs[hook] == nil {
		h.regs[hook] = make(map[int]Listener)
	}
	h.seq++
	id := h.seq
	h.regs[hook][id] = l
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.regs[hook], id)
	}
}

// emit delivers ev to listeners in registration order. Any Cancel verdict
// wins; otherwise intercept handlers run (awaited) in order. A handler
// error surfaces to the caller and the step does not proceed.
func (h *hookRegistry) emit(ctx context.Context, ev *Event) (cancelled bool, err error) {
	h.mu.Lock()
	reg := h.regs[ev.Hook]
	ids := make([]int, 0, len(reg))
	for id := range reg {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, reg[id])
	}
	h.mu.Unlock()

	var handlers []func(context.Context) error
	for _, l := range listeners {
		res := l(ctx, ev)
		switch res.v {
		case verdictCancel:
			return true, nil
		case verdictIntercept:
			if res.handler != nil {
				handlers = append(handlers, res.handler)
			}
		}
	}
	for _, fn := range handlers {
		if err := fn(ctx); err != nil {
			return false, err
		}
	}
	return false, nil
}
