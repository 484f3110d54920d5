// Package page models the host page a softnav session enhances: the live
// document tree, its URL, scroll offsets, focus and selection, and the
// platform history list. It is the stand-in for the browser surface the
// engine mutates; everything else in the module operates through it.
package page

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/hazyhaar/softnav/dom"
)

// Offset is a scroll position in CSS pixels.
type Offset struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Measurer resolves the scroll offset of an element for in-page fragment
// jumps. The default measurer knows no layout and reports the top.
type Measurer interface {
	OffsetOf(el *html.Node) Offset
}

type topMeasurer struct{}

func (topMeasurer) OffsetOf(*html.Node) Offset { return Offset{} }

// Page is the mutable host surface. All mutation goes through methods so the
// scroll snapshotter can observe it from its own goroutine.
type Page struct {
	mu       sync.Mutex
	url      *url.URL
	doc      *html.Node
	scroll   Offset
	focus    *html.Node
	selStart int
	selEnd   int
	hist     *History
	measure  Measurer

	// OnPop, when set, receives the destination entry of the
	// re-synthesized pop after a same-page fragment jump, letting the
	// embedder observe in-page navigations the way a popstate listener
	// would.
	OnPop func(*Entry)
}

// New creates a Page at the given URL with a parsed document.
func New(u *url.URL, doc *html.Node) *Page {
	return &Page{
		url:     u,
		doc:     doc,
		hist:    NewHistory(u),
		measure: topMeasurer{},
	}
}

// Load parses rawHTML and creates a Page at rawURL, the usual entry point
// for tests and the demo driver.
func Load(rawURL, rawHTML string) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("page: parse url: %w", err)
	}
	doc, err := dom.ParseString(rawHTML)
	if err != nil {
		return nil, fmt.Errorf("page: %w", err)
	}
	return New(u, doc), nil
}

// SetMeasurer installs a layout oracle for fragment jumps.
func (p *Page) SetMeasurer(m Measurer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if m != nil {
		p.measure = m
	}
}

// URL returns the page's current URL.
func (p *Page) URL() *url.URL {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

// SetURL moves the page's URL without any document change (soft navigation
// and fragment jumps do this; full loads go through Replace).
func (p *Page) SetURL(u *url.URL) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = u
}

// Document returns the live document tree. The returned pointer is the
// page's identity: it survives soft swaps and changes only on a full load.
func (p *Page) Document() *html.Node {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc
}

// Replace installs a brand-new document, the moral equivalent of a full
// page load. Scroll, focus and selection reset.
func (p *Page) Replace(u *url.URL, doc *html.Node) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = u
	p.doc = doc
	p.scroll = Offset{}
	p.focus = nil
	p.selStart, p.selEnd = 0, 0
}

// Scroll returns the current scroll offsets.
func (p *Page) Scroll() Offset {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scroll
}

// SetScroll records a scroll position, as reported by the host (user
// scrolling) or set by the engine (restore, reset).
func (p *Page) SetScroll(o Offset) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scroll = o
}

// Focus returns the currently focused element, nil when nothing is focused.
func (p *Page) Focus() *html.Node {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.focus
}

// SetFocus moves focus. Selection is cleared unless the same element keeps
// focus.
func (p *Page) SetFocus(n *html.Node) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.focus != n {
		p.selStart, p.selEnd = 0, 0
	}
	p.focus = n
}

// Selection returns the text selection range of the focused element.
func (p *Page) Selection() (start, end int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selStart, p.selEnd
}

// SetSelection records the text selection range of the focused element.
func (p *Page) SetSelection(start, end int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selStart, p.selEnd = start, end
}

// History returns the platform history list.
func (p *Page) History() *History {
	return p.hist
}

// JumpToFragment performs an in-page fragment jump: the URL fragment moves,
// scroll lands on the target element, and — matching engine behaviour the
// coordinator has to recover from — the current entry's attached state is
// dropped by the platform.
func (p *Page) JumpToFragment(frag string) {
	p.mu.Lock()
	u := *p.url
	u.Fragment = frag
	p.url = &u

	var target *html.Node
	if frag != "" && p.doc != nil {
		target = dom.FindOne(p.doc, dom.ByID(frag))
		if target == nil {
			target = dom.FindOne(p.doc, func(n *html.Node) bool {
				return dom.Tag(n) == "a" && dom.AttrValue(n, "name") == frag
			})
		}
	}
	if target != nil {
		p.scroll = p.measure.OffsetOf(target)
	} else if frag == "" || strings.EqualFold(frag, "top") {
		p.scroll = Offset{}
	}
	p.mu.Unlock()

	// Setting the location hash swaps in a fresh platform entry: the URL
	// moves and any library state is gone. Entry URLs stay immutable after
	// construction, so the watcher can read them without a lock.
	p.hist.Replace(&u, nil)
}
