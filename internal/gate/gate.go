// Package gate decides, per navigation attempt, whether soft navigation
// should handle it at all. Denied intents fall through to the platform's
// default full page load; the gate runs before any network or DOM work.
package gate

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/hazyhaar/softnav/dom"
	"github.com/hazyhaar/softnav/marker"
	"github.com/hazyhaar/softnav/page"
)

// Kind classifies how a navigation intent was produced.
type Kind int

const (
	KindLink Kind = iota
	KindForm
	KindProgrammatic
	KindTraversal
)

func (k Kind) String() string {
	switch k {
	case KindLink:
		return "link"
	case KindForm:
		return "form"
	case KindProgrammatic:
		return "programmatic"
	case KindTraversal:
		return "traversal"
	}
	return "unknown"
}

// Click carries the pointer/modifier detail of the triggering click.
type Click struct {
	Button           int // 0 = primary
	Meta             bool
	Ctrl             bool
	Alt              bool
	Shift            bool
	DefaultPrevented bool
}

// Modified reports whether the click signals "open in new context".
func (c Click) Modified() bool {
	return c.Button != 0 || c.Meta || c.Ctrl || c.Alt || c.Shift
}

// Intent is a candidate navigation, normalized from a link click, a form
// submission, a programmatic call, or a history traversal.
type Intent struct {
	Kind        Kind
	Destination *url.URL
	Trigger     *html.Node // anchor, form, or submitter; nil for programmatic
	Method      string     // GET or POST
	Body        url.Values // POST payload; nil for body-less navigations
	Click       Click
	Replace     bool // replace-type history entry
}

// HasBody reports whether the intent carries a request body.
func (in *Intent) HasBody() bool { return len(in.Body) > 0 }

// Decision is the gate's verdict. Detached denials are those whose platform
// default plays out in another browsing context (new tab, download): the
// current page must be left exactly as it is.
type Decision struct {
	Allow    bool
	Detached bool
	Reason   string // populated on deny, for logs
}

func deny(reason string) Decision { return Decision{Reason: reason} }

func denyDetached(reason string) Decision { return Decision{Detached: true, Reason: reason} }

var allow = Decision{Allow: true}

// Evaluate applies the eligibility rules in order. The "before intercept"
// listener veto is the session's concern and runs after an allow here.
func Evaluate(pg *page.Page, in *Intent) Decision {
	if !marker.Active(pg.Document()) {
		return deny("document not opted in")
	}
	if in.Destination == nil {
		return deny("no destination")
	}
	if !sameOrigin(pg.URL(), in.Destination) {
		return deny("cross-origin destination")
	}

	if in.Trigger != nil && marker.OptedOut(in.Trigger) {
		return deny("trigger opted out")
	}

	switch in.Kind {
	case KindLink:
		if in.Trigger != nil {
			if dom.HasAttr(in.Trigger, "download") {
				return denyDetached("download link")
			}
			if t := dom.AttrValue(in.Trigger, "target"); t != "" && t != "_self" {
				return denyDetached("non-self target")
			}
		}
		if in.Click.Modified() {
			return denyDetached("modified click")
		}
		if in.Click.DefaultPrevented {
			return denyDetached("default prevented")
		}
	case KindForm:
		if in.Click.DefaultPrevented {
			return denyDetached("default prevented")
		}
		if in.Trigger != nil {
			if t := formTarget(in.Trigger); t != "" && t != "_self" {
				return denyDetached("non-self target")
			}
		}
	}

	return allow
}

func sameOrigin(a, b *url.URL) bool {
	if b.Scheme == "" && b.Host == "" {
		return true // relative reference, resolved against a by construction
	}
	return strings.EqualFold(a.Scheme, b.Scheme) && strings.EqualFold(a.Host, b.Host)
}

func formTarget(n *html.Node) string {
	var t string
	dom.Ancestors(n, func(a *html.Node) bool {
		if dom.Tag(a) == "form" {
			t = dom.AttrValue(a, "target")
			return false
		}
		return true
	})
	return t
}
