// Package swap replaces a live document's root attributes, head, and body
// with those of a fetched replacement document, preserving flagged elements,
// focus and selection, upgrading declarative shadow roots, and re-arming
// scripts so they execute again.
//
// The swapper never touches history or scroll; the coordinator handles
// those around it.
package swap

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/hazyhaar/softnav/dom"
	"github.com/hazyhaar/softnav/marker"
	"github.com/hazyhaar/softnav/page"
)

// Options tunes a swap.
type Options struct {
	// PreserveRootAttrs lists root-element attributes that survive the
	// swap even when the replacement document carries its own copy. The
	// transient direction marker is always preserved.
	PreserveRootAttrs []string
}

// Result reports what a swap produced.
type Result struct {
	// Scripts are the re-armed script elements, in document order, ready
	// for the session's script runner. A trailing synthetic entry appears
	// when the list would otherwise end with an inline module script.
	Scripts []Script
	// FocusRestored is true when focus survived inside a persisted subtree.
	FocusRestored bool
}

// Apply mutates pg's document in place to match newDoc. It is synchronous;
// the caller sequences it inside the transition's update phase.
func Apply(pg *page.Page, newDoc *html.Node, opts Options) (*Result, error) {
	doc := pg.Document()
	curRoot := dom.Root(doc)
	newRoot := dom.Root(newDoc)
	if curRoot == nil || newRoot == nil {
		return nil, fmt.Errorf("swap: document missing root element")
	}
	curBody := dom.Body(doc)
	newBody := dom.Body(newDoc)
	if curBody == nil || newBody == nil {
		return nil, fmt.Errorf("swap: document missing body")
	}

	// Capture focus before any mutation: only focus inside a persisted
	// subtree survives the swap.
	focused := pg.Focus()
	selStart, selEnd := pg.Selection()
	restoreFocus := focused != nil && insidePermanent(focused)

	preserve := append([]string{marker.Direction}, opts.PreserveRootAttrs...)
	mergeRootAttrs(curRoot, newRoot, preserve)

	var flagged []*html.Node
	flagged = append(flagged, reconcileHead(doc, newDoc)...)

	dom.Detach(newBody)
	dom.ReplaceNode(curBody, newBody)
	// Flag before the permanent carry-over: scripts inside a persisted
	// original already ran and must not re-execute, and scripts inside a
	// replaced placeholder leave the document (rearm skips detached nodes).
	flagged = append(flagged, dom.FindAll(newBody, dom.ByTag("script"))...)
	carryPermanents(curBody, newBody)

	upgradeShadowRoots(newBody)

	res := &Result{Scripts: rearm(flagged)}

	if restoreFocus {
		pg.SetFocus(focused)
		if isTextInput(focused) {
			pg.SetSelection(selStart, selEnd)
		}
		res.FocusRestored = true
	} else {
		pg.SetFocus(nil)
		if af := dom.FindOne(newBody, func(n *html.Node) bool {
			return dom.IsElement(n) && dom.HasAttr(n, "autofocus")
		}); af != nil {
			pg.SetFocus(af)
		}
	}

	return res, nil
}

// mergeRootAttrs strips the current root down to the preserved allow-list,
// copies the replacement's attributes, then re-applies the preserved values
// so a marker set just before the swap is not clobbered by the replacement
// document's copy of the same attribute.
func mergeRootAttrs(curRoot, newRoot *html.Node, preserve []string) {
	kept := map[string]string{}
	for _, name := range preserve {
		if v, ok := dom.Attr(curRoot, name); ok {
			kept[name] = v
		}
	}

	curRoot.Attr = nil
	for _, a := range newRoot.Attr {
		dom.SetAttr(curRoot, a.Key, a.Val)
	}
	for name, v := range kept {
		dom.SetAttr(curRoot, name, v)
	}
}

// insidePermanent reports whether n sits inside a subtree flagged with the
// persistence marker.
func insidePermanent(n *html.Node) bool {
	inside := false
	dom.Ancestors(n, func(a *html.Node) bool {
		if dom.HasAttr(a, marker.Permanent) && dom.AttrValue(a, "id") != "" {
			inside = true
			return false
		}
		return true
	})
	return inside
}

func isTextInput(n *html.Node) bool {
	switch dom.Tag(n) {
	case "textarea":
		return true
	case "input":
		switch dom.AttrValue(n, "type") {
		case "", "text", "search", "url", "tel", "password", "email", "number":
			return true
		}
	}
	return false
}
