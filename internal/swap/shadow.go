package swap

import (
	"golang.org/x/net/html"

	"github.com/hazyhaar/softnav/dom"
)

// ShadowRootTag is the synthetic element representing an attached shadow
// root in the tree model. The markup parser cannot attach real shadow
// roots, so a declarative <template shadowrootmode=...> upgrades into
// <shadow-root mode=...> holding the template's content.
const ShadowRootTag = "shadow-root"

// upgradeShadowRoots recursively scans for declarative shadow-root
// templates. Each one attaches a shadow root of its declared mode to its
// parent — unless the parent already has one, as happens when the parent
// was a persisted element — and the template's content moves into it. The
// scan then recurses into the newly attached root.
func upgradeShadowRoots(root *html.Node) {
	for _, tpl := range declarativeTemplates(root) {
		parent := tpl.Parent
		if parent == nil {
			continue
		}
		mode := dom.AttrValue(tpl, "shadowrootmode")

		if hasShadowRoot(parent) {
			dom.Detach(tpl)
			continue
		}

		sr := &html.Node{Type: html.ElementNode, Data: ShadowRootTag}
		dom.SetAttr(sr, "mode", mode)
		for _, c := range dom.Children(tpl) {
			dom.Detach(c)
			sr.AppendChild(c)
		}
		dom.ReplaceNode(tpl, sr)

		upgradeShadowRoots(sr)
	}
}

// declarativeTemplates returns top-most declarative templates under root,
// not descending into them (their content upgrades recursively afterward).
func declarativeTemplates(root *html.Node) []*html.Node {
	var out []*html.Node
	dom.Walk(root, func(n *html.Node) bool {
		if dom.Tag(n) == "template" && dom.HasAttr(n, "shadowrootmode") {
			out = append(out, n)
			return false
		}
		return true
	})
	return out
}

func hasShadowRoot(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if dom.Tag(c) == ShadowRootTag {
			return true
		}
	}
	return false
}
