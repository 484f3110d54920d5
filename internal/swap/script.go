package swap

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hazyhaar/softnav/dom"
)

// Script is a newly introduced script handed to the session's runner.
type Script struct {
	Node   *html.Node
	Src    string // resolved from the src attribute; "" for inline
	Module bool   // type="module"
	Inline string // inline source text
	// Synthetic marks the no-op external module appended after a trailing
	// inline module script, which otherwise could not be awaited.
	Synthetic bool
}

// rearm reconstructs each flagged script: a fresh element with identical
// attributes and content replaces the original in the tree. Moving a script
// element that already executed does not re-run it; only a new element
// does. When the list ends with an inline module script, a synthetic no-op
// external module is appended so completion remains observable.
func rearm(flagged []*html.Node) []Script {
	var out []Script
	for _, old := range flagged {
		if !inDocument(old) {
			continue // left the tree with a replaced placeholder
		}
		fresh := dom.Clone(old)
		dom.ReplaceNode(old, fresh)
		out = append(out, Script{
			Node:   fresh,
			Src:    dom.AttrValue(fresh, "src"),
			Module: isModule(fresh),
			Inline: dom.Text(fresh),
		})
	}

	if len(out) > 0 {
		last := out[len(out)-1]
		if last.Module && last.Src == "" {
			noop := &html.Node{Type: html.ElementNode, Data: "script", DataAtom: atom.Script}
			dom.SetAttr(noop, "type", "module")
			dom.SetAttr(noop, "src", "data:text/javascript,")
			if p := last.Node.Parent; p != nil {
				p.AppendChild(noop)
			}
			out = append(out, Script{
				Node:      noop,
				Src:       "data:text/javascript,",
				Module:    true,
				Synthetic: true,
			})
		}
	}
	return out
}

// inDocument reports whether n's topmost ancestor is a document node.
func inDocument(n *html.Node) bool {
	top := n
	for top.Parent != nil {
		top = top.Parent
	}
	return top.Type == html.DocumentNode
}

func isModule(n *html.Node) bool {
	return strings.EqualFold(dom.AttrValue(n, "type"), "module")
}
