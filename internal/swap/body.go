package swap

import (
	"golang.org/x/net/html"

	"github.com/hazyhaar/softnav/dom"
	"github.com/hazyhaar/softnav/marker"
)

// carryPermanents moves each persistence-flagged element of the outgoing
// body over its same-id placeholder in the installed body. The original
// live element moves — never a clone — so running media, input state, and
// attached listeners survive. Originals without a placeholder are dropped.
func carryPermanents(outgoing, installed *html.Node) {
	for _, orig := range permanents(outgoing) {
		id := dom.AttrValue(orig, "id")
		placeholder := findPermanent(installed, id)
		if placeholder == nil {
			continue
		}
		dom.Detach(orig)
		dom.ReplaceNode(placeholder, orig)
	}
}

func permanents(root *html.Node) []*html.Node {
	return dom.FindAll(root, func(n *html.Node) bool {
		return dom.IsElement(n) &&
			dom.HasAttr(n, marker.Permanent) &&
			dom.AttrValue(n, "id") != ""
	})
}

func findPermanent(root *html.Node, id string) *html.Node {
	return dom.FindOne(root, func(n *html.Node) bool {
		return dom.IsElement(n) &&
			dom.HasAttr(n, marker.Permanent) &&
			dom.AttrValue(n, "id") == id
	})
}
