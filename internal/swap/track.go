package swap

import (
	"golang.org/x/net/html"

	"github.com/hazyhaar/softnav/dom"
	"github.com/hazyhaar/softnav/marker"
)

// TrackedMismatch compares the track-flagged head assets of the current and
// replacement documents. Any difference — an asset added, removed, or
// changed — means the page's critical assets diverged and the navigation
// must fall back to a full reload instead of a soft swap.
func TrackedMismatch(doc, newDoc *html.Node) bool {
	cur := trackedAssets(doc)
	next := trackedAssets(newDoc)
	if len(cur) != len(next) {
		return true
	}

	claimed := make([]bool, len(next))
	for _, a := range cur {
		found := false
		for i, b := range next {
			if claimed[i] {
				continue
			}
			if dom.Equal(a, b) {
				claimed[i] = true
				found = true
				break
			}
		}
		if !found {
			return true
		}
	}
	return false
}

func trackedAssets(doc *html.Node) []*html.Node {
	head := dom.Head(doc)
	if head == nil {
		return nil
	}
	return dom.FindAll(head, func(n *html.Node) bool {
		return dom.IsElement(n) && dom.HasAttr(n, marker.Track)
	})
}
