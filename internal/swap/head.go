package swap

import (
	"golang.org/x/net/html"

	"github.com/hazyhaar/softnav/dom"
)

// reconcileHead diffs the current head against the replacement head by deep
// equality. Matching children stay in place (an already-loaded stylesheet
// must not be destroyed and refetched); everything else is removed, and the
// replacement's unmatched children are appended. Returns the scripts among
// the appended children, which need re-arming.
func reconcileHead(doc, newDoc *html.Node) []*html.Node {
	curHead := dom.Head(doc)
	newHead := dom.Head(newDoc)
	if curHead == nil || newHead == nil {
		return nil
	}

	incoming := dom.Children(newHead)
	claimed := make([]bool, len(incoming))

	for _, existing := range dom.Children(curHead) {
		if isBlankText(existing) {
			curHead.RemoveChild(existing)
			continue
		}
		matched := false
		for i, cand := range incoming {
			if claimed[i] || isBlankText(cand) {
				continue
			}
			if dom.Equal(existing, cand) {
				claimed[i] = true
				matched = true
				break
			}
		}
		if !matched {
			curHead.RemoveChild(existing)
		}
	}

	var appended []*html.Node
	for i, cand := range incoming {
		if claimed[i] || isBlankText(cand) {
			continue
		}
		dom.Detach(cand)
		curHead.AppendChild(cand)
		appended = append(appended, cand)
	}

	var scripts []*html.Node
	for _, n := range appended {
		scripts = append(scripts, dom.FindAll(n, dom.ByTag("script"))...)
	}
	return scripts
}

func isBlankText(n *html.Node) bool {
	if n.Type != html.TextNode {
		return false
	}
	for _, r := range n.Data {
		switch r {
		case ' ', '\t', '\n', '\r':
		default:
			return false
		}
	}
	return true
}
