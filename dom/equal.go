package dom

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// Equal reports structural equality of two subtrees: same tag, same
// attribute set (order-insensitive), and equal normalized children. Text
// nodes compare by whitespace-trimmed content; runs of pure-whitespace text
// are ignored so formatting differences between documents do not matter.
func Equal(a, b *html.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case html.TextNode:
		return strings.TrimSpace(a.Data) == strings.TrimSpace(b.Data)
	case html.ElementNode:
		if Tag(a) != Tag(b) || a.Namespace != b.Namespace {
			return false
		}
		if !attrsEqual(a.Attr, b.Attr) {
			return false
		}
	case html.CommentNode:
		return a.Data == b.Data
	}

	ac := significantChildren(a)
	bc := significantChildren(b)
	if len(ac) != len(bc) {
		return false
	}
	for i := range ac {
		if !Equal(ac[i], bc[i]) {
			return false
		}
	}
	return true
}

func attrsEqual(a, b []html.Attribute) bool {
	if len(a) != len(b) {
		return false
	}
	as := sortedAttrs(a)
	bs := sortedAttrs(b)
	for i := range as {
		if as[i].Key != bs[i].Key || as[i].Val != bs[i].Val {
			return false
		}
	}
	return true
}

func sortedAttrs(attrs []html.Attribute) []html.Attribute {
	out := make([]html.Attribute, len(attrs))
	copy(out, attrs)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// significantChildren drops whitespace-only text nodes.
func significantChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}
