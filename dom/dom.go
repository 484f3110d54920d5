// Package dom provides helpers over golang.org/x/net/html trees: parsing,
// rendering, attribute access, queries, structural equality, and the small
// document-surgery primitives the swap engine is built from.
//
// Nodes are plain *html.Node values. Nothing here is concurrency-safe; the
// session serializes all access to a page's tree.
package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse parses a full HTML document.
func Parse(r io.Reader) (*html.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	return doc, nil
}

// ParseString parses a full HTML document from a string.
func ParseString(s string) (*html.Node, error) {
	return Parse(strings.NewReader(s))
}

// Render serializes a node (and its subtree) back to HTML.
func Render(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return ""
	}
	return sb.String()
}

// IsElement reports whether n is an element node.
func IsElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

// Tag returns the lowercase tag name of an element node, "" otherwise.
func Tag(n *html.Node) string {
	if !IsElement(n) {
		return ""
	}
	return strings.ToLower(n.Data)
}

// Attr returns the value of the named attribute and whether it is present.
func Attr(n *html.Node, name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// AttrValue returns the attribute value, "" when absent.
func AttrValue(n *html.Node, name string) string {
	v, _ := Attr(n, name)
	return v
}

// HasAttr reports attribute presence regardless of value.
func HasAttr(n *html.Node, name string) bool {
	_, ok := Attr(n, name)
	return ok
}

// SetAttr sets or replaces an attribute.
func SetAttr(n *html.Node, name, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == name {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: val})
}

// RemoveAttr deletes an attribute if present.
func RemoveAttr(n *html.Node, name string) {
	for i := range n.Attr {
		if n.Attr[i].Key == name {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// Walk visits n and every descendant in document order. Returning false from
// fn prunes the subtree below the current node.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, fn)
	}
}

// FindOne returns the first node in document order for which match is true.
func FindOne(root *html.Node, match func(*html.Node) bool) *html.Node {
	var found *html.Node
	Walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if match(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindAll returns every node in document order for which match is true.
func FindAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	Walk(root, func(n *html.Node) bool {
		if match(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// ByTag matches element nodes with the given tag name.
func ByTag(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool { return Tag(n) == tag }
}

// ByID matches the element carrying id.
func ByID(id string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return IsElement(n) && AttrValue(n, "id") == id
	}
}

// Root returns the <html> element of a parsed document.
func Root(doc *html.Node) *html.Node {
	return FindOne(doc, func(n *html.Node) bool {
		return IsElement(n) && n.DataAtom == atom.Html
	})
}

// Head returns the <head> element of a parsed document.
func Head(doc *html.Node) *html.Node {
	return FindOne(doc, func(n *html.Node) bool {
		return IsElement(n) && n.DataAtom == atom.Head
	})
}

// Body returns the <body> element of a parsed document.
func Body(doc *html.Node) *html.Node {
	return FindOne(doc, func(n *html.Node) bool {
		return IsElement(n) && n.DataAtom == atom.Body
	})
}

// Title returns the text of the document's <title>, "" when absent.
func Title(doc *html.Node) string {
	t := FindOne(doc, ByTag("title"))
	if t == nil {
		return ""
	}
	return strings.TrimSpace(Text(t))
}

// Text collects the concatenated text content of a subtree.
func Text(n *html.Node) string {
	var sb strings.Builder
	Walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return sb.String()
}

// Detach removes n from its parent, leaving it reusable elsewhere.
func Detach(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// ReplaceNode swaps newN into oldN's position. oldN must have a parent.
func ReplaceNode(oldN, newN *html.Node) {
	parent := oldN.Parent
	if parent == nil {
		return
	}
	Detach(newN)
	parent.InsertBefore(newN, oldN)
	parent.RemoveChild(oldN)
}

// Children returns the direct children of n as a slice, safe to iterate
// while the tree is being mutated.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// Ancestors visits n and each ancestor up to the document root.
func Ancestors(n *html.Node, fn func(*html.Node) bool) {
	for cur := n; cur != nil; cur = cur.Parent {
		if !fn(cur) {
			return
		}
	}
}

// Clone deep-copies a subtree. Parent/sibling links of the copy are fresh.
func Clone(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	cp := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if n.Attr != nil {
		cp.Attr = make([]html.Attribute, len(n.Attr))
		copy(cp.Attr, n.Attr)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		cp.AppendChild(Clone(c))
	}
	return cp
}

// StripNoscript removes every <noscript> subtree. The parser produces the
// fallback markup as literal content, which must never become live nodes.
func StripNoscript(doc *html.Node) {
	for _, n := range FindAll(doc, ByTag("noscript")) {
		Detach(n)
	}
}
