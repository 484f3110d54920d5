package marker

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/hazyhaar/softnav/dom"
)

// Active reports whether the document declares soft navigation active.
func Active(doc *html.Node) bool {
	return metaContent(doc, Meta) == MetaActive
}

// PreservesScroll reports whether the document declares scroll preservation
// for same-pathname replace navigations.
func PreservesScroll(doc *html.Node) bool {
	return metaContent(doc, ScrollMeta) == ScrollPreserve
}

// OptedOut reports whether n or any ancestor disables interception.
func OptedOut(n *html.Node) bool {
	out := false
	dom.Ancestors(n, func(a *html.Node) bool {
		if dom.AttrValue(a, Opt) == "false" {
			out = true
			return false
		}
		return true
	})
	return out
}

// ReplaceKind reports whether the trigger element (or an ancestor) requests
// a replace-type history entry.
func ReplaceKind(n *html.Node) bool {
	rep := false
	dom.Ancestors(n, func(a *html.Node) bool {
		switch dom.AttrValue(a, History) {
		case HistoryReplace:
			rep = true
			return false
		case "":
			return true
		default:
			return false
		}
	})
	return rep
}

func metaContent(doc *html.Node, name string) string {
	m := dom.FindOne(doc, func(n *html.Node) bool {
		return dom.Tag(n) == "meta" && strings.EqualFold(dom.AttrValue(n, "name"), name)
	})
	if m == nil {
		return ""
	}
	return strings.TrimSpace(dom.AttrValue(m, "content"))
}
