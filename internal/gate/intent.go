package gate

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/hazyhaar/softnav/dom"
	"github.com/hazyhaar/softnav/marker"
	"github.com/hazyhaar/softnav/page"
)

// ErrDialogForm marks form submissions with method="dialog", which never
// navigate and are excluded before gating.
var ErrDialogForm = fmt.Errorf("gate: dialog form does not navigate")

// FromLink builds an intent from a click on an anchor-like element. The
// anchor's href resolves against the page URL.
func FromLink(pg *page.Page, anchor *html.Node, click Click) (*Intent, error) {
	href := dom.AttrValue(anchor, "href")
	if href == "" {
		return nil, fmt.Errorf("gate: anchor has no href")
	}
	dest, err := pg.URL().Parse(href)
	if err != nil {
		return nil, fmt.Errorf("gate: resolve href %q: %w", href, err)
	}
	return &Intent{
		Kind:        KindLink,
		Destination: dest,
		Trigger:     anchor,
		Method:      "GET",
		Click:       click,
		Replace:     marker.ReplaceKind(anchor),
	}, nil
}

// FromForm builds an intent from a form submission. GET forms become a
// navigation to the action URL with the serialized fields as the query
// string (any query already on the action is dropped, as the platform
// does); POST forms carry the fields as the request body. Method "dialog"
// returns ErrDialogForm.
func FromForm(pg *page.Page, form, submitter *html.Node) (*Intent, error) {
	method := strings.ToUpper(strings.TrimSpace(dom.AttrValue(form, "method")))
	if strings.EqualFold(method, "DIALOG") {
		return nil, ErrDialogForm
	}
	if method == "" {
		method = "GET"
	}

	action := dom.AttrValue(form, "action")
	if submitter != nil {
		if fa := dom.AttrValue(submitter, "formaction"); fa != "" {
			action = fa
		}
	}
	dest, err := pg.URL().Parse(action)
	if err != nil {
		return nil, fmt.Errorf("gate: resolve action %q: %w", action, err)
	}

	fields := SerializeForm(form, submitter)
	trigger := form
	if submitter != nil {
		trigger = submitter
	}

	in := &Intent{
		Kind:        KindForm,
		Destination: dest,
		Trigger:     trigger,
		Method:      method,
		Replace:     marker.ReplaceKind(trigger),
	}
	switch method {
	case "GET":
		q := *dest
		q.RawQuery = fields.Encode()
		in.Destination = &q
	default:
		in.Body = fields
	}
	return in, nil
}

// SerializeForm collects submittable field values from a form subtree, in
// document order, plus the submitter's own name/value pair.
func SerializeForm(form, submitter *html.Node) url.Values {
	vals := url.Values{}
	dom.Walk(form, func(n *html.Node) bool {
		if !dom.IsElement(n) {
			return true
		}
		name := dom.AttrValue(n, "name")
		if name == "" || dom.HasAttr(n, "disabled") {
			return true
		}
		switch dom.Tag(n) {
		case "input":
			typ := strings.ToLower(dom.AttrValue(n, "type"))
			switch typ {
			case "submit", "button", "image", "reset", "file":
				return true
			case "checkbox", "radio":
				if !dom.HasAttr(n, "checked") {
					return true
				}
				v := dom.AttrValue(n, "value")
				if v == "" {
					v = "on"
				}
				vals.Add(name, v)
			default:
				vals.Add(name, dom.AttrValue(n, "value"))
			}
		case "textarea":
			vals.Add(name, dom.Text(n))
		case "select":
			if opt := selectedOption(n); opt != nil {
				v, ok := dom.Attr(opt, "value")
				if !ok {
					v = strings.TrimSpace(dom.Text(opt))
				}
				vals.Add(name, v)
			}
		}
		return true
	})

	if submitter != nil {
		if name := dom.AttrValue(submitter, "name"); name != "" {
			vals.Add(name, dom.AttrValue(submitter, "value"))
		}
	}
	return vals
}

func selectedOption(sel *html.Node) *html.Node {
	opts := dom.FindAll(sel, dom.ByTag("option"))
	for _, o := range opts {
		if dom.HasAttr(o, "selected") {
			return o
		}
	}
	if len(opts) > 0 {
		return opts[0]
	}
	return nil
}
