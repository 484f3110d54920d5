package gate

import (
	"testing"

	"github.com/hazyhaar/softnav/dom"
	"github.com/hazyhaar/softnav/page"
)

const activeDoc = `<html><head><meta name="softnav" content="active"></head><body>
<a id="plain" href="/two">two</a>
<a id="down" href="/file.zip" download>file</a>
<a id="blank" href="/two" target="_blank">two</a>
<a id="ext" href="https://other.example/x">ext</a>
<div data-softnav="false"><a id="opted" href="/two">two</a></div>
<a id="rep" href="/two" data-softnav-history="replace">two</a>
<form id="getform" action="/search">
  <input name="q" value="test">
  <input type="checkbox" name="exact" checked>
  <input type="checkbox" name="fuzzy">
  <button id="go" type="submit" name="src" value="btn">go</button>
</form>
<form id="postform" method="post" action="/items">
  <input name="title" value="hello">
</form>
<form id="dlg" method="dialog"><input name="x" value="1"></form>
</body></html>`

func activePage(t *testing.T) *page.Page {
	t.Helper()
	p, err := page.Load("http://site.test/one", activeDoc)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func linkIntent(t *testing.T, p *page.Page, id string, click Click) *Intent {
	t.Helper()
	a := dom.FindOne(p.Document(), dom.ByID(id))
	if a == nil {
		t.Fatalf("no element %q", id)
	}
	in, err := FromLink(p, a, click)
	if err != nil {
		t.Fatal(err)
	}
	return in
}

func TestEvaluateLinkRules(t *testing.T) {
	p := activePage(t)

	tests := []struct {
		name     string
		id       string
		click    Click
		want     bool
		detached bool
	}{
		{"plain primary click", "plain", Click{}, true, false},
		{"secondary button", "plain", Click{Button: 2}, false, true},
		{"ctrl click", "plain", Click{Ctrl: true}, false, true},
		{"meta click", "plain", Click{Meta: true}, false, true},
		{"shift click", "plain", Click{Shift: true}, false, true},
		{"default prevented", "plain", Click{DefaultPrevented: true}, false, true},
		{"download link", "down", Click{}, false, true},
		{"target blank", "blank", Click{}, false, true},
		{"cross origin", "ext", Click{}, false, false},
		{"opt-out ancestor", "opted", Click{}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(p, linkIntent(t, p, tt.id, tt.click))
			if d.Allow != tt.want {
				t.Errorf("allow: got %v (%s), want %v", d.Allow, d.Reason, tt.want)
			}
			if d.Detached != tt.detached {
				t.Errorf("detached: got %v (%s), want %v", d.Detached, d.Reason, tt.detached)
			}
		})
	}
}

func TestEvaluateRequiresOptIn(t *testing.T) {
	p, err := page.Load("http://site.test/one",
		`<html><head></head><body><a id="plain" href="/two">two</a></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	d := Evaluate(p, linkIntent(t, p, "plain", Click{}))
	if d.Allow {
		t.Error("navigation allowed without opt-in meta")
	}
}

func TestReplaceKindFromMarker(t *testing.T) {
	p := activePage(t)
	if in := linkIntent(t, p, "rep", Click{}); !in.Replace {
		t.Error("replace marker not honored")
	}
	if in := linkIntent(t, p, "plain", Click{}); in.Replace {
		t.Error("plain link should push")
	}
}

func TestFromFormGet(t *testing.T) {
	p := activePage(t)
	form := dom.FindOne(p.Document(), dom.ByID("getform"))
	btn := dom.FindOne(p.Document(), dom.ByID("go"))

	in, err := FromForm(p, form, btn)
	if err != nil {
		t.Fatal(err)
	}
	if in.Method != "GET" {
		t.Errorf("method: got %q, want GET", in.Method)
	}
	if in.HasBody() {
		t.Error("GET form must not carry a body")
	}
	q := in.Destination.Query()
	if got := q.Get("q"); got != "test" {
		t.Errorf("q: got %q, want test", got)
	}
	if got := q.Get("exact"); got != "on" {
		t.Errorf("checked checkbox: got %q, want on", got)
	}
	if q.Has("fuzzy") {
		t.Error("unchecked checkbox serialized")
	}
	if got := q.Get("src"); got != "btn" {
		t.Errorf("submitter pair: got %q, want btn", got)
	}
	if in.Destination.Path != "/search" {
		t.Errorf("path: got %q, want /search", in.Destination.Path)
	}
}

func TestFromFormPost(t *testing.T) {
	p := activePage(t)
	form := dom.FindOne(p.Document(), dom.ByID("postform"))

	in, err := FromForm(p, form, nil)
	if err != nil {
		t.Fatal(err)
	}
	if in.Method != "POST" {
		t.Errorf("method: got %q, want POST", in.Method)
	}
	if got := in.Body.Get("title"); got != "hello" {
		t.Errorf("body title: got %q, want hello", got)
	}
	if in.Destination.RawQuery != "" {
		t.Errorf("POST must not move fields into query: %q", in.Destination.RawQuery)
	}
}

func TestFromFormDialogExcluded(t *testing.T) {
	p := activePage(t)
	form := dom.FindOne(p.Document(), dom.ByID("dlg"))
	if _, err := FromForm(p, form, nil); err != ErrDialogForm {
		t.Errorf("got %v, want ErrDialogForm", err)
	}
}
