package page

import (
	"net/url"
	"testing"

	"github.com/hazyhaar/softnav/dom"
)

func mustPage(t *testing.T, rawURL, rawHTML string) *Page {
	t.Helper()
	p, err := Load(rawURL, rawHTML)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestHistoryPushTruncatesForwardTail(t *testing.T) {
	u := func(s string) *url.URL {
		parsed, err := url.Parse(s)
		if err != nil {
			t.Fatal(err)
		}
		return parsed
	}

	h := NewHistory(u("http://x/one"))
	h.Push(u("http://x/two"), &EntryState{Index: 1})
	h.Push(u("http://x/three"), &EntryState{Index: 2})

	if got := h.Length(); got != 3 {
		t.Fatalf("length: got %d, want 3", got)
	}

	if _, err := h.Go(-2); err != nil {
		t.Fatal(err)
	}
	if got := h.Current().URL.Path; got != "/one" {
		t.Errorf("after back x2: got %q, want /one", got)
	}

	h.Push(u("http://x/four"), &EntryState{Index: 1})
	if got := h.Length(); got != 2 {
		t.Errorf("push after back should truncate: length got %d, want 2", got)
	}
	if got := h.Current().URL.Path; got != "/four" {
		t.Errorf("current: got %q, want /four", got)
	}

	if _, err := h.Go(1); err == nil {
		t.Error("go(1) past end: want error")
	}
}

func TestReplaceKeepsLength(t *testing.T) {
	u, _ := url.Parse("http://x/one")
	h := NewHistory(u)
	u2, _ := url.Parse("http://x/two")
	h.Replace(u2, &EntryState{Index: 0})

	if got := h.Length(); got != 1 {
		t.Errorf("length: got %d, want 1", got)
	}
	if got := h.Current().URL.Path; got != "/two" {
		t.Errorf("current: got %q, want /two", got)
	}
	if !h.Current().Owned() {
		t.Error("replaced entry should carry state")
	}
}

func TestJumpToFragmentClearsEntryState(t *testing.T) {
	p := mustPage(t, "http://x/doc", `<html><body>
		<p>intro</p><h2 id="section">Section</h2></body></html>`)
	p.History().Replace(p.URL(), &EntryState{Index: 0, Scroll: Offset{Y: 40}})
	p.SetScroll(Offset{Y: 40})

	p.JumpToFragment("section")

	if got := p.URL().Fragment; got != "section" {
		t.Errorf("fragment: got %q, want section", got)
	}
	if p.History().Current().Owned() {
		t.Error("platform fragment jump should drop entry state")
	}
}

func TestReplaceChangesDocumentIdentity(t *testing.T) {
	p := mustPage(t, "http://x/", `<html><body>a</body></html>`)
	before := p.Document()

	doc, err := dom.ParseString(`<html><body>b</body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	u, _ := url.Parse("http://x/next")
	p.Replace(u, doc)

	if p.Document() == before {
		t.Error("full replace should change document identity")
	}
	if got := p.Scroll(); got != (Offset{}) {
		t.Errorf("scroll after replace: got %+v, want origin", got)
	}
}

func TestFocusSelection(t *testing.T) {
	p := mustPage(t, "http://x/", `<html><body><input id="q"></body></html>`)
	in := dom.FindOne(p.Document(), dom.ByID("q"))

	p.SetFocus(in)
	p.SetSelection(2, 5)
	if s, e := p.Selection(); s != 2 || e != 5 {
		t.Errorf("selection: got (%d,%d), want (2,5)", s, e)
	}

	p.SetFocus(nil)
	if s, e := p.Selection(); s != 0 || e != 0 {
		t.Errorf("selection after blur: got (%d,%d), want (0,0)", s, e)
	}
}
