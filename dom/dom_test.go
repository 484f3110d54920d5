package dom

import (
	"strings"
	"testing"
)

const sample = `<!DOCTYPE html>
<html lang="en" data-theme="dark">
<head>
  <meta charset="utf-8">
  <title> Sample Page </title>
  <link rel="stylesheet" href="/main.css">
</head>
<body>
  <nav id="top"><a href="/one">One</a></nav>
  <main><p>hello <b>world</b></p></main>
  <noscript><img src="/track.gif"></noscript>
</body>
</html>`

func TestParseAndQuery(t *testing.T) {
	doc, err := ParseString(sample)
	if err != nil {
		t.Fatal(err)
	}

	if got := Title(doc); got != "Sample Page" {
		t.Errorf("Title: got %q, want %q", got, "Sample Page")
	}

	root := Root(doc)
	if root == nil {
		t.Fatal("Root: nil")
	}
	if got := AttrValue(root, "lang"); got != "en" {
		t.Errorf("lang: got %q, want %q", got, "en")
	}

	if n := FindOne(doc, ByID("top")); n == nil || Tag(n) != "nav" {
		t.Errorf("ByID(top): got %v", n)
	}

	links := FindAll(doc, ByTag("a"))
	if len(links) != 1 {
		t.Fatalf("links: got %d, want 1", len(links))
	}
	if got := Text(links[0]); got != "One" {
		t.Errorf("link text: got %q, want %q", got, "One")
	}
}

func TestAttrMutation(t *testing.T) {
	doc, err := ParseString(sample)
	if err != nil {
		t.Fatal(err)
	}
	root := Root(doc)

	SetAttr(root, "lang", "fr")
	if got := AttrValue(root, "lang"); got != "fr" {
		t.Errorf("SetAttr replace: got %q, want %q", got, "fr")
	}

	SetAttr(root, "data-marker", "x")
	if !HasAttr(root, "data-marker") {
		t.Error("SetAttr add: attribute missing")
	}

	RemoveAttr(root, "data-theme")
	if HasAttr(root, "data-theme") {
		t.Error("RemoveAttr: attribute still present")
	}
}

func TestStripNoscript(t *testing.T) {
	doc, err := ParseString(sample)
	if err != nil {
		t.Fatal(err)
	}
	StripNoscript(doc)
	if n := FindOne(doc, ByTag("noscript")); n != nil {
		t.Error("noscript still present after strip")
	}
	if strings.Contains(Render(doc), "track.gif") {
		t.Error("noscript content leaked into rendered output")
	}
}

func TestCloneIsDeepAndDetached(t *testing.T) {
	doc, err := ParseString(sample)
	if err != nil {
		t.Fatal(err)
	}
	p := FindOne(doc, ByTag("p"))
	cp := Clone(p)

	if cp.Parent != nil {
		t.Error("clone has a parent")
	}
	if !Equal(p, cp) {
		t.Error("clone not structurally equal to original")
	}

	SetAttr(cp, "class", "copy")
	if HasAttr(p, "class") {
		t.Error("mutating clone affected original")
	}
}

func TestReplaceNode(t *testing.T) {
	doc, err := ParseString(`<html><body><div id="a">old</div></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	repl, err := ParseString(`<html><body><div id="b">new</div></body></html>`)
	if err != nil {
		t.Fatal(err)
	}

	oldN := FindOne(doc, ByID("a"))
	newN := FindOne(repl, ByID("b"))
	ReplaceNode(oldN, newN)

	if FindOne(doc, ByID("a")) != nil {
		t.Error("old node still in tree")
	}
	got := FindOne(doc, ByID("b"))
	if got == nil {
		t.Fatal("new node not in tree")
	}
	if got != newN {
		t.Error("inserted node is not the same instance")
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"identical", `<div class="x"><p>t</p></div>`, `<div class="x"><p>t</p></div>`, true},
		{"attr order", `<div a="1" b="2"></div>`, `<div b="2" a="1"></div>`, true},
		{"whitespace", `<div><p>t</p></div>`, `<div>
  <p>t</p>
</div>`, true},
		{"attr value", `<div a="1"></div>`, `<div a="2"></div>`, false},
		{"extra attr", `<div a="1"></div>`, `<div a="1" b="2"></div>`, false},
		{"tag", `<div></div>`, `<span></span>`, false},
		{"text", `<p>one</p>`, `<p>two</p>`, false},
		{"extra child", `<div><p>t</p></div>`, `<div><p>t</p><p>u</p></div>`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			da, err := ParseString(`<html><body>` + tt.a + `</body></html>`)
			if err != nil {
				t.Fatal(err)
			}
			db, err := ParseString(`<html><body>` + tt.b + `</body></html>`)
			if err != nil {
				t.Fatal(err)
			}
			na := Body(da).FirstChild
			nb := Body(db).FirstChild
			if got := Equal(na, nb); got != tt.want {
				t.Errorf("Equal(%s): got %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
