// Package demo serves a small fixture site exercising every navigation
// marker: opt-in pages, an opted-out page, a form, a persistent player,
// tracked assets and a non-HTML endpoint. The cmd binary serves it and the
// session tests drive it through httptest.
package demo

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const pageOne = `<html lang="en"><head>
<meta name="softnav" content="active">
<title>One</title>
<link rel="stylesheet" href="/assets/site.css">
</head><body>
<h1 id="headline">Page one</h1>
<audio id="player" data-softnav-permanent src="/assets/loop.ogg"></audio>
<p><a id="to-two" href="/two.html">go to two</a></p>
<p><a id="out" href="/plain.html">plain page</a></p>
</body></html>`

const pageTwo = `<html lang="en"><head>
<meta name="softnav" content="active">
<title>Two</title>
<link rel="stylesheet" href="/assets/site.css">
</head><body>
<h1 id="headline">Page two</h1>
<audio id="player" data-softnav-permanent src="/assets/loop.ogg"></audio>
<p><a id="to-one" href="/one.html">back to one</a></p>
<script src="/assets/page.js"></script>
</body></html>`

const pageThree = `<html lang="en"><head>
<meta name="softnav" content="active">
<meta name="softnav-scroll" content="preserve">
<title>Three</title>
</head><body>
<h1>Page three</h1>
<p><a data-softnav="false" href="/one.html" id="hard-link">hard link</a></p>
</body></html>`

const pageTracked = `<html lang="en"><head>
<meta name="softnav" content="active">
<title>Tracked</title>
<link rel="stylesheet" href="/assets/v2.css" data-softnav-track>
</head><body><h1>Tracked assets</h1></body></html>`

const pagePlain = `<html lang="en"><head>
<title>Plain</title>
</head><body><h1>No marker here</h1></body></html>`

const pageForm = `<html lang="en"><head>
<meta name="softnav" content="active">
<title>Search</title>
</head><body>
<form id="search" action="/results" method="get">
<input type="text" name="q" value="">
<button type="submit" name="go" value="1">search</button>
</form>
<form id="order" action="/orders" method="post">
<input type="hidden" name="item" value="7">
<button type="submit">order</button>
</form>
</body></html>`

// Handler returns the fixture site router.
func Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	page := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, body)
		}
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/one.html", http.StatusFound)
	})
	r.Get("/one.html", page(pageOne))
	r.Get("/two.html", page(pageTwo))
	r.Get("/three.html", page(pageThree))
	r.Get("/tracked.html", page(pageTracked))
	r.Get("/plain.html", page(pagePlain))
	r.Get("/form.html", page(pageForm))

	r.Get("/results", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<html><head><meta name="softnav" content="active"><title>Results</title></head>`+
			`<body><h1>Results for %q</h1></body></html>`, r.URL.Query().Get("q"))
	})
	r.Post("/orders", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<html><head><meta name="softnav" content="active"><title>Ordered</title></head>`+
			`<body><h1>Ordered item %s</h1></body></html>`, r.PostForm.Get("item"))
	})

	r.Get("/api/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok":true}`)
	})
	r.Get("/assets/site.css", asset("text/css", "body{margin:0}"))
	r.Get("/assets/v2.css", asset("text/css", "body{margin:0;color:#222}"))
	r.Get("/assets/page.js", asset("text/javascript", "console.log('two')"))
	r.Get("/assets/loop.ogg", asset("audio/ogg", ""))

	return r
}

func asset(ctype, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", ctype)
		fmt.Fprint(w, body)
	}
}
