// Package fetch retrieves and validates replacement documents for soft
// navigation: one network request per attempt, media-type and redirect
// policy, noscript stripping, opt-in verification of the arriving document,
// and stylesheet preloading.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hazyhaar/softnav/dom"
	"github.com/hazyhaar/softnav/marker"
)

// Config configures the fetcher.
type Config struct {
	// UserAgent sent with requests.
	UserAgent string
	// MaxBytes caps response body size. Default: 10MB.
	MaxBytes int64
	// Client is the HTTP client. Default: a fresh client with no timeout —
	// an in-flight fetch is only ever terminated by being superseded.
	Client *http.Client
	// Sanitizer, when set, is applied to the arriving body content before
	// it is handed to the swap (bluemonday policy). Nil disables.
	Sanitizer *bluemonday.Policy
	// Logger for diagnostics. Default: slog.Default().
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.MaxBytes <= 0 {
		c.MaxBytes = 10 * 1024 * 1024
	}
	if c.UserAgent == "" {
		c.UserAgent = "softnav/1.0"
	}
	if c.Client == nil {
		c.Client = &http.Client{}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Request describes the navigation being fetched.
type Request struct {
	URL    *url.URL
	Method string     // GET or POST
	Body   url.Values // form payload; nil for body-less requests
	Origin *url.URL   // current page URL, for redirect origin policy
	// CurrentHead is the current document's <head>, used to decide which
	// arriving stylesheets need preloading. May be nil.
	CurrentHead *html.Node
}

// Outcome is a successfully fetched and parsed replacement document, owned
// by the attempt that produced it.
type Outcome struct {
	Doc        *html.Node
	FinalURL   *url.URL
	Redirected bool
	MediaType  string
	Preloaded  int // stylesheets preloaded (settled, success or error)
}

// NotHandleableError reports a response soft navigation must not swap in:
// wrong media type, cross-origin redirect, or an arriving document that has
// not opted in. It is not a failure — the orchestrator falls back to a full
// navigation to FinalURL (suppressed for body-bearing requests).
type NotHandleableError struct {
	Reason   string
	FinalURL *url.URL
}

func (e *NotHandleableError) Error() string {
	return fmt.Sprintf("fetch: not handleable: %s", e.Reason)
}

// Fetcher performs replacement-document requests.
type Fetcher struct {
	cfg Config
}

// New creates a Fetcher.
func New(cfg Config) *Fetcher {
	cfg.defaults()
	return &Fetcher{cfg: cfg}
}

// Fetch performs the request and returns a parsed outcome. Cancellation is
// cooperative through ctx: the underlying request aborts when the attempt
// is superseded. A *NotHandleableError return is a policy outcome, not a
// failure; any other error is a network/parse failure.
func (f *Fetcher) Fetch(ctx context.Context, r Request) (*Outcome, error) {
	method := strings.ToUpper(r.Method)
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if len(r.Body) > 0 {
		body = strings.NewReader(r.Body.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, r.URL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html, application/xhtml+xml")
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := f.cfg.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %s %s: %w", method, r.URL, err)
	}
	defer resp.Body.Close()

	finalURL := resp.Request.URL
	redirected := finalURL.String() != r.URL.String()

	if redirected && r.Origin != nil && !sameOrigin(r.Origin, finalURL) {
		return nil, &NotHandleableError{Reason: "cross-origin redirect", FinalURL: finalURL}
	}

	mediaType := responseMediaType(resp)
	if mediaType != "text/html" && mediaType != "application/xhtml+xml" {
		return nil, &NotHandleableError{
			Reason:   fmt.Sprintf("media type %q", mediaType),
			FinalURL: finalURL,
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBytes))
	if err != nil {
		return nil, fmt.Errorf("fetch: read body: %w", err)
	}

	doc, err := dom.Parse(strings.NewReader(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	// The parser turns noscript fallbacks into literal markup; they must
	// never become live content.
	dom.StripNoscript(doc)

	if !marker.Active(doc) {
		return nil, &NotHandleableError{Reason: "target document not opted in", FinalURL: finalURL}
	}

	if f.cfg.Sanitizer != nil {
		if err := sanitizeBody(doc, f.cfg.Sanitizer); err != nil {
			return nil, err
		}
	}

	preloaded := f.preloadStylesheets(ctx, r.CurrentHead, doc, finalURL)

	return &Outcome{
		Doc:        doc,
		FinalURL:   finalURL,
		Redirected: redirected,
		MediaType:  mediaType,
		Preloaded:  preloaded,
	}, nil
}

// responseMediaType extracts the media type, charset parameters stripped.
func responseMediaType(resp *http.Response) string {
	ct := resp.Header.Get("Content-Type")
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.SplitN(ct, ";", 2)[0]))
	}
	return mt
}

// preloadStylesheets requests every arriving stylesheet not already present
// (by structural equality) in the current head, and waits for all of them
// to settle. Errors only log — a failed preload never blocks the swap.
func (f *Fetcher) preloadStylesheets(ctx context.Context, curHead *html.Node, newDoc *html.Node, base *url.URL) int {
	newHead := dom.Head(newDoc)
	if newHead == nil {
		return 0
	}

	var pending []*html.Node
	for _, link := range dom.FindAll(newHead, dom.ByTag("link")) {
		if !strings.EqualFold(dom.AttrValue(link, "rel"), "stylesheet") {
			continue
		}
		if curHead != nil && hasEqualChild(curHead, link) {
			continue
		}
		pending = append(pending, link)
	}
	if len(pending) == 0 {
		return 0
	}

	var wg sync.WaitGroup
	for _, link := range pending {
		href := dom.AttrValue(link, "href")
		u, err := base.Parse(href)
		if err != nil {
			f.cfg.Logger.Warn("fetch: bad stylesheet href", "href", href, "error", err)
			continue
		}
		wg.Add(1)
		go func(u *url.URL) {
			defer wg.Done()
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
			if err != nil {
				return
			}
			req.Header.Set("User-Agent", f.cfg.UserAgent)
			resp, err := f.cfg.Client.Do(req)
			if err != nil {
				f.cfg.Logger.Debug("fetch: stylesheet preload failed", "url", u.String(), "error", err)
				return
			}
			io.Copy(io.Discard, io.LimitReader(resp.Body, f.cfg.MaxBytes))
			resp.Body.Close()
		}(u)
	}
	wg.Wait()
	return len(pending)
}

func hasEqualChild(parent, n *html.Node) bool {
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if dom.Equal(c, n) {
			return true
		}
	}
	return false
}

// sanitizeBody runs the arriving body's content through the policy and
// reinstalls the cleaned fragment.
func sanitizeBody(doc *html.Node, policy *bluemonday.Policy) error {
	bodyEl := dom.Body(doc)
	if bodyEl == nil {
		return nil
	}
	var sb strings.Builder
	for c := bodyEl.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(dom.Render(c))
	}
	clean := policy.Sanitize(sb.String())

	frag, err := html.ParseFragment(strings.NewReader(clean), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return fmt.Errorf("fetch: sanitize reparse: %w", err)
	}
	for _, c := range dom.Children(bodyEl) {
		bodyEl.RemoveChild(c)
	}
	for _, n := range frag {
		bodyEl.AppendChild(n)
	}
	return nil
}

func sameOrigin(a, b *url.URL) bool {
	return strings.EqualFold(a.Scheme, b.Scheme) && strings.EqualFold(a.Host, b.Host)
}
