// Package announce surfaces completed navigations to assistive listeners.
// The engine only calls through the Announcer interface; the default
// implementation logs the new title together with a markdown transcript of
// the swapped content, which reads the way a screen reader would walk it.
package announce

import (
	"context"
	"log/slog"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"golang.org/x/net/html"

	"github.com/hazyhaar/softnav/dom"
)

// Announcer receives the document title after every completed navigation.
type Announcer interface {
	Announce(ctx context.Context, title string, doc *html.Node)
}

// Transcript logs announcements with a markdown rendering of the body.
type Transcript struct {
	logger *slog.Logger
	conv   *converter.Converter
	// MaxChars truncates the transcript. Default: 2000.
	MaxChars int
}

// NewTranscript creates the default announcer.
func NewTranscript(logger *slog.Logger) *Transcript {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transcript{
		logger: logger,
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		),
		MaxChars: 2000,
	}
}

// Announce logs the title and content transcript.
func (t *Transcript) Announce(ctx context.Context, title string, doc *html.Node) {
	body := dom.Body(doc)
	if body == nil {
		t.logger.Info("announce: page loaded", "title", title)
		return
	}

	md, err := t.conv.ConvertString(dom.Render(body))
	if err != nil {
		t.logger.Debug("announce: transcript conversion failed", "error", err)
		md = dom.Text(body)
	}
	if t.MaxChars > 0 && len(md) > t.MaxChars {
		md = md[:t.MaxChars]
	}
	t.logger.Info("announce: page loaded", "title", title, "transcript", md)
}

// Silent discards announcements; tests and embedders that announce through
// their own channel use it.
type Silent struct{}

func (Silent) Announce(context.Context, string, *html.Node) {}
