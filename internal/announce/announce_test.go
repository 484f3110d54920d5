package announce

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/hazyhaar/softnav/dom"
)

func TestTranscriptLogsMarkdown(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	a := NewTranscript(logger)

	doc, err := dom.ParseString(`<html><head><title>Two</title></head>` +
		`<body><h1>Second page</h1><p>Some <strong>bold</strong> text.</p></body></html>`)
	if err != nil {
		t.Fatal(err)
	}

	a.Announce(context.Background(), "Two", doc)

	out := buf.String()
	if !strings.Contains(out, "title=Two") {
		t.Errorf("announcement missing title: %s", out)
	}
	if !strings.Contains(out, "Second page") {
		t.Errorf("transcript missing heading text: %s", out)
	}
	if !strings.Contains(out, "**bold**") {
		t.Errorf("transcript not rendered as markdown: %s", out)
	}
}

func TestTranscriptTruncates(t *testing.T) {
	var buf bytes.Buffer
	a := NewTranscript(slog.New(slog.NewTextHandler(&buf, nil)))
	a.MaxChars = 10

	doc, err := dom.ParseString(`<html><body><p>` + strings.Repeat("word ", 100) + `</p></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	a.Announce(context.Background(), "Long", doc)

	if strings.Count(buf.String(), "word") > 3 {
		t.Errorf("transcript not truncated: %s", buf.String())
	}
}

func TestSilentDiscards(t *testing.T) {
	Silent{}.Announce(context.Background(), "x", nil)
}
