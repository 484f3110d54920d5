package softnav

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
)

// LogRunner is the default script executor: it cannot evaluate JavaScript,
// so it records what would run and returns immediately. Embedders with a
// real script engine install their own ScriptRunner.
type LogRunner struct {
	Logger *slog.Logger
}

// Run logs each newly introduced script.
func (r LogRunner) Run(ctx context.Context, scripts []Script) error {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	for _, sc := range scripts {
		if sc.Synthetic {
			continue
		}
		if sc.Src != "" {
			logger.Debug("softnav: would execute external script", "src", sc.Src, "module", sc.Module)
		} else {
			logger.Debug("softnav: would execute inline script", "bytes", len(sc.Inline), "module", sc.Module)
		}
	}
	return nil
}

// FetchRunner loads every src-bearing script over HTTP and returns once
// all loads have settled, mirroring the platform's load/error semantics
// without evaluating anything.
type FetchRunner struct {
	Client *http.Client
	Logger *slog.Logger
}

// Run fetches external scripts concurrently; failures log and count as
// settled, like a script element's error event.
func (r FetchRunner) Run(ctx context.Context, scripts []Script) error {
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var wg sync.WaitGroup
	for _, sc := range scripts {
		if sc.Src == "" || strings.HasPrefix(sc.Src, "data:") {
			continue
		}
		wg.Add(1)
		go func(src string) {
			defer wg.Done()
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
			if err != nil {
				return
			}
			resp, err := client.Do(req)
			if err != nil {
				logger.Debug("softnav: script load failed", "src", src, "error", err)
				return
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}(sc.Src)
	}
	wg.Wait()
	return nil
}
