// Command softnav drives a soft-navigation page session from the terminal.
//
// Usage:
//
//	softnav -serve :8080                       # serve the demo fixture site
//	softnav -visit http://localhost:8080/      # load a page and print it
//	softnav -visit URL -mcp                    # expose the session over MCP stdio
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/softnav"
	"github.com/hazyhaar/softnav/demo"
	"github.com/hazyhaar/softnav/dom"
	"github.com/hazyhaar/softnav/page"
)

func main() {
	serveAddr := flag.String("serve", "", "serve the demo fixture site on this address")
	visitURL := flag.String("visit", "", "initial URL to load into a page session")
	configPath := flag.String("config", "", "path to softnav.yaml config file")
	mcpStdio := flag.Bool("mcp", false, "expose the session over MCP on stdio")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *serveAddr, *visitURL, *configPath, *mcpStdio); err != nil {
		logger.Error("softnav: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, serveAddr, visitURL, configPath string, mcpStdio bool) error {
	if serveAddr != "" {
		return runServe(ctx, logger, serveAddr)
	}

	if visitURL != "" {
		return runSession(ctx, logger, visitURL, configPath, mcpStdio)
	}

	fmt.Fprintln(os.Stderr, "usage: softnav -serve <addr> | -visit <url> [-mcp] [-config <file>]")
	os.Exit(1)
	return nil
}

func runServe(ctx context.Context, logger *slog.Logger, addr string) error {
	srv := &http.Server{Addr: addr, Handler: demo.Handler()}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	logger.Info("softnav: demo site listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func runSession(ctx context.Context, logger *slog.Logger, visitURL, configPath string, mcpStdio bool) error {
	cfg := &softnav.Config{}
	if configPath != "" {
		loaded, err := softnav.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	var opts []softnav.Option
	if cfg.HistoryDB != "" {
		db, err := sql.Open("sqlite", cfg.HistoryDB)
		if err != nil {
			return fmt.Errorf("open history db: %w", err)
		}
		defer db.Close()
		opts = append(opts, softnav.WithHistoryDB(db))
	}

	pg, err := bootstrap(ctx, visitURL)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	sess, err := softnav.New(pg, cfg, logger, opts...)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if err := sess.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	if mcpStdio {
		mcpSrv := mcp.NewServer(&mcp.Implementation{
			Name:    "softnav",
			Version: "1.0.0",
		}, nil)
		sess.RegisterMCP(mcpSrv)
		logger.Info("softnav: MCP session on stdio", "url", visitURL)
		return mcpSrv.Run(ctx, &mcp.StdioTransport{})
	}

	fmt.Printf("%s\n%s\n", pg.URL(), dom.Render(pg.Document()))
	return nil
}

// bootstrap performs the initial full load that precedes any soft
// navigation: a plain GET whose document becomes the page's first identity.
func bootstrap(ctx context.Context, rawURL string) (*page.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := dom.Parse(resp.Body)
	if err != nil {
		return nil, err
	}
	return page.New(resp.Request.URL, doc), nil
}
