package softnav

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/softnav/dom"
)

// RegisterMCP registers navigation tools on an MCP server so an agent can
// drive the page session the same way links and forms do.
func (s *Session) RegisterMCP(srv *mcp.Server) {
	s.registerVisitTool(srv)
	s.registerTraverseTool(srv)
	s.registerHistoryTool(srv)
	s.registerPageTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	sch := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		sch["required"] = required
	}
	return sch
}

func toolError(err error) (*mcp.CallToolResult, error) {
	var res mcp.CallToolResult
	res.SetError(errors.New(err.Error()))
	return &res, nil
}

func toolText(format string, args ...any) (*mcp.CallToolResult, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
	}, nil
}

func (s *Session) locationLine() string {
	return fmt.Sprintf("now at %s — %q", s.pg.URL(), dom.Title(s.pg.Document()))
}

// --- visit ---

type visitRequest struct {
	URL     string            `json:"url"`
	Replace bool              `json:"replace,omitempty"`
	Method  string            `json:"method,omitempty"`
	Body    map[string]string `json:"body,omitempty"`
}

func (s *Session) registerVisitTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "softnav_visit",
		Description: "Navigate the page session to a URL with an in-place swap, falling back to a full load when the target is not handleable.",
		InputSchema: inputSchema(map[string]any{
			"url":     map[string]any{"type": "string", "description": "Destination URL, absolute or relative to the current page"},
			"replace": map[string]any{"type": "boolean", "description": "Replace the current history entry instead of pushing"},
			"method":  map[string]any{"type": "string", "enum": []any{"GET", "POST"}, "description": "Request method (default GET)"},
			"body":    map[string]any{"type": "object", "description": "Form fields for POST requests"},
		}, []string{"url"}),
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var vr visitRequest
		if err := json.Unmarshal(req.Params.Arguments, &vr); err != nil {
			return toolError(fmt.Errorf("invalid arguments: %w", err))
		}
		var body url.Values
		if len(vr.Body) > 0 {
			body = url.Values{}
			for k, v := range vr.Body {
				body.Set(k, v)
			}
		}
		if err := s.Visit(ctx, vr.URL, VisitOptions{Replace: vr.Replace, Method: vr.Method, Body: body}); err != nil {
			return toolError(err)
		}
		return toolText("%s", s.locationLine())
	})
}

// --- traverse ---

type traverseRequest struct {
	Delta int `json:"delta"`
}

func (s *Session) registerTraverseTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "softnav_traverse",
		Description: "Move through session history like the back/forward buttons. Negative delta goes back, positive goes forward.",
		InputSchema: inputSchema(map[string]any{
			"delta": map[string]any{"type": "integer", "description": "Number of entries to move, e.g. -1 for back"},
		}, []string{"delta"}),
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var tr traverseRequest
		if err := json.Unmarshal(req.Params.Arguments, &tr); err != nil {
			return toolError(fmt.Errorf("invalid arguments: %w", err))
		}
		if tr.Delta == 0 {
			return toolError(errors.New("delta must be non-zero"))
		}
		if err := s.Traverse(ctx, tr.Delta); err != nil {
			return toolError(err)
		}
		return toolText("%s", s.locationLine())
	})
}

// --- history ---

func (s *Session) registerHistoryTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "softnav_history",
		Description: "List session history entries, oldest first, with the cursor position.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	type entry struct {
		URL     string `json:"url"`
		Index   int    `json:"index,omitempty"`
		Owned   bool   `json:"owned"`
		Current bool   `json:"current"`
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		hist := s.pg.History()
		pos := hist.Position()
		out := make([]entry, 0, hist.Length())
		for i, e := range hist.Entries() {
			item := entry{URL: e.URL.String(), Current: i == pos}
			if st, ok := e.State(); ok {
				item.Owned = true
				item.Index = st.Index
			}
			out = append(out, item)
		}
		data, err := json.Marshal(out)
		if err != nil {
			return toolError(fmt.Errorf("marshal: %w", err))
		}
		return toolText("%s", data)
	})
}

// --- page ---

func (s *Session) registerPageTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "softnav_page",
		Description: "Inspect the current page: URL, title, and rendered HTML.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		doc := s.pg.Document()
		return toolText("%s\ntitle: %s\n\n%s", s.pg.URL(), dom.Title(doc), dom.Render(doc))
	})
}
