package mcp

import (
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/quickmr/internal/config"
	"github.com/hpungsan/quickmr/internal/handoff"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"handoff_capture": {
		def:     captureToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCapture },
	},
	"handoff_status": {
		def:     statusToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStatus },
	},
	"handoff_apply": {
		def:     applyToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleApply },
	},
	"handoff_copy": {
		def:     copyToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCopy },
	},
	"handoff_dismiss": {
		def:     dismissToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDismiss },
	},
	"handoff_branch": {
		def:     branchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleBranch },
	},
}

// AllToolNames returns all valid tool names, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with the handoff tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(store *handoff.Store, cfg *config.Config, version string, opts ...Option) *server.MCPServer {
	s := server.NewMCPServer(
		"quickmr",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(store, cfg, opts...)

	disabled := make(map[string]bool, len(cfg.DisabledTools))
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(store *handoff.Store, cfg *config.Config, version string, opts ...Option) error {
	s := NewServer(store, cfg, version, opts...)
	return server.ServeStdio(s)
}
