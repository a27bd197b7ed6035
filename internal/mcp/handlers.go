package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/hpungsan/quickmr/internal/config"
	"github.com/hpungsan/quickmr/internal/errors"
	"github.com/hpungsan/quickmr/internal/handoff"
	"github.com/hpungsan/quickmr/internal/ops"
	"github.com/hpungsan/quickmr/internal/source"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	store      *handoff.Store
	cfg        *config.Config
	clipboard  ops.Clipboard
	notifier   ops.Notifier
	logger     zerolog.Logger
	httpClient *http.Client
}

// Option configures Handlers.
type Option func(*Handlers)

// WithClipboard sets the clipboard used by handoff_copy.
func WithClipboard(c ops.Clipboard) Option {
	return func(h *Handlers) { h.clipboard = c }
}

// WithNotifier sets where user notifications go.
func WithNotifier(n ops.Notifier) Option {
	return func(h *Handlers) { h.notifier = n }
}

// WithLogger sets the logger attached to each tool call.
func WithLogger(logger zerolog.Logger) Option {
	return func(h *Handlers) { h.logger = logger }
}

// WithHTTPClient sets the client used to fetch issue pages.
func WithHTTPClient(c *http.Client) Option {
	return func(h *Handlers) { h.httpClient = c }
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store *handoff.Store, cfg *config.Config, opts ...Option) *Handlers {
	h := &Handlers{store: store, cfg: cfg, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Request types for each tool

// CaptureRequest represents the arguments for handoff_capture.
type CaptureRequest struct {
	IssueURL string `json:"issue_url"`
}

// ApplyRequest represents the arguments for handoff_apply.
type ApplyRequest struct {
	Description string  `json:"description,omitempty"`
	Title       *string `json:"title,omitempty"`
}

// CopyRequest represents the arguments for handoff_copy.
type CopyRequest struct {
	Description string `json:"description,omitempty"`
}

// BranchRequest represents the arguments for handoff_branch.
type BranchRequest struct {
	IssueNumber string `json:"issue_number,omitempty"`
	Title       string `json:"title,omitempty"`
}

// Handler implementations

// HandleCapture handles the handoff_capture tool call.
func (h *Handlers) HandleCapture(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CaptureRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.IssueURL == "" {
		return errorResult(errors.NewInvalidRequest("issue_url is required")), nil
	}

	opts := []source.IssueOption{
		source.WithTimeout(h.cfg.HTTPTimeout()),
		source.WithToken(h.cfg.Token()),
		source.WithIssueLogger(h.logger),
	}
	if h.httpClient != nil {
		opts = append(opts, source.WithHTTPClient(h.httpClient))
	}
	issue, err := source.NewIssue(input.IssueURL, opts...)
	if err != nil {
		return errorResult(err), nil
	}

	lookups := append([]source.Provider[string]{source.Static(h.cfg.Username)}, issue.UsernameLookups()...)
	result, err := ops.Capture(h.ctx(ctx), h.store, h.notifier, ops.CaptureInput{
		Source:      issue,
		UserLookups: lookups,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleStatus handles the handoff_status tool call.
func (h *Handlers) HandleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Status(h.ctx(ctx), h.store)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleApply handles the handoff_apply tool call.
func (h *Handlers) HandleApply(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ApplyRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	target := &ops.MemoryTarget{Desc: input.Description}
	if input.Title != nil {
		target.TitleText = *input.Title
		target.HasTitle = true
	}

	ctx = h.ctx(ctx)
	session, err := ops.OpenSession(ctx, h.store, h.deps(target))
	if err != nil {
		return errorResult(err), nil
	}
	result, err := session.Apply(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCopy handles the handoff_copy tool call.
func (h *Handlers) HandleCopy(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CopyRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	ctx = h.ctx(ctx)
	session, err := ops.OpenSession(ctx, h.store, h.deps(&ops.MemoryTarget{Desc: input.Description}))
	if err != nil {
		return errorResult(err), nil
	}
	result, err := session.Copy(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDismiss handles the handoff_dismiss tool call.
func (h *Handlers) HandleDismiss(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = h.ctx(ctx)
	session, err := ops.OpenSession(ctx, h.store, h.deps(nil))
	if err != nil {
		return errorResult(err), nil
	}
	result, err := session.Dismiss(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleBranch handles the handoff_branch tool call.
func (h *Handlers) HandleBranch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[BranchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.SuggestBranch(h.ctx(ctx), h.store, ops.BranchInput{
		IssueNumber: input.IssueNumber,
		Title:       input.Title,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// ctx attaches the handler logger so ops can log through zerolog.Ctx.
func (h *Handlers) ctx(ctx context.Context) context.Context {
	return h.logger.WithContext(ctx)
}

func (h *Handlers) deps(target ops.Target) ops.SessionDeps {
	return ops.SessionDeps{Target: target, Clipboard: h.clipboard, Notifier: h.notifier}
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var qe *errors.QuickError
	if stderrors.As(err, &qe) {
		errorObj := map[string]any{
			"code":    qe.Code,
			"message": qe.Message,
			"status":  qe.Status,
		}
		if qe.Code != errors.ErrInternal && qe.Details != nil {
			errorObj["details"] = qe.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
