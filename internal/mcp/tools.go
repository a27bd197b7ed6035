package mcp

import "github.com/mark3labs/mcp-go/mcp"

var captureToolDef = mcp.NewTool("handoff_capture",
	mcp.WithDescription("Capture an MR template from a GitLab issue page. "+
		"Replaces any pending template. The template expires after the configured TTL (default 4h)."),
	mcp.WithString("issue_url",
		mcp.Required(),
		mcp.Description("Issue page URL, e.g. https://gitlab.example.com/group/project/-/issues/42"),
	),
)

var statusToolDef = mcp.NewTool("handoff_status",
	mcp.WithDescription("Show the pending MR template, its age and the suggested branch name."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var applyToolDef = mcp.NewTool("handoff_apply",
	mcp.WithDescription("Apply the pending template to an MR description and clear it. "+
		"Returns the new description, the title (filled from the issue when empty) and the issue labels. "+
		"Applying to a description that already closes the issue leaves it unchanged."),
	mcp.WithString("description",
		mcp.Description("Current MR description; omit for an empty form"),
	),
	mcp.WithString("title",
		mcp.Description("Current MR title; omit when the form has no title field"),
	),
	mcp.WithIdempotentHintAnnotation(true),
)

var copyToolDef = mcp.NewTool("handoff_copy",
	mcp.WithDescription("Copy the merged MR description to the clipboard. The template stays pending."),
	mcp.WithString("description",
		mcp.Description("Current MR description to merge into; omit for an empty form"),
	),
)

var dismissToolDef = mcp.NewTool("handoff_dismiss",
	mcp.WithDescription("Discard the pending template without applying it."),
	mcp.WithDestructiveHintAnnotation(true),
)

var branchToolDef = mcp.NewTool("handoff_branch",
	mcp.WithDescription("Suggest a branch name (<slugified title>-<issue number>). "+
		"Uses the pending template when issue_number is omitted."),
	mcp.WithString("issue_number",
		mcp.Description("Issue number; defaults to the pending template's"),
	),
	mcp.WithString("title",
		mcp.Description("Issue title; defaults to the pending template's"),
	),
	mcp.WithReadOnlyHintAnnotation(true),
)
