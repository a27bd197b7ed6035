package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/quickmr/internal/config"
	"github.com/hpungsan/quickmr/internal/errors"
	"github.com/hpungsan/quickmr/internal/handoff"
	"github.com/hpungsan/quickmr/internal/ops"
	"github.com/hpungsan/quickmr/internal/source"
)

// maxStdinBytes bounds descriptions piped on stdin.
const maxStdinBytes = 1 << 20

// appDeps holds what the CLI commands share.
type appDeps struct {
	store      *handoff.Store
	cfg        *config.Config
	clipboard  ops.Clipboard
	notifier   ops.Notifier
	logger     zerolog.Logger
	httpClient *http.Client
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(d *appDeps) *cli.App {
	app := &cli.App{
		Name:    "quickmr",
		Usage:   "Carry a GitLab issue into a merge request description",
		Version: Version,
		Commands: []*cli.Command{
			captureCmd(d),
			statusCmd(d),
			applyCmd(d),
			copyCmd(d),
			dismissCmd(d),
			branchCmd(d),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// ctx returns the command context with the logger attached for ops.
func (d *appDeps) ctx(c *cli.Context) context.Context {
	return d.logger.WithContext(c.Context)
}

// captureCmd creates the capture command.
func captureCmd(d *appDeps) *cli.Command {
	return &cli.Command{
		Name:      "capture",
		Usage:     "Capture an MR template from a GitLab issue page",
		ArgsUsage: "<issue-url>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Author handle (overrides config and page lookups)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("exactly one issue URL is required"))
			}

			opts := []source.IssueOption{
				source.WithTimeout(d.cfg.HTTPTimeout()),
				source.WithToken(d.cfg.Token()),
				source.WithIssueLogger(d.logger),
			}
			if d.httpClient != nil {
				opts = append(opts, source.WithHTTPClient(d.httpClient))
			}
			issue, err := source.NewIssue(c.Args().First(), opts...)
			if err != nil {
				return outputError(err)
			}

			lookups := []source.Provider[string]{
				source.Static(c.String("username")),
				source.Static(d.cfg.Username),
			}
			lookups = append(lookups, issue.UsernameLookups()...)

			output, err := ops.Capture(d.ctx(c), d.store, d.notifier, ops.CaptureInput{
				Source:      issue,
				UserLookups: lookups,
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// statusCmd creates the status command.
func statusCmd(d *appDeps) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the pending MR template",
		Action: func(c *cli.Context) error {
			output, err := ops.Status(d.ctx(c), d.store)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// targetFlags are shared by apply and copy.
func targetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "MR description file (default: read description from stdin)"},
		&cli.StringFlag{Name: "title-file", Usage: "MR title file, filled when empty"},
		&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Current MR title when reading the description from stdin"},
	}
}

// targetFromFlags builds the MR form to work on. Without --file the description
// comes from stdin (empty when stdin is a terminal).
func targetFromFlags(c *cli.Context) (ops.Target, error) {
	if path := c.String("file"); path != "" {
		return &ops.FileTarget{DescriptionPath: path, TitlePath: c.String("title-file")}, nil
	}

	target := &ops.MemoryTarget{}
	if c.IsSet("title") {
		target.TitleText = c.String("title")
		target.HasTitle = true
	}
	if stdinHasData() {
		desc, err := readStdin(maxStdinBytes)
		if err != nil {
			return nil, err
		}
		target.Desc = desc
	}
	return target, nil
}

// applyCmd creates the apply command.
func applyCmd(d *appDeps) *cli.Command {
	return &cli.Command{
		Name:  "apply",
		Usage: "Apply the pending template to an MR description and clear it",
		Flags: targetFlags(),
		Action: func(c *cli.Context) error {
			target, err := targetFromFlags(c)
			if err != nil {
				return outputError(err)
			}

			ctx := d.ctx(c)
			session, err := ops.OpenSession(ctx, d.store, d.sessionDeps(target))
			if err != nil {
				return outputError(err)
			}
			output, err := session.Apply(ctx)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// copyCmd creates the copy command.
func copyCmd(d *appDeps) *cli.Command {
	return &cli.Command{
		Name:  "copy",
		Usage: "Copy the merged MR description to the clipboard (template stays pending)",
		Flags: targetFlags(),
		Action: func(c *cli.Context) error {
			target, err := targetFromFlags(c)
			if err != nil {
				return outputError(err)
			}

			ctx := d.ctx(c)
			session, err := ops.OpenSession(ctx, d.store, d.sessionDeps(target))
			if err != nil {
				return outputError(err)
			}
			output, err := session.Copy(ctx)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// dismissCmd creates the dismiss command.
func dismissCmd(d *appDeps) *cli.Command {
	return &cli.Command{
		Name:  "dismiss",
		Usage: "Discard the pending template",
		Action: func(c *cli.Context) error {
			ctx := d.ctx(c)
			session, err := ops.OpenSession(ctx, d.store, d.sessionDeps(nil))
			if err != nil {
				return outputError(err)
			}
			output, err := session.Dismiss(ctx)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// branchCmd creates the branch command.
func branchCmd(d *appDeps) *cli.Command {
	return &cli.Command{
		Name:      "branch",
		Usage:     "Suggest a branch name for an issue (default: the pending template)",
		ArgsUsage: "[issue-number]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Issue title"},
			&cli.BoolFlag{Name: "copy", Aliases: []string{"c"}, Usage: "Copy the pending template's branch name to the clipboard"},
		},
		Action: func(c *cli.Context) error {
			ctx := d.ctx(c)

			if c.Bool("copy") {
				if c.NArg() > 0 {
					return outputError(errors.NewInvalidRequest("--copy works on the pending template only"))
				}
				session, err := ops.OpenSession(ctx, d.store, d.sessionDeps(nil))
				if err != nil {
					return outputError(err)
				}
				output, err := session.CopyBranch(ctx)
				if err != nil {
					return outputError(err)
				}
				return outputJSON(output)
			}

			output, err := ops.SuggestBranch(ctx, d.store, ops.BranchInput{
				IssueNumber: c.Args().First(),
				Title:       c.String("title"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func (d *appDeps) sessionDeps(target ops.Target) ops.SessionDeps {
	return ops.SessionDeps{Target: target, Clipboard: d.clipboard, Notifier: d.notifier}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var qe *errors.QuickError
	if stderrors.As(err, &qe) {
		return cli.Exit(fmt.Sprintf("[%s] %s", qe.Code, qe.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads stdin up to limit bytes. The text is returned as-is.
func readStdin(limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(os.Stdin, limit+1))
	if err != nil {
		return "", errors.NewInternal(err)
	}
	if int64(len(data)) > limit {
		return "", errors.NewInvalidRequest(fmt.Sprintf("stdin exceeds %d bytes", limit))
	}
	return string(data), nil
}
