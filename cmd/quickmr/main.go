package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/quickmr/internal/clipboard"
	"github.com/hpungsan/quickmr/internal/config"
	"github.com/hpungsan/quickmr/internal/db"
	"github.com/hpungsan/quickmr/internal/handoff"
	"github.com/hpungsan/quickmr/internal/logging"
	"github.com/hpungsan/quickmr/internal/mcp"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"capture": true, "status": true, "apply": true,
	"copy": true, "dismiss": true, "branch": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	// Known subcommand → CLI
	if cliCommands[arg] {
		return true
	}
	// --help or --version → CLI
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   ___        _      _   __  __ ___
  / _ \ _   _(_) ___| | |  \/  |  _ \
 | | | | | | | |/ __| |/| |\/| | |_) |
 | |_| | |_| | | (__|   <| |  | |  _ <
  \__\_\\__,_|_|\___|_|\_\_|  |_|_| \_\

  Issue → merge request template handoff

  Usage: quickmr <command> [options]
         quickmr --help

  MCP server mode requires piped input.`)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(&appDeps{})
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	baseDir := filepath.Join(homeDir, config.DirName)

	cwd, _ := os.Getwd()
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New("quickmr", cfg.LogLevel, os.Stderr)

	database, err := db.Init(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()
	db.ConfigurePool(database, cfg)

	store := handoff.NewStore(database,
		handoff.WithTTL(cfg.TemplateTTL()),
		handoff.WithLogger(logger),
	)
	deps := &appDeps{
		store:     store,
		cfg:       cfg,
		clipboard: clipboard.NewSystem(logger),
		notifier:  logging.Notifier{Logger: logger},
		logger:    logger,
	}

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(deps)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'quickmr --help' for usage.\n")
		os.Exit(1)
	}

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		logger.Warn().Strs("tools", unknown).Msg("ignoring unknown disabled_tools entries")
	}

	// MCP server mode (default)
	if err := mcp.Run(store, cfg, Version,
		mcp.WithClipboard(deps.clipboard),
		mcp.WithNotifier(deps.notifier),
		mcp.WithLogger(logger),
	); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
