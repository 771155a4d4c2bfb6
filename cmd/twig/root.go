package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raphi011/twig/internal/config"
	"github.com/raphi011/twig/internal/errs"
	"github.com/raphi011/twig/internal/git"
	"github.com/raphi011/twig/internal/log"
	"github.com/raphi011/twig/internal/output"
	"github.com/raphi011/twig/internal/selection"
	"github.com/raphi011/twig/internal/ticket"
	"github.com/raphi011/twig/internal/ui/progress"
	"github.com/raphi011/twig/internal/ui/prompt"
	"github.com/raphi011/twig/internal/worktree"
)

// Command group IDs for organizing help output
const (
	GroupCore    = "core"
	GroupUtility = "utility"
	GroupConfig  = "config"
)

// app is the state shared by all commands of one invocation.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// Global flags
	verbose bool
	quiet   bool

	workDir string
	cfg     *config.Config
	cfgErr  error
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(stderr, "twig: failed to get working directory: %v\n", err)
		return errs.ExitFailure
	}
	a.workDir = wd

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rootCmd := a.newRootCmd()
	rootCmd.SetArgs(args[1:])
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err = rootCmd.ExecuteContext(ctx)
	switch {
	case err == nil:
	case errors.Is(err, errs.ErrCancelled):
		fmt.Fprintln(stderr, "Cancelled")
	default:
		fmt.Fprintf(stderr, "twig: %v\n", err)
	}
	return errs.ExitCode(err)
}

func (a *app) newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "twig",
		Short: "Git worktree lifecycle manager",
		Long: `twig manages one git worktree per branch under a single worktrees root.

Worktrees are named after a ticket id and its summary, get an initial commit
and their dependencies installed, and are cleaned up once merged.`,
		SilenceUsage:               true,
		SilenceErrors:              true,
		SuggestionsMinimumDistance: 2,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := log.WithLogger(cmd.Context(), log.New(a.stderr, a.verbose, a.quiet))
			ctx = output.WithPrinter(ctx, a.stdout)
			cmd.SetContext(ctx)

			// Skip git check for completion and help commands
			if cmd.Name() == "completion" || cmd.Name() == "__complete" || cmd.Name() == "help" {
				return nil
			}
			if a.verbose && a.quiet {
				return fmt.Errorf("--verbose and --quiet are mutually exclusive")
			}
			return git.CheckGit()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Show external commands being executed")
	rootCmd.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "Suppress all log output")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddGroup(
		&cobra.Group{ID: GroupCore, Title: "Core Commands:"},
		&cobra.Group{ID: GroupUtility, Title: "Utility Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration Commands:"},
	)

	// Core commands
	rootCmd.AddCommand(a.newCreateCmd())
	rootCmd.AddCommand(a.newCheckoutCmd())
	rootCmd.AddCommand(a.newDeleteCmd())
	rootCmd.AddCommand(a.newCleanCmd())
	rootCmd.AddCommand(a.newUpdateCmd())

	// Utility commands
	rootCmd.AddCommand(a.newListCmd())
	rootCmd.AddCommand(a.newReposCmd())
	rootCmd.AddCommand(a.newMoveCmd())
	rootCmd.AddCommand(a.newRenameCmd())

	// Config commands
	rootCmd.AddCommand(a.newConfigCmd())
	rootCmd.AddCommand(a.newDoctorCmd())

	return rootCmd
}

// config loads the configuration once per invocation.
func (a *app) config() (*config.Config, error) {
	if a.cfg == nil && a.cfgErr == nil {
		cfg, err := config.Load()
		if err != nil {
			a.cfgErr = fmt.Errorf("config: %w", err)
		} else {
			a.cfg = &cfg
		}
	}
	return a.cfg, a.cfgErr
}

// manager wires a worktree.Manager to the configured collaborators.
func (a *app) manager(ctx context.Context) (*worktree.Manager, error) {
	l := log.FromContext(ctx)

	cfg, err := a.config()
	if err != nil {
		return nil, err
	}

	lookup, err := ticket.New(cfg.Ticket)
	if err != nil {
		l.Warnf("ticket lookup disabled: %v", err)
		lookup = nil
	}

	var store selection.Store
	if path, err := selection.DefaultPath(); err == nil {
		store = selection.NewFileStore(path)
	} else {
		l.Debug("no state directory, last selection is not remembered", "error", err)
	}

	return worktree.New(worktree.Options{
		Config:      cfg,
		Lookup:      lookup,
		Picker:      prompt.New(a.stdin, a.stderr),
		Store:       store,
		Interactive: prompt.IsTerminal(a.stdin),
		WorkDir:     a.workDir,
	}), nil
}

// spin shows a spinner on stderr until the returned func is called.
// Verbose and quiet output stay free of it.
func (a *app) spin(message string) func() {
	if a.verbose || a.quiet {
		return func() {}
	}
	s := progress.NewSpinner(a.stderr, message)
	s.Start()
	return s.Stop
}
