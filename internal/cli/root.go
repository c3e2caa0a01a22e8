// Package cli implements the recipebox command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/otiai10/recipebox/internal/app"
	"github.com/otiai10/recipebox/internal/config"
	"github.com/otiai10/recipebox/internal/logging"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// AppFactory builds the App for one command invocation
type AppFactory func(ctx context.Context, configPath string, stderr io.Writer) (*app.App, error)

// DefaultAppFactory loads the configuration, sets up logging and connects
// to the configured services.
func DefaultAppFactory(ctx context.Context, configPath string, stderr io.Writer) (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}

	logger, err := logging.New(cfg.Log, stderr)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to set up logging", err)
	}

	a, err := app.NewFromConfig(ctx, cfg, logger)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to initialize", err)
	}
	return a, nil
}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Format     string // "json" | "text"
	Token      string // Firebase ID token
	As         string // UID to act as when auth is disabled

	factory AppFactory
}

// NewRootCommand creates the root command for the recipebox CLI.
func NewRootCommand(factory AppFactory) *cobra.Command {
	cmd, _ := newRootCommand(factory)
	return cmd
}

func newRootCommand(factory AppFactory) (*cobra.Command, *RootOptions) {
	opts := &RootOptions{factory: factory}

	cmd := &cobra.Command{
		Use:           "recipebox",
		Short:         "Share recipes and reviews",
		Long:          "recipebox manages recipes, reviews and user profiles stored in Firestore.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to config.yaml (environment only if empty)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Token, "token", os.Getenv("RECIPEBOX_TOKEN"), "Firebase ID token of the signed-in user")
	cmd.PersistentFlags().StringVar(&opts.As, "as", "", "act as this UID (only when auth is disabled)")

	cmd.AddCommand(NewRecipesCommand(opts))
	cmd.AddCommand(NewProfileCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd, opts
}

// Execute runs the CLI with args and returns the process exit code
func Execute(ctx context.Context, factory AppFactory, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd, opts := newRootCommand(factory)
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	code, message := classifyError(err)
	if opts.Format == "json" {
		f := &OutputFormatter{Format: opts.Format, Writer: stdout}
		_ = f.Error(code, message, nil)
	} else {
		fmt.Fprintf(stderr, "Error [%s]: %s\n", code, message)
	}
	return GetExitCode(err)
}

// env is what a command needs to talk to the services
type env struct {
	cmd     *cobra.Command
	app     *app.App
	session *app.Session
	out     *OutputFormatter
}

// ctx returns the command's context carrying the signed-in identity
func (e *env) ctx() context.Context {
	return e.session.Context(e.cmd.Context())
}

// withSession signs the caller in, opens a session and runs fn
func withSession(cmd *cobra.Command, opts *RootOptions, fn func(e *env) error) error {
	ctx := cmd.Context()

	a, err := opts.factory(ctx, opts.ConfigPath, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	claims, err := a.SignIn(ctx, opts.Token, opts.As)
	if err != nil {
		return err
	}

	session := a.Open(claims)
	defer session.Close()

	return fn(&env{
		cmd:     cmd,
		app:     a,
		session: session,
		out:     &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()},
	})
}
