// Command propimport loads property CSV files into PostgreSQL from the
// command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/propimport/internal/config"
	"github.com/JonMunkholm/propimport/internal/logging"
)

const (
	exitFatal = 1
	exitUsage = 2
)

// exitError carries the process exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// exitCode maps a command error to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitFatal
}

// globalOptions are flags shared by every subcommand.
type globalOptions struct {
	envFile string
	locale  string
	verbose bool
}

func newRootCmd() *cobra.Command {
	var opts globalOptions

	root := &cobra.Command{
		Use:           "propimport",
		Short:         "Validate and upsert property listings from CSV",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Environment file to load if present")
	root.PersistentFlags().StringVar(&opts.locale, "locale", "", "Message and header language: ja or en (default: APP_LOCALE)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log at debug level")

	root.AddCommand(newLoadCmd(&opts), newCountCmd(&opts), newResetCmd(&opts))
	return root
}

// loadConfig reads the environment file and configuration, applies flag
// overrides and configures logging to stderr.
func loadConfig(opts *globalOptions) (*config.Config, error) {
	if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, withCode(exitUsage, fmt.Errorf("load %s: %w", opts.envFile, err))
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, withCode(exitUsage, err)
	}

	if opts.locale != "" {
		cfg.App.Locale = opts.locale
		if err := cfg.Validate(); err != nil {
			return nil, withCode(exitUsage, err)
		}
	}

	level := cfg.Logging.Level
	if opts.verbose {
		level = "debug"
	}
	slog.SetDefault(slog.New(logging.NewHandler(os.Stderr, level, cfg.Logging.Format, cfg.Logging.Color)))

	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}
