package main

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/walteh/logfix/cmd/logfix/opts"
	"github.com/walteh/logfix/pkg/plan"
	"gitlab.com/tozd/go/errors"
)

var (
	// Flags
	rootDir  string
	planFile string
	debugLog bool
	dryRun   bool
	strict   bool
)

// newRootOpts creates a new rootOpts with initialized dependencies
func newRootOpts(ctx context.Context) (*opts.RootOpts, error) {
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, errors.Errorf("resolving root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.Errorf("reading root: %w", err)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("root %s is not a directory", abs)
	}

	// plan files are resolved from the working directory, targets from --root
	pl := plan.Deribit()
	if planFile != "" {
		pl, err = plan.Load(ctx, afero.NewOsFs(), planFile)
		if err != nil {
			return nil, errors.Errorf("loading plan: %w", err)
		}
	} else if err := pl.Validate(); err != nil {
		return nil, errors.Errorf("validating built-in plan: %w", err)
	}

	return &opts.RootOpts{
		Plan:   pl,
		Fs:     afero.NewBasePathFs(afero.NewOsFs(), abs),
		DryRun: dryRun,
		Strict: strict,
	}, nil
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&rootDir, "root", "r", ".", "directory the plan's file paths are relative to")
	cmd.PersistentFlags().StringVarP(&planFile, "plan", "p", "", "plan file (.yaml, .hcl or .json); defaults to the built-in deribit_wrapper plan")
	cmd.PersistentFlags().BoolVarP(&debugLog, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "print diffs instead of writing files")
	cmd.PersistentFlags().BoolVar(&strict, "strict", false, "fail when a rule matches nothing or print( statements remain")
}

// setupLogging configures zerolog based on flags
func setupLogging(w io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	if debugLog {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(level).With().Timestamp().Logger()
}
