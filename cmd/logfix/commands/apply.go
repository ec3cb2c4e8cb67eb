package commands

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/logfix/cmd/logfix/opts"
	"github.com/walteh/logfix/pkg/fixer"
	"github.com/walteh/logfix/pkg/log"
	"github.com/walteh/logfix/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// NewApplyCmd creates a new apply command
func NewApplyCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Fix the plan's files and verify no print( remains",
		Long: `Apply runs every file in the plan through its insertions and rules.
It will:
1. Read each file in plan order, stopping at the first one that cannot be read
2. Insert the logging import and module logger unless already present
3. Replace each known print() call
4. Write changed files back in place (or show a diff with --dry-run)
5. Report any line that still contains print(`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Apply(cmd.Context(), opts)
		},
	}

	return cmd
}

// Apply fixes and verifies the plan in opts
func Apply(ctx context.Context, opts *opts.RootOpts) error {
	ctx = zerolog.Ctx(ctx).With().Str("command", "apply").Logger().WithContext(ctx)
	console := log.FromContext(ctx)

	f, err := fixer.New(fixer.Options{
		Fs:      opts.Fs,
		Console: console,
		DryRun:  opts.DryRun,
		Strict:  opts.Strict,
	})
	if err != nil {
		return errors.Errorf("creating fixer: %w", err)
	}

	run, err := f.Run(ctx, opts.Plan)
	if err != nil {
		if errors.Is(err, fixer.ErrUnmatched) {
			printSteps(console, run)
		}
		return errors.Errorf("applying plan: %w", err)
	}

	if opts.DryRun {
		for _, fr := range run.Files {
			if fr.Diff != "" {
				console.LogNewline()
				console.Print(fr.Diff)
			}
		}
	}

	if missing := run.Missing(); missing > 0 {
		console.Warningf("%d rule(s) matched nothing", missing)
		printSteps(console, run)
	}

	summarize(console, opts.DryRun)

	return report(console, opts.Strict, run.Report)
}

// summarize counts the files this run rewrote, or would have rewritten
func summarize(console *log.Logger, dryRun bool) {
	ops := console.Operations()
	changed := 0
	for _, op := range ops {
		if op.Status == log.StatusFixed || op.Status == log.StatusWouldFix {
			changed++
		}
	}
	verb := "Fixed"
	if dryRun {
		verb = "Would fix"
	}
	console.Infof("%s %d of %d file(s)", verb, changed, len(ops))
}

func printSteps(console *log.Logger, run *fixer.RunResult) {
	if run == nil {
		return
	}
	var rows []status.StepRow
	for _, fr := range run.Files {
		rows = append(rows, status.Rows(fr.Path, fr.Result.Steps)...)
	}
	out, err := status.NewDefaultFormatter().FormatSteps(rows)
	if err != nil {
		console.Errorf("rendering step table: %s", err)
		return
	}
	console.Print(out)
}
