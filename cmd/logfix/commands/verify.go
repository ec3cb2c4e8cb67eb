package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/logfix/cmd/logfix/opts"
	"github.com/walteh/logfix/pkg/log"
	"github.com/walteh/logfix/pkg/status"
	"github.com/walteh/logfix/pkg/verify"
	"gitlab.com/tozd/go/errors"
)

// NewVerifyCmd creates a new verify command
func NewVerifyCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [paths or globs...]",
		Short: "Search files for leftover print( statements",
		Long: `Verify searches files for the plan's verify pattern without changing them.
Paths default to the plan's files and may be globs such as 'deribit_wrapper/**/*.py'.
Matches are a warning unless --strict is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "verify").Logger().WithContext(cmd.Context())
			console := log.FromContext(ctx)

			paths := args
			if len(paths) == 0 {
				paths = opts.Plan.Paths()
			}

			console.Header("Verifying no " + opts.Plan.Verify.Pattern + " statements remain")

			r, err := verify.New(opts.Fs).VerifyFiles(ctx, paths, opts.Plan.Verify.Pattern)
			if err != nil {
				return errors.Errorf("verifying files: %w", err)
			}

			return report(console, opts.Strict, r)
		},
	}

	return cmd
}

// report prints the verification result; leftovers are fatal only in strict mode
func report(console *log.Logger, strict bool, r *verify.Report) error {
	if r.OK() {
		console.Successf("No %s statements found in %d file(s)", r.Pattern, len(r.Files))
		return nil
	}

	console.Warningf("%d line(s) still contain %s", len(r.Findings), r.Pattern)
	out, err := status.NewDefaultFormatter().FormatFindings(r)
	if err != nil {
		return errors.Errorf("rendering findings: %w", err)
	}
	console.Print(out)

	if strict {
		return errors.Errorf("%d line(s) still contain %q", len(r.Findings), r.Pattern)
	}
	return nil
}
