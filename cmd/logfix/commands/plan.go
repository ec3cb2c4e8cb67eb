package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/logfix/cmd/logfix/opts"
	"github.com/walteh/logfix/pkg/log"
	"github.com/walteh/logfix/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// NewPlanCmd creates a new plan command
func NewPlanCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the files, insertions and rules that apply would use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := status.NewDefaultFormatter().FormatPlan(opts.Plan)
			if err != nil {
				return errors.Errorf("rendering plan: %w", err)
			}

			console := log.FromContext(cmd.Context())
			console.Header(opts.Plan.String())
			console.Print(out)
			return nil
		},
	}

	return cmd
}
