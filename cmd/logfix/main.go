// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/walteh/logfix/cmd/logfix/commands"
	"github.com/walteh/logfix/cmd/logfix/opts"
	"github.com/walteh/logfix/pkg/log"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %s\n", color.New(color.FgRed).Sprint(err.Error()))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	// filled in before any command runs
	rootOpts := &opts.RootOpts{}

	rootCmd := &cobra.Command{
		Use:   "logfix",
		Short: "Replace print() calls in deribit_wrapper with logging",
		Long: `logfix rewrites the deribit_wrapper package so diagnostics go through
the logging module instead of print().
It will:
1. Add the logging import and a module logger where they are missing
2. Replace each known print() call with its logging equivalent
3. Search the fixed files for any print( left behind

Running it again is safe: work that is already done is skipped.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			zlog := setupLogging(cmd.ErrOrStderr())
			ctx := zlog.WithContext(cmd.Context())

			o, err := newRootOpts(ctx)
			if err != nil {
				return err
			}
			*rootOpts = *o

			cmd.SetContext(log.NewContext(ctx, log.New(cmd.OutOrStdout(), zlog)))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.Apply(cmd.Context(), rootOpts)
		},
	}

	addRootFlags(rootCmd)

	rootCmd.AddCommand(
		commands.NewApplyCmd(rootOpts),
		commands.NewVerifyCmd(rootOpts),
		commands.NewPlanCmd(rootOpts),
		newVersionCmd(),
	)

	return rootCmd
}
