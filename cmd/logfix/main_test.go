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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testdata = "../../pkg/plan/testdata"

var targets = []string{"authentication.py", "account_management.py", "trading.py", "market_data.py"}

func TestMain(m *testing.M) {
	color.NoColor = true
	pterm.DisableStyling()
	os.Exit(m.Run())
}

// seedRoot copies the unfixed deribit_wrapper fixtures into a temp root
func seedRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "deribit_wrapper"), 0o755))
	for _, name := range targets {
		data, err := os.ReadFile(filepath.Join(testdata, "deribit_wrapper", name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(root, "deribit_wrapper", name), data, 0o644))
	}
	return root
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := newRootCmd()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func readTarget(t *testing.T, root, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, "deribit_wrapper", name))
	require.NoError(t, err)
	return string(data)
}

func readGolden(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(testdata, "golden", "deribit_wrapper", name))
	require.NoError(t, err)
	return string(data)
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name        string
		args        func(root string) []string
		setup       func(t *testing.T, root string)
		wantErr     bool
		errContains string
		validate    func(t *testing.T, root, stdout string)
	}{
		{
			name: "bare_command_applies",
			args: func(root string) []string { return []string{"--root", root} },
			validate: func(t *testing.T, root, stdout string) {
				for _, name := range targets {
					assert.Equal(t, readGolden(t, name), readTarget(t, root, name), name)
				}
				assert.Contains(t, stdout, "Applying logging fixes to deribit-wrapper")
				assert.Contains(t, stdout, "Fixed 4 of 4 file(s)")
				assert.Contains(t, stdout, "No print( statements found in 4 file(s)")
			},
		},
		{
			name: "apply_twice_is_stable",
			args: func(root string) []string { return []string{"apply", "--root", root} },
			setup: func(t *testing.T, root string) {
				_, _, err := execute(t, "apply", "--root", root)
				require.NoError(t, err)
			},
			validate: func(t *testing.T, root, stdout string) {
				for _, name := range targets {
					assert.Equal(t, readGolden(t, name), readTarget(t, root, name), name)
				}
				assert.Contains(t, stdout, "unchanged")
				assert.Contains(t, stdout, "Fixed 0 of 4 file(s)")
				assert.NotContains(t, stdout, "matched nothing")
			},
		},
		{
			name: "dry_run_prints_diff",
			args: func(root string) []string { return []string{"apply", "--dry-run", "--root", root} },
			validate: func(t *testing.T, root, stdout string) {
				assert.Contains(t, stdout, "--- a/deribit_wrapper/authentication.py")
				assert.Contains(t, stdout, "would fix")
				assert.Contains(t, stdout, "Would fix 4 of 4 file(s)")
				for _, name := range targets {
					data, err := os.ReadFile(filepath.Join(testdata, "deribit_wrapper", name))
					require.NoError(t, err)
					assert.Equal(t, string(data), readTarget(t, root, name), "dry run must not write %s", name)
				}
			},
		},
		{
			name: "verify_before_fix_is_advisory",
			args: func(root string) []string { return []string{"verify", "--root", root} },
			validate: func(t *testing.T, root, stdout string) {
				assert.Contains(t, stdout, "line(s) still contain print(")
				assert.Contains(t, stdout, "deribit_wrapper/market_data.py")
			},
		},
		{
			name:        "verify_strict_fails",
			args:        func(root string) []string { return []string{"verify", "--strict", "--root", root, "deribit_wrapper/*.py"} },
			wantErr:     true,
			errContains: `still contain "print("`,
		},
		{
			name: "verify_glob_after_fix",
			args: func(root string) []string { return []string{"verify", "--root", root, "deribit_wrapper/**/*.py"} },
			setup: func(t *testing.T, root string) {
				_, _, err := execute(t, "--root", root)
				require.NoError(t, err)
			},
			validate: func(t *testing.T, root, stdout string) {
				assert.Contains(t, stdout, "No print( statements found in 4 file(s)")
			},
		},
		{
			name: "verify_reports_leftover",
			args: func(root string) []string { return []string{"verify", "--root", root, "extra.py"} },
			setup: func(t *testing.T, root string) {
				require.NoError(t, os.WriteFile(filepath.Join(root, "extra.py"), []byte("import os\nprint('x')\n"), 0o644))
			},
			validate: func(t *testing.T, root, stdout string) {
				assert.Contains(t, stdout, "extra.py")
				assert.Contains(t, stdout, "print('x')")
			},
		},
		{
			name: "strict_apply_fails_on_unmatched_rule",
			args: func(root string) []string { return []string{"--strict", "--root", root} },
			setup: func(t *testing.T, root string) {
				require.NoError(t, os.WriteFile(filepath.Join(root, "deribit_wrapper", "authentication.py"), []byte("import os\n"), 0o644))
			},
			wantErr:     true,
			errContains: "rules did not match",
		},
		{
			name: "missing_file_is_fatal",
			args: func(root string) []string { return []string{"--root", root} },
			setup: func(t *testing.T, root string) {
				require.NoError(t, os.Remove(filepath.Join(root, "deribit_wrapper", "trading.py")))
			},
			wantErr:     true,
			errContains: "reading deribit_wrapper/trading.py",
		},
		{
			name:        "missing_root",
			args:        func(root string) []string { return []string{"--root", filepath.Join(root, "nope")} },
			wantErr:     true,
			errContains: "reading root",
		},
		{
			name: "plan_file",
			args: func(root string) []string {
				return []string{"--root", root, "--plan", filepath.Join(testdata, "plans", "market_data.yaml")}
			},
			validate: func(t *testing.T, root, stdout string) {
				assert.Equal(t, readGolden(t, "market_data.py"), readTarget(t, root, "market_data.py"))
				assert.Contains(t, readTarget(t, root, "trading.py"), "print(", "files outside the plan are untouched")
				assert.Contains(t, stdout, "market-data-only")
			},
		},
		{
			name:        "bad_plan_file",
			args:        func(root string) []string { return []string{"--root", root, "--plan", filepath.Join(root, "plan.toml")} },
			setup:       func(t *testing.T, root string) { require.NoError(t, os.WriteFile(filepath.Join(root, "plan.toml"), []byte("x"), 0o644)) },
			wantErr:     true,
			errContains: "no parser found",
		},
		{
			name: "plan_command",
			args: func(root string) []string { return []string{"plan", "--root", root} },
			validate: func(t *testing.T, root, stdout string) {
				assert.Contains(t, stdout, "deribit-wrapper: 4 files, 11 rules, 5 insertions")
				assert.Contains(t, stdout, "remove-subaccount-wait")
				assert.Contains(t, readTarget(t, root, "trading.py"), "print(", "plan does not write")
			},
		},
		{
			name: "version_command",
			args: func(root string) []string { return []string{"version", "--root", filepath.Join(root, "nope")} },
			validate: func(t *testing.T, root, stdout string) {
				assert.Contains(t, stdout, "logfix version info")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := seedRoot(t)
			if tt.setup != nil {
				tt.setup(t, root)
			}

			stdout, _, err := execute(t, tt.args(root)...)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
			if tt.validate != nil {
				tt.validate(t, root, stdout)
			}
		})
	}
}

func TestFormatVersion(t *testing.T) {
	out := FormatVersion(&VersionInfo{Version: "v1.2.3", Revision: "abc", Modified: true, GoVersion: "go1.23", Platform: "linux/amd64"})
	assert.Contains(t, out, "Version:   v1.2.3")
	assert.Contains(t, out, "Revision:  abc (modified)")
	assert.Contains(t, out, "Platform:  linux/amd64")
}

func TestDebugFlag(t *testing.T) {
	root := seedRoot(t)

	_, stderr, err := execute(t, "--debug", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, stderr, "step result")
	assert.Contains(t, stderr, "no-data-found")

	_, stderr, err = execute(t, "--root", root)
	require.NoError(t, err)
	assert.NotContains(t, stderr, "step result", "debug lines are hidden without --debug")
}
