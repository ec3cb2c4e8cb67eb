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

package plan

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/logfix/pkg/text"
)

func applyFile(t *testing.T, f File, content string) *text.ReplacementResult {
	t.Helper()
	result, err := text.NewSimpleTextReplacer().Apply(context.Background(), strings.NewReader(content), f.Insertions, f.Rules)
	require.NoError(t, err)
	return result
}

// 🧪 TestDeribitPlanMatchesGolden applies the built-in plan to the fixtures
func TestDeribitPlanMatchesGolden(t *testing.T) {
	pl := Deribit()
	require.NoError(t, pl.Validate())

	for _, f := range pl.Files {
		t.Run(filepath.Base(f.Path), func(t *testing.T) {
			before, err := os.ReadFile(filepath.Join("testdata", f.Path))
			require.NoError(t, err)
			want, err := os.ReadFile(filepath.Join("testdata", "golden", f.Path))
			require.NoError(t, err)

			first := applyFile(t, f, string(before))
			assert.Equal(t, string(want), string(first.ModifiedContent), "fixed content should match golden file")
			assert.Empty(t, first.Missing(), "every rule should match the fixture")
			assert.NotContains(t, string(first.ModifiedContent), "print(")

			for _, rule := range f.Rules {
				assert.NotContains(t, string(first.ModifiedContent), rule.FromText, "rule %s source should be gone", rule.Name)
				assert.Contains(t, string(first.ModifiedContent), rule.ToText, "rule %s replacement should be present", rule.Name)
			}

			second := applyFile(t, f, string(first.ModifiedContent))
			assert.False(t, second.WasModified, "second run should change nothing")
			assert.True(t, bytes.Equal(first.ModifiedContent, second.ModifiedContent), "second run should be byte identical")
			assert.Empty(t, second.Missing())
		})
	}
}

func TestDeribitPlanLoggerNotDuplicated(t *testing.T) {
	pl := Deribit()
	require.NoError(t, pl.Validate())

	for _, f := range pl.Files[1:3] {
		t.Run(filepath.Base(f.Path), func(t *testing.T) {
			unfixed, err := os.ReadFile(filepath.Join("testdata", f.Path))
			require.NoError(t, err)

			// logging is already set up, just not where the insertions would put it
			before := "import logging\n" + string(unfixed) + "\nlogger = logging.getLogger(__name__)\n"
			for _, ins := range f.Insertions {
				require.Contains(t, before, ins.Anchor(), "%s anchor should be intact", ins.Name)
			}

			result := applyFile(t, f, before)
			after := string(result.ModifiedContent)
			assert.Equal(t, 1, strings.Count(after, "logger = logging.getLogger(__name__)"))
			assert.Equal(t, 1, strings.Count(after, "import logging\n"))
			assert.NotContains(t, after, "# Create module logger")

			for _, step := range result.Steps {
				if step.Kind == text.StepInsertion {
					assert.Equal(t, text.OutcomeAlreadyApplied, step.Outcome, step.Name)
				}
			}
		})
	}
}

func TestDeribitPlanErrorCodeLines(t *testing.T) {
	auth := Deribit().Files[0]

	content := "            print(f'Error code {error_code} for request {uri} with params {sanitized_params}.')\n            print(error_data)"
	want := "            logger.warning(f'Error code {error_code} for request {uri} with params {sanitized_params}.')\n            logger.debug(f'Error data: {error_data}')"

	result := applyFile(t, auth, content)
	assert.Equal(t, want, string(result.ModifiedContent))
	assert.NotContains(t, string(result.ModifiedContent), "print(")
}

func TestDeribitPlanMissingAnchor(t *testing.T) {
	trading := Deribit().Files[2]

	content := "import os\n\nclass Unrelated:\n    pass\n"
	result := applyFile(t, trading, content)

	assert.Equal(t, content, string(result.ModifiedContent), "unrelated content should be untouched")
	assert.Len(t, result.Missing(), len(trading.Insertions)+len(trading.Rules))
}

func TestPlanValidate(t *testing.T) {
	tests := []struct {
		name        string
		plan        Plan
		errContains string
		check       func(t *testing.T, p *Plan)
	}{
		{
			name: "defaults_filled_in",
			plan: Plan{Files: []File{{
				Path:  "./pkg/a.py",
				Rules: []text.ReplacementRule{{FromText: "print(a)", ToText: "logger.info(a)"}},
			}}},
			check: func(t *testing.T, p *Plan) {
				assert.Equal(t, DefaultVerifyPattern, p.Verify.Pattern)
				assert.Equal(t, "pkg/a.py", p.Files[0].Path)
				assert.Equal(t, "rule-1", p.Files[0].Rules[0].Name)
			},
		},
		{
			name:        "no_files",
			plan:        Plan{},
			errContains: "at least one file is required",
		},
		{
			name:        "empty_path",
			plan:        Plan{Files: []File{{Rules: []text.ReplacementRule{{FromText: "a", ToText: "b"}}}}},
			errContains: "file 0: path is required",
		},
		{
			name: "duplicate_path",
			plan: Plan{Files: []File{
				{Path: "a.py", Rules: []text.ReplacementRule{{FromText: "a", ToText: "b"}}},
				{Path: "./a.py", Rules: []text.ReplacementRule{{FromText: "c", ToText: "d"}}},
			}},
			errContains: "listed more than once",
		},
		{
			name:        "no_steps",
			plan:        Plan{Files: []File{{Path: "a.py"}}},
			errContains: "no rules or insertions",
		},
		{
			name:        "empty_rule_source",
			plan:        Plan{Files: []File{{Path: "a.py", Rules: []text.ReplacementRule{{ToText: "b"}}}}},
			errContains: "from is required",
		},
		{
			name:        "insertion_without_anchor",
			plan:        Plan{Files: []File{{Path: "a.py", Insertions: []text.Insertion{{Text: "x"}}}}},
			errContains: "prefix or suffix is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plan.Validate()
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, &tt.plan)
			}
		})
	}
}

func TestPlanString(t *testing.T) {
	pl := Deribit()
	assert.Equal(t, "deribit-wrapper: 4 files, 11 rules, 5 insertions", pl.String())
	assert.Equal(t, []string{
		"deribit_wrapper/authentication.py",
		"deribit_wrapper/account_management.py",
		"deribit_wrapper/trading.py",
		"deribit_wrapper/market_data.py",
	}, pl.Paths())
}
