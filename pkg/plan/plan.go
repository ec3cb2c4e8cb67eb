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
	"fmt"
	"path/filepath"

	"github.com/walteh/logfix/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// DefaultVerifyPattern is the text the verifier searches for when a plan does not set one
const DefaultVerifyPattern = "print("

// 📄 File is the set of edits for one target file
type File struct {
	Path       string                 `json:"path" yaml:"path"`
	Insertions []text.Insertion       `json:"insertions,omitempty" yaml:"insertions,omitempty"`
	Rules      []text.ReplacementRule `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// 🔍 Verify configures the post-fix search
type Verify struct {
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
}

// 📚 Plan is the complete migration: files to fix, in order, plus the verify pass
type Plan struct {
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Files  []File `json:"files" yaml:"files"`
	Verify Verify `json:"verify,omitempty" yaml:"verify,omitempty"`
}

// 🔍 Validate checks the plan and fills in defaults
func (p *Plan) Validate() error {
	if len(p.Files) == 0 {
		return errors.Errorf("at least one file is required")
	}

	replacer := text.NewSimpleTextReplacer()
	seen := make(map[string]bool, len(p.Files))

	for i := range p.Files {
		f := &p.Files[i]
		if f.Path == "" {
			return errors.Errorf("file %d: path is required", i)
		}
		f.Path = filepath.Clean(f.Path)
		if seen[f.Path] {
			return errors.Errorf("file %d: %s is listed more than once", i, f.Path)
		}
		seen[f.Path] = true

		if len(f.Rules) == 0 && len(f.Insertions) == 0 {
			return errors.Errorf("file %s: no rules or insertions", f.Path)
		}
		if err := replacer.ValidateInsertions(f.Insertions); err != nil {
			return errors.Errorf("file %s: %w", f.Path, err)
		}
		if err := replacer.ValidateRules(f.Rules); err != nil {
			return errors.Errorf("file %s: %w", f.Path, err)
		}
		f.nameSteps()
	}

	if p.Verify.Pattern == "" {
		p.Verify.Pattern = DefaultVerifyPattern
	}

	return nil
}

// nameSteps gives unnamed rules and insertions a positional name for reports
func (f *File) nameSteps() {
	for i := range f.Insertions {
		if f.Insertions[i].Name == "" {
			f.Insertions[i].Name = fmt.Sprintf("insertion-%d", i+1)
		}
	}
	for i := range f.Rules {
		if f.Rules[i].Name == "" {
			f.Rules[i].Name = fmt.Sprintf("rule-%d", i+1)
		}
	}
}

// 📝 Paths returns the target file paths in plan order
func (p *Plan) Paths() []string {
	paths := make([]string, 0, len(p.Files))
	for _, f := range p.Files {
		paths = append(paths, f.Path)
	}
	return paths
}

// 📝 String returns a one-line summary of the plan
func (p *Plan) String() string {
	rules, insertions := 0, 0
	for _, f := range p.Files {
		rules += len(f.Rules)
		insertions += len(f.Insertions)
	}
	name := p.Name
	if name == "" {
		name = "unnamed"
	}
	return fmt.Sprintf("%s: %d files, %d rules, %d insertions", name, len(p.Files), rules, insertions)
}
