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

// Package fixer applies a plan to files on disk and verifies the result.
package fixer

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/logfix/pkg/log"
	"github.com/walteh/logfix/pkg/plan"
	"github.com/walteh/logfix/pkg/text"
	"github.com/walteh/logfix/pkg/verify"
	"gitlab.com/tozd/go/errors"
)

// ErrUnmatched is returned in strict mode when a rule or insertion matched nothing
var ErrUnmatched = errors.Base("rules did not match")

// 🔧 Options contains configuration for the fixer
type Options struct {
	// Fs is the filesystem plan paths are resolved against
	Fs afero.Fs
	// Replacer applies rules; defaults to text.SimpleTextReplacer
	Replacer text.TextReplacer
	// Console receives per-file progress lines
	Console *log.Logger
	// DryRun computes results and diffs without writing
	DryRun bool
	// Strict fails a file whose rules or insertions matched nothing
	Strict bool
}

// 📄 FileResult is the outcome of fixing one file
type FileResult struct {
	Path    string
	Result  *text.ReplacementResult
	Written bool
	Diff    string
}

// 📚 RunResult is the outcome of fixing every file in a plan and verifying them
type RunResult struct {
	Files  []*FileResult
	Report *verify.Report
}

// Missing returns how many steps matched nothing across all files
func (r *RunResult) Missing() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Result.Missing())
	}
	return n
}

// 🎮 Fixer applies file plans
type Fixer struct {
	fs       afero.Fs
	replacer text.TextReplacer
	console  *log.Logger
	dryRun   bool
	strict   bool
}

// 🏭 New creates a fixer with the given options
func New(opts Options) (*Fixer, error) {
	if opts.Fs == nil {
		return nil, errors.Errorf("filesystem is required")
	}
	if opts.Console == nil {
		return nil, errors.Errorf("console logger is required")
	}
	if opts.Replacer == nil {
		opts.Replacer = text.NewSimpleTextReplacer()
	}
	return &Fixer{
		fs:       opts.Fs,
		replacer: opts.Replacer,
		console:  opts.Console,
		dryRun:   opts.DryRun,
		strict:   opts.Strict,
	}, nil
}

// 📝 FixFile reads one file, applies its insertions and rules and writes it back
func (f *Fixer) FixFile(ctx context.Context, file plan.File) (*FileResult, error) {
	logger := zerolog.Ctx(ctx).With().Str("file", file.Path).Logger()

	info, err := f.fs.Stat(file.Path)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", file.Path, err)
	}
	if info.IsDir() {
		return nil, errors.Errorf("reading %s: is a directory", file.Path)
	}

	content, err := afero.ReadFile(f.fs, file.Path)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", file.Path, err)
	}

	result, err := f.replacer.Apply(ctx, bytes.NewReader(content), file.Insertions, file.Rules)
	if err != nil {
		return nil, errors.Errorf("applying rules to %s: %w", file.Path, err)
	}

	for _, step := range result.Steps {
		ev := logger.Debug()
		if step.Outcome == text.OutcomeMissing {
			ev = logger.Warn()
		}
		ev.Str("step", step.Name).
			Str("kind", string(step.Kind)).
			Str("outcome", string(step.Outcome)).
			Int("count", step.Count).
			Msg("step result")
	}

	fr := &FileResult{Path: file.Path, Result: result}
	op := log.FileOperation{
		Path:           filepath.Base(file.Path),
		Status:         log.StatusUnchanged,
		Applied:        result.CountOutcome(text.OutcomeApplied),
		AlreadyApplied: result.CountOutcome(text.OutcomeAlreadyApplied),
		Missing:        len(result.Missing()),
		Replacements:   result.ReplacementCount,
	}

	if missing := result.Missing(); f.strict && len(missing) > 0 {
		op.Status = log.StatusFailed
		f.console.LogFileOperation(ctx, op)
		names := make([]string, 0, len(missing))
		for _, m := range missing {
			names = append(names, m.Name)
		}
		return fr, errors.Errorf("%s: %w: %s", file.Path, ErrUnmatched, strings.Join(names, ", "))
	}

	if result.WasModified {
		fr.Diff, err = unifiedDiff(file.Path, result.OriginalContent, result.ModifiedContent)
		if err != nil {
			return nil, err
		}

		if f.dryRun {
			op.Status = log.StatusWouldFix
		} else {
			if err := writeFile(f.fs, file.Path, result.ModifiedContent, info.Mode().Perm()); err != nil {
				return nil, errors.Errorf("writing %s: %w", file.Path, err)
			}
			fr.Written = true
			op.Status = log.StatusFixed
		}
	}

	f.console.LogFileOperation(ctx, op)
	return fr, nil
}

// 🏃 Run fixes every file of the plan in order, then searches the fixed content
// for the plan's verify pattern. The first I/O error stops the run.
func (f *Fixer) Run(ctx context.Context, p *plan.Plan) (*RunResult, error) {
	f.console.Header("Applying " + planName(p))

	run := &RunResult{}
	docs := make([]verify.Document, 0, len(p.Files))

	for _, file := range p.Files {
		if err := ctx.Err(); err != nil {
			return run, errors.Errorf("fixing files: %w", err)
		}

		fr, err := f.FixFile(ctx, file)
		if fr != nil {
			run.Files = append(run.Files, fr)
		}
		if err != nil {
			return run, err
		}

		docs = append(docs, verify.Document{Path: file.Path, Content: fr.Result.ModifiedContent})
	}

	f.console.LogNewline()
	f.console.Infof("Verifying no %s statements remain", p.Verify.Pattern)

	run.Report = verify.Search(docs, p.Verify.Pattern)
	return run, nil
}

func planName(p *plan.Plan) string {
	if p.Name == "" {
		return "logging fixes"
	}
	return "logging fixes to " + p.Name
}
