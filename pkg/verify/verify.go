// Package verify searches fixed files for leftover calls that should have been migrated.
package verify

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// Document is one file's content as seen by the verifier
type Document struct {
	Path    string
	Content []byte
}

// Finding is a single line containing the pattern
type Finding struct {
	Path string
	Line int
	Text string
}

// String formats the finding the way grep -n does for multiple files
func (f Finding) String() string {
	return fmt.Sprintf("%s:%d:%s", f.Path, f.Line, f.Text)
}

// Report is the result of a search
type Report struct {
	Pattern  string
	Files    []string
	Findings []Finding
}

// OK reports whether no file contained the pattern
func (r *Report) OK() bool {
	return len(r.Findings) == 0
}

// String renders every finding on its own line
func (r *Report) String() string {
	var b strings.Builder
	for _, f := range r.Findings {
		b.WriteString(f.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// Search looks for pattern on every line of every document. Line numbers start at 1.
func Search(docs []Document, pattern string) *Report {
	report := &Report{Pattern: pattern}
	for _, doc := range docs {
		report.Files = append(report.Files, doc.Path)
		if pattern == "" {
			continue
		}
		// splitting never fails, so no line is dropped however long it is
		for i, raw := range bytes.Split(doc.Content, []byte("\n")) {
			text := strings.TrimSuffix(string(raw), "\r")
			if strings.Contains(text, pattern) {
				report.Findings = append(report.Findings, Finding{Path: doc.Path, Line: i + 1, Text: text})
			}
		}
	}
	return report
}

// Verifier reads files from a filesystem and searches them
type Verifier struct {
	fs afero.Fs
}

// New creates a verifier over fs
func New(fs afero.Fs) *Verifier {
	return &Verifier{fs: fs}
}

// VerifyFiles searches the given paths for pattern. Paths containing glob
// metacharacters are expanded with doublestar; plain paths must exist.
func (v *Verifier) VerifyFiles(ctx context.Context, paths []string, pattern string) (*Report, error) {
	logger := zerolog.Ctx(ctx)

	files, err := v.expand(paths)
	if err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("verifying files: %w", err)
		}
		content, err := afero.ReadFile(v.fs, path)
		if err != nil {
			return nil, errors.Errorf("reading %s: %w", path, err)
		}
		docs = append(docs, Document{Path: path, Content: content})
	}

	report := Search(docs, pattern)
	logger.Debug().
		Str("pattern", pattern).
		Int("files", len(report.Files)).
		Int("findings", len(report.Findings)).
		Msg("verification complete")

	return report, nil
}

func (v *Verifier) expand(paths []string) ([]string, error) {
	var files []string
	seen := map[string]bool{}
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, p := range paths {
		if !strings.ContainsAny(p, "*?[{") {
			add(filepath.Clean(p))
			continue
		}
		if !doublestar.ValidatePattern(filepath.ToSlash(p)) {
			return nil, errors.Errorf("invalid glob pattern %q", p)
		}
		matches, err := doublestar.Glob(afero.NewIOFS(v.fs), filepath.ToSlash(p), doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Errorf("expanding %s: %w", p, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			add(filepath.FromSlash(m))
		}
	}

	return files, nil
}
