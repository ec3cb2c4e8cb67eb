package text

import (
	"context"
	"io"
)

// Outcome describes what a rule or insertion did to a piece of content
type Outcome string

const (
	// OutcomeApplied means the source text (or anchor) was found and rewritten
	OutcomeApplied Outcome = "applied"

	// OutcomeAlreadyApplied means the source text is gone and the replacement is
	// already there, or the insertion marker is already present
	OutcomeAlreadyApplied Outcome = "already_applied"

	// OutcomeMissing means neither the source text nor its replacement was found
	OutcomeMissing Outcome = "missing"
)

// StepKind identifies whether a step came from a rule or an insertion
type StepKind string

const (
	StepRule      StepKind = "rule"
	StepInsertion StepKind = "insertion"
)

// ReplacementRule defines a single literal text replacement
type ReplacementRule struct {
	// Name identifies the rule in reports
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// FromText is the exact text to replace, whitespace and line breaks included
	FromText string `json:"from" yaml:"from"`

	// ToText is the replacement text
	ToText string `json:"to" yaml:"to"`
}

// Insertion ensures Text sits between Prefix and Suffix.
//
// The anchor is Prefix+Suffix. When Marker is already present in the content
// the insertion is skipped, which keeps repeated runs from duplicating it.
type Insertion struct {
	// Name identifies the insertion in reports
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Marker guards the insertion; an empty marker guards on Prefix+Text+Suffix
	Marker string `json:"marker,omitempty" yaml:"marker,omitempty"`

	// Prefix is the anchor text that precedes the inserted text
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`

	// Suffix is the anchor text that follows the inserted text
	Suffix string `json:"suffix,omitempty" yaml:"suffix,omitempty"`

	// Text is inserted between Prefix and Suffix
	Text string `json:"text" yaml:"text"`
}

// Anchor returns the text the insertion looks for
func (i Insertion) Anchor() string {
	return i.Prefix + i.Suffix
}

// Result returns the text the anchor is rewritten to
func (i Insertion) Result() string {
	return i.Prefix + i.Text + i.Suffix
}

// StepResult reports the outcome of one rule or insertion
type StepResult struct {
	Name    string
	Kind    StepKind
	Outcome Outcome
	// Count is the number of occurrences rewritten
	Count int
}

// ReplacementResult contains the results of a text replacement operation
type ReplacementResult struct {
	// WasModified indicates if any replacements were made
	WasModified bool

	// ReplacementCount is the number of replacements made
	ReplacementCount int

	// OriginalContent is the content before replacements
	OriginalContent []byte

	// ModifiedContent is the content after replacements
	ModifiedContent []byte

	// Steps holds one entry per insertion and rule, in application order
	Steps []StepResult
}

// Missing returns the steps that matched nothing
func (r *ReplacementResult) Missing() []StepResult {
	var missing []StepResult
	for _, s := range r.Steps {
		if s.Outcome == OutcomeMissing {
			missing = append(missing, s)
		}
	}
	return missing
}

// CountOutcome returns how many steps ended with the given outcome
func (r *ReplacementResult) CountOutcome(o Outcome) int {
	n := 0
	for _, s := range r.Steps {
		if s.Outcome == o {
			n++
		}
	}
	return n
}

// TextReplacer defines the interface for text replacement operations
type TextReplacer interface {
	// ReplaceText applies a set of replacement rules to the content
	ReplaceText(ctx context.Context, content io.Reader, rules []ReplacementRule) (*ReplacementResult, error)

	// Apply runs the insertions and then the rules against the content
	Apply(ctx context.Context, content io.Reader, insertions []Insertion, rules []ReplacementRule) (*ReplacementResult, error)

	// ValidateRules checks that all rules are valid
	ValidateRules(rules []ReplacementRule) error

	// ValidateInsertions checks that all insertions are valid
	ValidateInsertions(insertions []Insertion) error
}
