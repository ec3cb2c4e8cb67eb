package text

import (
	"context"
	"io"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// SimpleTextReplacer implements TextReplacer using exact string matching
type SimpleTextReplacer struct{}

// NewSimpleTextReplacer creates a new SimpleTextReplacer
func NewSimpleTextReplacer() *SimpleTextReplacer {
	return &SimpleTextReplacer{}
}

// ReplaceText implements TextReplacer.ReplaceText
func (r *SimpleTextReplacer) ReplaceText(ctx context.Context, content io.Reader, rules []ReplacementRule) (*ReplacementResult, error) {
	return r.Apply(ctx, content, nil, rules)
}

// Apply implements TextReplacer.Apply
func (r *SimpleTextReplacer) Apply(ctx context.Context, content io.Reader, insertions []Insertion, rules []ReplacementRule) (*ReplacementResult, error) {
	originalContent, err := io.ReadAll(content)
	if err != nil {
		return nil, errors.Errorf("reading content: %w", err)
	}

	result := &ReplacementResult{
		OriginalContent: originalContent,
		ModifiedContent: originalContent,
	}

	currentContent := string(originalContent)

	for _, ins := range insertions {
		if ins.Anchor() == "" {
			continue
		}
		var step StepResult
		currentContent, step = ensureInserted(currentContent, ins)
		result.record(step)
	}

	for _, rule := range rules {
		// Skip empty rules
		if rule.FromText == "" {
			continue
		}
		var step StepResult
		currentContent, step = replaceAll(currentContent, rule)
		result.record(step)
	}

	result.ModifiedContent = []byte(currentContent)
	return result, nil
}

func (r *ReplacementResult) record(step StepResult) {
	r.Steps = append(r.Steps, step)
	if step.Outcome == OutcomeApplied {
		r.WasModified = true
		r.ReplacementCount += step.Count
	}
}

func replaceAll(content string, rule ReplacementRule) (string, StepResult) {
	step := StepResult{Name: rule.Name, Kind: StepRule}

	if n := strings.Count(content, rule.FromText); n > 0 {
		step.Outcome = OutcomeApplied
		step.Count = n
		return strings.ReplaceAll(content, rule.FromText, rule.ToText), step
	}

	// a pure deletion leaves nothing to look for
	if rule.ToText == "" || strings.Contains(content, rule.ToText) {
		step.Outcome = OutcomeAlreadyApplied
		return content, step
	}

	step.Outcome = OutcomeMissing
	return content, step
}

func ensureInserted(content string, ins Insertion) (string, StepResult) {
	step := StepResult{Name: ins.Name, Kind: StepInsertion}

	marker := ins.Marker
	if marker == "" {
		marker = ins.Result()
	}
	if strings.Contains(content, marker) {
		step.Outcome = OutcomeAlreadyApplied
		return content, step
	}

	n := strings.Count(content, ins.Anchor())
	if n == 0 {
		step.Outcome = OutcomeMissing
		return content, step
	}

	step.Outcome = OutcomeApplied
	step.Count = n
	return strings.ReplaceAll(content, ins.Anchor(), ins.Result()), step
}

// ValidateRules implements TextReplacer.ValidateRules
func (r *SimpleTextReplacer) ValidateRules(rules []ReplacementRule) error {
	for i, rule := range rules {
		if rule.FromText == "" {
			return errors.Errorf("rule %d: from is required", i)
		}
		if rule.FromText == rule.ToText {
			return errors.Errorf("rule %d: from and to are identical", i)
		}
	}
	return nil
}

// ValidateInsertions implements TextReplacer.ValidateInsertions
func (r *SimpleTextReplacer) ValidateInsertions(insertions []Insertion) error {
	for i, ins := range insertions {
		if ins.Anchor() == "" {
			return errors.Errorf("insertion %d: prefix or suffix is required", i)
		}
		if ins.Text == "" {
			return errors.Errorf("insertion %d: text is required", i)
		}
	}
	return nil
}
