package status

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/walteh/logfix/pkg/plan"
	"github.com/walteh/logfix/pkg/text"
	"github.com/walteh/logfix/pkg/verify"
	"gitlab.com/tozd/go/errors"
)

// StepRow is one rule or insertion outcome for one file
type StepRow struct {
	File string
	Step text.StepResult
}

// Formatter defines how fix results are rendered
type Formatter interface {
	// FormatSteps renders rule and insertion outcomes
	FormatSteps(rows []StepRow) (string, error)

	// FormatFindings renders the verifier's leftover lines
	FormatFindings(report *verify.Report) (string, error)

	// FormatPlan renders the files and steps of a plan
	FormatPlan(p *plan.Plan) (string, error)
}

// DefaultFormatter renders tables with pterm
type DefaultFormatter struct{}

// NewDefaultFormatter creates a new DefaultFormatter
func NewDefaultFormatter() *DefaultFormatter {
	return &DefaultFormatter{}
}

func renderTable(data pterm.TableData) (string, error) {
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", errors.Errorf("rendering table: %w", err)
	}
	return out + "\n", nil
}

// outcomeLabel colors an outcome for the table
func outcomeLabel(o text.Outcome) string {
	switch o {
	case text.OutcomeApplied:
		return pterm.Green(string(o))
	case text.OutcomeMissing:
		return pterm.Yellow(string(o))
	default:
		return pterm.Gray(string(o))
	}
}

// FormatSteps implements Formatter.FormatSteps
func (f *DefaultFormatter) FormatSteps(rows []StepRow) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}
	data := pterm.TableData{{"File", "Kind", "Step", "Outcome", "Matches"}}
	for _, r := range rows {
		data = append(data, []string{
			r.File,
			string(r.Step.Kind),
			r.Step.Name,
			outcomeLabel(r.Step.Outcome),
			strconv.Itoa(r.Step.Count),
		})
	}
	return renderTable(data)
}

// FormatFindings implements Formatter.FormatFindings
func (f *DefaultFormatter) FormatFindings(report *verify.Report) (string, error) {
	if report == nil || report.OK() {
		return "", nil
	}
	data := pterm.TableData{{"File", "Line", "Text"}}
	for _, finding := range report.Findings {
		data = append(data, []string{finding.Path, strconv.Itoa(finding.Line), finding.Text})
	}
	return renderTable(data)
}

// FormatPlan implements Formatter.FormatPlan
func (f *DefaultFormatter) FormatPlan(p *plan.Plan) (string, error) {
	data := pterm.TableData{{"File", "Kind", "Step", "Detail"}}
	for _, file := range p.Files {
		for _, ins := range file.Insertions {
			detail := "marker: " + ins.Marker
			if ins.Marker == "" {
				detail = "guarded on inserted text"
			}
			data = append(data, []string{file.Path, string(text.StepInsertion), ins.Name, detail})
		}
		for _, rule := range file.Rules {
			data = append(data, []string{file.Path, string(text.StepRule), rule.Name, fmt.Sprintf("%d line(s)", lineCount(rule.FromText))})
		}
	}
	table, err := renderTable(data)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s\nverify pattern: %q\n", table, p.Verify.Pattern), nil
}

func lineCount(s string) int {
	n := 1
	for _, c := range s {
		if c == '\n' {
			n++
		}
	}
	return n
}

// Rows flattens per-file step results into table rows
func Rows(file string, steps []text.StepResult) []StepRow {
	rows := make([]StepRow, 0, len(steps))
	for _, s := range steps {
		rows = append(rows, StepRow{File: file, Step: s})
	}
	return rows
}
