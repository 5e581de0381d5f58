// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/jobhunt-assistant/internal/workflow"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintValidation outputs a human-readable summary of the input check.
func (p *Printer) PrintValidation(result map[string]any) {
	if result == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Valid input:      %v\n", asBool(result["is_valid"])))
	sb.WriteString(fmt.Sprintf("Work experience:  %v (%d entries)\n",
		asBool(result["has_work_experience"]), asInt(result["work_experience_count"])))
	sb.WriteString(fmt.Sprintf("Education:        %v\n", asBool(result["has_education"])))

	if missing := asStrings(result["missing_sections"]); len(missing) > 0 {
		sb.WriteString("\nMissing sections:\n")
		for _, m := range missing {
			sb.WriteString(fmt.Sprintf("  • %s\n", m))
		}
	}

	if summary, _ := result["validation_summary"].(string); summary != "" {
		sb.WriteString("\n" + summary)
	}

	p.printBox("INPUT VALIDATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMatchAssessment outputs the analysis stage's fit scores.
func (p *Printer) PrintMatchAssessment(analysis map[string]any) {
	assessment, _ := analysis["match_assessment"].(map[string]any)
	if assessment == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Overall match: %.1f / 5", asFloat(assessment["overall_match_score"])))
	if level, _ := assessment["match_level"].(string); level != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", level))
	}
	sb.WriteString("\n")

	dims := []struct{ key, label string }{
		{"industry_match", "Industry"},
		{"experience_match", "Experience"},
		{"skills_match", "Skills"},
	}
	for _, d := range dims {
		dim, _ := assessment[d.key].(map[string]any)
		if dim == nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n%s: %.1f\n", d.label, asFloat(dim["score"])))
		if gaps := asStrings(dim["gaps"]); len(gaps) > 0 {
			count := min(len(gaps), 3)
			for i := 0; i < count; i++ {
				gap := gaps[i]
				if len(gap) > 50 {
					gap = gap[:47] + "..."
				}
				sb.WriteString(fmt.Sprintf("  gap: %s\n", gap))
			}
		}
	}

	p.printBox("JOB FIT ASSESSMENT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSelectedProjects outputs the packaging stage's project picks.
func (p *Printer) PrintSelectedProjects(packaged map[string]any) {
	selected, _ := packaged["selected_projects"].([]any)
	if len(selected) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Selected %d projects:\n\n", len(selected)))

	count := min(len(selected), maxItemsToShow)
	for i := 0; i < count; i++ {
		project, _ := selected[i].(map[string]any)
		if project == nil {
			continue
		}
		name, _ := project["project_name"].(string)
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, name))
		if reason, _ := project["relevance_reason"].(string); reason != "" {
			if len(reason) > 50 {
				reason = reason[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("    %s\n", reason))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("PACKAGED PROJECTS", sb.String())
}

// PrintRecommendationItems outputs the reviewable edits awaiting feedback.
func (p *Printer) PrintRecommendationItems(items []workflow.Item) {
	if len(items) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d proposed edits:\n\n", len(items)))

	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		item := items[i]
		desc := item.Description
		if len(desc) > 50 {
			desc = desc[:47] + "..."
		}
		sb.WriteString(fmt.Sprintf("• [%s] %s\n", item.ID, item.Type))
		if desc != "" {
			sb.WriteString(fmt.Sprintf("  %s\n", desc))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more edits", len(items)-maxItemsToShow))
	}

	p.printBox("PROPOSED RESUME EDITS", sb.String())
}

// PrintModificationSummary outputs what the final generation applied.
func (p *Printer) PrintModificationSummary(artifact map[string]any) {
	if artifact == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Modifications applied: %d\n", asInt(artifact["total_modifications"])))

	if summary, _ := artifact["summary"].(map[string]any); summary != nil {
		if byType, _ := summary["by_type"].(map[string]any); len(byType) > 0 {
			sb.WriteString("\n")
			for kind, n := range byType {
				sb.WriteString(fmt.Sprintf("  %-28s %d\n", kind, asInt(n)))
			}
		}
	}

	p.printBox("FINAL RESUME GENERATED", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintWarnings outputs non-fatal issues the run accumulated.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintWarnings(warnings []string) {
	if len(warnings) == 0 {
		return
	}

	var sb strings.Builder
	for i, w := range warnings {
		if len(w) > 50 {
			w = w[:47] + "..."
		}
		sb.WriteString(fmt.Sprintf("⚠ %s", w))
		if i < len(warnings)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("WARNINGS", sb.String())
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asFloat(v any) float64 {
	f, _ := v.(float64)
	return f
}

func asInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return 0
}

func asStrings(v any) []string {
	items, _ := v.([]any)
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
