// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-editor/internal/sections"
	"github.com/jonathan/resume-editor/internal/types"
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
//nolint:errcheck // writing to a terminal; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to max runes, ending in "..." when cut.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}

// PrintAnalysis outputs the score, missing skills and the numbered recommendations of an
// analysis. The numbers are the indices the apply endpoints and export flags take.
func (p *Printer) PrintAnalysis(result *types.AnalysisResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Score:    %d (%s)\n", result.ATSScore, result.ScoreLabel)
	if result.PredictedScore != nil {
		fmt.Fprintf(&sb, "After:    %d if the suggestions are applied\n", *result.PredictedScore)
	}
	if result.RoleDetected != nil {
		fmt.Fprintf(&sb, "Role:     %s\n", *result.RoleDetected)
	}

	if len(result.MissingSkills) > 0 {
		sb.WriteString("\nMissing Skills:\n")
		categories := make([]string, 0, len(result.MissingSkills))
		for c := range result.MissingSkills {
			categories = append(categories, c)
		}
		slices.Sort(categories)
		for _, c := range categories {
			fmt.Fprintf(&sb, "  %s: %s\n", c, strings.Join(result.MissingSkills[c], ", "))
		}
	}

	if len(result.Suggestions) > 0 {
		sb.WriteString("\nSuggestions:\n")
		writeNumbered(&sb, result.Suggestions, "suggestions")
	}

	if len(result.Improvements) > 0 {
		sb.WriteString("\nImprovements:\n")
		afters := make([]string, len(result.Improvements))
		for i, imp := range result.Improvements {
			afters[i] = imp.After
		}
		writeNumbered(&sb, afters, "improvements")
	}

	p.printBox("RESUME ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

func writeNumbered(sb *strings.Builder, items []string, noun string) {
	count := min(len(items), maxItemsToShow)
	for i := range count {
		fmt.Fprintf(sb, "  [%d] %s\n", i, items[i])
	}
	if len(items) > maxItemsToShow {
		fmt.Fprintf(sb, "  ... and %d more %s\n", len(items)-maxItemsToShow, noun)
	}
}

// PrintSections outputs each section's id, title and line count.
func (p *Printer) PrintSections(secs []sections.Section) {
	if len(secs) == 0 {
		return
	}

	var sb strings.Builder
	for _, s := range secs {
		lines := 0
		if strings.TrimSpace(s.Content) != "" {
			lines = strings.Count(s.Content, "\n") + 1
		}
		fmt.Fprintf(&sb, "%-16s %-28s %3d line(s)\n", s.ID, truncate(s.Title, 28), lines)
	}

	p.printBox(fmt.Sprintf("PARSED SECTIONS (%d)", len(secs)), strings.TrimSuffix(sb.String(), "\n"))
}
