package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lukemcguire/docscrape/result"
)

var (
	titleStyle       = lipgloss.NewStyle().Bold(true)
	successStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	headerStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	categoryStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	dimStyle         = lipgloss.NewStyle().Faint(true)
	urlStyle         = lipgloss.NewStyle()
	statusErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// categoryOrder is the display order of failure categories, most actionable
// first.
var categoryOrder = []result.ErrorCategory{
	result.Category4xx,
	result.Category5xx,
	result.CategoryTimeout,
	result.CategoryDNSFailure,
	result.CategoryConnectionRefused,
	result.CategoryRedirectLoop,
	result.CategoryOutOfScope,
	result.CategoryTooLarge,
	result.CategoryUnsupported,
	result.CategoryParse,
	result.CategoryUnknown,
}

// Summary is what RenderSummary shows about a finished crawl.
type Summary struct {
	Pages    int              // Pages that produced content
	Failures []result.Failure // Pages that did not
	Duration time.Duration    // Zero when unknown
	Output   string           // Where the export was written, if anywhere
}

// RenderSummary produces a Lip Gloss styled summary of a finished crawl.
func RenderSummary(s Summary) string {
	var builder strings.Builder

	if len(s.Failures) == 0 {
		builder.WriteString(successStyle.Render(fmt.Sprintf("Extracted %d pages with no failures", s.Pages)))
		builder.WriteString("\n")
		writeFooter(&builder, s)
		return builder.String()
	}

	grouped := make(map[result.ErrorCategory][]result.Failure)
	for _, f := range s.Failures {
		cat := f.ErrorCategory
		if cat == "" {
			cat = result.CategoryUnknown
		}
		grouped[cat] = append(grouped[cat], f)
	}

	for _, cat := range categoryOrder {
		failures := grouped[cat]
		if len(failures) == 0 {
			continue
		}

		builder.WriteString(categoryStyle.Render(fmt.Sprintf("## %s (%d)", result.FormatCategory(cat), len(failures))))
		builder.WriteString("\n")

		rows := make([][]string, 0, len(failures))
		for _, f := range failures {
			status := f.Error
			if f.StatusCode != 0 {
				status = strconv.Itoa(f.StatusCode)
			}
			rows = append(rows, []string{f.URL, status})
		}

		catTable := table.New().
			Border(lipgloss.RoundedBorder()).
			Headers("URL", "Status").
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				if col == 1 {
					return statusErrorStyle
				}
				return urlStyle
			}).
			Rows(rows...)

		builder.WriteString(catTable.Render())
		builder.WriteString("\n\n")
	}

	builder.WriteString(titleStyle.Render(fmt.Sprintf(
		"Extracted %d pages, %d failed",
		s.Pages, len(s.Failures),
	)))
	builder.WriteString("\n")
	writeFooter(&builder, s)

	return builder.String()
}

func writeFooter(builder *strings.Builder, s Summary) {
	var parts []string
	if s.Duration > 0 {
		parts = append(parts, "took "+s.Duration.Round(time.Millisecond).String())
	}
	if s.Output != "" {
		parts = append(parts, "written to "+s.Output)
	}
	if len(parts) == 0 {
		return
	}
	builder.WriteString(dimStyle.Render(strings.Join(parts, ", ")))
	builder.WriteString("\n")
}
