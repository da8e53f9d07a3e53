// Package observability provides formatted terminal output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/jobtrack/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 10
)

// Printer handles formatted output for the CLI.
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

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintView outputs one page of the applications table with the summary
// cards and the active view state.
func (p *Printer) PrintView(view types.View, params types.ViewParams, summary types.TableSummary) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Total: %d  Active interviews: %d  Pending review: %d  Rejected: %d\n",
		summary.Total, summary.ActiveInterviews, summary.PendingReview, summary.Rejected))
	sb.WriteString(describeView(params))
	sb.WriteString("\n\n")

	if len(view.Records) == 0 {
		sb.WriteString("No applications found. Try adjusting your search or filters.\n")
	} else {
		sb.WriteString(fmt.Sprintf("%-4s %-16s %-20s %-10s %-12s %s\n", "ID", "Company", "Title", "Type", "Applied", "Status"))
		for _, rec := range view.Records {
			sb.WriteString(fmt.Sprintf("%-4d %-16s %-20s %-10s %-12s %s\n",
				rec.ID,
				truncate(rec.CompanyName, 16),
				truncate(rec.JobTitle, 20),
				truncate(string(rec.JobType), 10),
				rec.AppliedDate.String(),
				rec.Status))
		}
	}

	sb.WriteString(fmt.Sprintf("\nPage %d of %d (%d matching)", view.Page, max(view.TotalPages, 1), view.TotalCount))
	p.printBox("APPLICATIONS", sb.String())
}

// PrintDashboard outputs the headline stats and recent applications.
func (p *Printer) PrintDashboard(d types.Dashboard) {
	var sb strings.Builder

	if d.User != nil {
		sb.WriteString(fmt.Sprintf("Signed in as %s (%s)\n\n", d.User.Email, d.User.Role))
	}

	s := d.Stats
	sb.WriteString(fmt.Sprintf("Total applications:   %d\n", s.Total))
	sb.WriteString(fmt.Sprintf("Applied:              %d\n", s.Applied))
	sb.WriteString(fmt.Sprintf("Interview scheduled:  %d\n", s.InterviewScheduled))
	sb.WriteString(fmt.Sprintf("Selected:             %d\n", s.Selected))
	sb.WriteString(fmt.Sprintf("Rejected:             %d\n", s.Rejected))
	sb.WriteString(fmt.Sprintf("Offer rate:           %.1f%%\n", s.OfferRate))

	if len(d.Recent) > 0 {
		sb.WriteString("\nRecent applications:\n")
		count := min(len(d.Recent), maxItemsToShow)
		for i := 0; i < count; i++ {
			rec := d.Recent[i]
			sb.WriteString(fmt.Sprintf("  • %s  %s, %s [%s]\n",
				rec.AppliedDate.String(), rec.CompanyName, rec.JobTitle, rec.Status))
		}
	}

	p.printBox("DASHBOARD", strings.TrimSuffix(sb.String(), "\n"))
}

func describeView(params types.ViewParams) string {
	parts := []string{}
	if params.Search != "" {
		parts = append(parts, fmt.Sprintf("search %q", params.Search))
	}
	if params.JobType != "" && params.JobType != types.FilterAll {
		parts = append(parts, "type "+params.JobType)
	}
	if params.Status != "" && params.Status != types.FilterAll {
		parts = append(parts, "status "+params.Status)
	}
	parts = append(parts, fmt.Sprintf("sorted by %s %s", params.SortKey, params.SortDir))
	return strings.Join(parts, ", ")
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
