// Package output renders reconciliation reports, either as styled text
// for terminals or as JSON for machine consumption.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/weykent/runitsv/pkg/types"
)

// Format selects how a report is rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

var (
	changedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	unchangedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headerStyle    = lipgloss.NewStyle().Bold(true)
)

// Render writes the report to w in the requested format.
func Render(w io.Writer, report *types.Report, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case FormatText:
		renderText(w, report)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

func renderText(w io.Writer, report *types.Report) {
	styled := stdoutIsTerminal() && termenv.EnvColorProfile() != termenv.Ascii

	for _, path := range report.SortedPaths() {
		line := "  " + path
		if report.Paths[path] {
			line = "~ " + path
			if styled {
				line = changedStyle.Render(line)
			}
		} else if styled {
			line = unchangedStyle.Render(line)
		}
		fmt.Fprintln(w, line)
	}

	summary := "no changes"
	switch {
	case report.WouldChange:
		summary = "changes pending (dry run, nothing applied)"
	case report.Changed:
		summary = "changes applied"
	}
	if styled {
		summary = headerStyle.Render(summary)
	}
	fmt.Fprintln(w, summary)
}

func stdoutIsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
