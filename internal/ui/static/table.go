// Package static provides non-interactive terminal output components.
//
// This package contains components for rendering formatted output
// that does not require user interaction, such as tables and
// batch result lines.
package static

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/charmbracelet/colorprofile"
	"github.com/dustin/go-humanize"

	"github.com/raphi011/twig/internal/ui/styles"
)

// NewWriter wraps w so styled output is downsampled to what the terminal
// (or pipe) behind it supports. NO_COLOR and friends are honoured.
func NewWriter(w io.Writer) io.Writer {
	return colorprofile.NewWriter(w, os.Environ())
}

// RenderTable creates a formatted table with proper column alignment.
// Headers and rows are rendered using lipgloss/table which automatically
// calculates column widths based on content. No borders are rendered.
func RenderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	var output strings.Builder

	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).PaddingRight(2)
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})

	output.WriteString(t.String())
	output.WriteString("\n")

	return output.String()
}

// FormatAge renders t relative to now. Ages older than staleDays are
// highlighted; staleDays <= 0 disables highlighting. The zero time renders
// as "-".
func FormatAge(t time.Time, staleDays int) string {
	if t.IsZero() {
		return "-"
	}
	age := humanize.Time(t)
	if staleDays > 0 && time.Since(t) > time.Duration(staleDays)*24*time.Hour {
		return styles.WarningStyle.Render(age)
	}
	return age
}

// StatusLine renders one batch item: a colored status glyph, the subject and
// an optional muted detail.
func StatusLine(status styles.Status, subject, detail string) string {
	line := fmt.Sprintf("%s %s", styles.FormatStatus(status), subject)
	if detail != "" {
		line += " " + styles.MutedStyle.Render("("+detail+")")
	}
	return line
}

// WarningLine renders a warning attached to a batch item.
func WarningLine(msg string) string {
	return fmt.Sprintf("  %s %s", styles.WarningMark(), msg)
}
