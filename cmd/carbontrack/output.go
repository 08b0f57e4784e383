package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/carbontrack/internal/notify"
	"github.com/carbontrack/internal/types"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3B82F6"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	boldStyle    = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
)

// table renders rows under a header with padded columns
type table struct {
	title   string
	headers []string
	rows    [][]string
}

func newTable(title string, headers ...string) *table {
	return &table{title: title, headers: headers}
}

func (t *table) add(row ...string) {
	t.rows = append(t.rows, row)
}

func (t *table) render(w io.Writer) {
	var sb strings.Builder
	if t.title != "" {
		sb.WriteString(titleStyle.Render(t.title))
		sb.WriteString("\n")
	}
	if len(t.rows) == 0 {
		sb.WriteString(mutedStyle.Render("(none)"))
		sb.WriteString("\n")
		fmt.Fprint(w, sb.String())
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	sep := mutedStyle.Render(" │ ")
	for i, h := range t.headers {
		sb.WriteString(boldStyle.Width(widths[i]).Render(h))
		if i < len(t.headers)-1 {
			sb.WriteString(sep)
		}
	}
	sb.WriteString("\n")
	for _, row := range t.rows {
		for i := range t.headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			sb.WriteString(lipgloss.NewStyle().Width(widths[i]).Render(cell))
			if i < len(t.headers)-1 {
				sb.WriteString(sep)
			}
		}
		sb.WriteString("\n")
	}
	fmt.Fprint(w, sb.String())
}

// printNotification writes a toast as one styled line
func printNotification(w io.Writer, n notify.Notification) {
	style := infoStyle
	switch n.Type {
	case types.NotificationSuccess:
		style = successStyle
	case types.NotificationError:
		style = errorStyle
	}
	fmt.Fprintln(w, style.Render("● "+n.Message))
}

// progressBar draws pct (0-100) as a fixed-width bar
func progressBar(pct, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := pct * width / 100
	style := successStyle
	switch {
	case pct >= 90:
		style = errorStyle
	case pct >= 70:
		style = infoStyle
	}
	return style.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", width-filled))
}
