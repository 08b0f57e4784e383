package chart

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/carbontrack/internal/logging"
)

// Renderer draws a series
type Renderer interface {
	Render(w io.Writer, s Series) error
}

// OrNoop returns r, or a NoopRenderer when r is nil
func OrNoop(r Renderer, logger *logging.Logger) Renderer {
	if r == nil {
		return NoopRenderer{Logger: logger}
	}
	return r
}

// NoopRenderer draws nothing; used when no renderer is available
type NoopRenderer struct {
	Logger *logging.Logger
}

// Render implements Renderer
func (n NoopRenderer) Render(_ io.Writer, s Series) error {
	if n.Logger != nil {
		n.Logger.WithField("points", len(s.Points)).Debug("No chart renderer configured; skipping")
	}
	return nil
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3B82F6"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	positiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6"))
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A"))
)

// TextRenderer draws a horizontal bar per point for terminals
type TextRenderer struct {
	// Width is the length of the longest bar
	Width int
}

// NewTextRenderer creates a renderer with 40-cell bars
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{Width: 40}
}

// Render implements Renderer
func (t *TextRenderer) Render(w io.Writer, s Series) error {
	width := t.Width
	if width <= 0 {
		width = 40
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(s.Title))
	b.WriteString("\n")
	if len(s.Points) == 0 {
		b.WriteString(labelStyle.Render("no emissions yet"))
		b.WriteString("\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	var peak float64
	labelWidth := 0
	for _, p := range s.Points {
		peak = math.Max(peak, math.Abs(p.Value))
		if n := lipgloss.Width(p.Label); n > labelWidth {
			labelWidth = n
		}
	}

	for _, p := range s.Points {
		cells := 0
		if peak > 0 {
			cells = int(math.Round(math.Abs(p.Value) / peak * float64(width)))
		}
		bar := positiveStyle.Render(strings.Repeat("█", cells))
		if p.Value < 0 {
			bar = negativeStyle.Render(strings.Repeat("░", cells))
		}
		label := labelStyle.Render(fmt.Sprintf("%-*s", labelWidth, p.Label))
		fmt.Fprintf(&b, "%s │ %s %.1f\n", label, bar, p.Value)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
