package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"autoprice/internal/domain"
	"autoprice/internal/schema"
)

var (
	priceStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BC34A")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#2a3850")).
			Padding(0, 2)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2196F3"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8a8f98"))
)

func dollars(v float64) string {
	return "$" + humanize.Comma(int64(math.Round(v)))
}

// estimateMarkdown lays out the range, warnings and narrative as markdown.
func estimateMarkdown(est *domain.Estimate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Estimated price: %s\n\n", dollars(est.Price))
	fmt.Fprintf(&b, "Range **%s** to **%s** (confidence %.0f%%)\n\n", dollars(est.PriceMin), dollars(est.PriceMax), est.Confidence*100)
	if len(est.Warnings) > 0 {
		b.WriteString("### Approximations\n\n")
		for _, w := range est.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}
	if est.Narrative != "" {
		b.WriteString("### Summary\n\n")
		b.WriteString(est.Narrative)
		b.WriteString("\n")
	}
	return b.String()
}

func renderEstimate(est *domain.Estimate, plain bool) (string, error) {
	md := estimateMarkdown(est)
	if plain {
		return md, nil
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return "", fmt.Errorf("creating markdown renderer: %w", err)
	}
	body, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("rendering estimate: %w", err)
	}

	box := priceStyle.Render(fmt.Sprintf("%s  (%s to %s)", dollars(est.Price), dollars(est.PriceMin), dollars(est.PriceMax)))
	footer := mutedStyle.Render(fmt.Sprintf("model %s, %d extraction attempt(s)", est.ModelUsed, est.Attempts))
	return box + "\n" + body + footer + "\n", nil
}

// renderSchema prints one line per feature in model order.
func renderSchema(s *schema.Schema) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Feature schema %s (fallback %q)", s.Version, s.Fallback)))
	b.WriteString("\n")
	for i, f := range s.Features {
		line := fmt.Sprintf("%2d. %-20s %-12s %-6s", i+1, f.Name, f.Kind, f.Type)
		switch {
		case f.Min != nil && f.Max != nil:
			line += fmt.Sprintf(" [%g, %g]", *f.Min, *f.Max)
		case len(f.Values) > 0:
			line += fmt.Sprintf(" %d values", len(f.Values))
		}
		if f.HasDefault() {
			line += mutedStyle.Render(fmt.Sprintf(" default=%v", f.DefaultValue()))
		}
		if s.IsAutoFilled(f.Name) {
			line += mutedStyle.Render(" (auto-filled)")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
