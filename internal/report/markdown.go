package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// DefaultWidth is the word wrap used by Pretty when none is given.
const DefaultWidth = 80

// Markdown renders r as a markdown document.
func Markdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Organization completion\n\n")

	fmt.Fprintf(&sb, "## Machines (%d unsolved)\n\n", len(r.Machines))
	if len(r.Machines) == 0 {
		sb.WriteString("_All active machines are owned._\n")
	} else {
		sb.WriteString("| ID | Name | Difficulty |\n|---:|---|---|\n")
		for _, m := range r.Machines {
			fmt.Fprintf(&sb, "| %d | %s | %s |\n", m.ID, escapeCell(m.Name), m.Difficulty)
		}
	}
	sb.WriteString("\n")

	total := 0
	for _, g := range r.Challenges {
		total += len(g.Items)
	}
	fmt.Fprintf(&sb, "## Challenges (%d unsolved)\n\n", total)
	if total == 0 {
		sb.WriteString("_All active challenges are flagged._\n\n")
	}
	for _, g := range r.Challenges {
		category := g.Category
		if category == "" {
			category = "Uncategorized"
		}
		fmt.Fprintf(&sb, "### %s\n\n", category)
		for _, c := range g.Items {
			fmt.Fprintf(&sb, "- %s (%s)\n", c.Name, c.Difficulty)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "## Fortresses (%d unsolved)\n\n", len(r.Fortresses))
	if len(r.Fortresses) == 0 {
		sb.WriteString("_All fortresses are owned._\n")
	}
	for _, f := range r.Fortresses {
		fmt.Fprintf(&sb, "- %d: %s\n", f.ID, f.Name)
	}

	return sb.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// Pretty renders the markdown report for a terminal with glamour.
// style is "auto" (detect the background) or any glamour style name or path.
func Pretty(r *Report, width int, style string) (string, error) {
	if width <= 0 {
		width = DefaultWidth
	}

	styleOpt := glamour.WithAutoStyle()
	if style != "" && style != "auto" {
		styleOpt = glamour.WithStylePath(style)
	}

	renderer, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := renderer.Render(Markdown(r))
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return out, nil
}
