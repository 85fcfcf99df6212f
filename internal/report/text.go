package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var rule = strings.Repeat("-", 40)

// Title styling for terminals. Colors follow the light/dark adaptive palette.
var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#101F38", Dark: "#8BC34A"})
	ruleStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#d6dae0", Dark: "#2a3850"})
)

// WriteText writes the plain three-section layout. With styled set, rules and
// titles are decorated for a terminal; the row lines are never styled so the
// output stays greppable.
func WriteText(w io.Writer, r *Report, styled bool) error {
	bw := bufio.NewWriter(w)

	header := func(title string) {
		if styled {
			fmt.Fprintln(bw, ruleStyle.Render(rule))
			fmt.Fprintln(bw, titleStyle.Render(title))
			return
		}
		fmt.Fprintln(bw, rule)
		fmt.Fprintln(bw, title)
	}

	header(TitleMachines)
	for _, m := range r.Machines {
		fmt.Fprintf(bw, "%d -- %s -- %s\n", m.ID, m.Name, m.Difficulty)
	}
	fmt.Fprintln(bw)

	header(TitleChallenges)
	for _, g := range r.Challenges {
		for _, c := range g.Items {
			fmt.Fprintf(bw, "%s -- %s -- %s\n", c.Category, c.Name, c.Difficulty)
		}
		fmt.Fprintln(bw)
	}
	fmt.Fprintln(bw)

	header(TitleFortresses)
	for _, f := range r.Fortresses {
		fmt.Fprintf(bw, "%d -- %s\n", f.ID, f.Name)
	}
	fmt.Fprintln(bw)

	return bw.Flush()
}
