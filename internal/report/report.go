// Package report selects the items nobody in the organization has solved
// and renders them as text, markdown or styled terminal output.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"huct/internal/catalog"
)

// Output formats.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatPretty   = "pretty"
)

// Section titles, kept verbatim from the historical output.
const (
	TitleMachines   = "MACHINES THAT AREN'T OWN BY UNIVERSITY"
	TitleChallenges = "CHALLENGES THAT AREN'T FLAGGED BY UNIVERSITY"
	TitleFortresses = "FORTRESS THAT AREN'T OWN BY UNIVERSITY"
)

// Report is the filtered, ordered view of a completed run.
type Report struct {
	Machines   []*catalog.Item
	Challenges []CategoryGroup
	Fortresses []*catalog.Item
}

// CategoryGroup is the unsolved challenges of one category.
type CategoryGroup struct {
	Category string
	Items    []*catalog.Item
}

// Build selects the report rows from a populated registry:
// active unflagged machines by difficulty, active unflagged challenges grouped
// by category (groups in order of first appearance, by difficulty within a
// group) and unflagged fortresses in registration order.
func Build(reg *catalog.Registry) *Report {
	r := &Report{}

	for _, m := range reg.Items(catalog.KindMachine) {
		if !m.IsFlagged() && !m.Retired {
			r.Machines = append(r.Machines, m)
		}
	}
	sortByDifficulty(r.Machines)

	index := make(map[string]int)
	for _, c := range reg.Items(catalog.KindChallenge) {
		if c.IsFlagged() || c.Retired {
			continue
		}
		i, ok := index[c.Category]
		if !ok {
			i = len(r.Challenges)
			index[c.Category] = i
			r.Challenges = append(r.Challenges, CategoryGroup{Category: c.Category})
		}
		r.Challenges[i].Items = append(r.Challenges[i].Items, c)
	}
	for _, g := range r.Challenges {
		sortByDifficulty(g.Items)
	}

	r.Fortresses = reg.Unflagged(catalog.KindFortress)
	return r
}

func sortByDifficulty(items []*catalog.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Difficulty.Rank() < items[j].Difficulty.Rank()
	})
}

// Options selects and tunes a renderer.
type Options struct {
	Format string
	Styled bool   // text: style section titles with lipgloss
	Width  int    // pretty: word wrap
	Style  string // pretty: glamour style name or path
}

// Render writes r to w in the requested format.
func Render(w io.Writer, r *Report, opts Options) error {
	switch strings.ToLower(opts.Format) {
	case "", FormatText:
		return WriteText(w, r, opts.Styled)
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(r))
		return err
	case FormatPretty:
		out, err := Pretty(r, opts.Width, opts.Style)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	default:
		return fmt.Errorf("unknown report format %q", opts.Format)
	}
}
