package report

import (
	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/abhisek/strandwise/internal/strand"
)

// Color palette
var (
	Primary   = lipgloss.Color("#8B5CF6") // Vivid Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Per-strand accents
var strandColors = map[strand.Label]lipgloss.Style{
	strand.STEM:  lipgloss.NewStyle().Foreground(Secondary).Bold(true),
	strand.ABM:   lipgloss.NewStyle().Foreground(Accent).Bold(true),
	strand.HUMSS: lipgloss.NewStyle().Foreground(Primary).Bold(true),
}

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Highlight = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	headerCell = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	cell = lipgloss.NewStyle().Padding(0, 1)
)

// strandStyle renders l in its accent color.
func strandStyle(l strand.Label) string {
	if s, ok := strandColors[l]; ok {
		return s.Render(string(l))
	}
	return string(l)
}

// newTable returns a bordered table. highlight marks one data row, or -1.
func newTable(highlight int, headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Border)).
		Headers(headers...).
		StyleFunc(highlightRow(highlight))
}

// highlightRow styles the header and marks one data row.
func highlightRow(row int) table.StyleFunc {
	return func(r, _ int) lipgloss.Style {
		switch r {
		case table.HeaderRow:
			return headerCell
		case row:
			return cell.Foreground(Success).Bold(true)
		default:
			return cell
		}
	}
}
