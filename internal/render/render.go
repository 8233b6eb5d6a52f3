// Package render formats goals, check-ins and analytics for the terminal.
// Everything here takes plain values and returns strings; nothing reads the
// data root.
package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"

	"github.com/roach88/horizonte/internal/model"
)

// Renderer holds the styles for one output stream.
type Renderer struct {
	lg    *lipgloss.Renderer
	color bool
	width int

	heading lipgloss.Style
	muted   lipgloss.Style
	good    lipgloss.Style
	bad     lipgloss.Style
	cell    lipgloss.Style
}

// New returns a renderer for w. With color false no escape sequences are
// produced, whatever w is.
func New(w io.Writer, color bool) *Renderer {
	var lg *lipgloss.Renderer
	if color {
		lg = lipgloss.NewRenderer(w)
	} else {
		lg = lipgloss.NewRenderer(w, termenv.WithProfile(termenv.Ascii))
	}
	return &Renderer{
		lg:      lg,
		color:   color,
		width:   80,
		heading: lg.NewStyle().Bold(true),
		muted:   lg.NewStyle().Faint(true),
		good:    lg.NewStyle().Foreground(lipgloss.Color("2")),
		bad:     lg.NewStyle().Foreground(lipgloss.Color("1")),
		cell:    lg.NewStyle().Padding(0, 1),
	}
}

// BarWidth is the default progress bar width in cells.
const BarWidth = 20

// Bar draws pct (0..100) as a fixed-width bar.
func Bar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(math.Round(pct / 100 * float64(width)))
	filled = max(0, min(width, filled))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Signed formats a change with an explicit sign and one decimal.
func Signed(v float64) string {
	if v >= 0 {
		return fmt.Sprintf("+%.1f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

func (r *Renderer) delta(v float64, suffix string) string {
	s := Signed(v) + suffix
	switch {
	case v > 0:
		return r.good.Render(s)
	case v < 0:
		return r.bad.Render(s)
	default:
		return s
	}
}

// ShortID trims a UUID for display.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// table renders rows with headers in the renderer's style.
func (r *Renderer) table(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.muted).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.cell.Bold(true)
			}
			return r.cell
		})
	return t.Render()
}

// Markdown renders a check-in narrative. Rendering failures fall back to the
// raw text.
func (r *Renderer) Markdown(md string) string {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(r.width)}
	if r.color {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	}
	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return md
	}
	out, err := tr.Render(md)
	if err != nil {
		return md
	}
	return out
}

func categoryLabel(c model.Category) string { return c.Label() }
