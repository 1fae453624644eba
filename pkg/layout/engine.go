package layout

import (
	"cmp"
	"slices"

	"github.com/klokku/multical/pkg/event"
	log "github.com/sirupsen/logrus"
)

// DefaultSubdivisions splits every hour into quarter-hour rows.
const DefaultSubdivisions = 4

// Placement is one event of one calendar inside the day grid. Callers fill
// Calendar and Event; Columns fills the rest.
type Placement struct {
	Calendar string
	Event    *event.Event

	// Row is the quantized start row, Height the number of rows covered.
	Row    int
	Height int
	// Column is the index of the column the placement ended up in.
	Column int
}

// Column holds placements whose events do not overlap each other.
type Column []Placement

// Engine assigns events of a single day to display columns. The assignment is
// greedy and depends on input order, which Columns fixes by sorting first.
type Engine struct {
	subdivisions int
}

// NewEngine returns an engine quantizing time to subdivisionsPerHour rows per
// hour. Values outside 1..60 fall back to DefaultSubdivisions.
func NewEngine(subdivisionsPerHour int) *Engine {
	if subdivisionsPerHour < 1 || subdivisionsPerHour > 60 {
		log.Warnf("layout: invalid subdivisions %d, using %d", subdivisionsPerHour, DefaultSubdivisions)
		subdivisionsPerHour = DefaultSubdivisions
	}
	return &Engine{subdivisions: subdivisionsPerHour}
}

func (g *Engine) Subdivisions() int {
	return g.subdivisions
}

// Row rounds t down to its row on the grid.
func (g *Engine) Row(t event.TimeOfDay) int {
	return t.Hour*g.subdivisions + t.Minute*g.subdivisions/60
}

func (g *Engine) span(e *event.Event) (start, end int) {
	return g.Row(e.StartTime()), g.Row(e.EndTime()) + 1
}

// Overlaps reports whether two events collide on the grid. The end row is
// inclusive, so events that merely touch still collide.
func (g *Engine) Overlaps(a, b *event.Event) bool {
	startA, endA := g.span(a)
	startB, endB := g.span(b)
	return startA <= endB && startB <= endA
}

// Columns sorts the placements by start, then calendar name, then input order
// and puts each one into the first column where it collides with nothing.
// The result is never nil.
func (g *Engine) Columns(placements []Placement) []Column {
	sorted := slices.Clone(placements)
	slices.SortStableFunc(sorted, func(a, b Placement) int {
		if c := a.Event.Start().Compare(b.Event.Start()); c != 0 {
			return c
		}
		return cmp.Compare(a.Calendar, b.Calendar)
	})

	columns := make([]Column, 0)
	for _, p := range sorted {
		start, end := g.span(p.Event)
		p.Row = start
		p.Height = max(end-1-start, 1)

		idx := slices.IndexFunc(columns, func(col Column) bool {
			return !slices.ContainsFunc(col, func(other Placement) bool {
				return g.Overlaps(other.Event, p.Event)
			})
		})
		if idx < 0 {
			columns = append(columns, Column{})
			idx = len(columns) - 1
		}
		p.Column = idx
		columns[idx] = append(columns[idx], p)
	}
	log.Tracef("layout: %d placement(s) in %d column(s)", len(sorted), len(columns))
	return columns
}
