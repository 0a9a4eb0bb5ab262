package stats

import (
	"sort"

	"github.com/Napageneral/msgstats/internal/timeline"
)

// MonthlyRow holds one contact's counts aligned with MonthlyGrid.Months.
type MonthlyRow struct {
	Name   string
	Counts []Counts
}

// Totals sums every month.
func (r MonthlyRow) Totals() Counts {
	var t Counts
	for _, c := range r.Counts {
		t.merge(c)
	}
	return t
}

// MonthlyGrid is the per-contact, per-month sent/received table.
type MonthlyGrid struct {
	Months []timeline.Month
	Rows   []MonthlyRow
}

// Monthly buckets events by calendar month over span. The span is
// widened to cover every event, so no event is ever dropped and months
// without traffic are explicit zeros. Rows are ranked by total.
func Monthly(events []ResolvedEvent, span timeline.Span) *MonthlyGrid {
	for _, e := range events {
		span.Observe(e.Time)
	}
	g := &MonthlyGrid{Months: span.Months()}

	index := make(map[timeline.Month]int, len(g.Months))
	for i, m := range g.Months {
		index[m] = i
	}

	rows := make(map[string]*MonthlyRow)
	for _, e := range events {
		row := rows[e.Name]
		if row == nil {
			row = &MonthlyRow{Name: e.Name, Counts: make([]Counts, len(g.Months))}
			rows[e.Name] = row
		}
		row.Counts[index[timeline.MonthOf(e.Time)]].add(e.Direction)
	}

	g.Rows = make([]MonthlyRow, 0, len(rows))
	for _, r := range rows {
		g.Rows = append(g.Rows, *r)
	}
	sort.Slice(g.Rows, func(i, j int) bool {
		return ranksBefore(g.Rows[i].Name, g.Rows[i].Totals().Total(), g.Rows[j].Name, g.Rows[j].Totals().Total())
	})
	return g
}

// Top keeps the n highest-ranked rows; n <= 0 keeps all of them.
func (g *MonthlyGrid) Top(n int) *MonthlyGrid {
	return &MonthlyGrid{Months: g.Months, Rows: Top(g.Rows, n)}
}

// Names returns row names in rank order.
func (g *MonthlyGrid) Names() []string {
	out := make([]string, len(g.Rows))
	for i, r := range g.Rows {
		out[i] = r.Name
	}
	return out
}

// QuarterlyRow holds one contact's counts aligned with QuarterlyGrid.Quarters.
type QuarterlyRow struct {
	Name   string
	Counts []Counts
}

// Totals sums every quarter.
func (r QuarterlyRow) Totals() Counts {
	var t Counts
	for _, c := range r.Counts {
		t.merge(c)
	}
	return t
}

// QuarterlyGrid is the monthly grid folded into calendar quarters.
type QuarterlyGrid struct {
	Quarters []timeline.Quarter
	Rows     []QuarterlyRow
}

// Quarterly sums each run of three months into its quarter. Rows keep
// the monthly ranking.
func (g *MonthlyGrid) Quarterly() *QuarterlyGrid {
	q := &QuarterlyGrid{}
	if len(g.Months) > 0 {
		q.Quarters = timeline.Quarters(g.Months[0].Quarter(), g.Months[len(g.Months)-1].Quarter())
	}
	index := make(map[timeline.Quarter]int, len(q.Quarters))
	for i, qq := range q.Quarters {
		index[qq] = i
	}

	q.Rows = make([]QuarterlyRow, 0, len(g.Rows))
	for _, r := range g.Rows {
		row := QuarterlyRow{Name: r.Name, Counts: make([]Counts, len(q.Quarters))}
		for i, c := range r.Counts {
			row.Counts[index[g.Months[i].Quarter()]].merge(c)
		}
		q.Rows = append(q.Rows, row)
	}
	return q
}
