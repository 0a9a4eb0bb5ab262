package stats

import (
	"sort"

	"github.com/Napageneral/msgstats/internal/timeline"
)

// Grid counts messages by day of week (Monday = 0) and hour of day.
type Grid [7][24]int

// Sum totals every cell.
func (g *Grid) Sum() int {
	n := 0
	for d := range g {
		for h := range g[d] {
			n += g[d][h]
		}
	}
	return n
}

func (g *Grid) merge(o *Grid) {
	for d := range g {
		for h := range g[d] {
			g[d][h] += o[d][h]
		}
	}
}

// Heatmap holds one contact's per-year grids and their cell-wise sum.
type Heatmap struct {
	Name    string
	ByYear  map[int]*Grid
	AllTime Grid
}

// Years lists the years with a grid, ascending.
func (h *Heatmap) Years() []int {
	years := make([]int, 0, len(h.ByYear))
	for y := range h.ByYear {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Heatmaps builds a day/hour grid per contact per year from the events'
// local times, then derives each contact's all-time grid.
func Heatmaps(events []ResolvedEvent) map[string]*Heatmap {
	out := make(map[string]*Heatmap)
	for _, e := range events {
		h := out[e.Name]
		if h == nil {
			h = &Heatmap{Name: e.Name, ByYear: make(map[int]*Grid)}
			out[e.Name] = h
		}
		year := e.Time.Year()
		g := h.ByYear[year]
		if g == nil {
			g = &Grid{}
			h.ByYear[year] = g
		}
		g[timeline.Weekday(e.Time)][e.Time.Hour()]++
	}

	for _, h := range out {
		for _, g := range h.ByYear {
			h.AllTime.merge(g)
		}
	}
	return out
}
