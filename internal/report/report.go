// Package report serializes run aggregates into the CSV tables and JSON
// document read by the chart pages.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Napageneral/msgstats/internal/stats"
)

// Output file names. The chart pages load these by name.
const (
	SplitFile     = "message_stats.csv"
	MonthlyFile   = "message_stats_monthly.csv"
	QuarterlyFile = "message_stats_quarterly.csv"
	SentRecvFile  = "message_stats_sent_recv.csv"
	ResponseFile  = "message_response_times.csv"
	HeatmapFile   = "message_day_hour.json"
)

// Input is the set of aggregates a report is written from.
type Input struct {
	Volumes   []stats.ContactVolume
	Monthly   *stats.MonthlyGrid
	Quarterly *stats.QuarterlyGrid
	Latency   []stats.LatencyRow
	Heatmaps  map[string]*stats.Heatmap
}

// Selection is Input cut down to the top contacts, in rank order.
type Selection struct {
	Names     []string
	Volumes   []stats.ContactVolume
	Monthly   *stats.MonthlyGrid
	Quarterly *stats.QuarterlyGrid
	Latency   []stats.LatencyRow
	Heatmaps  map[string]*stats.Heatmap
}

// Select applies the top-N cutoff. The split table is cut by its own
// direct-total ranking; every time-series output uses the monthly
// ranking. topN <= 0 keeps every contact.
func Select(in Input, topN int) Selection {
	monthly := in.Monthly
	if monthly == nil {
		monthly = &stats.MonthlyGrid{}
	}
	top := monthly.Top(topN)
	names := top.Names()

	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[n] = true
	}

	sel := Selection{
		Names:    names,
		Volumes:  stats.Top(in.Volumes, topN),
		Monthly:  top,
		Heatmaps: make(map[string]*stats.Heatmap, len(names)),
	}

	quarterly := in.Quarterly
	if quarterly == nil {
		quarterly = monthly.Quarterly()
	}
	sel.Quarterly = &stats.QuarterlyGrid{Quarters: quarterly.Quarters}
	for _, r := range quarterly.Rows {
		if keep[r.Name] {
			sel.Quarterly.Rows = append(sel.Quarterly.Rows, r)
		}
	}

	byName := make(map[string][]stats.LatencyRow)
	for _, r := range in.Latency {
		if keep[r.Name] {
			byName[r.Name] = append(byName[r.Name], r)
		}
	}
	for _, n := range names {
		sel.Latency = append(sel.Latency, byName[n]...)
	}

	for _, n := range names {
		if h := in.Heatmaps[n]; h != nil {
			sel.Heatmaps[n] = h
		}
	}
	return sel
}

// WriteAll writes every report file into dir and returns their paths.
func WriteAll(dir string, in Input, topN int) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	sel := Select(in, topN)

	writers := []struct {
		name  string
		write func(f *os.File) error
	}{
		{SplitFile, func(f *os.File) error { return WriteSplit(f, sel.Volumes) }},
		{MonthlyFile, func(f *os.File) error { return WriteMonthlyTotals(f, sel.Monthly) }},
		{QuarterlyFile, func(f *os.File) error { return WriteQuarterlyTotals(f, sel.Quarterly) }},
		{SentRecvFile, func(f *os.File) error { return WriteSentRecv(f, sel.Monthly) }},
		{ResponseFile, func(f *os.File) error { return WriteResponseTimes(f, sel.Latency) }},
		{HeatmapFile, func(f *os.File) error { return WriteHeatmaps(f, sel.Heatmaps) }},
	}

	paths := make([]string, 0, len(writers))
	for _, w := range writers {
		path := filepath.Join(dir, w.name)
		if err := writeFile(path, w.write); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", w.name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
