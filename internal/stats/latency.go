package stats

import (
	"sort"

	"github.com/Napageneral/msgstats/internal/event"
	"github.com/Napageneral/msgstats/internal/timeline"
)

// MaxReplyMinutes bounds reply gaps: a gap of this length or more starts
// a new exchange instead of answering the previous turn.
const MaxReplyMinutes = 24 * 60.0

// LatencyRow summarizes reply gaps for one contact in one month.
// A median is only meaningful when its count is non-zero.
type LatencyRow struct {
	Name        string
	Month       timeline.Month
	MyMedian    float64
	TheirMedian float64
	MyCount     int
	TheirCount  int
}

type latencyKey struct {
	name  string
	month timeline.Month
}

type latencySamples struct {
	mine   []float64
	theirs []float64
}

// ResponseTimes scans each direct conversation in time order and
// measures how long each side took to answer the other.
//
// For consecutive turns (prev, curr) less than 24 hours apart: incoming then
// outgoing is one of my replies, outgoing then incoming is one of
// theirs. Samples are bucketed by the month of curr. Rows come back
// ordered by name then month; buckets without samples are omitted.
func ResponseTimes(events []ResolvedEvent) []LatencyRow {
	conversations := make(map[int64][]ResolvedEvent)
	var order []int64
	for _, e := range events {
		if !e.IsDirect() {
			continue
		}
		if _, ok := conversations[e.ConversationID]; !ok {
			order = append(order, e.ConversationID)
		}
		conversations[e.ConversationID] = append(conversations[e.ConversationID], e)
	}

	buckets := make(map[latencyKey]*latencySamples)
	for _, id := range order {
		turns := conversations[id]
		sort.SliceStable(turns, func(i, j int) bool {
			return turns[i].Time.Before(turns[j].Time)
		})

		for i := 1; i < len(turns); i++ {
			prev, curr := turns[i-1], turns[i]
			if prev.Direction == curr.Direction {
				continue
			}
			gap := curr.Time.Sub(prev.Time).Minutes()
			if gap >= MaxReplyMinutes {
				continue
			}

			key := latencyKey{name: curr.Name, month: timeline.MonthOf(curr.Time)}
			b := buckets[key]
			if b == nil {
				b = &latencySamples{}
				buckets[key] = b
			}
			if curr.Direction == event.Outgoing {
				b.mine = append(b.mine, gap)
			} else {
				b.theirs = append(b.theirs, gap)
			}
		}
	}

	rows := make([]LatencyRow, 0, len(buckets))
	for key, b := range buckets {
		rows = append(rows, LatencyRow{
			Name:        key.name,
			Month:       key.month,
			MyMedian:    Median(b.mine),
			TheirMedian: Median(b.theirs),
			MyCount:     len(b.mine),
			TheirCount:  len(b.theirs),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].Month.Before(rows[j].Month)
	})
	return rows
}

// Median returns the middle sample, taking the lower of the two middle
// values when the count is even. It returns 0 for no samples and does
// not modify its argument.
func Median(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)
	return sorted[(len(sorted)-1)/2]
}
