package stats

import (
	"sort"

	"github.com/Napageneral/msgstats/internal/event"
)

// Counts is a sent/received pair.
type Counts struct {
	Sent     int
	Received int
}

// Total is Sent + Received.
func (c Counts) Total() int { return c.Sent + c.Received }

func (c *Counts) add(d event.Direction) {
	if d == event.Outgoing {
		c.Sent++
	} else {
		c.Received++
	}
}

func (c *Counts) merge(o Counts) {
	c.Sent += o.Sent
	c.Received += o.Received
}

// ContactVolume is the direct/group split for one contact.
type ContactVolume struct {
	Name        string
	Identifiers []string
	Direct      Counts
	Group       Counts
}

// Volumes rolls events up per contact, split by conversation type, and
// ranks the result by direct total (descending, then name).
func Volumes(r *Resolution) []ContactVolume {
	byName := make(map[string]*ContactVolume, len(r.Contacts))
	for _, e := range r.Events {
		v := byName[e.Name]
		if v == nil {
			v = &ContactVolume{Name: e.Name}
			if c := r.Contacts[e.Name]; c != nil {
				v.Identifiers = append([]string(nil), c.Identifiers...)
			}
			byName[e.Name] = v
		}
		switch {
		case e.IsDirect():
			v.Direct.add(e.Direction)
		case e.IsGroup():
			v.Group.add(e.Direction)
		}
	}

	out := make([]ContactVolume, 0, len(byName))
	for _, v := range byName {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool {
		return ranksBefore(out[i].Name, out[i].Direct.Total(), out[j].Name, out[j].Direct.Total())
	})
	return out
}

func ranksBefore(nameA string, totalA int, nameB string, totalB int) bool {
	if totalA != totalB {
		return totalA > totalB
	}
	return nameA < nameB
}

// Top returns at most n leading elements; n <= 0 keeps everything.
func Top[T any](items []T, n int) []T {
	if n <= 0 || n >= len(items) {
		return items
	}
	return items[:n]
}
