package timeline

import (
	"time"
)

// AppleEpochOffset is the number of seconds between the Unix epoch and
// the Cocoa reference date (2001-01-01T00:00:00Z) used by chat.db.
const AppleEpochOffset = 978307200

// Values below this magnitude are treated as seconds rather than
// nanoseconds. Stores written before macOS 10.13 use seconds; a
// nanosecond value this small would sit within 17 minutes of the epoch.
const legacySecondsLimit = 1_000_000_000_000

const maxYear = 9999

var appleEpoch = time.Unix(AppleEpochOffset, 0).UTC()

// FromApple converts a chat.db date value to calendar time in loc.
// It returns false for zero or negative values and for values that do
// not land on a representable calendar year.
func FromApple(v int64, loc *time.Location) (time.Time, bool) {
	if v <= 0 {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	var t time.Time
	if v < legacySecondsLimit {
		t = time.Unix(AppleEpochOffset+v, 0)
	} else {
		t = time.Unix(AppleEpochOffset, v)
	}
	t = t.In(loc)
	if t.Year() > maxYear {
		return time.Time{}, false
	}
	return t, true
}

// ToApple converts t to a chat.db nanosecond date value.
func ToApple(t time.Time) int64 {
	return t.Sub(appleEpoch).Nanoseconds()
}

// Span tracks the earliest and latest instants observed.
type Span struct {
	First time.Time
	Last  time.Time
	set   bool
}

// SpanOf returns the span covering every time in ts.
func SpanOf(ts ...time.Time) Span {
	var s Span
	for _, t := range ts {
		s.Observe(t)
	}
	return s
}

// Observe widens the span to include t.
func (s *Span) Observe(t time.Time) {
	if !s.set {
		s.First, s.Last, s.set = t, t, true
		return
	}
	if t.Before(s.First) {
		s.First = t
	}
	if t.After(s.Last) {
		s.Last = t
	}
}

// Empty reports whether nothing was observed.
func (s Span) Empty() bool { return !s.set }

// Months lists every calendar month from the first to the last
// observation, inclusive. Months are taken in the location of each bound.
func (s Span) Months() []Month {
	if s.Empty() {
		return nil
	}
	return Months(MonthOf(s.First), MonthOf(s.Last))
}

// Quarters lists every calendar quarter touched by the span.
func (s Span) Quarters() []Quarter {
	if s.Empty() {
		return nil
	}
	return Quarters(MonthOf(s.First).Quarter(), MonthOf(s.Last).Quarter())
}

// Weekday returns the day of week with Monday as 0 and Sunday as 6.
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
