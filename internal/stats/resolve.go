package stats

import (
	"sort"
	"time"

	"github.com/Napageneral/msgstats/internal/contacts"
	"github.com/Napageneral/msgstats/internal/event"
	"github.com/Napageneral/msgstats/internal/timeline"
)

// ResolvedEvent is a message event whose counterpart matched the directory.
type ResolvedEvent struct {
	Name           string
	Identifier     string
	Direction      event.Direction
	Time           time.Time
	ConversationID int64
	Participants   int
}

// IsDirect reports whether the event belongs to a one-on-one conversation.
func (e ResolvedEvent) IsDirect() bool { return e.Participants == 1 }

// IsGroup reports whether the conversation has more than one other member.
func (e ResolvedEvent) IsGroup() bool { return e.Participants > 1 }

// ResolvedContact is a directory name with every raw identifier seen for it.
type ResolvedContact struct {
	Name        string
	Identifiers []string
}

// Resolution is the output of the resolve stage.
type Resolution struct {
	Events   []ResolvedEvent
	Contacts map[string]*ResolvedContact
	// Span covers every event with a convertible timestamp, matched or not.
	Span timeline.Span

	Seen         int
	Unresolved   int
	BadTimestamp int
	BeforeSince  int
}

// Options controls timestamp conversion during resolution.
type Options struct {
	// Location used for calendar bucketing; nil means time.Local.
	Location *time.Location
	// Since drops events before it when non-zero.
	Since time.Time
}

// Resolve converts native timestamps and maps identifiers to names.
// Events that do not match the directory, whose timestamps cannot be
// converted, or that fall before opts.Since are dropped and counted.
func Resolve(events []event.MessageEvent, dir *contacts.Directory, opts Options) *Resolution {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	res := &Resolution{
		Events:   make([]ResolvedEvent, 0, len(events)),
		Contacts: make(map[string]*ResolvedContact),
	}

	type match struct {
		name string
		ok   bool
	}
	cache := make(map[string]match)
	seenIdent := make(map[string]struct{})

	for _, ev := range events {
		res.Seen++
		t, ok := timeline.FromApple(ev.Date, loc)
		if !ok {
			res.BadTimestamp++
			continue
		}
		if !opts.Since.IsZero() && t.Before(opts.Since) {
			res.BeforeSince++
			continue
		}
		res.Span.Observe(t)

		m, cached := cache[ev.Identifier]
		if !cached {
			name := dir.Resolve(ev.Identifier)
			m = match{name: name, ok: name != ev.Identifier}
			cache[ev.Identifier] = m
		}
		if !m.ok {
			res.Unresolved++
			continue
		}

		contact := res.Contacts[m.name]
		if contact == nil {
			contact = &ResolvedContact{Name: m.name}
			res.Contacts[m.name] = contact
		}
		if _, dup := seenIdent[ev.Identifier]; !dup {
			seenIdent[ev.Identifier] = struct{}{}
			contact.Identifiers = append(contact.Identifiers, ev.Identifier)
		}

		res.Events = append(res.Events, ResolvedEvent{
			Name:           m.name,
			Identifier:     ev.Identifier,
			Direction:      ev.Direction,
			Time:           t,
			ConversationID: ev.ConversationID,
			Participants:   ev.Participants,
		})
	}

	for _, c := range res.Contacts {
		sort.Strings(c.Identifiers)
	}
	return res
}

// Direct returns the events from one-on-one conversations.
func (r *Resolution) Direct() []ResolvedEvent {
	out := make([]ResolvedEvent, 0, len(r.Events))
	for _, e := range r.Events {
		if e.IsDirect() {
			out = append(out, e)
		}
	}
	return out
}
