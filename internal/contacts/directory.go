package contacts

import (
	"strings"
)

// Kind says whether an Entry carries a phone number or an email address.
type Kind int

const (
	Phone Kind = iota
	Email
)

// Entry is one phone number or email address attached to a named person.
// Sources emit entries in store order: every phone row, then every email row.
type Entry struct {
	// Owner identifies the person within its source.
	Owner int64
	Name  string
	Kind  Kind
	Value string
}

// DisplayName joins first and last name the way the address book shows them.
func DisplayName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

// Directory maps contact keys to display names. It is immutable once built.
type Directory struct {
	names map[string]string
}

// NewDirectory builds a directory from an explicit key -> name mapping.
// Keys are used verbatim; callers are expected to pass normalized keys.
func NewDirectory(entries map[string]string) *Directory {
	names := make(map[string]string, len(entries))
	for k, v := range entries {
		names[k] = v
	}
	return &Directory{names: names}
}

// Len returns the number of key -> name mappings.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.names)
}

// Lookup returns the name stored under an exact key.
func (d *Directory) Lookup(key string) (string, bool) {
	if d == nil {
		return "", false
	}
	name, ok := d.names[key]
	return name, ok
}

// Builder accumulates entries into a Directory. Later writes to the same
// key replace earlier ones, so entry order decides shared numbers.
type Builder struct {
	names map[string]string
}

func NewBuilder() *Builder {
	return &Builder{names: make(map[string]string)}
}

// Add writes every key derived from the entry. Entries without a name or
// without a usable value are ignored; Add reports whether anything was written.
func (b *Builder) Add(e Entry) bool {
	if e.Name == "" {
		return false
	}
	switch e.Kind {
	case Phone:
		keys := phoneKeys(Digits(e.Value))
		for _, k := range keys {
			b.names[k] = e.Name
		}
		return len(keys) > 0
	case Email:
		k := NormalizeEmail(e.Value)
		if k == "" {
			return false
		}
		b.names[k] = e.Name
		return true
	}
	return false
}

// AddAll adds entries in order and returns how many distinct owners
// contributed at least one key.
func (b *Builder) AddAll(entries []Entry) int {
	owners := make(map[int64]struct{})
	for _, e := range entries {
		if b.Add(e) {
			owners[e.Owner] = struct{}{}
		}
	}
	return len(owners)
}

// Build snapshots the accumulated mappings. The builder can keep being
// used without affecting the returned directory.
func (b *Builder) Build() *Directory {
	return NewDirectory(b.names)
}
