package adapters

import (
	"context"
	"time"

	"github.com/Napageneral/msgstats/internal/contacts"
	"github.com/Napageneral/msgstats/internal/event"
)

// EventSource supplies message events from a message store.
type EventSource interface {
	// Name returns the source name (e.g., "imessage")
	Name() string

	// Events returns every message event in the store, unordered.
	Events(ctx context.Context) ([]event.MessageEvent, ExtractResult, error)

	Close() error
}

// ContactSource supplies phone and email entries from one contacts store,
// in the order later entries should override earlier ones.
type ContactSource interface {
	Path() string
	Entries(ctx context.Context) ([]contacts.Entry, error)
}

// ExtractResult contains statistics about an extraction
type ExtractResult struct {
	Events   int           `json:"events"`
	Messages int           `json:"messages"`
	Chats    int           `json:"chats"`
	Duration time.Duration `json:"duration_ns"`
	// Perf is an optional breakdown of phase timings (human-readable durations).
	Perf map[string]string `json:"perf,omitempty"`
}
