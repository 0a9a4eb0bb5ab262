package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Napageneral/msgstats/internal/adapters"
	"github.com/Napageneral/msgstats/internal/config"
	"github.com/Napageneral/msgstats/internal/stats"
	"github.com/Napageneral/msgstats/internal/timeline"
)

// ErrMessageStore marks failures reading the message store. Nothing
// useful can be reported without it.
var ErrMessageStore = errors.New("message store unavailable")

// Options configures a single run.
type Options struct {
	ChatDB         string
	ContactSources []string
	Location       *time.Location
	Since          time.Time
	Logger         *slog.Logger
	// Logf receives human-readable progress lines. Optional.
	Logf func(format string, args ...any)
}

// OptionsFromConfig resolves store paths and time settings from cfg.
// Contacts sources are the discovered AddressBook databases followed by
// any explicitly configured ones.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	loc, err := cfg.Location()
	if err != nil {
		return Options{}, err
	}
	since, err := cfg.Since()
	if err != nil {
		return Options{}, err
	}
	sources := adapters.DiscoverAddressBooks(cfg.Contacts.AddressBookDir)
	sources = append(sources, cfg.Contacts.Sources...)
	return Options{
		ChatDB:         cfg.Messages.ChatDB,
		ContactSources: sources,
		Location:       loc,
		Since:          since,
	}, nil
}

// Result holds everything one run computed.
type Result struct {
	RunID           string                  `json:"run_id"`
	ContactMappings int                     `json:"contact_mappings"`
	ContactSources  []adapters.SourceStatus `json:"contact_sources"`
	Extract         adapters.ExtractResult  `json:"extract"`
	EventsSeen      int                     `json:"events_seen"`
	Unresolved      int                     `json:"unresolved"`
	BadTimestamp    int                     `json:"bad_timestamp"`
	BeforeSince     int                     `json:"before_since"`
	Contacts        int                     `json:"contacts"`
	FirstMonth      string                  `json:"first_month,omitempty"`
	LastMonth       string                  `json:"last_month,omitempty"`
	Duration        string                  `json:"duration"`

	Span      timeline.Span             `json:"-"`
	Volumes   []stats.ContactVolume     `json:"-"`
	Monthly   *stats.MonthlyGrid        `json:"-"`
	Quarterly *stats.QuarterlyGrid      `json:"-"`
	Latency   []stats.LatencyRow        `json:"-"`
	Heatmaps  map[string]*stats.Heatmap `json:"-"`
}

// Run builds the contact directory, extracts every message event, and
// computes all aggregates in memory. Only a message store failure is
// returned as an error; broken contacts sources are skipped.
func Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	logf := opts.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	res := &Result{RunID: uuid.NewString()}
	logger = logger.With("run_id", res.RunID)

	logf("Loading contacts...")
	sources := make([]adapters.ContactSource, 0, len(opts.ContactSources))
	for _, p := range opts.ContactSources {
		sources = append(sources, adapters.NewAddressBookSource(p))
	}
	dir, statuses := adapters.LoadDirectory(ctx, sources, logger)
	res.ContactMappings = dir.Len()
	res.ContactSources = statuses
	logf("  %d contact mappings loaded", dir.Len())
	logger.Info("contact directory built", "mappings", dir.Len(), "sources", len(sources))

	logf("Querying iMessage database...")
	src, err := adapters.OpenIMessage(ctx, opts.ChatDB)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMessageStore, err)
	}
	defer src.Close()

	// The store's own MIN/MAX bounds the report columns, so months with
	// messages that never reach a chat still appear.
	var storeSpan timeline.Span
	if lo, hi, ok, err := src.DateRange(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMessageStore, err)
	} else if ok {
		first, okFirst := timeline.FromApple(lo, loc)
		last, okLast := timeline.FromApple(hi, loc)
		if okFirst && okLast {
			logf("  Message date range: %s to %s", timeline.MonthOf(first), timeline.MonthOf(last))
			storeSpan = clampSpan(first, last, opts.Since)
		}
	}

	events, extract, err := src.Events(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMessageStore, err)
	}
	res.Extract = extract
	logger.Info("events extracted", "events", extract.Events, "messages", extract.Messages, "chats", extract.Chats)

	resolved := stats.Resolve(events, dir, stats.Options{Location: loc, Since: opts.Since})
	res.EventsSeen = resolved.Seen
	res.Unresolved = resolved.Unresolved
	res.BadTimestamp = resolved.BadTimestamp
	res.BeforeSince = resolved.BeforeSince
	res.Contacts = len(resolved.Contacts)
	res.Span = resolved.Span
	if !storeSpan.Empty() {
		res.Span.Observe(storeSpan.First)
		res.Span.Observe(storeSpan.Last)
	}
	if months := res.Span.Months(); len(months) > 0 {
		res.FirstMonth = months[0].String()
		res.LastMonth = months[len(months)-1].String()
	}
	logger.Info("events resolved",
		"resolved", len(resolved.Events),
		"unresolved", resolved.Unresolved,
		"bad_timestamp", resolved.BadTimestamp,
		"before_since", resolved.BeforeSince,
		"contacts", res.Contacts,
	)

	direct := resolved.Direct()
	res.Volumes = stats.Volumes(resolved)
	res.Monthly = stats.Monthly(direct, res.Span)
	res.Quarterly = res.Monthly.Quarterly()
	res.Latency = stats.ResponseTimes(direct)
	res.Heatmaps = stats.Heatmaps(direct)

	res.Duration = time.Since(start).String()
	logger.Debug("run complete", "duration", res.Duration)
	return res, nil
}

// clampSpan drops the part of [first, last] before since.
func clampSpan(first, last, since time.Time) timeline.Span {
	if !since.IsZero() {
		if last.Before(since) {
			return timeline.Span{}
		}
		if first.Before(since) {
			first = since
		}
	}
	return timeline.SpanOf(first, last)
}
