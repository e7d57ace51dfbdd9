package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/randalmurphal/eventtap/pkg/eventtap"
	"github.com/randalmurphal/eventtap/pkg/eventtap/eventtype"
)

// Subscription actions.
const (
	ActionObserve  = "observe"
	ActionSuppress = "suppress"
)

// Settings are the runtime knobs of an eventtap program.
type Settings struct {
	LogLevel  slog.Level
	LogFormat string // "text" or "json"

	PanicLimit   int
	Enrichment   bool
	SlowDispatch time.Duration // zero disables the warning
	Metrics      bool
	Tracing      bool

	JournalPath   string // empty disables the journal
	JournalBuffer int
	// JournalRetention is how long records are kept; zero keeps them all.
	JournalRetention time.Duration

	// Echo forwards passed-through terminal events to the screen.
	Echo bool

	Subscriptions []Subscription
}

// Subscription is a subscriber declared in configuration.
type Subscription struct {
	Name   string
	Form   eventtap.Form
	Events []string
	// Action is ActionObserve or ActionSuppress.
	Action string
}

// Types parses Events as low-level event types.
func (s Subscription) Types() ([]eventtype.Type, error) {
	return eventtype.ParseTypes(s.Events)
}

// Kinds parses Events as enriched kinds.
func (s Subscription) Kinds() ([]eventtype.Kind, error) {
	return eventtype.ParseKinds(s.Events)
}

// DefaultSettings returns the settings used for missing keys.
func DefaultSettings() Settings {
	return Settings{
		LogLevel:      slog.LevelInfo,
		LogFormat:     "text",
		Enrichment:    true,
		JournalBuffer: 256,
		Echo:          true,
	}
}

// FromConfig extracts Settings from cfg.
//
// Recognised keys:
//
//	log.level                  debug | info | warn | error
//	log.format                 text | json
//	dispatch.panic_limit       int
//	dispatch.enrichment        bool
//	dispatch.slow_ms           float, milliseconds
//	observability.metrics      bool
//	observability.tracing      bool
//	journal.path               sqlite file, or ":memory:"
//	journal.buffer             int
//	journal.retention          duration ("72h") or seconds
//	terminal.echo              bool
//	subscriptions              list of {name, form, events, action}
func FromConfig(cfg Config) (Settings, error) {
	s := DefaultSettings()

	logCfg := cfg.Sub("log")
	if err := s.LogLevel.UnmarshalText([]byte(logCfg.String("level", "info"))); err != nil {
		return Settings{}, fmt.Errorf("log.level: %w", err)
	}
	s.LogFormat = strings.ToLower(logCfg.String("format", s.LogFormat))
	if s.LogFormat != "text" && s.LogFormat != "json" {
		return Settings{}, fmt.Errorf("log.format: unknown format %q", s.LogFormat)
	}

	dispatch := cfg.Sub("dispatch")
	s.PanicLimit = dispatch.Int("panic_limit", s.PanicLimit)
	s.Enrichment = dispatch.Bool("enrichment", s.Enrichment)
	slowMS := dispatch.Float("slow_ms", 0)
	if slowMS < 0 {
		return Settings{}, fmt.Errorf("dispatch.slow_ms: must not be negative")
	}
	s.SlowDispatch = time.Duration(slowMS * float64(time.Millisecond))

	obs := cfg.Sub("observability")
	s.Metrics = obs.Bool("metrics", s.Metrics)
	s.Tracing = obs.Bool("tracing", s.Tracing)

	journal := cfg.Sub("journal")
	s.JournalPath = journal.String("path", s.JournalPath)
	s.JournalBuffer = journal.Int("buffer", s.JournalBuffer)
	s.JournalRetention = journal.Duration("retention", s.JournalRetention)
	if s.JournalRetention < 0 {
		return Settings{}, fmt.Errorf("journal.retention: must not be negative")
	}

	s.Echo = cfg.Sub("terminal").Bool("echo", s.Echo)

	for i, item := range cfg.List("subscriptions") {
		sub, err := parseSubscription(item)
		if err != nil {
			return Settings{}, fmt.Errorf("subscriptions[%d]: %w", i, err)
		}
		s.Subscriptions = append(s.Subscriptions, sub)
	}
	return s, nil
}

func parseSubscription(cfg Config) (Subscription, error) {
	sub := Subscription{
		Name:   cfg.String("name", ""),
		Events: cfg.StringSlice("events", nil),
		Action: strings.ToLower(cfg.String("action", ActionObserve)),
	}
	if sub.Name == "" {
		return Subscription{}, fmt.Errorf("name is required")
	}

	switch form := strings.ToLower(cfg.String("form", "raw")); form {
	case "raw":
		sub.Form = eventtap.FormRaw
		if _, err := sub.Types(); err != nil {
			return Subscription{}, fmt.Errorf("%s: %w", sub.Name, err)
		}
	case "enriched":
		sub.Form = eventtap.FormEnriched
		if _, err := sub.Kinds(); err != nil {
			return Subscription{}, fmt.Errorf("%s: %w", sub.Name, err)
		}
	default:
		return Subscription{}, fmt.Errorf("%s: unknown form %q", sub.Name, form)
	}

	if sub.Action != ActionObserve && sub.Action != ActionSuppress {
		return Subscription{}, fmt.Errorf("%s: unknown action %q", sub.Name, sub.Action)
	}
	if !cfg.Has("events") {
		return Subscription{}, fmt.Errorf("%s: events is required", sub.Name)
	}
	return sub, nil
}

// Logger builds a logger writing to w at the configured level and format.
func (s Settings) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: s.LogLevel}
	if s.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Options converts the settings into supervisor options.
func (s Settings) Options(logger *slog.Logger) []eventtap.Option {
	opts := []eventtap.Option{
		eventtap.WithLogger(logger),
		eventtap.WithMetrics(s.Metrics),
		eventtap.WithTracing(s.Tracing),
		eventtap.WithPanicLimit(s.PanicLimit),
		eventtap.WithSlowDispatch(s.SlowDispatch),
	}
	if !s.Enrichment {
		opts = append(opts, eventtap.WithEnricher(nil))
	}
	return opts
}
