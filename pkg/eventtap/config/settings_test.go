package config_test

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/eventtap/pkg/eventtap"
	"github.com/randalmurphal/eventtap/pkg/eventtap/config"
	"github.com/randalmurphal/eventtap/pkg/eventtap/eventtype"
	"github.com/randalmurphal/eventtap/pkg/eventtap/hook"
	"github.com/randalmurphal/eventtap/pkg/eventtap/hook/memtap"
)

const sampleYAML = `
log:
  level: debug
  format: json
dispatch:
  panic_limit: 3
  enrichment: false
  slow_ms: 2.5
observability:
  metrics: true
journal:
  path: events.db
  buffer: 16
  retention: 72h
terminal:
  echo: false
subscriptions:
  - name: no-quit
    events: [keyDown]
    action: suppress
  - name: clicks
    form: enriched
    events: [leftMouseDown, rightMouseDown]
`

func TestFromConfig(t *testing.T) {
	cfg, err := config.FromYAML([]byte(sampleYAML))
	require.NoError(t, err)

	s, err := config.FromConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, s.LogLevel)
	assert.Equal(t, "json", s.LogFormat)
	assert.Equal(t, 3, s.PanicLimit)
	assert.False(t, s.Enrichment)
	assert.Equal(t, 2500*time.Microsecond, s.SlowDispatch)
	assert.True(t, s.Metrics)
	assert.False(t, s.Tracing)
	assert.Equal(t, "events.db", s.JournalPath)
	assert.Equal(t, 16, s.JournalBuffer)
	assert.Equal(t, 72*time.Hour, s.JournalRetention)
	assert.False(t, s.Echo)

	require.Len(t, s.Subscriptions, 2)

	quit := s.Subscriptions[0]
	assert.Equal(t, "no-quit", quit.Name)
	assert.Equal(t, eventtap.FormRaw, quit.Form)
	assert.Equal(t, config.ActionSuppress, quit.Action)
	typs, err := quit.Types()
	require.NoError(t, err)
	assert.Equal(t, []eventtype.Type{eventtype.KeyDown}, typs)

	clicks := s.Subscriptions[1]
	assert.Equal(t, eventtap.FormEnriched, clicks.Form)
	assert.Equal(t, config.ActionObserve, clicks.Action)
	kinds, err := clicks.Kinds()
	require.NoError(t, err)
	assert.Equal(t, []eventtype.Kind{eventtype.KindLeftMouseDown, eventtype.KindRightMouseDown}, kinds)
}

func TestFromConfig_Defaults(t *testing.T) {
	s, err := config.FromConfig(config.New(nil))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultSettings(), s)
}

func TestFromConfig_TOML(t *testing.T) {
	cfg, err := config.FromTOML([]byte(`
[log]
level = "warn"

[dispatch]
panic_limit = 2
slow_ms = 4

[journal]
retention = 3600

[[subscriptions]]
name = "scroll"
form = "enriched"
events = ["scrollWheel"]
`))
	require.NoError(t, err)

	s, err := config.FromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, s.LogLevel)
	assert.Equal(t, 2, s.PanicLimit)
	assert.Equal(t, 4*time.Millisecond, s.SlowDispatch)
	assert.Equal(t, time.Hour, s.JournalRetention)
	require.Len(t, s.Subscriptions, 1)
	assert.Equal(t, "scroll", s.Subscriptions[0].Name)
}

func TestFromConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    map[string]any
		wantErr string
	}{
		{"bad level", map[string]any{"log": map[string]any{"level": "loud"}}, "log.level"},
		{"bad format", map[string]any{"log": map[string]any{"format": "xml"}}, "log.format"},
		{
			"missing name",
			map[string]any{"subscriptions": []any{map[string]any{"events": []any{"keyDown"}}}},
			"name is required",
		},
		{
			"unknown event",
			map[string]any{"subscriptions": []any{map[string]any{"name": "a", "events": []any{"keyDwn"}}}},
			"subscriptions[0]",
		},
		{
			"unknown form",
			map[string]any{"subscriptions": []any{map[string]any{"name": "a", "form": "cooked"}}},
			"unknown form",
		},
		{"negative slow_ms", map[string]any{"dispatch": map[string]any{"slow_ms": -1.0}}, "dispatch.slow_ms"},
		{"negative retention", map[string]any{"journal": map[string]any{"retention": "-1h"}}, "journal.retention"},
		{
			"missing events",
			map[string]any{"subscriptions": []any{map[string]any{"name": "a"}}},
			"events is required",
		},
		{
			"unknown action",
			map[string]any{"subscriptions": []any{map[string]any{"name": "a", "action": "eat"}}},
			"unknown action",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.FromConfig(config.New(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSettings_Logger(t *testing.T) {
	var buf bytes.Buffer

	s := config.DefaultSettings()
	s.LogFormat = "json"
	s.LogLevel = slog.LevelWarn
	logger := s.Logger(&buf)

	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	s.LogFormat = "text"
	s.Logger(&buf).Warn("plain")
	assert.Contains(t, buf.String(), "msg=plain")
}

func TestSettings_Options(t *testing.T) {
	s := config.DefaultSettings()
	s.Enrichment = false
	s.PanicLimit = 1

	var outcomes []eventtap.Outcome
	opts := append(s.Options(nil), eventtap.WithDispatchObserver(func(o eventtap.Outcome) {
		outcomes = append(outcomes, o)
	}))

	tap := memtap.New()
	sup := eventtap.New(tap, opts...)
	defer sup.Close()

	called := false
	sup.SubscribeEnriched("rich", []eventtype.Kind{eventtype.KindKeyDown}, func(*eventtap.EnrichedEvent) { called = true })
	sup.Subscribe("bad", []eventtype.Type{eventtype.KeyUp}, func(*eventtap.RawEvent) { panic("boom") })

	tap.Deliver(hook.Event{Type: eventtype.KeyDown})
	tap.Deliver(hook.Event{Type: eventtype.KeyUp})

	assert.False(t, called, "enrichment disabled")
	require.Len(t, outcomes, 2)
	assert.False(t, outcomes[0].Enriched)
	assert.Equal(t, 1, sup.SubscriberCount(), "panic limit of one quarantines immediately")
}
