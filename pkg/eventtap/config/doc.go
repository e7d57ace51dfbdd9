/*
Package config loads eventtap settings from YAML, TOML, or JSON files.

# Overview

Config wraps a map[string]any and provides typed accessors that return a
default when a key is missing or has the wrong type. Keys may be dotted
paths into nested tables, so one accessor serves every format:

	cfg, err := config.FromFile("eventtap.toml")
	if err != nil {
	    log.Fatal(err)
	}
	limit := cfg.Int("dispatch.panic_limit", 0)
	path := cfg.String("journal.path", "")

# Settings

FromConfig extracts the runtime settings and the declared subscriptions:

	log:
	  level: debug
	  format: json
	dispatch:
	  panic_limit: 3
	journal:
	  path: events.db
	subscriptions:
	  - name: no-quit
	    events: [keyDown]
	    action: suppress

Settings.Options turns them into supervisor options.

# Live Reload

Watch reloads the file whenever it is written:

	w, err := config.Watch("eventtap.yaml", func(cfg config.Config, err error) {
	    if err != nil {
	        log.Printf("reload: %v", err)
	        return
	    }
	    apply(cfg)
	})
	defer w.Close()

# Thread Safety

Config is safe for concurrent read access. The underlying map is not
modified after creation.
*/
package config
