// Package config provides the configuration for vuno.
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← VUNO_* (highest priority)
//	├─────────────────────────────┤
//	│  2. Config File             │  ← .toml or .yaml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// A missing config file is not an error; the defaults and environment
// still apply.
//
// # Environment Variables
//
// Settings are named VUNO_<SECTION>_<SETTING>, for example
// VUNO_HISTORY_CAPACITY or VUNO_FILES_WATCH_DEBOUNCE=250ms. The short forms
// VUNO_LOG_LEVEL, VUNO_LOG_FORMAT, VUNO_WORKERS and VUNO_MAX_FILE are also
// accepted.
//
// # Basic Usage
//
//	cfg, err := config.Load("~/.config/vuno/config.toml")
//	if err != nil {
//	    return err
//	}
//	m := engine.New(engine.WithHistoryCapacity(cfg.History.Capacity))
package config
