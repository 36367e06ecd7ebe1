package config

import (
	"fmt"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if strings.TrimSpace(cfg.Sockets.Kscan) == "" {
		return nil, fmt.Errorf("sockets.kscan must not be empty")
	}
	if strings.TrimSpace(cfg.Sockets.Events) == "" {
		return nil, fmt.Errorf("sockets.events must not be empty")
	}
	if cfg.Sockets.Kscan == cfg.Sockets.Events {
		return nil, fmt.Errorf("sockets.kscan and sockets.events must differ")
	}
	if cfg.Matrix.Columns <= 0 {
		return nil, fmt.Errorf("matrix.columns must be > 0")
	}
	if cfg.Keys.PressMS < 0 {
		return nil, fmt.Errorf("keys.press_ms must be >= 0")
	}
	if cfg.Keys.IntervalMS < 0 {
		return nil, fmt.Errorf("keys.interval_ms must be >= 0")
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}
	if cfg.Log.MaxSizeMB <= 0 {
		return nil, fmt.Errorf("log.max_size_mb must be > 0")
	}
	if cfg.Log.MaxBackups < 0 {
		return nil, fmt.Errorf("log.max_backups must be >= 0")
	}
	if cfg.Log.MaxAgeDays < 0 {
		return nil, fmt.Errorf("log.max_age_days must be >= 0")
	}

	if cfg.Keys.PressMS == 0 {
		warnings = append(warnings, Warning{
			Message: "keys.press_ms is 0; press and release will be sent back to back",
		})
	}

	return warnings, nil
}
