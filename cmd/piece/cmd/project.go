package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/go-drift/piece/cmd/piece/internal/config"
)

// loadProject resolves piece.yaml for the enclosing module and applies the
// global log flags. Outside a module, defaults are used as long as an
// explicit manifest path was given.
func loadProject(manifestArg string) (*config.Resolved, error) {
	var cfg *config.Resolved
	root, err := config.FindProjectRoot()
	if err == nil {
		cfg, err = config.Resolve(root)
		if err != nil {
			return nil, err
		}
	} else {
		if manifestArg == "" {
			return nil, fmt.Errorf("%w; pass a manifest path", err)
		}
		cfg = &config.Resolved{
			AppName:   "pieces",
			Width:     config.DefaultWidth,
			Height:    config.DefaultHeight,
			LogLevel:  "info",
			LogFormat: "text",
		}
	}

	if manifestArg != "" {
		abs, err := filepath.Abs(manifestArg)
		if err != nil {
			return nil, err
		}
		cfg.Manifest = abs
	}
	if globalFlags.logLevel != "" {
		cfg.LogLevel = globalFlags.logLevel
	}
	if globalFlags.logFormat != "" {
		cfg.LogFormat = globalFlags.logFormat
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid --log-level %q", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid --log-format %q", cfg.LogFormat)
	}
	return cfg, nil
}
