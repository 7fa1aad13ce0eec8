package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-drift/piece/cmd/piece/internal/config"
)

func init() {
	RegisterCommand(&Command{
		Name:  "status",
		Short: "Show project status",
		Long: `Show the resolved piece configuration for the current Go module.

Displays the manifest that piece render and piece check use by default,
whether it exists, the canvas size used by render --png and the log
settings.`,
		Usage: "piece status",
		Run:   runStatus,
	})
}

func runStatus(args []string) error {
	root, err := config.FindProjectRoot()
	if err != nil {
		return err
	}

	cfg, err := config.Resolve(root)
	if err != nil {
		return err
	}

	manifestState := "present"
	if _, err := os.Stat(cfg.Manifest); err != nil {
		manifestState = "missing"
	}
	rel, err := filepath.Rel(root, cfg.Manifest)
	if err != nil {
		rel = cfg.Manifest
	}

	fmt.Fprintf(stdout, "Project: %s\n", cfg.AppName)
	fmt.Fprintf(stdout, "Module:  %s\n", cfg.ModulePath)
	fmt.Fprintf(stdout, "Root:    %s\n", cfg.Root)
	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "  manifest  %-20s %s\n", rel, manifestState)
	fmt.Fprintf(stdout, "  canvas    %dx%d\n", cfg.Width, cfg.Height)
	fmt.Fprintf(stdout, "  log       %s/%s\n", cfg.LogLevel, cfg.LogFormat)
	return nil
}
