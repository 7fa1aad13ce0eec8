package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/go-drift/piece/pkg/manifest"
)

func init() {
	RegisterCommand(&Command{
		Name:  "check",
		Short: "Validate a manifest",
		Long: `Parse and validate a piece manifest without mounting it.

Reports unknown fields, unknown kinds, text pieces with children and
duplicate ids. When no manifest is given, the one configured in piece.yaml
(or pieces.yaml at the module root) is checked.`,
		Usage: "piece check [manifest]",
		Run:   runCheck,
	})
}

func runCheck(args []string) error {
	var manifestArg string
	for _, arg := range args {
		if manifestArg != "" {
			return fmt.Errorf("unexpected argument %q", arg)
		}
		manifestArg = arg
	}

	cfg, err := loadProject(manifestArg)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel, cfg.LogFormat)

	m, err := manifest.Load(cfg.Manifest)
	if err != nil {
		return err
	}
	logger.Debug("manifest loaded", "path", cfg.Manifest, "name", m.Name)

	fmt.Fprintf(stdout, "%s: ok (%d pieces)\n", filepath.Base(cfg.Manifest), m.Count())
	return nil
}
