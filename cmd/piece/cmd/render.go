package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-drift/piece/cmd/piece/internal/config"
	"github.com/go-drift/piece/pkg/manifest"
	"github.com/go-drift/piece/pkg/piece"
	"github.com/go-drift/piece/pkg/surface"
)

func init() {
	RegisterCommand(&Command{
		Name:  "render",
		Short: "Mount a manifest and show the result",
		Long: `Mount a piece manifest, show what it produced, then unmount it.

By default the pieces are mounted onto a root node and the resulting node
tree is printed. With --png, they are mounted onto a canvas of the size
configured in piece.yaml and the canvas is written as a PNG image.

Flags:
  --png FILE     Render onto a canvas and write it to FILE
  --parallel     Unmount sibling pieces concurrently
  --best-effort  Keep unmounting after a teardown fails`,
		Usage: "piece render [manifest] [--png FILE] [--parallel] [--best-effort]",
		Run:   runRender,
	})
}

type renderOptions struct {
	manifest   string
	png        string
	parallel   bool
	bestEffort bool
}

func parseRenderArgs(args []string) (renderOptions, error) {
	var opts renderOptions
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--png":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("--png requires a file name")
			}
			opts.png = args[i+1]
			i++
		case strings.HasPrefix(arg, "--png="):
			opts.png = strings.TrimPrefix(arg, "--png=")
		case arg == "--parallel":
			opts.parallel = true
		case arg == "--best-effort":
			opts.bestEffort = true
		case strings.HasPrefix(arg, "-"):
			return opts, fmt.Errorf("unknown flag %q", arg)
		default:
			if opts.manifest != "" {
				return opts, fmt.Errorf("unexpected argument %q", arg)
			}
			opts.manifest = arg
		}
	}
	return opts, nil
}

func runRender(args []string) error {
	opts, err := parseRenderArgs(args)
	if err != nil {
		return err
	}

	cfg, err := loadProject(opts.manifest)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel, cfg.LogFormat)

	m, err := manifest.Load(cfg.Manifest)
	if err != nil {
		return err
	}

	pieceOpts := []piece.Option{piece.WithLogger(logger)}
	if opts.parallel {
		pieceOpts = append(pieceOpts, piece.WithParallelUnmount())
	}
	if opts.bestEffort {
		pieceOpts = append(pieceOpts, piece.WithBestEffortUnmount())
	}

	ctx := context.Background()
	if opts.png != "" {
		return renderCanvas(ctx, logger, cfg, m, opts.png, pieceOpts)
	}
	return renderTree(ctx, logger, cfg, m, pieceOpts)
}

func renderTree(ctx context.Context, logger *slog.Logger, cfg *config.Resolved, m *manifest.Manifest, opts []piece.Option) (err error) {
	root := surface.NewNode("div", cfg.AppName)
	v, err := manifest.Mount(ctx, m, root, opts...)
	if err != nil {
		return fmt.Errorf("mount failed: %w", err)
	}
	defer func() {
		err = stderrors.Join(err, unmountView(ctx, logger, v))
	}()
	logger.Info("mounted", "manifest", cfg.Manifest, "pieces", m.Count(), "nodes", root.Count())

	return root.Dump(stdout)
}

func renderCanvas(ctx context.Context, logger *slog.Logger, cfg *config.Resolved, m *manifest.Manifest, out string, opts []piece.Option) (err error) {
	canvas := surface.NewCanvas(cfg.Width, cfg.Height)
	v, err := manifest.Mount(ctx, m, canvas, opts...)
	if err != nil {
		return fmt.Errorf("mount failed: %w", err)
	}
	defer func() {
		err = stderrors.Join(err, unmountView(ctx, logger, v))
	}()
	logger.Info("mounted", "manifest", cfg.Manifest, "pieces", m.Count(), "lines", canvas.Used())

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := canvas.WritePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s (%dx%d, %d lines)\n", out, cfg.Width, cfg.Height, canvas.Used())
	return nil
}

// unmountView tears down a rendered view. It runs on every exit path once
// mounting succeeded.
func unmountView(ctx context.Context, logger *slog.Logger, v *manifest.View) error {
	if err := v.Unmount(ctx); err != nil {
		return fmt.Errorf("unmount failed: %w", err)
	}
	logger.Debug("unmounted")
	return nil
}
