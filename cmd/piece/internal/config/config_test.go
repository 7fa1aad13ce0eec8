package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module github.com/acme/dashboard/v2\n\ngo 1.24\n")

	got, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := &Resolved{
		Root:       dir,
		ModulePath: "github.com/acme/dashboard/v2",
		AppName:    "dashboard",
		Manifest:   filepath.Join(dir, DefaultManifest),
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		LogLevel:   "info",
		LogFormat:  "text",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Resolve mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveFromFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module example.com/demo\n")
	writeFile(t, dir, FileName, `app:
  name: Showcase
render:
  manifest: ui/main.yaml
  width: 640
  height: 480
log:
  level: DEBUG
  format: json
`)

	got, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.AppName != "Showcase" {
		t.Errorf("AppName = %q, want Showcase", got.AppName)
	}
	if got.Manifest != filepath.Join(dir, "ui", "main.yaml") {
		t.Errorf("Manifest = %q", got.Manifest)
	}
	if got.Width != 640 || got.Height != 480 {
		t.Errorf("size = %dx%d, want 640x480", got.Width, got.Height)
	}
	if got.LogLevel != "debug" || got.LogFormat != "json" {
		t.Errorf("log = %s/%s, want debug/json", got.LogLevel, got.LogFormat)
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name   string
		gomod  string
		config string
		want   string
	}{
		{"no go.mod", "", "", "failed to read go.mod"},
		{"no module line", "go 1.24\n", "", "could not determine module path"},
		{"bad yaml", "module x.com/y\n", "app: [\n", "failed to parse piece.yaml"},
		{"bad level", "module x.com/y\n", "log:\n  level: loud\n", "log.level"},
		{"bad format", "module x.com/y\n", "log:\n  format: xml\n", "log.format"},
		{"negative size", "module x.com/y\n", "render:\n  width: -1\n", "must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.gomod != "" {
				writeFile(t, dir, "go.mod", tt.gomod)
			}
			if tt.config != "" {
				writeFile(t, dir, FileName, tt.config)
			}
			_, err := Resolve(dir)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should contain %q", err, tt.want)
			}
		})
	}
}

func TestLoadOptionalMissing(t *testing.T) {
	cfg, err := LoadOptional(t.TempDir())
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if diff := cmp.Diff(&Config{}, cfg); diff != "" {
		t.Errorf("expected empty config (-want +got):\n%s", diff)
	}
}

func TestDefaultAppName(t *testing.T) {
	tests := []struct {
		modulePath string
		dir        string
		want       string
	}{
		{"github.com/acme/widgets", "/src/x", "widgets"},
		{"github.com/acme/widgets/v3", "/src/x", "widgets"},
		{"local", "/src/x", "local"},
	}
	for _, tt := range tests {
		if got := defaultAppName(tt.modulePath, tt.dir); got != tt.want {
			t.Errorf("defaultAppName(%q, %q) = %q, want %q", tt.modulePath, tt.dir, got, tt.want)
		}
	}
}

func TestFindProjectRoot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module example.com/root\n")
	nested := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(nested)

	got, err := FindProjectRoot()
	if err != nil {
		t.Fatalf("FindProjectRoot: %v", err)
	}
	// TempDir may sit behind a symlink (macOS /var -> /private/var).
	wantReal, _ := filepath.EvalSymlinks(dir)
	gotReal, _ := filepath.EvalSymlinks(got)
	if gotReal != wantReal {
		t.Errorf("FindProjectRoot() = %q, want %q", got, dir)
	}
}
