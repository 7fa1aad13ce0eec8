package manifest

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/piece/pkg/errors"
	"github.com/go-drift/piece/pkg/piece"
	"github.com/go-drift/piece/pkg/surface"
)

func TestLoad(t *testing.T) {
	m, err := Load(filepath.Join("testdata", "card.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Name != "card" {
		t.Errorf("Name = %q, want %q", m.Name, "card")
	}
	if got := m.Count(); got != 6 {
		t.Errorf("Count() = %d, want 6", got)
	}
	if m.Pieces[0].Children[0].Tag != "h1" {
		t.Errorf("title tag = %q, want h1", m.Pieces[0].Children[0].Tag)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", "", "empty"},
		{"no pieces", "name: x\n", "no pieces"},
		{"missing kind", "pieces:\n  - id: a\n", "pieces[0]: kind is required"},
		{"unknown kind", "pieces:\n  - kind: blob\n", `unknown kind "blob"`},
		{"text children", "pieces:\n  - kind: text\n    children:\n      - kind: text\n", "cannot have children"},
		{"duplicate id", "pieces:\n  - kind: text\n    id: a\n  - kind: box\n    children:\n      - kind: text\n        id: a\n", `pieces[1].children[0]: duplicate id "a"`},
		{"unknown field", "pieces:\n  - kind: text\n    colour: red\n", "colour"},
		{"bad yaml", "pieces: [\n", "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should contain %q", err, tt.want)
			}
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	m := &Manifest{
		Name: "rt",
		Pieces: []Spec{
			{Kind: KindBox, ID: "b", Children: []Spec{{Kind: KindText, ID: "t", Text: "hi"}}},
		},
	}
	data, err := m.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if diff := cmp.Diff(m, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMount_NodeTree(t *testing.T) {
	ctx := context.Background()
	m, err := Load(filepath.Join("testdata", "card.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	root := surface.NewNode("div", "root")

	v, err := Mount(ctx, m, root)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	want := `div#root
  section#card
    h1#title "Hello"
    div#body
      span#line1 "first"
      span#line2 "second"
  span#footer "bye"
`
	if diff := cmp.Diff(want, dump(t, root)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}

	if n := len(v.Roots()); n != 2 {
		t.Errorf("Roots() = %d, want 2", n)
	}
	card, ok := v.Instance("card")
	if !ok {
		t.Fatal("expected instance for card")
	}
	if n := len(card.Children()); n != 2 {
		t.Errorf("card children = %d, want 2", n)
	}

	if err := v.Unmount(ctx); err != nil {
		t.Fatalf("Unmount: %v", err)
	}
	if root.Count() != 0 {
		t.Errorf("nodes after unmount = %d, want 0", root.Count())
	}
	if card.State() != piece.StateUnmounted {
		t.Errorf("card state = %v, want unmounted", card.State())
	}
	if _, ok := v.Instance("card"); ok {
		t.Error("instances should be forgotten after unmount")
	}
}

func TestMount_SetText(t *testing.T) {
	ctx := context.Background()
	m, err := Parse([]byte("pieces:\n  - kind: text\n    id: msg\n    text: a\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	root := surface.NewNode("div", "root")
	v, err := Mount(ctx, m, root)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	if err := v.SetText(ctx, "msg", "b"); err != nil {
		t.Fatalf("SetText: %v", err)
	}
	if got := root.FindByID("msg").Text(); got != "b" {
		t.Errorf("text = %q, want %q", got, "b")
	}
	if err := v.SetText(ctx, "nope", "x"); err == nil {
		t.Error("expected error for unknown id")
	}
}

func TestMount_Canvas(t *testing.T) {
	ctx := context.Background()
	m, err := Load(filepath.Join("testdata", "card.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	canvas := surface.NewCanvas(240, 160)

	v, err := Mount(ctx, m, canvas)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	wantLines := []string{"Hello", "first", "second", "bye"}
	for i, want := range wantLines {
		if got := canvas.Text(i); got != want {
			t.Errorf("line %d = %q, want %q", i, got, want)
		}
	}

	if err := v.SetText(ctx, "line1", "changed"); err != nil {
		t.Fatalf("SetText: %v", err)
	}
	if got := canvas.Text(1); got != "changed" {
		t.Errorf("line 1 = %q, want %q", got, "changed")
	}

	if err := v.Unmount(ctx); err != nil {
		t.Fatalf("Unmount: %v", err)
	}
	if canvas.Used() != 0 {
		t.Errorf("Used() = %d, want 0", canvas.Used())
	}
}

func TestMount_CanvasFullRollsBack(t *testing.T) {
	ctx := context.Background()
	old := errors.DefaultHandler
	errors.SetHandler(errors.NopHandler{})
	defer errors.SetHandler(old)

	m, err := Parse([]byte(`pieces:
  - kind: text
    text: one
  - kind: box
    children:
      - kind: text
        text: two
      - kind: text
        text: three
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	canvas := surface.NewCanvas(100, 32) // two lines

	if _, err := Mount(ctx, m, canvas); err == nil || !strings.Contains(err.Error(), "no free line") {
		t.Fatalf("Mount() = %v, want no free line error", err)
	}
	if canvas.Used() != 0 {
		t.Errorf("Used() = %d, want 0 after rollback", canvas.Used())
	}
}

func TestMount_UnsupportedTarget(t *testing.T) {
	m := &Manifest{Pieces: []Spec{{Kind: KindText}}}
	if _, err := Mount(context.Background(), m, "not a surface"); err == nil {
		t.Error("expected error for unsupported target")
	}
}

func dump(t *testing.T, n *surface.Node) string {
	t.Helper()
	var buf bytes.Buffer
	if err := n.Dump(&buf); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	return buf.String()
}
