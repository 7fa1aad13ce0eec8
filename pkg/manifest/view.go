package manifest

import (
	"context"
	stderrors "errors"
	"fmt"
	"slices"
	"sync"

	"github.com/go-drift/piece/pkg/piece"
	"github.com/go-drift/piece/pkg/surface"
)

// View is a mounted manifest.
type View struct {
	mu    sync.Mutex
	roots []*piece.Instance
	byID  map[string]*piece.Instance
}

// Mount mounts every top-level piece of m onto target, which must be a
// *surface.Node or a *surface.Canvas. If a piece fails to mount, the
// pieces mounted before it are unmounted again and the mount error is
// returned.
func Mount(ctx context.Context, m *Manifest, target piece.Target, opts ...piece.Option) (*View, error) {
	switch target.(type) {
	case *surface.Node, *surface.Canvas:
	default:
		return nil, fmt.Errorf("manifest: unsupported target %T", target)
	}

	v := &View{byID: make(map[string]*piece.Instance)}
	for i := range m.Pieces {
		spec := &m.Pieces[i]
		inst, err := piece.MountPiece(ctx, v.build(spec), target, nil, opts...)
		if err != nil {
			if uerr := v.Unmount(ctx); uerr != nil {
				return nil, stderrors.Join(err, uerr)
			}
			return nil, err
		}
		v.track(spec.ID, inst)
		v.mu.Lock()
		v.roots = append(v.roots, inst)
		v.mu.Unlock()
	}
	return v, nil
}

// Roots returns the top-level instances in mount order.
func (v *View) Roots() []*piece.Instance {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.roots)
}

// Instance returns the instance mounted for the spec with the given id.
func (v *View) Instance(id string) (*piece.Instance, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	inst, ok := v.byID[id]
	return inst, ok
}

// SetText updates the text piece with the given id.
func (v *View) SetText(ctx context.Context, id, text string) error {
	inst, ok := v.Instance(id)
	if !ok {
		return fmt.Errorf("manifest: no piece with id %q", id)
	}
	return inst.Update(ctx, piece.Props{"text": text})
}

// Unmount unmounts the top-level pieces, last mounted first.
// Errors are returned unchanged and stop the unmount.
func (v *View) Unmount(ctx context.Context) error {
	v.mu.Lock()
	roots := slices.Clone(v.roots)
	v.mu.Unlock()

	for i := len(roots) - 1; i >= 0; i-- {
		if err := roots[i].Unmount(ctx); err != nil {
			return err
		}
		v.mu.Lock()
		v.roots = v.roots[:i]
		v.mu.Unlock()
	}

	v.mu.Lock()
	clear(v.byID)
	v.mu.Unlock()
	return nil
}

func (v *View) track(id string, inst *piece.Instance) {
	if id == "" {
		return
	}
	v.mu.Lock()
	v.byID[id] = inst
	v.mu.Unlock()
}

// build returns a piece for spec. Each built piece is mounted once.
func (v *View) build(spec *Spec) piece.Piece {
	switch spec.Kind {
	case KindText:
		return textPiece(spec)
	default:
		return v.boxPiece(spec)
	}
}

func (v *View) boxPiece(spec *Spec) piece.Piece {
	return piece.Func(func(ctx context.Context, target piece.Target, props piece.Props, m piece.Mounter) (piece.Teardown, error) {
		var (
			childTarget = target
			box         *surface.Node
		)
		if node, ok := target.(*surface.Node); ok {
			box = node.AppendChild(surface.NewNode(tagOr(spec.Tag, "div"), spec.ID))
			childTarget = box
		}

		var mounted []*piece.Instance
		for i := range spec.Children {
			child := &spec.Children[i]
			inst, err := m(ctx, v.build(child), childTarget, props)
			if err != nil {
				for j := len(mounted) - 1; j >= 0; j-- {
					if uerr := mounted[j].Unmount(ctx); uerr != nil {
						err = stderrors.Join(err, uerr)
					}
				}
				if box != nil {
					box.Remove()
				}
				return nil, err
			}
			mounted = append(mounted, inst)
			v.track(child.ID, inst)
		}

		return func(context.Context) error {
			if box != nil {
				box.Remove()
			}
			return nil
		}, nil
	})
}

func textPiece(spec *Spec) piece.Piece {
	var (
		node   *surface.Node
		canvas *surface.Canvas
		line   int
	)

	render := func(text string) error {
		if node != nil {
			node.SetText(text)
			return nil
		}
		if canvas != nil {
			return canvas.DrawText(line, text)
		}
		return nil
	}

	return piece.Piece{
		Mount: piece.MountAction(func(ctx context.Context, target piece.Target, props piece.Props, m piece.Mounter) (piece.Teardown, error) {
			switch t := target.(type) {
			case *surface.Node:
				node = t.AppendChild(surface.NewText(tagOr(spec.Tag, "span"), spec.ID, spec.Text))
				return func(context.Context) error {
					node.Remove()
					return nil
				}, nil
			case *surface.Canvas:
				l, ok := t.Claim()
				if !ok {
					return nil, fmt.Errorf("manifest: canvas has no free line for %q", spec.ID)
				}
				if err := t.DrawText(l, spec.Text); err != nil {
					t.ClearLine(l)
					return nil, err
				}
				canvas, line = t, l
				return func(context.Context) error {
					t.ClearLine(l)
					return nil
				}, nil
			default:
				return nil, fmt.Errorf("manifest: unsupported target %T", target)
			}
		}),
		Update: piece.UpdateAction(func(ctx context.Context, props piece.Props) error {
			text, ok := props.String("text")
			if !ok {
				return nil
			}
			return render(text)
		}),
	}
}

func tagOr(tag, fallback string) string {
	if tag == "" {
		return fallback
	}
	return tag
}
