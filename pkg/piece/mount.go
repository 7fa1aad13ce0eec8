package piece

import "context"

// MountPiece creates a root instance of p, mounts it onto target and
// returns it. Errors from mount actions are returned unchanged.
//
// Pieces mounted through the returned instance's Mounter, or the Mounter
// passed to its mount actions, become its children and are unmounted with
// it.
func MountPiece(ctx context.Context, p Piece, target Target, props Props, opts ...Option) (*Instance, error) {
	return mountPiece(ctx, nil, p, target, props, opts...)
}

func mountPiece(ctx context.Context, parent *Instance, p Piece, target Target, props Props, opts ...Option) (*Instance, error) {
	inst := New(p, mountChildPiece, parent, opts...)
	if err := inst.Mount(ctx, target, props); err != nil {
		return nil, err
	}
	return inst, nil
}

// mountChildPiece is the default ChildMounter.
func mountChildPiece(ctx context.Context, parent *Instance, p Piece, target Target, props Props) (*Instance, error) {
	return mountPiece(ctx, parent, p, target, props)
}

// doMount runs m and returns the teardown reversing it. For a sequence,
// steps run one after another and the returned teardown runs the collected
// teardowns in the order they were collected. Teardowns that succeed are
// dropped, so calling the returned teardown again after a failure resumes
// at the step that failed.
func doMount(ctx context.Context, m Mount, target Target, props Props, mounter Mounter) (Teardown, error) {
	if m.action != nil {
		return m.action(ctx, target, props, mounter)
	}

	pending := make([]Teardown, 0, len(m.steps))
	for _, step := range m.steps {
		t, err := doMount(ctx, step, target, props, mounter)
		if err != nil {
			return nil, err
		}
		pending = append(pending, t)
	}

	return func(ctx context.Context) error {
		for len(pending) > 0 {
			if t := pending[0]; t != nil {
				if err := t(ctx); err != nil {
					return err
				}
			}
			pending = pending[1:]
		}
		return nil
	}, nil
}

// doUpdate runs u with props, one step after another.
func doUpdate(ctx context.Context, u Update, props Props) error {
	if u.action != nil {
		return u.action(ctx, props)
	}
	for _, step := range u.steps {
		if err := doUpdate(ctx, step, props); err != nil {
			return err
		}
	}
	return nil
}
