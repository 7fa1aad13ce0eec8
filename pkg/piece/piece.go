package piece

import "context"

// Target is an opaque rendering destination supplied by the caller.
// Package piece never inspects it; it is handed to mount actions as is.
type Target any

// Props carries properties to mount and update actions.
// Props are passed through unchanged and never merged with earlier values.
type Props map[string]any

// String returns props[key] if it is a string.
func (p Props) String(key string) (string, bool) {
	s, ok := p[key].(string)
	return s, ok
}

// Teardown reverses the effects of the mount action that returned it.
type Teardown func(ctx context.Context) error

// MountFunc renders content into target and returns the matching teardown.
// The Mounter lets the content mount nested pieces with the instance being
// mounted as their parent.
type MountFunc func(ctx context.Context, target Target, props Props, m Mounter) (Teardown, error)

// UpdateFunc applies new properties to already mounted content.
type UpdateFunc func(ctx context.Context, props Props) error

// Mounter mounts a child piece onto target. The parent is bound in.
type Mounter func(ctx context.Context, p Piece, target Target, props Props) (*Instance, error)

// Mount is either a single mount action or an ordered sequence of Mount
// values, which may nest. The zero value mounts nothing.
type Mount struct {
	action MountFunc
	steps  []Mount
}

// MountAction returns a Mount running a single action.
func MountAction(f MountFunc) Mount {
	return Mount{action: f}
}

// MountSequence returns a Mount running each step in order.
func MountSequence(steps ...Mount) Mount {
	return Mount{steps: steps}
}

// MountActions is shorthand for a flat MountSequence of actions.
func MountActions(fs ...MountFunc) Mount {
	steps := make([]Mount, len(fs))
	for i, f := range fs {
		steps[i] = MountAction(f)
	}
	return MountSequence(steps...)
}

// IsSequence reports whether m is a sequence rather than a single action.
func (m Mount) IsSequence() bool {
	return m.action == nil && m.steps != nil
}

// IsZero reports whether m holds neither an action nor a sequence.
func (m Mount) IsZero() bool {
	return m.action == nil && m.steps == nil
}

// Len returns the number of leaf actions in m, counting nested sequences.
func (m Mount) Len() int {
	if m.action != nil {
		return 1
	}
	n := 0
	for _, s := range m.steps {
		n += s.Len()
	}
	return n
}

// Update is either a single update action or an ordered sequence of Update
// values, which may nest. The zero value means the piece has no update
// action and updating it is a no-op.
type Update struct {
	action UpdateFunc
	steps  []Update
}

// UpdateAction returns an Update running a single action.
func UpdateAction(f UpdateFunc) Update {
	return Update{action: f}
}

// UpdateSequence returns an Update running each step in order.
func UpdateSequence(steps ...Update) Update {
	return Update{steps: steps}
}

// UpdateActions is shorthand for a flat UpdateSequence of actions.
func UpdateActions(fs ...UpdateFunc) Update {
	steps := make([]Update, len(fs))
	for i, f := range fs {
		steps[i] = UpdateAction(f)
	}
	return UpdateSequence(steps...)
}

// IsZero reports whether u holds no update behavior.
func (u Update) IsZero() bool {
	return u.action == nil && u.steps == nil
}

// Piece describes mountable content.
type Piece struct {
	Mount  Mount
	Update Update
}

// Func returns a Piece with a single mount action and no update.
func Func(f MountFunc) Piece {
	return Piece{Mount: MountAction(f)}
}
