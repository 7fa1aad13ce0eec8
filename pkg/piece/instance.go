package piece

import (
	"context"
	stderrors "errors"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/go-drift/piece/pkg/errors"
	"github.com/go-drift/piece/pkg/stack"
)

// State is the lifecycle position of an Instance.
type State int

const (
	// StateConstructed is the state of a new, not yet mounted instance.
	StateConstructed State = iota
	// StateMounting is held while the mount actions run.
	StateMounting
	// StateMounted allows Update and Unmount.
	StateMounted
	// StateUnmounting is held while children and teardowns run.
	StateUnmounting
	// StateUnmounted is terminal. It is also entered when mounting fails.
	StateUnmounted
)

func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateMounting:
		return "mounting"
	case StateMounted:
		return "mounted"
	case StateUnmounting:
		return "unmounting"
	case StateUnmounted:
		return "unmounted"
	default:
		return "unknown"
	}
}

var (
	// ErrAlreadyMounted is returned by Mount on an instance that was mounted before.
	ErrAlreadyMounted = stderrors.New("piece: already mounted")
	// ErrNotMounted is returned by Update and Unmount before mounting completed.
	ErrNotMounted = stderrors.New("piece: not mounted")
	// ErrUnmounted is returned by any operation after Unmount completed.
	ErrUnmounted = stderrors.New("piece: instance unmounted")
)

// ChildMounter mounts p as a child of parent. New binds it to the new
// instance to produce that instance's Mounter.
type ChildMounter func(ctx context.Context, parent *Instance, p Piece, target Target, props Props) (*Instance, error)

// Instance is a mounted piece. It records its children so that
// unmounting it unmounts them first.
//
// The parent's registry only records the relation; callers keep their
// own references to child instances.
type Instance struct {
	id      string
	piece   Piece
	parent  *Instance
	cfg     config
	mounter Mounter

	mu       sync.Mutex
	state    State
	children stack.Stack[*Instance]
	teardown Teardown
	// childErrs holds errors from children that failed to mount while this
	// instance was mounting. Those children reported them already.
	childErrs []error
}

// New returns an unmounted instance of p. mountChild backs the instance's
// Mounter; nil selects the default, which mounts children the same way
// MountPiece does. A non-nil parent gets the instance added to its
// registry once Mount succeeds, and passes its options down before opts
// apply.
func New(p Piece, mountChild ChildMounter, parent *Instance, opts ...Option) *Instance {
	cfg := defaultConfig()
	if parent != nil {
		cfg = parent.cfg
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if mountChild == nil {
		mountChild = mountChildPiece
	}

	inst := &Instance{
		id:     cfg.ids.Next(),
		piece:  p,
		parent: parent,
		cfg:    cfg,
	}
	inst.mounter = func(ctx context.Context, child Piece, target Target, props Props) (*Instance, error) {
		c, err := mountChild(ctx, inst, child, target, props)
		if err != nil {
			inst.mu.Lock()
			if inst.state == StateMounting {
				inst.childErrs = append(inst.childErrs, err)
			}
			inst.mu.Unlock()
		}
		return c, err
	}
	return inst
}

// ID returns the instance's process-unique identifier.
func (i *Instance) ID() string {
	return i.id
}

// String returns the instance ID.
func (i *Instance) String() string {
	return i.id
}

// Parent returns the parent instance, or nil for a root.
func (i *Instance) Parent() *Instance {
	return i.parent
}

// State returns the current lifecycle state.
func (i *Instance) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// Children returns the currently registered children, oldest first.
func (i *Instance) Children() []*Instance {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.children.ToSlice()
}

// Mounter returns the capability that mounts children of this instance.
func (i *Instance) Mounter() Mounter {
	return i.mounter
}

// MountPiece mounts p onto target as a child of this instance.
func (i *Instance) MountPiece(ctx context.Context, p Piece, target Target, props Props) (*Instance, error) {
	return i.mounter(ctx, p, target, props)
}

// Mount runs the piece's mount actions against target and then registers
// the instance with its parent. It may be called once.
//
// If a mount action fails, the error is returned unchanged, the instance
// becomes StateUnmounted and is not registered. Actions that completed
// before the failure are not torn down. An error that came from a child
// mounted through the Mounter is left to that child to report.
func (i *Instance) Mount(ctx context.Context, target Target, props Props) error {
	const op = "piece.Mount"

	i.mu.Lock()
	if i.state != StateConstructed {
		st := i.state
		i.mu.Unlock()
		if st == StateUnmounted {
			return i.stateError(op, ErrUnmounted)
		}
		return i.stateError(op, ErrAlreadyMounted)
	}
	i.state = StateMounting
	i.mu.Unlock()

	teardown, err := doMount(ctx, i.piece.Mount, target, props, i.mounter)
	if err != nil {
		i.mu.Lock()
		reported := slices.ContainsFunc(i.childErrs, func(e error) bool {
			return stderrors.Is(err, e)
		})
		i.childErrs = nil
		i.state = StateUnmounted
		i.mu.Unlock()
		if !reported {
			i.report(op, errors.KindMount, err)
		}
		return err
	}

	i.mu.Lock()
	i.teardown = teardown
	i.childErrs = nil
	i.state = StateMounted
	i.mu.Unlock()

	if i.parent != nil {
		i.parent.addChild(i)
	}
	i.cfg.logger.Debug("piece mounted",
		"id", i.id,
		"parent", i.parentID(),
		"actions", i.piece.Mount.Len(),
	)
	return nil
}

// Update runs the piece's update actions with props, in order.
// A piece without update actions accepts any props and does nothing.
func (i *Instance) Update(ctx context.Context, props Props) error {
	const op = "piece.Update"

	switch st := i.State(); st {
	case StateMounted:
	case StateUnmounted:
		return i.stateError(op, ErrUnmounted)
	default:
		return i.stateError(op, ErrNotMounted)
	}

	if err := doUpdate(ctx, i.piece.Update, props); err != nil {
		i.report(op, errors.KindUpdate, err)
		return err
	}
	i.cfg.logger.Debug("piece updated", "id", i.id)
	return nil
}

// Unmount unmounts every registered child, runs the instance's teardown
// and removes the instance from its parent's registry.
//
// Children are unmounted one at a time, most recently registered first,
// each completing before the next starts, unless WithParallelUnmount was
// given. The first failure stops the unmount and is returned unchanged;
// the instance then stays mounted with whatever children remain, and
// Unmount may be retried. A retry does not repeat teardown steps that
// already succeeded. WithBestEffortUnmount continues past failures
// instead.
func (i *Instance) Unmount(ctx context.Context) error {
	const op = "piece.Unmount"

	i.mu.Lock()
	switch i.state {
	case StateMounted:
	case StateUnmounted:
		i.mu.Unlock()
		return i.stateError(op, ErrUnmounted)
	default:
		i.mu.Unlock()
		return i.stateError(op, ErrNotMounted)
	}
	i.state = StateUnmounting
	// Children remove themselves from the registry as they unmount.
	children := slices.Collect(i.children.All())
	teardown := i.teardown
	i.mu.Unlock()

	var errs []error
	if err := i.unmountChildren(ctx, children); err != nil {
		if !i.cfg.bestEffort {
			i.setState(StateMounted)
			return err
		}
		errs = append(errs, err)
	}

	if teardown != nil {
		if err := teardown(ctx); err != nil {
			i.report(op, errors.KindTeardown, err)
			if !i.cfg.bestEffort {
				i.setState(StateMounted)
				return err
			}
			errs = append(errs, err)
		}
	}

	if i.parent != nil {
		i.parent.removeChild(i.id)
	}
	i.setState(StateUnmounted)
	i.cfg.logger.Debug("piece unmounted",
		"id", i.id,
		"parent", i.parentID(),
		"children", len(children),
	)
	return stderrors.Join(errs...)
}

func (i *Instance) unmountChildren(ctx context.Context, children []*Instance) error {
	if len(children) == 0 {
		return nil
	}
	if i.cfg.parallel {
		return i.unmountChildrenParallel(ctx, children)
	}

	var errs []error
	for _, child := range children {
		if err := child.Unmount(ctx); err != nil {
			if !i.cfg.bestEffort {
				return err
			}
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

func (i *Instance) unmountChildrenParallel(ctx context.Context, children []*Instance) error {
	if !i.cfg.bestEffort {
		g, gctx := errgroup.WithContext(ctx)
		for _, child := range children {
			g.Go(func() error {
				return child.Unmount(gctx)
			})
		}
		return g.Wait()
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	for _, child := range children {
		g.Go(func() error {
			if err := child.Unmount(ctx); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return stderrors.Join(errs...)
}

func (i *Instance) addChild(child *Instance) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.children.Push(child)
}

func (i *Instance) removeChild(id string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.children.Delete(func(c *Instance) bool {
		return c.id == id
	})
}

func (i *Instance) setState(s State) {
	i.mu.Lock()
	i.state = s
	i.mu.Unlock()
}

func (i *Instance) parentID() string {
	if i.parent == nil {
		return ""
	}
	return i.parent.id
}

func (i *Instance) stateError(op string, err error) error {
	return &errors.PieceError{
		Op:   op,
		Kind: errors.KindState,
		ID:   i.id,
		Err:  err,
	}
}

// report hands a failed action to the global error handler. The error
// returned to the caller is not affected.
func (i *Instance) report(op string, kind errors.ErrorKind, err error) {
	errors.Report(&errors.PieceError{
		Op:         op,
		Kind:       kind,
		ID:         i.id,
		Err:        err,
		StackTrace: errors.CaptureStack(),
	})
}
