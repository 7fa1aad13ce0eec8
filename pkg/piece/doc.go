// Package piece mounts trees of pieces onto target surfaces.
//
// A Piece pairs Mount actions with optional Update actions. Mounting runs
// the mount actions against a target and keeps the teardowns they return;
// unmounting runs those teardowns again.
//
// # Mounting
//
// MountPiece creates a root Instance and mounts it:
//
//	inst, err := piece.MountPiece(ctx, greeting, root, piece.Props{"name": "Ada"})
//	if err != nil {
//	    return err
//	}
//	defer inst.Unmount(ctx)
//
// A Mount is either a single action or a nested sequence of actions.
// Sequences mount one step at a time, and the combined teardown runs the
// collected teardowns in the order they were collected.
//
// # Children
//
// Every mount action receives a Mounter bound to the instance being
// mounted. Pieces mounted through it become children of that instance:
//
//	func(ctx context.Context, t piece.Target, p piece.Props, m piece.Mounter) (piece.Teardown, error) {
//	    _, err := m(ctx, badge, t, p)
//	    return nil, err
//	}
//
// Unmounting an instance unmounts its children first, most recently
// mounted first, then runs its own teardown and finally removes it from
// its parent.
//
// # Errors
//
// Errors from actions are returned unchanged. They are also reported to
// the handler in package errors. By default the first failure stops an
// unmount; see WithBestEffortUnmount and WithParallelUnmount.
//
// Instances are not meant to be operated on concurrently. Operations in
// the wrong lifecycle state fail with ErrAlreadyMounted, ErrNotMounted or
// ErrUnmounted.
package piece
