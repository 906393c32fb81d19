package navigator

import (
	"context"

	"github.com/SBOne-Kenobi/OneFS/capture"
	"github.com/SBOne-Kenobi/OneFS/fsops"
	"github.com/SBOne-Kenobi/OneFS/node"
)

// readSnapshot is the immutable cursor handed to a read grant: its path
// and loader are frozen at the moment the grant was acquired, per
// spec.md §4.7 "The read context is immutable".
type readSnapshot struct {
	path   node.Path
	loader node.FolderLoader
}

func (c readSnapshot) Path() node.Path           { return c.path }
func (c readSnapshot) Loader() node.FolderLoader { return c.loader }

var _ fsops.Cursor = readSnapshot{}

// writeCursor binds to the navigator by reference, so mutations the grant
// makes to the current folder are visible to the cursor immediately
// (spec.md §4.7 "the write context binds by reference").
type writeCursor struct {
	nav *Navigator
}

func (c writeCursor) Path() node.Path           { return c.nav.path }
func (c writeCursor) Loader() node.FolderLoader { return c.nav.loader }

var _ fsops.Cursor = writeCursor{}

// WithFolder runs fn under a read grant from coordinator, passing an
// immutable snapshot of the current folder (domain name for C6's
// capture_read, per spec.md §4.7).
func (n *Navigator) WithFolder(ctx context.Context, coordinator capture.Coordinator, fn func(fsops.Cursor) error) error {
	return coordinator.CaptureRead(ctx, func() error {
		return fn(readSnapshot{path: n.path, loader: n.loader})
	})
}

// WithMutableFolder runs fn under a write grant from coordinator, passing
// a cursor bound by reference to the navigator so that a Reload() during
// the grant is visible to fn (domain name for C6's capture_write, per
// spec.md §4.7).
func (n *Navigator) WithMutableFolder(ctx context.Context, coordinator capture.Coordinator, fn func(fsops.Cursor) error) error {
	return coordinator.CaptureWrite(ctx, func() error {
		return fn(writeCursor{nav: n})
	})
}
