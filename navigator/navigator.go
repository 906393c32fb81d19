// Package navigator implements the current-folder cursor (C7): cd/back/
// reload over the record store, and the scoped read/write contexts that
// bind a capture grant to a folder snapshot (spec.md §4.7).
package navigator

import (
	"github.com/sirupsen/logrus"

	"github.com/SBOne-Kenobi/OneFS/node"
	"github.com/SBOne-Kenobi/OneFS/store"
)

// Navigator holds the cursor triple (currentLoader, currentFolder,
// currentPath) and the methods that reseat it, following the teacher's
// disk.Disk style of a thin stateful wrapper with typed-error methods
// (disk/disk.go).
type Navigator struct {
	store *store.Store
	log   *logrus.Entry

	loader node.FolderLoader
	folder *node.FolderNode
	path   node.Path
}

// New opens a Navigator positioned at the container's root.
func New(s *store.Store, log *logrus.Logger) (*Navigator, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	loader, err := s.GetFolderLoader(node.Root())
	if err != nil {
		return nil, err
	}
	folder, err := loader.Load()
	if err != nil {
		return nil, err
	}
	return &Navigator{
		store:  s,
		log:    log.WithField("component", "navigator"),
		loader: loader,
		folder: folder,
		path:   node.Root(),
	}, nil
}

// Path is the current folder's absolute path.
func (n *Navigator) Path() node.Path { return n.path }

// Loader is the current folder's loader.
func (n *Navigator) Loader() node.FolderLoader { return n.loader }

// Folder is the current folder's last-loaded snapshot.
func (n *Navigator) Folder() *node.FolderNode { return n.folder }

// Cd walks target relative to the current folder, or from the root if
// target is absolute. Each component is resolved against the
// currently-loaded folder's children; folders opened during the walk are
// closed immediately except the final one, which replaces currentLoader
// (spec.md §4.7).
func (n *Navigator) Cd(target string) error {
	rel := node.ParsePath(target)
	comps := rel.Components()

	curLoader := n.loader
	curPath := n.path
	ownsCur := false

	if rel.Absolute() {
		rootLoader, err := n.store.GetFolderLoader(node.Root())
		if err != nil {
			return err
		}
		curLoader = rootLoader
		curPath = node.Root()
		ownsCur = true
	}

	for _, name := range comps {
		folder, err := curLoader.Load()
		if err != nil {
			if ownsCur {
				curLoader.Close()
			}
			return err
		}
		next, found := findFolder(folder, name)
		if !found {
			if ownsCur {
				curLoader.Close()
			}
			return node.NewDirectoryNotFound(curPath.AddFolder(name).String())
		}
		if ownsCur {
			curLoader.Close()
		}
		curLoader = next
		curPath = curPath.AddFolder(name)
		ownsCur = true
	}

	folder, err := curLoader.Load()
	if err != nil {
		if ownsCur {
			curLoader.Close()
		}
		return err
	}

	n.replace(curLoader, folder, curPath)
	return nil
}

// Back reseats the cursor to the current folder's parent. It is a no-op
// at the root.
func (n *Navigator) Back() error {
	if n.folder.IsRoot() {
		return nil
	}
	folder, err := n.folder.Parent.Load()
	if err != nil {
		return err
	}
	n.replace(n.folder.Parent, folder, n.path.RemoveLast())
	return nil
}

// Reload re-reads the current folder from the store, picking up mutations
// made by a prior write grant.
func (n *Navigator) Reload() error {
	loader, err := n.store.GetFolderLoader(n.path)
	if err != nil {
		return err
	}
	folder, err := loader.Load()
	if err != nil {
		loader.Close()
		return err
	}
	n.replace(loader, folder, n.path)
	return nil
}

func (n *Navigator) replace(loader node.FolderLoader, folder *node.FolderNode, path node.Path) {
	old := n.loader
	n.loader = loader
	n.folder = folder
	n.path = path
	if old != nil && old != loader {
		old.Close()
	}
}

func findFolder(folder *node.FolderNode, name string) (node.FolderLoader, bool) {
	for _, fol := range folder.Folders {
		if fol.Name() == name {
			return fol, true
		}
	}
	return nil, false
}
