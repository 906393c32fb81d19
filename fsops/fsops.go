// Package fsops implements the filesystem service (C5): it maps path-based
// operations onto store mutations while enforcing structural invariants
// (name uniqueness within a folder, existence checks), per spec.md §4.5.
package fsops

import (
	"github.com/sirupsen/logrus"

	"github.com/SBOne-Kenobi/OneFS/node"
	"github.com/SBOne-Kenobi/OneFS/record"
	"github.com/SBOne-Kenobi/OneFS/store"
)

// Cursor is the navigator-produced position a Service operation runs
// against: the current folder's path and a loader bound to it. Read
// operations see an immutable snapshot; write operations see a cursor
// whose loader is reseated by the navigator as mutations land (spec.md
// §4.5, §4.7).
type Cursor interface {
	Path() node.Path
	Loader() node.FolderLoader
}

// Service is the filesystem service, operating against a record store.
type Service struct {
	store *store.Store
	log   *logrus.Entry
}

// New wraps store as a Service.
func New(s *store.Store, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{store: s, log: log.WithField("component", "fsops")}
}

// resolve turns name (absolute or relative to cursor) into an absolute
// Path denoting a file or a folder per asFolder.
func (s *Service) resolve(cursor Cursor, name string, asFolder bool) node.Path {
	full := cursor.Path().Join(node.ParsePath(name))
	if full.Empty() {
		return full
	}
	if asFolder {
		return full.RemoveLast().AddFolder(full.Name())
	}
	return full.RemoveLast().AddFile(full.Name())
}

// exists reports whether path currently resolves to a record, and if so,
// whether that record is a folder.
func (s *Service) exists(path node.Path) (isFolder bool, exists bool, err error) {
	_, rec, err := s.store.Find(path)
	if node.IsNotFound(err) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	_, isFolder = rec.(record.Folder)
	return isFolder, true, nil
}
