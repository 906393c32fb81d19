package node

import "time"

// FileNode is a transient, in-memory snapshot of a live FILE record,
// fabricated fresh by a FileLoader.Load() call (spec.md §3).
type FileNode struct {
	Name             string
	CreationTime     time.Time
	ModificationTime time.Time
	MD5              [16]byte
	Parent           FolderLoader
}

// FolderNode is a transient, in-memory snapshot of a live FOLDER record and
// its direct children loaders (spec.md §3).
type FolderNode struct {
	Name    string
	Files   []FileLoader
	Folders []FolderLoader
	Parent  FolderLoader
}

// IsRoot reports whether this folder has no parent, i.e. lives at the
// container's root.
func (f *FolderNode) IsRoot() bool { return f.Parent == nil }
