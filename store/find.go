package store

import (
	"fmt"

	"github.com/SBOne-Kenobi/OneFS/node"
	"github.com/SBOne-Kenobi/OneFS/record"
)

// Find walks from the root FOLDER following path's components, matching
// children by name. It fails with DirectoryNotFound/FileNotFound on a miss,
// and a generic error if an intermediate component resolves to a file
// (spec.md §4.3 "Lookup").
func (s *Store) Find(path node.Path) (int64, record.Record, error) {
	offset := RootOffset
	rec, err := s.ReadRecord(offset)
	if err != nil {
		return 0, nil, err
	}

	components := path.Components()
	for i, name := range components {
		last := i == len(components)-1
		folder, ok := rec.(record.Folder)
		if !ok {
			return 0, nil, node.NewOneFSError(fmt.Sprintf("path component %q: %s is not a folder", name, path.String()), nil)
		}

		childOffset, childRec, found, err := s.findChild(folder, name)
		if err != nil {
			return 0, nil, err
		}
		if !found {
			if !last || path.IsFolder() {
				return 0, nil, node.NewDirectoryNotFound(path.String())
			}
			return 0, nil, node.NewFileNotFound(path.String())
		}
		offset, rec = childOffset, childRec
	}
	return offset, rec, nil
}

// findChild scans folder's children row for a record named name.
func (s *Store) findChild(folder record.Folder, name string) (int64, record.Record, bool, error) {
	children, err := s.readChildren(folder.ChildrenPtr)
	if err != nil {
		return 0, nil, false, err
	}
	for _, childOffset := range children {
		childRec, err := s.ReadRecord(childOffset)
		if err != nil {
			return 0, nil, false, err
		}
		if recordName(childRec) == name {
			return childOffset, childRec, true, nil
		}
	}
	return 0, nil, false, nil
}

// recordName returns the name of a FILE or FOLDER record, or "" otherwise.
func recordName(rec record.Record) string {
	switch r := rec.(type) {
	case record.File:
		return r.Name
	case record.Folder:
		return r.Name
	default:
		return ""
	}
}

// recordParentPtr returns the parent_ptr of a FILE or FOLDER record.
func recordParentPtr(rec record.Record) int64 {
	switch r := rec.(type) {
	case record.File:
		return r.ParentPtr
	case record.Folder:
		return r.ParentPtr
	default:
		return record.NullPtr
	}
}

// recordContentPtr returns a FILE record's content_ptr.
func recordContentPtr(rec record.Record) int64 {
	if f, ok := rec.(record.File); ok {
		return f.ContentPtr
	}
	return record.NullPtr
}
