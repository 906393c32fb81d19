package fsops

import (
	"github.com/SBOne-Kenobi/OneFS/importer"
	"github.com/SBOne-Kenobi/OneFS/node"
)

// renamedFileSource overrides a FileSource's destination name while
// keeping its original content, so ImportFile can place src at an
// arbitrary resolved path rather than whatever name the source carries.
type renamedFileSource struct {
	importer.FileSource
	name string
}

func (r renamedFileSource) Name() string { return r.name }

type renamedFolderSource struct {
	importer.FolderSource
	name string
}

func (r renamedFolderSource) Name() string { return r.name }

// ImportFile delegates to imp (a CopyImporter or a HostFS) to create a
// file at dest with src's content, wrapping any importer failure as a
// generic OneFileSystemException per spec.md §4.5.
func (s *Service) ImportFile(cursor Cursor, dest string, imp importer.Importer, src importer.FileSource) error {
	path := s.resolve(cursor, dest, false)
	if _, exists, err := s.exists(path); err != nil {
		return err
	} else if exists {
		return node.NewFileAlreadyExists(path.String())
	}
	if err := imp.ImportFile(s.store, path.RemoveLast(), renamedFileSource{FileSource: src, name: path.Name()}); err != nil {
		return node.NewOneFSError("import file "+path.String(), err)
	}
	return nil
}

// ImportDirectory delegates to imp to recursively create the folder dest
// and its descendants from src.
func (s *Service) ImportDirectory(cursor Cursor, dest string, imp importer.Importer, src importer.FolderSource) error {
	path := s.resolve(cursor, dest, true)
	if _, exists, err := s.exists(path); err != nil {
		return err
	} else if exists {
		return node.NewDirectoryAlreadyExists(path.String())
	}
	if err := imp.ImportFolder(s.store, path.RemoveLast(), renamedFolderSource{FolderSource: src, name: path.Name()}); err != nil {
		return node.NewOneFSError("import directory "+path.String(), err)
	}
	return nil
}
