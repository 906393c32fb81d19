package importer

import (
	"io"

	"github.com/SBOne-Kenobi/OneFS/node"
	"github.com/SBOne-Kenobi/OneFS/store"
)

// CopyImporter duplicates a subtree already present in the same store
// under a fresh path, via new data cells (spec.md §6.2 "the core provides
// a CopyImporter (copies within the same store)").
type CopyImporter struct {
	src *store.Store
}

var _ Importer = CopyImporter{}

// NewCopyImporter returns an importer that reads its sources from src.
func NewCopyImporter(src *store.Store) CopyImporter {
	return CopyImporter{src: src}
}

func (c CopyImporter) ImportFile(dst *store.Store, destFolder node.Path, src FileSource) error {
	return importFileInto(dst, destFolder, src)
}

func (c CopyImporter) ImportFolder(dst *store.Store, destFolder node.Path, src FolderSource) error {
	return importFolderInto(dst, destFolder, src, c.ImportFile, c.ImportFolder)
}

// FileAt adapts an existing stored file at path into a FileSource.
func (c CopyImporter) FileAt(path node.Path) (FileSource, error) {
	loader, err := c.src.GetFileLoader(path)
	if err != nil {
		return nil, err
	}
	defer loader.Close()
	file, err := loader.Load()
	if err != nil {
		return nil, err
	}
	return copyFileSource{store: c.src, path: path, name: file.Name}, nil
}

// FolderAt adapts an existing stored folder at path into a FolderSource.
func (c CopyImporter) FolderAt(path node.Path) (FolderSource, error) {
	loader, err := c.src.GetFolderLoader(path)
	if err != nil {
		return nil, err
	}
	defer loader.Close()
	folder, err := loader.Load()
	if err != nil {
		return nil, err
	}
	return copyFolderSource{store: c.src, path: path, name: folder.Name}, nil
}

type copyFileSource struct {
	store *store.Store
	path  node.Path
	name  string
}

func (s copyFileSource) Name() string { return s.name }

func (s copyFileSource) Open() (io.ReadCloser, error) {
	cell, err := s.store.GetFileDataCell(s.path)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(cell.Reader()), nil
}

type copyFolderSource struct {
	store *store.Store
	path  node.Path
	name  string
}

func (s copyFolderSource) Name() string { return s.name }

func (s copyFolderSource) Files() ([]FileSource, error) {
	loader, err := s.store.GetFolderLoader(s.path)
	if err != nil {
		return nil, err
	}
	defer loader.Close()
	folder, err := loader.Load()
	if err != nil {
		return nil, err
	}
	out := make([]FileSource, 0, len(folder.Files))
	for _, fl := range folder.Files {
		out = append(out, copyFileSource{store: s.store, path: fl.Path(), name: fl.Name()})
	}
	return out, nil
}

func (s copyFolderSource) Folders() ([]FolderSource, error) {
	loader, err := s.store.GetFolderLoader(s.path)
	if err != nil {
		return nil, err
	}
	defer loader.Close()
	folder, err := loader.Load()
	if err != nil {
		return nil, err
	}
	out := make([]FolderSource, 0, len(folder.Folders))
	for _, fol := range folder.Folders {
		out = append(out, copyFolderSource{store: s.store, path: fol.Path(), name: fol.Name()})
	}
	return out, nil
}
