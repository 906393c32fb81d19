package store

import (
	"fmt"

	"github.com/SBOne-Kenobi/OneFS/node"
	"github.com/SBOne-Kenobi/OneFS/record"
)

// fileLoader lazily re-reads a FILE record by offset. name and path are
// cached at construction so Name()/Path() need no I/O, per spec.md §3
// "a loader ... can report its path and name without reading bytes".
type fileLoader struct {
	store  *Store
	offset int64
	path   node.Path
	name   string
}

var _ node.FileLoader = (*fileLoader)(nil)

func (l *fileLoader) Path() node.Path { return l.path }
func (l *fileLoader) Name() string    { return l.name }
func (l *fileLoader) Close() error    { return nil }

func (l *fileLoader) Load() (*node.FileNode, error) {
	rec, err := l.store.ReadRecord(l.offset)
	if err != nil {
		return nil, err
	}
	file, ok := rec.(record.File)
	if !ok {
		return nil, fmt.Errorf("store: record at %d is not a FILE", l.offset)
	}
	var parent node.FolderLoader
	if file.ParentPtr != record.NullPtr {
		parent, err = l.store.folderLoaderByOffset(file.ParentPtr, l.path.RemoveLast())
		if err != nil {
			return nil, err
		}
	}
	return &node.FileNode{
		Name:             file.Name,
		CreationTime:     fromUnix(file.CreationTs),
		ModificationTime: fromUnix(file.ModificationTs),
		MD5:              file.MD5,
		Parent:           parent,
	}, nil
}

// folderLoader lazily re-reads a FOLDER record and its direct children by
// offset.
type folderLoader struct {
	store  *Store
	offset int64
	path   node.Path
	name   string
}

var _ node.FolderLoader = (*folderLoader)(nil)

func (l *folderLoader) Path() node.Path { return l.path }
func (l *folderLoader) Name() string    { return l.name }
func (l *folderLoader) Close() error    { return nil }

func (l *folderLoader) Load() (*node.FolderNode, error) {
	rec, err := l.store.ReadRecord(l.offset)
	if err != nil {
		return nil, err
	}
	folder, ok := rec.(record.Folder)
	if !ok {
		return nil, fmt.Errorf("store: record at %d is not a FOLDER", l.offset)
	}

	var parent node.FolderLoader
	if folder.ParentPtr != record.NullPtr {
		parent, err = l.store.folderLoaderByOffset(folder.ParentPtr, l.path.RemoveLast())
		if err != nil {
			return nil, err
		}
	}

	children, err := l.store.readChildren(folder.ChildrenPtr)
	if err != nil {
		return nil, err
	}

	var files []node.FileLoader
	var folders []node.FolderLoader
	for _, childOffset := range children {
		childRec, err := l.store.ReadRecord(childOffset)
		if err != nil {
			return nil, err
		}
		switch c := childRec.(type) {
		case record.File:
			files = append(files, &fileLoader{store: l.store, offset: childOffset, path: l.path.AddFile(c.Name), name: c.Name})
		case record.Folder:
			folders = append(folders, &folderLoader{store: l.store, offset: childOffset, path: l.path.AddFolder(c.Name), name: c.Name})
		default:
			return nil, fmt.Errorf("store: child at %d under folder %d is neither FILE nor FOLDER", childOffset, l.offset)
		}
	}

	return &node.FolderNode{
		Name:    folder.Name,
		Files:   files,
		Folders: folders,
		Parent:  parent,
	}, nil
}

// GetFileLoader resolves path to a FILE record and returns a loader for it.
func (s *Store) GetFileLoader(path node.Path) (node.FileLoader, error) {
	offset, rec, err := s.Find(path)
	if err != nil {
		return nil, err
	}
	file, ok := rec.(record.File)
	if !ok {
		return nil, node.NewFileNotFound(path.String())
	}
	return &fileLoader{store: s, offset: offset, path: path, name: file.Name}, nil
}

// GetFolderLoader resolves path to a FOLDER record and returns a loader
// for it.
func (s *Store) GetFolderLoader(path node.Path) (node.FolderLoader, error) {
	offset, rec, err := s.Find(path)
	if err != nil {
		return nil, err
	}
	folder, ok := rec.(record.Folder)
	if !ok {
		return nil, node.NewDirectoryNotFound(path.String())
	}
	return &folderLoader{store: s, offset: offset, path: path, name: folder.Name}, nil
}

func (s *Store) folderLoaderByOffset(offset int64, path node.Path) (node.FolderLoader, error) {
	rec, err := s.ReadRecord(offset)
	if err != nil {
		return nil, err
	}
	folder, ok := rec.(record.Folder)
	if !ok {
		return nil, fmt.Errorf("store: record at %d is not a FOLDER", offset)
	}
	return &folderLoader{store: s, offset: offset, path: path, name: folder.Name}, nil
}
