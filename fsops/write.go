package fsops

import (
	"crypto/md5"
	"io"
	"strings"

	"github.com/SBOne-Kenobi/OneFS/node"
	"github.com/SBOne-Kenobi/OneFS/store"
)

// CreateFolder creates a new, empty folder named name under cursor's
// current folder.
func (s *Service) CreateFolder(cursor Cursor, name string) error {
	path := s.resolve(cursor, name, true)
	if _, exists, err := s.exists(path); err != nil {
		return err
	} else if exists {
		return node.NewDirectoryAlreadyExists(path.String())
	}
	_, err := s.store.CreateFolder(path)
	return err
}

// CreateFile creates a new file named name with the given content, md5
// defaulting to digest(data), recording the md5 at creation (spec.md
// §4.5 "create_file").
func (s *Service) CreateFile(cursor Cursor, name string, data []byte) error {
	path := s.resolve(cursor, name, false)
	if _, exists, err := s.exists(path); err != nil {
		return err
	} else if exists {
		return node.NewFileAlreadyExists(path.String())
	}
	if _, err := s.store.CreateFile(path); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	cell, err := s.store.GetMutableFileDataCell(path)
	if err != nil {
		return err
	}
	if _, err := cell.Write(0, data); err != nil {
		return err
	}
	sum := md5.Sum(data)
	return s.store.SetMD5(path, sum)
}

// DeleteFolder recursively deletes every descendant file and folder using
// the service's own primitives (so every content ROW is freed), then
// invokes the store's delete_folder on the target (spec.md §4.5).
func (s *Service) DeleteFolder(cursor Cursor, name string) error {
	path := s.resolve(cursor, name, true)
	loader, err := s.store.GetFolderLoader(path)
	if err != nil {
		return err
	}
	defer loader.Close()
	folder, err := loader.Load()
	if err != nil {
		return err
	}

	for _, fl := range folder.Files {
		if err := s.deleteFileAt(fl.Path()); err != nil {
			return err
		}
	}
	for _, fol := range folder.Folders {
		if err := s.deleteFolderAt(fol); err != nil {
			return err
		}
	}
	return s.store.DeleteFolder(path)
}

func (s *Service) deleteFileAt(path node.Path) error {
	return s.store.DeleteFile(path)
}

func (s *Service) deleteFolderAt(loader node.FolderLoader) error {
	defer loader.Close()
	folder, err := loader.Load()
	if err != nil {
		return err
	}
	for _, fl := range folder.Files {
		if err := s.deleteFileAt(fl.Path()); err != nil {
			return err
		}
	}
	for _, fol := range folder.Folders {
		if err := s.deleteFolderAt(fol); err != nil {
			return err
		}
	}
	return s.store.DeleteFolder(loader.Path())
}

// DeleteFile deletes the file named name.
func (s *Service) DeleteFile(cursor Cursor, name string) error {
	path := s.resolve(cursor, name, false)
	return s.store.DeleteFile(path)
}

// destInfo is the resolved shape of a move/copy destination, per spec.md
// §4.5's get_dest_folder_and_new_name.
type destInfo struct {
	path     node.Path
	isFolder bool
	exists   bool
}

// getDestFolderAndNewName resolves destination per spec.md §4.5: absolute
// vs relative based on a leading "/"; a trailing "/" means "place under
// this folder keeping the source name"; otherwise the last component is
// the new name, interpreted per lastIsFile.
func (s *Service) getDestFolderAndNewName(cursor Cursor, srcName, destination string, lastIsFile bool) (destInfo, error) {
	rel := node.ParsePath(destination)
	base := node.Root()
	if !rel.Absolute() {
		base = cursor.Path()
	}
	full := base.Join(rel)

	if strings.HasSuffix(destination, "/") || rel.Empty() {
		// Keep-the-source-name form: destination names the containing
		// folder, and the item keeps its own name.
		srcRel := node.ParsePath(srcName)
		name := srcRel.Name()
		var target node.Path
		if lastIsFile {
			target = full.AddFile(name)
		} else {
			target = full.AddFolder(name)
		}
		isFolder, exists, err := s.exists(target)
		if err != nil {
			return destInfo{}, err
		}
		return destInfo{path: target, isFolder: isFolder, exists: exists}, nil
	}

	target := full
	if lastIsFile {
		target = full.RemoveLast().AddFile(full.Name())
	} else {
		target = full.RemoveLast().AddFolder(full.Name())
	}
	isFolder, exists, err := s.exists(target)
	if err != nil {
		return destInfo{}, err
	}
	return destInfo{path: target, isFolder: isFolder, exists: exists}, nil
}

func (s *Service) removeExistingIfOverride(dest destInfo, override bool) error {
	if !dest.exists {
		return nil
	}
	if !override {
		if dest.isFolder {
			return node.NewDirectoryAlreadyExists(dest.path.String())
		}
		return node.NewFileAlreadyExists(dest.path.String())
	}
	if dest.isFolder {
		loader, err := s.store.GetFolderLoader(dest.path)
		if err != nil {
			return err
		}
		defer loader.Close()
		for _, fl := range mustLoad(loader).Files {
			if err := s.deleteFileAt(fl.Path()); err != nil {
				return err
			}
		}
		for _, fol := range mustLoad(loader).Folders {
			if err := s.deleteFolderAt(fol); err != nil {
				return err
			}
		}
		return s.store.DeleteFolder(dest.path)
	}
	return s.store.DeleteFile(dest.path)
}

func mustLoad(loader node.FolderLoader) *node.FolderNode {
	n, err := loader.Load()
	if err != nil {
		return &node.FolderNode{}
	}
	return n
}

// MoveFile moves the file named name to dest, which may be absolute or
// relative; a trailing "/" keeps the source name.
func (s *Service) MoveFile(cursor Cursor, name, dest string, override bool) error {
	src := s.resolve(cursor, name, false)
	destInfo, err := s.getDestFolderAndNewName(cursor, name, dest, true)
	if err != nil {
		return err
	}
	if err := s.removeExistingIfOverride(destInfo, override); err != nil {
		return err
	}
	return s.store.MoveFile(src, destInfo.path)
}

// MoveFolder moves the folder named name to dest.
func (s *Service) MoveFolder(cursor Cursor, name, dest string, override bool) error {
	src := s.resolve(cursor, name, true)
	destInfo, err := s.getDestFolderAndNewName(cursor, name, dest, false)
	if err != nil {
		return err
	}
	if err := s.removeExistingIfOverride(destInfo, override); err != nil {
		return err
	}
	return s.store.MoveFolder(src, destInfo.path)
}

// CopyFile duplicates the file named name's content into a fresh file at
// dest, via a fresh data cell.
func (s *Service) CopyFile(cursor Cursor, name, dest string, override bool) error {
	srcPath := s.resolve(cursor, name, false)
	destInfo, err := s.getDestFolderAndNewName(cursor, name, dest, true)
	if err != nil {
		return err
	}
	if err := s.removeExistingIfOverride(destInfo, override); err != nil {
		return err
	}

	srcLoader, err := s.store.GetFileLoader(srcPath)
	if err != nil {
		return err
	}
	defer srcLoader.Close()
	srcNode, err := srcLoader.Load()
	if err != nil {
		return err
	}

	srcCell, err := s.store.GetFileDataCell(srcPath)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(srcCell.Reader())
	if err != nil {
		return err
	}

	if _, err := s.store.CreateFile(destInfo.path); err != nil {
		return err
	}
	if len(data) > 0 {
		destCell, err := s.store.GetMutableFileDataCell(destInfo.path)
		if err != nil {
			return err
		}
		if _, err := destCell.Write(0, data); err != nil {
			return err
		}
	}
	return s.store.SetMD5(destInfo.path, srcNode.MD5)
}

// CopyFolder recursively duplicates a folder subtree's content via fresh
// data cells.
func (s *Service) CopyFolder(cursor Cursor, name, dest string, override bool) error {
	srcPath := s.resolve(cursor, name, true)
	destInfo, err := s.getDestFolderAndNewName(cursor, name, dest, false)
	if err != nil {
		return err
	}
	if err := s.removeExistingIfOverride(destInfo, override); err != nil {
		return err
	}
	return s.copyFolderTree(srcPath, destInfo.path)
}

func (s *Service) copyFolderTree(src, dst node.Path) error {
	if _, err := s.store.CreateFolder(dst); err != nil {
		return err
	}
	loader, err := s.store.GetFolderLoader(src)
	if err != nil {
		return err
	}
	defer loader.Close()
	folder, err := loader.Load()
	if err != nil {
		return err
	}

	for _, fl := range folder.Files {
		if err := s.copyFileTree(fl.Path(), dst.AddFile(fl.Name())); err != nil {
			return err
		}
	}
	for _, fol := range folder.Folders {
		if err := s.copyFolderTree(fol.Path(), dst.AddFolder(fol.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) copyFileTree(src, dst node.Path) error {
	cell, err := s.store.GetFileDataCell(src)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(cell.Reader())
	if err != nil {
		return err
	}
	loader, err := s.store.GetFileLoader(src)
	if err != nil {
		return err
	}
	defer loader.Close()
	srcNode, err := loader.Load()
	if err != nil {
		return err
	}

	if _, err := s.store.CreateFile(dst); err != nil {
		return err
	}
	if len(data) > 0 {
		destCell, err := s.store.GetMutableFileDataCell(dst)
		if err != nil {
			return err
		}
		if _, err := destCell.Write(0, data); err != nil {
			return err
		}
	}
	return s.store.SetMD5(dst, srcNode.MD5)
}

// OutputStream opens a positional write stream over name's content,
// defaulting offset=-1 to append semantics.
func (s *Service) OutputStream(cursor Cursor, name string, offset int64) (io.WriteCloser, error) {
	path := s.resolve(cursor, name, false)
	cell, err := s.store.GetMutableFileDataCell(path)
	if err != nil {
		return nil, err
	}
	return &cellWriter{cell: cell, pos: offset}, nil
}

type cellWriter struct {
	cell *store.MutableDataCell
	pos  int64
}

func (w *cellWriter) Write(p []byte) (int, error) {
	n, err := w.cell.Write(w.pos, p)
	if w.pos < 0 {
		w.pos = w.cell.Filled()
	} else {
		w.pos += int64(n)
	}
	return n, err
}

func (w *cellWriter) Close() error { return nil }

// UpdateMD5 re-reads name's content through its data cell, recomputes MD5,
// and writes it back.
func (s *Service) UpdateMD5(cursor Cursor, name string) error {
	path := s.resolve(cursor, name, false)
	cell, err := s.store.GetFileDataCell(path)
	if err != nil {
		return err
	}
	h := md5.New()
	if _, err := io.Copy(h, cell.Reader()); err != nil {
		return err
	}
	var sum [16]byte
	copy(sum[:], h.Sum(nil))
	return s.store.SetMD5(path, sum)
}

// ClearFile sets filled=0 on name's content ROW without deallocating
// capacity.
func (s *Service) ClearFile(cursor Cursor, name string) error {
	path := s.resolve(cursor, name, false)
	cell, err := s.store.GetMutableFileDataCell(path)
	if err != nil {
		return err
	}
	return cell.Clear()
}

// AppendIntoFile appends data to the end of name's content.
func (s *Service) AppendIntoFile(cursor Cursor, name string, data []byte) error {
	w, err := s.OutputStream(cursor, name, -1)
	if err != nil {
		return err
	}
	defer w.Close()
	_, err = w.Write(data)
	return err
}
