package store

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/SBOne-Kenobi/OneFS/node"
	"github.com/SBOne-Kenobi/OneFS/record"
)

// CreateFile allocates a FILE record plus an empty content ROW under path's
// parent folder, per spec.md §4.3 "create_file".
func (s *Store) CreateFile(path node.Path) (int64, error) {
	parentPath := path.RemoveLast()
	parentOffset, parentRec, err := s.Find(parentPath)
	if err != nil {
		return 0, err
	}
	parent, ok := parentRec.(record.Folder)
	if !ok {
		return 0, node.NewDirectoryNotFound(parentPath.String())
	}

	contentArea, _, err := s.allocateRow(initialFileCapacity, false)
	if err != nil {
		return 0, fmt.Errorf("store: allocating content row: %w", err)
	}

	fileArea, err := s.alloc.Allocate(record.HeaderSize+record.FilePayloadSize, true)
	if err != nil {
		return 0, fmt.Errorf("store: allocating FILE record: %w", err)
	}

	now := toUnixNano(s.clock.Now())
	file := record.File{
		Header:         record.Header{Type: record.TypeFile, DataSize: record.FilePayloadSize},
		Name:           path.Name(),
		ParentPtr:      parentOffset,
		ContentPtr:     contentArea.Offset,
		CreationTs:     now,
		ModificationTs: now,
		MD5:            emptyMD5,
	}
	if err := s.WriteRecord(fileArea.Offset, file, nil); err != nil {
		return 0, err
	}
	if err := s.AddChild(parentOffset, fileArea.Offset); err != nil {
		return 0, err
	}
	s.log.WithFields(logrus.Fields{"path": path.String(), "offset": fileArea.Offset}).Debug("created file")
	return fileArea.Offset, nil
}

// DeleteFile removes path's FILE record and frees both it and its content
// ROW, per spec.md §4.3 "delete_file".
func (s *Store) DeleteFile(path node.Path) error {
	offset, rec, err := s.Find(path)
	if err != nil {
		return err
	}
	file, ok := rec.(record.File)
	if !ok {
		return node.NewFileNotFound(path.String())
	}
	if err := s.RemoveChild(file.ParentPtr, offset); err != nil {
		return err
	}
	if err := s.MakeFree(offset); err != nil {
		return err
	}
	if err := s.MakeFree(file.ContentPtr); err != nil {
		return err
	}
	s.log.WithField("path", path.String()).Debug("deleted file")
	return nil
}

// MoveFile rewrites the FILE record at src in place with dst's name and
// parent, and relinks the affected children rows, per spec.md §4.3
// "move_file". The content ROW is untouched.
func (s *Store) MoveFile(src, dst node.Path) error {
	offset, rec, err := s.Find(src)
	if err != nil {
		return err
	}
	file, ok := rec.(record.File)
	if !ok {
		return node.NewFileNotFound(src.String())
	}

	dstParentPath := dst.RemoveLast()
	dstParentOffset, dstParentRec, err := s.Find(dstParentPath)
	if err != nil {
		return err
	}
	if _, ok := dstParentRec.(record.Folder); !ok {
		return node.NewDirectoryNotFound(dstParentPath.String())
	}

	oldParent := file.ParentPtr
	file.Name = dst.Name()
	file.ParentPtr = dstParentOffset
	if err := s.WriteRecord(offset, file, nil); err != nil {
		return err
	}
	if err := s.RemoveChild(oldParent, offset); err != nil {
		return err
	}
	return s.AddChild(dstParentOffset, offset)
}

// SetMD5 rewrites path's FILE record with the given digest.
func (s *Store) SetMD5(path node.Path, md5 [16]byte) error {
	offset, rec, err := s.Find(path)
	if err != nil {
		return err
	}
	file, ok := rec.(record.File)
	if !ok {
		return node.NewFileNotFound(path.String())
	}
	file.MD5 = md5
	file.ModificationTs = toUnixNano(s.clock.Now())
	return s.WriteRecord(offset, file, nil)
}

// SetCreationTime rewrites path's FILE record with the given creation
// timestamp, used by HostFS import to preserve a host file's birth time
// instead of stamping the moment of import.
func (s *Store) SetCreationTime(path node.Path, t time.Time) error {
	offset, rec, err := s.Find(path)
	if err != nil {
		return err
	}
	file, ok := rec.(record.File)
	if !ok {
		return node.NewFileNotFound(path.String())
	}
	file.CreationTs = toUnixNano(t)
	return s.WriteRecord(offset, file, nil)
}

// CreateFolder allocates a FOLDER record plus an empty children ROW under
// path's parent folder, per spec.md §4.3 "create_folder".
func (s *Store) CreateFolder(path node.Path) (int64, error) {
	parentPath := path.RemoveLast()
	parentOffset, parentRec, err := s.Find(parentPath)
	if err != nil {
		return 0, err
	}
	if _, ok := parentRec.(record.Folder); !ok {
		return 0, node.NewDirectoryNotFound(parentPath.String())
	}

	childrenArea, _, err := s.allocateRow(initialChildrenCapacity, false)
	if err != nil {
		return 0, fmt.Errorf("store: allocating children row: %w", err)
	}

	folderArea, err := s.alloc.Allocate(record.HeaderSize+record.FolderPayloadSize, true)
	if err != nil {
		return 0, fmt.Errorf("store: allocating FOLDER record: %w", err)
	}

	folder := record.Folder{
		Header:      record.Header{Type: record.TypeFolder, DataSize: record.FolderPayloadSize},
		Name:        path.Name(),
		ParentPtr:   parentOffset,
		ChildrenPtr: childrenArea.Offset,
	}
	if err := s.WriteRecord(folderArea.Offset, folder, nil); err != nil {
		return 0, err
	}
	if err := s.AddChild(parentOffset, folderArea.Offset); err != nil {
		return 0, err
	}
	s.log.WithFields(logrus.Fields{"path": path.String(), "offset": folderArea.Offset}).Debug("created folder")
	return folderArea.Offset, nil
}

// DeleteFolder frees the FOLDER record and its (assumed already-empty)
// children ROW. Recursing over descendants is the caller's (C5's)
// responsibility, per spec.md §4.3 "delete_folder".
func (s *Store) DeleteFolder(path node.Path) error {
	offset, rec, err := s.Find(path)
	if err != nil {
		return err
	}
	folder, ok := rec.(record.Folder)
	if !ok {
		return node.NewDirectoryNotFound(path.String())
	}
	if folder.ParentPtr == record.NullPtr {
		return node.NewOneFSError("cannot delete the root folder", nil)
	}
	if err := s.RemoveChild(folder.ParentPtr, offset); err != nil {
		return err
	}
	if err := s.MakeFree(offset); err != nil {
		return err
	}
	if err := s.MakeFree(folder.ChildrenPtr); err != nil {
		return err
	}
	s.log.WithField("path", path.String()).Debug("deleted folder")
	return nil
}

// MoveFolder rewrites the FOLDER record at src in place with dst's name and
// parent; children_ptr is preserved, per spec.md §4.3 "move_folder".
func (s *Store) MoveFolder(src, dst node.Path) error {
	offset, rec, err := s.Find(src)
	if err != nil {
		return err
	}
	folder, ok := rec.(record.Folder)
	if !ok {
		return node.NewDirectoryNotFound(src.String())
	}

	dstParentPath := dst.RemoveLast()
	dstParentOffset, dstParentRec, err := s.Find(dstParentPath)
	if err != nil {
		return err
	}
	if _, ok := dstParentRec.(record.Folder); !ok {
		return node.NewDirectoryNotFound(dstParentPath.String())
	}

	oldParent := folder.ParentPtr
	folder.Name = dst.Name()
	folder.ParentPtr = dstParentOffset
	if err := s.WriteRecord(offset, folder, nil); err != nil {
		return err
	}
	if err := s.RemoveChild(oldParent, offset); err != nil {
		return err
	}
	return s.AddChild(dstParentOffset, offset)
}

// FileContentOwner returns a ContentOwner that rewrites fileOffset's
// content_ptr when its content ROW is reallocated.
func (s *Store) FileContentOwner(fileOffset int64) ContentOwner {
	return &fileContentOwner{store: s, fileOffset: fileOffset}
}

// GetFileDataCell resolves path to a FILE and returns a read-only cell over its
// content, per spec.md §4.3 "get_data_cell".
func (s *Store) GetFileDataCell(path node.Path) (*ReadCell, error) {
	_, rec, err := s.Find(path)
	if err != nil {
		return nil, err
	}
	file, ok := rec.(record.File)
	if !ok {
		return nil, node.NewFileNotFound(path.String())
	}
	return s.readOnlyCellAt(file.ContentPtr)
}

func (s *Store) readOnlyCellAt(rowOffset int64) (*ReadCell, error) {
	return s.GetDataCell(rowOffset)
}

// GetMutableFileDataCell resolves path to a FILE and returns a growable
// cell over its content, wired to rewrite the FILE's content_ptr on
// reallocation, per spec.md §4.3 "get_mutable_data_cell".
func (s *Store) GetMutableFileDataCell(path node.Path) (*MutableDataCell, error) {
	offset, rec, err := s.Find(path)
	if err != nil {
		return nil, err
	}
	file, ok := rec.(record.File)
	if !ok {
		return nil, node.NewFileNotFound(path.String())
	}
	return s.mutableCell(file.ContentPtr, s.FileContentOwner(offset))
}

var emptyMD5 = [16]byte{0xd4, 0x1d, 0x8c, 0xd9, 0x8f, 0x00, 0xb2, 0x04, 0xe9, 0x80, 0x09, 0x98, 0xec, 0xf8, 0x42, 0x7e}
