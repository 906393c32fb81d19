package store

import (
	"encoding/binary"
	"fmt"

	"github.com/SBOne-Kenobi/OneFS/record"
)

// readChildren decodes the packed i64 child offsets stored in the ROW at
// childrenPtr.
func (s *Store) readChildren(childrenPtr int64) ([]int64, error) {
	cell, err := s.readCell(childrenPtr)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, cell.filled)
	if _, err := s.storage.ReadAt(buf, contentStart(childrenPtr)); err != nil {
		return nil, fmt.Errorf("store: reading children row at %d: %w", childrenPtr, err)
	}
	if len(buf)%8 != 0 {
		return nil, fmt.Errorf("store: children row at %d has non-multiple-of-8 length %d", childrenPtr, len(buf))
	}
	out := make([]int64, len(buf)/8)
	for i := range out {
		out[i] = int64(binary.BigEndian.Uint64(buf[i*8 : i*8+8]))
	}
	return out, nil
}

// AddChild appends childOffset to folderOffset's children row, per
// spec.md §4.3 "Children list maintenance".
func (s *Store) AddChild(folderOffset, childOffset int64) error {
	folder, err := s.readFolder(folderOffset)
	if err != nil {
		return err
	}
	cell, err := s.mutableCell(folder.ChildrenPtr, &folderChildrenOwner{store: s, folderOffset: folderOffset})
	if err != nil {
		return err
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(childOffset))
	_, err = cell.Write(-1, buf[:])
	return err
}

// RemoveChild drops childOffset from folderOffset's children row, rewriting
// the remainder.
func (s *Store) RemoveChild(folderOffset, childOffset int64) error {
	folder, err := s.readFolder(folderOffset)
	if err != nil {
		return err
	}
	children, err := s.readChildren(folder.ChildrenPtr)
	if err != nil {
		return err
	}
	remaining := children[:0]
	found := false
	for _, c := range children {
		if c == childOffset && !found {
			found = true
			continue
		}
		remaining = append(remaining, c)
	}
	if !found {
		return fmt.Errorf("store: child %d not present under folder %d", childOffset, folderOffset)
	}

	cell, err := s.mutableCell(folder.ChildrenPtr, &folderChildrenOwner{store: s, folderOffset: folderOffset})
	if err != nil {
		return err
	}
	if err := cell.Clear(); err != nil {
		return err
	}
	if len(remaining) == 0 {
		return nil
	}
	buf := make([]byte, len(remaining)*8)
	for i, c := range remaining {
		binary.BigEndian.PutUint64(buf[i*8:i*8+8], uint64(c))
	}
	_, err = cell.Write(-1, buf)
	return err
}

func (s *Store) readFolder(offset int64) (record.Folder, error) {
	rec, err := s.ReadRecord(offset)
	if err != nil {
		return record.Folder{}, err
	}
	folder, ok := rec.(record.Folder)
	if !ok {
		return record.Folder{}, fmt.Errorf("store: record at %d is not a FOLDER", offset)
	}
	return folder, nil
}
