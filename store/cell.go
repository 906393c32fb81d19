package store

import (
	"fmt"
	"io"

	"github.com/SBOne-Kenobi/OneFS/record"
)

// cellInfo is the decoded filled/capacity header of a ROW, shared by both
// the read-only and mutable cell views.
type cellInfo struct {
	filled   int64
	capacity int64
}

func (s *Store) readCell(rowOffset int64) (cellInfo, error) {
	rec, err := s.ReadRecord(rowOffset)
	if err != nil {
		return cellInfo{}, err
	}
	row, ok := rec.(record.Row)
	if !ok {
		return cellInfo{}, fmt.Errorf("store: record at %d is not a ROW", rowOffset)
	}
	return cellInfo{filled: row.Filled, capacity: row.Capacity}, nil
}

// ReadCell is a length-bounded view over a ROW's content, per spec.md §4.3
// "input_stream()".
type ReadCell struct {
	store     *Store
	rowOffset int64
	filled    int64
}

// GetDataCell returns a read-only cell bounded to rowOffset's filled bytes.
func (s *Store) GetDataCell(rowOffset int64) (*ReadCell, error) {
	info, err := s.readCell(rowOffset)
	if err != nil {
		return nil, err
	}
	return &ReadCell{store: s, rowOffset: rowOffset, filled: info.filled}, nil
}

// Filled is the number of live content bytes.
func (c *ReadCell) Filled() int64 { return c.filled }

// Reader returns a stream over exactly Filled() bytes of content.
func (c *ReadCell) Reader() io.Reader {
	return io.NewSectionReader(c.store.storage, contentStart(c.rowOffset), c.filled)
}

// ContentOwner is notified when a MutableDataCell's underlying ROW is
// reallocated, so the pointer field that referenced the old ROW (a FILE's
// content_ptr, or a FOLDER's children_ptr) can be rewritten (spec.md §4.3
// "allocate_new").
type ContentOwner interface {
	SetContentPtr(newOffset int64) error
}

// MutableDataCell is a positional, growable view over a ROW's content,
// per spec.md §3 "Data cell" and §4.3's MutableDataCell wrapper.
type MutableDataCell struct {
	store     *Store
	rowOffset int64
	filled    int64
	capacity  int64
	owner     ContentOwner
}

// GetMutableDataCell returns a growable cell over rowOffset, whose owner is
// notified of the row's offset on reallocation.
func (s *Store) GetMutableDataCell(rowOffset int64, owner ContentOwner) (*MutableDataCell, error) {
	return s.mutableCell(rowOffset, owner)
}

func (s *Store) mutableCell(rowOffset int64, owner ContentOwner) (*MutableDataCell, error) {
	info, err := s.readCell(rowOffset)
	if err != nil {
		return nil, err
	}
	return &MutableDataCell{store: s, rowOffset: rowOffset, filled: info.filled, capacity: info.capacity, owner: owner}, nil
}

// Filled is the number of live content bytes.
func (c *MutableDataCell) Filled() int64 { return c.filled }

// RowOffset is the current backing ROW's offset (may change across Write
// calls that trigger reallocation).
func (c *MutableDataCell) RowOffset() int64 { return c.rowOffset }

// Reader returns a stream over exactly Filled() bytes of content.
func (c *MutableDataCell) Reader() io.Reader {
	return io.NewSectionReader(c.store.storage, contentStart(c.rowOffset), c.filled)
}

// Clear sets filled to 0 without releasing the ROW's capacity.
func (c *MutableDataCell) Clear() error {
	c.filled = 0
	return c.store.writeFilled(c.rowOffset, 0)
}

// Write writes data at position, resolving -1 to "append" (current filled)
// and clamping any other offset to [0, filled]. If the write would exceed
// capacity, the content is copied into a freshly allocated, larger ROW
// first (spec.md §4.3's MutableDataCell contract).
func (c *MutableDataCell) Write(position int64, data []byte) (int, error) {
	pos := position
	if pos < 0 {
		pos = c.filled
	}
	if pos > c.filled {
		pos = c.filled
	}
	if pos < 0 {
		pos = 0
	}

	needed := pos + int64(len(data))
	if needed > c.capacity {
		if err := c.grow(needed); err != nil {
			return 0, err
		}
	}

	w, err := c.store.writableAt(contentStart(c.rowOffset) + pos)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	if err != nil {
		return n, err
	}

	newFilled := pos + int64(n)
	if newFilled > c.filled {
		c.filled = newFilled
		if err := c.store.writeFilled(c.rowOffset, c.filled); err != nil {
			return n, err
		}
	}
	return n, nil
}

// grow reallocates the backing ROW to at least minCapacity bytes of
// content capacity, copies the live bytes across, frees the old ROW, and
// notifies the owner of the new offset.
func (c *MutableDataCell) grow(minCapacity int64) error {
	newArea, newCapacity, err := c.store.allocateRow(minCapacity, false)
	if err != nil {
		return fmt.Errorf("store: growing data cell: %w", err)
	}

	if c.filled > 0 {
		buf := make([]byte, c.filled)
		if _, err := c.store.storage.ReadAt(buf, contentStart(c.rowOffset)); err != nil {
			return fmt.Errorf("store: copying content during grow: %w", err)
		}
		w, err := c.store.writableAt(contentStart(newArea.Offset))
		if err != nil {
			return err
		}
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("store: copying content during grow: %w", err)
		}
		if err := c.store.writeFilled(newArea.Offset, c.filled); err != nil {
			return err
		}
	}

	oldOffset := c.rowOffset
	if c.owner != nil {
		if err := c.owner.SetContentPtr(newArea.Offset); err != nil {
			return err
		}
	}
	if err := c.store.MakeFree(oldOffset); err != nil {
		return err
	}

	c.rowOffset = newArea.Offset
	c.capacity = newCapacity
	return nil
}

// fileContentOwner rewrites a FILE record's content_ptr on reallocation.
type fileContentOwner struct {
	store      *Store
	fileOffset int64
}

func (o *fileContentOwner) SetContentPtr(newOffset int64) error {
	rec, err := o.store.ReadRecord(o.fileOffset)
	if err != nil {
		return err
	}
	file, ok := rec.(record.File)
	if !ok {
		return fmt.Errorf("store: record at %d is not a FILE", o.fileOffset)
	}
	file.ContentPtr = newOffset
	return o.store.WriteRecord(o.fileOffset, file, nil)
}

// folderChildrenOwner rewrites a FOLDER record's children_ptr on
// reallocation.
type folderChildrenOwner struct {
	store        *Store
	folderOffset int64
}

func (o *folderChildrenOwner) SetContentPtr(newOffset int64) error {
	rec, err := o.store.ReadRecord(o.folderOffset)
	if err != nil {
		return err
	}
	folder, ok := rec.(record.Folder)
	if !ok {
		return fmt.Errorf("store: record at %d is not a FOLDER", o.folderOffset)
	}
	folder.ChildrenPtr = newOffset
	return o.store.WriteRecord(o.folderOffset, folder, nil)
}
