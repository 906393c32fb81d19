// Package store owns the container's random-access record stream: scanning,
// path lookup, record mutation primitives, children-list maintenance, and
// data-cell controllers (spec.md §4.3, component C3).
package store

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/SBOne-Kenobi/OneFS/alloc"
	"github.com/SBOne-Kenobi/OneFS/backend"
	"github.com/SBOne-Kenobi/OneFS/node"
	"github.com/SBOne-Kenobi/OneFS/record"
	"github.com/SBOne-Kenobi/OneFS/util/timestamp"
)

// toUnixNano/fromUnix convert between a FILE record's nanosecond-precision
// i64 timestamp fields and time.Time.
func toUnixNano(t time.Time) int64 { return t.UnixNano() }

func fromUnix(ns int64) time.Time { return time.Unix(0, ns).UTC() }

// RootOffset is the fixed offset of the root FOLDER record, per spec.md §3.
const RootOffset int64 = 0

// initialChildrenCapacity is the minimum content capacity, in bytes, given
// to a freshly created folder's children row: spec.md §4.3 requires room
// for at least 10 packed i64 child pointers.
const initialChildrenCapacity = 10 * 8

// initialFileCapacity is the minimum content capacity, in bytes, given to a
// freshly created, empty file, per spec.md §4.3's create_file walkthrough.
// allocateRow rounds the ROW up to a power of two, so the actual capacity is
// 39 bytes.
const initialFileCapacity = 20

// Store is the record store (C3): it owns the container's backing storage
// and the allocator that tracks its free/used byte ranges.
type Store struct {
	storage backend.Storage
	alloc   *alloc.Allocator
	clock   timestamp.Clock
	log     *logrus.Entry
}

// New wraps storage as a Store. Call Init before using it.
func New(storage backend.Storage, clock timestamp.Clock, log *logrus.Logger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{
		storage: storage,
		alloc:   alloc.New(),
		clock:   clock,
		log:     log.WithField("component", "store"),
	}
}

// Init prepares the store for use: if created is true the container is
// empty and gets a fresh root FOLDER at offset 0; otherwise the existing
// container is scanned to rebuild the allocator's state.
//
// See spec.md §4.3 "Initialisation"/"Scan".
func (s *Store) Init(created bool) error {
	if created {
		return s.initRoot()
	}
	_, err := s.Scan()
	return err
}

func (s *Store) initRoot() error {
	folderArea, err := s.alloc.Allocate(record.HeaderSize+record.FolderPayloadSize, true)
	if err != nil {
		return fmt.Errorf("store: allocating root folder record: %w", err)
	}
	childrenArea, childrenCap, err := s.allocateRow(initialChildrenCapacity, false)
	if err != nil {
		return fmt.Errorf("store: allocating root children row: %w", err)
	}
	root := record.Folder{
		Header:      record.Header{Type: record.TypeFolder, DataSize: record.FolderPayloadSize},
		Name:        "",
		ParentPtr:   record.NullPtr,
		ChildrenPtr: childrenArea.Offset,
	}
	if folderArea.Offset != RootOffset {
		return fmt.Errorf("store: root folder allocated at %d, want %d", folderArea.Offset, RootOffset)
	}
	if err := s.WriteRecord(folderArea.Offset, root, nil); err != nil {
		return fmt.Errorf("store: writing root folder: %w", err)
	}
	s.log.WithFields(logrus.Fields{"children_capacity": childrenCap}).Info("initialised empty container")
	return nil
}

// Scan re-reads the container sequentially, registering every record with
// the allocator, per spec.md §4.3 "Scan". It fails with a ParseError on a
// malformed container.
func (s *Store) Scan() (*node.FolderNode, error) {
	s.alloc.Clear()

	if _, err := s.storage.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("store: seeking to start for scan: %w", err)
	}

	offset := int64(0)
	sawRoot := false
	for {
		rec, err := s.ReadRecord(offset)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		size := record.Size(rec)
		area := alloc.Area{Offset: offset, Size: size}
		if _, ok := rec.(record.Free); ok {
			s.alloc.RegisterFree(area)
		} else {
			s.alloc.RegisterUsed(area)
		}
		if offset == RootOffset {
			if _, ok := rec.(record.Folder); !ok {
				return nil, node.NewParseError(fmt.Sprintf("record at offset %d is not a FOLDER", RootOffset), nil)
			}
			sawRoot = true
		}
		offset += size
	}
	if !sawRoot {
		return nil, node.NewParseError("container has no root FOLDER at offset 0", nil)
	}

	s.log.WithFields(logrus.Fields{
		"used_areas": len(s.alloc.UsedAreas()),
		"free_areas": len(s.alloc.FreeAreas()),
	}).Info("scanned container")

	loader, err := s.GetFolderLoader(node.Root())
	if err != nil {
		return nil, err
	}
	return loader.Load()
}

// ReadRecord seeks to offset and parses one record.
func (s *Store) ReadRecord(offset int64) (record.Record, error) {
	return record.Parse(&offsetReader{r: s.storage, pos: offset})
}

// WriteRecord seeks to the record's intended offset and serialises it. data
// is only consulted for record.Row.
func (s *Store) WriteRecord(offset int64, rec record.Record, data io.Reader) error {
	w, err := s.writableAt(offset)
	if err != nil {
		return err
	}
	return record.Write(w, rec, data)
}

// MakeFree writes the FREE type byte at offset and moves the area from used
// to free in the allocator. Payload bytes are left untouched.
func (s *Store) MakeFree(offset int64) error {
	area, err := s.alloc.UnregisterUsed(offset)
	if err != nil {
		return fmt.Errorf("store: make_free: %w", err)
	}
	w, err := s.writableAt(offset)
	if err != nil {
		return err
	}
	if err := record.Write(w, record.Free{Header: record.Header{Type: record.TypeFree, DataSize: area.Size - record.HeaderSize}}, nil); err != nil {
		return err
	}
	s.alloc.RegisterFree(area)
	s.log.WithField("offset", offset).Debug("freed record")
	return nil
}

// writableAt returns an io.Writer that writes starting at offset, backed by
// the storage's io.WriterAt.
func (s *Store) writableAt(offset int64) (io.Writer, error) {
	wf, err := s.storage.Writable()
	if err != nil {
		return nil, err
	}
	return io.NewOffsetWriter(wf, offset), nil
}

// offsetReader adapts an io.ReaderAt plus a running position into an
// io.Reader, mirroring the read-side counterpart of io.NewOffsetWriter.
type offsetReader struct {
	r   io.ReaderAt
	pos int64
}

func (o *offsetReader) Read(p []byte) (int, error) {
	n, err := o.r.ReadAt(p, o.pos)
	o.pos += int64(n)
	return n, err
}

// allocateRow allocates a ROW of at least minContentSize bytes of capacity
// and writes its empty header to the container. fitted selects exact-fit
// (true) vs power-of-two growth (false), per spec.md §4.2.
func (s *Store) allocateRow(minContentSize int64, fitted bool) (alloc.Area, int64, error) {
	area, err := s.alloc.Allocate(record.HeaderSize+16+minContentSize, fitted)
	if err != nil {
		return alloc.Area{}, 0, err
	}
	capacity := area.Size - record.HeaderSize - 16
	row := record.Row{
		Header:   record.Header{Type: record.TypeRow, DataSize: area.Size - record.HeaderSize},
		Filled:   0,
		Capacity: capacity,
	}
	if err := s.WriteRecord(area.Offset, row, nil); err != nil {
		return alloc.Area{}, 0, err
	}
	return area, capacity, nil
}

// contentStart returns the absolute offset of the first content byte of the
// ROW at rowOffset.
func contentStart(rowOffset int64) int64 {
	return rowOffset + record.HeaderSize + 16
}

// writeFilled patches only the 8-byte "filled" field of the ROW at
// rowOffset, per spec.md §4.3's length_observer: a change to filled is
// mirrored to disk immediately, without rewriting the whole record.
func (s *Store) writeFilled(rowOffset, filled int64) error {
	w, err := s.writableAt(rowOffset + record.HeaderSize)
	if err != nil {
		return err
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(filled))
	_, err = w.Write(buf[:])
	return err
}
