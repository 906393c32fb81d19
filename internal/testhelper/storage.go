// Package testhelper provides backend.Storage stand-ins for unit tests that
// should not have to touch the real filesystem.
package testhelper

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/SBOne-Kenobi/OneFS/backend"
)

type reader func(b []byte, offset int64) (int, error)
type writer func(b []byte, offset int64) (int, error)

// FileImpl stubs individual Read/Write calls, useful for exercising error
// paths in the record codec (short reads, I/O failures) that
// are hard to trigger against a real file.
type FileImpl struct {
	Reader reader
	Writer writer
}

func (f *FileImpl) Stat() (fs.FileInfo, error) { return nil, nil }

func (f *FileImpl) Read(b []byte) (int, error) { return f.Reader(b, 0) }

func (f *FileImpl) Close() error { return nil }

func (f *FileImpl) ReadAt(b []byte, offset int64) (int, error) { return f.Reader(b, offset) }

func (f *FileImpl) WriteAt(b []byte, offset int64) (int, error) { return f.Writer(b, offset) }

//nolint:unused // to implement the interface
func (f *FileImpl) Seek(offset int64, whence int) (int64, error) {
	return 0, fmt.Errorf("FileImpl does not implement Seek()")
}

// MemStorage is a growable in-memory backend.Storage, used by store and
// fsops tests that need a fully working random-access container without
// creating a temp file.
type MemStorage struct {
	buf      []byte
	pos      int64
	readOnly bool
}

// NewMemStorage returns an empty in-memory container.
func NewMemStorage() *MemStorage {
	return &MemStorage{}
}

var (
	_ backend.Storage      = (*MemStorage)(nil)
	_ backend.WritableFile = (*MemStorage)(nil)
)

func (m *MemStorage) Sys() (*os.File, error) { return nil, backend.ErrNotSuitable }

func (m *MemStorage) Writable() (backend.WritableFile, error) {
	if m.readOnly {
		return nil, backend.ErrIncorrectOpenMode
	}
	return m, nil
}

func (m *MemStorage) Stat() (fs.FileInfo, error) {
	return memInfo{size: int64(len(m.buf))}, nil
}

func (m *MemStorage) Read(b []byte) (int, error) {
	n, err := m.ReadAt(b, m.pos)
	m.pos += int64(n)
	return n, err
}

func (m *MemStorage) ReadAt(b []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset")
	}
	if off >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(b, m.buf[off:])
	if n < len(b) {
		return n, io.EOF
	}
	return n, nil
}

func (m *MemStorage) WriteAt(b []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset")
	}
	end := off + int64(len(b))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[off:end], b)
	return len(b), nil
}

func (m *MemStorage) Seek(offset int64, whence int) (int64, error) {
	var np int64
	switch whence {
	case io.SeekStart:
		np = offset
	case io.SeekCurrent:
		np = m.pos + offset
	case io.SeekEnd:
		np = int64(len(m.buf)) + offset
	default:
		return -1, fmt.Errorf("invalid whence %d", whence)
	}
	if np < 0 {
		return -1, fmt.Errorf("negative position")
	}
	m.pos = np
	return np, nil
}

func (m *MemStorage) Close() error { return nil }

// Bytes returns a copy of the current contents, for assertions in tests.
func (m *MemStorage) Bytes() []byte {
	out := make([]byte, len(m.buf))
	copy(out, m.buf)
	return out
}

type memInfo struct {
	size int64
}

func (i memInfo) Name() string       { return "" }
func (i memInfo) Size() int64        { return i.size }
func (i memInfo) Mode() fs.FileMode  { return 0o600 }
func (i memInfo) ModTime() time.Time { return time.Time{} }
func (i memInfo) IsDir() bool        { return false }
func (i memInfo) Sys() any           { return nil }
