// Package file provides a backend.Storage implementation backed by a host
// file or block device.
package file

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/SBOne-Kenobi/OneFS/backend"
)

type rawBackend struct {
	storage  fs.File
	readOnly bool
}

// New creates a backend.Storage from a provided fs.File.
func New(f fs.File, readOnly bool) backend.Storage {
	return rawBackend{
		storage:  f,
		readOnly: readOnly,
	}
}

// OpenFromPath creates a backend.Storage from a path to an existing container file.
// The provided file must exist at the time you call OpenFromPath().
func OpenFromPath(pathName string, readOnly bool) (backend.Storage, error) {
	if pathName == "" {
		return nil, errors.New("must pass container file name")
	}

	if _, err := os.Stat(pathName); os.IsNotExist(err) {
		return nil, fmt.Errorf("provided container file %s does not exist", pathName)
	}

	openMode := os.O_RDONLY
	if !readOnly {
		openMode |= os.O_RDWR
	}

	f, err := os.OpenFile(pathName, openMode, 0o600)
	if err != nil {
		return nil, fmt.Errorf("could not open container %s with mode %v: %w", pathName, openMode, err)
	}

	if !readOnly {
		if err := lockExclusive(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("could not lock container %s: %w", pathName, err)
		}
	}

	return rawBackend{
		storage:  f,
		readOnly: readOnly,
	}, nil
}

// CreateFromPath creates a backend.Storage from a path that must not yet exist,
// and writes an empty container file there.
func CreateFromPath(pathName string) (backend.Storage, error) {
	if pathName == "" {
		return nil, errors.New("must pass container file name")
	}
	f, err := os.OpenFile(pathName, os.O_RDWR|os.O_EXCL|os.O_CREATE, 0o666)
	if err != nil {
		return nil, fmt.Errorf("could not create container %s: %w", pathName, err)
	}

	if err := lockExclusive(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("could not lock container %s: %w", pathName, err)
	}

	return rawBackend{
		storage:  f,
		readOnly: false,
	}, nil
}

// OpenOrCreate implements the container init contract: create the file if it
// does not exist yet, open it for read-write if it does. It fails if the path
// exists and is a directory.
func OpenOrCreate(pathName string) (storage backend.Storage, created bool, err error) {
	if pathName == "" {
		return nil, false, errors.New("must pass container file name")
	}

	info, statErr := os.Stat(pathName)
	switch {
	case statErr == nil:
		if info.IsDir() {
			return nil, false, fmt.Errorf("container path %s is a directory", pathName)
		}
		storage, err = OpenFromPath(pathName, false)
		return storage, false, err
	case os.IsNotExist(statErr):
		storage, err = CreateFromPath(pathName)
		return storage, true, err
	default:
		return nil, false, fmt.Errorf("could not stat container %s: %w", pathName, statErr)
	}
}

// backend.Storage interface guard
var _ backend.Storage = (*rawBackend)(nil)

// Sys returns the OS-specific file, for callers that need the raw descriptor.
func (f rawBackend) Sys() (*os.File, error) {
	if osFile, ok := f.storage.(*os.File); ok {
		return osFile, nil
	}
	return nil, backend.ErrNotSuitable
}

// Writable returns a write-capable handle, or ErrIncorrectOpenMode if this
// backend was opened read-only.
func (f rawBackend) Writable() (backend.WritableFile, error) {
	if rwFile, ok := f.storage.(backend.WritableFile); ok {
		if !f.readOnly {
			return rwFile, nil
		}

		return nil, backend.ErrIncorrectOpenMode
	}
	return nil, backend.ErrNotSuitable
}

func (f rawBackend) Stat() (fs.FileInfo, error) {
	return f.storage.Stat()
}

func (f rawBackend) Read(b []byte) (int, error) {
	return f.storage.Read(b)
}

func (f rawBackend) Close() error {
	return f.storage.Close()
}

func (f rawBackend) ReadAt(p []byte, off int64) (n int, err error) {
	if readerAt, ok := f.storage.(io.ReaderAt); ok {
		return readerAt.ReadAt(p, off)
	}
	return -1, backend.ErrNotSuitable
}

func (f rawBackend) Seek(offset int64, whence int) (int64, error) {
	if seeker, ok := f.storage.(io.Seeker); ok {
		return seeker.Seek(offset, whence)
	}
	return -1, backend.ErrNotSuitable
}
