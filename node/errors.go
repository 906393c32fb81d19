// Package node defines the logical filesystem model shared by the record
// store and the filesystem service: paths, lazy loaders, and the error
// hierarchy every higher layer reports through.
package node

import (
	"errors"
	"fmt"
)

// OneFSError is the common marker implemented by every error type this
// package defines, matching spec.md's OneFileSystemException root.
type OneFSError interface {
	error
	oneFSError()
}

// NotFoundError marks DirectoryNotFound/FileNotFound — a recoverable
// logical fault (spec.md §7).
type NotFoundError interface {
	OneFSError
	notFound()
}

// AlreadyExistsErr marks DirectoryAlreadyExists/FileAlreadyExists — a
// recoverable logical fault (spec.md §7).
type AlreadyExistsErr interface {
	OneFSError
	alreadyExists()
}

// IntegrityError marks ParseError/WriteError — a container integrity fault
// that propagates unchanged (spec.md §7).
type IntegrityError interface {
	OneFSError
	integrityFault()
}

type baseError struct {
	msg string
	err error
}

func (e *baseError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *baseError) Unwrap() error { return e.err }

func (e *baseError) oneFSError() {}

// DirectoryNotFoundError reports a missing folder in a path lookup.
type DirectoryNotFoundError struct{ *baseError }

func (e *DirectoryNotFoundError) notFound() {}

// FileNotFoundError reports a missing file in a path lookup.
type FileNotFoundError struct{ *baseError }

func (e *FileNotFoundError) notFound() {}

// DirectoryAlreadyExistsError reports a name collision creating/moving a folder.
type DirectoryAlreadyExistsError struct{ *baseError }

func (e *DirectoryAlreadyExistsError) alreadyExists() {}

// FileAlreadyExistsError reports a name collision creating/moving a file.
type FileAlreadyExistsError struct{ *baseError }

func (e *FileAlreadyExistsError) alreadyExists() {}

// WriteError reports a container integrity fault detected while writing
// (e.g. a name too long, or a short write to the backing storage).
type WriteError struct{ *baseError }

func (e *WriteError) integrityFault() {}

// ParseError reports a container integrity fault detected while parsing
// (malformed record header, invalid type byte, non-UTF-8 name, short read).
type ParseError struct{ *baseError }

func (e *ParseError) integrityFault() {}

// genericError is the catch-all OneFileSystemException for anything that
// does not fall into the categories above (e.g. an importer failure).
type genericError struct{ *baseError }

func NewDirectoryNotFound(path string) error {
	return &DirectoryNotFoundError{&baseError{msg: fmt.Sprintf("directory not found: %s", path)}}
}

func NewFileNotFound(path string) error {
	return &FileNotFoundError{&baseError{msg: fmt.Sprintf("file not found: %s", path)}}
}

func NewDirectoryAlreadyExists(path string) error {
	return &DirectoryAlreadyExistsError{&baseError{msg: fmt.Sprintf("directory already exists: %s", path)}}
}

func NewFileAlreadyExists(path string) error {
	return &FileAlreadyExistsError{&baseError{msg: fmt.Sprintf("file already exists: %s", path)}}
}

func NewWriteError(msg string, cause error) error {
	return &WriteError{&baseError{msg: msg, err: cause}}
}

func NewParseError(msg string, cause error) error {
	return &ParseError{&baseError{msg: msg, err: cause}}
}

// NewOneFSError wraps an arbitrary error (e.g. from an importer) as the
// generic OneFileSystemException fallback.
func NewOneFSError(msg string, cause error) error {
	return &genericError{&baseError{msg: msg, err: cause}}
}

// IsNotFound reports whether err is a DirectoryNotFound/FileNotFound.
func IsNotFound(err error) bool {
	var e NotFoundError
	return errors.As(err, &e)
}

// IsAlreadyExists reports whether err is a DirectoryAlreadyExists/FileAlreadyExists.
func IsAlreadyExists(err error) bool {
	var e AlreadyExistsErr
	return errors.As(err, &e)
}

// IsIntegrityFault reports whether err is a ParseError/WriteError.
func IsIntegrityFault(err error) bool {
	var e IntegrityError
	return errors.As(err, &e)
}
