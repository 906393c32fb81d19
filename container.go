// Package onefs ties the record store, filesystem service, access capture
// coordinator, and navigator into a single entry point: Create/Open a
// container file and get back a ready-to-use Container, the equivalent of
// the teacher's top-level diskfs.Create/diskfs.Open (diskfs.go).
package onefs

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/SBOne-Kenobi/OneFS/backend"
	"github.com/SBOne-Kenobi/OneFS/backend/file"
	"github.com/SBOne-Kenobi/OneFS/capture"
	"github.com/SBOne-Kenobi/OneFS/fsops"
	"github.com/SBOne-Kenobi/OneFS/navigator"
	"github.com/SBOne-Kenobi/OneFS/store"
	"github.com/SBOne-Kenobi/OneFS/util/timestamp"
)

// Policy selects a Container's access-capture fairness, per spec.md §4.6.
type Policy int

const (
	// ReadPriority favors already-running readers: once readers are
	// active, arriving writers wait as long as new readers keep arriving.
	ReadPriority Policy = iota
	// WritePriority favors an arriving writer over new readers queued
	// behind it, while still letting it drain active readers first.
	WritePriority
)

// Container is the embedding-facing handle: a record store, a filesystem
// service over it, a navigator cursor, and a capture coordinator
// serializing concurrent access, per spec.md's component table (C1-C7).
type Container struct {
	Store       *store.Store
	Service     *fsops.Service
	Navigator   *navigator.Navigator
	Coordinator capture.Coordinator

	storage backend.Storage
}

// Close releases the container's backing file handle.
func (c *Container) Close() error {
	return c.storage.Close()
}

// Open opens an existing container file at path, scanning its records to
// rebuild the allocator state (spec.md §4.3 "scan").
func Open(path string, policy Policy, log *logrus.Logger) (*Container, error) {
	storage, err := file.OpenFromPath(path, false)
	if err != nil {
		return nil, err
	}
	return build(storage, false, policy, log)
}

// Create creates a new, empty container file at path; it fails if path
// already exists.
func Create(path string, policy Policy, log *logrus.Logger) (*Container, error) {
	storage, err := file.CreateFromPath(path)
	if err != nil {
		return nil, err
	}
	return build(storage, true, policy, log)
}

// OpenOrCreate opens path if it exists, or creates an empty container
// there otherwise, mirroring backend/file.OpenOrCreate's init contract.
func OpenOrCreate(path string, policy Policy, log *logrus.Logger) (*Container, error) {
	storage, created, err := file.OpenOrCreate(path)
	if err != nil {
		return nil, err
	}
	return build(storage, created, policy, log)
}

func build(storage backend.Storage, created bool, policy Policy, log *logrus.Logger) (*Container, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	s := store.New(storage, timestamp.SystemClock, log)
	if err := s.Init(created); err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("onefs: initializing store: %w", err)
	}

	nav, err := navigator.New(s, log)
	if err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("onefs: opening navigator: %w", err)
	}

	var coordinator capture.Coordinator
	switch policy {
	case ReadPriority:
		coordinator = capture.NewReadPriority(log)
	case WritePriority:
		coordinator = capture.NewWritePriority(log)
	default:
		_ = storage.Close()
		return nil, errors.New("onefs: unknown capture policy")
	}

	return &Container{
		Store:       s,
		Service:     fsops.New(s, log),
		Navigator:   nav,
		Coordinator: coordinator,
		storage:     storage,
	}, nil
}
