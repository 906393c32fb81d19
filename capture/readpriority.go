package capture

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

// ReadPriority guards access with a single control lock: once readers are
// active, arriving writers wait indefinitely as long as new readers keep
// arriving. This is spec.md §4.6's "Read-priority" policy, intended
// semantics included.
type ReadPriority struct {
	readCapture *semaphore.Weighted

	counterMu sync.Mutex
	readers   int

	log *logrus.Logger
}

var _ Coordinator = (*ReadPriority)(nil)

// NewReadPriority returns an unheld read-priority coordinator.
func NewReadPriority(log *logrus.Logger) *ReadPriority {
	return &ReadPriority{readCapture: semaphore.NewWeighted(1), log: log}
}

// CaptureRead runs fn with a read grant held, suspending until one is
// available.
func (r *ReadPriority) CaptureRead(ctx context.Context, fn func() error) error {
	entry := newGrantLogger(r.log, "read")
	r.counterMu.Lock()
	pre := r.readers
	if pre == 0 {
		if err := acquire(ctx, r.readCapture); err != nil {
			r.counterMu.Unlock()
			return err
		}
	}
	r.readers++
	r.counterMu.Unlock()
	entry.Debug("read grant acquired")

	defer func() {
		r.counterMu.Lock()
		r.readers--
		post := r.readers
		r.counterMu.Unlock()
		if post == 0 {
			r.readCapture.Release(1)
		}
		entry.Debug("read grant released")
	}()

	return fn()
}

// CaptureWrite runs fn with the sole write grant held, suspending until
// every active reader has released.
func (r *ReadPriority) CaptureWrite(ctx context.Context, fn func() error) error {
	entry := newGrantLogger(r.log, "write")
	if err := acquire(ctx, r.readCapture); err != nil {
		return err
	}
	entry.Debug("write grant acquired")
	defer func() {
		r.readCapture.Release(1)
		entry.Debug("write grant released")
	}()
	return fn()
}

// TryCaptureRead runs fn with a read grant if one is immediately
// available, else fails with ErrReadCapture.
func (r *ReadPriority) TryCaptureRead(fn func() error) error {
	r.counterMu.Lock()
	if r.readers == 0 {
		if !r.readCapture.TryAcquire(1) {
			r.counterMu.Unlock()
			return ErrReadCapture
		}
	}
	r.readers++
	r.counterMu.Unlock()

	defer func() {
		r.counterMu.Lock()
		r.readers--
		post := r.readers
		r.counterMu.Unlock()
		if post == 0 {
			r.readCapture.Release(1)
		}
	}()
	return fn()
}

// TryCaptureWrite runs fn with the write grant if it is immediately
// available, else fails with ErrWriteCapture.
func (r *ReadPriority) TryCaptureWrite(fn func() error) error {
	if !r.readCapture.TryAcquire(1) {
		return ErrWriteCapture
	}
	defer r.readCapture.Release(1)
	return fn()
}
