package capture

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

// WritePriority guards access with two control locks: writeCaptured is held
// whenever any writer is waiting or running, and canWrite is held whenever
// any reader or writer is running. An arriving writer blocks new readers
// but waits for active readers to drain; readers arriving after a writer
// queue behind it. This is spec.md §4.6's "Write-priority" policy.
type WritePriority struct {
	writeCaptured *semaphore.Weighted
	canWrite      *semaphore.Weighted

	readerMu sync.Mutex
	readers  int
	writerMu sync.Mutex
	writers  int

	log *logrus.Logger
}

var _ Coordinator = (*WritePriority)(nil)

// NewWritePriority returns an unheld write-priority coordinator.
func NewWritePriority(log *logrus.Logger) *WritePriority {
	return &WritePriority{
		writeCaptured: semaphore.NewWeighted(1),
		canWrite:      semaphore.NewWeighted(1),
		log:           log,
	}
}

// CaptureWrite runs fn with the write grant held.
func (w *WritePriority) CaptureWrite(ctx context.Context, fn func() error) error {
	entry := newGrantLogger(w.log, "write")

	w.writerMu.Lock()
	pre := w.writers
	if pre == 0 {
		if err := acquire(ctx, w.writeCaptured); err != nil {
			w.writerMu.Unlock()
			return err
		}
	}
	w.writers++
	w.writerMu.Unlock()

	if err := acquire(ctx, w.canWrite); err != nil {
		w.releaseWriterSlot()
		return err
	}
	entry.Debug("write grant acquired")

	defer func() {
		w.canWrite.Release(1)
		w.releaseWriterSlot()
		entry.Debug("write grant released")
	}()
	return fn()
}

func (w *WritePriority) releaseWriterSlot() {
	w.writerMu.Lock()
	w.writers--
	post := w.writers
	w.writerMu.Unlock()
	if post == 0 {
		w.writeCaptured.Release(1)
	}
}

// CaptureRead runs fn with a read grant held. Readers pass through
// writeCaptured (blocking while a writer is waiting or running) before
// contending for canWrite alongside other readers.
func (w *WritePriority) CaptureRead(ctx context.Context, fn func() error) error {
	entry := newGrantLogger(w.log, "read")

	if err := acquire(ctx, w.writeCaptured); err != nil {
		return err
	}

	w.readerMu.Lock()
	pre := w.readers
	if pre == 0 {
		if err := acquire(ctx, w.canWrite); err != nil {
			w.readerMu.Unlock()
			w.writeCaptured.Release(1)
			return err
		}
	}
	w.readers++
	w.readerMu.Unlock()
	w.writeCaptured.Release(1)
	entry.Debug("read grant acquired")

	defer func() {
		w.readerMu.Lock()
		w.readers--
		post := w.readers
		w.readerMu.Unlock()
		if post == 0 {
			w.canWrite.Release(1)
		}
		entry.Debug("read grant released")
	}()
	return fn()
}

// TryCaptureWrite runs fn with the write grant if immediately available,
// rolling back any partial acquisition on failure.
func (w *WritePriority) TryCaptureWrite(fn func() error) error {
	w.writerMu.Lock()
	pre := w.writers
	if pre == 0 {
		if !w.writeCaptured.TryAcquire(1) {
			w.writerMu.Unlock()
			return ErrWriteCapture
		}
	}
	w.writers++
	w.writerMu.Unlock()

	if !w.canWrite.TryAcquire(1) {
		w.releaseWriterSlot()
		return ErrWriteCapture
	}

	defer func() {
		w.canWrite.Release(1)
		w.releaseWriterSlot()
	}()
	return fn()
}

// TryCaptureRead runs fn with a read grant if immediately available,
// rolling back any partial acquisition on failure.
func (w *WritePriority) TryCaptureRead(fn func() error) error {
	if !w.writeCaptured.TryAcquire(1) {
		return ErrReadCapture
	}

	w.readerMu.Lock()
	pre := w.readers
	if pre == 0 {
		if !w.canWrite.TryAcquire(1) {
			w.readerMu.Unlock()
			w.writeCaptured.Release(1)
			return ErrReadCapture
		}
	}
	w.readers++
	w.readerMu.Unlock()
	w.writeCaptured.Release(1)

	defer func() {
		w.readerMu.Lock()
		w.readers--
		post := w.readers
		w.readerMu.Unlock()
		if post == 0 {
			w.canWrite.Release(1)
		}
	}()
	return fn()
}
