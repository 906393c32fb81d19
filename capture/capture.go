// Package capture coordinates concurrent access to the filesystem service
// with either reader-priority or writer-priority fairness, each offering
// blocking and non-blocking ("try") grant acquisition (spec.md §4.6,
// component C6).
package capture

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

// ErrReadCapture is returned by a failed TryCaptureRead.
var ErrReadCapture = errors.New("capture: could not acquire a read grant")

// ErrWriteCapture is returned by a failed TryCaptureWrite.
var ErrWriteCapture = errors.New("capture: could not acquire a write grant")

// Coordinator is the common contract both fairness policies implement.
// CaptureRead/CaptureWrite block (subject to ctx cancellation) until a
// grant is available; TryCaptureRead/TryCaptureWrite fail immediately
// instead of waiting. The coordinator never inspects, retries, or
// times out the block itself — release always runs on every exit path.
type Coordinator interface {
	CaptureRead(ctx context.Context, fn func() error) error
	CaptureWrite(ctx context.Context, fn func() error) error
	TryCaptureRead(fn func() error) error
	TryCaptureWrite(fn func() error) error
}

// newGrantLogger returns a per-grant logging entry carrying a fresh grant
// id, used to trace acquisition/release across both policies.
func newGrantLogger(log *logrus.Logger, kind string) *logrus.Entry {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return log.WithFields(logrus.Fields{"component": "capture", "kind": kind, "grant_id": uuid.NewString()})
}

func acquire(ctx context.Context, sem *semaphore.Weighted) error {
	if err := sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("capture: acquiring grant: %w", err)
	}
	return nil
}
