// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fixout

import (
	"context"
	"errors"
	"syscall"
	"time"

	"github.com/subocean/usbl/internal/queue"
	"github.com/subocean/usbl/internal/usblerr"
)

// Port is the serial transport the emitter writes to.
// internal/serialport.Port satisfies this.
type Port interface {
	Write([]byte) (int, error)
}

// Logger is compatible with the standard library logger.
type Logger interface {
	Printf(format string, v ...interface{})
}

const maxRetries = 5

// Emitter pops position fixes from a queue and writes them, one byte at a
// time, to a serial port. A fatal (non-transient) write error ends the
// loop; transient errors are retried in place.
type Emitter struct {
	Port Port
	Log  Logger
	// RetryBackoff is the delay between transient-error retries. Defaults
	// to one second if zero.
	RetryBackoff time.Duration
}

// Run consumes fixes from q until ctx is canceled or the queue shuts down.
func (e *Emitter) Run(ctx context.Context, q *queue.Queue[Fix]) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		fix, ok := q.WaitPop()
		if !ok {
			return nil
		}

		sentence := Format(fix)
		if err := e.writeAll(sentence); err != nil {
			if e.Log != nil {
				e.Log.Printf("fixout: %v", err)
			}
			return err
		}
	}
}

func (e *Emitter) writeAll(s string) error {
	for i := 0; i < len(s); i++ {
		if err := e.writeByte(s[i]); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) writeByte(b byte) error {
	backoff := e.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}

	buf := [1]byte{b}
	for attempt := 0; ; attempt++ {
		_, err := e.Port.Write(buf[:])
		if err == nil {
			return nil
		}
		if !isTransient(err) || attempt >= maxRetries {
			return usblerr.New(usblerr.TransientIO, "fixout.Emitter.writeByte", err)
		}
		if e.Log != nil {
			e.Log.Printf("fixout: transient write error (retry %d/%d): %v", attempt+1, maxRetries, err)
		}
		time.Sleep(backoff)
	}
}

// isTransient reports whether err corresponds to EAGAIN, EWOULDBLOCK, or
// EINTR.
func isTransient(err error) bool {
	return errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.EWOULDBLOCK) ||
		errors.Is(err, syscall.EINTR)
}
