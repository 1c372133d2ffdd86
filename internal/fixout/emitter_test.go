// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fixout

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/subocean/usbl/internal/queue"
)

type recordingPort struct {
	written []byte
}

func (p *recordingPort) Write(b []byte) (int, error) {
	p.written = append(p.written, b...)
	return len(b), nil
}

func TestEmitterWritesFormattedSentence(t *testing.T) {
	port := &recordingPort{}
	e := &Emitter{Port: port}
	q := queue.New[Fix]()

	q.Push(Fix{Time: 1, X: 0, Y: 0, Z: 0, TOF: 0.1, DOA: 10})
	q.Shutdown()

	if err := e.Run(context.Background(), q); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := Format(Fix{Time: 1, X: 0, Y: 0, Z: 0, TOF: 0.1, DOA: 10})
	if string(port.written) != want {
		t.Fatalf("written = %q, want %q", port.written, want)
	}
}

func TestWriteByteRetriesTransientErrors(t *testing.T) {
	port := &wrappedAgainPort{failuresLeft: 2}
	e := &Emitter{Port: port, RetryBackoff: time.Millisecond}

	if err := e.writeByte('$'); err != nil {
		t.Fatalf("writeByte: %v", err)
	}
	if len(port.written) != 1 || port.written[0] != '$' {
		t.Fatalf("written = %v, want ['$']", port.written)
	}
}

type wrappedAgainPort struct {
	failuresLeft int
	written      []byte
}

func (p *wrappedAgainPort) Write(b []byte) (int, error) {
	if p.failuresLeft > 0 {
		p.failuresLeft--
		return 0, wrapEAGAIN{}
	}
	p.written = append(p.written, b...)
	return len(b), nil
}

type wrapEAGAIN struct{}

func (wrapEAGAIN) Error() string { return "resource temporarily unavailable" }
func (wrapEAGAIN) Unwrap() error { return syscall.EAGAIN }
