// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package agc

import (
	"context"
	"encoding/hex"
	"strings"
	"time"

	"github.com/subocean/usbl/internal/queue"
	"github.com/subocean/usbl/internal/usblerr"
)

// DACPort is the serial transport the AGC worker drives.
// internal/serialport.Port satisfies this.
type DACPort interface {
	Write([]byte) (int, error)
	Read([]byte) (int, error)
	Flush() error
}

// Logger is compatible with the standard library logger.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Worker consumes gain-voltage targets and drives the DAC command protocol.
// Failures are logged per-iteration and never terminate the loop.
type Worker struct {
	Port    DACPort
	GMin    float64
	GMax    float64
	Initial float64
	Log     Logger
	// EchoWait is the delay between writing a command and reading the
	// echo back. Defaults to 10ms if zero.
	EchoWait time.Duration
}

// Run pulls gain targets from q until ctx is canceled or the queue shuts
// down.
func (w *Worker) Run(ctx context.Context, q *queue.Queue[float64]) {
	wait := w.EchoWait
	if wait <= 0 {
		wait = 10 * time.Millisecond
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		g, ok := q.WaitPop()
		if !ok {
			return
		}

		target := g
		if g < w.GMin || g > w.GMax {
			target = w.Initial
		}

		if err := w.sendAndVerify(target, wait); err != nil && w.Log != nil {
			w.Log.Printf("agc: %v", err)
		}
	}
}

func (w *Worker) sendAndVerify(gain float64, wait time.Duration) error {
	cmd := FormatCommand(gain)

	if w.Log != nil {
		w.Log.Printf("agc: sending DAC command % X for gain %.3f", cmd, gain)
	}

	if _, err := w.Port.Write(cmd[:]); err != nil {
		return usblerr.New(usblerr.TransientIO, "agc.Worker.sendAndVerify", err)
	}
	if err := w.Port.Flush(); err != nil {
		return usblerr.New(usblerr.TransientIO, "agc.Worker.sendAndVerify", err)
	}

	time.Sleep(wait)

	echo := make([]byte, CommandLen)
	n, err := w.Port.Read(echo)
	if err != nil {
		return usblerr.New(usblerr.TransientIO, "agc.Worker.sendAndVerify", err)
	}

	sentHex := strings.ToUpper(hex.EncodeToString(cmd[:]))
	echoHex := strings.ToUpper(hex.EncodeToString(echo[:n]))
	if sentHex != echoHex {
		return usblerr.New(usblerr.ProtocolMismatch, "agc.Worker.sendAndVerify",
			errMismatch{sent: sentHex, echo: echoHex})
	}
	return nil
}

type errMismatch struct {
	sent, echo string
}

func (e errMismatch) Error() string {
	return "DAC echo " + e.echo + " does not match sent command " + e.sent
}
