// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package persist implements the file-writing consumers bound to the
// pipeline's artifact queues: one goroutine per bound artifact, draining
// its queue to a sink in text, binary, or hex mode. A single generic row
// writer serves every artifact kind (raw capture, correlation, TOF
// vector, beam pattern, side-amp spectrum).
package persist

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"math"

	"github.com/subocean/usbl/internal/queue"
)

// Mode selects the on-disk record format.
type Mode int

const (
	// Text writes one space-separated row of %-15.9f fields per record
	// row, newline-terminated.
	Text Mode = iota
	// Binary writes each row as a raw little-endian float64 array.
	Binary
	// Hex writes each row as space-separated big-endian hex pairs of each
	// float64's IEEE-754 bytes, newline-terminated.
	Hex
)

// Logger is compatible with the standard library logger.
type Logger interface {
	Printf(format string, v ...interface{})
}

// flusher is implemented by buffered sinks such as *bufio.Writer; sinks
// without one (an *os.File, an in-memory buffer) are simply never flushed.
type flusher interface {
	Flush() error
}

// Writer drains a queue of T to a sink, converting each popped value to
// its row-major numeric representation via Rows. One Writer instance
// serves exactly one bound artifact queue.
type Writer[T any] struct {
	Sink io.Writer
	Mode Mode
	Rows func(T) [][]float64
	Log  Logger
}

// Run drains q until ctx is canceled or the queue shuts down, writing one
// record per popped value. There is no separate enabled flag; the
// supervisor stops a writer by shutting down its bound queue, consistent
// with how every other worker in this module is canceled.
func (w *Writer[T]) Run(ctx context.Context, q *queue.Queue[T]) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		v, ok := q.WaitPop()
		if !ok {
			return
		}
		if err := w.writeRecord(v); err != nil && w.Log != nil {
			w.Log.Printf("persist: %v", err)
		}
	}
}

func (w *Writer[T]) writeRecord(v T) error {
	rows := w.Rows(v)
	switch w.Mode {
	case Text:
		return w.writeText(rows)
	case Binary:
		return w.writeBinary(rows)
	case Hex:
		return w.writeHex(rows)
	default:
		return fmt.Errorf("persist: unknown mode %d", w.Mode)
	}
}

func (w *Writer[T]) writeText(rows [][]float64) error {
	bw := bufio.NewWriter(w.Sink)
	for _, row := range rows {
		for i, v := range row {
			if i > 0 {
				if err := bw.WriteByte(' '); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(bw, "%-15.9f", v); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return flushSink(w.Sink)
}

func (w *Writer[T]) writeBinary(rows [][]float64) error {
	for _, row := range rows {
		if err := binary.Write(w.Sink, binary.LittleEndian, row); err != nil {
			return err
		}
	}
	return flushSink(w.Sink)
}

func (w *Writer[T]) writeHex(rows [][]float64) error {
	bw := bufio.NewWriter(w.Sink)
	var buf [8]byte
	for _, row := range rows {
		for i, v := range row {
			if i > 0 {
				if err := bw.WriteByte(' '); err != nil {
					return err
				}
			}
			binary.BigEndian.PutUint64(buf[:], math.Float64bits(v))
			if _, err := bw.WriteString(hex.EncodeToString(buf[:])); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return flushSink(w.Sink)
}

func flushSink(w io.Writer) error {
	if f, ok := w.(flusher); ok {
		return f.Flush()
	}
	return nil
}
