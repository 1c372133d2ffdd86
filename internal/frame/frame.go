// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package frame implements the channel frame, the universal DSP payload
// shared by ingest, synthesis, and every downstream DSP stage.
package frame

import (
	"fmt"

	"github.com/subocean/usbl/internal/usblerr"
)

// Frame is a C-channel, N-sample real-valued matrix in row-per-channel
// order. Once handed to a queue it must be treated as immutable; multi-queue
// fan-out is done by cloning, never by sharing a single instance.
type Frame struct {
	Channels int
	Length   int
	Data     [][]float64
	Valid    bool
}

// New allocates a Frame of c channels, each n samples long, zero-filled.
func New(c, n int) *Frame {
	data := make([][]float64, c)
	for i := range data {
		data[i] = make([]float64, n)
	}
	return &Frame{Channels: c, Length: n, Data: data, Valid: true}
}

// Resize reallocates the frame to c channels of n samples each, re-zeroed.
// Existing data is discarded.
func (f *Frame) Resize(c, n int) {
	f.Data = make([][]float64, c)
	for i := range f.Data {
		f.Data[i] = make([]float64, n)
	}
	f.Channels = c
	f.Length = n
}

// Clone performs a full deep copy. Copy is otherwise not implied by normal
// Go value semantics of the Data slices, so this is the only sanctioned way
// to duplicate a Frame across multiple consumer queues.
func (f *Frame) Clone() *Frame {
	out := New(f.Channels, f.Length)
	for i := range f.Data {
		copy(out.Data[i], f.Data[i])
	}
	out.Valid = f.Valid
	return out
}

// Validate checks the frame invariants: every row has length Length, and
// the declared Channels count matches len(Data). The TOF and DOA
// estimators and the TCP data encoder call it as a cheap defensive check.
func (f *Frame) Validate() error {
	if f == nil {
		return usblerr.New(usblerr.InvalidArgument, "frame.Validate", fmt.Errorf("nil frame"))
	}
	if len(f.Data) != f.Channels {
		return usblerr.New(usblerr.InvalidArgument, "frame.Validate",
			fmt.Errorf("channel count mismatch: declared %d, got %d rows", f.Channels, len(f.Data)))
	}
	for i, row := range f.Data {
		if len(row) != f.Length {
			return usblerr.New(usblerr.InvalidArgument, "frame.Validate",
				fmt.Errorf("channel %d: row length %d, want %d", i, len(row), f.Length))
		}
	}
	return nil
}

// Scale multiplies every sample in place by s.
func (f *Frame) Scale(s float64) {
	for _, row := range f.Data {
		for i := range row {
			row[i] *= s
		}
	}
}

// ScaleDiv divides every sample in place by s. It returns
// usblerr.InvalidArgument if s is zero.
func (f *Frame) ScaleDiv(s float64) error {
	if s == 0 {
		return usblerr.New(usblerr.InvalidArgument, "frame.ScaleDiv", fmt.Errorf("division by zero"))
	}
	f.Scale(1 / s)
	return nil
}

// Row1D wraps a single-channel real sequence as a one-row Frame, the
// canonical adapter for components (reference waveform, single-channel
// helpers) historically constructed from a bare row vector.
func Row1D(x []float64) *Frame {
	data := make([][]float64, 1)
	data[0] = append([]float64(nil), x...)
	return &Frame{Channels: 1, Length: len(x), Data: data, Valid: true}
}
