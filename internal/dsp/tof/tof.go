// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package tof implements the Time-of-Flight estimator: a matched filter
// of each channel against the time-reversed reference waveform, with the
// correlation peak index converted to a time using the configured
// reference-signal frequency.
package tof

import (
	"errors"

	"github.com/subocean/usbl/internal/dsp/fft"
	"github.com/subocean/usbl/internal/frame"
	"github.com/subocean/usbl/internal/usblerr"
)

// Result holds the per-channel correlation trace K and the derived
// time-of-flight vector Tau, in seconds.
type Result struct {
	K   *frame.Frame
	Tau []float64
}

// Estimate computes the matched-filter correlation of signal against the
// time-reversed reference and the per-channel arg-max time-of-flight,
// scaled by refFreq: the correlation peak indexes the reference
// waveform's own sampling grid, so the reference frequency, not the DAQ
// sample rate, converts it to seconds. The two rates are required to be
// equal at configuration load. Ties are broken toward the lowest index.
func Estimate(signal *frame.Frame, reference *frame.Frame, refFreq float64) (*Result, error) {
	if err := signal.Validate(); err != nil {
		return nil, err
	}
	if err := reference.Validate(); err != nil {
		return nil, err
	}
	if reference.Channels != 1 {
		return nil, usblerr.New(usblerr.InvalidArgument, "tof.Estimate", errors.New("reference must be single-channel"))
	}

	rev := frame.Row1D(reverse(reference.Data[0]))

	k, err := fft.ConvValid(signal, rev)
	if err != nil {
		return nil, err
	}

	tau := make([]float64, k.Channels)
	for c := 0; c < k.Channels; c++ {
		idx := argmax(k.Data[c])
		tau[c] = float64(idx) / refFreq
	}

	return &Result{K: k, Tau: tau}, nil
}

func reverse(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[len(x)-1-i] = v
	}
	return out
}

// argmax returns the index of the first occurrence of the maximum value,
// breaking ties toward the lowest index.
func argmax(x []float64) int {
	best := 0
	for i := 1; i < len(x); i++ {
		if x[i] > x[best] {
			best = i
		}
	}
	return best
}
