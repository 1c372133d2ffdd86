// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tof

import (
	"math"
	"testing"

	"github.com/subocean/usbl/internal/frame"
)

// TestTOFLinearity places the reference at known offsets in a 4-channel
// frame of zeros, f_ref = f_s = 100kHz, and expects tau ~= offset/f_ref
// within one sample.
func TestTOFLinearity(t *testing.T) {
	const (
		fs = 100000.0
		n  = 4096
	)
	ref := make([]float64, 64)
	for i := range ref {
		ref[i] = math.Sin(2 * math.Pi * float64(i) / 16)
	}
	reference := frame.Row1D(ref)

	offsets := []int{100, 300, 250, 400}
	sig := frame.New(len(offsets), n)
	for c, off := range offsets {
		copy(sig.Data[c][off:], ref)
	}

	res, err := Estimate(sig, reference, fs)
	if err != nil {
		t.Fatal(err)
	}
	for c, off := range offsets {
		want := float64(off) / fs
		if math.Abs(res.Tau[c]-want) > 1/fs {
			t.Fatalf("channel %d: tau = %v, want ~%v", c, res.Tau[c], want)
		}
	}
}

func TestArgmaxTiesLowestIndex(t *testing.T) {
	x := []float64{1, 3, 3, 2}
	if got := argmax(x); got != 1 {
		t.Fatalf("argmax = %d, want 1", got)
	}
}
