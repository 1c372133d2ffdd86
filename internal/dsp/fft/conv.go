// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fft

import (
	"fmt"

	"github.com/subocean/usbl/internal/frame"
	"github.com/subocean/usbl/internal/usblerr"
)

// ConvFull computes the full convolution of every channel of a against
// the single-channel kernel b: length M = len(a)+len(b)-1 per channel,
// computed via an M-length FFT, pointwise multiply, inverse FFT, real
// part.
func ConvFull(a *frame.Frame, b *frame.Frame) (*frame.Frame, error) {
	if b.Channels != 1 {
		return nil, usblerr.New(usblerr.InvalidArgument, "fft.ConvFull",
			fmt.Errorf("kernel must be single-channel, got %d channels", b.Channels))
	}
	if len(b.Data[0]) == 0 {
		return nil, usblerr.New(usblerr.InvalidArgument, "fft.ConvFull", fmt.Errorf("empty kernel"))
	}

	m := a.Length + b.Length - 1
	kernel := Forward(zeroPad(RealToComplex(b.Data[0]), m))

	out := frame.New(a.Channels, m)
	for c := 0; c < a.Channels; c++ {
		sig := Forward(zeroPad(RealToComplex(a.Data[c]), m))
		for i := range sig {
			sig[i] *= kernel[i]
		}
		res := Real(Inverse(sig))
		copy(out.Data[c], res)
	}
	return out, nil
}

// ConvValid computes the "valid" region of the convolution of every channel
// of a against single-channel kernel b: the full convolution trimmed to the
// indices where the kernel fully overlaps the signal.
// It fails with usblerr.InvalidArgument if len(a) < len(b) or len(b) == 0.
func ConvValid(a *frame.Frame, b *frame.Frame) (*frame.Frame, error) {
	if b.Channels != 1 {
		return nil, usblerr.New(usblerr.InvalidArgument, "fft.ConvValid",
			fmt.Errorf("kernel must be single-channel, got %d channels", b.Channels))
	}
	if b.Length == 0 {
		return nil, usblerr.New(usblerr.InvalidArgument, "fft.ConvValid", fmt.Errorf("empty kernel"))
	}
	if a.Length < b.Length {
		return nil, usblerr.New(usblerr.InvalidArgument, "fft.ConvValid",
			fmt.Errorf("signal length %d shorter than kernel length %d", a.Length, b.Length))
	}

	full, err := ConvFull(a, b)
	if err != nil {
		return nil, err
	}

	start := b.Length - 1
	validLen := a.Length - b.Length + 1
	out := frame.New(a.Channels, validLen)
	for c := 0; c < a.Channels; c++ {
		copy(out.Data[c], full.Data[c][start:start+validLen])
	}
	return out, nil
}

func zeroPad(x []complex128, n int) []complex128 {
	out := make([]complex128, n)
	copy(out, x)
	return out
}
