// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package synth builds the reference waveform and the transmit waveform
// from a typed partial-segment list. Both are built by the same function,
// parameterized by a segment-kind tag.
package synth

import (
	"fmt"
	"math"

	"github.com/subocean/usbl/internal/frame"
	"github.com/subocean/usbl/internal/usblerr"
)

// Kind identifies a segment's waveform shape.
type Kind int

const (
	Sine Kind = iota
	Cosine
	RisingDC
	FallingDC
	Chirp
	Zero
)

// Segment is a tagged-union descriptor for one contiguous piece of a
// synthesized waveform.
type Segment struct {
	Kind       Kind
	SampleRate float64
	FreqStart  float64
	FreqEnd    float64
	Amplitude  float64
	Phase      float64
	Duration   float64
}

func (s Segment) numSamples() int {
	return int(math.Round(s.SampleRate * s.Duration))
}

func (s Segment) validate() error {
	if s.SampleRate <= 0 {
		return fmt.Errorf("sampleRate must be > 0, got %v", s.SampleRate)
	}
	if s.Duration <= 0 {
		return fmt.Errorf("duration must be > 0, got %v", s.Duration)
	}
	if s.Kind == Chirp {
		if s.FreqStart == 0 && s.FreqEnd == 0 {
			return fmt.Errorf("chirp requires freqStart and freqEnd")
		}
	}
	return nil
}

// Build concatenates the per-segment outputs of segs into a single-channel
// Frame. It fails if maxSamples is nonzero and the sum of segment lengths
// exceeds it.
func Build(segs []Segment, maxSamples int) (*frame.Frame, error) {
	total := 0
	for i, s := range segs {
		if err := s.validate(); err != nil {
			return nil, usblerr.New(usblerr.InvalidArgument, "synth.Build", fmt.Errorf("segment %d: %w", i, err))
		}
		total += s.numSamples()
	}
	if maxSamples > 0 && total > maxSamples {
		return nil, usblerr.New(usblerr.InvalidArgument, "synth.Build",
			fmt.Errorf("CAPACITY_EXCEEDED: total length %d exceeds max %d", total, maxSamples))
	}

	out := make([]float64, 0, total)
	for _, s := range segs {
		out = append(out, buildSegment(s)...)
	}
	return frame.Row1D(out), nil
}

func buildSegment(s Segment) []float64 {
	n := s.numSamples()
	x := make([]float64, n)

	switch s.Kind {
	case Sine, Cosine:
		phase := s.Phase
		step := 2 * math.Pi * s.FreqStart / s.SampleRate
		for i := 0; i < n; i++ {
			if s.Kind == Sine {
				x[i] = s.Amplitude / 2 * math.Sin(phase)
			} else {
				x[i] = s.Amplitude / 2 * math.Cos(phase)
			}
			phase = wrapPhase(phase + step)
		}
	case Chirp:
		var k float64
		if n > 1 {
			k = (s.FreqEnd - s.FreqStart) / float64(n-1)
		}
		phase := 2 * math.Pi * s.FreqStart / s.SampleRate
		for i := 0; i < n; i++ {
			f := s.FreqStart + k*float64(i)
			x[i] = s.Amplitude / 2 * math.Sin(phase)
			phase = wrapPhase(phase + 2*math.Pi*f/s.SampleRate)
		}
	case RisingDC:
		for i := range x {
			x[i] = s.Amplitude / 2
		}
	case FallingDC:
		for i := range x {
			x[i] = -s.Amplitude / 2
		}
	case Zero:
		// already zero-filled
	}
	return x
}

// wrapPhase wraps a phase angle to (-pi, pi].
func wrapPhase(p float64) float64 {
	for p > math.Pi {
		p -= 2 * math.Pi
	}
	for p <= -math.Pi {
		p += 2 * math.Pi
	}
	return p
}
