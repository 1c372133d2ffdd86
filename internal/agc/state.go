// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package agc implements the Automatic Gain Control state and update rule
// applied by the DSP worker, and the AGC worker that drives the DAC over
// a serial link.
package agc

// State holds the AGC configuration and the current gain voltage.
// Invariant: after every Update call, 0 <= Gain <= GMax.
type State struct {
	Gain    float64
	Step    float64
	PMin    float64
	PMax    float64
	Initial float64
	GMin    float64
	GMax    float64
}

// NewState creates a State initialized to its configured initial gain.
func NewState(step, pMin, pMax, initial, gMin, gMax float64) *State {
	return &State{
		Gain:    initial,
		Step:    step,
		PMin:    pMin,
		PMax:    pMax,
		Initial: initial,
		GMin:    gMin,
		GMax:    gMax,
	}
}

// Update steps the gain down when the peak correlation magnitude
// observed this frame exceeds PMax and up when it falls below PMin,
// returning the new gain. The result is always clamped to [0, GMax].
func (s *State) Update(peak float64) float64 {
	switch {
	case peak > s.PMax:
		s.Gain -= s.Step
	case peak < s.PMin:
		s.Gain += s.Step
	}
	if s.Gain < 0 {
		s.Gain = 0
	}
	if s.Gain > s.GMax {
		s.Gain = s.GMax
	}
	return s.Gain
}
