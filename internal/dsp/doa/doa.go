// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package doa implements the conventional beamformer (CBF) direction-of-
// arrival estimator: a channel-FFT plus steering-vector sum over a
// selected frequency band and circular element geometry.
package doa

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/subocean/usbl/internal/dsp/fft"
	"github.com/subocean/usbl/internal/frame"
	"github.com/subocean/usbl/internal/usblerr"
)

// Config parameterizes one DOA estimation.
type Config struct {
	// StartSample (s0) is the first sample index of the selection window.
	StartSample int
	// Duration (D) is the selection duration in seconds.
	Duration float64
	// SampleRate (f_s) is the DAQ sampling rate in Hz.
	SampleRate float64
	// FreqLo, FreqHi bound the frequency band searched, in Hz.
	FreqLo, FreqHi float64
	// AngleStep (delta-theta) is the angular sweep step, in degrees.
	AngleStep float64
	// SoundSpeed (c) is the propagation speed, in meters/second.
	SoundSpeed float64
	// ArrayDiameter (d) is the circular array diameter, in meters.
	ArrayDiameter float64
	// NumElements (Ce) is the number of array elements.
	NumElements int
}

// Result holds the estimated direction of arrival and the published
// artifacts derived along the way.
type Result struct {
	// DOADeg is the estimated azimuth in degrees, in [-180, 180).
	DOADeg float64
	// BeamPower is the aggregated beam power per candidate angle, in the
	// same order as the angle sweep (lowest angle first).
	BeamPower []float64
	// Angles holds the candidate angles, in degrees, matching BeamPower
	// index-for-index.
	Angles []float64
	// SideAmpSpectrum is the one-sided amplitude spectrum artifact: row 0
	// is the bin frequencies, rows 1..NumElements are each channel's
	// one-sided amplitude spectrum.
	SideAmpSpectrum *frame.Frame
}

// Select trims s to the window [s0, s0+L-1] where L = round(D*f_s).
func Select(s *frame.Frame, startSample int, duration, sampleRate float64) (*frame.Frame, error) {
	l := int(math.Round(duration * sampleRate))
	if l <= 0 {
		return nil, usblerr.New(usblerr.InvalidArgument, "doa.Select", fmt.Errorf("selection length must be positive, got %d", l))
	}
	if startSample < 0 || startSample+l > s.Length {
		return nil, usblerr.New(usblerr.InvalidArgument, "doa.Select",
			fmt.Errorf("selection [%d,%d) out of range for frame length %d", startSample, startSample+l, s.Length))
	}
	out := frame.New(s.Channels, l)
	for c := range s.Data {
		copy(out.Data[c], s.Data[c][startSample:startSample+l])
	}
	return out, nil
}

// Estimate runs the full CBF pipeline (per-channel spectrum, steering
// sum, band aggregation) on the selected window sel, which must have
// exactly cfg.NumElements channels.
func Estimate(sel *frame.Frame, cfg Config) (*Result, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	if sel.Channels != cfg.NumElements {
		return nil, usblerr.New(usblerr.InvalidArgument, "doa.Estimate",
			fmt.Errorf("selection has %d channels, want %d (NumElements)", sel.Channels, cfg.NumElements))
	}

	l := sel.Length
	spectrum := make([][]complex128, cfg.NumElements)
	for c := 0; c < cfg.NumElements; c++ {
		x := fft.Forward(fft.RealToComplex(sel.Data[c]))
		for i := range x {
			x[i] /= complex(float64(l), 0)
		}
		spectrum[c] = x
	}

	sideAmp := buildSideAmpSpectrum(spectrum, l, cfg.SampleRate)

	elemX, elemY := geometry(cfg.NumElements, cfg.ArrayDiameter)

	kLo := int(math.Round(cfg.FreqLo * float64(l) / cfg.SampleRate))
	kHi := int(math.Round(cfg.FreqHi * float64(l) / cfg.SampleRate))
	if kLo < 0 {
		kLo = 0
	}
	if kHi >= l {
		kHi = l - 1
	}

	angles := sweepAngles(cfg.AngleStep)
	beamPower := make([]float64, len(angles))

	for ai, thetaDeg := range angles {
		theta := thetaDeg * math.Pi / 180
		cosT, sinT := math.Cos(theta), math.Sin(theta)

		projections := make([]float64, cfg.NumElements)
		for i := 0; i < cfg.NumElements; i++ {
			projections[i] = elemX[i]*cosT + elemY[i]*sinT
		}

		var power float64
		for k := kLo; k <= kHi; k++ {
			fk := float64(k) * cfg.SampleRate / float64(l)
			var b complex128
			for i := 0; i < cfg.NumElements; i++ {
				angle := 2 * math.Pi * fk * projections[i] / cfg.SoundSpeed
				e := cmplx.Rect(1/float64(cfg.NumElements), angle)
				b += cmplx.Conj(spectrum[i][k]) * e
			}
			power += real(b)*real(b) + imag(b)*imag(b)
		}
		beamPower[ai] = power
	}

	best := 0
	for i := 1; i < len(beamPower); i++ {
		if beamPower[i] > beamPower[best] {
			best = i
		}
	}

	return &Result{
		DOADeg:          angles[best],
		BeamPower:       beamPower,
		Angles:          angles,
		SideAmpSpectrum: sideAmp,
	}, nil
}

// geometry places NumElements elements uniformly on a circle of radius
// d/2.
func geometry(numElements int, diameter float64) (x, y []float64) {
	x = make([]float64, numElements)
	y = make([]float64, numElements)
	r := diameter / 2
	for i := 0; i < numElements; i++ {
		angle := 2 * math.Pi * float64(i) / float64(numElements)
		x[i] = r * math.Cos(angle)
		y[i] = r * math.Sin(angle)
	}
	return x, y
}

// sweepAngles returns the candidate directions
// {-180+step, ..., +180-step} with the given spacing.
func sweepAngles(step float64) []float64 {
	n := int(math.Round(360/step)) - 1
	if n < 1 {
		n = 1
	}
	angles := make([]float64, n)
	for i := range angles {
		angles[i] = -180 + float64(i+1)*step
	}
	return angles
}

// buildSideAmpSpectrum produces the (NumElements+1) x floor(L/2) artifact:
// row 0 is bin frequencies, the rest are each channel's one-sided
// amplitude spectrum, doubled except at DC and Nyquist.
func buildSideAmpSpectrum(spectrum [][]complex128, l int, sampleRate float64) *frame.Frame {
	half := l / 2
	out := frame.New(len(spectrum)+1, half)
	for k := 0; k < half; k++ {
		out.Data[0][k] = float64(k) * sampleRate / float64(l)
	}
	for c, x := range spectrum {
		row := out.Data[c+1]
		for k := 0; k < half; k++ {
			amp := cmplx.Abs(x[k])
			// Bins are doubled except DC; the Nyquist bin (index l/2)
			// falls outside the floor(l/2) columns kept here.
			if k != 0 {
				amp *= 2
			}
			row[k] = amp
		}
	}
	return out
}
