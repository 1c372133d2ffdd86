// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package dspworker sequences the per-frame DSP pipeline: TOF, then DOA
// (which depends on TOF's arg-max), then the AGC update rule (which
// depends on TOF's correlation peak), publishing every artifact to
// whichever queues the supervisor bound. The loop is a single goroutine
// with strict per-frame ordering; there is no intra-frame parallelism.
package dspworker

import (
	"context"
	"math"
	"time"

	"github.com/subocean/usbl/internal/agc"
	"github.com/subocean/usbl/internal/dsp/doa"
	"github.com/subocean/usbl/internal/dsp/tof"
	"github.com/subocean/usbl/internal/fixout"
	"github.com/subocean/usbl/internal/frame"
	"github.com/subocean/usbl/internal/queue"
)

// Logger is compatible with the standard library logger.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Config parameterizes one worker's DOA selection. The selection's start
// sample is derived per frame from TOF's result; the rest are fixed.
type Config struct {
	SampleRate      float64
	RefFreq         float64
	ProcessDuration float64
	FreqLo, FreqHi  float64
	AngleStep       float64
	SoundSpeed      float64
	ArrayDiameter   float64
	NumElements     int
}

// Worker runs the sequential TOF -> DOA -> AGC pipeline for each frame
// popped from Input, publishing to whichever output queue fields are
// non-nil. Unbound queues are simply skipped.
type Worker struct {
	Config
	Reference *frame.Frame
	AGC       *agc.State
	Log       Logger
	// Clock returns the current time for stamping published fixes.
	// Defaults to time.Now if nil.
	Clock func() time.Time

	Input *queue.Queue[*frame.Frame]

	FixQueue *queue.Queue[fixout.Fix]
	// PositionSaveQueue carries the same fixes to a persistence consumer,
	// independent of FixQueue's serial emitter: each queue has exactly one
	// reader, so the two consumers get their own copies.
	PositionSaveQueue *queue.Queue[fixout.Fix]
	AGCQueue          *queue.Queue[float64]
	TOFQueue          *queue.Queue[[]float64]
	CorrelationQueue  *queue.Queue[*frame.Frame]
	BeamPatternQueue  *queue.Queue[[]float64]
	SideAmpQueue      *queue.Queue[*frame.Frame]
}

// Run pops frames from Input until ctx is canceled or the queue shuts
// down. The loop never skips a frame under load; it relies on Input
// absorbing bursts.
func (w *Worker) Run(ctx context.Context) {
	clock := w.Clock
	if clock == nil {
		clock = time.Now
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		f, ok := w.Input.WaitPop()
		if !ok {
			return
		}

		if err := w.process(f, clock); err != nil && w.Log != nil {
			w.Log.Printf("dspworker: %v", err)
		}
	}
}

func (w *Worker) process(f *frame.Frame, clock func() time.Time) error {
	tofRes, err := tof.Estimate(f, w.Reference, w.RefFreq)
	if err != nil {
		return err
	}

	minTau := tofRes.Tau[0]
	for _, t := range tofRes.Tau[1:] {
		if t < minTau {
			minTau = t
		}
	}
	s0 := int(math.Round(minTau * w.SampleRate))

	doaCfg := doa.Config{
		StartSample:   s0,
		Duration:      w.ProcessDuration,
		SampleRate:    w.SampleRate,
		FreqLo:        w.FreqLo,
		FreqHi:        w.FreqHi,
		AngleStep:     w.AngleStep,
		SoundSpeed:    w.SoundSpeed,
		ArrayDiameter: w.ArrayDiameter,
		NumElements:   w.NumElements,
	}
	sel, err := doa.Select(f, s0, doaCfg.Duration, doaCfg.SampleRate)
	if err != nil {
		return err
	}
	doaRes, err := doa.Estimate(sel, doaCfg)
	if err != nil {
		return err
	}

	peak := peakMagnitude(tofRes.K)
	gain := w.AGC.Update(peak)

	fix := fixout.Fix{
		Time: float64(clock().UnixNano()) / 1e9,
		TOF:  minTau,
		DOA:  doaRes.DOADeg,
	}

	if w.FixQueue != nil {
		w.FixQueue.Push(fix)
	}
	if w.PositionSaveQueue != nil {
		w.PositionSaveQueue.Push(fix)
	}
	if w.AGCQueue != nil {
		w.AGCQueue.Push(gain)
	}
	if w.TOFQueue != nil {
		w.TOFQueue.Push(append([]float64(nil), tofRes.Tau...))
	}
	if w.CorrelationQueue != nil {
		w.CorrelationQueue.Push(tofRes.K.Clone())
	}
	if w.BeamPatternQueue != nil {
		w.BeamPatternQueue.Push(append([]float64(nil), doaRes.BeamPower...))
	}
	if w.SideAmpQueue != nil {
		w.SideAmpQueue.Push(doaRes.SideAmpSpectrum.Clone())
	}

	return nil
}

func peakMagnitude(k *frame.Frame) float64 {
	peak := math.Inf(-1)
	for _, row := range k.Data {
		for _, v := range row {
			if m := math.Abs(v); m > peak {
				peak = m
			}
		}
	}
	return peak
}
