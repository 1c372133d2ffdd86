// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package supervisor

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/subocean/usbl/internal/agc"
	"github.com/subocean/usbl/internal/daqapi"
	"github.com/subocean/usbl/internal/dspworker"
	"github.com/subocean/usbl/internal/frame"
	"github.com/subocean/usbl/internal/persist"
)

type fakeDevice struct {
	started chan struct{}
	buf     []float64
	cb      daqapi.EventCallback
}

func (d *fakeDevice) Inventory() ([]daqapi.Handle, error)        { return []daqapi.Handle{1}, nil }
func (d *fakeDevice) Connect(daqapi.Handle) error                { return nil }
func (d *fakeDevice) Disconnect(daqapi.Handle) error             { return nil }
func (d *fakeDevice) HasAnalogInput(daqapi.Handle) (bool, error) { return true, nil }
func (d *fakeDevice) HasPacer(daqapi.Handle) (bool, error)       { return true, nil }
func (d *fakeDevice) SupportedTriggerTypes(daqapi.Handle) ([]uint32, error) {
	return []uint32{0}, nil
}

func (d *fakeDevice) StartScan(h daqapi.Handle, info daqapi.ScanInfo, buf []float64, cb daqapi.EventCallback) error {
	d.buf = buf
	d.cb = cb
	if d.started != nil {
		select {
		case d.started <- struct{}{}:
		default:
		}
	}
	return nil
}

func (d *fakeDevice) StopScan(daqapi.Handle) error            { return nil }
func (d *fakeDevice) EnableEvent(daqapi.Handle, uint32) error { return nil }
func (d *fakeDevice) DisableEvent(daqapi.Handle) error        { return nil }

type recordingPort struct{ writes [][]byte }

func (p *recordingPort) Write(b []byte) (int, error) {
	cp := make([]byte, len(b))
	copy(cp, b)
	p.writes = append(p.writes, cp)
	return len(b), nil
}

func (p *recordingPort) Read(b []byte) (int, error) { return 0, nil }

func (p *recordingPort) Flush() error { return nil }

func buildReference() *frame.Frame {
	ref := make([]float64, 64)
	for i := range ref {
		ref[i] = math.Sin(2 * math.Pi * float64(i) / 16)
	}
	return frame.Row1D(ref)
}

// TestSupervisorWiresIngestThroughDSP proves a frame pushed through the
// fake DAQ device flows all the way to a published fix, and that the
// pipeline joins cleanly when its context is canceled.
func TestSupervisorWiresIngestThroughDSP(t *testing.T) {
	dev := &fakeDevice{started: make(chan struct{}, 1)}

	s, err := New(func(s *Supervisor) error {
		s.Device = dev
		s.Handle = 1
		s.ScanInfo = daqapi.ScanInfo{LowChan: 0, HighChan: 3, SamplesPerChannel: 4096}
		s.Reference = buildReference()
		s.DSPConfig = dspworker.Config{
			SampleRate:      100000,
			RefFreq:         100000,
			ProcessDuration: 0.01,
			FreqLo:          1000,
			FreqHi:          10000,
			AngleStep:       15,
			SoundSpeed:      1500,
			ArrayDiameter:   0.1,
			NumElements:     4,
		}
		s.AGCState = agc.NewState(0.1, 0, 100, 1.0, 0, 3.3)
		return nil
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	<-dev.started

	const c, n = 4, 4096
	raw := make([]float64, c*n)
	offsets := []int{100, 300, 250, 400}
	ref := s.Reference.Data[0]
	for ch, off := range offsets {
		for i, v := range ref {
			raw[(off+i)*c+ch] = v
		}
	}
	copy(dev.buf, raw)
	dev.cb(daqapi.EventDataAvailable, dev.buf, 0)

	fix, ok := s.FixQueue.WaitPop()
	if !ok {
		t.Fatal("expected a fix to flow out of the pipeline")
	}
	if fix.TOF <= 0 {
		t.Fatalf("fix.TOF = %v, want > 0", fix.TOF)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

// TestSupervisorDrivesAGCOnSharedDACPort proves a gain target produced by
// dspworker reaches the AGC worker's DAC port when AGC is enabled.
func TestSupervisorDrivesAGCOnSharedDACPort(t *testing.T) {
	port := &recordingPort{}
	s, err := New(func(s *Supervisor) error {
		s.AGCEnabled = true
		s.DACPort = port
		s.AGCState = agc.NewState(0.1, 0, 100, 1.0, 0, 3.3)
		s.DSPConfig = dspworker.Config{SampleRate: 1, RefFreq: 1, NumElements: 1}
		s.Device = &fakeDevice{started: make(chan struct{}, 1)}
		s.ScanInfo = daqapi.ScanInfo{LowChan: 0, HighChan: 0, SamplesPerChannel: 1}
		s.Reference = frame.Row1D([]float64{1})
		return nil
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	s.AGCQueue.Push(2.0)

	deadline := time.After(time.Second)
	for len(port.writes) == 0 {
		select {
		case <-deadline:
			t.Fatal("AGC worker never wrote to the shared DAC port")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	<-done
}

// TestAddPersistWriterBeforeRun proves a persistence consumer attached
// via AddPersistWriter before Run is called receives values pushed onto
// its bound queue once the pipeline starts.
func TestAddPersistWriterBeforeRun(t *testing.T) {
	s, err := New(func(s *Supervisor) error {
		s.Device = &fakeDevice{started: make(chan struct{}, 1)}
		s.ScanInfo = daqapi.ScanInfo{LowChan: 0, HighChan: 0, SamplesPerChannel: 1}
		s.Reference = frame.Row1D([]float64{1})
		s.DSPConfig = dspworker.Config{SampleRate: 1, RefFreq: 1, NumElements: 1}
		s.AGCState = agc.NewState(0.1, 0, 100, 1.0, 0, 3.3)
		return nil
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var captured []float64
	w := &persist.Writer[[]float64]{
		Sink: discardWriter{},
		Mode: persist.Text,
		Rows: func(v []float64) [][]float64 {
			captured = append(captured, v...)
			return [][]float64{v}
		},
	}
	AddPersistWriter(s, w, s.TOFQueue)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	s.TOFQueue.Push([]float64{1, 2, 3})

	deadline := time.After(time.Second)
	for len(captured) == 0 {
		select {
		case <-deadline:
			t.Fatal("persist writer attached via AddPersistWriter never ran")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	<-done
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
