// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/subocean/usbl/internal/daqapi"
	"github.com/subocean/usbl/internal/frame"
	"github.com/subocean/usbl/internal/queue"
)

type fakeDevice struct {
	started  chan struct{}
	buf      []float64
	cb       daqapi.EventCallback
	stopped  bool
	disabled bool
	discon   bool
}

func (d *fakeDevice) Inventory() ([]daqapi.Handle, error)        { return []daqapi.Handle{1}, nil }
func (d *fakeDevice) Connect(daqapi.Handle) error                { return nil }
func (d *fakeDevice) Disconnect(daqapi.Handle) error             { d.discon = true; return nil }
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

func (d *fakeDevice) StopScan(daqapi.Handle) error            { d.stopped = true; return nil }
func (d *fakeDevice) EnableEvent(daqapi.Handle, uint32) error { return nil }
func (d *fakeDevice) DisableEvent(daqapi.Handle) error        { d.disabled = true; return nil }

func TestIngestDeinterleavesAndPublishes(t *testing.T) {
	dev := &fakeDevice{started: make(chan struct{}, 1)}
	dsp := queue.New[*frame.Frame]()
	save := queue.New[*frame.Frame]()

	in := &Ingest{
		Device:    dev,
		Info:      daqapi.ScanInfo{LowChan: 0, HighChan: 1, SamplesPerChannel: 3},
		DSPQueue:  dsp,
		SaveQueue: save,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- in.Run(ctx) }()

	<-dev.started

	// channel 0: 1, 2, 3 ; channel 1: 10, 20, 30 ; interleaved C=2
	copy(dev.buf, []float64{1, 10, 2, 20, 3, 30})
	dev.cb(daqapi.EventDataAvailable, dev.buf, 0)

	f, ok := dsp.WaitPop()
	if !ok {
		t.Fatal("dsp queue produced nothing")
	}
	if f.Data[0][0] != 1 || f.Data[0][2] != 3 || f.Data[1][1] != 20 {
		t.Fatalf("unexpected deinterleave: %+v", f.Data)
	}
	if _, ok := save.WaitPop(); !ok {
		t.Fatal("save queue produced nothing")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if !dev.disabled || !dev.stopped || !dev.discon {
		t.Fatalf("teardown incomplete: disabled=%v stopped=%v disconnected=%v", dev.disabled, dev.stopped, dev.discon)
	}
}

func TestIngestRejectsIncompleteBuffer(t *testing.T) {
	dev := &fakeDevice{started: make(chan struct{}, 1)}
	dsp := queue.New[*frame.Frame]()

	in := &Ingest{
		Device:   dev,
		Info:     daqapi.ScanInfo{LowChan: 0, HighChan: 0, SamplesPerChannel: 2},
		DSPQueue: dsp,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go in.Run(ctx)
	<-dev.started

	// leave the sentinel NaN in place: buffer never written.
	dev.cb(daqapi.EventDataAvailable, dev.buf, 0)

	if !dsp.Empty() {
		t.Fatal("expected no frame published for an incomplete buffer")
	}
}

func TestIngestScanErrorIsFatal(t *testing.T) {
	dev := &fakeDevice{started: make(chan struct{}, 1)}
	in := &Ingest{
		Device: dev,
		Info:   daqapi.ScanInfo{LowChan: 0, HighChan: 0, SamplesPerChannel: 1},
	}

	done := make(chan error, 1)
	go func() { done <- in.Run(context.Background()) }()
	<-dev.started

	dev.cb(daqapi.EventInputScanError, nil, 42)

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected a fatal scan error to be returned")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after a fatal scan error")
	}
}
