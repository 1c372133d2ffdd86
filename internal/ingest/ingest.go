// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ingest adapts a daqapi.Device's hardware-triggered scan events
// into channel frames published to the pipeline's queues. The ingest owns
// the device handle, the raw scan buffer, and the event registration;
// teardown disables events, stops the scan, and disconnects, in that
// order. The device callback must copy out of the raw buffer before
// returning and does no DSP of its own.
package ingest

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/subocean/usbl/internal/daqapi"
	"github.com/subocean/usbl/internal/frame"
	"github.com/subocean/usbl/internal/queue"
	"github.com/subocean/usbl/internal/usblerr"
)

// Logger is compatible with the standard library logger.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Ingest owns a DAQ device handle and its raw scan buffer for the
// lifetime of one hardware-triggered acquisition. DSPQueue must be set;
// SaveQueue and NetQueue are optional (nil disables that consumer).
type Ingest struct {
	Device daqapi.Device
	Handle daqapi.Handle
	Info   daqapi.ScanInfo
	Log    Logger

	DSPQueue  *queue.Queue[*frame.Frame]
	SaveQueue *queue.Queue[*frame.Frame]
	NetQueue  *queue.Queue[*frame.Frame]

	mu      sync.Mutex
	buf     []float64
	lastErr error
	fatal   chan struct{}
}

// Run arms the scan and blocks until ctx is canceled or the device
// reports a fatal scan error, tearing the device down on either path.
func (in *Ingest) Run(ctx context.Context) error {
	in.fatal = make(chan struct{})

	n := in.Info.NumChannels() * in.Info.SamplesPerChannel
	in.mu.Lock()
	in.buf = sentinelBuffer(n)
	in.mu.Unlock()

	if err := in.Device.EnableEvent(in.Handle, in.Info.EventMask); err != nil {
		return usblerr.New(usblerr.DeviceUnsupported, "ingest.Run", err)
	}
	if err := in.Device.StartScan(in.Handle, in.Info, in.currentBuf(), in.onEvent); err != nil {
		in.Device.DisableEvent(in.Handle)
		return usblerr.New(usblerr.DeviceAbsent, "ingest.Run", err)
	}

	select {
	case <-ctx.Done():
	case <-in.fatal:
	}

	in.teardown()

	in.mu.Lock()
	err := in.lastErr
	in.mu.Unlock()
	return err
}

func (in *Ingest) teardown() {
	if err := in.Device.DisableEvent(in.Handle); err != nil && in.Log != nil {
		in.Log.Printf("ingest: disable event: %v", err)
	}
	if err := in.Device.StopScan(in.Handle); err != nil && in.Log != nil {
		in.Log.Printf("ingest: stop scan: %v", err)
	}
	if err := in.Device.Disconnect(in.Handle); err != nil && in.Log != nil {
		in.Log.Printf("ingest: disconnect: %v", err)
	}
}

func (in *Ingest) currentBuf() []float64 {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.buf
}

// onEvent is invoked by the device, possibly on a driver-owned callback
// thread. It never blocks except while copying data into the pipeline's
// queues.
func (in *Ingest) onEvent(ev daqapi.Event, raw []float64, errCode int32) {
	switch ev {
	case daqapi.EventDataAvailable:
		in.handleDataAvailable(raw)
	case daqapi.EventInputScanError:
		in.handleScanError(errCode)
	case daqapi.EventEndOfInputScan:
		in.rearm()
	}
}

func (in *Ingest) handleDataAvailable(raw []float64) {
	if !bufferComplete(raw) {
		if in.Log != nil {
			in.Log.Printf("ingest: %v", usblerr.New(usblerr.BufferIncomplete, "ingest.handleDataAvailable",
				fmt.Errorf("sentinel NaN remains in raw scan buffer")))
		}
		return
	}

	c := in.Info.NumChannels()
	n := in.Info.SamplesPerChannel
	f := frame.New(c, n)
	for i := 0; i < c; i++ {
		for j := 0; j < n; j++ {
			f.Data[i][j] = raw[i+j*c]
		}
	}

	if in.DSPQueue != nil {
		in.DSPQueue.Push(f.Clone())
	}
	if in.SaveQueue != nil {
		in.SaveQueue.Push(f.Clone())
	}
	if in.NetQueue != nil {
		in.NetQueue.Push(f.Clone())
	}

	resetSentinel(raw)
}

func (in *Ingest) handleScanError(errCode int32) {
	in.mu.Lock()
	in.lastErr = usblerr.New(usblerr.DeviceAbsent, "ingest.handleScanError",
		fmt.Errorf("vendor scan error code %d", errCode))
	in.mu.Unlock()

	if in.Log != nil {
		in.Log.Printf("ingest: fatal scan error, code %d", errCode)
	}
	select {
	case <-in.fatal:
	default:
		close(in.fatal)
	}
}

// rearm handles the platform variant where the device cannot self-rearm
// after one scan completes: it reallocates the raw buffer and resubmits
// an identical scan.
func (in *Ingest) rearm() {
	n := in.Info.NumChannels() * in.Info.SamplesPerChannel

	in.mu.Lock()
	in.buf = sentinelBuffer(n)
	buf := in.buf
	in.mu.Unlock()

	if err := in.Device.StartScan(in.Handle, in.Info, buf, in.onEvent); err != nil {
		in.mu.Lock()
		in.lastErr = usblerr.New(usblerr.DeviceAbsent, "ingest.rearm", err)
		in.mu.Unlock()
		if in.Log != nil {
			in.Log.Printf("ingest: rearm failed: %v", err)
		}
		select {
		case <-in.fatal:
		default:
			close(in.fatal)
		}
	}
}

func sentinelBuffer(n int) []float64 {
	buf := make([]float64, n)
	resetSentinel(buf)
	return buf
}

func resetSentinel(buf []float64) {
	for i := range buf {
		buf[i] = math.NaN()
	}
}

func bufferComplete(buf []float64) bool {
	for _, v := range buf {
		if math.IsNaN(v) {
			return false
		}
	}
	return true
}
