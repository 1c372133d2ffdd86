// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package daqapi

import "sync"

// NullDevice is a Device that performs no hardware I/O: StartScan records
// its buffer and callback but never invokes them on its own. This module
// ships no cgo binding for a vendor driver; NullDevice exists only so
// cmd/usblrx links and runs against a concrete Device while a site
// supplies its own vendor implementation of this interface. Tests and
// demos can also call Deliver directly to drive the pipeline by hand.
type NullDevice struct {
	mu  sync.Mutex
	buf []float64
	cb  EventCallback
}

var _ Device = (*NullDevice)(nil)

func (d *NullDevice) Inventory() ([]Handle, error) { return []Handle{0}, nil }
func (d *NullDevice) Connect(Handle) error         { return nil }
func (d *NullDevice) Disconnect(Handle) error      { return nil }

func (d *NullDevice) HasAnalogInput(Handle) (bool, error) { return true, nil }
func (d *NullDevice) HasPacer(Handle) (bool, error)       { return true, nil }

func (d *NullDevice) SupportedTriggerTypes(Handle) ([]uint32, error) {
	return []uint32{0}, nil
}

func (d *NullDevice) StartScan(_ Handle, _ ScanInfo, buf []float64, cb EventCallback) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buf = buf
	d.cb = cb
	return nil
}

func (d *NullDevice) StopScan(Handle) error            { return nil }
func (d *NullDevice) EnableEvent(Handle, uint32) error { return nil }
func (d *NullDevice) DisableEvent(Handle) error        { return nil }

// Deliver copies raw into the buffer passed to the most recent StartScan
// and invokes the registered callback with EventDataAvailable, as a real
// device's callback thread would after completing a hardware-triggered
// scan.
func (d *NullDevice) Deliver(raw []float64) {
	d.mu.Lock()
	buf, cb := d.buf, d.cb
	d.mu.Unlock()
	if cb == nil {
		return
	}
	copy(buf, raw)
	cb(EventDataAvailable, buf, 0)
}
