// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package daqapi

// OutputDevice is the DAQ's analog-output scan contract used by transmit
// mode. It models the minimal calls cmd/usbltx needs and leaves
// everything else to a site-supplied vendor binding, the same way Device
// leaves the input side to one.
type OutputDevice interface {
	// Inventory enumerates connected devices the vendor driver can see.
	Inventory() ([]Handle, error)

	// Connect opens a handle to the given device for exclusive use.
	Connect(h Handle) error

	// Disconnect releases a previously connected handle.
	Disconnect(h Handle) error

	// HasAnalogOutput reports whether h supports analog output scanning.
	HasAnalogOutput(h Handle) (bool, error)

	// WriteOutputScan drives samples (interleaved across [lowChan,
	// highChan]) out of h at rate, blocking until the scan completes.
	WriteOutputScan(h Handle, lowChan, highChan int, rate float64, samples []float64) error
}

// NullOutputDevice is an OutputDevice that records the most recent scan it
// was asked to write but performs no hardware I/O, for the same reason
// NullDevice stands in for Device: the vendor binding is out of scope, and
// cmd/usbltx needs a concrete type to link against.
type NullOutputDevice struct {
	LowChan, HighChan int
	Rate              float64
	Samples           []float64
}

var _ OutputDevice = (*NullOutputDevice)(nil)

func (d *NullOutputDevice) Inventory() ([]Handle, error)         { return []Handle{0}, nil }
func (d *NullOutputDevice) Connect(Handle) error                 { return nil }
func (d *NullOutputDevice) Disconnect(Handle) error              { return nil }
func (d *NullOutputDevice) HasAnalogOutput(Handle) (bool, error) { return true, nil }

func (d *NullOutputDevice) WriteOutputScan(_ Handle, lowChan, highChan int, rate float64, samples []float64) error {
	d.LowChan, d.HighChan, d.Rate = lowChan, highChan, rate
	d.Samples = append([]float64(nil), samples...)
	return nil
}
