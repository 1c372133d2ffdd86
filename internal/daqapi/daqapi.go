// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package daqapi defines the vendor DAQ device contract consumed by
// internal/ingest: one method per vendor call, and event callbacks that
// must copy out of vendor-owned memory rather than aliasing it.
package daqapi

// Handle identifies a connected device instance.
type Handle uint32

// Range is an inclusive channel span [Low, High].
type Range struct {
	Low  int
	High int
}

// Event is a device event delivered to a registered callback.
type Event int32

const (
	// EventDataAvailable fires when a hardware-triggered scan completes
	// and the raw buffer is fully written.
	EventDataAvailable Event = iota
	// EventInputScanError fires when the device reports a fatal scan
	// error; the ingest treats this as terminal.
	EventInputScanError
	// EventEndOfInputScan fires on platforms that cannot self-rearm a
	// scan; the ingest must resubmit a new one.
	EventEndOfInputScan
)

// ScanInfo enumerates the parameters of one hardware-triggered scan.
type ScanInfo struct {
	LowChan           int
	HighChan          int
	SamplesPerChannel int
	SampleRate        float64
	Duration          float64
	Interval          float64
	ScanFlags         uint32
	ScanOptions       uint32
	EventMask         uint32
}

// NumChannels reports the number of channels spanned by [LowChan, HighChan].
func (s ScanInfo) NumChannels() int {
	return s.HighChan - s.LowChan + 1
}

// EventCallback is invoked by the device (on a driver-owned thread) when
// one of the Event values occurs. buf is the raw interleaved sample buffer
// for EventDataAvailable and is only valid for the duration of the call;
// implementations must copy it before returning. errCode is meaningful
// only for EventInputScanError.
type EventCallback func(ev Event, buf []float64, errCode int32)

// Device is the vendor DAQ contract: inventory, connection management,
// capability queries, and hardware-triggered analog scanning with event
// delivery. A real implementation binds these to the vendor's C SDK via
// cgo; internal/ingest is written against this interface so it can be
// driven by a test fake independent of any vendor library.
type Device interface {
	// Inventory enumerates connected devices the vendor driver can see.
	Inventory() ([]Handle, error)

	// Connect opens a handle to the given device for exclusive use.
	Connect(h Handle) error

	// Disconnect releases a previously connected handle.
	Disconnect(h Handle) error

	// HasAnalogInput reports whether h supports analog input scanning.
	HasAnalogInput(h Handle) (bool, error)

	// HasPacer reports whether h has a hardware pacer clock, required for
	// a rate-accurate triggered scan.
	HasPacer(h Handle) (bool, error)

	// SupportedTriggerTypes enumerates the trigger modes h supports.
	SupportedTriggerTypes(h Handle) ([]uint32, error)

	// StartScan arms a hardware-triggered analog input scan described by
	// info, delivering samples into buf as the raw interleaved scan
	// buffer. Completion and error conditions are delivered to cb.
	StartScan(h Handle, info ScanInfo, buf []float64, cb EventCallback) error

	// StopScan halts any scan in progress on h.
	StopScan(h Handle) error

	// EnableEvent registers interest in events selected by mask.
	EnableEvent(h Handle, mask uint32) error

	// DisableEvent unregisters event interest on h.
	DisableEvent(h Handle) error
}
