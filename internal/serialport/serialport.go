// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package serialport opens a Linux serial device in raw 8N1 mode at a
// configured baud rate, shared by the AGC worker (DAC link) and the
// serial fix emitter (position-fix link). It is a thin wrapper over
// github.com/daedaluz/goserial.
package serialport

import (
	"fmt"
	"time"

	serial "github.com/daedaluz/goserial"
)

// Port is an opened, raw-mode serial device.
type Port struct {
	p *serial.Port
}

// Open opens name (e.g. "/dev/ttyUSB0") in raw 8N1 mode at the given baud
// rate, with reads bounded by readTimeout.
func Open(name string, baud uint32, readTimeout time.Duration) (*Port, error) {
	opts := serial.NewOptions().SetReadTimeout(readTimeout)
	raw, err := serial.Open(name, opts)
	if err != nil {
		return nil, fmt.Errorf("serialport: open %s: %w", name, err)
	}

	attrs, err := raw.GetAttr2()
	if err != nil {
		raw.Close()
		return nil, fmt.Errorf("serialport: get attrs %s: %w", name, err)
	}
	attrs.MakeRaw()
	attrs.SetCustomSpeed(baud)
	if err := raw.SetAttr2(serial.TCSANOW, attrs); err != nil {
		raw.Close()
		return nil, fmt.Errorf("serialport: set attrs %s: %w", name, err)
	}

	return &Port{p: raw}, nil
}

// Write writes data to the port.
func (p *Port) Write(data []byte) (int, error) {
	return p.p.Write(data)
}

// Read reads into data, bounded by the configured read timeout.
func (p *Port) Read(data []byte) (int, error) {
	return p.p.Read(data)
}

// Flush waits for all written data to be transmitted.
func (p *Port) Flush() error {
	return p.p.Drain()
}

// Close closes the underlying device.
func (p *Port) Close() error {
	return p.p.Close()
}
