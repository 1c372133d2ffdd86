// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package usblerr defines the error kinds the USBL core recognizes, so
// call sites can switch on the category of a failure without parsing
// message text.
package usblerr

import "fmt"

// Kind identifies one of the error categories from the system's error
// handling design. Lifecycle kinds (Config, DeviceAbsent,
// DeviceUnsupported) are fatal to the process; the rest are worker-local
// and are logged without stopping the owning loop.
type Kind int

const (
	// Unknown is the zero value and should never be produced deliberately.
	Unknown Kind = iota
	// Config indicates a missing or malformed configuration document.
	Config
	// DeviceAbsent indicates no DAQ device could be found or opened.
	DeviceAbsent
	// DeviceUnsupported indicates the DAQ device lacks a required
	// capability (AI, pacer, input mode, trigger type).
	DeviceUnsupported
	// BufferIncomplete indicates ingest observed a sentinel value in the
	// raw scan buffer; the scan must be skipped, not published.
	BufferIncomplete
	// InvalidArgument indicates a dimension mismatch inside FFT,
	// convolution, or frame trimming.
	InvalidArgument
	// ProtocolMismatch indicates a DAC echo differed from the command sent.
	ProtocolMismatch
	// PeerLost indicates a TCP send failure, missed heartbeat, or
	// explicit peer close.
	PeerLost
	// TransientIO indicates a serial write returned EAGAIN, EWOULDBLOCK,
	// or EINTR and is eligible for retry.
	TransientIO
)

func (k Kind) String() string {
	switch k {
	case Config:
		return "CONFIG_INVALID"
	case DeviceAbsent:
		return "DEVICE_ABSENT"
	case DeviceUnsupported:
		return "DEVICE_UNSUPPORTED"
	case BufferIncomplete:
		return "BUFFER_INCOMPLETE"
	case InvalidArgument:
		return "INVALID_ARGUMENT"
	case ProtocolMismatch:
		return "PROTOCOL_MISMATCH"
	case PeerLost:
		return "PEER_LOST"
	case TransientIO:
		return "TRANSIENT_IO"
	default:
		return "UNKNOWN"
	}
}

// Error wraps an underlying cause with one of the recognized Kind values.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error with the given kind, operation label, and cause.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	return e.Kind == kind
}
