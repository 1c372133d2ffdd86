// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package netstream implements the TCP streaming worker: a single
// listening socket, an application-level heartbeat, and a packed
// little-endian wire codec for channel frames.
package netstream

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"

	"github.com/subocean/usbl/internal/frame"
	"github.com/subocean/usbl/internal/usblerr"
)

// SignalType identifies the kind of frame on the wire.
type SignalType int32

const (
	SignalHeartbeat    SignalType = 0
	SignalData         SignalType = 1
	SignalHeartbeatAck SignalType = 9
)

// HeaderLen is the number of bytes in the fixed part of the header,
// before any payload: packetLength (4), signalType (4), isInit (1),
// channelNum (4), signalLength (4).
const HeaderLen = 17

// CRCLen is the size of the trailing CRC32 field.
const CRCLen = 4

// Header is the fixed packet header preceding every payload.
type Header struct {
	PacketLength int32
	SignalType   SignalType
	IsInit       uint8
	ChannelNum   int32
	SignalLength int32
}

// EncodeHeartbeat builds a zero-payload heartbeat or heartbeat-ack frame.
// packetLength is always 21 for these frames.
func EncodeHeartbeat(signalType SignalType) []byte {
	buf := make([]byte, HeaderLen+CRCLen)
	binary.LittleEndian.PutUint32(buf[0:], uint32(HeaderLen+CRCLen))
	binary.LittleEndian.PutUint32(buf[4:], uint32(signalType))
	buf[8] = 0
	binary.LittleEndian.PutUint32(buf[9:], 0)
	binary.LittleEndian.PutUint32(buf[13:], 0)
	binary.LittleEndian.PutUint32(buf[17:], crc32.ChecksumIEEE(nil))
	return buf
}

// EncodeData serializes a channel frame as a signal-type-1 packet: header,
// row-major payload of float64s, and the CRC32 of the payload bytes only.
func EncodeData(f *frame.Frame) ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	payloadLen := f.Channels * f.Length * 8
	total := HeaderLen + payloadLen + CRCLen
	buf := make([]byte, total)

	binary.LittleEndian.PutUint32(buf[0:], uint32(total))
	binary.LittleEndian.PutUint32(buf[4:], uint32(SignalData))
	buf[8] = 1
	binary.LittleEndian.PutUint32(buf[9:], uint32(f.Channels))
	binary.LittleEndian.PutUint32(buf[13:], uint32(f.Length))

	off := HeaderLen
	for _, row := range f.Data {
		for _, v := range row {
			binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(v))
			off += 8
		}
	}

	crc := crc32.ChecksumIEEE(buf[HeaderLen : HeaderLen+payloadLen])
	binary.LittleEndian.PutUint32(buf[total-CRCLen:], crc)

	return buf, nil
}

// DecodeHeader parses the fixed header portion of buf.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderLen {
		return Header{}, usblerr.New(usblerr.InvalidArgument, "netstream.DecodeHeader",
			fmt.Errorf("buffer too short: %d bytes, want >= %d", len(buf), HeaderLen))
	}
	return Header{
		PacketLength: int32(binary.LittleEndian.Uint32(buf[0:])),
		SignalType:   SignalType(int32(binary.LittleEndian.Uint32(buf[4:]))),
		IsInit:       buf[8],
		ChannelNum:   int32(binary.LittleEndian.Uint32(buf[9:])),
		SignalLength: int32(binary.LittleEndian.Uint32(buf[13:])),
	}, nil
}

// Decode parses a full signal-type-1 packet into a channel frame, verifying
// the CRC32 over the payload bytes.
func Decode(buf []byte) (*frame.Frame, Header, error) {
	h, err := DecodeHeader(buf)
	if err != nil {
		return nil, Header{}, err
	}
	payloadLen := int(h.ChannelNum) * int(h.SignalLength) * 8
	want := HeaderLen + payloadLen + CRCLen
	if len(buf) != want {
		return nil, h, usblerr.New(usblerr.InvalidArgument, "netstream.Decode",
			fmt.Errorf("packet length %d does not match header-implied length %d", len(buf), want))
	}

	gotCRC := binary.LittleEndian.Uint32(buf[want-CRCLen:])
	wantCRC := crc32.ChecksumIEEE(buf[HeaderLen : HeaderLen+payloadLen])
	if gotCRC != wantCRC {
		return nil, h, usblerr.New(usblerr.InvalidArgument, "netstream.Decode",
			fmt.Errorf("CRC mismatch: got %x, want %x", gotCRC, wantCRC))
	}

	f := frame.New(int(h.ChannelNum), int(h.SignalLength))
	off := HeaderLen
	for c := 0; c < f.Channels; c++ {
		for n := 0; n < f.Length; n++ {
			bits := binary.LittleEndian.Uint64(buf[off:])
			f.Data[c][n] = math.Float64frombits(bits)
			off += 8
		}
	}
	return f, h, nil
}
