// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package netstream

import (
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/subocean/usbl/internal/frame"
)

func TestEncodeDataPacketLength(t *testing.T) {
	f := frame.New(2, 3)
	f.Data[0] = []float64{1, 2, 3}
	f.Data[1] = []float64{4, 5, 6}

	buf, err := EncodeData(f)
	if err != nil {
		t.Fatalf("EncodeData: %v", err)
	}

	want := HeaderLen + 2*3*8 + CRCLen
	if len(buf) != want || want != 69 {
		t.Fatalf("packet length = %d, want 69", len(buf))
	}
	if got := binary.LittleEndian.Uint32(buf[0:]); got != uint32(want) {
		t.Fatalf("packetLength field = %d, want %d", got, want)
	}
	payload := buf[HeaderLen : HeaderLen+48]
	if got := binary.LittleEndian.Uint32(buf[len(buf)-CRCLen:]); got != crc32.ChecksumIEEE(payload) {
		t.Fatalf("crc field = %#x, want %#x", got, crc32.ChecksumIEEE(payload))
	}
}

func TestEncodeDecodeDataRoundTrip(t *testing.T) {
	f := frame.New(4, 8)
	for c := 0; c < f.Channels; c++ {
		for n := 0; n < f.Length; n++ {
			f.Data[c][n] = float64(c*10+n) * 0.5
		}
	}

	buf, err := EncodeData(f)
	if err != nil {
		t.Fatalf("EncodeData: %v", err)
	}

	got, h, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if h.SignalType != SignalData || h.ChannelNum != 4 || h.SignalLength != 8 {
		t.Fatalf("unexpected header: %+v", h)
	}
	for c := 0; c < f.Channels; c++ {
		for n := 0; n < f.Length; n++ {
			if got.Data[c][n] != f.Data[c][n] {
				t.Fatalf("sample [%d][%d] = %v, want %v", c, n, got.Data[c][n], f.Data[c][n])
			}
		}
	}
}

func TestDecodeRejectsCorruptedCRC(t *testing.T) {
	f := frame.New(1, 2)
	f.Data[0][0] = 1
	f.Data[0][1] = 2
	buf, err := EncodeData(f)
	if err != nil {
		t.Fatalf("EncodeData: %v", err)
	}
	buf[HeaderLen] ^= 0xFF

	if _, _, err := Decode(buf); err == nil {
		t.Fatal("expected CRC mismatch error, got nil")
	}
}

func TestEncodeHeartbeatFixedLength(t *testing.T) {
	buf := EncodeHeartbeat(SignalHeartbeat)
	if len(buf) != 21 {
		t.Fatalf("heartbeat length = %d, want 21", len(buf))
	}
	h, err := DecodeHeader(buf)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if h.SignalType != SignalHeartbeat || h.ChannelNum != 0 || h.SignalLength != 0 {
		t.Fatalf("unexpected heartbeat header: %+v", h)
	}

	ack := EncodeHeartbeat(SignalHeartbeatAck)
	h2, err := DecodeHeader(ack)
	if err != nil {
		t.Fatalf("DecodeHeader(ack): %v", err)
	}
	if h2.SignalType != SignalHeartbeatAck {
		t.Fatalf("ack signal type = %v, want %v", h2.SignalType, SignalHeartbeatAck)
	}
}

func TestDecodeHeaderTooShort(t *testing.T) {
	if _, err := DecodeHeader([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for short buffer")
	}
}
