// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package agc

import "testing"

func TestFormatCommandDecimalDigitsAsHexByte(t *testing.T) {
	// 12.63 -> whole="12", frac="63", each parsed as hex, not raw binary:
	// the wire byte for "12" is 0x12 (18 decimal), not byte(12) (0x0C).
	got := FormatCommand(12.63)
	want := [CommandLen]byte{0x5A, 0x01, 0x12, 0x63, 0xA5}
	if got != want {
		t.Fatalf("FormatCommand(12.63) = % X, want % X", got, want)
	}
}

func TestFormatCommandZero(t *testing.T) {
	got := FormatCommand(0.0)
	want := [CommandLen]byte{0x5A, 0x01, 0x00, 0x00, 0xA5}
	if got != want {
		t.Fatalf("FormatCommand(0.0) = % X, want % X", got, want)
	}
}

func TestFormatCommandClampsToNinetyNine(t *testing.T) {
	got := FormatCommand(199.999)
	want := [CommandLen]byte{0x5A, 0x01, 0x99, 0x99, 0xA5}
	if got != want {
		t.Fatalf("FormatCommand(199.999) = % X, want % X", got, want)
	}
}
