// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package agc

import (
	"encoding/hex"
	"fmt"
	"math"
)

// CommandLen is the fixed length of a DAC command frame.
const CommandLen = 5

// FormatCommand builds the 5-byte DAC command for gain voltage g:
// 5A 01 II DD A5. The DAC expects II and DD packed as BCD-style hex: each
// is formatted as a two-decimal-digit string and that string is then
// parsed as a hex byte, so the wire byte for a gain whole-part of 12 is
// 0x12, not byte(12) (0x0C).
func FormatCommand(g float64) [CommandLen]byte {
	whole := int(math.Floor(g))
	if whole > 99 {
		whole = 99
	}
	if whole < 0 {
		whole = 0
	}
	frac := int(math.Floor((g - math.Floor(g)) * 100))
	if frac > 99 {
		frac = 99
	}
	if frac < 0 {
		frac = 0
	}
	return [CommandLen]byte{0x5A, 0x01, decimalDigitsAsHexByte(whole), decimalDigitsAsHexByte(frac), 0xA5}
}

// decimalDigitsAsHexByte formats n (0-99) as a two-digit decimal string and
// parses that string as a hex byte, e.g. 12 -> "12" -> 0x12.
func decimalDigitsAsHexByte(n int) byte {
	b, err := hex.DecodeString(fmt.Sprintf("%02d", n))
	if err != nil {
		// Unreachable: "%02d" of 0-99 is always two ASCII decimal digits,
		// which are always valid hex digits.
		panic(err)
	}
	return b[0]
}
