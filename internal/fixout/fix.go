// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package fixout formats position fixes as NMEA-style checksummed ASCII
// sentences and emits them over a serial link.
package fixout

import (
	"fmt"
	"strings"
)

// Fix is one resolved position fix: wall-clock time in Unix seconds, a
// 3-D position (x/y/z
// are carried for wire compatibility but are not computed by this system,
// which estimates bearing and time-of-flight only), time-of-flight, and
// direction-of-arrival in degrees.
type Fix struct {
	Time float64
	X    float64
	Y    float64
	Z    float64
	TOF  float64
	DOA  float64
}

// Format renders f as the ASCII sentence
// "$USBL,,T,X,Y,Z,F,D*HH\r\n" with T/X/Y/Z/F as %012.6f and D as %07.3f,
// HH the upper-case hex XOR checksum of every byte between '$' and '*'.
func Format(f Fix) string {
	body := fmt.Sprintf("USBL,,%012.6f,%012.6f,%012.6f,%012.6f,%012.6f,%07.3f",
		f.Time, f.X, f.Y, f.Z, f.TOF, f.DOA)

	var sum byte
	for i := 0; i < len(body); i++ {
		sum ^= body[i]
	}

	var sb strings.Builder
	sb.WriteByte('$')
	sb.WriteString(body)
	sb.WriteByte('*')
	fmt.Fprintf(&sb, "%02X", sum)
	sb.WriteString("\r\n")
	return sb.String()
}
