// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package parse

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseFrequency parses a frequency value specified as a command-line
// argument. For convenience, valid arguments can have a suffix of k, K,
// m, M, g, or G to indicate the value is in kHz, MHz, or GHz
// respectively (e.g. 1.42G). Any text before such a suffix must
// represent a valid floating point value as parsed by
// strconv.ParseFloat(). The return value is the parsed frequency in Hz.
func ParseFrequency(arg string) (float64, error) {
	var mult float64 = 1
	arg = strings.ToLower(arg)
	switch {
	case arg == "":
		// do nothing
	case strings.HasSuffix(arg, "k"):
		mult = 1000
		arg = strings.TrimSuffix(arg, "k")
	case strings.HasSuffix(arg, "m"):
		mult = 1000 * 1000
		arg = strings.TrimSuffix(arg, "m")
	case strings.HasSuffix(arg, "g"):
		mult = 1000 * 1000 * 1000
		arg = strings.TrimSuffix(arg, "g")
	}
	freq, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, err
	}
	return freq * mult, nil
}

const RateFlagHelp = `frequency in Hz: DAQ Sample Rate
Overrides the configuration file's daq.sampleRate and, with it, the
signal-process reference frequency, which must stay equal to it. A
suffix of k, M, or G may be given (e.g. 100k).`

// ParsePositiveFrequency is a wrapper around ParseFrequency that rejects
// non-positive results, used for the DAQ sample-rate override flag.
func ParsePositiveFrequency(arg string) (float64, error) {
	freq, err := ParseFrequency(arg)
	if err != nil {
		return 0, err
	}
	if freq <= 0 {
		return 0, fmt.Errorf("invalid frequency; got %f Hz, want > 0", freq)
	}
	return freq, nil
}
