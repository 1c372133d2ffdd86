// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package parse

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/subocean/usbl/internal/config"
)

// FlagSet is the subset of *flag.FlagSet this package's helpers need,
// kept as an interface so callers can pass either the real thing or a
// fake in tests.
type FlagSet interface {
	Var(value flag.Value, name string, usage string)
}

const ModeFlagHelp = `transmit|receive: Work Mode
Overrides the configuration file's workMode. If omitted, the
configuration file's value is used.`

// ParseModeFlag validates a transmit/receive override and returns the
// config.WorkMode it names. An empty string means "no override" and
// returns the zero WorkMode with a nil error.
func ParseModeFlag(arg string) (config.WorkMode, error) {
	switch strings.ToLower(arg) {
	case "":
		return "", nil
	case "transmit":
		return config.Transmit, nil
	case "receive":
		return config.Receive, nil
	default:
		return "", fmt.Errorf("invalid mode; got %q, want transmit|receive", arg)
	}
}

const PortFlagHelp = `1-65535: TCP Port
Overrides the configuration file's net.port.`

// CheckPortFlag validates a TCP port number. A value of 0 means "no
// override".
func CheckPortFlag(val uint) (int, error) {
	if val == 0 {
		return 0, nil
	}
	if val > 65535 {
		return 0, fmt.Errorf("invalid port; got %d, want 1-65535", val)
	}
	return int(val), nil
}

const DurationFlagHelp = `seconds: Run Duration
How long to run before stopping automatically. A suffix of s, m, or h
may be given (e.g. 90s, 2m, 1h). A value of 0 means run until
interrupted.`

// ParseDurationFlag parses a run-duration override. An empty string
// means "run until interrupted".
func ParseDurationFlag(arg string) (time.Duration, error) {
	if arg == "" || arg == "0" {
		return 0, nil
	}
	if d, err := time.ParseDuration(arg); err == nil {
		return d, nil
	}
	secs, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration; got %q", arg)
	}
	return time.Duration(secs * float64(time.Second)), nil
}
