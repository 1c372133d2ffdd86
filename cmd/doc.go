// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

/*
Package cmd contains the usbl module's command-line binaries: usblrx runs
the receive-mode positioning pipeline and usbltx runs the transmit-mode
waveform emitter.
*/
package cmd
