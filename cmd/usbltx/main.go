// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/subocean/usbl/helpers/parse"
	"github.com/subocean/usbl/internal/config"
	"github.com/subocean/usbl/internal/daqapi"
	"github.com/subocean/usbl/internal/frame"
	"github.com/subocean/usbl/internal/synth"
)

// usbltx is deliberately small: it builds the transmit waveform and hands
// it to a single analog-output scan. None of receive mode's queues or
// workers apply here, so the transmit path never links against the
// receive-side worker graph.
func usbltx() error {
	flags := flag.NewFlagSet("usbltx", flag.ExitOnError)
	flags.Usage = func() {
		fmt.Fprintln(flags.Output(), strings.TrimSpace(`
Usage: usbltx [FLAGS] <config.yaml>

usbltx runs the USBL positioning engine in transmit mode: it builds the
configured composite waveform (sine, cosine, chirp, DC, and zero
segments) and emits it once through the DAQ's analog-output scan.

Arguments:
  config.yaml
	Path to the structured configuration document. See
	internal/config for its fields.

Flags:
`,
		))
		flags.PrintDefaults()
	}
	modeOpt := flags.String("mode", "", parse.ModeFlagHelp)

	flags.Parse(os.Args[1:])

	if flags.NArg() != 1 {
		flags.Usage()
		return errors.New("missing config path")
	}

	lg := log.New(os.Stdout, "", log.LstdFlags)

	cfg, err := config.Load(flags.Arg(0))
	if err != nil {
		return err
	}

	mode, err := parse.ParseModeFlag(*modeOpt)
	if err != nil {
		return err
	}
	if mode != "" {
		cfg.WorkMode = mode
	}
	if cfg.WorkMode != config.Transmit {
		return fmt.Errorf("usbltx: config workMode is %q, want TRANSMIT (use usblrx for RECEIVE)", cfg.WorkMode)
	}

	waveform, err := buildWaveform(cfg)
	if err != nil {
		return err
	}

	dev := &daqapi.NullOutputDevice{}
	lg.Printf("usbltx: no vendor DAQ driver is linked in; using daqapi.NullOutputDevice." +
		" Supply a real daqapi.OutputDevice implementation for hardware output.")

	handles, err := dev.Inventory()
	if err != nil || len(handles) == 0 {
		return fmt.Errorf("usbltx: no output device found: %w", err)
	}
	h := handles[0]
	if err := dev.Connect(h); err != nil {
		return fmt.Errorf("usbltx: connect: %w", err)
	}
	defer dev.Disconnect(h)

	ok, err := dev.HasAnalogOutput(h)
	if err != nil {
		return fmt.Errorf("usbltx: query analog output: %w", err)
	}
	if !ok {
		return fmt.Errorf("usbltx: device %d has no analog output capability", h)
	}

	samples := waveform.Data[0]
	if err := dev.WriteOutputScan(h, cfg.DAQ.LowChan, cfg.DAQ.LowChan, cfg.DAQ.SampleRate, samples); err != nil {
		return fmt.Errorf("usbltx: output scan: %w", err)
	}

	lg.Printf("usbltx: wrote %d samples at %v Hz", len(samples), cfg.DAQ.SampleRate)
	return nil
}

func buildWaveform(cfg *config.Config) (*frame.Frame, error) {
	segs := make([]synth.Segment, len(cfg.Signal))
	for i, s := range cfg.Signal {
		kind, err := synthKind(s.Type)
		if err != nil {
			return nil, err
		}
		segs[i] = synth.Segment{
			Kind:       kind,
			SampleRate: cfg.DAQ.SampleRate,
			FreqStart:  s.FreqStart,
			FreqEnd:    s.FreqEnd,
			Amplitude:  s.Amplitude,
			Phase:      s.Phase,
			Duration:   s.Duration,
		}
	}
	return synth.Build(segs, 0)
}

func synthKind(name string) (synth.Kind, error) {
	switch strings.ToLower(name) {
	case "sine":
		return synth.Sine, nil
	case "cosine":
		return synth.Cosine, nil
	case "risingdc":
		return synth.RisingDC, nil
	case "fallingdc":
		return synth.FallingDC, nil
	case "chirp":
		return synth.Chirp, nil
	case "zero":
		return synth.Zero, nil
	default:
		return 0, fmt.Errorf("usbltx: unknown signal segment type %q", name)
	}
}

func main() {
	if err := usbltx(); err != nil {
		log.Fatal(err)
	}
}
