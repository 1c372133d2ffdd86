// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/subocean/usbl/helpers/parse"
	"github.com/subocean/usbl/internal/agc"
	"github.com/subocean/usbl/internal/config"
	"github.com/subocean/usbl/internal/daqapi"
	"github.com/subocean/usbl/internal/dspworker"
	"github.com/subocean/usbl/internal/fixout"
	"github.com/subocean/usbl/internal/frame"
	"github.com/subocean/usbl/internal/persist"
	"github.com/subocean/usbl/internal/serialport"
	"github.com/subocean/usbl/internal/supervisor"
	"github.com/subocean/usbl/internal/synth"
)

func usblrx() error {
	flags := flag.NewFlagSet("usblrx", flag.ExitOnError)
	flags.Usage = func() {
		fmt.Fprintln(flags.Output(), strings.TrimSpace(`
Usage: usblrx [FLAGS] <config.yaml>

usblrx runs the USBL positioning engine in receive mode: it arms the
DAQ device's hardware-triggered scan, matches each frame against the
configured reference waveform to estimate time-of-flight, beamforms to
estimate direction-of-arrival, drives the AGC loop, and emits position
fixes over a serial port while streaming raw frames over TCP.

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
	portOpt := flags.Uint("port", 0, parse.PortFlagHelp)
	durationOpt := flags.String("duration", "", parse.DurationFlagHelp)
	rateOpt := flags.String("rate", "", parse.RateFlagHelp)

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
	if cfg.WorkMode != config.Receive {
		return fmt.Errorf("usblrx: config workMode is %q, want RECEIVE (use usbltx for TRANSMIT)", cfg.WorkMode)
	}

	port, err := parse.CheckPortFlag(*portOpt)
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Net.Port = port
	}

	runFor, err := parse.ParseDurationFlag(*durationOpt)
	if err != nil {
		return err
	}

	if *rateOpt != "" {
		rate, err := parse.ParsePositiveFrequency(*rateOpt)
		if err != nil {
			return fmt.Errorf("usblrx: -rate: %w", err)
		}
		// The reference frequency must track the DAQ rate; config.Validate
		// rejects any document where the two differ.
		cfg.DAQ.SampleRate = rate
		cfg.Process.RefFreq = rate
	}

	reference, err := buildReference(cfg)
	if err != nil {
		return err
	}

	dev := &daqapi.NullDevice{}
	lg.Printf("usblrx: no vendor DAQ driver is linked in; using daqapi.NullDevice." +
		" Supply a real daqapi.Device implementation for hardware capture.")

	sup, err := supervisor.New(func(s *supervisor.Supervisor) error {
		s.Device = dev
		s.Handle = 0
		s.ScanInfo = daqapi.ScanInfo{
			LowChan:           cfg.DAQ.LowChan,
			HighChan:          cfg.DAQ.HighChan,
			SamplesPerChannel: cfg.DAQ.SamplesPerChannel,
			SampleRate:        cfg.DAQ.SampleRate,
			Duration:          cfg.DAQ.Duration,
			Interval:          cfg.DAQ.Interval,
		}
		s.Reference = reference
		s.DSPConfig = dspworker.Config{
			SampleRate:      cfg.DAQ.SampleRate,
			RefFreq:         cfg.Process.RefFreq,
			ProcessDuration: cfg.Process.ProcessDuration,
			FreqLo:          cfg.Process.FreqLo,
			FreqHi:          cfg.Process.FreqHi,
			AngleStep:       cfg.Process.DOAStep,
			SoundSpeed:      cfg.Process.SoundSpeed,
			ArrayDiameter:   cfg.Array.Diameter,
			NumElements:     cfg.Array.NumElements,
		}
		s.AGCState = agc.NewState(
			cfg.AGC.Step, cfg.AGC.MinPower, cfg.AGC.MaxPower,
			cfg.AGC.Initial, cfg.AGC.Min, cfg.AGC.Max,
		)
		s.Log = lg
		s.SaveQueueEnabled = cfg.Artifacts.Analog.Enable
		s.NetQueueEnabled = cfg.Net.Port != 0
		s.NetAddr = fmt.Sprintf(":%d", cfg.Net.Port)
		s.NetConnectTimeout = time.Duration(cfg.Net.ConnectTimeoutMs) * time.Millisecond
		s.NetSendTimeout = time.Duration(cfg.Net.SendTimeoutMs) * time.Millisecond
		s.AGCEnabled = cfg.AGC.Enable
		s.FixEnabled = true
		return nil
	})
	if err != nil {
		return err
	}

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i].Close()
		}
	}()

	if cfg.AGC.Enable {
		p, err := serialport.Open(cfg.AGC.Serial.Port, cfg.AGC.Serial.Baud, 200*time.Millisecond)
		if err != nil {
			return fmt.Errorf("usblrx: open AGC DAC port: %w", err)
		}
		closers = append(closers, p)
		sup.DACPort = p
	}

	fixPort, err := serialport.Open(cfg.FixSerial.Port, cfg.FixSerial.Baud, 200*time.Millisecond)
	if err != nil {
		return fmt.Errorf("usblrx: open fix serial port: %w", err)
	}
	closers = append(closers, fixPort)
	sup.FixPort = fixPort

	sinks, err := bindArtifactWriters(sup, cfg, lg)
	if err != nil {
		return err
	}
	closers = append(closers, sinks...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		if _, ok := <-sig; ok {
			lg.Println("usblrx: signal received, shutting down")
			cancel()
		}
	}()
	if runFor > 0 {
		go func() {
			t := time.NewTimer(runFor)
			defer t.Stop()
			select {
			case <-t.C:
				lg.Printf("usblrx: run duration %v elapsed, shutting down", runFor)
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	return sup.Run(ctx)
}

func buildReference(cfg *config.Config) (*frame.Frame, error) {
	segs := make([]synth.Segment, len(cfg.Signal))
	for i, s := range cfg.Signal {
		kind, err := synthKind(s.Type)
		if err != nil {
			return nil, err
		}
		segs[i] = synth.Segment{
			Kind:       kind,
			SampleRate: cfg.Process.RefFreq,
			FreqStart:  s.FreqStart,
			FreqEnd:    s.FreqEnd,
			Amplitude:  s.Amplitude,
			Phase:      s.Phase,
			Duration:   s.Duration,
		}
	}
	return synth.Build(segs, cfg.DAQ.SamplesPerChannel)
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
		return 0, fmt.Errorf("usblrx: unknown signal segment type %q", name)
	}
}

// bindArtifactWriters opens one sink per enabled artifact and attaches a
// persistence consumer for it. The returned closers are the opened sinks,
// for the caller to close once the pipeline has been joined.
func bindArtifactWriters(sup *supervisor.Supervisor, cfg *config.Config, lg *log.Logger) ([]io.Closer, error) {
	type binding struct {
		name string
		cfg  config.ArtifactConfig
		bind func(mode persist.Mode, sink *os.File) error
	}

	bindings := []binding{
		{"analog", cfg.Artifacts.Analog, func(mode persist.Mode, sink *os.File) error {
			w := &persist.Writer[*frame.Frame]{Sink: sink, Mode: mode, Rows: func(f *frame.Frame) [][]float64 { return f.Data }, Log: lg}
			supervisor.AddPersistWriter(sup, w, sup.SaveQueue)
			return nil
		}},
		{"position", cfg.Artifacts.Position, func(mode persist.Mode, sink *os.File) error {
			w := &persist.Writer[fixout.Fix]{Sink: sink, Mode: mode, Rows: func(f fixout.Fix) [][]float64 {
				return [][]float64{{f.Time, f.X, f.Y, f.Z, f.TOF, f.DOA}}
			}, Log: lg}
			supervisor.AddPersistWriter(sup, w, sup.PositionSaveQueue)
			return nil
		}},
		{"tof", cfg.Artifacts.TOF, func(mode persist.Mode, sink *os.File) error {
			w := &persist.Writer[[]float64]{Sink: sink, Mode: mode, Rows: func(v []float64) [][]float64 { return [][]float64{v} }, Log: lg}
			supervisor.AddPersistWriter(sup, w, sup.TOFQueue)
			return nil
		}},
		{"correlation", cfg.Artifacts.Correlation, func(mode persist.Mode, sink *os.File) error {
			w := &persist.Writer[*frame.Frame]{Sink: sink, Mode: mode, Rows: func(f *frame.Frame) [][]float64 { return f.Data }, Log: lg}
			supervisor.AddPersistWriter(sup, w, sup.CorrelationQueue)
			return nil
		}},
		{"beamPattern", cfg.Artifacts.BeamPattern, func(mode persist.Mode, sink *os.File) error {
			w := &persist.Writer[[]float64]{Sink: sink, Mode: mode, Rows: func(v []float64) [][]float64 { return [][]float64{v} }, Log: lg}
			supervisor.AddPersistWriter(sup, w, sup.BeamPatternQueue)
			return nil
		}},
		{"sideAmpSpectrum", cfg.Artifacts.SideAmpSpectrum, func(mode persist.Mode, sink *os.File) error {
			w := &persist.Writer[*frame.Frame]{Sink: sink, Mode: mode, Rows: func(f *frame.Frame) [][]float64 { return f.Data }, Log: lg}
			supervisor.AddPersistWriter(sup, w, sup.SideAmpQueue)
			return nil
		}},
	}

	var sinks []io.Closer
	closeAll := func() {
		for _, s := range sinks {
			s.Close()
		}
	}

	for _, b := range bindings {
		if !b.cfg.Enable {
			continue
		}
		mode, err := persistMode(b.cfg.Mode)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("usblrx: artifact %s: %w", b.name, err)
		}
		sink, err := os.Create(b.cfg.Path)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("usblrx: artifact %s: open %s: %w", b.name, b.cfg.Path, err)
		}
		sinks = append(sinks, sink)
		if err := b.bind(mode, sink); err != nil {
			closeAll()
			return nil, err
		}
	}
	return sinks, nil
}

func persistMode(name string) (persist.Mode, error) {
	switch strings.ToLower(name) {
	case "text", "":
		return persist.Text, nil
	case "binary":
		return persist.Binary, nil
	case "hex":
		return persist.Hex, nil
	default:
		return 0, fmt.Errorf("unknown persist mode %q", name)
	}
}

func main() {
	if err := usblrx(); err != nil {
		log.Fatal(err)
	}
}
