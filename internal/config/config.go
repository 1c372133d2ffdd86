// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config loads and validates the structured YAML configuration
// document that drives both work modes: artifact save settings, the
// signal segment list, DAQ scan parameters, serial and TCP endpoints,
// array geometry, signal-processing parameters, and the AGC loop.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/subocean/usbl/internal/usblerr"
)

// WorkMode selects transmit or receive operation.
type WorkMode string

const (
	Transmit WorkMode = "TRANSMIT"
	Receive  WorkMode = "RECEIVE"
)

// ArtifactConfig is one bound artifact's save settings: analog capture,
// position fixes, TOF vectors, correlation frames, beam patterns, and
// side-amplitude spectra each get one of these.
type ArtifactConfig struct {
	Enable bool   `yaml:"enable"`
	Path   string `yaml:"path"`
	Mode   string `yaml:"mode"` // "text", "binary", or "hex"
}

// SignalSegment mirrors synth.Segment's fields as they appear on disk.
type SignalSegment struct {
	Type      string  `yaml:"type"`
	FreqStart float64 `yaml:"freqStart"`
	FreqEnd   float64 `yaml:"freqEnd"`
	Amplitude float64 `yaml:"amplitude"`
	Phase     float64 `yaml:"phase"`
	Duration  float64 `yaml:"duration"`
}

// DAQConfig parameterizes the hardware-triggered scan.
type DAQConfig struct {
	LowChan           int     `yaml:"lowChan"`
	HighChan          int     `yaml:"highChan"`
	SampleRate        float64 `yaml:"sampleRate"`
	SamplesPerChannel int     `yaml:"samplesPerChannel"`
	Duration          float64 `yaml:"duration"`
	Interval          float64 `yaml:"interval"`
}

// SerialConfig names a serial device and its baud rate.
type SerialConfig struct {
	Port string `yaml:"port"`
	Baud uint32 `yaml:"baud"`
}

// NetConfig parameterizes the TCP streamer.
type NetConfig struct {
	Port             int `yaml:"port"`
	ConnectTimeoutMs int `yaml:"connectTimeoutMs"`
	SendTimeoutMs    int `yaml:"sendTimeoutMs"`
}

// ArrayConfig describes the circular hydrophone array.
type ArrayConfig struct {
	NumElements int     `yaml:"numElements"`
	Diameter    float64 `yaml:"diameter"`
	InitialGain float64 `yaml:"initialGain"`
}

// SignalProcessConfig parameterizes the TOF and DOA estimators.
type SignalProcessConfig struct {
	SoundSpeed      float64 `yaml:"soundSpeed"`
	ProcessDuration float64 `yaml:"processDuration"`
	FreqLo          float64 `yaml:"startFrequency"`
	FreqHi          float64 `yaml:"endFrequency"`
	DOAStep         float64 `yaml:"doaStep"`
	RefFreq         float64 `yaml:"referenceFrequency"`
}

// AGCConfig parameterizes the AGC loop and its DAC link.
type AGCConfig struct {
	Enable   bool         `yaml:"enable"`
	Serial   SerialConfig `yaml:"serial"`
	Initial  float64      `yaml:"initialGain"`
	Min      float64      `yaml:"minGain"`
	Max      float64      `yaml:"maxGain"`
	MinPower float64      `yaml:"minPower"`
	MaxPower float64      `yaml:"maxPower"`
	Step     float64      `yaml:"step"`
}

// Artifacts groups every bound artifact's save settings.
type Artifacts struct {
	Analog          ArtifactConfig `yaml:"analog"`
	Position        ArtifactConfig `yaml:"position"`
	TOF             ArtifactConfig `yaml:"tof"`
	Correlation     ArtifactConfig `yaml:"correlation"`
	BeamPattern     ArtifactConfig `yaml:"beamPattern"`
	SideAmpSpectrum ArtifactConfig `yaml:"sideAmpSpectrum"`
}

// Config is the full structured configuration document.
type Config struct {
	WorkMode  WorkMode            `yaml:"workMode"`
	Signal    []SignalSegment     `yaml:"signal"`
	Artifacts Artifacts           `yaml:"artifacts"`
	DAQ       DAQConfig           `yaml:"daq"`
	FixSerial SerialConfig        `yaml:"fixSerial"`
	Net       NetConfig           `yaml:"net"`
	Array     ArrayConfig         `yaml:"array"`
	Process   SignalProcessConfig `yaml:"signalProcess"`
	AGC       AGCConfig           `yaml:"agc"`
}

// Load reads and parses the YAML document at path, expands "${TIME}" in
// every artifact path to the load-time timestamp, and validates the
// result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, usblerr.New(usblerr.Config, "config.Load", fmt.Errorf("read %s: %w", path, err))
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, usblerr.New(usblerr.Config, "config.Load", fmt.Errorf("parse %s: %w", path, err))
	}

	cfg.expandPaths(time.Now())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) expandPaths(at time.Time) {
	stamp := at.Format("20060102_150405")
	for _, a := range []*ArtifactConfig{
		&c.Artifacts.Analog, &c.Artifacts.Position, &c.Artifacts.TOF,
		&c.Artifacts.Correlation, &c.Artifacts.BeamPattern, &c.Artifacts.SideAmpSpectrum,
	} {
		a.Path = strings.ReplaceAll(a.Path, "${TIME}", stamp)
	}
}

// Validate checks the cross-field invariants this module depends on.
// Chief among them: the reference waveform's frequency must equal the DAQ
// sample rate, since the TOF estimator indexes the correlation peak on
// the reference's own sampling grid and a mismatched rate would silently
// scale every time-of-flight measurement.
func (c *Config) Validate() error {
	var err error
	switch {
	case c.WorkMode != Transmit && c.WorkMode != Receive:
		err = fmt.Errorf("workMode must be TRANSMIT or RECEIVE, got %q", c.WorkMode)
	case c.DAQ.SampleRate <= 0:
		err = fmt.Errorf("daq.sampleRate must be > 0")
	case c.WorkMode == Receive && c.Process.RefFreq != c.DAQ.SampleRate:
		err = fmt.Errorf("signalProcess.referenceFrequency (%v) must equal daq.sampleRate (%v)",
			c.Process.RefFreq, c.DAQ.SampleRate)
	case c.Array.NumElements <= 0:
		err = fmt.Errorf("array.numElements must be > 0")
	case c.DAQ.HighChan-c.DAQ.LowChan+1 != c.Array.NumElements:
		err = fmt.Errorf("daq channel span (%d) does not match array.numElements (%d)",
			c.DAQ.HighChan-c.DAQ.LowChan+1, c.Array.NumElements)
	}
	if err != nil {
		return usblerr.New(usblerr.Config, "config.Validate", err)
	}
	return nil
}
