// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package supervisor wires every worker into the receive-mode pipeline
// topology and owns their shared lifecycle: build queues, bind them to
// producers and consumers, start every worker, and join them all before
// releasing device and socket resources on shutdown.
package supervisor

import (
	"context"
	"sync"
	"time"

	"github.com/subocean/usbl/internal/agc"
	"github.com/subocean/usbl/internal/daqapi"
	"github.com/subocean/usbl/internal/dspworker"
	"github.com/subocean/usbl/internal/fixout"
	"github.com/subocean/usbl/internal/frame"
	"github.com/subocean/usbl/internal/ingest"
	"github.com/subocean/usbl/internal/netstream"
	"github.com/subocean/usbl/internal/persist"
	"github.com/subocean/usbl/internal/queue"
)

// Logger is compatible with the standard library logger.
type Logger interface {
	Printf(format string, v ...interface{})
}

// ConfigFn configures a Supervisor, in the style of session.ConfigFn.
type ConfigFn func(*Supervisor) error

// DACPort is the serial transport the AGC worker drives.
// internal/serialport.Port satisfies this.
type DACPort interface {
	Write([]byte) (int, error)
	Read([]byte) (int, error)
	Flush() error
}

// FixPort is the serial transport the fix emitter writes to.
type FixPort interface {
	Write([]byte) (int, error)
}

// Supervisor owns every queue and worker in the receive-mode pipeline:
// ingest -> {dsp, save, net}; dsp -> {fix, agc, tof, correlation,
// beampattern, sideamp}; agc -> DAC; fix -> serial port. Every queue is
// built in New so persistence consumers can be attached with
// AddPersistWriter before Run starts the pipeline.
type Supervisor struct {
	Device    daqapi.Device
	Handle    daqapi.Handle
	ScanInfo  daqapi.ScanInfo
	Reference *frame.Frame

	DSPConfig dspworker.Config
	AGCState  *agc.State

	DACPort DACPort
	FixPort FixPort

	NetAddr           string
	NetConnectTimeout time.Duration
	NetSendTimeout    time.Duration

	SaveQueueEnabled bool
	NetQueueEnabled  bool
	AGCEnabled       bool
	FixEnabled       bool

	Log Logger

	// DSPQueue, SaveQueue, and NetQueue carry raw frames out of ingest.
	// SaveQueue and NetQueue are nil unless their Enabled flag above is
	// set, matching dspworker's publish-only-to-bound-queues rule.
	DSPQueue  *queue.Queue[*frame.Frame]
	SaveQueue *queue.Queue[*frame.Frame]
	NetQueue  *queue.Queue[*frame.Frame]

	// FixQueue and AGCQueue carry the dspworker's two control outputs.
	// PositionSaveQueue carries the same fixes again, to a persistence
	// consumer independent of FixQueue's serial emitter.
	FixQueue          *queue.Queue[fixout.Fix]
	PositionSaveQueue *queue.Queue[fixout.Fix]
	AGCQueue          *queue.Queue[float64]

	// TOFQueue, CorrelationQueue, BeamPatternQueue, and SideAmpQueue
	// carry the intermediate artifacts persistence consumers may save.
	TOFQueue         *queue.Queue[[]float64]
	CorrelationQueue *queue.Queue[*frame.Frame]
	BeamPatternQueue *queue.Queue[[]float64]
	SideAmpQueue     *queue.Queue[*frame.Frame]

	starters    []func(ctx context.Context)
	shutdowners []func()
	wg          sync.WaitGroup
	cancelFn    context.CancelFunc
}

// trackShutdown registers q to be shut down once the supervisor's run
// context is done. Every worker in this module blocks in
// queue.Queue.WaitPop, which per its own contract only unblocks on a push
// or a Shutdown call — context cancellation alone never wakes it — so Run
// must shut down every queue it owns for its workers to ever return.
func trackShutdown[T any](s *Supervisor, q *queue.Queue[T]) {
	s.shutdowners = append(s.shutdowners, q.Shutdown)
}

// New builds a Supervisor from a sequence of ConfigFn, in NewSession's
// style: each function is applied in order and the first error aborts
// construction. Every pipeline queue exists once New returns, regardless
// of which optional workers are later enabled, so AddPersistWriter can
// bind a consumer to any of them before Run is called. The exceptions are
// SaveQueue and NetQueue, which are created only when one of fns sets
// SaveQueueEnabled or NetQueueEnabled; otherwise they stay nil.
func New(fns ...ConfigFn) (*Supervisor, error) {
	s := &Supervisor{
		DSPQueue:          queue.New[*frame.Frame](),
		FixQueue:          queue.New[fixout.Fix](),
		PositionSaveQueue: queue.New[fixout.Fix](),
		AGCQueue:          queue.New[float64](),
		TOFQueue:          queue.New[[]float64](),
		CorrelationQueue:  queue.New[*frame.Frame](),
		BeamPatternQueue:  queue.New[[]float64](),
		SideAmpQueue:      queue.New[*frame.Frame](),
	}
	trackShutdown(s, s.DSPQueue)
	trackShutdown(s, s.FixQueue)
	trackShutdown(s, s.PositionSaveQueue)
	trackShutdown(s, s.AGCQueue)
	trackShutdown(s, s.TOFQueue)
	trackShutdown(s, s.CorrelationQueue)
	trackShutdown(s, s.BeamPatternQueue)
	trackShutdown(s, s.SideAmpQueue)

	for _, fn := range fns {
		if err := fn(s); err != nil {
			return nil, err
		}
	}
	if s.SaveQueueEnabled {
		s.SaveQueue = queue.New[*frame.Frame]()
		trackShutdown(s, s.SaveQueue)
	}
	if s.NetQueueEnabled {
		s.NetQueue = queue.New[*frame.Frame]()
		trackShutdown(s, s.NetQueue)
	}
	return s, nil
}

func (s *Supervisor) logf(format string, v ...interface{}) {
	if s.Log != nil {
		s.Log.Printf(format, v...)
	}
}

// AddPersistWriter registers a persistence consumer bound to q, to be
// started alongside the rest of the pipeline when Run is called, one
// goroutine per bound artifact. It is a free function rather
// than a Supervisor method because Go methods cannot carry their own
// type parameters.
func AddPersistWriter[T any](s *Supervisor, w *persist.Writer[T], q *queue.Queue[T]) {
	trackShutdown(s, q)
	s.starters = append(s.starters, func(ctx context.Context) {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			w.Run(ctx, q)
		}()
	})
}

// Run binds every configured worker to its queue, starts them all, and
// blocks until ctx is canceled. On return, every worker has been joined
// and the device and socket resources torn down in reverse order.
func (s *Supervisor) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancelFn = cancel
	defer cancel()

	var started []string

	in := &ingest.Ingest{
		Device:    s.Device,
		Handle:    s.Handle,
		Info:      s.ScanInfo,
		Log:       s.Log,
		DSPQueue:  s.DSPQueue,
		SaveQueue: s.SaveQueue,
		NetQueue:  s.NetQueue,
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := in.Run(runCtx); err != nil {
			s.logf("supervisor: ingest stopped: %v", err)
			cancel()
		}
	}()
	started = append(started, "ingest")

	dw := &dspworker.Worker{
		Config:            s.DSPConfig,
		Reference:         s.Reference,
		AGC:               s.AGCState,
		Log:               s.Log,
		Input:             s.DSPQueue,
		FixQueue:          s.FixQueue,
		PositionSaveQueue: s.PositionSaveQueue,
		TOFQueue:          s.TOFQueue,
		CorrelationQueue:  s.CorrelationQueue,
		BeamPatternQueue:  s.BeamPatternQueue,
		SideAmpQueue:      s.SideAmpQueue,
	}
	if s.AGCEnabled {
		dw.AGCQueue = s.AGCQueue
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		dw.Run(runCtx)
	}()
	started = append(started, "dspworker")

	if s.AGCEnabled && s.DACPort != nil {
		aw := &agc.Worker{
			Port:    s.DACPort,
			GMin:    s.AGCState.GMin,
			GMax:    s.AGCState.GMax,
			Initial: s.AGCState.Initial,
			Log:     s.Log,
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			aw.Run(runCtx, s.AGCQueue)
		}()
		started = append(started, "agc")
	}

	if s.FixEnabled && s.FixPort != nil {
		em := &fixout.Emitter{Port: s.FixPort, Log: s.Log}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := em.Run(runCtx, s.FixQueue); err != nil {
				s.logf("supervisor: fixout stopped: %v", err)
			}
		}()
		started = append(started, "fixout")
	}

	if s.NetQueueEnabled && s.NetAddr != "" {
		streamer := &netstream.Streamer{
			Addr:           s.NetAddr,
			ConnectTimeout: s.NetConnectTimeout,
			SendTimeout:    s.NetSendTimeout,
			Log:            s.Log,
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := streamer.Run(runCtx, s.NetQueue); err != nil {
				s.logf("supervisor: netstream stopped: %v", err)
			}
		}()
		started = append(started, "netstream")
	}

	for _, start := range s.starters {
		start(runCtx)
	}
	started = append(started, "persist writers")

	s.logf("supervisor: started workers: %v", started)

	<-runCtx.Done()
	// Every worker above blocks in queue.Queue.WaitPop, which only
	// unblocks on a push or a Shutdown call (runCtx.Done alone is not
	// enough to wake a consumer parked on an empty queue), so every
	// queue this supervisor owns must be explicitly shut down before
	// joining, or Wait below would hang whenever shutdown is requested
	// while a queue is empty — the common case.
	for _, shutdown := range s.shutdowners {
		shutdown()
	}
	s.wg.Wait()
	s.logf("supervisor: all workers joined")
	return nil
}

// Stop cancels the running supervisor's context, beginning an orderly
// shutdown of every worker.
func (s *Supervisor) Stop() {
	if s.cancelFn != nil {
		s.cancelFn()
	}
}
