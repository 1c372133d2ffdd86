// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package netstream

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/subocean/usbl/internal/frame"
	"github.com/subocean/usbl/internal/queue"
	"github.com/subocean/usbl/internal/usblerr"
)

// Logger is compatible with the standard library logger.
type Logger interface {
	Printf(format string, v ...interface{})
}

// State is a streamer lifecycle state.
type State int

const (
	StateIdle State = iota
	StateListening
	StateConnected
	StateStreaming
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateConnected:
		return "connected"
	case StateStreaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// Streamer accepts a single client at a time on Addr and streams channel
// frames popped from a queue, guarded by an application-level heartbeat.
// All socket writes for one connection are serialized behind a shared
// mutex so frames and heartbeats never interleave mid-packet.
type Streamer struct {
	Addr             string
	ConnectTimeout   time.Duration
	SendTimeout      time.Duration
	HeartbeatPeriod  time.Duration
	HeartbeatTimeout time.Duration
	MaxMissed        int
	Log              Logger

	mu        sync.Mutex
	state     State
	boundAddr net.Addr
}

// State reports the streamer's current lifecycle state.
func (s *Streamer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// BoundAddr reports the listener's address once Run has started listening.
// It is primarily useful in tests that bind Addr to "127.0.0.1:0".
func (s *Streamer) BoundAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boundAddr
}

func (s *Streamer) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Streamer) logf(format string, v ...interface{}) {
	if s.Log != nil {
		s.Log.Printf(format, v...)
	}
}

func (s *Streamer) defaults() {
	if s.ConnectTimeout <= 0 {
		s.ConnectTimeout = 2 * time.Second
	}
	if s.SendTimeout <= 0 {
		s.SendTimeout = 2 * time.Second
	}
	if s.HeartbeatPeriod <= 0 {
		s.HeartbeatPeriod = 5 * time.Second
	}
	if s.HeartbeatTimeout <= 0 {
		s.HeartbeatTimeout = 300 * time.Millisecond
	}
	if s.MaxMissed <= 0 {
		s.MaxMissed = 3
	}
}

// Run listens on Addr and, for as long as ctx is live, accepts one client
// at a time and streams frames popped from q. A lost or absent peer drains
// q, so a disconnected client never lets the queue grow unbounded, and
// returns the streamer to StateListening.
func (s *Streamer) Run(ctx context.Context, q *queue.Queue[*frame.Frame]) error {
	s.defaults()

	laddr, err := net.ResolveTCPAddr("tcp", s.Addr)
	if err != nil {
		return err
	}
	ln, err := net.ListenTCP("tcp", laddr)
	if err != nil {
		return err
	}
	defer ln.Close()

	s.mu.Lock()
	s.boundAddr = ln.Addr()
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		s.setState(StateListening)
		conn, err := s.waitForConnection(ln)
		if err != nil {
			if ctx.Err() != nil {
				s.setState(StateIdle)
				return nil
			}
			if isTimeout(err) {
				n := q.Drain()
				if n > 0 {
					s.logf("netstream: drained %d stale queued frame(s) while waiting for a client", n)
				}
				continue
			}
			s.logf("netstream: accept: %v", err)
			continue
		}

		s.setState(StateConnected)
		s.logf("netstream: client connected from %s", conn.RemoteAddr())
		s.stream(ctx, conn, q)

		n := q.Drain()
		if n > 0 {
			s.logf("netstream: dropped %d queued frame(s) on disconnect", n)
		}
	}
}

// waitForConnection blocks for at most ConnectTimeout for an incoming
// client.
func (s *Streamer) waitForConnection(ln *net.TCPListener) (net.Conn, error) {
	ln.SetDeadline(time.Now().Add(s.ConnectTimeout))
	return ln.Accept()
}

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}

// stream runs the connected/streaming phase for one client: a data-sending
// loop and a heartbeat loop, both writing to conn under connMu so frames
// and heartbeats never interleave mid-packet.
func (s *Streamer) stream(ctx context.Context, conn net.Conn, q *queue.Queue[*frame.Frame]) {
	defer conn.Close()

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var connMu sync.Mutex
	writeFrame := func(buf []byte) error {
		connMu.Lock()
		defer connMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(s.SendTimeout))
		_, err := conn.Write(buf)
		return err
	}

	items := make(chan *frame.Frame, 1)
	go func() {
		defer close(items)
		for {
			// WaitPopContext (not WaitPop) so this goroutine exits with
			// the connection instead of outliving it: q is shared across
			// connections, and a goroutine still blocked in a plain
			// WaitPop after its connection drops would keep racing the
			// next connection's producer for the same pushed frames.
			v, ok := q.WaitPopContext(streamCtx)
			if !ok {
				return
			}
			select {
			case items <- v:
			case <-streamCtx.Done():
				return
			}
		}
	}()

	s.setState(StateStreaming)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		defer cancel()
		for {
			select {
			case <-streamCtx.Done():
				return
			case f, ok := <-items:
				if !ok {
					return
				}
				buf, err := EncodeData(f)
				if err != nil {
					s.logf("netstream: encode: %v", err)
					continue
				}
				if err := writeFrame(buf); err != nil {
					s.logf("netstream: %v", usblerr.New(usblerr.PeerLost, "netstream.stream",
						fmt.Errorf("send data: %w", err)))
					return
				}
			}
		}
	}()

	go func() {
		defer wg.Done()
		defer cancel()
		s.heartbeat(streamCtx, conn, writeFrame)
	}()

	wg.Wait()
}

// heartbeat sends a heartbeat every HeartbeatPeriod and expects a
// heartbeat-ack within HeartbeatTimeout. MaxMissed consecutive misses are
// treated as peer loss.
func (s *Streamer) heartbeat(ctx context.Context, conn net.Conn, writeFrame func([]byte) error) {
	ticker := time.NewTicker(s.HeartbeatPeriod)
	defer ticker.Stop()

	missed := 0
	ackBuf := make([]byte, HeaderLen+CRCLen)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if err := writeFrame(EncodeHeartbeat(SignalHeartbeat)); err != nil {
			s.logf("netstream: %v", usblerr.New(usblerr.PeerLost, "netstream.heartbeat",
				fmt.Errorf("send heartbeat: %w", err)))
			return
		}

		conn.SetReadDeadline(time.Now().Add(s.HeartbeatTimeout))
		n, err := readFull(conn, ackBuf)
		if err != nil || n != len(ackBuf) {
			missed++
			s.logf("netstream: heartbeat ack missed (%d/%d)", missed, s.MaxMissed)
			if missed >= s.MaxMissed {
				s.logf("netstream: %v", usblerr.New(usblerr.PeerLost, "netstream.heartbeat",
					fmt.Errorf("%d consecutive heartbeat acks missed", missed)))
				return
			}
			continue
		}

		h, err := DecodeHeader(ackBuf)
		if err != nil || h.SignalType != SignalHeartbeatAck {
			missed++
			s.logf("netstream: heartbeat ack malformed (%d/%d)", missed, s.MaxMissed)
			if missed >= s.MaxMissed {
				return
			}
			continue
		}

		missed = 0
	}
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
