// go-nautilus
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-nautilus.
//
// go-nautilus is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-nautilus is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-nautilus; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package nautilus

import (
	"strings"
	"sync"
	"time"

	"github.com/ZaparooProject/go-nautilus/trace"
	"go.uber.org/zap"
)

// DefaultQueryTimeout is how long Query waits for a response line.
const DefaultQueryTimeout = 1 * time.Second

const (
	lateResponseFactor = 3
	staleReadFloor     = time.Millisecond
)

// SessionConfig configures a Session.
type SessionConfig struct {
	Logger *zap.Logger
	Tracer trace.Logger
	// Endpoint is recorded in trace events, usually the connection URI.
	Endpoint string
	Timeout  time.Duration
}

// Session is a strict request/response channel over a Transport.
//
// Every query writes one line and then reads exactly one line back; there is
// never more than one query outstanding. The mutex serialises callers on the
// wire but a Session is still meant to be driven from one goroutine.
//
// A query that times out may still be answered later. Its response is
// expected for up to lateResponseFactor times the query timeout after the
// timeout; the next query first reads and drops such late responses, waiting
// for them while that window is open.
type Session struct {
	transport  Transport
	logger     *zap.Logger
	tracer     trace.Logger
	id         string
	endpoint   string
	timeout    time.Duration
	staleUntil time.Time
	stale      int
	mu         sync.Mutex
}

// NewSession creates a Session that owns transport.
func NewSession(transport Transport, cfg SessionConfig) *Session {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = trace.NoopLogger{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultQueryTimeout
	}

	id := trace.NewSessionID()
	return &Session{
		transport: transport,
		logger:    cfg.Logger.With(zap.String("session_id", id)),
		tracer:    cfg.Tracer,
		id:        id,
		endpoint:  cfg.Endpoint,
		timeout:   cfg.Timeout,
	}
}

// ID returns the session identifier used in trace events.
func (s *Session) ID() string {
	return s.id
}

// Transport returns the underlying transport.
func (s *Session) Transport() Transport {
	return s.transport
}

// SetTimeout changes the per-query read timeout.
func (s *Session) SetTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return ErrInvalidParameter
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeout = timeout
	return nil
}

// Timeout returns the per-query read timeout.
func (s *Session) Timeout() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeout
}

// Query sends command and returns the single response line, trimmed.
func (s *Session) Query(command string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query(command, s.timeout)
}

// query must be called with s.mu held.
func (s *Session) query(command string, timeout time.Duration) (string, error) {
	if err := s.discardStale(); err != nil {
		s.fail(command, err)
		return "", err
	}

	s.emit(trace.DirectionOut, trace.KindQuery, command, 0)
	if err := s.transport.WriteLine(command); err != nil {
		s.fail(command, err)
		return "", err
	}

	start := time.Now()
	line, err := s.transport.ReadLine(timeout)
	if err != nil {
		if IsTimeout(err) {
			s.stale++
			s.staleUntil = time.Now().Add(lateResponseFactor * timeout)
		}
		s.fail(command, err)
		return "", err
	}
	latency := time.Since(start)

	response := strings.TrimSpace(line)
	s.emit(trace.DirectionIn, trace.KindResponse, response, latency)
	s.logger.Debug("query",
		zap.String("command", command),
		zap.String("response", response),
		zap.Duration("latency", latency))
	return response, nil
}

// discardStale drops the late responses of timed-out queries. Responses that
// have not arrived when the late window closes are taken as lost. Must be
// called with s.mu held.
func (s *Session) discardStale() error {
	for s.stale > 0 {
		wait := max(time.Until(s.staleUntil), staleReadFloor)
		line, err := s.transport.ReadLine(wait)
		if IsTimeout(err) {
			s.stale = 0
			return nil
		}
		if err != nil {
			return err
		}
		s.stale--

		response := strings.TrimSpace(line)
		s.emit(trace.DirectionIn, trace.KindDiscarded, response, 0)
		s.logger.Warn("discarded late response", zap.String("response", response))
	}
	return nil
}

// Write sends command without waiting for a response.
func (s *Session) Write(command string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.emit(trace.DirectionOut, trace.KindCommand, command, 0)
	if err := s.transport.WriteLine(command); err != nil {
		s.fail(command, err)
		return err
	}
	s.logger.Debug("write", zap.String("command", command))
	return nil
}

// Identify returns the raw identification string.
func (s *Session) Identify() (string, error) {
	return s.Query(cmdIdentify)
}

// Close closes the transport.
func (s *Session) Close() error {
	return s.transport.Close()
}

func (s *Session) fail(command string, err error) {
	s.emit(trace.DirectionIn, trace.KindError, err.Error(), 0)
	s.logger.Debug("command failed", zap.String("command", command), zap.Error(err))
}

func (s *Session) emit(dir trace.Direction, kind trace.Kind, text string, latency time.Duration) {
	s.tracer.Log(trace.Event{
		Timestamp: time.Now(),
		SessionID: s.id,
		Endpoint:  s.endpoint,
		Direction: dir,
		Kind:      kind,
		Text:      text,
		Latency:   latency,
	})
}
