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

// Package tcp provides the network socket transport for the Nautilus.
//
// Importing the package registers it for tcp:// URIs.
package tcp

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	nautilus "github.com/ZaparooProject/go-nautilus"
	"github.com/ZaparooProject/go-nautilus/internal/lineio"
	"go.uber.org/zap"
)

const (
	// DefaultPort is the raw SCPI socket port.
	DefaultPort = 5025

	defaultDialTimeout  = 5 * time.Second
	defaultWriteTimeout = 5 * time.Second
	readChunkSize       = 512
)

func init() {
	nautilus.RegisterTransport("tcp", func(address string, cfg nautilus.TransportConfig) (nautilus.Transport, error) {
		return New(address, WithLogger(cfg.Logger), WithDialTimeout(cfg.DialTimeout))
	})
}

// Option configures a Transport
type Option func(*Transport)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(t *Transport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithDialTimeout bounds connection setup
func WithDialTimeout(timeout time.Duration) Option {
	return func(t *Transport) {
		if timeout > 0 {
			t.dialTimeout = timeout
		}
	}
}

// WithWriteTimeout bounds a single line write
func WithWriteTimeout(timeout time.Duration) Option {
	return func(t *Transport) {
		if timeout > 0 {
			t.writeTimeout = timeout
		}
	}
}

// Transport implements the nautilus.Transport interface over TCP
type Transport struct {
	conn         net.Conn
	logger       *zap.Logger
	address      string
	lines        lineio.Buffer
	dialTimeout  time.Duration
	writeTimeout time.Duration
	readMu       sync.Mutex
	writeMu      sync.Mutex
	closed       atomic.Bool
}

// New connects to address, which may omit the port.
func New(address string, opts ...Option) (*Transport, error) {
	t := &Transport{
		logger:       zap.NewNop(),
		address:      normalizeAddress(address),
		dialTimeout:  defaultDialTimeout,
		writeTimeout: defaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}

	dialer := net.Dialer{Timeout: t.dialTimeout}
	conn, err := dialer.Dial("tcp", t.address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", t.address, err)
	}
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
	}
	t.conn = conn

	t.logger.Info("TCP transport connected", zap.String("address", t.address))
	return t, nil
}

// normalizeAddress appends DefaultPort when address has no port.
func normalizeAddress(address string) string {
	if _, _, err := net.SplitHostPort(address); err == nil {
		return address
	}
	host := strings.TrimSuffix(strings.TrimPrefix(address, "["), "]")
	return net.JoinHostPort(host, strconv.Itoa(DefaultPort))
}

// Address returns the host:port the transport is connected to
func (t *Transport) Address() string {
	return t.address
}

// WriteLine writes line followed by a newline
func (t *Transport) WriteLine(line string) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if t.closed.Load() {
		return nautilus.NewTransportError("write", t.address, nautilus.ErrTransportClosed)
	}

	if err := t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout)); err != nil {
		return t.wrapError("write", err)
	}
	if _, err := io.WriteString(t.conn, line+"\n"); err != nil {
		return t.wrapError("write", err)
	}
	return nil
}

// ReadLine returns the next line, waiting at most timeout for it to arrive
func (t *Transport) ReadLine(timeout time.Duration) (string, error) {
	t.readMu.Lock()
	defer t.readMu.Unlock()

	if t.closed.Load() {
		return "", nautilus.NewTransportError("read", t.address, nautilus.ErrTransportClosed)
	}
	if line, ok := t.lines.Line(); ok {
		return line, nil
	}

	if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return "", t.wrapError("read", err)
	}

	chunk := make([]byte, readChunkSize)
	for {
		n, err := t.conn.Read(chunk)
		t.lines.Write(chunk[:n])
		if line, ok := t.lines.Line(); ok {
			return line, nil
		}
		if err != nil {
			return "", t.wrapError("read", err)
		}
	}
}

func (t *Transport) wrapError(op string, err error) error {
	var netErr net.Error
	switch {
	case t.closed.Load():
		return nautilus.NewTransportError(op, t.address, nautilus.ErrTransportClosed)
	case errors.As(err, &netErr) && netErr.Timeout():
		return nautilus.NewTimeoutError(op, t.address)
	case errors.Is(err, io.EOF):
		return nautilus.NewTransportError(op, t.address,
			fmt.Errorf("%w: connection closed by peer", nautilus.ErrConnection))
	default:
		return nautilus.NewTransportError(op, t.address, fmt.Errorf("%w: %w", nautilus.ErrConnection, err))
	}
}

// Close closes the connection. Calling Close more than once is a no-op.
func (t *Transport) Close() error {
	if t.closed.Swap(true) {
		return nil
	}

	err := t.conn.Close()
	t.logger.Info("TCP transport closed", zap.String("address", t.address))
	if err != nil {
		return fmt.Errorf("close %s: %w", t.address, err)
	}
	return nil
}

// IsConnected returns true until the transport is closed
func (t *Transport) IsConnected() bool {
	return !t.closed.Load()
}

// Type returns the transport type
func (*Transport) Type() nautilus.TransportType {
	return nautilus.TransportTCP
}

var _ nautilus.Transport = (*Transport)(nil)
