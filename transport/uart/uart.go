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

// Package uart provides the USB serial transport for the Nautilus.
//
// Importing the package registers it for tty:// URIs of the form
// tty://<device path>[:baud].
package uart

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	nautilus "github.com/ZaparooProject/go-nautilus"
	"github.com/ZaparooProject/go-nautilus/internal/lineio"
	"go.bug.st/serial"
	"go.uber.org/zap"
)

const (
	// DefaultBaudRate is used when the URI does not name one.
	DefaultBaudRate = 9600

	readChunkSize = 256
)

func init() {
	nautilus.RegisterTransport("tty", func(address string, cfg nautilus.TransportConfig) (nautilus.Transport, error) {
		baud := cfg.BaudRate
		if baud <= 0 {
			baud = DefaultBaudRate
		}
		path, baud, err := ParseAddress(address, baud)
		if err != nil {
			return nil, err
		}
		return New(path, WithBaudRate(baud), WithLogger(cfg.Logger))
	})
}

// port is the subset of serial.Port the transport uses.
type port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

// Option configures a Transport
type Option func(*Transport)

// WithBaudRate sets the line rate
func WithBaudRate(baud int) Option {
	return func(t *Transport) {
		if baud > 0 {
			t.baudRate = baud
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(t *Transport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// Transport implements the nautilus.Transport interface for UART communication
type Transport struct {
	port     port
	logger   *zap.Logger
	portName string
	lines    lineio.Buffer
	baudRate int
	readMu   sync.Mutex
	writeMu  sync.Mutex
	closed   atomic.Bool
}

// ParseAddress splits "path[:baud]". A trailing ":<digits>" is taken as the
// baud rate; otherwise defaultBaud is returned.
func ParseAddress(address string, defaultBaud int) (path string, baud int, err error) {
	path, baud = address, defaultBaud
	if i := strings.LastIndexByte(address, ':'); i >= 0 && isDigits(address[i+1:]) {
		path = address[:i]
		baud, err = strconv.Atoi(address[i+1:])
		if err != nil || baud <= 0 {
			return "", 0, fmt.Errorf("invalid baud rate in %q", address)
		}
	}
	if path == "" {
		return "", 0, fmt.Errorf("missing serial port in %q", address)
	}
	return path, baud, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// New opens portName at 8N1.
func New(portName string, opts ...Option) (*Transport, error) {
	t := &Transport{
		logger:   zap.NewNop(),
		portName: portName,
		baudRate: DefaultBaudRate,
	}
	for _, opt := range opts {
		opt(t)
	}

	mode := &serial.Mode{
		BaudRate: t.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(portName, mode)
	if err != nil {
		t.logger.Error("Failed to open serial port",
			zap.Error(err),
			zap.String("port", portName))
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}

	if err := t.attach(p); err != nil {
		_ = p.Close()
		return nil, err
	}

	t.logger.Info("Serial port opened",
		zap.String("port", portName),
		zap.Int("baud_rate", t.baudRate))
	return t, nil
}

// attach takes ownership of p and drops anything received before open.
func (t *Transport) attach(p port) error {
	if err := p.ResetInputBuffer(); err != nil {
		return fmt.Errorf("failed to reset input buffer: %w", err)
	}
	t.port = p
	return nil
}

// PortName returns the serial device path
func (t *Transport) PortName() string {
	return t.portName
}

// BaudRate returns the configured line rate
func (t *Transport) BaudRate() int {
	return t.baudRate
}

// WriteLine writes line followed by a newline
func (t *Transport) WriteLine(line string) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if t.closed.Load() {
		return nautilus.NewTransportError("write", t.portName, nautilus.ErrTransportClosed)
	}

	data := []byte(line + "\n")
	for len(data) > 0 {
		n, err := t.port.Write(data)
		if err != nil {
			return t.wrapError("write", err)
		}
		data = data[n:]
	}
	return nil
}

// ReadLine returns the next line, waiting at most timeout for it to arrive
func (t *Transport) ReadLine(timeout time.Duration) (string, error) {
	t.readMu.Lock()
	defer t.readMu.Unlock()

	if t.closed.Load() {
		return "", nautilus.NewTransportError("read", t.portName, nautilus.ErrTransportClosed)
	}

	deadline := time.Now().Add(timeout)
	chunk := make([]byte, readChunkSize)
	for {
		if line, ok := t.lines.Line(); ok {
			return line, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return "", nautilus.NewTimeoutError("read", t.portName)
		}
		if err := t.port.SetReadTimeout(remaining); err != nil {
			return "", t.wrapError("read", err)
		}

		// a zero-byte read with no error means the read timeout expired
		n, err := t.port.Read(chunk)
		if err != nil {
			return "", t.wrapError("read", err)
		}
		t.lines.Write(chunk[:n])
	}
}

func (t *Transport) wrapError(op string, err error) error {
	if t.closed.Load() {
		return nautilus.NewTransportError(op, t.portName, nautilus.ErrTransportClosed)
	}
	return nautilus.NewTransportError(op, t.portName, fmt.Errorf("%w: %w", nautilus.ErrConnection, err))
}

// Close closes the serial port. Calling Close more than once is a no-op.
func (t *Transport) Close() error {
	if t.closed.Swap(true) {
		return nil
	}

	logger := t.log()
	if err := t.port.Close(); err != nil {
		logger.Error("Failed to close serial port", zap.Error(err))
		return fmt.Errorf("failed to close serial port: %w", err)
	}
	logger.Info("Serial port closed", zap.String("port", t.portName))
	return nil
}

// log returns the configured logger, or a no-op logger for a Transport
// built without New.
func (t *Transport) log() *zap.Logger {
	if t.logger == nil {
		return zap.NewNop()
	}
	return t.logger
}

// IsConnected returns true until the transport is closed
func (t *Transport) IsConnected() bool {
	return t.port != nil && !t.closed.Load()
}

// Type returns the transport type
func (*Transport) Type() nautilus.TransportType {
	return nautilus.TransportUART
}

var _ nautilus.Transport = (*Transport)(nil)
