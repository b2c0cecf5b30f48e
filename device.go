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
	"errors"
	"fmt"

	"go.uber.org/zap"
)

type deviceState int

const (
	stateUnopened deviceState = iota
	stateOpen
	stateClosed
)

// Device represents a Nautilus test jig.
//
// Thread Safety: Device is NOT thread-safe. All methods must be called from
// a single goroutine or protected with external synchronization. The
// session mutex only keeps two queries from interleaving on the wire; it does
// not make the serial passthrough buffer or the cached input frequency safe
// for concurrent use. Independent devices may be driven in parallel.
type Device struct {
	session        *Session
	config         *DeviceConfig
	inputFrequency *float64
	endpoint       string
	identity       Identity
	serialBuffer   []byte
	state          deviceState
}

// New creates a Device on an already opened transport. Call Open before
// issuing any command.
func New(transport Transport, opts ...Option) (*Device, error) {
	if transport == nil {
		return nil, fmt.Errorf("%w: nil transport", ErrInvalidParameter)
	}

	device, err := newDevice(opts)
	if err != nil {
		return nil, err
	}
	device.attach(transport)
	return device, nil
}

// Connect opens the transport for uri and then opens the device.
//
// The transport for the URI scheme must be registered, which happens when
// its package is imported. Without the import Connect fails with
// ErrUnsupportedScheme:
//
//	import _ "github.com/ZaparooProject/go-nautilus/transport/tcp"  // tcp://
//	import _ "github.com/ZaparooProject/go-nautilus/transport/uart" // tty://
//
//	device, err := nautilus.Connect("tcp://nautilus.local")
//	if err != nil {
//	    return err
//	}
//	defer device.Close()
func Connect(uri string, opts ...Option) (*Device, error) {
	device, err := newDevice(opts)
	if err != nil {
		return nil, err
	}

	transport, err := OpenTransport(uri, TransportConfig{
		Logger:      device.config.Logger,
		DialTimeout: device.config.DialTimeout,
		BaudRate:    device.config.BaudRate,
	})
	if err != nil {
		return nil, err
	}

	device.endpoint = uri
	device.attach(transport)
	if err := device.Open(); err != nil {
		return nil, err
	}
	return device, nil
}

// WithDevice connects to uri, runs fn and closes the device on every path.
// A close error is joined with the error returned by fn.
func WithDevice(uri string, fn func(*Device) error, opts ...Option) (err error) {
	device, err := Connect(uri, opts...)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, device.Close())
	}()

	return fn(device)
}

func newDevice(opts []Option) (*Device, error) {
	device := &Device{
		config: DefaultDeviceConfig(),
	}

	for _, opt := range opts {
		if err := opt(device); err != nil {
			return nil, err
		}
	}
	return device, nil
}

func (d *Device) attach(transport Transport) {
	if d.endpoint == "" {
		d.endpoint = string(transport.Type())
	}
	d.config.Logger = d.config.Logger.With(zap.String("uri", d.endpoint))
	d.session = NewSession(transport, SessionConfig{
		Logger:   d.config.Logger,
		Tracer:   d.config.Tracer,
		Endpoint: d.endpoint,
		Timeout:  d.config.Timeout,
	})
}

// Open identifies the device and caches its protocol version.
// If identification fails the transport is closed and the device cannot be
// reopened.
func (d *Device) Open() error {
	switch d.state {
	case stateOpen:
		return ErrAlreadyOpen
	case stateClosed:
		return ErrDeviceClosed
	case stateUnopened:
	}

	identity, err := d.identify()
	if err != nil {
		d.state = stateClosed
		if closeErr := d.session.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
		return err
	}

	d.identity = identity
	d.state = stateOpen
	d.config.Logger.Info("device opened",
		zap.String("serial", identity.Serial),
		zap.Float64("version", identity.Version))
	return nil
}

func (d *Device) identify() (Identity, error) {
	raw, err := d.session.Identify()
	if err != nil {
		return Identity{}, fmt.Errorf("identify: %w", err)
	}
	return ParseIdentity(raw)
}

// Close resets the device (unless disabled with WithResetOnClose) and
// closes the transport. The transport is closed even if the reset fails.
// Calling Close more than once is a no-op.
func (d *Device) Close() error {
	if d.state == stateClosed {
		return nil
	}

	if d.state == stateOpen && d.config.ResetOnClose {
		if err := d.session.Write(cmdReset); err != nil {
			d.config.Logger.Warn("reset before close failed", zap.Error(err))
		}
	}

	d.state = stateClosed
	d.serialBuffer = nil
	if err := d.session.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	d.config.Logger.Info("device closed")
	return nil
}

// IsOpen reports whether the device has been opened and not yet closed.
func (d *Device) IsOpen() bool {
	return d.state == stateOpen
}

// Identity returns the identification parsed at open.
func (d *Device) Identity() Identity {
	return d.identity
}

// Version returns the protocol version parsed at open.
func (d *Device) Version() float64 {
	return d.identity.Version
}

// Session returns the underlying command session for raw SCPI access.
func (d *Device) Session() *Session {
	return d.session
}

// Endpoint returns the URI the device was connected with, or the transport
// type for devices created with New.
func (d *Device) Endpoint() string {
	return d.endpoint
}

// Config returns a copy of the device configuration.
func (d *Device) Config() DeviceConfig {
	return *d.config
}

// Query sends a raw SCPI query. Prefer the typed methods.
func (d *Device) Query(command string) (string, error) {
	if err := d.ready(); err != nil {
		return "", err
	}
	return d.session.Query(command)
}

// Write sends a raw SCPI command. Prefer the typed methods.
func (d *Device) Write(command string) error {
	if err := d.ready(); err != nil {
		return err
	}
	return d.session.Write(command)
}

// Reset sends *RST.
func (d *Device) Reset() error {
	return d.write(cmdReset)
}

func (d *Device) ready() error {
	switch d.state {
	case stateUnopened:
		return ErrDeviceNotOpen
	case stateClosed:
		return ErrDeviceClosed
	default:
		return nil
	}
}

func (d *Device) write(format string, args ...any) error {
	if err := d.ready(); err != nil {
		return err
	}
	return d.session.Write(fmt.Sprintf(format, args...))
}

func (d *Device) query(format string, args ...any) (string, error) {
	if err := d.ready(); err != nil {
		return "", err
	}
	return d.session.Query(fmt.Sprintf(format, args...))
}

func (d *Device) queryFloat(format string, args ...any) (float64, error) {
	resp, err := d.query(format, args...)
	if err != nil {
		return 0, err
	}
	return parseFloat(resp)
}

func (d *Device) queryBool(format string, args ...any) (bool, error) {
	resp, err := d.query(format, args...)
	if err != nil {
		return false, err
	}
	return parseBool(resp)
}

func checkRange(kind string, n, lowest, highest int) error {
	if n < lowest || n > highest {
		return fmt.Errorf("%w: %s %d out of range [%d..%d]", ErrInvalidParameter, kind, n, lowest, highest)
	}
	return nil
}

func checkAnalogChannel(ch int) error {
	return checkRange("analog channel", ch, MinAnalogChannel, MaxAnalogChannel)
}

func checkPSUChannel(ch int) error {
	return checkRange("PSU channel", ch, MinPSUChannel, MaxPSUChannel)
}

func checkGPIOPin(pin int) error {
	return checkRange("GPIO pin", pin, MinGPIOPin, MaxGPIOPin)
}
