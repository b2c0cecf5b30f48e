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
	"time"

	"github.com/ZaparooProject/go-nautilus/trace"
	"go.uber.org/zap"
)

// DeviceConfig contains configuration options for the Device
type DeviceConfig struct {
	// Logger receives operational logs. Defaults to a no-op logger.
	Logger *zap.Logger
	// Tracer receives a transcript of every command and response.
	Tracer trace.Logger
	// Timeout is the per-query response timeout
	Timeout time.Duration
	// DialTimeout bounds opening a network transport in Connect
	DialTimeout time.Duration
	// BaudRate is used by Connect for serial URIs without an explicit rate
	BaudRate int
	// SettleTime is the wait between an uncalibrated setpoint and its measurement
	SettleTime time.Duration
	// SerialPollInterval is the pause between AUX:SER:READ polls
	SerialPollInterval time.Duration
	// SerialChunkSize is the byte count requested by each poll
	SerialChunkSize int
	// AckAttempts bounds EEPROM acknowledge polling after a page write
	AckAttempts int
	// AckInterval is the pause between acknowledge probes
	AckInterval time.Duration
	// StrictAck makes an exhausted acknowledge budget fail the write
	StrictAck bool
	// ResetOnClose sends *RST before the transport is closed
	ResetOnClose bool
}

// DefaultDeviceConfig returns default device configuration
func DefaultDeviceConfig() *DeviceConfig {
	return &DeviceConfig{
		Logger:             zap.NewNop(),
		Tracer:             trace.NoopLogger{},
		Timeout:            DefaultQueryTimeout,
		DialTimeout:        5 * time.Second,
		BaudRate:           9600,
		SettleTime:         500 * time.Millisecond,
		SerialPollInterval: 50 * time.Millisecond,
		SerialChunkSize:    256,
		AckAttempts:        10,
		AckInterval:        50 * time.Millisecond,
		StrictAck:          false,
		ResetOnClose:       true,
	}
}

// Option is a functional option for configuring a Device
type Option func(*Device) error

// WithConfig replaces the whole configuration. Zero fields keep their defaults.
func WithConfig(cfg DeviceConfig) Option {
	return func(d *Device) error {
		def := DefaultDeviceConfig()
		if cfg.Logger == nil {
			cfg.Logger = def.Logger
		}
		if cfg.Tracer == nil {
			cfg.Tracer = def.Tracer
		}
		if cfg.Timeout <= 0 {
			cfg.Timeout = def.Timeout
		}
		if cfg.DialTimeout <= 0 {
			cfg.DialTimeout = def.DialTimeout
		}
		if cfg.BaudRate <= 0 {
			cfg.BaudRate = def.BaudRate
		}
		if cfg.SerialPollInterval <= 0 {
			cfg.SerialPollInterval = def.SerialPollInterval
		}
		if cfg.SerialChunkSize <= 0 {
			cfg.SerialChunkSize = def.SerialChunkSize
		}
		if cfg.AckAttempts <= 0 {
			cfg.AckAttempts = def.AckAttempts
		}
		if cfg.AckInterval <= 0 {
			cfg.AckInterval = def.AckInterval
		}
		d.config = &cfg
		return nil
	}
}

// WithLogger sets the operational logger
func WithLogger(logger *zap.Logger) Option {
	return func(d *Device) error {
		if logger == nil {
			logger = zap.NewNop()
		}
		d.config.Logger = logger
		return nil
	}
}

// WithTracer records a protocol transcript to tracer
func WithTracer(tracer trace.Logger) Option {
	return func(d *Device) error {
		if tracer == nil {
			tracer = trace.NoopLogger{}
		}
		d.config.Tracer = tracer
		return nil
	}
}

// WithTimeout sets the per-query response timeout
func WithTimeout(timeout time.Duration) Option {
	return func(d *Device) error {
		if timeout <= 0 {
			return ErrInvalidParameter
		}
		d.config.Timeout = timeout
		return nil
	}
}

// WithDialTimeout bounds how long Connect waits for a network transport
func WithDialTimeout(timeout time.Duration) Option {
	return func(d *Device) error {
		if timeout <= 0 {
			return ErrInvalidParameter
		}
		d.config.DialTimeout = timeout
		return nil
	}
}

// WithBaudRate sets the default baud rate for serial URIs
func WithBaudRate(baud int) Option {
	return func(d *Device) error {
		if baud <= 0 {
			return ErrInvalidParameter
		}
		d.config.BaudRate = baud
		return nil
	}
}

// WithSettleTime sets the calibration settle time
func WithSettleTime(settle time.Duration) Option {
	return func(d *Device) error {
		if settle < 0 {
			return ErrInvalidParameter
		}
		d.config.SettleTime = settle
		return nil
	}
}

// WithSerialPolling sets the serial passthrough poll interval and chunk size
func WithSerialPolling(interval time.Duration, chunkSize int) Option {
	return func(d *Device) error {
		if interval < 0 || chunkSize <= 0 {
			return ErrInvalidParameter
		}
		d.config.SerialPollInterval = interval
		d.config.SerialChunkSize = chunkSize
		return nil
	}
}

// WithAckPolling sets the EEPROM acknowledge polling budget
func WithAckPolling(attempts int, interval time.Duration) Option {
	return func(d *Device) error {
		if attempts <= 0 || interval < 0 {
			return ErrInvalidParameter
		}
		d.config.AckAttempts = attempts
		d.config.AckInterval = interval
		return nil
	}
}

// WithStrictAck makes WriteEEPROM fail with ErrAckTimeout when a page
// write is never acknowledged
func WithStrictAck(strict bool) Option {
	return func(d *Device) error {
		d.config.StrictAck = strict
		return nil
	}
}

// WithResetOnClose controls whether Close sends *RST first
func WithResetOnClose(reset bool) Option {
	return func(d *Device) error {
		d.config.ResetOnClose = reset
		return nil
	}
}
