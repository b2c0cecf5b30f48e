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

// Package polling watches the Nautilus serial passthrough and delivers
// received lines as they are reassembled.
package polling

import (
	"context"
	"fmt"
	"time"
)

// LineReader is the part of *nautilus.Device the monitor polls.
type LineReader interface {
	ReadSerialLine(delim []byte, timeout time.Duration) ([]byte, bool, error)
}

// Monitor handles continuous serial passthrough monitoring
type Monitor struct {
	reader LineReader
	config *Config
	now    func() time.Time
	// OnLine receives each line without its delimiter. Returning an error
	// stops the monitor with that error.
	OnLine func(line []byte) error
	// OnActive is called when a line arrives on an idle link.
	OnActive func()
	// OnIdle is called when an active link has been silent for IdleTimeout.
	OnIdle func()
	state  LinkState
}

// NewMonitor creates a new serial monitor. The serial port must already be
// open on the device.
func NewMonitor(reader LineReader, config *Config) *Monitor {
	if config == nil {
		config = DefaultConfig()
	}
	return &Monitor{
		reader: reader,
		config: config,
		now:    time.Now,
	}
}

// State returns the current link state
func (m *Monitor) State() LinkState {
	return m.state
}

// Start polls until ctx is done, a read fails or OnLine returns an error.
// Cancellation returns ctx.Err().
func (m *Monitor) Start(ctx context.Context) error {
	interval := m.config.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		started := time.Now()
		line, ok, err := m.reader.ReadSerialLine(m.config.Delimiter, m.config.ReadTimeout)
		if err != nil {
			return fmt.Errorf("serial monitor: %w", err)
		}

		if !ok {
			if m.state.CheckIdle(m.now(), m.config.IdleTimeout) && m.OnIdle != nil {
				m.OnIdle()
			}
			if err := sleep(ctx, interval-time.Since(started)); err != nil {
				return err
			}
			continue
		}

		if m.state.RecordLine(line, m.now()) && m.OnActive != nil {
			m.OnActive()
		}
		if m.OnLine != nil {
			if err := m.OnLine(line); err != nil {
				return err
			}
		}
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
