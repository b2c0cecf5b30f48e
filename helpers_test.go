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
	"sync"
	"testing"

	"github.com/ZaparooProject/go-nautilus/trace"
	"github.com/stretchr/testify/require"
)

// newOpenDevice opens a device on mock and forgets the identification
// traffic so tests only see the commands they cause.
func newOpenDevice(t *testing.T, mock *MockTransport, opts ...Option) *Device {
	t.Helper()

	device, err := New(mock, opts...)
	require.NoError(t, err)
	require.NoError(t, device.Open())
	mock.ClearWritten()
	return device
}

// fastOptions removes every sleep from polling loops.
func fastOptions() []Option {
	return []Option{
		WithSerialPolling(0, 256),
		WithAckPolling(10, 0),
		WithSettleTime(0),
	}
}

type captureTracer struct {
	events []trace.Event
	mu     sync.Mutex
}

func (c *captureTracer) Log(event trace.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureTracer) Events() []trace.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]trace.Event(nil), c.events...)
}
