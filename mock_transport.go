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
	"time"
)

// MockIdentity is the identification string of a firmware v1.0 jig.
const MockIdentity = "TL Embedded, Nautilus, 001C00484331500120373358, v1.0"

// MockTransport is a scripted in-memory transport used by tests.
// Responses are looked up by exact command text: queued responses first,
// then sticky responses, then the handler. A command with no response leaves
// nothing to read, so a following ReadLine times out.
type MockTransport struct {
	queued  map[string][]string
	sticky  map[string]string
	handler func(cmd string) (response string, ok bool)
	readErr error
	pending []string
	written []string
	mu      sync.Mutex
	closed  bool
}

// NewMockTransport creates a mock transport that answers *IDN? with MockIdentity
func NewMockTransport() *MockTransport {
	return NewMockTransportWithIdentity(MockIdentity)
}

// NewMockTransportWithIdentity creates a mock transport answering *IDN? with idn
func NewMockTransportWithIdentity(idn string) *MockTransport {
	m := &MockTransport{
		queued: make(map[string][]string),
		sticky: make(map[string]string),
	}
	m.sticky["*IDN?"] = idn
	return m
}

// SetResponse answers every future cmd with response
func (m *MockTransport) SetResponse(cmd, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sticky[cmd] = response
}

// QueueResponses answers the next len(responses) cmd writes in order
func (m *MockTransport) QueueResponses(cmd string, responses ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queued[cmd] = append(m.queued[cmd], responses...)
}

// SetHandler installs a fallback for commands with no scripted response
func (m *MockTransport) SetHandler(fn func(cmd string) (string, bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = fn
}

// Deliver makes lines readable without a command, like a response that
// arrives after its query gave up
func (m *MockTransport) Deliver(lines ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, lines...)
}

// SetReadError makes every ReadLine fail with err
func (m *MockTransport) SetReadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// Written returns a copy of every line written so far
func (m *MockTransport) Written() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.written...)
}

// ClearWritten forgets the lines written so far
func (m *MockTransport) ClearWritten() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.written = nil
}

// WriteLine records the line and stages its scripted response
func (m *MockTransport) WriteLine(line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return NewTransportError("write", "mock", ErrTransportClosed)
	}
	m.written = append(m.written, line)

	if queue := m.queued[line]; len(queue) > 0 {
		m.pending = append(m.pending, queue[0])
		m.queued[line] = queue[1:]
		return nil
	}
	if response, ok := m.sticky[line]; ok {
		m.pending = append(m.pending, response)
		return nil
	}
	if m.handler != nil {
		if response, ok := m.handler(line); ok {
			m.pending = append(m.pending, response)
		}
	}
	return nil
}

// ReadLine returns the next staged response or times out immediately
func (m *MockTransport) ReadLine(time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return "", NewTransportError("read", "mock", ErrTransportClosed)
	}
	if m.readErr != nil {
		return "", m.readErr
	}
	if len(m.pending) == 0 {
		return "", NewTimeoutError("read", "mock")
	}

	line := m.pending[0]
	m.pending = m.pending[1:]
	return line, nil
}

// Close marks the transport as closed
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// IsConnected returns false once closed
func (m *MockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

// Type returns TransportMock
func (*MockTransport) Type() TransportType {
	return TransportMock
}

var _ Transport = (*MockTransport)(nil)
