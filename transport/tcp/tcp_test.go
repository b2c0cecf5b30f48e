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

package tcp

import (
	"bufio"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	nautilus "github.com/ZaparooProject/go-nautilus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeJig is a loopback SCPI server answering from a fixed table.
// Responses are written in two halves to exercise line reassembly.
type fakeJig struct {
	listener  net.Listener
	responses map[string]string
	delays    map[string]time.Duration
	received  []string
	mu        sync.Mutex
	wg        sync.WaitGroup
}

func startFakeJig(t *testing.T, responses map[string]string) *fakeJig {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	jig := &fakeJig{listener: listener, responses: responses, delays: make(map[string]time.Duration)}
	jig.wg.Add(1)
	go jig.serve()

	t.Cleanup(func() {
		_ = listener.Close()
		jig.wg.Wait()
	})
	return jig
}

func (j *fakeJig) serve() {
	defer j.wg.Done()
	for {
		conn, err := j.listener.Accept()
		if err != nil {
			return
		}
		j.wg.Add(1)
		go j.handle(conn)
	}
}

func (j *fakeJig) handle(conn net.Conn) {
	defer j.wg.Done()
	defer func() { _ = conn.Close() }()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		cmd := scanner.Text()
		j.mu.Lock()
		j.received = append(j.received, cmd)
		resp, ok := j.responses[cmd]
		delay := j.delays[cmd]
		j.mu.Unlock()

		if cmd == "HANGUP" {
			return
		}
		if !ok {
			continue
		}
		time.Sleep(delay)
		line := resp + "\r\n"
		half := len(line) / 2
		_, _ = conn.Write([]byte(line[:half]))
		time.Sleep(5 * time.Millisecond)
		_, _ = conn.Write([]byte(line[half:]))
	}
}

// Delay holds back the response to cmd.
func (j *fakeJig) Delay(cmd string, d time.Duration) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.delays[cmd] = d
}

func (j *fakeJig) Received() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.received...)
}

func (j *fakeJig) Addr() string {
	return j.listener.Addr().String()
}

func TestNormalizeAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		address string
		want    string
	}{
		{name: "Hostname", address: "nautilus.local", want: "nautilus.local:5025"},
		{name: "Explicit_Port", address: "10.0.0.5:6000", want: "10.0.0.5:6000"},
		{name: "IPv4", address: "10.0.0.5", want: "10.0.0.5:5025"},
		{name: "IPv6_Bracketed", address: "[fe80::1]", want: "[fe80::1]:5025"},
		{name: "IPv6_With_Port", address: "[fe80::1]:7000", want: "[fe80::1]:7000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, normalizeAddress(tt.address))
		})
	}
}

func TestTransport_QueryRoundTrip(t *testing.T) {
	t.Parallel()

	jig := startFakeJig(t, map[string]string{"*IDN?": nautilus.MockIdentity})
	transport, err := New(jig.Addr())
	require.NoError(t, err)
	defer func() { _ = transport.Close() }()

	assert.Equal(t, nautilus.TransportTCP, transport.Type())
	assert.True(t, transport.IsConnected())

	require.NoError(t, transport.WriteLine("*IDN?"))
	line, err := transport.ReadLine(time.Second)
	require.NoError(t, err)
	assert.Equal(t, nautilus.MockIdentity, line)
}

func TestTransport_ReadTimeout(t *testing.T) {
	t.Parallel()

	jig := startFakeJig(t, map[string]string{})
	transport, err := New(jig.Addr())
	require.NoError(t, err)
	defer func() { _ = transport.Close() }()

	require.NoError(t, transport.WriteLine("*RST"))
	start := time.Now()
	_, err = transport.ReadLine(50 * time.Millisecond)
	require.ErrorIs(t, err, nautilus.ErrTimeout)
	assert.Less(t, time.Since(start), time.Second)

	assert.Eventually(t, func() bool {
		return len(jig.Received()) == 1 && jig.Received()[0] == "*RST"
	}, time.Second, 5*time.Millisecond)
}

func TestTransport_Closed(t *testing.T) {
	t.Parallel()

	jig := startFakeJig(t, map[string]string{})
	transport, err := New(jig.Addr())
	require.NoError(t, err)

	require.NoError(t, transport.Close())
	require.NoError(t, transport.Close())
	assert.False(t, transport.IsConnected())

	require.ErrorIs(t, transport.WriteLine("*IDN?"), nautilus.ErrTransportClosed)
	_, err = transport.ReadLine(time.Second)
	require.ErrorIs(t, err, nautilus.ErrTransportClosed)
}

func TestTransport_PeerHangup(t *testing.T) {
	t.Parallel()

	jig := startFakeJig(t, map[string]string{})
	transport, err := New(jig.Addr())
	require.NoError(t, err)
	defer func() { _ = transport.Close() }()

	require.NoError(t, transport.WriteLine("HANGUP"))
	_, err = transport.ReadLine(time.Second)
	require.ErrorIs(t, err, nautilus.ErrConnection)
	assert.NotErrorIs(t, err, nautilus.ErrTimeout)
}

func TestTransport_DialFailure(t *testing.T) {
	t.Parallel()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	_, err = New(addr, WithDialTimeout(200*time.Millisecond))
	require.Error(t, err)
}

func TestConnect_OverTCP(t *testing.T) {
	t.Parallel()

	jig := startFakeJig(t, map[string]string{
		"*IDN?":      nautilus.MockIdentity,
		"SYST:TEMP?": "28.25",
	})

	var temp float64
	err := nautilus.WithDevice("tcp://"+jig.Addr(), func(d *nautilus.Device) error {
		var err error
		temp, err = d.GetTemperature()
		return err
	})
	require.NoError(t, err)
	assert.InDelta(t, 28.25, temp, 1e-9)

	assert.Eventually(t, func() bool {
		received := jig.Received()
		return len(received) == 3 && strings.Join(received, ",") == "*IDN?,SYST:TEMP?,*RST"
	}, time.Second, 5*time.Millisecond)
}

func TestSession_LateResponseOverTCP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		command string
		delay   time.Duration
	}{
		{name: "Late_Answer", command: "SYST:TEMP?", delay: 250 * time.Millisecond},
		{name: "Never_Answered", command: "SYST:ERR?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			jig := startFakeJig(t, map[string]string{
				"SYST:TEMP?": "25.0",
				"VIN?":       "12.0",
			})
			jig.Delay(tt.command, tt.delay)

			transport, err := New(jig.Addr())
			require.NoError(t, err)
			session := nautilus.NewSession(transport, nautilus.SessionConfig{Timeout: 100 * time.Millisecond})
			defer func() { _ = session.Close() }()

			_, err = session.Query(tt.command)
			require.ErrorIs(t, err, nautilus.ErrTimeout)

			for range 2 {
				resp, err := session.Query("VIN?")
				require.NoError(t, err)
				assert.Equal(t, "12.0", resp)
			}
		})
	}
}
