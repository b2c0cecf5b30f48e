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
	"bytes"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serialPoll = "AUX:SER:READ 256"

// scriptSerial queues one poll response per chunk; polls after that return
// nothing.
func scriptSerial(mock *MockTransport, chunks ...[]byte) {
	responses := make([]string, len(chunks))
	for i, chunk := range chunks {
		responses[i] = EncodeHex(chunk)
	}
	mock.QueueResponses(serialPoll, responses...)
	mock.SetResponse(serialPoll, "")
}

func countPolls(mock *MockTransport) int {
	n := 0
	for _, line := range mock.Written() {
		if line == serialPoll {
			n++
		}
	}
	return n
}

func TestDevice_SerialCommands(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.SetResponse("AUX:SER:READ?", "17")
	device := newOpenDevice(t, mock)

	require.NoError(t, device.OpenSerial(115200))
	require.NoError(t, device.WriteSerial([]byte{0x01, 0xAB, 0x0F}))
	require.NoError(t, device.SetDirPin(true, true))
	require.NoError(t, device.SetDirPin(true, false))
	require.NoError(t, device.SetDirPin(false, true))
	remaining, err := device.GetSerialRemaining()
	require.NoError(t, err)
	require.NoError(t, device.CloseSerial())

	assert.Equal(t, 17, remaining)
	assert.Equal(t, []string{
		"AUX:SER:BAUD 115200",
		"AUX:SER:ENA ON",
		"AUX:SER:WRITE 01ab0f",
		"AUX:SER:DIR TX",
		"AUX:SER:DIR NTX",
		"AUX:SER:DIR OFF",
		"AUX:SER:READ?",
		"AUX:SER:ENA OFF",
	}, mock.Written())
}

func TestDevice_ReadSerialLine(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	scriptSerial(mock, []byte("hel"), []byte("lo\r"), []byte("\nwor"), []byte("ld\r\n"))
	device := newOpenDevice(t, mock, fastOptions()...)

	line, ok, err := device.ReadSerialLine([]byte("\r\n"), time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), line)
	assert.Equal(t, 3, device.BufferedSerial(), "bytes after the delimiter stay buffered")

	line, ok, err = device.ReadSerialLine([]byte("\r\n"), time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("world"), line)
	assert.Zero(t, device.BufferedSerial())
}

func TestDevice_ReadSerialLine_EmptyLine(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	scriptSerial(mock, []byte("\nabc"))
	device := newOpenDevice(t, mock, fastOptions()...)

	line, ok, err := device.ReadSerialLine([]byte("\n"), 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, line)
	assert.NotNil(t, line, "an empty line is distinct from no line")
	assert.Equal(t, 3, device.BufferedSerial())
}

func TestDevice_ReadSerialLine_Timeout(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	scriptSerial(mock, []byte("partial"))
	device := newOpenDevice(t, mock, fastOptions()...)

	line, ok, err := device.ReadSerialLine([]byte("\n"), 0)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, line)
	assert.Equal(t, 1, countPolls(mock), "zero timeout polls exactly once")
	assert.Equal(t, 7, device.BufferedSerial(), "bytes are kept on timeout")

	scriptSerial(mock, []byte(" line\n"))
	line, ok, err = device.ReadSerialLine([]byte("\n"), 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("partial line"), line)
}

func TestDevice_ReadSerialLine_EmptyDelimiter(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	device := newOpenDevice(t, mock, fastOptions()...)

	_, _, err := device.ReadSerialLine(nil, time.Second)
	require.ErrorIs(t, err, ErrInvalidParameter)
	assert.Empty(t, mock.Written())
}

func TestDevice_ReadSerialLine_AnyChunking(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	delim := []byte("\r\n")

	for i := 0; i < 50; i++ {
		head := make([]byte, rng.IntN(300))
		for j := range head {
			head[j] = byte('a' + rng.IntN(26))
		}
		tail := []byte("tail")
		stream := append(append(append([]byte{}, head...), delim...), tail...)

		var chunks [][]byte
		for rest := stream; len(rest) > 0; {
			n := min(1+rng.IntN(256), len(rest))
			chunks = append(chunks, rest[:n])
			rest = rest[n:]
		}

		mock := NewMockTransport()
		scriptSerial(mock, chunks...)
		device := newOpenDevice(t, mock, fastOptions()...)

		line, ok, err := device.ReadSerialLine(delim, time.Second)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, head, line, "iteration %d", i)

		rest, err := device.ReadSerialBytes(len(tail), time.Second)
		require.NoError(t, err)
		require.Equal(t, tail, rest, "iteration %d", i)
	}
}

func TestDevice_ReadSerialBytes(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	scriptSerial(mock, []byte{1, 2}, []byte{3, 4, 5}, []byte{6})
	device := newOpenDevice(t, mock, fastOptions()...)

	data, err := device.ReadSerialBytes(4, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, data)
	assert.Equal(t, 1, device.BufferedSerial())

	data, err = device.ReadSerialBytes(2, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []byte{5, 6}, data)
}

func TestDevice_ReadSerialBytes_ShortReadDrains(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	scriptSerial(mock, []byte{9, 8, 7})
	device := newOpenDevice(t, mock, WithSerialPolling(time.Millisecond, 256))

	data, err := device.ReadSerialBytes(10, 20*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 8, 7}, data)
	assert.Zero(t, device.BufferedSerial())
	assert.Greater(t, countPolls(mock), 1)

	data, err = device.ReadSerialBytes(10, 0)
	require.NoError(t, err)
	assert.Empty(t, data)
	assert.LessOrEqual(t, len(data), 10)
}

func TestDevice_ReadSerial_MalformedPoll(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.QueueResponses(serialPoll, "4142", "4G")
	device := newOpenDevice(t, mock, fastOptions()...)

	_, _, err := device.ReadSerialLine([]byte("\n"), time.Second)
	require.ErrorIs(t, err, ErrProtocol)
	assert.Equal(t, 2, device.BufferedSerial(), "earlier bytes are kept")
}

func TestDevice_ReadSerial_TransportError(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	scriptSerial(mock, []byte("abc"))
	device := newOpenDevice(t, mock, fastOptions()...)

	_, ok, err := device.ReadSerialLine([]byte("\n"), 0)
	require.NoError(t, err)
	require.False(t, ok)

	boom := errors.New("link down")
	mock.SetReadError(boom)
	_, err = device.ReadSerialBytes(10, time.Second)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 3, device.BufferedSerial(), "buffered bytes stay in place")
}

func TestDevice_OpenSerialResetsBuffer(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	scriptSerial(mock, []byte("stale"))
	device := newOpenDevice(t, mock, fastOptions()...)

	_, ok, err := device.ReadSerialLine([]byte("\n"), 0)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 5, device.BufferedSerial())

	require.NoError(t, device.OpenSerial(9600))
	assert.Zero(t, device.BufferedSerial())
}

func TestDevice_ReadSerialLine_ChunkSize(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.SetResponse("AUX:SER:READ 16", EncodeHex([]byte("ok\n")))
	device := newOpenDevice(t, mock, WithSerialPolling(0, 16))

	line, ok, err := device.ReadSerialLine([]byte("\n"), 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, bytes.Equal([]byte("ok"), line))
}
