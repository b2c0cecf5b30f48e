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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestPlanPages_Example(t *testing.T) {
	t.Parallel()

	plan := planPages(5, 10, 8)
	assert.Equal(t, []pageWrite{
		{Offset: 5, Index: 0, Length: 3},
		{Offset: 8, Index: 3, Length: 7},
	}, plan)
}

func TestPlanPages_Invariant(t *testing.T) {
	t.Parallel()

	for _, pageSize := range []int{1, 3, 8, 16, 32} {
		for offset := 0; offset < 64; offset++ {
			for length := 0; length <= 40; length++ {
				plan := planPages(offset, length, pageSize)

				next, index := offset, 0
				for _, w := range plan {
					require.Equal(t, next, w.Offset, "writes are contiguous")
					require.Equal(t, index, w.Index)
					require.Positive(t, w.Length)

					pageStart := (w.Offset / pageSize) * pageSize
					require.LessOrEqual(t, w.Offset+w.Length, pageStart+pageSize,
						"page %d offset %d length %d crosses a boundary", pageSize, offset, length)

					next += w.Length
					index += w.Length
				}
				require.Equal(t, offset+length, next, "plan covers the whole range")
			}
		}
	}
}

func TestDevice_I2CCommands(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.SetResponse("AUX:IIC:READ 80, 4", "DEADbeef")
	mock.SetResponse("AUX:IIC:WRITE 80, 0001", "ON")
	mock.SetResponse("AUX:IIC:TRAN 80, 10, 2", "a55a")
	mock.SetResponse("AUX:IIC:SCAN 80", "ON")
	device := newOpenDevice(t, mock)

	require.NoError(t, device.OpenI2C(400000))

	data, err := device.ReadI2C(0x50, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, data)

	require.NoError(t, device.WriteI2C(0x50, []byte{0x00, 0x01}))

	data, err = device.TransferI2C(0x50, []byte{0x10}, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xA5, 0x5A}, data)

	present, err := device.ScanI2C(0x50)
	require.NoError(t, err)
	assert.True(t, present)

	require.NoError(t, device.CloseI2C())

	assert.Equal(t, "AUX:IIC:SPEED 400000", mock.Written()[0])
	assert.Equal(t, "AUX:IIC:ENA ON", mock.Written()[1])
	assert.Equal(t, "AUX:IIC:ENA OFF", mock.Written()[len(mock.Written())-1])
}

func TestDevice_WriteI2C_Rejected(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.SetResponse("AUX:IIC:WRITE 33, ff", "OFF")
	device := newOpenDevice(t, mock)

	err := device.WriteI2C(33, []byte{0xFF})
	require.ErrorIs(t, err, ErrWriteRejected)
}

func TestDevice_I2CAddressRange(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	device := newOpenDevice(t, mock)

	_, err := device.ScanI2C(0x80)
	require.ErrorIs(t, err, ErrInvalidParameter)
	_, err = device.ReadI2C(-1, 1)
	require.ErrorIs(t, err, ErrInvalidParameter)
	_, err = device.TransferI2C(0x50, nil, -1)
	require.ErrorIs(t, err, ErrInvalidParameter)
	assert.Empty(t, mock.Written())
}

func TestDevice_ScanAllI2C(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.SetHandler(func(cmd string) (string, bool) {
		switch cmd {
		case "AUX:IIC:SCAN 80", "AUX:IIC:SCAN 104":
			return "ON", true
		}
		if strings.HasPrefix(cmd, "AUX:IIC:SCAN ") {
			return "OFF", true
		}
		return "", false
	})
	device := newOpenDevice(t, mock)

	found, err := device.ScanAllI2C()
	require.NoError(t, err)
	assert.Equal(t, []int{0x50, 0x68}, found)
	assert.Len(t, mock.Written(), MaxI2CAddress)
	assert.Equal(t, "AUX:IIC:SCAN 0", mock.Written()[0])
	assert.Equal(t, "AUX:IIC:SCAN 127", mock.Written()[MaxI2CAddress-1])
}

func TestDevice_ReadEEPROM(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.SetResponse("AUX:IIC:TRAN 80, 20, 3", "010203")
	device := newOpenDevice(t, mock)

	data, err := device.ReadEEPROM(DefaultEEPROMAddress, 0x20, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)

	_, err = device.ReadEEPROM(DefaultEEPROMAddress, EEPROMSize, 1)
	require.ErrorIs(t, err, ErrInvalidParameter)
}

// eepromJig acknowledges every write and reports busy for the given number
// of probes after each one.
func eepromJig(mock *MockTransport, busyProbes int) {
	busy := 0
	mock.SetHandler(func(cmd string) (string, bool) {
		switch {
		case strings.HasPrefix(cmd, "AUX:IIC:WRITE "):
			busy = busyProbes
			return "ON", true
		case strings.HasPrefix(cmd, "AUX:IIC:SCAN "):
			if busy > 0 {
				busy--
				return "OFF", true
			}
			return "ON", true
		}
		return "", false
	})
}

func TestDevice_WriteEEPROM(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	eepromJig(mock, 2)
	device := newOpenDevice(t, mock, fastOptions()...)

	payload := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	require.NoError(t, device.WriteEEPROM(DefaultEEPROMAddress, 5, payload, DefaultEEPROMPageSize))

	assert.Equal(t, []string{
		"AUX:IIC:WRITE 80, 05000102",
		"AUX:IIC:SCAN 80",
		"AUX:IIC:SCAN 80",
		"AUX:IIC:SCAN 80",
		"AUX:IIC:WRITE 80, 0803040506070809",
		"AUX:IIC:SCAN 80",
		"AUX:IIC:SCAN 80",
		"AUX:IIC:SCAN 80",
	}, mock.Written())
}

func TestDevice_WriteEEPROM_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		payload  []byte
		address  int
		offset   int
		pageSize int
	}{
		{name: "Zero_Page", address: 0x50, offset: 0, payload: []byte{1}, pageSize: 0},
		{name: "Negative_Offset", address: 0x50, offset: -1, payload: []byte{1}, pageSize: 8},
		{name: "Past_End", address: 0x50, offset: 250, payload: make([]byte, 7), pageSize: 8},
		{name: "Bad_Address", address: 0x80, offset: 0, payload: []byte{1}, pageSize: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mock := NewMockTransport()
			device := newOpenDevice(t, mock, fastOptions()...)

			err := device.WriteEEPROM(tt.address, tt.offset, tt.payload, tt.pageSize)
			require.ErrorIs(t, err, ErrInvalidParameter)
			assert.Empty(t, mock.Written())
		})
	}
}

func TestDevice_WriteEEPROM_LastByte(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	eepromJig(mock, 0)
	device := newOpenDevice(t, mock, fastOptions()...)

	require.NoError(t, device.WriteEEPROM(0x50, 255, []byte{0xAA}, 8))
	assert.Equal(t, "AUX:IIC:WRITE 80, ffaa", mock.Written()[0])
}

func TestDevice_WriteEEPROM_RejectedAborts(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	writes := 0
	mock.SetHandler(func(cmd string) (string, bool) {
		switch {
		case strings.HasPrefix(cmd, "AUX:IIC:WRITE "):
			writes++
			if writes == 2 {
				return "OFF", true
			}
			return "ON", true
		case strings.HasPrefix(cmd, "AUX:IIC:SCAN "):
			return "ON", true
		}
		return "", false
	})
	device := newOpenDevice(t, mock, fastOptions()...)

	err := device.WriteEEPROM(0x50, 0, make([]byte, 24), 8)
	require.ErrorIs(t, err, ErrWriteRejected)
	assert.Equal(t, 2, writes, "no page is written after a rejection")
}

func TestDevice_WriteEEPROM_AckExhausted(t *testing.T) {
	t.Parallel()

	t.Run("Best_Effort", func(t *testing.T) {
		t.Parallel()

		core, logs := observer.New(zapcore.WarnLevel)
		mock := NewMockTransport()
		eepromJig(mock, 1000)
		device := newOpenDevice(t, mock, append(fastOptions(), WithLogger(zap.New(core)))...)

		require.NoError(t, device.WriteEEPROM(0x50, 0, make([]byte, 16), 8))

		probes := 0
		for _, line := range mock.Written() {
			if line == "AUX:IIC:SCAN 80" {
				probes++
			}
		}
		assert.Equal(t, 20, probes, "ten probes per page")
		assert.Equal(t, 2, logs.FilterMessageSnippet("did not acknowledge").Len())
	})

	t.Run("Strict", func(t *testing.T) {
		t.Parallel()

		mock := NewMockTransport()
		eepromJig(mock, 1000)
		device := newOpenDevice(t, mock, append(fastOptions(), WithStrictAck(true))...)

		err := device.WriteEEPROM(0x50, 0, make([]byte, 16), 8)
		require.ErrorIs(t, err, ErrAckTimeout)
		require.ErrorIs(t, err, ErrTimeout)
		assert.Len(t, mock.Written(), 11, "one write and ten probes before giving up")
	})

	t.Run("Probe_Error", func(t *testing.T) {
		t.Parallel()

		mock := NewMockTransport()
		mock.SetResponse("AUX:IIC:WRITE 80, 0001", "ON")
		mock.SetResponse("AUX:IIC:SCAN 80", "MAYBE")
		device := newOpenDevice(t, mock, fastOptions()...)

		err := device.WriteEEPROM(0x50, 0, []byte{1}, 8)
		require.ErrorIs(t, err, ErrProtocol)
		assert.False(t, errors.Is(err, ErrTimeout), fmt.Sprint(err))
	})
}
