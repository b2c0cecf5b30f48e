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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevice_CalibrateOutput(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.QueueResponses("INP1:VOLT?", "0.998", "10.995")
	device := newOpenDevice(t, mock, WithSettleTime(0))

	result, err := device.CalibrateOutput(1, 1.0, 11.0)
	require.NoError(t, err)

	assert.Equal(t, CalibrationResult{
		Channel:   1,
		SetpointA: 1.0,
		MeasuredA: 0.998,
		SetpointB: 11.0,
		MeasuredB: 10.995,
	}, result)

	assert.Equal(t, []string{
		"OUT1:ENA ON",
		"OUT1:VOLT:UNCAL 1.000V",
		"INP1:VOLT?",
		"OUT1:VOLT:UNCAL 11.000V",
		"INP1:VOLT?",
		"OUT1:ENA OFF",
		"OUT1:VOLT:CAL 1.000V, 0.998V, 11.000V, 10.995V",
	}, mock.Written())
}

func TestDevice_CalibrateOutput_MeasurementFails(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.QueueResponses("INP2:VOLT?", "0.998")
	device := newOpenDevice(t, mock, WithSettleTime(0))

	_, err := device.CalibrateOutput(2, 1.0, 11.0)
	require.ErrorIs(t, err, ErrTimeout)

	for _, line := range mock.Written() {
		assert.NotContains(t, line, "VOLT:CAL", "nothing is committed after a failed measurement")
	}
}
