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

func TestParseIdentity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		raw         string
		wantSerial  string
		wantVersion float64
		wantErr     bool
	}{
		{
			name:        "Legacy_Firmware",
			raw:         "TL Embedded, Nautilus, 001C00484331500120373358, v0.1",
			wantSerial:  "001C00484331500120373358",
			wantVersion: 0.1,
		},
		{
			name:        "Current_Firmware",
			raw:         "TL Embedded, Nautilus, 001C00484331500120373358, v1.2",
			wantSerial:  "001C00484331500120373358",
			wantVersion: 1.2,
		},
		{
			name:        "Extra_Whitespace",
			raw:         " TL Embedded ,Nautilus,  ABC ,v2 ",
			wantSerial:  "ABC",
			wantVersion: 2,
		},
		{name: "Other_Instrument", raw: "Keysight, 34465A, MY1234, v1.0", wantErr: true},
		{name: "Too_Few_Fields", raw: "TL Embedded, Nautilus, v1.0", wantErr: true},
		{name: "Too_Many_Fields", raw: "TL Embedded, Nautilus, A, v1.0, extra", wantErr: true},
		{name: "Missing_V", raw: "TL Embedded, Nautilus, A, 1.0", wantErr: true},
		{name: "Not_Decimal", raw: "TL Embedded, Nautilus, A, vNaN", wantErr: true},
		{name: "Exponent", raw: "TL Embedded, Nautilus, A, v1e3", wantErr: true},
		{name: "Trailing_Dot", raw: "TL Embedded, Nautilus, A, v1.", wantErr: true},
		{name: "Empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			id, err := ParseIdentity(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrDeviceNotRecognized)
				require.ErrorIs(t, err, ErrProtocol)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Nautilus", id.Family)
			assert.Equal(t, tt.wantSerial, id.Serial)
			assert.InDelta(t, tt.wantVersion, id.Version, 1e-9)
			assert.Equal(t, tt.raw, id.String())
		})
	}
}
