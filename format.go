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
	"encoding/hex"
	"strconv"
	"strings"
)

const (
	tokenOn  = "ON"
	tokenOff = "OFF"
)

// formatFixed renders v with three decimals, the precision the firmware parses.
func formatFixed(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func formatBool(on bool) string {
	if on {
		return tokenOn
	}
	return tokenOff
}

func parseBool(resp string) (bool, error) {
	switch resp {
	case tokenOn:
		return true, nil
	case tokenOff:
		return false, nil
	default:
		return false, protocolErrorf("expected ON or OFF, got %q", resp)
	}
}

func parseFloat(resp string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(resp), 64)
	if err != nil {
		return 0, protocolErrorf("expected a number, got %q", resp)
	}
	return v, nil
}

func parseInt(resp string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(resp))
	if err != nil {
		return 0, protocolErrorf("expected an integer, got %q", resp)
	}
	return v, nil
}

// EncodeHex renders data as lowercase hex, two digits per byte.
func EncodeHex(data []byte) string {
	return hex.EncodeToString(data)
}

// DecodeHex decodes hex digits of either case.
func DecodeHex(s string) ([]byte, error) {
	data, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, protocolErrorf("invalid hex payload %q: %v", s, err)
	}
	return data, nil
}
