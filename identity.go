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
	"fmt"
	"strconv"
	"strings"
)

const identityFamily = "Nautilus"

// Identity is the parsed response to *IDN?.
type Identity struct {
	Vendor  string
	Family  string
	Serial  string
	Version float64
	// Raw is the unparsed identification string.
	Raw string
}

// String returns the identification string as the device reported it.
func (i Identity) String() string {
	return i.Raw
}

// ParseIdentity parses an identification string of the form
// "TL Embedded, Nautilus, <serial>, v<version>".
func ParseIdentity(raw string) (Identity, error) {
	fields := strings.Split(raw, ",")
	if len(fields) != 4 {
		return Identity{}, fmt.Errorf("%w: expected 4 fields, got %d in %q",
			ErrDeviceNotRecognized, len(fields), raw)
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	if fields[1] != identityFamily {
		return Identity{}, fmt.Errorf("%w: family %q", ErrDeviceNotRecognized, fields[1])
	}

	digits, ok := strings.CutPrefix(fields[3], "v")
	if !ok || !isDecimal(digits) {
		return Identity{}, fmt.Errorf("%w: version %q", ErrDeviceNotRecognized, fields[3])
	}
	version, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: version %q", ErrDeviceNotRecognized, fields[3])
	}

	return Identity{
		Vendor:  fields[0],
		Family:  fields[1],
		Serial:  fields[2],
		Version: version,
		Raw:     raw,
	}, nil
}

func isDecimal(s string) bool {
	whole, frac, hasDot := strings.Cut(s, ".")
	if whole == "" || (hasDot && frac == "") {
		return false
	}
	for _, r := range whole + frac {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
