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

package detection

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// NautilusVIDPID is the USB identity of the Nautilus CDC interface.
const NautilusVIDPID = "16D0:13FD"

// FormatVIDPID normalises a vendor and product ID pair to "VVVV:PPPP" in
// uppercase hexadecimal. Both IDs may be given with or without a 0x prefix.
// An empty string is returned when either ID is not hexadecimal.
func FormatVIDPID(vid, pid string) string {
	v, ok := parseUSBID(vid)
	if !ok {
		return ""
	}
	p, ok := parseUSBID(pid)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%04X:%04X", v, p)
}

func parseUSBID(id string) (uint64, bool) {
	id = strings.TrimSpace(id)
	id = strings.TrimPrefix(strings.TrimPrefix(id, "0x"), "0X")
	if id == "" || len(id) > 4 {
		return 0, false
	}
	v, err := strconv.ParseUint(id, 16, 16)
	if err != nil {
		return 0, false
	}
	return v, true
}

// IsNautilusUSB reports whether a USB vendor and product ID belong to a
// Nautilus (case-insensitive).
func IsNautilusUSB(vid, pid string) bool {
	return FormatVIDPID(vid, pid) == NautilusVIDPID
}

// IsPathIgnored checks if a device path should be ignored.
// Supports exact path matching and normalized path comparison.
func IsPathIgnored(devicePath string, ignorePaths []string) bool {
	if devicePath == "" || len(ignorePaths) == 0 {
		return false
	}

	normalizedDevice := normalizedPath(devicePath)

	for _, ignorePath := range ignorePaths {
		if ignorePath == "" {
			continue
		}
		if devicePath == ignorePath || normalizedDevice == normalizedPath(ignorePath) {
			return true
		}
	}
	return false
}

// normalizedPath normalizes a device path for comparison
func normalizedPath(path string) string {
	// lowercase for Windows COM ports and mDNS host names
	return strings.ToLower(filepath.Clean(path))
}
