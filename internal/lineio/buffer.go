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

// Package lineio reassembles newline-terminated lines from arbitrary reads.
package lineio

import (
	"bytes"
)

// Buffer accumulates received bytes and hands out complete lines.
// The zero value is ready to use. It is not safe for concurrent use.
type Buffer struct {
	data []byte
}

// Write appends received bytes.
func (b *Buffer) Write(p []byte) {
	b.data = append(b.data, p...)
}

// Line removes and returns the next complete line without its "\n" or
// "\r\n" terminator. Bytes after the terminator stay buffered.
func (b *Buffer) Line() (string, bool) {
	idx := bytes.IndexByte(b.data, '\n')
	if idx < 0 {
		return "", false
	}

	line := string(bytes.TrimSuffix(b.data[:idx], []byte{'\r'}))
	b.data = append(b.data[:0], b.data[idx+1:]...)
	return line, true
}

// Len returns the number of buffered bytes.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Reset discards everything buffered.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
}
