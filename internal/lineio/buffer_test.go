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

package lineio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuffer_Line(t *testing.T) {
	t.Parallel()

	var b Buffer
	_, ok := b.Line()
	assert.False(t, ok)

	b.Write([]byte("TL Embedded, Naut"))
	_, ok = b.Line()
	assert.False(t, ok)

	b.Write([]byte("ilus, 1, v1.0\r\n12.0"))
	line, ok := b.Line()
	assert.True(t, ok)
	assert.Equal(t, "TL Embedded, Nautilus, 1, v1.0", line)
	assert.Equal(t, 4, b.Len())

	b.Write([]byte("\n\n"))
	line, ok = b.Line()
	assert.True(t, ok)
	assert.Equal(t, "12.0", line)

	line, ok = b.Line()
	assert.True(t, ok)
	assert.Empty(t, line)
	assert.Zero(t, b.Len())
}

func TestBuffer_Reset(t *testing.T) {
	t.Parallel()

	var b Buffer
	b.Write([]byte("stale\npartial"))
	b.Reset()
	assert.Zero(t, b.Len())
	_, ok := b.Line()
	assert.False(t, ok)
}
