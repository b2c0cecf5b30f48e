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

// Package trace records a machine-readable transcript of the commands sent to
// a Nautilus and the lines it answered with.
//
// It is separate from operational logging (zap): a trace holds every
// command and response of a session in order, so a failing calibration run
// can be replayed and inspected after the fact.
//
// # Basic Usage
//
//	tracer, err := trace.NewFileLogger("jig.ntrace")
//	if err != nil {
//	    return err
//	}
//	defer tracer.Close()
//
//	device, err := nautilus.Connect(uri, nautilus.WithTracer(tracer))
//
// # File Format
//
// Trace files are a stream of CBOR-encoded Events with integer keys. Use
// NewReader or the "nautilus trace" command to read them back.
package trace
