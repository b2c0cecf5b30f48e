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

package main

import (
	"fmt"
	"io"

	nautilus "github.com/ZaparooProject/go-nautilus"
	"github.com/ZaparooProject/go-nautilus/detection"
)

// Output handles consistent formatting of messages
type Output struct {
	out io.Writer
	err io.Writer
}

// NewOutput creates a new output handler
func NewOutput(out, err io.Writer) *Output {
	return &Output{out: out, err: err}
}

// Printf writes command results to standard output
func (o *Output) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.out, format, args...)
}

// Info writes progress messages to standard error
func (o *Output) Info(format string, args ...any) {
	_, _ = fmt.Fprintf(o.err, format+"\n", args...)
}

// Error prints an error message
func (o *Output) Error(format string, args ...any) {
	_, _ = fmt.Fprintf(o.err, "Error: "+format+"\n", args...)
}

// Devices prints one detected device per line
func (o *Output) Devices(devices []detection.DeviceInfo) {
	for _, d := range devices {
		o.Printf("%-32s %-6s %-6s %s\n", d.URI, d.Transport, d.Confidence, d.Name)
	}
}

// Field prints an aligned key/value line
func (o *Output) Field(name string, value any) {
	o.Printf("%-12s %v\n", name+":", value)
}

// Calibration prints a calibration result summary
func (o *Output) Calibration(r nautilus.CalibrationResult) {
	o.Printf("channel %d: %.3f V -> %.3f V, %.3f V -> %.3f V\n",
		r.Channel, r.SetpointA, r.MeasuredA, r.SetpointB, r.MeasuredB)
}
