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

package polling

import "time"

// Config holds serial monitor settings
type Config struct {
	// Delimiter terminates each line. The delimiter is not delivered.
	Delimiter []byte
	// ReadTimeout bounds each wait for a line
	ReadTimeout time.Duration
	// IdleTimeout is how long the link may stay silent before it is
	// reported idle. Zero disables idle reporting.
	IdleTimeout time.Duration
	// PollInterval is the shortest time between two reads that return no
	// line. Zero means DefaultPollInterval.
	PollInterval time.Duration
}

// DefaultPollInterval keeps a monitor with a short ReadTimeout from
// flooding the jig with read commands.
const DefaultPollInterval = 50 * time.Millisecond

// DefaultConfig returns the default monitor configuration
func DefaultConfig() *Config {
	return &Config{
		Delimiter:    []byte("\n"),
		ReadTimeout:  250 * time.Millisecond,
		IdleTimeout:  5 * time.Second,
		PollInterval: DefaultPollInterval,
	}
}
