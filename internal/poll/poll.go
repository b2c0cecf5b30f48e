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

// Package poll provides the bounded polling loop shared by the serial
// passthrough reassembly and EEPROM acknowledge polling.
package poll

import (
	"errors"
	"time"
)

// NoTimeout disables the deadline; the loop is then bounded by MaxAttempts only.
const NoTimeout time.Duration = -1

// ErrExhausted is returned when the deadline or attempt budget runs out
// before the operation reports completion.
var ErrExhausted = errors.New("polling budget exhausted")

// Operation represents one poll.
// Returns: data, done, error
// - data: the result, returned to the caller when done is true
// - done: true once the condition being polled for holds
// - error: any permanent error that should stop polling
type Operation[T any] func() (T, bool, error)

// Config bounds a polling loop.
type Config struct {
	// Sleep replaces time.Sleep between attempts (tests only).
	Sleep func(time.Duration)
	// Interval is the pause between attempts.
	Interval time.Duration
	// Timeout is measured from loop entry and checked after each attempt,
	// so a zero Timeout still performs exactly one attempt. NoTimeout
	// disables it.
	Timeout time.Duration
	// MaxAttempts bounds the number of attempts. Zero means unbounded.
	MaxAttempts int
}

// Until runs op until it reports done, returns an error, or the budget in
// cfg is exhausted. On exhaustion the zero value and ErrExhausted are
// returned. Until never sleeps after the final attempt.
func Until[T any](cfg Config, op Operation[T]) (T, error) {
	var zero T

	sleep := cfg.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var deadline time.Time
	if cfg.Timeout >= 0 {
		deadline = time.Now().Add(cfg.Timeout)
	}

	for attempt := 1; ; attempt++ {
		result, done, err := op()
		if err != nil {
			return zero, err
		}
		if done {
			return result, nil
		}

		if cfg.MaxAttempts > 0 && attempt >= cfg.MaxAttempts {
			break
		}
		if cfg.Timeout >= 0 && !time.Now().Before(deadline) {
			break
		}

		if cfg.Interval > 0 {
			sleep(cfg.Interval)
		}
	}

	return zero, ErrExhausted
}
