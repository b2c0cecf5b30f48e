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
	"context"
	"fmt"
	"time"
)

// QueryContext is Query bounded by ctx as well as the session timeout.
//
// A context that is already done fails before anything is written. A
// deadline shortens the read timeout; it never lengthens it. A response
// that misses a context deadline is reported as ErrTimeout, so the caller
// cannot tell the two limits apart.
func (s *Session) QueryContext(ctx context.Context, command string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context cancelled before sending command: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	timeout := s.timeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return "", fmt.Errorf("context deadline passed before sending command: %w", context.DeadlineExceeded)
		}
		timeout = min(timeout, remaining)
	}
	return s.query(command, timeout)
}

// IdentifyContext is Identify bounded by ctx.
func (s *Session) IdentifyContext(ctx context.Context) (string, error) {
	return s.QueryContext(ctx, cmdIdentify)
}
