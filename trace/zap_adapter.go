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

package trace

import (
	"go.uber.org/zap"
)

// ZapAdapter writes trace events to a zap logger at debug level.
type ZapAdapter struct {
	logger *zap.Logger
}

// NewZapAdapter creates a ZapAdapter around logger.
func NewZapAdapter(logger *zap.Logger) *ZapAdapter {
	return &ZapAdapter{logger: logger}
}

// Log writes the event as a structured debug entry.
func (a *ZapAdapter) Log(event Event) {
	fields := []zap.Field{
		zap.String("session_id", event.SessionID),
		zap.String("direction", event.Direction.String()),
		zap.String("kind", event.Kind.String()),
		zap.String("text", event.Text),
	}
	if event.Endpoint != "" {
		fields = append(fields, zap.String("endpoint", event.Endpoint))
	}
	if event.Latency > 0 {
		fields = append(fields, zap.Duration("latency", event.Latency))
	}

	a.logger.Debug("scpi trace", fields...)
}

var _ Logger = (*ZapAdapter)(nil)
