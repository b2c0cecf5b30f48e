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
	"time"

	"github.com/google/uuid"
)

// Event is one entry of a protocol transcript.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred.
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the command session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Endpoint is the URI or port of the transport, if known.
	Endpoint string `cbor:"3,keyasint,omitempty"`

	// Direction indicates message flow.
	Direction Direction `cbor:"4,keyasint"`

	// Kind classifies the event.
	Kind Kind `cbor:"5,keyasint"`

	// Text is the command line, response line or error message.
	Text string `cbor:"6,keyasint"`

	// Latency from command write to response, set on responses only.
	Latency time.Duration `cbor:"7,keyasint,omitempty"`
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionOut is host to jig.
	DirectionOut Direction = 0
	// DirectionIn is jig to host.
	DirectionIn Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionOut:
		return "OUT"
	case DirectionIn:
		return "IN"
	default:
		return "UNKNOWN"
	}
}

// Kind classifies a trace event.
type Kind uint8

const (
	// KindCommand is a write that expects no response.
	KindCommand Kind = 0
	// KindQuery is a write that expects one response line.
	KindQuery Kind = 1
	// KindResponse is a response line.
	KindResponse Kind = 2
	// KindError is a failed write or read.
	KindError Kind = 3
	// KindDiscarded is a late response dropped after its query timed out.
	KindDiscarded Kind = 4
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "COMMAND"
	case KindQuery:
		return "QUERY"
	case KindResponse:
		return "RESPONSE"
	case KindError:
		return "ERROR"
	case KindDiscarded:
		return "DISCARDED"
	default:
		return "UNKNOWN"
	}
}

// NewSessionID returns a fresh random session identifier.
func NewSessionID() string {
	return uuid.NewString()
}
