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
	"errors"
	"fmt"
)

// Connection errors
var (
	// ErrConnection is the root of every error raised while opening or using
	// a transport channel.
	ErrConnection = errors.New("connection error")

	// ErrTransportClosed is returned when a transport is used after Close.
	ErrTransportClosed = fmt.Errorf("%w: transport closed", ErrConnection)

	// ErrUnsupportedScheme is returned when no transport is registered for a URI scheme.
	ErrUnsupportedScheme = fmt.Errorf("%w: URI scheme not recognized", ErrConnection)
)

// Timeout errors
var (
	// ErrTimeout is returned when no response line arrives before the deadline.
	ErrTimeout = errors.New("operation timeout")

	// ErrAckTimeout is returned in strict mode when an EEPROM never acknowledges
	// after a page write.
	ErrAckTimeout = fmt.Errorf("%w: device did not acknowledge page write", ErrTimeout)
)

// Protocol errors
var (
	// ErrProtocol is returned when a response cannot be parsed into the expected type.
	ErrProtocol = errors.New("protocol error")

	// ErrDeviceNotRecognized is returned when the identification string is not a Nautilus.
	ErrDeviceNotRecognized = fmt.Errorf("%w: device not recognized", ErrProtocol)
)

// Device errors
var (
	ErrWriteRejected    = errors.New("write rejected by device")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrDeviceNotOpen    = errors.New("device not open")
	ErrDeviceClosed     = errors.New("device closed")
	ErrAlreadyOpen      = errors.New("device already open")
	ErrVerifyFailed     = errors.New("verification failed")
)

// ErrorType classifies transport errors
type ErrorType string

const (
	// ErrorTypeConnection covers open failures and use after close.
	ErrorTypeConnection ErrorType = "connection"
	// ErrorTypeTimeout covers missing responses.
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeProtocol covers malformed responses.
	ErrorTypeProtocol ErrorType = "protocol"
)

// TransportError carries the operation and endpoint a transport failure happened on.
type TransportError struct {
	Err  error
	Op   string
	Port string
	Type ErrorType
}

// Error implements the error interface
func (e *TransportError) Error() string {
	if e.Port == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Port, e.Err)
}

// Unwrap returns the underlying error
func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError wraps err with the operation and endpoint it occurred on.
// The error type is derived from the sentinel err wraps.
func NewTransportError(op, port string, err error) *TransportError {
	return &TransportError{
		Op:   op,
		Port: port,
		Err:  err,
		Type: GetErrorType(err),
	}
}

// NewTimeoutError creates a timeout error for the given operation.
func NewTimeoutError(op, port string) *TransportError {
	return &TransportError{
		Op:   op,
		Port: port,
		Err:  ErrTimeout,
		Type: ErrorTypeTimeout,
	}
}

// GetErrorType classifies err by the sentinel it wraps.
func GetErrorType(err error) ErrorType {
	var te *TransportError
	if errors.As(err, &te) && te.Type != "" {
		return te.Type
	}

	switch {
	case errors.Is(err, ErrTimeout):
		return ErrorTypeTimeout
	case errors.Is(err, ErrProtocol):
		return ErrorTypeProtocol
	default:
		return ErrorTypeConnection
	}
}

// IsTimeout reports whether err is a timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// protocolErrorf builds an ErrProtocol with context.
func protocolErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrProtocol, fmt.Sprintf(format, args...))
}
