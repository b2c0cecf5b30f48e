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
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Transport defines the line-oriented channel to a Nautilus.
// This is implemented by the TCP and UART backends.
type Transport interface {
	// WriteLine appends the line terminator and writes the whole line
	WriteLine(line string) error

	// ReadLine blocks until a complete line arrives or the timeout elapses
	ReadLine(timeout time.Duration) (string, error)

	// Close closes the transport connection
	Close() error

	// IsConnected returns true if the transport is connected
	IsConnected() bool

	// Type returns the transport type
	Type() TransportType
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportTCP represents a network socket transport.
	TransportTCP TransportType = "tcp"
	// TransportUART represents UART/serial transport.
	TransportUART TransportType = "uart"
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
)

// TransportConfig carries the settings a TransportFactory may need.
type TransportConfig struct {
	Logger      *zap.Logger
	DialTimeout time.Duration
	BaudRate    int
}

// TransportFactory opens a transport for the address part of a URI.
type TransportFactory func(address string, cfg TransportConfig) (Transport, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]TransportFactory)
)

// RegisterTransport makes a transport available for a URI scheme.
// Transport packages call this from init, so importing them is enough:
//
//	import _ "github.com/ZaparooProject/go-nautilus/transport/tcp"
func RegisterTransport(scheme string, factory TransportFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(scheme)] = factory
}

// RegisteredSchemes returns the URI schemes that have a registered transport.
func RegisteredSchemes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	schemes := make([]string, 0, len(registry))
	for scheme := range registry {
		schemes = append(schemes, scheme)
	}
	sort.Strings(schemes)
	return schemes
}

// ParseURI splits a connection URI of the form scheme://address.
func ParseURI(uri string) (scheme, address string, err error) {
	scheme, address, found := strings.Cut(uri, "://")
	if !found || scheme == "" || address == "" {
		return "", "", fmt.Errorf("%w: malformed URI %q", ErrConnection, uri)
	}
	return strings.ToLower(scheme), address, nil
}

// transportPackage names the package that registers scheme.
func transportPackage(scheme string) string {
	const base = "github.com/ZaparooProject/go-nautilus/transport/"
	switch scheme {
	case "tcp":
		return base + "tcp"
	case "tty":
		return base + "uart"
	default:
		return "a transport package for " + scheme
	}
}

// OpenTransport opens the transport registered for the scheme of uri.
func OpenTransport(uri string, cfg TransportConfig) (Transport, error) {
	scheme, address, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	registryMu.RLock()
	factory, ok := registry[scheme]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s (is %s imported?)", ErrUnsupportedScheme, scheme, transportPackage(scheme))
	}

	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	transport, err := factory(address, cfg)
	if err != nil {
		return nil, NewTransportError("open", uri, fmt.Errorf("%w: %w", ErrConnection, err))
	}
	return transport, nil
}
