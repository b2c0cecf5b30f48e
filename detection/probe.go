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

package detection

import (
	"context"
	"errors"
	"strconv"
	"time"

	nautilus "github.com/ZaparooProject/go-nautilus"
)

// ProbeFunc identifies the device behind uri.
type ProbeFunc func(ctx context.Context, uri string, timeout time.Duration) (nautilus.Identity, error)

// Probe opens uri, asks for identification and closes it again. The device
// is not reset. The transport for the URI scheme must be registered.
func Probe(ctx context.Context, uri string, timeout time.Duration) (nautilus.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nautilus.Identity{}, err
	}

	transport, err := nautilus.OpenTransport(uri, nautilus.TransportConfig{DialTimeout: timeout})
	if err != nil {
		return nautilus.Identity{}, err
	}

	session := nautilus.NewSession(transport, nautilus.SessionConfig{Timeout: timeout, Endpoint: uri})
	raw, err := session.IdentifyContext(ctx)
	if err != nil {
		return nautilus.Identity{}, errors.Join(err, session.Close())
	}
	identity, err := nautilus.ParseIdentity(raw)
	return identity, errors.Join(err, session.Close())
}

// Confirm probes device in Safe mode and records the outcome. A device that
// answers as a Nautilus is raised to High confidence; one that fails to
// answer keeps its confidence with the error noted in its metadata.
func Confirm(ctx context.Context, probe ProbeFunc, device *DeviceInfo, opts *Options) {
	if opts.Mode != Safe || probe == nil {
		return
	}
	if device.Metadata == nil {
		device.Metadata = make(map[string]string)
	}

	identity, err := probe(ctx, device.URI, opts.Timeout)
	if err != nil {
		device.Metadata["probe_error"] = err.Error()
		return
	}

	device.Confidence = High
	device.Metadata["serial"] = identity.Serial
	device.Metadata["version"] = "v" + strconv.FormatFloat(identity.Version, 'f', -1, 64)
}
