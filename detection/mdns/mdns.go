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

// Package mdns detects networked Nautilus jigs advertising a raw SCPI
// socket over multicast DNS.
package mdns

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/ZaparooProject/go-nautilus/detection"
	// registers the tcp:// scheme used by the URIs this detector returns
	_ "github.com/ZaparooProject/go-nautilus/transport/tcp"
	"github.com/enbility/zeroconf/v3"
)

const (
	// ServiceType is the DNS-SD service the jig firmware advertises.
	ServiceType = "_scpi-raw._tcp"
	// Domain is the mDNS browse domain.
	Domain = "local."
	// namePrefix matches the instance or host name of a Nautilus.
	namePrefix = "nautilus"
)

type browseFunc func(ctx context.Context, service, domain string, entries, removed chan *zeroconf.ServiceEntry) error

func browse(ctx context.Context, service, domain string, entries, removed chan *zeroconf.ServiceEntry) error {
	return zeroconf.Browse(ctx, service, domain, entries, removed)
}

// Detector browses for SCPI raw socket services named like a Nautilus.
type Detector struct {
	browse browseFunc
	probe  detection.ProbeFunc
}

// New returns a detector that browses on every multicast interface.
func New() *Detector {
	return &Detector{
		browse: browse,
		probe:  detection.Probe,
	}
}

func init() {
	detection.RegisterDetector(New())
}

// Transport returns "mdns".
func (*Detector) Transport() string {
	return "mdns"
}

// Detect browses for opts.Timeout and returns the services still announced
// when the window closes.
func (d *Detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	if opts == nil {
		defaults := detection.DefaultOptions()
		opts = &defaults
	}

	browseCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)
	errCh := make(chan error, 1)

	go func() {
		errCh <- d.browse(browseCtx, ServiceType, Domain, entries, removed)
	}()

	found := make(map[string]*zeroconf.ServiceEntry)
	var order []string

collect:
	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				break collect
			}
			if !isNautilus(entry) {
				continue
			}
			if _, seen := found[entry.Instance]; !seen {
				order = append(order, entry.Instance)
			}
			found[entry.Instance] = entry

		case entry, ok := <-removed:
			if !ok {
				removed = nil
				continue
			}
			if entry != nil {
				delete(found, entry.Instance)
			}

		case err := <-errCh:
			if err != nil {
				return nil, fmt.Errorf("browse %s: %w", ServiceType, err)
			}
			errCh = nil

		case <-browseCtx.Done():
			break collect
		}
	}
	cancel()

	// the parent context ending is an error; our own browse window is not
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var devices []detection.DeviceInfo
	for _, instance := range order {
		entry, ok := found[instance]
		if !ok {
			continue
		}
		device, ok := toDeviceInfo(entry)
		if !ok || detection.IsPathIgnored(device.Path, opts.IgnorePaths) {
			continue
		}
		detection.Confirm(ctx, d.probe, &device, opts)
		devices = append(devices, device)
	}
	return devices, nil
}

func isNautilus(entry *zeroconf.ServiceEntry) bool {
	if entry == nil {
		return false
	}
	return strings.HasPrefix(strings.ToLower(entry.Instance), namePrefix) ||
		strings.HasPrefix(strings.ToLower(entry.HostName), namePrefix)
}

// toDeviceInfo prefers an IPv4 address, then IPv6, then the host name.
func toDeviceInfo(entry *zeroconf.ServiceEntry) (detection.DeviceInfo, bool) {
	if entry.Port <= 0 {
		return detection.DeviceInfo{}, false
	}

	host := strings.TrimSuffix(entry.HostName, ".")
	switch {
	case len(entry.AddrIPv4) > 0:
		host = entry.AddrIPv4[0].String()
	case len(entry.AddrIPv6) > 0:
		host = entry.AddrIPv6[0].String()
	}
	if host == "" {
		return detection.DeviceInfo{}, false
	}

	endpoint := net.JoinHostPort(host, strconv.Itoa(entry.Port))
	metadata := map[string]string{
		"instance": entry.Instance,
	}
	if entry.HostName != "" {
		metadata["host"] = strings.TrimSuffix(entry.HostName, ".")
	}
	for _, txt := range entry.Text {
		if key, value, ok := strings.Cut(txt, "="); ok && key != "" {
			metadata["txt_"+strings.ToLower(key)] = value
		}
	}

	return detection.DeviceInfo{
		Transport:  "mdns",
		Path:       endpoint,
		Name:       entry.Instance,
		URI:        "tcp://" + endpoint,
		Confidence: detection.Medium,
		Metadata:   metadata,
	}, true
}
