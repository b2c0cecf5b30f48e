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

// Package uart detects Nautilus jigs attached as USB CDC serial ports.
package uart

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/go-nautilus/detection"
	// registers the tty:// scheme used by the URIs this detector returns
	_ "github.com/ZaparooProject/go-nautilus/transport/uart"
	"go.bug.st/serial/enumerator"
)

// serialPort is a candidate port with whatever USB metadata the OS reported.
type serialPort struct {
	Path         string
	Name         string
	VIDPID       string
	Product      string
	SerialNumber string
	IsUSB        bool
}

type portLister func() ([]*enumerator.PortDetails, error)

// Detector enumerates serial ports and picks those with the Nautilus USB ID.
type Detector struct {
	list  portLister
	probe detection.ProbeFunc
}

// New returns a detector backed by the OS port enumerator.
func New() *Detector {
	return &Detector{
		list:  enumerator.GetDetailedPortsList,
		probe: detection.Probe,
	}
}

func init() {
	detection.RegisterDetector(New())
}

// Transport returns "uart".
func (*Detector) Transport() string {
	return "uart"
}

// Detect lists serial ports whose USB VID:PID matches a Nautilus. In Safe
// mode each match is opened and identified.
func (d *Detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	if opts == nil {
		defaults := detection.DefaultOptions()
		opts = &defaults
	}

	ports, err := d.ports()
	if err != nil {
		return nil, err
	}

	var devices []detection.DeviceInfo
	for _, port := range ports {
		if err := ctx.Err(); err != nil {
			return devices, err
		}
		if !port.IsUSB || port.VIDPID != detection.NautilusVIDPID {
			continue
		}
		if detection.IsPathIgnored(port.Path, opts.IgnorePaths) {
			continue
		}

		device := detection.DeviceInfo{
			Transport:  d.Transport(),
			Path:       port.Path,
			Name:       port.Name,
			URI:        "tty://" + port.Path,
			Confidence: detection.Medium,
			Metadata: map[string]string{
				"vidpid": port.VIDPID,
			},
		}
		if port.Product != "" {
			device.Metadata["product"] = port.Product
		}
		if port.SerialNumber != "" {
			device.Metadata["usb_serial"] = port.SerialNumber
		}

		detection.Confirm(ctx, d.probe, &device, opts)
		devices = append(devices, device)
	}

	return devices, nil
}

func (d *Detector) ports() ([]serialPort, error) {
	details, err := d.list()
	if err != nil {
		return nil, fmt.Errorf("enumerate serial ports: %w", err)
	}

	ports := make([]serialPort, 0, len(details))
	for _, detail := range details {
		if detail == nil || detail.Name == "" {
			continue
		}
		port := serialPort{
			Path:         detail.Name,
			Name:         filepath.Base(detail.Name),
			IsUSB:        detail.IsUSB,
			Product:      detail.Product,
			SerialNumber: detail.SerialNumber,
		}
		if detail.IsUSB {
			port.VIDPID = detection.FormatVIDPID(detail.VID, detail.PID)
		}
		ports = append(ports, port)
	}

	return dropTTYDuplicates(ports), nil
}

// dropTTYDuplicates removes macOS /dev/tty.* entries that have a /dev/cu.*
// twin. The callout device does not wait for carrier detect.
func dropTTYDuplicates(ports []serialPort) []serialPort {
	callout := make(map[string]bool)
	for _, p := range ports {
		if strings.HasPrefix(p.Path, "/dev/cu.") {
			callout[p.Path] = true
		}
	}

	kept := ports[:0]
	for _, p := range ports {
		if strings.HasPrefix(p.Path, "/dev/tty.") &&
			callout[strings.Replace(p.Path, "/dev/tty.", "/dev/cu.", 1)] {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}
