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

/*
Package nautilus provides a pure Go driver for the Nautilus hardware test jig.

The Nautilus speaks a line-oriented SCPI dialect over a TCP socket or a USB
serial link. This package maps its commands onto typed methods and handles
the two awkward parts of the protocol: reassembling serial passthrough data
from bounded hex polls, and page-aligned EEPROM writes on the auxiliary I2C
bus.

Features:
  - TCP and serial transports selected by URI scheme
  - Analog inputs and outputs, PSU outputs and two-point output calibration
  - Auxiliary serial, I2C and GPIO/servo passthrough
  - EEPROM page writer with acknowledge polling
  - Protocol tracing to CBOR files
  - Device discovery over USB and mDNS (see the detection packages)

Basic Usage:

	import (
	    "github.com/ZaparooProject/go-nautilus"
	    _ "github.com/ZaparooProject/go-nautilus/transport/tcp"
	)

	device, err := nautilus.Connect("tcp://nautilus.local")
	if err != nil {
	    log.Fatal(err)
	}
	defer device.Close()

	vin, err := device.GetVin()
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Printf("Vin: %.2fV\n", vin)

Or scoped, closing the device on every path:

	err := nautilus.WithDevice("tty:///dev/ttyACM0", func(d *nautilus.Device) error {
	    return d.SetPSU(1, true, 5.0, 0.5)
	}, nautilus.WithTimeout(2*time.Second))

Transport Selection:

Transports register themselves for a URI scheme when their package is
imported:

  - tcp://host[:port]: transport/tcp, port 5025 by default
  - tty://path[:baud]: transport/uart, 9600 baud by default

Firmware Versions:

The protocol version is read from the identification string when the device
is opened. Firmware older than v1.0 has no INP:FREQ command and configures
the PSU with three separate commands; the driver handles both.

Error Handling:

All operations return errors that can be inspected with errors.Is:

	if errors.Is(err, nautilus.ErrTimeout) {
	    // no response in time
	}

Thread Safety:

Device operations are not thread-safe. If you need concurrent access,
implement appropriate synchronization in your application.
*/
package nautilus
