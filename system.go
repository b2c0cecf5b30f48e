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
	"strings"
	"time"
)

// GetVin measures the supply voltage of the jig.
func (d *Device) GetVin() (float64, error) {
	return d.queryFloat(cmdVin)
}

// GetTemperature returns the board temperature in degrees Celsius.
func (d *Device) GetTemperature() (float64, error) {
	return d.queryFloat(cmdTemperature)
}

// GetReferenceVoltage returns the measured ADC reference voltage.
func (d *Device) GetReferenceVoltage() (float64, error) {
	return d.queryFloat(cmdReferenceVoltage)
}

// Beep sounds the buzzer at hz for duration.
func (d *Device) Beep(hz int, duration time.Duration) error {
	if hz <= 0 || duration < 0 {
		return fmt.Errorf("%w: beep %dHz for %v", ErrInvalidParameter, hz, duration)
	}
	return d.write(cmdBeep, hz, formatFixed(duration.Seconds()))
}

// GetIP returns the IP address of the network interface.
func (d *Device) GetIP() (string, error) {
	return d.query(cmdNetIP)
}

// GetMAC returns the MAC address of the network interface.
func (d *Device) GetMAC() (string, error) {
	return d.query(cmdNetMAC)
}

// GetHostname returns the configured hostname.
func (d *Device) GetHostname() (string, error) {
	return d.query(cmdNetHostname)
}

// SetHostname changes the hostname. The name is sent quoted, so it may not
// contain quotes or line breaks.
func (d *Device) SetHostname(name string) error {
	if name == "" || strings.ContainsAny(name, "\"\r\n") {
		return fmt.Errorf("%w: hostname %q", ErrInvalidParameter, name)
	}
	return d.write(cmdNetSetHostname, name)
}

// GetAddress returns the resolved network name. The bool is false when the
// device has not resolved one.
func (d *Device) GetAddress() (string, bool, error) {
	address, err := d.query(cmdNetAddress)
	if err != nil {
		return "", false, err
	}
	if address == "" {
		return "", false, nil
	}
	return address, true, nil
}
