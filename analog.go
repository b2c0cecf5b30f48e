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
)

// SetInputFrequency configures the mains frequency the inputs filter against.
// Firmware older than v1.0 has no such command; the frequency is still
// remembered so GetInputVoltageAt does not resend it.
func (d *Device) SetInputFrequency(hz float64) error {
	if err := d.ready(); err != nil {
		return err
	}
	if hz <= 0 {
		return fmt.Errorf("%w: input frequency %v", ErrInvalidParameter, hz)
	}

	if d.Version() >= versionUnified {
		if err := d.write(cmdInputFrequency, formatFixed(hz)); err != nil {
			return err
		}
	}
	d.inputFrequency = &hz
	return nil
}

// InputFrequency returns the last configured input frequency, if any.
func (d *Device) InputFrequency() (float64, bool) {
	if d.inputFrequency == nil {
		return 0, false
	}
	return *d.inputFrequency, true
}

// GetInputVoltage measures an analog input.
func (d *Device) GetInputVoltage(ch int) (float64, error) {
	if err := checkAnalogChannel(ch); err != nil {
		return 0, err
	}
	return d.queryFloat(cmdInputVoltage, ch)
}

// GetInputVoltageAt measures an analog input after switching the input
// frequency to hz, if it is not already configured.
func (d *Device) GetInputVoltageAt(ch int, hz float64) (float64, error) {
	if err := checkAnalogChannel(ch); err != nil {
		return 0, err
	}
	if d.inputFrequency == nil || *d.inputFrequency != hz {
		if err := d.SetInputFrequency(hz); err != nil {
			return 0, err
		}
	}
	return d.queryFloat(cmdInputVoltage, ch)
}

// SetOutputVoltage sets an analog output setpoint.
func (d *Device) SetOutputVoltage(ch int, volts float64) error {
	if err := checkAnalogChannel(ch); err != nil {
		return err
	}
	return d.write(cmdOutputVoltage, ch, formatFixed(volts))
}

// SetOutputEnable switches an analog output on or off.
func (d *Device) SetOutputEnable(ch int, on bool) error {
	if err := checkAnalogChannel(ch); err != nil {
		return err
	}
	return d.write(cmdOutputEnable, ch, formatBool(on))
}

// SetOutput sets the state and setpoint of an analog output in one command.
func (d *Device) SetOutput(ch int, on bool, volts float64) error {
	if err := checkAnalogChannel(ch); err != nil {
		return err
	}
	return d.write(cmdOutputSet, ch, formatBool(on), formatFixed(volts))
}

// SetPSUVoltage sets the voltage limit of a PSU output.
func (d *Device) SetPSUVoltage(ch int, volts float64) error {
	if err := checkPSUChannel(ch); err != nil {
		return err
	}
	return d.write(cmdPSUVoltage, ch, formatFixed(volts))
}

// SetPSUCurrent sets the current limit of a PSU output.
func (d *Device) SetPSUCurrent(ch int, amps float64) error {
	if err := checkPSUChannel(ch); err != nil {
		return err
	}
	return d.write(cmdPSUCurrent, ch, formatFixed(amps))
}

// SetPSUEnable switches a PSU output on or off.
func (d *Device) SetPSUEnable(ch int, on bool) error {
	if err := checkPSUChannel(ch); err != nil {
		return err
	}
	return d.write(cmdPSUEnable, ch, formatBool(on))
}

// SetPSU configures a PSU output. From v1.0 this is a single POW<ch>:SET;
// older firmware gets voltage, current and enable as separate commands in
// that order.
func (d *Device) SetPSU(ch int, on bool, volts, amps float64) error {
	if err := checkPSUChannel(ch); err != nil {
		return err
	}
	if err := d.ready(); err != nil {
		return err
	}

	if d.Version() >= versionUnified {
		return d.write(cmdPSUSet, ch, formatBool(on), formatFixed(volts), formatFixed(amps))
	}

	if err := d.SetPSUVoltage(ch, volts); err != nil {
		return err
	}
	if err := d.SetPSUCurrent(ch, amps); err != nil {
		return err
	}
	return d.SetPSUEnable(ch, on)
}

// GetPSUVoltage measures the voltage of a PSU output.
func (d *Device) GetPSUVoltage(ch int) (float64, error) {
	if err := checkPSUChannel(ch); err != nil {
		return 0, err
	}
	return d.queryFloat(cmdPSUMeasVoltage, ch)
}

// GetPSUCurrent measures the current of a PSU output.
func (d *Device) GetPSUCurrent(ch int) (float64, error) {
	if err := checkPSUChannel(ch); err != nil {
		return 0, err
	}
	return d.queryFloat(cmdPSUMeasCurrent, ch)
}
