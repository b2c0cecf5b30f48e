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
	"math"
)

// Servo pulse width limits in microseconds for 0 and 180 degrees.
const (
	ServoMinPulse = 1000
	ServoMaxPulse = 2000
)

// SetGPIO drives a GPIO pin high or low.
func (d *Device) SetGPIO(pin int, on bool) error {
	if err := checkGPIOPin(pin); err != nil {
		return err
	}
	return d.write(cmdGPIOSet, pin, formatBool(on))
}

// ReadGPIO reads the level of a GPIO pin.
func (d *Device) ReadGPIO(pin int) (bool, error) {
	if err := checkGPIOPin(pin); err != nil {
		return false, err
	}
	return d.queryBool(cmdGPIORead, pin)
}

// SetServo enables servo output on pin with the given pulse width.
func (d *Device) SetServo(pin, pulseUS int) error {
	if err := checkServo(pin, pulseUS); err != nil {
		return err
	}
	return d.write(cmdServoSet, pin, pulseUS)
}

// SetServoEnable switches servo output on pin.
func (d *Device) SetServoEnable(pin int, on bool) error {
	if err := checkGPIOPin(pin); err != nil {
		return err
	}
	return d.write(cmdServoEnable, pin, formatBool(on))
}

// SetServoPulse changes the pulse width of an enabled servo output.
func (d *Device) SetServoPulse(pin, pulseUS int) error {
	if err := checkServo(pin, pulseUS); err != nil {
		return err
	}
	return d.write(cmdServoPulseWidth, pin, pulseUS)
}

// SetServoAngle positions a standard servo. 0 degrees maps to a 1000us
// pulse and 180 degrees to 2000us.
func (d *Device) SetServoAngle(pin int, degrees float64) error {
	return d.SetServoPulse(pin, ServoPulseForAngle(degrees))
}

// ServoPulseForAngle converts an angle in degrees to a pulse width in
// microseconds, rounded to the nearest microsecond.
func ServoPulseForAngle(degrees float64) int {
	return int(math.Round(degrees/180*(ServoMaxPulse-ServoMinPulse) + ServoMinPulse))
}

func checkServo(pin, pulseUS int) error {
	if err := checkGPIOPin(pin); err != nil {
		return err
	}
	if pulseUS <= 0 {
		return fmt.Errorf("%w: servo pulse %dus", ErrInvalidParameter, pulseUS)
	}
	return nil
}
