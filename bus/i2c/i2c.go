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

// Package i2c exposes the Nautilus auxiliary I2C bus as a periph.io bus.
//
// Any periph device driver that accepts an i2c.Bus can then talk to parts on
// the fixture through the jig:
//
//	bus, err := i2c.New(device, 400*physic.KiloHertz)
//	if err != nil {
//	    return err
//	}
//	defer bus.Close()
//
//	eeprom := &periphi2c.Dev{Addr: 0x50, Bus: bus}
package i2c

import (
	"errors"
	"fmt"

	nautilus "github.com/ZaparooProject/go-nautilus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// DefaultSpeed is the standard-mode clock.
const DefaultSpeed = 100 * physic.KiloHertz

// ErrNotAcknowledged is returned when the addressed device does not respond.
var ErrNotAcknowledged = errors.New("i2c: device did not acknowledge")

// Controller is the part of *nautilus.Device the bus needs.
type Controller interface {
	OpenI2C(hz int) error
	CloseI2C() error
	ReadI2C(address, n int) ([]byte, error)
	WriteI2C(address int, p []byte) error
	TransferI2C(address int, p []byte, n int) ([]byte, error)
	ScanI2C(address int) (bool, error)
}

// Bus implements i2c.BusCloser on top of the jig's auxiliary I2C port.
type Bus struct {
	ctrl  Controller
	speed physic.Frequency
}

// New enables the auxiliary I2C bus at speed.
func New(ctrl Controller, speed physic.Frequency) (*Bus, error) {
	b := &Bus{ctrl: ctrl}
	if err := b.SetSpeed(speed); err != nil {
		return nil, err
	}
	return b, nil
}

// String implements i2c.Bus.
func (b *Bus) String() string {
	return fmt.Sprintf("nautilus-i2c(%s)", b.speed)
}

// Tx implements i2c.Bus. The jig has no repeated-start read without a
// write, so a read-only transaction is a plain read and a write followed by
// a read is sent as one combined transfer. An empty transaction probes addr.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	if addr >= nautilus.MaxI2CAddress {
		return fmt.Errorf("i2c: address 0x%x is not a 7-bit address", addr)
	}
	address := int(addr)

	switch {
	case len(w) == 0 && len(r) == 0:
		ok, err := b.ctrl.ScanI2C(address)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w at 0x%02x", ErrNotAcknowledged, addr)
		}
		return nil

	case len(r) == 0:
		err := b.ctrl.WriteI2C(address, w)
		if errors.Is(err, nautilus.ErrWriteRejected) {
			return fmt.Errorf("%w at 0x%02x: %w", ErrNotAcknowledged, addr, err)
		}
		return err

	case len(w) == 0:
		data, err := b.ctrl.ReadI2C(address, len(r))
		if err != nil {
			return err
		}
		return fill(r, data)

	default:
		data, err := b.ctrl.TransferI2C(address, w, len(r))
		if err != nil {
			return err
		}
		return fill(r, data)
	}
}

func fill(r, data []byte) error {
	if len(data) != len(r) {
		return fmt.Errorf("i2c: short read, got %d of %d bytes", len(data), len(r))
	}
	copy(r, data)
	return nil
}

// SetSpeed implements i2c.Bus.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	if f < physic.Hertz {
		return fmt.Errorf("i2c: invalid speed %s", f)
	}
	if err := b.ctrl.OpenI2C(int(f / physic.Hertz)); err != nil {
		return err
	}
	b.speed = f
	return nil
}

// Halt implements conn.Resource. Transactions are synchronous, so there is
// never anything pending.
func (*Bus) Halt() error {
	return nil
}

// Close disables the auxiliary I2C bus.
func (b *Bus) Close() error {
	return b.ctrl.CloseI2C()
}

var (
	_ i2c.BusCloser = (*Bus)(nil)
	_ Controller    = (*nautilus.Device)(nil)
)
