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

	"github.com/ZaparooProject/go-nautilus/internal/poll"
	"go.uber.org/zap"
)

// DefaultI2CSpeed is the standard-mode bus clock in hertz.
const DefaultI2CSpeed = 100000

// OpenI2C sets the auxiliary I2C clock and enables the bus.
func (d *Device) OpenI2C(hz int) error {
	if hz <= 0 {
		return fmt.Errorf("%w: I2C speed %d", ErrInvalidParameter, hz)
	}
	if err := d.write(cmdI2CSpeed, hz); err != nil {
		return err
	}
	return d.write(cmdI2CEnable, tokenOn)
}

// CloseI2C disables the auxiliary I2C bus.
func (d *Device) CloseI2C() error {
	return d.write(cmdI2CEnable, tokenOff)
}

// ReadI2C reads n bytes from the device at address.
func (d *Device) ReadI2C(address, n int) ([]byte, error) {
	if err := checkI2CAddress(address); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: read length %d", ErrInvalidParameter, n)
	}
	resp, err := d.query(cmdI2CRead, address, n)
	if err != nil {
		return nil, err
	}
	return DecodeHex(resp)
}

// WriteI2C writes p to the device at address. ErrWriteRejected is returned
// when the target does not acknowledge.
func (d *Device) WriteI2C(address int, p []byte) error {
	if err := checkI2CAddress(address); err != nil {
		return err
	}
	acked, err := d.queryBool(cmdI2CWrite, address, EncodeHex(p))
	if err != nil {
		return err
	}
	if !acked {
		return fmt.Errorf("%w: I2C address 0x%02x", ErrWriteRejected, address)
	}
	return nil
}

// TransferI2C writes p and then reads n bytes in one combined transaction.
func (d *Device) TransferI2C(address int, p []byte, n int) ([]byte, error) {
	if err := checkI2CAddress(address); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: read length %d", ErrInvalidParameter, n)
	}
	resp, err := d.query(cmdI2CTransfer, address, EncodeHex(p), n)
	if err != nil {
		return nil, err
	}
	return DecodeHex(resp)
}

// ScanI2C reports whether a device acknowledges at address.
func (d *Device) ScanI2C(address int) (bool, error) {
	if err := checkI2CAddress(address); err != nil {
		return false, err
	}
	return d.queryBool(cmdI2CScan, address)
}

// ScanAllI2C probes every 7-bit address and returns those that acknowledge,
// in ascending order.
func (d *Device) ScanAllI2C() ([]int, error) {
	var found []int
	for address := 0; address < MaxI2CAddress; address++ {
		ok, err := d.ScanI2C(address)
		if err != nil {
			return found, err
		}
		if ok {
			found = append(found, address)
		}
	}
	return found, nil
}

// ReadEEPROM reads n bytes from an EEPROM starting at offset.
func (d *Device) ReadEEPROM(address, offset, n int) ([]byte, error) {
	if offset < 0 || offset >= EEPROMSize {
		return nil, fmt.Errorf("%w: EEPROM offset %d", ErrInvalidParameter, offset)
	}
	return d.TransferI2C(address, []byte{byte(offset)}, n)
}

// WriteEEPROM writes payload to an EEPROM starting at offset.
//
// The payload is split so that no write crosses a page boundary. After
// each page the EEPROM is probed until it acknowledges again, which it does
// once its internal write cycle has finished. If it never does the next page
// is written anyway, unless WithStrictAck is set, in which case the write
// fails with ErrAckTimeout.
//
// A rejected page aborts the write; pages already written stay written.
func (d *Device) WriteEEPROM(address, offset int, payload []byte, pageSize int) error {
	if err := checkI2CAddress(address); err != nil {
		return err
	}
	if pageSize <= 0 {
		return fmt.Errorf("%w: page size %d", ErrInvalidParameter, pageSize)
	}
	if offset < 0 || offset+len(payload) > EEPROMSize {
		return fmt.Errorf("%w: EEPROM range [%d, %d) exceeds %d bytes",
			ErrInvalidParameter, offset, offset+len(payload), EEPROMSize)
	}
	if err := d.ready(); err != nil {
		return err
	}

	for _, page := range planPages(offset, len(payload), pageSize) {
		frame := make([]byte, 0, page.Length+1)
		frame = append(frame, byte(page.Offset))
		frame = append(frame, payload[page.Index:page.Index+page.Length]...)

		if err := d.WriteI2C(address, frame); err != nil {
			return fmt.Errorf("EEPROM write at offset %d: %w", page.Offset, err)
		}
		if err := d.awaitAck(address); err != nil {
			return fmt.Errorf("EEPROM write at offset %d: %w", page.Offset, err)
		}
	}
	return nil
}

// awaitAck probes address until it acknowledges or the budget runs out.
func (d *Device) awaitAck(address int) error {
	_, err := poll.Until(poll.Config{
		Interval:    d.config.AckInterval,
		Timeout:     poll.NoTimeout,
		MaxAttempts: d.config.AckAttempts,
	}, func() (struct{}, bool, error) {
		acked, err := d.ScanI2C(address)
		return struct{}{}, acked, err
	})
	if !errors.Is(err, poll.ErrExhausted) {
		return err
	}

	if d.config.StrictAck {
		return fmt.Errorf("%w: I2C address 0x%02x", ErrAckTimeout, address)
	}
	d.config.Logger.Warn("EEPROM did not acknowledge page write, continuing",
		zap.Int("address", address),
		zap.Int("attempts", d.config.AckAttempts))
	return nil
}

// pageWrite is one on-wire EEPROM write.
type pageWrite struct {
	// Offset is the EEPROM address of the first byte.
	Offset int
	// Index is the position of the first byte in the payload.
	Index  int
	Length int
}

// planPages splits [offset, offset+length) into writes that each stay inside
// one page of pageSize bytes.
func planPages(offset, length, pageSize int) []pageWrite {
	var plan []pageWrite
	end := offset + length
	index := 0
	for offset < end {
		pageEnd := (offset/pageSize)*pageSize + pageSize
		chunk := min(pageEnd, end) - offset
		plan = append(plan, pageWrite{Offset: offset, Index: index, Length: chunk})
		offset += chunk
		index += chunk
	}
	return plan
}

func checkI2CAddress(address int) error {
	if address < 0 || address >= MaxI2CAddress {
		return fmt.Errorf("%w: I2C address %d", ErrInvalidParameter, address)
	}
	return nil
}
