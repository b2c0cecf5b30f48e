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
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/ZaparooProject/go-nautilus/internal/poll"
)

// OpenSerial configures and enables the auxiliary serial port.
// Any bytes still buffered from a previous session are discarded.
func (d *Device) OpenSerial(baud int) error {
	if baud <= 0 {
		return fmt.Errorf("%w: baud rate %d", ErrInvalidParameter, baud)
	}
	if err := d.write(cmdSerialBaud, baud); err != nil {
		return err
	}
	if err := d.write(cmdSerialEnable, tokenOn); err != nil {
		return err
	}
	d.serialBuffer = d.serialBuffer[:0]
	return nil
}

// CloseSerial disables the auxiliary serial port.
func (d *Device) CloseSerial() error {
	return d.write(cmdSerialEnable, tokenOff)
}

// GetSerialRemaining returns the number of bytes waiting in the jig's
// receive buffer. Bytes already polled into the host buffer are not counted.
func (d *Device) GetSerialRemaining() (int, error) {
	resp, err := d.query(cmdSerialRemaining)
	if err != nil {
		return 0, err
	}
	return parseInt(resp)
}

// WriteSerial transmits p on the auxiliary serial port.
func (d *Device) WriteSerial(p []byte) error {
	return d.write(cmdSerialWrite, EncodeHex(p))
}

// SetDirPin configures the RS-485 direction pin. When enabled it is driven
// during transmission, high if activeHigh is set and low otherwise.
func (d *Device) SetDirPin(enable, activeHigh bool) error {
	mode := dirOff
	if enable {
		mode = dirActiveLow
		if activeHigh {
			mode = dirActiveHigh
		}
	}
	return d.write(cmdSerialDir, mode)
}

// BufferedSerial returns the number of bytes polled but not yet returned.
func (d *Device) BufferedSerial() int {
	return len(d.serialBuffer)
}

// ReadSerialLine polls the auxiliary serial port until delim is seen and
// returns the bytes before it. The delimiter is consumed and anything after
// it stays buffered for the next read.
//
// The port is polled at least once. If no delimiter has arrived when timeout
// has elapsed, ok is false and every received byte remains buffered.
func (d *Device) ReadSerialLine(delim []byte, timeout time.Duration) (line []byte, ok bool, err error) {
	if len(delim) == 0 {
		return nil, false, fmt.Errorf("%w: empty delimiter", ErrInvalidParameter)
	}
	if err := d.ready(); err != nil {
		return nil, false, err
	}

	line, err = poll.Until(d.serialPollConfig(timeout), func() ([]byte, bool, error) {
		if err := d.pollSerial(); err != nil {
			return nil, false, err
		}
		idx := bytes.Index(d.serialBuffer, delim)
		if idx < 0 {
			return nil, false, nil
		}
		return d.consumeSerial(idx, len(delim)), true, nil
	})
	if errors.Is(err, poll.ErrExhausted) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return line, true, nil
}

// ReadSerialBytes polls the auxiliary serial port until count bytes are
// available and returns exactly count of them.
//
// On timeout it returns whatever has been received so far, possibly
// nothing, and empties the buffer. A short read is not an error.
func (d *Device) ReadSerialBytes(count int, timeout time.Duration) ([]byte, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: byte count %d", ErrInvalidParameter, count)
	}
	if err := d.ready(); err != nil {
		return nil, err
	}

	data, err := poll.Until(d.serialPollConfig(timeout), func() ([]byte, bool, error) {
		if err := d.pollSerial(); err != nil {
			return nil, false, err
		}
		if len(d.serialBuffer) < count {
			return nil, false, nil
		}
		return d.consumeSerial(count, 0), true, nil
	})
	if errors.Is(err, poll.ErrExhausted) {
		return d.consumeSerial(len(d.serialBuffer), 0), nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (d *Device) serialPollConfig(timeout time.Duration) poll.Config {
	if timeout < 0 {
		timeout = 0
	}
	return poll.Config{
		Interval: d.config.SerialPollInterval,
		Timeout:  timeout,
	}
}

// pollSerial fetches one chunk from the jig and appends it to the buffer.
// The buffer is untouched if the poll fails.
func (d *Device) pollSerial() error {
	resp, err := d.query(cmdSerialRead, d.config.SerialChunkSize)
	if err != nil {
		return err
	}
	chunk, err := DecodeHex(resp)
	if err != nil {
		return err
	}
	d.serialBuffer = append(d.serialBuffer, chunk...)
	return nil
}

// consumeSerial removes n bytes plus skip trailing bytes from the head of
// the buffer and returns the first n.
func (d *Device) consumeSerial(n, skip int) []byte {
	out := make([]byte, n)
	copy(out, d.serialBuffer[:n])
	d.serialBuffer = append(d.serialBuffer[:0], d.serialBuffer[n+skip:]...)
	return out
}
