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
	"go.uber.org/zap"
)

// VerifyConfig holds configuration for EEPROM read-back verification
type VerifyConfig struct {
	// RetryDelay specifies delay between retry attempts
	RetryDelay time.Duration

	// ReadRetries bounds the reads spent looking for two identical results
	ReadRetries int

	// WriteRetries bounds how often a mismatching write is repeated
	WriteRetries int
}

// DefaultVerifyConfig returns default verification configuration
func DefaultVerifyConfig() VerifyConfig {
	return VerifyConfig{
		ReadRetries:  3,
		WriteRetries: 3,
		RetryDelay:   50 * time.Millisecond,
	}
}

// ReadEEPROMStable reads n bytes at offset until two consecutive reads
// agree. Transfer errors reset the comparison and count as attempts.
func (d *Device) ReadEEPROMStable(address, offset, n int, cfg VerifyConfig) ([]byte, error) {
	var last []byte
	var lastErr error

	data, err := poll.Until(poll.Config{
		Interval:    cfg.RetryDelay,
		Timeout:     poll.NoTimeout,
		MaxAttempts: cfg.ReadRetries + 1,
	}, func() ([]byte, bool, error) {
		data, err := d.ReadEEPROM(address, offset, n)
		if err != nil {
			if !IsTimeout(err) && !errors.Is(err, ErrProtocol) {
				return nil, false, err
			}
			lastErr = err
			last = nil
			return nil, false, nil
		}
		if last != nil && bytes.Equal(last, data) {
			return data, true, nil
		}
		last = data
		return nil, false, nil
	})
	if err == nil {
		return data, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: EEPROM read at offset %d unstable after %d retries: %w",
			ErrVerifyFailed, offset, cfg.ReadRetries, lastErr)
	}
	if errors.Is(err, poll.ErrExhausted) {
		return nil, fmt.Errorf("%w: EEPROM read at offset %d inconsistent after %d retries",
			ErrVerifyFailed, offset, cfg.ReadRetries)
	}
	return nil, err
}

// WriteEEPROMVerified writes payload as WriteEEPROM does and reads it back.
// A mismatching read-back repeats the whole write up to cfg.WriteRetries
// times. Rejected writes and transport failures are not retried.
func (d *Device) WriteEEPROMVerified(address, offset int, payload []byte, pageSize int, cfg VerifyConfig) error {
	attempt := 0
	_, err := poll.Until(poll.Config{
		Interval:    cfg.RetryDelay,
		Timeout:     poll.NoTimeout,
		MaxAttempts: cfg.WriteRetries + 1,
	}, func() (struct{}, bool, error) {
		attempt++
		if err := d.WriteEEPROM(address, offset, payload, pageSize); err != nil {
			return struct{}{}, false, err
		}

		readBack, err := d.ReadEEPROM(address, offset, len(payload))
		if err != nil {
			return struct{}{}, false, err
		}
		if bytes.Equal(payload, readBack) {
			return struct{}{}, true, nil
		}

		d.config.Logger.Warn("EEPROM read-back mismatch",
			zap.Int("address", address),
			zap.Int("offset", offset),
			zap.Int("attempt", attempt))
		return struct{}{}, false, nil
	})
	if errors.Is(err, poll.ErrExhausted) {
		return fmt.Errorf("%w: EEPROM write at offset %d after %d retries: data mismatch",
			ErrVerifyFailed, offset, cfg.WriteRetries)
	}
	return err
}
