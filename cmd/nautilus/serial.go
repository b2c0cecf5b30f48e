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

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	nautilus "github.com/ZaparooProject/go-nautilus"
	"github.com/ZaparooProject/go-nautilus/polling"
	"github.com/spf13/pflag"
)

func (a *app) serial(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("serial", pflag.ContinueOnError)
	baud := flags.Int("baud", 115200, "passthrough baud rate")
	dir := flags.String("dir", "off", "RS-485 direction pin: off, tx or ntx")
	delim := flags.String("delim", `\n`, "line delimiter; \\r and \\n are unescaped")
	idle := flags.Duration("idle", 5*time.Second, "report the link idle after this much silence")
	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	enable, activeHigh, err := parseDir(*dir)
	if err != nil {
		return err
	}

	return a.withDevice(ctx, func(ctx context.Context, device *nautilus.Device) error {
		if err := device.OpenSerial(*baud); err != nil {
			return err
		}
		if err := device.SetDirPin(enable, activeHigh); err != nil {
			return errors.Join(err, device.CloseSerial())
		}

		monitor := polling.NewMonitor(device, &polling.Config{
			Delimiter:   []byte(unescape(*delim)),
			ReadTimeout: 250 * time.Millisecond,
			IdleTimeout: *idle,
		})
		monitor.OnLine = func(line []byte) error {
			a.out.Printf("%s\n", line)
			return nil
		}
		monitor.OnIdle = func() { a.out.Info("link idle") }
		monitor.OnActive = func() { a.out.Info("link active") }

		a.out.Info("Listening at %d baud, Ctrl-C to stop", *baud)
		err := monitor.Start(ctx)
		if ctx.Err() != nil {
			err = nil
		}
		state := monitor.State()
		a.out.Info("%d lines, %d bytes", state.Lines, state.Bytes)
		return errors.Join(err, device.CloseSerial())
	})
}

func parseDir(dir string) (enable, activeHigh bool, err error) {
	switch strings.ToLower(dir) {
	case "off":
		return false, false, nil
	case "tx":
		return true, true, nil
	case "ntx":
		return true, false, nil
	default:
		return false, false, fmt.Errorf("%w: direction %q", errUsage, dir)
	}
}

func unescape(s string) string {
	return strings.NewReplacer(`\r`, "\r", `\n`, "\n", `\t`, "\t").Replace(s)
}
