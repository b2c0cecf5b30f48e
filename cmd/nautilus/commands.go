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
	"io"
	"os"
	"time"

	nautilus "github.com/ZaparooProject/go-nautilus"
	"github.com/ZaparooProject/go-nautilus/trace"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

func (a *app) discover(ctx context.Context) error {
	devices, err := a.detect(ctx, a.detectOptions(), a.detectors()...)
	if err != nil {
		return err
	}
	a.out.Devices(devices)
	return nil
}

func (a *app) info(_ context.Context, device *nautilus.Device) error {
	identity := device.Identity()
	a.out.Field("Vendor", identity.Vendor)
	a.out.Field("Serial", identity.Serial)
	a.out.Field("Firmware", fmt.Sprintf("v%g", identity.Version))

	readings := []struct {
		name string
		unit string
		get  func() (float64, error)
	}{
		{name: "VIN", unit: "V", get: device.GetVin},
		{name: "Temperature", unit: "C", get: device.GetTemperature},
		{name: "VREF", unit: "V", get: device.GetReferenceVoltage},
	}
	for _, r := range readings {
		v, err := r.get()
		if err != nil {
			return fmt.Errorf("read %s: %w", r.name, err)
		}
		a.out.Field(r.name, fmt.Sprintf("%.3f %s", v, r.unit))
	}

	network := []struct {
		name string
		get  func() (string, error)
	}{
		{name: "IP", get: device.GetIP},
		{name: "MAC", get: device.GetMAC},
		{name: "Hostname", get: device.GetHostname},
	}
	for _, n := range network {
		v, err := n.get()
		if err != nil {
			return fmt.Errorf("read %s: %w", n.name, err)
		}
		a.out.Field(n.name, v)
	}
	return nil
}

func (a *app) scan(_ context.Context, device *nautilus.Device) error {
	if err := device.OpenI2C(nautilus.DefaultI2CSpeed); err != nil {
		return err
	}
	addresses, scanErr := device.ScanAllI2C()
	if err := errors.Join(scanErr, device.CloseI2C()); err != nil {
		return err
	}

	if len(addresses) == 0 {
		a.out.Info("No I2C devices acknowledged")
		return nil
	}
	for _, address := range addresses {
		a.out.Printf("0x%02x\n", address)
	}
	return nil
}

func (a *app) eeprom(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: eeprom needs read or write", errUsage)
	}

	flags := pflag.NewFlagSet("eeprom "+args[0], pflag.ContinueOnError)
	address := flags.Int("addr", nautilus.DefaultEEPROMAddress, "7-bit I2C address")
	offset := flags.Int("offset", 0, "first byte")
	count := flags.Int("count", nautilus.EEPROMSize, "bytes to read")
	pageSize := flags.Int("page-size", nautilus.DefaultEEPROMPageSize, "EEPROM page size")
	speed := flags.Int("speed", nautilus.DefaultI2CSpeed, "bus speed in Hz")
	verify := flags.Bool("verify", false, "read back and compare")
	if err := flags.Parse(args[1:]); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	switch args[0] {
	case "read":
		return a.withDevice(ctx, func(_ context.Context, device *nautilus.Device) error {
			if err := device.OpenI2C(*speed); err != nil {
				return err
			}
			var data []byte
			var err error
			if *verify {
				data, err = device.ReadEEPROMStable(*address, *offset, *count, nautilus.DefaultVerifyConfig())
			} else {
				data, err = device.ReadEEPROM(*address, *offset, *count)
			}
			if err := errors.Join(err, device.CloseI2C()); err != nil {
				return err
			}
			a.out.Printf("%s\n", nautilus.EncodeHex(data))
			return nil
		})

	case "write":
		if flags.NArg() != 1 {
			return fmt.Errorf("%w: eeprom write needs one hex payload", errUsage)
		}
		payload, err := nautilus.DecodeHex(flags.Arg(0))
		if err != nil {
			return err
		}
		return a.withDevice(ctx, func(_ context.Context, device *nautilus.Device) error {
			if err := device.OpenI2C(*speed); err != nil {
				return err
			}
			var err error
			if *verify {
				err = device.WriteEEPROMVerified(*address, *offset, payload, *pageSize, nautilus.DefaultVerifyConfig())
			} else {
				err = device.WriteEEPROM(*address, *offset, payload, *pageSize)
			}
			if err := errors.Join(err, device.CloseI2C()); err != nil {
				return err
			}
			a.out.Info("Wrote %d bytes at offset %d", len(payload), *offset)
			return nil
		})

	default:
		return fmt.Errorf("%w: unknown eeprom command %q", errUsage, args[0])
	}
}

type calibrationReport struct {
	Device    string                       `yaml:"device"`
	Serial    string                       `yaml:"serial"`
	Firmware  string                       `yaml:"firmware"`
	Timestamp time.Time                    `yaml:"timestamp"`
	Results   []nautilus.CalibrationResult `yaml:"results"`
}

func (a *app) calibrate(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("calibrate", pflag.ContinueOnError)
	channels := flags.IntSlice("channels", []int{1}, "analog channels to calibrate")
	setpointA := flags.Float64("a", 1.0, "first setpoint in volts")
	setpointB := flags.Float64("b", 11.0, "second setpoint in volts")
	reportPath := flags.String("report", "", "write a YAML report to this file instead of stdout")
	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	return a.withDevice(ctx, func(ctx context.Context, device *nautilus.Device) error {
		identity := device.Identity()
		report := calibrationReport{
			Device:    device.Endpoint(),
			Serial:    identity.Serial,
			Firmware:  fmt.Sprintf("v%g", identity.Version),
			Timestamp: time.Now().UTC(),
		}

		for _, ch := range *channels {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := device.CalibrateOutput(ch, *setpointA, *setpointB)
			if err != nil {
				return fmt.Errorf("calibrate channel %d: %w", ch, err)
			}
			a.out.Calibration(result)
			report.Results = append(report.Results, result)
		}

		return a.writeReport(*reportPath, report)
	})
}

func (a *app) writeReport(path string, report calibrationReport) error {
	var w io.Writer = a.out.out
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return enc.Close()
}

func (a *app) dumpTrace(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: trace needs one file", errUsage)
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	reader := trace.NewReader(f)
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		a.out.Printf("%s %s %-3s %-8s %q", event.Timestamp.Format("15:04:05.000"),
			shortID(event.SessionID), event.Direction, event.Kind, event.Text)
		if event.Latency > 0 {
			a.out.Printf(" (%s)", event.Latency)
		}
		a.out.Printf("\n")
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
