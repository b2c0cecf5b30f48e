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
	"fmt"
	"slices"

	nautilus "github.com/ZaparooProject/go-nautilus"
	"github.com/ZaparooProject/go-nautilus/detection"
	_ "github.com/ZaparooProject/go-nautilus/detection/mdns"
	_ "github.com/ZaparooProject/go-nautilus/detection/uart"
	"github.com/ZaparooProject/go-nautilus/internal/config"
	"github.com/ZaparooProject/go-nautilus/trace"
	"go.uber.org/zap"
)

type detectFunc func(ctx context.Context, opts *detection.Options, ds ...detection.Detector) ([]detection.DeviceInfo, error)

type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	out       *Output
	detect    detectFunc
	newReader func() (lineReader, error)
	traceFile *trace.FileLogger
}

func newApp(cfg *config.Config, logger *zap.Logger, out *Output) *app {
	return &app{
		cfg:       cfg,
		logger:    logger,
		out:       out,
		detect:    detection.DetectWith,
		newReader: newReadline,
	}
}

func (a *app) close() {
	if a.traceFile != nil {
		if err := a.traceFile.Close(); err != nil {
			a.logger.Warn("failed to close trace file", zap.Error(err))
		}
	}
}

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "discover":
		return a.discover(ctx)
	case "info":
		return a.withDevice(ctx, a.info)
	case "console":
		return a.withDevice(ctx, a.console)
	case "scan":
		return a.withDevice(ctx, a.scan)
	case "eeprom":
		return a.eeprom(ctx, args)
	case "calibrate":
		return a.calibrate(ctx, args)
	case "serial":
		return a.serial(ctx, args)
	case "trace":
		return a.dumpTrace(args)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

// detectors returns the registered detectors allowed by the configuration.
func (a *app) detectors() []detection.Detector {
	return slices.DeleteFunc(detection.Detectors(), func(d detection.Detector) bool {
		return d.Transport() == "mdns" && !a.cfg.Discovery.MDNS
	})
}

func (a *app) detectOptions() *detection.Options {
	opts := detection.DefaultOptions()
	opts.Timeout = a.cfg.Discovery.Timeout
	return &opts
}

// resolveURI returns the configured URI or the best detected device.
func (a *app) resolveURI(ctx context.Context) (string, error) {
	if a.cfg.Device.URI != "" {
		return a.cfg.Device.URI, nil
	}

	a.out.Info("No device URI configured, detecting...")
	devices, err := a.detect(ctx, a.detectOptions(), a.detectors()...)
	if err != nil {
		return "", err
	}
	a.out.Info("Using %s", devices[0])
	return devices[0].URI, nil
}

func (a *app) tracer() (trace.Logger, error) {
	var loggers []trace.Logger
	if a.cfg.Trace.Path != "" && a.traceFile == nil {
		f, err := trace.NewFileLogger(a.cfg.Trace.Path)
		if err != nil {
			return nil, fmt.Errorf("open trace file: %w", err)
		}
		a.traceFile = f
	}
	if a.traceFile != nil {
		loggers = append(loggers, a.traceFile)
	}
	if a.cfg.Logging.Level == "debug" {
		loggers = append(loggers, trace.NewZapAdapter(a.logger))
	}
	return trace.NewMultiLogger(loggers...), nil
}

func (a *app) deviceOptions(tracer trace.Logger) []nautilus.Option {
	d := a.cfg.Device
	return []nautilus.Option{
		nautilus.WithLogger(a.logger),
		nautilus.WithTracer(tracer),
		nautilus.WithTimeout(d.Timeout),
		nautilus.WithDialTimeout(d.DialTimeout),
		nautilus.WithBaudRate(d.BaudRate),
		nautilus.WithSettleTime(d.SettleTime),
		nautilus.WithStrictAck(d.StrictAck),
		nautilus.WithResetOnClose(d.ResetOnClose),
	}
}

// withDevice connects, runs fn and closes the device again.
func (a *app) withDevice(ctx context.Context, fn func(context.Context, *nautilus.Device) error) error {
	uri, err := a.resolveURI(ctx)
	if err != nil {
		return err
	}
	tracer, err := a.tracer()
	if err != nil {
		return err
	}

	return nautilus.WithDevice(uri, func(device *nautilus.Device) error {
		return fn(ctx, device)
	}, a.deviceOptions(tracer)...)
}
