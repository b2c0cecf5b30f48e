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

// Command nautilus drives a Nautilus test jig from the shell.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZaparooProject/go-nautilus/internal/config"
	"github.com/ZaparooProject/go-nautilus/internal/logging"
	"github.com/spf13/pflag"
)

const usage = `Usage: nautilus [flags] <command> [args]

Commands:
  discover                 list reachable jigs
  info                     print identity and system readings
  console                  interactive SCPI shell
  scan                     list acknowledging I2C addresses
  eeprom read|write        access an I2C EEPROM
  calibrate                two-point calibration of analog outputs
  serial                   print lines from the serial passthrough
  trace <file>             print a recorded command trace

Flags:
`

var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet("nautilus", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.SetInterspersed(false)
	configPath := flags.String("config", "", "configuration file (default nautilus.yaml)")
	flags.String("uri", "", "device URI, e.g. tcp://nautilus.local or tty:///dev/ttyACM0")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("trace", "", "append a CBOR command trace to this file")
	flags.Usage = func() {
		_, _ = fmt.Fprint(stderr, usage)
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return 2
	}

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logger, logCloser, err := logging.New(cfg.Logging)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = logCloser.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(cfg, logger, NewOutput(stdout, stderr))
	defer a.close()

	if err := a.dispatch(ctx, flags.Arg(0), flags.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) {
			flags.Usage()
			return 2
		}
		a.out.Error("%v", err)
		return 1
	}
	return 0
}
