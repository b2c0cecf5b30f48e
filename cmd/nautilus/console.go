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
	"strings"

	nautilus "github.com/ZaparooProject/go-nautilus"
	"github.com/chzyer/readline"
)

// lineReader is the part of *readline.Instance the console uses.
type lineReader interface {
	Readline() (string, error)
	Stdout() io.Writer
	Close() error
}

// rawCommander sends unvalidated SCPI lines.
type rawCommander interface {
	Query(command string) (string, error)
	Write(command string) error
}

var consoleCompleter = readline.NewPrefixCompleter(
	readline.PcItem("*IDN?"),
	readline.PcItem("*RST"),
	readline.PcItem("SYST:VIN?"),
	readline.PcItem("SYST:TEMP?"),
	readline.PcItem("SYST:VREF?"),
	readline.PcItem("help"),
	readline.PcItem("exit"),
)

func newReadline() (lineReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "nautilus> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    consoleCompleter,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return rl, nil
}

func (a *app) console(ctx context.Context, device *nautilus.Device) error {
	rl, err := a.newReader()
	if err != nil {
		return err
	}
	return runConsole(ctx, device, rl)
}

// runConsole sends each line to the device. Lines ending in '?' are queries
// and print their response.
func runConsole(ctx context.Context, dev rawCommander, rl lineReader) error {
	defer func() { _ = rl.Close() }()
	out := rl.Stdout()

	_, _ = fmt.Fprintln(out, "Type SCPI commands; 'help' for help, 'exit' to leave.")
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		input := strings.TrimSpace(line)
		switch strings.ToLower(input) {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "help":
			_, _ = fmt.Fprintln(out, "Queries end in '?' and print one response line.")
			_, _ = fmt.Fprintln(out, "Anything else is sent as a command.")
			continue
		}

		if strings.HasSuffix(input, "?") {
			response, err := dev.Query(input)
			if err != nil {
				_, _ = fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			_, _ = fmt.Fprintln(out, response)
			continue
		}

		if err := dev.Write(input); err != nil {
			_, _ = fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}
