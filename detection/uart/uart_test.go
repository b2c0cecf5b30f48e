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

package uart

import (
	"context"
	"errors"
	"testing"
	"time"

	nautilus "github.com/ZaparooProject/go-nautilus"
	"github.com/ZaparooProject/go-nautilus/detection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"
)

func fakePorts() []*enumerator.PortDetails {
	return []*enumerator.PortDetails{
		{Name: "/dev/ttyS0"},
		{Name: "/dev/ttyACM0", IsUSB: true, VID: "16d0", PID: "13fd", SerialNumber: "001C0048", Product: "Nautilus"},
		{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0403", PID: "6001", Product: "FT232R"},
		{Name: "/dev/ttyACM1", IsUSB: true, VID: "16D0", PID: "13FD"},
	}
}

func newTestDetector(ports []*enumerator.PortDetails, probe detection.ProbeFunc) *Detector {
	return &Detector{
		list:  func() ([]*enumerator.PortDetails, error) { return ports, nil },
		probe: probe,
	}
}

func TestDetect_PassiveMatchesUSBID(t *testing.T) {
	t.Parallel()

	probed := false
	d := newTestDetector(fakePorts(), func(context.Context, string, time.Duration) (nautilus.Identity, error) {
		probed = true
		return nautilus.Identity{}, nil
	})

	devices, err := d.Detect(context.Background(), &detection.Options{Mode: detection.Passive})
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.False(t, probed)

	assert.Equal(t, "tty:///dev/ttyACM0", devices[0].URI)
	assert.Equal(t, "ttyACM0", devices[0].Name)
	assert.Equal(t, "uart", devices[0].Transport)
	assert.Equal(t, detection.Medium, devices[0].Confidence)
	assert.Equal(t, "16D0:13FD", devices[0].Metadata["vidpid"])
	assert.Equal(t, "001C0048", devices[0].Metadata["usb_serial"])
	assert.Equal(t, "Nautilus", devices[0].Metadata["product"])

	assert.Equal(t, "tty:///dev/ttyACM1", devices[1].URI)
}

func TestDetect_SafeModeProbes(t *testing.T) {
	t.Parallel()

	d := newTestDetector(fakePorts(), func(_ context.Context, uri string, _ time.Duration) (nautilus.Identity, error) {
		if uri == "tty:///dev/ttyACM1" {
			return nautilus.Identity{}, errors.New("port busy")
		}
		return nautilus.ParseIdentity(nautilus.MockIdentity)
	})

	devices, err := d.Detect(context.Background(), &detection.Options{Mode: detection.Safe, Timeout: time.Second})
	require.NoError(t, err)
	require.Len(t, devices, 2)

	assert.Equal(t, detection.High, devices[0].Confidence)
	assert.Equal(t, "001C00484331500120373358", devices[0].Metadata["serial"])
	assert.Equal(t, "v1", devices[0].Metadata["version"])

	assert.Equal(t, detection.Medium, devices[1].Confidence)
	assert.Equal(t, "port busy", devices[1].Metadata["probe_error"])
}

func TestDetect_IgnorePaths(t *testing.T) {
	t.Parallel()

	d := newTestDetector(fakePorts(), nil)
	devices, err := d.Detect(context.Background(), &detection.Options{
		Mode:        detection.Passive,
		IgnorePaths: []string{"/dev/ttyACM0"},
	})
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "/dev/ttyACM1", devices[0].Path)
}

func TestDetect_EnumeratorError(t *testing.T) {
	t.Parallel()

	d := &Detector{list: func() ([]*enumerator.PortDetails, error) {
		return nil, errors.New("no sysfs")
	}}
	_, err := d.Detect(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no sysfs")
}

func TestDetect_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := newTestDetector(fakePorts(), nil)
	_, err := d.Detect(ctx, &detection.Options{Mode: detection.Passive})
	require.ErrorIs(t, err, context.Canceled)
}

func TestDropTTYDuplicates(t *testing.T) {
	t.Parallel()

	ports := []serialPort{
		{Path: "/dev/tty.usbmodem101"},
		{Path: "/dev/cu.usbmodem101"},
		{Path: "/dev/tty.usbmodem202"},
		{Path: "/dev/ttyACM0"},
	}

	kept := dropTTYDuplicates(ports)
	paths := make([]string, 0, len(kept))
	for _, p := range kept {
		paths = append(paths, p.Path)
	}
	assert.Equal(t, []string{"/dev/cu.usbmodem101", "/dev/tty.usbmodem202", "/dev/ttyACM0"}, paths)
}

func TestDetector_Registered(t *testing.T) {
	t.Parallel()

	found := false
	for _, d := range detection.Detectors() {
		if d.Transport() == "uart" {
			found = true
		}
	}
	assert.True(t, found)
}
