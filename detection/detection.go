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

// Package detection finds Nautilus jigs reachable from this host and turns
// them into connection URIs.
//
// Detectors live in subpackages and register themselves on import:
//
//	import (
//	    "github.com/ZaparooProject/go-nautilus/detection"
//	    _ "github.com/ZaparooProject/go-nautilus/detection/mdns"
//	    _ "github.com/ZaparooProject/go-nautilus/detection/uart"
//	)
//
//	devices, err := detection.DetectAll(ctx, nil)
package detection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

var (
	// ErrNoDevicesFound is returned when no detector found a device.
	ErrNoDevicesFound = errors.New("no Nautilus devices found")

	// ErrUnsupportedPlatform is returned by detectors that cannot run here.
	ErrUnsupportedPlatform = errors.New("detection not supported on this platform")
)

// Confidence ranks how sure a detector is that a device is a Nautilus.
type Confidence int

const (
	// Low means only a name matched.
	Low Confidence = iota
	// Medium means a USB ID or service record matched.
	Medium
	// High means the device answered *IDN? as a Nautilus.
	High
)

// String returns the confidence name.
func (c Confidence) String() string {
	switch c {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return "unknown"
	}
}

// Mode selects how intrusive detection may be.
type Mode int

const (
	// Passive only enumerates; no device is opened.
	Passive Mode = iota
	// Safe additionally opens each candidate and sends *IDN?.
	Safe
)

// DeviceInfo describes a detected device.
type DeviceInfo struct {
	Metadata   map[string]string
	Transport  string
	Path       string
	Name       string
	URI        string
	Confidence Confidence
}

// String returns a one-line description.
func (d DeviceInfo) String() string {
	return fmt.Sprintf("%s (%s, %s confidence)", d.URI, d.Name, d.Confidence)
}

// Options configures detection.
type Options struct {
	// IgnorePaths lists device paths or host:port endpoints to skip.
	IgnorePaths []string
	// Timeout bounds each detector and each probe.
	Timeout time.Duration
	Mode    Mode
}

// DefaultOptions returns the options used when nil is passed.
func DefaultOptions() Options {
	return Options{
		Timeout: 2 * time.Second,
		Mode:    Safe,
	}
}

// Detector finds devices over one kind of transport.
type Detector interface {
	// Transport returns the transport name, such as "uart" or "mdns".
	Transport() string
	// Detect returns the devices found. It must honour ctx.
	Detect(ctx context.Context, opts *Options) ([]DeviceInfo, error)
}

var (
	detectorsMu sync.RWMutex
	detectors   []Detector
)

// RegisterDetector adds d to the set used by DetectAll.
func RegisterDetector(d Detector) {
	detectorsMu.Lock()
	defer detectorsMu.Unlock()
	detectors = append(detectors, d)
}

// Detectors returns the registered detectors.
func Detectors() []Detector {
	detectorsMu.RLock()
	defer detectorsMu.RUnlock()
	return append([]Detector(nil), detectors...)
}

// DetectAll runs every registered detector.
func DetectAll(ctx context.Context, opts *Options) ([]DeviceInfo, error) {
	return DetectWith(ctx, opts, Detectors()...)
}

// DetectWith runs the given detectors concurrently and merges their results,
// highest confidence first. Detector errors are returned only when nothing
// was found.
func DetectWith(ctx context.Context, opts *Options, ds ...Detector) ([]DeviceInfo, error) {
	if opts == nil {
		defaults := DefaultOptions()
		opts = &defaults
	}

	type result struct {
		err     error
		name    string
		devices []DeviceInfo
	}

	results := make([]result, len(ds))
	var wg sync.WaitGroup
	for i, d := range ds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			devices, err := d.Detect(ctx, opts)
			results[i] = result{name: d.Transport(), devices: devices, err: err}
		}()
	}
	wg.Wait()

	var all []DeviceInfo
	var errs []error
	seen := make(map[string]bool)
	for _, r := range results {
		if r.err != nil && !errors.Is(r.err, ErrUnsupportedPlatform) {
			errs = append(errs, fmt.Errorf("%s: %w", r.name, r.err))
		}
		for _, device := range r.devices {
			if seen[device.URI] {
				continue
			}
			seen[device.URI] = true
			all = append(all, device)
		}
	}

	if len(all) == 0 {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
		}
		return nil, errors.Join(append([]error{ErrNoDevicesFound}, errs...)...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Confidence != all[j].Confidence {
			return all[i].Confidence > all[j].Confidence
		}
		return all[i].URI < all[j].URI
	})
	return all, nil
}
