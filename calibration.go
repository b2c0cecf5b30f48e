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
	"time"

	"go.uber.org/zap"
)

// CalibrationResult holds the two points committed by CalibrateOutput.
type CalibrationResult struct {
	Channel   int     `yaml:"channel"`
	SetpointA float64 `yaml:"setpoint_a"`
	MeasuredA float64 `yaml:"measured_a"`
	SetpointB float64 `yaml:"setpoint_b"`
	MeasuredB float64 `yaml:"measured_b"`
}

// CalibrateOutput performs a two-point calibration of an analog output.
//
// The output is looped back to the input of the same channel by the
// calibration fixture. Each uncalibrated setpoint is applied, left to settle
// and measured; the device derives the correction from the committed pairs.
func (d *Device) CalibrateOutput(ch int, setpointA, setpointB float64) (CalibrationResult, error) {
	if err := checkAnalogChannel(ch); err != nil {
		return CalibrationResult{}, err
	}

	if err := d.SetOutputEnable(ch, true); err != nil {
		return CalibrationResult{}, err
	}

	measuredA, err := d.measureUncalibrated(ch, setpointA)
	if err != nil {
		return CalibrationResult{}, err
	}
	measuredB, err := d.measureUncalibrated(ch, setpointB)
	if err != nil {
		return CalibrationResult{}, err
	}

	if err := d.SetOutputEnable(ch, false); err != nil {
		return CalibrationResult{}, err
	}

	err = d.write(cmdOutputCalibrate, ch,
		formatFixed(setpointA), formatFixed(measuredA),
		formatFixed(setpointB), formatFixed(measuredB))
	if err != nil {
		return CalibrationResult{}, err
	}

	d.config.Logger.Info("output calibrated",
		zap.Int("channel", ch),
		zap.Float64("measured_a", measuredA),
		zap.Float64("measured_b", measuredB))

	return CalibrationResult{
		Channel:   ch,
		SetpointA: setpointA,
		MeasuredA: measuredA,
		SetpointB: setpointB,
		MeasuredB: measuredB,
	}, nil
}

func (d *Device) measureUncalibrated(ch int, setpoint float64) (float64, error) {
	if err := d.write(cmdOutputUncalibrated, ch, formatFixed(setpoint)); err != nil {
		return 0, err
	}
	if d.config.SettleTime > 0 {
		time.Sleep(d.config.SettleTime)
	}
	return d.GetInputVoltage(ch)
}
