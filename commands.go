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

// SCPI command templates. Channel and pin numbers are substituted with %d.
const (
	cmdIdentify = "*IDN?"
	cmdReset    = "*RST"

	cmdInputFrequency = "INP:FREQ %sHz"
	cmdInputVoltage   = "INP%d:VOLT?"

	cmdOutputVoltage      = "OUT%d:VOLT %sV"
	cmdOutputEnable       = "OUT%d:ENA %s"
	cmdOutputSet          = "OUT%d:SET %s, %sV"
	cmdOutputUncalibrated = "OUT%d:VOLT:UNCAL %sV"
	cmdOutputCalibrate    = "OUT%d:VOLT:CAL %sV, %sV, %sV, %sV"

	cmdPSUVoltage     = "POW%d:VOLT %sV"
	cmdPSUCurrent     = "POW%d:CURR %sA"
	cmdPSUEnable      = "POW%d:ENA %s"
	cmdPSUSet         = "POW%d:SET %s, %sV, %sA"
	cmdPSUMeasVoltage = "POW%d:MEAS:VOLT?"
	cmdPSUMeasCurrent = "POW%d:MEAS:CURR?"

	cmdVin              = "VIN?"
	cmdTemperature      = "SYST:TEMP?"
	cmdReferenceVoltage = "SYST:VREF?"
	cmdBeep             = "SYST:BEEP %dHz, %ss"
	cmdNetIP            = "SYST:NET:IPAD?"
	cmdNetMAC           = "SYST:NET:MAC?"
	cmdNetHostname      = "SYST:NET:NAME?"
	cmdNetSetHostname   = "SYST:NET:NAME \"%s\""
	cmdNetAddress       = "SYST:NET:NAME:RES?"

	cmdSerialBaud      = "AUX:SER:BAUD %d"
	cmdSerialEnable    = "AUX:SER:ENA %s"
	cmdSerialRead      = "AUX:SER:READ %d"
	cmdSerialRemaining = "AUX:SER:READ?"
	cmdSerialWrite     = "AUX:SER:WRITE %s"
	cmdSerialDir       = "AUX:SER:DIR %s"

	cmdI2CSpeed    = "AUX:IIC:SPEED %d"
	cmdI2CEnable   = "AUX:IIC:ENA %s"
	cmdI2CRead     = "AUX:IIC:READ %d, %d"
	cmdI2CWrite    = "AUX:IIC:WRITE %d, %s"
	cmdI2CTransfer = "AUX:IIC:TRAN %d, %s, %d"
	cmdI2CScan     = "AUX:IIC:SCAN %d"

	cmdGPIOSet         = "AUX:GPIO%d:SET %s"
	cmdGPIORead        = "AUX:GPIO%d:READ?"
	cmdServoSet        = "AUX:GPIO%d:SERV:SET ON, %dus"
	cmdServoEnable     = "AUX:GPIO%d:SERV:ENA %s"
	cmdServoPulseWidth = "AUX:GPIO%d:SERV:PULS %dus"
)

// Direction pin modes for AUX:SER:DIR.
const (
	dirOff        = "OFF"
	dirActiveHigh = "TX"
	dirActiveLow  = "NTX"
)

// Channel and pin ranges.
const (
	MinAnalogChannel = 1
	MaxAnalogChannel = 12
	MinPSUChannel    = 1
	MaxPSUChannel    = 2
	MinGPIOPin       = 1
	MaxGPIOPin       = 8
)

// I2C addressing limits.
const (
	// MaxI2CAddress is one past the highest 7-bit address.
	MaxI2CAddress = 0x80
	// EEPROMSize is the addressable range of a single offset byte.
	EEPROMSize = 256
)

// Defaults for the 24AA01 EEPROM fitted to most fixtures.
const (
	DefaultEEPROMAddress  = 0x50
	DefaultEEPROMPageSize = 8
)

// versionUnified is the first firmware version with INP:FREQ and POW<ch>:SET.
const versionUnified = 1.0
