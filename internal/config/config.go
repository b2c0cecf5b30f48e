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

// Package config loads the nautilus CLI configuration from file,
// environment and flags.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g. NAUTILUS_DEVICE_URI.
const EnvPrefix = "NAUTILUS"

// Config represents the CLI configuration
type Config struct {
	Device    DeviceConfig    `mapstructure:"device"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Trace     TraceConfig     `mapstructure:"trace"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
}

// DeviceConfig selects and tunes the jig connection
type DeviceConfig struct {
	URI          string        `mapstructure:"uri"`
	Timeout      time.Duration `mapstructure:"timeout"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	BaudRate     int           `mapstructure:"baud_rate"`
	ResetOnClose bool          `mapstructure:"reset_on_close"`
	StrictAck    bool          `mapstructure:"strict_ack"`
	SettleTime   time.Duration `mapstructure:"settle_time"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// TraceConfig enables the CBOR command trace when Path is set
type TraceConfig struct {
	Path string `mapstructure:"path"`
}

// DiscoveryConfig controls device detection
type DiscoveryConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	MDNS    bool          `mapstructure:"mdns"`
}

// flagKeys maps global flag names to configuration keys.
var flagKeys = map[string]string{
	"uri":       "device.uri",
	"log-level": "logging.level",
	"trace":     "trace.path",
}

// Load reads configuration. An explicit path must exist; otherwise
// nautilus.yaml is looked up in the working directory, the user config
// directory and /etc/nautilus, and its absence is not an error. Flags in
// flags that were set on the command line override everything else.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("nautilus")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/nautilus")
		v.AddConfigPath("/etc/nautilus")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("device.uri", "")
	v.SetDefault("device.timeout", "1s")
	v.SetDefault("device.dial_timeout", "5s")
	v.SetDefault("device.baud_rate", 9600)
	v.SetDefault("device.reset_on_close", true)
	v.SetDefault("device.strict_ack", false)
	v.SetDefault("device.settle_time", "500ms")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", false)

	v.SetDefault("trace.path", "")

	v.SetDefault("discovery.timeout", "2s")
	v.SetDefault("discovery.mdns", true)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Device.Timeout <= 0 {
		return errors.New("device.timeout must be positive")
	}
	if config.Device.DialTimeout <= 0 {
		return errors.New("device.dial_timeout must be positive")
	}
	if config.Device.BaudRate <= 0 {
		return errors.New("device.baud_rate must be positive")
	}
	if config.Device.SettleTime < 0 {
		return errors.New("device.settle_time must not be negative")
	}
	if config.Discovery.Timeout <= 0 {
		return errors.New("discovery.timeout must be positive")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, config.Logging.Level) {
		return fmt.Errorf("logging.level must be one of: %v", validLevels)
	}

	validFormats := []string{"json", "console"}
	if !slices.Contains(validFormats, config.Logging.Format) {
		return fmt.Errorf("logging.format must be one of: %v", validFormats)
	}

	return nil
}
