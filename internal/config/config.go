// Chargewatch - EV Charging Station Monitor for Home Automation
// Copyright 2026 Chargewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chargewatch/chargewatch

// Package config loads and validates Chargewatch configuration from
// layered sources: built-in defaults, an optional YAML file, and
// environment variables (highest priority).
//
// Legacy deployments configure everything through the environment:
//
//	STATIONS="GRDR-0123*1:Carport,GRDR-0124*1:Driveway"
//	PORT=5000
//	REFRESH_INTERVAL=300
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/chargewatch/chargewatch/internal/station"
	"github.com/chargewatch/chargewatch/internal/validation"
)

// Config is the root configuration for the service.
type Config struct {
	// StationsSpec is the raw "qr:name,qr:name" station list from the
	// STATIONS environment variable. It takes precedence over the
	// structured Stations list when set.
	StationsSpec string `koanf:"stations_spec"`

	// Stations is the structured station list (YAML config file form).
	Stations []station.Config `koanf:"stations"`

	EVC      EVCConfig      `koanf:"evc"`
	Server   ServerConfig   `koanf:"server"`
	Refresh  RefreshConfig  `koanf:"refresh"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// EVCConfig holds EVC mobile-gateway connection settings.
type EVCConfig struct {
	BaseURL string        `koanf:"base_url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RefreshConfig holds background refresh settings. The interval is kept
// as plain seconds for compatibility with the REFRESH_INTERVAL variable.
type RefreshConfig struct {
	IntervalSeconds int `koanf:"interval_seconds"`
}

// Interval returns the refresh interval as a duration.
func (r RefreshConfig) Interval() time.Duration {
	return time.Duration(r.IntervalSeconds) * time.Second
}

// SecurityConfig holds rate limiting and CORS settings for the read API.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		StationsSpec: "",
		Stations:     nil, // no demo stations: an unconfigured fleet fails validation
		EVC: EVCConfig{
			BaseURL: "https://mobile-gateway.evc-net.com/api/v1",
			APIKey:  "dab0e236-94b6-4b5d-a856-7d8773ceb496", // published direct-payment web key
			Timeout: 10 * time.Second,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Refresh: RefreshConfig{
			IntervalSeconds: 300,
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"}, // read-only API, home network deployments
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// parseStations parses the "qr:name,qr:name" station list format.
// A pair without a colon uses the QR code as its display name.
// Whitespace around items is trimmed; empty items are skipped.
func parseStations(raw string) []station.Config {
	if raw == "" {
		return nil
	}

	var stations []station.Config
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		qrCode, name, found := strings.Cut(item, ":")
		qrCode = strings.TrimSpace(qrCode)
		if qrCode == "" {
			continue
		}
		if !found || strings.TrimSpace(name) == "" {
			name = qrCode
		}

		stations = append(stations, station.Config{
			QRCode: qrCode,
			Name:   strings.TrimSpace(name),
		})
	}
	return stations
}

// Validate checks the configuration for startup-blocking problems.
func (c *Config) Validate() error {
	if len(c.Stations) == 0 {
		return fmt.Errorf("no stations configured: set STATIONS to \"qr:name,qr:name\" pairs")
	}

	seen := make(map[string]struct{}, len(c.Stations))
	for i := range c.Stations {
		st := &c.Stations[i]
		if err := validation.ValidateStruct(st); err != nil {
			return fmt.Errorf("station %q: %w", st.QRCode, err)
		}
		if _, dup := seen[st.QRCode]; dup {
			return fmt.Errorf("duplicate station QR code %q", st.QRCode)
		}
		seen[st.QRCode] = struct{}{}
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}

	if c.Refresh.IntervalSeconds < 10 {
		return fmt.Errorf("refresh interval %ds is below the 10s minimum", c.Refresh.IntervalSeconds)
	}

	if c.EVC.BaseURL == "" {
		return fmt.Errorf("evc base URL must not be empty")
	}
	if c.EVC.Timeout <= 0 {
		return fmt.Errorf("evc timeout must be positive")
	}

	return nil
}
