// Chargewatch - EV Charging Station Monitor for Home Automation
// Copyright 2026 Chargewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chargewatch/chargewatch

// Package station defines the flat station snapshot model served to
// home-automation consumers, and the normalization from the vendor's
// nested location payload into that model.
//
// Field names on the wire are consumed by Home Assistant REST sensor
// templates and must stay stable across releases.
package station

import "time"

// Status is the availability state of a station or EVSE as reported by
// the vendor API.
type Status string

const (
	StatusAvailable    Status = "AVAILABLE"
	StatusOccupied     Status = "OCCUPIED"
	StatusCharging     Status = "CHARGING"
	StatusOutOfService Status = "OUT_OF_SERVICE"
	StatusUnknown      Status = "UNKNOWN"
)

// TimestampLayout is the wall-clock format used for the snapshot timestamp.
const TimestampLayout = "15:04:05"

// Config identifies one monitored station: the QR code printed on the
// charger and the display name chosen by the operator of this service.
type Config struct {
	QRCode string `json:"qr_code" koanf:"qr_code" validate:"required,qrcode,max=50"`
	Name   string `json:"name" koanf:"name" validate:"required"`
}

// Connector describes a single physical plug on an EVSE.
type Connector struct {
	ConnectorID string `json:"connector_id"`
	Type        string `json:"type"`
	PowerType   string `json:"power_type"`
	// MaxPower is kilowatts formatted with one fractional digit ("7.4").
	MaxPower string `json:"max_power"`
	Status   Status `json:"status"`
}

// EVSE describes one charge point at a station with its connectors.
type EVSE struct {
	EVSEID     string      `json:"evse_id"`
	Status     Status      `json:"status"`
	Connectors []Connector `json:"connectors"`
}

// Snapshot is the flattened per-station view cached between refresh
// passes and embedded directly in API responses.
//
// The "connectors" key holds the EVSE list. The name predates EVSE
// modeling in the upstream payload and is kept for consumer
// compatibility.
type Snapshot struct {
	QRCode       string `json:"qr_code"`
	ConfigName   string `json:"config_name"`
	LocationName string `json:"location_name,omitempty"`
	Address      string `json:"address,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	City         string `json:"city,omitempty"`
	Provider     string `json:"provider,omitempty"`
	Status       Status `json:"status,omitempty"`
	EVSEs        []EVSE `json:"connectors,omitempty"`
	Timestamp    string `json:"timestamp,omitempty"`

	// Error carries the upstream failure for this station, verbatim.
	// When set, all location fields above are absent.
	Error string `json:"error,omitempty"`
}

// Failed reports whether this snapshot represents a fetch failure.
func (s Snapshot) Failed() bool {
	return s.Error != ""
}

// Available reports whether the station's overall status is AVAILABLE.
func (s Snapshot) Available() bool {
	return s.Status == StatusAvailable
}

// NewErrorSnapshot builds the minimal snapshot for a station whose fetch
// failed. The message is preserved exactly so automation rules can match
// on it.
func NewErrorSnapshot(cfg Config, msg string) Snapshot {
	return Snapshot{
		QRCode:     cfg.QRCode,
		ConfigName: cfg.Name,
		Error:      msg,
	}
}

// stampTime formats the snapshot wall-clock timestamp.
func stampTime(now time.Time) string {
	return now.Format(TimestampLayout)
}
