// Chargewatch - EV Charging Station Monitor for Home Automation
// Copyright 2026 Chargewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chargewatch/chargewatch

package station

import (
	"fmt"
	"time"

	"github.com/chargewatch/chargewatch/internal/evc"
)

// Normalize converts a vendor location payload into a flat Snapshot.
//
// When fetchErr is non-nil the snapshot carries only the station identity
// and the error message; location data from a previous pass is never mixed
// into a failed fetch.
//
// The overall status aggregates EVSE statuses with a deliberate bias:
// it adopts the first EVSE status seen, and any AVAILABLE EVSE afterwards
// forces the overall status to AVAILABLE. Consumers treat "can I charge
// here at all" as the question being answered.
func Normalize(loc *evc.Location, fetchErr error, cfg Config, now time.Time) Snapshot {
	if fetchErr != nil {
		return NewErrorSnapshot(cfg, fetchErr.Error())
	}
	if loc == nil {
		return NewErrorSnapshot(cfg, "empty location payload")
	}

	overall := StatusUnknown
	evses := make([]EVSE, 0, len(loc.EVSEs))

	for _, raw := range loc.EVSEs {
		evseStatus := StatusUnknown
		if raw.Status != "" {
			evseStatus = Status(raw.Status)
		}

		if overall == StatusUnknown {
			overall = evseStatus
		} else if evseStatus == StatusAvailable {
			overall = StatusAvailable
		}

		connectors := make([]Connector, 0, len(raw.Connectors))
		for _, conn := range raw.Connectors {
			connectors = append(connectors, Connector{
				ConnectorID: conn.ID.String(),
				Type:        conn.Standard,
				PowerType:   conn.PowerType,
				MaxPower:    formatPowerKW(conn.MaxElectricPower),
				Status:      evseStatus,
			})
		}

		evses = append(evses, EVSE{
			EVSEID:     raw.EVSEID,
			Status:     evseStatus,
			Connectors: connectors,
		})
	}

	address := loc.Address
	if address == "" {
		address = loc.Name
	}

	return Snapshot{
		QRCode:       cfg.QRCode,
		ConfigName:   cfg.Name,
		LocationName: loc.Name,
		Address:      address,
		PostalCode:   loc.PostalCode,
		City:         loc.City,
		Provider:     evc.OperatorName(loc.Operator),
		Status:       overall,
		EVSEs:        evses,
		Timestamp:    stampTime(now),
	}
}

// formatPowerKW converts watts to kilowatts with one fractional digit.
// Absent or zero power renders as "0.0".
func formatPowerKW(watts float64) string {
	return fmt.Sprintf("%.1f", watts/1000)
}
