// Chargewatch - EV Charging Station Monitor for Home Automation
// Copyright 2026 Chargewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chargewatch/chargewatch

package station

import "fmt"

// SummaryEntry is the brief per-station line in the fleet summary.
type SummaryEntry struct {
	QRCode    string `json:"qr_code"`
	Name      string `json:"name"`
	Status    Status `json:"status"`
	Available bool   `json:"available"`
}

// Summary aggregates the fleet for single-sensor automation views.
// Invariant: Available + Occupied + Unavailable == Total.
type Summary struct {
	Total            int            `json:"total"`
	Available        int            `json:"available"`
	Occupied         int            `json:"occupied"`
	Unavailable      int            `json:"unavailable"`
	AllAvailable     bool           `json:"all_available"`
	AnyAvailable     bool           `json:"any_available"`
	AvailabilityText string         `json:"availability_text"`
	Stations         []SummaryEntry `json:"stations"`
}

// Summarize builds the fleet summary from cached snapshots. Errored
// stations count as unavailable: a station that cannot be queried cannot
// be offered to a driver.
func Summarize(snaps []Snapshot) Summary {
	summary := Summary{
		Total:    len(snaps),
		Stations: make([]SummaryEntry, 0, len(snaps)),
	}

	for _, snap := range snaps {
		switch snap.Status {
		case StatusAvailable:
			summary.Available++
		case StatusOccupied, StatusCharging:
			summary.Occupied++
		}

		summary.Stations = append(summary.Stations, SummaryEntry{
			QRCode:    snap.QRCode,
			Name:      snap.ConfigName,
			Status:    snap.Status,
			Available: snap.Available(),
		})
	}

	summary.Unavailable = summary.Total - summary.Available - summary.Occupied
	summary.AllAvailable = summary.Available == summary.Total
	summary.AnyAvailable = summary.Available > 0
	summary.AvailabilityText = fmt.Sprintf("%d/%d available", summary.Available, summary.Total)

	return summary
}
