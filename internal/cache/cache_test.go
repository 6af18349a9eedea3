// Chargewatch - EV Charging Station Monitor for Home Automation
// Copyright 2026 Chargewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chargewatch/chargewatch

package cache

import (
	"testing"
	"time"

	"github.com/chargewatch/chargewatch/internal/station"
)

func TestEmptyCache(t *testing.T) {
	c := New()

	if c.Len() != 0 {
		t.Errorf("len = %d, want 0", c.Len())
	}
	if _, ok := c.LastUpdate(); ok {
		t.Error("LastUpdate should report no data before the first pass")
	}
	if _, ok := c.Age(time.Now()); ok {
		t.Error("Age should report no data before the first pass")
	}
	if _, ok := c.Find("QR1"); ok {
		t.Error("Find should miss on an empty cache")
	}
}

func TestReplace(t *testing.T) {
	c := New()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	c.Replace([]station.Snapshot{
		{QRCode: "QR1", ConfigName: "North", Status: station.StatusAvailable},
		{QRCode: "QR2", ConfigName: "South", Status: station.StatusOccupied},
	}, now)

	if c.Len() != 2 {
		t.Errorf("len = %d, want 2", c.Len())
	}

	got, ok := c.LastUpdate()
	if !ok || !got.Equal(now) {
		t.Errorf("LastUpdate = %v/%v", got, ok)
	}

	snap, ok := c.Find("QR2")
	if !ok || snap.ConfigName != "South" {
		t.Errorf("Find(QR2) = %+v/%v", snap, ok)
	}

	// Second pass swaps wholesale; stations from the first pass are gone.
	c.Replace([]station.Snapshot{{QRCode: "QR3"}}, now.Add(time.Minute))
	if c.Len() != 1 {
		t.Errorf("len after second pass = %d, want 1", c.Len())
	}
	if _, ok := c.Find("QR1"); ok {
		t.Error("QR1 should be gone after the second pass")
	}
}

func TestStationsReturnsCopy(t *testing.T) {
	c := New()
	c.Replace([]station.Snapshot{{QRCode: "QR1", ConfigName: "North"}}, time.Now())

	out := c.Stations()
	out[0].ConfigName = "mutated"

	again := c.Stations()
	if again[0].ConfigName != "North" {
		t.Error("mutating the returned slice must not affect the cache")
	}
}

func TestAge(t *testing.T) {
	c := New()
	fetched := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	c.Replace(nil, fetched)

	tests := []struct {
		name string
		now  time.Time
		want float64
	}{
		{"fresh", fetched, 0},
		{"rounded down", fetched.Add(12340 * time.Millisecond), 12.3},
		{"rounded up", fetched.Add(12360 * time.Millisecond), 12.4},
		{"clock step backwards clamps", fetched.Add(-time.Minute), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			age, ok := c.Age(tt.now)
			if !ok {
				t.Fatal("Age should report data after Replace")
			}
			if age != tt.want {
				t.Errorf("age = %v, want %v", age, tt.want)
			}
		})
	}
}
