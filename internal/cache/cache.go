// Chargewatch - EV Charging Station Monitor for Home Automation
// Copyright 2026 Chargewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chargewatch/chargewatch

// Package cache holds the latest station snapshots between refresh
// passes. The cache is replaced wholesale at the end of each pass;
// readers never observe a half-updated fleet.
package cache

import (
	"math"
	"sync"
	"time"

	"github.com/chargewatch/chargewatch/internal/station"
)

// SnapshotCache is a thread-safe holder for the most recent refresh
// pass. Before the first Replace it reports no data; it never serves a
// partial pass.
type SnapshotCache struct {
	mu         sync.RWMutex
	stations   []station.Snapshot
	lastUpdate time.Time
	lastFetch  time.Time
	hasData    bool
}

// New creates an empty snapshot cache.
func New() *SnapshotCache {
	return &SnapshotCache{}
}

// Replace swaps in the result of a completed refresh pass and stamps the
// update time. The slice is owned by the cache after this call.
func (c *SnapshotCache) Replace(snaps []station.Snapshot, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stations = snaps
	c.lastUpdate = now
	c.lastFetch = now
	c.hasData = true
}

// Stations returns a copy of the cached snapshots. The copy protects
// readers from a concurrent Replace swapping the backing slice.
func (c *SnapshotCache) Stations() []station.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]station.Snapshot, len(c.stations))
	copy(out, c.stations)
	return out
}

// Len returns the number of cached snapshots.
func (c *SnapshotCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.stations)
}

// Find returns the snapshot for the given QR code.
func (c *SnapshotCache) Find(qrCode string) (station.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, snap := range c.stations {
		if snap.QRCode == qrCode {
			return snap, true
		}
	}
	return station.Snapshot{}, false
}

// LastUpdate returns the completion time of the most recent refresh
// pass. ok is false until the first pass completes.
func (c *SnapshotCache) LastUpdate() (t time.Time, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastUpdate, c.hasData
}

// Age returns the cache age in seconds rounded to one decimal, relative
// to now. ok is false until the first pass completes. A clock step
// backwards clamps to zero rather than reporting a negative age.
func (c *SnapshotCache) Age(now time.Time) (age float64, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.hasData {
		return 0, false
	}

	seconds := now.Sub(c.lastFetch).Seconds()
	if seconds < 0 {
		seconds = 0
	}
	return math.Round(seconds*10) / 10, true
}
