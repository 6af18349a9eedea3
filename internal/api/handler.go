// Chargewatch - EV Charging Station Monitor for Home Automation
// Copyright 2026 Chargewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chargewatch/chargewatch

// Package api serves the cached station data over read-only JSON
// endpoints. Response field names are consumed by Home Assistant REST
// sensor templates and are part of the compatibility contract.
package api

import (
	"context"
	"time"

	"github.com/chargewatch/chargewatch/internal/cache"
	"github.com/chargewatch/chargewatch/internal/config"
	"github.com/chargewatch/chargewatch/internal/station"
)

// Refresher triggers a synchronous refresh pass on demand.
// Satisfied by *poller.Poller.
type Refresher interface {
	RefreshAll(ctx context.Context) error
}

// Handler holds the dependencies for all HTTP handlers.
type Handler struct {
	cache     *cache.SnapshotCache
	refresher Refresher
	cfg       *config.Config
	startTime time.Time
}

// NewHandler creates a handler backed by the snapshot cache.
func NewHandler(snapshots *cache.SnapshotCache, refresher Refresher, cfg *config.Config) *Handler {
	return &Handler{
		cache:     snapshots,
		refresher: refresher,
		cfg:       cfg,
		startTime: time.Now(),
	}
}

// lastUpdate returns the RFC3339 cache timestamp, or nil before the
// first completed refresh (rendered as JSON null).
func (h *Handler) lastUpdate() *string {
	t, ok := h.cache.LastUpdate()
	if !ok {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

// statusOrUnknown substitutes UNKNOWN for a blank status (errored
// snapshots carry no status field).
func statusOrUnknown(s station.Status) station.Status {
	if s == "" {
		return station.StatusUnknown
	}
	return s
}

// statusResponse is the body of /api/status and /api/refresh.
type statusResponse struct {
	Success    bool               `json:"success"`
	Stations   []station.Snapshot `json:"stations"`
	LastUpdate *string            `json:"last_update"`
}

// refreshErrorResponse is the /api/refresh failure body.
type refreshErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// stationsResponse is the body of /api/v1/stations.
type stationsResponse struct {
	Stations   []station.Snapshot `json:"stations"`
	Count      int                `json:"count"`
	LastUpdate *string            `json:"last_update"`
}

// stationDetailResponse is the flattened single-station view of
// /api/v1/station/{id}: first EVSE, first connector. Missing EVSE or
// connector data renders as empty strings.
type stationDetailResponse struct {
	QRCode        string         `json:"qr_code"`
	Name          string         `json:"name"`
	Status        station.Status `json:"status"`
	Address       string         `json:"address"`
	City          string         `json:"city"`
	Provider      string         `json:"provider"`
	EVSEID        string         `json:"evse_id"`
	EVSEStatus    station.Status `json:"evse_status"`
	ConnectorType string         `json:"connector_type"`
	PowerType     string         `json:"power_type"`
	MaxPowerKW    string         `json:"max_power_kw"`
	LastUpdate    *string        `json:"last_update"`
	Available     bool           `json:"available"`
}

// summaryResponse is the body of /api/v1/summary.
type summaryResponse struct {
	station.Summary
	LastUpdate *string `json:"last_update"`
}

// healthResponse is the body of /health.
type healthResponse struct {
	Status             string   `json:"status"`
	StationsConfigured int      `json:"stations_configured"`
	StationsCached     int      `json:"stations_cached"`
	LastUpdate         *string  `json:"last_update"`
	CacheAgeSeconds    *float64 `json:"cache_age_seconds"`
	UptimeSeconds      float64  `json:"uptime_seconds"`
}
