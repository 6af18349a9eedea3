// Chargewatch - EV Charging Station Monitor for Home Automation
// Copyright 2026 Chargewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chargewatch/chargewatch

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chargewatch/chargewatch/internal/logging"
	"github.com/chargewatch/chargewatch/internal/station"
	"github.com/chargewatch/chargewatch/internal/validation"
)

// Status returns all cached station snapshots.
//
// GET /api/status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, statusResponse{
		Success:    true,
		Stations:   h.cache.Stations(),
		LastUpdate: h.lastUpdate(),
	})
}

// Refresh forces a synchronous refresh pass and returns the fresh data.
// Per-station upstream failures end up inside the snapshots, not here;
// the endpoint itself fails only when the pass cannot run at all.
//
// GET /api/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.refresher.RefreshAll(r.Context()); err != nil {
		logging.Error().Err(err).Msg("Forced refresh failed")
		respondJSON(w, http.StatusInternalServerError, refreshErrorResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, statusResponse{
		Success:    true,
		Stations:   h.cache.Stations(),
		LastUpdate: h.lastUpdate(),
	})
}

// Stations returns the cached snapshots with a count.
//
// GET /api/v1/stations
func (h *Handler) Stations(w http.ResponseWriter, r *http.Request) {
	stations := h.cache.Stations()
	respondJSON(w, http.StatusOK, stationsResponse{
		Stations:   stations,
		Count:      len(stations),
		LastUpdate: h.lastUpdate(),
	})
}

// StationByID returns a flattened single-station view suitable for one
// Home Assistant REST sensor: first EVSE, first connector.
//
// GET /api/v1/station/{id}
func (h *Handler) StationByID(w http.ResponseWriter, r *http.Request) {
	qrCode := chi.URLParam(r, "id")

	if err := validation.ValidateQRCode(qrCode); err != nil {
		logging.Warn().Str("qr_code", sanitizeLogValue(qrCode)).Msg("Rejected station id")
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, found := h.cache.Find(qrCode)
	if !found {
		respondError(w, http.StatusNotFound, "Station not found")
		return
	}

	var firstEVSE station.EVSE
	if len(snap.EVSEs) > 0 {
		firstEVSE = snap.EVSEs[0]
	}
	var firstConn station.Connector
	if len(firstEVSE.Connectors) > 0 {
		firstConn = firstEVSE.Connectors[0]
	}

	respondJSON(w, http.StatusOK, stationDetailResponse{
		QRCode:        snap.QRCode,
		Name:          snap.ConfigName,
		Status:        statusOrUnknown(snap.Status),
		Address:       snap.Address,
		City:          snap.City,
		Provider:      snap.Provider,
		EVSEID:        firstEVSE.EVSEID,
		EVSEStatus:    firstEVSE.Status,
		ConnectorType: firstConn.Type,
		PowerType:     firstConn.PowerType,
		MaxPowerKW:    firstConn.MaxPower,
		LastUpdate:    h.lastUpdate(),
		Available:     snap.Available(),
	})
}

// Summary returns fleet-level availability counts.
//
// GET /api/v1/summary
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, summaryResponse{
		Summary:    station.Summarize(h.cache.Stations()),
		LastUpdate: h.lastUpdate(),
	})
}

// Health reports process liveness and cache freshness. It always
// returns 200; monitoring decides what a stale cache means.
//
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	var agePtr *float64
	if age, ok := h.cache.Age(time.Now()); ok {
		agePtr = &age
	}

	respondJSON(w, http.StatusOK, healthResponse{
		Status:             "healthy",
		StationsConfigured: len(h.cfg.Stations),
		StationsCached:     h.cache.Len(),
		LastUpdate:         h.lastUpdate(),
		CacheAgeSeconds:    agePtr,
		UptimeSeconds:      time.Since(h.startTime).Seconds(),
	})
}

// methodNotAllowed is chi's 405 handler with the flat error shape.
func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// notFound is chi's 404 handler with the flat error shape.
func notFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "Not found")
}
