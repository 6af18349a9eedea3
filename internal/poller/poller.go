// Chargewatch - EV Charging Station Monitor for Home Automation
// Copyright 2026 Chargewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chargewatch/chargewatch

// Package poller drives the periodic station refresh: fetch every
// configured station from the gateway, normalize the responses, and
// replace the snapshot cache with the completed pass.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chargewatch/chargewatch/internal/cache"
	"github.com/chargewatch/chargewatch/internal/evc"
	"github.com/chargewatch/chargewatch/internal/logging"
	"github.com/chargewatch/chargewatch/internal/metrics"
	"github.com/chargewatch/chargewatch/internal/station"
)

// GatewayClient is the subset of the EVC client the poller needs.
// Satisfied by *evc.Client; mock implementations are used in tests.
type GatewayClient interface {
	GuestToken(ctx context.Context, deviceID string) (string, error)
	LocationDetails(ctx context.Context, qrCode, token, deviceID string) (*evc.Location, error)
}

// Poller refreshes all configured stations on a fixed interval.
type Poller struct {
	client   GatewayClient
	cache    *cache.SnapshotCache
	stations []station.Config
	interval time.Duration

	// Runtime state
	mu       sync.RWMutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup

	// refreshMu serializes passes so a forced refresh from the API
	// cannot interleave with the scheduled one.
	refreshMu sync.Mutex
}

// New creates a poller for the given station list.
func New(client GatewayClient, snapshots *cache.SnapshotCache, stations []station.Config, interval time.Duration) *Poller {
	return &Poller{
		client:   client,
		cache:    snapshots,
		stations: stations,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// RefreshAll performs one full refresh pass and replaces the cache.
//
// One fresh device identity is generated per pass and shared by every
// station call in it. Stations are fetched sequentially in configuration
// order; a station failure becomes that snapshot's error field and the
// pass continues. The cache is only replaced after the final station, so
// readers never see a partial pass.
//
// Returns an error only when the context is canceled mid-pass; the cache
// is left untouched in that case.
func (p *Poller) RefreshAll(ctx context.Context) error {
	p.refreshMu.Lock()
	defer p.refreshMu.Unlock()

	start := time.Now()
	deviceID := uuid.NewString()
	snaps := make([]station.Snapshot, 0, len(p.stations))
	failed := 0

	for _, cfg := range p.stations {
		if err := ctx.Err(); err != nil {
			return err
		}

		snap := p.fetchStation(ctx, cfg, deviceID)
		if snap.Failed() {
			failed++
			logging.Warn().Str("station", cfg.QRCode).Str("error", snap.Error).Msg("Station fetch failed")
		}
		snaps = append(snaps, snap)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	p.cache.Replace(snaps, time.Now())
	metrics.RecordRefreshPass(time.Since(start), len(snaps))

	logging.Info().
		Int("stations", len(snaps)).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("Refresh pass completed")

	return nil
}

// fetchStation fetches and normalizes one station. Token acquisition and
// the location call each feed their error straight into the snapshot.
func (p *Poller) fetchStation(ctx context.Context, cfg station.Config, deviceID string) station.Snapshot {
	token, err := p.client.GuestToken(ctx, deviceID)
	if err != nil {
		metrics.RecordStationFetch("token")
		return station.Normalize(nil, err, cfg, time.Now())
	}

	loc, err := p.client.LocationDetails(ctx, cfg.QRCode, token, deviceID)
	if err != nil {
		metrics.RecordStationFetch(fetchFailureReason(err))
		return station.Normalize(nil, err, cfg, time.Now())
	}

	metrics.RecordStationFetch("success")
	return station.Normalize(loc, nil, cfg, time.Now())
}

// fetchFailureReason maps a location fetch error to a metric label.
func fetchFailureReason(err error) string {
	if _, ok := evc.IsStatusError(err); ok {
		return "api_status"
	}
	if errors.Is(err, evc.ErrNoToken) {
		return "token"
	}
	return "transport"
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.stopChan = make(chan struct{})
	p.mu.Unlock()

	logging.Info().Dur("interval", p.interval).Int("stations", len(p.stations)).Msg("Starting station poller")

	p.wg.Add(1)
	go p.pollLoop(ctx)

	return nil
}

// Serve implements suture.Service for supervisor integration.
func (p *Poller) Serve(ctx context.Context) error {
	if err := p.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	p.Stop()

	return ctx.Err()
}

// Stop gracefully stops the polling loop.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopChan)
	p.mu.Unlock()

	p.wg.Wait()
	logging.Info().Msg("[poller] Station poller stopped")
}

// IsRunning returns whether the poller is active.
func (p *Poller) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// pollLoop is the main polling loop: one immediate pass, then one per
// interval tick.
func (p *Poller) pollLoop(ctx context.Context) {
	defer p.wg.Done()

	p.refresh(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("[poller] Context canceled, stopping")
			return
		case <-p.stopChan:
			logging.Info().Msg("[poller] Stop signal received")
			return
		case <-ticker.C:
			p.refresh(ctx)
		}
	}
}

// refresh runs one pass and logs failures without killing the loop.
func (p *Poller) refresh(ctx context.Context) {
	if err := p.RefreshAll(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Refresh pass aborted")
	}
}
