// Chargewatch - EV Charging Station Monitor for Home Automation
// Copyright 2026 Chargewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chargewatch/chargewatch

package services

import "context"

// StationPoller is the lifecycle surface of the refresh poller.
// Satisfied by *poller.Poller.
type StationPoller interface {
	Serve(ctx context.Context) error
}

// PollerService wraps the station poller as a named supervised service.
// The poller's Serve already follows suture semantics (block until the
// context is canceled, then return ctx.Err()); this wrapper only
// contributes the service name for supervisor logs.
type PollerService struct {
	poller StationPoller
	name   string
}

// NewPollerService creates a supervised wrapper around the poller.
func NewPollerService(p StationPoller) *PollerService {
	return &PollerService{
		poller: p,
		name:   "station-poller",
	}
}

// Serve implements suture.Service.
func (s *PollerService) Serve(ctx context.Context) error {
	return s.poller.Serve(ctx)
}

// String implements fmt.Stringer for logging.
func (s *PollerService) String() string {
	return s.name
}
