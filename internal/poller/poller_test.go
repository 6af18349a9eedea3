// Chargewatch - EV Charging Station Monitor for Home Automation
// Copyright 2026 Chargewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chargewatch/chargewatch

package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/chargewatch/chargewatch/internal/cache"
	"github.com/chargewatch/chargewatch/internal/evc"
	"github.com/chargewatch/chargewatch/internal/station"
)

// mockGateway records calls and serves canned responses per QR code.
type mockGateway struct {
	mu sync.Mutex

	tokenErr   error
	tokenCalls []string // device ids, in call order

	locations    map[string]*evc.Location
	locationErrs map[string]error
	fetchOrder   []string // qr codes, in call order
	fetchDevices []string
	fetchTokens  []string

	tokenSeq int
}

func newMockGateway() *mockGateway {
	return &mockGateway{
		locations:    make(map[string]*evc.Location),
		locationErrs: make(map[string]error),
	}
}

func (m *mockGateway) GuestToken(ctx context.Context, deviceID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tokenCalls = append(m.tokenCalls, deviceID)
	if m.tokenErr != nil {
		return "", m.tokenErr
	}
	m.tokenSeq++
	return fmt.Sprintf("tok-%d", m.tokenSeq), nil
}

func (m *mockGateway) LocationDetails(ctx context.Context, qrCode, token, deviceID string) (*evc.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fetchOrder = append(m.fetchOrder, qrCode)
	m.fetchDevices = append(m.fetchDevices, deviceID)
	m.fetchTokens = append(m.fetchTokens, token)

	if err, ok := m.locationErrs[qrCode]; ok {
		return nil, err
	}
	if loc, ok := m.locations[qrCode]; ok {
		return loc, nil
	}
	return nil, &evc.StatusError{Code: 404}
}

func testStations() []station.Config {
	return []station.Config{
		{QRCode: "QR1", Name: "North"},
		{QRCode: "QR2", Name: "South"},
		{QRCode: "QR3", Name: "East"},
	}
}

func TestRefreshAll(t *testing.T) {
	gw := newMockGateway()
	gw.locations["QR1"] = &evc.Location{Name: "Site 1", EVSEs: []evc.EVSE{{EVSEID: "E1", Status: "AVAILABLE"}}}
	gw.locations["QR2"] = &evc.Location{Name: "Site 2", EVSEs: []evc.EVSE{{EVSEID: "E2", Status: "OCCUPIED"}}}
	gw.locations["QR3"] = &evc.Location{Name: "Site 3"}

	snapshots := cache.New()
	p := New(gw, snapshots, testStations(), time.Minute)

	if err := p.RefreshAll(context.Background()); err != nil {
		t.Fatalf("RefreshAll: %v", err)
	}

	if snapshots.Len() != 3 {
		t.Fatalf("cached = %d, want 3", snapshots.Len())
	}

	// Stations are fetched sequentially in configuration order.
	wantOrder := []string{"QR1", "QR2", "QR3"}
	for i, qr := range wantOrder {
		if gw.fetchOrder[i] != qr {
			t.Errorf("fetch order[%d] = %q, want %q", i, gw.fetchOrder[i], qr)
		}
	}

	// One device identity per pass, shared by every call in it.
	if len(gw.tokenCalls) != 3 {
		t.Fatalf("token calls = %d, want one per station", len(gw.tokenCalls))
	}
	for i := 1; i < len(gw.tokenCalls); i++ {
		if gw.tokenCalls[i] != gw.tokenCalls[0] {
			t.Error("all stations in a pass must share the device id")
		}
	}
	for i, dev := range gw.fetchDevices {
		if dev != gw.tokenCalls[0] {
			t.Errorf("fetch[%d] device = %q, want %q", i, dev, gw.tokenCalls[0])
		}
	}

	// Each station gets its own fresh token.
	seen := make(map[string]bool)
	for _, tok := range gw.fetchTokens {
		if seen[tok] {
			t.Errorf("token %q reused across stations", tok)
		}
		seen[tok] = true
	}

	snap, _ := snapshots.Find("QR2")
	if snap.Status != station.StatusOccupied {
		t.Errorf("QR2 status = %q", snap.Status)
	}
}

func TestRefreshAllErrorIsolation(t *testing.T) {
	gw := newMockGateway()
	gw.locations["QR1"] = &evc.Location{Name: "Site 1", EVSEs: []evc.EVSE{{Status: "AVAILABLE"}}}
	gw.locationErrs["QR2"] = &evc.StatusError{Code: 500}
	gw.locations["QR3"] = &evc.Location{Name: "Site 3", EVSEs: []evc.EVSE{{Status: "AVAILABLE"}}}

	snapshots := cache.New()
	p := New(gw, snapshots, testStations(), time.Minute)

	if err := p.RefreshAll(context.Background()); err != nil {
		t.Fatalf("RefreshAll: %v", err)
	}

	if snapshots.Len() != 3 {
		t.Fatalf("cached = %d, a failed station still yields a snapshot", snapshots.Len())
	}

	failed, _ := snapshots.Find("QR2")
	if !failed.Failed() {
		t.Fatal("QR2 should carry an error")
	}
	if failed.Error != "API error: 500" {
		t.Errorf("error = %q", failed.Error)
	}

	// The failure must not bleed into the following station.
	after, _ := snapshots.Find("QR3")
	if after.Failed() || after.Status != station.StatusAvailable {
		t.Errorf("QR3 = %+v, should be unaffected", after)
	}
}

func TestRefreshAllTokenFailure(t *testing.T) {
	gw := newMockGateway()
	gw.tokenErr = evc.ErrNoToken

	snapshots := cache.New()
	p := New(gw, snapshots, testStations()[:1], time.Minute)

	if err := p.RefreshAll(context.Background()); err != nil {
		t.Fatalf("RefreshAll: %v", err)
	}

	snap, _ := snapshots.Find("QR1")
	if snap.Error != "Failed to get authentication token" {
		t.Errorf("error = %q", snap.Error)
	}
	if len(gw.fetchOrder) != 0 {
		t.Error("location call must be skipped when no token was issued")
	}
}

func TestRefreshAllCanceledContext(t *testing.T) {
	gw := newMockGateway()
	gw.locations["QR1"] = &evc.Location{Name: "Site 1"}

	snapshots := cache.New()
	p := New(gw, snapshots, testStations(), time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.RefreshAll(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}

	if _, ok := snapshots.LastUpdate(); ok {
		t.Error("canceled pass must leave the cache untouched")
	}
}

func TestFetchFailureReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"status error", &evc.StatusError{Code: 503}, "api_status"},
		{"token error", evc.ErrNoToken, "token"},
		{"transport error", errors.New("dial tcp: timeout"), "transport"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fetchFailureReason(tt.err); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStartStop(t *testing.T) {
	gw := newMockGateway()
	gw.locations["QR1"] = &evc.Location{Name: "Site 1"}

	snapshots := cache.New()
	p := New(gw, snapshots, testStations()[:1], time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !p.IsRunning() {
		t.Error("poller should report running")
	}

	// Starting twice is a no-op.
	if err := p.Start(ctx); err != nil {
		t.Fatalf("second Start: %v", err)
	}

	// The loop performs an immediate pass on start.
	deadline := time.After(2 * time.Second)
	for snapshots.Len() == 0 {
		select {
		case <-deadline:
			t.Fatal("initial refresh pass did not complete")
		case <-time.After(10 * time.Millisecond):
		}
	}

	p.Stop()
	if p.IsRunning() {
		t.Error("poller should report stopped")
	}

	// Stopping twice is safe.
	p.Stop()
}

func TestServeStopsOnContextCancel(t *testing.T) {
	gw := newMockGateway()
	snapshots := cache.New()
	p := New(gw, snapshots, testStations()[:1], time.Hour)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- p.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	if p.IsRunning() {
		t.Error("poller should be stopped after Serve returns")
	}
}
