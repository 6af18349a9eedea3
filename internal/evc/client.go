// Chargewatch - EV Charging Station Monitor for Home Automation
// Copyright 2026 Chargewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chargewatch/chargewatch

// Package evc implements the client for the EVC mobile-gateway API.
//
// The gateway has no public API surface; this client speaks the same
// protocol as the vendor's direct-payment web app. Two calls matter:
//
//   - POST /user/guestLogin: issues a single-use guest token
//   - POST /location/getLocationDetails: resolves a station QR code to
//     live location/EVSE/connector status
//
// Tokens are single-use. Every station lookup performs a fresh
// guestLogin first; reusing a token yields an authorization error from
// the gateway. Calls are never retried - a failed station simply reports
// its error in that refresh pass and is tried again on the next one.
package evc

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/chargewatch/chargewatch/internal/logging"
	"github.com/chargewatch/chargewatch/internal/metrics"
)

// Client identity constants. These mirror the vendor's direct-payment
// web app; the gateway rejects requests with an unrecognized identity.
const (
	appIdentifier  = "ECQ-WEB"
	serviceName    = "ECQ"
	serviceVersion = "1.12.1"
	appVersion     = "1.12.1"
	platform       = "ECQ-WEB:1.0.0--android-Android 6.0"
	locale         = "en"
	webURL         = "directpayment.evc-net.com"
	originURL      = "https://directpayment.evc-net.com"
	userAgent      = "Mozilla/5.0 (Linux; Android 6.0; Nexus 5 Build/MRA58N) AppleWebKit/537.36"
)

// DefaultBaseURL is the production gateway endpoint.
const DefaultBaseURL = "https://mobile-gateway.evc-net.com/api/v1"

// DefaultTimeout bounds each gateway request.
const DefaultTimeout = 10 * time.Second

// Config holds the gateway connection settings.
type Config struct {
	// BaseURL is the gateway API root, without trailing slash.
	BaseURL string

	// APIKey is sent as the x-api-key header on every request.
	APIKey string

	// Timeout bounds each HTTP request. Default: 10s.
	Timeout time.Duration
}

// Client is the EVC gateway client. All methods are safe for concurrent
// use. Requests pass through a circuit breaker so a gateway outage stops
// hammering the vendor while individual stations keep reporting errors.
type Client struct {
	cfg        Config
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[interface{}]
	name       string
}

// NewClient creates a gateway client with circuit breaker protection.
//
// Breaker configuration:
//   - Opens after 3 consecutive failures
//   - 30 second open period before probing again
//   - Max 3 requests admitted in half-open state
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	cbName := "evc-gateway"
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cb:   cb,
		name: cbName,
	}
}

// GuestToken obtains a fresh single-use guest token for the given device
// identity. All failure modes collapse into ErrNoToken; the underlying
// cause is logged but never surfaced, matching the snapshot error
// contract.
func (c *Client) GuestToken(ctx context.Context, deviceID string) (string, error) {
	payload := map[string]interface{}{
		"deviceId":       deviceID,
		"locale":         locale,
		"platform":       platform,
		"serviceName":    serviceName,
		"serviceVersion": serviceVersion,
		"appVersion":     appVersion,
		"appIdentifier":  appIdentifier,
		"webUrl":         webURL,
	}

	result, err := c.execute("guest_login", func() (interface{}, error) {
		var resp guestLoginResponse
		if err := c.post(ctx, "/user/guestLogin", payload, &resp); err != nil {
			return nil, err
		}
		if resp.Data.Token == "" {
			return nil, ErrNoToken
		}
		return resp.Data.Token, nil
	})
	if err != nil {
		logging.Debug().Err(err).Msg("Guest login failed")
		return "", ErrNoToken
	}

	token, ok := result.(string)
	if !ok || token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// LocationDetails resolves a station QR code to its live location
// payload. The token must come from a GuestToken call in the same pass;
// the gateway invalidates it after this request.
func (c *Client) LocationDetails(ctx context.Context, qrCode, token, deviceID string) (*Location, error) {
	payload := map[string]interface{}{
		"locationId":         "",
		"channelId":          "",
		"qrCode":             qrCode,
		"evseId":             "",
		"token":              token,
		"referenceGeoBounds": map[string]interface{}{},
		"deviceId":           deviceID,
		"locale":             locale,
		"platform":           platform,
		"serviceName":        serviceName,
		"serviceVersion":     serviceVersion,
		"appIdentifier":      appIdentifier,
		"appVersion":         appVersion,
	}

	result, err := c.execute("location_details", func() (interface{}, error) {
		var resp locationDetailsResponse
		if err := c.post(ctx, "/location/getLocationDetails", payload, &resp); err != nil {
			return nil, err
		}
		return &resp.Data, nil
	})
	if err != nil {
		return nil, err
	}

	loc, ok := result.(*Location)
	if !ok {
		return nil, fmt.Errorf("unexpected result type %T", result)
	}
	return loc, nil
}

// post performs one JSON POST to the gateway and decodes the response.
// Non-2xx responses become *StatusError without reading the body shape.
func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("accept", "application/json, text/plain, */*")
	req.Header.Set("content-type", "application/json")
	req.Header.Set("origin", originURL)
	req.Header.Set("referer", originURL+"/")
	req.Header.Set("user-agent", userAgent)
	if c.cfg.APIKey != "" {
		req.Header.Set("x-api-key", c.cfg.APIKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.UpstreamRequestDuration.WithLabelValues(pathToOperation(path)).Observe(time.Since(start).Seconds())
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck // read-only response body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// execute wraps a gateway call with circuit breaker protection.
func (c *Client) execute(operation string, fn func() (interface{}, error)) (interface{}, error) {
	result, err := c.cb.Execute(fn)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(c.name, operation, "failure").Inc()
		return nil, err
	}

	metrics.UpstreamRequests.WithLabelValues(c.name, operation, "success").Inc()
	return result, nil
}

// pathToOperation maps request paths to stable metric label values.
func pathToOperation(path string) string {
	switch path {
	case "/user/guestLogin":
		return "guest_login"
	case "/location/getLocationDetails":
		return "location_details"
	default:
		return "other"
	}
}

// stateToFloat converts circuit breaker state to a numeric gauge value.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to a log label.
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
