// Chargewatch - EV Charging Station Monitor for Home Automation
// Copyright 2026 Chargewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chargewatch/chargewatch

package evc

import (
	"errors"
	"fmt"
)

// ErrNoToken is returned when guestLogin succeeds at the HTTP level but
// the response carries no token. The message text is part of the API
// contract: it surfaces verbatim in station snapshots and automation
// rules match on it.
var ErrNoToken = errors.New("Failed to get authentication token")

// StatusError reports a non-2xx response from the gateway.
type StatusError struct {
	Code int
}

// Error renders the legacy error string, e.g. "API error: 503".
func (e *StatusError) Error() string {
	return fmt.Sprintf("API error: %d", e.Code)
}

// IsStatusError reports whether err is a gateway status error, returning
// the HTTP status code when it is.
func IsStatusError(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}
