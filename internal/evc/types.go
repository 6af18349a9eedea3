// Chargewatch - EV Charging Station Monitor for Home Automation
// Copyright 2026 Chargewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chargewatch/chargewatch

package evc

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Wire types for the EVC mobile-gateway responses.
//
// The gateway is an unversioned mobile backend and its payloads drift:
// the operator field is sometimes an object and sometimes a plain string,
// connector ids arrive as strings or numbers, and whole sections go
// missing for stations without published metadata. Decoding is therefore
// tolerant throughout; unknown fields are ignored and absent fields keep
// their zero values.

// Location is the station detail payload under the "data" key of the
// getLocationDetails response.
type Location struct {
	Name       string          `json:"name"`
	Address    string          `json:"address"`
	PostalCode string          `json:"postalCode"`
	City       string          `json:"city"`
	Operator   json.RawMessage `json:"operator"`
	EVSEs      []EVSE          `json:"evses"`
}

// EVSE is one charge point within a location.
type EVSE struct {
	EVSEID     string      `json:"evseId"`
	Status     string      `json:"status"`
	Connectors []Connector `json:"connectors"`
}

// Connector is one plug on an EVSE. MaxElectricPower is in watts.
type Connector struct {
	ID               FlexString `json:"id"`
	Standard         string     `json:"standard"`
	PowerType        string     `json:"powerType"`
	MaxElectricPower float64    `json:"maxElectricPower"`
}

// FlexString decodes a JSON string or number as a string.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = ""
		return nil
	}

	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	// Integer ids stay integers ("3", not "3.000000")
	if i, err := n.Int64(); err == nil {
		*f = FlexString(strconv.FormatInt(i, 10))
		return nil
	}
	*f = FlexString(n.String())
	return nil
}

// String returns the decoded value.
func (f FlexString) String() string {
	return string(f)
}

// operatorObject is the structured form of the operator field.
type operatorObject struct {
	Name string `json:"name"`
}

// OperatorName coerces the variant-shaped operator field to a display
// name. Objects yield their name, bare strings pass through, anything
// else becomes "Unknown".
func OperatorName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "Unknown"
	}

	trimmed := strings.TrimSpace(string(raw))
	switch {
	case trimmed == "null" || trimmed == "":
		return "Unknown"
	case trimmed[0] == '{':
		var op operatorObject
		if err := json.Unmarshal(raw, &op); err != nil || op.Name == "" {
			return "Unknown"
		}
		return op.Name
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || s == "" {
			return "Unknown"
		}
		return s
	default:
		return "Unknown"
	}
}

// guestLoginResponse wraps the token returned by guestLogin.
type guestLoginResponse struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

// locationDetailsResponse wraps the location payload.
type locationDetailsResponse struct {
	Data Location `json:"data"`
}
