// Chargewatch - EV Charging Station Monitor for Home Automation
// Copyright 2026 Chargewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chargewatch/chargewatch

package evc

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestFlexStringUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"string", `"3"`, "3"},
		{"integer", `3`, "3"},
		{"large integer", `1234567`, "1234567"},
		{"float", `3.5`, "3.5"},
		{"null", `null`, ""},
		{"empty string", `""`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexString
			if err := json.Unmarshal([]byte(tt.raw), &f); err != nil {
				t.Fatalf("unmarshal %s: %v", tt.raw, err)
			}
			if f.String() != tt.want {
				t.Errorf("got %q, want %q", f.String(), tt.want)
			}
		})
	}
}

func TestFlexStringInvalid(t *testing.T) {
	var f FlexString
	if err := json.Unmarshal([]byte(`{"x":1}`), &f); err == nil {
		t.Error("expected error for object input")
	}
}

func TestOperatorName(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"object", `{"name":"EVC Networks"}`, "EVC Networks"},
		{"object empty name", `{"name":""}`, "Unknown"},
		{"object no name", `{"id":7}`, "Unknown"},
		{"string", `"City Power"`, "City Power"},
		{"empty string", `""`, "Unknown"},
		{"null", `null`, "Unknown"},
		{"number", `42`, "Unknown"},
		{"absent", ``, "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw json.RawMessage
			if tt.raw != "" {
				raw = []byte(tt.raw)
			}
			if got := OperatorName(raw); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLocationDecodeTolerance(t *testing.T) {
	// Partial payload with numeric connector id and missing sections.
	payload := `{
		"name": "Parkhaus Mitte",
		"operator": {"name": "EVC Networks"},
		"evses": [
			{
				"evseId": "DE*ABC*E123",
				"status": "AVAILABLE",
				"connectors": [
					{"id": 3, "standard": "IEC_62196_T2", "maxElectricPower": 7400}
				]
			},
			{"evseId": "DE*ABC*E124"}
		]
	}`

	var loc Location
	if err := json.Unmarshal([]byte(payload), &loc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if loc.Address != "" || loc.City != "" {
		t.Error("absent fields must stay empty")
	}
	if len(loc.EVSEs) != 2 {
		t.Fatalf("evses = %d, want 2", len(loc.EVSEs))
	}
	if loc.EVSEs[0].Connectors[0].ID.String() != "3" {
		t.Errorf("connector id = %q, want %q", loc.EVSEs[0].Connectors[0].ID.String(), "3")
	}
	if loc.EVSEs[0].Connectors[0].MaxElectricPower != 7400 {
		t.Errorf("power = %v", loc.EVSEs[0].Connectors[0].MaxElectricPower)
	}
	if loc.EVSEs[1].Status != "" || len(loc.EVSEs[1].Connectors) != 0 {
		t.Error("bare evse should decode with zero values")
	}
}
