package model_test

import (
	"testing"

	"github.com/renohq/quote-engine/internal/model"
)

func TestNormalizeUnit(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"feet", model.UnitFeet},
		{"FT", model.UnitFeet},
		{" foot ", model.UnitFeet},
		{"m", model.UnitMeter},
		{"Metre", model.UnitMeter},
		{"METERS", model.UnitMeter},
		{"yards", ""},
		{"", ""},
	}
	for _, tc := range tests {
		if got := model.NormalizeUnit(tc.in); got != tc.want {
			t.Errorf("NormalizeUnit(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"living room", "Living Room"},
		{"BEDROOM", "Bedroom"},
		{" Toilet ", "Toilet"},
		{"Garage", ""},
		{"", ""},
	}
	for _, tc := range tests {
		if got := model.NormalizeCategory(tc.in); got != tc.want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeOpeningType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"door", model.OpeningDoor},
		{"WINDOW", model.OpeningWindow},
		{" ventilator ", model.OpeningVentilator},
		{"skylight", ""},
	}
	for _, tc := range tests {
		if got := model.NormalizeOpeningType(tc.in); got != tc.want {
			t.Errorf("NormalizeOpeningType(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
