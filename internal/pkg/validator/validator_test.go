package validator

import (
	"math"
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B",
	}
	invalid := []string{
		"123e4567-e89b-12d3-a456-426614174000", // not v7
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",     // missing dashes
		"",
	}
	for _, uuid := range valid {
		if !IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = false, want true", uuid)
		}
	}
	for _, uuid := range invalid {
		if IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = true, want false", uuid)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "2000-12-31"}
	invalid := []string{"2023-13-01", "2023-01-32", "2023/01/01", ""}
	for _, s := range valid {
		if _, ok := IsValidDate(s); !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if _, ok := IsValidDate(s); ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"CHECK_IN", "CHECK_OUT"}
	if !IsInSlice("CHECK_IN", slice) {
		t.Errorf("IsInSlice('CHECK_IN') = false, want true")
	}
	if IsInSlice("check_in", slice) {
		t.Errorf("IsInSlice('check_in') = true, want false")
	}
}

func TestCoordinate(t *testing.T) {
	lat, lng := 12.9716, 77.5946
	if errs := Coordinate(nil, &lat, &lng); len(errs) != 0 {
		t.Errorf("Coordinate(valid) = %v, want no errors", errs)
	}

	errs := Coordinate(nil, nil, nil)
	m := errs.ToMap()
	if m["latitude"] != "latitude is required" || m["longitude"] != "longitude is required" {
		t.Errorf("Coordinate(nil, nil) = %v", m)
	}

	nan, far := math.NaN(), 181.0
	m = Coordinate(nil, &nan, &far).ToMap()
	if m["latitude"] == "" || m["longitude"] == "" {
		t.Errorf("Coordinate(NaN, 181) = %v, want both fields rejected", m)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "type", Message: "invalid"},
		{Field: "latitude", Message: "required"},
	}
	got := errs.Error()
	want := "type: invalid; latitude: required"
	if got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}
