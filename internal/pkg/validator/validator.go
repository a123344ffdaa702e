package validator

import (
	"math"
	"regexp"
	"strings"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// UUIDv7 regex: version 7 (the 15th character must be '7'), all lowercase hex digits.
var uuidv7Regex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-7[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// UUIDv7 validation
func IsValidUUID(uuid string) bool {
	return uuidv7Regex.MatchString(strings.ToLower(uuid))
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", dateStr)
	return date, err == nil
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

// IsFinite rejects NaN and ±Inf.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Coordinate appends latitude/longitude errors for a possibly missing pair.
func Coordinate(errs ValidationErrors, lat, lng *float64) ValidationErrors {
	switch {
	case lat == nil:
		errs = append(errs, ValidationError{Field: "latitude", Message: "latitude is required"})
	case !IsFinite(*lat) || *lat < -90 || *lat > 90:
		errs = append(errs, ValidationError{Field: "latitude", Message: "latitude must be between -90 and 90"})
	}

	switch {
	case lng == nil:
		errs = append(errs, ValidationError{Field: "longitude", Message: "longitude is required"})
	case !IsFinite(*lng) || *lng < -180 || *lng > 180:
		errs = append(errs, ValidationError{Field: "longitude", Message: "longitude must be between -180 and 180"})
	}

	return errs
}
