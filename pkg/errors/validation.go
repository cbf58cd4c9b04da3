package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateFinite checks that v is neither NaN nor infinite.
// name identifies the offending value in the error message.
func ValidateFinite(code Code, name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(code, "%s must be finite, got %v", name, v)
	}
	return nil
}

// ValidateMin checks that v is finite and at least lo.
func ValidateMin(code Code, name string, v, lo float64) error {
	if err := ValidateFinite(code, name, v); err != nil {
		return err
	}
	if v < lo {
		return New(code, "%s must be at least %v, got %v", name, lo, v)
	}
	return nil
}

// ValidateRange checks that v lies in the closed interval [lo, hi].
func ValidateRange(code Code, name string, v, lo, hi float64) error {
	if err := ValidateFinite(code, name, v); err != nil {
		return err
	}
	if v < lo || v > hi {
		return New(code, "%s must be between %v and %v, got %v", name, lo, hi, v)
	}
	return nil
}

// ValidateCount checks that a sample count such as a dwell is not negative.
func ValidateCount(code Code, name string, n int) error {
	if n < 0 {
		return New(code, "%s must not be negative, got %d", name, n)
	}
	return nil
}

// ValidateCountBelow checks that 0 <= n < limit.
func ValidateCountBelow(code Code, name string, n, limit int) error {
	if err := ValidateCount(code, name, n); err != nil {
		return err
	}
	if n >= limit {
		return New(code, "%s must be below %d, got %d", name, limit, n)
	}
	return nil
}

// ValidatePath validates a user-supplied file path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.TrimSpace(path) != path {
		return New(ErrCodeInvalidPath, "path has leading or trailing whitespace")
	}

	return nil
}
