package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateMin(t *testing.T) {
	tests := []struct {
		name    string
		v       float64
		wantErr bool
	}{
		{"above", 0.02, false},
		{"at bound", 1e-6, false},
		{"tiny", 1e-300, true},
		{"zero", 0, true},
		{"negative", -1, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMin(ErrCodeInvalidParams, "on_speed", tt.v, 1e-6)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMin(%v) error = %v, wantErr %v", tt.v, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidParams) {
				t.Errorf("ValidateMin(%v) code = %v, want %v", tt.v, GetCode(err), ErrCodeInvalidParams)
			}
		})
	}
}

func TestValidateRange(t *testing.T) {
	tests := []struct {
		name    string
		v       float64
		wantErr bool
	}{
		{"lower bound", 0, false},
		{"upper bound", 180, false},
		{"inside", 30, false},
		{"below", -0.5, true},
		{"above", 180.5, true},
		{"nan", math.NaN(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRange(ErrCodeInvalidParams, "curve_angle", tt.v, 0, 180)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRange(%v) error = %v, wantErr %v", tt.v, err, tt.wantErr)
			}
		})
	}
}

func TestValidateCount(t *testing.T) {
	if err := ValidateCount(ErrCodeInvalidParams, "start_dwell", 0); err != nil {
		t.Errorf("ValidateCount(0) error = %v", err)
	}
	err := ValidateCount(ErrCodeInvalidParams, "start_dwell", -1)
	if err == nil {
		t.Fatal("ValidateCount(-1) should fail")
	}
	if !strings.Contains(err.Error(), "start_dwell") {
		t.Errorf("error %q should name the field", err)
	}
}

func TestValidateCountBelow(t *testing.T) {
	tests := []struct {
		n       int
		wantErr bool
	}{
		{0, false},
		{9, false},
		{10, true},
		{1 << 40, true},
		{-1, true},
	}
	for _, tt := range tests {
		err := ValidateCountBelow(ErrCodeInvalidParams, "corner_dwell", tt.n, 10)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateCountBelow(%d) error = %v, wantErr %v", tt.n, err, tt.wantErr)
		}
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "frames/0001.json", false},
		{"absolute", "/tmp/out.ild", false},
		{"parent", "../frames", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 5000), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
		{"trailing space", "out.ild ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
