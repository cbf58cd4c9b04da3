package laser

import (
	"time"

	"github.com/matzehuels/galvo/pkg/errors"
)

const (
	// MaxResolution is the largest supported device resolution per axis.
	MaxResolution = 32767

	// MaxSamples is the exclusive upper bound on samples per frame.
	MaxSamples = 65535

	// MinSpeed and MinFlatness are the smallest accepted step and
	// flatness values in normalized units.
	MinSpeed    = 1e-6
	MinFlatness = 1e-12
)

// Params holds the render configuration.
//
// Speeds are expressed in normalized units per output sample: the normalized
// space spans 2 units across, so OnSpeed = 2/90 crosses the full width in 90
// samples. Larger speeds produce fewer points.
type Params struct {
	// Rate is the playback sample rate in points per second. It only
	// affects reported frame durations.
	Rate int `toml:"rate" json:"rate"`

	// OnSpeed is the step size while the beam is on.
	OnSpeed float64 `toml:"on_speed" json:"on_speed"`
	// OffSpeed is the step size for blanked transits.
	OffSpeed float64 `toml:"off_speed" json:"off_speed"`
	// Flatness bounds the curve flattening error (lower = more accurate).
	Flatness float64 `toml:"flatness" json:"flatness"`

	// Width and Height are the device resolution (max 32767).
	Width  int `toml:"width" json:"width"`
	Height int `toml:"height" json:"height"`

	// CurveAngle is the joint angle in degrees below which a joint counts
	// as smooth.
	CurveAngle float64 `toml:"curve_angle" json:"curve_angle"`

	StartDwell       int `toml:"start_dwell" json:"start_dwell"`
	CurveDwell       int `toml:"curve_dwell" json:"curve_dwell"`
	CornerDwell      int `toml:"corner_dwell" json:"corner_dwell"`
	EndDwell         int `toml:"end_dwell" json:"end_dwell"`
	SwitchOnDwell    int `toml:"switch_on_dwell" json:"switch_on_dwell"`
	SwitchOffDwell   int `toml:"switch_off_dwell" json:"switch_off_dwell"`
	ClosedOverdraw   int `toml:"closed_overdraw" json:"closed_overdraw"`
	ClosedStartDwell int `toml:"closed_start_dwell" json:"closed_start_dwell"`
	ClosedEndDwell   int `toml:"closed_end_dwell" json:"closed_end_dwell"`

	// ExtraFirstDwell repeats the first lit sample of each encoded frame.
	ExtraFirstDwell int `toml:"extra_first_dwell" json:"extra_first_dwell"`

	// Invert flips the beam state of every encoded sample, exposing the
	// transits. Force turns every sample on and wins over Invert.
	Invert bool `toml:"invert" json:"invert"`
	Force  bool `toml:"force" json:"force"`
}

// DefaultParams returns the stock configuration.
func DefaultParams() Params {
	return Params{
		Rate:             48000,
		OnSpeed:          2 / 90.0,
		OffSpeed:         2 / 20.0,
		Flatness:         0.000002,
		Width:            MaxResolution,
		Height:           MaxResolution,
		CurveAngle:       30.0,
		StartDwell:       3,
		CurveDwell:       0,
		CornerDwell:      4,
		EndDwell:         3,
		SwitchOnDwell:    3,
		SwitchOffDwell:   6,
		ClosedOverdraw:   0,
		ClosedStartDwell: 3,
		ClosedEndDwell:   3,
		ExtraFirstDwell:  0,
	}
}

// Validate reports the first parameter that would make rendering
// meaningless or non-terminating.
func (p Params) Validate() error {
	const code = errors.ErrCodeInvalidParams
	if err := errors.ValidateMin(code, "on_speed", p.OnSpeed, MinSpeed); err != nil {
		return err
	}
	if err := errors.ValidateMin(code, "off_speed", p.OffSpeed, MinSpeed); err != nil {
		return err
	}
	if err := errors.ValidateMin(code, "flatness", p.Flatness, MinFlatness); err != nil {
		return err
	}
	if err := errors.ValidateRange(code, "curve_angle", p.CurveAngle, 0, 180); err != nil {
		return err
	}
	if err := errors.ValidateRange(code, "width", float64(p.Width), 1, MaxResolution); err != nil {
		return err
	}
	if err := errors.ValidateRange(code, "height", float64(p.Height), 1, MaxResolution); err != nil {
		return err
	}
	if err := errors.ValidateCount(code, "rate", p.Rate); err != nil {
		return err
	}
	counts := []struct {
		name string
		n    int
	}{
		{"start_dwell", p.StartDwell},
		{"curve_dwell", p.CurveDwell},
		{"corner_dwell", p.CornerDwell},
		{"end_dwell", p.EndDwell},
		{"switch_on_dwell", p.SwitchOnDwell},
		{"switch_off_dwell", p.SwitchOffDwell},
		{"closed_overdraw", p.ClosedOverdraw},
		{"closed_start_dwell", p.ClosedStartDwell},
		{"closed_end_dwell", p.ClosedEndDwell},
		{"extra_first_dwell", p.ExtraFirstDwell},
	}
	for _, c := range counts {
		if err := errors.ValidateCountBelow(code, c.name, c.n, MaxSamples); err != nil {
			return err
		}
	}
	return nil
}

// Duration returns how long n samples take to play at Rate.
// It returns zero when Rate is not set.
func (p Params) Duration(n int) time.Duration {
	if p.Rate <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second / time.Duration(p.Rate)
}
