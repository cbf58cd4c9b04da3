package config

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/galvo/pkg/errors"
	"github.com/matzehuels/galvo/pkg/laser"
)

// fields maps every configuration key to the field it sets.
func fields(p *laser.Params) map[string]any {
	return map[string]any{
		"rate":               &p.Rate,
		"on_speed":           &p.OnSpeed,
		"off_speed":          &p.OffSpeed,
		"flatness":           &p.Flatness,
		"width":              &p.Width,
		"height":             &p.Height,
		"curve_angle":        &p.CurveAngle,
		"start_dwell":        &p.StartDwell,
		"curve_dwell":        &p.CurveDwell,
		"corner_dwell":       &p.CornerDwell,
		"end_dwell":          &p.EndDwell,
		"switch_on_dwell":    &p.SwitchOnDwell,
		"switch_off_dwell":   &p.SwitchOffDwell,
		"closed_overdraw":    &p.ClosedOverdraw,
		"closed_start_dwell": &p.ClosedStartDwell,
		"closed_end_dwell":   &p.ClosedEndDwell,
		"extra_first_dwell":  &p.ExtraFirstDwell,
		"invert":             &p.Invert,
		"force":              &p.Force,
	}
}

// Keys returns the recognized configuration keys in sorted order.
func Keys() []string {
	var p laser.Params
	keys := make([]string, 0, 19)
	for k := range fields(&p) {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// LoadFile reads a parameter file on top of the default parameters.
func LoadFile(path string) (laser.Params, error) {
	if err := errors.ValidatePath(path); err != nil {
		return laser.Params{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return laser.Params{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return laser.Params{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	p, err := Load(f, laser.DefaultParams())
	if err != nil {
		return laser.Params{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Load reads a parameter file from r and applies it on top of base.
func Load(r io.Reader, base laser.Params) (laser.Params, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return laser.Params{}, fmt.Errorf("read config: %w", err)
	}

	values := map[string]any{}
	if tomlErr := toml.Unmarshal(data, &values); tomlErr != nil {
		values, err = parseLines(data)
		if err != nil {
			return laser.Params{}, errors.Wrap(errors.ErrCodeInvalidConfig, tomlErr, "parse config")
		}
	}

	p := base
	if err := Apply(&p, values); err != nil {
		return laser.Params{}, err
	}
	if err := p.Validate(); err != nil {
		return laser.Params{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid parameters")
	}
	return p, nil
}

// parseLines reads bare "key = expression" lines. Every value is kept as
// an expression string.
func parseLines(data []byte) (map[string]any, error) {
	values := map[string]any{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "line %d: missing '='", n)
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		if key == "" || val == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "line %d: empty key or value", n)
		}
		values[key] = strings.Trim(val, `"'`)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan config: %w", err)
	}
	return values, nil
}

// Apply sets the fields of p named by values. Values may be int64,
// float64, bool or an expression string, as produced by TOML and JSON
// decoders. Keys are applied in sorted order and the first failure stops
// the update, leaving p partially modified.
func Apply(p *laser.Params, values map[string]any) error {
	targets := fields(p)

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		target, ok := targets[key]
		if !ok {
			return errors.New(errors.ErrCodeInvalidConfig, "unknown key %q", key)
		}
		var err error
		switch t := target.(type) {
		case *float64:
			*t, err = toFloat(values[key])
		case *int:
			*t, err = toInt(values[key])
		case *bool:
			*t, err = toBool(values[key])
		}
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "key %q", key)
		}
	}
	return nil
}

// Dump writes p as a parameter file that Load reads back unchanged.
func Dump(w io.Writer, p laser.Params) error {
	if err := toml.NewEncoder(w).Encode(p); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
