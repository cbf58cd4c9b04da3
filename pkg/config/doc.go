// Package config loads and writes render parameter files.
//
// A parameter file is a flat list of assignments, one per line, each
// overriding a single field of [laser.Params]:
//
//	# faster transits, longer corners
//	off_speed = "2/15"
//	corner_dwell = 6
//	invert = false
//
// Files are TOML documents. Numeric values may be given as literals or as a
// quoted constant expression built from numbers, parentheses and the
// operators + - * /. Division is always exact, so "2/90" means 0.0222...
// For compatibility with older tools, a file that is not valid TOML is read
// as bare "key = expression" lines, for example on_speed = 2/90.0.
//
// Keys not present keep their default. Unknown keys, values of the wrong
// type and malformed expressions are INVALID_CONFIG errors, as are
// parameters that fail [laser.Params.Validate] after loading.
package config
