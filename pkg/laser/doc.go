// Package laser turns frames of vector paths into timed galvo sample streams.
//
// # Pipeline
//
// Rendering a frame happens in up to three steps:
//
//  1. [Sequence] (optional) reorders the frame's paths with a greedy
//     nearest-endpoint heuristic to shorten blanked travel.
//  2. [Renderer.RenderFrame] renders every path and joins consecutive paths
//     with blanked transits, including the wraparound from the last path
//     back to the first.
//  3. The resulting []Sample is handed to an encoder (see package ilda).
//
// # Timing Model
//
// Galvo mirrors cannot change direction instantly. The renderer therefore
// emits dwell samples (repeats of one position) at path starts and ends,
// at internal joints, and around every transit. Whether an internal joint
// gets the curve or the corner dwell depends on the angle between the
// tangents on either side of the joint, compared to [Params.CurveAngle].
//
// Straight lines are stepped at [Params.OnSpeed] (or [Params.OffSpeed] for
// blanked lines). Curves are flattened by recursive de Casteljau subdivision
// until each piece is both shorter than one step and flat within
// [Params.Flatness].
//
// # Limits
//
// A frame can hold fewer than [MaxSamples] samples. Rendering stops with a
// POINT_OVERFLOW error as soon as a line, curve, path or frame would reach
// that count, so pathological parameters fail instead of exhausting
// memory.
//
// # Statistics
//
// A [Renderer] accumulates diagnostic counters in a [Stats] value supplied
// by the caller. The counters never influence rendering. Independent frames
// may be rendered concurrently with one Renderer and one Stats each; the
// results are combined with [Stats.Add].
package laser
