package laser

import (
	"fmt"
	"math"

	"github.com/matzehuels/galvo/pkg/errors"
	"github.com/matzehuels/galvo/pkg/path"
)

// Renderer converts paths and frames into samples for one set of Params.
//
// A Renderer is not safe for concurrent use because it writes to its Stats.
// Use one Renderer per goroutine.
type Renderer struct {
	params Params
	stats  *Stats

	// cosCurve is the cosine of CurveAngle; joints whose tangent cosine
	// exceeds it are smooth.
	cosCurve float64
	width    float64
	height   float64
}

// NewRenderer returns a renderer for p that accumulates statistics into
// stats. A nil stats gets a private accumulator, readable through
// [Renderer.Stats].
func NewRenderer(p Params, stats *Stats) *Renderer {
	if stats == nil {
		stats = &Stats{}
	}
	return &Renderer{
		params:   p,
		stats:    stats,
		cosCurve: math.Cos(p.CurveAngle * (math.Pi / 180.0)),
		width:    float64(p.Width),
		height:   float64(p.Height),
	}
}

// Params returns the configuration the renderer was built with.
func (r *Renderer) Params() Params { return r.params }

// Stats returns a snapshot of the accumulated statistics.
func (r *Renderer) Stats() Stats { return *r.stats }

// sample maps a normalized point to device coordinates, truncating towards
// zero.
func (r *Renderer) sample(p path.Point, on bool) Sample {
	return Sample{X: int(p.X * r.width), Y: int(p.Y * r.height), On: on}
}

// normalize maps a device sample back into normalized space.
func (r *Renderer) normalize(s Sample) path.Point {
	return path.Pt(float64(s.X)/r.width, float64(s.Y)/r.height)
}

// RenderLine steps along l at the on or off speed, depending on l.On.
// It emits floor(length/speed)+1 evenly spaced samples, excluding the start
// and including the end, all carrying l.On. A line that needs MaxSamples
// samples or more fails with POINT_OVERFLOW.
func (r *Renderer) RenderLine(l path.Line) ([]Sample, error) {
	speed := r.params.OffSpeed
	if l.On {
		speed = r.params.OnSpeed
	}
	d := l.P1.Sub(l.P0)
	n := math.Floor(d.Length()/speed) + 1
	if !(n < MaxSamples) {
		return nil, errors.New(errors.ErrCodePointOverflow,
			"line of length %g needs %g samples at speed %g (max %d)", d.Length(), n, speed, MaxSamples-1)
	}
	steps := int(n)
	dx := d.X / float64(steps)
	dy := d.Y / float64(steps)

	out := make([]Sample, 0, steps)
	for i := 1; i <= steps; i++ {
		p := path.Pt(l.P0.X+float64(i)*dx, l.P0.Y+float64(i)*dy)
		out = append(out, r.sample(p, l.On))
	}
	if l.On {
		r.stats.PointsLine += steps
	} else {
		r.stats.PointsTrip += steps
	}
	return out, nil
}

// RenderSegment renders any segment variant. Curves are flattened; lines
// are stepped.
func (r *Renderer) RenderSegment(s path.Segment) ([]Sample, error) {
	switch s := s.(type) {
	case path.Line:
		return r.RenderLine(s)
	case path.QuadBez:
		return r.Flatten(s.Raise())
	case path.CubicBez:
		return r.Flatten(s)
	default:
		panic("laser: unknown segment type")
	}
}

// smoothJoint reports whether the joint between cur and next is smooth
// enough for the curve dwell. A joint without tangent information (a
// zero-length anchor vector) is a corner.
func (r *Renderer) smoothJoint(cur, next path.Segment) bool {
	// incoming tangent is end-endAnchor, outgoing is startAnchor-start;
	// both are negated here, which leaves the cosine unchanged.
	de := cur.EndAnchor().Sub(cur.End())
	ds := next.Start().Sub(next.StartAnchor())

	lens := de.Length() * ds.Length()
	if lens == 0 {
		return false
	}
	return de.Dot(ds)/lens > r.cosCurve
}

// checkLen fails once out has reached MaxSamples.
func checkLen(out []Sample, what string) error {
	if len(out) >= MaxSamples {
		return errors.New(errors.ErrCodePointOverflow, "%s exceeds %d samples", what, MaxSamples-1)
	}
	return nil
}

// RenderPath renders one path with its start, joint and end dwells.
//
// Closed paths use the closed start/end dwells and replay their first
// ClosedOverdraw samples at the end so the seam is drawn twice.
func (r *Renderer) RenderPath(p path.Path) ([]Sample, error) {
	closed := p.Closed()
	start := r.sample(p.Start(), true)

	var out []Sample
	if closed {
		out = repeat(out, start, r.params.ClosedStartDwell)
		r.stats.PointsDwellStart += r.params.ClosedStartDwell
	} else {
		out = repeat(out, start, r.params.StartDwell)
		r.stats.PointsDwellStart += r.params.StartDwell
	}

	last := len(p.Segments) - 1
	for i, s := range p.Segments {
		r.stats.Subpaths++
		samples, err := r.RenderSegment(s)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		out = append(out, samples...)
		end := r.sample(s.End(), true)

		switch {
		case i != last:
			if r.smoothJoint(s, p.Segments[i+1]) {
				out = repeat(out, end, r.params.CurveDwell)
				r.stats.PointsDwellCurve += r.params.CurveDwell
			} else {
				out = repeat(out, end, r.params.CornerDwell)
				r.stats.PointsDwellCorner += r.params.CornerDwell
			}
		case closed:
			n := min(r.params.ClosedOverdraw, len(out))
			out = append(out, out[:n]...)
			out = repeat(out, out[len(out)-1], r.params.ClosedEndDwell)
			r.stats.PointsDwellEnd += r.params.ClosedEndDwell
		default:
			out = repeat(out, end, r.params.EndDwell)
			r.stats.PointsDwellEnd += r.params.EndDwell
		}
		if err := checkLen(out, "path"); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// transit builds the blanked move from the normalized position from to to:
// a switch-on dwell, an off-speed line and a switch-off dwell. Every sample
// is off.
func (r *Renderer) transit(from, to path.Point) ([]Sample, error) {
	line, err := r.RenderLine(path.Line{P0: from, P1: to, On: false})
	if err != nil {
		return nil, fmt.Errorf("transit: %w", err)
	}
	var out []Sample
	out = repeat(out, r.sample(from, false), r.params.SwitchOnDwell)
	out = append(out, line...)
	out = repeat(out, r.sample(to, false), r.params.SwitchOffDwell)
	r.stats.PointsDwellSwitch += r.params.SwitchOnDwell + r.params.SwitchOffDwell
	for i := range out {
		out[i].On = false
	}
	return out, nil
}

// RenderFrame renders every path of f in order and links each to the next
// with a transit. The last path links back to the first, so the output is a
// closed projection cycle. An empty frame renders to nil.
//
// Frames that reach MaxSamples fail with POINT_OVERFLOW; the error names
// the offending path.
func (r *Renderer) RenderFrame(f *path.Frame) ([]Sample, error) {
	n := len(f.Paths)
	if n == 0 {
		return nil, nil
	}

	var out []Sample
	for i, p := range f.Paths {
		r.stats.Objects++
		samples, err := r.RenderPath(p)
		if err != nil {
			return nil, fmt.Errorf("path %d: %w", i, err)
		}
		out = append(out, samples...)

		from := r.normalize(out[len(out)-1])
		to := f.Paths[(i+1)%n].Start()
		move, err := r.transit(from, to)
		if err != nil {
			return nil, fmt.Errorf("path %d: %w", i, err)
		}
		out = append(out, move...)
		if err := checkLen(out, "frame"); err != nil {
			return nil, fmt.Errorf("path %d: %w", i, err)
		}
	}

	r.stats.Points += len(out)
	r.stats.PointsOn += CountOn(out)
	return out, nil
}
