package laser

import "github.com/matzehuels/galvo/pkg/path"

// Flatten approximates c by a run of lit samples ending exactly at c.P3.
//
// The curve is split at t = 0.5 while either its chord is longer than one
// on-speed step (rate criterion) or its control points stray too far from
// the chord (flatness criterion). Each piece that passes both tests emits one
// sample at its endpoint. Pieces are processed from an explicit stack in
// parameter order, so deep subdivision cannot exhaust the goroutine stack.
// A curve that needs MaxSamples samples or more fails with POINT_OVERFLOW.
func (r *Renderer) Flatten(c path.CubicBez) ([]Sample, error) {
	var out []Sample
	stack := []path.CubicBez{c}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if r.split(cur) {
			a, b := cur.Subdivide()
			stack = append(stack, b, a)
			continue
		}
		r.stats.PointsBezier++
		out = append(out, r.sample(cur.P3, true))
		if err := checkLen(out, "curve"); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// split decides whether c must be subdivided further.
func (r *Renderer) split(c path.CubicBez) bool {
	if c.P3.Sub(c.P0).Length() > r.params.OnSpeed {
		r.stats.RateDivs++
		return true
	}
	if flatness(c) > r.params.Flatness {
		r.stats.FlatnessDivs++
		return true
	}
	return false
}

// flatness estimates how far the control points of c deviate from its
// chord. It is zero for a straight cubic with evenly spaced controls.
func flatness(c path.CubicBez) float64 {
	ux := sq(3*c.P1.X - 2*c.P0.X - c.P3.X)
	uy := sq(3*c.P1.Y - 2*c.P0.Y - c.P3.Y)
	vx := sq(3*c.P2.X - 2*c.P3.X - c.P0.X)
	vy := sq(3*c.P2.Y - 2*c.P3.Y - c.P0.Y)
	return max(ux, vx) + max(uy, vy)
}

func sq(v float64) float64 { return v * v }
