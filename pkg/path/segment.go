package path

import "seehuhn.de/go/geom/matrix"

// Segment is one piece of a [Path].
//
// The set of implementations is closed: [Line], [QuadBez] and [CubicBez].
// Code that needs variant-specific behavior uses a type switch over these
// three types.
type Segment interface {
	// Start returns the first point of the segment.
	Start() Point
	// End returns the last point of the segment.
	End() Point
	// StartAnchor returns the point that fixes the tangent direction at
	// Start: the first control point that differs from Start, or End.
	StartAnchor() Point
	// EndAnchor returns the point that fixes the tangent direction at
	// End: the last control point that differs from End, or Start.
	EndAnchor() Point
	// Transform returns the segment with every point mapped through m.
	Transform(m matrix.Matrix) Segment
	// Reverse returns the same geometry traversed from End to Start.
	Reverse() Segment

	points() []Point
}

var (
	_ Segment = Line{}
	_ Segment = QuadBez{}
	_ Segment = CubicBez{}
)

// Line is a straight segment. Lines with On == false are blanked transits.
type Line struct {
	P0 Point
	P1 Point
	On bool
}

func (l Line) Start() Point       { return l.P0 }
func (l Line) End() Point         { return l.P1 }
func (l Line) StartAnchor() Point { return l.P1 }
func (l Line) EndAnchor() Point   { return l.P0 }

func (l Line) Transform(m matrix.Matrix) Segment {
	return Line{P0: Apply(m, l.P0), P1: Apply(m, l.P1), On: l.On}
}

func (l Line) Reverse() Segment {
	return Line{P0: l.P1, P1: l.P0, On: l.On}
}

func (l Line) points() []Point { return []Point{l.P0, l.P1} }

// QuadBez is a quadratic Bézier curve with a single control point P1.
type QuadBez struct {
	P0 Point
	P1 Point
	P2 Point
}

func (q QuadBez) Start() Point { return q.P0 }
func (q QuadBez) End() Point   { return q.P2 }

func (q QuadBez) StartAnchor() Point {
	if q.P1 != q.P0 {
		return q.P1
	}
	return q.P2
}

func (q QuadBez) EndAnchor() Point {
	if q.P1 != q.P2 {
		return q.P1
	}
	return q.P0
}

func (q QuadBez) Transform(m matrix.Matrix) Segment {
	return QuadBez{P0: Apply(m, q.P0), P1: Apply(m, q.P1), P2: Apply(m, q.P2)}
}

func (q QuadBez) Reverse() Segment {
	return QuadBez{P0: q.P2, P1: q.P1, P2: q.P0}
}

func (q QuadBez) points() []Point { return []Point{q.P0, q.P1, q.P2} }

// Raise returns the cubic Bézier curve tracing the same curve. The cubic
// control points sit one third of the way from each endpoint towards P1.
func (q QuadBez) Raise() CubicBez {
	return CubicBez{
		P0: q.P0,
		P1: Point{X: q.P1.X/3 + 2*q.P0.X/3, Y: q.P1.Y/3 + 2*q.P0.Y/3},
		P2: Point{X: q.P1.X/3 + 2*q.P2.X/3, Y: q.P1.Y/3 + 2*q.P2.Y/3},
		P3: q.P2,
	}
}

// CubicBez is a cubic Bézier curve with control points P1 and P2.
type CubicBez struct {
	P0 Point
	P1 Point
	P2 Point
	P3 Point
}

func (c CubicBez) Start() Point { return c.P0 }
func (c CubicBez) End() Point   { return c.P3 }

func (c CubicBez) StartAnchor() Point {
	switch {
	case c.P1 != c.P0:
		return c.P1
	case c.P2 != c.P0:
		return c.P2
	default:
		return c.P3
	}
}

func (c CubicBez) EndAnchor() Point {
	switch {
	case c.P2 != c.P3:
		return c.P2
	case c.P1 != c.P3:
		return c.P1
	default:
		return c.P0
	}
}

func (c CubicBez) Transform(m matrix.Matrix) Segment {
	return CubicBez{P0: Apply(m, c.P0), P1: Apply(m, c.P1), P2: Apply(m, c.P2), P3: Apply(m, c.P3)}
}

func (c CubicBez) Reverse() Segment {
	return CubicBez{P0: c.P3, P1: c.P2, P2: c.P1, P3: c.P0}
}

func (c CubicBez) points() []Point { return []Point{c.P0, c.P1, c.P2, c.P3} }

// Subdivide splits the curve at t = 0.5 using de Casteljau's construction.
// Both halves share the midpoint.
func (c CubicBez) Subdivide() (CubicBez, CubicBez) {
	mc := Point{X: (c.P1.X + c.P2.X) * 0.5, Y: (c.P1.Y + c.P2.Y) * 0.5}
	a1 := Point{X: (c.P0.X + c.P1.X) * 0.5, Y: (c.P0.Y + c.P1.Y) * 0.5}
	a2 := Point{X: (a1.X + mc.X) * 0.5, Y: (a1.Y + mc.Y) * 0.5}
	b2 := Point{X: (c.P2.X + c.P3.X) * 0.5, Y: (c.P2.Y + c.P3.Y) * 0.5}
	b1 := Point{X: (b2.X + mc.X) * 0.5, Y: (b2.Y + mc.Y) * 0.5}
	m := Point{X: (a2.X + b1.X) * 0.5, Y: (a2.Y + b1.Y) * 0.5}
	return CubicBez{P0: c.P0, P1: a1, P2: a2, P3: m},
		CubicBez{P0: m, P1: b1, P2: b2, P3: c.P3}
}

// ToCubic returns seg as a cubic curve. Lines are not curves and report
// false.
func ToCubic(seg Segment) (CubicBez, bool) {
	switch s := seg.(type) {
	case CubicBez:
		return s, true
	case QuadBez:
		return s.Raise(), true
	default:
		return CubicBez{}, false
	}
}
