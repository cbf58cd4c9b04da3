package path

import "github.com/matzehuels/galvo/pkg/errors"

// kappa is the control point distance, relative to the radius, of the
// four-cubic circle approximation.
const kappa = 0.55228475

// Builder assembles paths from pen-style commands.
//
// Every drawing command continues from the current point, so the paths it
// produces always satisfy the continuity invariant. Errors are sticky: the
// first invalid command is reported by [Builder.Path] or [Builder.Paths].
type Builder struct {
	paths []Path
	cur   []Segment
	start Point
	pos   Point
	moved bool
	err   error
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// MoveTo starts a new subpath at pt, finishing the current one.
func (b *Builder) MoveTo(pt Point) *Builder {
	b.flush()
	b.start, b.pos, b.moved = pt, pt, true
	return b
}

// LineTo draws a straight line to pt.
func (b *Builder) LineTo(pt Point) *Builder {
	return b.add(Line{P0: b.pos, P1: pt, On: true})
}

// QuadTo draws a quadratic curve with control point c to pt.
func (b *Builder) QuadTo(c, pt Point) *Builder {
	return b.add(QuadBez{P0: b.pos, P1: c, P2: pt})
}

// CubicTo draws a cubic curve with control points c1, c2 to pt.
func (b *Builder) CubicTo(c1, c2, pt Point) *Builder {
	return b.add(CubicBez{P0: b.pos, P1: c1, P2: c2, P3: pt})
}

// Close draws a line back to the start of the subpath when the pen is not
// already there and finishes the subpath.
func (b *Builder) Close() *Builder {
	if b.pos != b.start {
		b.LineTo(b.start)
	}
	b.flush()
	b.pos = b.start
	return b
}

func (b *Builder) add(s Segment) *Builder {
	if !b.moved && b.err == nil {
		b.err = errors.New(errors.ErrCodeInvalidInput, "drawing command before MoveTo")
		return b
	}
	b.cur = append(b.cur, s)
	b.pos = s.End()
	return b
}

func (b *Builder) flush() {
	if len(b.cur) == 0 {
		return
	}
	p := Path{Segments: b.cur}
	if err := p.Validate(); err != nil && b.err == nil {
		b.err = err
	}
	b.paths = append(b.paths, p)
	b.cur = nil
}

// Paths finishes the current subpath and returns every path built so far.
func (b *Builder) Paths() ([]Path, error) {
	b.flush()
	if b.err != nil {
		return nil, b.err
	}
	if len(b.paths) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no segments drawn")
	}
	return b.paths, nil
}

// Path returns the single path built so far. It fails if the builder holds
// more than one subpath.
func (b *Builder) Path() (Path, error) {
	paths, err := b.Paths()
	if err != nil {
		return Path{}, err
	}
	if len(paths) != 1 {
		return Path{}, errors.New(errors.ErrCodeInvalidInput, "builder holds %d paths, want 1", len(paths))
	}
	return paths[0], nil
}

// Rect returns the closed rectangle with corners (x0, y0) and (x1, y1),
// drawn clockwise from (x0, y0).
func Rect(x0, y0, x1, y1 float64) Path {
	return MustNew(
		Line{P0: Pt(x0, y0), P1: Pt(x1, y0), On: true},
		Line{P0: Pt(x1, y0), P1: Pt(x1, y1), On: true},
		Line{P0: Pt(x1, y1), P1: Pt(x0, y1), On: true},
		Line{P0: Pt(x0, y1), P1: Pt(x0, y0), On: true},
	)
}

// Ellipse returns the closed ellipse centered on (cx, cy) with radii rx and
// ry, approximated by four cubic curves starting at the top.
func Ellipse(cx, cy, rx, ry float64) Path {
	kx, ky := kappa*rx, kappa*ry
	return MustNew(
		CubicBez{Pt(cx, cy-ry), Pt(cx+kx, cy-ry), Pt(cx+rx, cy-ky), Pt(cx+rx, cy)},
		CubicBez{Pt(cx+rx, cy), Pt(cx+rx, cy+ky), Pt(cx+kx, cy+ry), Pt(cx, cy+ry)},
		CubicBez{Pt(cx, cy+ry), Pt(cx-kx, cy+ry), Pt(cx-rx, cy+ky), Pt(cx-rx, cy)},
		CubicBez{Pt(cx-rx, cy), Pt(cx-rx, cy-ky), Pt(cx-kx, cy-ry), Pt(cx, cy-ry)},
	)
}

// Circle returns the closed circle centered on (cx, cy) with radius r.
func Circle(cx, cy, r float64) Path {
	return Ellipse(cx, cy, r, r)
}
