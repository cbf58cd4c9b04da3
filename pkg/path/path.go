package path

import (
	"slices"

	"seehuhn.de/go/geom/matrix"

	"github.com/matzehuels/galvo/pkg/errors"
)

// Path is an ordered, non-empty sequence of segments in which each segment
// starts exactly at the end of the previous one.
//
// The zero Path is empty and invalid; construct paths with [New] or a
// [Builder], which enforce the continuity invariant.
type Path struct {
	Segments []Segment
}

// New returns a path made of segs after checking that it is non-empty,
// continuous and free of non-finite coordinates.
func New(segs ...Segment) (Path, error) {
	p := Path{Segments: segs}
	if err := p.Validate(); err != nil {
		return Path{}, err
	}
	return p, nil
}

// MustNew is like [New] but panics on invalid input. It is intended for
// tests and static shapes.
func MustNew(segs ...Segment) Path {
	p, err := New(segs...)
	if err != nil {
		panic(err)
	}
	return p
}

// Validate checks the structural invariants of p.
func (p Path) Validate() error {
	if len(p.Segments) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "path has no segments")
	}
	for i, s := range p.Segments {
		if s == nil {
			return errors.New(errors.ErrCodeInvalidInput, "segment %d is nil", i)
		}
		for _, pt := range s.points() {
			if !IsFinite(pt) {
				return errors.New(errors.ErrCodeInvalidInput, "segment %d has non-finite point %v", i, pt)
			}
		}
		if i > 0 && p.Segments[i-1].End() != s.Start() {
			return errors.New(errors.ErrCodeInvalidInput,
				"segment %d starts at %v but segment %d ends at %v", i, s.Start(), i-1, p.Segments[i-1].End())
		}
	}
	return nil
}

// Len returns the number of segments.
func (p Path) Len() int { return len(p.Segments) }

// Start returns the start of the first segment.
func (p Path) Start() Point { return p.Segments[0].Start() }

// End returns the end of the last segment.
func (p Path) End() Point { return p.Segments[len(p.Segments)-1].End() }

// Closed reports whether the path ends where it starts.
func (p Path) Closed() bool { return p.Start() == p.End() }

// Reverse returns the path traversed backwards: segment order is reversed
// and every segment is reversed. Reverse is an involution.
func (p Path) Reverse() Path {
	segs := make([]Segment, len(p.Segments))
	for i, s := range p.Segments {
		segs[len(segs)-1-i] = s.Reverse()
	}
	return Path{Segments: segs}
}

// Transform returns the path with every segment mapped through m.
// Segment boundaries map to identical points, so continuity is preserved.
func (p Path) Transform(m matrix.Matrix) Path {
	segs := make([]Segment, len(p.Segments))
	for i, s := range p.Segments {
		segs[i] = s.Transform(m)
	}
	return Path{Segments: segs}
}

// Clone returns a copy of p that does not share its segment slice.
func (p Path) Clone() Path {
	return Path{Segments: slices.Clone(p.Segments)}
}
