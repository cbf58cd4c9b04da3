package path

import (
	"fmt"
	"slices"

	"seehuhn.de/go/geom/matrix"
)

// Frame is the ordered list of paths ("objects") making up one projected
// image. The order is the render order; the sequencer may rewrite it.
type Frame struct {
	Paths []Path
}

// Add appends p to the frame.
func (f *Frame) Add(p Path) {
	f.Paths = append(f.Paths, p)
}

// Len returns the number of paths in the frame.
func (f *Frame) Len() int { return len(f.Paths) }

// Transform maps every path of the frame through m in place.
func (f *Frame) Transform(m matrix.Matrix) {
	for i, p := range f.Paths {
		f.Paths[i] = p.Transform(m)
	}
}

// Validate checks every path of the frame.
func (f *Frame) Validate() error {
	for i, p := range f.Paths {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("path %d: %w", i, err)
		}
	}
	return nil
}

// Clone returns a deep copy of the frame's path list.
func (f *Frame) Clone() *Frame {
	out := &Frame{Paths: slices.Clone(f.Paths)}
	for i, p := range out.Paths {
		out.Paths[i] = p.Clone()
	}
	return out
}

// SegmentCount returns the total number of segments across all paths.
func (f *Frame) SegmentCount() int {
	n := 0
	for _, p := range f.Paths {
		n += p.Len()
	}
	return n
}
