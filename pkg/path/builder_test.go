package path

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func nan() float64 { return math.NaN() }

func approx() cmp.Option {
	return cmpopts.EquateApprox(0, 1e-12)
}

func TestBuilderSubpaths(t *testing.T) {
	paths, err := NewBuilder().
		MoveTo(Pt(0, 0)).LineTo(Pt(1, 0)).
		MoveTo(Pt(2, 0)).LineTo(Pt(3, 0)).LineTo(Pt(3, 1)).Close().
		Paths()
	if err != nil {
		t.Fatalf("Paths() error = %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("len(paths) = %d, want 2", len(paths))
	}
	if paths[0].Closed() {
		t.Error("first subpath should be open")
	}
	if !paths[1].Closed() {
		t.Error("second subpath should be closed")
	}
	if got := paths[1].Len(); got != 3 {
		t.Errorf("closed subpath segments = %d, want 3", got)
	}
}

func TestBuilderCloseAtStart(t *testing.T) {
	p, err := NewBuilder().
		MoveTo(Pt(0, 0)).
		CubicTo(Pt(1, 1), Pt(-1, 1), Pt(0, 0)).
		Close().
		Path()
	if err != nil {
		t.Fatalf("Path() error = %v", err)
	}
	if p.Len() != 1 {
		t.Errorf("Close at start should not add a line, got %d segments", p.Len())
	}
}

func TestBuilderErrors(t *testing.T) {
	if _, err := NewBuilder().LineTo(Pt(1, 1)).Path(); err == nil {
		t.Error("LineTo before MoveTo should fail")
	}
	if _, err := NewBuilder().MoveTo(Pt(0, 0)).Path(); err == nil {
		t.Error("builder without segments should fail")
	}
	if _, err := NewBuilder().MoveTo(Pt(0, 0)).LineTo(Pt(1, 0)).MoveTo(Pt(2, 2)).LineTo(Pt(3, 3)).Path(); err == nil {
		t.Error("Path() with two subpaths should fail")
	}
	if _, err := NewBuilder().MoveTo(Pt(0, 0)).LineTo(Pt(math.Inf(1), 0)).Path(); err == nil {
		t.Error("non-finite point should fail")
	}
}

func TestShapes(t *testing.T) {
	r := Rect(-1, -1, 1, 1)
	if !r.Closed() || r.Len() != 4 {
		t.Errorf("Rect: closed=%v len=%d", r.Closed(), r.Len())
	}
	c := Circle(0, 0, 0.5)
	if !c.Closed() || c.Len() != 4 {
		t.Errorf("Circle: closed=%v len=%d", c.Closed(), c.Len())
	}
	if got, want := c.Start(), Pt(0, -0.5); got != want {
		t.Errorf("Circle start = %v, want %v", got, want)
	}
}

func TestFrame(t *testing.T) {
	var f Frame
	f.Add(Rect(0, 0, 1, 1))
	f.Add(Circle(0, 0, 1))
	if f.Len() != 2 || f.SegmentCount() != 8 {
		t.Errorf("Len=%d SegmentCount=%d, want 2 and 8", f.Len(), f.SegmentCount())
	}

	clone := f.Clone()
	clone.Paths[0] = clone.Paths[0].Reverse()
	if f.Paths[0].Start() != Pt(0, 0) {
		t.Error("Clone should not share paths with the original")
	}

	f.Transform([6]float64{2, 0, 0, 2, 1, 0})
	if got, want := f.Paths[0].Start(), Pt(1, 0); got != want {
		t.Errorf("transformed start = %v, want %v", got, want)
	}
	if err := f.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
