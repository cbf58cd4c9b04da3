package path

import (
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"
)

// Point is a position in the normalized coordinate space.
type Point = vec.Vec2

// Pt returns the point (x, y).
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Apply maps p through the affine transformation m.
// The matrix uses the PDF/SVG layout [a b c d e f], so that
// x' = a·x + c·y + e and y' = b·x + d·y + f.
func Apply(m matrix.Matrix, p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// IsFinite reports whether both coordinates of p are finite numbers.
func IsFinite(p Point) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Dist returns the Euclidean distance between a and b.
func Dist(a, b Point) float64 {
	return b.Sub(a).Length()
}

// DistSq returns the squared Euclidean distance between a and b.
func DistSq(a, b Point) float64 {
	d := b.Sub(a)
	return d.Dot(d)
}
