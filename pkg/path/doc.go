// Package path defines the geometric model consumed by the laser renderer.
//
// # Coordinate Space
//
// All coordinates live in a normalized logical space: a square viewport
// centered on the origin in which the longer side of the source drawing spans
// [-1, 1]. Front-ends map their own coordinates into this space before
// constructing paths; the renderer scales normalized coordinates to device
// resolution when it emits samples.
//
// # Segments
//
// A [Segment] is one of three closed variants:
//   - [Line]: a straight segment that is either drawn (On) or a blanked transit
//   - [QuadBez]: a quadratic Bézier curve, rendered through its cubic elevation
//   - [CubicBez]: a cubic Bézier curve
//
// Every variant can be transformed by an affine [matrix.Matrix], reversed,
// and queried for its tangent anchors ([Segment.StartAnchor] and
// [Segment.EndAnchor]), which the renderer uses to decide whether the joint
// between two segments is smooth or a corner.
//
// # Paths and Frames
//
// A [Path] is a non-empty sequence of segments where each segment starts
// exactly where the previous one ended. A [Frame] is an ordered list of paths
// forming one projected image.
//
//	p, err := path.NewBuilder().
//	    MoveTo(path.Pt(-0.5, -0.5)).
//	    LineTo(path.Pt(0.5, -0.5)).
//	    LineTo(path.Pt(0, 0.5)).
//	    Close().
//	    Path()
package path
