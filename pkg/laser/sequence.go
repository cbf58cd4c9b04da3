package laser

import (
	"math"

	"github.com/matzehuels/galvo/pkg/path"
)

// Sequence reorders the paths of f in place to shorten blanked travel.
// See [Order].
func Sequence(f *path.Frame) {
	f.Paths = Order(f.Paths)
}

// Order returns paths arranged by a greedy nearest-endpoint tour starting
// at the origin.
//
// At each step the unplaced path whose start or end lies closest to the
// current position is taken next; if its end was closer, the path is
// reversed so drawing begins there. Ties go to the earlier path, and to the
// start over the end of the same path. The result is a heuristic tour with
// no backtracking. The input slice is not modified.
func Order(paths []path.Path) []path.Path {
	claimed := make([]bool, len(paths))
	out := make([]path.Path, 0, len(paths))
	cur := path.Pt(0, 0)

	for len(out) < len(paths) {
		best := math.Inf(1)
		bestIdx := -1
		bestRev := false
		for i, p := range paths {
			if claimed[i] {
				continue
			}
			if d := path.DistSq(cur, p.Start()); bestIdx < 0 || d < best {
				best, bestIdx, bestRev = d, i, false
			}
			if d := path.DistSq(cur, p.End()); d < best {
				best, bestIdx, bestRev = d, i, true
			}
		}

		claimed[bestIdx] = true
		p := paths[bestIdx]
		if bestRev {
			p = p.Reverse()
		}
		out = append(out, p)
		cur = p.End()
	}
	return out
}

// TravelDistance returns the length of the blanked moves needed to draw
// paths in order, starting from the origin.
func TravelDistance(paths []path.Path) float64 {
	var total float64
	cur := path.Pt(0, 0)
	for _, p := range paths {
		total += path.Dist(cur, p.Start())
		cur = p.End()
	}
	return total
}
