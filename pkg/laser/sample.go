package laser

import "fmt"

// Sample is one output step: a position in device coordinates and the beam
// state.
type Sample struct {
	X  int  `json:"x"`
	Y  int  `json:"y"`
	On bool `json:"on"`
}

func (s Sample) String() string {
	on := 0
	if s.On {
		on = 1
	}
	return fmt.Sprintf("[%d] %d,%d", on, s.X, s.Y)
}

// repeat appends n copies of s to out.
func repeat(out []Sample, s Sample, n int) []Sample {
	for range n {
		out = append(out, s)
	}
	return out
}

// CountOn returns the number of lit samples.
func CountOn(samples []Sample) int {
	n := 0
	for _, s := range samples {
		if s.On {
			n++
		}
	}
	return n
}
