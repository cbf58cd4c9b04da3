package frameio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/galvo/pkg/path"
)

// WriteJSON encodes f as JSON and writes it to w.
// The output can be read back with [ReadJSON].
func WriteJSON(w io.Writer, f *path.Frame) error {
	doc := frameDoc{Paths: make([]pathDoc, len(f.Paths))}
	for i, p := range f.Paths {
		segs := make([]segmentDoc, len(p.Segments))
		for j, s := range p.Segments {
			segs[j] = toDoc(s)
		}
		doc.Paths[i] = pathDoc{Segments: segs}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func toDoc(s path.Segment) segmentDoc {
	pt := func(p path.Point) [2]float64 { return [2]float64{p.X, p.Y} }
	switch s := s.(type) {
	case path.Line:
		sd := segmentDoc{Kind: "line", Points: [][2]float64{pt(s.P0), pt(s.P1)}}
		if !s.On {
			off := false
			sd.On = &off
		}
		return sd
	case path.QuadBez:
		return segmentDoc{Kind: "quad", Points: [][2]float64{pt(s.P0), pt(s.P1), pt(s.P2)}}
	case path.CubicBez:
		return segmentDoc{Kind: "cubic", Points: [][2]float64{pt(s.P0), pt(s.P1), pt(s.P2), pt(s.P3)}}
	}
	panic(fmt.Sprintf("frameio: unknown segment type %T", s))
}

// ExportJSON writes f to the file at name.
func ExportJSON(name string, f *path.Frame) error {
	out, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if err := WriteJSON(out, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
