package frameio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"seehuhn.de/go/geom/matrix"

	"github.com/matzehuels/galvo/pkg/errors"
	"github.com/matzehuels/galvo/pkg/path"
)

// Ext is the file extension of frame files.
const Ext = ".json"

type frameDoc struct {
	Transform *[6]float64 `json:"transform,omitempty"`
	Paths     []pathDoc   `json:"paths"`
}

type pathDoc struct {
	Segments []segmentDoc `json:"segments"`
}

type segmentDoc struct {
	Kind   string       `json:"kind"`
	Points [][2]float64 `json:"points"`
	On     *bool        `json:"on,omitempty"`
}

var pointCount = map[string]int{
	"line":  2,
	"quad":  3,
	"cubic": 4,
}

// ReadJSON decodes a frame from r.
//
// Every path is validated: it must have at least one segment, finite
// coordinates and exact continuity between segments. Errors carry the
// INVALID_INPUT code and name the offending path and segment. ReadJSON does
// not close r.
func ReadJSON(r io.Reader) (*path.Frame, error) {
	var doc frameDoc
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode frame")
	}

	f := &path.Frame{Paths: make([]path.Path, 0, len(doc.Paths))}
	for i, pd := range doc.Paths {
		segs := make([]path.Segment, 0, len(pd.Segments))
		for j, sd := range pd.Segments {
			seg, err := sd.segment()
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "path %d segment %d", i, j)
			}
			segs = append(segs, seg)
		}
		p, err := path.New(segs...)
		if err != nil {
			return nil, fmt.Errorf("path %d: %w", i, err)
		}
		f.Add(p)
	}

	if doc.Transform != nil {
		f.Transform(matrix.Matrix(*doc.Transform))
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("after transform: %w", err)
		}
	}
	return f, nil
}

func (sd segmentDoc) segment() (path.Segment, error) {
	want, ok := pointCount[sd.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown kind %q", sd.Kind)
	}
	if len(sd.Points) != want {
		return nil, fmt.Errorf("%s needs %d points, got %d", sd.Kind, want, len(sd.Points))
	}
	if sd.On != nil && sd.Kind != "line" {
		return nil, fmt.Errorf("%s does not take an on flag", sd.Kind)
	}

	pts := make([]path.Point, len(sd.Points))
	for i, p := range sd.Points {
		pts[i] = path.Pt(p[0], p[1])
	}

	switch sd.Kind {
	case "line":
		on := sd.On == nil || *sd.On
		return path.Line{P0: pts[0], P1: pts[1], On: on}, nil
	case "quad":
		return path.QuadBez{P0: pts[0], P1: pts[1], P2: pts[2]}, nil
	default:
		return path.CubicBez{P0: pts[0], P1: pts[1], P2: pts[2], P3: pts[3]}, nil
	}
}

// ImportJSON reads the frame file at name.
func ImportJSON(name string) (*path.Frame, error) {
	f, err := os.Open(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "frame %s", name)
		}
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	fr, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(name), err)
	}
	return fr, nil
}

// ListFrames returns the frame files in dir, sorted by name.
// Subdirectories and files with other extensions are ignored.
func ListFrames(dir string) ([]string, error) {
	if err := errors.ValidatePath(dir); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "input directory %s", dir)
		}
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), Ext) {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)

	files := make([]string, len(names))
	for i, n := range names {
		files[i] = filepath.Join(dir, n)
	}
	return files, nil
}

// ImportDir reads every frame file of dir in frame order.
func ImportDir(dir string) ([]*path.Frame, error) {
	files, err := ListFrames(dir)
	if err != nil {
		return nil, err
	}
	frames := make([]*path.Frame, 0, len(files))
	for _, name := range files {
		f, err := ImportJSON(name)
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, nil
}
