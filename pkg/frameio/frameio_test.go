package frameio

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/galvo/pkg/errors"
	"github.com/matzehuels/galvo/pkg/path"
)

const square = `{
  "paths": [
    {"segments": [
      {"kind": "line", "points": [[0, 0], [0.5, 0]]},
      {"kind": "quad", "points": [[0.5, 0], [0.75, 0.25], [0.5, 0.5]]},
      {"kind": "cubic", "points": [[0.5, 0.5], [0.25, 0.75], [0, 0.75], [0, 0.5]]},
      {"kind": "line", "points": [[0, 0.5], [0, 0]], "on": false}
    ]}
  ]
}`

func TestReadJSON(t *testing.T) {
	f, err := ReadJSON(strings.NewReader(square))
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if f.Len() != 1 || f.SegmentCount() != 4 {
		t.Fatalf("frame = %d paths, %d segments; want 1, 4", f.Len(), f.SegmentCount())
	}

	segs := f.Paths[0].Segments
	if l, ok := segs[0].(path.Line); !ok || !l.On {
		t.Errorf("segment 0 = %#v, want lit line", segs[0])
	}
	if _, ok := segs[1].(path.QuadBez); !ok {
		t.Errorf("segment 1 = %T, want QuadBez", segs[1])
	}
	if _, ok := segs[2].(path.CubicBez); !ok {
		t.Errorf("segment 2 = %T, want CubicBez", segs[2])
	}
	if l, ok := segs[3].(path.Line); !ok || l.On {
		t.Errorf("segment 3 = %#v, want blanked line", segs[3])
	}
	if !f.Paths[0].Closed() {
		t.Error("path should be closed")
	}
}

func TestReadJSONTransform(t *testing.T) {
	doc := `{"transform": [2, 0, 0, 2, 0.25, -0.25],
	  "paths": [{"segments": [{"kind": "line", "points": [[0, 0], [0.25, 0.25]]}]}]}`
	f, err := ReadJSON(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	p := f.Paths[0]
	if p.Start() != path.Pt(0.25, -0.25) || p.End() != path.Pt(0.75, 0.25) {
		t.Errorf("transformed line = %v -> %v", p.Start(), p.End())
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed", `{"paths": [`},
		{"unknown field", `{"frames": []}`},
		{"unknown kind", `{"paths": [{"segments": [{"kind": "arc", "points": [[0,0],[1,1]]}]}]}`},
		{"too few points", `{"paths": [{"segments": [{"kind": "cubic", "points": [[0,0],[1,1]]}]}]}`},
		{"on flag on curve", `{"paths": [{"segments": [{"kind": "quad", "points": [[0,0],[1,1],[1,0]], "on": true}]}]}`},
		{"empty path", `{"paths": [{"segments": []}]}`},
		{"gap", `{"paths": [{"segments": [
			{"kind": "line", "points": [[0,0],[1,0]]},
			{"kind": "line", "points": [[1,0.5],[1,1]]}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.doc))
			if err == nil {
				t.Fatal("ReadJSON() error = nil")
			}
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("code = %v, want %v (%v)", errors.GetCode(err), errors.ErrCodeInvalidInput, err)
			}
		})
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	want, err := ReadJSON(strings.NewReader(square))
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	want.Add(path.Circle(0.1, 0.2, 0.3))

	var buf bytes.Buffer
	if err := WriteJSON(&buf, want); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON(WriteJSON()) error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002.json", "0001.json", "0010.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(square), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.json"), 0o755); err != nil {
		t.Fatal(err)
	}

	files, err := ListFrames(dir)
	if err != nil {
		t.Fatalf("ListFrames() error = %v", err)
	}
	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	if diff := cmp.Diff([]string{"0001.json", "0002.json", "0010.json"}, names); diff != "" {
		t.Errorf("ListFrames() mismatch (-want +got):\n%s", diff)
	}

	frames, err := ImportDir(dir)
	if err != nil {
		t.Fatalf("ImportDir() error = %v", err)
	}
	if len(frames) != 3 {
		t.Errorf("ImportDir() = %d frames, want 3", len(frames))
	}

	_, err = ListFrames(filepath.Join(dir, "missing"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ListFrames(missing) code = %v, want %v", errors.GetCode(err), errors.ErrCodeFileNotFound)
	}
}

func TestExportImport(t *testing.T) {
	f := &path.Frame{}
	f.Add(path.Rect(-0.5, -0.5, 0.5, 0.5))
	name := filepath.Join(t.TempDir(), "rect.json")

	if err := ExportJSON(name, f); err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}
	got, err := ImportJSON(name)
	if err != nil {
		t.Fatalf("ImportJSON() error = %v", err)
	}
	if diff := cmp.Diff(f, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
