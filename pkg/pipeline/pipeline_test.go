package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/galvo/pkg/cache"
	"github.com/matzehuels/galvo/pkg/errors"
	"github.com/matzehuels/galvo/pkg/ilda"
	"github.com/matzehuels/galvo/pkg/laser"
	"github.com/matzehuels/galvo/pkg/observability"
	"github.com/matzehuels/galvo/pkg/path"
)

const squareDoc = `{"paths": [{"segments": [
  {"kind": "line", "points": [[-0.5, -0.5], [0.5, -0.5]]},
  {"kind": "line", "points": [[0.5, -0.5], [0.5, 0.5]]},
  {"kind": "line", "points": [[0.5, 0.5], [-0.5, 0.5]]},
  {"kind": "line", "points": [[-0.5, 0.5], [-0.5, -0.5]]}
]}]}`

const curvesDoc = `{"paths": [
  {"segments": [{"kind": "cubic", "points": [[0.6, 0.6], [0.9, 0.9], [0.2, 0.9], [0.1, 0.6]]}]},
  {"segments": [{"kind": "quad", "points": [[-0.1, -0.1], [-0.3, 0.2], [-0.6, -0.1]]}]}
]}`

func writeFrames(t *testing.T, docs ...string) string {
	t.Helper()
	dir := t.TempDir()
	for i, doc := range docs {
		name := filepath.Join(dir, "frame"+string(rune('a'+i))+".json")
		if err := os.WriteFile(name, []byte(doc), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// =============================================================================
// Options
// =============================================================================

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}

	if opts.Params != laser.DefaultParams() {
		t.Errorf("Params = %+v, want defaults", opts.Params)
	}
	if opts.Concurrency != DefaultConcurrency() {
		t.Errorf("Concurrency = %d, want %d", opts.Concurrency, DefaultConcurrency())
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
	if !opts.ShouldSort() || !opts.ShouldCenter() {
		t.Error("sorting and centering should be on by default")
	}
}

func TestOptionsKeepsParams(t *testing.T) {
	p := laser.DefaultParams()
	p.OnSpeed = 0.05
	opts := Options{Params: p, Concurrency: 1000}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Params.OnSpeed != 0.05 {
		t.Errorf("OnSpeed = %v, want 0.05", opts.Params.OnSpeed)
	}
	if opts.Concurrency != MaxConcurrency {
		t.Errorf("Concurrency = %d, want %d", opts.Concurrency, MaxConcurrency)
	}
}

func TestOptionsValidation(t *testing.T) {
	bad := laser.DefaultParams()
	bad.Flatness = 0

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"invalid params", Options{Params: bad}, errors.ErrCodeInvalidParams},
		{"negative concurrency", Options{Concurrency: -1}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestOptionsValidateForLoad(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateForLoad(); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("missing input dir: error = %v, want INVALID_PATH", err)
	}

	opts = Options{InputDir: "frames"}
	if err := opts.ValidateForLoad(); err != nil {
		t.Errorf("valid options should pass: %v", err)
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	logger := opts.Logger
	concurrency := opts.Concurrency

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if opts.Logger != logger {
		t.Error("Logger changed on second call")
	}
	if opts.Concurrency != concurrency {
		t.Error("Concurrency changed on second call")
	}
}

func TestEncoderOptions(t *testing.T) {
	p := laser.DefaultParams()
	p.ExtraFirstDwell = 2
	p.Invert = true
	opts := Options{Params: p, NoCenter: true}

	eo := opts.EncoderOptions()
	if eo.Center {
		t.Error("Center should follow NoCenter")
	}
	if eo.ExtraFirstDwell != 2 || !eo.Invert || eo.Force {
		t.Errorf("EncoderOptions() = %+v", eo)
	}
}

// =============================================================================
// Runner
// =============================================================================

func TestExecute(t *testing.T) {
	dir := writeFrames(t, squareDoc, curvesDoc)
	runner := NewRunner(nil, nil, nil)

	res, err := runner.Execute(context.Background(), Options{InputDir: dir})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(res.Frames) != 2 || len(res.Rendered) != 2 || len(res.Infos) != 2 {
		t.Fatalf("result has %d frames, %d rendered, %d infos; want 2 each",
			len(res.Frames), len(res.Rendered), len(res.Infos))
	}
	if res.Frames[0].Name != "framea.json" || res.Frames[1].Name != "frameb.json" {
		t.Errorf("frame order = %s, %s", res.Frames[0].Name, res.Frames[1].Name)
	}
	if res.CacheHits != 0 {
		t.Errorf("CacheHits = %d with caching disabled", res.CacheHits)
	}

	var want laser.Stats
	for _, f := range res.Rendered {
		want.Add(f.Stats)
	}
	if diff := cmp.Diff(want, res.Stats); diff != "" {
		t.Errorf("merged stats mismatch (-want +got):\n%s", diff)
	}
	if res.Stats.Objects != 3 {
		t.Errorf("Objects = %d, want 3", res.Stats.Objects)
	}

	frames, err := ilda.Decode(bytes.NewReader(res.Encoded))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("decoded %d frames, want 2", len(frames))
	}
	for i, f := range frames {
		if got, want := len(f.Points), len(res.Rendered[i].Samples); got != want {
			t.Errorf("frame %d has %d points, want %d", i, got, want)
		}
		if f.Header.Total != 2 || f.Header.Index != i {
			t.Errorf("frame %d header = %+v", i, f.Header)
		}
	}
}

func TestExecuteCached(t *testing.T) {
	dir := writeFrames(t, squareDoc, curvesDoc)
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, nil)
	ctx := context.Background()

	first, err := runner.Execute(ctx, Options{InputDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	second, err := runner.Execute(ctx, Options{InputDir: dir})
	if err != nil {
		t.Fatal(err)
	}

	if second.CacheHits != 2 {
		t.Errorf("CacheHits = %d, want 2", second.CacheHits)
	}
	if !bytes.Equal(first.Encoded, second.Encoded) {
		t.Error("cached run encoded a different stream")
	}
	if diff := cmp.Diff(first.Stats, second.Stats); diff != "" {
		t.Errorf("cached stats mismatch (-first +second):\n%s", diff)
	}

	refreshed, err := runner.Execute(ctx, Options{InputDir: dir, Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheHits != 0 {
		t.Errorf("Refresh: CacheHits = %d, want 0", refreshed.CacheHits)
	}

	// Encoder-only settings reuse rendered frames.
	p := laser.DefaultParams()
	p.Invert = true
	inverted, err := runner.Execute(ctx, Options{InputDir: dir, Params: p})
	if err != nil {
		t.Fatal(err)
	}
	if inverted.CacheHits != 2 {
		t.Errorf("Invert: CacheHits = %d, want 2", inverted.CacheHits)
	}

	// Sorting changes the samples and must miss.
	unsorted, err := runner.Execute(ctx, Options{InputDir: dir, NoSort: true})
	if err != nil {
		t.Fatal(err)
	}
	if unsorted.CacheHits != 0 {
		t.Errorf("NoSort: CacheHits = %d, want 0", unsorted.CacheHits)
	}
}

func TestRenderConcurrencyIndependent(t *testing.T) {
	docs := []string{squareDoc, curvesDoc, squareDoc, curvesDoc, squareDoc}
	var sources []Source
	for i, doc := range docs {
		src, err := NewSource(string(rune('a'+i)), []byte(doc))
		if err != nil {
			t.Fatal(err)
		}
		sources = append(sources, src)
	}
	runner := NewRunner(nil, nil, nil)
	ctx := context.Background()

	serial, err := runner.Render(ctx, sources, Options{Concurrency: 1})
	if err != nil {
		t.Fatal(err)
	}
	parallel, err := runner.Render(ctx, sources, Options{Concurrency: 4})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(serial, parallel); diff != "" {
		t.Errorf("concurrent render differs (-serial +parallel):\n%s", diff)
	}
}

func TestRenderReportsProgress(t *testing.T) {
	var sources []Source
	for i := range 6 {
		src, err := NewSource(string(rune('a'+i)), []byte(squareDoc))
		if err != nil {
			t.Fatal(err)
		}
		sources = append(sources, src)
	}

	var mu sync.Mutex
	var seen []int
	opts := Options{
		Concurrency: 3,
		OnFrame: func(done, total int) {
			mu.Lock()
			defer mu.Unlock()
			if total != len(sources) {
				t.Errorf("total = %d, want %d", total, len(sources))
			}
			seen = append(seen, done)
		},
	}
	if _, err := NewRunner(nil, nil, nil).Render(context.Background(), sources, opts); err != nil {
		t.Fatal(err)
	}

	slices.Sort(seen)
	if diff := cmp.Diff([]int{1, 2, 3, 4, 5, 6}, seen); diff != "" {
		t.Errorf("progress counts mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderCanceled(t *testing.T) {
	src, err := NewSource("a", []byte(squareDoc))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = NewRunner(nil, nil, nil).Render(ctx, []Source{src}, Options{})
	if err == nil {
		t.Fatal("Render() with canceled context should fail")
	}
}

func TestRenderPointOverflow(t *testing.T) {
	src, err := NewSource("a", []byte(squareDoc))
	if err != nil {
		t.Fatal(err)
	}
	p := laser.DefaultParams()
	p.OnSpeed = laser.MinSpeed

	_, err = NewRunner(nil, nil, nil).Render(context.Background(), []Source{src}, Options{Params: p})
	if !errors.Is(err, errors.ErrCodePointOverflow) {
		t.Fatalf("Render() error = %v, want POINT_OVERFLOW", err)
	}
	if !strings.Contains(err.Error(), "frame 0 (a)") {
		t.Errorf("error %q should name the frame", err)
	}
}

func TestSequenceKeepsSource(t *testing.T) {
	far := path.MustNew(path.Line{P0: path.Pt(0.9, 0.9), P1: path.Pt(0.8, 0.9), On: true})
	near := path.MustNew(path.Line{P0: path.Pt(0.1, 0), P1: path.Pt(0.2, 0), On: true})
	f := &path.Frame{Paths: []path.Path{far, near}}

	out := NewRunner(nil, nil, nil).Sequence(f, Options{})

	if out.Paths[0].Start() != near.Start() {
		t.Errorf("first path starts at %v, want %v", out.Paths[0].Start(), near.Start())
	}
	if f.Paths[0].Start() != far.Start() {
		t.Error("Sequence modified its input frame")
	}
}

func TestLoadErrors(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		dir  string
		code errors.Code
	}{
		{"missing dir", filepath.Join(t.TempDir(), "missing"), errors.ErrCodeFileNotFound},
		{"no frames", t.TempDir(), errors.ErrCodeInvalidInput},
		{"bad frame", writeFrames(t, squareDoc, `{"paths": [{"segments": []}]}`), errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runner.Load(ctx, Options{InputDir: tt.dir})
			if !errors.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want code %s", err, tt.code)
			}
		})
	}

	_, err := runner.Load(ctx, Options{InputDir: writeFrames(t, squareDoc, "{")})
	if err == nil || !strings.Contains(err.Error(), "frameb.json") {
		t.Errorf("error %v should name the failing file", err)
	}
}

func TestExecuteEmptyFrame(t *testing.T) {
	dir := writeFrames(t, squareDoc, `{"paths": []}`)
	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{InputDir: dir})
	if !errors.Is(err, errors.ErrCodeEmptyFrame) {
		t.Errorf("Execute() error = %v, want EMPTY_FRAME", err)
	}
}

// =============================================================================
// Hooks
// =============================================================================

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
	size   int
}

func (h *recordingHooks) record(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHooks) OnLoadStart(context.Context, string) { h.record("load") }
func (h *recordingHooks) OnRenderStart(context.Context, int)  { h.record("render") }
func (h *recordingHooks) OnEncodeStart(context.Context, int)  { h.record("encode") }

func (h *recordingHooks) OnEncodeComplete(_ context.Context, _ int, size int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.size = size
}

func TestExecuteHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	dir := writeFrames(t, squareDoc)
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{InputDir: dir})
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"load", "render", "encode"}, hooks.events); diff != "" {
		t.Errorf("hook events mismatch (-want +got):\n%s", diff)
	}
	if hooks.size != len(res.Encoded) {
		t.Errorf("encoded size = %d, want %d", hooks.size, len(res.Encoded))
	}
}

// =============================================================================
// Output
// =============================================================================

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "out.ild")
	data := []byte("ILDA stream")

	if err := WriteFile(name, data); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	got, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("file = %q, want %q", got, data)
	}
	info, err := os.Stat(name)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o644 {
		t.Errorf("mode = %v, want -rw-r--r--", perm)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want only the output", len(entries))
	}
}

func TestWriteFileMissingDir(t *testing.T) {
	name := filepath.Join(t.TempDir(), "missing", "out.ild")
	if err := WriteFile(name, []byte("x")); err == nil {
		t.Fatal("WriteFile() into a missing directory should fail")
	}
	if _, err := os.Stat(name); !os.IsNotExist(err) {
		t.Errorf("output should not exist, stat error = %v", err)
	}
}
