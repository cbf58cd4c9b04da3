package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/galvo/pkg/cache"
	"github.com/matzehuels/galvo/pkg/errors"
	"github.com/matzehuels/galvo/pkg/frameio"
	"github.com/matzehuels/galvo/pkg/ilda"
	"github.com/matzehuels/galvo/pkg/laser"
	"github.com/matzehuels/galvo/pkg/observability"
	"github.com/matzehuels/galvo/pkg/path"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// cacheEntry is the cached form of a rendered frame.
type cacheEntry struct {
	Samples []laser.Sample `json:"samples"`
	Stats   laser.Stats    `json:"stats"`
}

// Execute runs the complete load → render → encode pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	loadStart := time.Now()
	sources, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	loadTime := time.Since(loadStart)

	result, err := r.ExecuteSources(ctx, sources, opts)
	if err != nil {
		return nil, err
	}
	result.Timings.Load = loadTime
	return result, nil
}

// ExecuteSources runs the render → encode part of the pipeline on frames
// that are already loaded.
func (r *Runner) ExecuteSources(ctx context.Context, sources []Source, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{Frames: sources}

	// Stage 1: Render
	renderStart := time.Now()
	rendered, err := r.Render(ctx, sources, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Rendered = rendered
	result.Timings.Render = time.Since(renderStart)
	for _, f := range rendered {
		result.Stats.Add(f.Stats)
		if f.CacheHit {
			result.CacheHits++
		}
	}

	opts.Logger.Info("rendered frames",
		"frames", len(rendered),
		"points", result.Stats.Points,
		"cached", result.CacheHits,
		"duration", result.Timings.Render)

	// Stage 2: Encode
	encodeStart := time.Now()
	var buf bytes.Buffer
	infos, err := r.Encode(ctx, &buf, result.Samples(), opts)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	result.Infos = infos
	result.Encoded = buf.Bytes()
	result.Timings.Encode = time.Since(encodeStart)

	opts.Logger.Info("encoded stream",
		"frames", len(infos),
		"bytes", len(result.Encoded),
		"duration", result.Timings.Encode)

	return result, nil
}

// =============================================================================
// Load
// =============================================================================

// NewSource parses a frame document and records its hash.
func NewSource(name string, data []byte) (Source, error) {
	f, err := frameio.ReadJSON(bytes.NewReader(data))
	if err != nil {
		return Source{}, fmt.Errorf("%s: %w", name, err)
	}
	return Source{Name: name, Hash: cache.Hash(data), Frame: f}, nil
}

// Load reads every frame file of opts.InputDir in name order.
func (r *Runner) Load(ctx context.Context, opts Options) (sources []Source, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}

	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, opts.InputDir)
	defer func() {
		hooks.OnLoadComplete(ctx, opts.InputDir, len(sources), time.Since(start), err)
	}()

	files, err := frameio.ListFrames(opts.InputDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no %s frame files in %s", frameio.Ext, opts.InputDir)
	}
	if len(files) > ilda.MaxFrames {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%d frames exceed the stream limit of %d", len(files), ilda.MaxFrames)
	}

	sources = make([]Source, 0, len(files))
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		src, err := NewSource(filepath.Base(name), data)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}

	opts.Logger.Info("loaded frames",
		"dir", opts.InputDir,
		"frames", len(sources),
		"duration", time.Since(start))
	return sources, nil
}

// =============================================================================
// Sequence
// =============================================================================

// Sequence returns a copy of f with its paths reordered to shorten the
// blanked transits, logging the travel distance before and after.
func (r *Runner) Sequence(f *path.Frame, opts Options) *path.Frame {
	r.applyLogger(&opts)
	out := f.Clone()
	before := laser.TravelDistance(out.Paths)
	laser.Sequence(out)
	opts.Logger.Debug("sequenced frame",
		"paths", out.Len(),
		"travel_before", before,
		"travel_after", laser.TravelDistance(out.Paths))
	return out
}

// =============================================================================
// Render
// =============================================================================

// Render renders every source concurrently. The returned slice is in
// source order; each entry carries the statistics of that frame alone.
func (r *Runner) Render(ctx context.Context, sources []Source, opts Options) (rendered []Rendered, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, len(sources))
	defer func() {
		points := 0
		for _, f := range rendered {
			points += len(f.Samples)
		}
		hooks.OnRenderComplete(ctx, len(sources), points, time.Since(start), err)
	}()

	out := make([]Rendered, len(sources))
	var finished atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := r.RenderFrameWithCacheInfo(gctx, src, opts)
			if err != nil {
				return fmt.Errorf("frame %d (%s): %w", i, src.Name, err)
			}
			out[i] = f
			opts.Logger.Debug("rendered frame",
				"frame", i,
				"points", len(f.Samples),
				"on", f.Stats.PointsOn,
				"duration", opts.Params.Duration(len(f.Samples)),
				"cached", f.CacheHit)
			if opts.OnFrame != nil {
				opts.OnFrame(int(finished.Add(1)), len(sources))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// RenderFrameWithCacheInfo renders one frame, consulting the cache first
// unless opts.Refresh is set. Fresh results are always written back.
func (r *Runner) RenderFrameWithCacheInfo(ctx context.Context, src Source, opts Options) (Rendered, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return Rendered{}, err
	}

	cacheKey := r.Keyer.FrameKey(src.Hash, cache.FrameKeyOpts{
		Params: opts.Params,
		Sort:   opts.ShouldSort(),
	})

	// Try cache first (unless refresh requested)
	if !opts.Refresh && src.Hash != "" {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var e cacheEntry
			if err := json.Unmarshal(data, &e); err == nil {
				return Rendered{Samples: e.Samples, Stats: e.Stats, CacheHit: true}, nil
			}
			// Unreadable entries are re-rendered and overwritten
		}
	}

	f := src.Frame
	if opts.ShouldSort() {
		f = r.Sequence(f, opts)
	}
	var stats laser.Stats
	samples, err := laser.NewRenderer(opts.Params, &stats).RenderFrame(f)
	if err != nil {
		return Rendered{}, err
	}

	if src.Hash != "" {
		if data, err := json.Marshal(cacheEntry{Samples: samples, Stats: stats}); err == nil {
			if err := r.Cache.Set(ctx, cacheKey, data, TTLFrame); err != nil {
				opts.Logger.Debug("cache write failed", "frame", src.Name, "error", err)
			}
		}
	}

	return Rendered{Samples: samples, Stats: stats}, nil
}

// RenderFrame is a convenience wrapper that calls RenderFrameWithCacheInfo and discards the cache hit info.
func (r *Runner) RenderFrame(ctx context.Context, src Source, opts Options) ([]laser.Sample, error) {
	f, err := r.RenderFrameWithCacheInfo(ctx, src, opts)
	return f.Samples, err
}

// =============================================================================
// Encode
// =============================================================================

// Encode writes frames as a stream to w in order, followed by the
// terminator.
func (r *Runner) Encode(ctx context.Context, w io.Writer, frames [][]laser.Sample, opts Options) (infos []ilda.FrameInfo, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	hooks := observability.Pipeline()
	cw := &countingWriter{w: w}
	hooks.OnEncodeStart(ctx, len(frames))
	defer func() {
		hooks.OnEncodeComplete(ctx, len(frames), cw.n, time.Since(start), err)
	}()

	infos, err = ilda.Encode(cw, frames, opts.EncoderOptions())
	if err != nil {
		return nil, err
	}
	for _, info := range infos {
		if info.Rescaled() {
			opts.Logger.Debug("frame rescaled", "frame", info.Index, "scale", info.Scale)
		}
	}
	return infos, nil
}

type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
