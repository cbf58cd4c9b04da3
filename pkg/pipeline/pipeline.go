// Package pipeline provides the frame rendering pipeline for galvo.
//
// This package implements the complete load → sequence → render → encode
// pipeline used by the CLI and the HTTP server. By centralizing this logic,
// both entry points render identical streams for identical input.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Load: Read every frame file of the input directory in name order
//  2. Sequence: Reorder the paths of each frame to shorten blanked transits
//  3. Render: Turn each frame into samples, concurrently and cached
//  4. Encode: Write the samples as an ILDA stream in frame order
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    InputDir: "frames",
//	    Params:   laser.DefaultParams(),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = pipeline.WriteFile("out.ild", result.Encoded)
//
// Frames that are already in memory skip the load stage:
//
//	src, err := pipeline.NewSource("frame-0", data)
//	result, err := runner.ExecuteSources(ctx, []pipeline.Source{src}, opts)
package pipeline

import (
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/galvo/pkg/errors"
	"github.com/matzehuels/galvo/pkg/ilda"
	"github.com/matzehuels/galvo/pkg/laser"
	"github.com/matzehuels/galvo/pkg/path"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// TTLFrame is how long a rendered frame stays cached.
	TTLFrame = 7 * 24 * time.Hour

	// MaxConcurrency caps the number of frames rendered at once.
	MaxConcurrency = 256
)

// DefaultConcurrency returns the number of frames rendered at once when
// Options.Concurrency is unset.
func DefaultConcurrency() int {
	return runtime.GOMAXPROCS(0)
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the rendering pipeline.
// This struct supports JSON serialization for server requests.
type Options struct {
	// Load options
	InputDir string `json:"input_dir,omitempty"`

	// Render options
	Params      laser.Params `json:"params"`
	NoSort      bool         `json:"no_sort,omitempty"`   // Keep the path order of the source (default: false = sequence)
	Concurrency int          `json:"concurrency,omitempty"`
	Refresh     bool         `json:"refresh,omitempty"` // Bypass cached frames and re-render

	// Encode options
	NoCenter bool `json:"no_center,omitempty"` // Keep frame positions (default: false = center)

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// OnFrame, if set, is called after each frame is rendered with the
	// number of finished frames and the total. It is called from worker
	// goroutines, so it must be safe for concurrent use.
	OnFrame func(done, total int) `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called
	validated bool
}

// ShouldSort returns true if the paths of each frame should be reordered.
func (o Options) ShouldSort() bool {
	return !o.NoSort
}

// ShouldCenter returns true if each frame should be moved to the origin.
func (o Options) ShouldCenter() bool {
	return !o.NoCenter
}

// EncoderOptions returns the options passed to the stream encoder.
func (o Options) EncoderOptions() ilda.Options {
	eo := ilda.OptionsFromParams(o.Params, o.ShouldCenter())
	eo.Logger = o.Logger
	return eo
}

// ValidateAndSetDefaults validates the options and fills in defaults.
// A zero Params is replaced by [laser.DefaultParams]. This method is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.Params == (laser.Params{}) {
		o.Params = laser.DefaultParams()
	}
	if err := o.Params.Validate(); err != nil {
		return err
	}

	if o.Concurrency < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "concurrency must not be negative, got %d", o.Concurrency)
	}
	if o.Concurrency == 0 {
		o.Concurrency = DefaultConcurrency()
	}
	o.Concurrency = min(o.Concurrency, MaxConcurrency)

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// ValidateForLoad validates options needed for the load stage.
func (o *Options) ValidateForLoad() error {
	if o.InputDir == "" {
		return errors.New(errors.ErrCodeInvalidPath, "input directory is required")
	}
	if err := errors.ValidatePath(o.InputDir); err != nil {
		return err
	}
	return o.ValidateAndSetDefaults()
}

// =============================================================================
// Results
// =============================================================================

// Source is one loaded frame together with the hash of its source document.
// The hash identifies the frame in the cache.
type Source struct {
	Name  string
	Hash  string
	Frame *path.Frame
}

// Rendered is the sample sequence of one frame.
type Rendered struct {
	Samples  []laser.Sample
	Stats    laser.Stats
	CacheHit bool
}

// Result contains all outputs from a pipeline execution.
type Result struct {
	Frames    []Source
	Rendered  []Rendered
	Stats     laser.Stats // Merged over all frames in frame order
	Infos     []ilda.FrameInfo
	Encoded   []byte
	Timings   Timings
	CacheHits int
}

// Timings holds the wall-clock duration of each stage.
type Timings struct {
	Load   time.Duration
	Render time.Duration
	Encode time.Duration
}

// Samples returns the points of every rendered frame.
func (r *Result) Samples() [][]laser.Sample {
	out := make([][]laser.Sample, len(r.Rendered))
	for i, f := range r.Rendered {
		out[i] = f.Samples
	}
	return out
}

// Duration returns the playback duration of all frames at the given
// parameters' rate.
func (r *Result) Duration(p laser.Params) time.Duration {
	return p.Duration(r.Stats.Points)
}
