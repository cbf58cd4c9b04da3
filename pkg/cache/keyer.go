package cache

import "github.com/matzehuels/galvo/pkg/laser"

// keyVersion changes whenever the cached entry layout or the renderer
// output changes, invalidating older entries.
const keyVersion = "v1"

// FrameKeyOpts holds everything besides the frame source that determines
// rendered samples.
type FrameKeyOpts struct {
	Params laser.Params
	Sort   bool
}

// Keyer generates cache keys.
type Keyer interface {
	// FrameKey returns the key of a rendered frame. frameHash identifies
	// the frame source, usually [Hash] of the file contents.
	FrameKey(frameHash string, opts FrameKeyOpts) string
}

// DefaultKeyer generates unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// FrameKey hashes the frame hash together with the parameters that affect
// rendering. Encoder-only settings (rate, extra first dwell, invert and
// force) are left out, so changing them reuses rendered frames.
func (DefaultKeyer) FrameKey(frameHash string, opts FrameKeyOpts) string {
	p := opts.Params
	p.Rate = 0
	p.ExtraFirstDwell = 0
	p.Invert = false
	p.Force = false
	return hashKey("frame:"+keyVersion, frameHash, p, opts.Sort)
}
