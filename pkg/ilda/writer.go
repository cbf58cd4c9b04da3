package ilda

import (
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/galvo/pkg/errors"
	"github.com/matzehuels/galvo/pkg/laser"
)

// Options control how rendered samples are placed into the stream.
type Options struct {
	// Center moves the bounding box of each frame to the origin. Without
	// it samples keep their position and the frame is sized symmetrically
	// around the device center.
	Center bool

	// ExtraFirstDwell inserts that many copies of the first lit sample in
	// front of it.
	ExtraFirstDwell int

	// Invert flips the beam state of every point. Force lights every
	// point and is applied after Invert.
	Invert bool
	Force  bool

	// Name and Company fill the 8-byte header text fields.
	Name    string
	Company string

	// Logger receives the rescale notice. Defaults to a discard logger.
	Logger *log.Logger
}

// OptionsFromParams derives encoder options from render parameters.
func OptionsFromParams(p laser.Params, center bool) Options {
	return Options{
		Center:          center,
		ExtraFirstDwell: p.ExtraFirstDwell,
		Invert:          p.Invert,
		Force:           p.Force,
	}
}

func (o *Options) setDefaults() {
	if o.Name == "" {
		o.Name = DefaultName
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// FrameInfo describes how one frame was placed.
type FrameInfo struct {
	Index    int
	Points   int
	PointsOn int

	// MinX, MinY, MaxX and MaxY bound the samples before placement.
	MinX, MinY, MaxX, MaxY int

	// OffsetX and OffsetY are added to every sample before scaling.
	OffsetX, OffsetY float64
	// Scale is 1 unless the frame had to be shrunk to fit.
	Scale float64
}

// Rescaled reports whether the frame was shrunk.
func (fi FrameInfo) Rescaled() bool { return fi.Scale != 1 }

// EncodeFrame encodes one frame record, header included.
//
// It fails with EMPTY_FRAME when there is nothing to draw, POINT_OVERFLOW
// when the frame has MaxPoints samples or more and COORD_OVERFLOW when a
// placed coordinate exceeds MaxCoord.
func EncodeFrame(samples []laser.Sample, index, total int, opts Options) ([]byte, FrameInfo, error) {
	opts.setDefaults()
	info := FrameInfo{Index: index, Scale: 1}

	if len(samples) == 0 {
		return nil, info, errors.New(errors.ErrCodeEmptyFrame, "frame %d: no points rendered", index)
	}
	info.MinX, info.MinY, info.MaxX, info.MaxY = bounds(samples)
	samples = insertFirstDwell(samples, opts.ExtraFirstDwell)

	var width, height float64
	if opts.Center {
		info.OffsetX = -float64(info.MinX+info.MaxX) / 2
		info.OffsetY = -float64(info.MinY+info.MaxY) / 2
		width = float64(info.MaxX - info.MinX)
		height = float64(info.MaxY - info.MinY)
	} else {
		width = 2 * math.Max(math.Abs(float64(info.MinX)), math.Abs(float64(info.MaxX)))
		height = 2 * math.Max(math.Abs(float64(info.MinY)), math.Abs(float64(info.MaxY)))
	}

	if width > MaxExtent || height > MaxExtent {
		info.Scale = MaxExtent / math.Max(width, height)
		opts.Logger.Warn("scaling frame due to overflow",
			"frame", index, "scale", fmt.Sprintf("%.02f%%", info.Scale*100))
	}

	if len(samples) >= MaxPoints {
		return nil, info, errors.New(errors.ErrCodePointOverflow,
			"frame %d: too many points (%d, max %d)", index, len(samples), MaxPoints)
	}
	info.Points = len(samples)

	hdr := Header{
		Format:  FormatIndexed2D,
		Name:    opts.Name,
		Company: opts.Company,
		Count:   len(samples),
		Index:   index,
		Total:   total,
	}
	buf, err := hdr.AppendBinary(make([]byte, 0, HeaderSize+PointSize*len(samples)))
	if err != nil {
		return nil, info, err
	}

	last := len(samples) - 1
	for i, s := range samples {
		x := int((float64(s.X) + info.OffsetX) * info.Scale)
		y := int((float64(s.Y) + info.OffsetY) * info.Scale)

		on := s.On
		if opts.Invert {
			on = !on
		}
		if opts.Force {
			on = true
		}

		var status byte
		if i == last {
			status |= StatusLast
		}
		color := ColorOn
		if on {
			info.PointsOn++
		} else {
			status |= StatusBlank
			color = ColorOff
		}

		if abs(x) > MaxCoord {
			return nil, info, errors.New(errors.ErrCodeCoordOverflow, "frame %d: X out of bounds: %d", index, x)
		}
		if abs(y) > MaxCoord {
			return nil, info, errors.New(errors.ErrCodeCoordOverflow, "frame %d: Y out of bounds: %d", index, y)
		}
		buf = appendPoint(buf, x, y, status, color)
	}
	return buf, info, nil
}

// EncodeEnd returns the terminator record for a stream of total frames.
func EncodeEnd(total int, opts Options) ([]byte, error) {
	opts.setDefaults()
	hdr := Header{Format: FormatEnd, Name: opts.Name, Company: opts.Company, Total: total}
	return hdr.AppendBinary(nil)
}

func bounds(samples []laser.Sample) (minX, minY, maxX, maxY int) {
	minX, minY = samples[0].X, samples[0].Y
	maxX, maxY = minX, minY
	for _, s := range samples[1:] {
		minX = min(minX, s.X)
		minY = min(minY, s.Y)
		maxX = max(maxX, s.X)
		maxY = max(maxY, s.Y)
	}
	return minX, minY, maxX, maxY
}

// insertFirstDwell returns samples with n copies of the first lit sample
// inserted before it. The input is not modified.
func insertFirstDwell(samples []laser.Sample, n int) []laser.Sample {
	if n <= 0 {
		return samples
	}
	for i, s := range samples {
		if !s.On {
			continue
		}
		out := make([]laser.Sample, 0, len(samples)+n)
		out = append(out, samples[:i]...)
		for range n {
			out = append(out, s)
		}
		return append(out, samples[i:]...)
	}
	return samples
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Writer streams frames to an underlying writer. The total frame count is
// part of every header, so it must be known up front.
type Writer struct {
	w      io.Writer
	opts   Options
	total  int
	next   int
	closed bool
}

// NewWriter returns a writer for a stream of total frames.
func NewWriter(w io.Writer, total int, opts Options) (*Writer, error) {
	if total < 0 || total > MaxFrames {
		return nil, errors.New(errors.ErrCodeInvalidInput, "cannot encode %d frames (max %d)", total, MaxFrames)
	}
	opts.setDefaults()
	return &Writer{w: w, opts: opts, total: total}, nil
}

// WriteFrame encodes and writes the next frame.
func (w *Writer) WriteFrame(samples []laser.Sample) (FrameInfo, error) {
	if w.closed {
		return FrameInfo{}, errors.New(errors.ErrCodeInternal, "write to closed stream")
	}
	if w.next >= w.total {
		return FrameInfo{}, errors.New(errors.ErrCodeInternal, "stream announced %d frames", w.total)
	}
	buf, info, err := EncodeFrame(samples, w.next, w.total, w.opts)
	if err != nil {
		return info, err
	}
	if _, err := w.w.Write(buf); err != nil {
		return info, fmt.Errorf("write frame %d: %w", w.next, err)
	}
	w.next++
	return info, nil
}

// Close writes the terminator. It fails if fewer frames were written than
// announced. Close does not close the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.next != w.total {
		return errors.New(errors.ErrCodeInternal, "wrote %d of %d announced frames", w.next, w.total)
	}
	buf, err := EncodeEnd(w.total, w.opts)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(buf); err != nil {
		return fmt.Errorf("write terminator: %w", err)
	}
	return nil
}

// Encode writes frames followed by the terminator to w.
func Encode(w io.Writer, frames [][]laser.Sample, opts Options) ([]FrameInfo, error) {
	iw, err := NewWriter(w, len(frames), opts)
	if err != nil {
		return nil, err
	}
	infos := make([]FrameInfo, 0, len(frames))
	for _, f := range frames {
		info, err := iw.WriteFrame(f)
		if err != nil {
			return infos, err
		}
		infos = append(infos, info)
	}
	return infos, iw.Close()
}
