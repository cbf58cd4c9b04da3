package ilda

import (
	"encoding/binary"
	stderrors "errors"
	"io"

	"github.com/matzehuels/galvo/pkg/errors"
)

// Point is one decoded point in device space (y grows downwards, as
// produced by the renderer).
type Point struct {
	X, Y   int
	Status byte
	Color  byte
}

// On reports whether the beam is lit at p.
func (p Point) On() bool { return p.Status&StatusBlank == 0 }

// Last reports whether p carries the end-of-frame bit.
func (p Point) Last() bool { return p.Status&StatusLast != 0 }

// Frame is one decoded frame record.
type Frame struct {
	Header Header
	Points []Point
}

// CountOn returns the number of lit points.
func (f *Frame) CountOn() int {
	n := 0
	for _, p := range f.Points {
		if p.On() {
			n++
		}
	}
	return n
}

// Bounds returns the bounding box of the points. An empty frame has a zero
// box.
func (f *Frame) Bounds() (minX, minY, maxX, maxY int) {
	if len(f.Points) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = f.Points[0].X, f.Points[0].Y
	maxX, maxY = minX, minY
	for _, p := range f.Points[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return minX, minY, maxX, maxY
}

// Reader parses a stream one frame at a time.
type Reader struct {
	r   io.Reader
	end *Header
}

// NewReader returns a reader for r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Next returns the next frame. It returns io.EOF once the terminator has
// been read. Streams that end without a terminator, truncated records and
// bad magic fail with INVALID_STREAM.
func (r *Reader) Next() (*Frame, error) {
	if r.end != nil {
		return nil, io.EOF
	}

	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r.r, buf[:]); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.New(errors.ErrCodeInvalidStream, "stream ends without terminator")
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidStream, err, "read header")
	}
	hdr, err := parseHeader(buf[:])
	if err != nil {
		return nil, err
	}
	if hdr.End() {
		r.end = &hdr
		return nil, io.EOF
	}
	if hdr.Format != FormatIndexed2D {
		return nil, errors.New(errors.ErrCodeUnsupported, "frame %d: format %d not supported", hdr.Index, hdr.Format)
	}

	data := make([]byte, hdr.Count*PointSize)
	if _, err := io.ReadFull(r.r, data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidStream, err, "frame %d: truncated points", hdr.Index)
	}

	f := &Frame{Header: hdr, Points: make([]Point, hdr.Count)}
	for i := range f.Points {
		rec := data[i*PointSize : (i+1)*PointSize]
		f.Points[i] = Point{
			X:      int(int16(binary.BigEndian.Uint16(rec[0:2]))),
			Y:      -int(int16(binary.BigEndian.Uint16(rec[2:4]))),
			Status: rec[4],
			Color:  rec[5],
		}
	}
	return f, nil
}

// Terminator returns the terminator header once Next has returned io.EOF.
func (r *Reader) Terminator() (Header, bool) {
	if r.end == nil {
		return Header{}, false
	}
	return *r.end, true
}

// Decode reads every frame of a stream.
func Decode(r io.Reader) ([]*Frame, error) {
	rd := NewReader(r)
	var frames []*Frame
	for {
		f, err := rd.Next()
		if stderrors.Is(err, io.EOF) {
			return frames, nil
		}
		if err != nil {
			return frames, err
		}
		frames = append(frames, f)
	}
}
