package ilda

import (
	"bytes"
	"encoding/binary"

	"github.com/matzehuels/galvo/pkg/errors"
	"github.com/matzehuels/galvo/pkg/laser"
)

const (
	// HeaderSize is the size of a record header in bytes.
	HeaderSize = 32
	// PointSize is the size of one format-1 point in bytes.
	PointSize = 6

	// FormatIndexed2D is the format code of frame records written by this
	// package. FormatEnd marks the terminator.
	FormatIndexed2D byte = 1
	FormatEnd       byte = 0

	// StatusLast marks the final point of a frame; StatusBlank a point
	// drawn with the beam off.
	StatusLast  byte = 0x80
	StatusBlank byte = 0x40

	// ColorOn and ColorOff are the palette indices of lit and blanked
	// points.
	ColorOn  byte = 0x01
	ColorOff byte = 0x00

	// MaxCoord is the largest coordinate magnitude a point can carry.
	MaxCoord = 32767
	// MaxExtent is the widest bounding box a frame may span without
	// rescaling.
	MaxExtent = 65534
	// MaxPoints is the exclusive upper bound on points per frame.
	MaxPoints = laser.MaxSamples
	// MaxFrames is the largest total frame count a header can carry.
	MaxFrames = 65535

	// DefaultName is written into the name field when none is configured.
	DefaultName = "galvo"
)

var magic = [4]byte{'I', 'L', 'D', 'A'}

// Header is a decoded record header.
type Header struct {
	Format    byte
	Name      string
	Company   string
	Count     int
	Index     int
	Total     int
	Projector byte
}

// End reports whether h is the end-of-stream terminator.
func (h Header) End() bool { return h.Count == 0 }

// AppendBinary appends the 32-byte encoding of h to b. Name and company
// are truncated to 8 bytes.
func (h Header) AppendBinary(b []byte) ([]byte, error) {
	if h.Count < 0 || h.Count > 0xffff || h.Index < 0 || h.Index > 0xffff ||
		h.Total < 0 || h.Total > 0xffff {
		return b, errors.New(errors.ErrCodeInternal,
			"header field out of range (count %d, index %d, total %d)", h.Count, h.Index, h.Total)
	}

	var buf [HeaderSize]byte
	copy(buf[0:4], magic[:])
	buf[7] = h.Format
	copy(buf[8:16], h.Name)
	copy(buf[16:24], h.Company)
	binary.BigEndian.PutUint16(buf[24:26], uint16(h.Count))
	binary.BigEndian.PutUint16(buf[26:28], uint16(h.Index))
	binary.BigEndian.PutUint16(buf[28:30], uint16(h.Total))
	buf[30] = h.Projector
	return append(b, buf[:]...), nil
}

func parseHeader(buf []byte) (Header, error) {
	if len(buf) != HeaderSize {
		return Header{}, errors.New(errors.ErrCodeInvalidStream, "short header (%d bytes)", len(buf))
	}
	if !bytes.Equal(buf[0:4], magic[:]) {
		return Header{}, errors.New(errors.ErrCodeInvalidStream, "bad magic %q", buf[0:4])
	}
	return Header{
		Format:    buf[7],
		Name:      field(buf[8:16]),
		Company:   field(buf[16:24]),
		Count:     int(binary.BigEndian.Uint16(buf[24:26])),
		Index:     int(binary.BigEndian.Uint16(buf[26:28])),
		Total:     int(binary.BigEndian.Uint16(buf[28:30])),
		Projector: buf[30],
	}, nil
}

// field decodes a NUL-padded fixed-width text field.
func field(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func appendPoint(b []byte, x, y int, status, color byte) []byte {
	b = binary.BigEndian.AppendUint16(b, uint16(int16(x)))
	b = binary.BigEndian.AppendUint16(b, uint16(int16(-y)))
	return append(b, status, color)
}
