// SPDX-License-Identifier: GPL-2.0-or-later

// Package wire implements the length-delimited binary framing shared by
// the transport (Message frames) and the file index's on-disk cache
// (CacheIndex blobs): a small header carrying the payload size plus its
// bitwise complement as a redundancy check, followed by the payload
// itself. Field-level encoding on top of a frame is byte-aligned integers
// and length-prefixed strings written with github.com/icza/bitio.
package wire

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/icza/bitio"
)

// ErrHeaderCorrupt is returned when a frame's redundant size field does
// not match its primary size field.
var ErrHeaderCorrupt = errors.New("wire: corrupt frame header")

// MaxFrameSize bounds a single frame's payload, guarding against a
// corrupt or hostile size field causing an unbounded allocation.
const MaxFrameSize = 64 << 20

// WriteFrame writes payload as one length-delimited frame.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrameSize {
		return fmt.Errorf("wire: frame too large: %d bytes", len(payload))
	}

	bw := bitio.NewWriter(w)
	size := uint32(len(payload))
	if err := bw.WriteBits(uint64(size), 32); err != nil {
		return err
	}
	if err := bw.WriteBits(uint64(^size), 32); err != nil {
		return err
	}
	if _, err := bw.Write(payload); err != nil {
		return err
	}
	return bw.Close()
}

// ReadFrame reads one length-delimited frame written by WriteFrame.
func ReadFrame(r io.Reader) ([]byte, error) {
	br := bitio.NewReader(r)

	size, err := br.ReadBits(32)
	if err != nil {
		return nil, err
	}
	sizeInv, err := br.ReadBits(32)
	if err != nil {
		return nil, err
	}
	if uint32(size) != ^uint32(sizeInv) {
		return nil, ErrHeaderCorrupt
	}
	if size > MaxFrameSize {
		return nil, fmt.Errorf("wire: frame too large: %d bytes", size)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(br, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Writer encodes primitive fields onto an underlying byte-aligned stream.
type Writer struct {
	bw *bitio.Writer
}

// NewWriter wraps w for field-level encoding.
func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bitio.NewWriter(w)}
}

// WriteUint8 writes a single byte.
func (w *Writer) WriteUint8(v uint8) error {
	return w.bw.WriteByte(v)
}

// WriteBool writes a boolean as one byte.
func (w *Writer) WriteBool(v bool) error {
	if v {
		return w.WriteUint8(1)
	}
	return w.WriteUint8(0)
}

// WriteUint32 writes a 32-bit unsigned integer.
func (w *Writer) WriteUint32(v uint32) error {
	return w.bw.WriteBits(uint64(v), 32)
}

// WriteInt writes an int as a 64-bit two's-complement value.
func (w *Writer) WriteInt(v int) error {
	return w.bw.WriteBits(uint64(v), 64)
}

// WriteUint64 writes a 64-bit unsigned integer.
func (w *Writer) WriteUint64(v uint64) error {
	return w.bw.WriteBits(v, 64)
}

// WriteInt64 writes a 64-bit two's-complement integer.
func (w *Writer) WriteInt64(v int64) error {
	return w.bw.WriteBits(uint64(v), 64)
}

// WriteFloat64 writes a 64-bit IEEE 754 float.
func (w *Writer) WriteFloat64(v float64) error {
	return w.bw.WriteBits(math.Float64bits(v), 64)
}

// WriteString writes a length-prefixed UTF-8 string.
func (w *Writer) WriteString(s string) error {
	if err := w.WriteUint32(uint32(len(s))); err != nil {
		return err
	}
	_, err := w.bw.Write([]byte(s))
	return err
}

// Close flushes any partial byte. Field writes are always byte-aligned so
// this never pads.
func (w *Writer) Close() error {
	return w.bw.Close()
}

// Reader decodes primitive fields from an underlying byte-aligned stream.
type Reader struct {
	br *bitio.Reader
}

// NewReader wraps r for field-level decoding.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bitio.NewReader(r)}
}

// ReadUint8 reads a single byte.
func (r *Reader) ReadUint8() (uint8, error) {
	return r.br.ReadByte()
}

// ReadBool reads a boolean encoded as one byte.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadUint8()
	return v != 0, err
}

// ReadUint32 reads a 32-bit unsigned integer.
func (r *Reader) ReadUint32() (uint32, error) {
	v, err := r.br.ReadBits(32)
	return uint32(v), err
}

// ReadInt reads an int encoded as a 64-bit two's-complement value.
func (r *Reader) ReadInt() (int, error) {
	v, err := r.br.ReadBits(64)
	return int(int64(v)), err
}

// ReadUint64 reads a 64-bit unsigned integer.
func (r *Reader) ReadUint64() (uint64, error) {
	return r.br.ReadBits(64)
}

// ReadInt64 reads a 64-bit two's-complement integer.
func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.br.ReadBits(64)
	return int64(v), err
}

// ReadFloat64 reads a 64-bit IEEE 754 float.
func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.br.ReadBits(64)
	return math.Float64frombits(v), err
}

// ReadString reads a length-prefixed UTF-8 string.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.br, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
