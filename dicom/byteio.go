// Package dicom provides a streaming, recursively nested DICOM data-element
// parser for DICOMDIR index files and VL Whole Slide Microscopy Image
// Storage instances, following Explicit VR Little Endian framing only.
//
// DICOM Standard Reference:
// https://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_7.1
package dicom

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// byteReader wraps an io.Reader positioned at the start of a DICOM file
// and tracks the absolute byte offset read so far. Every multi-byte field
// is little-endian — only Explicit VR Little Endian is supported, so
// there is no byte-order parameter or host-endian branch here (spec.md
// Design Notes, "Endianness -> explicit at the read boundary").
type byteReader struct {
	r   io.Reader
	pos int64
}

func newByteReader(r io.Reader) *byteReader {
	return &byteReader{r: r}
}

// Position returns the absolute number of bytes read from the start of
// the file so far.
func (r *byteReader) Position() int64 {
	return r.pos
}

// readRaw reads exactly len(buf) bytes, advancing pos by however many
// bytes were actually read (even on error), and normalizes io's EOF
// variants: a read that consumes zero bytes before hitting EOF returns
// io.EOF verbatim so callers can distinguish a clean end-of-stream from a
// truncated read.
func (r *byteReader) readRaw(buf []byte) (int, error) {
	n, err := io.ReadFull(r.r, buf)
	r.pos += int64(n)
	if err == nil {
		return n, nil
	}
	if errors.Is(err, io.EOF) && n == 0 {
		return n, io.EOF
	}
	return n, io.ErrUnexpectedEOF
}

// ReadUint16 reads a little-endian 16-bit unsigned integer.
func (r *byteReader) ReadUint16() (uint16, error) {
	var buf [2]byte
	if _, err := r.readRaw(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

// ReadUint32 reads a little-endian 32-bit unsigned integer.
func (r *byteReader) ReadUint32() (uint32, error) {
	var buf [4]byte
	if _, err := r.readRaw(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// ReadBytes reads exactly n bytes.
func (r *byteReader) ReadBytes(n int) ([]byte, error) {
	if n == 0 {
		return []byte{}, nil
	}
	buf := make([]byte, n)
	if _, err := r.readRaw(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Skip discards exactly n bytes without allocating a value buffer for
// them. This backs both the item-skip optimization in the walker and the
// "skip to end" behavior of the bounded value source.
func (r *byteReader) Skip(n int64) error {
	if n <= 0 {
		return nil
	}
	copied, err := io.CopyN(io.Discard, r.r, n)
	r.pos += copied
	if err != nil {
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}

// ioError wraps the low-level cause of a read/seek failure as a
// *ParseError of kind KindIO, the way section 7 classifies it.
func ioError(format string, cause error) error {
	return &ParseError{Kind: KindIO, cause: fmt.Errorf(format, cause)}
}
