package dicom

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/wsicore/dicomwsi/dicom/tag"
	"github.com/wsicore/dicomwsi/dicom/vr"
)

// Undefined is the VL sentinel denoting undefined length (spec.md Data
// Model, "Data Element").
const Undefined uint32 = 0xFFFFFFFF

// header is a parsed data-element or delimiter header: {tag, vr, vl}. The
// value bytes, if any, are exposed separately through a ValueSource
// (spec.md section 4.1/4.2, "Data Element").
type header struct {
	Tag tag.Tag
	VR  vr.VR
	VL  uint32
}

// IsUndefined reports whether h carries the undefined-length sentinel.
func (h header) IsUndefined() bool {
	return h.VL == Undefined
}

// readTag reads a 4-byte tag (two little-endian uint16 halves) as one
// bounded read, so that a stream ending partway through the tag (1-3
// bytes available) is reported as a truncated read rather than aliasing
// onto the clean end-of-file case the top-level loop relies on.
func readTag(r *byteReader) (tag.Tag, error) {
	var buf [4]byte
	if _, err := r.readRaw(buf[:]); err != nil {
		return tag.Tag{}, err
	}
	group := binary.LittleEndian.Uint16(buf[0:2])
	element := binary.LittleEndian.Uint16(buf[2:4])
	return tag.New(group, element), nil
}

// readExplicit reads one data-element header using Explicit VR framing:
// tag(4) | VR(2) | VL(2) for short-length VRs, or
// tag(4) | VR(2) | reserved(2) | VL(4) for long-length VRs.
//
// This is the variant mandatory at the top of the main dataset and within
// defined-length items (spec.md section 4.2, item 1). It returns io.EOF,
// unwrapped, exactly when zero bytes could be read for the tag — the
// signal the top-level loop uses to terminate at end of file (spec.md
// section 4.4, "loop until the Explicit reader reports EOF").
func readExplicit(r *byteReader) (header, error) {
	t, err := readTag(r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return header{}, io.EOF
		}
		return header{}, ioError("reading tag: %w", err)
	}

	var vrBytes [2]byte
	if _, err := r.readRaw(vrBytes[:]); err != nil {
		return header{}, ioError("reading VR: %w", err)
	}
	if !vr.IsValidBytes(vrBytes) {
		return header{}, newParseError(KindBadHeader, t, tag.Path{}, errBadVRBytes(t, vrBytes))
	}
	v, err := vr.Parse(string(vrBytes[:]))
	if err != nil {
		return header{}, newParseError(KindBadHeader, t, tag.Path{}, err)
	}

	vl, err := readLength(r, t, v)
	if err != nil {
		return header{}, err
	}

	return header{Tag: t, VR: v, VL: vl}, nil
}

// readExplicitWithItemDelimiter is identical to readExplicit except that
// if the decoded tag is exactly Item Delimitation (FFFE,E00D), it takes
// the delimiter fast path: reads a 32-bit VL (must be zero) and reports
// VR Invalid. Used inside undefined-length items (spec.md section 4.2,
// item 2).
func readExplicitWithItemDelimiter(r *byteReader) (header, error) {
	t, err := readTag(r)
	if err != nil {
		return header{}, err
	}

	if t == tag.ItemDelimitation {
		vl, err := r.ReadUint32()
		if err != nil {
			return header{}, ioError("reading item delimitation length: %w", err)
		}
		if vl != 0 {
			return header{}, newParseError(KindBadHeader, t, tag.Path{}, errNonZeroDelimiterLength(t, vl))
		}
		return header{Tag: t, VR: vr.Invalid, VL: vl}, nil
	}

	var vrBytes [2]byte
	if _, err := r.readRaw(vrBytes[:]); err != nil {
		return header{}, ioError("reading VR: %w", err)
	}
	if !vr.IsValidBytes(vrBytes) {
		return header{}, newParseError(KindBadHeader, t, tag.Path{}, errBadVRBytes(t, vrBytes))
	}
	v, err := vr.Parse(string(vrBytes[:]))
	if err != nil {
		return header{}, newParseError(KindBadHeader, t, tag.Path{}, err)
	}

	vl, err := readLength(r, t, v)
	if err != nil {
		return header{}, err
	}

	return header{Tag: t, VR: v, VL: vl}, nil
}

// readDelimiterHeader reads a delimiter-framed header — tag(4) | VL(4),
// no VR — used to read the headers of (FFFE,E000), (FFFE,E00D), and
// (FFFE,E0DD). This is the only consumer of the FFFE group (spec.md
// section 4.2, item 3).
func readDelimiterHeader(r *byteReader) (header, error) {
	t, err := readTag(r)
	if err != nil {
		return header{}, err
	}
	vl, err := r.ReadUint32()
	if err != nil {
		return header{}, ioError("reading delimiter length: %w", err)
	}
	return header{Tag: t, VR: vr.Invalid, VL: vl}, nil
}

// readLength reads the value-length field that follows the VR, using the
// header layout the VR's class dictates.
func readLength(r *byteReader, t tag.Tag, v vr.VR) (uint32, error) {
	if v.UsesLongHeader() {
		reserved, err := r.ReadUint16()
		if err != nil {
			return 0, ioError("reading reserved field: %w", err)
		}
		if reserved != 0 {
			return 0, newParseError(KindBadHeader, t, tag.Path{}, errNonZeroReserved(t, reserved))
		}
		vl, err := r.ReadUint32()
		if err != nil {
			return 0, ioError("reading 32-bit length: %w", err)
		}
		return vl, nil
	}

	vl16, err := r.ReadUint16()
	if err != nil {
		return 0, ioError("reading 16-bit length: %w", err)
	}
	return uint32(vl16), nil
}

func errBadVRBytes(t tag.Tag, b [2]byte) error {
	return &headerErr{msg: "invalid VR bytes for " + t.String() + ": " + string(b[:])}
}

func errNonZeroReserved(t tag.Tag, reserved uint16) error {
	return &headerErr{msg: "non-zero reserved field for " + t.String()}
}

func errNonZeroDelimiterLength(t tag.Tag, vl uint32) error {
	return &headerErr{msg: "non-zero length on delimiter " + t.String()}
}

type headerErr struct{ msg string }

func (e *headerErr) Error() string { return e.msg }
