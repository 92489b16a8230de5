package dicom

import (
	"bytes"
	"fmt"
	"os"

	"github.com/wsicore/dicomwsi/dicom/tag"
	"github.com/wsicore/dicomwsi/dicom/vr"
)

// preambleSize is the length, in bytes, of the ignored DICOM file
// preamble that precedes the "DICM" magic.
const preambleSize = 128

var dicmMagic = []byte("DICM")

// groupLengthTag is (0002,0000), the mandatory first element of the file
// meta information group, whose value is the remaining byte length of
// the group (spec.md section 4.5).
var groupLengthTag = tag.New(tag.MetadataGroup, 0x0000)

// checkPreamble skips the 128-byte preamble and verifies the magic bytes
// that follow it (spec.md section 4.5).
func checkPreamble(r *byteReader) error {
	if err := r.Skip(preambleSize); err != nil {
		return newParseError(KindIO, tag.Tag{}, tag.Path{}, fmt.Errorf("reading preamble: %w", err))
	}
	magic, err := r.ReadBytes(len(dicmMagic))
	if err != nil {
		return newParseError(KindIO, tag.Tag{}, tag.Path{}, fmt.Errorf("reading magic: %w", err))
	}
	if !bytes.Equal(magic, dicmMagic) {
		return newParseError(KindBadMagic, tag.Tag{}, tag.Path{},
			fmt.Errorf("expected DICM, got %q", magic))
	}
	return nil
}

// skipFileMetaGroup reads the mandatory group-length element and skips
// exactly that many bytes, consuming the entire file meta information
// group in one step. The meta group is always Explicit VR Little Endian
// regardless of the main dataset's transfer syntax, so it is read with
// the same element reader used everywhere else (spec.md section 4.5).
//
// Unlike a reader that falls back to "read elements until the group
// number changes," this requires the group-length element to be present
// and correctly typed — the one way this module's supported instances
// are guaranteed to encode it (see DESIGN.md).
func skipFileMetaGroup(r *byteReader) error {
	h, err := readExplicit(r)
	if err != nil {
		return wrapUnexpectedEOF(err, tag.Path{})
	}
	if h.Tag != groupLengthTag {
		return newParseError(KindBadHeader, h.Tag, tag.Path{},
			fmt.Errorf("expected file meta group length element %s, got %s", groupLengthTag, h.Tag))
	}
	if h.VR != vr.UnsignedLong || h.VL != 4 {
		return newParseError(KindBadHeader, h.Tag, tag.Path{},
			fmt.Errorf("expected UL VL=4 for %s, got %s VL=%d", groupLengthTag, h.VR, h.VL))
	}

	groupLength, err := r.ReadUint32()
	if err != nil {
		return newParseError(KindIO, h.Tag, tag.Path{}, fmt.Errorf("reading group length value: %w", err))
	}
	if err := r.Skip(int64(groupLength)); err != nil {
		return newParseError(KindIO, h.Tag, tag.Path{}, fmt.Errorf("skipping file meta group: %w", err))
	}
	return nil
}

// ReadMetaAttribute walks the file meta information group of filename
// with the same Explicit VR element reader as the main dataset, invoking
// onAttr for every meta element, as Parse does for the main dataset; the
// handler selects the elements it wants by path, and paths decides which
// defined-length sequences are descended into. This is the capability spec.md section 4.5 calls out for
// applications that need a file-meta attribute such as the SOP Instance
// UID fingerprint: it parses the meta group independently of Open/Parse,
// since by the time Open returns the meta group has already been skipped.
func ReadMetaAttribute(filename string, paths *tag.PathSet, onAttr AttributeHandler) error {
	p, err := openMetaOnly(filename)
	if err != nil {
		return err
	}
	defer p.Close()

	p.paths = paths
	p.onAttr = onAttr

	var consumed int64
	groupLength, err := p.metaGroupLength()
	if err != nil {
		return err
	}

	for consumed < int64(groupLength) {
		start := p.r.Position()
		h, err := readExplicit(p.r)
		if err != nil {
			return wrapUnexpectedEOF(err, tag.Path{})
		}
		if err := p.path.Push(h.Tag); err != nil {
			return newParseError(KindStructuralViolation, h.Tag, p.path.Clone(), err)
		}
		err = p.processElement(h)
		p.path.Pop()
		if err != nil {
			return err
		}
		consumed += p.r.Position() - start
	}
	return nil
}

// openMetaOnly opens filename and validates the preamble, leaving the
// stream positioned at the file meta group-length element, without
// skipping the group the way Open does.
func openMetaOnly(filename string) (*Parser, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, &ParseError{Kind: KindIO, cause: err}
	}
	r := newByteReader(f)
	if err := checkPreamble(r); err != nil {
		f.Close()
		return nil, err
	}
	return &Parser{f: f, r: r, paths: tag.NewPathSet()}, nil
}

// metaGroupLength reads and returns the file meta group's declared
// length, leaving the stream positioned at the first meta element.
func (p *Parser) metaGroupLength() (uint32, error) {
	h, err := readExplicit(p.r)
	if err != nil {
		return 0, wrapUnexpectedEOF(err, tag.Path{})
	}
	if h.Tag != groupLengthTag || h.VR != vr.UnsignedLong || h.VL != 4 {
		return 0, newParseError(KindBadHeader, h.Tag, tag.Path{},
			fmt.Errorf("expected file meta group length element %s", groupLengthTag))
	}
	return p.r.ReadUint32()
}
