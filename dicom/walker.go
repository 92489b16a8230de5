package dicom

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/wsicore/dicomwsi/dicom/tag"
	"github.com/wsicore/dicomwsi/dicom/vr"
)

// PixelData identifies the encapsulatable pixel-data element (7FE0,0010).
var PixelData = tag.New(0x7FE0, 0x0010)

// maxTopLevelGroup bounds ordinary top-level tags: the main dataset never
// carries a group past pixel data (spec.md section 4.4, "read_dataset").
const maxTopLevelGroup = 0x7FE0

// orderCheck enforces the strictly-increasing-tag invariant within one
// scope (the top level, one item, one sequence of items). Delimiter
// sentinels never pass through it (spec.md section 3, "except across
// delimiter sentinels").
type orderCheck struct {
	last tag.Tag
	have bool
}

func (o *orderCheck) accept(t tag.Tag, path tag.Path) error {
	if o.have && !o.last.Less(t) {
		return newParseError(KindOrderViolation, t, path,
			fmt.Errorf("%s does not strictly increase after %s", t, o.last))
	}
	o.last = t
	o.have = true
	return nil
}

// Element is the header information a handler sees for a selected
// attribute: its tag, VR, and declared length.
type Element struct {
	Tag tag.Tag
	VR  vr.VR
	VL  uint32
}

// IsUndefined reports whether the element carries the undefined-length
// sentinel.
func (e Element) IsUndefined() bool {
	return e.VL == Undefined
}

func elementFromHeader(h header) Element {
	return Element{Tag: h.Tag, VR: h.VR, VL: h.VL}
}

// AttributeHandler receives a selected ordinary or structural attribute.
// source is nil for structural elements (sequences, encapsulated pixel
// data) whose value carries no bytes of its own.
type AttributeHandler func(path tag.Path, el Element, source *ValueSource) error

// FragmentHandler receives one encapsulated pixel-data tile fragment: its
// absolute file offset and declared length. The Basic Offset Table
// fragment is never reported (spec.md section 4.7, "Pixel-data framing").
type FragmentHandler func(path tag.Path, absoluteOffset int64, length uint32) error

// Parser walks a single DICOM file once, dispatching selected attributes
// and pixel-data fragments to caller-supplied handlers. A Parser owns
// exactly one open file; it is not safe for concurrent use from more than
// one goroutine (spec.md section 5).
type Parser struct {
	f      *os.File
	r      *byteReader
	path   tag.Path
	paths  *tag.PathSet
	onAttr AttributeHandler
	onFrag FragmentHandler
}

// Open validates the preamble and magic, skips the file meta information
// group, and returns a Parser positioned at the first main-dataset
// element (spec.md section 4.5).
func Open(filename string) (*Parser, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, &ParseError{Kind: KindIO, cause: err}
	}
	r := newByteReader(f)
	if err := checkPreamble(r); err != nil {
		f.Close()
		return nil, err
	}
	if err := skipFileMetaGroup(r); err != nil {
		f.Close()
		return nil, err
	}
	return &Parser{f: f, r: r, paths: tag.NewPathSet()}, nil
}

// newParserFromReader builds a Parser directly over an in-memory dataset
// reader, skipping Open's preamble/meta handling. Exercised by this
// package's own tests, which build synthetic datasets with bytes.Buffer
// rather than real files.
func newParserFromReader(r io.Reader) *Parser {
	return &Parser{r: newByteReader(r), paths: tag.NewPathSet()}
}

// RegisterPath adds an exact-match path consulted both by handlers that
// call Find and by the descent-decision predicate Match, which descends
// into any defined-length region whose path leads to a registered path
// (spec.md section 4.3).
func (p *Parser) RegisterPath(path tag.Path) error {
	return p.paths.Add(path)
}

// SetHandlers installs the attribute and fragment callbacks. Either may
// be nil.
func (p *Parser) SetHandlers(onAttr AttributeHandler, onFrag FragmentHandler) {
	p.onAttr = onAttr
	p.onFrag = onFrag
}

// Close releases the underlying file handle. Safe to call multiple times.
func (p *Parser) Close() error {
	if p.f == nil {
		return nil
	}
	err := p.f.Close()
	p.f = nil
	return err
}

// Parse runs the top-level dataset loop (read_dataset): it repeatedly
// reads one Explicit element, validates top-level tag constraints and
// strict ordering, dispatches it through the shared case split, and
// continues until the Explicit reader reports a clean end of file
// (spec.md section 4.4).
func (p *Parser) Parse() error {
	var order orderCheck

	for {
		h, err := readExplicit(p.r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if h.Tag.Group == tag.ItemGroup || h.Tag.Group > maxTopLevelGroup {
			return newParseError(KindStructuralViolation, h.Tag, p.path.Clone(),
				fmt.Errorf("tag %s not valid at top level", h.Tag))
		}
		if err := order.accept(h.Tag, p.path.Clone()); err != nil {
			return err
		}

		if err := p.path.Push(h.Tag); err != nil {
			return newParseError(KindStructuralViolation, h.Tag, p.path.Clone(), err)
		}
		err = p.processElement(h)
		p.path.Pop()
		if err != nil {
			return err
		}
	}
}

// processElement dispatches one already-pushed element by the shape rules
// common to the top level, defined-length items, and undefined-length
// items (spec.md section 4.4: "process element (same case split as
// top-level for SQ/encapsulated/ordinary)").
func (p *Parser) processElement(h header) error {
	switch {
	case h.IsUndefined() && h.VR.IsSequence():
		if err := p.dispatchAttr(h, nil); err != nil {
			return err
		}
		return p.readSeqUndef()

	case h.IsUndefined() && h.Tag.Equals(PixelData) && (h.VR == vr.OtherByte || h.VR == vr.OtherWord):
		if err := p.dispatchAttr(h, nil); err != nil {
			return err
		}
		return p.readEncapsulatedPixelData()

	case h.IsUndefined() && h.VR == vr.Unknown:
		return newParseError(KindUnsupportedSyntax, h.Tag, p.path.Clone(),
			fmt.Errorf("undefined-length UN at %s requires Implicit VR", h.Tag))

	case h.IsUndefined():
		return newParseError(KindStructuralViolation, h.Tag, p.path.Clone(),
			fmt.Errorf("undefined length not permitted for VR %s at %s", h.VR, h.Tag))

	case h.VR.IsSequence():
		if p.paths.Match(p.path) {
			return p.readSeqDef(int64(h.VL))
		}
		return p.skip(int64(h.VL))

	default:
		source := newValueSource(p.r, h.Tag, p.path.Clone(), h.VL)
		if err := p.dispatchAttr(h, source); err != nil {
			return err
		}
		return source.finish()
	}
}

func (p *Parser) dispatchAttr(h header, source *ValueSource) error {
	if p.onAttr == nil {
		return nil
	}
	return p.onAttr(p.path.Clone(), elementFromHeader(h), source)
}

func (p *Parser) skip(n int64) error {
	if err := p.r.Skip(n); err != nil {
		return newParseError(KindIO, tag.Tag{}, p.path.Clone(), err)
	}
	return nil
}

// readSeqUndef implements read_sq_undef: loop reading one implicit-framed
// delimiter/item header at a time until the sequence delimiter closes the
// sequence.
func (p *Parser) readSeqUndef() error {
	for {
		h, err := readDelimiterHeader(p.r)
		if err != nil {
			return wrapUnexpectedEOF(err, p.path)
		}

		switch {
		case h.Tag == tag.SequenceDelimitation:
			if h.VL != 0 {
				return newParseError(KindBadHeader, h.Tag, p.path.Clone(),
					fmt.Errorf("non-zero length on sequence delimiter"))
			}
			return nil

		case h.Tag == tag.Item && h.IsUndefined():
			if err := p.readItemUndef(); err != nil {
				return err
			}

		case h.Tag == tag.Item:
			if p.paths.Match(p.path) {
				if err := p.readItemDef(int64(h.VL)); err != nil {
					return err
				}
			} else if err := p.skip(int64(h.VL)); err != nil {
				return err
			}

		default:
			return newParseError(KindStructuralViolation, h.Tag, p.path.Clone(),
				fmt.Errorf("unexpected tag %s in undefined-length sequence", h.Tag))
		}
	}
}

// readSeqDef implements read_sq_def(seqlen): identical item handling to
// readSeqUndef, but the loop runs until exactly seqLen bytes have been
// consumed rather than until a delimiter is seen — no terminating
// sequence delimiter is expected (spec.md section 4.4).
func (p *Parser) readSeqDef(seqLen int64) error {
	var consumed int64
	for consumed < seqLen {
		start := p.r.Position()
		h, err := readDelimiterHeader(p.r)
		if err != nil {
			return wrapUnexpectedEOF(err, p.path)
		}
		if h.Tag != tag.Item {
			return newParseError(KindStructuralViolation, h.Tag, p.path.Clone(),
				fmt.Errorf("expected item tag in defined-length sequence, got %s", h.Tag))
		}

		if h.IsUndefined() {
			if err := p.readItemUndef(); err != nil {
				return err
			}
		} else if p.paths.Match(p.path) {
			if err := p.readItemDef(int64(h.VL)); err != nil {
				return err
			}
		} else if err := p.skip(int64(h.VL)); err != nil {
			return err
		}

		consumed += p.r.Position() - start
	}
	if consumed != seqLen {
		return newParseError(KindStructuralViolation, tag.Tag{}, p.path.Clone(),
			fmt.Errorf("defined-length sequence consumed %d bytes, declared %d", consumed, seqLen))
	}
	return nil
}

// readItemUndef implements read_item_undef: read elements via the
// Explicit-with-item-delimiter reader until the item delimiter closes the
// item.
func (p *Parser) readItemUndef() error {
	var order orderCheck

	for {
		h, err := readExplicitWithItemDelimiter(p.r)
		if err != nil {
			return wrapUnexpectedEOF(err, p.path)
		}
		if h.Tag == tag.ItemDelimitation {
			return nil
		}

		if err := order.accept(h.Tag, p.path.Clone()); err != nil {
			return err
		}

		if err := p.path.Push(h.Tag); err != nil {
			return newParseError(KindStructuralViolation, h.Tag, p.path.Clone(), err)
		}
		err = p.processElement(h)
		p.path.Pop()
		if err != nil {
			return err
		}
	}
}

// readItemDef implements read_item_def(itemlen): consume exactly itemLen
// bytes of explicit-VR elements.
func (p *Parser) readItemDef(itemLen int64) error {
	var consumed int64
	var order orderCheck

	for consumed < itemLen {
		start := p.r.Position()
		h, err := readExplicit(p.r)
		if err != nil {
			return wrapUnexpectedEOF(err, p.path)
		}

		if err := order.accept(h.Tag, p.path.Clone()); err != nil {
			return err
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
	if consumed != itemLen {
		return newParseError(KindStructuralViolation, tag.Tag{}, p.path.Clone(),
			fmt.Errorf("defined-length item consumed %d bytes, declared %d", consumed, itemLen))
	}
	return nil
}

// readEncapsulatedPixelData implements read_encapsulated_pixel_data: the
// first item is the Basic Offset Table and is discarded; every later item
// is reported as a tile fragment with its absolute value offset and
// length (spec.md section 4.4 and 4.7).
func (p *Parser) readEncapsulatedPixelData() error {
	first := true
	for {
		h, err := readDelimiterHeader(p.r)
		if err != nil {
			return wrapUnexpectedEOF(err, p.path)
		}

		if h.Tag == tag.SequenceDelimitation {
			if h.VL != 0 {
				return newParseError(KindBadHeader, h.Tag, p.path.Clone(),
					fmt.Errorf("non-zero length on sequence delimiter"))
			}
			return nil
		}
		if h.Tag != tag.Item {
			return newParseError(KindStructuralViolation, h.Tag, p.path.Clone(),
				fmt.Errorf("expected item tag in encapsulated pixel data, got %s", h.Tag))
		}

		valueOffset := p.r.Position()
		if first {
			first = false
			if err := p.skip(int64(h.VL)); err != nil {
				return err
			}
			continue
		}

		if p.onFrag != nil {
			if err := p.onFrag(p.path.Clone(), valueOffset, h.VL); err != nil {
				return err
			}
		}
		if err := p.skip(int64(h.VL)); err != nil {
			return err
		}
	}
}

// wrapUnexpectedEOF converts a clean io.EOF arriving inside a declared
// length or an undefined-length construct that never reached its
// delimiter into an IO parse error — only the top-level loop is allowed
// to treat end of file as success (spec.md section 7, "EOF arrived
// inside a declared length").
func wrapUnexpectedEOF(err error, path tag.Path) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		return err
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return newParseError(KindIO, tag.Tag{}, path.Clone(), err)
	}
	return err
}
