package dicom

import (
	"errors"
	"fmt"

	"github.com/wsicore/dicomwsi/dicom/tag"
)

// ErrorKind coarsely classifies why a parse failed (spec.md section 7).
type ErrorKind int

const (
	// KindIO covers a failed read/seek/open, or EOF arriving inside a
	// declared length.
	KindIO ErrorKind = iota + 1
	// KindBadMagic covers a failed DICM preamble check.
	KindBadMagic
	// KindBadHeader covers invalid VR bytes, a non-zero reserved word on
	// a long-form header, or a delimiter carrying non-zero length.
	KindBadHeader
	// KindOrderViolation covers a tag that is not strictly increasing
	// within its scope.
	KindOrderViolation
	// KindUnsupportedSyntax covers a UN undefined-length attribute or any
	// other construct that would require Implicit VR support.
	KindUnsupportedSyntax
	// KindStructuralViolation covers a nested length exceeding its
	// enclosing length, or a missing sequence/item delimiter.
	KindStructuralViolation
)

func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "IO"
	case KindBadMagic:
		return "BadMagic"
	case KindBadHeader:
		return "BadHeader"
	case KindOrderViolation:
		return "OrderViolation"
	case KindUnsupportedSyntax:
		return "UnsupportedSyntax"
	case KindStructuralViolation:
		return "StructuralViolation"
	default:
		return "Unknown"
	}
}

// ParseError is the structured error every failing parser operation
// returns. All errors are fatal to the current parse; there is no
// per-element recovery (spec.md section 7, Policy).
type ParseError struct {
	Kind  ErrorKind
	Tag   tag.Tag  // the tag active when the error was raised, if any
	Path  tag.Path // a snapshot of the walker's path at the time of error
	cause error
}

func (e *ParseError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("dicom: %s at %s", e.Kind, e.Path.String())
	}
	if e.Path.Length() == 0 {
		return fmt.Sprintf("dicom: %s: %v", e.Kind, e.cause)
	}
	return fmt.Sprintf("dicom: %s at %s: %v", e.Kind, e.Path.String(), e.cause)
}

func (e *ParseError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a *ParseError with the same Kind, so
// callers can match on the coarse classification via errors.Is without
// needing the exact tag/path/cause.
func (e *ParseError) Is(target error) bool {
	var pe *ParseError
	if errors.As(target, &pe) {
		return pe.Kind == e.Kind && pe.cause == nil
	}
	return false
}

func newParseError(kind ErrorKind, t tag.Tag, path tag.Path, cause error) *ParseError {
	return &ParseError{Kind: kind, Tag: t, Path: path, cause: cause}
}

// Sentinel kind markers, usable with errors.Is(err, dicom.ErrBadMagic)
// and friends without constructing a full ParseError.
var (
	ErrBadMagic            = &ParseError{Kind: KindBadMagic}
	ErrBadHeader           = &ParseError{Kind: KindBadHeader}
	ErrOrderViolation      = &ParseError{Kind: KindOrderViolation}
	ErrUnsupportedSyntax   = &ParseError{Kind: KindUnsupportedSyntax}
	ErrStructuralViolation = &ParseError{Kind: KindStructuralViolation}
	ErrIO                  = &ParseError{Kind: KindIO}
)
