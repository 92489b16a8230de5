// Package vr defines DICOM Value Representations and the header-layout
// classification the element-header reader needs to frame a value.
//
// See DICOM Part 5, Section 6.2:
// https://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_6.2
package vr

import "fmt"

// VR identifies a DICOM Value Representation by its two-letter code.
type VR uint8

// Standard DICOM Value Representations, Part 5 Section 6.2.
const (
	ApplicationEntity VR = iota + 1
	AgeString
	AttributeTag
	CodeString
	Date
	DecimalString
	DateTime
	FloatingPointDouble
	FloatingPointSingle
	IntegerString
	LongString
	LongText
	OtherByte
	OtherDouble
	OtherFloat
	OtherLong
	OtherVeryLong
	OtherWord
	PersonName
	ShortString
	SignedLong
	SequenceOfItems
	SignedShort
	ShortText
	SignedVeryLong
	Time
	UnlimitedCharacters
	UniqueIdentifier
	UnsignedLong
	Unknown
	UniversalResourceIdentifier
	UnsignedShort
	UnlimitedText
	UnsignedVeryLong
)

// Invalid is the sentinel VR value assigned to delimiter-framed elements
// ((FFFE,E000), (FFFE,E00D), (FFFE,E0DD)), which carry no VR on the wire
// (spec.md section 4.2, "Implicit-framed delimiter").
const Invalid VR = 0

var strings = map[VR]string{
	ApplicationEntity: "AE", AgeString: "AS", AttributeTag: "AT", CodeString: "CS",
	Date: "DA", DecimalString: "DS", DateTime: "DT", FloatingPointDouble: "FD",
	FloatingPointSingle: "FL", IntegerString: "IS", LongString: "LO", LongText: "LT",
	OtherByte: "OB", OtherDouble: "OD", OtherFloat: "OF", OtherLong: "OL",
	OtherVeryLong: "OV", OtherWord: "OW", PersonName: "PN", ShortString: "SH",
	SignedLong: "SL", SequenceOfItems: "SQ", SignedShort: "SS", ShortText: "ST",
	SignedVeryLong: "SV", Time: "TM", UnlimitedCharacters: "UC", UniqueIdentifier: "UI",
	UnsignedLong: "UL", Unknown: "UN", UniversalResourceIdentifier: "UR", UnsignedShort: "US",
	UnlimitedText: "UT", UnsignedVeryLong: "UV",
}

var fromString = map[string]VR{
	"AE": ApplicationEntity, "AS": AgeString, "AT": AttributeTag, "CS": CodeString,
	"DA": Date, "DS": DecimalString, "DT": DateTime, "FD": FloatingPointDouble,
	"FL": FloatingPointSingle, "IS": IntegerString, "LO": LongString, "LT": LongText,
	"OB": OtherByte, "OD": OtherDouble, "OF": OtherFloat, "OL": OtherLong,
	"OV": OtherVeryLong, "OW": OtherWord, "PN": PersonName, "SH": ShortString,
	"SL": SignedLong, "SQ": SequenceOfItems, "SS": SignedShort, "ST": ShortText,
	"SV": SignedVeryLong, "TM": Time, "UC": UnlimitedCharacters, "UI": UniqueIdentifier,
	"UL": UnsignedLong, "UN": Unknown, "UR": UniversalResourceIdentifier, "US": UnsignedShort,
	"UT": UnlimitedText, "UV": UnsignedVeryLong,
}

// shortHeaderVRs lists the 21 short-form VRs, which use the short-length
// explicit VR header layout: tag(4) | VR(2) | VL(2) (spec.md Data Model,
// "Value Representation"). Every VR not in this table takes the
// 32-bit-length layout tag(4) | VR(2) | reserved(2) | VL(4) by default,
// per spec.md's "forward compatibility" clause.
var shortHeaderVRs = map[VR]bool{
	ApplicationEntity: true, AgeString: true, AttributeTag: true, CodeString: true,
	Date: true, DecimalString: true, DateTime: true, FloatingPointDouble: true,
	FloatingPointSingle: true, IntegerString: true, LongString: true, LongText: true,
	PersonName: true, ShortString: true, SignedLong: true, SignedShort: true,
	ShortText: true, Time: true, UniqueIdentifier: true, UnsignedLong: true,
	UnsignedShort: true,
}

// String returns the two-character code for v, or "UN" if v is not a
// recognized VR.
func (v VR) String() string {
	if s, ok := strings[v]; ok {
		return s
	}
	return "UN"
}

// Parse decodes a two-character VR code read from an element header.
// Returns an error if s is not a recognized VR code.
func Parse(s string) (VR, error) {
	if v, ok := fromString[s]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("invalid VR %q", s)
}

// IsValidBytes reports whether b holds two uppercase ASCII letters, the
// on-wire precondition the Explicit reader checks before even attempting
// to recognize the code (spec.md section 4.2: "rejects if VR bytes are
// not both uppercase ASCII letters").
func IsValidBytes(b [2]byte) bool {
	return b[0] >= 'A' && b[0] <= 'Z' && b[1] >= 'A' && b[1] <= 'Z'
}

// UsesLongHeader reports whether v is framed with the 32-bit-length
// explicit VR header layout (tag+VR+reserved+VL32) rather than the
// 16-bit-length layout (tag+VR+VL16).
func (v VR) UsesLongHeader() bool {
	return !shortHeaderVRs[v]
}

// IsSequence reports whether v is the Sequence of Items VR.
func (v VR) IsSequence() bool {
	return v == SequenceOfItems
}
