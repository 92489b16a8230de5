package dicom

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wsicore/dicomwsi/dicom/tag"
	"github.com/wsicore/dicomwsi/dicom/vr"
)

func TestReadExplicit_ShortVR(t *testing.T) {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, uint16(0x0028)) // group
	binary.Write(buf, binary.LittleEndian, uint16(0x0010)) // element
	buf.WriteString("US")
	binary.Write(buf, binary.LittleEndian, uint16(2)) // VL

	h, err := readExplicit(newByteReader(buf))
	require.NoError(t, err)
	assert.True(t, h.Tag.Equals(tag.New(0x0028, 0x0010)))
	assert.Equal(t, vr.UnsignedShort, h.VR)
	assert.Equal(t, uint32(2), h.VL)
}

func TestReadExplicit_LongVR(t *testing.T) {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, uint16(0x7FE0))
	binary.Write(buf, binary.LittleEndian, uint16(0x0010))
	buf.WriteString("OB")
	binary.Write(buf, binary.LittleEndian, uint16(0)) // reserved
	binary.Write(buf, binary.LittleEndian, Undefined) // VL32

	h, err := readExplicit(newByteReader(buf))
	require.NoError(t, err)
	assert.Equal(t, vr.OtherByte, h.VR)
	assert.True(t, h.IsUndefined())
}

func TestReadExplicit_InvalidVRBytesIsBadHeader(t *testing.T) {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, uint16(0x0028))
	binary.Write(buf, binary.LittleEndian, uint16(0x0010))
	buf.WriteString("1s")
	binary.Write(buf, binary.LittleEndian, uint16(2))

	_, err := readExplicit(newByteReader(buf))
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindBadHeader, pe.Kind)
}

func TestReadExplicit_NonZeroReservedIsBadHeader(t *testing.T) {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, uint16(0x7FE0))
	binary.Write(buf, binary.LittleEndian, uint16(0x0010))
	buf.WriteString("OB")
	binary.Write(buf, binary.LittleEndian, uint16(1)) // reserved, should be 0
	binary.Write(buf, binary.LittleEndian, uint32(4))

	_, err := readExplicit(newByteReader(buf))
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindBadHeader, pe.Kind)
}

func TestReadExplicit_CleanEOFAtElementBoundary(t *testing.T) {
	_, err := readExplicit(newByteReader(bytes.NewReader(nil)))
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadExplicit_TruncatedTagIsIOError(t *testing.T) {
	_, err := readExplicit(newByteReader(bytes.NewReader([]byte{0x28, 0x00})))
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindIO, pe.Kind)
}

func TestReadExplicitWithItemDelimiter_TakesDelimiterFastPath(t *testing.T) {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, uint16(0xFFFE))
	binary.Write(buf, binary.LittleEndian, uint16(0xE00D))
	binary.Write(buf, binary.LittleEndian, uint32(0))

	h, err := readExplicitWithItemDelimiter(newByteReader(buf))
	require.NoError(t, err)
	assert.Equal(t, tag.ItemDelimitation, h.Tag)
	assert.Equal(t, vr.Invalid, h.VR)
}

func TestReadExplicitWithItemDelimiter_OrdinaryElementUnaffected(t *testing.T) {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, uint16(0x0028))
	binary.Write(buf, binary.LittleEndian, uint16(0x0011))
	buf.WriteString("US")
	binary.Write(buf, binary.LittleEndian, uint16(2))

	h, err := readExplicitWithItemDelimiter(newByteReader(buf))
	require.NoError(t, err)
	assert.Equal(t, vr.UnsignedShort, h.VR)
}

func TestReadDelimiterHeader_ItemStart(t *testing.T) {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, uint16(0xFFFE))
	binary.Write(buf, binary.LittleEndian, uint16(0xE000))
	binary.Write(buf, binary.LittleEndian, uint32(10))

	h, err := readDelimiterHeader(newByteReader(buf))
	require.NoError(t, err)
	assert.Equal(t, tag.Item, h.Tag)
	assert.Equal(t, uint32(10), h.VL)
	assert.Equal(t, vr.Invalid, h.VR)
}
