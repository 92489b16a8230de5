package dicom

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wsicore/dicomwsi/dicom/tag"
)

func TestOpen_BadMagicReturnsBadMagic(t *testing.T) {
	buf := new(bytes.Buffer)
	buf.Write(bytes.Repeat([]byte{0x00}, preambleSize))
	buf.WriteString("DICX")
	path := writeTempFile(t, buf.Bytes())

	_, err := Open(path)
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindBadMagic, pe.Kind)
}

// [EXPANDED] meta-group length closure: after Open returns successfully,
// the stream sits exactly at the first main-dataset element.
func TestOpen_LeavesStreamAtFirstDatasetElement(t *testing.T) {
	dataset := new(bytes.Buffer)
	putShort(dataset, 0x0008, 0x0020, "DA", []byte("20240101"))
	path := buildFile(t, dataset.Bytes())

	p, err := Open(path)
	require.NoError(t, err)
	defer p.Close()

	var tags []tag.Tag
	p.SetHandlers(func(path tag.Path, el Element, source *ValueSource) error {
		tags = append(tags, el.Tag)
		if source != nil {
			_, err := source.ReadAll()
			return err
		}
		return nil
	}, nil)

	require.NoError(t, p.Parse())
	require.Len(t, tags, 1)
	assert.True(t, tags[0].Equals(tag.New(0x0008, 0x0020)))
}

func TestSkipFileMetaGroup_SkipsNonZeroGroupLength(t *testing.T) {
	buf := new(bytes.Buffer)
	// group length covers the one 16-byte UI element that follows
	// (4-byte tag + 2-byte VR + 2-byte VL16 + 8-byte value).
	putShort(buf, 0x0002, 0x0000, "UL", []byte{0x10, 0x00, 0x00, 0x00})
	putShort(buf, 0x0002, 0x0010, "UI", []byte("1.2.3.4\x00"))
	putShort(buf, 0x0008, 0x0020, "DA", []byte("20240101"))

	r := newByteReader(buf)
	require.NoError(t, skipFileMetaGroup(r))

	h, err := readExplicit(r)
	require.NoError(t, err)
	assert.True(t, h.Tag.Equals(tag.New(0x0008, 0x0020)))
}

func TestSkipFileMetaGroup_WrongFirstTagIsBadHeader(t *testing.T) {
	buf := new(bytes.Buffer)
	putShort(buf, 0x0002, 0x0010, "UI", []byte("1.2.3.4"))

	err := skipFileMetaGroup(newByteReader(buf))
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindBadHeader, pe.Kind)
}

func TestReadMetaAttribute_ReadsRegisteredMetaElement(t *testing.T) {
	buf := new(bytes.Buffer)
	buf.Write(bytes.Repeat([]byte{0x00}, preambleSize))
	buf.WriteString("DICM")
	putShort(buf, 0x0002, 0x0000, "UL", []byte{0x10, 0x00, 0x00, 0x00})
	putShort(buf, 0x0002, 0x0003, "UI", []byte("1.2.3.4\x00"))
	path := writeTempFile(t, buf.Bytes())

	sopInstanceUID := tag.NewPath(tag.New(0x0002, 0x0003))
	paths := tag.NewPathSet()
	require.NoError(t, paths.Add(sopInstanceUID))

	var got string
	err := ReadMetaAttribute(path, paths, func(p tag.Path, el Element, source *ValueSource) error {
		if sopInstanceUID.Equals(p) {
			v, err := source.ReadAll()
			if err != nil {
				return err
			}
			got = string(bytes.TrimRight(v, "\x00"))
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "1.2.3.4", got)
}
