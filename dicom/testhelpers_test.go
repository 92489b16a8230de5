package dicom

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildFile assembles a full synthetic DICOM file: preamble, magic, a
// minimal file meta group, and the caller-supplied main dataset bytes.
// Writing it to a real temp file lets ReadIndex/ReadLevel/Open be
// exercised end to end, the way parser_test.go exercises the teacher's
// own Parser against on-disk files.
func buildFile(t *testing.T, dataset []byte) string {
	t.Helper()

	buf := new(bytes.Buffer)
	buf.Write(bytes.Repeat([]byte{0x00}, preambleSize))
	buf.WriteString("DICM")

	// File meta group: just the mandatory group-length element, with a
	// group length of 0 -- no other meta attributes needed by these
	// tests.
	putShort(buf, 0x0002, 0x0000, "UL", []byte{0x00, 0x00, 0x00, 0x00})

	buf.Write(dataset)

	path := filepath.Join(t.TempDir(), "synthetic.dcm")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

// writeTempFile writes raw bytes to a temp file and returns its path, for
// tests that assemble the preamble/magic/meta bytes themselves instead of
// going through buildFile.
func writeTempFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "synthetic.dcm")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func uint16LE(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func uint32LE(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}
