package dicom

import (
	"io"

	"github.com/wsicore/dicomwsi/dicom/tag"
)

// ValueSource is a handle scoped to exactly the declared length of a
// single element's value. The walker creates one on entering a
// defined-length value and discards it on leaving, regardless of how much
// of it a handler actually consumed (spec.md section 4.1, "Bounded Value
// Source").
type ValueSource struct {
	r      *byteReader
	t      tag.Tag
	path   tag.Path
	maxLen int64
	curPos int64
}

// newValueSource scopes r to the next length bytes of value data for t.
func newValueSource(r *byteReader, t tag.Tag, path tag.Path, length uint32) *ValueSource {
	return &ValueSource{r: r, t: t, path: path, maxLen: int64(length)}
}

// Size returns the declared length of the value, in bytes.
func (s *ValueSource) Size() int64 {
	return s.maxLen
}

// Remaining returns how many bytes of the value have not yet been
// consumed.
func (s *ValueSource) Remaining() int64 {
	return s.maxLen - s.curPos
}

// Read implements io.Reader over the bounded value. It never reads past
// maxLen, and cur_pos is clamped to maxLen even when the underlying read
// fails partway, so a short read never leaves the source able to wander
// past its element boundary (spec.md section 4.1: "clamps cur_pos to
// max_len regardless of underlying read outcome").
func (s *ValueSource) Read(buf []byte) (int, error) {
	remaining := s.Remaining()
	if remaining <= 0 {
		return 0, io.EOF
	}
	want := int64(len(buf))
	if want > remaining {
		want = remaining
	}
	n, err := s.r.readRaw(buf[:want])
	s.curPos += int64(n)
	if s.curPos > s.maxLen {
		s.curPos = s.maxLen
	}
	if err != nil {
		return n, newParseError(KindIO, s.t, s.path, err)
	}
	return n, nil
}

// ReadAll reads the entire remaining value in one call. Handlers that
// want a whole small value — the DICOMDIR driver's Referenced File ID,
// for instance — use this instead of looping on Read.
func (s *ValueSource) ReadAll() ([]byte, error) {
	remaining := s.Remaining()
	if remaining == 0 {
		return []byte{}, nil
	}
	buf := make([]byte, remaining)
	if _, err := s.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Skip advances the source by n bytes without materializing them,
// clamping to what remains.
func (s *ValueSource) Skip(n int64) error {
	remaining := s.Remaining()
	if n > remaining {
		n = remaining
	}
	if n <= 0 {
		return nil
	}
	if err := s.r.Skip(n); err != nil {
		s.curPos = s.maxLen
		return newParseError(KindIO, s.t, s.path, err)
	}
	s.curPos += n
	return nil
}

// finish skips whatever the handler left unconsumed, so the underlying
// stream always sits exactly on the next element header after a handler
// returns — the walker calls this unconditionally, whether or not a
// handler was registered for the element at all (spec.md section 4.1:
// "the walker always finishes by skipping size()-cur_pos").
func (s *ValueSource) finish() error {
	return s.Skip(s.Remaining())
}
