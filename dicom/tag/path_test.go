package tag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wsicore/dicomwsi/dicom/tag"
)

func TestPath_PushPopLast(t *testing.T) {
	var p tag.Path
	require.NoError(t, p.Push(tag.New(0x0004, 0x1220)))
	require.NoError(t, p.Push(tag.New(0x0004, 0x1500)))
	assert.Equal(t, 2, p.Length())

	last, ok := p.Last()
	require.True(t, ok)
	assert.Equal(t, tag.New(0x0004, 0x1500), last)

	popped, ok := p.Pop()
	require.True(t, ok)
	assert.Equal(t, tag.New(0x0004, 0x1500), popped)
	assert.Equal(t, 1, p.Length())

	popped, ok = p.Pop()
	require.True(t, ok)
	assert.Equal(t, tag.New(0x0004, 0x1220), popped)

	_, ok = p.Pop()
	assert.False(t, ok)
}

func TestPath_PushOverflow(t *testing.T) {
	var p tag.Path
	for i := 0; i < tag.MaxPathDepth; i++ {
		require.NoError(t, p.Push(tag.New(0x0008, uint16(i))))
	}
	err := p.Push(tag.New(0x0008, 0xFFFF))
	assert.Error(t, err)
}

func TestPath_Equals(t *testing.T) {
	a := tag.NewPath(tag.New(0x0048, 0x0105), tag.New(0x0022, 0x0019))
	b := tag.NewPath(tag.New(0x0048, 0x0105), tag.New(0x0022, 0x0019))
	c := tag.NewPath(tag.New(0x0048, 0x0105))

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
	assert.False(t, c.Equals(a))
}

func TestPath_HasPrefix(t *testing.T) {
	full := tag.NewPath(tag.New(0x0048, 0x0105), tag.New(0x0022, 0x0019), tag.New(0x0008, 0x0100))
	prefix1 := tag.NewPath(tag.New(0x0048, 0x0105))
	prefix2 := tag.NewPath(tag.New(0x0048, 0x0105), tag.New(0x0022, 0x0019))
	notPrefix := tag.NewPath(tag.New(0x0048, 0x0106))

	assert.True(t, full.HasPrefix(prefix1))
	assert.True(t, full.HasPrefix(prefix2))
	assert.True(t, full.HasPrefix(full))
	assert.False(t, full.HasPrefix(notPrefix))
	assert.False(t, prefix1.HasPrefix(full))
}

func TestPathSet_FindExactMatch(t *testing.T) {
	s := tag.NewPathSet()
	require.NoError(t, s.Add(tag.NewPath(tag.New(0x0004, 0x1220), tag.New(0x0004, 0x1500))))

	assert.True(t, s.Find(tag.NewPath(tag.New(0x0004, 0x1220), tag.New(0x0004, 0x1500))))
	assert.False(t, s.Find(tag.NewPath(tag.New(0x0004, 0x1220))))
	assert.False(t, s.Find(tag.NewPath(tag.New(0x0004, 0x1220), tag.New(0x0004, 0x1500), tag.New(0x0008, 0x0000))))
}

func TestPathSet_MatchIsTruePrefixNotUnconditional(t *testing.T) {
	s := tag.NewPathSet()
	require.NoError(t, s.Add(tag.NewPath(tag.New(0x0048, 0x0105), tag.New(0x0022, 0x0019))))

	// A path leading to (or equal to) the registered path matches.
	assert.True(t, s.Match(tag.NewPath(tag.New(0x0048, 0x0105))))
	assert.True(t, s.Match(tag.NewPath(tag.New(0x0048, 0x0105), tag.New(0x0022, 0x0019))))

	// An unrelated top-level sequence must NOT match — this is the
	// regression test for the "match always returns true" bug noted in
	// spec.md's Open Questions.
	assert.False(t, s.Match(tag.NewPath(tag.New(0x0008, 0x1120))))
}

func TestPathSet_AddOverflow(t *testing.T) {
	s := tag.NewPathSet()
	for i := 0; i < tag.MaxSetPaths; i++ {
		require.NoError(t, s.Add(tag.NewPath(tag.New(0x0008, uint16(i)))))
	}
	err := s.Add(tag.NewPath(tag.New(0x0008, 0xFFFF)))
	assert.Error(t, err)
}
