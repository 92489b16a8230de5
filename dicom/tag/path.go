package tag

import (
	"fmt"
	"strings"
)

// MaxPathDepth bounds how deeply a Path may nest. DICOM nesting depth in
// practice is small; a fixed small-vector keeps Push/Pop allocation-free
// (spec.md Design Notes, "Pointer-rich paths -> small-vector / index").
const MaxPathDepth = 16

// MaxSetPaths bounds how many paths a PathSet may register.
const MaxSetPaths = 16

// MaxSetTags bounds the total number of tags across every registered path.
const MaxSetTags = 512

// Path is an ordered, root-to-leaf sequence of tags naming the walker's
// current position inside the element tree. The zero Path is empty and
// ready to use.
type Path struct {
	tags [MaxPathDepth]Tag
	n    int
}

// NewPath builds a Path from a literal sequence of tags, for use when
// registering paths with a PathSet. Panics if more than MaxPathDepth tags
// are given, matching the parser's own hard-error-on-overflow rule.
func NewPath(tags ...Tag) Path {
	var p Path
	for _, t := range tags {
		if err := p.Push(t); err != nil {
			panic(err)
		}
	}
	return p
}

// Push appends a tag to the path. Returns an error if the path is already
// at MaxPathDepth.
func (p *Path) Push(t Tag) error {
	if p.n >= MaxPathDepth {
		return fmt.Errorf("tag path exceeds maximum depth %d", MaxPathDepth)
	}
	p.tags[p.n] = t
	p.n++
	return nil
}

// Pop removes and returns the last tag on the path. Returns false if the
// path is empty.
func (p *Path) Pop() (Tag, bool) {
	if p.n == 0 {
		return Tag{}, false
	}
	p.n--
	t := p.tags[p.n]
	p.tags[p.n] = Tag{}
	return t, true
}

// Last returns the final tag on the path. Returns false if the path is
// empty.
func (p Path) Last() (Tag, bool) {
	if p.n == 0 {
		return Tag{}, false
	}
	return p.tags[p.n-1], true
}

// Length returns the number of tags on the path.
func (p Path) Length() int {
	return p.n
}

// At returns the tag at index i (0-based, root first).
func (p Path) At(i int) Tag {
	return p.tags[i]
}

// Equals reports whether p and other contain the same tags in the same
// order — the Tag Path Set's exact-match predicate.
func (p Path) Equals(other Path) bool {
	if p.n != other.n {
		return false
	}
	for i := 0; i < p.n; i++ {
		if p.tags[i] != other.tags[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix is a (possibly equal, possibly
// shorter) true prefix of p — the Tag Path Set's descent predicate.
func (p Path) HasPrefix(prefix Path) bool {
	if prefix.n > p.n {
		return false
	}
	for i := 0; i < prefix.n; i++ {
		if p.tags[i] != prefix.tags[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of p, safe to retain past the
// lifetime of the walker that produced it.
func (p Path) Clone() Path {
	return p
}

// String renders the path as "(GGGG,EEEE)>(GGGG,EEEE)>...".
func (p Path) String() string {
	parts := make([]string, p.n)
	for i := 0; i < p.n; i++ {
		parts[i] = p.tags[i].String()
	}
	return strings.Join(parts, ">")
}

// PathSet is an unordered collection of registered Paths, consulted by
// the Dataset Walker both to decide which attributes to hand to the
// caller's handler (exact match, via Find) and which defined-length
// sequences/items are worth descending into at all (prefix match, via
// Match). See spec.md section 4.3.
type PathSet struct {
	paths   [MaxSetPaths]Path
	n       int
	tagsLen int
}

// NewPathSet returns an empty PathSet ready to use.
func NewPathSet() *PathSet {
	return &PathSet{}
}

// Add registers a copy of path with the set. Returns an error if doing so
// would exceed MaxSetPaths registered paths or MaxSetTags total tags.
func (s *PathSet) Add(path Path) error {
	if s.n >= MaxSetPaths {
		return fmt.Errorf("tag path set exceeds maximum of %d registered paths", MaxSetPaths)
	}
	if s.tagsLen+path.Length() > MaxSetTags {
		return fmt.Errorf("tag path set exceeds maximum of %d total tags", MaxSetTags)
	}
	s.paths[s.n] = path.Clone()
	s.n++
	s.tagsLen += path.Length()
	return nil
}

// Find reports whether some registered path equals path exactly.
func (s *PathSet) Find(path Path) bool {
	for i := 0; i < s.n; i++ {
		if s.paths[i].Equals(path) {
			return true
		}
	}
	return false
}

// Match reports whether path is a prefix of (or equal to) some registered
// path, i.e. whether some registered path lies at or under path.
// This is the sole descent-decision predicate the walker consults before
// entering a defined-length sequence or item: a dataset with no
// registered path under a subtree never needs to visit it (spec.md
// section 4.4, "Path selectivity").
//
// A prior revision of this logic returned true unconditionally, silently
// disabling the optimization entirely; that is treated as a bug here
// (spec.md section 9, Open Questions) and Match performs a true prefix
// comparison.
func (s *PathSet) Match(path Path) bool {
	for i := 0; i < s.n; i++ {
		if s.paths[i].HasPrefix(path) {
			return true
		}
	}
	return false
}
