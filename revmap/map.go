package revmap

import (
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/npillmayer/glyphrev/ot"
)

// Seed is a (code-point, glyph) pair from a font's character map.
type Seed struct {
	Codepoint rune
	Glyph     ot.GlyphIndex
}

// Origin tells where a glyph comes from: the code-point it has been derived
// from, and how.
type Origin struct {
	Codepoint rune
	Variant   Variant
}

func (o Origin) String() string {
	return fmt.Sprintf("(%U, %s)", o.Codepoint, o.Variant)
}

// Map is a reverse glyph map, i.e. an index from glyphs to their origin.
//
// A map is populated by the loaders of this package and then frozen.
// Populating a map is not safe for concurrent use. A frozen map is read-only
// and may be queried from any number of goroutines.
type Map struct {
	origins map[ot.GlyphIndex]Origin
	frozen  bool
}

// NewMap creates an empty reverse glyph map.
func NewMap() *Map {
	return &Map{origins: make(map[ot.GlyphIndex]Origin)}
}

// Insert records the origin of glyph g. If g already had an origin, it is
// replaced and the previous one is returned.
//
// Inserting into a frozen map is a programming error and will panic.
func (m *Map) Insert(g ot.GlyphIndex, origin Origin) ot.Option[Origin] {
	if m.frozen {
		panic(fmt.Sprintf("revmap: insert of glyph %d into frozen map", g))
	}
	prev, ok := m.origins[g]
	m.origins[g] = origin
	if ok {
		return ot.Some(prev)
	}
	return ot.None[Origin]()
}

// Query returns the origin of glyph g, if known.
func (m *Map) Query(g ot.GlyphIndex) ot.Option[Origin] {
	if m == nil {
		return ot.None[Origin]()
	}
	if origin, ok := m.origins[g]; ok {
		return ot.Some(origin)
	}
	return ot.None[Origin]()
}

// Len returns the number of glyphs with a known origin.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.origins)
}

// Freeze makes the map read-only. Freezing twice is harmless.
func (m *Map) Freeze() {
	m.frozen = true
}

// Frozen reports whether the map is read-only.
func (m *Map) Frozen() bool {
	return m.frozen
}

// Range iterates over all entries in ascending glyph order.
func (m *Map) Range() iter.Seq2[ot.GlyphIndex, Origin] {
	return func(yield func(ot.GlyphIndex, Origin) bool) {
		if m == nil {
			return
		}
		for _, g := range slices.Sorted(maps.Keys(m.origins)) {
			if !yield(g, m.origins[g]) {
				return
			}
		}
	}
}
