package revmap

import (
	"iter"

	"github.com/npillmayer/glyphrev/ot"
)

// Coverage maps a glyph to its coverage index, if the glyph is covered.
// ot.Coverage implements it.
type Coverage interface {
	Match(ot.GlyphIndex) (int, bool)
}

// Subtable is one of the GSUB subtable kinds we follow: SingleDelta,
// SingleTable or AlternateSubst. All other kinds are represented as
// Unsupported. The set is closed.
type Subtable interface {
	isSubtable()
}

// SingleDelta is a single substitution which adds a constant to the glyph ID
// (GSUB lookup type 1, format 1).
type SingleDelta struct {
	Coverage Coverage
	Delta    int16
}

// SingleTable is a single substitution with a substitute for each covered
// glyph, indexed by coverage index (GSUB lookup type 1, format 2).
type SingleTable struct {
	Coverage    Coverage
	Substitutes []ot.GlyphIndex
}

// AlternateSubst offers a set of alternates for each covered glyph, indexed
// by coverage index (GSUB lookup type 3).
type AlternateSubst struct {
	Coverage   Coverage
	Alternates [][]ot.GlyphIndex
}

// Unsupported stands for every subtable we do not follow, including
// subtables which could not be read.
type Unsupported struct {
	LookupType uint16
}

func (SingleDelta) isSubtable()    {}
func (SingleTable) isSubtable()    {}
func (AlternateSubst) isSubtable() {}
func (Unsupported) isSubtable()    {}

// Lookup is a GSUB lookup, i.e. an ordered list of subtables.
type Lookup struct {
	Subtables []Subtable
}

// Substitutes returns the glyphs subtable st produces for glyph g, in the
// subtable's order. The sequence is empty if g is not covered or if the
// coverage index has no entry in the subtable.
//
// A delta substitution wraps around modulo 65536.
func Substitutes(st Subtable, g ot.GlyphIndex) iter.Seq[ot.GlyphIndex] {
	return func(yield func(ot.GlyphIndex) bool) {
		visit(st, g, yield)
	}
}

// LookupSubstitutes returns the glyphs every subtable of lookup produces for
// glyph g, subtable after subtable.
func LookupSubstitutes(lookup Lookup, g ot.GlyphIndex) iter.Seq[ot.GlyphIndex] {
	return func(yield func(ot.GlyphIndex) bool) {
		for _, st := range lookup.Subtables {
			if cont, _ := visit(st, g, yield); !cont {
				return
			}
		}
	}
}

// visit yields the substitutes of g. It returns false as its first result if
// yield asked to stop, and true as its second result if g is covered but its
// coverage index dangles.
func visit(st Subtable, g ot.GlyphIndex, yield func(ot.GlyphIndex) bool) (cont bool, dangling bool) {
	switch st := st.(type) {
	case SingleDelta:
		if _, ok := match(st.Coverage, g); ok {
			return yield(ot.GlyphIndex(uint16(int32(g) + int32(st.Delta)))), false
		}
	case SingleTable:
		if inx, ok := match(st.Coverage, g); ok {
			if inx >= len(st.Substitutes) {
				return true, true
			}
			return yield(st.Substitutes[inx]), false
		}
	case AlternateSubst:
		if inx, ok := match(st.Coverage, g); ok {
			if inx >= len(st.Alternates) {
				return true, true
			}
			for _, alt := range st.Alternates[inx] {
				if !yield(alt) {
					return false, false
				}
			}
		}
	}
	return true, false
}

func match(cov Coverage, g ot.GlyphIndex) (int, bool) {
	if cov == nil {
		return 0, false
	}
	inx, ok := cov.Match(g)
	return inx, ok && inx >= 0
}
