package revmap

import (
	"iter"

	"github.com/npillmayer/glyphrev/ot"
)

// MathVariants gives the size variants of a glyph from a font's MATH table.
// A glyph without variants in a direction returns nil for that direction.
// *ot.MathVariants implements it.
type MathVariants interface {
	HorizontalVariants(ot.GlyphIndex) []ot.GlyphIndex
	VerticalVariants(ot.GlyphIndex) []ot.GlyphIndex
}

// VariantGlyphs returns the horizontal variants of g followed by its vertical
// variants, each in the font's order. Duplicates are kept. Whether a variant
// grows horizontally or vertically is not reported.
func VariantGlyphs(mv MathVariants, g ot.GlyphIndex) iter.Seq[ot.GlyphIndex] {
	return func(yield func(ot.GlyphIndex) bool) {
		if mv == nil {
			return
		}
		for _, v := range mv.HorizontalVariants(g) {
			if !yield(v) {
				return
			}
		}
		for _, v := range mv.VerticalVariants(g) {
			if !yield(v) {
				return
			}
		}
	}
}
