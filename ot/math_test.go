package ot

import (
	"slices"
	"testing"

	"github.com/npillmayer/glyphrev/internal/fontbuild"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestMathVariants(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	otf := minimalFont(t, map[string][]byte{"MATH": fontbuild.MATH(
		[]fontbuild.Construction{ // vertical
			{Glyph: 2, Variants: []uint16{2, 7, 8}},
			{Glyph: 4, Variants: nil},
		},
		[]fontbuild.Construction{ // horizontal
			{Glyph: 2, Variants: []uint16{9}},
		},
	)})
	if otf.Math == nil || otf.Math.Error() != nil {
		t.Fatalf("expected MATH table without error")
	}
	mv := otf.Math.Variants()
	if mv == nil {
		t.Fatalf("expected MathVariants")
	}
	if mv.MinConnectorOverlap != 100 {
		t.Errorf("expected minConnectorOverlap 100, have %d", mv.MinConnectorOverlap)
	}
	if v := mv.VerticalVariants(2); !slices.Equal(v, []GlyphIndex{2, 7, 8}) {
		t.Errorf("expected vertical variants [2 7 8], have %v", v)
	}
	if h := mv.HorizontalVariants(2); !slices.Equal(h, []GlyphIndex{9}) {
		t.Errorf("expected horizontal variants [9], have %v", h)
	}
	if v := mv.VerticalVariants(4); v != nil {
		t.Errorf("expected no variants for empty construction, have %v", v)
	}
	if h := mv.HorizontalVariants(4); h != nil {
		t.Errorf("expected uncovered glyph to have no variants, have %v", h)
	}
}

func TestMathWithoutVariants(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	otf := minimalFont(t, map[string][]byte{"MATH": {0, 1, 0, 0, 0, 0, 0, 0, 0, 0}})
	if otf.Math == nil {
		t.Fatalf("expected MATH table")
	}
	if otf.Math.Variants() != nil {
		t.Errorf("expected NULL MathVariants offset to yield no variants")
	}
	var mv *MathVariants
	if mv.VerticalVariants(1) != nil || mv.HorizontalVariants(1) != nil {
		t.Errorf("expected nil MathVariants to yield nothing")
	}
}

func TestMathBrokenVariantsAreCollected(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	math := fontbuild.MATH([]fontbuild.Construction{{Glyph: 1, Variants: []uint16{3}}}, nil)
	putU16(math, 10+6, 40) // vertGlyphCount now exceeds table
	otf := minimalFont(t, map[string][]byte{"MATH": math})
	if otf.Math.Variants() != nil || otf.Math.Error() == nil {
		t.Errorf("expected broken MathVariants to be dropped with error")
	}
	if len(otf.Errors()) != 1 || otf.Errors()[0].Section != "MathVariants" {
		t.Errorf("expected a MathVariants error, have %v", otf.Errors())
	}
}
