package ot

import "fmt"

// MathTable gives access to the glyph variants of an OpenType MATH table
// (see https://docs.microsoft.com/en-us/typography/opentype/spec/math).
//
// Math constants and glyph info are not interpreted. Glyph assemblies
// (extensible glyphs built from parts) are not interpreted either; only the
// pre-designed size variants of a glyph are made available.
type MathTable struct {
	tableBase
	Major, Minor uint16
	variants     *MathVariants
	err          error
}

func newMathTable(tag Tag, b binarySegm, offset, size uint32) *MathTable {
	t := &MathTable{tableBase: makeTableBase(tag, b, offset, size)}
	t.self = t
	return t
}

// Variants returns the MathVariants sub-table, or nil if the font does not
// provide one.
func (t *MathTable) Variants() *MathVariants {
	if t == nil {
		return nil
	}
	return t.variants
}

// Error returns an error if the MathVariants sub-table could not be navigated.
func (t *MathTable) Error() error {
	if t == nil {
		return nil
	}
	return t.err
}

// MathVariants lists size variants of glyphs, separately for growing in
// vertical and in horizontal direction.
//
//	UFWORD    minConnectorOverlap
//	Offset16  vertGlyphCoverageOffset
//	Offset16  horizGlyphCoverageOffset
//	uint16    vertGlyphCount
//	uint16    horizGlyphCount
//	Offset16  vertGlyphConstructionOffsets[vertGlyphCount]
//	Offset16  horizGlyphConstructionOffsets[horizGlyphCount]
type MathVariants struct {
	MinConnectorOverlap uint16
	vertCoverage        Coverage
	horizCoverage       Coverage
	vertConstructions   array
	horizConstructions  array
	raw                 binarySegm
}

// VerticalVariants returns the vertical size variants of glyph g in the
// font's order, or nil if g has none.
func (mv *MathVariants) VerticalVariants(g GlyphIndex) []GlyphIndex {
	if mv == nil {
		return nil
	}
	return mv.variantsOf(g, mv.vertCoverage, mv.vertConstructions)
}

// HorizontalVariants returns the horizontal size variants of glyph g in the
// font's order, or nil if g has none.
func (mv *MathVariants) HorizontalVariants(g GlyphIndex) []GlyphIndex {
	if mv == nil {
		return nil
	}
	return mv.variantsOf(g, mv.horizCoverage, mv.horizConstructions)
}

// variantsOf reads the MathGlyphConstruction for g:
//
//	Offset16                glyphAssemblyOffset
//	uint16                  variantCount
//	MathGlyphVariantRecord  mathGlyphVariantRecords[variantCount]  { uint16 variantGlyph; UFWORD advanceMeasurement }
//
// Constructions which cannot be navigated yield no variants.
func (mv *MathVariants) variantsOf(g GlyphIndex, cov Coverage, constructions array) []GlyphIndex {
	inx, ok := cov.Match(g)
	if !ok || inx >= constructions.Len() {
		return nil
	}
	off := int(constructions.Get(inx).U16(0))
	if off == 0 {
		return nil
	}
	b, err := mv.raw.from(off)
	if err != nil {
		tracer().Debugf("MATH glyph construction for glyph %d out of bounds", g)
		return nil
	}
	records, err := parseArray(b, 2, 4, "MathGlyphConstruction")
	if err != nil {
		tracer().Debugf("MATH glyph construction for glyph %d: %v", g, err)
		return nil
	}
	if records.Len() == 0 {
		return nil
	}
	variants := make([]GlyphIndex, records.Len())
	for i := range variants {
		variants[i] = GlyphIndex(records.Get(i).U16(0))
	}
	return variants
}

// --- Parsing ---------------------------------------------------------------

// parseMath reads the MATH header:
//
//	uint16    majorVersion
//	uint16    minorVersion
//	Offset16  mathConstantsOffset
//	Offset16  mathGlyphInfoOffset
//	Offset16  mathVariantsOffset
func parseMath(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	t := newMathTable(tag, b, offset, size)
	if len(b) < 10 {
		t.err = fmt.Errorf("MATH header too small: %d bytes", len(b))
		ec.addError(tag, "Header", t.err.Error(), SeverityMajor, offset)
		return t, nil
	}
	t.Major, t.Minor = b.U16(0), b.U16(2)
	lnk, _ := parseLink16(b, 8, b, "MathVariants")
	if lnk.IsNull() {
		return t, nil
	}
	vb, err := lnk.jump()
	if err == nil {
		t.variants, err = parseMathVariants(vb)
	}
	if err != nil {
		t.err = err
		t.variants = nil
		ec.addError(tag, "MathVariants", err.Error(), SeverityMajor, offset+lnk.offset)
	}
	return t, nil
}

func parseMathVariants(b binarySegm) (*MathVariants, error) {
	if len(b) < 10 {
		return nil, errBufferBounds
	}
	mv := &MathVariants{MinConnectorOverlap: b.U16(0), raw: b}
	vertCount, horizCount := int(b.U16(6)), int(b.U16(8))
	offsets, err := b.view(10, 2*(vertCount+horizCount))
	if err != nil && vertCount+horizCount > 0 {
		return nil, fmt.Errorf("MathVariants construction offsets exceed table: %d+%d", vertCount, horizCount)
	}
	if vertCount > 0 {
		mv.vertConstructions = viewArray16(offsets[:2*vertCount])
		if mv.vertCoverage, err = parseCoverageAt(b, 2); err != nil {
			return nil, fmt.Errorf("MathVariants vertical coverage: %w", err)
		}
	}
	if horizCount > 0 {
		mv.horizConstructions = viewArray16(offsets[2*vertCount:])
		if mv.horizCoverage, err = parseCoverageAt(b, 4); err != nil {
			return nil, fmt.Errorf("MathVariants horizontal coverage: %w", err)
		}
	}
	return mv, nil
}
