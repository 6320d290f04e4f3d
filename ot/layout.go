package ot

/*
From https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2:

OpenType Layout consists of five tables: the Glyph Substitution table (GSUB),
the Glyph Positioning table (GPOS), the Baseline table (BASE),
the Justification table (JSTF), and the Glyph Definition table (GDEF).
These tables use some of the same data formats.

We are interested in GSUB only, and there only in the feature list and the
lookup list. Scripts and language systems select features at shaping time;
mapping glyphs back to characters considers every feature of the font.
*/

import (
	"fmt"
	"iter"
)

// --- Layout tables ---------------------------------------------------------

// LayoutTable is a base type for layout tables.
type LayoutTable struct {
	header       LayoutHeader
	featureGraph *FeatureList
	lookupGraph  *LookupListGraph
}

// Header returns the layout table header.
func (t *LayoutTable) Header() LayoutHeader {
	return t.header
}

// FeatureGraph returns the feature list of the layout table. It will never
// be nil for a parsed table, but may be empty and carry an error.
func (t *LayoutTable) FeatureGraph() *FeatureList {
	return t.featureGraph
}

// LookupGraph returns the lookup list of the layout table. It will never
// be nil for a parsed table, but may be empty and carry an error.
func (t *LayoutTable) LookupGraph() *LookupListGraph {
	return t.lookupGraph
}

// LayoutHeader represents header information for layout tables, i.e.
// GSUB and GPOS.
type LayoutHeader struct {
	Major, Minor      uint16
	FeatureListOffset uint16 // from beginning of the layout table
	LookupListOffset  uint16 // from beginning of the layout table
}

// Version returns major and minor version numbers for this layout table.
func (h LayoutHeader) Version() (int, int) {
	return int(h.Major), int(h.Minor)
}

// GSubTable is a type representing an OpenType GSUB table
// (see https://docs.microsoft.com/en-us/typography/opentype/spec/gsub).
type GSubTable struct {
	tableBase
	LayoutTable
}

func newGSubTable(tag Tag, b binarySegm, offset, size uint32) *GSubTable {
	t := &GSubTable{tableBase: makeTableBase(tag, b, offset, size)}
	t.self = t
	return t
}

// LayoutTableLookupFlag is a flag type for layout tables (GPOS and GSUB).
type LayoutTableLookupFlag uint16

// Lookup flags of layout tables (GPOS and GSUB). They influence forward
// application only and are kept for diagnostics.
const ( // LookupFlag bit enumeration
	LOOKUP_FLAG_RIGHT_TO_LEFT             LayoutTableLookupFlag = 0x0001
	LOOKUP_FLAG_IGNORE_BASE_GLYPHS        LayoutTableLookupFlag = 0x0002 // If set, skips over base glyphs
	LOOKUP_FLAG_IGNORE_LIGATURES          LayoutTableLookupFlag = 0x0004 // If set, skips over ligatures
	LOOKUP_FLAG_IGNORE_MARKS              LayoutTableLookupFlag = 0x0008 // If set, skips over all combining marks
	LOOKUP_FLAG_USE_MARK_FILTERING_SET    LayoutTableLookupFlag = 0x0010 // If set, indicates that the lookup table structure is followed by a MarkFilteringSet field.
	LOOKUP_FLAG_MARK_ATTACHMENT_TYPE_MASK LayoutTableLookupFlag = 0xFF00 // If not zero, skips over all marks of attachment type different from specified.
)

// LayoutTableLookupType is a type identifier for GSUB lookup records.
type LayoutTableLookupType uint16

// GSUB lookup types
const (
	GSubLookupTypeSingle          LayoutTableLookupType = 1 // Replace one glyph with one glyph
	GSubLookupTypeMultiple        LayoutTableLookupType = 2 // Replace one glyph with more than one glyph
	GSubLookupTypeAlternate       LayoutTableLookupType = 3 // Replace one glyph with one of many glyphs
	GSubLookupTypeLigature        LayoutTableLookupType = 4 // Replace multiple glyphs with one glyph
	GSubLookupTypeContext         LayoutTableLookupType = 5 // Replace one or more glyphs in context
	GSubLookupTypeChainingContext LayoutTableLookupType = 6 // Replace one or more glyphs in chained context
	GSubLookupTypeExtensionSubs   LayoutTableLookupType = 7 // Extension mechanism for other substitutions
	GSubLookupTypeReverseChaining LayoutTableLookupType = 8 // Applied in reverse order, replace single glyph in chaining context
)

var gsubLookupTypeNames = []string{"GSUB?", "Single", "Multiple", "Alternate", "Ligature", "Context",
	"Chaining", "Extension", "Reverse"}

func (lt LayoutTableLookupType) String() string {
	if int(lt) < len(gsubLookupTypeNames) {
		return gsubLookupTypeNames[lt]
	}
	return gsubLookupTypeNames[0]
}

// --- Feature list ----------------------------------------------------------

// FeatureList is a semantic container for features in a GSUB FeatureList.
// Duplicate feature tags are preserved, as are declaration order.
type FeatureList struct {
	featureOrder    []Tag
	featuresByIndex []*Feature
	indicesByTag    map[Tag][]int

	raw binarySegm
	err error
}

// Feature is a semantic view of one OpenType Feature table.
type Feature struct {
	featureParamsOffset uint16
	lookupListIndices   []uint16

	err error
}

// Len returns the number of features in the feature list.
func (fl *FeatureList) Len() int {
	if fl == nil {
		return 0
	}
	return len(fl.featuresByIndex)
}

// Range iterates features in declaration order and preserves duplicate tags.
func (fl *FeatureList) Range() iter.Seq2[Tag, *Feature] {
	return func(yield func(Tag, *Feature) bool) {
		if fl == nil {
			return
		}
		for i, tag := range fl.featureOrder {
			if !yield(tag, fl.featuresByIndex[i]) {
				return
			}
		}
	}
}

// Indices returns all indices matching a feature tag.
func (fl *FeatureList) Indices(tag Tag) []int {
	if fl == nil || fl.indicesByTag == nil {
		return nil
	}
	indices := fl.indicesByTag[tag]
	if len(indices) == 0 {
		return nil
	}
	out := make([]int, len(indices))
	copy(out, indices)
	return out
}

// First returns the first feature matching a feature tag.
func (fl *FeatureList) First(tag Tag) *Feature {
	if fl == nil {
		return nil
	}
	if indices := fl.indicesByTag[tag]; len(indices) > 0 {
		return fl.featuresByIndex[indices[0]]
	}
	return nil
}

// Error returns an accumulated error for the feature list.
func (fl *FeatureList) Error() error {
	if fl == nil {
		return nil
	}
	return fl.err
}

// LookupIndices returns the indices into the lookup list, in the font's order.
// Indices are not checked against the lookup list and may dangle.
func (f *Feature) LookupIndices() []uint16 {
	if f == nil {
		return nil
	}
	return f.lookupListIndices
}

// Error returns an accumulated error for the feature.
func (f *Feature) Error() error {
	if f == nil {
		return nil
	}
	return f.err
}

// --- Coverage --------------------------------------------------------------

// Coverage denotes an indexed set of glyphs.
// Each subtable (except an Extension LookupType subtable) in a lookup references
// a Coverage table (Coverage), which specifies all the glyphs affected by a
// substitution or positioning operation described in the subtable.
// The GSUB, GPOS, and GDEF tables rely on this notion of coverage. If a glyph does
// not appear in a Coverage table, the client can skip that subtable and move
// immediately to the next subtable.
type Coverage struct {
	coverageHeader
	GlyphRange GlyphRange
}

// Match returns the Coverage Index for a glyph, and true if present.
func (c Coverage) Match(g GlyphIndex) (int, bool) {
	if c.GlyphRange == nil {
		return 0, false
	}
	return c.GlyphRange.Match(g)
}

// Contains reports whether a glyph is present in the coverage.
func (c Coverage) Contains(g GlyphIndex) bool {
	_, ok := c.Match(g)
	return ok
}

// Format returns the coverage format (1 or 2), or 0 for an empty coverage.
func (c Coverage) Format() uint16 {
	return c.CoverageFormat
}

type coverageHeader struct {
	CoverageFormat uint16
	Count          uint16
}

// --- Parsing ---------------------------------------------------------------

// parseGSub parses the GSUB (Glyph Substitution) table.
// Structural problems of the feature list or lookup list do not fail parsing,
// but are recorded as errors on the font.
func parseGSub(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	gsub := newGSubTable(tag, b, offset, size)
	if err := parseLayoutHeader(&gsub.LayoutTable, b); err != nil {
		ec.addError(tag, "Header", err.Error(), SeverityMajor, offset)
		gsub.featureGraph = &FeatureList{err: err}
		gsub.lookupGraph = &LookupListGraph{err: err}
		return gsub, nil
	}
	gsub.featureGraph = parseFeatureList(b, int(gsub.header.FeatureListOffset))
	if err := gsub.featureGraph.Error(); err != nil {
		ec.addError(tag, "FeatureList", err.Error(), SeverityMajor, offset+uint32(gsub.header.FeatureListOffset))
	}
	gsub.lookupGraph = parseLookupListGraph(b, int(gsub.header.LookupListOffset))
	if err := gsub.lookupGraph.Error(); err != nil {
		ec.addError(tag, "LookupList", err.Error(), SeverityMajor, offset+uint32(gsub.header.LookupListOffset))
	}
	mj, mn := gsub.header.Version()
	tracer().Debugf("GSUB table has version %d.%d, %d features, %d lookups", mj, mn,
		gsub.featureGraph.Len(), gsub.lookupGraph.Len())
	return gsub, nil
}

func parseLayoutHeader(lytt *LayoutTable, b binarySegm) error {
	if len(b) < 10 {
		return fmt.Errorf("layout table header too small: %d bytes", len(b))
	}
	lytt.header = LayoutHeader{
		Major:             b.U16(0),
		Minor:             b.U16(2),
		FeatureListOffset: b.U16(6),
		LookupListOffset:  b.U16(8),
	}
	if lytt.header.Major != 1 || lytt.header.Minor > 1 {
		return fmt.Errorf("unsupported layout table version %d.%d", lytt.header.Major, lytt.header.Minor)
	}
	return nil
}

// parseFeatureList reads the FeatureList table at offset within the layout table.
//
//	uint16         featureCount
//	FeatureRecord  featureRecords[featureCount]   { Tag featureTag; Offset16 featureOffset }
//
// Feature tables:
//
//	Offset16  featureParamsOffset
//	uint16    lookupIndexCount
//	uint16    lookupListIndices[lookupIndexCount]
func parseFeatureList(layout binarySegm, offset int) *FeatureList {
	fl := &FeatureList{indicesByTag: make(map[Tag][]int)}
	if offset == 0 {
		return fl // a NULL feature list is legal and means "no features"
	}
	b, err := layout.from(offset)
	if err != nil {
		fl.err = fmt.Errorf("feature list offset %d out of bounds", offset)
		return fl
	}
	fl.raw = b
	records, err := parseArray(b, 0, 6, "FeatureList")
	if err != nil {
		fl.err = err
		return fl
	}
	if records.Len() > MaxFeatureCount {
		fl.err = fmt.Errorf("feature count %d exceeds limit %d", records.Len(), MaxFeatureCount)
		return fl
	}
	fl.featureOrder = make([]Tag, records.Len())
	fl.featuresByIndex = make([]*Feature, records.Len())
	for i := 0; i < records.Len(); i++ {
		rec := records.Get(i)
		tag := MakeTag(rec[:4])
		fl.featureOrder[i] = tag
		fl.indicesByTag[tag] = append(fl.indicesByTag[tag], i)
		fl.featuresByIndex[i] = parseFeature(b, int(rec.U16(4)))
		if ferr := fl.featuresByIndex[i].err; ferr != nil && fl.err == nil {
			fl.err = fmt.Errorf("feature %d (%s): %w", i, tag, ferr)
		}
	}
	return fl
}

func parseFeature(featureList binarySegm, offset int) *Feature {
	f := &Feature{}
	b, err := featureList.from(offset)
	if err != nil || offset == 0 {
		f.err = fmt.Errorf("feature table offset %d out of bounds", offset)
		return f
	}
	f.featureParamsOffset = b.U16(0)
	indices, err := parseArray16(b, 2, "Feature")
	if err != nil {
		f.err = err
		return f
	}
	f.lookupListIndices = make([]uint16, indices.Len())
	for i := range f.lookupListIndices {
		f.lookupListIndices[i] = indices.Get(i).U16(0)
	}
	return f
}

// parseCoverageAt follows a 16-bit link at byte position at to a coverage table.
func parseCoverageAt(b binarySegm, at int) (Coverage, error) {
	lnk, err := parseLink16(b, at, b, "Coverage")
	if err != nil {
		return Coverage{}, err
	}
	cb, err := lnk.jump()
	if err != nil {
		return Coverage{}, err
	}
	return parseCoverage(cb)
}

// Read a coverage table-module, which comes in two formats (1 and 2).
// A Coverage table defines a unique index value, the Coverage Index, for each
// covered glyph.
func parseCoverage(b binarySegm) (Coverage, error) {
	h := coverageHeader{}
	h.CoverageFormat = b.U16(0)
	h.Count = b.U16(2)
	switch h.CoverageFormat {
	case 1:
		// Format 1: array of glyph IDs (2 bytes each)
		if required := 4 + int(h.Count)*2; len(b) < required {
			return Coverage{}, fmt.Errorf("coverage format 1 extends beyond bounds: need %d, have %d",
				required, len(b))
		}
		return Coverage{
			coverageHeader: h,
			GlyphRange: &glyphRangeArray{
				count: int(h.Count),
				data:  b[4:],
			},
		}, nil
	case 2:
		// Format 2: array of range records (6 bytes each: start, end, startCoverageIndex)
		if required := 4 + int(h.Count)*6; len(b) < required {
			return Coverage{}, fmt.Errorf("coverage format 2 extends beyond bounds: need %d, have %d",
				required, len(b))
		}
		return Coverage{
			coverageHeader: h,
			GlyphRange: &glyphRangeRecords{
				count: int(h.Count),
				data:  b[4:],
			},
		}, nil
	}
	return Coverage{}, fmt.Errorf("unknown coverage format %d", h.CoverageFormat)
}
