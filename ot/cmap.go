package ot

/*
We replicate some of the code of the Go core team here, available from
https://github.com/golang/image/tree/master/font/sfnt.
I understand it's legal to do so, as long as the license information stays intact.

   Copyright 2017 The Go Authors. All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
	"unicode/utf8"
)

// CMapTable represents an OpenType cmap table, i.e. the table to receive glyphs
// from code-points.
//
// See https://docs.microsoft.com/de-de/typography/opentype/spec/cmap
//
// A cmap table may contain more than one lookup table, but we will only
// instantiate the most appropriate one. Platform, encoding and format of the
// selected sub-table are recorded.
//
// Once the font's glyph count is known, Lookup and All hide entries for
// glyphs beyond it. Code-points which are not Unicode scalar values, i.e.
// surrogates, are never reported.
type CMapTable struct {
	tableBase
	GlyphIndexMap CMapGlyphIndex
	PlatformID    uint16
	EncodingID    uint16
	Format        uint16
	numGlyphs     int  // glyph count of the font, if limited
	limited       bool // set by Parse after reading 'maxp'
}

func newCMapTable(tag Tag, b binarySegm, offset, size uint32) *CMapTable {
	t := &CMapTable{tableBase: makeTableBase(tag, b, offset, size)}
	t.self = t
	return t
}

// Lookup returns the glyph for a code-point, or 0 for 'missing character'.
func (t *CMapTable) Lookup(r rune) GlyphIndex {
	if t == nil || t.GlyphIndexMap == nil || !utf8.ValidRune(r) {
		return 0
	}
	if g := t.GlyphIndexMap.Lookup(r); t.validGlyph(g) {
		return g
	}
	return 0
}

// All enumerates every mapped code-point of the selected sub-table in ascending
// code-point order, together with its glyph. Code-points mapping to glyph 0
// ('.notdef'), surrogates and glyphs beyond the font's glyph count are left out.
func (t *CMapTable) All() iter.Seq2[rune, GlyphIndex] {
	if t == nil || t.GlyphIndexMap == nil {
		return func(func(rune, GlyphIndex) bool) {}
	}
	return func(yield func(rune, GlyphIndex) bool) {
		for r, g := range t.GlyphIndexMap.All() {
			if !utf8.ValidRune(r) || !t.validGlyph(g) {
				continue
			}
			if !yield(r, g) {
				return
			}
		}
	}
}

func (t *CMapTable) validGlyph(g GlyphIndex) bool {
	return !t.limited || int(g) < t.numGlyphs
}

// limitGlyphs restricts the table to glyphs below n. Entries hidden by this,
// and entries for surrogate code-points, are reported as warnings.
func (t *CMapTable) limitGlyphs(n int, ec *errorCollector) {
	if t == nil {
		return
	}
	t.numGlyphs, t.limited = n, true
	if t.GlyphIndexMap == nil {
		return
	}
	offset, _ := t.Extent()
	var beyond, surrogates int
	first := rune(-1)
	for r, g := range t.GlyphIndexMap.All() {
		if !utf8.ValidRune(r) {
			surrogates++
		} else if int(g) >= n {
			if beyond == 0 {
				first = r
			}
			beyond++
		}
	}
	if beyond > 0 {
		tracer().Infof("cmap: %d code-points map to glyphs beyond glyph count %d, first is %U", beyond, n, first)
		ec.addWarning(T("cmap"), fmt.Sprintf("%d code-points map to glyphs beyond glyph count %d; dropped", beyond, n), offset)
	}
	if surrogates > 0 {
		ec.addWarning(T("cmap"), fmt.Sprintf("%d surrogate code-points mapped; dropped", surrogates), offset)
	}
}

// platformEncodingWidth returns the number of bytes per character assumed by
// the given Platform ID and Platform Specific ID.
//
// Old fonts, from when Unicode meant the Basic Multilingual Plane (BMP),
// assume that 2 bytes per character is sufficient.
//
// Recent fonts naturally support the full range of Unicode code points, which
// can take up to 4 bytes per character. Such fonts might still choose one of
// the legacy encodings if e.g. their repertoire is limited to the BMP, for
// greater compatibility with older software, or because the resultant file
// size can be smaller.
func platformEncodingWidth(pid, psid uint16) int {
	switch pid {
	case 0: // Unicode platform
		switch psid {
		case 3: // Unicode BMB
			return 2
		case 4, 10: // Unicode full  (include 10 from FontForge bug)
			return 4
		}
	case 3: // Windows platform
		switch psid {
		case 1: // Unicode BMP
			return 2
		case 10: // Unicode full
			return 4
		}
	}
	return 0 // width 0 will never get selected
}

// We only support the following plaform/encoding/format combinations:
//
//	0 (Unicode)  3    4   Unicode BMB
//	0 (Unicode)  4    12  Unicode full  (10 from FontForge, error)
//	3 (Win)      1    4   Unicode BMP
//	3 (Win)      10   12  Unicode full
//
// Note that FontForge may generate a bogus Platform Specific ID (value 10)
// for the Unicode Platform ID (value 0). See
// https://github.com/fontforge/fontforge/issues/2728
func supportedCmapFormat(format, pid, psid uint16) bool {
	return (pid == 0 && psid == 3 && format == 4) ||
		(pid == 0 && (psid == 4 || psid == 10) && format == 12) ||
		(pid == 3 && psid == 1 && format == 4) ||
		(pid == 3 && psid == 10 && format == 12)
}

// Dispatcher to create the correct implementation of a CMapGlyphIndex from a given format.
func makeGlyphIndex(which encodingRecord) (CMapGlyphIndex, error) {
	switch which.format {
	case 4:
		return makeGlyphIndexFormat4(which.subtable)
	case 12:
		return makeGlyphIndexFormat12(which.subtable)
	}
	return nil, errFontFormat("unsupported cmap format")
}

// CMapGlyphIndex represents a CMap table index to receive a glyph index from
// a code-point.
type CMapGlyphIndex interface {
	Lookup(rune) GlyphIndex           // central activiy of CMap
	All() iter.Seq2[rune, GlyphIndex] // ascending code-points, glyph 0 left out
}

// --- Format 4 --------------------------------------------------------------

// Format 4: Segment mapping to delta values
// This is the standard character-to-glyph-index mapping subtable for fonts that support
// only Unicode Basic Multilingual Plane characters (U+0000 to U+FFFF).
//
// Segments are required to be sorted by end code, but fonts do not always
// comply. We keep them in the font's order, as idRangeOffset depends on a
// segment's position, and search them through byStart.
type format4GlyphIndex struct {
	entries  []cmapEntry16
	byStart  []int // segment indices, ordered by start code
	glyphIds array
}

// Format 4 holds four parallel arrays to describe the segments (one segment for
// each contiguous range of codes).
type cmapEntry16 struct {
	end, start, delta, offset uint16
}

func (f4 format4GlyphIndex) Lookup(r rune) GlyphIndex {
	if r < 0 || r > 0xffff { // format 4 is for BMP code-points only
		return 0
	}
	c := uint16(r)
	for i, j := 0, len(f4.byStart); i < j; {
		k := i + (j-i)/2 // binary search over segments ordered by start code
		h := f4.byStart[k]
		entry := &f4.entries[h]
		if c < entry.start {
			j = k
		} else if entry.end < c {
			i = k + 1
		} else {
			return f4.glyphInSegment(h, c)
		}
	}
	return 0
}

// glyphInSegment maps c, which must lie in segment h.
//
// OpenType describes the link into the glyph ID array as an offset from the
// current location within idRangeOffset itself. We sliced the sub-table into
// parallel arrays, so we calculate a clean index into the glyph ID array
// instead: cut off the part of the offset which skips over to the end of the
// idRangeOffset array, then add the position of c within the segment.
func (f4 format4GlyphIndex) glyphInSegment(h int, c uint16) GlyphIndex {
	entry := &f4.entries[h]
	if entry.offset == 0 {
		return GlyphIndex(c + entry.delta)
	}
	deltaToEndOfEntries := (len(f4.entries) - h) * 2 // 2 = byte size of offset array entry
	index := (int(entry.offset)-deltaToEndOfEntries)/2 + int(c-entry.start)
	if index < 0 || index >= f4.glyphIds.Len() {
		return 0
	}
	glyphInx := f4.glyphIds.Get(index).U16(0)
	if glyphInx > 0 {
		// If the value obtained from the indexing operation is not 0 (which indicates
		// missingGlyph), idDelta[i] is added to it to get the glyph index
		glyphInx += entry.delta
	}
	return GlyphIndex(glyphInx)
}

func (f4 format4GlyphIndex) All() iter.Seq2[rune, GlyphIndex] {
	return func(yield func(rune, GlyphIndex) bool) {
		next := 0 // overlapping segments: the first one by start code wins
		for _, h := range f4.byStart {
			entry := f4.entries[h]
			for c := max(int(entry.start), next); c <= int(entry.end); c++ {
				g := f4.glyphInSegment(h, uint16(c))
				if g == 0 {
					continue
				}
				if !yield(rune(c), g) {
					return
				}
			}
			next = max(next, int(entry.end)+1)
		}
	}
}

// The format's data is divided into three parts, which must occur in the following order:
//
// - A four-word header gives parameters for an optimized search of the segment list;
// - Four parallel arrays describe the segments (one segment for each contiguous range of codes);
// - A variable-length array of glyph IDs (unsigned words).
func makeGlyphIndexFormat4(b binarySegm) (CMapGlyphIndex, error) {
	const headerSize = 14
	if headerSize > b.Size() {
		return nil, errFontFormat("cmap subtable bounds overflow")
	}
	size := int(b.U16(2))
	segCount := int(b.U16(6))
	if segCount&1 != 0 {
		return nil, errFontFormat("cmap table format, illegal segment count")
	}
	segCount /= 2
	eLength := 8*segCount + 2
	if size > b.Size() || headerSize+eLength > size {
		return nil, errFontFormat("cmap internal structure")
	}
	b = b[headerSize:size]
	endCodes := viewArray16(b[:segCount*2])
	next := endCodes.Size() + 2 // 2 is a padding entry in the cmap table
	startCodes := viewArray16(b[next : next+segCount*2])
	next += startCodes.Size()
	deltas := viewArray16(b[next : next+segCount*2])
	next += deltas.Size()
	offsets := viewArray16(b[next : next+segCount*2])
	next += offsets.Size()
	entries := make([]cmapEntry16, segCount)
	for i := range entries {
		entries[i] = cmapEntry16{
			end:    endCodes.Get(i).U16(0),
			start:  startCodes.Get(i).U16(0),
			delta:  deltas.Get(i).U16(0),
			offset: offsets.Get(i).U16(0),
		}
	}
	byStart := make([]int, 0, segCount)
	for i, entry := range entries {
		if entry.start <= entry.end {
			byStart = append(byStart, i)
		}
	}
	slices.SortStableFunc(byStart, func(a, b int) int {
		return cmp.Compare(entries[a].start, entries[b].start)
	})
	rest := b[next:]
	glyphTable := viewArray16(rest[:len(rest)&^1])
	return format4GlyphIndex{
		entries:  entries,
		byStart:  byStart,
		glyphIds: glyphTable,
	}, nil
}

// --- Format 12 -------------------------------------------------------------

type cmapEntry32 struct {
	start, end, delta uint32
}

// Each sequential map group record specifies a character range and the starting glyph ID
// mapped from the first character. Glyph IDs for subsequent characters follow in sequence.
type format12GlyphIndex struct {
	entries []cmapEntry32
}

func (f12 format12GlyphIndex) Lookup(r rune) GlyphIndex {
	if r < 0 {
		return 0
	}
	c := uint32(r)
	for i, j := 0, len(f12.entries); i < j; {
		h := i + (j-i)/2 // do a binary search on f12.entries (which may get large)
		entry := &f12.entries[h]
		if c < entry.start {
			j = h
		} else if entry.end < c {
			i = h + 1
		} else {
			return glyph32(c - entry.start + entry.delta)
		}
	}
	return 0
}

func (f12 format12GlyphIndex) All() iter.Seq2[rune, GlyphIndex] {
	return func(yield func(rune, GlyphIndex) bool) {
		var next uint64 // overlapping groups: the first one by start code wins
		for _, entry := range f12.entries {
			end := min(entry.end, 0x10ffff)
			for c := max(uint64(entry.start), next); c <= uint64(end); c++ {
				g := glyph32(uint32(c) - entry.start + entry.delta)
				if g == 0 {
					continue
				}
				if !yield(rune(c), g) {
					return
				}
			}
			next = max(next, uint64(end)+1)
		}
	}
}

// glyph IDs beyond 16 bit cannot exist and are treated as missing.
func glyph32(g uint32) GlyphIndex {
	if g > 0xffff {
		return 0
	}
	return GlyphIndex(g)
}

// This is the standard character-to-glyph-index mapping subtable for fonts supporting
// Unicode character repertoires that include supplementary-plane characters (U+10000 to
// U+10FFFF).
//
// Format 12 is similar to format 4 in that it defines segments for sparse representation.
// It differs, however, in that it uses 32-bit character codes, and Glyph ID lookup
// and calculation is a lot simpler.
func makeGlyphIndexFormat12(b binarySegm) (CMapGlyphIndex, error) {
	const headerSize, groupSize = 16, 12
	if headerSize > b.Size() {
		return nil, errFontFormat("cmap subtable bounds overflow")
	}
	size := int64(b.U32(4))
	grpCount := int64(b.U32(12))
	if size > int64(b.Size()) || headerSize+groupSize*grpCount > size {
		return nil, errFontFormat("cmap internal structure")
	}
	// SequentialMapGroup Record:
	// Type     Name            Description
	// uint32   startCharCode   First character code in this group
	// uint32   endCharCode     Last character code in this group
	// uint32   startGlyphID    Glyph index corresponding to the starting character code
	groups := viewArray(b[headerSize:headerSize+groupSize*grpCount], groupSize)
	entries := make([]cmapEntry32, 0, grpCount)
	for i := 0; i < groups.Len(); i++ {
		rec := groups.Get(i)
		entry := cmapEntry32{start: rec.U32(0), end: rec.U32(4), delta: rec.U32(8)}
		if entry.end < entry.start {
			continue
		}
		entries = append(entries, entry)
	}
	// groups have to be sorted by start code; we do not rely on it
	slices.SortStableFunc(entries, func(a, b cmapEntry32) int {
		return cmp.Compare(a.start, b.start)
	})
	return format12GlyphIndex{entries: entries}, nil
}
