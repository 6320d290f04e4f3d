package ot

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Code comment often will cite passage from the
// OpenType specification version 1.8.4;
// see https://docs.microsoft.com/en-us/typography/opentype/spec/.

// ---------------------------------------------------------------------------

// Maximum reasonable counts for OpenType table structures.
// These limits prevent malicious fonts from claiming unreasonably large counts
// that could lead to excessive memory allocation.
const (
	MaxFeatureCount = 500  // Features: typically < 200
	MaxLookupCount  = 1000 // Lookups: typically < 100
)

// MaxExtensionDepth is the maximum nesting of Extension lookup subtables.
const MaxExtensionDepth = 16

// ---------------------------------------------------------------------------

// Checked arithmetic operations to prevent integer overflow

// checkedMulInt checks for overflow in multiplication of two non-negative integers
func checkedMulInt(a, b int) (int, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a < 0 || b < 0 || a > math.MaxInt/b {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	return a * b, nil
}

// checkedAddInt checks for overflow in addition of two integers
func checkedAddInt(a, b int) (int, error) {
	if b > 0 && a > math.MaxInt-b {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	if b < 0 && a < math.MinInt-b {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	return a + b, nil
}

// checkedAddUint32 checks for overflow in addition of two uint32 values
func checkedAddUint32(a, b uint32) (uint32, error) {
	if a > math.MaxUint32-b {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	return a + b, nil
}

// ---------------------------------------------------------------------------

// Parse parses an OpenType font from a byte slice.
// An ot.Font needs ongoing access to the fonts byte-data after the Parse function returns.
// Its elements are assumed immutable while the ot.Font remains in use.
//
// Tables 'cmap' and 'maxp' are mandatory. Tables 'GSUB' and 'MATH' are parsed
// if present. Problems within optional tables do not fail parsing, but are
// collected as errors and warnings on the font.
func Parse(font []byte) (*Font, error) {
	// https://www.microsoft.com/typography/otspec/otff.htm: Offset Table is 12 bytes.
	r := bytes.NewReader(font)
	h := FontHeader{}
	if err := binary.Read(r, binary.BigEndian, &h); err != nil {
		return nil, errFontFormat(fmt.Sprintf("header: %v", err))
	}
	tracer().Debugf("header = %v, tag = %x|%s", h, h.FontType, Tag(h.FontType).String())

	ec := &errorCollector{}
	if !(h.FontType == 0x4f54544f || // OTTO
		h.FontType == 0x00010000 || // TrueType
		h.FontType == 0x74727565) { // true
		return nil, errFontFormat(fmt.Sprintf("font type not supported: %x", h.FontType))
	}
	otf := &Font{Header: &h, tables: make(map[Tag]Table)}
	src := binarySegm(font)
	// "The Offset Table is followed immediately by the Table Record entries …
	// sorted in ascending order by tag", 16 bytes each.
	tableRecordsSize, err := checkedMulInt(16, int(h.TableCount))
	if err != nil {
		return nil, errFontFormat(fmt.Sprintf("table count too large: %v", err))
	}
	buf, err := src.view(12, tableRecordsSize)
	if err != nil {
		return nil, errFontFormat("table record entries")
	}
	for b, prevTag := buf, Tag(0); len(b) > 0; b = b[16:] {
		tag := MakeTag(b)
		if tag < prevTag {
			return nil, errFontFormat("table order")
		}
		prevTag = tag
		off, size := u32(b[8:12]), u32(b[12:16])
		if off&3 != 0 { // ignore checksums, but "all tables must begin on four byte boundries".
			return nil, errFontFormat(fmt.Sprintf("table %s: invalid table offset %d", tag, off))
		}
		tableEnd, err := checkedAddUint32(off, size)
		if err != nil {
			return nil, errFontFormat(fmt.Sprintf("table %s: size calculation overflow: %v", tag, err))
		}
		if tableEnd > uint32(len(src)) {
			return nil, errFontFormat(fmt.Sprintf("table %s: bounds [%d:%d] exceed font size %d",
				tag, off, tableEnd, len(src)))
		}
		t, err := parseTable(tag, src[off:tableEnd], off, size, ec)
		if err != nil {
			return nil, err
		}
		if t != nil {
			otf.tables[tag] = t
		}
	}
	if err := collectShortcuts(otf, ec); err != nil {
		return nil, err
	}
	otf.parseErrors = ec.errors
	otf.parseWarnings = ec.warnings
	return otf, nil
}

// RequiredTables lists the tables a font has to contain for glyph mapping.
var RequiredTables = []string{"cmap", "maxp"}

func collectShortcuts(otf *Font, ec *errorCollector) error {
	for _, name := range RequiredTables {
		if otf.Table(T(name)) == nil {
			return errFontFormat(fmt.Sprintf("missing or unusable required table '%s'", name))
		}
	}
	otf.CMap = otf.Table(T("cmap")).Self().AsCMap()
	otf.MaxP = otf.Table(T("maxp")).Self().AsMaxP()
	if t := otf.Table(T("GSUB")); t != nil {
		otf.Layout.GSub = t.Self().AsGSub()
	}
	if t := otf.Table(T("MATH")); t != nil {
		otf.Math = t.Self().AsMath()
	}
	if otf.MaxP.NumGlyphs == 0 {
		ec.addWarning(T("maxp"), "font states zero glyphs", 0)
	}
	otf.CMap.limitGlyphs(otf.MaxP.NumGlyphs, ec)
	return nil
}

// Consistency check and shortcuts to essential tables, including layout tables.
// A nil table with a nil error drops a table from the font's directory.
func parseTable(t Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	switch t {
	case T("cmap"):
		return parseCMap(t, b, offset, size, ec)
	case T("maxp"):
		return parseMaxP(t, b, offset, size, ec)
	case T("GSUB"):
		return parseGSub(t, b, offset, size, ec)
	case T("MATH"):
		return parseMath(t, b, offset, size, ec)
	}
	tracer().Debugf("font contains table (%s), will not be interpreted", t)
	ec.addWarning(t, "table not interpreted", offset)
	return newTable(t, b, offset, size), nil
}

// --- MaxP table ------------------------------------------------------------

// This table establishes the memory requirements for this font. Fonts with CFF data
// must use Version 0.5 of this table, specifying only the numGlyphs field. Fonts
// with TrueType outlines must use Version 1.0 of this table, where all data is required.
func parseMaxP(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < 6 {
		ec.addError(tag, "Header", fmt.Sprintf("table size %d < 6", size), SeverityCritical, offset)
		return nil, nil
	}
	t := newMaxPTable(tag, b, offset, size)
	n, _ := b.u16(4)
	t.NumGlyphs = int(n)
	return t, nil
}

// --- CMap table ------------------------------------------------------------

func parseCMap(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	const headerSize, entrySize = 4, 8
	n, err := b.u16(2) // number of sub-tables
	if err != nil {
		ec.addError(tag, "Header", "table too small for header", SeverityCritical, offset)
		return nil, nil
	}
	tracer().Debugf("font cmap has %d sub-tables in %d|%d bytes", n, len(b), size)
	if headerSize+entrySize*int(n) > len(b) {
		ec.addError(tag, "Header", fmt.Sprintf("table size %d < required %d", size,
			headerSize+entrySize*int(n)), SeverityCritical, offset)
		return nil, nil
	}
	t := newCMapTable(tag, b, offset, size)
	var enc encodingRecord
	for i := 0; i < int(n); i++ {
		rec, _ := b.view(headerSize+entrySize*i, entrySize)
		pid, psid := u16(rec), u16(rec[2:])
		width := platformEncodingWidth(pid, psid)
		if width <= enc.width {
			continue
		}
		lnk, err := parseLink32(rec, 4, b, "cmap.Subtable")
		if err != nil {
			continue
		}
		subtable, err := lnk.jump()
		if err != nil {
			ec.addWarning(tag, fmt.Sprintf("sub-table %d (platform=%d, encoding=%d) cannot be located", i, pid, psid), offset)
			continue
		}
		format := subtable.U16(0)
		tracer().Debugf("cmap table contains subtable with format %d", format)
		if supportedCmapFormat(format, pid, psid) {
			enc = encodingRecord{
				platformID: pid,
				encodingID: psid,
				format:     format,
				width:      width,
				subtable:   subtable,
			}
		}
	}
	if enc.width == 0 {
		ec.addError(tag, "Format", "no supported cmap format found", SeverityCritical, offset)
		return nil, nil
	}
	if t.GlyphIndexMap, err = makeGlyphIndex(enc); err != nil {
		ec.addError(tag, "Subtable", err.Error(), SeverityCritical, offset)
		return nil, nil
	}
	t.PlatformID, t.EncodingID, t.Format = enc.platformID, enc.encodingID, enc.format
	return t, nil
}

type encodingRecord struct {
	platformID uint16
	encodingID uint16
	format     uint16
	width      int // encoding width in bytes
	subtable   binarySegm
}
