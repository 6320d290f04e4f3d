package ot

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/npillmayer/glyphrev/internal/fontbuild"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func parseCMapOnly(t *testing.T, subtable []byte) *CMapTable {
	t.Helper()
	ec := &errorCollector{}
	cmap := fontbuild.CMap(subtable)
	table, err := parseCMap(T("cmap"), cmap, 0, uint32(len(cmap)), ec)
	if err != nil || table == nil {
		t.Fatalf("cannot parse cmap: %v, errors=%v", err, ec.errors)
	}
	return table.Self().AsCMap()
}

func collectCMap(cmap *CMapTable) ([]rune, map[rune]GlyphIndex) {
	var order []rune
	all := make(map[rune]GlyphIndex)
	for r, g := range cmap.All() {
		order = append(order, r)
		all[r] = g
	}
	return order, all
}

func TestCMapFormat4(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	m := map[rune]uint16{
		'a': 1, 'b': 2, 'c': 3, // consecutive glyphs, delta encoding
		'x': 9, 'y': 5, 'z': 7, // glyph ID array
		'α': 12,
	}
	cmap := parseCMapOnly(t, fontbuild.CMapFormat4(m))
	if cmap.Format != 4 || cmap.PlatformID != 3 || cmap.EncodingID != 1 {
		t.Errorf("unexpected sub-table selection %d/%d/%d", cmap.PlatformID, cmap.EncodingID, cmap.Format)
	}
	for r, g := range m {
		if cmap.Lookup(r) != GlyphIndex(g) {
			t.Errorf("expected %q -> %d, have %d", r, g, cmap.Lookup(r))
		}
	}
	if cmap.Lookup('d') != 0 || cmap.Lookup(0x1F600) != 0 {
		t.Errorf("expected unmapped code-points to map to glyph 0")
	}
	order, all := collectCMap(cmap)
	if len(all) != len(m) {
		t.Fatalf("expected %d enumerated code-points, have %d: %v", len(m), len(all), all)
	}
	for r, g := range m {
		if all[r] != GlyphIndex(g) {
			t.Errorf("enumeration: expected %q -> %d, have %d", r, g, all[r])
		}
	}
	for i := 1; i < len(order); i++ {
		if order[i-1] >= order[i] {
			t.Errorf("enumeration not ascending at %d: %v", i, order)
		}
	}
}

func TestCMapFormat12(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	m := map[rune]uint16{
		'a': 1, 'b': 2,
		0x1D400: 20, 0x1D401: 21, 0x1D402: 30, // mathematical bold capitals
	}
	cmap := parseCMapOnly(t, fontbuild.CMapFormat12(m))
	if cmap.Format != 12 {
		t.Errorf("expected format 12 sub-table, have %d", cmap.Format)
	}
	for r, g := range m {
		if cmap.Lookup(r) != GlyphIndex(g) {
			t.Errorf("expected %U -> %d, have %d", r, g, cmap.Lookup(r))
		}
	}
	order, all := collectCMap(cmap)
	if len(all) != len(m) {
		t.Fatalf("expected %d enumerated code-points, have %d", len(m), len(all))
	}
	if order[0] != 'a' || order[len(order)-1] != 0x1D402 {
		t.Errorf("expected ascending enumeration, have %v", order)
	}
}

func TestCMapGlyphZeroIsSkipped(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	cmap := parseCMapOnly(t, fontbuild.CMapFormat12(map[rune]uint16{'a': 0, 'b': 4}))
	_, all := collectCMap(cmap)
	if len(all) != 1 || all['b'] != 4 {
		t.Errorf("expected only 'b' to be enumerated, have %v", all)
	}
}

func TestCMapEnumerationStopsEarly(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	cmap := parseCMapOnly(t, fontbuild.CMapFormat4(map[rune]uint16{'a': 1, 'b': 2, 'c': 3}))
	n := 0
	for range cmap.All() {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("expected enumeration to stop after 2, have %d", n)
	}
}

func TestCMapUnsupportedEncoding(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	ec := &errorCollector{}
	cmap := fontbuild.CMapWithEncoding(fontbuild.CMapFormat4(map[rune]uint16{'a': 1}), 1, 0) // Macintosh
	table, err := parseCMap(T("cmap"), cmap, 0, uint32(len(cmap)), ec)
	if err != nil || table != nil {
		t.Errorf("expected unsupported cmap to be dropped, have %v/%v", table, err)
	}
	if len(ec.errors) != 1 || ec.errors[0].Severity != SeverityCritical {
		t.Errorf("expected a critical error, have %v", ec.errors)
	}
}

// swapSegments exchanges two segments of a format 4 sub-table. Only
// segments without a glyph ID array link may be swapped.
func swapSegments(b []byte, i, j int) {
	n := int(binary.BigEndian.Uint16(b[6:])) / 2
	for _, base := range []int{14, 16 + 2*n, 16 + 4*n, 16 + 6*n} {
		x, y := base+2*i, base+2*j
		b[x], b[x+1], b[y], b[y+1] = b[y], b[y+1], b[x], b[x+1]
	}
}

func TestCMapFormat4UnsortedSegments(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	m := map[rune]uint16{'a': 1, 'b': 2, 'm': 7, 'x': 9}
	subtable := fontbuild.CMapFormat4(m)
	swapSegments(subtable, 0, 2)
	cmap := parseCMapOnly(t, subtable)
	for r, g := range m {
		if cmap.Lookup(r) != GlyphIndex(g) {
			t.Errorf("expected %q -> %d, have %d", r, g, cmap.Lookup(r))
		}
	}
	order, all := collectCMap(cmap)
	if len(all) != len(m) {
		t.Fatalf("expected %d enumerated code-points, have %v", len(m), all)
	}
	for i := 1; i < len(order); i++ {
		if order[i-1] >= order[i] {
			t.Errorf("enumeration not ascending at %d: %q", i, order)
		}
	}
}

func TestCMapDropsGlyphsBeyondGlyphCount(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	data := fontbuild.Font{CMap: map[rune]uint16{'a': 5, 'b': 50, 'c': 9}, NumGlyphs: 10}.Build()
	otf, err := Parse(data)
	if err != nil {
		t.Fatalf("cannot parse font: %v", err)
	}
	if otf.CMap.Lookup('b') != 0 || otf.CMap.Lookup('c') != 9 {
		t.Errorf("expected 'b' to be dropped and 'c' to be kept, have %d/%d",
			otf.CMap.Lookup('b'), otf.CMap.Lookup('c'))
	}
	_, all := collectCMap(otf.CMap)
	if len(all) != 2 || all['a'] != 5 || all['c'] != 9 {
		t.Errorf("expected only 'a' and 'c' to be enumerated, have %v", all)
	}
	if !hasWarning(otf, "beyond glyph count") {
		t.Errorf("expected a cmap warning, have %v", otf.Warnings())
	}
}

func TestCMapDropsSurrogates(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	data := fontbuild.Font{CMap: map[rune]uint16{'a': 5, 0xD800: 6, 0xDFFF: 7}, NumGlyphs: 10}.Build()
	otf, err := Parse(data)
	if err != nil {
		t.Fatalf("cannot parse font: %v", err)
	}
	if otf.CMap.Lookup(0xD800) != 0 {
		t.Errorf("expected surrogate to map to glyph 0, have %d", otf.CMap.Lookup(0xD800))
	}
	_, all := collectCMap(otf.CMap)
	if len(all) != 1 || all['a'] != 5 {
		t.Errorf("expected only 'a' to be enumerated, have %v", all)
	}
	if !hasWarning(otf, "surrogate") {
		t.Errorf("expected a cmap warning, have %v", otf.Warnings())
	}
	if off, size := otf.Table(T("cmap")).Extent(); off == 0 || int(size) != len(otf.Table(T("cmap")).Binary()) {
		t.Errorf("unexpected cmap extent %d/%d", off, size)
	}
}

func hasWarning(otf *Font, issue string) bool {
	for _, w := range otf.Warnings() {
		if w.Table == T("cmap") && strings.Contains(w.Issue, issue) {
			return true
		}
	}
	return false
}
