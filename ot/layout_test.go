package ot

import (
	"slices"
	"testing"

	"github.com/npillmayer/glyphrev/internal/fontbuild"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func coverageFmt1(glyphs ...uint16) []byte {
	return fontbuild.Coverage1(glyphs...)
}

func gsubFont(t *testing.T, features []fontbuild.Feature, lookups []fontbuild.Lookup) *GSubTable {
	t.Helper()
	otf := minimalFont(t, map[string][]byte{"GSUB": fontbuild.GSUB(features, lookups)})
	if otf.Layout.GSub == nil {
		t.Fatalf("expected font to have a GSUB table")
	}
	return otf.Layout.GSub
}

func TestCoverageFormats(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	cov, err := parseCoverage(coverageFmt1(3, 7, 9))
	if err != nil {
		t.Fatal(err)
	}
	if inx, ok := cov.Match(9); !ok || inx != 2 {
		t.Errorf("expected glyph 9 at coverage index 2, have %d/%v", inx, ok)
	}
	if cov.Contains(4) || cov.Format() != 1 {
		t.Errorf("unexpected coverage format 1 behaviour")
	}
	cov, err = parseCoverage(fontbuild.Coverage2(
		fontbuild.GlyphRange{Start: 10, End: 12, StartIndex: 0},
		fontbuild.GlyphRange{Start: 20, End: 20, StartIndex: 3},
	))
	if err != nil {
		t.Fatal(err)
	}
	if inx, ok := cov.Match(11); !ok || inx != 1 {
		t.Errorf("expected glyph 11 at coverage index 1, have %d/%v", inx, ok)
	}
	if inx, ok := cov.Match(20); !ok || inx != 3 {
		t.Errorf("expected glyph 20 at coverage index 3, have %d/%v", inx, ok)
	}
	if cov.Contains(13) {
		t.Errorf("expected glyph 13 not to be covered")
	}
	if _, err = parseCoverage([]byte{0, 3, 0, 0}); err == nil {
		t.Errorf("expected error for coverage format 3")
	}
	if _, err = parseCoverage([]byte{0, 1, 0, 5, 0, 1}); err == nil {
		t.Errorf("expected error for truncated coverage")
	}
	var empty Coverage
	if empty.Contains(0) {
		t.Errorf("expected zero coverage to be empty")
	}
}

func TestFeatureListOrderAndDuplicates(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	gsub := gsubFont(t, []fontbuild.Feature{
		{Tag: "ss01", Lookups: []uint16{1}},
		{Tag: "cv03", Lookups: []uint16{0, 1}},
		{Tag: "ss01", Lookups: []uint16{0}},
	}, []fontbuild.Lookup{
		{Type: 1, Subtables: [][]byte{fontbuild.SingleSubst1(coverageFmt1(1), 3)}},
		{Type: 1, Subtables: [][]byte{fontbuild.SingleSubst1(coverageFmt1(2), 3)}},
	})
	fl := gsub.FeatureGraph()
	if fl.Len() != 3 || fl.Error() != nil {
		t.Fatalf("expected 3 features without error, have %d/%v", fl.Len(), fl.Error())
	}
	var tags []string
	for tag, f := range fl.Range() {
		tags = append(tags, tag.String())
		if f == nil {
			t.Errorf("feature %s is nil", tag)
		}
	}
	if !slices.Equal(tags, []string{"ss01", "cv03", "ss01"}) {
		t.Errorf("expected declaration order with duplicates, have %v", tags)
	}
	if !slices.Equal(fl.Indices(T("ss01")), []int{0, 2}) {
		t.Errorf("expected ss01 at indices 0 and 2, have %v", fl.Indices(T("ss01")))
	}
	if !slices.Equal(fl.First(T("cv03")).LookupIndices(), []uint16{0, 1}) {
		t.Errorf("expected cv03 lookups [0 1], have %v", fl.First(T("cv03")).LookupIndices())
	}
	if fl.First(T("liga")) != nil {
		t.Errorf("expected no liga feature")
	}
	mj, mn := gsub.Header().Version()
	if mj != 1 || mn != 0 {
		t.Errorf("expected GSUB version 1.0, have %d.%d", mj, mn)
	}
}

func TestGSubSinglePayloads(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	gsub := gsubFont(t, nil, []fontbuild.Lookup{
		{Type: 1, Subtables: [][]byte{
			fontbuild.SingleSubst1(coverageFmt1(5), -2),
			fontbuild.SingleSubst2(coverageFmt1(3, 4), 10, 11),
		}},
	})
	lookup := gsub.LookupGraph().Lookup(0)
	if lookup == nil || lookup.Error() != nil {
		t.Fatalf("expected lookup 0 without error, have %v", lookup.Error())
	}
	if lookup.Type != GSubLookupTypeSingle || lookup.Len() != 2 {
		t.Errorf("expected single substitution lookup with 2 subtables, have %s/%d", lookup.Type, lookup.Len())
	}
	node := lookup.Subtable(0)
	if node.Error() != nil || node.GSub == nil || node.GSub.SingleFmt1 == nil {
		t.Fatalf("expected GSUB1/1 payload, have err=%v", node.Error())
	}
	if node.GSub.SingleFmt1.DeltaGlyphID != -2 {
		t.Errorf("expected delta -2, have %d", node.GSub.SingleFmt1.DeltaGlyphID)
	}
	if inx, ok := node.Coverage.Match(5); !ok || inx != 0 {
		t.Errorf("expected coverage to contain glyph 5 at index 0")
	}
	node = lookup.Subtable(1)
	if node.Error() != nil || node.GSub == nil || node.GSub.SingleFmt2 == nil {
		t.Fatalf("expected GSUB1/2 payload, have err=%v", node.Error())
	}
	if !slices.Equal(node.GSub.SingleFmt2.SubstituteGlyphIDs, []GlyphIndex{10, 11}) {
		t.Errorf("expected substitutes [10 11], have %v", node.GSub.SingleFmt2.SubstituteGlyphIDs)
	}
	if lookup.Subtable(2) != nil {
		t.Errorf("expected out-of-range subtable to be nil")
	}
}

func TestGSubAlternatePayload(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	gsub := gsubFont(t, nil, []fontbuild.Lookup{
		{Type: 3, Subtables: [][]byte{
			fontbuild.AlternateSubst(coverageFmt1(1, 2), []uint16{7, 8}, []uint16{9}),
		}},
	})
	node := gsub.LookupGraph().Lookup(0).Subtable(0)
	if node.Error() != nil || node.GSub == nil || node.GSub.AlternateFmt1 == nil {
		t.Fatalf("expected GSUB3 payload, have err=%v", node.Error())
	}
	alts := node.GSub.AlternateFmt1.Alternates
	if len(alts) != 2 || !slices.Equal(alts[0], []GlyphIndex{7, 8}) || !slices.Equal(alts[1], []GlyphIndex{9}) {
		t.Errorf("unexpected alternate sets %v", alts)
	}
}

func TestGSubExtensionIsResolved(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	gsub := gsubFont(t, nil, []fontbuild.Lookup{
		{Type: 7, Subtables: [][]byte{
			fontbuild.Extension(1, fontbuild.SingleSubst1(coverageFmt1(4), 1)),
			fontbuild.Extension(3, fontbuild.AlternateSubst(coverageFmt1(4), []uint16{6})),
			fontbuild.Extension(7, fontbuild.SingleSubst1(coverageFmt1(4), 1)),
		}},
	})
	lookup := gsub.LookupGraph().Lookup(0)
	node := lookup.Subtable(0)
	if node.Error() != nil || !node.Extension || node.LookupType != GSubLookupTypeSingle {
		t.Fatalf("expected resolved single substitution, have type %s, err=%v", node.LookupType, node.Error())
	}
	if node.GSub.SingleFmt1 == nil || !node.Coverage.Contains(4) {
		t.Errorf("expected payload and coverage of wrapped subtable")
	}
	node = lookup.Subtable(1)
	if node.LookupType != GSubLookupTypeAlternate || node.GSub == nil || node.GSub.AlternateFmt1 == nil {
		t.Errorf("expected resolved alternate substitution")
	}
	node = lookup.Subtable(2)
	if node.Error() == nil || node.GSub != nil {
		t.Errorf("expected nested extension to be flagged")
	}
}

func TestGSubUninterpretedAndBrokenSubtables(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	ligature := []byte{0, 1, 0, 6, 0, 0} // format 1, coverage offset, no ligature sets
	broken := fontbuild.SingleSubst1(coverageFmt1(4), 1)
	putU16(broken, 2, 200) // coverage offset beyond subtable
	gsub := gsubFont(t, nil, []fontbuild.Lookup{
		{Type: 4, Subtables: [][]byte{ligature}},
		{Type: 1, Subtables: [][]byte{broken}},
	})
	node := gsub.LookupGraph().Lookup(0).Subtable(0)
	if node.GSub != nil || node.LookupType != GSubLookupTypeLigature {
		t.Errorf("expected ligature subtable to have no payload")
	}
	node = gsub.LookupGraph().Lookup(1).Subtable(0)
	if node.Error() == nil || node.GSub != nil {
		t.Errorf("expected broken coverage link to be flagged, have payload %v", node.GSub)
	}
}

func TestGSubDanglingLookupIndex(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	gsub := gsubFont(t, []fontbuild.Feature{{Tag: "ss02", Lookups: []uint16{0, 5}}}, []fontbuild.Lookup{
		{Type: 1, Subtables: [][]byte{fontbuild.SingleSubst1(coverageFmt1(1), 1)}},
	})
	lg := gsub.LookupGraph()
	if lg.Len() != 1 {
		t.Fatalf("expected 1 lookup, have %d", lg.Len())
	}
	if lg.Lookup(5) != nil || lg.Lookup(-1) != nil {
		t.Errorf("expected dangling lookup index to yield nil")
	}
	n := 0
	for i, lookup := range lg.Range() {
		if lookup == nil || i != n {
			t.Errorf("unexpected lookup at %d", i)
		}
		n++
	}
	if n != 1 {
		t.Errorf("expected Range to visit 1 lookup, visited %d", n)
	}
}

func TestGSubBrokenHeaderIsCollected(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	otf := minimalFont(t, map[string][]byte{"GSUB": {0, 1, 0, 0, 0, 0}})
	if otf.Layout.GSub == nil {
		t.Fatalf("expected GSUB table to be present despite errors")
	}
	if otf.Layout.GSub.FeatureGraph().Len() != 0 || otf.Layout.GSub.LookupGraph().Len() != 0 {
		t.Errorf("expected empty graphs for broken GSUB")
	}
	if len(otf.Errors()) == 0 || otf.Errors()[0].Table != T("GSUB") {
		t.Errorf("expected a GSUB error to be collected, have %v", otf.Errors())
	}
}
