package main

import (
	"testing"

	"github.com/npillmayer/glyphrev"
	"github.com/npillmayer/glyphrev/fontset"
	"github.com/npillmayer/glyphrev/internal/fontbuild"
	"github.com/npillmayer/glyphrev/ot"
	"github.com/npillmayer/glyphrev/revmap"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFont(t *testing.T) *ot.Font {
	t.Helper()
	data := fontbuild.Font{
		CMap:      map[rune]uint16{'a': 3, 'b': 4, 0x2211: 5},
		NumGlyphs: 20,
		GSUB: fontbuild.GSUB(
			[]fontbuild.Feature{
				{Tag: "liga", Lookups: []uint16{0}},
				{Tag: "cv01", Lookups: []uint16{0}},
				{Tag: "ss04", Lookups: []uint16{1, 0}},
			},
			[]fontbuild.Lookup{
				{Type: 1, Subtables: [][]byte{fontbuild.SingleSubst1(fontbuild.Coverage1(4), 6)}},
				{Type: 3, Subtables: [][]byte{fontbuild.AlternateSubst(fontbuild.Coverage1(3), []uint16{11, 12})}},
			},
		),
		MATH: fontbuild.MATH([]fontbuild.Construction{{Glyph: 5, Variants: []uint16{15}}}, nil),
	}.Build()
	otf, err := glyphrev.FromBinary(data)
	require.NoError(t, err)
	return otf
}

func TestParseGlyphs(t *testing.T) {
	glyphs, err := parseGlyphs("3, 0x10 7\t65535")
	require.NoError(t, err)
	assert.Equal(t, []ot.GlyphIndex{3, 16, 7, 65535}, glyphs)
	_, err = parseGlyphs("65536")
	assert.Error(t, err)
	_, err = parseGlyphs("a")
	assert.Error(t, err)
	glyphs, err = parseGlyphs(" , ")
	assert.NoError(t, err)
	assert.Empty(t, glyphs)
}

func TestParseTraceLevel(t *testing.T) {
	level, err := parseTraceLevel("Debug")
	assert.NoError(t, err)
	assert.Equal(t, tracing.LevelDebug, level)
	_, err = parseTraceLevel("verbose")
	assert.Error(t, err)
}

func TestVariantFilter(t *testing.T) {
	cv3, _ := revmap.CharacterVariant(3)
	cv4, _ := revmap.CharacterVariant(4)
	all, err := parseVariantFilter("all")
	require.NoError(t, err)
	assert.True(t, all(revmap.MathVariant()))
	cv, err := parseVariantFilter("cv")
	require.NoError(t, err)
	assert.True(t, cv(cv3))
	assert.False(t, cv(revmap.SstyVariant()))
	only3, err := parseVariantFilter("CV03")
	require.NoError(t, err)
	assert.True(t, only3(cv3))
	assert.False(t, only3(cv4))
	_, err = parseVariantFilter("kern")
	assert.Error(t, err)
}

func TestDumpTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.glyphrev")
	defer teardown()
	//
	m, _ := glyphrev.Build(testFont(t))
	all, _ := parseVariantFilter("all")
	data := dumpTable(m, all)
	require.Len(t, data, 8)
	assert.Equal(t, []string{"U+0061", "a", "LATIN SMALL LETTER A", "3", "direct"}, data[1])
	assert.Equal(t, []string{"U+0061", "a", "LATIN SMALL LETTER A", "11", "ss04"}, data[2])
	assert.Equal(t, "U+2211", data[7][0])
	assert.Equal(t, "math", data[7][4])
	math, _ := parseVariantFilter("math")
	assert.Len(t, dumpTable(m, math), 2)
}

func TestQueryRow(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.glyphrev")
	defer teardown()
	//
	m, _ := glyphrev.Build(testFont(t))
	assert.Equal(t, []string{"10", "U+0062", "b", "LATIN SMALL LETTER B", "ss04"}, queryRow(m, 10))
	assert.Equal(t, "unknown", queryRow(m, 19)[4])
}

func TestTagsTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.glyphrev")
	defer teardown()
	//
	data := tagsTable(testFont(t))
	require.Len(t, data, 3)
	assert.Equal(t, []string{"cv01", "cv", "[0]"}, data[1])
	assert.Equal(t, []string{"ss04", "ss", "[1 0]"}, data[2])
}

func TestFontsTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.registry")
	defer teardown()
	//
	registry := fontset.NewRegistry()
	data := fontbuild.Font{CMap: map[rune]uint16{'x': 1}, NumGlyphs: 2}.Build()
	require.NoError(t, registry.Add("Tiny", data))
	rows := fontsTable(registry)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Tiny", "1", "0", "0", "0", "0"}, rows[1])
}
