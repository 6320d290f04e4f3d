/*
Package fontbuild assembles synthetic OpenType font binaries for tests.

Fonts built here are just complete enough to be navigated by package ot:
a table directory plus tables 'cmap', 'maxp' and, optionally, 'GSUB' and
'MATH'. They carry no outlines and no metrics.

	font := fontbuild.SFNT(map[string][]byte{
		"cmap": fontbuild.CMap(fontbuild.CMapFormat4(map[rune]uint16{'a': 1})),
		"maxp": fontbuild.MaxP(10),
	})
*/
package fontbuild

import (
	"encoding/binary"
	"slices"
	"sort"
)

var be = binary.BigEndian

// Font collects the ingredients of a synthetic font.
type Font struct {
	CMap      map[rune]uint16 // character map
	Format12  bool            // encode CMap as format 12 instead of format 4
	NumGlyphs int
	GSUB      []byte // optional
	MATH      []byte // optional
}

// Build assembles the font's binary.
func (f Font) Build() []byte {
	sub := CMapFormat4(f.CMap)
	if f.Format12 {
		sub = CMapFormat12(f.CMap)
	}
	tables := map[string][]byte{
		"cmap": CMap(sub),
		"maxp": MaxP(f.NumGlyphs),
	}
	if f.GSUB != nil {
		tables["GSUB"] = f.GSUB
	}
	if f.MATH != nil {
		tables["MATH"] = f.MATH
	}
	return SFNT(tables)
}

// SFNT assembles a TrueType flavoured font file from a set of tables.
// Table records are sorted by tag and tables are padded to 4-byte boundaries.
// Checksums are not computed.
func SFNT(tables map[string][]byte) []byte {
	tags := make([]string, 0, len(tables))
	for tag := range tables {
		tags = append(tags, (tag + "    ")[:4])
	}
	sort.Strings(tags)
	headerSize := 12 + 16*len(tags)
	data := make([]byte, headerSize)
	be.PutUint32(data[0:], 0x00010000)
	be.PutUint16(data[4:], uint16(len(tags)))
	for i, tag := range tags {
		table := tables[tag]
		if table == nil {
			table = tables[trimTag(tag)]
		}
		rec := data[12+16*i:]
		copy(rec[0:4], tag)
		be.PutUint32(rec[8:], uint32(len(data)))
		be.PutUint32(rec[12:], uint32(len(table)))
		data = append(data, pad4(table)...)
	}
	return data
}

func trimTag(tag string) string {
	for len(tag) > 0 && tag[len(tag)-1] == ' ' {
		tag = tag[:len(tag)-1]
	}
	return tag
}

func pad4(b []byte) []byte {
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
}

// MaxP builds a version 0.5 'maxp' table stating numGlyphs.
func MaxP(numGlyphs int) []byte {
	data := make([]byte, 6)
	be.PutUint32(data[0:], 0x00005000)
	be.PutUint16(data[4:], uint16(numGlyphs))
	return data
}

// --- cmap ------------------------------------------------------------------

// CMap wraps a format 4 sub-table as (3,1) or a format 12 sub-table as (3,10)
// into a cmap table with a single encoding record.
func CMap(subtable []byte) []byte {
	psid := uint16(1)
	if be.Uint16(subtable) == 12 {
		psid = 10
	}
	return CMapWithEncoding(subtable, 3, psid)
}

// CMapWithEncoding wraps a sub-table into a cmap table with a single
// encoding record for the given platform and encoding.
func CMapWithEncoding(subtable []byte, platformID, encodingID uint16) []byte {
	data := make([]byte, 12, 12+len(subtable))
	be.PutUint16(data[0:], 0)
	be.PutUint16(data[2:], 1)
	be.PutUint16(data[4:], platformID)
	be.PutUint16(data[6:], encodingID)
	be.PutUint32(data[8:], 12)
	return append(data, subtable...)
}

type segment struct {
	start, end rune
	glyphs     []uint16
}

// segments groups the keys of m into runs of consecutive code-points.
func segments(m map[rune]uint16, limit rune) []segment {
	runes := make([]rune, 0, len(m))
	for r := range m {
		if r <= limit {
			runes = append(runes, r)
		}
	}
	slices.Sort(runes)
	var segs []segment
	for _, r := range runes {
		if n := len(segs); n > 0 && segs[n-1].end+1 == r {
			segs[n-1].end = r
			segs[n-1].glyphs = append(segs[n-1].glyphs, m[r])
			continue
		}
		segs = append(segs, segment{start: r, end: r, glyphs: []uint16{m[r]}})
	}
	return segs
}

func (s segment) consecutive() bool {
	for i := 1; i < len(s.glyphs); i++ {
		if s.glyphs[i] != s.glyphs[0]+uint16(i) {
			return false
		}
	}
	return true
}

// CMapFormat4 builds a format 4 sub-table for the BMP entries of m.
// Runs with consecutive glyph IDs are encoded with idDelta, all other runs
// through the glyph ID array, so both lookup paths get exercised.
func CMapFormat4(m map[rune]uint16) []byte {
	segs := segments(m, 0xfffe)
	segs = append(segs, segment{start: 0xffff, end: 0xffff, glyphs: []uint16{0}})
	n := len(segs)
	var glyphIDs []uint16
	ends, starts, deltas, offsets := make([]uint16, n), make([]uint16, n), make([]uint16, n), make([]uint16, n)
	for i, s := range segs {
		ends[i], starts[i] = uint16(s.end), uint16(s.start)
		if i == n-1 {
			deltas[i] = 1 // maps 0xFFFF to glyph 0
			continue
		}
		if s.consecutive() {
			deltas[i] = s.glyphs[0] - uint16(s.start)
			continue
		}
		// offset from idRangeOffset[i] to the first glyph of this segment
		offsets[i] = uint16(2*(n-i) + 2*len(glyphIDs))
		glyphIDs = append(glyphIDs, s.glyphs...)
	}
	length := 16 + 8*n + 2*len(glyphIDs)
	data := make([]byte, 14, length)
	be.PutUint16(data[0:], 4)
	be.PutUint16(data[2:], uint16(length))
	be.PutUint16(data[6:], uint16(2*n))
	searchRange, entrySelector := 2, 0
	for searchRange*2 <= 2*n {
		searchRange *= 2
		entrySelector++
	}
	be.PutUint16(data[8:], uint16(searchRange))
	be.PutUint16(data[10:], uint16(entrySelector))
	be.PutUint16(data[12:], uint16(2*n-searchRange))
	data = appendU16(data, ends...)
	data = appendU16(data, 0) // reservedPad
	data = appendU16(data, starts...)
	data = appendU16(data, deltas...)
	data = appendU16(data, offsets...)
	return appendU16(data, glyphIDs...)
}

// CMapFormat12 builds a format 12 sub-table, one group per run of
// consecutive code-points mapping to consecutive glyphs.
func CMapFormat12(m map[rune]uint16) []byte {
	var groups [][3]uint32
	for _, s := range segments(m, 0x10ffff) {
		for i, g := range s.glyphs {
			c := uint32(s.start) + uint32(i)
			if n := len(groups); n > 0 && groups[n-1][1]+1 == c &&
				groups[n-1][2]+(c-groups[n-1][0]) == uint32(g) {
				groups[n-1][1] = c
				continue
			}
			groups = append(groups, [3]uint32{c, c, uint32(g)})
		}
	}
	length := 16 + 12*len(groups)
	data := make([]byte, length)
	be.PutUint16(data[0:], 12)
	be.PutUint32(data[4:], uint32(length))
	be.PutUint32(data[12:], uint32(len(groups)))
	for i, grp := range groups {
		be.PutUint32(data[16+12*i:], grp[0])
		be.PutUint32(data[20+12*i:], grp[1])
		be.PutUint32(data[24+12*i:], grp[2])
	}
	return data
}

func appendU16(b []byte, values ...uint16) []byte {
	for _, v := range values {
		b = be.AppendUint16(b, v)
	}
	return b
}
