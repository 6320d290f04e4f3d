/*
Package glyphrev builds reverse glyph maps for OpenType fonts.

A reverse glyph map tells for a glyph ID which character it has been derived
from and by which variant feature. It is meant for back-ends which receive
positioned glyphs from a shaper and need to write out text, e.g. HTML or SVG
serializers.

	otf, err := glyphrev.FromBinary(data)
	...
	m, stats := glyphrev.Build(otf)
	if origin, ok := m.Query(glyph).Unwrap(); ok {
	    fmt.Printf("glyph %d is %c as %s\n", glyph, origin.Codepoint, origin.Variant)
	}

Build wires the views of package ot into the loaders of package revmap:
the font's character map provides the seeds, its GSUB table the features and
lookups, its MATH table the size variants.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package glyphrev

import (
	"fmt"

	"github.com/npillmayer/glyphrev/ot"
	"github.com/npillmayer/glyphrev/revmap"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.glyphrev'
func tracer() tracing.Trace {
	return tracing.Select("font.glyphrev")
}

// FromBinary parses raw OpenType bytes and returns a decoded font.
//
// The input is expected to contain a complete single-font SFNT stream.
// It must not change after parsing for the font to be usable.
func FromBinary(data []byte) (*ot.Font, error) {
	return ot.Parse(data)
}

// Build creates the reverse glyph map for a font. GSUB features are loaded
// first, then MATH variants, then the character map's glyphs themselves
// (see Options). The returned map is frozen.
//
// A nil font results in an empty map. Parsing drops character map entries
// for glyphs beyond the font's glyph count, so Build panics on such a seed
// only for fonts altered after parsing.
func Build(otf *ot.Font, opts ...Option) (*revmap.Map, revmap.LoadStats) {
	options := NewOptions(opts...)
	m := revmap.NewMap()
	var stats revmap.LoadStats
	if otf == nil {
		m.Freeze()
		return m, stats
	}
	seeds := Seeds(otf)
	n := otf.NumGlyphs()
	for _, seed := range seeds {
		if int(seed.Glyph) >= n {
			panic(fmt.Sprintf("glyphrev: seed glyph %d for %U exceeds glyph count %d",
				seed.Glyph, seed.Codepoint, n))
		}
	}
	if !options.SkipGSUB {
		s := revmap.LoadGSUB(m, LayoutOf(otf.Layout.GSub), seeds)
		tracer().Debugf("GSUB: %s", s)
		stats.Add(s)
		stats.Seeds = len(seeds)
	}
	if !options.SkipMath {
		s := revmap.LoadMath(m, MathOf(otf), seeds)
		tracer().Debugf("MATH: %s", s)
		stats.Add(s)
		stats.Seeds = len(seeds)
	}
	if options.IncludeDirect {
		s := revmap.LoadDirect(m, seeds)
		stats.Add(s)
		stats.Seeds = len(seeds)
	}
	m.Freeze()
	tracer().Infof("reverse glyph map with %d entries (%s)", m.Len(), stats)
	return m, stats
}

// Seeds returns the (code-point, glyph) pairs of the font's character map, in
// ascending code-point order. Code-points mapped to glyph 0 are left out, as
// are surrogates and glyphs beyond the font's glyph count.
func Seeds(otf *ot.Font) []revmap.Seed {
	if otf == nil || otf.CMap == nil {
		return nil
	}
	var seeds []revmap.Seed
	for r, g := range otf.CMap.All() {
		seeds = append(seeds, revmap.Seed{Codepoint: r, Glyph: g})
	}
	return seeds
}
