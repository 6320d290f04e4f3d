package revmap

import (
	"fmt"
	"iter"

	"github.com/npillmayer/glyphrev/ot"
)

// Feature is a GSUB feature: a tag and indices into the lookup list, in the
// font's order.
type Feature struct {
	Tag     ot.Tag
	Lookups []uint16
}

// Layout is the view onto a font's GSUB table the GSUB loader needs.
// Lookup returns false for indices outside the lookup list.
type Layout interface {
	Features() iter.Seq[Feature]
	Lookup(i int) (Lookup, bool)
}

// LoadStats summarizes a load run.
type LoadStats struct {
	Seeds    int // seeds visited
	Features int // features followed
	Skipped  int // features skipped because of an unsupported tag
	Lookups  int // lookups resolved for followed features
	Dangling int // lookup indices and coverage indices without an entry
	Inserted int // map insertions, including replacements
	Replaced int // insertions which replaced an earlier origin
}

// Add accumulates the counters of another run.
func (s *LoadStats) Add(other LoadStats) {
	s.Seeds += other.Seeds
	s.Features += other.Features
	s.Skipped += other.Skipped
	s.Lookups += other.Lookups
	s.Dangling += other.Dangling
	s.Inserted += other.Inserted
	s.Replaced += other.Replaced
}

func (s LoadStats) String() string {
	return fmt.Sprintf("seeds=%d features=%d skipped=%d lookups=%d dangling=%d inserted=%d replaced=%d",
		s.Seeds, s.Features, s.Skipped, s.Lookups, s.Dangling, s.Inserted, s.Replaced)
}

func (s *LoadStats) insert(m *Map, g ot.GlyphIndex, origin Origin) {
	s.Inserted++
	if m.Insert(g, origin).IsSome() {
		s.Replaced++
	}
}

type resolvedFeature struct {
	tag     ot.Tag
	variant Variant
	lookups []Lookup
}

// LoadGSUB records, for every seed, the glyphs produced from the seed's glyph
// by the features of layout which ClassifyTag accepts. Each produced glyph is
// recorded with the seed's code-point and the feature's variant.
//
// Features are visited in the font's order, and lookups in the order the
// feature lists them. If a glyph is produced more than once, the last
// production wins. The outcome thus depends on the order of features and
// lookups in the font: it is deterministic for a given font, but two fonts
// with identical features in different order may disagree.
//
// Lookup indices outside the lookup list and coverage indices without an
// entry are skipped; they are counted as dangling.
func LoadGSUB(m *Map, layout Layout, seeds []Seed) LoadStats {
	stats := LoadStats{Seeds: len(seeds)}
	if layout == nil {
		return stats
	}
	var features []resolvedFeature
	for f := range layout.Features() {
		v, ok := ClassifyTag(f.Tag).Unwrap()
		if !ok {
			tracer().Debugf("skipping feature '%s'", f.Tag)
			stats.Skipped++
			continue
		}
		rf := resolvedFeature{tag: f.Tag, variant: v}
		for _, inx := range f.Lookups {
			lookup, ok := layout.Lookup(int(inx))
			if !ok {
				tracer().Debugf("feature '%s' references dangling lookup %d", f.Tag, inx)
				stats.Dangling++
				continue
			}
			rf.lookups = append(rf.lookups, lookup)
		}
		stats.Features++
		stats.Lookups += len(rf.lookups)
		features = append(features, rf)
	}
	for _, seed := range seeds {
		origin := Origin{Codepoint: seed.Codepoint}
		for _, f := range features {
			origin.Variant = f.variant
			for _, lookup := range f.lookups {
				for _, st := range lookup.Subtables {
					_, dangling := visit(st, seed.Glyph, func(g ot.GlyphIndex) bool {
						stats.insert(m, g, origin)
						return true
					})
					if dangling {
						tracer().Debugf("feature '%s': coverage index of glyph %d dangles", f.tag, seed.Glyph)
						stats.Dangling++
					}
				}
			}
		}
	}
	return stats
}

// LoadMath records, for every seed, the MATH size variants of the seed's glyph
// with the seed's code-point and the math variant. Horizontal variants are
// recorded before vertical ones. As with LoadGSUB, the last insertion of a
// glyph wins, including insertions of earlier loader runs on the same map.
func LoadMath(m *Map, mv MathVariants, seeds []Seed) LoadStats {
	stats := LoadStats{Seeds: len(seeds)}
	for _, seed := range seeds {
		origin := Origin{Codepoint: seed.Codepoint, Variant: MathVariant()}
		for g := range VariantGlyphs(mv, seed.Glyph) {
			stats.insert(m, g, origin)
		}
	}
	return stats
}

// LoadDirect records every seed's glyph as the direct variant of its
// code-point. If a font maps several code-points to the same glyph, the last
// seed wins.
func LoadDirect(m *Map, seeds []Seed) LoadStats {
	stats := LoadStats{Seeds: len(seeds)}
	for _, seed := range seeds {
		stats.insert(m, seed.Glyph, Origin{Codepoint: seed.Codepoint, Variant: DirectVariant()})
	}
	return stats
}
