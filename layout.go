package glyphrev

import (
	"iter"

	"github.com/npillmayer/glyphrev/ot"
	"github.com/npillmayer/glyphrev/revmap"
)

// LayoutOf adapts a GSUB table for revmap.LoadGSUB. A nil table results in
// a layout without features.
func LayoutOf(gsub *ot.GSubTable) revmap.Layout {
	if gsub == nil {
		return gsubLayout{}
	}
	return gsubLayout{
		features: gsub.FeatureGraph(),
		lookups:  gsub.LookupGraph(),
	}
}

type gsubLayout struct {
	features *ot.FeatureList
	lookups  *ot.LookupListGraph
}

func (l gsubLayout) Features() iter.Seq[revmap.Feature] {
	return func(yield func(revmap.Feature) bool) {
		for tag, f := range l.features.Range() {
			if err := f.Error(); err != nil {
				tracer().Debugf("feature '%s': %v", tag, err)
			}
			if !yield(revmap.Feature{Tag: tag, Lookups: f.LookupIndices()}) {
				return
			}
		}
	}
}

func (l gsubLayout) Lookup(i int) (revmap.Lookup, bool) {
	lt := l.lookups.Lookup(i)
	if lt == nil {
		return revmap.Lookup{}, false
	}
	if err := lt.Error(); err != nil {
		tracer().Debugf("lookup %d: %v", i, err)
	}
	lookup := revmap.Lookup{Subtables: make([]revmap.Subtable, 0, lt.Len())}
	for _, node := range lt.Range() {
		lookup.Subtables = append(lookup.Subtables, subtableOf(node))
	}
	return lookup, true
}

// subtableOf adapts a lookup node. Nodes without a typed payload are
// unsupported.
func subtableOf(node *ot.LookupNode) revmap.Subtable {
	if node == nil {
		return revmap.Unsupported{}
	}
	if node.GSub == nil {
		if err := node.Error(); err != nil {
			tracer().Debugf("unreadable %s subtable: %v", node.LookupType, err)
		}
		return revmap.Unsupported{LookupType: uint16(node.LookupType)}
	}
	cov := node.Coverage
	switch p := node.GSub; {
	case p.SingleFmt1 != nil:
		return revmap.SingleDelta{Coverage: cov, Delta: p.SingleFmt1.DeltaGlyphID}
	case p.SingleFmt2 != nil:
		return revmap.SingleTable{Coverage: cov, Substitutes: p.SingleFmt2.SubstituteGlyphIDs}
	case p.AlternateFmt1 != nil:
		return revmap.AlternateSubst{Coverage: cov, Alternates: p.AlternateFmt1.Alternates}
	}
	return revmap.Unsupported{LookupType: uint16(node.LookupType)}
}

// MathOf returns the MATH size variants of a font, or nil if the font has
// none.
func MathOf(otf *ot.Font) revmap.MathVariants {
	if otf == nil {
		return nil
	}
	if mv := otf.Math.Variants(); mv != nil {
		return mv
	}
	return nil
}

// SupportedFeatures lists the GSUB features of a font which contribute to a
// reverse glyph map, in the font's order.
func SupportedFeatures(otf *ot.Font) []revmap.Feature {
	if otf == nil {
		return nil
	}
	var features []revmap.Feature
	for f := range LayoutOf(otf.Layout.GSub).Features() {
		if revmap.ClassifyTag(f.Tag).IsSome() {
			features = append(features, f)
		}
	}
	return features
}
