package fontbuild

// Lookup is a GSUB lookup with pre-built subtables.
type Lookup struct {
	Type      uint16
	Flag      uint16
	Subtables [][]byte
}

// Feature is a feature record. Lookups are indices into the lookup list and
// are not checked, i.e. dangling indices may be produced on purpose.
type Feature struct {
	Tag     string
	Lookups []uint16
}

// Coverage1 builds a format 1 coverage table. Glyphs are taken as given,
// callers are responsible for sorting them.
func Coverage1(glyphs ...uint16) []byte {
	data := appendU16(nil, 1, uint16(len(glyphs)))
	return appendU16(data, glyphs...)
}

// GlyphRange is a range record of a format 2 coverage table.
type GlyphRange struct {
	Start, End, StartIndex uint16
}

// Coverage2 builds a format 2 coverage table.
func Coverage2(ranges ...GlyphRange) []byte {
	data := appendU16(nil, 2, uint16(len(ranges)))
	for _, r := range ranges {
		data = appendU16(data, r.Start, r.End, r.StartIndex)
	}
	return data
}

// SingleSubst1 builds a single substitution subtable of format 1 (delta).
func SingleSubst1(coverage []byte, delta int16) []byte {
	data := appendU16(nil, 1, 6, uint16(delta))
	return append(data, coverage...)
}

// SingleSubst2 builds a single substitution subtable of format 2 (substitute
// array), with the coverage table placed after the substitute array.
func SingleSubst2(coverage []byte, substitutes ...uint16) []byte {
	covOffset := 6 + 2*len(substitutes)
	data := appendU16(nil, 2, uint16(covOffset), uint16(len(substitutes)))
	data = appendU16(data, substitutes...)
	return append(data, coverage...)
}

// AlternateSubst builds an alternate substitution subtable (format 1), with
// one alternate set per entry of alternates.
func AlternateSubst(coverage []byte, alternates ...[]uint16) []byte {
	headerSize := 6 + 2*len(alternates)
	data := appendU16(nil, 1, uint16(headerSize), uint16(len(alternates)))
	setOffset := headerSize + len(coverage)
	var sets []byte
	for _, alts := range alternates {
		data = appendU16(data, uint16(setOffset+len(sets)))
		sets = appendU16(sets, uint16(len(alts)))
		sets = appendU16(sets, alts...)
	}
	data = append(data, coverage...)
	return append(data, sets...)
}

// Extension wraps a subtable of lookupType into an extension subtable (format 1).
func Extension(lookupType uint16, subtable []byte) []byte {
	data := appendU16(nil, 1, lookupType)
	data = be.AppendUint32(data, 8)
	return append(data, subtable...)
}

// GSUB builds a version 1.0 GSUB table with an empty script list.
func GSUB(features []Feature, lookups []Lookup) []byte {
	scriptList := appendU16(nil, 0)
	featureList := buildFeatureList(features)
	lookupList := buildLookupList(lookups)
	const headerSize = 10
	scriptListOff := headerSize
	featureListOff := scriptListOff + len(scriptList)
	lookupListOff := featureListOff + len(featureList)
	data := appendU16(nil, 1, 0, uint16(scriptListOff), uint16(featureListOff), uint16(lookupListOff))
	data = append(data, scriptList...)
	data = append(data, featureList...)
	return append(data, lookupList...)
}

func buildFeatureList(features []Feature) []byte {
	headerSize := 2 + 6*len(features)
	data := appendU16(nil, uint16(len(features)))
	var tables []byte
	for _, f := range features {
		data = append(data, (f.Tag + "    ")[:4]...)
		data = appendU16(data, uint16(headerSize+len(tables)))
		tables = appendU16(tables, 0, uint16(len(f.Lookups)))
		tables = appendU16(tables, f.Lookups...)
	}
	return append(data, tables...)
}

func buildLookupList(lookups []Lookup) []byte {
	headerSize := 2 + 2*len(lookups)
	data := appendU16(nil, uint16(len(lookups)))
	var tables []byte
	for _, lookup := range lookups {
		data = appendU16(data, uint16(headerSize+len(tables)))
		lookupHeaderSize := 6 + 2*len(lookup.Subtables)
		tables = appendU16(tables, lookup.Type, lookup.Flag, uint16(len(lookup.Subtables)))
		var subtables []byte
		for _, st := range lookup.Subtables {
			tables = appendU16(tables, uint16(lookupHeaderSize+len(subtables)))
			subtables = append(subtables, st...)
		}
		tables = append(tables, subtables...)
	}
	return append(data, tables...)
}

// --- MATH ------------------------------------------------------------------

// Construction lists the size variants of a glyph for one direction.
// Glyph must be part of the coverage, i.e. constructions have to be given
// in ascending glyph order.
type Construction struct {
	Glyph    uint16
	Variants []uint16
}

// MATH builds a MATH table carrying a MathVariants sub-table only.
// Math constants and glyph info offsets are NULL.
func MATH(vertical, horizontal []Construction) []byte {
	data := appendU16(nil, 1, 0, 0, 0, 10)
	return append(data, MathVariants(vertical, horizontal)...)
}

// MathVariants builds a MathVariants sub-table.
func MathVariants(vertical, horizontal []Construction) []byte {
	headerSize := 10 + 2*(len(vertical)+len(horizontal))
	var tail []byte
	placeCoverage := func(cs []Construction) uint16 {
		if len(cs) == 0 {
			return 0
		}
		glyphs := make([]uint16, len(cs))
		for i, c := range cs {
			glyphs[i] = c.Glyph
		}
		off := headerSize + len(tail)
		tail = append(tail, Coverage1(glyphs...)...)
		return uint16(off)
	}
	placeConstructions := func(cs []Construction) []uint16 {
		offsets := make([]uint16, len(cs))
		for i, c := range cs {
			offsets[i] = uint16(headerSize + len(tail))
			tail = appendU16(tail, 0, uint16(len(c.Variants)))
			for _, v := range c.Variants {
				tail = appendU16(tail, v, 1000)
			}
		}
		return offsets
	}
	vertCov := placeCoverage(vertical)
	horizCov := placeCoverage(horizontal)
	vertOffsets := placeConstructions(vertical)
	horizOffsets := placeConstructions(horizontal)
	data := appendU16(nil, 100, vertCov, horizCov, uint16(len(vertical)), uint16(len(horizontal)))
	data = appendU16(data, vertOffsets...)
	data = appendU16(data, horizOffsets...)
	return append(data, tail...)
}
