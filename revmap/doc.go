/*
Package revmap maps glyphs back to the characters they have been derived from.

A shaper turns characters into glyphs, applying OpenType features like
stylistic sets or character variants on the way. Back-ends producing
text-centric output (HTML, SVG) receive positioned glyph IDs only and have
to recover the text for them. For glyphs reachable by the font's 'cmap' the
reverse mapping is straightforward, but glyphs produced by substitutions
are not listed in any character map.

Package revmap walks the GSUB features and MATH variants of a font, starting
from the character map's (code-point, glyph) pairs, and records for every
glyph which can be produced which code-point it originated from and which
variant produced it.

	m := revmap.NewMap()
	revmap.LoadGSUB(m, layout, seeds)
	revmap.LoadMath(m, mathVariants, seeds)
	m.Freeze()
	origin := m.Query(glyph) // ot.Option[revmap.Origin]

Only single substitutions and alternate substitutions are followed, and only
for features classified by ClassifyTag: 'ssty', 'cv01'–'cv99' and
'ss01'–'ss20'. All other features are ignored.

Package revmap does not read fonts; package ot does that. The inputs of the
loaders are small interfaces which are implemented by adapters in the root
package of this module.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package revmap

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.glyphrev'
func tracer() tracing.Trace {
	return tracing.Select("font.glyphrev")
}
