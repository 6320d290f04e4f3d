/*
Package ot provides read-only views onto the OpenType tables needed to map
glyphs back to the characters they have been derived from.

Intended audience for this package are pre-processing steps of typesetting
back-ends, which receive positioned glyph IDs from a shaper or layout engine and
need to recover textual information for them (e.g., for producing accessible HTML
or SVG, or for searchable PDF output).

Package `ot` will not interpret font tables. It parses just enough of a font's
binary data to expose

▪︎ the character-to-glyph mapping (table 'cmap', formats 4 and 12),

▪︎ the number of glyphs of the font (table 'maxp'),

▪︎ the feature list and lookup list of table 'GSUB', with typed payloads for
single-substitution and alternate-substitution subtables (extension subtables
are resolved transparently),

▪︎ the glyph variant lists of table 'MATH'.

All other tables are kept as generic tables, i.e. no table information will be
dropped, but it is not made accessible in a semantic way either.

Fonts in the wild contain entries which, strictly speaking, infringe upon the
OpenType specification. Package `ot` will not fail for recoverable errors,
but collect them as `FontError`s and `FontWarning`s on the font. Subtables which
cannot be navigated are flagged with an error on their lookup node.

# Status

No font collections nor variable fonts are supported.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>

Some of the cmap code has originally been copied over from
golang.org/x/image/font/sfnt/cmap.go, as the cmap-routines are not accessible
through the sfnt package's API.

	Copyright 2017 The Go Authors. All rights reserved.
	Use of this source code is governed by a BSD-style
	license that can be found in the LICENSE file.
*/
package ot

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.opentype'
func tracer() tracing.Trace {
	return tracing.Select("font.opentype")
}

