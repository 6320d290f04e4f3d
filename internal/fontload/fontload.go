/*
Package fontload loads font files for building reverse glyph maps.

Fonts are decoded twice: by package ot, which provides the tables needed for
reverse mapping, and by golang.org/x/image/font/sfnt, which provides the
font's name. Only the former is required; fonts sfnt cannot read are named
after their file.
*/
package fontload

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flopp/go-findfont"
	"github.com/npillmayer/glyphrev/ot"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font/sfnt"
)

// tracer writes to trace with key 'font.registry'
func tracer() tracing.Trace {
	return tracing.Select("font.registry")
}

// ScalableFont is a parsed scalable font with original bytes and its decoded
// views. SFNT is nil if sfnt could not decode the font.
type ScalableFont struct {
	Fontname string
	Filepath string
	Binary   []byte
	OT       *ot.Font
	SFNT     *sfnt.Font
}

// LoadOpenTypeFont loads an OpenType font (TTF or OTF) from a file.
func LoadOpenTypeFont(fontfile string) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, err
	}
	f, err := ParseOpenTypeFont(bytez, FallbackName(fontfile))
	if err != nil {
		return nil, fmt.Errorf("font file %s: %w", fontfile, err)
	}
	f.Filepath = fontfile
	return f, nil
}

// ParseOpenTypeFont loads an OpenType font (TTF or OTF) from memory.
// fallback names the font if its 'name' table cannot be read.
func ParseOpenTypeFont(fbytes []byte, fallback string) (*ScalableFont, error) {
	otf, err := ot.Parse(fbytes)
	if err != nil {
		return nil, err
	}
	f := &ScalableFont{Binary: fbytes, OT: otf, Fontname: fallback}
	if f.SFNT, err = sfnt.Parse(fbytes); err != nil {
		tracer().Debugf("sfnt cannot decode font %q: %v", fallback, err)
		f.SFNT = nil
		return f, nil
	}
	if name, err := f.SFNT.Name(nil, sfnt.NameIDFull); err == nil && name != "" {
		f.Fontname = name
	}
	if n := f.SFNT.NumGlyphs(); n != otf.NumGlyphs() {
		tracer().Infof("font %s: glyph count differs, sfnt has %d, maxp has %d",
			f.Fontname, n, otf.NumGlyphs())
	}
	tracer().Debugf("loaded and parsed font %s", f.Fontname)
	return f, nil
}

// Locate resolves a font argument to a file path. Arguments naming an
// existing file are returned as they are, all others are looked up as
// system fonts, e.g. "DejaVuSans.ttf".
func Locate(font string) (string, error) {
	if fi, err := os.Stat(font); err == nil && !fi.IsDir() {
		return font, nil
	}
	path, err := findfont.Find(font)
	if err != nil {
		return "", fmt.Errorf("font %s not found: %w", font, err)
	}
	tracer().Debugf("%s is a system font at %s", font, path)
	return path, nil
}

// FallbackName derives a font name from a file path, i.e. the file name
// without extension.
func FallbackName(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "font"
	}
	return name
}
