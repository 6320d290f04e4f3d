package revmap

import (
	"fmt"

	"github.com/npillmayer/glyphrev/ot"
)

// Kind enumerates the ways a glyph may be derived from a character.
type Kind uint8

const (
	KindDirect           Kind = iota // glyph is the character's own glyph from 'cmap'
	KindSsty                         // math script style, feature 'ssty'
	KindMath                         // size variant from table MATH
	KindCharacterVariant             // features 'cv01' … 'cv99'
	KindStylisticSet                 // features 'ss01' … 'ss20'
)

func (k Kind) String() string {
	switch k {
	case KindDirect:
		return "direct"
	case KindSsty:
		return "ssty"
	case KindMath:
		return "math"
	case KindCharacterVariant:
		return "cv"
	case KindStylisticSet:
		return "ss"
	}
	return "unknown"
}

// Variant describes how a glyph has been derived from a character.
// Character variants carry a number 1…99, stylistic sets a number 1…20.
//
// Variants are comparable values. The zero value is the direct variant.
type Variant struct {
	kind Kind
	n    uint8
}

// DirectVariant returns the variant for a character's own glyph.
func DirectVariant() Variant { return Variant{kind: KindDirect} }

// SstyVariant returns the variant for feature 'ssty'.
func SstyVariant() Variant { return Variant{kind: KindSsty} }

// MathVariant returns the variant for glyph variants from table MATH.
func MathVariant() Variant { return Variant{kind: KindMath} }

// CharacterVariant returns the variant for feature 'cvNN'.
// Returns false if n is not within 1…99.
func CharacterVariant(n int) (Variant, bool) {
	if n < 1 || n > 99 {
		return Variant{}, false
	}
	return Variant{kind: KindCharacterVariant, n: uint8(n)}, true
}

// StylisticSet returns the variant for feature 'ssNN'.
// Returns false if n is not within 1…20.
func StylisticSet(n int) (Variant, bool) {
	if n < 1 || n > 20 {
		return Variant{}, false
	}
	return Variant{kind: KindStylisticSet, n: uint8(n)}, true
}

// Kind returns the kind of derivation.
func (v Variant) Kind() Kind {
	return v.kind
}

// Number returns the feature number of character variants and stylistic sets,
// and 0 for all other variants.
func (v Variant) Number() int {
	return int(v.n)
}

// String renders v as "direct", "ssty", "math", "cv03" or "ss05".
func (v Variant) String() string {
	switch v.kind {
	case KindCharacterVariant, KindStylisticSet:
		return fmt.Sprintf("%s%02d", v.kind, v.n)
	}
	return v.kind.String()
}

// FeatureTag returns the OpenType feature tag producing v. Direct and math
// variants are not produced by a feature.
func (v Variant) FeatureTag() ot.Option[ot.Tag] {
	switch v.kind {
	case KindSsty, KindCharacterVariant, KindStylisticSet:
		return ot.Some(ot.T(v.String()))
	}
	return ot.None[ot.Tag]()
}

// ClassifyTag decides if a feature tag is one we follow, and which variant
// it produces:
//
//	"ssty"          → ssty
//	"cv01" … "cv99" → character variant 1 … 99
//	"ss01" … "ss20" → stylistic set 1 … 20
//
// Every other tag yields None. Unsupported tags are not an error.
func ClassifyTag(tag ot.Tag) ot.Option[Variant] {
	if tag == ot.T("ssty") {
		return ot.Some(SstyVariant())
	}
	b := tag.Bytes()
	if !isDigit(b[2]) || !isDigit(b[3]) {
		return ot.None[Variant]()
	}
	n := int(b[2]-'0')*10 + int(b[3]-'0')
	var v Variant
	var ok bool
	switch string(b[:2]) {
	case "cv":
		v, ok = CharacterVariant(n)
	case "ss":
		v, ok = StylisticSet(n)
	}
	if !ok {
		return ot.None[Variant]()
	}
	return ot.Some(v)
}

// ClassifyTagString classifies a feature tag given as a string.
// Strings which are not exactly 4 bytes long are never valid tags.
func ClassifyTagString(s string) ot.Option[Variant] {
	if len(s) != 4 {
		return ot.None[Variant]()
	}
	return ClassifyTag(ot.T(s))
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
