package ot

import (
	"errors"
	"fmt"
)

// Reading bytes from a font's binary representation

var errBufferBounds = errors.New("internal inconsistency: buffer bounds error")

func u16(b []byte) uint16 {
	_ = b[1] // Bounds check hint to compiler
	return uint16(b[0])<<8 | uint16(b[1])<<0
}

func u32(b []byte) uint32 {
	_ = b[3] // Bounds check hint to compiler
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])<<0
}

// binarySegm is a segment of byte data. We use it throughout this module to
// navigate the font's binary data. Out-of-bounds access through the exported
// convenience methods yields 0, never a panic.
type binarySegm []byte

func (b binarySegm) Size() int {
	return len(b)
}

func (b binarySegm) Bytes() []byte {
	return b
}

// U16 returns the uint16 at byte index i, or 0 if i is out of bounds.
func (b binarySegm) U16(i int) uint16 {
	n, err := b.u16(i)
	if err != nil {
		return 0
	}
	return n
}

// U32 returns the uint32 at byte index i, or 0 if i is out of bounds.
func (b binarySegm) U32(i int) uint32 {
	n, err := b.u32(i)
	if err != nil {
		return 0
	}
	return n
}

// view returns n bytes at the given offset.
// The byte segment returned is a sub-slice of b.
func (b binarySegm) view(offset, n int) (binarySegm, error) {
	if offset < 0 || n <= 0 || offset+n > len(b) {
		return nil, errBufferBounds
	}
	return b[offset : offset+n], nil
}

// from returns the tail of b starting at offset.
func (b binarySegm) from(offset int) (binarySegm, error) {
	if offset < 0 || offset >= len(b) {
		return nil, errBufferBounds
	}
	return b[offset:], nil
}

// u16 returns the uint16 in b at the relative offset i.
func (b binarySegm) u16(i int) (uint16, error) {
	buf, err := b.view(i, 2)
	if err != nil {
		return 0, err
	}
	return u16(buf), nil
}

// u32 returns the uint32 in b at the relative offset i.
func (b binarySegm) u32(i int) (uint32, error) {
	buf, err := b.view(i, 4)
	if err != nil {
		return 0, err
	}
	return u32(buf), nil
}

// glyphs interprets b as a sequence of big-endian glyph IDs.
func (b binarySegm) glyphs() []GlyphIndex {
	glyphs := make([]GlyphIndex, len(b)/2)
	for i := range glyphs {
		glyphs[i] = GlyphIndex(u16(b[i*2:]))
	}
	return glyphs
}

// --- Ranges of glyphs ------------------------------------------------------

// GlyphRange is a type frequently used by sub-tables of layout tables.
// If an input glyph g is contained in the range, an index and true is returned,
// false otherwise.
type GlyphRange interface {
	Match(g GlyphIndex) (int, bool) // is glyph ID g in range?
}

type glyphRangeArray struct {
	count int // number of glyph keys
	data  binarySegm
}

// glyphRangeArrays have entries stored as a block of consecutive keys.
// glyphRangeArrays return the index of the key in the range table.
// 0 is a valid return value.
func (r *glyphRangeArray) Match(g GlyphIndex) (int, bool) {
	for i := 0; i < r.count; i++ {
		k, err := r.data.u16(i * 2)
		if err != nil {
			return 0, false
		} else if GlyphIndex(k) == g {
			return i, true
		}
	}
	return 0, false
}

type rangeRecord struct {
	from, to GlyphIndex
	index    uint16
}

type glyphRangeRecords struct {
	count int // number of range records
	data  binarySegm
}

// glyphRangeRecords have entries stored as range records.
// glyphRangeRecords return the index of the key in the range table.
// 0 is a valid return value.
func (r *glyphRangeRecords) Match(g GlyphIndex) (int, bool) {
	const recsize = 2 + 2 + 2
	record := rangeRecord{}
	for i := 0; i < r.count; i++ {
		rec, err := r.data.view(i*recsize, recsize)
		if err != nil {
			return 0, false
		}
		record.from = GlyphIndex(u16(rec))
		record.to = GlyphIndex(u16(rec[2:]))
		record.index = u16(rec[4:])
		if record.from <= g && g <= record.to {
			return int(record.index) + int(g-record.from), true
		}
	}
	return 0, false
}

// --- Links -----------------------------------------------------------------

// link is an offset relative to a base segment, as found all over OpenType
// tables. A zero offset is a NULL link.
type link struct {
	base   binarySegm
	offset uint32
	target string
}

func parseLink16(b binarySegm, at int, base binarySegm, target string) (link, error) {
	n, err := b.u16(at)
	if err != nil {
		return link{target: target}, err
	}
	return link{base: base, offset: uint32(n), target: target}, nil
}

func parseLink32(b binarySegm, at int, base binarySegm, target string) (link, error) {
	n, err := b.u32(at)
	if err != nil {
		return link{target: target}, err
	}
	return link{base: base, offset: n, target: target}, nil
}

func (l link) IsNull() bool {
	return l.offset == 0
}

// jump follows the link. A NULL link or a link pointing outside its base
// results in an error.
func (l link) jump() (binarySegm, error) {
	if l.IsNull() {
		return nil, fmt.Errorf("NULL link to %s", l.target)
	}
	if int64(l.offset) >= int64(len(l.base)) {
		return nil, fmt.Errorf("link to %s out of bounds: offset %d, size %d", l.target, l.offset, len(l.base))
	}
	return l.base[l.offset:], nil
}

// --- Arrays ----------------------------------------------------------------

// array is a type for a linear sequence of equal-sized records.
type array struct {
	name       string
	recordSize int
	length     int
	loc        binarySegm
}

func viewArray16(b binarySegm) array {
	if b.Size()&0x1 != 0 {
		tracer().Errorf("cannot create array16: size not aligned")
		return array{}
	}
	return array{
		recordSize: 2,
		length:     b.Size() / 2,
		loc:        b,
	}
}

func viewArray(b binarySegm, recordSize int) array {
	return array{
		recordSize: recordSize,
		length:     b.Size() / recordSize,
		loc:        b,
	}
}

// parseArray reads a uint16 count at offset, followed by count records of
// recordSize bytes each.
func parseArray(b binarySegm, offset int, recordSize int, name string) (array, error) {
	n, err := b.u16(offset)
	if err != nil {
		return array{name: name}, err
	}
	required, err := checkedMulInt(int(n), recordSize)
	if err == nil {
		required, err = checkedAddInt(required, offset+2)
	}
	if err != nil || required > len(b) {
		return array{name: name}, fmt.Errorf("array %s: count %d * recordSize %d requires %d bytes, have %d",
			name, n, recordSize, required, len(b))
	}
	return array{
		name:       name,
		recordSize: recordSize,
		length:     int(n),
		loc:        b[offset+2 : required],
	}, nil
}

func parseArray16(b binarySegm, offset int, name string) (array, error) {
	return parseArray(b, offset, 2, name)
}

// Size of array a in bytes.
func (a array) Size() int {
	return a.length * a.recordSize
}

// Len returns the number of entries in the list.
func (a array) Len() int {
	return a.length
}

// Get returns item #i as a byte segment, which will be empty if i is out of range.
func (a array) Get(i int) binarySegm {
	if i < 0 || i >= a.length {
		return binarySegm{}
	}
	b, _ := a.loc.view(i*a.recordSize, a.recordSize)
	return b
}

// glyphs returns the entries of a 16-bit array as glyph IDs.
func (a array) glyphs() []GlyphIndex {
	if a.recordSize != 2 {
		return nil
	}
	return a.loc[:a.Size()].glyphs()
}
