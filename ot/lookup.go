package ot

import (
	"fmt"
	"iter"
	"sync"
)

// LookupListGraph is the typed lookup list of a GSUB table.
// Lookups and their subtables are instantiated lazily on first access.
type LookupListGraph struct {
	lookupOffsets []uint16
	lookupTables  []*LookupTable
	lookupOnce    []sync.Once

	raw binarySegm
	err error
}

// LookupTable is the typed lookup table model.
type LookupTable struct {
	Type          LayoutTableLookupType
	Flag          LayoutTableLookupFlag
	SubTableCount uint16

	subtableOffsets []uint16
	subtables       []*LookupNode
	subtableOnce    []sync.Once

	raw binarySegm
	err error
}

// LookupNode is a lookup-subtable node with shared metadata.
// GSub holds the typed payload for the subtable formats we interpret, and
// is nil for all others. Extension subtables are resolved transparently:
// LookupType, Format, Coverage and GSub of a node describe the wrapped subtable,
// while Extension records that a wrapper has been crossed.
type LookupNode struct {
	LookupType LayoutTableLookupType
	Format     uint16
	Coverage   Coverage
	GSub       *GSubLookupPayload
	Extension  bool

	raw binarySegm
	err error
}

// GSubLookupPayload is a typed payload for GSUB lookup-subtable variants.
// At most one pointer field is non-nil for a GSUB node.
type GSubLookupPayload struct {
	SingleFmt1    *GSubSingleFmt1Payload
	SingleFmt2    *GSubSingleFmt2Payload
	AlternateFmt1 *GSubAlternateFmt1Payload
}

// GSubSingleFmt1Payload: glyph IDs are computed by adding a delta to the
// covered glyph ID, modulo 65536.
type GSubSingleFmt1Payload struct {
	DeltaGlyphID int16
}

// GSubSingleFmt2Payload: substitutes are indexed by coverage index.
type GSubSingleFmt2Payload struct {
	SubstituteGlyphIDs []GlyphIndex
}

// GSubAlternateFmt1Payload: alternate sets are indexed by coverage index.
type GSubAlternateFmt1Payload struct {
	Alternates [][]GlyphIndex
}

// Len returns number of lookups.
func (lg *LookupListGraph) Len() int {
	if lg == nil {
		return 0
	}
	return len(lg.lookupOffsets)
}

// Lookup returns a lookup by index, lazily instantiated.
// Returns nil if i is not a valid index into the lookup list.
func (lg *LookupListGraph) Lookup(i int) *LookupTable {
	if lg == nil || i < 0 || i >= len(lg.lookupOffsets) {
		return nil
	}
	lg.lookupOnce[i].Do(func() {
		off := int(lg.lookupOffsets[i])
		if off <= 0 || off >= len(lg.raw) {
			lg.lookupTables[i] = &LookupTable{err: errBufferBounds}
			return
		}
		lg.lookupTables[i] = parseLookupTable(lg.raw[off:])
	})
	return lg.lookupTables[i]
}

// Range iterates lookups in declaration order.
func (lg *LookupListGraph) Range() iter.Seq2[int, *LookupTable] {
	return func(yield func(int, *LookupTable) bool) {
		if lg == nil {
			return
		}
		for i := range len(lg.lookupOffsets) {
			if !yield(i, lg.Lookup(i)) {
				return
			}
		}
	}
}

// Error returns an accumulated parse/validation error for the lookup list graph.
func (lg *LookupListGraph) Error() error {
	if lg == nil {
		return nil
	}
	return lg.err
}

// Len returns the number of subtables of the lookup.
func (lt *LookupTable) Len() int {
	if lt == nil {
		return 0
	}
	return len(lt.subtableOffsets)
}

// Subtable returns a lookup-subtable node by index, lazily instantiated.
func (lt *LookupTable) Subtable(i int) *LookupNode {
	if lt == nil || i < 0 || i >= len(lt.subtableOffsets) {
		return nil
	}
	lt.subtableOnce[i].Do(func() {
		off := int(lt.subtableOffsets[i])
		if off <= 0 || off >= len(lt.raw) {
			lt.subtables[i] = &LookupNode{LookupType: lt.Type, err: errBufferBounds}
			return
		}
		lt.subtables[i] = parseLookupNode(lt.raw[off:], lt.Type)
	})
	return lt.subtables[i]
}

// Range iterates lookup-subtables in declaration order.
func (lt *LookupTable) Range() iter.Seq2[int, *LookupNode] {
	return func(yield func(int, *LookupNode) bool) {
		if lt == nil {
			return
		}
		for i := range len(lt.subtableOffsets) {
			if !yield(i, lt.Subtable(i)) {
				return
			}
		}
	}
}

// Error returns an accumulated parse/validation error for this lookup table.
func (lt *LookupTable) Error() error {
	if lt == nil {
		return nil
	}
	return lt.err
}

// Error returns an accumulated parse/validation error for this lookup node.
// Payloads of nodes with errors must not be trusted to be complete.
func (ln *LookupNode) Error() error {
	if ln == nil {
		return nil
	}
	return ln.err
}

// --- Parsing ---------------------------------------------------------------

func parseLookupListGraph(layout binarySegm, offset int) *LookupListGraph {
	lg := &LookupListGraph{}
	if offset == 0 {
		return lg // NULL lookup list
	}
	lookupList, err := layout.from(offset)
	if err != nil {
		lg.err = fmt.Errorf("lookup list offset %d out of bounds", offset)
		return lg
	}
	lg.raw = lookupList
	lookupArray, err := parseArray16(lookupList, 0, "LookupList")
	if err != nil {
		lg.err = err
		return lg
	}
	if lookupArray.Len() > MaxLookupCount {
		lg.err = fmt.Errorf("lookup count %d exceeds limit %d", lookupArray.Len(), MaxLookupCount)
		return lg
	}
	lg.lookupOffsets = make([]uint16, lookupArray.Len())
	lg.lookupTables = make([]*LookupTable, lookupArray.Len())
	lg.lookupOnce = make([]sync.Once, lookupArray.Len())
	for i := 0; i < lookupArray.Len(); i++ {
		off := lookupArray.Get(i).U16(0)
		lg.lookupOffsets[i] = off
		if off == 0 || int(off) >= len(lookupList) {
			if lg.err == nil {
				lg.err = fmt.Errorf("lookup record %d has invalid offset %d (size %d)", i, off, len(lookupList))
			}
		}
	}
	return lg
}

func parseLookupTable(b binarySegm) *LookupTable {
	lt := &LookupTable{raw: b}
	if len(b) < 6 {
		lt.err = errBufferBounds
		return lt
	}
	lt.Type = LayoutTableLookupType(b.U16(0))
	lt.Flag = LayoutTableLookupFlag(b.U16(2))
	lt.SubTableCount = b.U16(4)
	subtables, err := parseArray16(b, 4, "Lookup")
	if err != nil {
		lt.err = err
		return lt
	}
	lt.subtableOffsets = make([]uint16, subtables.Len())
	lt.subtables = make([]*LookupNode, subtables.Len())
	lt.subtableOnce = make([]sync.Once, subtables.Len())
	for i := 0; i < subtables.Len(); i++ {
		off := subtables.Get(i).U16(0)
		lt.subtableOffsets[i] = off
		if (off == 0 || int(off) >= len(b)) && lt.err == nil {
			lt.err = fmt.Errorf("lookup subtable record %d has invalid offset %d (size %d)", i, off, len(b))
		}
	}
	return lt
}

func parseLookupNode(b binarySegm, lookupType LayoutTableLookupType) *LookupNode {
	return parseLookupNodeWithDepth(b, lookupType, 0)
}

func parseLookupNodeWithDepth(b binarySegm, lookupType LayoutTableLookupType, depth int) *LookupNode {
	node := &LookupNode{
		LookupType: lookupType,
		raw:        b,
	}
	if len(b) < 4 {
		node.err = errBufferBounds
		return node
	}
	node.Format = b.U16(0)
	switch lookupType {
	case GSubLookupTypeSingle:
		parseGSubType1(node)
	case GSubLookupTypeAlternate:
		parseGSubType3(node)
	case GSubLookupTypeExtensionSubs:
		return parseGSubType7(node, depth)
	default:
		tracer().Debugf("GSUB lookup subtable of type %s not interpreted", lookupType)
	}
	return node
}

func parseGSubType1(node *LookupNode) {
	cov, err := parseCoverageAt(node.raw, 2)
	if err != nil {
		setLookupNodeError(node, err)
		return
	}
	node.Coverage = cov
	switch node.Format {
	case 1:
		if len(node.raw) < 6 {
			setLookupNodeError(node, errBufferBounds)
			return
		}
		node.GSub = &GSubLookupPayload{SingleFmt1: &GSubSingleFmt1Payload{
			DeltaGlyphID: int16(node.raw.U16(4)),
		}}
	case 2:
		glyphs, err := parseArray16(node.raw, 4, "GSUB1.SubstituteGlyphIDs")
		if err != nil {
			setLookupNodeError(node, err)
			return
		}
		node.GSub = &GSubLookupPayload{SingleFmt2: &GSubSingleFmt2Payload{
			SubstituteGlyphIDs: glyphs.glyphs(),
		}}
	default:
		setLookupNodeError(node, fmt.Errorf("GSUB1 format %d unknown", node.Format))
	}
}

// parseGSubType3 reads an alternate substitution subtable. Alternate sets
// which cannot be located are left empty and flagged as an error on the node.
func parseGSubType3(node *LookupNode) {
	if node.Format != 1 {
		setLookupNodeError(node, fmt.Errorf("GSUB3 format %d unknown", node.Format))
		return
	}
	cov, err := parseCoverageAt(node.raw, 2)
	if err != nil {
		setLookupNodeError(node, err)
		return
	}
	node.Coverage = cov
	altSetOffsets, err := parseArray16(node.raw, 4, "GSUB3.AlternateSetOffsets")
	if err != nil {
		setLookupNodeError(node, err)
		return
	}
	payload := &GSubAlternateFmt1Payload{Alternates: make([][]GlyphIndex, altSetOffsets.Len())}
	for i := 0; i < altSetOffsets.Len(); i++ {
		off := int(altSetOffsets.Get(i).U16(0))
		if off == 0 || off >= len(node.raw) {
			setLookupNodeError(node, fmt.Errorf("GSUB3 alternate-set offset out of bounds: %d (size %d)", off, len(node.raw)))
			continue
		}
		glyphs, err := parseArray16(node.raw[off:], 0, "GSUB3.AlternateSet")
		if err != nil {
			setLookupNodeError(node, err)
			continue
		}
		payload.Alternates[i] = glyphs.glyphs()
	}
	node.GSub = &GSubLookupPayload{AlternateFmt1: payload}
}

// parseGSubType7 resolves an extension subtable to the subtable it wraps.
//
//	uint16    substFormat          Format identifier. Set to 1.
//	uint16    extensionLookupType  Lookup type of subtable referenced by extensionOffset
//	Offset32  extensionOffset      Offset to the extension subtable, relative to this subtable
func parseGSubType7(node *LookupNode, depth int) *LookupNode {
	if node.Format != 1 {
		setLookupNodeError(node, fmt.Errorf("GSUB7 format %d unknown", node.Format))
		return node
	}
	if depth >= MaxExtensionDepth {
		setLookupNodeError(node, fmt.Errorf("lookup subtable exceeds maximum extension depth %d", MaxExtensionDepth))
		return node
	}
	if len(node.raw) < 8 {
		setLookupNodeError(node, errBufferBounds)
		return node
	}
	actualType := LayoutTableLookupType(node.raw.U16(2))
	if actualType == GSubLookupTypeExtensionSubs {
		setLookupNodeError(node, fmt.Errorf("GSUB extension subtable cannot recursively reference extension type"))
		return node
	}
	lnk, err := parseLink32(node.raw, 4, node.raw, "GSUB7.Extension")
	if err == nil {
		var target binarySegm
		if target, err = lnk.jump(); err == nil {
			resolved := parseLookupNodeWithDepth(target, actualType, depth+1)
			resolved.Extension = true
			return resolved
		}
	}
	setLookupNodeError(node, err)
	return node
}

func setLookupNodeError(node *LookupNode, err error) {
	if node != nil && err != nil && node.err == nil {
		node.err = err
	}
}
