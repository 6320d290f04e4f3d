package main

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/npillmayer/glyphrev"
	"github.com/npillmayer/glyphrev/ot"
	"github.com/npillmayer/glyphrev/revmap"
	"github.com/pterm/pterm"
	"github.com/thatisuday/commando"
	"golang.org/x/text/unicode/runenames"
)

func runDumpCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	setTraceLevel(flags)
	f := mustLoadFont(args["font"].Value)
	kind, err := flags["variant"].GetString()
	if err != nil {
		fatalf("invalid --variant flag: %v", err)
	}
	filter, err := parseVariantFilter(kind)
	if err != nil {
		fatalf("%v", err)
	}
	m, stats := glyphrev.Build(f.OT)
	pterm.Info.Printf("%s: %d glyphs mapped (%s)\n", f.Fontname, m.Len(), stats)
	data := dumpTable(m, filter)
	if len(data) == 1 {
		pterm.Info.Println("no entries")
		return
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// parseVariantFilter returns a predicate for the --variant flag.
func parseVariantFilter(s string) (func(revmap.Variant) bool, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "all" || s == "-" {
		return func(revmap.Variant) bool { return true }, nil
	}
	kinds := map[string]revmap.Kind{
		"direct": revmap.KindDirect,
		"ssty":   revmap.KindSsty,
		"math":   revmap.KindMath,
		"cv":     revmap.KindCharacterVariant,
		"ss":     revmap.KindStylisticSet,
	}
	if kind, ok := kinds[s]; ok {
		return func(v revmap.Variant) bool { return v.Kind() == kind }, nil
	}
	if v, ok := revmap.ClassifyTagString(s).Unwrap(); ok { // e.g. "cv03"
		return func(w revmap.Variant) bool { return w == v }, nil
	}
	return nil, fmt.Errorf("unknown variant kind: %s", s)
}

// dumpTable lists the entries of m grouped by code-point, in code-point order.
// The first row is the header.
func dumpTable(m *revmap.Map, filter func(revmap.Variant) bool) [][]string {
	byCodepoint := treemap.NewWith(utils.IntComparator)
	for g, origin := range m.Range() {
		if !filter(origin.Variant) {
			continue
		}
		key := int(origin.Codepoint)
		var entries []glyphEntry
		if v, found := byCodepoint.Get(key); found {
			entries = v.([]glyphEntry)
		}
		byCodepoint.Put(key, append(entries, glyphEntry{g, origin.Variant}))
	}
	data := [][]string{{"Code-point", "Char", "Name", "Glyph", "Variant"}}
	it := byCodepoint.Iterator()
	for it.Next() {
		r := rune(it.Key().(int))
		for _, e := range it.Value().([]glyphEntry) {
			data = append(data, []string{
				fmt.Sprintf("%U", r), printable(r), runenames.Name(r),
				fmt.Sprintf("%d", e.glyph), e.variant.String(),
			})
		}
	}
	return data
}

type glyphEntry struct {
	glyph   ot.GlyphIndex
	variant revmap.Variant
}

func printable(r rune) string {
	if unicode.IsPrint(r) {
		return string(r)
	}
	return ""
}
