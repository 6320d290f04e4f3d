package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/glyphrev"
	"github.com/npillmayer/glyphrev/ot"
	"github.com/npillmayer/glyphrev/revmap"
	"github.com/pterm/pterm"
	"github.com/thatisuday/commando"
	"golang.org/x/text/unicode/runenames"
)

func runQueryCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	setTraceLevel(flags)
	f := mustLoadFont(args["font"].Value)
	m, _ := glyphrev.Build(f.OT)
	if arg := strings.TrimSpace(args["glyphs"].Value); arg != "" && arg != "-" {
		glyphs, err := parseGlyphs(arg)
		if err != nil {
			fatalf("%v", err)
		}
		data := [][]string{{"Glyph", "Code-point", "Char", "Name", "Variant"}}
		for _, g := range glyphs {
			data = append(data, queryRow(m, g))
		}
		pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		return
	}
	repl, err := readline.New("q> ")
	if err != nil {
		fatalf("%v", err)
	}
	defer repl.Close()
	pterm.Info.Printf("%s: %d glyphs mapped\n", f.Fontname, m.Len())
	pterm.Info.Println("Enter glyph IDs, quit with <ctrl>D")
	queryREPL(repl, m)
}

func queryREPL(repl *readline.Instance, m *revmap.Map) {
	for {
		line, err := repl.Readline()
		if err != nil { // io.EOF or interrupt
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		if line == "quit" {
			break
		}
		glyphs, err := parseGlyphs(line)
		if err != nil {
			pterm.Error.Println(err)
			continue
		}
		for _, g := range glyphs {
			pterm.Println(strings.Join(queryRow(m, g), "  "))
		}
	}
	pterm.Info.Println("Good bye!")
}

// parseGlyphs reads glyph IDs separated by commas or spaces. IDs may be
// given in decimal or, prefixed by 0x, in hex.
func parseGlyphs(s string) ([]ot.GlyphIndex, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	glyphs := make([]ot.GlyphIndex, 0, len(fields))
	for _, field := range fields {
		n, err := strconv.ParseUint(field, 0, 16)
		if err != nil {
			return nil, fmt.Errorf("not a glyph ID: %q", field)
		}
		glyphs = append(glyphs, ot.GlyphIndex(n))
	}
	return glyphs, nil
}

func queryRow(m *revmap.Map, g ot.GlyphIndex) []string {
	origin, ok := m.Query(g).Unwrap()
	if !ok {
		return []string{fmt.Sprintf("%d", g), "-", "", "", "unknown"}
	}
	r := origin.Codepoint
	return []string{
		fmt.Sprintf("%d", g), fmt.Sprintf("%U", r), printable(r), runenames.Name(r),
		origin.Variant.String(),
	}
}
