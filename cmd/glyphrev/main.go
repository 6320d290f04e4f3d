/*
Command glyphrev inspects reverse glyph maps of OpenType fonts.

	glyphrev dump  <font> [--variant cv|ss|ssty|math|direct]
	glyphrev query <font> [glyphs...]
	glyphrev tags  <font>
	glyphrev fonts <font...>

Fonts are given as file paths or as names of installed system fonts.
Without glyph arguments, query reads glyph IDs interactively.
*/
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/npillmayer/glyphrev/internal/fontload"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
	"github.com/thatisuday/commando"
)

// tracer traces with key 'glyphrev.cli'
func tracer() tracing.Trace {
	return tracing.Select("glyphrev.cli")
}

// traceKeys are the trace keys of all packages the CLI drives.
var traceKeys = []string{"glyphrev.cli", "font.glyphrev", "font.opentype", "font.registry"}

func main() {
	initDisplay()
	initTracing()

	commando.
		SetExecutableName("glyphrev").
		SetVersion("v0.1.0").
		SetDescription("Map glyphs of OpenType fonts back to the characters they are derived from.")

	commando.
		Register("dump").
		SetDescription("Print the reverse glyph map of a font, ordered by code-point.").
		SetShortDescription("print reverse glyph map").
		AddArgument("font", "OpenType font file path or system font name", "").
		AddFlag("variant,v", "only entries of a variant kind: cv|ss|ssty|math|direct", commando.String, "all").
		AddFlag("trace,T", "trace level [Debug|Info|Error]", commando.String, "Error").
		SetAction(runDumpCommand)

	commando.
		Register("query").
		SetDescription("Look up glyph IDs in the reverse glyph map of a font. Without glyph IDs, read them interactively.").
		SetShortDescription("query glyph IDs").
		AddArgument("font", "OpenType font file path or system font name", "").
		AddArgument("glyphs...", "glyph IDs, decimal or hex (0x...)", "-").
		AddFlag("trace,T", "trace level [Debug|Info|Error]", commando.String, "Error").
		SetAction(runQueryCommand)

	commando.
		Register("tags").
		SetDescription("List the GSUB features of a font which contribute to its reverse glyph map.").
		SetShortDescription("list supported features").
		AddArgument("font", "OpenType font file path or system font name", "").
		AddFlag("trace,T", "trace level [Debug|Info|Error]", commando.String, "Error").
		SetAction(runTagsCommand)

	commando.
		Register("fonts").
		SetDescription("Build reverse glyph maps for a set of fonts in parallel and report their sizes.").
		SetShortDescription("build many fonts").
		AddArgument("fonts...", "OpenType font file paths or system font names", "").
		AddFlag("trace,T", "trace level [Debug|Info|Error]", commando.String, "Error").
		SetAction(runFontsCommand)

	commando.Parse(nil)
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func initTracing() {
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter": "go",
	}
	for _, key := range traceKeys {
		conf["trace."+key] = "Error"
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())
}

// setTraceLevel applies the --trace flag to all trace keys.
func setTraceLevel(flags map[string]commando.FlagValue) {
	s, err := flags["trace"].GetString()
	if err != nil {
		fatalf("invalid --trace flag: %v", err)
	}
	level, err := parseTraceLevel(s)
	if err != nil {
		fatalf("%v", err)
	}
	for _, key := range traceKeys {
		tracing.Select(key).SetTraceLevel(level)
	}
	tracer().Infof("Trace level is %s", s)
}

func parseTraceLevel(s string) (tracing.TraceLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return tracing.LevelDebug, nil
	case "info":
		return tracing.LevelInfo, nil
	case "error", "":
		return tracing.LevelError, nil
	}
	return tracing.LevelError, fmt.Errorf("invalid trace level: %s", s)
}

func mustLoadFont(arg string) *fontload.ScalableFont {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		fatalf("font is required")
	}
	path, err := fontload.Locate(arg)
	if err != nil {
		fatalf("%v", err)
	}
	f, err := fontload.LoadOpenTypeFont(path)
	if err != nil {
		fatalf("cannot load font: %v", err)
	}
	for _, e := range f.OT.CriticalErrors() {
		pterm.Error.Println(e.Error())
	}
	return f
}

func fatalf(format string, args ...interface{}) {
	pterm.Error.Printf("glyphrev: "+format+"\n", args...)
	os.Exit(1)
}
