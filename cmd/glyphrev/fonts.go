package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/npillmayer/glyphrev/fontset"
	"github.com/npillmayer/glyphrev/internal/fontload"
	"github.com/pterm/pterm"
	"github.com/thatisuday/commando"
)

func runFontsCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	setTraceLevel(flags)
	var paths []string
	for _, arg := range strings.Split(args["fonts"].Value, ",") {
		if arg = strings.TrimSpace(arg); arg == "" {
			continue
		}
		path, err := fontload.Locate(arg)
		if err != nil {
			pterm.Error.Println(err)
			continue
		}
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		fatalf("no fonts to load")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	registry := fontset.NewRegistry()
	if err := registry.LoadAll(ctx, paths); err != nil {
		pterm.Error.Println(err)
	}
	pterm.DefaultTable.WithHasHeader().WithData(fontsTable(registry)).Render()
}

// fontsTable lists the fonts of a registry. The first row is the header.
func fontsTable(registry *fontset.Registry) [][]string {
	data := [][]string{{"Font", "Entries", "Features", "Skipped", "Dangling", "Warnings"}}
	for _, name := range registry.Names() {
		entry, ok := registry.Entry(name)
		if !ok {
			continue
		}
		data = append(data, []string{
			entry.Fontname,
			fmt.Sprintf("%d", entry.Map.Len()),
			fmt.Sprintf("%d", entry.Stats.Features),
			fmt.Sprintf("%d", entry.Stats.Skipped),
			fmt.Sprintf("%d", entry.Stats.Dangling),
			fmt.Sprintf("%d", entry.Warnings),
		})
	}
	return data
}
