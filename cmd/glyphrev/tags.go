package main

import (
	"fmt"

	"github.com/npillmayer/glyphrev"
	"github.com/npillmayer/glyphrev/ot"
	"github.com/npillmayer/glyphrev/revmap"
	"github.com/pterm/pterm"
	"github.com/thatisuday/commando"
)

func runTagsCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	setTraceLevel(flags)
	f := mustLoadFont(args["font"].Value)
	data := tagsTable(f.OT)
	if len(data) == 1 {
		pterm.Info.Printf("%s has no supported features\n", f.Fontname)
		return
	}
	pterm.Info.Printf("%s: %d supported features\n", f.Fontname, len(data)-1)
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// tagsTable lists the supported features of a font in the font's order.
// The first row is the header.
func tagsTable(otf *ot.Font) [][]string {
	data := [][]string{{"Feature", "Variant", "Lookups"}}
	for _, f := range glyphrev.SupportedFeatures(otf) {
		v := revmap.ClassifyTag(f.Tag).MustUnwrap()
		data = append(data, []string{f.Tag.String(), v.Kind().String(), fmt.Sprintf("%v", f.Lookups)})
	}
	return data
}
