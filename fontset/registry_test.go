package fontset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/glyphrev"
	"github.com/npillmayer/glyphrev/internal/fontbuild"
	"github.com/npillmayer/glyphrev/ot"
	"github.com/npillmayer/glyphrev/revmap"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/suite"
)

type RegistryTestEnviron struct {
	suite.Suite
	dir   string
	paths []string
}

func TestRegistryFunctions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.registry")
	defer teardown()
	//
	suite.Run(t, new(RegistryTestEnviron))
}

// testFont maps 'a'+i to glyph 1 and lets ss01 substitute it by glyph 2+i.
func testFont(i int) []byte {
	return fontbuild.Font{
		CMap:      map[rune]uint16{rune('a' + i): 1},
		NumGlyphs: 40,
		GSUB: fontbuild.GSUB(
			[]fontbuild.Feature{{Tag: "ss01", Lookups: []uint16{0}}},
			[]fontbuild.Lookup{{Type: 1, Subtables: [][]byte{
				fontbuild.SingleSubst2(fontbuild.Coverage1(1), uint16(2+i)),
			}}},
		),
	}.Build()
}

func (env *RegistryTestEnviron) SetupSuite() {
	env.T().Log("Setting up test suite")
	tracing.Select("font.registry").SetTraceLevel(tracing.LevelError)
	tracing.Select("font.glyphrev").SetTraceLevel(tracing.LevelError)
	env.dir = env.T().TempDir()
	for i := range 8 {
		path := filepath.Join(env.dir, fmt.Sprintf("Test Font %d.otf", i))
		env.Require().NoError(os.WriteFile(path, testFont(i), 0o644))
		env.paths = append(env.paths, path)
	}
}

func (env *RegistryTestEnviron) TearDownSuite() {
	env.T().Log("Tearing down test suite")
}

func (env *RegistryTestEnviron) TestLoadAllBuildsSeparateMaps() {
	r := NewRegistry()
	env.Require().NoError(r.LoadAll(context.Background(), env.paths))
	names := r.Names()
	env.Require().Len(names, len(env.paths))
	env.Equal("test_font_0", names[0])
	ss1, _ := revmap.StylisticSet(1)
	seen := make(map[*revmap.Map]bool)
	for i := range env.paths {
		m, ok := r.Map(fmt.Sprintf("Test Font %d", i))
		env.Require().True(ok)
		env.True(m.Frozen())
		env.False(seen[m], "maps must not be shared")
		seen[m] = true
		env.Equal(revmap.Origin{Codepoint: rune('a' + i), Variant: ss1}, m.Query(ot.GlyphIndex(2+i)).MustUnwrap())
	}
}

func (env *RegistryTestEnviron) TestGlyphsBeyondGlyphCountLoad() {
	data := fontbuild.Font{CMap: map[rune]uint16{'a': 5, 'b': 50}, NumGlyphs: 10}.Build()
	path := filepath.Join(env.T().TempDir(), "Overshooting.otf")
	env.Require().NoError(os.WriteFile(path, data, 0o644))
	r := NewRegistry()
	env.Require().NotPanics(func() {
		env.NoError(r.LoadAll(context.Background(), []string{path}))
	})
	entry, ok := r.Entry("Overshooting")
	env.Require().True(ok)
	env.Equal(1, entry.Map.Len())
	env.Equal(rune('a'), entry.Map.Query(5).MustUnwrap().Codepoint)
	env.Greater(entry.Warnings, 0)
}

func (env *RegistryTestEnviron) TestDuplicateNames() {
	r := NewRegistry()
	env.Require().NoError(r.Add("Dup", testFont(0)))
	err := r.Add("dup", testFont(1))
	env.True(errors.Is(err, ErrDuplicate))
	m, ok := r.Map("DUP")
	env.Require().True(ok)
	env.Equal(rune('a'), m.Query(1).MustUnwrap().Codepoint, "first font is kept")
}

func (env *RegistryTestEnviron) TestLoadErrorsAreJoined() {
	r := NewRegistry()
	broken := filepath.Join(env.dir, "broken.otf")
	env.Require().NoError(os.WriteFile(broken, []byte("not a font"), 0o644))
	missing := filepath.Join(env.dir, "missing.otf")
	err := r.LoadAll(context.Background(), []string{env.paths[0], broken, missing})
	env.Require().Error(err)
	env.Contains(err.Error(), "broken.otf")
	env.True(errors.Is(err, os.ErrNotExist))
	env.Equal([]string{"test_font_0"}, r.Names())
}

func (env *RegistryTestEnviron) TestCanceledContext() {
	r := NewRegistry()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := r.LoadAll(ctx, env.paths)
	env.True(errors.Is(err, context.Canceled))
	env.Empty(r.Names())
}

func (env *RegistryTestEnviron) TestOptionsArePassedOn() {
	r := NewRegistry(glyphrev.WithoutDirect())
	env.Require().NoError(r.Add("No Direct", testFont(3)))
	entry, ok := r.Entry("no direct")
	env.Require().True(ok)
	env.Equal("no_direct", entry.Name)
	env.Equal("No Direct", entry.Fontname)
	env.Equal(1, entry.Map.Len())
	env.Equal(1, entry.Stats.Inserted)
	_, ok = r.Map("unknown")
	env.False(ok)
}

func (env *RegistryTestEnviron) TestFind() {
	r := NewRegistry()
	env.Require().NoError(r.Add("LMRoman10 Regular", testFont(0)))
	env.Require().NoError(r.Add("LMRoman10 Bold", testFont(1)))
	env.Require().NoError(r.Add("Other", testFont(2)))
	env.Equal([]string{"lmroman10_bold", "lmroman10_regular"}, r.Find("lmroman"))
	env.Equal([]string{"lmroman10_regular"}, r.Find("lmr10reg"))
	env.Empty(r.Find("xyz"))
}
