/*
Package fontset manages reverse glyph maps for a set of fonts.

A Registry loads fonts, builds a frozen reverse glyph map for each of them
and stores it under the font's normalized name. Fonts may be loaded in
parallel; every font is built on its own goroutine with its own map.
Maps handed out by a registry are read-only and may be shared freely.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package fontset

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/derekparker/trie"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/npillmayer/glyphrev"
	"github.com/npillmayer/glyphrev/internal/fontload"
	"github.com/npillmayer/glyphrev/revmap"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.registry'
func tracer() tracing.Trace {
	return tracing.Select("font.registry")
}

// ErrDuplicate is returned when a font name is registered twice.
var ErrDuplicate = errors.New("font already registered")

// Entry is a registered font.
type Entry struct {
	Name     string // normalized name
	Fontname string // name as given or as stated by the font
	Filepath string // empty for fonts added from memory
	Map      *revmap.Map
	Stats    revmap.LoadStats
	Warnings int // warnings collected while parsing
}

// Registry holds the reverse glyph maps of loaded fonts.
// It is safe for concurrent use.
type Registry struct {
	options []glyphrev.Option
	mu      sync.Mutex
	names   *trie.Trie // normalized name → *Entry
}

// NewRegistry creates an empty registry. opts are applied to every font
// the registry builds.
func NewRegistry(opts ...glyphrev.Option) *Registry {
	return &Registry{
		options: opts,
		names:   trie.New(),
	}
}

// Add parses a font from memory, builds its reverse glyph map and registers
// it under name.
func (r *Registry) Add(name string, data []byte) error {
	f, err := fontload.ParseOpenTypeFont(data, name)
	if err != nil {
		tracer().Errorf("font %s: %v", name, err)
		return fmt.Errorf("font %s: %w", name, err)
	}
	f.Fontname = name
	return r.store(f)
}

// LoadFile loads a font file, builds its reverse glyph map and registers it
// under the font's full name (or the file name, if the font does not tell).
func (r *Registry) LoadFile(path string) error {
	f, err := fontload.LoadOpenTypeFont(path)
	if err != nil {
		tracer().Errorf("%v", err)
		return err
	}
	return r.store(f)
}

// LoadAll loads a set of font files in parallel, one goroutine per font.
// Errors of all fonts are joined. Once ctx is done, no further files are
// scheduled; files already being loaded are completed.
func (r *Registry) LoadAll(ctx context.Context, paths []string) error {
	errs := make([]error, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			errs[i] = fmt.Errorf("font file %s not loaded: %w", path, err)
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = r.LoadFile(path)
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

func (r *Registry) store(f *fontload.ScalableFont) error {
	m, stats := glyphrev.Build(f.OT, r.options...)
	entry := &Entry{
		Name:     NormalizeFontname(f.Fontname),
		Fontname: f.Fontname,
		Filepath: f.Filepath,
		Map:      m,
		Stats:    stats,
		Warnings: len(f.OT.Warnings()),
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.names.Find(entry.Name); ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, entry.Name)
	}
	r.names.Add(entry.Name, entry)
	tracer().Infof("registry stores font %s as %s with %d glyphs", f.Fontname, entry.Name, m.Len())
	return nil
}

// Entry returns the registered font for name.
func (r *Registry) Entry(name string) (*Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	node, ok := r.names.Find(NormalizeFontname(name))
	if !ok {
		return nil, false
	}
	entry, ok := node.Meta().(*Entry)
	return entry, ok
}

// Map returns the reverse glyph map of a registered font.
func (r *Registry) Map(name string) (*revmap.Map, bool) {
	if entry, ok := r.Entry(name); ok {
		return entry.Map, true
	}
	return nil, false
}

// Names returns the normalized names of all registered fonts, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	names := r.names.Keys()
	r.mu.Unlock()
	slices.Sort(names)
	return names
}

// Find returns the names of registered fonts starting with pattern. If no
// name starts with pattern, names containing its characters in order are
// returned, e.g. "lmr10" finds "lmroman10-regular".
func (r *Registry) Find(pattern string) []string {
	pattern = NormalizeFontname(pattern)
	r.mu.Lock()
	found := r.names.PrefixSearch(pattern)
	r.mu.Unlock()
	if len(found) == 0 {
		found = fuzzy.FindFold(pattern, r.Names())
	}
	slices.Sort(found)
	return found
}

// NormalizeFontname returns the registry key for a font name.
func NormalizeFontname(fname string) string {
	fname = strings.TrimSpace(fname)
	fname = strings.ReplaceAll(fname, " ", "_")
	return strings.ToLower(fname)
}
