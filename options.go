package glyphrev

// Options control which sources Build loads into a reverse glyph map.
type Options struct {
	IncludeDirect bool // record cmap glyphs as direct variants of their code-point
	SkipMath      bool // ignore the MATH table
	SkipGSUB      bool // ignore the GSUB table
}

// Option is a functional option for Build.
type Option func(*Options)

// NewOptions returns the default options with opts applied.
// By default all sources are loaded, including direct entries.
func NewOptions(opts ...Option) Options {
	options := Options{IncludeDirect: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	return options
}

// WithoutDirect leaves out the glyphs of the character map itself.
func WithoutDirect() Option {
	return func(o *Options) { o.IncludeDirect = false }
}

// WithoutMath leaves out MATH size variants.
func WithoutMath() Option {
	return func(o *Options) { o.SkipMath = true }
}

// WithoutGSUB leaves out glyphs produced by GSUB features.
func WithoutGSUB() Option {
	return func(o *Options) { o.SkipGSUB = true }
}

// WithOptions replaces all options at once.
func WithOptions(options Options) Option {
	return func(o *Options) { *o = options }
}
