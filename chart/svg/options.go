package svg

// MaxSize bounds either side of a drawing, in pixels.
const MaxSize = 4096

type Option func(*Options)

type Options struct {
	Width  int
	Height int
	Text   bool
}

func WithSize(width, height int) Option {
	return func(o *Options) {
		o.Width = width
		o.Height = height
	}
}

// WithText toggles titles and axis labels. The rasterizer has no font
// support, so PNG output is rendered without them.
func WithText(text bool) Option {
	return func(o *Options) {
		o.Text = text
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Width:  640,
		Height: 400,
		Text:   true,
	}

	for _, fn := range opts {
		fn(&options)
	}

	if options.Width <= 0 {
		options.Width = 640
	}

	if options.Height <= 0 {
		options.Height = 400
	}

	return options
}
