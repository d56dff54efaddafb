package svg

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"strconv"

	"github.com/w-h-a/rio/chart"
)

const (
	marginTop    = 56.0
	marginRight  = 16.0
	marginBottom = 40.0
	marginLeft   = 56.0
	gridLines    = 4
	innerRadius  = 60.0
	muted        = "#71717a"
)

type canvas struct {
	buf    bytes.Buffer
	layout chart.Layout
	opts   Options
	left   float64
	top    float64
	width  float64
	height float64
	scale  float64
}

// Render draws a layout as a standalone SVG document.
func Render(l chart.Layout, opts ...Option) []byte {
	options := NewOptions(opts...)

	c := &canvas{
		layout: l,
		opts:   options,
		left:   marginLeft,
		top:    marginTop,
		width:  float64(options.Width) - marginLeft - marginRight,
		height: float64(options.Height) - marginTop - marginBottom,
	}

	c.scale = niceCeiling(l.Max())

	fmt.Fprintf(&c.buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, options.Width, options.Height, options.Width, options.Height)
	fmt.Fprintf(&c.buf, `<rect x="0" y="0" width="%d" height="%d" fill="#ffffff"/>`, options.Width, options.Height)

	c.header()

	switch l.Kind {
	case chart.KindPie:
		c.pie()
	case chart.KindLine:
		c.grid()
		c.lines(false)
	case chart.KindArea:
		c.grid()
		c.lines(true)
	default:
		c.grid()
		c.bars()
	}

	c.buf.WriteString(`</svg>`)

	return c.buf.Bytes()
}

func (c *canvas) header() {
	if !c.opts.Text {
		return
	}

	fmt.Fprintf(&c.buf, `<text x="16" y="24" font-family="sans-serif" font-size="16" font-weight="600" fill="#09090b">%s</text>`, html.EscapeString(c.layout.Title))

	if c.layout.Description != "" {
		fmt.Fprintf(&c.buf, `<text x="16" y="42" font-family="sans-serif" font-size="12" fill="%s">%s</text>`, muted, html.EscapeString(c.layout.Description))
	}
}

func (c *canvas) grid() {
	for i := 0; i <= gridLines; i++ {
		value := c.scale * float64(i) / gridLines
		y := c.y(value)

		fmt.Fprintf(&c.buf, `<path d="M%s %sH%s" stroke="%s" stroke-opacity="0.3" stroke-dasharray="3 3" fill="none"/>`, num(c.left), num(y), num(c.left+c.width), muted)

		if c.opts.Text {
			fmt.Fprintf(&c.buf, `<text x="%s" y="%s" text-anchor="end" font-family="sans-serif" font-size="12" fill="%s">%s</text>`, num(c.left-8), num(y+4), muted, html.EscapeString(tickValue(value)))
		}
	}

	if !c.opts.Text {
		return
	}

	for i, p := range c.layout.Points {
		x := c.center(i)
		fmt.Fprintf(&c.buf, `<text x="%s" y="%s" text-anchor="middle" font-family="sans-serif" font-size="12" fill="%s">%s</text>`, num(x), num(c.top+c.height+20), muted, html.EscapeString(p.Tick))
	}
}

func (c *canvas) bars() {
	n := len(c.layout.Points)
	if n == 0 {
		return
	}

	band := c.width / float64(n)
	group := band * 0.7
	series := len(c.layout.Series)
	barWidth := group / float64(max(series, 1))

	for i, p := range c.layout.Points {
		start := c.left + band*float64(i) + (band-group)/2

		for j, s := range c.layout.Series {
			color := s.Color
			if p.Color != "" {
				color = p.Color
			}

			x := start + barWidth*float64(j)
			y := c.y(p.Values[j])
			h := c.top + c.height - y

			fmt.Fprintf(&c.buf, `<path d="M%s %sh%sv%sh%sZ" fill="%s"/>`, num(x), num(y), num(barWidth), num(h), num(-barWidth), color)
		}
	}
}

func (c *canvas) lines(fill bool) {
	if len(c.layout.Points) == 0 {
		return
	}

	baseline := c.top + c.height

	for j, s := range c.layout.Series {
		var d bytes.Buffer

		for i, p := range c.layout.Points {
			cmd := "L"
			if i == 0 {
				cmd = "M"
			}
			fmt.Fprintf(&d, "%s%s %s", cmd, num(c.center(i)), num(c.y(p.Values[j])))
		}

		if fill {
			last := len(c.layout.Points) - 1
			fmt.Fprintf(&c.buf, `<path d="%sL%s %sL%s %sZ" fill="%s" fill-opacity="0.4" stroke="none"/>`, d.String(), num(c.center(last)), num(baseline), num(c.center(0)), num(baseline), s.Color)
		}

		fmt.Fprintf(&c.buf, `<path d="%s" fill="none" stroke="%s" stroke-width="2"/>`, d.String(), s.Color)
	}
}

func (c *canvas) pie() {
	total := c.layout.Total()
	if total <= 0 {
		return
	}

	cx := c.left + c.width/2
	cy := c.top + c.height/2
	outer := math.Min(c.width, c.height) / 2
	inner := math.Min(innerRadius, outer*0.6)

	angle := -math.Pi / 2

	for _, p := range c.layout.Points {
		if len(p.Values) == 0 || p.Values[0] <= 0 {
			continue
		}

		sweep := 2 * math.Pi * p.Values[0] / total
		fmt.Fprintf(&c.buf, `<path d="%s" fill="%s" stroke="#ffffff" stroke-width="1"/>`, ring(cx, cy, inner, outer, angle, angle+sweep), p.Color)
		angle += sweep
	}
}

// ring approximates an annular sector with straight segments so that
// full circles and tiny slices rasterize the same way.
func ring(cx, cy, inner, outer, from, to float64) string {
	steps := max(int(math.Ceil((to-from)/(math.Pi/90))), 1)

	var d bytes.Buffer

	for i := 0; i <= steps; i++ {
		a := from + (to-from)*float64(i)/float64(steps)
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&d, "%s%s %s", cmd, num(cx+outer*math.Cos(a)), num(cy+outer*math.Sin(a)))
	}

	for i := steps; i >= 0; i-- {
		a := from + (to-from)*float64(i)/float64(steps)
		fmt.Fprintf(&d, "L%s %s", num(cx+inner*math.Cos(a)), num(cy+inner*math.Sin(a)))
	}

	d.WriteString("Z")

	return d.String()
}

func (c *canvas) center(i int) float64 {
	band := c.width / float64(max(len(c.layout.Points), 1))
	return c.left + band*float64(i) + band/2
}

func (c *canvas) y(value float64) float64 {
	if value < 0 {
		value = 0
	}
	return c.top + c.height - c.height*value/c.scale
}

func niceCeiling(v float64) float64 {
	if v <= 0 {
		return 1
	}

	magnitude := math.Pow(10, math.Floor(math.Log10(v)))
	for _, step := range []float64{1, 2, 2.5, 5, 10} {
		if step*magnitude >= v {
			return step * magnitude
		}
	}

	return 10 * magnitude
}

func tickValue(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
