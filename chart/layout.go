package chart

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samber/lo"
)

const (
	KindBar  = "bar"
	KindLine = "line"
	KindArea = "area"
	KindPie  = "pie"
)

const maxTickLength = 12

// Palette holds the chart-1 through chart-5 colors.
var Palette = []string{"#e76e50", "#2a9d90", "#274754", "#e8c468", "#f4a462"}

type Series struct {
	Field string `json:"field"`
	Label string `json:"label"`
	Color string `json:"color"`
}

type Point struct {
	Label  string    `json:"label"`
	Tick   string    `json:"tick"`
	Values []float64 `json:"values"`
	Color  string    `json:"color,omitempty"`
}

// Layout is a Spec resolved into what gets drawn.
type Layout struct {
	Kind        string   `json:"kind"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	XField      string   `json:"xField"`
	XLabel      string   `json:"xLabel"`
	YField      string   `json:"yField"`
	Series      []Series `json:"series"`
	Points      []Point  `json:"points"`
}

func NewLayout(spec Spec) Layout {
	kind := resolveKind(spec.Mark)

	l := Layout{
		Kind:        kind,
		Title:       spec.Title,
		Description: spec.Description,
		XField:      spec.XField(),
		YField:      spec.YField(),
	}

	if l.Title == "" {
		l.Title = "Chart"
	}

	l.XLabel = Label(l.XField)

	fields := spec.NumericFields()
	if kind == KindPie || len(fields) == 0 {
		fields = []string{l.YField}
	}

	l.Series = lo.Map(fields, func(field string, i int) Series {
		return Series{Field: field, Label: Label(field), Color: Color(i)}
	})

	perPoint := kind == KindPie || (kind == KindBar && len(l.Series) == 1)

	for i, record := range spec.Data.Values {
		p := Point{Values: make([]float64, len(l.Series))}

		if record != nil {
			x, _ := record.Get(l.XField)
			if x == nil && kind == KindPie {
				x, _ = record.Get(DefaultXField)
			}
			if x == nil && kind == KindPie {
				x = fmt.Sprintf("Item %d", i)
			}
			p.Label = display(x)

			for j, s := range l.Series {
				v, _ := record.Get(s.Field)
				p.Values[j], _ = number(v)
			}
		}

		p.Tick = Tick(p.Label)

		if perPoint {
			p.Color = Color(i)
		}

		l.Points = append(l.Points, p)
	}

	return l
}

// Max is the largest value across all series, used to scale the y-axis.
func (l Layout) Max() float64 {
	top := 0.0
	for _, p := range l.Points {
		for _, v := range p.Values {
			if v > top {
				top = v
			}
		}
	}
	return top
}

func (l Layout) Total() float64 {
	return lo.SumBy(l.Points, func(p Point) float64 {
		if len(p.Values) == 0 || p.Values[0] < 0 {
			return 0
		}
		return p.Values[0]
	})
}

func Color(i int) string {
	return Palette[i%len(Palette)]
}

// Label turns a field name like total_revenue into "Total revenue".
func Label(field string) string {
	if field == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(field)
	return string(unicode.ToUpper(r)) + strings.ReplaceAll(field[size:], "_", " ")
}

func Tick(label string) string {
	runes := []rune(label)
	if len(runes) > maxTickLength {
		return string(runes[:maxTickLength]) + "..."
	}
	return label
}

func resolveKind(mark string) string {
	switch mark {
	case MarkLine:
		return KindLine
	case MarkArea:
		return KindArea
	case MarkPie, MarkArc:
		return KindPie
	default:
		return KindBar
	}
}

func display(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
