package svg

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/w-h-a/rio/chart"
)

func layout(t *testing.T, raw chart.RawSpec) chart.Layout {
	t.Helper()
	spec, err := chart.Normalize(raw)
	require.NoError(t, err)
	return chart.NewLayout(spec)
}

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		raw      chart.RawSpec
		contains []string
	}{
		{
			name: "single series bar colors each bar",
			raw: chart.RawSpec{
				Mark:  "bar",
				Title: "Revenue <by> category",
				Data:  chart.RawData{Values: `[{"name":"Apparel","value":10},{"name":"Toys","value":5}]`},
			},
			contains: []string{`fill="#e76e50"`, `fill="#2a9d90"`, "Revenue &lt;by&gt; category", ">Apparel<"},
		},
		{
			name: "multi series line",
			raw: chart.RawSpec{
				Mark:     "line",
				Data:     chart.RawData{Values: `[{"month":"Jan","clicks":10,"opens":20},{"month":"Feb","clicks":15,"opens":25}]`},
				Encoding: &chart.Encoding{X: &chart.Channel{Field: "month"}},
			},
			contains: []string{`stroke="#e76e50"`, `stroke="#2a9d90"`, ">Chart<"},
		},
		{
			name: "area fills under the series",
			raw: chart.RawSpec{
				Mark: "area",
				Data: chart.RawData{Values: `[{"name":"Q1","value":3},{"name":"Q2","value":4}]`},
			},
			contains: []string{`fill-opacity="0.4"`},
		},
		{
			name: "pie",
			raw: chart.RawSpec{
				Mark: "pie",
				Data: chart.RawData{Values: `[{"name":"A","value":1},{"name":"B","value":3}]`},
			},
			contains: []string{`fill="#e76e50"`, `fill="#2a9d90"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := string(Render(layout(t, tt.raw)))

			require.True(t, strings.HasPrefix(out, "<svg"))
			require.True(t, strings.HasSuffix(out, "</svg>"))
			require.Contains(t, out, `viewBox="0 0 640 400"`)
			for _, s := range tt.contains {
				require.Contains(t, out, s)
			}
		})
	}
}

func TestRenderWithoutText(t *testing.T) {
	l := layout(t, chart.RawSpec{
		Mark:  "bar",
		Title: "Revenue",
		Data:  chart.RawData{Values: `[{"name":"Apparel","value":10}]`},
	})

	out := string(Render(l, WithText(false), WithSize(320, 200)))

	require.NotContains(t, out, "<text")
	require.Contains(t, out, `viewBox="0 0 320 200"`)
}

func TestRasterize(t *testing.T) {
	l := layout(t, chart.RawSpec{
		Mark: "bar",
		Data: chart.RawData{Values: `[{"name":"Apparel","value":10},{"name":"Toys","value":5}]`},
	})

	out, err := Rasterize(Render(l, WithText(false)))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, 640, img.Bounds().Dx())
	require.Equal(t, 400, img.Bounds().Dy())

	r, g, _, _ := img.At(198, 208).RGBA()
	require.Greater(t, r>>8, uint32(200))
	require.Less(t, g>>8, uint32(150))
}

func TestRasterizeRejectsGarbage(t *testing.T) {
	_, err := Rasterize([]byte("not svg"))
	require.Error(t, err)
}

func TestRasterizeRejectsOversized(t *testing.T) {
	_, err := Rasterize([]byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 8000 8000"><rect width="10" height="10" fill="#000"/></svg>`))
	require.ErrorIs(t, err, ErrTooLarge)
}
