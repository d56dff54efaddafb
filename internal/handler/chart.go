package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/w-h-a/rio/chart"
	"github.com/w-h-a/rio/chart/svg"
)

const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

type chartRequest struct {
	Spec chart.Spec `json:"spec"`
}

type chartHandler struct{}

// Handle draws the spec produced by render_chart. The png rendition carries
// no text.
func (h *chartHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req chartRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.Spec.Data.Values) == 0 {
		writeError(w, http.StatusBadRequest, chart.ErrMissingValues.Error())
		return
	}

	query := r.URL.Query()

	opts := []svg.Option{}
	width, werr := strconv.Atoi(query.Get("width"))
	height, herr := strconv.Atoi(query.Get("height"))
	if werr == nil && herr == nil && width > 0 && height > 0 {
		if width > svg.MaxSize || height > svg.MaxSize {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Chart size must not exceed %dx%d", svg.MaxSize, svg.MaxSize))
			return
		}
		opts = append(opts, svg.WithSize(width, height))
	}

	layout := chart.NewLayout(req.Spec)

	switch format := query.Get("format"); format {
	case "", FormatSVG:
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write(svg.Render(layout, opts...))
	case FormatPNG:
		out, err := svg.Rasterize(svg.Render(layout, append(opts, svg.WithText(false))...))
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to rasterize chart", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to render chart")
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(out)
	default:
		writeError(w, http.StatusBadRequest, "Unsupported format '"+format+"'. Must be one of: svg, png")
	}
}

func NewChartHandler() *chartHandler {
	return &chartHandler{}
}
