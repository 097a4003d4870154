package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/de-tools/fin-health/pkg/services/projector"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var ErrEmptyChart = errors.New("nothing to chart: all cash-flow values are zero")

type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// FormatFromPath picks the output format from the file extension, defaulting to SVG.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".png") {
		return FormatPNG
	}
	return FormatSVG
}

// ChartWriter draws the cash-flow pie chart of a report.
type ChartWriter struct {
	Width  int
	Height int
}

func NewChartWriter() *ChartWriter {
	return &ChartWriter{Width: 512, Height: 512}
}

func (cw *ChartWriter) Write(w io.Writer, format Format, slices []projector.Slice) error {
	values := make([]chart.Value, 0, len(slices))
	total := 0.0
	for _, s := range slices {
		magnitude := math.Abs(s.Value)
		total += magnitude
		values = append(values, chart.Value{
			Label: s.Label,
			Value: magnitude,
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex(strings.TrimPrefix(s.Color, "#")),
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 2,
			},
		})
	}
	if total == 0 {
		return ErrEmptyChart
	}

	pie := chart.PieChart{
		Width:  cw.Width,
		Height: cw.Height,
		Values: values,
	}

	provider := chart.SVG
	if format == FormatPNG {
		provider = chart.PNG
	}
	if err := pie.Render(provider, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// WriteFile renders the chart into path, choosing the format from its extension.
func (cw *ChartWriter) WriteFile(path string, slices []projector.Slice) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}

	if err := cw.Write(f, FormatFromPath(path), slices); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}
