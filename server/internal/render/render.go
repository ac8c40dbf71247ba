// Package render draws chart descriptors as PNG images with go-chart.
// The descriptors stay the source of truth; rendering is a pure function of
// a descriptor and an image size.
package render

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/aggregate"
)

// ErrEmpty is returned for descriptors with nothing to draw.
var ErrEmpty = errors.New("render: chart has no data")

// Image size limits.
const (
	DefaultWidth  = 800
	DefaultHeight = 500
	MinSide       = 200
	MaxSide       = 2000
)

// Size is an image size in pixels.
type Size struct {
	Width  int
	Height int
}

// Clamp fills zero sides with defaults and bounds the rest to
// [MinSide, MaxSide].
func (s Size) Clamp() Size {
	return Size{Width: clampSide(s.Width, DefaultWidth), Height: clampSide(s.Height, DefaultHeight)}
}

func clampSide(v, def int) int {
	switch {
	case v == 0:
		return def
	case v < MinSide:
		return MinSide
	case v > MaxSide:
		return MaxSide
	}
	return v
}

// pointStyle draws markers only, without connecting lines.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 0,
		StrokeColor: drawing.ColorTransparent,
		DotWidth:    5,
		DotColor:    col,
	}
}

// Proportion renders the outcome breakdown as a pie chart.
func Proportion(w io.Writer, c types.ProportionChart, size Size) error {
	values := make([]chart.Value, 0, len(c.Slices))
	for _, s := range c.Slices {
		if s.Value <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%d)", s.Label, s.Value),
			Value: float64(s.Value),
		})
	}
	if len(values) == 0 {
		return ErrEmpty
	}

	size = size.Clamp()
	pie := chart.PieChart{
		Title:  c.Title,
		Width:  size.Width,
		Height: size.Height,
		Values: values,
	}
	if err := pie.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render: pie: %w", err)
	}
	return nil
}

// Correlation renders the payload/outcome scatter, one colored series per
// booster category. domain fixes the x axis so charts stay comparable while
// the range control moves.
func Correlation(w io.Writer, c types.CorrelationChart, size Size, domain types.PayloadRange) error {
	if len(c.Points) == 0 {
		return ErrEmpty
	}

	minY, maxY := c.Points[0].Y, c.Points[0].Y
	byCategory := make(map[string]*chart.ContinuousSeries)
	categories := aggregate.Categories(c.Points)
	for i, cat := range categories {
		byCategory[cat] = &chart.ContinuousSeries{
			Name:  cat,
			Style: pointStyle(chart.GetDefaultColor(i)),
		}
	}
	for _, p := range c.Points {
		s := byCategory[p.ColorCategory]
		s.XValues = append(s.XValues, p.X)
		s.YValues = append(s.YValues, float64(p.Y))
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}

	series := make([]chart.Series, 0, len(categories))
	for _, cat := range categories {
		series = append(series, byCategory[cat])
	}

	ticks := make([]chart.Tick, 0, maxY-minY+1)
	for y := minY; y <= maxY; y++ {
		ticks = append(ticks, chart.Tick{Value: float64(y), Label: strconv.Itoa(y)})
	}

	domain = domain.Normalize()
	size = size.Clamp()
	ch := chart.Chart{
		Title:  c.Title,
		Width:  size.Width,
		Height: size.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16},
		},
		XAxis: chart.XAxis{
			Name:  c.AxisLabels.X,
			Range: &chart.ContinuousRange{Min: domain.Min, Max: domain.Max},
		},
		YAxis: chart.YAxis{
			Name:  c.AxisLabels.Y,
			Range: &chart.ContinuousRange{Min: float64(minY) - 0.5, Max: float64(maxY) + 0.5},
			Ticks: ticks,
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render: scatter: %w", err)
	}
	return nil
}
