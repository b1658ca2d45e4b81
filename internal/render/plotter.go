package render

import (
	"image/color"
	"math"

	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	bandAlpha    = 0.4
	gridAlpha    = 0.8
	circleSteps  = 120
	tierAngle    = math.Pi / 8
	labelPadding = 8
)

// radar implements plot.Plotter. It draws in canvas space around the center
// of the data area so the polar grid stays circular whatever the aspect ratio.
type radar struct {
	scores []float64
	labels []string
	bands  [4]color.NRGBA
	tiers  [4]string
}

type polar struct {
	center vg.Point
	radius vg.Length
}

// point maps a data-space (angle, radius) pair onto the canvas.
func (pl polar) point(theta, r float64) vg.Point {
	d := pl.radius * vg.Length((r-RadialMin)/(RadialMax-RadialMin))
	return vg.Point{
		X: pl.center.X + d*vg.Length(math.Cos(theta)),
		Y: pl.center.Y + d*vg.Length(math.Sin(theta)),
	}
}

func (pl polar) circle(r float64) []vg.Point {
	pts := make([]vg.Point, 0, circleSteps+1)
	for i := 0; i <= circleSteps; i++ {
		pts = append(pts, pl.point(2*math.Pi*float64(i)/circleSteps, r))
	}
	return pts
}

func (rd *radar) Plot(c draw.Canvas, _ *plot.Plot) {
	size := c.Size()
	radius := size.X
	if size.Y < radius {
		radius = size.Y
	}
	// room for the axis labels around the outer ring
	radius = radius/2 - vg.Points(48)

	pl := polar{
		center: vg.Point{X: (c.Min.X + c.Max.X) / 2, Y: (c.Min.Y + c.Max.Y) / 2},
		radius: radius,
	}
	angles, radii := ClosedPolygon(rd.scores)

	for i, band := range rd.bands {
		c.FillPolygon(withAlpha(band, bandAlpha), pl.circle(float64(i+1)))
	}

	grid := draw.LineStyle{Color: withAlpha(color.NRGBA{R: 255, G: 255, B: 255, A: 255}, gridAlpha), Width: vg.Points(0.8)}
	for i := 1; i <= 4; i++ {
		c.StrokeLines(grid, pl.circle(float64(i)))
	}
	for _, theta := range angles[:len(rd.scores)] {
		c.StrokeLine2(grid, pl.center.X, pl.center.Y, pl.point(theta, RadialMax).X, pl.point(theta, RadialMax).Y)
	}

	line := make([]vg.Point, len(angles))
	for i := range angles {
		line[i] = pl.point(angles[i], radii[i])
	}
	c.StrokeLines(draw.LineStyle{Color: darkRed, Width: vg.Points(1.5)}, line)

	marker := draw.GlyphStyle{Color: darkBlue, Radius: vg.Points(2.5), Shape: draw.CircleGlyph{}}
	for _, pt := range line[:len(rd.scores)] {
		c.DrawGlyph(marker, pt)
	}

	annotation := textStyle(10, xfont.WeightBold, color.Black)
	annotation.XAlign = text.XRight
	annotation.YAlign = text.YBottom
	for i, score := range rd.scores {
		c.FillText(annotation, pl.point(angles[i], score+annotationOffset), PercentLabel(score))
	}

	tier := textStyle(10, xfont.WeightNormal, color.Black)
	tier.XAlign = text.XLeft
	tier.YAlign = text.YCenter
	for i, name := range rd.tiers {
		c.FillText(tier, pl.point(tierAngle, float64(i+1)), name)
	}

	for i, label := range rd.labels {
		theta := angles[i]
		pt := pl.point(theta, RadialMax)
		pt.X += vg.Points(labelPadding) * vg.Length(math.Cos(theta))
		pt.Y += vg.Points(labelPadding) * vg.Length(math.Sin(theta))

		sty := textStyle(11, xfont.WeightNormal, color.Black)
		sty.XAlign, sty.YAlign = labelAlign(theta)
		c.FillText(sty, pt, label)
	}
}

// labelAlign anchors an axis label so it grows away from the circle.
func labelAlign(theta float64) (text.XAlignment, text.YAlignment) {
	cos, sin := math.Cos(theta), math.Sin(theta)

	x := text.XCenter
	switch {
	case cos > 0.1:
		x = text.XLeft
	case cos < -0.1:
		x = text.XRight
	}

	y := text.YCenter
	switch {
	case sin > 0.1:
		y = text.YBottom
	case sin < -0.1:
		y = text.YTop
	}
	return x, y
}

func textStyle(size float64, weight xfont.Weight, clr color.Color) text.Style {
	return text.Style{
		Color: clr,
		Font: font.Font{
			Typeface: "Liberation",
			Variant:  "Sans",
			Weight:   weight,
			Size:     vg.Points(size),
		},
		Handler: plot.DefaultTextHandler,
	}
}
