// Package render draws score vectors as radar charts.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/vg"
)

var ErrInvalidRenderInput = errors.New("invalid render input")

// DefaultTierNames label the radial ticks 1..4, worst to best.
var DefaultTierNames = [4]string{"Debe mejorar", "Regular", "Bueno", "Excelente"}

var (
	darkRed  = color.NRGBA{R: 139, A: 255}
	darkBlue = color.NRGBA{B: 139, A: 255}
)

// Input is what one chart needs. Scores[i] is plotted on the axis named Labels[i].
type Input struct {
	Scores     []float64
	Labels     []string
	Title      string
	BandColors []string
}

// Chart is a rendered radar chart and its PNG encoding.
type Chart struct {
	Plot *plot.Plot
	PNG  []byte
}

// Reader returns a reader over the PNG positioned at its first byte.
func (c *Chart) Reader() *bytes.Reader {
	return bytes.NewReader(c.PNG)
}

// WriteTo writes the PNG to w.
func (c *Chart) WriteTo(w io.Writer) (int64, error) {
	return c.Reader().WriteTo(w)
}

type Options struct {
	Width     vg.Length
	Height    vg.Length
	TierNames [4]string
}

type Option func(*Options)

func WithSize(width, height vg.Length) Option {
	return func(o *Options) {
		o.Width = width
		o.Height = height
	}
}

func WithTierNames(names [4]string) Option {
	return func(o *Options) {
		o.TierNames = names
	}
}

// RadarRenderer is stateless; one instance can serve every request.
type RadarRenderer struct {
	opts Options
}

func NewRadarRenderer(opts ...Option) *RadarRenderer {
	options := Options{
		Width:     8 * vg.Inch,
		Height:    8 * vg.Inch,
		TierNames: DefaultTierNames,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return &RadarRenderer{opts: options}
}

// Render draws the chart and encodes it as PNG.
func (r *RadarRenderer) Render(in Input) (*Chart, error) {
	bands, err := validate(in)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.HideAxes()
	p.Title.Text = in.Title
	p.Title.TextStyle.Color = darkBlue
	p.Title.TextStyle.Font = font.Font{
		Typeface: "Liberation",
		Variant:  "Sans",
		Weight:   xfont.WeightBold,
		Size:     vg.Points(16),
	}
	// clears the label of the axis at 90°
	p.Title.Padding = vg.Points(28)

	p.Add(&radar{
		scores: in.Scores,
		labels: in.Labels,
		bands:  bands,
		tiers:  r.opts.TierNames,
	})

	wt, err := p.WriterTo(r.opts.Width, r.opts.Height, "png")
	if err != nil {
		return nil, fmt.Errorf("create png writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	return &Chart{Plot: p, PNG: buf.Bytes()}, nil
}

func validate(in Input) ([4]color.NRGBA, error) {
	var bands [4]color.NRGBA
	if len(in.Scores) == 0 {
		return bands, fmt.Errorf("%w: no scores", ErrInvalidRenderInput)
	}
	if len(in.Scores) != len(in.Labels) {
		return bands, fmt.Errorf("%w: %d scores for %d labels", ErrInvalidRenderInput, len(in.Scores), len(in.Labels))
	}
	if len(in.BandColors) != len(bands) {
		return bands, fmt.Errorf("%w: need %d band colors, got %d", ErrInvalidRenderInput, len(bands), len(in.BandColors))
	}
	for i, s := range in.BandColors {
		c, err := parseHexColor(s)
		if err != nil {
			return bands, fmt.Errorf("%w: band %d: %v", ErrInvalidRenderInput, i+1, err)
		}
		bands[i] = c
	}
	return bands, nil
}

// parseHexColor parses "#RRGGBB".
func parseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("color %q is not #RRGGBB", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("color %q is not #RRGGBB", s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

func withAlpha(c color.NRGBA, alpha float64) color.NRGBA {
	c.A = uint8(alpha*255 + 0.5)
	return c
}
