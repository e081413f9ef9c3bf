// Package raster encodes a composed scene as an SVG document or a PNG image.
package raster

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/park285/boardimage/internal/annotate"
	"github.com/park285/boardimage/internal/scene"
	"github.com/park285/boardimage/pkg/boarddto"
)

// Render encodes sc. Output is identical for identical scenes.
func Render(sc *scene.Scene, format annotate.Format) ([]byte, error) {
	if sc == nil || sc.Width <= 0 || sc.Height <= 0 {
		return nil, boarddto.RenderFailure(nil, "empty scene")
	}
	switch format {
	case annotate.FormatSVG:
		return renderSVG(sc)
	case annotate.FormatPNG:
		return renderPNG(sc)
	}
	return nil, boarddto.UnsupportedFormat(string(format))
}

type gradientStop struct {
	offset  float64
	color   color.NRGBA
	opacity float64
}

// glowStops shades the check colour towards its darker rim. With the default
// red this yields #ff0000, #e70000 and #9e0000.
func glowStops(c color.NRGBA) []gradientStop {
	shade := func(f float64) color.NRGBA {
		return color.NRGBA{
			R: uint8(math.Round(float64(c.R) * f)),
			G: uint8(math.Round(float64(c.G) * f)),
			B: uint8(math.Round(float64(c.B) * f)),
			A: 0xff,
		}
	}
	op := float64(c.A) / 255
	return []gradientStop{
		{offset: 0, color: shade(1), opacity: op},
		{offset: 0.5, color: shade(231.0 / 255), opacity: op},
		{offset: 1, color: shade(158.0 / 255), opacity: 0},
	}
}

// num prints v with at most three decimals and no trailing zeros.
func num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
