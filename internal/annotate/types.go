// Package annotate turns raw request parameters into the overlays and render
// options applied to a parsed board.
package annotate

import (
	"strings"

	"github.com/park285/boardimage/internal/position"
	"github.com/park285/boardimage/internal/theme"
	"github.com/park285/boardimage/pkg/boarddto"
)

type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat is case-insensitive. Anything but svg or png is an
// UnsupportedFormat error.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case FormatSVG:
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	}
	return "", boarddto.UnsupportedFormat(raw)
}

func (f Format) ContentType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatSVG:
		return "image/svg+xml"
	}
	return "application/octet-stream"
}

// Orientation names the side drawn at the bottom of the image.
type Orientation uint8

const (
	LightBottom Orientation = iota
	DarkBottom
)

func (o Orientation) Flip() Orientation {
	if o == DarkBottom {
		return LightBottom
	}
	return DarkBottom
}

func (o Orientation) String() string {
	if o == DarkBottom {
		return "black"
	}
	return "white"
}

type Move struct {
	From position.Square
	To   position.Square
}

type Arrow struct {
	From  position.Square
	To    position.Square
	Color string
}

// Set is the ordered overlay list drawn on top of the board.
type Set struct {
	Highlights  []position.Square
	Arrow       *Arrow
	LastMove    *Move
	Check       *position.Square
	Marks       []position.Square
	Orientation Orientation
}

type Options struct {
	SquareSize  int
	Theme       *theme.Theme
	Format      Format
	Coordinates bool
}
