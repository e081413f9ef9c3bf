// Package scene lays out a board and its overlays as an ordered list of
// drawing primitives in canvas pixels. Rasterizers consume a Scene once.
package scene

import (
	"image/color"

	"github.com/park285/boardimage/internal/theme"
)

// Primitive is one of Board, Rect, Glow, Cross, Glyph, Arrow, Ring or Label.
type Primitive interface {
	primitive()
}

type RectRole uint8

const (
	RoleSquare RectRole = iota
	RoleLastMove
	RoleHighlight
)

// Rect is an axis aligned square. Square and last-move rects are opaque,
// highlights are blended.
type Rect struct {
	X, Y, Size int
	Fill       color.NRGBA
	Role       RectRole
}

// Board covers the square grid with the theme background image.
type Board struct {
	X, Y, Size int
}

// Glow is the radial check gradient, centred on its square.
type Glow struct {
	X, Y, Size int
	Color      color.NRGBA
}

// Cross marks a square with the "xx" glyph.
type Cross struct {
	X, Y, Size int
	Fill       color.NRGBA
}

type Glyph struct {
	Key        theme.GlyphKey
	X, Y, Size int
}

// Arrow is a shaft from Tail to Shaft followed by the triangular head
// Tip, Left, Right.
type Arrow struct {
	Tail, Shaft      Point
	Tip, Left, Right Point
	Width            float64
	Color            color.NRGBA
}

// Ring replaces an arrow whose endpoints coincide.
type Ring struct {
	Center Point
	Radius float64
	Width  float64
	Color  color.NRGBA
}

// Label is centred on X, Y.
type Label struct {
	Text     string
	X, Y     int
	FontSize int
	Color    color.NRGBA
}

func (Board) primitive() {}
func (Rect) primitive()  {}
func (Glow) primitive()  {}
func (Cross) primitive() {}
func (Glyph) primitive() {}
func (Arrow) primitive() {}
func (Ring) primitive()  {}
func (Label) primitive() {}

type Scene struct {
	Width      int
	Height     int
	Primitives []Primitive
	// Glyphs holds every glyph referenced by a Glyph primitive.
	Glyphs map[theme.GlyphKey]*theme.Glyph
	// Background is set when a Board primitive is present.
	Background *theme.Background
}

// GlyphCount reports how many pieces the scene draws.
func (s *Scene) GlyphCount() int {
	n := 0
	for _, p := range s.Primitives {
		if _, ok := p.(Glyph); ok {
			n++
		}
	}
	return n
}

// CrossPath is the outline of the mark drawn by Cross, in a 45 unit box.
const CrossPath = "M35.865 9.135a1.89 1.89 0 0 1 0 2.673L25.173 22.5l10.692 10.692a1.89 1.89 0 0 1 0 2.673 1.89 1.89 0 0 1-2.673 0L22.5 25.173 11.808 35.865a1.89 1.89 0 0 1-2.673 0 1.89 1.89 0 0 1 0-2.673L19.827 22.5 9.135 11.808a1.89 1.89 0 0 1 0-2.673 1.89 1.89 0 0 1 2.673 0L22.5 19.827 33.192 9.135a1.89 1.89 0 0 1 2.673 0z"

const CrossViewBox = 45
