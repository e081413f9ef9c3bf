package scene

import (
	"image/color"
	"math"

	"github.com/park285/boardimage/internal/annotate"
	"github.com/park285/boardimage/internal/position"
	"github.com/park285/boardimage/internal/theme"
	"github.com/park285/boardimage/pkg/boarddto"
)

const (
	arrowHeadRatio   = 0.75
	arrowMarginRatio = 0.1
	arrowShaftRatio  = 0.2
	ringRatio        = 0.93
	ringStrokeRatio  = 0.07
	labelFontRatio   = 0.9
	labelOffsetRatio = 0.65
)

// Compose lays out board with the overlays in set. Primitives are emitted in
// paint order: squares, highlights, marks, check glow, pieces, arrow, labels.
// A theme background replaces the plain squares; last-move squares are still
// painted over it.
func Compose(board position.Board, set annotate.Set, opts annotate.Options) (*Scene, error) {
	th := opts.Theme
	if th == nil {
		return nil, boarddto.UnsupportedTheme("", "no theme selected")
	}
	if opts.SquareSize <= 0 {
		return nil, boarddto.InvalidOption(annotate.ParamSize, "", "square size must be positive")
	}
	l := Layout{SquareSize: opts.SquareSize, Orientation: set.Orientation}
	if opts.Coordinates {
		l.Margin = CoordinateMargin
	}
	pal := th.Palette
	c := &composer{layout: l, prims: make([]Primitive, 0, 64+board.Count()+16)}

	lastMove := map[position.Square]bool{}
	if set.LastMove != nil {
		lastMove[set.LastMove.From] = true
		lastMove[set.LastMove.To] = true
	}
	if th.Background != nil {
		c.add(Board{X: l.Margin, Y: l.Margin, Size: l.BoardSize()})
	}
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			sq := l.At(col, row)
			if th.Background != nil && !lastMove[sq] {
				continue
			}
			dark := (sq.File+sq.Rank)%2 == 0
			fill, role := pal.SquareLight, RoleSquare
			switch {
			case lastMove[sq] && dark:
				fill, role = pal.LastMoveDark, RoleLastMove
			case lastMove[sq]:
				fill, role = pal.LastMoveLight, RoleLastMove
			case dark:
				fill = pal.SquareDark
			}
			c.rect(sq, fill, role)
		}
	}

	for _, sq := range set.Highlights {
		c.rect(sq, pal.Highlight, RoleHighlight)
	}
	for _, sq := range set.Marks {
		x, y := l.Origin(sq)
		c.add(Cross{X: x, Y: y, Size: l.SquareSize, Fill: pal.Mark})
	}
	if set.Check != nil {
		if _, occupied := board.At(*set.Check); occupied {
			x, y := l.Origin(*set.Check)
			c.add(Glow{X: x, Y: y, Size: l.SquareSize, Color: pal.Check})
		}
	}

	glyphs := map[theme.GlyphKey]*theme.Glyph{}
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			sq := l.At(col, row)
			p, ok := board.At(sq)
			if !ok {
				continue
			}
			g, ok := th.Glyph(p)
			if !ok {
				key := theme.KeyOf(p)
				return nil, boarddto.UnsupportedTheme(th.Name, "glyph set %s has no %s glyph", th.Glyphs.Name, key.Code())
			}
			glyphs[g.Key] = g
			x, y := l.Origin(sq)
			c.add(Glyph{Key: g.Key, X: x, Y: y, Size: l.SquareSize})
		}
	}

	if a := set.Arrow; a != nil {
		clr, ok := pal.Arrows[a.Color]
		if !ok {
			return nil, boarddto.InvalidOption(annotate.ParamArrowColor, a.Color, "unknown arrow colour for theme %s", th.Name)
		}
		c.arrow(a.From, a.To, clr)
	}

	if opts.Coordinates {
		c.labels(pal.Coord)
	}

	size := l.CanvasSize()
	return &Scene{Width: size, Height: size, Primitives: c.prims, Glyphs: glyphs, Background: th.Background}, nil
}

type composer struct {
	layout Layout
	prims  []Primitive
}

func (c *composer) add(p Primitive) { c.prims = append(c.prims, p) }

func (c *composer) rect(sq position.Square, fill color.NRGBA, role RectRole) {
	x, y := c.layout.Origin(sq)
	c.add(Rect{X: x, Y: y, Size: c.layout.SquareSize, Fill: fill, Role: role})
}

func (c *composer) arrow(from, to position.Square, clr color.NRGBA) {
	sq := float64(c.layout.SquareSize)
	head := c.layout.Center(to)
	if from == to {
		c.add(Ring{Center: head, Radius: sq * ringRatio / 2, Width: sq * ringStrokeRatio, Color: clr})
		return
	}
	tail := c.layout.Center(from)
	markerSize := arrowHeadRatio * sq
	markerMargin := arrowMarginRatio * sq

	dx, dy := head.X-tail.X, head.Y-tail.Y
	hypot := math.Hypot(dx, dy)
	shaft := Point{
		X: head.X - dx*(markerSize+markerMargin)/hypot,
		Y: head.Y - dy*(markerSize+markerMargin)/hypot,
	}
	tip := Point{X: head.X - dx*markerMargin/hypot, Y: head.Y - dy*markerMargin/hypot}
	half := 0.5 * markerSize / hypot
	c.add(Arrow{
		Tail:  tail,
		Shaft: shaft,
		Tip:   tip,
		Left:  Point{X: shaft.X + dy*half, Y: shaft.Y - dx*half},
		Right: Point{X: shaft.X - dy*half, Y: shaft.Y + dx*half},
		Width: sq * arrowShaftRatio,
		Color: clr,
	})
}

func (c *composer) labels(clr color.NRGBA) {
	l := c.layout
	fontSize := int(float64(l.Margin) * labelFontRatio)
	offset := int(float64(fontSize) * labelOffsetRatio)
	far := l.Margin + l.BoardSize() + offset
	for col := 0; col < 8; col++ {
		text := string(rune('a' + l.At(col, 0).File))
		x := l.Margin + col*l.SquareSize + l.SquareSize/2
		for _, y := range []int{offset, far} {
			c.add(Label{Text: text, X: x, Y: y, FontSize: fontSize, Color: clr})
		}
	}
	for row := 0; row < 8; row++ {
		text := string(rune('1' + l.At(0, row).Rank))
		y := l.Margin + row*l.SquareSize + l.SquareSize/2
		for _, x := range []int{offset, far} {
			c.add(Label{Text: text, X: x, Y: y, FontSize: fontSize, Color: clr})
		}
	}
}
