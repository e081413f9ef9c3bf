package scene

import (
	"github.com/park285/boardimage/internal/annotate"
	"github.com/park285/boardimage/internal/position"
)

// CoordinateMargin is the label band drawn on each side when coordinates are
// enabled. It does not scale with the square size.
const CoordinateMargin = 15

type Point struct {
	X float64
	Y float64
}

// Layout maps board squares to pixel positions on the canvas.
type Layout struct {
	SquareSize  int
	Margin      int
	Orientation annotate.Orientation
}

// Cell returns the display column and row of sq, counted from the top-left.
// Dark at the bottom rotates the board half a turn.
func (l Layout) Cell(sq position.Square) (col, row int) {
	if l.Orientation == annotate.DarkBottom {
		return 7 - sq.File, sq.Rank
	}
	return sq.File, 7 - sq.Rank
}

// At is the inverse of Cell.
func (l Layout) At(col, row int) position.Square {
	if l.Orientation == annotate.DarkBottom {
		return position.Square{File: 7 - col, Rank: row}
	}
	return position.Square{File: col, Rank: 7 - row}
}

// Origin is the top-left pixel of sq.
func (l Layout) Origin(sq position.Square) (x, y int) {
	col, row := l.Cell(sq)
	return l.Margin + col*l.SquareSize, l.Margin + row*l.SquareSize
}

func (l Layout) Center(sq position.Square) Point {
	x, y := l.Origin(sq)
	half := float64(l.SquareSize) / 2
	return Point{X: float64(x) + half, Y: float64(y) + half}
}

func (l Layout) Flip() Layout {
	l.Orientation = l.Orientation.Flip()
	return l
}

func (l Layout) BoardSize() int { return 8 * l.SquareSize }

func (l Layout) CanvasSize() int { return l.BoardSize() + 2*l.Margin }
