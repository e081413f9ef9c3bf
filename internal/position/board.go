// Package position holds the board model and the FEN placement codec.
package position

import "strings"

type Kind uint8

const (
	NoKind Kind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindNames = [...]string{"", "pawn", "knight", "bishop", "rook", "queen", "king"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Kinds lists every piece kind in glyph-table order.
var Kinds = []Kind{King, Queen, Rook, Bishop, Knight, Pawn}

type Color uint8

const (
	Light Color = iota
	Dark
)

func (c Color) String() string {
	if c == Dark {
		return "dark"
	}
	return "light"
}

var Colors = []Color{Light, Dark}

// Piece is an immutable value. The zero Piece is an empty square.
type Piece struct {
	Kind  Kind
	Color Color
}

func (p Piece) Empty() bool { return p.Kind == NoKind }

const pieceLetters = " pnbrqk"

// Symbol returns the FEN letter, upper case for light pieces.
func (p Piece) Symbol() byte {
	if p.Empty() {
		return 0
	}
	b := pieceLetters[p.Kind]
	if p.Color == Light {
		b -= 'a' - 'A'
	}
	return b
}

func pieceFromSymbol(r byte) (Piece, bool) {
	color := Dark
	lower := r
	if r >= 'A' && r <= 'Z' {
		color = Light
		lower = r + ('a' - 'A')
	}
	i := strings.IndexByte(pieceLetters, lower)
	if i <= 0 {
		return Piece{}, false
	}
	return Piece{Kind: Kind(i), Color: color}, true
}

type Square struct {
	File int
	Rank int
}

func (s Square) Valid() bool {
	return s.File >= 0 && s.File < 8 && s.Rank >= 0 && s.Rank < 8
}

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + s.File), byte('1' + s.Rank)})
}

func (s Square) index() int { return s.Rank*8 + s.File }

// Board maps each of the 64 squares to an optional piece.
type Board struct {
	cells [64]Piece
}

func (b Board) At(sq Square) (Piece, bool) {
	if !sq.Valid() {
		return Piece{}, false
	}
	p := b.cells[sq.index()]
	return p, !p.Empty()
}

// With returns a copy of b with p placed on sq.
func (b Board) With(sq Square, p Piece) Board {
	if sq.Valid() {
		b.cells[sq.index()] = p
	}
	return b
}

// Each visits occupied squares from a1 to h8.
func (b Board) Each(fn func(Square, Piece)) {
	for i, p := range b.cells {
		if p.Empty() {
			continue
		}
		fn(Square{File: i % 8, Rank: i / 8}, p)
	}
}

func (b Board) Count() int {
	n := 0
	for _, p := range b.cells {
		if !p.Empty() {
			n++
		}
	}
	return n
}
