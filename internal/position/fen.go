package position

import (
	"strconv"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/boardimage/pkg/boarddto"
)

const (
	StartPlacement = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR"
	EmptyPlacement = "8/8/8/8/8/8/8/8"
)

// Parse decodes a position notation into a Board. It accepts a bare FEN
// placement field, a complete FEN (or 4-field EPD), or "startpos".
func Parse(notation string) (Board, error) {
	raw := strings.TrimSpace(notation)
	if raw == "" {
		return Board{}, boarddto.MalformedPosition(notation, "empty position")
	}
	if strings.EqualFold(raw, "startpos") {
		raw = StartPlacement
	}
	fields := strings.Fields(raw)
	board, err := parsePlacement(notation, fields[0])
	if err != nil {
		return Board{}, err
	}
	if len(fields) > 1 {
		if err := validateFENFields(notation, fields); err != nil {
			return Board{}, err
		}
	}
	return board, nil
}

func parsePlacement(notation, placement string) (Board, error) {
	var board Board
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return Board{}, boarddto.MalformedPosition(notation, "expected 8 ranks, got %d", len(ranks))
	}
	for i, text := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(text); j++ {
			c := text[j]
			if c >= '0' && c <= '9' {
				k := j
				for k < len(text) && text[k] >= '0' && text[k] <= '9' {
					k++
				}
				run, err := strconv.Atoi(text[j:k])
				if err != nil || run == 0 || c == '0' {
					return Board{}, boarddto.MalformedPosition(notation, "rank %d: invalid run-length %q", rank+1, text[j:k])
				}
				if file+run > 8 {
					return Board{}, boarddto.MalformedPosition(notation, "rank %d: run-length %d overflows the rank", rank+1, run)
				}
				file += run
				j = k - 1
				continue
			}
			p, ok := pieceFromSymbol(c)
			if !ok {
				return Board{}, boarddto.MalformedPosition(notation, "rank %d: unrecognized token %q", rank+1, string(c))
			}
			if file >= 8 {
				return Board{}, boarddto.MalformedPosition(notation, "rank %d has more than 8 files", rank+1)
			}
			board.cells[Square{File: file, Rank: rank}.index()] = p
			file++
		}
		if file != 8 {
			return Board{}, boarddto.MalformedPosition(notation, "rank %d has %d files, expected 8", rank+1, file)
		}
	}
	return board, nil
}

// validateFENFields checks side to move, castling rights, en passant and the
// clocks of a full FEN.
func validateFENFields(notation string, fields []string) error {
	switch len(fields) {
	case 4:
		fields = append(fields, "0", "1")
	case 6:
	default:
		return boarddto.MalformedPosition(notation, "expected 1, 4 or 6 FEN fields, got %d", len(fields))
	}
	if _, err := nchess.FEN(strings.Join(fields, " ")); err != nil {
		e := boarddto.MalformedPosition(notation, "invalid FEN")
		e.Cause = err
		return e
	}
	return nil
}

// String serializes the board back to a FEN placement field.
func (b Board) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			p := b.cells[Square{File: file, Rank: rank}.index()]
			if p.Empty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(p.Symbol())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}
