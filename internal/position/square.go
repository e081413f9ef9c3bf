package position

import (
	"errors"
	"strconv"
	"strings"

	"github.com/park285/boardimage/pkg/boarddto"
)

// ParseSquare decodes an algebraic square such as "e4". A well-formed
// reference outside the board (file "j", rank 9) is an
// InvalidSquareReference; anything else is an InvalidOption.
func ParseSquare(param, raw string) (Square, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if len(s) < 2 || s[0] < 'a' || s[0] > 'z' {
		return Square{}, boarddto.InvalidOption(param, raw, "expected a square like e4")
	}
	digits := s[1:]
	if strings.TrimLeft(digits, "0123456789") != "" {
		return Square{}, boarddto.InvalidOption(param, raw, "expected a square like e4")
	}
	rank, err := strconv.Atoi(digits)
	if err != nil {
		return Square{}, boarddto.InvalidOption(param, raw, "expected a square like e4")
	}
	sq := Square{File: int(s[0] - 'a'), Rank: rank - 1}
	if !sq.Valid() {
		return Square{}, boarddto.InvalidSquareReference(param, raw,
			"square file %d rank %d is outside the board", sq.File, sq.Rank)
	}
	return sq, nil
}

// ParseMove decodes a from/to pair written as "e2e4" or "e2-e4".
func ParseMove(param, raw string) (from, to Square, err error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), "-", "")
	split := -1
	for i := 1; i < len(s); i++ {
		if s[i] >= 'a' && s[i] <= 'z' || s[i] >= 'A' && s[i] <= 'Z' {
			split = i
			break
		}
	}
	if split < 0 {
		return Square{}, Square{}, boarddto.InvalidOption(param, raw, "expected two squares like e2e4")
	}
	if from, err = ParseSquare(param, s[:split]); err != nil {
		return Square{}, Square{}, withValue(err, raw)
	}
	// a trailing promotion letter ("e7e8q") is accepted and ignored
	rest := s[split:]
	if n := len(rest); n > 2 && strings.ContainsRune("nbrq", rune(rest[n-1])) {
		rest = rest[:n-1]
	}
	if to, err = ParseSquare(param, rest); err != nil {
		return Square{}, Square{}, withValue(err, raw)
	}
	return from, to, nil
}

// ParseSquareList decodes a comma separated list, keeping order and dropping
// repeats.
func ParseSquareList(param, raw string) ([]Square, error) {
	var out []Square
	seen := map[Square]bool{}
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		sq, err := ParseSquare(param, part)
		if err != nil {
			return nil, err
		}
		if seen[sq] {
			continue
		}
		seen[sq] = true
		out = append(out, sq)
	}
	return out, nil
}

func withValue(err error, value string) error {
	var de *boarddto.DomainError
	if errors.As(err, &de) {
		return de.WithParam(de.Param, value)
	}
	return err
}
