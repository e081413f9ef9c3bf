package position

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/park285/boardimage/pkg/boarddto"
)

func TestParseSquare(t *testing.T) {
	sq, err := ParseSquare("highlight", "E4")
	if err != nil {
		t.Fatalf("ParseSquare: %v", err)
	}
	if sq != (Square{File: 4, Rank: 3}) || sq.String() != "e4" {
		t.Fatalf("unexpected square %+v", sq)
	}

	for _, in := range []string{"j1", "a9", "a0", "z12"} {
		_, err := ParseSquare("highlight", in)
		if !boarddto.Is(err, boarddto.CodeInvalidSquareReference) {
			t.Fatalf("%s: expected INVALID_SQUARE_REFERENCE, got %v", in, err)
		}
	}
	for _, in := range []string{"", "4e", "e", "ex", "??", "e+4", "e-1", "e 4", "e٤", "e4.0"} {
		_, err := ParseSquare("highlight", in)
		if !boarddto.Is(err, boarddto.CodeInvalidOption) {
			t.Fatalf("%q: expected INVALID_OPTION, got %v", in, err)
		}
	}
}

func TestParseSquareNamesFileIndex(t *testing.T) {
	_, err := ParseSquare("highlight", "j4")
	var de *boarddto.DomainError
	if err == nil {
		t.Fatalf("expected error")
	}
	de, _ = err.(*boarddto.DomainError)
	if de == nil || de.Param != "highlight" || de.Value != "j4" {
		t.Fatalf("unexpected error detail: %#v", err)
	}
}

func TestParseMove(t *testing.T) {
	from, to, err := ParseMove("arrow", "e2e4")
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}
	if from.String() != "e2" || to.String() != "e4" {
		t.Fatalf("got %s%s", from, to)
	}
	if _, to, err = ParseMove("lastmove", "e7-e8q"); err != nil || to.String() != "e8" {
		t.Fatalf("promotion move: %v %s", err, to)
	}
	if _, _, err := ParseMove("arrow", "e2j4"); !boarddto.Is(err, boarddto.CodeInvalidSquareReference) {
		t.Fatalf("expected INVALID_SQUARE_REFERENCE, got %v", err)
	}
	if _, _, err := ParseMove("arrow", "e2"); !boarddto.Is(err, boarddto.CodeInvalidOption) {
		t.Fatalf("expected INVALID_OPTION, got %v", err)
	}
}

func TestParseSquareList(t *testing.T) {
	got, err := ParseSquareList("highlight", "e4, d5,e4,,h8")
	if err != nil {
		t.Fatalf("ParseSquareList: %v", err)
	}
	want := []Square{{4, 3}, {3, 4}, {7, 7}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("squares mismatch (-want +got):\n%s", diff)
	}
}
