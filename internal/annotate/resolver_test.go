package annotate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/park285/boardimage/internal/position"
	"github.com/park285/boardimage/internal/theme"
	"github.com/park285/boardimage/pkg/boarddto"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	reg, err := theme.Load("", "", nil)
	if err != nil {
		t.Fatalf("theme.Load: %v", err)
	}
	return NewResolver(reg, Defaults{MaxSquareSize: 120})
}

func sq(s string) position.Square {
	out, err := position.ParseSquare("test", s)
	if err != nil {
		panic(err)
	}
	return out
}

func TestResolveDefaults(t *testing.T) {
	r := newTestResolver(t)
	board, err := position.Parse("startpos")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got, set, opts, err := r.Resolve(board, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != board {
		t.Fatalf("board changed")
	}
	if set.Orientation != LightBottom || set.Arrow != nil || len(set.Highlights) != 0 {
		t.Fatalf("unexpected overlays: %+v", set)
	}
	if opts.SquareSize != 45 || opts.Format != FormatSVG || opts.Coordinates || opts.Theme.Name != "brown" {
		t.Fatalf("unexpected options: %+v", opts)
	}
}

func TestResolveAll(t *testing.T) {
	r := newTestResolver(t)
	_, set, opts, err := r.Resolve(position.Board{}, map[string]string{
		"orientation":   "black",
		"highlight":     "e4,d5,e4",
		"arrow":         "g1-f3",
		"arrow_color":   "Red",
		"lastmove":      "e2e4",
		"check":         "e8",
		"marks":         "a1,h8",
		"theme":         "blue",
		"square_size":   "60",
		"output_format": "PNG",
		"coordinates":   "yes",
		"unknown":       "whatever",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	check := sq("e8")
	want := Set{
		Highlights:  []position.Square{sq("e4"), sq("d5")},
		Arrow:       &Arrow{From: sq("g1"), To: sq("f3"), Color: "red"},
		LastMove:    &Move{From: sq("e2"), To: sq("e4")},
		Check:       &check,
		Marks:       []position.Square{sq("a1"), sq("h8")},
		Orientation: DarkBottom,
	}
	if diff := cmp.Diff(want, set); diff != "" {
		t.Fatalf("set mismatch (-want +got):\n%s", diff)
	}
	if opts.Theme.Name != "blue" || opts.SquareSize != 60 || opts.Format != FormatPNG || !opts.Coordinates {
		t.Fatalf("unexpected options: %+v", opts)
	}
}

func TestResolveFlipXorsOrientation(t *testing.T) {
	r := newTestResolver(t)
	cases := []struct {
		params map[string]string
		want   Orientation
	}{
		{map[string]string{"flip": "true"}, DarkBottom},
		{map[string]string{"flip": "true", "orientation": "black"}, LightBottom},
		{map[string]string{"flip": "0", "orientation": "dark"}, DarkBottom},
	}
	for _, tc := range cases {
		_, set, _, err := r.Resolve(position.Board{}, tc.params)
		if err != nil {
			t.Fatalf("Resolve(%v): %v", tc.params, err)
		}
		if set.Orientation != tc.want {
			t.Fatalf("Resolve(%v) orientation = %v, want %v", tc.params, set.Orientation, tc.want)
		}
	}
}

func TestResolveArrowDefaultColour(t *testing.T) {
	r := newTestResolver(t)
	_, set, _, err := r.Resolve(position.Board{}, map[string]string{"arrow": "e2e2"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if set.Arrow == nil || set.Arrow.Color != theme.DefaultArrow || set.Arrow.From != set.Arrow.To {
		t.Fatalf("arrow = %+v", set.Arrow)
	}
}

func TestResolveErrors(t *testing.T) {
	r := newTestResolver(t)
	cases := []struct {
		name   string
		params map[string]string
		code   boarddto.Code
		param  string
	}{
		{"highlight off board", map[string]string{"highlight": "e4,j4"}, boarddto.CodeInvalidSquareReference, "highlight"},
		{"highlight garbage", map[string]string{"highlight": "4e"}, boarddto.CodeInvalidOption, "highlight"},
		{"arrow off board", map[string]string{"arrow": "a1a9"}, boarddto.CodeInvalidSquareReference, "arrow"},
		{"arrow single square", map[string]string{"arrow": "e2"}, boarddto.CodeInvalidOption, "arrow"},
		{"arrow colour", map[string]string{"arrow": "e2e4", "arrow_color": "purple"}, boarddto.CodeInvalidOption, "arrow_color"},
		{"check", map[string]string{"check": "k1"}, boarddto.CodeInvalidSquareReference, "check"},
		{"marks", map[string]string{"marks": "a1,??"}, boarddto.CodeInvalidOption, "marks"},
		{"orientation", map[string]string{"orientation": "sideways"}, boarddto.CodeInvalidOption, "orientation"},
		{"flip", map[string]string{"flip": "maybe"}, boarddto.CodeInvalidOption, "flip"},
		{"theme", map[string]string{"theme": "neon"}, boarddto.CodeInvalidOption, "theme"},
		{"size zero", map[string]string{"size": "0"}, boarddto.CodeInvalidOption, "size"},
		{"size over max", map[string]string{"size": "121"}, boarddto.CodeInvalidOption, "size"},
		{"size text", map[string]string{"size": "big"}, boarddto.CodeInvalidOption, "size"},
		{"format", map[string]string{"format": "bmp"}, boarddto.CodeUnsupportedFormat, "format"},
		{"coordinates", map[string]string{"coordinates": "sure"}, boarddto.CodeInvalidOption, "coordinates"},
	}
	for _, tc := range cases {
		_, _, _, err := r.Resolve(position.Board{}, tc.params)
		if !boarddto.Is(err, tc.code) {
			t.Fatalf("%s: err = %v, want %s", tc.name, err, tc.code)
		}
		var de *boarddto.DomainError
		de, _ = err.(*boarddto.DomainError)
		if de == nil || de.Param != tc.param {
			t.Fatalf("%s: param = %+v, want %s", tc.name, de, tc.param)
		}
	}
}

// highlight referencing file index 9
func TestResolveHighlightFileNine(t *testing.T) {
	r := newTestResolver(t)
	_, _, _, err := r.Resolve(position.Board{}, map[string]string{"highlight": "j1"})
	if !boarddto.Is(err, boarddto.CodeInvalidSquareReference) {
		t.Fatalf("err = %v", err)
	}
}

func TestResolveUnsupportedFormatBMP(t *testing.T) {
	r := newTestResolver(t)
	_, _, _, err := r.Resolve(position.Board{}, map[string]string{"format": "bmp"})
	if !boarddto.Is(err, boarddto.CodeUnsupportedFormat) {
		t.Fatalf("err = %v", err)
	}
}

func TestNormalizePrefersCanonical(t *testing.T) {
	got := Normalize(map[string]string{"Size": "30", "square_size": "40", "Output_Format": "png"})
	want := map[string]string{"size": "30", "format": "png"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Normalize mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeMixedCaseIsStable(t *testing.T) {
	cases := []struct {
		in   map[string]string
		want map[string]string
	}{
		{map[string]string{"Size": "10", "size": "20", "SIZE": "30"}, map[string]string{"size": "20"}},
		{map[string]string{"Size": "10", "SIZE": "30"}, map[string]string{"size": "30"}},
		{map[string]string{"Coords": "yes", "COORDS": "no"}, map[string]string{"coordinates": "no"}},
	}
	for _, tc := range cases {
		for i := 0; i < 200; i++ {
			if diff := cmp.Diff(tc.want, Normalize(tc.in)); diff != "" {
				t.Fatalf("Normalize(%v) run %d (-want +got):\n%s", tc.in, i, diff)
			}
		}
	}
}

func TestEmptyValuesIgnored(t *testing.T) {
	r := newTestResolver(t)
	_, set, opts, err := r.Resolve(position.Board{}, map[string]string{"highlight": "", "size": " ", "theme": ""})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(set.Highlights) != 0 || opts.SquareSize != 45 {
		t.Fatalf("unexpected: %+v %+v", set, opts)
	}
}
