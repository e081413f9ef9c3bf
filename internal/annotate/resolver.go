package annotate

import (
	"sort"
	"strconv"
	"strings"

	"github.com/park285/boardimage/internal/position"
	"github.com/park285/boardimage/internal/theme"
	"github.com/park285/boardimage/pkg/boarddto"
)

// Parameter names. Aliases map to the same option.
const (
	ParamOrientation = "orientation"
	ParamFlip        = "flip"
	ParamHighlight   = "highlight"
	ParamArrow       = "arrow"
	ParamArrowColor  = "arrow_color"
	ParamLastMove    = "lastmove"
	ParamCheck       = "check"
	ParamMarks       = "marks"
	ParamTheme       = "theme"
	ParamSize        = "size"
	ParamFormat      = "format"
	ParamCoordinates = "coordinates"
)

var aliases = map[string]string{
	"square_size":   ParamSize,
	"output_format": ParamFormat,
	"coords":        ParamCoordinates,
	"last_move":     ParamLastMove,
	"highlights":    ParamHighlight,
}

// Defaults are the startup values used for parameters the request omits.
type Defaults struct {
	Theme         string
	SquareSize    int
	MaxSquareSize int
	Format        Format
	Coordinates   bool
}

type Resolver struct {
	themes   *theme.Registry
	defaults Defaults
}

func NewResolver(themes *theme.Registry, d Defaults) *Resolver {
	if d.SquareSize <= 0 {
		d.SquareSize = 45
	}
	if d.MaxSquareSize <= 0 {
		d.MaxSquareSize = 200
	}
	if d.Format == "" {
		d.Format = FormatSVG
	}
	if d.Theme == "" {
		d.Theme = themes.DefaultName()
	}
	return &Resolver{themes: themes, defaults: d}
}

// Normalize lower-cases keys and folds aliases. A canonical key wins over
// its alias when both are present. When one key arrives in several cases the
// exact lower-case spelling wins, otherwise the first in sorted order.
func Normalize(params map[string]string) map[string]string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	isAlias := func(k string) bool { _, ok := aliases[k]; return ok }
	out := foldKeys(params, keys, func(k string) bool { return !isAlias(k) })
	for alias, v := range foldKeys(params, keys, isAlias) {
		if _, dup := out[aliases[alias]]; !dup {
			out[aliases[alias]] = v
		}
	}
	return out
}

// foldKeys lower-cases the keys accepted by keep. keys must be sorted.
func foldKeys(params map[string]string, keys []string, keep func(string) bool) map[string]string {
	out := map[string]string{}
	exact := map[string]bool{}
	for _, k := range keys {
		key := strings.ToLower(strings.TrimSpace(k))
		if !keep(key) || exact[key] {
			continue
		}
		if _, seen := out[key]; seen && k != key {
			continue
		}
		out[key] = params[k]
		exact[key] = k == key
	}
	return out
}

// Resolve validates every known parameter and returns the overlays and
// render options for board. Unknown keys are ignored. Parameters are checked
// in a fixed order so the same request always reports the same error.
func (r *Resolver) Resolve(board position.Board, params map[string]string) (position.Board, Set, Options, error) {
	p := Normalize(params)
	var set Set
	opts := Options{
		SquareSize:  r.defaults.SquareSize,
		Format:      r.defaults.Format,
		Coordinates: r.defaults.Coordinates,
	}

	themeName := r.defaults.Theme
	if v, ok := present(p, ParamTheme); ok {
		themeName = strings.ToLower(v)
	}
	th, ok := r.themes.Get(themeName)
	if !ok {
		return position.Board{}, Set{}, Options{}, boarddto.InvalidOption(ParamTheme, themeName,
			"unknown theme, available: %s", strings.Join(r.themes.Names(), ", "))
	}
	opts.Theme = th

	if v, ok := present(p, ParamSize); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > r.defaults.MaxSquareSize {
			return position.Board{}, Set{}, Options{}, boarddto.InvalidOption(ParamSize, v,
				"square size must be an integer between 1 and %d", r.defaults.MaxSquareSize)
		}
		opts.SquareSize = n
	}
	if v, ok := present(p, ParamFormat); ok {
		f, err := ParseFormat(v)
		if err != nil {
			return position.Board{}, Set{}, Options{}, err
		}
		opts.Format = f
	}
	if v, ok := present(p, ParamCoordinates); ok {
		b, err := parseBool(ParamCoordinates, v)
		if err != nil {
			return position.Board{}, Set{}, Options{}, err
		}
		opts.Coordinates = b
	}

	if v, ok := present(p, ParamOrientation); ok {
		switch strings.ToLower(v) {
		case "white", "light", "w":
			set.Orientation = LightBottom
		case "black", "dark", "b":
			set.Orientation = DarkBottom
		default:
			return position.Board{}, Set{}, Options{}, boarddto.InvalidOption(ParamOrientation, v,
				"orientation must be white or black")
		}
	}
	if v, ok := present(p, ParamFlip); ok {
		b, err := parseBool(ParamFlip, v)
		if err != nil {
			return position.Board{}, Set{}, Options{}, err
		}
		if b {
			set.Orientation = set.Orientation.Flip()
		}
	}

	if v, ok := present(p, ParamHighlight); ok {
		sqs, err := position.ParseSquareList(ParamHighlight, v)
		if err != nil {
			return position.Board{}, Set{}, Options{}, err
		}
		set.Highlights = sqs
	}

	arrowColor := theme.DefaultArrow
	if v, ok := present(p, ParamArrowColor); ok {
		name := strings.ToLower(v)
		if _, known := th.Palette.Arrows[name]; !known {
			return position.Board{}, Set{}, Options{}, boarddto.InvalidOption(ParamArrowColor, v,
				"unknown arrow colour for theme %s", th.Name)
		}
		arrowColor = name
	}
	if v, ok := present(p, ParamArrow); ok {
		from, to, err := position.ParseMove(ParamArrow, v)
		if err != nil {
			return position.Board{}, Set{}, Options{}, err
		}
		set.Arrow = &Arrow{From: from, To: to, Color: arrowColor}
	}
	if v, ok := present(p, ParamLastMove); ok {
		from, to, err := position.ParseMove(ParamLastMove, v)
		if err != nil {
			return position.Board{}, Set{}, Options{}, err
		}
		set.LastMove = &Move{From: from, To: to}
	}
	if v, ok := present(p, ParamCheck); ok {
		sq, err := position.ParseSquare(ParamCheck, v)
		if err != nil {
			return position.Board{}, Set{}, Options{}, err
		}
		set.Check = &sq
	}
	if v, ok := present(p, ParamMarks); ok {
		sqs, err := position.ParseSquareList(ParamMarks, v)
		if err != nil {
			return position.Board{}, Set{}, Options{}, err
		}
		set.Marks = sqs
	}
	return board, set, opts, nil
}

// present treats an empty value the same as a missing key.
func present(p map[string]string, key string) (string, bool) {
	v, ok := p[key]
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func parseBool(param, v string) (bool, error) {
	switch strings.ToLower(v) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, boarddto.InvalidOption(param, v, "expected a boolean")
	}
	return b, nil
}
