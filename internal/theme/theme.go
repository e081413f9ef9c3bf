// Package theme holds the named colour palettes and piece glyph sets used to
// draw boards. A Registry is built once at startup and only read afterwards,
// so it is shared by concurrent renders without locking.
package theme

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	"github.com/park285/boardimage/internal/position"
)

const DefaultName = "brown"

type GlyphKey struct {
	Kind  position.Kind
	Color position.Color
}

// Code is the asset file stem, e.g. "wK" or "bN".
func (k GlyphKey) Code() string {
	side := "w"
	if k.Color == position.Dark {
		side = "b"
	}
	p := position.Piece{Kind: k.Kind, Color: position.Light}
	return side + string(p.Symbol())
}

// ID is the element id used inside SVG documents.
func (k GlyphKey) ID() string {
	return "glyph-" + k.Code()
}

func KeyOf(p position.Piece) GlyphKey {
	return GlyphKey{Kind: p.Kind, Color: p.Color}
}

// AllKeys lists the twelve glyphs a complete set provides.
func AllKeys() []GlyphKey {
	keys := make([]GlyphKey, 0, 12)
	for _, c := range position.Colors {
		for _, k := range position.Kinds {
			keys = append(keys, GlyphKey{Kind: k, Color: c})
		}
	}
	return keys
}

type Glyph struct {
	Key GlyphKey
	// ViewBox is the edge of the square coordinate system the markup uses.
	ViewBox float64
	// Markup is the inner content of the source document.
	Markup string
	// Source is the whole document, fed to the rasterizer.
	Source []byte
}

type GlyphSet struct {
	Name   string
	glyphs map[GlyphKey]*Glyph
}

func NewGlyphSet(name string, glyphs ...*Glyph) *GlyphSet {
	s := &GlyphSet{Name: name, glyphs: make(map[GlyphKey]*Glyph, len(glyphs))}
	for _, g := range glyphs {
		s.glyphs[g.Key] = g
	}
	return s
}

func (s *GlyphSet) Lookup(k GlyphKey) (*Glyph, bool) {
	if s == nil {
		return nil, false
	}
	g, ok := s.glyphs[k]
	return g, ok
}

func (s *GlyphSet) Complete() bool {
	for _, k := range AllKeys() {
		if _, ok := s.Lookup(k); !ok {
			return false
		}
	}
	return true
}

type Palette struct {
	SquareLight   color.NRGBA
	SquareDark    color.NRGBA
	LastMoveLight color.NRGBA
	LastMoveDark  color.NRGBA
	Highlight     color.NRGBA
	Check         color.NRGBA
	Mark          color.NRGBA
	Coord         color.NRGBA
	Arrows        map[string]color.NRGBA
}

// DefaultArrow is the arrow colour used when none is requested.
const DefaultArrow = "green"

func DefaultPalette() Palette {
	return Palette{
		SquareLight:   mustColor("#f0d9b5"),
		SquareDark:    mustColor("#b58863"),
		LastMoveLight: mustColor("#cdd16a"),
		LastMoveDark:  mustColor("#aaa23b"),
		Highlight:     mustColor("#14551e80"),
		Check:         mustColor("#ff0000"),
		Mark:          mustColor("#000000"),
		Coord:         mustColor("#333333"),
		Arrows: map[string]color.NRGBA{
			"green":  mustColor("#15781B80"),
			"red":    mustColor("#88202080"),
			"yellow": mustColor("#e68f00b3"),
			"blue":   mustColor("#00308880"),
		},
	}
}

// Background is a board image drawn in place of the square grid. SVG
// sources keep their inner markup, raster sources are decoded once.
type Background struct {
	Name string
	// MIME is image/svg+xml, image/png or image/jpeg.
	MIME string
	Data []byte

	Markup        string
	Width, Height float64

	Image image.Image
}

func (b *Background) IsSVG() bool { return b.MIME == MIMESVG }

const (
	MIMESVG  = "image/svg+xml"
	MIMEPNG  = "image/png"
	MIMEJPEG = "image/jpeg"
)

type Theme struct {
	Name       string
	Palette    Palette
	Glyphs     *GlyphSet
	Background *Background
}

func (t *Theme) Glyph(p position.Piece) (*Glyph, bool) {
	return t.Glyphs.Lookup(KeyOf(p))
}

type Registry struct {
	themes      map[string]*Theme
	defaultName string
}

func NewRegistry(defaultName string, themes ...*Theme) (*Registry, error) {
	r := &Registry{themes: make(map[string]*Theme, len(themes)), defaultName: defaultName}
	for _, t := range themes {
		if t == nil || t.Name == "" {
			return nil, fmt.Errorf("theme without a name")
		}
		r.themes[t.Name] = t
	}
	if _, ok := r.themes[defaultName]; !ok {
		return nil, fmt.Errorf("default theme %q is not defined", defaultName)
	}
	return r, nil
}

func (r *Registry) Get(name string) (*Theme, bool) {
	t, ok := r.themes[name]
	return t, ok
}

func (r *Registry) Default() *Theme { return r.themes[r.defaultName] }

func (r *Registry) DefaultName() string { return r.defaultName }

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.themes))
	for n := range r.themes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
