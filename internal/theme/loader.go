package theme

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"image/color"
	"image/jpeg"
	"image/png"
	"io/fs"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/park285/boardimage/pkg/boarddto"
	"github.com/srwiley/oksvg"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"
)

//go:embed assets/themes.yaml assets/pieces
var embedded embed.FS

const themesFile = "themes.yaml"

type fileSpec struct {
	Default string               `yaml:"default"`
	Themes  map[string]themeSpec `yaml:"themes"`
}

type themeSpec struct {
	Glyphs        string            `yaml:"glyphs"`
	SquareLight   string            `yaml:"square_light"`
	SquareDark    string            `yaml:"square_dark"`
	LastMoveLight string            `yaml:"lastmove_light"`
	LastMoveDark  string            `yaml:"lastmove_dark"`
	Highlight     string            `yaml:"highlight"`
	Check         string            `yaml:"check"`
	Mark          string            `yaml:"mark"`
	Coord         string            `yaml:"coord"`
	Arrows        map[string]string `yaml:"arrows"`
	Background    string            `yaml:"background"`
}

// Load builds the registry from the embedded definitions, then applies
// themes.yaml and glyph directories found in overrideDir when it is set.
// Themes with the same name replace the embedded ones.
func Load(overrideDir, defaultName string, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	base, err := fs.Sub(embedded, "assets")
	if err != nil {
		return nil, fmt.Errorf("open embedded themes: %w", err)
	}
	sources := []fs.FS{base}
	if strings.TrimSpace(overrideDir) != "" {
		if _, err := os.Stat(overrideDir); err != nil {
			return nil, fmt.Errorf("theme dir: %w", err)
		}
		sources = append(sources, os.DirFS(overrideDir))
	}

	specs := map[string]themeSpec{}
	for _, src := range sources {
		fileDefault, err := readSpecs(src, specs)
		if err != nil {
			return nil, err
		}
		if defaultName == "" && fileDefault != "" {
			defaultName = fileDefault
		}
	}
	if defaultName == "" {
		defaultName = DefaultName
	}

	l := &loader{sources: sources, sets: map[string]*GlyphSet{}, logger: logger}
	names := make([]string, 0, len(specs))
	for n := range specs {
		names = append(names, n)
	}
	sort.Strings(names)

	themes := make([]*Theme, 0, len(names))
	for _, name := range names {
		t, err := l.buildTheme(name, specs[name])
		if err != nil {
			return nil, err
		}
		themes = append(themes, t)
	}
	reg, err := NewRegistry(defaultName, themes...)
	if err != nil {
		return nil, err
	}
	logger.Info("themes_loaded",
		zap.Strings("themes", reg.Names()),
		zap.String("default", reg.DefaultName()),
		zap.String("override_dir", overrideDir),
	)
	return reg, nil
}

func readSpecs(src fs.FS, into map[string]themeSpec) (string, error) {
	raw, err := fs.ReadFile(src, themesFile)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", themesFile, err)
	}
	var spec fileSpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return "", fmt.Errorf("parse %s: %w", themesFile, err)
	}
	for name, ts := range spec.Themes {
		into[strings.TrimSpace(name)] = ts
	}
	return strings.TrimSpace(spec.Default), nil
}

type loader struct {
	sources []fs.FS
	sets    map[string]*GlyphSet
	logger  *zap.Logger
}

func (l *loader) buildTheme(name string, spec themeSpec) (*Theme, error) {
	p := DefaultPalette()
	fields := []struct {
		key string
		val string
		dst *color.NRGBA
	}{
		{"square_light", spec.SquareLight, &p.SquareLight},
		{"square_dark", spec.SquareDark, &p.SquareDark},
		{"lastmove_light", spec.LastMoveLight, &p.LastMoveLight},
		{"lastmove_dark", spec.LastMoveDark, &p.LastMoveDark},
		{"highlight", spec.Highlight, &p.Highlight},
		{"check", spec.Check, &p.Check},
		{"mark", spec.Mark, &p.Mark},
		{"coord", spec.Coord, &p.Coord},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.val) == "" {
			continue
		}
		c, err := ParseColor(f.val)
		if err != nil {
			return nil, fmt.Errorf("theme %s: %s: %w", name, f.key, err)
		}
		*f.dst = c
	}
	for arrow, val := range spec.Arrows {
		c, err := ParseColor(val)
		if err != nil {
			return nil, fmt.Errorf("theme %s: arrow %s: %w", name, arrow, err)
		}
		p.Arrows[strings.ToLower(strings.TrimSpace(arrow))] = c
	}

	setName := strings.TrimSpace(spec.Glyphs)
	if setName == "" {
		return nil, fmt.Errorf("theme %s: glyphs not set", name)
	}
	set, err := l.glyphSet(setName)
	if err != nil {
		return nil, err
	}
	if !set.Complete() {
		l.logger.Warn("theme_glyphs_incomplete", zap.String("theme", name), zap.String("glyph_set", setName))
	}
	th := &Theme{Name: name, Palette: p, Glyphs: set}
	if file := strings.TrimSpace(spec.Background); file != "" {
		bg, err := l.background(file)
		if err != nil {
			return nil, fmt.Errorf("theme %s: %w", name, err)
		}
		th.Background = bg
	}
	return th, nil
}

// background reads boards/<file>, later sources winning. SVG boards are
// checked like glyphs; PNG and JPEG boards are decoded up front.
func (l *loader) background(file string) (*Background, error) {
	var data []byte
	for _, src := range l.sources {
		raw, err := fs.ReadFile(src, path.Join("boards", file))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("background %s: %w", file, err)
		}
		data = raw
	}
	if data == nil {
		return nil, fmt.Errorf("background %s: %w", file, fs.ErrNotExist)
	}

	bg := &Background{Name: file, Data: data}
	var err error
	switch strings.ToLower(path.Ext(file)) {
	case ".svg":
		bg.MIME = MIMESVG
		err = readSVGBackground(bg)
	case ".png":
		bg.MIME = MIMEPNG
		bg.Image, err = png.Decode(bytes.NewReader(data))
	case ".jpg", ".jpeg":
		bg.MIME = MIMEJPEG
		bg.Image, err = jpeg.Decode(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("background %s: want .svg, .png, .jpg or .jpeg", file)
	}
	if err != nil {
		return nil, fmt.Errorf("background %s: %w", file, err)
	}
	return bg, nil
}

// readSVGBackground sizes the board from the viewBox, the unit system of
// its markup, falling back to width and height.
func readSVGBackground(bg *Background) error {
	bg.Data = sanitizeSVG(bg.Data)
	root, err := parseSVG(bg.Data)
	if err != nil {
		return err
	}
	w, h := svgSize(root)
	if w <= 0 || h <= 0 {
		return errors.New("svg has neither a viewBox nor width and height")
	}
	bg.Width, bg.Height = w, h
	bg.Markup = innerMarkup(root)
	if bg.Markup == "" {
		return errors.New("empty svg")
	}
	return nil
}

// glyphSet reads pieces/<name>/<code>.svg, later sources winning. Missing
// files leave holes in the set; they surface as UnsupportedTheme on render.
func (l *loader) glyphSet(name string) (*GlyphSet, error) {
	if s, ok := l.sets[name]; ok {
		return s, nil
	}
	var glyphs []*Glyph
	for _, key := range AllKeys() {
		var data []byte
		for _, src := range l.sources {
			raw, err := fs.ReadFile(src, path.Join("pieces", name, key.Code()+".svg"))
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("glyph set %s: %w", name, err)
			}
			data = raw
		}
		if data == nil {
			continue
		}
		g, err := ParseGlyph(key, data)
		if err != nil {
			return nil, fmt.Errorf("glyph set %s: %s: %w", name, key.Code(), err)
		}
		glyphs = append(glyphs, g)
	}
	s := NewGlyphSet(name, glyphs...)
	l.sets[name] = s
	return s, nil
}

// ParseGlyph reads a piece SVG document: its square viewBox and inner
// markup. The document must also be drawable by the rasterizer.
func ParseGlyph(key GlyphKey, data []byte) (*Glyph, error) {
	g, err := parseGlyph(key, data)
	if err != nil {
		return nil, boarddto.RenderFailure(err, "glyph %s", key.Code())
	}
	return g, nil
}

func parseGlyph(key GlyphKey, data []byte) (*Glyph, error) {
	src := sanitizeSVG(data)
	root, err := parseSVG(src)
	if err != nil {
		return nil, err
	}
	size, err := viewBoxSize(root.SelectAttr("viewBox"), root.SelectAttr("width"))
	if err != nil {
		return nil, err
	}
	markup := innerMarkup(root)
	if markup == "" {
		return nil, errors.New("empty glyph")
	}
	return &Glyph{Key: key, ViewBox: size, Markup: markup, Source: src}, nil
}

// parseSVG returns the root element of an SVG document after checking every
// path's data and running the document through the rasterizer's parser.
func parseSVG(src []byte) (*xmlquery.Node, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	root := xmlquery.FindOne(doc, "/*[local-name()='svg']")
	if root == nil {
		return nil, errors.New("no svg root element")
	}
	for i, p := range xmlquery.Find(root, "//*[local-name()='path']") {
		if err := checkPathData(p.SelectAttr("d")); err != nil {
			return nil, fmt.Errorf("path %d: %w", i+1, err)
		}
	}
	if _, err := oksvg.ReadIconStream(bytes.NewReader(src), oksvg.StrictErrorMode); err != nil {
		return nil, fmt.Errorf("rasterizer rejected svg: %w", err)
	}
	return root, nil
}

func innerMarkup(root *xmlquery.Node) string {
	var markup strings.Builder
	for n := root.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			markup.WriteString(n.OutputXML(true))
		}
	}
	return markup.String()
}

func svgSize(root *xmlquery.Node) (w, h float64) {
	if f := strings.Fields(strings.ReplaceAll(root.SelectAttr("viewBox"), ",", " ")); len(f) == 4 {
		w, errW := strconv.ParseFloat(f[2], 64)
		h, errH := strconv.ParseFloat(f[3], 64)
		if errW == nil && errH == nil && w > 0 && h > 0 {
			return w, h
		}
	}
	w, errW := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(root.SelectAttr("width")), "px"), 64)
	h, errH := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(root.SelectAttr("height")), "px"), 64)
	if errW != nil || errH != nil {
		return 0, 0
	}
	return w, h
}

func viewBoxSize(viewBox, width string) (float64, error) {
	if f := strings.Fields(strings.ReplaceAll(viewBox, ",", " ")); len(f) == 4 {
		w, err := strconv.ParseFloat(f[2], 64)
		if err == nil && w > 0 {
			return w, nil
		}
	}
	w, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(width), "px"), 64)
	if err != nil || w <= 0 {
		return 0, fmt.Errorf("glyph has neither viewBox nor width")
	}
	return w, nil
}

// sanitizeSVG normalizes style values some exporters write with a space or
// without the leading '#', which the rasterizer does not accept.
func sanitizeSVG(svg []byte) []byte {
	fixed := bytes.ReplaceAll(svg, []byte("fill:000000"), []byte("fill:#000000"))
	fixed = bytes.ReplaceAll(fixed, []byte("fill: 000000"), []byte("fill:#000000"))
	fixed = bytes.ReplaceAll(fixed, []byte("stroke: 000000"), []byte("stroke:#000000"))
	fixed = bytes.ReplaceAll(fixed, []byte("fill: #"), []byte("fill:#"))
	fixed = bytes.ReplaceAll(fixed, []byte("stroke: #"), []byte("stroke:#"))
	fixed = bytes.ReplaceAll(fixed, []byte("stop-color: #"), []byte("stop-color:#"))
	fixed = bytes.ReplaceAll(fixed, []byte("; "), []byte(";"))
	return fixed
}
