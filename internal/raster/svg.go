package raster

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"image/color"

	"github.com/park285/boardimage/internal/scene"
	"github.com/park285/boardimage/internal/theme"
	"github.com/park285/boardimage/pkg/boarddto"
)

const (
	backgroundID = "board_background"
	crossID      = "xx"
	gradientID   = "check_gradient"
	labelFont    = "Arial, sans-serif"
)

func renderSVG(sc *scene.Scene) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" version="1.2" baseProfile="tiny" viewBox="0 0 %d %d" width="%d" height="%d">`,
		sc.Width, sc.Height, sc.Width, sc.Height)
	if err := writeDefs(&buf, sc); err != nil {
		return nil, err
	}
	for _, p := range sc.Primitives {
		switch p := p.(type) {
		case scene.Board:
			if err := writeBackground(&buf, sc.Background, p); err != nil {
				return nil, err
			}
		case scene.Rect:
			fmt.Fprintf(&buf, `<rect x="%d" y="%d" width="%d" height="%d" class="%s"%s/>`,
				p.X, p.Y, p.Size, p.Size, rectClass(p.Role), paint("fill", p.Fill))
		case scene.Glow:
			fmt.Fprintf(&buf, `<rect x="%d" y="%d" width="%d" height="%d" class="check" fill="url(#%s)"/>`,
				p.X, p.Y, p.Size, p.Size, gradientID)
		case scene.Cross:
			fmt.Fprintf(&buf, `<use href="#%s" xlink:href="#%s" transform="translate(%d %d) scale(%s)"/>`,
				crossID, crossID, p.X, p.Y, num(float64(p.Size)/scene.CrossViewBox))
		case scene.Glyph:
			g, ok := sc.Glyphs[p.Key]
			if !ok {
				return nil, boarddto.RenderFailure(nil, "glyph %s missing from scene", p.Key.Code())
			}
			id := p.Key.ID()
			fmt.Fprintf(&buf, `<use href="#%s" xlink:href="#%s" transform="translate(%d %d) scale(%s)"/>`,
				id, id, p.X, p.Y, num(float64(p.Size)/g.ViewBox))
		case scene.Arrow:
			hex, op := theme.Hex(p.Color)
			fmt.Fprintf(&buf, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s"%s stroke-width="%s" stroke-linecap="butt" class="arrow"/>`,
				num(p.Tail.X), num(p.Tail.Y), num(p.Shaft.X), num(p.Shaft.Y), hex, opacity(op), num(p.Width))
			fmt.Fprintf(&buf, `<polygon points="%s,%s %s,%s %s,%s" fill="%s"%s class="arrow"/>`,
				num(p.Tip.X), num(p.Tip.Y), num(p.Left.X), num(p.Left.Y), num(p.Right.X), num(p.Right.Y), hex, opacity(op))
		case scene.Ring:
			hex, op := theme.Hex(p.Color)
			fmt.Fprintf(&buf, `<circle cx="%s" cy="%s" r="%s" stroke-width="%s" stroke="%s"%s fill="none" class="circle"/>`,
				num(p.Center.X), num(p.Center.Y), num(p.Radius), num(p.Width), hex, opacity(op))
		case scene.Label:
			fmt.Fprintf(&buf, `<text x="%d" y="%d" text-anchor="middle" dominant-baseline="middle" font-size="%d" font-family="%s"%s>`,
				p.X, p.Y, p.FontSize, labelFont, paint("fill", p.Color))
			if err := xml.EscapeText(&buf, []byte(p.Text)); err != nil {
				return nil, boarddto.RenderFailure(err, "escape label")
			}
			buf.WriteString(`</text>`)
		default:
			return nil, boarddto.RenderFailure(nil, "unknown primitive %T", p)
		}
	}
	buf.WriteString("</svg>")
	return buf.Bytes(), nil
}

func writeDefs(buf *bytes.Buffer, sc *scene.Scene) error {
	var cross *scene.Cross
	var glow *scene.Glow
	for _, p := range sc.Primitives {
		switch p := p.(type) {
		case scene.Cross:
			if cross == nil {
				cross = &p
			}
		case scene.Glow:
			if glow == nil {
				glow = &p
			}
		}
	}
	buf.WriteString("<defs>")
	for _, key := range theme.AllKeys() {
		g, ok := sc.Glyphs[key]
		if !ok {
			continue
		}
		if g.ViewBox <= 0 {
			return boarddto.RenderFailure(nil, "glyph %s has no size", key.Code())
		}
		fmt.Fprintf(buf, `<g id="%s" class="%s %s">%s</g>`, key.ID(), key.Color, key.Kind, g.Markup)
	}
	if bg := sc.Background; bg != nil && bg.IsSVG() {
		fmt.Fprintf(buf, `<g id="%s">%s</g>`, backgroundID, bg.Markup)
	}
	if cross != nil {
		fmt.Fprintf(buf, `<g id="%s"><path d="%s"%s stroke="#fff" stroke-width="1.688"/></g>`,
			crossID, scene.CrossPath, paint("fill", cross.Fill))
	}
	if glow != nil {
		fmt.Fprintf(buf, `<radialGradient id="%s" r="0.5">`, gradientID)
		for _, s := range glowStops(glow.Color) {
			hex, _ := theme.Hex(s.color)
			fmt.Fprintf(buf, `<stop offset="%s%%" stop-color="%s" stop-opacity="%s"/>`,
				num(s.offset*100), hex, num(s.opacity))
		}
		buf.WriteString("</radialGradient>")
	}
	buf.WriteString("</defs>")
	return nil
}

// writeBackground stretches the theme board over the grid. Raster boards are
// embedded as data URIs.
func writeBackground(buf *bytes.Buffer, bg *theme.Background, p scene.Board) error {
	if bg == nil {
		return boarddto.RenderFailure(nil, "board background missing from scene")
	}
	if bg.IsSVG() {
		if bg.Width <= 0 || bg.Height <= 0 {
			return boarddto.RenderFailure(nil, "background %s has no size", bg.Name)
		}
		fmt.Fprintf(buf, `<use href="#%s" xlink:href="#%s" class="board" transform="translate(%d %d) scale(%s %s)"/>`,
			backgroundID, backgroundID, p.X, p.Y, num(float64(p.Size)/bg.Width), num(float64(p.Size)/bg.Height))
		return nil
	}
	uri := "data:" + bg.MIME + ";base64," + base64.StdEncoding.EncodeToString(bg.Data)
	fmt.Fprintf(buf, `<image x="%d" y="%d" width="%d" height="%d" preserveAspectRatio="none" class="board" href="%s" xlink:href="%s"/>`,
		p.X, p.Y, p.Size, p.Size, uri, uri)
	return nil
}

func rectClass(r scene.RectRole) string {
	switch r {
	case scene.RoleLastMove:
		return "square lastmove"
	case scene.RoleHighlight:
		return "highlight"
	}
	return "square"
}

// paint writes attr and, for translucent colours, the matching opacity.
func paint(attr string, c color.NRGBA) string {
	hex, op := theme.Hex(c)
	s := fmt.Sprintf(` %s="%s"`, attr, hex)
	if op < 1 {
		s += fmt.Sprintf(` %s-opacity="%s"`, attr, num(op))
	}
	return s
}

func opacity(op float64) string {
	if op >= 1 {
		return ""
	}
	return fmt.Sprintf(` opacity="%s"`, num(op))
}
