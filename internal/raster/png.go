package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"sync"

	"github.com/park285/boardimage/internal/scene"
	"github.com/park285/boardimage/internal/theme"
	"github.com/park285/boardimage/pkg/boarddto"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	goRegularOnce sync.Once
	goRegular     *opentype.Font
	goRegularErr  error
)

func loadLabelFont() (*opentype.Font, error) {
	goRegularOnce.Do(func() {
		goRegular, goRegularErr = opentype.Parse(goregular.TTF)
	})
	return goRegular, goRegularErr
}

func renderPNG(sc *scene.Scene) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, sc.Width, sc.Height))
	faces := map[int]font.Face{}
	defer func() {
		for _, f := range faces {
			_ = f.Close()
		}
	}()

	for _, p := range sc.Primitives {
		var err error
		switch p := p.(type) {
		case scene.Board:
			err = drawBackground(img, sc.Background, image.Rect(p.X, p.Y, p.X+p.Size, p.Y+p.Size))
		case scene.Rect:
			fillRect(img, image.Rect(p.X, p.Y, p.X+p.Size, p.Y+p.Size), p.Fill)
		case scene.Glow:
			drawGlow(img, p)
		case scene.Cross:
			err = drawIcon(img, crossDocument(p.Fill), image.Rect(p.X, p.Y, p.X+p.Size, p.Y+p.Size), 1)
		case scene.Glyph:
			g, ok := sc.Glyphs[p.Key]
			if !ok {
				return nil, boarddto.RenderFailure(nil, "glyph %s missing from scene", p.Key.Code())
			}
			err = drawIcon(img, g.Source, image.Rect(p.X, p.Y, p.X+p.Size, p.Y+p.Size), 1)
			if err != nil {
				err = fmt.Errorf("glyph %s: %w", p.Key.Code(), err)
			}
		case scene.Arrow:
			err = drawIcon(img, arrowDocument(sc, p), img.Bounds(), float64(p.Color.A)/255)
		case scene.Ring:
			err = drawIcon(img, ringDocument(sc, p), img.Bounds(), float64(p.Color.A)/255)
		case scene.Label:
			err = drawLabel(img, faces, p)
		default:
			err = fmt.Errorf("unknown primitive %T", p)
		}
		if err != nil {
			return nil, boarddto.RenderFailure(err, "rasterize board")
		}
	}

	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		return nil, boarddto.RenderFailure(err, "encode png")
	}
	return out.Bytes(), nil
}

// fillRect paints opaque colours directly and composites translucent ones.
func fillRect(img *image.RGBA, r image.Rectangle, c color.NRGBA) {
	op := draw.Over
	if c.A == 0xff {
		op = draw.Src
	}
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, op)
}

// drawIcon rasterizes an SVG document into dst scaled to r. The icon is
// drawn onto its own layer first so the scanner never sees dst.
func drawIcon(dst *image.RGBA, doc []byte, r image.Rectangle, opacity float64) error {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(doc), oksvg.StrictErrorMode)
	if err != nil {
		return fmt.Errorf("parse svg: %w", err)
	}
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 {
		return nil
	}
	icon.SetTarget(0, 0, float64(w), float64(h))
	layer := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, layer, layer.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, opacity)
	draw.Draw(dst, r, layer, image.Point{}, draw.Over)
	return nil
}

func drawBackground(dst *image.RGBA, bg *theme.Background, r image.Rectangle) error {
	switch {
	case bg == nil:
		return fmt.Errorf("board background missing from scene")
	case bg.IsSVG():
		if err := drawIcon(dst, bg.Data, r, 1); err != nil {
			return fmt.Errorf("background %s: %w", bg.Name, err)
		}
	case bg.Image != nil:
		xdraw.CatmullRom.Scale(dst, r, bg.Image, bg.Image.Bounds(), xdraw.Over, nil)
	default:
		return fmt.Errorf("background %s was not decoded", bg.Name)
	}
	return nil
}

func crossDocument(fill color.NRGBA) []byte {
	return []byte(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d"><path d="%s"%s stroke="#fff" stroke-width="1.688"/></svg>`,
		scene.CrossViewBox, scene.CrossViewBox, scene.CrossPath, paint("fill", fill)))
}

// arrowDocument covers the whole canvas. Opacity is applied once when the
// icon is drawn so the overlap of shaft and head is not darker.
func arrowDocument(sc *scene.Scene, a scene.Arrow) []byte {
	hex, _ := theme.Hex(a.Color)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d">`, sc.Width, sc.Height)
	fmt.Fprintf(&buf, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s" stroke-linecap="butt"/>`,
		num(a.Tail.X), num(a.Tail.Y), num(a.Shaft.X), num(a.Shaft.Y), hex, num(a.Width))
	fmt.Fprintf(&buf, `<polygon points="%s,%s %s,%s %s,%s" fill="%s"/>`,
		num(a.Tip.X), num(a.Tip.Y), num(a.Left.X), num(a.Left.Y), num(a.Right.X), num(a.Right.Y), hex)
	buf.WriteString("</svg>")
	return buf.Bytes()
}

func ringDocument(sc *scene.Scene, r scene.Ring) []byte {
	hex, _ := theme.Hex(r.Color)
	return []byte(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d"><circle cx="%s" cy="%s" r="%s" stroke="%s" stroke-width="%s" fill="none"/></svg>`,
		sc.Width, sc.Height, num(r.Center.X), num(r.Center.Y), num(r.Radius), hex, num(r.Width)))
}

// drawGlow paints the radial check gradient: the stops are interpolated by
// distance from the square centre and blended pixel by pixel.
func drawGlow(img *image.RGBA, g scene.Glow) {
	stops := glowStops(g.Color)
	cx := float64(g.X) + float64(g.Size)/2
	cy := float64(g.Y) + float64(g.Size)/2
	radius := float64(g.Size) / 2
	if radius <= 0 {
		return
	}
	for y := g.Y; y < g.Y+g.Size; y++ {
		for x := g.X; x < g.X+g.Size; x++ {
			d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy) / radius
			blendPixel(img, x, y, gradientAt(stops, d))
		}
	}
}

func gradientAt(stops []gradientStop, t float64) color.NRGBA {
	if t <= stops[0].offset {
		return withOpacity(stops[0].color, stops[0].opacity)
	}
	for i := 1; i < len(stops); i++ {
		a, b := stops[i-1], stops[i]
		if t > b.offset {
			continue
		}
		f := (t - a.offset) / (b.offset - a.offset)
		lerp := func(x, y uint8) uint8 { return floatToUint8(float64(x) + (float64(y)-float64(x))*f) }
		c := color.NRGBA{R: lerp(a.color.R, b.color.R), G: lerp(a.color.G, b.color.G), B: lerp(a.color.B, b.color.B)}
		return withOpacity(c, a.opacity+(b.opacity-a.opacity)*f)
	}
	last := stops[len(stops)-1]
	return withOpacity(last.color, last.opacity)
}

func withOpacity(c color.NRGBA, op float64) color.NRGBA {
	c.A = floatToUint8(op * 255)
	return c
}

func blendPixel(img *image.RGBA, x, y int, clr color.NRGBA) {
	if clr.A == 0 || !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}
	srcA := float64(clr.A) / 255
	dst := img.RGBAAt(x, y)
	dstA := float64(dst.A) / 255
	outA := srcA + dstA*(1-srcA)
	if outA <= 0 {
		img.SetRGBA(x, y, color.RGBA{})
		return
	}
	// dst is premultiplied, src is not
	mix := func(s, d uint8) uint8 {
		return floatToUint8(float64(s)*srcA + float64(d)*(1-srcA))
	}
	img.SetRGBA(x, y, color.RGBA{
		R: mix(clr.R, dst.R),
		G: mix(clr.G, dst.G),
		B: mix(clr.B, dst.B),
		A: floatToUint8(outA * 255),
	})
}

func floatToUint8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func drawLabel(img *image.RGBA, faces map[int]font.Face, l scene.Label) error {
	face, ok := faces[l.FontSize]
	if !ok {
		f, err := loadLabelFont()
		if err != nil {
			return fmt.Errorf("load label font: %w", err)
		}
		face, err = opentype.NewFace(f, &opentype.FaceOptions{Size: float64(l.FontSize), DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			return fmt.Errorf("label face: %w", err)
		}
		faces[l.FontSize] = face
	}
	drawer := &font.Drawer{Dst: img, Src: image.NewUniform(l.Color), Face: face}
	width := drawer.MeasureString(l.Text).Round()
	ascent := face.Metrics().Ascent.Ceil()
	drawer.Dot = fixed.P(l.X-width/2, l.Y+ascent/2-1)
	drawer.DrawString(l.Text)
	return nil
}
