package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Assets are the images drawn into a panel's image slots. A nil image is
// replaced by a drawn placeholder.
type Assets struct {
	Logo      image.Image
	Signature image.Image
	Photo     image.Image
}

func (a Assets) get(name Asset) image.Image {
	switch name {
	case AssetLogo:
		return a.Logo
	case AssetSignature:
		return a.Signature
	case AssetPhoto:
		return a.Photo
	}
	return nil
}

var (
	colorPaper       = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	colorPlaceholder = color.RGBA{R: 0xe5, G: 0xe7, B: 0xeb, A: 0xff}
)

// minShrink is the smallest fraction of the requested size text is shrunk to
// before it is truncated.
const minShrink = 0.6

// Rasterizer draws panels with the Go fonts. It holds only parsed fonts and
// is safe for concurrent use; faces are created per call.
type Rasterizer struct {
	regular *opentype.Font
	bold    *opentype.Font
}

func NewRasterizer() (*Rasterizer, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	return &Rasterizer{regular: regular, bold: bold}, nil
}

type canvas struct {
	dst     *image.RGBA
	scale   float64
	r       *Rasterizer
	faces   map[faceKey]font.Face
	newFace func(*opentype.Font, *opentype.FaceOptions) (font.Face, error)
}

type faceKey struct {
	bold bool
	px   float64
}

// Rasterize draws p at MMToPX×scale pixels per millimetre.
func (r *Rasterizer) Rasterize(p Panel, a Assets, scale int) (*image.RGBA, error) {
	if scale < 1 {
		return nil, errors.New("render: scale must be at least 1")
	}
	if p.Width <= 0 || p.Height <= 0 {
		return nil, errors.New("render: empty panel")
	}

	c := &canvas{
		dst:     image.NewRGBA(image.Rect(0, 0, PixelSize(p.Width, scale), PixelSize(p.Height, scale))),
		scale:   MMToPX * float64(scale),
		r:       r,
		faces:   make(map[faceKey]font.Face),
		newFace: opentype.NewFace,
	}
	defer c.close()

	draw.Draw(c.dst, c.dst.Bounds(), image.NewUniform(colorPaper), image.Point{}, draw.Src)

	for _, el := range p.Elements {
		var err error
		switch el.Kind {
		case KindRect:
			c.fill(c.box(el), el.Color)
		case KindText:
			err = c.drawText(el)
		case KindImage:
			err = c.drawImage(el, a.get(el.Asset))
		}
		if err != nil {
			return nil, err
		}
	}
	return c.dst, nil
}

func (c *canvas) close() {
	for _, f := range c.faces {
		f.Close()
	}
}

func (c *canvas) px(mm float64) int {
	return int(math.Round(mm * c.scale))
}

func (c *canvas) box(el Element) image.Rectangle {
	r := image.Rect(c.px(el.X), c.px(el.Y), c.px(el.X+el.W), c.px(el.Y+el.H))
	// Hairlines stay visible at any scale.
	if r.Dy() == 0 && el.H > 0 {
		r.Max.Y++
	}
	return r
}

func (c *canvas) fill(r image.Rectangle, col color.RGBA) {
	draw.Draw(c.dst, r, image.NewUniform(col), image.Point{}, draw.Over)
}

func (c *canvas) face(bold bool, px float64) (font.Face, error) {
	px = math.Round(px*4) / 4
	key := faceKey{bold: bold, px: px}
	if f, ok := c.faces[key]; ok {
		return f, nil
	}
	src := c.r.regular
	if bold {
		src = c.r.bold
	}
	f, err := c.newFace(src, &opentype.FaceOptions{
		Size:    px,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("render: create font face: %w", err)
	}
	c.faces[key] = f
	return f, nil
}

// fitText shrinks text down to minShrink of its size and then truncates it
// with an ellipsis so it never spills out of its box.
func (c *canvas) fitText(el Element, maxW fixed.Int26_6) (font.Face, string, error) {
	size := el.Size * c.scale
	f, err := c.face(el.Bold, size)
	if err != nil {
		return nil, "", err
	}
	w := font.MeasureString(f, el.Text)
	if w <= maxW {
		return f, el.Text, nil
	}

	shrink := math.Max(minShrink, float64(maxW)/float64(w))
	if f, err = c.face(el.Bold, size*shrink); err != nil {
		return nil, "", err
	}
	if font.MeasureString(f, el.Text) <= maxW {
		return f, el.Text, nil
	}

	runes := []rune(el.Text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		s := string(runes) + "..."
		if font.MeasureString(f, s) <= maxW {
			return f, s, nil
		}
	}
	return f, "", nil
}

func (c *canvas) drawText(el Element) error {
	if el.Text == "" {
		return nil
	}
	box := c.box(el)
	f, s, err := c.fitText(el, fixed.I(box.Dx()))
	if err != nil || s == "" {
		return err
	}

	m := f.Metrics()
	textH := (m.Ascent + m.Descent).Ceil()
	baseline := box.Min.Y + (box.Dy()-textH)/2 + m.Ascent.Ceil()

	width := font.MeasureString(f, s)
	x := fixed.I(box.Min.X)
	switch el.Align {
	case AlignCenter:
		x += (fixed.I(box.Dx()) - width) / 2
	case AlignRight:
		x += fixed.I(box.Dx()) - width
	}

	d := &font.Drawer{
		Dst:  c.dst,
		Src:  image.NewUniform(el.Color),
		Face: f,
		Dot:  fixed.Point26_6{X: x, Y: fixed.I(baseline)},
	}
	d.DrawString(s)
	return nil
}

func (c *canvas) drawImage(el Element, img image.Image) error {
	box := c.box(el)
	if img == nil || img.Bounds().Empty() {
		return c.placeholder(el, box)
	}
	b := img.Bounds()
	if el.Fit == FitCover {
		src := CropRect(b.Dx(), b.Dy(), float64(box.Dx()), float64(box.Dy())).Add(b.Min)
		draw.CatmullRom.Scale(c.dst, box, img, src, draw.Src, nil)
		return nil
	}
	draw.CatmullRom.Scale(c.dst, containRect(b.Dx(), b.Dy(), box), img, b, draw.Over, nil)
	return nil
}

func (c *canvas) placeholder(el Element, box image.Rectangle) error {
	if el.Asset == AssetSignature {
		return nil
	}
	c.fill(box, colorPlaceholder)
	edge := max(1, c.px(0.2))
	c.fill(image.Rect(box.Min.X, box.Min.Y, box.Max.X, box.Min.Y+edge), colorRule)
	c.fill(image.Rect(box.Min.X, box.Max.Y-edge, box.Max.X, box.Max.Y), colorRule)
	c.fill(image.Rect(box.Min.X, box.Min.Y, box.Min.X+edge, box.Max.Y), colorRule)
	c.fill(image.Rect(box.Max.X-edge, box.Min.Y, box.Max.X, box.Max.Y), colorRule)

	label := "LOGO"
	if el.Asset == AssetPhoto {
		label = "PHOTO"
	}
	if err := c.drawText(Element{
		Kind: KindText, X: el.X, Y: el.Y, W: el.W, H: el.H,
		Text: label, Size: smallSize, Bold: true, Align: AlignCenter, Color: colorRule,
	}); err != nil {
		return fmt.Errorf("render: draw placeholder: %w", err)
	}
	return nil
}

// EncodePNG encodes a rasterized panel.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
