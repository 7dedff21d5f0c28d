package tweak

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/golang/freetype/truetype"
	"github.com/soypat/glgl/math/ms1"
	"github.com/soypat/gwave"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

var (
	colBackground = color.RGBA{R: 0x28, G: 0x29, B: 0x2e, A: 0xf0}
	colSelected   = color.RGBA{R: 0x44, G: 0x46, B: 0x50, A: 0xff}
	colFolder     = color.RGBA{R: 0x37, G: 0x38, B: 0x3f, A: 0xff}
	colText       = color.RGBA{R: 0xbb, G: 0xbc, B: 0xc4, A: 0xff}
	colTrack      = color.RGBA{R: 0x1c, G: 0x1d, B: 0x20, A: 0xff}
	colFill       = color.RGBA{R: 0xad, G: 0xaf, B: 0xb8, A: 0xff}
	colGraph      = color.RGBA{R: 0x5c, G: 0xc8, B: 0xa0, A: 0xff}
)

const (
	rowPad    = 3
	indentPix = 10
	graphRows = 2
)

// NewFace returns a Go Regular font face of size points at 72 DPI.
func NewFace(size float64) (font.Face, error) {
	ttf, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

func rowHeight(face font.Face) int {
	return face.Metrics().Height.Ceil() + 2*rowPad
}

// Size returns the size in pixels of the rasterized panel.
func (p *Panel) Size(face font.Face) image.Point {
	n := 1 + len(p.Rows())
	if p.FPS != nil {
		n += graphRows
	}
	return image.Point{X: p.Width, Y: n * rowHeight(face)}
}

// Draw rasterizes the panel onto dst starting at its top left corner.
func (p *Panel) Draw(dst draw.Image, face font.Face) {
	rh := rowHeight(face)
	origin := dst.Bounds().Min
	size := p.Size(face)
	fillRect(dst, image.Rectangle{Min: origin, Max: origin.Add(size)}, colBackground)
	y := origin.Y
	drawText(dst, face, origin.X+rowPad, y, rh, p.Title, colText)
	y += rh
	if p.FPS != nil {
		p.drawGraph(dst, face, image.Rect(origin.X, y, origin.X+p.Width, y+graphRows*rh))
		y += graphRows * rh
	}
	selected, _ := p.Selected()
	for i, row := range p.Rows() {
		r := image.Rect(origin.X, y, origin.X+p.Width, y+rh)
		if i == selected {
			fillRect(dst, r, colSelected)
		}
		x := r.Min.X + rowPad + row.Depth*indentPix
		switch {
		case row.Folder != nil:
			if i != selected {
				fillRect(dst, r, colFolder)
			}
			marker := "+ "
			if row.Folder.Expanded {
				marker = "- "
			}
			drawText(dst, face, x, y, rh, marker+row.Folder.Title, colText)
		case row.Binding != nil:
			drawText(dst, face, x, y, rh, row.Binding.Label(), colText)
			drawControl(dst, face, row.Binding, image.Rect(r.Min.X+p.Width*2/5, y+rowPad, r.Max.X-rowPad, y+rh-rowPad))
		}
		y += rh
	}
}

func drawControl(dst draw.Image, face font.Face, b *Binding, r image.Rectangle) {
	switch b.Kind() {
	case KindSlider:
		v, err := b.Float()
		if err != nil {
			return
		}
		o := b.Opts()
		track := r
		track.Max.X = r.Min.X + r.Dx()/2
		fillRect(dst, track, colTrack)
		frac := ms1.Clamp((v-o.Min)/(o.Max-o.Min), 0, 1)
		fill := track
		fill.Max.X = track.Min.X + int(frac*float32(track.Dx()))
		fillRect(dst, fill, colFill)
		drawText(dst, face, track.Max.X+rowPad, r.Min.Y-rowPad, r.Dy()+2*rowPad, b.Value(), colText)
	case KindColor:
		swatch := image.Rect(r.Min.X, r.Min.Y, r.Min.X+r.Dy(), r.Max.Y)
		c, err := gwave.ParseColor(b.Value())
		if err == nil {
			fillRect(dst, swatch, c.RGBA8())
		}
		drawText(dst, face, swatch.Max.X+rowPad, r.Min.Y-rowPad, r.Dy()+2*rowPad, b.Value(), colText)
	case KindToggle:
		box := image.Rect(r.Min.X, r.Min.Y, r.Min.X+r.Dy(), r.Max.Y)
		fillRect(dst, box, colTrack)
		if b.Value() == "true" {
			fillRect(dst, box.Inset(2), colFill)
		}
	}
}

func (p *Panel) drawGraph(dst draw.Image, face font.Face, r image.Rectangle) {
	g := p.FPS
	label := fmt.Sprintf("FPS %.0f  %.1fms", g.FPS(), float64(g.FrameTime().Microseconds())/1000)
	rh := r.Dy() / graphRows
	drawText(dst, face, r.Min.X+rowPad, r.Min.Y, rh, label, colText)
	plot := image.Rect(r.Min.X+rowPad, r.Min.Y+rh, r.Max.X-rowPad, r.Max.Y-rowPad)
	fillRect(dst, plot, colTrack)
	intervals := g.AppendIntervals(nil)
	if len(intervals) == 0 {
		return
	}
	barW := max(1, plot.Dx()/fpsSamples)
	// Full plot height corresponds to 30 FPS.
	const full = 1000 / 30
	for i, d := range intervals {
		h := int(float32(plot.Dy()) * ms1.Clamp(float32(d.Milliseconds())/full, 0, 1))
		x := plot.Max.X - (len(intervals)-i)*barW
		if x < plot.Min.X {
			continue
		}
		fillRect(dst, image.Rect(x, plot.Max.Y-h, x+barW, plot.Max.Y), colGraph)
	}
}

func drawText(dst draw.Image, face font.Face, x, y, rh int, s string, c color.Color) {
	m := face.Metrics()
	textH := m.Height.Ceil()
	baseline := y + (rh-textH)/2 + m.Ascent.Ceil()
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(s)
}

func fillRect(dst draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Over)
}
