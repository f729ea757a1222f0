package vision

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"wrist-triage/internal/domain/entity"
	"wrist-triage/internal/domain/port"
)

// DefaultPalette цвета классов в порядке индексов, как у библиотеки детектора.
var DefaultPalette = []string{
	"#FF3838", "#FF9D97", "#FF701F", "#FFB21D", "#CFD231",
	"#48F90A", "#92CC17", "#3DDB86", "#1A9334", "#00D4BB",
	"#2C99A8", "#00C2FF", "#344593", "#6473FF", "#0018EC",
	"#8438FF", "#520085", "#CB38FF", "#FF95C8", "#FF37C7",
}

type swatch struct {
	box  color.NRGBA
	text color.NRGBA
}

// BoxAnnotator рисует рамки находок с подписью "класс уверенность".
type BoxAnnotator struct {
	LineWidth int
	palette   []swatch
	face      font.Face
}

// NewBoxAnnotator разбирает палитру и создаёт аннотатор.
func NewBoxAnnotator(lineWidth int, palette []string) (*BoxAnnotator, error) {
	if lineWidth <= 0 {
		lineWidth = 2
	}
	if len(palette) == 0 {
		palette = DefaultPalette
	}

	swatches := make([]swatch, 0, len(palette))
	for _, hex := range palette {
		c, err := colorful.Hex(hex)
		if err != nil {
			return nil, fmt.Errorf("parse palette color %q: %w", hex, err)
		}
		r, g, b := c.RGB255()

		// На светлой плашке пишем чёрным, на тёмной белым
		text := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		if l, _, _ := c.Lab(); l > 0.6 {
			text = color.NRGBA{A: 255}
		}

		swatches = append(swatches, swatch{
			box:  color.NRGBA{R: r, G: g, B: b, A: 255},
			text: text,
		})
	}

	return &BoxAnnotator{
		LineWidth: lineWidth,
		palette:   swatches,
		face:      basicfont.Face7x13,
	}, nil
}

// Annotate возвращает копию изображения с рамками и подписями находок.
func (a *BoxAnnotator) Annotate(img image.Image, findings []entity.Finding) (image.Image, error) {
	if img == nil {
		return nil, ErrEmptyImage
	}

	out := imaging.Clone(img)
	for _, f := range findings {
		sw := a.colorFor(f.ClassID)
		drawRect(out, f.Box.Rect(), sw.box, a.LineWidth)
		a.drawLabel(out, f, sw)
	}

	return out, nil
}

func (a *BoxAnnotator) colorFor(classID int) swatch {
	if classID < 0 {
		classID = -classID
	}
	return a.palette[classID%len(a.palette)]
}

// drawLabel рисует плашку с текстом над рамкой, или внутри, если сверху нет места.
func (a *BoxAnnotator) drawLabel(dst *image.NRGBA, f entity.Finding, sw swatch) {
	text := fmt.Sprintf("%s %.2f", f.Label, f.Confidence)

	metrics := a.face.Metrics()
	textW := font.MeasureString(a.face, text).Ceil()
	textH := (metrics.Ascent + metrics.Descent).Ceil()
	pad := 2

	x := f.Box.X1
	y := f.Box.Y1 - textH - 2*pad
	if y < dst.Bounds().Min.Y {
		y = f.Box.Y1
	}

	tag := image.Rect(x, y, x+textW+2*pad, y+textH+2*pad).Intersect(dst.Bounds())
	if tag.Empty() {
		return
	}
	draw.Draw(dst, tag, image.NewUniform(sw.box), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(sw.text),
		Face: a.face,
		Dot:  fixed.P(x+pad, y+pad+metrics.Ascent.Ceil()),
	}
	d.DrawString(text)
}

// drawRect рисует контур прямоугольника заданной толщины внутрь, обрезая по границам.
func drawRect(img *image.NRGBA, r image.Rectangle, col color.NRGBA, thickness int) {
	bounds := img.Bounds()
	r = r.Canon()

	setPixel := func(x, y int) {
		if (image.Point{X: x, Y: y}).In(bounds) {
			img.SetNRGBA(x, y, col)
		}
	}

	for t := 0; t < thickness; t++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			setPixel(x, r.Min.Y+t)
			setPixel(x, r.Max.Y-1-t)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			setPixel(r.Min.X+t, y)
			setPixel(r.Max.X-1-t, y)
		}
	}
}

// Проверка реализации интерфейса
var _ port.Annotator = (*BoxAnnotator)(nil)
