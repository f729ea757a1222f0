package vision

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // Регистрируем декодер JPEG
	_ "image/png"  // Регистрируем декодер PNG
	"io"

	_ "golang.org/x/image/bmp"  // Регистрируем декодер BMP
	_ "golang.org/x/image/tiff" // Регистрируем декодер TIFF, в т.ч. 16-битный
)

var (
	// ErrDecode файл не удалось распознать как изображение
	ErrDecode = errors.New("failed to decode image")
	// ErrEmptyImage изображение без пикселей
	ErrEmptyImage = errors.New("empty image")
)

// Raster сырой буфер пикселей произвольной разрядности.
// Сэмплы хранятся построчно, каналы чередуются.
type Raster struct {
	Width    int       // ширина в пикселях
	Height   int       // высота в пикселях
	Channels int       // 1 серый, 2 серый+альфа, 3 RGB, 4 RGBA
	Depth    int       // бит на сэмпл: 8, 16, 32...
	Samples  []float64 // Width*Height*Channels значений
}

// NewRaster проверяет размеры и собирает буфер.
func NewRaster(width, height, channels, depth int, samples []float64) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyImage, width, height)
	}
	if channels < 1 || channels > 4 {
		return nil, fmt.Errorf("unsupported channel count: %d", channels)
	}
	if depth <= 0 {
		return nil, fmt.Errorf("unsupported bit depth: %d", depth)
	}
	if len(samples) != width*height*channels {
		return nil, fmt.Errorf("sample count %d does not match %dx%dx%d", len(samples), width, height, channels)
	}

	return &Raster{
		Width:    width,
		Height:   height,
		Channels: channels,
		Depth:    depth,
		Samples:  samples,
	}, nil
}

// DecodeRaster читает файл изображения и возвращает буфер и формат.
func DecodeRaster(r io.Reader) (*Raster, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}

	raster, err := RasterFromImage(img)
	if err != nil {
		return nil, "", err
	}
	return raster, format, nil
}

// RasterFromImage переводит декодированное изображение в буфер,
// сохраняя исходную разрядность.
func RasterFromImage(img image.Image) (*Raster, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyImage, w, h)
	}

	channels, depth := layoutOf(img)
	samples := make([]float64, 0, w*h*channels)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			samples = appendPixel(samples, img, x, y, channels, depth)
		}
	}

	return NewRaster(w, h, channels, depth, samples)
}

// layoutOf определяет число каналов и разрядность по типу изображения.
func layoutOf(img image.Image) (channels, depth int) {
	switch img.(type) {
	case *image.Gray:
		return 1, 8
	case *image.Gray16:
		return 1, 16
	case *image.NRGBA, *image.RGBA:
		return 4, 8
	case *image.NRGBA64, *image.RGBA64:
		return 4, 16
	case *image.Paletted:
		return 4, 8
	default:
		// YCbCr, CMYK и прочие приводим к 8-битному RGB
		return 3, 8
	}
}

func appendPixel(dst []float64, img image.Image, x, y, channels, depth int) []float64 {
	c := img.At(x, y)

	if channels == 1 {
		if depth == 16 {
			g := color.Gray16Model.Convert(c).(color.Gray16)
			return append(dst, float64(g.Y))
		}
		g := color.GrayModel.Convert(c).(color.Gray)
		return append(dst, float64(g.Y))
	}

	if depth == 16 {
		n := color.NRGBA64Model.Convert(c).(color.NRGBA64)
		dst = append(dst, float64(n.R), float64(n.G), float64(n.B))
		if channels == 4 {
			dst = append(dst, float64(n.A))
		}
		return dst
	}

	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	dst = append(dst, float64(n.R), float64(n.G), float64(n.B))
	if channels == 4 {
		dst = append(dst, float64(n.A))
	}
	return dst
}
