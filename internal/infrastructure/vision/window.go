package vision

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Window применяет контраст, затем яркость. Множитель 1.0 пропускается.
// Всегда возвращает новое изображение, исходное не меняется, поэтому
// нормализованный снимок можно переиспользовать при каждом рендере.
func Window(img image.Image, contrast, brightness float64) *image.NRGBA {
	out := imaging.Clone(img)

	if contrast != 1.0 {
		mean := float64(meanLuma(out))
		out = imaging.AdjustFunc(out, func(c color.NRGBA) color.NRGBA {
			return color.NRGBA{
				R: blend(mean, float64(c.R), contrast),
				G: blend(mean, float64(c.G), contrast),
				B: blend(mean, float64(c.B), contrast),
				A: c.A,
			}
		})
	}

	if brightness != 1.0 {
		out = imaging.AdjustFunc(out, func(c color.NRGBA) color.NRGBA {
			return color.NRGBA{
				R: blend(0, float64(c.R), brightness),
				G: blend(0, float64(c.G), brightness),
				B: blend(0, float64(c.B), brightness),
				A: c.A,
			}
		})
	}

	return out
}

// blend смешивает base и v с коэффициентом f: base + f*(v-base).
func blend(base, v, f float64) uint8 {
	return clamp8(base + f*(v-base))
}

// meanLuma средняя яркость по ITU-R 601, округлённая до целого.
func meanLuma(img *image.NRGBA) int {
	b := img.Bounds()
	n := b.Dx() * b.Dy()
	if n == 0 {
		return 0
	}

	var sum uint64
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+b.Dx()*4]
		for x := 0; x < len(row); x += 4 {
			sum += uint64(luma(row[x], row[x+1], row[x+2]))
		}
	}

	return int(float64(sum)/float64(n) + 0.5)
}

// luma переводит RGB в яркость в фиксированной точке, как L-режим просмотрщика.
func luma(r, g, b uint8) uint8 {
	return uint8((uint32(r)*19595 + uint32(g)*38470 + uint32(b)*7471 + 0x8000) >> 16)
}
