package vision

import (
	"image"
	"math"
)

// Normalize приводит буфер любой разрядности к 8-битному трёхканальному
// изображению для показа и для детектора.
//
// 16 бит делятся на 256, 8 бит проходят без изменений, всё остальное
// растягивается min-max в [0,255]. Для постоянного изображения (min == max)
// все пиксели становятся 0, деления на ноль нет. Нечисловые значения
// (NaN, ±Inf) в min/max не участвуют и дают 0.
func Normalize(r *Raster) (*image.NRGBA, error) {
	if r == nil || r.Width <= 0 || r.Height <= 0 || len(r.Samples) == 0 {
		return nil, ErrEmptyImage
	}

	to8 := depthMapper(r)

	out := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			src := r.Samples[(y*r.Width+x)*r.Channels:]
			dst := out.Pix[y*out.Stride+x*4:]

			switch r.Channels {
			case 1, 2:
				// серый размножаем на RGB, альфу отбрасываем
				g := to8(src[0])
				dst[0], dst[1], dst[2] = g, g, g
			default:
				// у RGBA альфа отбрасывается без смешивания с фоном
				dst[0], dst[1], dst[2] = to8(src[0]), to8(src[1]), to8(src[2])
			}
			dst[3] = 0xff
		}
	}

	return out, nil
}

// depthMapper выбирает правило перевода сэмпла в 8 бит.
func depthMapper(r *Raster) func(float64) uint8 {
	switch r.Depth {
	case 8:
		return clamp8
	case 16:
		return func(v float64) uint8 {
			return uint8(uint16(clampRange(v, 0, math.MaxUint16)) >> 8)
		}
	default:
		lo, hi := finiteRange(r.Samples)
		span := hi - lo
		return func(v float64) uint8 {
			if span <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return 0
			}
			return clamp8((v - lo) / span * 255)
		}
	}
}

// finiteRange возвращает минимум и максимум конечных значений.
func finiteRange(samples []float64) (lo, hi float64) {
	first := true
	for _, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if first {
			lo, hi = v, v
			first = false
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// clamp8 обрезает значение в [0,255] и отбрасывает дробную часть.
func clamp8(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

func clampRange(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
