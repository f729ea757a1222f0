package vision

import (
	"image"

	"github.com/anthonynsimon/bild/histogram"
	"github.com/disintegration/imaging"

	"wrist-triage/internal/domain/entity"
)

// Histogram считает гистограмму яркости изображения.
func Histogram(img image.Image) entity.WindowStats {
	h := histogram.NewRGBAHistogram(lumaImage(img))

	bins := make([]int, len(h.R.Bins))
	copy(bins, h.R.Bins)

	stats := entity.WindowStats{Bins: bins}

	total := 0
	for i, v := range bins {
		total += v
		if v > bins[stats.Peak] {
			stats.Peak = i
		}
	}
	if total == 0 {
		return stats
	}

	stats.ClippedLow = float64(bins[0]) / float64(total)
	stats.ClippedHigh = float64(bins[len(bins)-1]) / float64(total)
	return stats
}

// lumaImage переводит изображение в оттенки серого по той же формуле,
// что и среднее для контраста.
func lumaImage(img image.Image) *image.Gray {
	src := imaging.Clone(img)
	b := src.Bounds()
	out := image.NewGray(b)
	for y := 0; y < b.Dy(); y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+b.Dx()*4]
		for x := 0; x < b.Dx(); x++ {
			out.Pix[y*out.Stride+x] = luma(row[x*4], row[x*4+1], row[x*4+2])
		}
	}
	return out
}
